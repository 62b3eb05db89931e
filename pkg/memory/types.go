package memory

import "time"

// Record is one remembered experience. Records are append-only: the
// engine never mutates or deletes them, retention is an external concern.
type Record struct {
	ID        string
	Owner     string // identity name the memory belongs to
	Content   string
	CreatedAt time.Time
}
