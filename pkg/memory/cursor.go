package memory

import (
	"database/sql"
	"time"
)

// Cursor lazily walks records in timestamp-ascending order. It follows
// the database/sql Rows protocol: call Next until it returns false,
// then check Err. Restart by calling Store.List again.
type Cursor struct {
	rows *sql.Rows
	rec  Record
	err  error
}

func (c *Cursor) Next() bool {
	if c.err != nil || c.rows == nil {
		return false
	}
	if !c.rows.Next() {
		c.err = c.rows.Err()
		return false
	}
	var createdMS int64
	if err := c.rows.Scan(&c.rec.ID, &c.rec.Owner, &c.rec.Content, &createdMS); err != nil {
		c.err = storageErr("scan record", err)
		return false
	}
	c.rec.CreatedAt = time.UnixMilli(createdMS).UTC()
	return true
}

// Record returns the record the last successful Next positioned on.
func (c *Cursor) Record() Record { return c.rec }

func (c *Cursor) Err() error { return c.err }

func (c *Cursor) Close() error {
	if c.rows == nil {
		return nil
	}
	return c.rows.Close()
}
