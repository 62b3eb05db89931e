package memory

import "fmt"

// StorageError wraps a storage failure with the operation that produced
// it. Append failures are surfaced to the caller, never retried here;
// a perception whose append failed is treated as not remembered.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("memory %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}
