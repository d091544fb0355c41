package audit

import "fmt"

// StorageError wraps a failure in a storage backend operation.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("audit storage %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError creates a storage error.
func NewStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// DroppedError reports a record dropped because the async channel was full
// or the recorder was shutting down.
type DroppedError struct {
	RecordID string
	Reason   string
}

func (e *DroppedError) Error() string {
	return fmt.Sprintf("audit record %s dropped: %s", e.RecordID, e.Reason)
}
