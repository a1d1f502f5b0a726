package index

import "errors"

// Sentinel errors for index operations.
var (
	ErrIndexNotFound = errors.New("index: index not found")
	ErrIndexExists   = errors.New("index: index already exists")
)

// Op constants map to OpenSearch API calls for error context.
const (
	OpSearch      = "search"
	OpBulk        = "bulk"
	OpCreateIndex = "indices.create"
	OpIndexExists = "indices.exists"
	OpPing        = "ping"
	OpRefresh     = "indices.refresh"
)

// Error wraps an underlying error with the operation name for diagnostics.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
