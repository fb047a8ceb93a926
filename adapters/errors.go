package adapters

import "fmt"

// ConnectionError reports an unreachable backend or rejected credentials.
type ConnectionError struct {
	Kind Kind
	Err  error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to %s database: %v", e.Kind, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// NotFoundError reports a SQLite database file that does not exist.
// It is raised before any connection attempt.
type NotFoundError struct {
	Path string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("database file not found: %s", e.Path)
}

// QueryError wraps the backend driver's own error for a query the
// backend rejected at execution time.
type QueryError struct {
	Err error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("error executing query: %v", e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// ValidationError reports a statement rejected by the read-only policy
// before any connection was opened.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }
