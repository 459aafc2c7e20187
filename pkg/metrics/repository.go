package metrics

import "time"

// RepositoryMetrics provides observability for repository operations.
//
// This interface is optional - if not provided to a repository, a no-op
// implementation is used with zero overhead.
//
// Example usage:
//
//	// With metrics enabled
//	metrics.InitRegistry()
//	m := prometheus.NewRepositoryMetrics()
//	repo, err := repository.New(id, root, catalog, repository.WithMetrics(m))
//
//	// Without metrics (no-op)
//	repo, err := repository.New(id, root, catalog)
type RepositoryMetrics interface {
	// RecordOperation records a completed operation.
	//
	// Parameters:
	//   - operation: Operation name (e.g., "getChildren", "createDocument")
	//   - repository: Repository id
	//   - duration: Time taken
	//   - errorCode: Error category, empty on success
	RecordOperation(operation, repository string, duration time.Duration, errorCode string)

	// RecordOperationStart increments the in-flight gauge.
	RecordOperationStart(operation, repository string)

	// RecordOperationEnd decrements the in-flight gauge.
	RecordOperationEnd(operation, repository string)

	// RecordBytesTransferred records content bytes moved in ("write") or
	// out ("read") of a repository.
	RecordBytesTransferred(repository, direction string, bytes int64)

	// RecordItemFailures records per-item failures swallowed by batch
	// operations (bulk update, tree deletion).
	RecordItemFailures(operation, repository string, count int)
}

// AuthMetrics provides observability for login attempts.
type AuthMetrics interface {
	// RecordAuthentication records an attempt. outcome is one of
	// "success", "failure" or "throttled".
	RecordAuthentication(outcome string)
}

// NewNoopRepositoryMetrics returns a RepositoryMetrics that discards everything.
func NewNoopRepositoryMetrics() RepositoryMetrics {
	return noopRepositoryMetrics{}
}

// NewNoopAuthMetrics returns an AuthMetrics that discards everything.
func NewNoopAuthMetrics() AuthMetrics {
	return noopAuthMetrics{}
}

type noopRepositoryMetrics struct{}

func (noopRepositoryMetrics) RecordOperation(string, string, time.Duration, string) {}
func (noopRepositoryMetrics) RecordOperationStart(string, string)                   {}
func (noopRepositoryMetrics) RecordOperationEnd(string, string)                     {}
func (noopRepositoryMetrics) RecordBytesTransferred(string, string, int64)          {}
func (noopRepositoryMetrics) RecordItemFailures(string, string, int)                {}

type noopAuthMetrics struct{}

func (noopAuthMetrics) RecordAuthentication(string) {}
