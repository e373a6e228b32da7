package model

import "time"

// Status is the state of one item in a fetch batch.
//
// Every item starts Pending and moves exactly once to a terminal state.
type Status int

const (
	// StatusPending means the item has not been attempted yet.
	StatusPending Status = iota

	// StatusFetched means the remote resource was written to its local artifact.
	StatusFetched

	// StatusFailed means the item could not be fetched. See Result.Kind.
	StatusFailed

	// StatusSkipped means an up-to-date local artifact already existed.
	StatusSkipped
)

// String returns the lower-case name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusFetched:
		return "fetched"
	case StatusFailed:
		return "failed"
	case StatusSkipped:
		return "skipped"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Terminal reports whether no further transition is possible.
func (s Status) Terminal() bool {
	return s != StatusPending
}

// ErrorKind classifies why an item failed.
type ErrorKind int

const (
	KindNone ErrorKind = iota

	// KindNetworkFailure covers unreachable hosts, DNS failures, timeouts
	// and unexpected HTTP statuses.
	KindNetworkFailure

	// KindNotFound means the remote path does not exist, typically a token
	// for a year that was never published.
	KindNotFound

	// KindLocalWriteFailure covers permission and disk space problems.
	KindLocalWriteFailure

	// KindCancelled means the batch context ended before the item finished.
	KindCancelled

	// KindInvalidInput means the item could not be attempted, e.g. a local
	// name that would escape the destination directory.
	KindInvalidInput
)

// String returns the snake_case name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNetworkFailure:
		return "network_failure"
	case KindNotFound:
		return "not_found"
	case KindLocalWriteFailure:
		return "local_write_failure"
	case KindCancelled:
		return "cancelled"
	case KindInvalidInput:
		return "invalid_input"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k ErrorKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Item is one remote resource paired with the local artifact it is stored as.
type Item struct {
	// Index is the position of the item in its batch.
	Index int

	// URL is the remote resource.
	URL string

	// LocalName is the artifact file name inside the destination directory.
	LocalName string

	// Path is the full local path of the artifact.
	Path string
}

// Result records the outcome of fetching one Item.
type Result struct {
	URL       string        `json:"url"`
	LocalName string        `json:"local_name"`
	Path      string        `json:"path"`
	Status    Status        `json:"status"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Kind      ErrorKind     `json:"kind,omitempty"`
	Bytes     int64         `json:"bytes"`
	Attempts  int           `json:"attempts"`
	Duration  time.Duration `json:"duration_ns"`
}

// NewResult returns a pending result for item.
func NewResult(item Item) Result {
	return Result{
		URL:       item.URL,
		LocalName: item.LocalName,
		Path:      item.Path,
		Status:    StatusPending,
	}
}

// Fetched marks the result successful.
func (r *Result) Fetched(bytes int64) {
	r.Status = StatusFetched
	r.Success = true
	r.Bytes = bytes
	r.Error = ""
	r.Kind = KindNone
}

// Skipped marks the result successful without a transfer.
func (r *Result) Skipped(bytes int64) {
	r.Status = StatusSkipped
	r.Success = true
	r.Bytes = bytes
}

// Failed marks the result failed with err classified as kind.
func (r *Result) Failed(kind ErrorKind, err error) {
	r.Status = StatusFailed
	r.Success = false
	r.Kind = kind
	if err != nil {
		r.Error = err.Error()
	}
}
