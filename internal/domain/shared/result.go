package shared

// Tag identifies which branch of a Result is populated.
type Tag int

const (
	TagOk Tag = iota
	TagRejected
	TagFailed
)

// String returns the tag name
func (t Tag) String() string {
	switch t {
	case TagOk:
		return "ok"
	case TagRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// Outcome is the type-erased view of a Result consumed by the HTTP layer.
type Outcome interface {
	Tag() Tag
	Payload() any
	Err() error
}

// Result is the tagged value every orchestrator returns: Ok(data),
// Rejected(reason) or Failed(cause). A failed or rejected result
// may still carry the data produced before the failing step, since
// nothing the ledger already accepted is rolled back.
type Result[T any] struct {
	tag   Tag
	value T
	err   error
	set   bool
}

// Ok wraps a successful value
func Ok[T any](v T) Result[T] {
	return Result[T]{tag: TagOk, value: v, set: true}
}

// Rejected wraps a client-error-class failure
func Rejected[T any](err error) Result[T] {
	return Result[T]{tag: TagRejected, err: err}
}

// Failed wraps a server-error-class failure
func Failed[T any](err error) Result[T] {
	return Result[T]{tag: TagFailed, err: err}
}

// ResultOf converts the (value, error) pair used inside the layer into a
// Result, choosing the tag from the error kind.
func ResultOf[T any](v T, err error) Result[T] {
	if err == nil {
		return Ok(v)
	}
	r := Result[T]{tag: TagRejected, value: v, err: err, set: true}
	if KindOf(err) == KindTransport {
		r.tag = TagFailed
	}
	return r
}

// Tag returns the populated branch
func (r Result[T]) Tag() Tag { return r.tag }

// IsOk reports whether the result is the Ok branch
func (r Result[T]) IsOk() bool { return r.tag == TagOk }

// Value returns the carried value, which may be partial on failure
func (r Result[T]) Value() T { return r.value }

// Err returns the failure, nil for Ok
func (r Result[T]) Err() error { return r.err }

// Payload returns the value as any, or nil when no value was set
func (r Result[T]) Payload() any {
	if !r.set {
		return nil
	}
	return r.value
}

// Unwrap returns the (value, error) pair
func (r Result[T]) Unwrap() (T, error) { return r.value, r.err }
