package symbolic

// Result is either Ok with a value or a parse failure with a reason.
type Result[T any] struct {
	value  T
	reason string
	ok     bool
}

// Ok wraps a successfully parsed value.
func Ok[T any](v T) Result[T] {
	return Result[T]{value: v, ok: true}
}

// Fail builds a parse failure.
func Fail[T any](reason string) Result[T] {
	if reason == "" {
		reason = "parse failed"
	}
	return Result[T]{reason: reason}
}

// OK reports whether parsing succeeded.
func (r Result[T]) OK() bool { return r.ok }

// Value returns the parsed value, or the zero value on failure.
func (r Result[T]) Value() T { return r.value }

// Reason returns the failure reason, or "" on success.
func (r Result[T]) Reason() string { return r.reason }
