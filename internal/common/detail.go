package common

// DetailError attaches a human-readable detail message to one of the
// sentinel errors above. Transport layers surface Detail to the client
// while errors.Is still matches the underlying sentinel.
type DetailError struct {
	Err    error
	Detail string
}

func (e *DetailError) Error() string { return e.Detail }

func (e *DetailError) Unwrap() error { return e.Err }

// WithDetail wraps err with a client-facing detail message.
func WithDetail(err error, detail string) error {
	return &DetailError{Err: err, Detail: detail}
}
