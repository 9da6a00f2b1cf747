package engine

// unavailableError signals that the inference runtime is not present in
// this build (e.g. compiled without the 'llama' tag) so callers can map it
// to 503 instead of 500.
type unavailableError struct{ msg string }

func (e unavailableError) Error() string { return e.msg }

// ErrUnavailable constructs an unavailableError.
func ErrUnavailable(msg string) error { return unavailableError{msg: msg} }

// IsUnavailable reports whether err indicates a missing inference runtime.
func IsUnavailable(err error) bool {
	_, ok := err.(unavailableError)
	return ok
}
