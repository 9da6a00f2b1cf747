package translator

import "fmt"

// unsupportedDirectionError signals a direction outside the two the server
// knows about. Requests failing this way never touch a pool.
type unsupportedDirectionError struct{ direction string }

func (e unsupportedDirectionError) Error() string {
	return "unsupported direction: " + e.direction
}

// ErrUnsupportedDirection constructs an unsupportedDirectionError.
func ErrUnsupportedDirection(direction string) error {
	return unsupportedDirectionError{direction: direction}
}

// IsUnsupportedDirection reports whether err indicates an unknown direction.
func IsUnsupportedDirection(err error) bool {
	_, ok := err.(unsupportedDirectionError)
	return ok
}

// directionUnavailableError signals that a supported direction has no
// serving model (load failed at startup in degraded mode) for 503 mapping.
type directionUnavailableError struct {
	direction string
	reason    string
}

func (e directionUnavailableError) Error() string {
	if e.reason == "" {
		return "direction unavailable: " + e.direction
	}
	return "direction unavailable: " + e.direction + ": " + e.reason
}

// ErrDirectionUnavailable constructs a directionUnavailableError.
func ErrDirectionUnavailable(direction, reason string) error {
	return directionUnavailableError{direction: direction, reason: reason}
}

// IsDirectionUnavailable reports whether err indicates a direction whose
// model is not serving.
func IsDirectionUnavailable(err error) bool {
	_, ok := err.(directionUnavailableError)
	return ok
}

// tooBusyError signals pool-wait timeout for 429 mapping.
type tooBusyError struct{ direction string }

func (e tooBusyError) Error() string { return "too busy: " + e.direction }

// ErrTooBusy constructs a tooBusyError.
func ErrTooBusy(direction string) error { return tooBusyError{direction: direction} }

// IsTooBusy reports whether err indicates backpressure (return 429).
func IsTooBusy(err error) bool {
	_, ok := err.(tooBusyError)
	return ok
}

// capacityError signals a prompt that does not fit the context with room
// for at least one generated token. The prompt is never silently truncated.
type capacityError struct {
	promptTokens int
	capacity     int
}

func (e capacityError) Error() string {
	return fmt.Sprintf("prompt of %d tokens exceeds context capacity %d", e.promptTokens, e.capacity)
}

// ErrCapacityExceeded constructs a capacityError.
func ErrCapacityExceeded(promptTokens, capacity int) error {
	return capacityError{promptTokens: promptTokens, capacity: capacity}
}

// IsCapacityExceeded reports whether err indicates an oversized prompt.
func IsCapacityExceeded(err error) bool {
	_, ok := err.(capacityError)
	return ok
}

// tokenizeError wraps a tokenizer failure from the engine.
type tokenizeError struct{ cause error }

func (e tokenizeError) Error() string { return "tokenize: " + e.cause.Error() }
func (e tokenizeError) Unwrap() error { return e.cause }

// IsTokenizeFailure reports whether err came from tokenization.
func IsTokenizeFailure(err error) bool {
	_, ok := err.(tokenizeError)
	return ok
}

// modelLoadError wraps a startup model-load failure for one direction.
type modelLoadError struct {
	direction string
	path      string
	cause     error
}

func (e modelLoadError) Error() string {
	return fmt.Sprintf("load model for %s from %s: %v", e.direction, e.path, e.cause)
}
func (e modelLoadError) Unwrap() error { return e.cause }

// IsModelLoadFailure reports whether err came from loading model weights.
func IsModelLoadFailure(err error) bool {
	_, ok := err.(modelLoadError)
	return ok
}
