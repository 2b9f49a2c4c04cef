package todoclient

import "errors"

var (
	// ErrBusy is returned when an operation of the same kind is already in flight.
	ErrBusy = errors.New("operation already in progress")

	// ErrClosed is returned once the client has been closed. Results that
	// arrive after Close are discarded.
	ErrClosed = errors.New("todo client closed")
)

const (
	msgEmptyDraft        = "Please enter a task before adding."
	msgPlaceholderDelete = "This task has no server id yet. Refresh and try again."
)

// ValidationError is a local precondition failure. It never reaches the network.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidation reports whether err is a *ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
