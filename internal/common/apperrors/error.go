// Package apperrors provides error values that can be chained, matched with
// errors.Is, and tagged with an HTTP status code. Template errors created with
// New act as sentinels; derived errors keep the sentinel in their chain so
// callers can classify failures without string matching.
package apperrors

// Error extends the standard error interface with chaining and status code
// management. All builder methods return Error to support method chaining.
type Error interface {
	error
	Unwrap() error // support for errors.Is / errors.As

	New(msg string) Error                  // creates a new error using current as template
	Msg(msg string) Error                  // creates a new error with message and wraps original
	MsgErr(msg string, err ...error) Error // creates error with message and wraps extra errors
	Err(err ...error) Error                // attaches additional errors to current error
	SetStatusCode(int) Error               // sets HTTP status code for the error
	StatusCode() int                       // returns the current status code
	UnwrapAll() []error                    // returns all wrapped errors
}
