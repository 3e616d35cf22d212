package ur

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrConnectionLost is returned when the peer closed the connection before
	// a message was completely received.
	ErrConnectionLost = errors.New("Connection closed unexpectedly")

	// ErrUnexpectedResponse matches every UnexpectedResponseError with
	// errors.Is.
	ErrUnexpectedResponse = errors.New("Unexpected response")

	// ErrSerialization is wrapped by all encoding failures.
	ErrSerialization = errors.New("Serialization error")

	// ErrDeserialization is wrapped by all decoding failures.
	ErrDeserialization = errors.New("Deserialization error")
)

// UnexpectedResponseError reports a reply that did not match the request.
type UnexpectedResponseError struct {
	Response string
}

func (e *UnexpectedResponseError) Error() string {
	return fmt.Sprintf("Unexpected response: '%s'", e.Response)
}

// Is reports whether target is ErrUnexpectedResponse.
func (e *UnexpectedResponseError) Is(target error) bool {
	return target == ErrUnexpectedResponse
}

// Unexpectedf creates an UnexpectedResponseError with a formatted response.
func Unexpectedf(format string, a ...interface{}) error {
	return &UnexpectedResponseError{Response: fmt.Sprintf(format, a...)}
}

// MaxReadsError is returned when the expected package did not arrive within
// the allowed number of reads.
type MaxReadsError struct {
	Expected fmt.Stringer
	Attempts int
}

func (e *MaxReadsError) Error() string {
	return fmt.Sprintf("Exceeded maximum read attempts (%d) for package, expected %v", e.Attempts, e.Expected)
}

// TimeoutError is returned when a polled condition was not reached in time.
type TimeoutError struct {
	Operation string
	Elapsed   time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("Timeout waiting for %s after %s", e.Operation, e.Elapsed.Round(time.Millisecond))
}

// Timeout reports true, so that TimeoutError satisfies net.Error style checks.
func (e *TimeoutError) Timeout() bool { return true }
