package scoring

import "fmt"

// DataInsufficientError represents input that is too sparse to score
// meaningfully, such as a job graph with zero requirements. It is surfaced
// to the caller and never retried.
type DataInsufficientError struct {
	Message string
	Cause   error
}

func (e *DataInsufficientError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("insufficient data: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("insufficient data: %s", e.Message)
}

func (e *DataInsufficientError) Unwrap() error {
	return e.Cause
}
