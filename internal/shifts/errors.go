package shifts

import (
	"errors"
	"fmt"
)

var (
	ErrMalformedBatch = errors.New("malformed batch")
	ErrInvalidWage    = errors.New("invalid hourly wage")
)

const maxQuotedText = 512

// MalformedBatchError is returned when the recognizer output is not a JSON
// list at all. Text is the sanitized text that failed to parse.
type MalformedBatchError struct {
	Text string
	Err  error
}

func (e *MalformedBatchError) Error() string {
	quoted := truncateText(e.Text)
	if e.Err == nil {
		return fmt.Sprintf("malformed batch (response: %q)", quoted)
	}
	return fmt.Sprintf("malformed batch: %v (response: %q)", e.Err, quoted)
}

func (e *MalformedBatchError) Unwrap() error {
	return e.Err
}

func (e *MalformedBatchError) Is(target error) bool {
	return target == ErrMalformedBatch
}

func truncateText(text string) string {
	if len(text) <= maxQuotedText {
		return text
	}
	return text[:maxQuotedText] + fmt.Sprintf("... [truncated, total_length=%d]", len(text))
}
