// Package errors defines the typed error taxonomy for the extraction
// pipeline. Callers receive one of these codes; anything recoverable is
// handled locally and never surfaces as an error.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Code classifies a pipeline error.
type Code string

const (
	ErrConfig           Code = "CONFIG"            // invalid tunable, no retry
	ErrEmptyInput       Code = "EMPTY_INPUT"       // empty or whitespace-only transcript
	ErrExtraction       Code = "EXTRACTION"        // model backend failed for every chunk
	ErrTranscriptSource Code = "TRANSCRIPT_SOURCE" // fetch/transcription collaborator failed
	ErrExport           Code = "EXPORT"            // serializing the final result failed
	ErrInternal         Code = "INTERNAL"
)

// PipelineError is a structured error with a code and optional details.
type PipelineError struct {
	Code    Code
	Message string
	Details map[string]any
	Err     error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the underlying cause, if any.
func (e *PipelineError) Unwrap() error { return e.Err }

// NewConfig creates a CONFIG error for an invalid tunable.
func NewConfig(msg string) *PipelineError {
	return &PipelineError{Code: ErrConfig, Message: msg}
}

// NewConfigf creates a CONFIG error with a formatted message.
func NewConfigf(format string, args ...any) *PipelineError {
	return &PipelineError{Code: ErrConfig, Message: fmt.Sprintf(format, args...)}
}

// NewEmptyInput creates an EMPTY_INPUT error.
func NewEmptyInput() *PipelineError {
	return &PipelineError{
		Code:    ErrEmptyInput,
		Message: "transcript is empty or whitespace-only",
	}
}

// NewExtraction creates an EXTRACTION error reported when no chunk produced a
// usable model response.
func NewExtraction(chunks int, err error) *PipelineError {
	return &PipelineError{
		Code:    ErrExtraction,
		Message: fmt.Sprintf("model backend failed for all %d chunks", chunks),
		Details: map[string]any{"chunks": chunks},
		Err:     err,
	}
}

// NewTranscriptSource creates a TRANSCRIPT_SOURCE error.
func NewTranscriptSource(msg string, err error) *PipelineError {
	return &PipelineError{Code: ErrTranscriptSource, Message: msg, Err: err}
}

// NewExport creates an EXPORT error.
func NewExport(format string, err error) *PipelineError {
	return &PipelineError{
		Code:    ErrExport,
		Message: fmt.Sprintf("export to %s failed", format),
		Details: map[string]any{"format": format},
		Err:     err,
	}
}

// NewInternal wraps an unexpected error.
func NewInternal(err error) *PipelineError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &PipelineError{Code: ErrInternal, Message: msg, Err: err}
}

// Is checks whether err is, or wraps, a PipelineError carrying the given
// code.
func Is(err error, code Code) bool {
	var pe *PipelineError
	if stderrors.As(err, &pe) {
		return pe.Code == code
	}
	return false
}
