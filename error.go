// SPDX-FileCopyrightText: The go-mail Authors
//
// SPDX-License-Identifier: MIT

package compose

import (
	"strings"
)

// List of Error reasons
const (
	// ErrResourceNotFound is returned if no resolver claims a reference or if the claiming
	// resolver could not locate the underlying resource
	ErrResourceNotFound ErrReason = iota

	// ErrResourceRead is returned if a resolver claimed a reference but failed to read it
	ErrResourceRead

	// ErrPathOutsideRoot is returned if a relative path navigates above the root of its base
	ErrPathOutsideRoot

	// ErrMultipleDefaults is returned if more than one resolver is flagged as default
	ErrMultipleDefaults

	// ErrNoContentFound is returned if none of the declared template variants exists
	ErrNoContentFound

	// ErrNoTemplateEngineMatched is returned if a template was found but no registered
	// engine recognizes it
	ErrNoTemplateEngineMatched

	// ErrTemplateParsingFailed is returned if a template engine fails to parse or execute
	// a template
	ErrTemplateParsingFailed

	// ErrCSSInliningFailed is returned if an external stylesheet can't be inlined
	ErrCSSInliningFailed

	// ErrImageInliningFailed is returned if an image referenced in HTML or CSS can't be inlined
	ErrImageInliningFailed

	// ErrUnsupportedContent is returned if a content kind is not known to the pipeline
	ErrUnsupportedContent
)

// ErrReason represents a comparable reason on why the composition failed.
//
// ErrReason satisfies the error interface, so each reason can be used directly as a
// target for errors.Is.
type ErrReason int

// Error is an error wrapper for failures of the content pipeline.
//
// It holds the reason of the failure, the reference that was processed when the failure
// happened, the name of the content variant (if any) and the underlying cause.
type Error struct {
	Reason  ErrReason
	Ref     string
	Variant string
	err     error
}

// newError returns a new *Error for the given reason, reference and cause
func newError(reason ErrReason, ref string, err error) *Error {
	return &Error{Reason: reason, Ref: ref, err: err}
}

// withVariant sets the variant name on the Error and returns it
func (e *Error) withVariant(variant string) *Error {
	e.Variant = variant
	return e
}

// Error implements the error interface for the Error type.
//
// The message starts with the reason, followed by the variant and reference that were
// being processed, followed by the underlying cause.
//
// Returns:
//   - A string representing the error message.
func (e *Error) Error() string {
	var errMessage strings.Builder
	errMessage.WriteString(e.Reason.String())
	if e.Variant != "" {
		errMessage.WriteString(" (variant: ")
		errMessage.WriteString(e.Variant)
		errMessage.WriteRune(')')
	}
	if e.Ref != "" {
		errMessage.WriteString(" [")
		errMessage.WriteString(e.Ref)
		errMessage.WriteRune(']')
	}
	if e.err != nil {
		errMessage.WriteString(": ")
		errMessage.WriteString(e.err.Error())
	}
	return errMessage.String()
}

// Unwrap returns the underlying cause of the Error
func (e *Error) Unwrap() error {
	return e.err
}

// Is implements the errors.Is functionality and compares the ErrReason.
//
// The target matches if it is an ErrReason equal to the reason of the Error or if it is
// another *Error with the same reason.
//
// Parameters:
//   - errType: The error to compare against the current Error.
//
// Returns:
//   - true if the reasons match, false otherwise.
func (e *Error) Is(errType error) bool {
	switch t := errType.(type) {
	case ErrReason:
		return e.Reason == t
	case *Error:
		return t != nil && e.Reason == t.Reason
	}
	return false
}

// Error satisfies the error interface for the ErrReason type
func (r ErrReason) Error() string {
	return r.String()
}

// String satisfies the fmt.Stringer interface for the ErrReason type.
//
// Returns:
//   - A string representation of the ErrReason, or "unknown reason".
func (r ErrReason) String() string {
	switch r {
	case ErrResourceNotFound:
		return "resource not found"
	case ErrResourceRead:
		return "failed to read resource"
	case ErrPathOutsideRoot:
		return "relative path points outside of the root"
	case ErrMultipleDefaults:
		return "only one default resolver can be registered"
	case ErrNoContentFound:
		return "no content found for any of the template variants"
	case ErrNoTemplateEngineMatched:
		return "no template engine can handle the template"
	case ErrTemplateParsingFailed:
		return "failed to parse template"
	case ErrCSSInliningFailed:
		return "failed to inline CSS"
	case ErrImageInliningFailed:
		return "failed to inline image"
	case ErrUnsupportedContent:
		return "unsupported content"
	}
	return "unknown reason"
}
