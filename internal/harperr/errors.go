// Package harperr defines the small error taxonomy shared by every stage
// of the rendering pipeline (config -> abc -> music -> layout).
package harperr

import (
	"fmt"
	"strings"
)

// ParseError comes from the ABC parser: one per malformed token or line.
type ParseError struct {
	Message string
	Line int
	Column int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %v:%v: %v", e.Line, e.Column, e.Message)
}

// ConfigError is raised when resolving a deferred configuration value
// reads another deferred value already being resolved.
type ConfigError struct {
	Cycle []string // full dotted-path chain, in resolution order
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("circular configuration dependency: %v", strings.Join(e.Cycle, " -> "))
}

// TransformError is raised by the music transformer on an unexpected
// symbol shape. The offending symbol is skipped; the voice continues.
type TransformError struct {
	Message string
	StartChar int
	VoiceIndex int
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("transform error in voice %v at char %v: %v", e.VoiceIndex, e.StartChar, e.Message)
}

// LayoutWarning is non-fatal: a fractional beat was rounded down, or the
// layout engine skipped a playable that had no pitch.
type LayoutWarning struct {
	Message string
	StartChar int
}

func (e *LayoutWarning) Error() string {
	return fmt.Sprintf("layout warning at char %v: %v", e.StartChar, e.Message)
}

// InvariantViolation is fatal: a note was constructed without a pitch, or
// some other data-model invariant was broken.
type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string {
	return fmt.Sprintf("invariant violation: %v", e.Message)
}

// Correlated tags an error with the id of the render that produced it, so
// log lines from the parse, transform, and layout stages of one render can
// be tied back together.
type Correlated struct {
	ID  string
	Err error
}

func (e *Correlated) Error() string {
	return fmt.Sprintf("[%s] %v", e.ID, e.Err)
}

func (e *Correlated) Unwrap() error { return e.Err }

// Tag wraps every error in errs with id.
func Tag(id string, errs []error) []error {
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = &Correlated{ID: id, Err: e}
	}
	return out
}
