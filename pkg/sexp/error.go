package sexp

import (
	"fmt"
)

// Span identifies a contiguous region of the string being parsed.
type Span struct {
	start int
	end   int
}

// NewSpan constructs a span from a start (inclusive) and end (exclusive)
// index.
func NewSpan(start, end int) Span {
	return Span{start, end}
}

// Start returns the first index covered by this span.
func (s Span) Start() int { return s.start }

// End returns the index immediately after this span.
func (s Span) End() int { return s.end }

// SyntaxError is a structured error which retains the index into the original
// string where an error occurred, along with an error message.
type SyntaxError struct {
	// Index into string being parsed where error arose.
	span Span
	// Error message being reported
	msg string
}

// Span returns the span of the original text on which this error is reported.
func (p *SyntaxError) Span() Span {
	return p.span
}

// Message returns the message to be reported.
func (p *SyntaxError) Message() string {
	return p.msg
}

// Error implements the error interface.
func (p *SyntaxError) Error() string {
	return fmt.Sprintf("%d:%d:%s", p.span.Start(), p.span.End(), p.Message())
}
