package openapi

import "fmt"

// SpecParseError reports a malformed API description or an operation that
// lacks a required field. Line is 0 when the position is unknown.
type SpecParseError struct {
	Source string
	Line   int
	Reason string
	Err    error
}

func (e *SpecParseError) Error() string {
	msg := "parse api description"
	if e.Source != "" {
		msg += " " + e.Source
	}
	if e.Line > 0 {
		msg += fmt.Sprintf(" (line %d)", e.Line)
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SpecParseError) Unwrap() error { return e.Err }
