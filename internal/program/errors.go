package program

import "fmt"

// ParseError reports a malformed scenario file.
//
// Fields:
//   - File: scenario path ("" when parsed from a reader)
//   - Line: line number (1-indexed)
//   - Column: column number (1-indexed)
//   - Message: human-readable error description
//   - Suggestion: optional hint for fixing the error
//
// Example:
//
//	err := &ParseError{File: "abba.lm", Line: 4, Column: 3, Message: `unknown instruction "aquire"`,
//	    Suggestion: `did you mean "acquire"?`}
//	fmt.Println(err)
//	// abba.lm:4:3: unknown instruction "aquire"
//	//
//	// Suggestion: did you mean "acquire"?
//
// Thread Safety: Immutable after creation, safe for concurrent use.
type ParseError struct {
	File       string
	Line       int
	Column     int
	Message    string
	Suggestion string
}

// Error implements the error interface.
//
// Format: file:line:column: message, followed by the suggestion on its own
// paragraph when there is one.
func (e *ParseError) Error() string {
	file := e.File
	if file == "" {
		file = "<input>"
	}
	result := fmt.Sprintf("%s:%d:%d: %s", file, e.Line, e.Column, e.Message)
	if e.Suggestion != "" {
		result += fmt.Sprintf("\n\nSuggestion: %s", e.Suggestion)
	}
	return result
}

func newParseError(file string, line, col int, format string, args ...any) *ParseError {
	return &ParseError{
		File:    file,
		Line:    line,
		Column:  col,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *ParseError) withSuggestion(format string, args ...any) *ParseError {
	e.Suggestion = fmt.Sprintf(format, args...)
	return e
}
