package errors

import (
	"bufio"
	stderrors "errors"
	"fmt"
	"os"
)

// Category represents the type of error.
type Category string

const (
	CategoryTree      Category = "tree"
	CategoryReconcile Category = "reconcile"
	CategoryStorage   Category = "storage"
	CategoryProtocol  Category = "protocol"
	CategoryConfig    Category = "config"
	CategoryCLI       Category = "cli"
)

// Location represents a position in a tree document.
type Location struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column,omitempty"`
}

// String returns the location as a formatted string.
func (l *Location) String() string {
	if l == nil {
		return ""
	}
	if l.Column > 0 {
		return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// SourceLine is one numbered line of a document excerpt.
type SourceLine struct {
	Number int
	Text   string
}

// VangoError is a structured error with a registered code, an optional
// document location, and a fix suggestion.
type VangoError struct {
	// Code is a unique error identifier (e.g., "E201").
	Code string

	// Category is the error type (tree, reconcile, etc.).
	Category Category

	// Message is a short description of the error.
	Message string

	// Detail is a longer explanation of the error.
	Detail string

	// Location is the document position the error refers to.
	Location *Location

	// Excerpt holds the document lines around Location.
	Excerpt []SourceLine

	// Suggestion is a hint on how to fix the error.
	Suggestion string

	// Wrapped is the underlying error, if any.
	Wrapped error
}

// Error implements the error interface.
func (e *VangoError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Message
}

// Unwrap returns the wrapped error for errors.Is/As support.
func (e *VangoError) Unwrap() error {
	return e.Wrapped
}

// WithLocation adds source location to the error.
func (e *VangoError) WithLocation(file string, line, column int) *VangoError {
	e.Location = &Location{File: file, Line: line, Column: column}
	e.Excerpt = readExcerpt(file, line, 2)
	return e
}

// WithSuggestion adds a fix suggestion to the error.
func (e *VangoError) WithSuggestion(s string) *VangoError {
	e.Suggestion = s
	return e
}

// WithDetail adds a detailed explanation to the error.
func (e *VangoError) WithDetail(d string) *VangoError {
	e.Detail = d
	return e
}

// Wrap wraps another error.
func (e *VangoError) Wrap(err error) *VangoError {
	e.Wrapped = err
	return e
}

// Is reports whether target is a VangoError with the same code, so that
// errors.Is(err, errors.New("E201")) matches any unresolvable address.
func (e *VangoError) Is(target error) bool {
	t, ok := target.(*VangoError)
	if !ok || t.Code == "" {
		return false
	}
	return e.Code == t.Code
}

// readExcerpt returns the lines of filename within radius of line.
func readExcerpt(filename string, line, radius int) []SourceLine {
	file, err := os.Open(filename)
	if err != nil {
		return nil
	}
	defer file.Close()

	var lines []SourceLine
	scanner := bufio.NewScanner(file)
	for n := 1; scanner.Scan() && n <= line+radius; n++ {
		if n >= line-radius {
			lines = append(lines, SourceLine{Number: n, Text: scanner.Text()})
		}
	}
	return lines
}

// New creates a VangoError from a registered error code.
func New(code string) *VangoError {
	template, ok := registry[code]
	if !ok {
		return &VangoError{
			Code:    code,
			Message: "Unknown error",
		}
	}
	return &VangoError{
		Code:     code,
		Category: template.Category,
		Message:  template.Message,
		Detail:   template.Detail,
	}
}

// Errorf creates a VangoError from a registered code, appending the
// formatted text to the registered message.
func Errorf(code, format string, args ...any) *VangoError {
	e := New(code)
	e.Message += ": " + fmt.Sprintf(format, args...)
	return e
}

// Find returns the first VangoError in err's chain, or nil.
func Find(err error) *VangoError {
	var ve *VangoError
	if stderrors.As(err, &ve) {
		return ve
	}
	return nil
}

// CodeOf returns the code of the first VangoError in err's chain, or "".
func CodeOf(err error) string {
	if ve := Find(err); ve != nil {
		return ve.Code
	}
	return ""
}
