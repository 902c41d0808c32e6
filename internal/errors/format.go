package errors

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// style applies ANSI attributes when enabled.
type style bool

const (
	ansiReset = "\033[0m"
	ansiRed   = "\033[1;31m"
	ansiBold  = "\033[1m"
	ansiCyan  = "\033[36m"
	ansiGray  = "\033[90m"
)

func (s style) paint(code, text string) string {
	if !s {
		return text
	}
	return code + text + ansiReset
}

// Format returns the error as a multi-line report without colors.
func (e *VangoError) Format() string {
	return e.render(false)
}

func (e *VangoError) render(s style) string {
	var b strings.Builder

	b.WriteString(s.paint(ansiRed, "error"))
	if e.Code != "" {
		b.WriteString(s.paint(ansiBold, "["+e.Code+"]"))
	}
	b.WriteString(": ")
	b.WriteString(s.paint(ansiBold, e.Message))
	b.WriteString("\n")

	if e.Location != nil {
		fmt.Fprintf(&b, "  %s %s\n", s.paint(ansiCyan, "-->"), e.Location)
		for _, line := range e.Excerpt {
			marker := "  "
			if line.Number == e.Location.Line {
				marker = s.paint(ansiRed, "> ")
			}
			fmt.Fprintf(&b, "  %s%4d %s %s\n", marker, line.Number, s.paint(ansiGray, "|"), line.Text)
			if line.Number == e.Location.Line && e.Location.Column > 0 {
				fmt.Fprintf(&b, "         %s %s%s\n", s.paint(ansiGray, "|"),
					strings.Repeat(" ", e.Location.Column-1), s.paint(ansiRed, "^"))
			}
		}
	}

	for _, line := range wrapText(e.Detail, 72) {
		b.WriteString("  " + line + "\n")
	}
	if e.Wrapped != nil {
		b.WriteString("  " + s.paint(ansiGray, "caused by: ") + e.Wrapped.Error() + "\n")
	}
	if e.Suggestion != "" {
		b.WriteString("  " + s.paint(ansiCyan, "hint: ") + e.Suggestion + "\n")
	}
	return b.String()
}

// FormatCompact returns a single line: location, code and message.
func (e *VangoError) FormatCompact() string {
	var parts []string
	if e.Location != nil {
		parts = append(parts, e.Location.String())
	}
	if e.Code != "" {
		parts = append(parts, e.Code)
	}
	return strings.Join(append(parts, e.Message), ": ")
}

type jsonError struct {
	Code       string    `json:"code,omitempty"`
	Category   Category  `json:"category,omitempty"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	Location   *Location `json:"location,omitempty"`
	Suggestion string    `json:"suggestion,omitempty"`
	Cause      string    `json:"cause,omitempty"`
}

// MarshalJSON encodes the error for API responses. The excerpt is omitted.
func (e *VangoError) MarshalJSON() ([]byte, error) {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Location:   e.Location,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	return json.Marshal(out)
}

func wrapText(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}

// FprintError writes err to w. The first VangoError in the chain gets the
// full report; colors are used when w is a terminal.
func FprintError(w io.Writer, err error) {
	var s style
	if f, ok := w.(*os.File); ok {
		s = style(isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
	}

	ve := Find(err)
	if ve == nil {
		fmt.Fprintf(w, "%s: %s\n", s.paint(ansiRed, "error"), err)
		return
	}
	if ve != err {
		// Joined or wrapped: keep the outer text, which may list more
		// than one failure.
		fmt.Fprintf(w, "%s: %s\n", s.paint(ansiRed, "error"), err)
	}
	fmt.Fprint(w, ve.render(s))
}

// PrintError writes err to stderr.
func PrintError(err error) {
	FprintError(os.Stderr, err)
}
