package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{
			name:    "tree error",
			code:    "E200",
			wantMsg: "Invalid tree document",
			wantCat: CategoryTree,
		},
		{
			name:    "reconcile error",
			code:    "E201",
			wantMsg: "Unresolvable patch address",
			wantCat: CategoryReconcile,
		},
		{
			name:    "storage error",
			code:    "E220",
			wantMsg: "Snapshot not found",
			wantCat: CategoryStorage,
		},
		{
			name:    "unknown error code",
			code:    "E999",
			wantMsg: "Unknown error",
			wantCat: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestErrorf(t *testing.T) {
	err := Errorf("E201", "route %s", "0.3")
	want := "E201: Unresolvable patch address: route 0.3"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestVangoError_Error(t *testing.T) {
	err := New("E202")
	want := "E202: Patch target is not an element"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}

	// Without code
	err2 := &VangoError{Message: "test error"}
	if err2.Error() != "test error" {
		t.Errorf("Error() = %q, want %q", err2.Error(), "test error")
	}
}

func TestVangoError_Is(t *testing.T) {
	err := fmt.Errorf("apply: %w", Errorf("E201", "route 0.1"))

	if !stderrors.Is(err, New("E201")) {
		t.Error("errors.Is should match by code")
	}
	if stderrors.Is(err, New("E202")) {
		t.Error("errors.Is should not match a different code")
	}
	if stderrors.Is(err, &VangoError{Message: "x"}) {
		t.Error("errors.Is should not match an uncoded error")
	}
}

func TestCodeOf(t *testing.T) {
	joined := stderrors.Join(stderrors.New("plain"), fmt.Errorf("wrap: %w", New("E221")))

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", stderrors.New("x"), ""},
		{"direct", New("E200"), "E200"},
		{"joined", joined, "E221"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CodeOf(tt.err); got != tt.want {
				t.Errorf("CodeOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestVangoError_WithLocation(t *testing.T) {
	tmpDir := t.TempDir()
	tmpFile := filepath.Join(tmpDir, "tree.yaml")
	content := `tag: ul
children:
  - tag: li
    attrs: {key: "1"}
    children: [{text: a}]
  - bogus: true
`
	if err := os.WriteFile(tmpFile, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	err := New("E200").WithLocation(tmpFile, 6, 5)

	if err.Location == nil {
		t.Fatal("Location is nil")
	}
	if err.Location.File != tmpFile {
		t.Errorf("Location.File = %q, want %q", err.Location.File, tmpFile)
	}
	if err.Location.Line != 6 || err.Location.Column != 5 {
		t.Errorf("Location = %d:%d, want 6:5", err.Location.Line, err.Location.Column)
	}
	want := []SourceLine{
		{4, `    attrs: {key: "1"}`},
		{5, "    children: [{text: a}]"},
		{6, "  - bogus: true"},
	}
	if diff := cmp.Diff(want, err.Excerpt); diff != "" {
		t.Errorf("Excerpt mismatch (-want +got):\n%s", diff)
	}
}

func TestVangoError_Builders(t *testing.T) {
	err := New("E201").
		WithSuggestion("Render into a fresh container").
		WithDetail("Custom detail")

	if err.Suggestion != "Render into a fresh container" {
		t.Errorf("Suggestion = %q", err.Suggestion)
	}
	if err.Detail != "Custom detail" {
		t.Errorf("Detail = %q, want %q", err.Detail, "Custom detail")
	}
}

func TestVangoError_Wrap(t *testing.T) {
	inner := New("E222")
	outer := New("E141").Wrap(inner)

	if outer.Wrapped != inner {
		t.Error("Wrapped error mismatch")
	}
	if outer.Unwrap() != inner {
		t.Error("Unwrap() should return wrapped error")
	}
}

func TestLocation_String(t *testing.T) {
	tests := []struct {
		name string
		loc  *Location
		want string
	}{
		{"nil location", nil, ""},
		{"with column", &Location{File: "tree.yaml", Line: 10, Column: 5}, "tree.yaml:10:5"},
		{"without column", &Location{File: "tree.yaml", Line: 10}, "tree.yaml:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.loc.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormat(t *testing.T) {
	err := Errorf("E201", "route 0.2").
		WithSuggestion("Re-render from scratch").
		Wrap(stderrors.New("dom: node is not a child of this node"))
	err.Location = &Location{File: "tree.yaml", Line: 3, Column: 2}
	err.Excerpt = []SourceLine{{2, "a"}, {3, "bc"}, {4, "d"}}

	want := `error[E201]: Unresolvable patch address: route 0.2
  --> tree.yaml:3:2
       2 | a
  >    3 | bc
         |  ^
       4 | d
  No live node exists at the patch route. The live tree was likely changed
  outside of reconciliation since the previous pass.
  caused by: dom: node is not a child of this node
  hint: Re-render from scratch
`
	if diff := cmp.Diff(want, err.Format()); diff != "" {
		t.Errorf("Format() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("E200")
	err.Location = &Location{File: "tree.yaml", Line: 4}
	if got := err.FormatCompact(); got != "tree.yaml:4: E200: Invalid tree document" {
		t.Errorf("FormatCompact() = %q", got)
	}
	if got := (&VangoError{Message: "plain"}).FormatCompact(); got != "plain" {
		t.Errorf("FormatCompact() = %q, want plain", got)
	}
}

func TestMarshalJSON(t *testing.T) {
	err := New("E221").Wrap(stderrors.New("msgpack: short buffer"))
	err.Location = &Location{File: "a.yaml", Line: 2}
	data, jerr := json.Marshal(err)
	if jerr != nil {
		t.Fatalf("json.Marshal() error = %v", jerr)
	}

	var got map[string]any
	if jerr := json.Unmarshal(data, &got); jerr != nil {
		t.Fatalf("json.Unmarshal() error = %v", jerr)
	}
	want := map[string]any{
		"code":     "E221",
		"category": "storage",
		"message":  "Snapshot decode failed",
		"detail":   New("E221").Detail,
		"location": map[string]any{"file": "a.yaml", "line": float64(2)},
		"cause":    "msgpack: short buffer",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("MarshalJSON() mismatch (-want +got):\n%s", diff)
	}
}

func TestFprintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []string
	}{
		{"plain", stderrors.New("boom"), []string{"error: boom\n"}},
		{"coded", New("E140"), []string{"error[E140]: Input file not readable\n"}},
		{
			"joined",
			stderrors.Join(New("E201"), stderrors.New("second")),
			[]string{"error: E201: Unresolvable patch address\nsecond\n", "error[E201]"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			FprintError(&buf, tt.err)
			for _, want := range tt.want {
				if !strings.Contains(buf.String(), want) {
					t.Errorf("FprintError() = %q, want it to contain %q", buf.String(), want)
				}
			}
			if strings.Contains(buf.String(), "\033[") {
				t.Errorf("FprintError() wrote colors to a non-terminal: %q", buf.String())
			}
		})
	}
}

func TestRegistryCodes(t *testing.T) {
	codes := GetAllCodes()
	if len(codes) == 0 {
		t.Fatal("registry is empty")
	}
	for _, code := range codes {
		tmpl, ok := GetTemplate(code)
		if !ok || tmpl.Message == "" || tmpl.Category == "" {
			t.Errorf("template %s = %+v, want message and category", code, tmpl)
		}
	}
}

func TestRegister(t *testing.T) {
	Register("E299", ErrorTemplate{Category: CategoryCLI, Message: "Custom"})
	defer delete(registry, "E299")

	if got := New("E299").Message; got != "Custom" {
		t.Errorf("Message = %q, want Custom", got)
	}
}

func TestWrapText(t *testing.T) {
	lines := wrapText("one two three four five six", 10)
	for _, line := range lines {
		if len(line) > 10 {
			t.Errorf("line %q longer than 10", line)
		}
	}
	if strings.Join(lines, " ") != "one two three four five six" {
		t.Errorf("wrapText lost words: %v", lines)
	}
	if wrapText("", 10) != nil {
		t.Error("empty text should give nil")
	}
}
