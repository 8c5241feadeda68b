package sanitizer

import (
	"strings"
	"testing"
)

func TestHTMLSanitizer(t *testing.T) {
	s := NewHTMLSanitizer()
	tests := []struct {
		name    string
		input   string
		keep    []string
		dropped []string
	}{
		{
			name:    "script",
			input:   `<p>hi</p><script>alert(1)</script>`,
			keep:    []string{"<p>hi</p>"},
			dropped: []string{"script", "alert"},
		},
		{
			name:    "event handler",
			input:   `<p onclick="x()">a</p>`,
			keep:    []string{"<p>a</p>"},
			dropped: []string{"onclick"},
		},
		{
			name:    "javascript url",
			input:   `<a href="javascript:alert(1)">x</a>`,
			dropped: []string{"javascript"},
		},
		{
			name:  "formatting",
			input: `<h2>T</h2><ul><li><strong>b</strong></li></ul>`,
			keep:  []string{"<h2>T</h2>", "<strong>b</strong>"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.Sanitize(tt.input)
			for _, k := range tt.keep {
				if !strings.Contains(got, k) {
					t.Errorf("missing %q in %q", k, got)
				}
			}
			for _, d := range tt.dropped {
				if strings.Contains(got, d) {
					t.Errorf("kept %q in %q", d, got)
				}
			}
		})
	}
}

func TestContentSanitizerKeepsEditorMarkup(t *testing.T) {
	s := NewContentSanitizer()
	keep := []string{
		`<span data-type="inline-math" data-latex="x^2"></span>`,
		`<div data-type="block-math" data-latex="\sum"></div>`,
		`<ul data-type="taskList"><li data-type="taskItem" data-checked="true"><p>done</p></li></ul>`,
	}
	for _, in := range keep {
		if got := s.Sanitize(in); got != in {
			t.Errorf("Sanitize(%q) = %q", in, got)
		}
	}

	if got := s.Sanitize(`<iframe src="https://evil.example.com/"></iframe>`); strings.Contains(got, "evil") {
		t.Errorf("foreign iframe kept: %q", got)
	}
	if got := s.Sanitize(`<span data-type="script">x</span>`); strings.Contains(got, "data-type") {
		t.Errorf("unknown data-type kept: %q", got)
	}
}

func TestStrictHTMLSanitizer(t *testing.T) {
	if got := NewStrictHTMLSanitizer().Sanitize(`<p>plain <b>text</b></p>`); got != "plain text" {
		t.Errorf("got %q", got)
	}
}
