package docsystem

import (
	"reflect"
	"testing"

	"github.com/Priya-753/notion-clone/internal/domain/models/docsystem"
)

func TestSearchOptions_ApplyDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    *docsystem.SearchOptions
		expected *docsystem.SearchOptions
	}{
		{
			name:  "applies all defaults",
			input: &docsystem.SearchOptions{Query: "test", OwnerID: "user-123"},
			expected: &docsystem.SearchOptions{
				Query:    "test",
				OwnerID:  "user-123",
				Fields:   []docsystem.SearchField{docsystem.SearchFieldTitle, docsystem.SearchFieldContent},
				Limit:    20,
				Language: "english",
				Strategy: docsystem.SearchStrategySubstring,
			},
		},
		{
			name: "preserves custom values",
			input: &docsystem.SearchOptions{
				Query:    "test",
				OwnerID:  "user-123",
				Fields:   []docsystem.SearchField{docsystem.SearchFieldTitle},
				Limit:    50,
				Offset:   10,
				Language: "spanish",
				Strategy: docsystem.SearchStrategyFullText,
			},
			expected: &docsystem.SearchOptions{
				Query:    "test",
				OwnerID:  "user-123",
				Fields:   []docsystem.SearchField{docsystem.SearchFieldTitle},
				Limit:    50,
				Offset:   10,
				Language: "spanish",
				Strategy: docsystem.SearchStrategyFullText,
			},
		},
		{
			name:  "corrects negative offset",
			input: &docsystem.SearchOptions{Query: "test", OwnerID: "user-123", Offset: -5, Archived: true},
			expected: &docsystem.SearchOptions{
				Query:    "test",
				OwnerID:  "user-123",
				Archived: true,
				Fields:   []docsystem.SearchField{docsystem.SearchFieldTitle, docsystem.SearchFieldContent},
				Limit:    20,
				Language: "english",
				Strategy: docsystem.SearchStrategySubstring,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.ApplyDefaults()
			if !reflect.DeepEqual(tt.input, tt.expected) {
				t.Errorf("ApplyDefaults() = %+v, want %+v", tt.input, tt.expected)
			}
		})
	}
}

func TestSearchOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		opts    docsystem.SearchOptions
		wantErr bool
	}{
		{"valid", docsystem.SearchOptions{OwnerID: "u", Query: "q", Limit: 10}, false},
		{"missing owner", docsystem.SearchOptions{Query: "q"}, true},
		{"empty query", docsystem.SearchOptions{OwnerID: "u"}, true},
		{"limit too large", docsystem.SearchOptions{OwnerID: "u", Query: "q", Limit: 101}, true},
		{"bad field", docsystem.SearchOptions{OwnerID: "u", Query: "q", Fields: []docsystem.SearchField{"icon"}}, true},
		{"bad strategy", docsystem.SearchOptions{OwnerID: "u", Query: "q", Strategy: "vector"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"plain":   "plain",
		"50%":     `50\%`,
		"a_b":     `a\_b`,
		`back\sl`: `back\\sl`,
	}
	for in, want := range tests {
		if got := EscapeLike(in); got != want {
			t.Errorf("EscapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
