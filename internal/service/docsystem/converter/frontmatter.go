package converter

import (
	"bytes"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

var delimiter = []byte("---")

// Frontmatter is the YAML header of an exported or imported markdown file.
type Frontmatter struct {
	Title      string     `yaml:"title,omitempty"`
	Icon       string     `yaml:"icon,omitempty"`
	CoverImage string     `yaml:"cover_image,omitempty"`
	CreatedAt  *time.Time `yaml:"created_at,omitempty"`
	UpdatedAt  *time.Time `yaml:"updated_at,omitempty"`
}

// SplitFrontmatter separates a leading "---" YAML block from the body. Input
// without one returns an empty Frontmatter and the input unchanged.
func SplitFrontmatter(input []byte) (*Frontmatter, []byte, error) {
	fm := &Frontmatter{}
	text := bytes.TrimPrefix(input, []byte("\ufeff"))
	if !bytes.HasPrefix(text, delimiter) {
		return fm, input, nil
	}
	firstLine := bytes.IndexByte(text, '\n')
	if firstLine < 0 || len(bytes.TrimSpace(text[:firstLine])) != len(delimiter) {
		return fm, input, nil
	}

	rest := text[firstLine+1:]
	end := -1
	for off := 0; off < len(rest); {
		line := rest[off:]
		if nl := bytes.IndexByte(line, '\n'); nl >= 0 {
			line = line[:nl]
		}
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), delimiter) {
			end = off
			break
		}
		off += len(line) + 1
	}
	if end < 0 {
		return fm, input, nil
	}

	if err := yaml.Unmarshal(rest[:end], fm); err != nil {
		return nil, nil, fmt.Errorf("parse frontmatter: %w", err)
	}
	body := rest[end+len(delimiter):]
	body = bytes.TrimLeft(body, "\r\n")
	return fm, body, nil
}

// Marshal renders the frontmatter block including delimiters.
func (f *Frontmatter) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}
	var b bytes.Buffer
	b.Write(delimiter)
	b.WriteByte('\n')
	b.Write(data)
	b.Write(delimiter)
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
