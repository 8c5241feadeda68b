package converter

import (
	"context"
	"maps"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/Priya-753/notion-clone/internal/domain"
	docsysSvc "github.com/Priya-753/notion-clone/internal/domain/services/docsystem"
)

// ConverterRegistry maps lowercase extensions (".md") to converters. Safe for
// concurrent use.
type ConverterRegistry struct {
	mu    sync.RWMutex
	byExt map[string]docsysSvc.ContentConverter
}

// NewConverterRegistry returns a registry with the markdown, text and HTML
// converters installed.
func NewConverterRegistry() *ConverterRegistry {
	r := &ConverterRegistry{byExt: map[string]docsysSvc.ContentConverter{}}
	for _, c := range []docsysSvc.ContentConverter{
		NewMarkdownConverter(),
		NewTextConverter(),
		NewHTMLConverter(),
	} {
		r.Register(c)
	}
	return r
}

// Register installs c for each of its extensions, replacing any previous
// converter for the same extension.
func (r *ConverterRegistry) Register(c docsysSvc.ContentConverter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ext := range c.SupportedExtensions() {
		r.byExt[normalizeExt(ext)] = c
	}
}

// GetConverter returns the converter for ext, or nil.
func (r *ConverterRegistry) GetConverter(ext string) docsysSvc.ContentConverter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byExt[normalizeExt(ext)]
}

// Convert runs the converter chosen by filename's extension.
func (r *ConverterRegistry) Convert(ctx context.Context, filename string, content []byte) (*docsysSvc.ConvertedContent, error) {
	ext := filepath.Ext(filename)
	c := r.GetConverter(ext)
	if c == nil {
		return nil, domain.NewValidation("unsupported file type: %q", ext)
	}
	return c.Convert(ctx, content)
}

// SupportedExtensions returns the registered extensions, sorted.
func (r *ConverterRegistry) SupportedExtensions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.byExt))
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
