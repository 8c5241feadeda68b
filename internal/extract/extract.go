// Package extract fetches a web page and pulls out its readable content as
// sanitized HTML.
package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/Priya-753/notion-clone/internal/config"
	"github.com/Priya-753/notion-clone/internal/domain"
	"github.com/Priya-753/notion-clone/internal/service/docsystem/converter/sanitizer"
)

const userAgent = "Mozilla/5.0 (compatible; notion-clone-parser/1.0)"

// Page is the readable part of a web page.
type Page struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Excerpt   string `json:"excerpt,omitempty"`
	Content   string `json:"content"`
	WordCount int    `json:"word_count"`
}

// Parser extracts a Page from a URL.
type Parser interface {
	Parse(ctx context.Context, rawURL string) (*Page, error)
}

// Extractor is a Parser that can also return the content alone, as the
// editor's parse-url command wants it.
type Extractor interface {
	Parser
	Extract(ctx context.Context, rawURL string) (string, error)
}

// HTTPExtractor fetches pages over HTTP.
type HTTPExtractor struct {
	client   *http.Client
	maxBytes int64
	sanitize *sanitizer.HTMLSanitizer
	logger   *slog.Logger
}

// NewHTTPExtractor creates an extractor whose fetches give up after timeout.
func NewHTTPExtractor(timeout time.Duration, logger *slog.Logger) *HTTPExtractor {
	return &HTTPExtractor{
		client:   &http.Client{Timeout: timeout},
		maxBytes: config.MaxExtractedBytes,
		sanitize: sanitizer.NewHTMLSanitizer(),
		logger:   logger,
	}
}

// ValidateURL checks that raw is an absolute http(s) URL.
func ValidateURL(raw string) (*url.URL, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, domain.NewValidation("URL is required")
	}
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, domain.NewValidation("Invalid URL format")
	}
	return u, nil
}

// Extract returns the readable content of a page as HTML.
func (x *HTTPExtractor) Extract(ctx context.Context, rawURL string) (string, error) {
	page, err := x.Parse(ctx, rawURL)
	if err != nil {
		return "", err
	}
	return page.Content, nil
}

// Parse fetches rawURL and extracts its main content.
func (x *HTTPExtractor) Parse(ctx context.Context, rawURL string) (*Page, error) {
	u, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, domain.NewValidation("Invalid URL format")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	start := time.Now()
	resp, err := x.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %v: %w", u, err, domain.ErrUpstream)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: status %d: %w", u, resp.StatusCode, domain.ErrUpstream)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" {
		mt, _, _ := mime.ParseMediaType(ct)
		if mt != "text/html" && mt != "application/xhtml+xml" {
			return nil, fmt.Errorf("fetch %s: unsupported content type %q: %w", u, mt, domain.ErrUpstream)
		}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, x.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %v: %w", u, err, domain.ErrUpstream)
	}

	// Redirects change the base for relative links.
	page := Readable(doc, resp.Request.URL, x.sanitize)
	x.logger.Debug("url parsed",
		"url", page.URL,
		"words", page.WordCount,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return page, nil
}

var noise = strings.Join([]string{
	"script", "style", "noscript", "template", "iframe", "svg", "canvas", "form",
	"nav", "header", "footer", "aside", "button", "input", "select",
	"[role=navigation]", "[role=banner]", "[role=contentinfo]", "[aria-hidden=true]",
	".advertisement", ".ads", ".share", ".social", ".comments", "#comments", ".cookie-banner",
}, ", ")

var candidates = []string{
	"article",
	"[itemprop=articleBody]",
	"main",
	"[role=main]",
	".post-content",
	".entry-content",
	".article-content",
	"#content",
	".content",
}

// Readable picks the main content of doc and sanitizes it. Relative links
// and image sources are resolved against base.
func Readable(doc *goquery.Document, base *url.URL, s *sanitizer.HTMLSanitizer) *Page {
	page := &Page{URL: base.String(), Title: title(doc), Excerpt: meta(doc, "og:description", "description")}

	doc.Find(noise).Remove()
	absolutize(doc, base)

	root := mainContent(doc)
	if root == nil {
		return page
	}
	markup, err := root.Html()
	if err != nil {
		return page
	}
	clean := strings.TrimSpace(s.Sanitize(markup))
	text := strings.Fields(root.Text())
	if len(text) == 0 {
		return page
	}
	page.Content = clean
	page.WordCount = len(text)
	return page
}

func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range candidates {
		found := doc.Find(sel).First()
		if found.Length() > 0 && strings.TrimSpace(found.Text()) != "" {
			return found
		}
	}

	// Densest block of paragraph text.
	var best *goquery.Selection
	bestScore := 0
	doc.Find("div, section").Each(func(_ int, s *goquery.Selection) {
		score := 0
		s.ChildrenFiltered("p").Each(func(_ int, p *goquery.Selection) {
			score += len(strings.Fields(p.Text()))
		})
		if score > bestScore {
			best, bestScore = s, score
		}
	})
	if best != nil {
		return best
	}

	body := doc.Find("body")
	if body.Length() == 0 {
		return nil
	}
	return body
}

func title(doc *goquery.Document) string {
	if t := meta(doc, "og:title"); t != "" {
		return t
	}
	if t := strings.TrimSpace(doc.Find("title").First().Text()); t != "" {
		return t
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

func meta(doc *goquery.Document, names ...string) string {
	for _, name := range names {
		sel := doc.Find(fmt.Sprintf(`meta[property=%q], meta[name=%q]`, name, name)).First()
		if v, ok := sel.Attr("content"); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func absolutize(doc *goquery.Document, base *url.URL) {
	for _, attr := range []string{"href", "src"} {
		doc.Find("[" + attr + "]").Each(func(_ int, s *goquery.Selection) {
			v, _ := s.Attr(attr)
			ref, err := url.Parse(strings.TrimSpace(v))
			if err != nil {
				s.RemoveAttr(attr)
				return
			}
			s.SetAttr(attr, base.ResolveReference(ref).String())
		})
	}
}
