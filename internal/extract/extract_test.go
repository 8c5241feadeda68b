package extract

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Priya-753/notion-clone/internal/domain"
)

const articlePage = `<!doctype html>
<html><head>
<title>Fallback title</title>
<meta property="og:title" content="Go Concurrency">
<meta name="description" content="Patterns for pipelines.">
</head><body>
<nav><a href="/">Home</a></nav>
<article>
<h1>Go Concurrency</h1>
<p>Channels connect <a href="/goroutines">goroutines</a>.</p>
<script>alert(1)</script>
<p onclick="steal()">Select waits on several.</p>
<img src="img/diagram.png" alt="diagram">
</article>
<footer>Copyright</footer>
</body></html>`

func discard() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func serve(t *testing.T, status int, contentType, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestParseArticle(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, "text/html; charset=utf-8", articlePage)
	x := NewHTTPExtractor(time.Second, discard())

	page, err := x.Parse(context.Background(), srv.URL+"/posts/1")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if page.Title != "Go Concurrency" {
		t.Errorf("title = %q", page.Title)
	}
	if page.Excerpt != "Patterns for pipelines." {
		t.Errorf("excerpt = %q", page.Excerpt)
	}

	for _, want := range []string{"Channels connect", "Select waits on several.", `href="` + srv.URL + `/goroutines"`, srv.URL + "/posts/img/diagram.png"} {
		if !strings.Contains(page.Content, want) {
			t.Errorf("content missing %q:\n%s", want, page.Content)
		}
	}
	for _, unwanted := range []string{"<script", "alert", "onclick", "Home", "Copyright"} {
		if strings.Contains(page.Content, unwanted) {
			t.Errorf("content contains %q:\n%s", unwanted, page.Content)
		}
	}
	if page.WordCount == 0 {
		t.Error("word count not set")
	}
}

func TestParseDensestBlock(t *testing.T) {
	body := `<html><body>
<div class="sidebar"><p>Links</p></div>
<div class="story"><p>The first paragraph has several words.</p><p>So does the second one here.</p></div>
</body></html>`
	srv, _ := serve(t, http.StatusOK, "text/html", body)

	content, err := NewHTTPExtractor(time.Second, discard()).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(content, "second one") || strings.Contains(content, "Links") {
		t.Errorf("content = %s", content)
	}
}

func TestParseEmptyPage(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, "text/html", `<html><body><script>x()</script></body></html>`)
	content, err := NewHTTPExtractor(time.Second, discard()).Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if content != "" {
		t.Errorf("content = %q, want empty", content)
	}
}

func TestParseErrors(t *testing.T) {
	notFound, _ := serve(t, http.StatusNotFound, "text/html", "gone")
	binary, _ := serve(t, http.StatusOK, "application/pdf", "%PDF")

	tests := []struct {
		name string
		url  string
		want error
		msg  string
	}{
		{"empty", "  ", domain.ErrValidation, "URL is required"},
		{"relative", "/just/a/path", domain.ErrValidation, "Invalid URL format"},
		{"bad scheme", "ftp://example.com/file", domain.ErrValidation, "Invalid URL format"},
		{"status", notFound.URL, domain.ErrUpstream, ""},
		{"content type", binary.URL, domain.ErrUpstream, ""},
	}
	x := NewHTTPExtractor(time.Second, discard())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := x.Parse(context.Background(), tt.url)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if tt.msg != "" && err.Error() != tt.msg {
				t.Errorf("message = %q, want %q", err.Error(), tt.msg)
			}
		})
	}
}

func setupCache(t *testing.T, next Parser) (*CachedExtractor, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewCachedExtractor(next, client, time.Minute, discard()), mr
}

func TestCachedExtractorServesRepeats(t *testing.T) {
	srv, hits := serve(t, http.StatusOK, "text/html", articlePage)
	cached, mr := setupCache(t, NewHTTPExtractor(time.Second, discard()))
	ctx := context.Background()

	first, err := cached.Extract(ctx, srv.URL)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := cached.Extract(ctx, srv.URL)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if first != second {
		t.Error("cached content differs")
	}
	if n := hits.Load(); n != 1 {
		t.Errorf("origin fetched %d times, want 1", n)
	}

	mr.FastForward(2 * time.Minute)
	if _, err := cached.Extract(ctx, srv.URL); err != nil {
		t.Fatalf("after expiry: %v", err)
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("origin fetched %d times after expiry, want 2", n)
	}
}

func TestCachedExtractorSkipsFailures(t *testing.T) {
	srv, hits := serve(t, http.StatusBadGateway, "text/html", "")
	cached, _ := setupCache(t, NewHTTPExtractor(time.Second, discard()))

	for i := 0; i < 2; i++ {
		if _, err := cached.Extract(context.Background(), srv.URL); !errors.Is(err, domain.ErrUpstream) {
			t.Fatalf("err = %v, want upstream", err)
		}
	}
	if n := hits.Load(); n != 2 {
		t.Errorf("origin fetched %d times, want 2", n)
	}
}

func TestCachedExtractorSurvivesRedisOutage(t *testing.T) {
	srv, _ := serve(t, http.StatusOK, "text/html", articlePage)
	// Nothing listens on port 1.
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { client.Close() })
	cached := NewCachedExtractor(NewHTTPExtractor(time.Second, discard()), client, time.Minute, discard())

	content, err := cached.Extract(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if !strings.Contains(content, "Channels connect") {
		t.Errorf("content = %s", content)
	}
}
