package export

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/Priya-753/notion-clone/internal/domain"
)

// ErrPDFUnavailable is returned when no headless Chrome can be found.
var ErrPDFUnavailable = fmt.Errorf("pdf export needs chrome or chromium: %w", domain.ErrUnavailable)

const pdfTimeout = 30 * time.Second

var chromeNames = []string{"chromium", "chromium-browser", "google-chrome", "google-chrome-stable", "headless-shell"}

// ChromePDF prints pages with headless Chrome.
type ChromePDF struct {
	execPath string
}

// NewChromePDF finds a Chrome binary. path overrides the search; an empty
// path searches PATH. It returns ErrPDFUnavailable when none is found.
func NewChromePDF(path string) (*ChromePDF, error) {
	if path != "" {
		if _, err := exec.LookPath(path); err != nil {
			return nil, ErrPDFUnavailable
		}
		return &ChromePDF{execPath: path}, nil
	}
	for _, name := range chromeNames {
		if found, err := exec.LookPath(name); err == nil {
			return &ChromePDF{execPath: found}, nil
		}
	}
	return nil, ErrPDFUnavailable
}

// Render prints html on US Letter paper with 0.75in margins.
func (c *ChromePDF) Render(ctx context.Context, html string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, pdfTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(c.execPath),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	taskCtx, cancelTask := chromedp.NewContext(allocCtx)
	defer cancelTask()

	var pdf []byte
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(dataURL(html)),
		chromedp.WaitReady("body"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			pdf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.5).
				WithPaperHeight(11.0).
				WithMarginTop(0.75).
				WithMarginBottom(0.75).
				WithMarginLeft(0.75).
				WithMarginRight(0.75).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, ErrPDFUnavailable
		}
		return nil, errorf("print pdf: %w", err)
	}
	return pdf, nil
}

// dataURL percent-encodes html; spaces must be %20, not "+".
func dataURL(html string) string {
	return "data:text/html;charset=utf-8," + strings.ReplaceAll(url.QueryEscape(html), "+", "%20")
}
