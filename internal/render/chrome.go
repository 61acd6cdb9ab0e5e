package render

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// ChromeRenderer drives a pool of headless Chrome tabs through the
// Chrome DevTools Protocol to turn a page URL into PDF bytes via
// Page.printToPDF. One ChromeRenderer owns one browser process and a
// fixed-size pool of reusable tabs; concurrent Render calls acquire and
// release tabs from that pool rather than spawning a new one each time.
type ChromeRenderer struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	pool        *tabPool
}

// NewChromeRenderer launches a headless Chrome instance rooted at ctx
// with a tab pool sized to concurrency. The returned renderer must be
// closed with Close when no longer needed so the underlying browser
// process is killed.
func NewChromeRenderer(ctx context.Context, concurrency int) *ChromeRenderer {
	allocCtx, cancel := chromedp.NewExecAllocator(ctx, chromedp.DefaultExecAllocatorOptions[:]...)
	return &ChromeRenderer{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		pool:        newTabPool(allocCtx, concurrency),
	}
}

// Close releases the browser process.
func (r *ChromeRenderer) Close() {
	r.cancelAlloc()
}

// Render acquires a pooled tab, navigates it to pageURL, waits for the
// page to settle, prints to PDF, and returns the tab to the pool. It
// never retries; a failed navigation (including no response or a status
// outside 2xx) or print surfaces as a non-nil error and the tab is still
// returned for reuse.
func (r *ChromeRenderer) Render(ctx context.Context, pageURL string, opt Options) ([]byte, error) {
	tab, err := r.pool.acquire()
	if err != nil {
		return nil, fmt.Errorf("render: acquire tab: %w", err)
	}
	defer r.pool.release(tab)

	tabCtx, timeoutCancel := context.WithTimeout(*tab, 60*time.Second)
	defer timeoutCancel()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(pageURL))
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", pageURL, err)
	}
	if resp == nil || resp.Status < 200 || resp.Status > 299 {
		return nil, fmt.Errorf("render: %s: navigation returned no OK response", pageURL)
	}

	var pdf []byte
	err = chromedp.Run(tabCtx,
		chromedp.WaitReady("body"),
		printToPDFAction(&pdf, opt),
	)
	if err != nil {
		return nil, fmt.Errorf("render: %s: %w", pageURL, err)
	}
	return pdf, nil
}

// printToPDFAction builds the Page.printToPDF call from Options; margins
// are parsed leniently (a bad value simply falls back to Chrome's own
// default for that field, which printToPDF already applies when the
// parameter is omitted).
func printToPDFAction(dst *[]byte, opt Options) chromedp.ActionFunc {
	return func(ctx context.Context) error {
		params := page.PrintToPDF().
			WithDisplayHeaderFooter(opt.DisplayHeaderFooter).
			WithHeaderTemplate(opt.HeaderTemplate).
			WithFooterTemplate(opt.FooterTemplate).
			WithLandscape(opt.Landscape).
			WithPrintBackground(opt.PrintBackground)

		if v, ok := parseInches(opt.Margin.Top); ok {
			params = params.WithMarginTop(v)
		}
		if v, ok := parseInches(opt.Margin.Right); ok {
			params = params.WithMarginRight(v)
		}
		if v, ok := parseInches(opt.Margin.Bottom); ok {
			params = params.WithMarginBottom(v)
		}
		if v, ok := parseInches(opt.Margin.Left); ok {
			params = params.WithMarginLeft(v)
		}
		if w, h, ok := pageSize(opt.Format); ok {
			params = params.WithPaperWidth(w).WithPaperHeight(h)
		}

		data, _, err := params.Do(ctx)
		if err != nil {
			return err
		}
		*dst = data
		return nil
	}
}

func parseInches(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// pageSize returns width/height in inches for the small set of paper
// formats this tool recognizes; an unrecognized format leaves printToPDF
// to use its own default (Letter).
func pageSize(format string) (float64, float64, bool) {
	switch format {
	case "Letter", "":
		return 8.5, 11, true
	case "Legal":
		return 8.5, 14, true
	case "A4":
		return 8.27, 11.69, true
	case "A3":
		return 11.69, 16.54, true
	default:
		return 0, 0, false
	}
}
