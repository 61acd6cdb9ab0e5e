package render

import "context"

// Result is the outcome of rendering one page URL to PDF bytes. Err
// non-nil marks a render failure; PDF is nil in that case. The merger
// treats a failed render as "destination simply absent", not a fatal
// error for the whole assemble run.
type Result struct {
	URL string
	PDF []byte
	Err error
}

// Report is one TOC's outcome from a full assemble run.
type Report struct {
	TOCPath    string
	OutputPath string
	Pages      int
	Err        error
}

// Renderer turns a page URL into PDF bytes. ChromeRenderer is the only
// production implementation; tests may substitute a stub.
type Renderer interface {
	Render(ctx context.Context, pageURL string, opt Options) ([]byte, error)
}
