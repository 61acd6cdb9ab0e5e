package render

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/chinmay-sawant/pdfassemble/internal/merge"
	"github.com/chinmay-sawant/pdfassemble/internal/outline"
)

// version is stamped into each merged PDF's /Creator entry.
const version = "0.1.0"

// Orchestrator discovers toc.json files under a root directory, renders
// every referenced page once, and merges each TOC into a sibling PDF.
type Orchestrator struct {
	Root     string
	Opt      Options
	Renderer Renderer
}

// NewOrchestrator builds an orchestrator backed by a real ChromeRenderer.
// The returned cleanup func must be called once the run (and any reuse of
// the same browser instance) is finished.
func NewOrchestrator(ctx context.Context, root string, opt Options) (*Orchestrator, func(), error) {
	cr := NewChromeRenderer(ctx, opt.Concurrency)
	return &Orchestrator{Root: root, Opt: opt, Renderer: cr}, cr.Close, nil
}

type discoveredTOC struct {
	path string // absolute path to toc.json
	rel  string // path relative to Root, used for href resolution
	root *outline.Node
}

// Run discovers every eligible TOC under o.Root, renders the union of
// their referenced pages once each, and writes one merged PDF per TOC.
// It never returns a partial output file: each destination is written to
// a ".tmp" sibling and renamed into place only after a successful flush.
func (o *Orchestrator) Run(ctx context.Context) ([]Report, error) {
	tocs, err := discoverTOCs(o.Root)
	if err != nil {
		return nil, fmt.Errorf("render: discover TOCs: %w", err)
	}
	if len(tocs) == 0 {
		log.Printf("render: no toc.json with enablePdf=true found under %s", o.Root)
		return nil, nil
	}

	srv, err := newStaticServer(o.Root)
	if err != nil {
		return nil, fmt.Errorf("render: start static server: %w", err)
	}
	defer func() { _ = srv.shutdown(context.Background()) }()

	resolver := outline.Resolver{ServerURL: srv.URL()}
	if o.Opt.BaseURL != "" {
		if u, err := url.Parse(o.Opt.BaseURL); err == nil {
			resolver.BaseURL = u
		} else {
			log.Printf("render: ignoring invalid baseUrl %q: %v", o.Opt.BaseURL, err)
		}
	}

	for _, t := range tocs {
		if err := resolver.ResolveTree(t.rel, t.root); err != nil {
			return nil, fmt.Errorf("render: resolve %s: %w", t.path, err)
		}
	}

	pageURLs := uniquePageURLs(tocs)

	results := &sync.Map{}
	renderGroup, renderCtx := errgroup.WithContext(ctx)
	for _, u := range pageURLs {
		u := u
		renderGroup.Go(func() error {
			pdf, err := o.Renderer.Render(renderCtx, u, o.Opt)
			if err != nil {
				log.Printf("render: %s: %v", u, err)
				results.Store(u, Result{URL: u, Err: err})
				return nil
			}
			results.Store(u, Result{URL: u, PDF: pdf})
			return nil
		})
	}
	if err := renderGroup.Wait(); err != nil {
		return nil, fmt.Errorf("render: page render phase: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("render: cancelled before merge phase: %w", err)
	}

	fetch := func(pageURL string) (io.Reader, bool) {
		v, ok := results.Load(pageURL)
		if !ok {
			return nil, false
		}
		r := v.(Result)
		if r.Err != nil || r.PDF == nil {
			return nil, false
		}
		return bytes.NewReader(r.PDF), true
	}

	reports := make([]Report, len(tocs))
	mergeGroup, _ := errgroup.WithContext(ctx)
	for i, t := range tocs {
		i, t := i, t
		mergeGroup.Go(func() error {
			reports[i] = mergeOne(t, fetch, o.Opt)
			return nil
		})
	}
	_ = mergeGroup.Wait()

	return reports, nil
}

// mergeOne writes one TOC's merged PDF to a ".tmp" sibling and renames it
// into place, removing the temp file on any failure. It never returns an
// error itself; failures are recorded on the returned Report so one
// failing TOC never aborts its siblings.
func mergeOne(t discoveredTOC, fetch merge.Fetcher, opt Options) Report {
	outPath := strings.TrimSuffix(t.path, ".json") + ".pdf"
	tmpPath := outPath + ".tmp"

	rep := Report{TOCPath: t.path, OutputPath: outPath}

	f, err := os.Create(tmpPath)
	if err != nil {
		rep.Err = fmt.Errorf("render: create %s: %w", tmpPath, err)
		return rep
	}

	stats, err := merge.Assemble(f, t.root, fetch, merge.Options{ToolName: "pdfassemble", ToolVersion: version})
	closeErr := f.Close()
	if err != nil {
		_ = os.Remove(tmpPath)
		rep.Err = fmt.Errorf("render: merge %s: %w", t.path, err)
		return rep
	}
	if closeErr != nil {
		_ = os.Remove(tmpPath)
		rep.Err = fmt.Errorf("render: close %s: %w", tmpPath, closeErr)
		return rep
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		_ = os.Remove(tmpPath)
		rep.Err = fmt.Errorf("render: rename %s: %w", tmpPath, err)
		return rep
	}

	rep.Pages = stats.Pages
	return rep
}

// discoverTOCs walks root for every toc.json file, parsing and keeping
// only trees whose root node enables PDF generation.
func discoverTOCs(root string) ([]discoveredTOC, error) {
	var out []discoveredTOC
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Base(path) != "toc.json" {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("render: read %s: %w", path, err)
		}
		node, enabled, err := outline.Parse(data)
		if err != nil {
			return fmt.Errorf("render: parse %s: %w", path, err)
		}
		if !enabled {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			rel = path
		}
		out = append(out, discoveredTOC{path: path, rel: filepath.ToSlash(rel), root: node})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// uniquePageURLs collects every distinct internal page URL referenced by
// any TOC, in first-encounter order across TOCs, so render results are
// computed exactly once even when multiple TOCs link the same page.
func uniquePageURLs(tocs []discoveredTOC) []string {
	seen := make(map[string]struct{})
	var urls []string
	for _, t := range tocs {
		outline.Walk(t.root, func(n *outline.Node) {
			if n.PageURL == nil {
				return
			}
			u := n.PageURL.String()
			if _, ok := seen[u]; ok {
				return
			}
			seen[u] = struct{}{}
			urls = append(urls, u)
		})
	}
	return urls
}
