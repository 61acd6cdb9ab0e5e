package render

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chinmay-sawant/pdfassemble/internal/outline"
)

// stubRenderer returns a fixed single-page PDF fixture for every URL it's
// asked to render, so orchestrator tests never touch a real browser.
type stubRenderer struct {
	pdf []byte
	err error
}

func (s stubRenderer) Render(ctx context.Context, pageURL string, opt Options) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.pdf, nil
}

const fixturePage = "" +
	"1 0 obj\n<< /Producer (headless) >>\nendobj\n" +
	"2 0 obj\n<< /Type /Page\n/Parent 5 0 R >>\nendobj\n" +
	"3 0 obj\n<< /Type /StructElem\n/S /Document\n/K [2 0 R] >>\nendobj\n" +
	"4 0 obj\n<< /Type /ParentTree\n/Nums [0 3 0 R] >>\nendobj\n" +
	"5 0 obj\n<< /Type /Catalog /Pages 6 0 R >>\nendobj\n" +
	"6 0 obj\n<< /Type /Pages /Kids [2 0 R] /Count 1 >>\nendobj\n"

func writeTOC(t *testing.T, dir string, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "toc.json"), []byte(body), 0o644))
}

func TestOrchestratorRunMergesEligibleTOC(t *testing.T) {
	dir := t.TempDir()
	writeTOC(t, dir, `{"enablePdf": true, "name": "Doc", "items": [{"name": "Page", "href": "p.html"}]}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "p.html"), []byte("<html></html>"), 0o644))

	orch := &Orchestrator{
		Root:     dir,
		Opt:      Options{Concurrency: 1},
		Renderer: stubRenderer{pdf: []byte(fixturePage)},
	}

	reports, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.NoError(t, reports[0].Err)
	require.Equal(t, 1, reports[0].Pages)

	_, statErr := os.Stat(reports[0].OutputPath)
	require.NoError(t, statErr)

	data, err := os.ReadFile(reports[0].OutputPath)
	require.NoError(t, err)
	require.Contains(t, string(data), "%PDF-1.4")
	require.Contains(t, string(data), "%%EOF")
}

func TestOrchestratorRunSkipsDisabledTOC(t *testing.T) {
	dir := t.TempDir()
	writeTOC(t, dir, `{"enablePdf": false, "name": "Doc"}`)

	orch := &Orchestrator{Root: dir, Opt: Options{Concurrency: 1}, Renderer: stubRenderer{}}
	reports, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Empty(t, reports)
}

func TestOrchestratorRunHandlesRenderFailureWithoutAbortingMerge(t *testing.T) {
	dir := t.TempDir()
	writeTOC(t, dir, `{"enablePdf": true, "name": "Doc", "items": [{"name": "Page", "href": "p.html"}]}`)

	orch := &Orchestrator{Root: dir, Opt: Options{Concurrency: 1}, Renderer: stubRenderer{err: errors.New("render failed")}}
	reports, err := orch.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.NoError(t, reports[0].Err)
	require.Equal(t, 0, reports[0].Pages)
}

func TestDiscoverTOCsFindsNestedFiles(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "nested")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	writeTOC(t, sub, `{"enablePdf": true, "name": "Nested"}`)

	tocs, err := discoverTOCs(dir)
	require.NoError(t, err)
	require.Len(t, tocs, 1)
	require.Equal(t, "nested/toc.json", tocs[0].rel)
}

func TestUniquePageURLsDedupesAcrossTOCs(t *testing.T) {
	u, err := url.Parse("http://127.0.0.1:9000/p.html")
	require.NoError(t, err)

	a := &outline.Node{Name: "a", PageURL: u}
	b := &outline.Node{Name: "b", PageURL: u}

	urls := uniquePageURLs([]discoveredTOC{{root: a}, {root: b}})
	require.Len(t, urls, 1)
}
