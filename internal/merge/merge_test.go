package merge

import (
	"bytes"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chinmay-sawant/pdfassemble/internal/outline"
)

const singlePageInput = "" +
	"1 0 obj\n<< /Producer (headless) >>\nendobj\n" +
	"2 0 obj\n<< /Type /Page\n/Parent 5 0 R >>\nendobj\n" +
	"3 0 obj\n<< /Type /StructElem\n/S /Document\n/K [2 0 R] >>\nendobj\n" +
	"4 0 obj\n<< /Type /ParentTree\n/Nums [0 3 0 R] >>\nendobj\n" +
	"5 0 obj\n<< /Type /Catalog /Pages 6 0 R >>\nendobj\n" +
	"6 0 obj\n<< /Type /Pages /Kids [2 0 R] /Count 1 >>\nendobj\n"

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestAssembleSinglePageSingleOutlineNode(t *testing.T) {
	pageURL := mustURL(t, "http://render.local/p.html")
	root := &outline.Node{
		Name: "Doc",
		Items: []*outline.Node{
			{Name: "Page", Href: "p.html", PageURL: pageURL},
		},
	}

	fetch := func(u string) (io.Reader, bool) {
		if u == pageURL.String() {
			return strings.NewReader(singlePageInput), true
		}
		return nil, false
	}

	var out bytes.Buffer
	stats, err := Assemble(&out, root, fetch, Options{ToolName: "pdfassemble", ToolVersion: "test"})
	require.NoError(t, err)
	require.Equal(t, 1, stats.Pages)

	doc := out.String()
	require.True(t, strings.HasPrefix(doc, "%PDF-1.4\n"))
	require.Contains(t, doc, "1 0 obj\n<< /Type /Page\n/Parent 1000002 0 R >>\nendobj\n")
	require.Contains(t, doc, "/URLD-0 [ 1 0 R /Fit ]")
	require.Contains(t, doc, "/Dest /URLD-0")
	require.Contains(t, doc, "/Count 1")
	require.True(t, strings.HasSuffix(doc, "%%EOF"))
}

func TestAssembleOutlineNodeWithNoHrefHasNoDestination(t *testing.T) {
	root := &outline.Node{
		Name: "Doc",
		Items: []*outline.Node{
			{Name: "Heading"},
		},
	}
	fetch := func(string) (io.Reader, bool) { return nil, false }

	var out bytes.Buffer
	stats, err := Assemble(&out, root, fetch, Options{})
	require.NoError(t, err)
	require.Equal(t, 0, stats.Pages)
	require.NotContains(t, out.String(), "/Dest ")
}

func TestAssembleExternalOnlyOutlineProducesZeroPageValidTrailer(t *testing.T) {
	ext := mustURL(t, "https://docs.example.com/guide")
	root := &outline.Node{
		Name: "Doc",
		Items: []*outline.Node{
			{Name: "External", Href: "guide", ExternalURL: ext},
		},
	}
	fetch := func(string) (io.Reader, bool) { return nil, false }

	var out bytes.Buffer
	stats, err := Assemble(&out, root, fetch, Options{})
	require.NoError(t, err)
	require.Equal(t, 0, stats.Pages)

	doc := out.String()
	require.Contains(t, doc, "/A << /Type /Action /S /URI /URI (https://docs.example.com/guide) >>")
	require.Contains(t, doc, "trailer")
	require.Contains(t, doc, "startxref")
}

func TestAssembleBlankPagePadding(t *testing.T) {
	input := "" +
		"1 0 obj\n<< /Producer (headless) >>\nendobj\n" +
		"2 0 obj\n<< /Type /Page\n/Parent 9 0 R >>\nendobj\n" +
		"3 0 obj\n<< /Type /Page\n/Parent 9 0 R >>\nendobj\n" +
		"4 0 obj\n<< /Type /Page\n/Parent 9 0 R >>\nendobj\n" +
		"5 0 obj\n<< /Type /StructElem\n/S /Document\n/K [2 0 R 4 0 R] >>\nendobj\n" +
		"6 0 obj\n<< /Type /ParentTree\n/Nums [0 10 0 R 2 11 0 R] >>\nendobj\n"

	pageURL := mustURL(t, "http://render.local/three.html")
	root := &outline.Node{
		Name:  "Doc",
		Items: []*outline.Node{{Name: "Three", Href: "three.html", PageURL: pageURL}},
	}
	fetch := func(u string) (io.Reader, bool) {
		if u == pageURL.String() {
			return strings.NewReader(input), true
		}
		return nil, false
	}

	var out bytes.Buffer
	stats, err := Assemble(&out, root, fetch, Options{})
	require.NoError(t, err)
	require.Equal(t, 3, stats.Pages)
	require.Contains(t, out.String(), "/Kids [ 1 0 R 2 0 R 3 0 R ]")
}
