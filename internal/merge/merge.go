package merge

import (
	"bytes"
	"fmt"
	"io"

	"github.com/chinmay-sawant/pdfassemble/internal/outline"
)

// pdfHeader is the fixed 1.4 file header, including the conventional
// binary-marker comment line that tells naive readers the file contains
// binary data.
var pdfHeader = []byte("%PDF-1.4\n%\xD3\xEB\xE9\xE1\n")

// Options configures values the trailer synthesizer cannot derive from
// the inputs themselves.
type Options struct {
	ToolName    string
	ToolVersion string
}

// Fetcher yields a byte reader for a page URL that has already been
// rendered, or ok == false when that URL's render failed or was never
// attempted. Assemble never retries a failed fetch.
type Fetcher func(pageURL string) (io.Reader, bool)

// State is the merger's single mutable accumulator across all inputs of
// one output PDF. It is strictly single-writer; nothing in this package
// takes a lock.
type State struct {
	w   *Writer
	opt Options

	xrefs  map[int]int64
	baseID int

	pages       []int
	structElems []int

	structParents []int
	structParent  []int

	baseStructParentsNum int
	baseStructParentNum  int

	urlIDs   map[string]int
	urlOrder []string
	urlDests map[string]int

	xrefStart int64
}

func newState(w *Writer, opt Options) *State {
	return &State{
		w:        w,
		opt:      opt,
		xrefs:    make(map[int]int64),
		urlIDs:   make(map[string]int),
		urlDests: make(map[string]int),
		// Object id 0 is reserved by PDF's xref format for the free-list
		// sentinel; the first absorbed object must start at 1.
		baseID: 1,
	}
}

// Stats summarizes one Assemble run, returned for the orchestrator to
// report.
type Stats struct {
	Pages int
}

// Assemble drives the full merge of every page URL reachable from root
// into dst: URL discovery and id assignment in pre-order, sequential
// absorption of each rendered input, and trailer synthesis. Inputs that
// failed to render (fetch returns ok == false) contribute no page and
// no /Dests entry, but their outline node is still emitted with no
// destination.
func Assemble(dst io.Writer, root *outline.Node, fetch Fetcher, opt Options) (Stats, error) {
	if opt.ToolName == "" {
		opt.ToolName = "pdfassemble"
	}
	w := NewWriter(dst)
	st := newState(w, opt)

	if err := w.WriteBytes(pdfHeader); err != nil {
		return Stats{}, fmt.Errorf("merge: write header: %w", err)
	}

	outline.Walk(root, func(n *outline.Node) {
		if n.PageURL == nil {
			return
		}
		u := n.PageURL.String()
		if _, ok := st.urlIDs[u]; !ok {
			st.urlIDs[u] = len(st.urlOrder)
			st.urlOrder = append(st.urlOrder, u)
		}
	})

	for _, u := range st.urlOrder {
		r, ok := fetch(u)
		if !ok {
			continue
		}
		data, err := io.ReadAll(r)
		if err != nil {
			return Stats{}, fmt.Errorf("merge: read input %s: %w", u, err)
		}
		if err := st.absorbInput(u, data); err != nil {
			return Stats{}, fmt.Errorf("merge: absorb %s: %w", u, err)
		}
	}

	outline.AssignCounts(root)
	if err := st.writeTrailer(root); err != nil {
		return Stats{}, fmt.Errorf("merge: write trailer: %w", err)
	}
	if err := w.Flush(); err != nil {
		return Stats{}, fmt.Errorf("merge: flush: %w", err)
	}

	return Stats{Pages: len(st.pages)}, nil
}

// absorbedObject is one object surviving the classification pass,
// waiting for its unified id and emission.
type absorbedObject struct {
	inputID int
	kind    objKind
	body    []byte
}

// absorbInput scans and rewrites every object in one input PDF's raw
// bytes, per §4.3. It runs in two passes: the first classifies every
// object and decides which ones are skipped (Info, Catalog,
// StructTreeRoot, ParentTree, Limits); the second assigns unified ids
// only to the objects that will actually be emitted and writes them.
// Skipped objects never reserve a numbered slot, so the unified id
// space stays contiguous — required for the single-subsection xref
// table written at the end.
func (st *State) absorbInput(sourceURL string, data []byte) error {
	sc := NewScanner()
	sc.Feed(data)
	sc.Close()

	var emitted []absorbedObject
	idMap := make(map[int]int)
	localStructParents := make(map[int]int) // page position -> local struct-elem id
	var localStructParentIDs []int          // annotation local ids, encounter order

	for {
		span, status := sc.Next()
		switch status {
		case ScanDone:
			// After Close the scanner also reports ScanDone when an
			// object header has no endobj; a header left past the cursor
			// is such a truncated object.
			if bytes.Contains(sc.buf[sc.cursor:], objHeaderMid) {
				return fmt.Errorf("merge: truncated object in %s (missing endobj)", sourceURL)
			}
			goto classified
		case ScanIncomplete:
			return fmt.Errorf("merge: truncated object in %s (missing endobj)", sourceURL)
		}

		body := span.Body(data)
		switch classifyBody(span.ID, body) {
		case actionSkip:
			// no unified id reserved
		case actionParentTree:
			for _, e := range parseParentTreeNums(body) {
				if e.n >= structParentThreshold {
					localStructParentIDs = append(localStructParentIDs, e.id)
				} else {
					localStructParents[e.n] = e.id
				}
			}
		case actionEmitPage:
			idMap[span.ID] = st.baseID + len(emitted)
			emitted = append(emitted, absorbedObject{inputID: span.ID, kind: kindPage, body: body})
		case actionEmitStructDoc:
			idMap[span.ID] = st.baseID + len(emitted)
			emitted = append(emitted, absorbedObject{inputID: span.ID, kind: kindStructDoc, body: body})
		default:
			idMap[span.ID] = st.baseID + len(emitted)
			emitted = append(emitted, absorbedObject{inputID: span.ID, kind: kindPlain, body: body})
		}
	}

classified:
	resolve := func(localID int) int {
		if uid, ok := idMap[localID]; ok {
			return uid
		}
		// A reference to an object this producer invariant says is
		// never pointed at from elsewhere (Info/Catalog/StructTreeRoot/
		// ParentTree/Limits); best-effort fallback keeps output valid
		// rather than panicking.
		return st.baseID + localID
	}

	firstPageIdx := -1
	pagesThisInput := 0
	for _, obj := range emitted {
		if obj.kind == kindPage {
			pagesThisInput++
		}
	}

	for _, obj := range emitted {
		uid := idMap[obj.inputID]
		if err := st.emitObject(uid, obj.kind, resolve, obj.body); err != nil {
			return err
		}
		switch obj.kind {
		case kindPage:
			if firstPageIdx < 0 {
				firstPageIdx = len(st.pages)
			}
			st.pages = append(st.pages, uid)
		case kindStructDoc:
			st.structElems = append(st.structElems, uid)
		}
	}

	// /StructParents entries are positional within this input's own
	// pages (ParentTree's /Nums index is a 0-based page position), so
	// a page with no ParentTree entry must land a zero at its own
	// slot rather than at the end of the slice.
	localParentsArray := make([]int, pagesThisInput)
	for n, localID := range localStructParents {
		if n >= 0 && n < pagesThisInput {
			localParentsArray[n] = resolve(localID)
		}
	}
	st.structParents = append(st.structParents, localParentsArray...)
	st.baseStructParentsNum = len(st.structParents)

	for _, localID := range localStructParentIDs {
		st.structParent = append(st.structParent, resolve(localID))
	}
	st.baseStructParentNum += len(localStructParentIDs)

	st.baseID += len(emitted)

	if firstPageIdx >= 0 {
		st.urlDests[sourceURL] = st.pages[firstPageIdx]
	}
	return nil
}

// emitObject writes one "<uid> 0 obj\n<rewritten body>endobj\n" region
// and records its xref offset.
func (st *State) emitObject(uid int, kind objKind, resolve func(int) int, body []byte) error {
	if uid >= reservedBase {
		return fmt.Errorf("merge: input object id %d collides with reserved synthesized range", uid)
	}
	st.xrefs[uid] = st.w.Position()
	if err := st.w.WriteString(fmt.Sprintf("%d 0 obj\n", uid)); err != nil {
		return err
	}
	rewritten := st.rewriteRefs(kind, resolve, body)
	if err := st.w.WriteBytes(rewritten); err != nil {
		return err
	}
	return st.w.WriteString("endobj\n")
}
