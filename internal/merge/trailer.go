package merge

import (
	"fmt"
	"sort"
	"strings"

	"github.com/chinmay-sawant/pdfassemble/internal/outline"
)

// writeTrailer synthesizes the outline tree, the six fixed high-id
// objects, the xref table, and the trailer dictionary, per §4.4. It is
// the last thing Assemble calls before flushing.
func (st *State) writeTrailer(root *outline.Node) error {
	nextID := len(st.xrefs) + 1
	assignOutlineIDs(root, &nextID)

	if err := st.emitOutlineSubtree(root, 0, 0); err != nil {
		return fmt.Errorf("outline: %w", err)
	}

	if err := st.writeFixedObjects(root.PDFID); err != nil {
		return err
	}
	if err := st.writeXref(); err != nil {
		return err
	}
	return st.writeTrailerDict()
}

// assignOutlineIDs walks n in pre-order, handing out ids starting at
// *next, which the caller seeds to one past the last input-derived id.
func assignOutlineIDs(n *outline.Node, next *int) {
	n.PDFID = *next
	*next++
	for _, c := range n.Items {
		assignOutlineIDs(c, next)
	}
}

// emitOutlineSubtree writes n's outline object and recurses into its
// children. parentID and nextSiblingID are 0 when absent (the tree
// root has neither).
func (st *State) emitOutlineSubtree(n *outline.Node, parentID, nextSiblingID int) error {
	var first, last int
	for i, c := range n.Items {
		if i == 0 {
			first = c.PDFID
		}
		last = c.PDFID
	}

	if err := st.writeOutlineObject(n, parentID, nextSiblingID, first, last); err != nil {
		return err
	}

	for i, c := range n.Items {
		nextSibling := 0
		if i+1 < len(n.Items) {
			nextSibling = n.Items[i+1].PDFID
		}
		if err := st.emitOutlineSubtree(c, n.PDFID, nextSibling); err != nil {
			return err
		}
	}
	return nil
}

func (st *State) writeOutlineObject(n *outline.Node, parentID, nextSiblingID, first, last int) error {
	var b strings.Builder
	b.WriteString("<<\n/Type /Outlines\n")
	fmt.Fprintf(&b, "/Count %d\n", n.Count)
	if first != 0 {
		fmt.Fprintf(&b, "/First %d 0 R\n", first)
	}
	if last != 0 {
		fmt.Fprintf(&b, "/Last %d 0 R\n", last)
	}
	if parentID != 0 {
		fmt.Fprintf(&b, "/Parent %d 0 R\n", parentID)
	}
	if nextSiblingID != 0 {
		fmt.Fprintf(&b, "/Next %d 0 R\n", nextSiblingID)
	}

	switch {
	case n.PageURL != nil:
		url := n.PageURL.String()
		if _, ok := st.urlDests[url]; ok {
			fmt.Fprintf(&b, "/Dest /URLD-%d\n", st.urlIDs[url])
		}
	case n.ExternalURL != nil:
		fmt.Fprintf(&b, "/A << /Type /Action /S /URI /URI (%s) >>\n", n.ExternalURL.String())
	}
	b.WriteString("/Title ")

	st.xrefs[n.PDFID] = st.w.Position()
	if err := st.w.WriteString(fmt.Sprintf("%d 0 obj\n", n.PDFID)); err != nil {
		return err
	}
	if err := st.w.WriteString(b.String()); err != nil {
		return err
	}
	if err := st.w.WriteHexString(n.Name); err != nil {
		return err
	}
	if err := st.w.WriteString("\n>>\n"); err != nil {
		return err
	}
	return st.w.WriteString("endobj\n")
}

func (st *State) writeFixedObjects(outlineRootID int) error {
	info := fmt.Sprintf("<< /Creator (%s %s) >>", st.opt.ToolName, st.opt.ToolVersion)
	if err := st.writeFixedObject(reservedInfo, info); err != nil {
		return err
	}

	catalog := fmt.Sprintf(
		"<< /Type /Catalog /Pages %d 0 R /Dests %d 0 R /PageMode /UseOutlines /Outlines %d 0 R "+
			"/MarkInfo << /Type /MarkInfo /Marked true >> /StructTreeRoot %d 0 R >>",
		reservedPages, reservedDests, outlineRootID, reservedStructTreeRoot,
	)
	if err := st.writeFixedObject(reservedCatalog, catalog); err != nil {
		return err
	}

	var kids strings.Builder
	for _, id := range st.pages {
		fmt.Fprintf(&kids, "%d 0 R ", id)
	}
	pages := fmt.Sprintf("<< /Type /Pages /Count %d /Kids [ %s] >>", len(st.pages), kids.String())
	if err := st.writeFixedObject(reservedPages, pages); err != nil {
		return err
	}

	var kArr strings.Builder
	for _, id := range st.structElems {
		fmt.Fprintf(&kArr, "%d 0 R ", id)
	}
	structRoot := fmt.Sprintf("<< /Type /StructTreeRoot /K [ %s] /ParentTree %d 0 R >>", kArr.String(), reservedParentTree)
	if err := st.writeFixedObject(reservedStructTreeRoot, structRoot); err != nil {
		return err
	}

	var nums strings.Builder
	for i, id := range st.structParents {
		if id == 0 {
			continue
		}
		fmt.Fprintf(&nums, "%d %d 0 R ", i, id)
	}
	for i, id := range st.structParent {
		fmt.Fprintf(&nums, "%d %d 0 R ", structParentThreshold+i, id)
	}
	parentTree := fmt.Sprintf("<< /Type /ParentTree /Nums [ %s] >>", nums.String())
	if err := st.writeFixedObject(reservedParentTree, parentTree); err != nil {
		return err
	}

	urls := make([]string, 0, len(st.urlDests))
	for u := range st.urlDests {
		urls = append(urls, u)
	}
	sort.Slice(urls, func(i, j int) bool { return st.urlIDs[urls[i]] < st.urlIDs[urls[j]] })

	var dests strings.Builder
	for _, u := range urls {
		fmt.Fprintf(&dests, "/URLD-%d [ %d 0 R /Fit ] ", st.urlIDs[u], st.urlDests[u])
	}
	destsObj := fmt.Sprintf("<< %s>>", dests.String())
	return st.writeFixedObject(reservedDests, destsObj)
}

func (st *State) writeFixedObject(id int, dict string) error {
	st.xrefs[id] = st.w.Position()
	if err := st.w.WriteString(fmt.Sprintf("%d 0 obj\n", id)); err != nil {
		return err
	}
	if err := st.w.WriteString(dict); err != nil {
		return err
	}
	if err := st.w.WriteString("\n"); err != nil {
		return err
	}
	return st.w.WriteString("endobj\n")
}

func (st *State) writeXref() error {
	xrefStart := st.w.Position()
	if err := st.w.WriteString("xref\n"); err != nil {
		return err
	}

	n := len(st.xrefs) - reservedCount
	if err := st.w.WriteString(fmt.Sprintf("0 %d\n", n+1)); err != nil {
		return err
	}
	if err := st.w.WriteString("0000000000 65535 f \n"); err != nil {
		return err
	}
	for id := 1; id <= n; id++ {
		off, ok := st.xrefs[id]
		if !ok {
			return fmt.Errorf("merge: missing xref entry for object %d", id)
		}
		if err := st.w.WriteLongPadded(off, 10); err != nil {
			return err
		}
		if err := st.w.WriteString(" 00000 n \n"); err != nil {
			return err
		}
	}

	if err := st.w.WriteString(fmt.Sprintf("%d %d\n", reservedBase, reservedCount)); err != nil {
		return err
	}
	for id := reservedBase; id < reservedBase+reservedCount; id++ {
		off, ok := st.xrefs[id]
		if !ok {
			return fmt.Errorf("merge: missing xref entry for fixed object %d", id)
		}
		if err := st.w.WriteLongPadded(off, 10); err != nil {
			return err
		}
		if err := st.w.WriteString(" 00000 n \n"); err != nil {
			return err
		}
	}

	st.xrefStart = xrefStart
	return nil
}

func (st *State) writeTrailerDict() error {
	size := len(st.xrefs) + 1
	trailer := fmt.Sprintf("trailer\n<< /Size %d /Root %d 0 R /Info %d 0 R >>\nstartxref\n%d\n%%%%EOF",
		size, reservedCatalog, reservedInfo, st.xrefStart)
	return st.w.WriteString(trailer)
}
