// Package outline parses and walks the toc.json outline trees that drive
// both per-page rendering and the merged PDF's bookmark tree.
package outline

import (
	"encoding/json"
	"fmt"
	"net/url"
)

// maxDepth bounds recursive descent into nested items. encoding/json
// cannot produce a structurally cyclic tree on its own, but a
// pathologically deep or hostile toc.json (nested thousands of levels)
// must not blow the stack; this is the guard for that.
const maxDepth = 256

// Node is one entry in an outline tree: a display title, an optional
// link target, and an ordered list of children. PDFID and Count are
// zero until assigned by a merge, at which point PDFID is the object id
// this node will occupy in the merged PDF and Count is the number of
// descendant nodes in its subtree.
type Node struct {
	Name  string
	Href  string
	Items []*Node

	// PageURL and ExternalURL are populated by Resolve, not by Parse.
	PageURL     *url.URL
	ExternalURL *url.URL

	// PDFID and Count are populated during merge trailer synthesis.
	PDFID int
	Count int
}

// rawNode mirrors toc.json's on-disk shape.
type rawNode struct {
	EnablePdf *bool     `json:"enablePdf,omitempty"`
	Name      string    `json:"name,omitempty"`
	Href      string    `json:"href,omitempty"`
	Items     []rawNode `json:"items,omitempty"`
}

// Parse decodes a toc.json document into its root Node and reports
// whether the root enables PDF generation (enablePdf: true; a missing
// flag counts as disabled). Skipping a disabled tree is left to the
// caller — Parse itself never rejects a document on content grounds
// except excessive nesting depth.
func Parse(data []byte) (*Node, bool, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("outline: decode toc.json: %w", err)
	}
	enabled := raw.EnablePdf != nil && *raw.EnablePdf
	root, err := fromRaw(raw, 0)
	if err != nil {
		return nil, false, err
	}
	return root, enabled, nil
}

func fromRaw(raw rawNode, depth int) (*Node, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("outline: nesting exceeds maximum depth %d", maxDepth)
	}
	n := &Node{Name: raw.Name, Href: raw.Href}
	if len(raw.Items) > 0 {
		n.Items = make([]*Node, 0, len(raw.Items))
		for _, child := range raw.Items {
			c, err := fromRaw(child, depth+1)
			if err != nil {
				return nil, err
			}
			n.Items = append(n.Items, c)
		}
	}
	return n, nil
}

// Walk visits n and every descendant in pre-order, calling fn for each.
// Walk is the traversal shared by unique-URL discovery and href
// resolution, so both follow the same pre-order sequence the merged
// document's page order depends on.
func Walk(n *Node, fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Items {
		Walk(child, fn)
	}
}

// AssignCounts sets n.Count, and every descendant's Count, to the number
// of nodes in its subtree excluding itself. It must run after the full
// tree is built (post-order, unlike Walk's pre-order).
func AssignCounts(n *Node) int {
	if n == nil {
		return 0
	}
	total := 0
	for _, child := range n.Items {
		total += AssignCounts(child) + 1
	}
	n.Count = total
	return total
}
