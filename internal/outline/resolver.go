package outline

import "net/url"

// Resolver turns an outline node's href into a resolvable page URL
// (pointing at the orchestrator's local render server) and/or an
// external URL (pointing at the production doc site), relative to the
// toc.json file the node belongs to.
type Resolver struct {
	// ServerURL is the base URL of the orchestrator's local static file
	// server serving the discovery root.
	ServerURL *url.URL
	// BaseURL is the optional production base URL used to compute
	// external links; nil disables external-link generation.
	BaseURL *url.URL
}

// Resolve implements §4.6: tocPath is the toc.json's path relative to
// the discovery root (used as the directory hrefs are resolved
// against). It mutates n.PageURL / n.ExternalURL and returns n for
// convenience.
func (r Resolver) Resolve(tocPath string, n *Node) (*Node, error) {
	if n.Href == "" {
		return n, nil
	}

	ref, err := url.Parse(n.Href)
	if err != nil {
		return n, err
	}

	tocDir, err := url.Parse(tocPath)
	if err != nil {
		return n, err
	}

	if r.BaseURL != nil {
		n.ExternalURL = r.BaseURL.ResolveReference(tocDir).ResolveReference(ref)
	}

	if ref.IsAbs() {
		n.PageURL = nil
		return n, nil
	}

	if r.ServerURL != nil {
		n.PageURL = r.ServerURL.ResolveReference(tocDir).ResolveReference(ref)
	}
	return n, nil
}

// ResolveTree resolves every node in the tree rooted at n, in pre-order.
func (r Resolver) ResolveTree(tocPath string, n *Node) error {
	var firstErr error
	Walk(n, func(node *Node) {
		if firstErr != nil {
			return
		}
		if _, err := r.Resolve(tocPath, node); err != nil {
			firstErr = err
		}
	})
	return firstErr
}
