// Package merge implements the zero-copy, streaming byte-level PDF merger.
//
// It consumes one or more Chrome-emitted PDF 1.4 files per document and
// byte-splices them into a single unified PDF: object identifiers,
// /Parent pointers, struct-element /P pointers, and /StructParent(s)
// indices are rewritten on the fly as each object is scanned, and a new
// catalog, page tree, outline (bookmark) tree, structure tree, and named
// destinations dictionary are synthesized at the end. The merger never
// builds an in-memory object graph of its own; it exploits invariants of
// a specific Chrome PDF producer (see the prefix table in rewriter.go) to
// process each input linearly.
package merge

// Reserved object ids for the objects this package synthesizes itself.
// Input-derived object ids are always small integers offset by a running
// base id (see State.baseID); the reserved range is chosen far above any
// realistic document size so the two id spaces never collide.
const (
	reservedBase           = 1_000_000
	reservedInfo           = reservedBase
	reservedCatalog        = reservedBase + 1
	reservedPages          = reservedBase + 2
	reservedStructTreeRoot = reservedBase + 3
	reservedParentTree     = reservedBase + 4
	reservedDests          = reservedBase + 5
	reservedCount          = 6 // number of fixed high-id objects
)

// structParentThreshold is the magnitude Chrome uses to tell page
// /StructParents indices (small) from annotation /StructParent indices
// (>= threshold) apart. It is hardcoded because the producer invariant it
// encodes is itself hardcoded upstream in Chrome's PDF writer.
const structParentThreshold = 100_000

// objKind classifies an absorbed object body for the purposes of §4.3's
// dispatch table. Only page and struct-document-element objects need
// special reference rewriting (/Parent and /P respectively); everything
// else is rewritten the same generic way.
type objKind int

const (
	kindPlain objKind = iota
	kindPage
	kindStructDoc
)

// numEntry is one (n, id) pair parsed out of a Chrome /ParentTree's
// /Nums array.
type numEntry struct {
	n  int
	id int
}
