package merge

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
)

// Prefixes recognized by the dispatch table in classifyBody. Matching is
// literal byte-prefix comparison against the start of the object body
// (immediately after the opening "<<"), never a general tokenizer —
// this is only safe because the input is known to come from one
// specific Chrome PDF producer.
var (
	prefixLimits       = []byte("/Limits ")
	prefixCatalog      = []byte("/Type /Catalog")
	prefixStructRoot   = []byte("/Type /StructTreeRoot")
	prefixParentTree   = []byte("/Type /ParentTree\n")
	prefixPage         = []byte("/Type /Page\n")
	prefixStructDoc    = []byte("/Type /StructElem\n/S /Document\n")
)

// bodyAction is the outcome of classifying one object body.
type bodyAction int

const (
	actionSkip bodyAction = iota
	actionParentTree
	actionEmitPage
	actionEmitStructDoc
	actionEmitPlain
)

// classifyBody implements the §4.3 dispatch table. inputID is the
// object's id within its own input file (before base_id offsetting);
// the very first object of every input (id 1) is always the input's
// /Info object and is always skipped.
func classifyBody(inputID int, body []byte) bodyAction {
	if inputID == 1 {
		return actionSkip
	}
	trimmed := bytes.TrimLeft(body, " \t\r\n")
	trimmed = bytes.TrimPrefix(trimmed, []byte("<<"))
	trimmed = bytes.TrimLeft(trimmed, " \t\r\n")
	switch {
	case bytes.HasPrefix(trimmed, prefixLimits):
		return actionSkip
	case bytes.HasPrefix(trimmed, prefixCatalog):
		return actionSkip
	case bytes.HasPrefix(trimmed, prefixStructRoot):
		return actionSkip
	case bytes.HasPrefix(trimmed, prefixParentTree):
		return actionParentTree
	case bytes.HasPrefix(trimmed, prefixPage):
		return actionEmitPage
	case bytes.HasPrefix(trimmed, prefixStructDoc):
		return actionEmitStructDoc
	default:
		return actionEmitPlain
	}
}

// numsEntryPattern matches one "n id 0 R" pair inside a /Nums array.
var numsEntryPattern = regexp.MustCompile(`(\d+)\s+(\d+)\s+0\s+R`)

// parseParentTreeNums extracts every (n, id) pair out of a ParentTree
// object body's /Nums [ ... ] array.
func parseParentTreeNums(body []byte) []numEntry {
	start := bytes.Index(body, []byte("/Nums"))
	if start < 0 {
		return nil
	}
	open := bytes.IndexByte(body[start:], '[')
	if open < 0 {
		return nil
	}
	open += start
	closeIdx := bytes.IndexByte(body[open:], ']')
	if closeIdx < 0 {
		closeIdx = len(body) - open
	}
	closeIdx += open

	arr := body[open+1 : closeIdx]
	matches := numsEntryPattern.FindAllSubmatch(arr, -1)
	entries := make([]numEntry, 0, len(matches))
	for _, m := range matches {
		n, err := strconv.Atoi(string(m[1]))
		if err != nil {
			continue
		}
		id, err := strconv.Atoi(string(m[2]))
		if err != nil {
			continue
		}
		entries = append(entries, numEntry{n: n, id: id})
	}
	return entries
}

// refPattern matches an indirect reference "<n> 0 R", optionally preceded
// by a capturing group identifying the /Parent or /P keyword that
// immediately precedes it (so rewriteRefs can special-case those).
var refPattern = regexp.MustCompile(`(/Parent\s+|/P\s+)?(\d+)\s+0\s+R`)

// structParentPattern matches a /StructParents or /StructParent entry.
// Each alternative requires whitespace right after its keyword, so
// "/StructParent" cannot match the prefix of "/StructParents"; the
// first capture group holds the number for /StructParents, the second
// for /StructParent.
var structParentPattern = regexp.MustCompile(`/StructParents\s+(\d+)|/StructParent\s+(\d+)`)

// rewriteRefs rewrites an emitted object body in place (conceptually —
// it returns a new byte slice) per §4.3 step 3: indirect references are
// offset by base_id, with /Parent and /P pointers inside page/struct-doc
// objects redirected to the synthesized /Pages and /StructTreeRoot
// objects; /StructParent(s) indices are offset by the running
// struct-parent counters, with the keyword re-derived from the numeric
// magnitude rather than trusted verbatim. resolve maps an input-local
// object id to its unified id; it is only consulted for references that
// are not redirected to a fixed synthesized object.
func (st *State) rewriteRefs(kind objKind, resolve func(int) int, body []byte) []byte {
	withStructParents := structParentPattern.ReplaceAllFunc(body, func(m []byte) []byte {
		sub := structParentPattern.FindSubmatch(m)
		var n int
		if len(sub[1]) > 0 {
			n, _ = strconv.Atoi(string(sub[1]))
		} else {
			n, _ = strconv.Atoi(string(sub[2]))
		}
		if n >= structParentThreshold {
			return []byte(fmt.Sprintf("/StructParent %d", st.baseStructParentNum+n))
		}
		return []byte(fmt.Sprintf("/StructParents %d", st.baseStructParentsNum+n))
	})

	return refPattern.ReplaceAllFunc(withStructParents, func(m []byte) []byte {
		sub := refPattern.FindSubmatch(m)
		keyword := string(sub[1])
		n, _ := strconv.Atoi(string(sub[2]))

		switch {
		case kind == kindPage && keyword == "/Parent ":
			return []byte(fmt.Sprintf("/Parent %d 0 R", reservedPages))
		case kind == kindStructDoc && keyword == "/P ":
			return []byte(fmt.Sprintf("/P %d 0 R", reservedStructTreeRoot))
		default:
			return []byte(fmt.Sprintf("%s%d 0 R", keyword, resolve(n)))
		}
	})
}
