package merge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClassifyBodySkipsInfoObject(t *testing.T) {
	require.Equal(t, actionSkip, classifyBody(1, []byte("<< /Producer (Chrome) >>")))
}

func TestClassifyBodyDispatch(t *testing.T) {
	require.Equal(t, actionSkip, classifyBody(2, []byte("<</Limits [0 1]>>")))
	require.Equal(t, actionSkip, classifyBody(2, []byte("<</Type /Catalog>>")))
	require.Equal(t, actionSkip, classifyBody(2, []byte("<</Type /StructTreeRoot>>")))
	require.Equal(t, actionParentTree, classifyBody(2, []byte("<</Type /ParentTree\n/Nums [0 3 0 R]>>")))
	require.Equal(t, actionEmitPage, classifyBody(2, []byte("<</Type /Page\n/Parent 1 0 R>>")))
	require.Equal(t, actionEmitStructDoc, classifyBody(2, []byte("<</Type /StructElem\n/S /Document\n>>")))
	require.Equal(t, actionEmitPlain, classifyBody(2, []byte("<</Type /Annot>>")))
}

func TestParseParentTreeNums(t *testing.T) {
	body := []byte("<< /Type /ParentTree\n/Nums [0 3 0 R 1 4 0 R 100000 9 0 R] >>")
	entries := parseParentTreeNums(body)
	require.Equal(t, []numEntry{{n: 0, id: 3}, {n: 1, id: 4}, {n: 100000, id: 9}}, entries)
}

func offsetBy(n int) func(int) int {
	return func(x int) int { return n + x }
}

func TestRewriteRefsOffsetsPlainReference(t *testing.T) {
	st := newState(NewWriter(nil), Options{})
	out := st.rewriteRefs(kindPlain, offsetBy(10), []byte("<< /Next 3 0 R >>"))
	require.Equal(t, "<< /Next 13 0 R >>", string(out))
}

func TestRewriteRefsRedirectsPageParent(t *testing.T) {
	st := newState(NewWriter(nil), Options{})
	out := st.rewriteRefs(kindPage, offsetBy(10), []byte("<< /Type /Page\n/Parent 1 0 R >>"))
	require.Equal(t, "<< /Type /Page\n/Parent 1000002 0 R >>", string(out))
}

func TestRewriteRefsRedirectsStructDocParent(t *testing.T) {
	st := newState(NewWriter(nil), Options{})
	out := st.rewriteRefs(kindStructDoc, offsetBy(10), []byte("<< /S /Document\n/P 1 0 R >>"))
	require.Equal(t, "<< /S /Document\n/P 1000003 0 R >>", string(out))
}

func TestRewriteRefsStructParentBelowThreshold(t *testing.T) {
	st := newState(NewWriter(nil), Options{})
	st.baseStructParentsNum = 5
	out := st.rewriteRefs(kindPage, offsetBy(0), []byte("<< /StructParents 2 >>"))
	require.Equal(t, "<< /StructParents 7 >>", string(out))
}

func TestRewriteRefsStructParentAboveThreshold(t *testing.T) {
	st := newState(NewWriter(nil), Options{})
	st.baseStructParentNum = 3
	out := st.rewriteRefs(kindPlain, offsetBy(0), []byte("<< /StructParent 100005 >>"))
	require.Equal(t, "<< /StructParent 100008 >>", string(out))
}
