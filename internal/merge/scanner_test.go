package merge

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestScannerFindsObject(t *testing.T) {
	sc := NewScanner()
	sc.Feed([]byte("2 0 obj\n<< /Type /Page >>\nendobj\n"))
	sc.Close()

	span, status := sc.Next()
	require.Equal(t, ScanFound, status)
	require.Equal(t, 2, span.ID)
	require.Equal(t, "<< /Type /Page >>\n", string(span.Body([]byte("2 0 obj\n<< /Type /Page >>\nendobj\n"))))
}

func TestScannerIncompleteWithoutEndobj(t *testing.T) {
	sc := NewScanner()
	sc.Feed([]byte("2 0 obj\n<< /Type /Page >>\n"))

	_, status := sc.Next()
	require.Equal(t, ScanIncomplete, status)
}

func TestScannerDoneAfterClose(t *testing.T) {
	sc := NewScanner()
	sc.Feed([]byte("2 0 obj\n<< /Type /Page >>\n"))
	sc.Close()

	_, status := sc.Next()
	require.Equal(t, ScanDone, status)
}

func TestScannerMultipleObjectsSequentially(t *testing.T) {
	data := []byte("1 0 obj\nAAA\nendobj\n2 0 obj\nBBB\nendobj\n")
	sc := NewScanner()
	sc.Feed(data)
	sc.Close()

	first, status := sc.Next()
	require.Equal(t, ScanFound, status)
	require.Equal(t, 1, first.ID)

	second, status := sc.Next()
	require.Equal(t, ScanFound, status)
	require.Equal(t, 2, second.ID)

	_, status = sc.Next()
	require.Equal(t, ScanDone, status)
}

func TestScannerFeedAcrossCalls(t *testing.T) {
	sc := NewScanner()
	sc.Feed([]byte("3 0 obj\n<< /Type"))
	_, status := sc.Next()
	require.Equal(t, ScanIncomplete, status)

	sc.Feed([]byte(" /Page >>\nendobj\n"))
	span, status := sc.Next()
	require.Equal(t, ScanFound, status)
	require.Equal(t, 3, span.ID)
}
