package merge

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteHexString(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteHexString("A"))
	require.NoError(t, w.Flush())
	require.Equal(t, "<FEFF0041>", buf.String())
}

func TestWriteLongPadded(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteLongPadded(42, 10))
	require.NoError(t, w.Flush())
	require.Equal(t, "0000000042", buf.String())
}

func TestWriteLongPaddedOverflow(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.Error(t, w.WriteLongPadded(12345678901, 10))
}

func TestPositionTracksWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	require.NoError(t, w.WriteString("hello"))
	require.EqualValues(t, 5, w.Position())

	require.NoError(t, w.WriteInt(123))
	require.EqualValues(t, 8, w.Position())
}

func TestWriteASCIIString(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	require.NoError(t, w.WriteASCIIString("pdfassemble 1.0"))
	require.NoError(t, w.Flush())
	require.Equal(t, "(pdfassemble 1.0)", buf.String())
}
