package merge

import (
	"bytes"
)

// ScanStatus reports the outcome of one Scanner.Next call.
type ScanStatus int

const (
	// ScanFound means an object was located; ObjectSpan is valid.
	ScanFound ScanStatus = iota
	// ScanDone means no further complete object exists in the buffer
	// and the caller has indicated no more bytes are coming (see
	// Scanner.Close). It is also returned when a header is found but
	// its endobj is missing after Close; the cursor then stays before
	// that header. Trailing xref/trailer bytes are ignored.
	ScanDone
	// ScanIncomplete means an object header was found but its
	// endobj terminator was not, and the caller has not yet signalled
	// EOF. The caller should append more bytes and retry.
	ScanIncomplete
)

// ObjectSpan locates one absorbed object's id and body within the
// scanner's buffer. Start/End bound the whole "<id> 0 obj\n...endobj\n"
// region; BodyStart/BodyEnd bound the bytes between "obj\n" and
// "endobj".
type ObjectSpan struct {
	ID        int
	Start     int
	BodyStart int
	BodyEnd   int
	End       int
}

// Body returns the object's raw, unprocessed body bytes.
func (s ObjectSpan) Body(buf []byte) []byte {
	return buf[s.BodyStart:s.BodyEnd]
}

// Scanner locates "<id> 0 obj\n<body>endobj\n" regions in a byte buffer
// without copying or tokenizing the body. It never parses PDF syntax
// beyond what is needed to find object boundaries; internal structure is
// the Rewriter's job.
//
// A Scanner is fed by repeated calls to Feed (appending more bytes as
// they become available) and consumed by repeated calls to Next, which
// advances an internal cursor past every object it yields. Next never
// re-yields a span, and it never consumes bytes belonging to an
// incomplete object.
type Scanner struct {
	buf    []byte
	cursor int
	eof    bool
}

// NewScanner returns a Scanner with no data.
func NewScanner() *Scanner {
	return &Scanner{}
}

// Feed appends more input bytes to the scanner's buffer.
func (s *Scanner) Feed(b []byte) {
	s.buf = append(s.buf, b...)
}

// Close marks the input as complete: after Close, Next returns ScanDone
// once no further complete object is found, instead of ScanIncomplete.
func (s *Scanner) Close() {
	s.eof = true
}

var (
	objHeaderMid = []byte(" 0 obj\n")
	endobjToken  = []byte("endobj\n")
)

// Next returns the next object span, or a status explaining why none is
// available yet.
func (s *Scanner) Next() (ObjectSpan, ScanStatus) {
	rest := s.buf[s.cursor:]

	headerRel := bytes.Index(rest, objHeaderMid)
	if headerRel < 0 {
		if s.eof {
			return ObjectSpan{}, ScanDone
		}
		return ObjectSpan{}, ScanIncomplete
	}

	idStart := headerRel
	for idStart > 0 && isASCIIDigit(rest[idStart-1]) {
		idStart--
	}
	if idStart == headerRel {
		// No digits precede " 0 obj\n"; not a valid header, skip past
		// this occurrence and keep scanning forward in the same call.
		return s.nextAfterBogus(headerRel + len(objHeaderMid))
	}

	id := 0
	for _, c := range rest[idStart:headerRel] {
		id = id*10 + int(c-'0')
	}

	bodyStart := headerRel + len(objHeaderMid)
	endRel := bytes.Index(rest[bodyStart:], endobjToken)
	if endRel < 0 {
		if s.eof {
			return ObjectSpan{}, ScanDone
		}
		return ObjectSpan{}, ScanIncomplete
	}

	bodyEnd := bodyStart + endRel
	end := bodyEnd + len(endobjToken)

	span := ObjectSpan{
		ID:        id,
		Start:     s.cursor + idStart,
		BodyStart: s.cursor + bodyStart,
		BodyEnd:   s.cursor + bodyEnd,
		End:       s.cursor + end,
	}
	s.cursor = span.End
	return span, ScanFound
}

// nextAfterBogus re-enters the scan loop past a " 0 obj\n" occurrence
// that turned out not to be preceded by a decimal id (should not happen
// against well-formed Chrome output, but the scanner must not infinite
// loop on malformed input).
func (s *Scanner) nextAfterBogus(skipRel int) (ObjectSpan, ScanStatus) {
	s.cursor += skipRel
	return s.Next()
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
