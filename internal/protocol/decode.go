package protocol

// ByteSource is the read side of the transport as seen by the codec.
// Peek must not consume; both report false when no byte is currently available.
type ByteSource interface {
	Peek() (byte, bool)
	Next() (byte, bool)
}

// ReadInt decodes the next decimal integer on the current line.
// Leading non-numeric bytes are skipped, the line terminator is never consumed,
// and the byte after the last digit is left unread. It reports false when no
// digits were found before the end of the line or the stream.
func ReadInt(src ByteSource) (int64, bool) {
	for {
		b, ok := src.Peek()
		if !ok || IsLineEnd(b) {
			return 0, false
		}
		if b == '-' || isDigit(b) {
			break
		}
		src.Next()
	}

	neg := false
	if b, _ := src.Peek(); b == '-' {
		neg = true
		src.Next()
	}

	var n int64
	digits := 0
	for {
		b, ok := src.Peek()
		if !ok || !isDigit(b) {
			break
		}
		src.Next()
		n = n*10 + int64(b-'0')
		digits++
	}
	if digits == 0 {
		return 0, false
	}
	if neg {
		n = -n
	}
	return n, true
}

// ReadToken reads one separator-delimited token of at most capacity bytes.
// Leading separators and one trailing separator are consumed; the line
// terminator is not. A token longer than capacity is consumed whole and
// rejected with ErrTokenTooLong.
func ReadToken(src ByteSource, capacity int) (string, error) {
	if capacity <= 0 {
		return "", ErrInvalidLength
	}
	for {
		b, ok := src.Peek()
		if !ok || b != Separator {
			break
		}
		src.Next()
	}

	var buf [DefaultLineCapacity]byte
	tok := buf[:0]
	overflow := false
	for {
		b, ok := src.Peek()
		if !ok || IsLineEnd(b) {
			break
		}
		src.Next()
		if b == Separator {
			break
		}
		if len(tok) == capacity {
			overflow = true
			continue
		}
		tok = append(tok, b)
	}
	if overflow {
		return "", ErrTokenTooLong
	}
	if len(tok) == 0 {
		return "", ErrNoToken
	}
	return string(tok), nil
}

// ParseBool decodes the textual boolean forms accepted on the wire.
func ParseBool(tok string) (bool, bool) {
	switch tok {
	case "true", "1":
		return true, true
	case "false", "0":
		return false, true
	default:
		return false, false
	}
}

// DrainLine consumes bytes through the next Newline. It returns the number of
// bytes consumed and whether a Newline was reached before the stream ran dry.
func DrainLine(src ByteSource) (int, bool) {
	n := 0
	for {
		b, ok := src.Next()
		if !ok {
			return n, false
		}
		n++
		if b == Newline {
			return n, true
		}
	}
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
