package protocol

import "strconv"

// AppendValue appends the send form of v to dst: its text followed by Separator.
// Colors expand to three separated components. Invalid values append nothing.
func AppendValue(dst []byte, v Value) []byte {
	switch v.kind {
	case KindInvalid:
		return dst
	case KindColor:
		dst = AppendValue(dst, Uint8(v.color.R))
		dst = AppendValue(dst, Uint8(v.color.G))
		return AppendValue(dst, Uint8(v.color.B))
	}
	dst = appendText(dst, v)
	return append(dst, Separator)
}

// AppendValues appends the send form of each value in order.
func AppendValues(dst []byte, values ...Value) []byte {
	for _, v := range values {
		dst = AppendValue(dst, v)
	}
	return dst
}

// AppendRaw appends the text of v with no trailing separator. A raw color keeps
// the separators between its components so it stays decodable.
func AppendRaw(dst []byte, v Value) []byte {
	if v.kind == KindColor {
		dst = strconv.AppendUint(dst, uint64(v.color.R), 10)
		dst = append(dst, Separator)
		dst = strconv.AppendUint(dst, uint64(v.color.G), 10)
		dst = append(dst, Separator)
		return strconv.AppendUint(dst, uint64(v.color.B), 10)
	}
	return appendText(dst, v)
}

// AppendRawValues appends the raw form of each value in order.
func AppendRawValues(dst []byte, values ...Value) []byte {
	for _, v := range values {
		dst = AppendRaw(dst, v)
	}
	return dst
}

func appendText(dst []byte, v Value) []byte {
	switch v.kind {
	case KindBool:
		return strconv.AppendBool(dst, v.num != 0)
	case KindUint8, KindUint16, KindKey:
		return strconv.AppendUint(dst, uint64(v.num), 10)
	case KindInt:
		return strconv.AppendInt(dst, v.num, 10)
	case KindChar:
		return append(dst, byte(v.num))
	case KindString:
		return append(dst, v.str...)
	default:
		return dst
	}
}
