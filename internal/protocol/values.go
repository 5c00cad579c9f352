package protocol

import "fmt"

// Kind tags the variant held by a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindBool
	KindUint8
	KindUint16
	KindInt
	KindChar
	KindColor
	KindKey
	KindString
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindUint8:
		return "uint8"
	case KindUint16:
		return "uint16"
	case KindInt:
		return "int"
	case KindChar:
		return "char"
	case KindColor:
		return "color"
	case KindKey:
		return "key"
	case KindString:
		return "string"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Color is one RGB pixel value.
type Color struct {
	R uint8
	G uint8
	B uint8
}

// Key is the packed internal key representation: flags in the high byte, keycode in the low byte.
type Key uint16

// NewKey packs a keycode and its flags.
func NewKey(code, flags uint8) Key {
	return Key(uint16(flags)<<8 | uint16(code))
}

// Raw returns the wire encoding of k.
func (k Key) Raw() uint16 { return uint16(k) }

// Code returns the keycode byte.
func (k Key) Code() uint8 { return uint8(k) }

// Flags returns the modifier/flag byte.
func (k Key) Flags() uint8 { return uint8(k >> 8) }

// Value is a closed tagged variant over every type the protocol can send.
// Build one with the constructors below; the zero Value is KindInvalid and
// encodes to nothing.
type Value struct {
	kind  Kind
	num   int64
	color Color
	str   string
}

// Bool creates a boolean value.
func Bool(v bool) Value {
	n := int64(0)
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Uint8 creates an 8-bit unsigned value.
func Uint8(v uint8) Value {
	return Value{kind: KindUint8, num: int64(v)}
}

// Uint16 creates a 16-bit unsigned value.
func Uint16(v uint16) Value {
	return Value{kind: KindUint16, num: int64(v)}
}

// Int creates a signed decimal value.
func Int(v int64) Value {
	return Value{kind: KindInt, num: v}
}

// Char creates a single raw byte value.
func Char(c byte) Value {
	return Value{kind: KindChar, num: int64(c)}
}

// RGB creates a color value.
func RGB(r, g, b uint8) Value {
	return ColorValue(Color{R: r, G: g, B: b})
}

// ColorValue wraps an existing Color.
func ColorValue(c Color) Value {
	return Value{kind: KindColor, color: c}
}

// KeyValue wraps a packed key.
func KeyValue(k Key) Value {
	return Value{kind: KindKey, num: int64(k)}
}

// String creates a verbatim text value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

func (v Value) String() string {
	return string(AppendRaw(nil, v))
}
