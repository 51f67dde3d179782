// Package codepoint encodes and decodes single Unicode scalar values as UTF-8.
//
// Decoding is strict but never stalls: every non-empty input reports at least
// one consumed byte, so a scanner can always move past malformed text.
package codepoint

const (
	// Replacement is returned for every malformed or unencodable sequence.
	Replacement uint32 = 0xFFFD

	// MaxScalar is the largest Unicode scalar value.
	MaxScalar uint32 = 0x10FFFF

	// MaxLen is the longest encoding Encode produces.
	MaxLen = 4

	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// Len returns the number of bytes Encode writes for cp, or 0 if cp is out of range.
func Len(cp uint32) int {
	switch {
	case cp < 0x80:
		return 1
	case cp < 0x800:
		return 2
	case cp < 0x10000:
		return 3
	case cp <= MaxScalar:
		return 4
	}
	return 0
}

// Encode writes the UTF-8 form of cp into dst and returns the byte count.
// It writes nothing and returns 0 when cp >= 0x110000 or dst is too short.
func Encode(cp uint32, dst []byte) int {
	n := Len(cp)
	if n == 0 || len(dst) < n {
		return 0
	}

	switch n {
	case 1:
		dst[0] = byte(cp)
	case 2:
		dst[0] = byte(cp>>6) | 0xC0
		dst[1] = byte(cp&0x3F) | 0x80
	case 3:
		dst[0] = byte(cp>>12) | 0xE0
		dst[1] = byte((cp>>6)&0x3F) | 0x80
		dst[2] = byte(cp&0x3F) | 0x80
	default:
		dst[0] = byte(cp>>18) | 0xF0
		dst[1] = byte((cp>>12)&0x3F) | 0x80
		dst[2] = byte((cp>>6)&0x3F) | 0x80
		dst[3] = byte(cp&0x3F) | 0x80
	}
	return n
}

// Decode reads one scalar from the front of src.
//
//	NUL lead byte            -> Replacement, 1
//	stray continuation byte  -> Replacement, 1
//	5 and 6 byte lead tiers  -> Replacement, 1
//	overlong, surrogate, > U+10FFFF -> Replacement, structural length
//	truncated sequence       -> Replacement, len(src)
//	malformed continuation   -> Replacement, 1
//
// An empty src yields Replacement and 0.
func Decode(src []byte) (uint32, int) {
	if len(src) == 0 {
		return Replacement, 0
	}

	lead := src[0]
	var (
		cp  uint32
		n   int
		min uint32
	)
	switch {
	case lead == 0x00:
		return Replacement, 1
	case lead < 0x80:
		return uint32(lead), 1
	case lead&0xE0 == 0xC0:
		cp, n, min = uint32(lead&0x1F), 2, 0x80
	case lead&0xF0 == 0xE0:
		cp, n, min = uint32(lead&0x0F), 3, 0x800
	case lead&0xF8 == 0xF0:
		cp, n, min = uint32(lead&0x07), 4, 0x10000
	default:
		return Replacement, 1
	}

	if len(src) < n {
		return Replacement, len(src)
	}

	for _, c := range src[1:n] {
		if c&0xC0 != 0x80 {
			return Replacement, 1
		}
		cp = cp<<6 | uint32(c&0x3F)
	}

	if cp < min || cp > MaxScalar || (cp >= surrogateMin && cp <= surrogateMax) {
		return Replacement, n
	}
	return cp, n
}

// Valid reports whether cp is a Unicode scalar value.
func Valid(cp uint32) bool {
	return cp <= MaxScalar && (cp < surrogateMin || cp > surrogateMax)
}
