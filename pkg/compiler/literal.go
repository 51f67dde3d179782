package compiler

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"tauc/pkg/codepoint"
)

// Int decodes an INT_LIT token in its detected base. A leading zero on a
// decimal literal never switches to octal.
func (t Token) Int() (uint64, error) {
	if t.Kind != INT_LIT {
		return 0, errors.Errorf("%s token %q is not an integer literal", t.Kind, t.Text)
	}
	digits := t.Text
	if t.Base != DEC {
		digits = digits[2:]
	}
	v, err := strconv.ParseUint(string(digits), t.Base.Radix(), 64)
	return v, errors.Wrapf(err, "integer literal %q", t.Text)
}

// Float decodes a FLOAT_LIT token.
func (t Token) Float() (float64, error) {
	if t.Kind != FLOAT_LIT {
		return 0, errors.Errorf("%s token %q is not a float literal", t.Kind, t.Text)
	}
	v, err := strconv.ParseFloat(string(t.Text), 64)
	return v, errors.Wrapf(err, "float literal %q", t.Text)
}

// Bool decodes a BOOL_LIT token; anything else is false.
func (t Token) Bool() bool {
	return t.Kind == BOOL_LIT && string(t.Text) == "true"
}

// Str decodes a STR_LIT token, resolving escapes. \x yields a raw byte,
// \u and \U a UTF-8 encoded scalar. Unknown escapes are kept verbatim.
func (t Token) Str() (string, error) {
	if t.Kind != STR_LIT || len(t.Text) < 2 {
		return "", errors.Errorf("%s token %q is not a string literal", t.Kind, t.Text)
	}

	body := t.Text[1 : len(t.Text)-1]
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); {
		if body[i] != '\\' {
			sb.WriteByte(body[i])
			i++
			continue
		}
		if i+1 >= len(body) {
			return "", errors.Errorf("string literal %q ends inside an escape", t.Text)
		}

		esc := body[i+1]
		if b, ok := simpleEscapes[esc]; ok {
			sb.WriteByte(b)
			i += 2
			continue
		}

		width := escapeWidth(esc)
		if width < 0 {
			sb.Write(body[i : i+2])
			i += 2
			continue
		}

		hex := body[i+2:]
		if len(hex) < width {
			return "", errors.Errorf("string literal %q: \\%c escape needs %d hex digits", t.Text, esc, width)
		}
		v, err := strconv.ParseUint(string(hex[:width]), 16, 32)
		if err != nil {
			return "", errors.Wrapf(err, "string literal %q: bad \\%c escape", t.Text, esc)
		}
		i += 2 + width

		if esc == 'x' {
			sb.WriteByte(byte(v))
			continue
		}
		if !codepoint.Valid(uint32(v)) {
			return "", errors.Errorf("string literal %q: U+%X is not a unicode scalar", t.Text, v)
		}
		var enc [codepoint.MaxLen]byte
		n := codepoint.Encode(uint32(v), enc[:])
		sb.Write(enc[:n])
	}
	return sb.String(), nil
}

var simpleEscapes = map[byte]byte{
	'\'': '\'',
	'"':  '"',
	'\\': '\\',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'b':  '\b',
	'f':  '\f',
	'v':  '\v',
	'0':  0,
}
