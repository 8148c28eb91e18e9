package codec

import (
	"bytes"
	"unicode/utf8"
)

// IsTextual reports whether b looks like text rather than binary data using
// DefaultTextThreshold.
func IsTextual(b []byte) bool { return IsTextualThreshold(b, DefaultTextThreshold) }

// IsTextualThreshold reports whether b is valid UTF-8 without NUL bytes and at
// most threshold of its runes fall outside printable ASCII plus \n, \r, \t and
// \b. Empty input is textual.
func IsTextualThreshold(b []byte, threshold float64) bool {
	if len(b) == 0 {
		return true
	}
	if !utf8.Valid(b) {
		return false
	}
	if bytes.IndexByte(b, 0) >= 0 {
		return false
	}
	var total, other int
	for _, r := range string(b) {
		total++
		if !isTextRune(r) {
			other++
		}
	}
	return float64(other)/float64(total) <= threshold
}

func isTextRune(r rune) bool {
	if r >= 0x20 && r < 0x7f {
		return true
	}
	switch r {
	case '\n', '\r', '\t', '\b':
		return true
	}
	return false
}
