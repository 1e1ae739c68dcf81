package search

import "strings"

// Parse turns raw user input into a LIKE pattern that matches rows containing
// every letter and digit of raw in order, with anything in between
// ("cp" matches "control panel"). Every other character is dropped, so
// Parse("") and Parse("--") both yield "%%", which matches everything.
//
// The result contains only ASCII letters, digits and '%'.
func Parse(raw string) string {
	var b strings.Builder
	b.Grow(len(raw)*2 + 2)
	b.WriteByte('%')
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if isAlnum(c) {
			b.WriteByte(c)
			b.WriteByte('%')
		}
	}
	if b.Len() == 1 {
		b.WriteByte('%')
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}
