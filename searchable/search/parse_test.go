package search

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"", "%%"},
		{"!!--", "%%"},
		{"a", "%a%"},
		{"cp", "%c%p%"},
		{"c-p!", "%c%p%"},
		{"Hello World 42", "%H%e%l%l%o%W%o%r%l%d%4%2%"},
		{"naïve", "%n%a%v%e%"},
		{"' OR 1=1 --", "%O%R%1%1%"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Parse(tc.in), "Parse(%q)", tc.in)
	}
}

func TestParseStripsNonAlphanumerics(t *testing.T) {
	assert.Equal(t, Parse("abc"), Parse("a-b_c"))
}

func TestParseRecoversAlphanumericInput(t *testing.T) {
	for _, s := range []string{"x", "abc", "A1b2C3", "controlpanel"} {
		p := Parse(s)
		assert.True(t, strings.HasPrefix(p, "%") && strings.HasSuffix(p, "%"))
		assert.Equal(t, "%"+strings.Join(strings.Split(s, ""), "%")+"%", p)
		assert.Equal(t, s, strings.ReplaceAll(p, "%", ""))
	}
}

func TestParseOutputIsLiteralSafe(t *testing.T) {
	p := Parse(`'; DROP TABLE posts; -- \ " _ %`)
	for _, c := range p {
		assert.True(t, c == '%' || isAlnum(byte(c)), "unexpected %q in %q", c, p)
	}
}
