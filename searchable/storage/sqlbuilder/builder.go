package sqlbuilder

import "strconv"

type PlaceholderStyle int

const (
	PlaceholderQuestion PlaceholderStyle = iota
	PlaceholderDollar
)

type Builder struct {
	Style PlaceholderStyle
	args  []any
}

func New(style PlaceholderStyle) *Builder {
	return &Builder{Style: style, args: make([]any, 0)}
}

func (b *Builder) Arg(v any) string {
	b.args = append(b.args, v)
	switch b.Style {
	case PlaceholderDollar:
		return "$" + strconv.Itoa(len(b.args))
	default:
		return "?"
	}
}

func (b *Builder) Args() []any { return b.args }
func (b *Builder) Len() int    { return len(b.args) }

// Rebind rewrites every '?' outside single-quoted literals in fragment into a
// placeholder for the matching element of args, in order.
// It returns an error when the number of '?' and args differ.
func (b *Builder) Rebind(fragment string, args []any) (string, error) {
	if len(args) == 0 && b.Style == PlaceholderQuestion {
		if n := countPlaceholders(fragment); n != 0 {
			return "", &ArgCountError{Fragment: fragment, Want: n, Got: 0}
		}
		return fragment, nil
	}
	out := make([]byte, 0, len(fragment)+len(args)*2)
	next := 0
	inQuote := false
	for i := 0; i < len(fragment); i++ {
		c := fragment[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			out = append(out, c)
		case c == '?' && !inQuote:
			if next >= len(args) {
				return "", &ArgCountError{Fragment: fragment, Want: countPlaceholders(fragment), Got: len(args)}
			}
			out = append(out, b.Arg(args[next])...)
			next++
		default:
			out = append(out, c)
		}
	}
	if next != len(args) {
		return "", &ArgCountError{Fragment: fragment, Want: next, Got: len(args)}
	}
	return string(out), nil
}

// ArgCountError reports a fragment whose placeholders do not match its arguments.
type ArgCountError struct {
	Fragment string
	Want     int
	Got      int
}

func (e *ArgCountError) Error() string {
	return "fragment " + strconv.Quote(e.Fragment) + " has " + strconv.Itoa(e.Want) +
		" placeholders but " + strconv.Itoa(e.Got) + " args"
}

func countPlaceholders(fragment string) int {
	n := 0
	inQuote := false
	for i := 0; i < len(fragment); i++ {
		switch fragment[i] {
		case '\'':
			inQuote = !inQuote
		case '?':
			if !inQuote {
				n++
			}
		}
	}
	return n
}
