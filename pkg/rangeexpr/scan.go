package rangeexpr

import "fmt"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokInt
	tokPlus
	tokMinus
	tokStar
	tokPow
	tokSlash // '/' or '//'
	tokPercent
	tokLParen
	tokRParen
	tokInvalid
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokInt:
		return fmt.Sprintf("number %q", t.text)
	default:
		return fmt.Sprintf("%q", t.text)
	}
}

// scan returns the token starting at or after pos and the offset following it.
func scan(src string, pos int) (token, int) {
	for pos < len(src) && isSpace(src[pos]) {
		pos++
	}
	if pos >= len(src) {
		return token{kind: tokEOF, pos: pos}, pos
	}

	start := pos
	c := src[pos]
	switch {
	case isDigit(c):
		for pos < len(src) && (isAlnum(src[pos]) || src[pos] == '_') {
			pos++
		}
		return token{kind: tokInt, text: src[start:pos], pos: start}, pos
	case c == '*':
		if pos+1 < len(src) && src[pos+1] == '*' {
			return token{kind: tokPow, text: "**", pos: start}, pos + 2
		}
		return token{kind: tokStar, text: "*", pos: start}, pos + 1
	case c == '/':
		if pos+1 < len(src) && src[pos+1] == '/' {
			return token{kind: tokSlash, text: "//", pos: start}, pos + 2
		}
		return token{kind: tokSlash, text: "/", pos: start}, pos + 1
	}

	kind := tokInvalid
	switch c {
	case '+':
		kind = tokPlus
	case '-':
		kind = tokMinus
	case '%':
		kind = tokPercent
	case '(':
		kind = tokLParen
	case ')':
		kind = tokRParen
	}
	return token{kind: kind, text: src[start : pos+1], pos: start}, pos + 1
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\n' || c == '\r' }
func isDigit(c byte) bool { return c >= '0' && c <= '9' }
func isAlnum(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
