// Package rangeexpr evaluates integer range expressions such as "2**40" or
// "3*2**20 + 17" without executing arbitrary code.
//
// Supported: integer literals (decimal, 0x, 0o, 0b, '_' separators), unary
// + and -, binary + - * / // % and ** (right associative, binding tighter
// than unary minus on its left), and parentheses. Division is floor division.
package rangeexpr

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// MaxBits caps the size of any intermediate value.
const MaxBits = 4096

var (
	ErrDivisionByZero = errors.New("division by zero")
	ErrNegativePower  = errors.New("negative exponent")
	ErrTooLarge       = fmt.Errorf("value exceeds %d bits", MaxBits)
)

// SyntaxError reports a malformed expression and the byte offset of the problem.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("range expression: %s at offset %d", e.Msg, e.Pos)
}

// Eval parses and evaluates expr.
func Eval(expr string) (*big.Int, error) {
	p := &parser{src: expr}
	p.next()

	v, err := p.expr()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected %s", p.tok)
	}
	return v, nil
}

type parser struct {
	src string
	pos int
	tok token
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Pos: p.tok.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) next() {
	p.tok, p.pos = scan(p.src, p.pos)
}

func (p *parser) expr() (*big.Int, error) {
	v, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.tok.kind == tokPlus || p.tok.kind == tokMinus {
		op := p.tok.kind
		p.next()
		r, err := p.term()
		if err != nil {
			return nil, err
		}
		if op == tokPlus {
			v.Add(v, r)
		} else {
			v.Sub(v, r)
		}
		if err := checkSize(v); err != nil {
			return nil, err
		}
	}
	return v, nil
}

func (p *parser) term() (*big.Int, error) {
	v, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.tok.kind
		if op != tokStar && op != tokSlash && op != tokPercent {
			return v, nil
		}
		p.next()
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		switch op {
		case tokStar:
			v.Mul(v, r)
			if err := checkSize(v); err != nil {
				return nil, err
			}
		case tokSlash:
			if r.Sign() == 0 {
				return nil, ErrDivisionByZero
			}
			floorDiv(v, v, r)
		case tokPercent:
			if r.Sign() == 0 {
				return nil, ErrDivisionByZero
			}
			floorMod(v, v, r)
		}
	}
}

func (p *parser) unary() (*big.Int, error) {
	switch p.tok.kind {
	case tokMinus:
		p.next()
		v, err := p.unary()
		if err != nil {
			return nil, err
		}
		return v.Neg(v), nil
	case tokPlus:
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (*big.Int, error) {
	base, err := p.atom()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokPow {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return nil, err
	}
	if exp.Sign() < 0 {
		return nil, ErrNegativePower
	}

	// |base|^exp has at least exp·(bitlen(|base|)-1) bits; 0, 1 and -1 never grow.
	if abs := new(big.Int).Abs(base); abs.Cmp(big.NewInt(1)) > 0 {
		lower := int64(abs.BitLen() - 1)
		if !exp.IsInt64() || exp.Int64() > MaxBits || exp.Int64()*lower > MaxBits {
			return nil, ErrTooLarge
		}
	}
	v := base.Exp(base, exp, nil)
	return v, checkSize(v)
}

func (p *parser) atom() (*big.Int, error) {
	switch p.tok.kind {
	case tokInt:
		v, err := parseInt(p.tok.text)
		if err != nil {
			return nil, p.errorf("%v", err)
		}
		p.next()
		return v, checkSize(v)
	case tokLParen:
		p.next()
		v, err := p.expr()
		if err != nil {
			return nil, err
		}
		if p.tok.kind != tokRParen {
			return nil, p.errorf("expected ')', got %s", p.tok)
		}
		p.next()
		return v, nil
	case tokInvalid:
		return nil, p.errorf("invalid character %q", p.tok.text)
	default:
		return nil, p.errorf("expected number or '(', got %s", p.tok)
	}
}

func parseInt(lit string) (*big.Int, error) {
	s := strings.ToLower(lit)
	if strings.HasPrefix(s, "_") || strings.HasSuffix(s, "_") || strings.Contains(s, "__") {
		return nil, fmt.Errorf("misplaced '_' in %q", lit)
	}
	s = strings.ReplaceAll(s, "_", "")

	base := 10
	switch {
	case strings.HasPrefix(s, "0x"):
		base, s = 16, s[2:]
	case strings.HasPrefix(s, "0o"):
		base, s = 8, s[2:]
	case strings.HasPrefix(s, "0b"):
		base, s = 2, s[2:]
	case len(s) > 1 && s[0] == '0' && strings.Trim(s, "0") != "":
		return nil, fmt.Errorf("leading zeros in decimal literal %q", lit)
	}

	v, ok := new(big.Int).SetString(s, base)
	if !ok || s == "" {
		return nil, fmt.Errorf("invalid integer literal %q", lit)
	}
	return v, nil
}

func checkSize(v *big.Int) error {
	if v.BitLen() > MaxBits {
		return ErrTooLarge
	}
	return nil
}

// floorDiv sets z = floor(x / y), rounding toward negative infinity.
func floorDiv(z, x, y *big.Int) *big.Int {
	m := new(big.Int)
	z.DivMod(x, y, m) // Euclidean: m >= 0
	if m.Sign() != 0 && y.Sign() < 0 {
		z.Sub(z, big.NewInt(1))
	}
	return z
}

// floorMod sets z = x - y·floor(x / y); the result takes the sign of y.
func floorMod(z, x, y *big.Int) *big.Int {
	z.Mod(x, y) // Euclidean: z >= 0
	if z.Sign() != 0 && y.Sign() < 0 {
		z.Add(z, y)
	}
	return z
}
