// Package secp256k1 converts between public-key hex strings and curve points.
// Decoding validates that the point lies on the curve; encoding always
// produces the 33-byte compressed form.
package secp256k1

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	hex "github.com/tmthrgd/go-hex"
)

const (
	CompressedHexLen   = 66  // 02/03 + 32-byte X
	UncompressedHexLen = 130 // 04 + 32-byte X + 32-byte Y
	XLen               = 32
)

var (
	ErrInvalidPrefix     = errors.New("public key must start with '02', '03', or '04'")
	ErrInvalidLength     = errors.New("invalid public key length")
	ErrInvalidHex        = errors.New("public key is not valid hex")
	ErrInvalidCurvePoint = errors.New("point is not on the secp256k1 curve")
)

var (
	curve = btcec.S256()

	// (p+1)/4, the square-root exponent valid because p ≡ 3 (mod 4)
	sqrtExp = new(big.Int).Rsh(new(big.Int).Add(curve.P, big.NewInt(1)), 2)
)

// FieldPrime returns a copy of the field prime p.
func FieldPrime() *big.Int { return new(big.Int).Set(curve.P) }

// GroupOrder returns a copy of the group order n.
func GroupOrder() *big.Int { return new(big.Int).Set(curve.N) }

// CurveB returns a copy of the curve coefficient b (a is zero).
func CurveB() *big.Int { return new(big.Int).Set(curve.B) }

// DecodePubKey parses a compressed (02/03) or uncompressed (04) public key.
// An optional 0x prefix and surrounding whitespace are ignored.
func DecodePubKey(s string) (*btcec.PublicKey, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if len(s) < 2 {
		return nil, fmt.Errorf("%w: %d hex chars", ErrInvalidLength, len(s))
	}

	switch prefix := s[:2]; prefix {
	case "04":
		if len(s) != UncompressedHexLen {
			return nil, fmt.Errorf("%w: uncompressed key needs %d hex chars, got %d", ErrInvalidLength, UncompressedHexLen, len(s))
		}
		raw, err := decodeHex(s[2:])
		if err != nil {
			return nil, err
		}
		x := new(big.Int).SetBytes(raw[:XLen])
		y := new(big.Int).SetBytes(raw[XLen:])
		return NewPoint(x, y)

	case "02", "03":
		if len(s) != CompressedHexLen {
			return nil, fmt.Errorf("%w: compressed key needs %d hex chars, got %d", ErrInvalidLength, CompressedHexLen, len(s))
		}
		raw, err := decodeHex(s[2:])
		if err != nil {
			return nil, err
		}
		x := new(big.Int).SetBytes(raw)
		y, err := DecompressY(x, prefix == "03")
		if err != nil {
			return nil, err
		}
		return NewPoint(x, y)

	default:
		return nil, fmt.Errorf("%w: got %q", ErrInvalidPrefix, prefix)
	}
}

// DecompressY recovers the Y coordinate for x with the requested parity.
// y = alpha^((p+1)/4) with alpha = x³ + 7; alpha must be a quadratic residue.
func DecompressY(x *big.Int, odd bool) (*big.Int, error) {
	if x.Sign() < 0 || x.Cmp(curve.P) >= 0 {
		return nil, fmt.Errorf("%w: x out of field range", ErrInvalidCurvePoint)
	}

	alpha := rhs(x)
	y := new(big.Int).Exp(alpha, sqrtExp, curve.P)

	check := new(big.Int).Mul(y, y)
	check.Mod(check, curve.P)
	if check.Cmp(alpha) != 0 {
		return nil, fmt.Errorf("%w: x=%064x has no square root", ErrInvalidCurvePoint, x)
	}

	if (y.Bit(0) == 1) != odd {
		y.Sub(curve.P, y)
	}
	return y, nil
}

// NewPoint builds a public key from affine coordinates after checking that
// both lie in the field and satisfy y² = x³ + 7.
func NewPoint(x, y *big.Int) (*btcec.PublicKey, error) {
	if x.Sign() < 0 || y.Sign() < 0 || x.Cmp(curve.P) >= 0 || y.Cmp(curve.P) >= 0 {
		return nil, fmt.Errorf("%w: coordinate out of field range", ErrInvalidCurvePoint)
	}

	lhs := new(big.Int).Mul(y, y)
	lhs.Mod(lhs, curve.P)
	if lhs.Cmp(rhs(x)) != 0 {
		return nil, ErrInvalidCurvePoint
	}

	var fx, fy btcec.FieldVal
	fx.SetByteSlice(x.Bytes())
	fy.SetByteSlice(y.Bytes())
	return btcec.NewPublicKey(&fx, &fy), nil
}

// EncodeCompressed returns 02/03 followed by X as 64 lowercase hex digits.
func EncodeCompressed(pk *btcec.PublicKey) string {
	return hex.EncodeToString(pk.SerializeCompressed())
}

// XBytes returns the big-endian X coordinate of pk.
func XBytes(pk *btcec.PublicKey) [XLen]byte {
	var out [XLen]byte
	copy(out[:], pk.SerializeCompressed()[1:])
	return out
}

// rhs computes x³ + 7 mod p.
func rhs(x *big.Int) *big.Int {
	v := new(big.Int).Mul(x, x)
	v.Mul(v, x)
	v.Add(v, curve.B)
	return v.Mod(v, curve.P)
}

func decodeHex(s string) ([]byte, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	return raw, nil
}
