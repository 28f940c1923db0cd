// Package verify re-derives generated output from scratch and checks it line
// by line. It uses the affine big.Int curve API rather than the Jacobian path
// the generator uses, so the two computations share no code above the field.
package verify

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	hex "github.com/tmthrgd/go-hex"

	"github.com/Amr-9/XPointGen/pkg/generator/secp256k1"
)

var (
	ErrEmpty     = errors.New("no records")
	ErrMalformed = errors.New("malformed line")
	ErrTrailing  = errors.New("binary file longer than text file")
	ErrTruncated = errors.New("binary file shorter than text file")
)

// MismatchError reports the first record that does not re-derive.
type MismatchError struct {
	Line  uint64 // zero-based record index
	Field string
	Want  string
	Got   string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("record %d: %s mismatch: want %s, got %s", e.Line, e.Field, e.Want, e.Got)
}

// Text checks that the i-th line of r is P - i·Z·G with comment "-i·Z"
// (or "0" for the first line) and returns the number of lines checked.
func Text(r io.Reader, base *btcec.PublicKey, stride *big.Int) (uint64, error) {
	curve := btcec.S256()
	p, n := curve.P, curve.N
	bx, by := base.X(), base.Y()

	sc := newScanner(r)
	var line uint64
	for ; sc.Scan(); line++ {
		key, comment, err := splitLine(sc.Text())
		if err != nil {
			return line, fmt.Errorf("record %d: %w", line, err)
		}

		offset := new(big.Int).Mul(new(big.Int).SetUint64(line), stride)
		wantComment := "0"
		if line > 0 {
			wantComment = "-" + offset.String()
		}
		if comment != wantComment {
			return line, &MismatchError{Line: line, Field: "offset", Want: wantComment, Got: comment}
		}

		k := new(big.Int).Mod(offset, n)
		qx, qy := curve.ScalarBaseMult(k.Bytes())
		qy = new(big.Int).Mod(new(big.Int).Sub(p, qy), p)
		rx, ry := curve.Add(bx, by, qx, qy)
		if rx.Sign() == 0 && ry.Sign() == 0 {
			return line, fmt.Errorf("record %d: derived point is at infinity", line)
		}

		want := compress(rx, ry)
		if key != want {
			return line, &MismatchError{Line: line, Field: "key", Want: want, Got: key}
		}
	}
	if err := sc.Err(); err != nil {
		return line, err
	}
	if line == 0 {
		return 0, ErrEmpty
	}
	return line, nil
}

// Binary checks that bin is exactly the sequence of X coordinates of the keys
// in text and returns the number of entries checked.
func Binary(bin io.Reader, text io.Reader) (uint64, error) {
	br := bufio.NewReader(bin)
	sc := newScanner(text)

	var x [secp256k1.XLen]byte
	var line uint64
	for ; sc.Scan(); line++ {
		key, _, err := splitLine(sc.Text())
		if err != nil {
			return line, fmt.Errorf("record %d: %w", line, err)
		}
		want, err := hex.DecodeString(key[2:])
		if err != nil {
			return line, fmt.Errorf("record %d: %w: %v", line, ErrMalformed, err)
		}

		if _, err := io.ReadFull(br, x[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return line, fmt.Errorf("record %d: %w", line, ErrTruncated)
			}
			return line, err
		}
		if !bytes.Equal(want, x[:]) {
			return line, &MismatchError{Line: line, Field: "x", Want: key[2:], Got: hex.EncodeToString(x[:])}
		}
	}
	if err := sc.Err(); err != nil {
		return line, err
	}
	if _, err := br.ReadByte(); err == nil {
		return line, ErrTrailing
	}
	return line, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return sc
}

// splitLine splits "<hex>  # <comment>" and validates the key shape.
func splitLine(s string) (key, comment string, err error) {
	before, after, found := strings.Cut(s, "#")
	if !found {
		return "", "", fmt.Errorf("%w: missing '#'", ErrMalformed)
	}
	key = strings.TrimSpace(before)
	if len(key) != secp256k1.CompressedHexLen || (key[:2] != "02" && key[:2] != "03") {
		return "", "", fmt.Errorf("%w: %q is not a compressed key", ErrMalformed, key)
	}
	return key, strings.TrimSpace(after), nil
}

func compress(x, y *big.Int) string {
	var buf [1 + secp256k1.XLen]byte
	buf[0] = 0x02 + byte(y.Bit(0))
	x.FillBytes(buf[1:])
	return hex.EncodeToString(buf[:])
}
