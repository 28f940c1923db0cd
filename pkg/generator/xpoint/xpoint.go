// Package xpoint converts public key lists into the packed 32-byte X format
// consumed by xpoint-mode searchers.
package xpoint

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	hex "github.com/tmthrgd/go-hex"

	"github.com/Amr-9/XPointGen/pkg/generator/secp256k1"
)

var (
	ErrLength = errors.New("unsupported key length")
	ErrHex    = errors.New("invalid hex")
)

// Result counts converted and skipped lines. Blank lines count as neither.
type Result struct {
	Processed uint64
	Skipped   uint64
}

// SkipFunc is told about every skipped line and why.
type SkipFunc func(key string, reason error)

// Extract returns the X hex from a bare X, a compressed key or an
// uncompressed key. Anything after '#' is ignored.
func Extract(line string) (string, error) {
	key, _, _ := strings.Cut(line, "#")
	key = strings.TrimSpace(key)
	switch len(key) {
	case 2 * secp256k1.XLen:
		return key, nil
	case secp256k1.CompressedHexLen:
		return key[2:], nil
	case secp256k1.UncompressedHexLen:
		return key[2:secp256k1.CompressedHexLen], nil
	case 0:
		return "", nil
	}
	return "", fmt.Errorf("%w %d", ErrLength, len(key))
}

// Convert reads keys from r, one per line, and writes their packed X values
// to w. Lines that cannot be converted are skipped and reported to onSkip;
// only read and write failures abort the conversion.
func Convert(r io.Reader, w io.Writer, onSkip SkipFunc) (Result, error) {
	var res Result
	var x [secp256k1.XLen]byte

	bw := bufio.NewWriter(w)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		line := sc.Text()
		xh, err := Extract(line)
		if err == nil && xh == "" {
			continue
		}
		if err == nil {
			if _, derr := hex.Decode(x[:], []byte(xh)); derr != nil {
				err = fmt.Errorf("%w: %v", ErrHex, derr)
			}
		}
		if err != nil {
			res.Skipped++
			if onSkip != nil {
				key, _, _ := strings.Cut(line, "#")
				onSkip(strings.TrimSpace(key), err)
			}
			continue
		}
		if _, err := bw.Write(x[:]); err != nil {
			return res, err
		}
		res.Processed++
	}
	if err := sc.Err(); err != nil {
		return res, err
	}
	return res, bw.Flush()
}

// ConvertFile converts the key list at inPath into outPath. Both files are
// closed before it returns, and outPath is removed if the conversion fails.
func ConvertFile(inPath, outPath string, onSkip SkipFunc) (Result, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return Result{}, err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return Result{}, err
	}

	res, err := Convert(in, out, onSkip)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(outPath)
		return res, err
	}
	return res, nil
}
