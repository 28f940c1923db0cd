// Package config parses and validates the xpointgen command line.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/Amr-9/XPointGen/pkg/generator/address"
	"github.com/Amr-9/XPointGen/pkg/generator/sink"
)

const (
	DefaultOutput    = "points.txt"
	DefaultWorkers   = 1
	DefaultBlockSize = 100000
)

var (
	ErrMissingPubKey  = errors.New("missing required -P/--pubkey")
	ErrMissingRange   = errors.New("missing required -X/--range")
	ErrMissingChunks  = errors.New("missing required -Y/--chunks")
	ErrMissingOutput  = errors.New("text output path is empty")
	ErrZeroChunks     = errors.New("chunks (Y) must be greater than zero")
	ErrOddChunks      = errors.New("chunks (Y) must be even")
	ErrZeroBlockSize  = errors.New("block size must be greater than zero")
	ErrNoWorkers      = errors.New("at least one worker is required")
	ErrBloomFP        = errors.New("bloom false-positive rate must be in (0, 1)")
	ErrDuplicatePaths = errors.New("output paths must be distinct")
)

type Config struct {
	PubKey    string
	Range     string // integer expression, e.g. "2**40"
	Chunks    uint64
	BlockSize uint64
	Workers   int

	Output      string // "-" for stdout
	BinOutput   string
	AddrOutput  string
	AddrType    address.Type
	BloomOutput string
	BloomFP     float64
	Manifest    string

	Quiet   bool
	Verbose bool
}

// ParseFlags reads args (without the program name) into a validated Config.
// Both the short and the long spelling of each flag are accepted.
func ParseFlags(args []string) (*Config, error) {
	return parseFlags(args, os.Stderr)
}

func parseFlags(args []string, out io.Writer) (*Config, error) {
	fs := flag.NewFlagSet("xpointgen", flag.ContinueOnError)
	fs.SetOutput(out)

	c := &Config{}
	var addrType string
	var chunksSet bool

	str := func(p *string, short, long, def, usage string) {
		if short != "" {
			fs.StringVar(p, short, def, usage)
		}
		fs.StringVar(p, long, def, usage)
	}
	boolean := func(p *bool, short, long, usage string) {
		fs.BoolVar(p, short, false, usage)
		fs.BoolVar(p, long, false, usage)
	}

	str(&c.PubKey, "P", "pubkey", "", "target public key, hex 02/03/04 (required)")
	str(&c.Range, "X", "range", "", "total range as an integer expression, e.g. 2**40 (required)")
	chunks := func(s string) error {
		chunksSet = true
		n, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
		c.Chunks = n
		return err
	}
	fs.Func("Y", "number of chunks, must be even (required)", chunks)
	fs.Func("chunks", "number of chunks, must be even (required)", chunks)
	str(&c.Output, "o", "output", DefaultOutput, "text output file, - for stdout")
	str(&c.BinOutput, "b", "bin-output", "", "binary output file of 32-byte X coordinates")
	fs.IntVar(&c.Workers, "c", DefaultWorkers, "worker goroutines, 0 for all CPUs")
	fs.IntVar(&c.Workers, "cores", DefaultWorkers, "worker goroutines, 0 for all CPUs")
	fs.Uint64Var(&c.BlockSize, "B", DefaultBlockSize, "indices per work block")
	fs.Uint64Var(&c.BlockSize, "block-size", DefaultBlockSize, "indices per work block")
	str(&c.AddrOutput, "", "addr-output", "", "address list output file")
	str(&addrType, "", "addr-type", address.P2PKH.String(), "address type: p2pkh, p2wpkh or eth")
	str(&c.BloomOutput, "", "bloom-output", "", "bloom filter output file over X coordinates")
	fs.Float64Var(&c.BloomFP, "bloom-fp", sink.DefaultFalsePositive, "bloom filter false-positive rate")
	str(&c.Manifest, "", "manifest", "", "JSON run manifest output file")
	boolean(&c.Quiet, "q", "quiet", "no banner or progress bar")
	boolean(&c.Verbose, "v", "verbose", "debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if !chunksSet {
		return nil, ErrMissingChunks
	}

	t, err := address.ParseType(addrType)
	if err != nil {
		return nil, err
	}
	c.AddrType = t

	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	c.PubKey = strings.TrimSpace(c.PubKey)
	c.Range = strings.TrimSpace(c.Range)

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks everything that can be checked without evaluating the
// range or decoding the key.
func (c *Config) Validate() error {
	switch {
	case c.PubKey == "":
		return ErrMissingPubKey
	case c.Range == "":
		return ErrMissingRange
	case c.Output == "":
		return ErrMissingOutput
	case c.Chunks == 0:
		return ErrZeroChunks
	case c.Chunks%2 != 0:
		return fmt.Errorf("%w: got %d", ErrOddChunks, c.Chunks)
	case c.BlockSize == 0:
		return ErrZeroBlockSize
	case c.Workers < 1:
		return ErrNoWorkers
	case c.BloomOutput != "" && (c.BloomFP <= 0 || c.BloomFP >= 1):
		return fmt.Errorf("%w: got %g", ErrBloomFP, c.BloomFP)
	}

	seen := make(map[string]string)
	for _, o := range c.Outputs() {
		key := o.Path
		if key != "-" {
			key = filepath.Clean(key)
		}
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", ErrDuplicatePaths, prev, o.Kind, o.Path)
		}
		seen[key] = o.Kind
	}
	return nil
}

// Output is one requested output file.
type Output struct {
	Kind string
	Path string
}

// Outputs lists the requested output files in sink order. The manifest is
// listed last.
func (c *Config) Outputs() []Output {
	outs := []Output{{Kind: "text", Path: c.Output}}
	if c.BinOutput != "" {
		outs = append(outs, Output{Kind: "binary", Path: c.BinOutput})
	}
	if c.AddrOutput != "" {
		outs = append(outs, Output{Kind: "address", Path: c.AddrOutput})
	}
	if c.BloomOutput != "" {
		outs = append(outs, Output{Kind: "bloom", Path: c.BloomOutput})
	}
	if c.Manifest != "" {
		outs = append(outs, Output{Kind: "manifest", Path: c.Manifest})
	}
	return outs
}

// EmitX reports whether any sink needs X coordinates.
func (c *Config) EmitX() bool {
	return c.BinOutput != "" || c.BloomOutput != ""
}
