package config

import (
	"io"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amr-9/XPointGen/pkg/generator/address"
	"github.com/Amr-9/XPointGen/pkg/generator/sink"
)

const g = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func parse(args ...string) (*Config, error) {
	return parseFlags(args, io.Discard)
}

func TestParseFlagsDefaults(t *testing.T) {
	c, err := parse("-P", g, "-X", "2**8", "-Y", "4")
	require.NoError(t, err)

	assert.Equal(t, g, c.PubKey)
	assert.Equal(t, "2**8", c.Range)
	assert.Equal(t, uint64(4), c.Chunks)
	assert.Equal(t, DefaultOutput, c.Output)
	assert.Equal(t, DefaultWorkers, c.Workers)
	assert.Equal(t, uint64(DefaultBlockSize), c.BlockSize)
	assert.Equal(t, address.P2PKH, c.AddrType)
	assert.Equal(t, sink.DefaultFalsePositive, c.BloomFP)
	assert.False(t, c.EmitX())
	assert.Equal(t, []Output{{Kind: "text", Path: DefaultOutput}}, c.Outputs())
}

func TestParseFlagsLongNames(t *testing.T) {
	c, err := parse(
		"--pubkey", g,
		"--range", "1000",
		"--chunks", "10",
		"--output", "a.txt",
		"--bin-output", "a.bin",
		"--cores", "3",
		"--block-size", "7",
		"--addr-output", "a.addr",
		"--addr-type", "eth",
		"--bloom-output", "a.bloom",
		"--bloom-fp", "0.01",
		"--manifest", "a.json",
		"--quiet",
		"--verbose",
	)
	require.NoError(t, err)

	assert.Equal(t, 3, c.Workers)
	assert.Equal(t, uint64(7), c.BlockSize)
	assert.Equal(t, address.Ethereum, c.AddrType)
	assert.Equal(t, 0.01, c.BloomFP)
	assert.True(t, c.Quiet)
	assert.True(t, c.Verbose)
	assert.True(t, c.EmitX())
	assert.Equal(t, []Output{
		{Kind: "text", Path: "a.txt"},
		{Kind: "binary", Path: "a.bin"},
		{Kind: "address", Path: "a.addr"},
		{Kind: "bloom", Path: "a.bloom"},
		{Kind: "manifest", Path: "a.json"},
	}, c.Outputs())
}

func TestParseFlagsShortNames(t *testing.T) {
	c, err := parse("-P", " "+g+" ", "-X", " 2**20 ", "-Y", "2", "-o", "-", "-b", "x.bin", "-c", "0", "-B", "9", "-q", "-v")
	require.NoError(t, err)

	assert.Equal(t, g, c.PubKey)
	assert.Equal(t, "2**20", c.Range)
	assert.Equal(t, "-", c.Output)
	assert.Equal(t, "x.bin", c.BinOutput)
	assert.Equal(t, runtime.NumCPU(), c.Workers)
	assert.Equal(t, uint64(9), c.BlockSize)
	assert.True(t, c.Quiet)
	assert.True(t, c.Verbose)
}

func TestParseFlagsErrors(t *testing.T) {
	cases := []struct {
		name string
		args []string
		err  error
		msg  string
	}{
		{name: "no pubkey", args: []string{"-X", "10", "-Y", "2"}, err: ErrMissingPubKey},
		{name: "no range", args: []string{"-P", g, "-Y", "2"}, err: ErrMissingRange},
		{name: "no chunks", args: []string{"-P", g, "-X", "10"}, err: ErrMissingChunks},
		{name: "odd chunks", args: []string{"-P", g, "-X", "10", "-Y", "3"}, err: ErrOddChunks},
		{name: "zero chunks", args: []string{"-P", g, "-X", "10", "-Y", "0"}, err: ErrZeroChunks},
		{name: "negative chunks", args: []string{"-P", g, "-X", "10", "-Y", "-2"}, msg: "invalid value"},
		{name: "junk chunks", args: []string{"-P", g, "-X", "10", "-Y", "4x"}, msg: "invalid value"},
		{name: "zero block", args: []string{"-P", g, "-X", "10", "-Y", "2", "-B", "0"}, err: ErrZeroBlockSize},
		{name: "empty output", args: []string{"-P", g, "-X", "10", "-Y", "2", "-o", ""}, err: ErrMissingOutput},
		{name: "bad addr type", args: []string{"-P", g, "-X", "10", "-Y", "2", "--addr-type", "p2tr"}, msg: "unknown address type"},
		{name: "bad bloom fp", args: []string{"-P", g, "-X", "10", "-Y", "2", "--bloom-output", "f", "--bloom-fp", "1.5"}, err: ErrBloomFP},
		{name: "same paths", args: []string{"-P", g, "-X", "10", "-Y", "2", "-o", "a", "-b", "./a"}, err: ErrDuplicatePaths},
		{name: "stray args", args: []string{"-P", g, "-X", "10", "-Y", "2", "extra"}, msg: "unexpected arguments"},
		{name: "unknown flag", args: []string{"-Z", "1"}, msg: "flag provided but not defined"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parse(tc.args...)
			require.Error(t, err)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			}
			if tc.msg != "" {
				assert.True(t, strings.Contains(err.Error(), tc.msg), err.Error())
			}
		})
	}
}

func TestValidateProgrammatic(t *testing.T) {
	c := &Config{PubKey: g, Range: "10", Chunks: 2, BlockSize: 1, Workers: 0, Output: "o"}
	assert.ErrorIs(t, c.Validate(), ErrNoWorkers)

	c.Workers = 2
	assert.NoError(t, c.Validate())

	// bloom rate is only checked when a bloom filter is requested
	c.BloomFP = 0
	assert.NoError(t, c.Validate())
}
