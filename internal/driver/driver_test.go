package driver

import (
	"bytes"
	"context"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Amr-9/XPointGen/internal/config"
	"github.com/Amr-9/XPointGen/pkg/generator/secp256k1"
	"github.com/Amr-9/XPointGen/pkg/generator/sink"
	"github.com/Amr-9/XPointGen/pkg/generator/verify"
	"github.com/Amr-9/XPointGen/pkg/rangeexpr"
)

const g = "0279be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798"

func newConfig(dir string) *config.Config {
	return &config.Config{
		PubKey:    g,
		Range:     "2**8",
		Chunks:    4,
		BlockSize: 100000,
		Workers:   1,
		Output:    filepath.Join(dir, "points.txt"),
		BloomFP:   sink.DefaultFalsePositive,
		Quiet:     true,
	}
}

func scalarPub(k int64) *btcec.PublicKey {
	var buf [32]byte
	big.NewInt(k).FillBytes(buf[:])
	_, pub := btcec.PrivKeyFromBytes(buf[:])
	return pub
}

// negHex is the compressed encoding of -k·G.
func negHex(k int64) string {
	h := secp256k1.EncodeCompressed(scalarPub(k))
	if h[:2] == "02" {
		return "03" + h[2:]
	}
	return "02" + h[2:]
}

func TestRunGeneratorExample(t *testing.T) {
	dir := t.TempDir()
	cfg := newConfig(dir)
	cfg.BinOutput = filepath.Join(dir, "points.bin")

	sum, err := Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), sum.Points)
	assert.Equal(t, "64", sum.Stride.String())

	text, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	want := g + "  # 0\n" +
		negHex(63) + "  # -64\n" +
		negHex(127) + "  # -128\n" +
		negHex(191) + "  # -192\n" +
		negHex(255) + "  # -256\n"
	assert.Equal(t, want, string(text))

	bin, err := os.ReadFile(cfg.BinOutput)
	require.NoError(t, err)
	assert.Len(t, bin, 32*5)

	require.Len(t, sum.Outputs, 2)
	assert.Equal(t, "text", sum.Outputs[0].Kind)
	assert.Equal(t, uint64(len(text)), sum.Outputs[0].Bytes)
	assert.Equal(t, "binary", sum.Outputs[1].Kind)
	assert.Equal(t, uint64(32*5), sum.Outputs[1].Bytes)
}

func TestRunWorkerCountIndependent(t *testing.T) {
	run := func(workers int, blockSize uint64) ([]byte, []byte) {
		dir := t.TempDir()
		cfg := newConfig(dir)
		cfg.Range = "10**6 + 17"
		cfg.Chunks = 200
		cfg.Workers = workers
		cfg.BlockSize = blockSize
		cfg.BinOutput = filepath.Join(dir, "points.bin")

		_, err := Run(context.Background(), cfg)
		require.NoError(t, err)

		text, err := os.ReadFile(cfg.Output)
		require.NoError(t, err)
		bin, err := os.ReadFile(cfg.BinOutput)
		require.NoError(t, err)
		return text, bin
	}

	text1, bin1 := run(1, 100000)
	for _, tc := range []struct {
		workers int
		block   uint64
	}{{1, 1}, {4, 7}, {8, 3}, {3, 200}} {
		text, bin := run(tc.workers, tc.block)
		assert.Equal(t, text1, text, "workers=%d block=%d", tc.workers, tc.block)
		assert.Equal(t, bin1, bin, "workers=%d block=%d", tc.workers, tc.block)
	}
	assert.Len(t, bin1, 32*201)
	assert.Equal(t, 201, strings.Count(string(text1), "\n"))
}

func TestRunOutputsVerify(t *testing.T) {
	dir := t.TempDir()
	cfg := newConfig(dir)
	// P = 12345·G, large stride that wraps the group order
	cfg.PubKey = secp256k1.EncodeCompressed(scalarPub(12345))
	cfg.Range = "2**300 + 0x1234"
	cfg.Chunks = 50
	cfg.Workers = 3
	cfg.BlockSize = 8
	cfg.BinOutput = filepath.Join(dir, "points.bin")
	cfg.BloomOutput = filepath.Join(dir, "points.bloom")
	cfg.AddrOutput = filepath.Join(dir, "points.addr")
	cfg.Manifest = filepath.Join(dir, "run.json")

	sum, err := Run(context.Background(), cfg)
	require.NoError(t, err)

	total, err := rangeexpr.Eval(cfg.Range)
	require.NoError(t, err)
	stride := new(big.Int).Quo(total, big.NewInt(50))

	text, err := os.ReadFile(cfg.Output)
	require.NoError(t, err)
	n, err := verify.Text(bytes.NewReader(text), scalarPub(12345), stride)
	require.NoError(t, err)
	assert.Equal(t, uint64(51), n)

	bin, err := os.ReadFile(cfg.BinOutput)
	require.NoError(t, err)
	n, err = verify.Binary(bytes.NewReader(bin), bytes.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, uint64(51), n)

	bf, err := os.Open(cfg.BloomOutput)
	require.NoError(t, err)
	defer bf.Close()
	filter, err := sink.ReadBloom(bf)
	require.NoError(t, err)
	for i := 0; i < len(bin); i += 32 {
		assert.True(t, filter.Test(bin[i:i+32]), "entry %d", i/32)
	}

	addrs, err := os.ReadFile(cfg.AddrOutput)
	require.NoError(t, err)
	assert.Equal(t, 51, strings.Count(string(addrs), "\n"))

	m, err := sink.ReadManifest(cfg.Manifest)
	require.NoError(t, err)
	assert.Equal(t, cfg.PubKey, m.PubKey)
	assert.Equal(t, total.String(), m.RangeValue)
	assert.Equal(t, stride.String(), m.Stride)
	assert.Equal(t, uint64(51), m.Points)
	assert.Equal(t, 3, m.Workers)
	require.Len(t, m.Outputs, 4)
	for i, o := range sum.Outputs {
		assert.Equal(t, o.Kind, m.Outputs[i].Kind)
		assert.Equal(t, o.Bytes, m.Outputs[i].Bytes)
	}
}

func TestRunInvalidInputCreatesNothing(t *testing.T) {
	cases := []struct {
		name  string
		setup func(c *config.Config)
		err   error
	}{
		{"odd chunks", func(c *config.Config) { c.Chunks = 3 }, config.ErrOddChunks},
		{"bad prefix", func(c *config.Config) { c.PubKey = "05" + g[2:] }, secp256k1.ErrInvalidPrefix},
		{"off curve", func(c *config.Config) {
			c.PubKey = "02eefdea4cdb677750a420fee807eacf21eb9898ae79b9768766e4faa04a2d4a34"
		}, secp256k1.ErrInvalidCurvePoint},
		{"bad range", func(c *config.Config) { c.Range = "2**" }, nil},
		{"negative range", func(c *config.Config) { c.Range = "-5" }, ErrNegativeRange},
		{"division by zero", func(c *config.Config) { c.Range = "1 // 0" }, rangeexpr.ErrDivisionByZero},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := newConfig(dir)
			cfg.BinOutput = filepath.Join(dir, "points.bin")
			tc.setup(cfg)

			_, err := Run(context.Background(), cfg)
			require.Error(t, err)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
			}

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestRunOpenFailureRemovesCreated(t *testing.T) {
	dir := t.TempDir()
	cfg := newConfig(dir)
	cfg.BinOutput = filepath.Join(dir, "missing", "points.bin")

	_, err := Run(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open binary output")

	_, err = os.Stat(cfg.Output)
	assert.True(t, os.IsNotExist(err))
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	cfg := newConfig(dir)
	cfg.Chunks = 1000
	cfg.BlockSize = 10

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := New(cfg)
	_, err := d.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, d.Stats().Points, uint64(1001))
}

func TestPrepare(t *testing.T) {
	cfg := newConfig(t.TempDir())
	cfg.Range = "1001"
	cfg.Chunks = 10
	cfg.BlockSize = 4

	plan, err := Prepare(cfg)
	require.NoError(t, err)
	assert.Equal(t, "1001", plan.Range.String())
	assert.Equal(t, "100", plan.Stride.String())
	require.Equal(t, uint64(3), plan.Blocks.Len())
	assert.Equal(t, uint64(1), plan.Blocks.At(0).Start)
	assert.Equal(t, uint64(11), plan.Blocks.At(2).End)
	assert.False(t, plan.Job.EmitX)
	assert.True(t, plan.Key.IsEqual(scalarPub(1)))
}

func TestPrepareHugeChunkCount(t *testing.T) {
	cfg := newConfig(t.TempDir())
	cfg.Range = "2**70"
	cfg.Chunks = 1 << 62
	cfg.BlockSize = 1

	plan, err := Prepare(cfg)
	require.NoError(t, err)
	assert.Equal(t, uint64(1<<62), plan.Blocks.Len())
	assert.Equal(t, "256", plan.Stride.String())
	assert.Equal(t, uint64(1<<62+1), plan.Blocks.At(plan.Blocks.Len()-1).End)
}
