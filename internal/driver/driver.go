// Package driver wires configuration, key decoding, partitioning, the CPU
// generator and the output sinks into one run.
package driver

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"os"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/Amr-9/XPointGen/internal/config"
	"github.com/Amr-9/XPointGen/internal/ui"
	"github.com/Amr-9/XPointGen/pkg/generator"
	"github.com/Amr-9/XPointGen/pkg/generator/cpu"
	"github.com/Amr-9/XPointGen/pkg/generator/secp256k1"
	"github.com/Amr-9/XPointGen/pkg/generator/sink"
	"github.com/Amr-9/XPointGen/pkg/rangeexpr"
)

var ErrNegativeRange = errors.New("range must not be negative")

// Plan is everything derived from a Config before any file is touched.
type Plan struct {
	Key    *btcec.PublicKey
	Range  *big.Int
	Stride *big.Int
	Blocks generator.Blocks
	Job    *generator.Job
}

// Prepare validates cfg and computes the run plan. It has no side effects.
func Prepare(cfg *config.Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	total, err := rangeexpr.Eval(cfg.Range)
	if err != nil {
		return nil, fmt.Errorf("range %q: %w", cfg.Range, err)
	}
	if total.Sign() < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNegativeRange, total)
	}

	key, err := secp256k1.DecodePubKey(cfg.PubKey)
	if err != nil {
		return nil, err
	}

	stride := new(big.Int).Quo(total, new(big.Int).SetUint64(cfg.Chunks))

	blocks, err := generator.Partition(cfg.Chunks, cfg.BlockSize)
	if err != nil {
		return nil, err
	}

	return &Plan{
		Key:    key,
		Range:  total,
		Stride: stride,
		Blocks: blocks,
		Job:    &generator.Job{Base: key, Stride: stride, EmitX: cfg.EmitX()},
	}, nil
}

// Driver runs one configuration. Stats may be polled from another goroutine
// while Run is in progress.
type Driver struct {
	cfg *config.Config
	gen *cpu.CPUGenerator
}

func New(cfg *config.Config) *Driver {
	return &Driver{cfg: cfg, gen: cpu.NewCPUGenerator(cfg.Workers)}
}

// Run is New(cfg).Run(ctx).
func Run(ctx context.Context, cfg *config.Config) (*generator.Summary, error) {
	return New(cfg).Run(ctx)
}

func (d *Driver) Stats() generator.Stats {
	return d.gen.Stats()
}

// Run generates every point into the configured sinks. No file is created
// unless the configuration, range and key are all valid.
func (d *Driver) Run(ctx context.Context) (*generator.Summary, error) {
	cfg := d.cfg
	plan, err := Prepare(cfg)
	if err != nil {
		return nil, err
	}

	ui.Debugf("Driver", "range %s, chunks %d, stride %s", plan.Range, cfg.Chunks, plan.Stride)
	ui.Debugf("Driver", "%d blocks of up to %d indices on %d workers", plan.Blocks.Len(), cfg.BlockSize, d.gen.Workers())

	if !cfg.Quiet {
		info := &ui.RunInfo{
			PubKey:    secp256k1.EncodeCompressed(plan.Key),
			Range:     plan.Range,
			Chunks:    cfg.Chunks,
			Stride:    plan.Stride,
			Blocks:    plan.Blocks.Len(),
			BlockSize: cfg.BlockSize,
			Workers:   d.gen.Workers(),
		}
		for _, o := range cfg.Outputs() {
			info.Outputs = append(info.Outputs, o.Kind+" "+o.Path)
		}
		ui.PrintRunInfo(info)
	}

	sinks, kinds, err := openSinks(cfg)
	if err != nil {
		return nil, err
	}

	progress := ui.NewProgress(cfg.Chunks, cfg.Quiet)
	d.gen.OnBlock(progress.Block)

	sum, err := d.gen.Generate(ctx, plan.Job, plan.Blocks, sinks)
	progress.Finish()
	if err != nil {
		if cerr := sinks.Close(); cerr != nil {
			ui.Errorf("Driver", "closing outputs after failure: %v", cerr)
		}
		return nil, err
	}
	if err := sinks.Close(); err != nil {
		return nil, fmt.Errorf("close outputs: %w", err)
	}

	for i, s := range sinks {
		sum.Outputs = append(sum.Outputs, generator.Output{Kind: kinds[i], Path: s.Name(), Bytes: s.Written()})
	}
	for _, o := range sum.Outputs {
		ui.Debugf("Driver", "%s %s: %d bytes", o.Kind, o.Path, o.Bytes)
	}

	if cfg.Manifest != "" {
		if err := sink.WriteManifest(cfg.Manifest, manifest(cfg, plan, d.gen.Workers(), sum)); err != nil {
			return sum, fmt.Errorf("write manifest: %w", err)
		}
	}
	return sum, nil
}

// openSinks creates the requested files in config order. If one cannot be
// created, the ones already created are closed and removed.
func openSinks(cfg *config.Config) (sink.Multi, []string, error) {
	var sinks sink.Multi
	var kinds []string
	var created []string

	fail := func(err error) (sink.Multi, []string, error) {
		_ = sinks.Close()
		for _, p := range created {
			_ = os.Remove(p)
		}
		return nil, nil, err
	}

	for _, o := range cfg.Outputs() {
		var s sink.Sink
		var err error
		switch o.Kind {
		case "text":
			s, err = sink.NewText(o.Path)
		case "binary":
			s, err = sink.NewBinary(o.Path)
		case "address":
			s, err = sink.NewAddress(o.Path, cfg.AddrType)
		case "bloom":
			s, err = sink.NewBloom(o.Path, cfg.Chunks+1, cfg.BloomFP)
		default:
			continue
		}
		if err != nil {
			return fail(fmt.Errorf("open %s output: %w", o.Kind, err))
		}
		if o.Path != "-" {
			created = append(created, o.Path)
		}
		sinks = append(sinks, s)
		kinds = append(kinds, o.Kind)
	}
	return sinks, kinds, nil
}

func manifest(cfg *config.Config, plan *Plan, workers int, sum *generator.Summary) *sink.Manifest {
	m := &sink.Manifest{
		PubKey:     secp256k1.EncodeCompressed(plan.Key),
		Range:      cfg.Range,
		RangeValue: plan.Range.String(),
		Chunks:     cfg.Chunks,
		Stride:     plan.Stride.String(),
		BlockSize:  cfg.BlockSize,
		Workers:    workers,
		Points:     sum.Points,
		Started:    sum.Started.UTC().Truncate(time.Millisecond),
		Finished:   sum.Finished.UTC().Truncate(time.Millisecond),
	}
	for _, o := range sum.Outputs {
		m.Outputs = append(m.Outputs, sink.ManifestOutput{Kind: o.Kind, Path: o.Path, Bytes: o.Bytes})
	}
	return m
}
