package cpu

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Amr-9/XPointGen/pkg/generator"
	"github.com/Amr-9/XPointGen/pkg/generator/secp256k1"
)

// ErrPointAtInfinity is returned when P - k·G is the identity, i.e. k is the
// discrete log of P modulo n.
var ErrPointAtInfinity = errors.New("derived point is at infinity")

var groupOrder = secp256k1.GroupOrder()

// CPUGenerator implements the Generator interface using a fixed pool of
// goroutines. Blocks run concurrently; results are written in block order.
type CPUGenerator struct {
	points  atomic.Uint64 // Records written, header included
	blocks  atomic.Uint64 // Blocks written
	started atomic.Int64  // Unix nanoseconds when generation started
	workers int           // Number of concurrent workers

	compute func(job *generator.Job, b generator.Block) (*generator.BlockResult, error)
	onBlock func(res *generator.BlockResult)
}

// NewCPUGenerator creates a new CPU-based generator.
// If workers is 0, it defaults to the number of CPU cores.
func NewCPUGenerator(workers int) *CPUGenerator {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &CPUGenerator{
		workers: workers,
		compute: ComputeBlock,
	}
}

// Name returns the implementation name.
func (g *CPUGenerator) Name() string {
	return "CPU"
}

// Workers returns the configured pool size.
func (g *CPUGenerator) Workers() int {
	return g.workers
}

// OnBlock registers fn to run on the writer goroutine after each block has
// been handed to the sink.
func (g *CPUGenerator) OnBlock(fn func(res *generator.BlockResult)) {
	g.onBlock = fn
}

// Stats returns the current performance statistics. It may be called while
// Generate is running.
func (g *CPUGenerator) Stats() generator.Stats {
	points := g.points.Load()
	var elapsed float64
	if started := g.started.Load(); started != 0 {
		elapsed = time.Since(time.Unix(0, started)).Seconds()
	}

	var rate float64
	if elapsed > 0 {
		rate = float64(points) / elapsed
	}

	return generator.Stats{
		Points:      points,
		Blocks:      g.blocks.Load(),
		PointRate:   rate,
		ElapsedSecs: elapsed,
	}
}

// Generate writes the header record and then every block's records, in block
// order, to sink.
//
// Blocks are derived and dispatched in sequence order with at most 2·workers
// of them in flight. Finished blocks are parked in a reorder buffer keyed by Block.Seq
// and drained as soon as the next expected sequence number is present, so the
// sink sees the same byte stream for any worker count or schedule.
func (g *CPUGenerator) Generate(ctx context.Context, job *generator.Job, blocks generator.Blocks, sink generator.Sink) (*generator.Summary, error) {
	start := time.Now()
	g.points.Store(0)
	g.blocks.Store(0)
	g.started.Store(start.UnixNano())

	header := HeaderRecord(job)
	if err := sink.WriteRecord(&header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	g.points.Add(1)

	total := blocks.Len()
	workers := g.workers
	if uint64(workers) > total {
		workers = max(int(total), 1)
	}
	window := 2 * workers

	eg, ctx := errgroup.WithContext(ctx)
	queue := make(chan generator.Block)
	done := make(chan *generator.BlockResult, window)
	slots := make(chan struct{}, window)

	// Dispatcher: a slot is taken per block and returned once it is written.
	eg.Go(func() error {
		defer close(queue)
		for b := range blocks.All() {
			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				return ctx.Err()
			}
			select {
			case queue <- b:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		eg.Go(func() error {
			for b := range queue {
				if err := ctx.Err(); err != nil {
					return err
				}
				res, err := g.compute(job, b)
				if err != nil {
					return err
				}
				// never blocks: done has room for every slot
				done <- res
			}
			return nil
		})
	}

	// Writer: the only goroutine touching sink.
	eg.Go(func() error {
		pending := make(map[uint64]*generator.BlockResult, window)
		for next := uint64(0); next < total; {
			select {
			case res := <-done:
				pending[res.Seq] = res
			case <-ctx.Done():
				return ctx.Err()
			}

			for {
				res, ok := pending[next]
				if !ok {
					break
				}
				delete(pending, next)

				for i := range res.Records {
					if err := sink.WriteRecord(&res.Records[i]); err != nil {
						return fmt.Errorf("write index %d: %w", res.Records[i].Index, err)
					}
				}
				g.points.Add(uint64(len(res.Records)))
				g.blocks.Add(1)
				if g.onBlock != nil {
					g.onBlock(res)
				}

				<-slots
				next++
			}
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		return nil, err
	}

	finished := time.Now()
	return &generator.Summary{
		Points:   g.points.Load(),
		Blocks:   total,
		Stride:   new(big.Int).Set(job.Stride),
		Elapsed:  finished.Sub(start),
		Started:  start,
		Finished: finished,
	}, nil
}

// HeaderRecord returns the index 0 record: P itself at offset 0.
func HeaderRecord(job *generator.Job) generator.Record {
	rec := generator.Record{
		Index:  0,
		Offset: new(big.Int),
		Key:    job.Base,
		Hex:    secp256k1.EncodeCompressed(job.Base),
	}
	if job.EmitX {
		rec.X = secp256k1.XBytes(job.Base)
	}
	return rec
}

// ComputeBlock derives P - (i·Z mod n)·G for every i in b, in ascending order.
// It reads only job and b and has no side effects.
func ComputeBlock(job *generator.Job, b generator.Block) (*generator.BlockResult, error) {
	var base btcec.JacobianPoint
	job.Base.AsJacobian(&base)

	records := make([]generator.Record, 0, b.Len())
	idx := new(big.Int)
	k := new(big.Int)

	for i := b.Start; i < b.End; i++ {
		offset := new(big.Int).Mul(idx.SetUint64(i), job.Stride)
		k.Mod(offset, groupOrder)

		var scalar btcec.ModNScalar
		scalar.SetByteSlice(k.Bytes())

		// Q = k·G, then negate Y so that P + Q = P - k·G
		var q, r btcec.JacobianPoint
		btcec.ScalarBaseMultNonConst(&scalar, &q)
		q.Y.Normalize()
		q.Y.Negate(1).Normalize()

		btcec.AddNonConst(&base, &q, &r)
		if r.Z.IsZero() || (r.X.IsZero() && r.Y.IsZero()) {
			return nil, fmt.Errorf("index %d: %w", i, ErrPointAtInfinity)
		}
		r.ToAffine()

		key := btcec.NewPublicKey(&r.X, &r.Y)
		rec := generator.Record{
			Index:  i,
			Offset: offset,
			Key:    key,
			Hex:    secp256k1.EncodeCompressed(key),
		}
		if job.EmitX {
			rec.X = secp256k1.XBytes(key)
		}
		records = append(records, rec)
	}

	return &generator.BlockResult{Seq: b.Seq, Records: records}, nil
}
