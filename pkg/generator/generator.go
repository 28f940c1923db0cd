// Package generator defines the types shared by the subtracted-point pipeline.
// The pipeline derives P - i·Z·G for every index of a partitioned range and
// hands the records, in index order, to one or more output sinks.
package generator

import (
	"context"
	"math/big"
	"time"

	"github.com/btcsuite/btcd/btcec/v2"
)

// Job is the immutable configuration every worker reads.
// It is built once by the driver and never mutated after Generate starts.
type Job struct {
	Base   *btcec.PublicKey // Target public key P
	Stride *big.Int         // Z = floor(range / chunks)
	EmitX  bool             // Fill Record.X for binary-style sinks
}

// Block is a half-open index interval [Start, End) over i ∈ [1, Y].
type Block struct {
	Seq   uint64 // Position in submission order
	Start uint64 // First index (inclusive)
	End   uint64 // Last index (exclusive)
}

// Len returns the number of indices in the block.
func (b Block) Len() uint64 {
	return b.End - b.Start
}

// Record is one generated point.
type Record struct {
	Index  uint64           // i (0 for the header record)
	Offset *big.Int         // i·Z
	Key    *btcec.PublicKey // P - i·Z·G
	Hex    string           // Compressed key, 66 lowercase hex chars
	X      [32]byte         // Big-endian X, only set when Job.EmitX
}

// BlockResult is the output of one block, consumed exactly once by the aggregator.
type BlockResult struct {
	Seq     uint64
	Records []Record
}

// Sink receives records in strictly ascending index order.
// Sinks are written by a single goroutine and need no locking.
type Sink interface {
	WriteRecord(r *Record) error
	Close() error
}

// Stats holds real-time performance statistics.
type Stats struct {
	Points      uint64  // Records handed to the sink, header included
	Blocks      uint64  // Blocks consumed in order
	PointRate   float64 // Points per second
	ElapsedSecs float64 // Time elapsed since start
}

// Summary is the report of a finished run.
type Summary struct {
	Points   uint64
	Blocks   uint64
	Stride   *big.Int
	Elapsed  time.Duration
	Started  time.Time
	Finished time.Time
	Outputs  []Output // Filled in once the sinks are closed
}

// Output is the final size of one sink.
type Output struct {
	Kind  string
	Path  string
	Bytes uint64
}

// Generator defines the contract for point generation backends.
type Generator interface {
	// Generate writes the header record for Job.Base followed by every block's
	// records, in block order, to sink. It stops at the first error or when
	// ctx is cancelled. The sink is not closed.
	Generate(ctx context.Context, job *Job, blocks Blocks, sink Sink) (*Summary, error)

	// Stats returns the current performance statistics.
	// This method is safe to call concurrently from any goroutine.
	Stats() Stats

	// Name returns the implementation name.
	Name() string
}
