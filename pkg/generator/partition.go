package generator

import (
	"errors"
	"iter"
	"math"
)

var (
	// ErrZeroBlockSize is returned when a partition is requested with no block size.
	ErrZeroBlockSize = errors.New("block size must be greater than zero")
	// ErrRangeTooLarge is returned when the index range cannot be expressed half-open.
	ErrRangeTooLarge = errors.New("index range too large")
)

// Blocks is the partition of [1, Total] into contiguous blocks of at most
// Size indices, in ascending order. Blocks are derived from their sequence
// number on demand, so a partition is two integers whatever the range.
type Blocks struct {
	Total uint64
	Size  uint64
}

// Partition describes [1, total] split into blocks of at most blockSize
// indices. Sequence order is both the dispatch order and the order in which
// results are written.
func Partition(total, blockSize uint64) (Blocks, error) {
	if blockSize == 0 {
		return Blocks{}, ErrZeroBlockSize
	}
	if total == math.MaxUint64 {
		return Blocks{}, ErrRangeTooLarge
	}
	return Blocks{Total: total, Size: blockSize}, nil
}

// Len returns the number of blocks.
func (p Blocks) Len() uint64 {
	if p.Size == 0 {
		return 0
	}
	n := p.Total / p.Size
	if p.Total%p.Size != 0 {
		n++
	}
	return n
}

// At returns block seq. seq must be below Len.
func (p Blocks) At(seq uint64) Block {
	start := 1 + seq*p.Size
	end := p.Total + 1
	if end-start > p.Size {
		end = start + p.Size
	}
	return Block{Seq: seq, Start: start, End: end}
}

// All yields every block in sequence order.
func (p Blocks) All() iter.Seq[Block] {
	return func(yield func(Block) bool) {
		n := p.Len()
		for seq := uint64(0); seq < n; seq++ {
			if !yield(p.At(seq)) {
				return
			}
		}
	}
}
