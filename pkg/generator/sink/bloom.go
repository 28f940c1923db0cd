package sink

import (
	"errors"
	"io"

	"github.com/willf/bloom"

	"github.com/Amr-9/XPointGen/pkg/generator"
)

// DefaultFalsePositive is the target false-positive rate of the X filter.
const DefaultFalsePositive = 1e-6

// Bloom collects every X coordinate into a bloom filter and serializes the
// filter when closed. Records must come from a job with EmitX set.
type Bloom struct {
	*output
	filter *bloom.BloomFilter
}

// NewBloom creates the filter file at path, sized for n entries.
func NewBloom(path string, n uint64, fp float64) (*Bloom, error) {
	o, err := createOutput(path)
	if err != nil {
		return nil, err
	}
	return &Bloom{output: o, filter: newFilter(n, fp)}, nil
}

// NewBloomWriter wraps w; the filter is written to w by Close.
func NewBloomWriter(w io.Writer, name string, n uint64, fp float64) *Bloom {
	return &Bloom{output: newOutput(w, name), filter: newFilter(n, fp)}
}

func newFilter(n uint64, fp float64) *bloom.BloomFilter {
	if fp <= 0 || fp >= 1 {
		fp = DefaultFalsePositive
	}
	return bloom.NewWithEstimates(uint(max(n, 1)), fp)
}

func (b *Bloom) WriteRecord(r *generator.Record) error {
	b.filter.Add(r.X[:])
	return nil
}

// Filter returns the in-memory filter.
func (b *Bloom) Filter() *bloom.BloomFilter {
	return b.filter
}

// Close writes the filter and closes the file.
func (b *Bloom) Close() error {
	_, err := b.filter.WriteTo(b.output)
	return errors.Join(err, b.output.Close())
}

// ReadBloom loads a filter written by Bloom.
func ReadBloom(r io.Reader) (*bloom.BloomFilter, error) {
	f := &bloom.BloomFilter{}
	if _, err := f.ReadFrom(r); err != nil {
		return nil, err
	}
	return f, nil
}
