// Package sink holds the output writers fed by the generator. Every sink is
// append-only and written by a single goroutine, so none of them lock.
package sink

import (
	"bufio"
	"errors"
	"io"
	"os"

	"github.com/Amr-9/XPointGen/pkg/generator"
)

// BufferSize is the write buffer in front of every file sink.
const BufferSize = 4 << 20

// Sink is a generator.Sink that can describe itself for the run summary.
type Sink interface {
	generator.Sink
	Name() string    // Output path or description
	Written() uint64 // Bytes written so far
}

// output is a buffered, byte-counting writer over an optional closer.
type output struct {
	name   string
	bw     *bufio.Writer
	closer io.Closer
	n      uint64
}

func newOutput(w io.Writer, name string) *output {
	o := &output{name: name, bw: bufio.NewWriterSize(w, BufferSize)}
	if c, ok := w.(io.Closer); ok && w != os.Stdout {
		o.closer = c
	}
	return o
}

func createOutput(path string) (*output, error) {
	if path == "-" {
		return newOutput(os.Stdout, "stdout"), nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	return newOutput(f, path), nil
}

func (o *output) Write(p []byte) (int, error) {
	n, err := o.bw.Write(p)
	o.n += uint64(n)
	return n, err
}

func (o *output) Name() string    { return o.name }
func (o *output) Written() uint64 { return o.n }

func (o *output) Close() error {
	err := o.bw.Flush()
	if o.closer != nil {
		err = errors.Join(err, o.closer.Close())
		o.closer = nil
	}
	return err
}

// Multi fans every record out to each sink in order.
type Multi []Sink

// WriteRecord forwards r to every sink, stopping at the first error.
func (m Multi) WriteRecord(r *generator.Record) error {
	for _, s := range m {
		if err := s.WriteRecord(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes every sink, even after a failure, and joins the errors.
func (m Multi) Close() error {
	var errs []error
	for _, s := range m {
		errs = append(errs, s.Close())
	}
	return errors.Join(errs...)
}
