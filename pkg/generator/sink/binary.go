package sink

import (
	"io"

	"github.com/Amr-9/XPointGen/pkg/generator"
)

// Binary writes the raw 32-byte big-endian X coordinate of every record.
// Records must come from a job with EmitX set.
type Binary struct {
	*output
}

// NewBinary creates the binary file at path.
func NewBinary(path string) (*Binary, error) {
	o, err := createOutput(path)
	if err != nil {
		return nil, err
	}
	return &Binary{output: o}, nil
}

// NewBinaryWriter wraps w; w is closed by Close when it implements io.Closer.
func NewBinaryWriter(w io.Writer, name string) *Binary {
	return &Binary{output: newOutput(w, name)}
}

func (b *Binary) WriteRecord(r *generator.Record) error {
	_, err := b.Write(r.X[:])
	return err
}
