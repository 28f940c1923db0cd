package sink

import (
	"io"

	"github.com/Amr-9/XPointGen/pkg/generator"
)

// Text writes one "<compressed hex>  # -<offset>" line per record.
// The header record is written as "<compressed hex>  # 0".
type Text struct {
	*output
	line []byte
}

// NewText creates the text file at path ("-" for stdout).
func NewText(path string) (*Text, error) {
	o, err := createOutput(path)
	if err != nil {
		return nil, err
	}
	return &Text{output: o}, nil
}

// NewTextWriter wraps w; w is closed by Close when it implements io.Closer.
func NewTextWriter(w io.Writer, name string) *Text {
	return &Text{output: newOutput(w, name)}
}

// WriteRecord appends the record's line.
func (t *Text) WriteRecord(r *generator.Record) error {
	t.line = AppendLine(t.line[:0], r)
	_, err := t.Write(t.line)
	return err
}

// AppendLine appends the text form of r, newline included, to buf.
func AppendLine(buf []byte, r *generator.Record) []byte {
	buf = append(buf, r.Hex...)
	if r.Index == 0 {
		return append(buf, "  # 0\n"...)
	}
	buf = append(buf, "  # -"...)
	buf = r.Offset.Append(buf, 10)
	return append(buf, '\n')
}
