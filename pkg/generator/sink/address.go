package sink

import (
	"fmt"
	"io"

	"github.com/Amr-9/XPointGen/pkg/generator"
	"github.com/Amr-9/XPointGen/pkg/generator/address"
)

// Address writes one address per record, in the chosen format.
type Address struct {
	*output
	typ  address.Type
	line []byte
}

// NewAddress creates the address list at path.
func NewAddress(path string, typ address.Type) (*Address, error) {
	o, err := createOutput(path)
	if err != nil {
		return nil, err
	}
	return &Address{output: o, typ: typ}, nil
}

// NewAddressWriter wraps w; w is closed by Close when it implements io.Closer.
func NewAddressWriter(w io.Writer, name string, typ address.Type) *Address {
	return &Address{output: newOutput(w, name), typ: typ}
}

func (a *Address) WriteRecord(r *generator.Record) error {
	addr, err := address.Derive(r.Key, a.typ)
	if err != nil {
		return fmt.Errorf("%s address for index %d: %w", a.typ, r.Index, err)
	}
	a.line = append(append(a.line[:0], addr...), '\n')
	_, err = a.Write(a.line)
	return err
}
