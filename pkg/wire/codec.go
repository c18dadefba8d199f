package wire

import (
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Record and binding streams are encoded canonically so that two equal
// results always produce the same bytes.
var encMode = mustEncMode(cbor.EncOptions{
	Sort:          cbor.SortCanonical,
	IndefLength:   cbor.IndefLengthForbidden,
	NilContainers: cbor.NilContainerAsEmpty,
	Time:          cbor.TimeRFC3339Nano,
})

func mustEncMode(opts cbor.EncOptions) cbor.EncMode {
	m, err := opts.EncMode()
	if err != nil {
		panic("wire: cbor encoder options: " + err.Error())
	}
	return m
}

// NewEncoder returns a canonical encoder writing a CBOR sequence to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}
