// Package codec turns cached query results into bytes and back.
// Every codec must round-trip all exported fields of the catalog records
// losslessly; a decode error is treated by the catalog as a corrupt entry.
package codec

import "fmt"

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}

// Names accepted by ByName.
const (
	NameJSON    = "json"
	NameMsgpack = "msgpack"
	NameCBOR    = "cbor"
)

// ByName returns the codec registered under name. An empty name selects JSON.
// maxDecode > 0 wraps the codec in a Limit.
func ByName[V any](name string, maxDecode int) (Codec[V], error) {
	var inner Codec[V]
	switch name {
	case "", NameJSON:
		inner = JSON[V]{}
	case NameMsgpack:
		inner = Msgpack[V]{}
	case NameCBOR:
		c, err := NewCBOR[V]()
		if err != nil {
			return nil, err
		}
		inner = c
	default:
		return nil, fmt.Errorf("codec: unknown codec %q", name)
	}
	if maxDecode > 0 {
		return Limit[V]{Inner: inner, MaxDecode: maxDecode}, nil
	}
	return inner, nil
}
