package segio

import "encoding"

// Layout is implemented by fixed-width header and record types. AppendBinary
// must append exactly EncodedSize bytes, produced by enumerating fields
// explicitly in little-endian order. Memory images of structs are not
// layouts: padding and field order would change the bytes between platforms.
type Layout interface {
	encoding.BinaryAppender
	EncodedSize() int
}

// DecodeFunc decodes one value from buf, the symmetric counterpart of a
// Layout's AppendBinary. Implementations must not retain buf.
type DecodeFunc[T any] func(buf []byte) (T, error)
