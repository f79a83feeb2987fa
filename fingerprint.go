package segio

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// fingerprintMagic spells "SEGI" in the file's little-endian bytes.
const fingerprintMagic uint32 = 0x49474553

// FingerprintSize is the encoded width of a Fingerprint.
const FingerprintSize = 16

// Fingerprint stamps a segmented file: which format revision produced it
// and a sum of the record layouts it contains. It is written as a
// header-only segment at the front of a file; readers decode it and refuse
// files whose producer disagrees. Detection only, there is no migration.
type Fingerprint struct {
	Magic     uint32
	Major     uint8
	Minor     uint8
	Flags     uint16 // reserved, zero for now
	LayoutSum uint64
}

// NewFingerprint builds a fingerprint for the given format revision. The
// layout descriptors (say "node:16" or "edge:8") are hashed together so a
// reader can tell record-shape drift apart from plain corruption.
func NewFingerprint(major, minor uint8, layouts ...string) Fingerprint {
	return Fingerprint{
		Magic:     fingerprintMagic,
		Major:     major,
		Minor:     minor,
		LayoutSum: xxhash.Sum64String(strings.Join(layouts, ",")),
	}
}

// AppendBinary implements Layout.
func (f Fingerprint) AppendBinary(buf []byte) ([]byte, error) {
	buf = binary.LittleEndian.AppendUint32(buf, f.Magic)
	buf = append(buf, f.Major, f.Minor)
	buf = binary.LittleEndian.AppendUint16(buf, f.Flags)
	buf = binary.LittleEndian.AppendUint64(buf, f.LayoutSum)
	return buf, nil
}

// EncodedSize implements Layout.
func (f Fingerprint) EncodedSize() int { return FingerprintSize }

// DecodeFingerprint decodes a fingerprint and validates its magic.
func DecodeFingerprint(buf []byte) (Fingerprint, error) {
	if len(buf) < FingerprintSize {
		return Fingerprint{}, fmt.Errorf("fingerprint truncated: %d bytes", len(buf))
	}
	f := Fingerprint{
		Magic:     binary.LittleEndian.Uint32(buf[0:4]),
		Major:     buf[4],
		Minor:     buf[5],
		Flags:     binary.LittleEndian.Uint16(buf[6:8]),
		LayoutSum: binary.LittleEndian.Uint64(buf[8:16]),
	}
	if f.Magic != fingerprintMagic {
		return Fingerprint{}, fmt.Errorf("%w: %#08x", ErrBadMagic, f.Magic)
	}
	return f, nil
}

// Compatible reports whether data stamped o is readable by a tool
// fingerprinted f: same magic, same major revision, same record layouts.
// Minor revisions stay readable.
func (f Fingerprint) Compatible(o Fingerprint) bool {
	return f.Magic == o.Magic && f.Major == o.Major && f.LayoutSum == o.LayoutSum
}
