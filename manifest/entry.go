package manifest

import (
	"encoding/binary"
	"fmt"
	"math"
)

// entryOverhead is the encoded size of an Entry minus its path bytes:
// id, path length, offset, count, bytes, sum, ctime.
const entryOverhead = 8 + 2 + 8 + 8 + 8 + 8 + 8

// Entry describes one published segment file.
type Entry struct {
	// ID is the catalog-assigned sequence number.
	ID int64
	// Path is the segment file location relative to the catalog root.
	Path string
	// Offset is the byte position of the segment within its file.
	Offset int64
	// Count is the number of records in the segment.
	Count uint64
	// Bytes is the segment length, count prefix included.
	Bytes int64
	// Sum is the xxhash digest of the segment bytes.
	Sum uint64
	// CTime is the publish time in unix nanoseconds.
	CTime int64
}

// AppendEntry appends the binary encoding of e to buf and returns
// the extended slice.
func AppendEntry(buf []byte, e Entry) []byte {
	buf = binary.LittleEndian.AppendUint64(buf, uint64(e.ID))
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(e.Path)))
	buf = append(buf, e.Path...)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(e.Offset))
	buf = binary.LittleEndian.AppendUint64(buf, e.Count)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(e.Bytes))
	buf = binary.LittleEndian.AppendUint64(buf, e.Sum)
	buf = binary.LittleEndian.AppendUint64(buf, uint64(e.CTime))
	return buf
}

// EncodedSize returns the number of bytes AppendEntry produces for e.
func (e Entry) EncodedSize() int {
	return entryOverhead + len(e.Path)
}

// DecodeEntry decodes an Entry from buf.
func DecodeEntry(buf []byte) (Entry, error) {
	var e Entry
	if len(buf) < entryOverhead {
		return e, fmt.Errorf("%w: entry truncated at %d bytes", ErrCorrupted, len(buf))
	}
	e.ID = int64(binary.LittleEndian.Uint64(buf))
	pathLen := int(binary.LittleEndian.Uint16(buf[8:]))
	if len(buf) < entryOverhead+pathLen {
		return Entry{}, fmt.Errorf("%w: entry path truncated (want %d bytes, have %d)",
			ErrCorrupted, entryOverhead+pathLen, len(buf))
	}
	e.Path = string(buf[10 : 10+pathLen])
	rest := buf[10+pathLen:]
	e.Offset = int64(binary.LittleEndian.Uint64(rest))
	e.Count = binary.LittleEndian.Uint64(rest[8:])
	e.Bytes = int64(binary.LittleEndian.Uint64(rest[16:]))
	e.Sum = binary.LittleEndian.Uint64(rest[24:])
	e.CTime = int64(binary.LittleEndian.Uint64(rest[32:]))
	return e, nil
}

// valid reports whether the entry can be stored.
func (e Entry) valid() error {
	if e.ID <= 0 {
		return fmt.Errorf("invalid entry id %d", e.ID)
	}
	if e.Path == "" {
		return fmt.Errorf("entry %d has empty path", e.ID)
	}
	if len(e.Path) > math.MaxUint16 {
		return fmt.Errorf("entry %d path exceeds %d bytes", e.ID, math.MaxUint16)
	}
	if e.Offset < 0 || e.Bytes < 0 {
		return fmt.Errorf("entry %d has negative sizes (offset %d, bytes %d)",
			e.ID, e.Offset, e.Bytes)
	}
	return nil
}
