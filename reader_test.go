package segio

import (
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadCount_Widths(t *testing.T) {
	n, err := ReadCount(NewBuffer([]byte{7, 0, 0, 0}), Prefix32)
	require.NoError(t, err)
	require.Equal(t, uint64(7), n)

	n, err = ReadCount(NewBuffer([]byte{9, 0, 0, 0, 0, 0, 0, 0}), Prefix64)
	require.NoError(t, err)
	require.Equal(t, uint64(9), n)

	_, err = ReadCount(NewBuffer(nil), Prefix32)
	require.Error(t, err)

	_, err = ReadCount(NewBuffer([]byte{1, 2, 3, 4}), PrefixWidth(5))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid count prefix width")
}

func TestCountedReader_Truncated(t *testing.T) {
	// Prefix promises 3 records but only 2 follow.
	raw := binary.LittleEndian.AppendUint32(nil, 3)
	raw, _ = edge{From: 1, To: 2}.AppendBinary(raw)
	raw, _ = edge{From: 2, To: 3}.AppendBinary(raw)

	r, err := NewCountedReader[edge](NewBuffer(raw), 8, decodeEdge)
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	require.NoError(t, err)

	_, err = r.Next()
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Contains(t, err.Error(), "record 2 of 3")
}

func TestCountedReader_TrailingBytesIgnored(t *testing.T) {
	raw := binary.LittleEndian.AppendUint32(nil, 1)
	raw, _ = edge{From: 4, To: 5}.AppendBinary(raw)
	raw = append(raw, 0xDE, 0xAD, 0xBE, 0xEF) // padding past the last record

	r, err := NewCountedReader[edge](NewBuffer(raw), 8, decodeEdge)
	require.NoError(t, err)

	got, err := r.Next()
	require.NoError(t, err)
	require.Equal(t, edge{From: 4, To: 5}, got)
	require.Equal(t, uint64(0), r.Remaining())

	_, err = r.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestCountedReader_Remaining(t *testing.T) {
	buf := NewBuffer(nil)
	w, err := NewCountedWriter[edge](buf)
	require.NoError(t, err)
	for i := uint32(0); i < 5; i++ {
		require.NoError(t, w.Write(edge{From: i, To: i + 1}))
	}
	require.NoError(t, w.Close())

	_, err = buf.Seek(0, io.SeekStart)
	require.NoError(t, err)
	r, err := NewCountedReader[edge](buf, 8, decodeEdge)
	require.NoError(t, err)

	for want := uint64(5); want > 0; want-- {
		require.Equal(t, want, r.Remaining())
		_, err := r.Next()
		require.NoError(t, err)
	}
	require.Equal(t, uint64(0), r.Remaining())
}
