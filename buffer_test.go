package segio

import (
	"io"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer_WriteSeekOverwrite(t *testing.T) {
	var b Buffer

	n, err := b.Write([]byte{1, 2, 3, 4, 5, 6, 7, 8})
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.Equal(t, 8, b.Len())

	// Patch bytes 2..4 and confirm the position lands after the patch.
	pos, err := b.Seek(2, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, int64(2), pos)
	_, err = b.Write([]byte{0xAA, 0xBB})
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 0xAA, 0xBB, 5, 6, 7, 8}, b.Bytes())

	pos, err = b.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	require.Equal(t, int64(4), pos)

	pos, err = b.Seek(-3, io.SeekEnd)
	require.NoError(t, err)
	require.Equal(t, int64(5), pos)

	rest, err := io.ReadAll(&b)
	require.NoError(t, err)
	require.Equal(t, []byte{6, 7, 8}, rest)
}

func TestBuffer_SparseSeekZeroFills(t *testing.T) {
	var b Buffer

	_, err := b.Seek(8, io.SeekStart)
	require.NoError(t, err)
	require.Equal(t, 0, b.Len()) // nothing materializes until a write

	_, err = b.Write([]byte{9, 9})
	require.NoError(t, err)
	require.Equal(t, 10, b.Len())
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0, 9, 9}, b.Bytes())
}

func TestBuffer_ReadPastEnd(t *testing.T) {
	b := NewBuffer([]byte{1, 2, 3})

	_, err := b.Seek(3, io.SeekStart)
	require.NoError(t, err)
	var p [4]byte
	_, err = b.Read(p[:])
	require.ErrorIs(t, err, io.EOF)
}

func TestBuffer_InvalidSeek(t *testing.T) {
	var b Buffer

	_, err := b.Seek(0, 42)
	require.ErrorIs(t, err, fs.ErrInvalid)

	_, err = b.Seek(-1, io.SeekStart)
	require.ErrorIs(t, err, fs.ErrInvalid)
}
