package segio

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFingerprint_HeaderSegment(t *testing.T) {
	buf := NewBuffer(nil)
	fp := NewFingerprint(1, 3, "node:16", "edge:8")

	w, err := NewHeaderWriter(buf, fp)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.Equal(t, FingerprintSize, buf.Len())

	_, err = buf.Seek(0, io.SeekStart)
	require.NoError(t, err)
	got, err := ReadHeader(buf, FingerprintSize, DecodeFingerprint)
	require.NoError(t, err)
	require.Equal(t, fp, got)
}

func TestFingerprint_BadMagic(t *testing.T) {
	fp := NewFingerprint(1, 0, "edge:8")
	raw, err := fp.AppendBinary(nil)
	require.NoError(t, err)

	raw[0] ^= 0xFF
	_, err = DecodeFingerprint(raw)
	require.ErrorIs(t, err, ErrBadMagic)
}

func TestFingerprint_Truncated(t *testing.T) {
	fp := NewFingerprint(1, 0, "edge:8")
	raw, err := fp.AppendBinary(nil)
	require.NoError(t, err)

	_, err = DecodeFingerprint(raw[:10])
	require.Error(t, err)
	require.Contains(t, err.Error(), "truncated")
}

func TestFingerprint_Compatible(t *testing.T) {
	fp := NewFingerprint(2, 1, "node:16", "edge:8")

	require.True(t, fp.Compatible(NewFingerprint(2, 1, "node:16", "edge:8")))
	// Minor revisions stay readable.
	require.True(t, fp.Compatible(NewFingerprint(2, 4, "node:16", "edge:8")))
	// Major revisions and layout drift do not.
	require.False(t, fp.Compatible(NewFingerprint(3, 1, "node:16", "edge:8")))
	require.False(t, fp.Compatible(NewFingerprint(2, 1, "node:20", "edge:8")))
}
