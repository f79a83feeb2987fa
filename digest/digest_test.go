package digest

import (
	"encoding/binary"
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/require"

	"github.com/miretskiy/segio"
)

// tick is a 12-byte fixture record.
type tick struct {
	Seq   uint64
	Delta uint32
}

func (t tick) AppendBinary(buf []byte) ([]byte, error) {
	buf = binary.LittleEndian.AppendUint64(buf, t.Seq)
	buf = binary.LittleEndian.AppendUint32(buf, t.Delta)
	return buf, nil
}

func (t tick) EncodedSize() int { return 12 }

func encodeTick(t tick) []byte {
	buf, _ := t.AppendBinary(nil)
	return buf
}

func TestCollector_DigestsPerRecord(t *testing.T) {
	var c Collector
	buf := segio.NewBuffer(nil)
	prefix := segio.NewCountPrefix[segio.None](segio.Prefix32)
	w, err := segio.New(buf, segio.None{}, segio.Policies[segio.None, tick]{
		Header:   prefix,
		Item:     Items[tick](&c),
		Finalize: prefix,
	})
	require.NoError(t, err)

	ticks := []tick{
		{Seq: 1, Delta: 10},
		{Seq: 2, Delta: 20},
		{Seq: 3, Delta: 30},
	}
	for _, tk := range ticks {
		require.NoError(t, w.Write(tk))
	}
	require.NoError(t, w.Close())

	require.Equal(t, uint64(3), w.Count())
	require.Len(t, buf.Bytes(), 4+3*12)
	require.Equal(t, uint32(3), binary.LittleEndian.Uint32(buf.Bytes()))

	require.Equal(t, 3, c.Len())
	for i, tk := range ticks {
		require.Equal(t, xxhash.Sum64(encodeTick(tk)), c.Sums()[i])
	}
}

func TestCollector_Reset(t *testing.T) {
	var c Collector
	buf := segio.NewBuffer(nil)
	w, err := segio.New(buf, segio.None{}, segio.Policies[segio.None, tick]{
		Item: Items[tick](&c),
	})
	require.NoError(t, err)
	require.NoError(t, w.Write(tick{Seq: 7}))
	require.NoError(t, w.Close())
	require.Equal(t, 1, c.Len())

	c.Reset()
	require.Equal(t, 0, c.Len())
	require.Empty(t, c.Sums())
}

func TestCollector_Filter(t *testing.T) {
	var c Collector
	buf := segio.NewBuffer(nil)
	w, err := segio.New(buf, segio.None{}, segio.Policies[segio.None, tick]{
		Item: Items[tick](&c),
	})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, w.Write(tick{Seq: uint64(i), Delta: uint32(i)}))
	}
	require.NoError(t, w.Close())

	f := c.Filter(0.01)
	var key [8]byte
	for _, sum := range c.Sums() {
		binary.LittleEndian.PutUint64(key[:], sum)
		require.True(t, f.Test(key[:]))
	}
	binary.LittleEndian.PutUint64(key[:], 0xfeedfacecafebeef)
	require.False(t, f.Test(key[:]))
}

func TestCollector_EmptyFilter(t *testing.T) {
	var c Collector
	f := c.Filter(0.01)
	var key [8]byte
	require.False(t, f.Test(key[:]))
}

func TestSumReader_MatchesSum64(t *testing.T) {
	data := encodeTick(tick{Seq: 42, Delta: 7})
	sum, err := SumReader(segio.NewBuffer(data))
	require.NoError(t, err)
	require.Equal(t, xxhash.Sum64(data), sum)
}
