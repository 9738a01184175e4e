package jacquesctf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestPacket(t *testing.T, elems []Element, totalBits Index, terminal error, cfg *EngineConfig) *Packet {
	t.Helper()

	entry := &IndexEntry{EffectiveTotalSize: DataSizeFromBits(totalBits)}
	it := newFakeIterator(elems, terminal)
	mmap := fakeMemoryMap{data: make([]byte, totalBits/8+1)}

	p, err := NewPacket(entry, it, mmap, cfg, nil, nil)
	require.NoError(t, err)

	return p
}

func TestPacketEmpty(t *testing.T) {
	r := require.New(t)

	entry := &IndexEntry{}
	it := newFakeIterator(nil, ErrEndOfPacket)

	p, err := NewPacket(entry, it, fakeMemoryMap{}, nil, nil, nil)
	r.NoError(err)
	r.False(p.HasData())
	r.EqualValues(0, p.EventRecordCount())

	_, err = p.FirstRegion()
	r.ErrorIs(err, ErrOutOfRange)
}

func TestPacketPreambleOnly(t *testing.T) {
	r := require.New(t)

	elems, total := scriptedPacket(0, 16, 8, 16)
	p := newTestPacket(t, elems, total, ErrEndOfPacket, nil)

	r.EqualValues(0, p.EventRecordCount())
	r.Nil(p.Error())

	first, err := p.FirstRegion()
	r.NoError(err)
	r.IsType(&ContentRegion{}, first)
	r.Equal(DataSegment{OffsetBits: 0, SizeBits: 16}, first.Segment())

	last, err := p.LastRegion()
	r.NoError(err)
	r.IsType(&PaddingRegion{}, last)
	r.EqualValues(total, last.Segment().EndOffsetBits())
}

func TestPacketSingleEventRecord(t *testing.T) {
	r := require.New(t)

	elems, total := scriptedPacket(1, 16, 8, 0)
	p := newTestPacket(t, elems, total, ErrEndOfPacket, nil)

	r.EqualValues(1, p.EventRecordCount())

	er, err := p.EventRecordAt(0)
	r.NoError(err)
	r.EqualValues(0, er.IndexInPacket)
	r.Equal("sample_event", er.Type.Name())
	r.NotNil(er.Timestamp)
	r.EqualValues(0, er.Timestamp.Cycles)
	r.Equal(DataSegment{OffsetBits: 16, SizeBits: 8}, er.Segment())

	region, err := p.RegionAt(16)
	r.NoError(err)
	content := region.(*ContentRegion)
	r.Equal(ValueKindUnsignedInt, content.Value.Kind)
	r.EqualValues(0, content.Value.Uint)

	_, err = p.EventRecordAt(1)
	r.ErrorIs(err, ErrOutOfRange)
}

func TestPacketTruncatedEventRecord(t *testing.T) {
	r := require.New(t)

	elems, _ := scriptedPacket(2, 16, 8, 0)
	// Truncate right after the second event record's begin element (index
	// 6: preamble field + first full event's 5 elements), dropping
	// everything from its type-resolved element onward.
	elems = elems[:7]

	decErr := &DecodingError{OffsetBits: 24, Message: "unexpected end of data"}
	p := newTestPacket(t, elems, 40, decErr, nil)

	r.EqualValues(1, p.EventRecordCount(), "the truncated second event record must not count")
	r.NotNil(p.Error())
	r.Equal(decErr, p.Error())

	er, err := p.EventRecordAt(0)
	r.NoError(err)
	r.EqualValues(0, er.IndexInPacket)
}

func TestPacketLargeWithCacheBoundary(t *testing.T) {
	r := require.New(t)

	const numEvents = 37
	elems, total := scriptedPacket(numEvents, 16, 8, 0)

	cfg := &EngineConfig{EventRecordCacheMax: 10, OffsetLRUCapacity: 4, CheckpointStride: 3}
	p := newTestPacket(t, elems, total, ErrEndOfPacket, cfg)

	r.EqualValues(numEvents, p.EventRecordCount())

	// Walk forward past several fill/evict boundaries.
	for i := 0; i < numEvents; i++ {
		er, err := p.EventRecordAt(Index(i))
		r.NoError(err)
		r.EqualValues(i, er.IndexInPacket)
		r.EqualValues(i, er.Timestamp.Cycles)
	}

	// Jump back to the beginning, forcing a re-fill from an early
	// checkpoint after the cache has moved on.
	first, err := p.EventRecordAt(0)
	r.NoError(err)
	r.EqualValues(0, first.IndexInPacket)

	// And to the very end.
	last, err := p.EventRecordAt(numEvents - 1)
	r.NoError(err)
	r.EqualValues(numEvents-1, last.IndexInPacket)

	lastRegion, err := p.LastRegion()
	r.NoError(err)
	r.EqualValues(total, lastRegion.Segment().EndOffsetBits())
}

func TestPacketAppendRegions(t *testing.T) {
	r := require.New(t)

	elems, total := scriptedPacket(3, 16, 8, 8)
	p := newTestPacket(t, elems, total, ErrEndOfPacket, nil)

	var out []Region
	out, err := p.AppendRegions(out, 0, total)
	r.NoError(err)

	// preamble field + 3 event payload fields + trailing padding
	r.Len(out, 5)

	for i := 1; i < len(out); i++ {
		r.True(out[i-1].Segment().Adjacent(out[i].Segment()), "region %d not adjacent to %d", i-1, i)
	}

	r.IsType(&PaddingRegion{}, out[len(out)-1])
}

func TestPacketRegionAtOutOfRange(t *testing.T) {
	r := require.New(t)

	elems, total := scriptedPacket(1, 16, 8, 0)
	p := newTestPacket(t, elems, total, ErrEndOfPacket, nil)

	_, err := p.RegionAt(total)
	r.ErrorIs(err, ErrOutOfRange)
}

func TestPacketInvalidPreambleSize(t *testing.T) {
	r := require.New(t)

	preamble := DataSizeFromBits(64)
	entry := &IndexEntry{
		EffectiveTotalSize: DataSizeFromBits(32),
		PreambleSize:       &preamble,
	}
	it := newFakeIterator(nil, ErrEndOfPacket)

	p, err := NewPacket(entry, it, fakeMemoryMap{}, nil, nil, nil)
	r.NoError(err, "a malformed index entry is reported via Invalid, not a constructor error")
	r.True(entry.Invalid)

	// None of these may touch the decoder: the Invalid flag (or, for
	// EventRecordAt, the zero event record count) answers each one with
	// ErrOutOfRange up front.
	_, err = p.RegionAt(0)
	r.ErrorIs(err, ErrOutOfRange)

	_, err = p.EventRecordAt(0)
	r.ErrorIs(err, ErrOutOfRange)

	_, err = p.FirstRegion()
	r.ErrorIs(err, ErrOutOfRange)
}
