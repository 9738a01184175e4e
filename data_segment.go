package jacquesctf

import "fmt"

// DataSegment is a contiguous bit range within a packet: an offset (from
// packet start) and a size, both in bits. It plays the role the teacher's
// Extent plays for LBA ranges, but at bit rather than block granularity.
type DataSegment struct {
	OffsetBits Index
	SizeBits   Size
}

// EndOffsetBits is the offset of the first bit past the segment.
func (s DataSegment) EndOffsetBits() Index {
	return s.OffsetBits + s.SizeBits
}

// ExtraBits is how far the segment's start intrudes past the byte boundary
// containing it: 0 when the segment starts on a byte boundary.
func (s DataSegment) ExtraBits() Size {
	return s.OffsetBits % 8
}

// Contains reports whether bit offset o falls within the segment.
func (s DataSegment) Contains(o Index) bool {
	return o >= s.OffsetBits && o < s.EndOffsetBits()
}

// Empty reports whether the segment spans zero bits.
func (s DataSegment) Empty() bool {
	return s.SizeBits == 0
}

// Adjacent reports whether s ends exactly where next begins, i.e. there is
// no gap and no overlap between them.
func (s DataSegment) Adjacent(next DataSegment) bool {
	return s.EndOffsetBits() == next.OffsetBits
}

func (s DataSegment) String() string {
	return fmt.Sprintf("[%d, %d)", s.OffsetBits, s.EndOffsetBits())
}

// DataRange is the byte window of the packet's memory map touched by a
// DataSegment: always byte-aligned on both ends, covering every byte the
// segment's bits intrude into.
type DataRange struct {
	Bytes []byte
}

// rangeForSegment derives the DataRange of base (the packet's full
// memory-mapped byte window) covered by seg.
func rangeForSegment(base []byte, seg DataSegment) DataRange {
	start := seg.OffsetBits / 8
	end := start + (seg.ExtraBits()+seg.SizeBits+7)/8

	if end > Index(len(base)) {
		end = Index(len(base))
	}

	return DataRange{Bytes: base[start:end]}
}
