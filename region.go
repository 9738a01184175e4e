package jacquesctf

// Region is the closed Content/Padding/Error tagged union of spec §3. It is
// implemented as a sealed interface rather than an open inheritance
// hierarchy: the only implementations are ContentRegion, PaddingRegion and
// ErrorRegion, and callers are expected to type-switch on Region the way
// the original C++ source's visitor pattern dispatched on the variant.
type Region interface {
	// Segment is the contiguous bit range this region covers.
	Segment() DataSegment

	// prevOffset is the offset in packet bits of the region that
	// immediately preceded this one in whichever cache produced it, or
	// nil if this was the first region of that cache. It is recorded at
	// construction only: nothing in this package reads it, and padding
	// byte-order inheritance (spec §4.1/§9) looks at the cache's last
	// region directly (see inheritedByteOrder in fill.go). It is not part
	// of the region's public identity (segment equality, per spec §8's
	// determinism property, never looks at it).
	prevOffset() *Index

	sealedRegion()
}

type regionBase struct {
	Seg  DataSegment
	Prev *Index
}

func (b regionBase) Segment() DataSegment { return b.Seg }
func (b regionBase) prevOffset() *Index   { return b.Prev }
func (regionBase) sealedRegion()          {}

// ContentRegion is a region spanning a single decoded scalar field.
type ContentRegion struct {
	regionBase
	Range DataRange
	Scope *Scope
	Type  DataType
	Value Value
}

// PaddingRegion is a region of bits with no decoded content: alignment
// padding, or trailing bytes after the last event record up to the
// packet's declared size.
type PaddingRegion struct {
	regionBase
	Scope     *Scope
	ByteOrder ByteOrder
}

// ErrorRegion is the terminal region from a decoder failure point to the
// end of the packet. Per spec invariant 3, it is always the last region of
// both the cache it appears in and the packet itself.
type ErrorRegion struct {
	regionBase
}

func newContentRegion(seg DataSegment, rng DataRange, scope *Scope, typ DataType, val Value, prev *Index) *ContentRegion {
	return &ContentRegion{
		regionBase: regionBase{Seg: seg, Prev: prev},
		Range:      rng,
		Scope:      scope,
		Type:       typ,
		Value:      val,
	}
}

func newPaddingRegion(seg DataSegment, scope *Scope, order ByteOrder, prev *Index) *PaddingRegion {
	return &PaddingRegion{
		regionBase: regionBase{Seg: seg, Prev: prev},
		Scope:      scope,
		ByteOrder:  order,
	}
}

func newErrorRegion(seg DataSegment, prev *Index) *ErrorRegion {
	return &ErrorRegion{regionBase: regionBase{Seg: seg, Prev: prev}}
}
