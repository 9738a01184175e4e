package jacquesctf

// packetOffset converts a decoder element's data-stream-relative bit
// offset to a packet-relative one (spec §4.1).
func packetOffset(e Element, entry *IndexEntry) Index {
	return e.OffsetBits - entry.OffsetInDataStreamBits
}

// regionCacheEnd returns the end offset of the last region in cache, or 0
// if the cache is empty (i.e. nothing precedes the very start of the
// packet).
func regionCacheEnd(cache []Region) (Index, bool) {
	if len(cache) == 0 {
		return 0, false
	}

	return cache[len(cache)-1].Segment().EndOffsetBits(), true
}

// inheritedByteOrder decides the byte order a synthesized Padding region
// should carry, per spec §4.1/§9: inherited from the previous region if it
// was Content; from the previous region's own recorded order if it was
// itself Padding; left unspecified if there is no previous region or it
// was an Error region (which never has one).
func inheritedByteOrder(prev Region) ByteOrder {
	switch p := prev.(type) {
	case *ContentRegion:
		return p.Type.ByteOrder()
	case *PaddingRegion:
		return p.ByteOrder
	default:
		return ByteOrderUnspecified
	}
}

// appendPaddingBefore synthesizes a Padding region covering the gap
// between the end of cache's last region and upToOffsetBits, if any, and
// appends it. scope may be nil. floor is the offset to treat the cache as
// ending at when it is empty: 0 for a cache built from the true start of
// the packet (the preamble pass), or the fill's actual resume offset for a
// working cache freshly reset by a coverage fill — using 0 there would
// wrongly synthesize padding over bits this fill never touched.
func appendPaddingBefore(cache []Region, upToOffsetBits Index, scope *Scope, floor Index) []Region {
	end, ok := regionCacheEnd(cache)
	if !ok {
		end = floor
	}

	if upToOffsetBits <= end {
		return cache
	}

	var (
		order ByteOrder
		prev  *Index
	)

	if len(cache) > 0 {
		last := cache[len(cache)-1]
		order = inheritedByteOrder(last)
		o := last.Segment().OffsetBits
		prev = &o
	} else {
		order = ByteOrderUnspecified
	}

	seg := DataSegment{OffsetBits: end, SizeBits: upToOffsetBits - end}
	return append(cache, newPaddingRegion(seg, scope, order, prev))
}

// appendContent appends a Content region built from e (a scalar/bit-array
// element) to cache, first synthesizing any padding that precedes it. See
// appendPaddingBefore for floor's meaning.
func appendContent(cache []Region, mmap MemoryMap, e Element, entry *IndexEntry, scope *Scope, floor Index) []Region {
	offset := packetOffset(e, entry)
	cache = appendPaddingBefore(cache, offset, scope, floor)

	seg := DataSegment{OffsetBits: offset, SizeBits: e.Type.SizeBits()}
	rng := rangeForSegment(mmap.Bytes(), seg)

	var prev *Index
	if len(cache) > 0 {
		o := cache[len(cache)-1].Segment().OffsetBits
		prev = &o
	}

	return append(cache, newContentRegion(seg, rng, scope, e.Type, e.Value, prev))
}

// appendTrailing synthesizes the Padding region (if any) covering
// [lastEnd, totalBits) once the decoder has reached end-of-packet with no
// error. scope is typically nil for trailing padding past the last event
// record, or the packet's own scope chain when there are no event records
// at all.
func appendTrailing(cache []Region, totalBits Index, scope *Scope, floor Index) []Region {
	return appendPaddingBefore(cache, totalBits, scope, floor)
}

// appendError appends the terminal Error region from fromOffsetBits to
// totalBits (spec invariant 3: always last, never followed by anything).
// It is a no-op if cache already ends with an Error region.
func appendError(cache []Region, fromOffsetBits, totalBits Index) []Region {
	var prev *Index

	if len(cache) > 0 {
		if _, isErr := cache[len(cache)-1].(*ErrorRegion); isErr {
			return cache
		}

		o := cache[len(cache)-1].Segment().OffsetBits
		prev = &o
	}

	if totalBits < fromOffsetBits {
		totalBits = fromOffsetBits
	}

	seg := DataSegment{OffsetBits: fromOffsetBits, SizeBits: totalBits - fromOffsetBits}
	return append(cache, newErrorRegion(seg, prev))
}
