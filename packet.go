package jacquesctf

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/lab47/hclogx"
	"github.com/lab47/mode"
	"github.com/pkg/errors"
)

// Packet is the packet decoding and caching engine (spec §2/§4.5): the
// per-packet subsystem that drives a streaming bit-level decoder over a
// memory-mapped region and materializes regions and event records on
// demand.
//
// A Packet is not safe for concurrent use (spec §5): every public method
// assumes exclusive access, and no method suspends internally.
type Packet struct {
	id    uuid.UUID
	log   hclog.Logger
	entry *IndexEntry
	mmap  MemoryMap
	it    Iterator
	cfg   *EngineConfig

	checkpoints *packetCheckpoints
	preamble    []Region
	working     []Region
	erCache     []*EventRecord
	offsetLRU   *lru.Cache[Index, Region]

	listener CheckpointsBuildListener
}

// NewPacket constructs a Packet around an already-positioned Iterator (at
// the start of the packet) and the memory-mapped bytes covering it. It
// builds the packet's checkpoints and preamble cache eagerly (spec §4.4):
// this is the one full, start-to-end pass over the decoder this package
// ever performs unprompted.
func NewPacket(entry *IndexEntry, it Iterator, mmap MemoryMap, cfg *EngineConfig, log hclog.Logger, listener CheckpointsBuildListener) (*Packet, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	if log == nil {
		log = hclog.NewNullLogger()
	}

	if listener == nil {
		listener = NoopCheckpointsBuildListener
	}

	offsetLRU, err := lru.New[Index, Region](cfg.OffsetLRUCapacity)
	if err != nil {
		return nil, errors.Wrap(err, "error creating offset LRU cache")
	}

	p := &Packet{
		id:        uuid.New(),
		log:       log,
		entry:     entry,
		mmap:      mmap,
		it:        it,
		cfg:       cfg,
		offsetLRU: offsetLRU,
		listener:  listener,
	}

	// A PreambleSize already known to exceed EffectiveTotalSize marks the
	// index entry malformed (spec §4 SUPPLEMENTED FEATURES): the preamble
	// alone cannot fit in the packet. Caught here, before any decoding, so
	// ensureCoverageForOffset/ensureCoverageForIndex can short-circuit on
	// every later query instead of walking the decoder at all.
	if entry.PreambleSize != nil && entry.PreambleSize.Bits() > entry.EffectiveTotalSize.Bits() {
		entry.Invalid = true
		p.checkpoints = newPacketCheckpoints()
		return p, nil
	}

	if !p.HasData() {
		p.checkpoints = newPacketCheckpoints()
		return p, nil
	}

	if err := p.buildCheckpoints(); err != nil {
		return nil, err
	}

	return p, nil
}

// HasData reports whether the packet has a non-zero effective total size.
func (p *Packet) HasData() bool {
	return p.entry.EffectiveTotalSize.Bits() > 0
}

// IndexEntry returns the packet's immutable index entry.
func (p *Packet) IndexEntry() *IndexEntry {
	return p.entry
}

// EventRecordCount returns the number of event records in the packet, as
// determined by the checkpoint pass.
func (p *Packet) EventRecordCount() Size {
	return p.checkpoints.eventRecordCountTotal()
}

// Error returns the decoding error captured while building checkpoints, if
// the packet is truncated or malformed (spec §7).
func (p *Packet) Error() *DecodingError {
	return p.checkpoints.decodingError()
}

// buildCheckpoints performs the one-time, start-to-end decode pass that
// populates p.checkpoints and p.preamble (spec §4.4).
func (p *Packet) buildCheckpoints() error {
	startPos := p.it.Position()
	cp := newPacketCheckpoints()

	var (
		cache      []Region
		scopeStack []*Scope
		haveEvents bool
		erIndex    Index
	)

	currentScope := func() *Scope {
		if len(scopeStack) == 0 {
			return nil
		}

		return scopeStack[len(scopeStack)-1]
	}

	oplog := hclogx.NewOpLogger(p.log)
	oplog.Trace("building packet checkpoints", "packet", p.id)

	// preNextPos is the decoder position immediately before each Next
	// call below — i.e. the position Seek must be given to make the
	// following Next call reproduce the very element about to be read.
	// Checkpoints store this (not the position after the begin element
	// has already been consumed) so that fillOneEventRecord's first Next
	// call, after seeking to one, yields a fresh ElemEventRecordBegin.
	preNextPos := p.it.Position()

loop:
	for {
		thisPos := preNextPos

		err := p.it.Next()
		if err != nil {
			if decErr, ok := err.(*DecodingError); ok {
				cp.err = decErr

				if !haveEvents {
					cache = appendError(cache, decErr.OffsetBits, p.entry.EffectiveTotalSize.Bits())
				}
			}

			break loop
		}

		elem := p.it.Element()
		preNextPos = p.it.Position()

		switch elem.Kind {
		case ElemScopeBegin:
			scopeStack = append(scopeStack, scopeFor(elem.Scope))
		case ElemScopeEnd:
			if len(scopeStack) > 0 {
				scopeStack = scopeStack[:len(scopeStack)-1]
			}
		case ElemEventRecordBegin:
			haveEvents = true
			pos := thisPos
			offset := packetOffset(elem, p.entry)

			snap, decErr := p.scanEventRecordHeader(erIndex)
			if decErr != nil {
				cp.err = decErr
				break loop
			}

			// scanEventRecordHeader drove the iterator on past what
			// preNextPos described; refresh it so the next top-level
			// loop iteration's checkpoint (if any) starts from the
			// right place.
			preNextPos = p.it.Position()

			if erIndex == 0 {
				cp.first = snap
			}

			cp.last = snap

			if erIndex%p.cfg.CheckpointStride == 0 {
				cp.add(checkpointEntry{
					index:      erIndex,
					offsetBits: offset,
					pos:        pos,
					erType:     snap.Type,
					timestamp:  snap.Timestamp,
				})

				p.listener.OnCheckpointsBuildProgress(p, erIndex, erIndex+1)
			}

			cp.eventRecordCount++
			eventRecordsDecoded.Inc()
			erIndex++
		case ElemEndOfPacket:
			break loop
		default:
			if !haveEvents && isScalarKind(elem.Kind) {
				cache = appendContent(cache, p.mmap, elem, p.entry, currentScope(), 0)
			}
		}
	}

	if !haveEvents && cp.err == nil {
		cache = appendTrailing(cache, p.entry.EffectiveTotalSize.Bits(), currentScope(), 0)
	}

	p.preamble = cache
	p.checkpoints = cp

	cnt := cp.eventRecordCount
	p.entry.EventRecordCount = &cnt

	checkpointsBuilt.Inc()

	return errors.Wrap(p.it.Seek(startPos), "error resetting iterator after building checkpoints")
}

// scanEventRecordHeader consumes elements from just after an
// ElemEventRecordBegin until its matching ElemEventRecordEnd, learning the
// event record's type and timestamp without materializing any regions —
// the checkpoint pass never eagerly builds the regions of every event
// record (spec §9: "do not attempt to materialize all regions of a packet
// eagerly").
func (p *Packet) scanEventRecordHeader(index Index) (*EventRecord, *DecodingError) {
	b := newEventRecordBuilder(index)

	for {
		err := p.it.Next()
		if err != nil {
			if decErr, ok := err.(*DecodingError); ok {
				return nil, decErr
			}

			return b.seal(), nil
		}

		elem := p.it.Element()

		switch elem.Kind {
		case ElemEventRecordEnd:
			return b.seal(), nil
		case ElemEventRecordTypeResolved:
			b.typ = elem.EventRecordType
		case ElemTimestampResolved:
			b.timestamp = elem.Timestamp
		default:
			if isScalarKind(elem.Kind) {
				offset := packetOffset(elem, p.entry)
				b.observe(DataSegment{OffsetBits: offset, SizeBits: elem.Type.SizeBits()})
			}
		}
	}
}

// RegionAt returns the region containing bit offset offsetBits (spec
// §4.5). offsetBits must be in [0, EffectiveTotalSize.Bits()).
func (p *Packet) RegionAt(offsetBits Index) (Region, error) {
	if offsetBits >= p.entry.EffectiveTotalSize.Bits() {
		return nil, ErrOutOfRange
	}

	if r, ok := p.offsetLRU.Get(offsetBits); ok {
		offsetLRUHits.Inc()
		return r, nil
	}

	offsetLRUMisses.Inc()

	if err := p.ensureCoverageForOffset(offsetBits); err != nil {
		return nil, err
	}

	r, err := p.workingRegionAt(offsetBits)
	if err != nil {
		return nil, err
	}

	p.offsetLRU.Add(offsetBits, r)
	return r, nil
}

// workingRegionAt binary-searches the working cache for the region
// covering offsetBits (spec §4.2). The caller must have already ensured
// coverage.
func (p *Packet) workingRegionAt(offsetBits Index) (Region, error) {
	n := len(p.working)
	if n == 0 {
		return nil, ErrInternalInconsistency
	}

	// greatest region with OffsetBits <= offsetBits
	i := sortSearchLastLE(n, func(i int) bool {
		return p.working[i].Segment().OffsetBits <= offsetBits
	})

	if i < 0 {
		return nil, ErrInternalInconsistency
	}

	r := p.working[i]
	if !r.Segment().Contains(offsetBits) {
		return nil, ErrInternalInconsistency
	}

	return r, nil
}

// sortSearchLastLE returns the largest index in [0, n) for which pred is
// true, assuming pred is true for a prefix [0, k) is false — i.e. pred is
// monotonically non-increasing as i grows (true, true, ..., true, false,
// false...), or -1 if pred is false for every index.
func sortSearchLastLE(n int, pred func(int) bool) int {
	lo, hi := 0, n // hi = first index where pred is false (or n)
	for lo < hi {
		mid := (lo + hi) / 2
		if pred(mid) {
			lo = mid + 1
		} else {
			hi = mid
		}
	}

	return lo - 1
}

// FirstRegion returns the packet's first region. Available without any
// further decoding once the preamble cache exists (spec §4.5).
func (p *Packet) FirstRegion() (Region, error) {
	if !p.HasData() {
		return nil, ErrOutOfRange
	}

	if len(p.preamble) > 0 {
		return p.preamble[0], nil
	}

	if err := p.ensureCoverageForOffset(0); err != nil {
		return nil, err
	}

	return p.workingRegionAt(0)
}

// LastRegion returns the packet's last region, triggering a fill to the
// packet's tail if decoding has not reached it yet (spec §4.5).
func (p *Packet) LastRegion() (Region, error) {
	if !p.HasData() {
		return nil, ErrOutOfRange
	}

	last := p.entry.EffectiveTotalSize.Bits() - 1
	if err := p.ensureCoverageForOffset(last); err != nil {
		return nil, err
	}

	return p.workingRegionAt(last)
}

// EventRecordAt returns the event record at indexInPacket, ensuring
// coverage first if it is not already cached (spec §4.5).
func (p *Packet) EventRecordAt(indexInPacket Index) (*EventRecord, error) {
	if indexInPacket >= p.checkpoints.eventRecordCountTotal() {
		return nil, ErrOutOfRange
	}

	if er, ok := p.cachedEventRecord(indexInPacket); ok {
		return er, nil
	}

	if err := p.ensureCoverageForIndex(indexInPacket); err != nil {
		return nil, err
	}

	er, ok := p.cachedEventRecord(indexInPacket)
	if !ok {
		return nil, ErrInternalInconsistency
	}

	return er, nil
}

// cachedEventRecord returns the event record cache entry for
// indexInPacket, in O(1), if it is present (spec §4.3).
func (p *Packet) cachedEventRecord(indexInPacket Index) (*EventRecord, bool) {
	if len(p.erCache) == 0 {
		return nil, false
	}

	first := p.erCache[0].IndexInPacket
	last := p.erCache[len(p.erCache)-1].IndexInPacket

	if indexInPacket < first || indexInPacket > last {
		return nil, false
	}

	return p.erCache[indexInPacket-first], true
}

// AppendRegions appends to out every region whose segment intersects
// [beginOffsetBits, endOffsetBits), in order, ensuring coverage as it goes
// (spec §4.5).
func (p *Packet) AppendRegions(out []Region, beginOffsetBits, endOffsetBits Index) ([]Region, error) {
	if beginOffsetBits >= endOffsetBits {
		return out, nil
	}

	offset := beginOffsetBits

	for offset < endOffsetBits && offset < p.entry.EffectiveTotalSize.Bits() {
		if err := p.ensureCoverageForOffset(offset); err != nil {
			return out, err
		}

		r, err := p.workingRegionAt(offset)
		if err != nil {
			return out, err
		}

		out = append(out, r)
		offset = r.Segment().EndOffsetBits()
	}

	return out, nil
}

