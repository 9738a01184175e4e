package jacquesctf

import (
	"time"

	"github.com/lab47/hclogx"
	"github.com/lab47/mode"
	"github.com/pkg/errors"
)

// ensureCoverageForOffset implements the coverage algorithm (spec §4.6)
// entered from an offset query.
func (p *Packet) ensureCoverageForOffset(offsetBits Index) error {
	if p.entry.Invalid {
		return ErrOutOfRange
	}

	if p.offsetWithinWorkingCache(offsetBits) {
		return nil
	}

	if p.offsetWithinPreamble(offsetBits) {
		return p.adoptPreamble()
	}

	if p.checkpoints.eventRecordCountTotal() == 0 {
		// No event records at all: everything is preamble, already
		// adopted above if in range; past the end is out of range,
		// already checked by callers.
		return p.adoptPreamble()
	}

	cp, ok := p.checkpoints.nearestCheckpointAtOrBeforeOffset(offsetBits)
	if !ok {
		// Offset precedes the first event record but wasn't within the
		// preamble range check above — only possible if the preamble
		// cache itself is stale; fall back to index 0.
		return p.ensureCoverageForIndex(0)
	}

	if offsetBits >= p.entry.EffectiveTotalSize.Bits() {
		return ErrOutOfRange
	}

	// Resolve past-last-event-record offsets (the tail) by filling
	// starting at the last event record, regardless of which checkpoint
	// is nearest by offset (checkpoints are only recorded every
	// CheckpointStride event records, so the nearest one rarely *is*
	// the last event record).
	if last := p.checkpoints.lastEventRecord(); last != nil && offsetBits >= last.Segment().EndOffsetBits() {
		return p.fillCoverage(last.IndexInPacket)
	}

	return p.fillCoverage(cp.index)
}

// ensureCoverageForIndex implements the coverage algorithm (spec §4.6)
// entered from an event-record-index query. Unlike ensureCoverageForOffset,
// an index-0 request always needs the real fill: the preamble-adoption
// shortcut only applies to offset queries landing before the first event
// record, since the preamble cache never carries event record data.
func (p *Packet) ensureCoverageForIndex(reqIndex Index) error {
	if p.entry.Invalid {
		return ErrOutOfRange
	}

	if _, ok := p.cachedEventRecord(reqIndex); ok {
		return nil
	}

	return p.fillCoverage(reqIndex)
}

func (p *Packet) offsetWithinWorkingCache(offsetBits Index) bool {
	if len(p.working) == 0 {
		return false
	}

	return offsetBits >= p.working[0].Segment().OffsetBits &&
		offsetBits < p.working[len(p.working)-1].Segment().EndOffsetBits()
}

func (p *Packet) offsetWithinPreamble(offsetBits Index) bool {
	if len(p.preamble) == 0 {
		return false
	}

	return offsetBits >= p.preamble[0].Segment().OffsetBits &&
		offsetBits < p.preamble[len(p.preamble)-1].Segment().EndOffsetBits()
}

// adoptPreamble copies the preamble cache into the working cache and
// clears the event record cache (spec §4.6 step 1).
func (p *Packet) adoptPreamble() error {
	p.working = append(p.working[:0:0], p.preamble...)
	p.erCache = nil
	return nil
}

// fillCoverage is the central coverage-fill algorithm (spec §4.6 steps
// 3-8): clear both caches, seek to the nearest checkpoint at or before
// startIndex, discard forward to startIndex's boundary, then fill event
// records (and any trailing padding/error) up to EventRecordCacheMax.
func (p *Packet) fillCoverage(reqIndex Index) (err error) {
	start := time.Now()

	defer func() {
		coverageFills.Inc()
		coverageFillLatency.Observe(time.Since(start).Seconds())
	}()

	oplog := hclogx.NewOpLogger(p.log)
	oplog.Trace("filling packet coverage", "packet", p.id, "requested-index", reqIndex)

	max := p.cfg.EventRecordCacheMax
	half := max / 2

	var startIndex Index
	if reqIndex > half {
		startIndex = reqIndex - half
	}

	cpEntry, ok := p.checkpoints.nearestCheckpointAtOrBefore(startIndex)
	if !ok {
		return errors.Wrap(ErrInternalInconsistency, "no checkpoint at or before requested start index")
	}

	if err := p.it.Seek(cpEntry.pos); err != nil {
		return errors.Wrap(err, "error seeking decoder to checkpoint")
	}

	p.working = nil
	p.erCache = nil

	floor, err := p.discardUntilEventRecord(cpEntry.index, startIndex)
	if err != nil {
		return err
	}

	filled := Size(0)
	reachedEnd := false

	for filled < max {
		idx := startIndex + filled

		if idx >= p.checkpoints.eventRecordCountTotal() {
			reachedEnd = true
			break
		}

		terminal, err := p.fillOneEventRecord(idx, floor)
		if err != nil {
			return err
		}

		if terminal {
			reachedEnd = true
			break
		}

		filled++

		if idx+1 >= p.checkpoints.eventRecordCountTotal() {
			reachedEnd = true
			break
		}
	}

	if reachedEnd {
		if err := p.fillTrailing(floor); err != nil {
			return err
		}
	}

	if p.cfg.StrictConsistency || mode.Debug() {
		if err := p.validateWorkingCache(); err != nil {
			return err
		}
	}

	return nil
}

// discardUntilEventRecord replays forward from a checkpoint positioned at
// event record cpIndex, discarding everything, until the iterator reaches
// the boundary of event record startIndex (spec §4.6 step 5). cpIndex ==
// startIndex is the common case (no discarding needed). It returns
// startIndex's own first bit offset, peeked without being consumed for
// good — the iterator is left exactly where a fresh Next call will yield
// startIndex's begin element again — so the caller has a floor for
// padding synthesis in a working cache that starts out empty.
func (p *Packet) discardUntilEventRecord(cpIndex, startIndex Index) (Index, error) {
	for idx := cpIndex; idx < startIndex; idx++ {
		if err := p.it.Next(); err != nil {
			return 0, errors.Wrap(err, "error discarding event record begin while seeking coverage")
		}

		if _, decErr := p.scanEventRecordHeader(idx); decErr != nil {
			return 0, errors.Wrap(decErr, "decoding error while discarding toward coverage start")
		}
	}

	peekPos := p.it.Position()

	if err := p.it.Next(); err != nil {
		return 0, errors.Wrap(err, "error peeking coverage start offset")
	}

	begin := p.it.Element()
	if begin.Kind != ElemEventRecordBegin {
		return 0, errors.Wrap(ErrInternalInconsistency, "expected event-record-begin element while peeking coverage start")
	}

	floor := packetOffset(begin, p.entry)

	if err := p.it.Seek(peekPos); err != nil {
		return 0, errors.Wrap(err, "error restoring position after peeking coverage start offset")
	}

	return floor, nil
}

// fillOneEventRecord implements the per-event-record fill routine (spec
// §4.7), appending real regions to the working cache and a new EventRecord
// to the event record cache. The returned bool reports whether the
// decoder hit end-of-packet or a decoding error instead of a complete
// event record, meaning the caller must stop and invoke fillTrailing
// (which alone is responsible for appending the terminal region — the
// iterator is left exactly where Next() will reproduce the same
// end-of-packet/error condition).
func (p *Packet) fillOneEventRecord(index Index, floor Index) (terminal bool, err error) {
	if nerr := p.it.Next(); nerr != nil {
		if _, ok := nerr.(*DecodingError); ok {
			return true, nil
		}

		return true, nil // ErrEndOfPacket
	}

	begin := p.it.Element()
	if begin.Kind != ElemEventRecordBegin {
		return true, errors.Wrap(ErrInternalInconsistency, "expected event-record-begin element")
	}

	b := newEventRecordBuilder(index)

	var scopeStack []*Scope
	currentScope := func() *Scope {
		if len(scopeStack) == 0 {
			return nil
		}

		return scopeStack[len(scopeStack)-1]
	}

	for {
		if nerr := p.it.Next(); nerr != nil {
			return true, nil
		}

		elem := p.it.Element()

		switch elem.Kind {
		case ElemEventRecordEnd:
			er := b.seal()
			p.erCache = append(p.erCache, er)
			eventRecordsDecoded.Inc()
			return false, nil
		case ElemScopeBegin:
			scopeStack = append(scopeStack, scopeFor(elem.Scope))
		case ElemScopeEnd:
			if len(scopeStack) > 0 {
				scopeStack = scopeStack[:len(scopeStack)-1]
			}
		case ElemEventRecordTypeResolved:
			b.typ = elem.EventRecordType
		case ElemTimestampResolved:
			b.timestamp = elem.Timestamp
		default:
			if isScalarKind(elem.Kind) {
				offset := packetOffset(elem, p.entry)
				p.working = appendContent(p.working, p.mmap, elem, p.entry, currentScope(), floor)
				b.observe(DataSegment{OffsetBits: offset, SizeBits: elem.Type.SizeBits()})
			}
		}
	}
}

// fillTrailing appends the trailing Padding and/or terminal Error region
// after the last filled event record, up to the decoder's end-of-packet
// (spec §4.3/§4.6 step 7/8). It is idempotent: once the cache already
// extends to the packet's end (or already carries an Error region), the
// append helpers it calls are no-ops, so calling it when the iterator sits
// exactly at an already-observed terminal condition is safe.
func (p *Packet) fillTrailing(floor Index) error {
	for {
		err := p.it.Next()
		if err == nil {
			continue
		}

		if decErr, ok := err.(*DecodingError); ok {
			p.working = appendError(p.working, decErr.OffsetBits, p.entry.EffectiveTotalSize.Bits())
			return nil
		}

		// ErrEndOfPacket
		p.working = appendTrailing(p.working, p.entry.EffectiveTotalSize.Bits(), nil, floor)
		return nil
	}
}

// validateWorkingCache checks the contiguity/ordering invariants of spec
// §3 over the current working cache, returning ErrInternalInconsistency if
// violated. Gated behind EngineConfig.StrictConsistency / mode.Debug() —
// the teacher's close_segment.go gates its own post-flush validator the
// same way, behind mode.Debug().
func (p *Packet) validateWorkingCache() error {
	for i := 1; i < len(p.working); i++ {
		prev := p.working[i-1].Segment()
		cur := p.working[i].Segment()

		if cur.OffsetBits != prev.EndOffsetBits() {
			return errors.Wrapf(ErrInternalInconsistency, "gap or overlap between regions %d and %d", i-1, i)
		}

		if _, isErr := p.working[i-1].(*ErrorRegion); isErr {
			return errors.Wrap(ErrInternalInconsistency, "region follows an error region")
		}
	}

	return nil
}
