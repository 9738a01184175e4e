package jacquesctf

// EventRecord is a single trace event within a packet: its index, its type
// (nullable until the event-record-header field that identifies it has
// been decoded), an optional timestamp, and the segment spanning its first
// to its last region.
type EventRecord struct {
	IndexInPacket Index
	Type          EventRecordType
	Timestamp     *Timestamp
	segment       DataSegment
}

// Segment is the bit range from the first to the last region belonging to
// this event record.
func (e *EventRecord) Segment() DataSegment {
	return e.segment
}

// eventRecordBuilder accumulates an EventRecord while its regions are being
// decoded. Per spec §9 ("back-patching"), the type and timestamp are
// learned mid-stream from elements that arrive after the record begins;
// the builder exists so those writes never touch an EventRecord already
// published to a cache. It is sealed into an immutable *EventRecord only
// once the event-record-end element has been consumed.
type eventRecordBuilder struct {
	indexInPacket Index
	typ           EventRecordType
	timestamp     *Timestamp
	firstOffset   Index
	lastEndOffset Index
	sawRegion     bool
}

func newEventRecordBuilder(index Index) *eventRecordBuilder {
	return &eventRecordBuilder{indexInPacket: index}
}

func (b *eventRecordBuilder) observe(seg DataSegment) {
	if !b.sawRegion {
		b.firstOffset = seg.OffsetBits
		b.sawRegion = true
	}

	b.lastEndOffset = seg.EndOffsetBits()
}

func (b *eventRecordBuilder) seal() *EventRecord {
	return &EventRecord{
		IndexInPacket: b.indexInPacket,
		Type:          b.typ,
		Timestamp:     b.timestamp,
		segment:       DataSegment{OffsetBits: b.firstOffset, SizeBits: b.lastEndOffset - b.firstOffset},
	}
}
