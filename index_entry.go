package jacquesctf

// IndexEntry is the immutable, externally-owned record describing one
// packet's place within its data stream. Trace-level indexing (enumerating
// packets across a file) is out of this package's scope — a host
// constructs one IndexEntry per packet and hands it to NewPacket.
type IndexEntry struct {
	IndexInDataStream      Index
	OffsetInDataStreamBits Index

	PacketContextOffsetBits *Index

	// PreambleSize is the original source's up-front bound on the
	// preamble (packet header + packet context), when known before any
	// decoding occurs. NewPacket checks it against EffectiveTotalSize and
	// sets Invalid if the preamble alone cannot fit, without decoding
	// anything.
	PreambleSize *DataSize

	ExpectedTotalSize   *DataSize
	ExpectedContentSize *DataSize
	EffectiveTotalSize  DataSize
	EffectiveContentSize DataSize

	DataStreamType DataStreamType
	DataStreamID   *Index

	TimestampBegin *Timestamp
	TimestampEnd   *Timestamp

	SequenceNumber            *Index
	DiscardedEventRecordCount *Size

	// Invalid is set by NewPacket when PreambleSize alone already exceeds
	// EffectiveTotalSize (a malformed/truncated index entry); it is never
	// set by anything else. Once set, every coverage-fill entry point
	// returns ErrOutOfRange immediately instead of driving the decoder.
	Invalid bool

	// EventRecordCount is filled in by the engine after checkpoint build
	// (spec §3) — nil until a Packet has been constructed over this
	// entry and has finished its checkpoint pass.
	EventRecordCount *Size
}

// EndOffsetInDataStreamBits is the offset one past the packet's last bit
// within its data stream.
func (e *IndexEntry) EndOffsetInDataStreamBits() Index {
	return e.OffsetInDataStreamBits + e.EffectiveTotalSize.Bits()
}
