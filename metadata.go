package jacquesctf

// DataType is the metadata description of a bit-array field: its size,
// byte order, signedness and display base. The metadata text parser that
// produces these (spec §1) is an external collaborator; this package only
// reads the accessors it needs to build DataRange/ContentRegion values.
type DataType interface {
	SizeBits() Size
	ByteOrder() ByteOrder
	Signed() bool
	DisplayBase() int
}

// EventRecordType is the metadata description of one kind of event record.
// Opaque to this package beyond identity: it is stored on EventRecord and
// handed back to callers, never inspected internally.
type EventRecordType interface {
	Name() string
}

// DataStreamType is the metadata description of a data stream (its packet
// header/context layout, its event record types). Opaque to this package
// beyond identity, stored on IndexEntry.
type DataStreamType interface {
	Name() string
}
