package jacquesctf

// ByteOrder is the byte order a Content or Padding region was decoded (or,
// for padding, inherited) with.
type ByteOrder int

const (
	// ByteOrderUnspecified marks a Padding region whose predecessor was an
	// Error region, nonexistent (start of packet), or itself a Padding
	// region with no byte order: spec §9 leaves byte order unspecified in
	// that case rather than guessing.
	ByteOrderUnspecified ByteOrder = iota
	ByteOrderLittleEndian
	ByteOrderBigEndian
)
