package jacquesctf

// Index is a zero-based bit (or, depending on context, element) offset or
// position. Aliased rather than a distinct type so arithmetic with plain
// integers needs no conversions, matching the teacher's use of bare
// integer types (LBA, uint64 offsets) throughout disk.go.
type Index = uint64

// Size is a count of bits, bytes, or records, depending on context.
type Size = uint64
