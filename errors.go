package jacquesctf

import "github.com/pkg/errors"

// ErrOutOfRange is returned by RegionAt/EventRecordAt when the requested
// offset or index is outside the packet (spec §7, kind 3:
// OutOfRangeQuery). The spec allows implementations to assert instead;
// this package, being a library rather than the original in-process
// application, returns an error so a misbehaving caller cannot bring down
// a long-running host.
var ErrOutOfRange = errors.New("jacquesctf: query out of range")

// ErrInternalInconsistency is returned when a cache invariant (spec §3) is
// found violated, which can only indicate a bug in this package or in the
// Iterator implementation it was driving (spec §7, kind 4). It is
// unrecoverable for the Packet that raised it.
var ErrInternalInconsistency = errors.New("jacquesctf: internal cache inconsistency")
