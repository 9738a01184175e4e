// Package jacquesctf implements the packet decoding and caching engine at
// the heart of a CTF (Common Trace Format) trace inspector: given an
// already-decoded packet index entry, a positioned decoder iterator and a
// memory-mapped byte window, it materializes typed regions (fields,
// padding, a terminal error marker) and event records on demand, at bit
// granularity, while keeping memory bounded on packets that may contain
// millions of event records.
//
// Everything outside this subsystem — command-line dispatch, metadata text
// parsing, the terminal UI, file discovery and memory-mapping primitives,
// and trace-level indexing — is a collaborator this package only consumes
// through small interfaces (Iterator, MemoryMap, DataType, EventRecordType,
// DataStreamType).
package jacquesctf
