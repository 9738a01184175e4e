package jacquesctf

import (
	"sort"

	"github.com/igrmk/treemap/v2"
)

// checkpointEntry is a saved resumable decoder position plus the event
// record snapshot (type, timestamp) known at that position (spec §3/§4.4).
type checkpointEntry struct {
	index      Index
	offsetBits Index
	pos        DecoderPosition
	erType     EventRecordType
	timestamp  *Timestamp
}

// packetCheckpoints is the sparse Index -> checkpoint map of spec §3/§4.4,
// plus the terminal decoding error (if any) and the event record count. It
// is built once, at Packet construction, by walking the decoder from
// packet start to end or to the first decoding error.
type packetCheckpoints struct {
	byIndex *treemap.TreeMap[Index, checkpointEntry]

	// offsets mirrors byIndex's values in the same (increasing) order,
	// letting nearestCheckpointAtOrBeforeOffset binary-search on offset
	// without a second ordered map: checkpoints are append-only and
	// strictly increasing in both index and offset together, so one
	// sorted slice serves the offset-keyed query that byIndex's tree
	// doesn't (the tree covers the index-keyed query).
	offsets []checkpointEntry

	eventRecordCount Size
	first, last      *EventRecord
	err              *DecodingError
}

func newPacketCheckpoints() *packetCheckpoints {
	return &packetCheckpoints{byIndex: treemap.New[Index, checkpointEntry]()}
}

func (c *packetCheckpoints) add(e checkpointEntry) {
	c.byIndex.Set(e.index, e)
	c.offsets = append(c.offsets, e)
}

func (c *packetCheckpoints) eventRecordCountTotal() Size {
	return c.eventRecordCount
}

func (c *packetCheckpoints) firstEventRecord() *EventRecord {
	return c.first
}

func (c *packetCheckpoints) lastEventRecord() *EventRecord {
	return c.last
}

func (c *packetCheckpoints) decodingError() *DecodingError {
	return c.err
}

// nearestCheckpointAtOrBefore returns the checkpoint with the greatest
// index <= reqIndex.
func (c *packetCheckpoints) nearestCheckpointAtOrBefore(reqIndex Index) (checkpointEntry, bool) {
	fit := c.byIndex.Floor(reqIndex)
	if !fit.Valid() {
		return checkpointEntry{}, false
	}

	return fit.Value(), true
}

// nearestCheckpointAtOrBeforeOffset returns the checkpoint whose event
// record's first bit offset is the greatest one <= offsetBits.
func (c *packetCheckpoints) nearestCheckpointAtOrBeforeOffset(offsetBits Index) (checkpointEntry, bool) {
	n := sort.Search(len(c.offsets), func(i int) bool {
		return c.offsets[i].offsetBits > offsetBits
	})

	if n == 0 {
		return checkpointEntry{}, false
	}

	return c.offsets[n-1], true
}
