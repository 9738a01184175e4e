package jacquesctf

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPacketCheckpointsLookup(t *testing.T) {
	r := require.New(t)

	cp := newPacketCheckpoints()
	cp.add(checkpointEntry{index: 0, offsetBits: 0})
	cp.add(checkpointEntry{index: 50, offsetBits: 4000})
	cp.add(checkpointEntry{index: 100, offsetBits: 8000})

	t.Run("nearest_at_or_before_index", func(t *testing.T) {
		e, ok := cp.nearestCheckpointAtOrBefore(0)
		r.True(ok)
		r.EqualValues(0, e.index)

		e, ok = cp.nearestCheckpointAtOrBefore(75)
		r.True(ok)
		r.EqualValues(50, e.index)

		e, ok = cp.nearestCheckpointAtOrBefore(100)
		r.True(ok)
		r.EqualValues(100, e.index)

		e, ok = cp.nearestCheckpointAtOrBefore(49)
		r.True(ok)
		r.EqualValues(0, e.index)
	})

	t.Run("nearest_at_or_before_offset", func(t *testing.T) {
		e, ok := cp.nearestCheckpointAtOrBeforeOffset(0)
		r.True(ok)
		r.EqualValues(0, e.index)

		e, ok = cp.nearestCheckpointAtOrBeforeOffset(4500)
		r.True(ok)
		r.EqualValues(50, e.index)

		e, ok = cp.nearestCheckpointAtOrBeforeOffset(9000)
		r.True(ok)
		r.EqualValues(100, e.index)
	})

	t.Run("empty", func(t *testing.T) {
		empty := newPacketCheckpoints()

		_, ok := empty.nearestCheckpointAtOrBefore(0)
		r.False(ok)

		_, ok = empty.nearestCheckpointAtOrBeforeOffset(0)
		r.False(ok)
	})
}
