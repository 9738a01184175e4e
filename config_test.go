package jacquesctf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	r := require.New(t)

	cfg := DefaultConfig()
	r.EqualValues(500, cfg.EventRecordCacheMax)
	r.Equal(256, cfg.OffsetLRUCapacity)
	r.EqualValues(50, cfg.CheckpointStride)
	r.False(cfg.StrictConsistency)
}

func TestLoadConfigPartialOverride(t *testing.T) {
	r := require.New(t)

	path := filepath.Join(t.TempDir(), "engine.yaml")
	r.NoError(os.WriteFile(path, []byte("checkpoint_stride: 10\nstrict_consistency: true\n"), 0o644))

	cfg, err := LoadConfig(path)
	r.NoError(err)

	r.EqualValues(10, cfg.CheckpointStride)
	r.True(cfg.StrictConsistency)
	// Unmentioned fields keep DefaultConfig's values.
	r.EqualValues(500, cfg.EventRecordCacheMax)
	r.Equal(256, cfg.OffsetLRUCapacity)
}

func TestLoadConfigMissingFile(t *testing.T) {
	r := require.New(t)

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	r.Error(err)
}
