package jacquesctf

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EngineConfig carries the tunables spec §4.3/§4.4/§4.8 leave
// implementation-defined. Zero value is not valid; use DefaultConfig.
type EngineConfig struct {
	// EventRecordCacheMax bounds how many event records the working
	// cache holds at once (spec §4.3, ER_CACHE_MAX). Recommended/default
	// 500.
	EventRecordCacheMax Size `yaml:"event_record_cache_max"`

	// OffsetLRUCapacity bounds the offset-to-region LRU cache (spec
	// §4.8). Recommended/default 256.
	OffsetLRUCapacity int `yaml:"offset_lru_capacity"`

	// CheckpointStride is how often (in event records) PacketCheckpoints
	// records a resumable checkpoint (spec §4.4). Smaller values use
	// more memory per packet but shorten the replay needed to serve a
	// coverage fill; spec §9 leaves the exact value an open question, to
	// be chosen empirically. Default 50.
	CheckpointStride Size `yaml:"checkpoint_stride"`

	// StrictConsistency gates the extra invariant validation pass that
	// runs after every coverage fill. Off by default; also forced on
	// when lab47/mode reports a debug build (see validateWorkingCache in
	// coverage.go).
	StrictConsistency bool `yaml:"strict_consistency"`
}

// DefaultConfig returns the recommended tunables from spec §4.3/§4.4/§4.8.
func DefaultConfig() *EngineConfig {
	return &EngineConfig{
		EventRecordCacheMax: 500,
		OffsetLRUCapacity:   256,
		CheckpointStride:    50,
	}
}

// LoadConfig reads an EngineConfig from a YAML file, applying
// DefaultConfig first so a partial file only overrides what it mentions.
func LoadConfig(path string) (*EngineConfig, error) {
	cfg := DefaultConfig()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error reading engine config %q", path)
	}

	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, errors.Wrapf(err, "error parsing engine config %q", path)
	}

	return cfg, nil
}
