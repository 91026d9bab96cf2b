package pool

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Id identifies an allocated object for its whole lifetime. Ids come from a
// strictly increasing counter and are never handed out twice (until Clear).
type Id uint64

// DefragMode decides when the pool closes the holes left by releases.
type DefragMode int

const (
	// DefragImmediate closes the hole the moment an object is released.
	DefragImmediate DefragMode = iota

	// DefragDeferred closes holes right before the next mutable iteration, so
	// a release followed by an alloc reuses the hole without moving anything.
	DefragDeferred

	// DefragManual never defrags on its own, call Defrag yourself.
	DefragManual
)

var defragModeNames = map[DefragMode]string{
	DefragImmediate: "immediate",
	DefragDeferred:  "deferred",
	DefragManual:    "manual",
}

func (m DefragMode) String() string {
	if name, ok := defragModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("DefragMode(%d)", int(m))
}

func (m DefragMode) MarshalText() ([]byte, error) {
	name, ok := defragModeNames[m]
	if !ok {
		return nil, fmt.Errorf("unknown defrag mode %d", int(m))
	}
	return []byte(name), nil
}

func (m *DefragMode) UnmarshalText(text []byte) error {
	mode, err := ParseDefragMode(string(text))
	if err != nil {
		return err
	}
	*m = mode
	return nil
}

// ParseDefragMode accepts the names produced by DefragMode.String, case
// insensitive.
func ParseDefragMode(s string) (DefragMode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for mode, name := range defragModeNames {
		if name == s {
			return mode, nil
		}
	}
	return 0, fmt.Errorf("bad defrag mode '%s', must be [immediate|deferred|manual]", s)
}

// IterationCode is returned by extended visitors to continue or stop a scan.
type IterationCode int

const (
	Continue IterationCode = iota
	Break
)

// MaxReserve caps the number of slots reserved up front by Config.Reserve and
// Reserve. Larger requests are clamped, the array still grows past it on
// demand.
const MaxReserve = 1 << 20

// Config holds the fixed configuration of a pool.
type Config struct {
	// MaxSize limits the number of live objects, 0 means unbounded.
	MaxSize int `json:"max_size"`

	// Reserve pre-allocates room for this many slots. It is a hint, clamped to
	// MaxSize (when set) and to MaxReserve.
	Reserve int `json:"reserve"`

	// ShrinkThreshold is the number of unused tail slots tolerated after a
	// defrag before the backing array is trimmed.
	ShrinkThreshold int `json:"shrink_threshold"`

	DefragMode DefragMode `json:"defrag_mode"`

	// OrderedIndex keeps the id table in a B-tree instead of a hash map.
	OrderedIndex bool `json:"ordered_index"`

	Logger *zap.Logger `json:"-"`
}

func DefaultConfig() *Config {
	return &Config{
		MaxSize:         0,
		Reserve:         0,
		ShrinkThreshold: 1024,
		DefragMode:      DefragDeferred,
	}
}
