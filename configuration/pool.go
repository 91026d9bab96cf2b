package configuration

import (
	"strings"

	"github.com/fulldump/slotpool/pool"
)

// PoolDefaults builds the configuration applied to pools created without one.
func (c *Configuration) PoolDefaults() (pool.Config, error) {

	mode, err := pool.ParseDefragMode(c.DefaultDefragMode)
	if err != nil {
		return pool.Config{}, err
	}

	return pool.Config{
		MaxSize:         c.DefaultMaxSize,
		Reserve:         c.DefaultReserve,
		ShrinkThreshold: c.DefaultShrinkThreshold,
		DefragMode:      mode,
		OrderedIndex:    c.DefaultOrderedIndex,
	}, nil
}

func (c *Configuration) PreloadPools() []string {
	result := []string{}
	for _, name := range strings.Split(c.Preload, ",") {
		name = strings.TrimSpace(name)
		if name != "" {
			result = append(result, name)
		}
	}
	return result
}
