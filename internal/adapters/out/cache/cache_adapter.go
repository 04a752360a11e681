package cache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/suchimauz/clinic-booking-service/internal/config"
	"github.com/suchimauz/clinic-booking-service/internal/core/ports/out"
)

// availabilityEntry - карта занятости вместе с поколением коллекции,
// при котором она была собрана
type availabilityEntry struct {
	availability map[string]bool
	generation   uint64
}

// CacheAdapter держит в LRU карты занятости слотов по датам.
// Запись по дате сбрасывается при каждом приеме брони на эту дату, а
// несовпадение поколения при чтении трактуется как промах.
type CacheAdapter struct {
	cache  *lru.Cache[string, availabilityEntry]
	mu     sync.RWMutex
	logger out.LoggerPort
}

func NewCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*CacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Cache is disabled",
		})
		return nil, nil
	}

	lruCache, err := lru.New[string, availabilityEntry](cfg.Cache.Size)
	if err != nil {
		logger.Error("cache.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.Size,
		})
		return nil, err
	}

	return &CacheAdapter{
		cache:  lruCache,
		logger: logger.WithModule("CacheAdapter"),
	}, nil
}

func (c *CacheAdapter) GetAvailability(ctx context.Context, date string, generation uint64) (map[string]bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.cache.Get(date)
	if !exists {
		c.logger.Debug("cache.availability.miss", out.LogFields{
			"date": date,
		})
		return nil, false
	}
	if entry.generation != generation {
		c.logger.Debug("cache.availability.stale", out.LogFields{
			"date":            date,
			"entryGeneration": entry.generation,
			"generation":      generation,
		})
		return nil, false
	}

	// Копия: вызывающий не должен менять запись в кэше
	availability := make(map[string]bool, len(entry.availability))
	for slot, taken := range entry.availability {
		availability[slot] = taken
	}

	c.logger.Debug("cache.availability.hit", out.LogFields{
		"date":       date,
		"slotsCount": len(availability),
	})
	return availability, true
}

func (c *CacheAdapter) StoreAvailability(ctx context.Context, date string, availability map[string]bool, generation uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := availabilityEntry{
		availability: make(map[string]bool, len(availability)),
		generation:   generation,
	}
	for slot, taken := range availability {
		entry.availability[slot] = taken
	}

	c.logger.Debug("cache.availability.store", out.LogFields{
		"date":       date,
		"slotsCount": len(entry.availability),
	})

	c.cache.Add(date, entry)
}

func (c *CacheAdapter) InvalidateAvailability(ctx context.Context, date string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("cache.availability.invalidate", out.LogFields{
		"date": date,
	})

	c.cache.Remove(date)
}
