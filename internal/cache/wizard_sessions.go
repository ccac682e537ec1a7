package cache

import (
	"time"

	"github.com/nurseryhub/nursery-api/internal/enrollment"
	"github.com/nurseryhub/nursery-api/pkg/logger"
	"github.com/nurseryhub/nursery-api/pkg/metrics"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	sessionKeyPrefix   = "wizard:"
	minCleanupInterval = 30 * time.Second
)

// WizardSessionCache holds in-progress enrollment wizards keyed by session id.
// Sessions expire after ttl of inactivity; every Get slides the expiry.
type WizardSessionCache struct {
	cache *gocache.Cache
	ttl   time.Duration
}

// NewWizardSessionCache creates a session cache with the given idle ttl
func NewWizardSessionCache(ttl time.Duration) *WizardSessionCache {
	cleanup := ttl / 4
	if cleanup < minCleanupInterval {
		cleanup = minCleanupInterval
	}

	c := gocache.New(ttl, cleanup)
	sc := &WizardSessionCache{cache: c, ttl: ttl}

	c.OnEvicted(func(key string, _ interface{}) {
		logger.Debug("Wizard session evicted", zap.String("key", key))
		metrics.WizardSessionsActive.Set(float64(c.ItemCount()))
	})

	return sc
}

// Put stores a wizard under id
func (sc *WizardSessionCache) Put(id string, w *enrollment.Wizard) {
	sc.cache.Set(sessionKeyPrefix+id, w, sc.ttl)
	metrics.WizardSessionsActive.Set(float64(sc.cache.ItemCount()))
}

// Get returns the wizard for id and extends its expiry
func (sc *WizardSessionCache) Get(id string) (*enrollment.Wizard, bool) {
	data, found := sc.cache.Get(sessionKeyPrefix + id)
	if !found {
		return nil, false
	}
	w, ok := data.(*enrollment.Wizard)
	if !ok {
		logger.Error("Invalid wizard session cache data type", zap.String("session_id", id))
		sc.cache.Delete(sessionKeyPrefix + id)
		return nil, false
	}
	sc.cache.Set(sessionKeyPrefix+id, w, sc.ttl)
	return w, true
}

// Delete drops a session; it is a no-op for unknown ids
func (sc *WizardSessionCache) Delete(id string) {
	sc.cache.Delete(sessionKeyPrefix + id)
	metrics.WizardSessionsActive.Set(float64(sc.cache.ItemCount()))
}

// Count returns the number of live sessions
func (sc *WizardSessionCache) Count() int {
	return sc.cache.ItemCount()
}
