// internal/store/offers.go
package store

import (
	"context"
	"sync"

	"github.com/SaiffMoh/FastTravelGraph/internal/models"
)

// OfferCache remembers the most recent formatted offers per thread so a
// later turn can resolve a numeric selection against them.
type OfferCache interface {
	Get(ctx context.Context, threadID string) ([]models.Offer, error)
	Set(ctx context.Context, threadID string, offers []models.Offer) error
	Clear(ctx context.Context, threadID string) error
}

// MemoryOfferCache holds offers in process memory. Each Set replaces the
// previous result set for the thread.
type MemoryOfferCache struct {
	mu     sync.RWMutex
	offers map[string][]models.Offer
}

func NewMemoryOfferCache() *MemoryOfferCache {
	return &MemoryOfferCache{offers: make(map[string][]models.Offer)}
}

func (c *MemoryOfferCache) Get(_ context.Context, threadID string) ([]models.Offer, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	cached, ok := c.offers[threadID]
	if !ok {
		return nil, nil
	}
	out := make([]models.Offer, len(cached))
	copy(out, cached)
	return out, nil
}

func (c *MemoryOfferCache) Set(_ context.Context, threadID string, offers []models.Offer) error {
	stored := make([]models.Offer, len(offers))
	copy(stored, offers)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.offers[threadID] = stored
	return nil
}

func (c *MemoryOfferCache) Clear(_ context.Context, threadID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.offers, threadID)
	return nil
}
