// Package registration looks up signup registrations with a short-lived cache.
package registration

import (
	"context"
	"time"

	"onboarder/internal/domain"
	"onboarder/internal/repository"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

type entry struct {
	order   domain.Order
	expires time.Time
}

// Cache remembers found registrations for ttl. Misses are never cached,
// a registration placed after the first lookup is picked up on the next one.
type Cache struct {
	repo    repository.RegistrationRepository
	ttl     time.Duration
	entries *xsync.MapOf[string, entry]
	logger  *zap.Logger
	now     func() time.Time
}

// NewCache creates a registration cache in front of repo
func NewCache(repo repository.RegistrationRepository, ttl time.Duration, logger *zap.Logger) *Cache {
	return &Cache{
		repo:    repo,
		ttl:     ttl,
		entries: xsync.NewMapOf[string, entry](),
		logger:  logger,
		now:     time.Now,
	}
}

// FindByUsername returns the registration of username, nil when there is none
func (c *Cache) FindByUsername(ctx context.Context, username string) (*domain.Order, error) {
	if e, ok := c.entries.Load(username); ok && c.now().Before(e.expires) {
		order := e.order
		return &order, nil
	}

	order, err := c.repo.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if order == nil {
		c.entries.Delete(username)
		return nil, nil
	}

	if c.ttl > 0 {
		c.entries.Store(username, entry{order: *order, expires: c.now().Add(c.ttl)})
	}
	return order, nil
}

// Purge drops expired entries and returns how many were removed
func (c *Cache) Purge() int {
	now := c.now()
	removed := 0
	c.entries.Range(func(username string, e entry) bool {
		if !now.Before(e.expires) {
			c.entries.Delete(username)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Purged registration cache",
			zap.Int("removed", removed),
			zap.Int("remaining", c.entries.Size()),
		)
	}
	return removed
}

// Len returns the number of cached registrations
func (c *Cache) Len() int {
	return c.entries.Size()
}
