// internal/services/resolver.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"

	"github.com/fiachehr/go-eav/internal/config"
	"github.com/fiachehr/go-eav/internal/models"
)

const defaultCachePrefix = "eav"

// AttributeResolver turns attribute slugs and ids into loaded definitions,
// caching results so hot paths do not hit the database for every value
// read or write.
type AttributeResolver struct {
	db      *gorm.DB
	cache   *cache.Cache
	prefix  string
	enabled bool
}

func NewAttributeResolver(db *gorm.DB, ttl time.Duration) *AttributeResolver {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AttributeResolver{
		db:      db,
		cache:   cache.New(ttl, 2*ttl),
		prefix:  defaultCachePrefix,
		enabled: true,
	}
}

// NewAttributeResolverFromConfig applies the engine config's cache block:
// prefix, TTL, and the enable switch that turns the resolver into plain
// database lookups.
func NewAttributeResolverFromConfig(db *gorm.DB, cfg config.EAVConfig) *AttributeResolver {
	r := NewAttributeResolver(db, time.Duration(cfg.CacheTTL)*time.Second)
	if cfg.CachePrefix != "" {
		r.prefix = cfg.CachePrefix
	}
	r.enabled = cfg.CacheEnabled
	return r
}

// BySlug resolves an attribute by slug, returning models.ErrAttributeNotFound
// when no such attribute exists.
func (r *AttributeResolver) BySlug(slug string) (*models.Attribute, error) {
	if cached, found := r.lookupCache(r.key("slug", slug)); found {
		return cached, nil
	}

	var attr models.Attribute
	if err := r.db.Where("slug = ?", slug).First(&attr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAttributeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	r.store(&attr)
	return &attr, nil
}

// ByID resolves an attribute by its numeric id.
func (r *AttributeResolver) ByID(id uint) (*models.Attribute, error) {
	if cached, found := r.lookupCache(r.key("id", fmt.Sprint(id))); found {
		return cached, nil
	}

	var attr models.Attribute
	if err := r.db.First(&attr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAttributeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	r.store(&attr)
	return &attr, nil
}

// ByLogicalID resolves an attribute by its stable UUID handle.
func (r *AttributeResolver) ByLogicalID(logicalID string) (*models.Attribute, error) {
	if cached, found := r.lookupCache(r.key("logical", logicalID)); found {
		return cached, nil
	}

	var attr models.Attribute
	if err := r.db.Where("logical_id = ?", logicalID).First(&attr).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAttributeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	r.store(&attr)
	return &attr, nil
}

// Invalidate drops every cached entry for the attribute. Call after any
// mutation of the definition.
func (r *AttributeResolver) Invalidate(attr *models.Attribute) {
	r.cache.Delete(r.key("slug", attr.Slug))
	r.cache.Delete(r.key("id", fmt.Sprint(attr.ID)))
	r.cache.Delete(r.key("logical", attr.LogicalID))
}

// Flush empties the whole cache.
func (r *AttributeResolver) Flush() {
	r.cache.Flush()
}

func (r *AttributeResolver) key(kind, id string) string {
	return fmt.Sprintf("%s:attribute:%s:%s", r.prefix, kind, id)
}

func (r *AttributeResolver) lookupCache(key string) (*models.Attribute, bool) {
	if !r.enabled {
		return nil, false
	}
	if cached, found := r.cache.Get(key); found {
		attr := cached.(models.Attribute)
		return &attr, true
	}
	return nil, false
}

func (r *AttributeResolver) store(attr *models.Attribute) {
	if !r.enabled {
		return
	}
	// Copies are cached by value so callers cannot mutate shared state.
	r.cache.SetDefault(r.key("slug", attr.Slug), *attr)
	r.cache.SetDefault(r.key("id", fmt.Sprint(attr.ID)), *attr)
	r.cache.SetDefault(r.key("logical", attr.LogicalID), *attr)
}
