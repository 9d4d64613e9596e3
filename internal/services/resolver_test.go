// internal/services/resolver_test.go
package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fiachehr/go-eav/internal/config"
	"github.com/fiachehr/go-eav/internal/models"
)

func resolverTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Shared cache keeps every pooled connection on the same in-memory
	// database; without it each new connection starts empty.
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Attribute{}))
	require.NoError(t, db.Exec("DELETE FROM attributes").Error)
	return db
}

func seedAttribute(t *testing.T, db *gorm.DB, title, slug string) *models.Attribute {
	t.Helper()

	attr := &models.Attribute{
		LogicalID: uuid.NewString(),
		Title:     title,
		Slug:      slug,
		Type:      models.TypeText,
		IsActive:  true,
		Language:  "en",
	}
	require.NoError(t, db.Create(attr).Error)
	return attr
}

func TestResolverServesCachedCopyUntilInvalidated(t *testing.T) {
	db := resolverTestDB(t)
	resolver := NewAttributeResolver(db, time.Minute)

	attr := seedAttribute(t, db, "Color", "color")

	first, err := resolver.BySlug("color")
	require.NoError(t, err)
	assert.Equal(t, "Color", first.Title)

	require.NoError(t, db.Model(&models.Attribute{}).
		Where("id = ?", attr.ID).
		Update("title", "Colour").Error)

	cached, err := resolver.BySlug("color")
	require.NoError(t, err)
	assert.Equal(t, "Color", cached.Title)

	resolver.Invalidate(attr)

	fresh, err := resolver.BySlug("color")
	require.NoError(t, err)
	assert.Equal(t, "Colour", fresh.Title)
}

func TestResolverCacheDisabledByConfig(t *testing.T) {
	db := resolverTestDB(t)
	resolver := NewAttributeResolverFromConfig(db, config.EAVConfig{
		CacheEnabled: false,
		CachePrefix:  "custom",
		CacheTTL:     60,
	})

	attr := seedAttribute(t, db, "Size", "size")

	first, err := resolver.BySlug("size")
	require.NoError(t, err)
	assert.Equal(t, "Size", first.Title)

	require.NoError(t, db.Model(&models.Attribute{}).
		Where("id = ?", attr.ID).
		Update("title", "Sizes").Error)

	// Disabled cache means every lookup reads the database.
	fresh, err := resolver.BySlug("size")
	require.NoError(t, err)
	assert.Equal(t, "Sizes", fresh.Title)
}

func TestResolverNotFound(t *testing.T) {
	db := resolverTestDB(t)
	resolver := NewAttributeResolver(db, time.Minute)

	_, err := resolver.BySlug("never-defined")
	assert.ErrorIs(t, err, models.ErrAttributeNotFound)

	_, err = resolver.ByID(9999)
	assert.ErrorIs(t, err, models.ErrAttributeNotFound)
}
