// internal/services/value_service.go
package services

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fiachehr/go-eav/internal/models"
	"github.com/fiachehr/go-eav/internal/validation"
)

// ValueService reads and writes per-entity attribute values. Writes against
// attributes that do not exist are silent no-ops: a stale form submitting a
// removed attribute must not take down the whole save.
type ValueService struct {
	db       *gorm.DB
	resolver *AttributeResolver
}

// Keys for GetAllOptions.KeyBy.
const (
	KeyBySlug      = "slug"
	KeyByID        = "id"
	KeyByLogicalID = "logical_id"
)

// GetAllOptions shapes the result map of GetAll.
type GetAllOptions struct {
	// KeyBy selects the map key: KeyBySlug (default), KeyByID, or
	// KeyByLogicalID.
	KeyBy string
	// GroupByLocale ignores the locale argument and nests each attribute's
	// values per locale, the locale-less row under the empty key.
	GroupByLocale bool
}

func NewValueService(db *gorm.DB, resolver *AttributeResolver) *ValueService {
	return &ValueService{db: db, resolver: resolver}
}

// Get returns the entity's value for the attribute in the given locale, or
// nil when the attribute or value does not exist. The attribute is referenced
// by slug, numeric id, or loaded definition. A nil locale addresses the
// locale-less row.
func (s *ValueService) Get(entity models.Attributable, attribute interface{}, locale *string) (interface{}, error) {
	attr, err := s.resolveRef(attribute)
	if err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var row models.AttributeValue
	query := s.scopeToEntity(s.db, entity).Where("attribute_id = ?", attr.ID)
	query = scopeToLocale(query, locale)

	if err := query.First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return row.TypedValue(attr.Type), nil
}

// GetAll returns every attribute value the entity holds in the given locale,
// keyed by attribute slug unless options say otherwise.
func (s *ValueService) GetAll(entity models.Attributable, locale *string, opts ...GetAllOptions) (map[string]interface{}, error) {
	var options GetAllOptions
	if len(opts) > 0 {
		options = opts[0]
	}

	var rows []models.AttributeValue
	query := s.scopeToEntity(s.db, entity).Preload("Attribute")
	if !options.GroupByLocale {
		query = scopeToLocale(query, locale)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	values := make(map[string]interface{}, len(rows))
	for _, row := range rows {
		if row.Attribute.ID == 0 {
			continue
		}
		key := valueKey(&row.Attribute, options.KeyBy)
		value := row.TypedValue(row.Attribute.Type)

		if !options.GroupByLocale {
			values[key] = value
			continue
		}

		locales, _ := values[key].(map[string]interface{})
		if locales == nil {
			locales = make(map[string]interface{})
			values[key] = locales
		}
		loc := ""
		if row.Locale != nil {
			loc = *row.Locale
		}
		locales[loc] = value
	}
	return values, nil
}

// Set writes the entity's value for the attribute, creating or updating the
// (entity, attribute, locale) row. Unknown attribute refs are ignored.
func (s *ValueService) Set(entity models.Attributable, attribute interface{}, value interface{}, locale *string) error {
	attr, err := s.resolveRef(attribute)
	if err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			logrus.WithFields(logrus.Fields{
				"attribute":         fmt.Sprint(attribute),
				"attributable_type": entity.AttributableType(),
			}).Debug("Ignoring value for unknown attribute")
			return nil
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.upsert(tx, entity, attr, value, locale)
	})
}

// SetValidated runs the attribute's validation rules against the value before
// writing it. Unknown attribute refs are still ignored.
func (s *ValueService) SetValidated(entity models.Attributable, attribute interface{}, value interface{}, locale *string) error {
	attr, err := s.resolveRef(attribute)
	if err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			return nil
		}
		return err
	}

	if err := validation.ValidateValue(attr, value); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		return s.upsert(tx, entity, attr, value, locale)
	})
}

// SetMany writes a batch of slug-keyed values in one transaction. Unknown
// slugs are skipped, known ones are all written or none are. A value that is
// itself a string-keyed map is treated as a locale batch (one write per
// locale), except for attributes whose storage column is json, where a map is
// a legitimate value.
func (s *ValueService) SetMany(entity models.Attributable, values map[string]interface{}, locale *string) error {
	// Resolution happens outside the transaction so it never reads through a
	// second pooled connection mid-write.
	type write struct {
		attr  *models.Attribute
		value interface{}
	}
	writes := make([]write, 0, len(values))

	for slug, value := range values {
		attr, err := s.resolver.BySlug(slug)
		if err != nil {
			if errors.Is(err, models.ErrAttributeNotFound) {
				continue
			}
			return err
		}
		writes = append(writes, write{attr: attr, value: value})
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for _, w := range writes {
			if byLocale, ok := w.value.(map[string]interface{}); ok && w.attr.ValueColumn() != models.ColumnJSON {
				for loc, localized := range byLocale {
					loc := loc
					if err := s.upsert(tx, entity, w.attr, localized, &loc); err != nil {
						return err
					}
				}
				continue
			}

			if err := s.upsert(tx, entity, w.attr, w.value, locale); err != nil {
				return err
			}
		}
		return nil
	})
}

// Sync makes the given map the entity's complete value set: listed slugs are
// written in the given locale, and values of attributes absent from the map
// are deleted across every locale.
func (s *ValueService) Sync(entity models.Attributable, values map[string]interface{}, locale *string) error {
	keepIDs := make([]uint, 0, len(values))
	resolved := make(map[string]*models.Attribute, len(values))

	for slug := range values {
		attr, err := s.resolver.BySlug(slug)
		if err != nil {
			if errors.Is(err, models.ErrAttributeNotFound) {
				continue
			}
			return err
		}
		keepIDs = append(keepIDs, attr.ID)
		resolved[slug] = attr
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		prune := s.scopeToEntity(tx, entity)
		if len(keepIDs) > 0 {
			prune = prune.Where("attribute_id NOT IN ?", keepIDs)
		}
		if err := prune.Delete(&models.AttributeValue{}).Error; err != nil {
			return fmt.Errorf("failed to prune values: %w", err)
		}

		for slug, attr := range resolved {
			if err := s.upsert(tx, entity, attr, values[slug], locale); err != nil {
				return err
			}
		}
		return nil
	})
}

// Remove deletes the entity's value row for the attribute in the given
// locale. Unknown attribute refs are ignored.
func (s *ValueService) Remove(entity models.Attributable, attribute interface{}, locale *string) error {
	attr, err := s.resolveRef(attribute)
	if err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			return nil
		}
		return err
	}

	query := s.scopeToEntity(s.db, entity).Where("attribute_id = ?", attr.ID)
	query = scopeToLocale(query, locale)

	if err := query.Delete(&models.AttributeValue{}).Error; err != nil {
		return fmt.Errorf("failed to remove value: %w", err)
	}
	return nil
}

// RemoveAllLocales deletes the entity's value rows for the attribute in
// every locale.
func (s *ValueService) RemoveAllLocales(entity models.Attributable, attribute interface{}) error {
	attr, err := s.resolveRef(attribute)
	if err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			return nil
		}
		return err
	}

	if err := s.scopeToEntity(s.db, entity).
		Where("attribute_id = ?", attr.ID).
		Delete(&models.AttributeValue{}).Error; err != nil {
		return fmt.Errorf("failed to remove values: %w", err)
	}
	return nil
}

// Clear deletes every attribute value the entity holds, in all locales.
func (s *ValueService) Clear(entity models.Attributable) error {
	if err := s.scopeToEntity(s.db, entity).Delete(&models.AttributeValue{}).Error; err != nil {
		return fmt.Errorf("failed to clear values: %w", err)
	}
	return nil
}

// upsert performs the select-then-write against the unique
// (attributable_type, attributable_id, attribute_id, locale) tuple.
func (s *ValueService) upsert(tx *gorm.DB, entity models.Attributable, attr *models.Attribute, value interface{}, locale *string) error {
	var row models.AttributeValue
	query := s.scopeToEntity(tx, entity).Where("attribute_id = ?", attr.ID)
	query = scopeToLocale(query, locale)

	err := query.First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}
		row = models.AttributeValue{
			AttributableType: entity.AttributableType(),
			AttributableID:   entity.AttributableID(),
			AttributeID:      attr.ID,
			Locale:           locale,
		}
	}

	if err := row.SetTypedValue(attr.Type, value); err != nil {
		return fmt.Errorf("attribute %s: %w", attr.Slug, err)
	}

	if err := tx.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save value for %s: %w", attr.Slug, err)
	}
	return nil
}

// resolveRef accepts a slug, a numeric id, or an already loaded definition.
func (s *ValueService) resolveRef(ref interface{}) (*models.Attribute, error) {
	switch v := ref.(type) {
	case *models.Attribute:
		return v, nil
	case models.Attribute:
		return &v, nil
	case uint:
		return s.resolver.ByID(v)
	case int:
		if v <= 0 {
			return nil, models.ErrAttributeNotFound
		}
		return s.resolver.ByID(uint(v))
	case string:
		return s.resolver.BySlug(v)
	}
	return nil, fmt.Errorf("unsupported attribute reference %T", ref)
}

func valueKey(attr *models.Attribute, keyBy string) string {
	switch keyBy {
	case KeyByID:
		return strconv.FormatUint(uint64(attr.ID), 10)
	case KeyByLogicalID:
		return attr.LogicalID
	}
	return attr.Slug
}

func (s *ValueService) scopeToEntity(tx *gorm.DB, entity models.Attributable) *gorm.DB {
	return tx.Model(&models.AttributeValue{}).Where(
		"attributable_type = ? AND attributable_id = ?",
		entity.AttributableType(), entity.AttributableID(),
	)
}

func scopeToLocale(query *gorm.DB, locale *string) *gorm.DB {
	if locale == nil {
		return query.Where("locale IS NULL")
	}
	return query.Where("locale = ?", *locale)
}
