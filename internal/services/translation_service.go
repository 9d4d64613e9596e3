// internal/services/translation_service.go
package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/fiachehr/go-eav/internal/models"
)

// TranslationService stores localized strings for any record identified by a
// (type, id) pair, typically attribute titles and option labels.
type TranslationService struct {
	db *gorm.DB
}

// TranslatableRef names the record a translation belongs to.
type TranslatableRef struct {
	Type string `json:"type" validate:"required"`
	ID   uint   `json:"id" validate:"required"`
}

func NewTranslationService(db *gorm.DB) *TranslationService {
	return &TranslationService{db: db}
}

// Set upserts the translation for (owner, locale, key).
func (s *TranslationService) Set(owner TranslatableRef, locale, key, value string) error {
	var row models.Translation
	err := s.db.Where(
		"translatable_type = ? AND translatable_id = ? AND locale = ? AND key = ?",
		owner.Type, owner.ID, locale, key,
	).First(&row).Error

	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("database error: %w", err)
		}
		row = models.Translation{
			TranslatableType: owner.Type,
			TranslatableID:   owner.ID,
			Locale:           locale,
			Key:              key,
		}
	}

	row.Value = value
	if err := s.db.Save(&row).Error; err != nil {
		return fmt.Errorf("failed to save translation: %w", err)
	}
	return nil
}

// SetMany upserts a key-value batch for one locale in a single transaction.
func (s *TranslationService) SetMany(owner TranslatableRef, locale string, values map[string]string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		scoped := &TranslationService{db: tx}
		for key, value := range values {
			if err := scoped.Set(owner, locale, key, value); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get returns the translation for (owner, locale, key), with an optional
// fallback locale tried when the primary locale has no entry. Empty string
// means no translation exists.
func (s *TranslationService) Get(owner TranslatableRef, locale, key string, fallback ...string) (string, error) {
	value, found, err := s.lookup(owner, locale, key)
	if err != nil {
		return "", err
	}
	if found {
		return value, nil
	}

	for _, loc := range fallback {
		value, found, err = s.lookup(owner, loc, key)
		if err != nil {
			return "", err
		}
		if found {
			return value, nil
		}
	}
	return "", nil
}

// GetForLocale returns every translation the owner has in one locale, keyed
// by translation key.
func (s *TranslationService) GetForLocale(owner TranslatableRef, locale string) (map[string]string, error) {
	var rows []models.Translation
	if err := s.db.Where(
		"translatable_type = ? AND translatable_id = ? AND locale = ?",
		owner.Type, owner.ID, locale,
	).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Key] = row.Value
	}
	return values, nil
}

// GetForKey returns one key's translation in every locale it exists in,
// keyed by locale.
func (s *TranslationService) GetForKey(owner TranslatableRef, key string) (map[string]string, error) {
	var rows []models.Translation
	if err := s.db.Where(
		"translatable_type = ? AND translatable_id = ? AND key = ?",
		owner.Type, owner.ID, key,
	).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	values := make(map[string]string, len(rows))
	for _, row := range rows {
		values[row.Locale] = row.Value
	}
	return values, nil
}

// GetAll returns every translation the owner has, grouped by locale then key.
func (s *TranslationService) GetAll(owner TranslatableRef) (map[string]map[string]string, error) {
	var rows []models.Translation
	if err := s.db.Where(
		"translatable_type = ? AND translatable_id = ?",
		owner.Type, owner.ID,
	).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	grouped := make(map[string]map[string]string)
	for _, row := range rows {
		if grouped[row.Locale] == nil {
			grouped[row.Locale] = make(map[string]string)
		}
		grouped[row.Locale][row.Key] = row.Value
	}
	return grouped, nil
}

// Has reports whether a translation exists for (owner, locale, key).
func (s *TranslationService) Has(owner TranslatableRef, locale, key string) (bool, error) {
	_, found, err := s.lookup(owner, locale, key)
	return found, err
}

// Delete removes the translation for (owner, locale, key).
func (s *TranslationService) Delete(owner TranslatableRef, locale, key string) error {
	if err := s.db.Where(
		"translatable_type = ? AND translatable_id = ? AND locale = ? AND key = ?",
		owner.Type, owner.ID, locale, key,
	).Delete(&models.Translation{}).Error; err != nil {
		return fmt.Errorf("failed to delete translation: %w", err)
	}
	return nil
}

// DeleteForLocale removes every translation the owner has in one locale.
func (s *TranslationService) DeleteForLocale(owner TranslatableRef, locale string) error {
	if err := s.db.Where(
		"translatable_type = ? AND translatable_id = ? AND locale = ?",
		owner.Type, owner.ID, locale,
	).Delete(&models.Translation{}).Error; err != nil {
		return fmt.Errorf("failed to delete translations: %w", err)
	}
	return nil
}

// DeleteForKey removes one key's translations in every locale.
func (s *TranslationService) DeleteForKey(owner TranslatableRef, key string) error {
	if err := s.db.Where(
		"translatable_type = ? AND translatable_id = ? AND key = ?",
		owner.Type, owner.ID, key,
	).Delete(&models.Translation{}).Error; err != nil {
		return fmt.Errorf("failed to delete translations: %w", err)
	}
	return nil
}

// DeleteAll removes every translation the owner has, in all locales. Called
// when the owning record is deleted.
func (s *TranslationService) DeleteAll(owner TranslatableRef) error {
	if err := s.db.Where(
		"translatable_type = ? AND translatable_id = ?",
		owner.Type, owner.ID,
	).Delete(&models.Translation{}).Error; err != nil {
		return fmt.Errorf("failed to delete translations: %w", err)
	}
	return nil
}

func (s *TranslationService) lookup(owner TranslatableRef, locale, key string) (string, bool, error) {
	var row models.Translation
	err := s.db.Where(
		"translatable_type = ? AND translatable_id = ? AND locale = ? AND key = ?",
		owner.Type, owner.ID, locale, key,
	).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("database error: %w", err)
	}
	return row.Value, true, nil
}
