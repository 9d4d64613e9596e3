// internal/models/translation.go
package models

// Storage discriminators for catalog records that carry translations.
const (
	TranslatableAttribute      = "attribute"
	TranslatableAttributeGroup = "attribute_group"
)

// Translation stores one localized string for a (record, locale, key)
// tuple. Any record identified by a (type, id) pair can carry translations;
// the table is append-or-replace, no timestamps.
type Translation struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	TranslatableType string `json:"translatable_type" gorm:"size:255;not null;uniqueIndex:unique_translatable_locale_key,priority:1"`
	TranslatableID   uint   `json:"translatable_id" gorm:"not null;uniqueIndex:unique_translatable_locale_key,priority:2"`
	Locale           string `json:"locale" gorm:"size:10;not null;uniqueIndex:unique_translatable_locale_key,priority:3"`
	Key              string `json:"key" gorm:"size:255;not null;uniqueIndex:unique_translatable_locale_key,priority:4"`
	Value            string `json:"value" gorm:"type:text"`
}

func (Translation) TableName() string {
	return "eav_translations"
}
