// internal/models/attribute.go
package models

// Attribute is a user-defined field definition. The numeric id is the
// storage key; logical_id is a stable UUID handle that survives re-imports
// and id changes, and is immutable once assigned.
type Attribute struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	LogicalID   string          `json:"logical_id" gorm:"type:uuid;uniqueIndex;not null"`
	Title       string          `json:"title" gorm:"size:255;not null;index"`
	Slug        string          `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	Type        AttributeType   `json:"type" gorm:"type:smallint;not null"`
	Description string          `json:"description" gorm:"type:text"`
	Values      JSONList        `json:"values" gorm:"type:json"`
	Validations ValidationRules `json:"validations" gorm:"type:json"`
	IsActive    bool            `json:"is_active" gorm:"default:true"`
	Language    string          `json:"language" gorm:"type:char(2);default:'en'"`

	Groups []AttributeGroup `json:"groups,omitempty" gorm:"many2many:attribute_group_attributes"`
}

func (Attribute) TableName() string {
	return "attributes"
}

func (a *Attribute) ValueColumn() string {
	return a.Type.ValueColumn()
}

func (a *Attribute) IsNumeric() bool {
	return a.Type.IsNumeric()
}

func (a *Attribute) IsSearchable() bool {
	return a.Type.IsSearchable()
}

func (a *Attribute) RequiresValues() bool {
	return a.Type.RequiresValues()
}
