// internal/models/attribute_group.go
package models

// AttributeGroup is a named, reusable bundle of attributes. Membership is
// many-to-many through attribute_group_attributes.
type AttributeGroup struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	ModuleID *uint  `json:"module_id" gorm:"index"`
	Title    string `json:"title" gorm:"size:255;not null"`
	Slug     string `json:"slug" gorm:"size:255;not null;uniqueIndex"`
	IsActive bool   `json:"is_active" gorm:"default:true"`
	Language string `json:"language" gorm:"type:char(2);default:'en'"`

	Attributes []Attribute `json:"attributes,omitempty" gorm:"many2many:attribute_group_attributes"`
}

func (AttributeGroup) TableName() string {
	return "attribute_groups"
}

// AttributableAttributeGroup links an entity to an attribute group, so a
// form layer knows which attribute bundles apply to the entity.
type AttributableAttributeGroup struct {
	ID               uint   `json:"id" gorm:"primaryKey"`
	AttributableType string `json:"attributable_type" gorm:"size:255;not null;uniqueIndex:unique_attributable_group"`
	AttributableID   uint   `json:"attributable_id" gorm:"not null;uniqueIndex:unique_attributable_group"`
	AttributeGroupID uint   `json:"attribute_group_id" gorm:"not null;uniqueIndex:unique_attributable_group"`

	Group AttributeGroup `json:"group,omitempty" gorm:"foreignKey:AttributeGroupID;constraint:OnDelete:CASCADE"`
}

func (AttributableAttributeGroup) TableName() string {
	return "attributable_attribute_groups"
}
