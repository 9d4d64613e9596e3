// internal/models/attribute_type.go
package models

import (
	"github.com/sirupsen/logrus"
)

// AttributeType is the closed set of value types an attribute can declare.
// The integer values are persisted in the attributes.type column and must
// never be renumbered.
type AttributeType int16

const (
	// Text types
	TypeText     AttributeType = 0
	TypeTextarea AttributeType = 1
	TypePassword AttributeType = 2

	// Number types
	TypeNumber  AttributeType = 3
	TypeDecimal AttributeType = 4

	// Selection types
	TypeRadio    AttributeType = 5
	TypeSelect   AttributeType = 6
	TypeMultiple AttributeType = 7
	TypeCheckbox AttributeType = 8
	TypeColor    AttributeType = 9

	// Date/Time types
	TypeDate     AttributeType = 10
	TypeTime     AttributeType = 11
	TypeDatetime AttributeType = 12

	// Boolean types
	TypeBoolean AttributeType = 13

	// File types
	TypeFile AttributeType = 14

	// Location types
	TypeLocation    AttributeType = 15
	TypeCoordinates AttributeType = 16
)

// Typed value columns on attributable_attributes.
const (
	ColumnText     = "value_text"
	ColumnNumber   = "value_number"
	ColumnDecimal  = "value_decimal"
	ColumnDate     = "value_date"
	ColumnDatetime = "value_datetime"
	ColumnTime     = "value_time"
	ColumnBoolean  = "value_boolean"
	ColumnJSON     = "value_json"
	ColumnLegacy   = "value"
)

func (t AttributeType) Valid() bool {
	return t >= TypeText && t <= TypeCoordinates
}

func (t AttributeType) Label() string {
	switch t {
	case TypeText:
		return "Text"
	case TypeTextarea:
		return "Textarea"
	case TypePassword:
		return "Password"
	case TypeNumber:
		return "Number"
	case TypeDecimal:
		return "Decimal"
	case TypeRadio:
		return "Radio"
	case TypeSelect:
		return "Select"
	case TypeMultiple:
		return "Multiple Select"
	case TypeCheckbox:
		return "Checkbox"
	case TypeColor:
		return "Color"
	case TypeDate:
		return "Date"
	case TypeTime:
		return "Time"
	case TypeDatetime:
		return "DateTime"
	case TypeBoolean:
		return "Boolean"
	case TypeFile:
		return "File"
	case TypeLocation:
		return "Location"
	case TypeCoordinates:
		return "Coordinates"
	}
	return "Unknown"
}

// ValueColumn maps the type to the single attributable_attributes column its
// values are stored in. Every type maps to exactly one column.
func (t AttributeType) ValueColumn() string {
	switch t {
	case TypeText, TypeTextarea, TypePassword, TypeLocation:
		return ColumnText
	case TypeNumber:
		return ColumnNumber
	case TypeDecimal:
		return ColumnDecimal
	case TypeDate:
		return ColumnDate
	case TypeTime:
		return ColumnTime
	case TypeDatetime:
		return ColumnDatetime
	case TypeBoolean, TypeCheckbox:
		return ColumnBoolean
	case TypeRadio, TypeSelect, TypeMultiple, TypeColor, TypeFile, TypeCoordinates:
		return ColumnJSON
	}
	return ColumnLegacy
}

// RequiresValues reports whether attribute definitions of this type must
// declare an enumerated list of allowed values.
func (t AttributeType) RequiresValues() bool {
	switch t {
	case TypeRadio, TypeSelect, TypeMultiple, TypeCheckbox, TypeColor:
		return true
	}
	return false
}

// IsSearchable reports whether values of this type support substring search.
func (t AttributeType) IsSearchable() bool {
	switch t {
	case TypeText, TypeTextarea, TypeLocation:
		return true
	}
	return false
}

func (t AttributeType) IsNumeric() bool {
	return t == TypeNumber || t == TypeDecimal
}

func (t AttributeType) IsDate() bool {
	return t == TypeDate || t == TypeTime || t == TypeDatetime
}

func (t AttributeType) IsBoolean() bool {
	return t == TypeBoolean || t == TypeCheckbox
}

// ParseAttributeType converts a stored type tag into an AttributeType,
// failing with ErrUnknownAttributeType for tags outside the known range.
func ParseAttributeType(tag int) (AttributeType, error) {
	t := AttributeType(tag)
	if !t.Valid() {
		return TypeText, ErrUnknownAttributeType
	}
	return t, nil
}

// AttributeTypeOrDefault converts a stored type tag, downgrading unknown tags
// to TypeText with a warning. Only intended for deserialization boundaries
// where data written by a newer version may carry newer tags; production
// paths must use ParseAttributeType.
func AttributeTypeOrDefault(tag int) AttributeType {
	t, err := ParseAttributeType(tag)
	if err != nil {
		logrus.WithField("type", tag).Warn("Unknown attribute type tag, defaulting to text")
		return TypeText
	}
	return t
}

// AttributeTypeInfo describes one attribute type for catalog listings.
type AttributeTypeInfo struct {
	Value          AttributeType `json:"value"`
	Label          string        `json:"label"`
	RequiresValues bool          `json:"requires_values"`
	ValueColumn    string        `json:"value_column"`
	Searchable     bool          `json:"searchable"`
}

// AttributeTypes returns metadata for every known attribute type.
func AttributeTypes() []AttributeTypeInfo {
	types := make([]AttributeTypeInfo, 0, int(TypeCoordinates)+1)
	for t := TypeText; t <= TypeCoordinates; t++ {
		types = append(types, AttributeTypeInfo{
			Value:          t,
			Label:          t.Label(),
			RequiresValues: t.RequiresValues(),
			ValueColumn:    t.ValueColumn(),
			Searchable:     t.IsSearchable(),
		})
	}
	return types
}
