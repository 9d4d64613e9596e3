package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAttributeTypeValueColumn(t *testing.T) {
	cases := map[AttributeType]string{
		TypeText:        ColumnText,
		TypeTextarea:    ColumnText,
		TypePassword:    ColumnText,
		TypeLocation:    ColumnText,
		TypeNumber:      ColumnNumber,
		TypeDecimal:     ColumnDecimal,
		TypeDate:        ColumnDate,
		TypeTime:        ColumnTime,
		TypeDatetime:    ColumnDatetime,
		TypeBoolean:     ColumnBoolean,
		TypeCheckbox:    ColumnBoolean,
		TypeRadio:       ColumnJSON,
		TypeSelect:      ColumnJSON,
		TypeMultiple:    ColumnJSON,
		TypeColor:       ColumnJSON,
		TypeFile:        ColumnJSON,
		TypeCoordinates: ColumnJSON,
	}

	for at, column := range cases {
		assert.Equal(t, column, at.ValueColumn(), "type %s", at.Label())
	}
}

func TestAttributeTypeEveryTypeHasExactlyOneColumn(t *testing.T) {
	for at := TypeText; at <= TypeCoordinates; at++ {
		column := at.ValueColumn()
		assert.NotEqual(t, ColumnLegacy, column, "type %s must map to a typed column", at.Label())
		assert.NotEmpty(t, column)
	}
}

func TestAttributeTypePredicates(t *testing.T) {
	assert.True(t, TypeRadio.RequiresValues())
	assert.True(t, TypeSelect.RequiresValues())
	assert.True(t, TypeMultiple.RequiresValues())
	assert.True(t, TypeCheckbox.RequiresValues())
	assert.True(t, TypeColor.RequiresValues())
	assert.False(t, TypeText.RequiresValues())
	assert.False(t, TypeFile.RequiresValues())

	assert.True(t, TypeText.IsSearchable())
	assert.True(t, TypeTextarea.IsSearchable())
	assert.True(t, TypeLocation.IsSearchable())
	assert.False(t, TypePassword.IsSearchable())
	assert.False(t, TypeNumber.IsSearchable())

	assert.True(t, TypeNumber.IsNumeric())
	assert.True(t, TypeDecimal.IsNumeric())
	assert.False(t, TypeBoolean.IsNumeric())

	assert.True(t, TypeDate.IsDate())
	assert.True(t, TypeTime.IsDate())
	assert.True(t, TypeDatetime.IsDate())

	assert.True(t, TypeBoolean.IsBoolean())
	assert.True(t, TypeCheckbox.IsBoolean())
	assert.False(t, TypeRadio.IsBoolean())
}

func TestParseAttributeType(t *testing.T) {
	at, err := ParseAttributeType(4)
	assert.NoError(t, err)
	assert.Equal(t, TypeDecimal, at)

	_, err = ParseAttributeType(17)
	assert.ErrorIs(t, err, ErrUnknownAttributeType)

	_, err = ParseAttributeType(-1)
	assert.ErrorIs(t, err, ErrUnknownAttributeType)
}

func TestAttributeTypeOrDefaultFallsBackToText(t *testing.T) {
	assert.Equal(t, TypeText, AttributeTypeOrDefault(99))
	assert.Equal(t, TypeBoolean, AttributeTypeOrDefault(13))
}

func TestAttributeTypesCatalog(t *testing.T) {
	types := AttributeTypes()
	assert.Len(t, types, 17)
	assert.Equal(t, TypeText, types[0].Value)
	assert.Equal(t, "Text", types[0].Label)
	assert.Equal(t, TypeCoordinates, types[16].Value)
	assert.Equal(t, ColumnJSON, types[16].ValueColumn)
}
