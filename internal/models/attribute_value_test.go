package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetTypedValueText(t *testing.T) {
	var row AttributeValue
	require.NoError(t, row.SetTypedValue(TypeText, "hello"))

	assert.Equal(t, []string{ColumnText}, row.TypedColumnsSet())
	assert.Equal(t, "hello", row.TypedValue(TypeText))
	require.NotNil(t, row.Value)
	assert.Equal(t, "hello", *row.Value)
}

func TestSetTypedValueNumberCoercesStrings(t *testing.T) {
	var row AttributeValue
	require.NoError(t, row.SetTypedValue(TypeNumber, "42"))

	assert.Equal(t, []string{ColumnNumber}, row.TypedColumnsSet())
	assert.Equal(t, int64(42), row.TypedValue(TypeNumber))

	require.Error(t, row.SetTypedValue(TypeNumber, "not a number"))
}

func TestSetTypedValueDecimal(t *testing.T) {
	var row AttributeValue
	require.NoError(t, row.SetTypedValue(TypeDecimal, 99.99))

	assert.Equal(t, []string{ColumnDecimal}, row.TypedColumnsSet())
	assert.Equal(t, 99.99, row.TypedValue(TypeDecimal))
	require.NotNil(t, row.Value)
	assert.Equal(t, "99.99", *row.Value)
}

func TestSetTypedValueDateTruncatesClock(t *testing.T) {
	var row AttributeValue
	require.NoError(t, row.SetTypedValue(TypeDate, "2026-03-15 13:45:00"))

	require.NotNil(t, row.ValueDate)
	assert.Equal(t, "2026-03-15", row.ValueDate.Format("2006-01-02"))
	assert.Zero(t, row.ValueDate.Hour())
}

func TestSetTypedValueTimeNormalizes(t *testing.T) {
	var row AttributeValue
	require.NoError(t, row.SetTypedValue(TypeTime, "09:30"))
	assert.Equal(t, "09:30:00", row.TypedValue(TypeTime))

	require.NoError(t, row.SetTypedValue(TypeTime, "09:30:15"))
	assert.Equal(t, "09:30:15", row.TypedValue(TypeTime))
}

func TestSetTypedValueDatetime(t *testing.T) {
	var row AttributeValue
	stamp := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	require.NoError(t, row.SetTypedValue(TypeDatetime, stamp))

	assert.Equal(t, []string{ColumnDatetime}, row.TypedColumnsSet())
	assert.Equal(t, stamp, row.TypedValue(TypeDatetime))
}

func TestSetTypedValueBoolean(t *testing.T) {
	var row AttributeValue
	require.NoError(t, row.SetTypedValue(TypeBoolean, true))
	assert.Equal(t, true, row.TypedValue(TypeBoolean))

	require.NoError(t, row.SetTypedValue(TypeBoolean, "false"))
	assert.Equal(t, false, row.TypedValue(TypeBoolean))
	assert.Equal(t, []string{ColumnBoolean}, row.TypedColumnsSet())
}

func TestSetTypedValueJSONList(t *testing.T) {
	var row AttributeValue
	require.NoError(t, row.SetTypedValue(TypeMultiple, []string{"red", "green"}))

	assert.Equal(t, []string{ColumnJSON}, row.TypedColumnsSet())
	decoded, ok := row.TypedValue(TypeMultiple).([]interface{})
	require.True(t, ok)
	assert.Equal(t, []interface{}{"red", "green"}, decoded)

	require.NotNil(t, row.Value)
	assert.JSONEq(t, `["red","green"]`, *row.Value)
}

func TestSetTypedValueJSONStringPassthrough(t *testing.T) {
	var row AttributeValue
	require.NoError(t, row.SetTypedValue(TypeCoordinates, `{"lat":35.7,"lng":51.4}`))

	assert.Equal(t, []string{ColumnJSON}, row.TypedColumnsSet())
	decoded, ok := row.TypedValue(TypeCoordinates).(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, 35.7, decoded["lat"])
}

func TestSetTypedValueClearsPreviousColumn(t *testing.T) {
	var row AttributeValue
	require.NoError(t, row.SetTypedValue(TypeNumber, 7))
	require.NoError(t, row.SetTypedValue(TypeText, "seven"))

	assert.Equal(t, []string{ColumnText}, row.TypedColumnsSet())
	assert.Nil(t, row.ValueNumber)
}

func TestSetTypedValueNilClearsEverything(t *testing.T) {
	var row AttributeValue
	require.NoError(t, row.SetTypedValue(TypeText, "something"))
	require.NoError(t, row.SetTypedValue(TypeText, nil))

	assert.Empty(t, row.TypedColumnsSet())
	assert.Nil(t, row.Value)
	assert.Nil(t, row.TypedValue(TypeText))
}

func TestTypedValueLegacyFallback(t *testing.T) {
	legacy := "42"
	row := AttributeValue{Value: &legacy}

	assert.Equal(t, "42", row.TypedValue(TypeNumber))
	assert.Equal(t, "42", row.TypedValue(TypeText))
}
