// internal/models/attribute_value.go
package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// AttributeValue is one EAV fact row: a single typed value for one
// (entity, attribute, locale) tuple. Exactly one typed column is non-null,
// the one dictated by the owning attribute's type; the legacy value column
// always mirrors the encoded value for pre-typed readers.
type AttributeValue struct {
	ID               uint    `json:"id" gorm:"primaryKey"`
	AttributableType string  `json:"attributable_type" gorm:"size:255;not null;uniqueIndex:unique_attributable_attribute_locale,priority:1;index:idx_attributable,priority:1"`
	AttributableID   uint    `json:"attributable_id" gorm:"not null;uniqueIndex:unique_attributable_attribute_locale,priority:2;index:idx_attributable,priority:2"`
	AttributeID      uint    `json:"attribute_id" gorm:"not null;index;uniqueIndex:unique_attributable_attribute_locale,priority:3"`
	Locale           *string `json:"locale" gorm:"size:10;uniqueIndex:unique_attributable_attribute_locale,priority:4"`

	ValueText     *string        `json:"value_text" gorm:"column:value_text;type:text"`
	ValueNumber   *int64         `json:"value_number" gorm:"column:value_number;index:idx_attr_number,priority:2"`
	ValueDecimal  *float64       `json:"value_decimal" gorm:"column:value_decimal;type:decimal(15,4)"`
	ValueDate     *time.Time     `json:"value_date" gorm:"column:value_date;type:date;index:idx_attr_date,priority:2"`
	ValueDatetime *time.Time     `json:"value_datetime" gorm:"column:value_datetime"`
	ValueTime     *string        `json:"value_time" gorm:"column:value_time;size:8"`
	ValueBoolean  *bool          `json:"value_boolean" gorm:"column:value_boolean;index:idx_attr_boolean,priority:2"`
	ValueJSON     datatypes.JSON `json:"value_json" gorm:"column:value_json;type:json"`

	// Legacy single-column encoding, kept for backward compatibility with
	// rows written before the typed columns existed.
	Value *string `json:"value" gorm:"column:value;type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Attribute Attribute `json:"attribute,omitempty" gorm:"foreignKey:AttributeID;constraint:OnDelete:CASCADE"`
}

func (AttributeValue) TableName() string {
	return "attributable_attributes"
}

// Layouts accepted for temporal coercions.
const (
	dateLayout     = "2006-01-02"
	timeLayout     = "15:04:05"
	datetimeLayout = "2006-01-02 15:04:05"
)

// SetTypedValue clears every typed column, coerces the value into the column
// dictated by the attribute type, and mirrors the encoding into the legacy
// value column.
func (v *AttributeValue) SetTypedValue(t AttributeType, value interface{}) error {
	v.clearTypedColumns()

	if value == nil {
		v.Value = nil
		return nil
	}

	switch t.ValueColumn() {
	case ColumnText:
		s := coerceString(value)
		v.ValueText = &s
	case ColumnNumber:
		n, err := coerceInt(value)
		if err != nil {
			return fmt.Errorf("coerce %q to integer: %w", fmt.Sprint(value), err)
		}
		v.ValueNumber = &n
	case ColumnDecimal:
		f, err := coerceFloat(value)
		if err != nil {
			return fmt.Errorf("coerce %q to decimal: %w", fmt.Sprint(value), err)
		}
		v.ValueDecimal = &f
	case ColumnDate:
		tm, err := coerceTime(value)
		if err != nil {
			return fmt.Errorf("coerce %q to date: %w", fmt.Sprint(value), err)
		}
		d := time.Date(tm.Year(), tm.Month(), tm.Day(), 0, 0, 0, 0, time.UTC)
		v.ValueDate = &d
	case ColumnDatetime:
		tm, err := coerceTime(value)
		if err != nil {
			return fmt.Errorf("coerce %q to datetime: %w", fmt.Sprint(value), err)
		}
		v.ValueDatetime = &tm
	case ColumnTime:
		s, err := coerceClock(value)
		if err != nil {
			return fmt.Errorf("coerce %q to time: %w", fmt.Sprint(value), err)
		}
		v.ValueTime = &s
	case ColumnBoolean:
		b, err := coerceBool(value)
		if err != nil {
			return fmt.Errorf("coerce %q to boolean: %w", fmt.Sprint(value), err)
		}
		v.ValueBoolean = &b
	case ColumnJSON:
		raw, err := coerceJSON(value)
		if err != nil {
			return fmt.Errorf("encode value as json: %w", err)
		}
		v.ValueJSON = raw
	}

	legacy := encodeLegacy(value)
	v.Value = &legacy
	return nil
}

// TypedValue returns the value from the column the attribute type
// designates, falling back to the legacy column for pre-typed rows. A nil
// return means no value is present.
func (v *AttributeValue) TypedValue(t AttributeType) interface{} {
	switch t.ValueColumn() {
	case ColumnText:
		if v.ValueText != nil {
			return *v.ValueText
		}
	case ColumnNumber:
		if v.ValueNumber != nil {
			return *v.ValueNumber
		}
	case ColumnDecimal:
		if v.ValueDecimal != nil {
			return *v.ValueDecimal
		}
	case ColumnDate:
		if v.ValueDate != nil {
			return *v.ValueDate
		}
	case ColumnDatetime:
		if v.ValueDatetime != nil {
			return *v.ValueDatetime
		}
	case ColumnTime:
		if v.ValueTime != nil {
			return *v.ValueTime
		}
	case ColumnBoolean:
		if v.ValueBoolean != nil {
			return *v.ValueBoolean
		}
	case ColumnJSON:
		if len(v.ValueJSON) > 0 {
			var decoded interface{}
			if err := json.Unmarshal(v.ValueJSON, &decoded); err == nil {
				return decoded
			}
		}
	}

	if v.Value != nil {
		return *v.Value
	}
	return nil
}

// TypedColumnsSet returns the names of the typed columns currently holding a
// value. A well-formed row has at most one entry.
func (v *AttributeValue) TypedColumnsSet() []string {
	var set []string
	if v.ValueText != nil {
		set = append(set, ColumnText)
	}
	if v.ValueNumber != nil {
		set = append(set, ColumnNumber)
	}
	if v.ValueDecimal != nil {
		set = append(set, ColumnDecimal)
	}
	if v.ValueDate != nil {
		set = append(set, ColumnDate)
	}
	if v.ValueDatetime != nil {
		set = append(set, ColumnDatetime)
	}
	if v.ValueTime != nil {
		set = append(set, ColumnTime)
	}
	if v.ValueBoolean != nil {
		set = append(set, ColumnBoolean)
	}
	if len(v.ValueJSON) > 0 {
		set = append(set, ColumnJSON)
	}
	return set
}

func (v *AttributeValue) clearTypedColumns() {
	v.ValueText = nil
	v.ValueNumber = nil
	v.ValueDecimal = nil
	v.ValueDate = nil
	v.ValueDatetime = nil
	v.ValueTime = nil
	v.ValueBoolean = nil
	v.ValueJSON = nil
}

// Coercion helpers

func coerceString(value interface{}) string {
	switch s := value.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return fmt.Sprint(value)
}

func coerceInt(value interface{}) (int64, error) {
	switch n := value.(type) {
	case int:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case float32:
		return int64(n), nil
	case float64:
		return int64(n), nil
	case json.Number:
		return n.Int64()
	case string:
		return strconv.ParseInt(strings.TrimSpace(n), 10, 64)
	}
	return 0, fmt.Errorf("unsupported integer source %T", value)
}

func coerceFloat(value interface{}) (float64, error) {
	switch f := value.(type) {
	case float32:
		return float64(f), nil
	case float64:
		return f, nil
	case int:
		return float64(f), nil
	case int64:
		return float64(f), nil
	case json.Number:
		return f.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(f), 64)
	}
	return 0, fmt.Errorf("unsupported decimal source %T", value)
}

func coerceBool(value interface{}) (bool, error) {
	switch b := value.(type) {
	case bool:
		return b, nil
	case int:
		return b != 0, nil
	case int64:
		return b != 0, nil
	case float64:
		return b != 0, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(b))
	}
	return false, fmt.Errorf("unsupported boolean source %T", value)
}

func coerceTime(value interface{}) (time.Time, error) {
	switch t := value.(type) {
	case time.Time:
		return t, nil
	case *time.Time:
		return *t, nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range []string{time.RFC3339, datetimeLayout, dateLayout} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, nil
			}
		}
		return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
	}
	return time.Time{}, fmt.Errorf("unsupported time source %T", value)
}

func coerceClock(value interface{}) (string, error) {
	switch t := value.(type) {
	case time.Time:
		return t.Format(timeLayout), nil
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range []string{timeLayout, "15:04"} {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.Format(timeLayout), nil
			}
		}
		return "", fmt.Errorf("unrecognized clock format %q", s)
	}
	return "", fmt.Errorf("unsupported clock source %T", value)
}

func coerceJSON(value interface{}) (datatypes.JSON, error) {
	switch j := value.(type) {
	case datatypes.JSON:
		return j, nil
	case json.RawMessage:
		return datatypes.JSON(j), nil
	case []byte:
		if json.Valid(j) {
			return datatypes.JSON(j), nil
		}
	case string:
		// A string that already is valid JSON is stored as-is, mirroring
		// the decode-on-write behavior of the legacy implementation.
		if json.Valid([]byte(j)) {
			return datatypes.JSON(j), nil
		}
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func encodeLegacy(value interface{}) string {
	switch value.(type) {
	case string, []byte, bool, int, int32, int64, uint, float32, float64, json.Number:
		return coerceString(value)
	}
	if raw, err := json.Marshal(value); err == nil {
		return string(raw)
	}
	return fmt.Sprint(value)
}
