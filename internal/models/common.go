// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSONList is an ordered list of arbitrary JSON values stored in a json
// column (used for enumerated allowed values).
type JSONList []interface{}

func (l JSONList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

func (l *JSONList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		bytes = []byte(s)
	}

	return json.Unmarshal(bytes, l)
}

// ValidationRule is one entry of an attribute's declared validation list.
// The stored form is either a bare rule name ("required") or an object with
// a parameter ({"type": "min_length", "parameter": 5}).
type ValidationRule struct {
	Type      string      `json:"type"`
	Parameter interface{} `json:"parameter,omitempty"`
}

func (r *ValidationRule) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		r.Type = name
		r.Parameter = nil
		return nil
	}

	type alias ValidationRule
	var obj alias
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*r = ValidationRule(obj)
	return nil
}

// ValidationRules is the json-stored list of validation rules.
type ValidationRules []ValidationRule

func (v ValidationRules) Value() (driver.Value, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func (v *ValidationRules) Scan(value interface{}) error {
	if value == nil {
		*v = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		s, ok := value.(string)
		if !ok {
			return nil
		}
		bytes = []byte(s)
	}

	return json.Unmarshal(bytes, v)
}

// Attributable identifies an entity that can carry attribute values: a
// storage discriminator plus a numeric id. Concrete entity types declare
// their discriminator explicitly instead of it being derived via reflection.
type Attributable interface {
	AttributableType() string
	AttributableID() uint
}

// EntityRef is a plain (type, id) pair satisfying Attributable, for callers
// that reference entities without loading them.
type EntityRef struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

func (r EntityRef) AttributableType() string { return r.Type }
func (r EntityRef) AttributableID() uint     { return r.ID }
