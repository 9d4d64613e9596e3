// internal/validation/rules.go
package validation

import (
	"github.com/fiachehr/go-eav/internal/models"
)

// Rule kinds an attribute definition may declare. The string forms are the
// persisted representation inside attributes.validations.
const (
	RuleRequired         = "required"
	RuleMinLength        = "min_length"
	RuleMaxLength        = "max_length"
	RuleEmail            = "email"
	RuleURL              = "url"
	RuleSlug             = "slug"
	RulePassword         = "password"
	RuleRegex            = "regex"
	RuleMin              = "min"
	RuleMax              = "max"
	RuleInteger          = "integer"
	RuleDecimal          = "decimal"
	RuleImage            = "image"
	RuleVideo            = "video"
	RuleAudio            = "audio"
	RuleDocument         = "document"
	RuleMaxFileSize      = "max_file_size"
	RuleAllowedMimeTypes = "allowed_mime_types"
	RuleJSON             = "json"
	RuleArray            = "array"
	RuleRichText         = "rich_text"
	RuleMarkdown         = "markdown"
	RuleDateFormat       = "date_format"
	RuleAfter            = "after"
	RuleBefore           = "before"
)

// parameterized lists the rule kinds that carry a parameter.
var parameterized = map[string]bool{
	RuleMinLength:        true,
	RuleMaxLength:        true,
	RuleRegex:            true,
	RuleMin:              true,
	RuleMax:              true,
	RuleMaxFileSize:      true,
	RuleAllowedMimeTypes: true,
	RuleDateFormat:       true,
	RuleAfter:            true,
	RuleBefore:           true,
}

// RequiresParameter reports whether a rule kind needs a parameter to be
// meaningful.
func RequiresParameter(kind string) bool {
	return parameterized[kind]
}

// DefaultRulesFor returns the implicit shape rules every value of the given
// attribute type must satisfy, before any declared rules run.
func DefaultRulesFor(t models.AttributeType) []models.ValidationRule {
	switch t {
	case models.TypeNumber:
		return []models.ValidationRule{{Type: RuleInteger}}
	case models.TypeDecimal:
		return []models.ValidationRule{{Type: RuleDecimal}}
	case models.TypeTime:
		return []models.ValidationRule{{Type: RuleDateFormat, Parameter: "15:04:05"}}
	}
	return nil
}

// RulesFor merges the implicit type rules with the rules declared on the
// attribute, declared rules last.
func RulesFor(attr *models.Attribute) []models.ValidationRule {
	defaults := DefaultRulesFor(attr.Type)
	if len(attr.Validations) == 0 {
		return defaults
	}
	return append(defaults, attr.Validations...)
}

// IsRequired reports whether the attribute declares the required rule.
func IsRequired(attr *models.Attribute) bool {
	for _, rule := range attr.Validations {
		if rule.Type == RuleRequired {
			return true
		}
	}
	return false
}
