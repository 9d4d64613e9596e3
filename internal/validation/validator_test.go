// internal/validation/validator_test.go
package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fiachehr/go-eav/internal/models"
)

func textAttr(slug string, rules ...models.ValidationRule) *models.Attribute {
	return &models.Attribute{
		Title:       slug,
		Slug:        slug,
		Type:        models.TypeText,
		Validations: models.ValidationRules(rules),
	}
}

func TestValidateValueRequired(t *testing.T) {
	attr := textAttr("name", models.ValidationRule{Type: RuleRequired})

	err := ValidateValue(attr, "")
	require.Error(t, err)

	vErr := AsValidationFailed(err)
	require.NotNil(t, vErr)
	require.Len(t, vErr.Errors, 1)
	assert.Equal(t, "eav_attributes.name", vErr.Errors[0].Field)
	assert.Equal(t, RuleRequired, vErr.Errors[0].Rule)

	assert.NoError(t, ValidateValue(attr, "Alice"))
}

func TestValidateValueOptionalEmptySkipsRules(t *testing.T) {
	attr := textAttr("bio", models.ValidationRule{Type: RuleMinLength, Parameter: 10})

	// Empty optional values pass without running the declared rules.
	assert.NoError(t, ValidateValue(attr, ""))
	assert.NoError(t, ValidateValue(attr, nil))

	assert.Error(t, ValidateValue(attr, "short"))
}

func TestValidateValueLengthRules(t *testing.T) {
	attr := textAttr("code",
		models.ValidationRule{Type: RuleMinLength, Parameter: 3},
		models.ValidationRule{Type: RuleMaxLength, Parameter: 5},
	)

	assert.Error(t, ValidateValue(attr, "ab"))
	assert.NoError(t, ValidateValue(attr, "abcd"))
	assert.Error(t, ValidateValue(attr, "abcdef"))
}

func TestValidateValueEmailAndURL(t *testing.T) {
	email := textAttr("contact", models.ValidationRule{Type: RuleEmail})
	assert.NoError(t, ValidateValue(email, "user@example.com"))
	assert.Error(t, ValidateValue(email, "not-an-email"))

	url := textAttr("homepage", models.ValidationRule{Type: RuleURL})
	assert.NoError(t, ValidateValue(url, "https://example.com/page"))
	assert.Error(t, ValidateValue(url, "example dot com"))
}

func TestValidateValueSlugRule(t *testing.T) {
	attr := textAttr("handle", models.ValidationRule{Type: RuleSlug})

	assert.NoError(t, ValidateValue(attr, "my-handle-2"))
	assert.Error(t, ValidateValue(attr, "My Handle"))
	assert.Error(t, ValidateValue(attr, "-leading"))
}

func TestValidateValuePasswordRule(t *testing.T) {
	attr := textAttr("secret", models.ValidationRule{Type: RulePassword})

	assert.Error(t, ValidateValue(attr, "short1"))
	assert.Error(t, ValidateValue(attr, "onlyletters"))
	assert.Error(t, ValidateValue(attr, "12345678"))
	assert.NoError(t, ValidateValue(attr, "letters123"))
}

func TestValidateValueRegexRule(t *testing.T) {
	attr := textAttr("sku", models.ValidationRule{Type: RuleRegex, Parameter: `^SKU-\d{4}$`})

	assert.NoError(t, ValidateValue(attr, "SKU-1234"))
	assert.Error(t, ValidateValue(attr, "SKU-12"))
}

func TestValidateValueNumericBounds(t *testing.T) {
	attr := &models.Attribute{
		Title: "quantity",
		Slug:  "quantity",
		Type:  models.TypeNumber,
		Validations: models.ValidationRules{
			{Type: RuleMin, Parameter: 1},
			{Type: RuleMax, Parameter: 100},
		},
	}

	assert.NoError(t, ValidateValue(attr, 50))
	assert.Error(t, ValidateValue(attr, 0))
	assert.Error(t, ValidateValue(attr, 101))
}

func TestImplicitTypeRules(t *testing.T) {
	number := &models.Attribute{Title: "stock", Slug: "stock", Type: models.TypeNumber}
	assert.NoError(t, ValidateValue(number, "42"))
	assert.Error(t, ValidateValue(number, "4.5"))
	assert.Error(t, ValidateValue(number, "many"))

	decimal := &models.Attribute{Title: "price", Slug: "price", Type: models.TypeDecimal}
	assert.NoError(t, ValidateValue(decimal, "99.99"))
	assert.Error(t, ValidateValue(decimal, "cheap"))

	clock := &models.Attribute{Title: "opens", Slug: "opens", Type: models.TypeTime}
	assert.NoError(t, ValidateValue(clock, "09:30:00"))
	assert.Error(t, ValidateValue(clock, "9:30am"))
}

func TestValidateValueMembership(t *testing.T) {
	attr := &models.Attribute{
		Title:  "size",
		Slug:   "size",
		Type:   models.TypeSelect,
		Values: models.JSONList{"S", "M", "L"},
	}

	assert.NoError(t, ValidateValue(attr, "M"))
	assert.Error(t, ValidateValue(attr, "XXL"))
}

func TestValidateValueMultipleMembership(t *testing.T) {
	attr := &models.Attribute{
		Title:  "tags",
		Slug:   "tags",
		Type:   models.TypeMultiple,
		Values: models.JSONList{"new", "sale", "featured"},
	}

	assert.NoError(t, ValidateValue(attr, []interface{}{"new", "sale"}))
	assert.Error(t, ValidateValue(attr, []interface{}{"new", "unknown"}))
	assert.Error(t, ValidateValue(attr, "not-a-list"))
}

func TestValidateValueDateOrder(t *testing.T) {
	attr := textAttr("published",
		models.ValidationRule{Type: RuleAfter, Parameter: "2024-01-01"},
		models.ValidationRule{Type: RuleBefore, Parameter: "2025-01-01"},
	)

	assert.NoError(t, ValidateValue(attr, "2024-06-15"))
	assert.Error(t, ValidateValue(attr, "2023-12-31"))
	assert.Error(t, ValidateValue(attr, "2025-06-01"))
}

func TestValidateValueFileRules(t *testing.T) {
	attr := &models.Attribute{
		Title: "photo",
		Slug:  "photo",
		Type:  models.TypeFile,
		Validations: models.ValidationRules{
			{Type: RuleImage},
			{Type: RuleMaxFileSize, Parameter: 100},
		},
	}

	ok := map[string]interface{}{"mime_type": "image/png", "size": 50 * 1024}
	assert.NoError(t, ValidateValue(attr, ok))

	wrongType := map[string]interface{}{"mime_type": "application/pdf", "size": 10}
	assert.Error(t, ValidateValue(attr, wrongType))

	// The limit parameter is kilobytes, the stored size is bytes.
	tooLarge := map[string]interface{}{"mime_type": "image/png", "size": 200 * 1024}
	assert.Error(t, ValidateValue(attr, tooLarge))

	assert.Error(t, ValidateValue(attr, "not-a-file"))
}

func TestValidateValueAllowedMimeTypes(t *testing.T) {
	attr := &models.Attribute{
		Title: "manual",
		Slug:  "manual",
		Type:  models.TypeFile,
		Validations: models.ValidationRules{
			{Type: RuleAllowedMimeTypes, Parameter: []interface{}{"application/pdf", "text/plain"}},
		},
	}

	assert.NoError(t, ValidateValue(attr, map[string]interface{}{"mime_type": "application/pdf", "size": 1}))
	assert.Error(t, ValidateValue(attr, map[string]interface{}{"mime_type": "image/png", "size": 1}))
}

func TestValidateMap(t *testing.T) {
	attrs := []models.Attribute{
		*textAttr("name", models.ValidationRule{Type: RuleRequired}),
		*textAttr("nickname"),
	}

	err := ValidateMap(attrs, map[string]interface{}{"nickname": "Al"})
	require.Error(t, err)
	vErr := AsValidationFailed(err)
	require.NotNil(t, vErr)
	assert.Equal(t, "eav_attributes.name", vErr.Errors[0].Field)

	assert.NoError(t, ValidateMap(attrs, map[string]interface{}{"name": "Alice"}))
}

func TestRulesForMergesDefaults(t *testing.T) {
	attr := &models.Attribute{
		Type: models.TypeNumber,
		Validations: models.ValidationRules{
			{Type: RuleMax, Parameter: 10},
		},
	}

	rules := RulesFor(attr)
	require.Len(t, rules, 2)
	assert.Equal(t, RuleInteger, rules[0].Type)
	assert.Equal(t, RuleMax, rules[1].Type)
}

func TestRequiresParameter(t *testing.T) {
	assert.True(t, RequiresParameter(RuleMinLength))
	assert.True(t, RequiresParameter(RuleDateFormat))
	assert.False(t, RequiresParameter(RuleRequired))
	assert.False(t, RequiresParameter(RuleEmail))
}

func TestUnknownRuleKindIgnored(t *testing.T) {
	attr := textAttr("bio", models.ValidationRule{Type: "telepathy"})

	// Rule kinds written by a newer catalog version must not fail values.
	assert.NoError(t, ValidateValue(attr, "hello"))
}
