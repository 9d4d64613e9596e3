// internal/validation/validator.go
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/fiachehr/go-eav/internal/models"
)

// fieldPrefix namespaces attribute field names in validation errors so they
// cannot collide with the owning form's own fields.
const fieldPrefix = "eav_attributes."

var (
	tagValidator = validator.New()
	slugPattern  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
)

// FieldError describes one failed rule on one attribute value.
type FieldError struct {
	Field     string      `json:"field"`
	Rule      string      `json:"rule"`
	Parameter interface{} `json:"parameter,omitempty"`
	Message   string      `json:"message"`
}

// ValidationFailedError aggregates every rule failure of a validation run.
type ValidationFailedError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationFailedError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation failed: %s", e.Errors[0].Message)
	}
	return fmt.Sprintf("validation failed: %d rules violated", len(e.Errors))
}

// AsValidationFailed unwraps err into a ValidationFailedError, or nil.
func AsValidationFailed(err error) *ValidationFailedError {
	var vErr *ValidationFailedError
	if errors.As(err, &vErr) {
		return vErr
	}
	return nil
}

// ValidateValue checks one value against the attribute's implicit type rules,
// enumerated values list, and declared rules. A nil value only fails when the
// attribute is required.
func ValidateValue(attr *models.Attribute, value interface{}) error {
	errs := collectErrors(attr, value)
	if len(errs) == 0 {
		return nil
	}
	return &ValidationFailedError{Errors: errs}
}

// ValidateMap checks a slug-keyed value map against a set of attribute
// definitions, collecting every failure. Attributes declared required must be
// present in the map with a non-empty value.
func ValidateMap(attrs []models.Attribute, values map[string]interface{}) error {
	var errs []FieldError
	for i := range attrs {
		attr := &attrs[i]
		value, present := values[attr.Slug]
		if !present {
			if IsRequired(attr) {
				errs = append(errs, FieldError{
					Field:   fieldPrefix + attr.Slug,
					Rule:    RuleRequired,
					Message: fmt.Sprintf("%s is required", attr.Title),
				})
			}
			continue
		}
		errs = append(errs, collectErrors(attr, value)...)
	}
	if len(errs) == 0 {
		return nil
	}
	return &ValidationFailedError{Errors: errs}
}

func collectErrors(attr *models.Attribute, value interface{}) []FieldError {
	field := fieldPrefix + attr.Slug
	var errs []FieldError

	fail := func(rule string, parameter interface{}, format string, args ...interface{}) {
		errs = append(errs, FieldError{
			Field:     field,
			Rule:      rule,
			Parameter: parameter,
			Message:   fmt.Sprintf(format, args...),
		})
	}

	if isEmpty(value) {
		if IsRequired(attr) {
			fail(RuleRequired, nil, "%s is required", attr.Title)
		}
		return errs
	}

	if attr.RequiresValues() && !attr.Type.IsBoolean() {
		if err := checkMembership(attr, value); err != nil {
			fail("in", nil, "%s: %v", attr.Title, err)
		}
	}

	for _, rule := range RulesFor(attr) {
		if rule.Type == RuleRequired {
			continue
		}
		if err := applyRule(rule, value); err != nil {
			fail(rule.Type, rule.Parameter, "%s: %v", attr.Title, err)
		}
	}

	return errs
}

// checkMembership verifies the value (or each element of a multi value) is
// one of the attribute's enumerated allowed values.
func checkMembership(attr *models.Attribute, value interface{}) error {
	allowed := make(map[string]bool, len(attr.Values))
	for _, v := range attr.Values {
		allowed[fmt.Sprint(v)] = true
	}

	if attr.Type == models.TypeMultiple {
		items, ok := toSlice(value)
		if !ok {
			return fmt.Errorf("expected a list of values")
		}
		for _, item := range items {
			if !allowed[fmt.Sprint(item)] {
				return fmt.Errorf("value %q is not in the allowed list", fmt.Sprint(item))
			}
		}
		return nil
	}

	if !allowed[fmt.Sprint(value)] {
		return fmt.Errorf("value %q is not in the allowed list", fmt.Sprint(value))
	}
	return nil
}

func applyRule(rule models.ValidationRule, value interface{}) error {
	switch rule.Type {
	case RuleMinLength:
		n, err := paramInt(rule.Parameter)
		if err != nil {
			return err
		}
		if utf8.RuneCountInString(asString(value)) < n {
			return fmt.Errorf("must be at least %d characters", n)
		}
	case RuleMaxLength:
		n, err := paramInt(rule.Parameter)
		if err != nil {
			return err
		}
		if utf8.RuneCountInString(asString(value)) > n {
			return fmt.Errorf("must be at most %d characters", n)
		}
	case RuleEmail:
		if tagValidator.Var(asString(value), "email") != nil {
			return fmt.Errorf("must be a valid email address")
		}
	case RuleURL:
		if tagValidator.Var(asString(value), "url") != nil {
			return fmt.Errorf("must be a valid URL")
		}
	case RuleSlug:
		if !slugPattern.MatchString(asString(value)) {
			return fmt.Errorf("must be a lowercase hyphenated slug")
		}
	case RulePassword:
		return checkPassword(asString(value))
	case RuleRegex:
		pattern := asString(rule.Parameter)
		re, err := regexp.Compile(pattern)
		if err != nil {
			return fmt.Errorf("invalid pattern %q", pattern)
		}
		if !re.MatchString(asString(value)) {
			return fmt.Errorf("does not match the required pattern")
		}
	case RuleMin:
		limit, err := paramFloat(rule.Parameter)
		if err != nil {
			return err
		}
		n, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("must be numeric")
		}
		if n < limit {
			return fmt.Errorf("must be at least %v", rule.Parameter)
		}
	case RuleMax:
		limit, err := paramFloat(rule.Parameter)
		if err != nil {
			return err
		}
		n, ok := toFloat(value)
		if !ok {
			return fmt.Errorf("must be numeric")
		}
		if n > limit {
			return fmt.Errorf("must be at most %v", rule.Parameter)
		}
	case RuleInteger:
		if !isInteger(value) {
			return fmt.Errorf("must be an integer")
		}
	case RuleDecimal:
		if _, ok := toFloat(value); !ok {
			return fmt.Errorf("must be a number")
		}
	case RuleJSON:
		if !json.Valid([]byte(asString(value))) {
			return fmt.Errorf("must be valid JSON")
		}
	case RuleArray:
		if _, ok := toSlice(value); !ok {
			return fmt.Errorf("must be a list")
		}
	case RuleRichText, RuleMarkdown:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("must be text")
		}
	case RuleDateFormat:
		layout := asString(rule.Parameter)
		if _, err := time.Parse(layout, asString(value)); err != nil {
			return fmt.Errorf("must match the format %s", layout)
		}
	case RuleAfter:
		return checkDateOrder(value, rule.Parameter, true)
	case RuleBefore:
		return checkDateOrder(value, rule.Parameter, false)
	case RuleImage:
		return checkMimePrefix(value, "image/")
	case RuleVideo:
		return checkMimePrefix(value, "video/")
	case RuleAudio:
		return checkMimePrefix(value, "audio/")
	case RuleDocument:
		return checkDocumentMime(value)
	case RuleMaxFileSize:
		return checkFileSize(value, rule.Parameter)
	case RuleAllowedMimeTypes:
		return checkAllowedMimes(value, rule.Parameter)
	default:
		logrus.WithField("rule", rule.Type).Debug("Skipping unrecognized validation rule")
	}
	return nil
}

// checkPassword enforces a minimal strength floor: at least 8 characters
// containing both a letter and a digit.
func checkPassword(s string) error {
	if utf8.RuneCountInString(s) < 8 {
		return fmt.Errorf("must be at least 8 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("must contain both letters and digits")
	}
	return nil
}

func checkDateOrder(value, parameter interface{}, after bool) error {
	v, err := parseAnyDate(asString(value))
	if err != nil {
		return fmt.Errorf("must be a date")
	}
	bound, err := parseAnyDate(asString(parameter))
	if err != nil {
		return fmt.Errorf("invalid date bound %q", asString(parameter))
	}
	if after && !v.After(bound) {
		return fmt.Errorf("must be after %s", asString(parameter))
	}
	if !after && !v.Before(bound) {
		return fmt.Errorf("must be before %s", asString(parameter))
	}
	return nil
}

func parseAnyDate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// File rule helpers. File values are metadata maps produced by the upload
// flow, carrying at least mime_type and size.

func fileMeta(value interface{}) (map[string]interface{}, error) {
	meta, ok := value.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("must be an uploaded file")
	}
	return meta, nil
}

func checkMimePrefix(value interface{}, prefix string) error {
	meta, err := fileMeta(value)
	if err != nil {
		return err
	}
	mime, _ := meta["mime_type"].(string)
	if !strings.HasPrefix(mime, prefix) {
		return fmt.Errorf("must be a %s file", strings.TrimSuffix(prefix, "/"))
	}
	return nil
}

var documentMimes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"application/vnd.ms-excel": true,
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": true,
	"text/plain": true,
	"text/csv":   true,
}

func checkDocumentMime(value interface{}) error {
	meta, err := fileMeta(value)
	if err != nil {
		return err
	}
	mime, _ := meta["mime_type"].(string)
	if !documentMimes[mime] {
		return fmt.Errorf("must be a document file")
	}
	return nil
}

// checkFileSize compares the file's byte size against a limit given in
// kilobytes.
func checkFileSize(value, parameter interface{}) error {
	meta, err := fileMeta(value)
	if err != nil {
		return err
	}
	limitKB, err := paramFloat(parameter)
	if err != nil {
		return err
	}
	size, ok := toFloat(meta["size"])
	if !ok {
		return fmt.Errorf("file size unknown")
	}
	if size > limitKB*1024 {
		return fmt.Errorf("must be at most %v KB", parameter)
	}
	return nil
}

func checkAllowedMimes(value, parameter interface{}) error {
	meta, err := fileMeta(value)
	if err != nil {
		return err
	}
	mime, _ := meta["mime_type"].(string)

	allowed, ok := toSlice(parameter)
	if !ok {
		return fmt.Errorf("invalid allowed mime list")
	}
	for _, item := range allowed {
		if fmt.Sprint(item) == mime {
			return nil
		}
	}
	return fmt.Errorf("file type %s is not allowed", mime)
}

// Coercion helpers shared by the rule checks.

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Map {
		return rv.Len() == 0
	}
	return false
}

func asString(value interface{}) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}

func toFloat(value interface{}) (float64, bool) {
	switch n := value.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

func isInteger(value interface{}) bool {
	switch n := value.(type) {
	case int, int32, int64, uint:
		return true
	case float64:
		return n == float64(int64(n))
	case float32:
		return float64(n) == float64(int64(n))
	case json.Number:
		_, err := n.Int64()
		return err == nil
	case string:
		_, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return err == nil
	}
	return false
}

func toSlice(value interface{}) ([]interface{}, bool) {
	if items, ok := value.([]interface{}); ok {
		return items, true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice {
		return nil, false
	}
	items := make([]interface{}, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func paramInt(parameter interface{}) (int, error) {
	f, err := paramFloat(parameter)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

func paramFloat(parameter interface{}) (float64, error) {
	f, ok := toFloat(parameter)
	if !ok {
		return 0, fmt.Errorf("rule parameter %v is not numeric", parameter)
	}
	return f, nil
}
