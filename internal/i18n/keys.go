// internal/i18n/keys.go
package i18n

// Translation keys constants
const (
	// Common
	KeySuccess = "success"
	KeyError   = "error"

	// Authentication
	KeyAuthRequired     = "auth.required"
	KeyAuthInvalidToken = "auth.invalid_token"
	KeyAuthTokenExpired = "auth.token_expired"
	KeyAdminAccessDenied = "auth.access_denied"

	// Attributes
	KeyAttributeCreated       = "attribute.created"
	KeyAttributeUpdated       = "attribute.updated"
	KeyAttributeDeleted       = "attribute.deleted"
	KeyAttributeNotFound      = "attribute.not_found"
	KeyAttributeDuplicateSlug = "attribute.duplicate_slug"
	KeyAttributeTypeLocked    = "attribute.type_locked"

	// Attribute groups
	KeyGroupCreated  = "attribute_group.created"
	KeyGroupUpdated  = "attribute_group.updated"
	KeyGroupDeleted  = "attribute_group.deleted"
	KeyGroupNotFound = "attribute_group.not_found"

	// Values
	KeyValueSaved   = "value.saved"
	KeyValueRemoved = "value.removed"
	KeyValueCleared = "value.cleared"

	// Translations
	KeyTranslationSaved   = "translation.saved"
	KeyTranslationDeleted = "translation.deleted"

	// Validation
	KeyValidationRequired = "validation.required"
	KeyValidationInvalid  = "validation.invalid"
	KeyValidationFailed   = "validation.failed"

	// File Upload
	KeyFileUploadSuccess = "file.upload_success"
	KeyFileUploadFailed  = "file.upload_failed"
	KeyFileInvalidType   = "file.invalid_type"
	KeyFileTooLarge      = "file.too_large"

	// Search
	KeySearchNoResults    = "search.no_results"
	KeySearchResultsFound = "search.results_found"
)
