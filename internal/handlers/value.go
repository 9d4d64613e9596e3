// internal/handlers/value.go
package handlers

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/fiachehr/go-eav/internal/i18n"
	"github.com/fiachehr/go-eav/internal/models"
	"github.com/fiachehr/go-eav/internal/services"
	"github.com/fiachehr/go-eav/internal/utils"
	"github.com/fiachehr/go-eav/internal/validation"
)

type ValueHandler struct {
	valueService *services.ValueService
	fileService  *services.FileService
	resolver     *services.AttributeResolver
}

func NewValueHandler(valueService *services.ValueService, fileService *services.FileService, resolver *services.AttributeResolver) *ValueHandler {
	return &ValueHandler{
		valueService: valueService,
		fileService:  fileService,
		resolver:     resolver,
	}
}

// entityFromPath builds the entity reference from :entity_type/:entity_id
// path segments.
func entityFromPath(c *gin.Context) (models.EntityRef, bool) {
	entityType := c.Param("entity_type")
	idStr := c.Param("entity_id")

	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || entityType == "" || id == 0 {
		utils.BadRequestResponse(c, "Invalid entity reference", nil)
		return models.EntityRef{}, false
	}
	return models.EntityRef{Type: entityType, ID: uint(id)}, true
}

// localeFromQuery reads the optional locale query parameter; absent means
// the locale-less row.
func localeFromQuery(c *gin.Context) *string {
	if locale := c.Query("locale"); locale != "" {
		return &locale
	}
	return nil
}

// GET /entities/:entity_type/:entity_id/attributes
func (h *ValueHandler) GetValues(c *gin.Context) {
	entity, ok := entityFromPath(c)
	if !ok {
		return
	}

	opts := services.GetAllOptions{
		KeyBy:         c.Query("key_by"),
		GroupByLocale: c.Query("group_by_locale") == "true",
	}

	values, err := h.valueService.GetAll(entity, localeFromQuery(c), opts)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"attributes": values})
}

// GET /entities/:entity_type/:entity_id/attributes/:slug
func (h *ValueHandler) GetValue(c *gin.Context) {
	entity, ok := entityFromPath(c)
	if !ok {
		return
	}

	value, err := h.valueService.Get(entity, c.Param("slug"), localeFromQuery(c))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"slug":  c.Param("slug"),
		"value": value,
	})
}

type setValueRequest struct {
	Value    interface{} `json:"value"`
	Validate bool        `json:"validate"`
}

// PUT /entities/:entity_type/:entity_id/attributes/:slug
func (h *ValueHandler) SetValue(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	entity, ok := entityFromPath(c)
	if !ok {
		return
	}

	var req setValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	slug := c.Param("slug")
	locale := localeFromQuery(c)

	var err error
	if req.Validate {
		err = h.valueService.SetValidated(entity, slug, req.Value, locale)
	} else {
		err = h.valueService.Set(entity, slug, req.Value, locale)
	}

	if err != nil {
		var vErr *validation.ValidationFailedError
		if errors.As(err, &vErr) {
			utils.ErrorResponse(c, 422, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationFailed), vErr.Errors)
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValueSaved),
	})
}

type setManyRequest struct {
	Values map[string]interface{} `json:"values" validate:"required"`
}

// PUT /entities/:entity_type/:entity_id/attributes
func (h *ValueHandler) SetValues(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	entity, ok := entityFromPath(c)
	if !ok {
		return
	}

	var req setManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.valueService.SetMany(entity, req.Values, localeFromQuery(c)); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValueSaved),
	})
}

// POST /entities/:entity_type/:entity_id/attributes/sync
func (h *ValueHandler) SyncValues(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	entity, ok := entityFromPath(c)
	if !ok {
		return
	}

	var req setManyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if err := h.valueService.Sync(entity, req.Values, localeFromQuery(c)); err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValueSaved),
	})
}

// DELETE /entities/:entity_type/:entity_id/attributes/:slug
func (h *ValueHandler) RemoveValue(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	entity, ok := entityFromPath(c)
	if !ok {
		return
	}

	if err := h.valueService.Remove(entity, c.Param("slug"), localeFromQuery(c)); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValueRemoved),
	})
}

// DELETE /entities/:entity_type/:entity_id/attributes
func (h *ValueHandler) ClearValues(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	entity, ok := entityFromPath(c)
	if !ok {
		return
	}

	if err := h.valueService.Clear(entity); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyValueCleared),
	})
}

// POST /entities/:entity_type/:entity_id/attributes/:slug/upload
func (h *ValueHandler) UploadFileValue(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	entity, ok := entityFromPath(c)
	if !ok {
		return
	}

	slug := c.Param("slug")
	attr, err := h.resolver.BySlug(slug)
	if err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			utils.NotFoundResponse(c, "attribute")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyFileUploadFailed), err.Error())
		return
	}
	defer file.Close()

	if attributeRequiresImage(attr) {
		if err := h.fileService.ValidateImage(file); err != nil {
			utils.BadRequestResponse(c, err.Error(), nil)
			return
		}
	}

	locale := localeFromQuery(c)
	prior, err := h.valueService.Get(entity, attr, locale)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	meta, err := h.fileService.UploadForAttribute(attr, file, header, h.fileService.DefaultUploadOptions())
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	if err := h.valueService.SetValidated(entity, slug, meta.AsValue(), locale); err != nil {
		var vErr *validation.ValidationFailedError
		if errors.As(err, &vErr) {
			utils.ErrorResponse(c, 422, "VALIDATION_ERROR", i18n.T(lang, i18n.KeyValidationFailed), vErr.Errors)
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	// Replacing a stored file leaves the old object orphaned; drop it.
	if old, ok := prior.(map[string]interface{}); ok {
		if oldKey, ok := old["key"].(string); ok && oldKey != "" && oldKey != meta.Key {
			if err := h.fileService.DeleteFile(oldKey); err != nil {
				logrus.WithError(err).WithField("key", oldKey).Warn("Failed to delete replaced file")
			}
		}
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyFileUploadSuccess),
		"file":    meta,
	})
}

// presignTTL bounds how long a download link stays usable.
const presignTTL = 15 * time.Minute

// GET /entities/:entity_type/:entity_id/attributes/:slug/download
func (h *ValueHandler) DownloadFileValue(c *gin.Context) {
	entity, ok := entityFromPath(c)
	if !ok {
		return
	}

	value, err := h.valueService.Get(entity, c.Param("slug"), localeFromQuery(c))
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	meta, ok := value.(map[string]interface{})
	if !ok {
		utils.NotFoundResponse(c, "file")
		return
	}

	url, _ := meta["url"].(string)
	if key, ok := meta["key"].(string); ok && key != "" {
		// Private buckets need a signed link; local storage serves the
		// stored URL as is.
		if signed, err := h.fileService.GeneratePresignedURL(key, presignTTL); err == nil {
			url = signed
		}
	}

	if url == "" {
		utils.NotFoundResponse(c, "file")
		return
	}

	utils.SuccessResponse(c, gin.H{
		"url":        url,
		"expires_in": int(presignTTL.Seconds()),
	})
}

// attributeRequiresImage reports whether the attribute's declared rules
// constrain uploads to images.
func attributeRequiresImage(attr *models.Attribute) bool {
	for _, rule := range validation.RulesFor(attr) {
		if rule.Type == validation.RuleImage {
			return true
		}
	}
	return false
}
