// internal/handlers/translation.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/fiachehr/go-eav/internal/i18n"
	"github.com/fiachehr/go-eav/internal/services"
	"github.com/fiachehr/go-eav/internal/utils"
)

type TranslationHandler struct {
	translationService *services.TranslationService
}

func NewTranslationHandler(translationService *services.TranslationService) *TranslationHandler {
	return &TranslationHandler{translationService: translationService}
}

// ownerFromPath builds the owner reference from :owner_type/:owner_id path
// segments.
func ownerFromPath(c *gin.Context) (services.TranslatableRef, bool) {
	id, ok := parseID(c, "owner_id")
	if !ok {
		return services.TranslatableRef{}, false
	}
	ownerType := c.Param("owner_type")
	if ownerType == "" {
		utils.BadRequestResponse(c, "Invalid owner reference", nil)
		return services.TranslatableRef{}, false
	}
	return services.TranslatableRef{Type: ownerType, ID: id}, true
}

// GET /translations/:owner_type/:owner_id
func (h *TranslationHandler) GetAll(c *gin.Context) {
	owner, ok := ownerFromPath(c)
	if !ok {
		return
	}

	if locale := c.Query("locale"); locale != "" {
		values, err := h.translationService.GetForLocale(owner, locale)
		if err != nil {
			utils.InternalErrorResponse(c, err.Error())
			return
		}
		utils.SuccessResponse(c, gin.H{"translations": values})
		return
	}

	grouped, err := h.translationService.GetAll(owner)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}
	utils.SuccessResponse(c, gin.H{"translations": grouped})
}

type setTranslationsRequest struct {
	Locale string            `json:"locale" validate:"required,locale"`
	Values map[string]string `json:"values" validate:"required,min=1"`
}

// PUT /translations/:owner_type/:owner_id
func (h *TranslationHandler) Set(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	owner, ok := ownerFromPath(c)
	if !ok {
		return
	}

	var req setTranslationsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	if err := h.translationService.SetMany(owner, req.Locale, req.Values); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTranslationSaved),
	})
}

// DELETE /translations/:owner_type/:owner_id/:locale/:key
func (h *TranslationHandler) Delete(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	owner, ok := ownerFromPath(c)
	if !ok {
		return
	}

	if err := h.translationService.Delete(owner, c.Param("locale"), c.Param("key")); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyTranslationDeleted),
	})
}
