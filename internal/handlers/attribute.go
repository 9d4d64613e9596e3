// internal/handlers/attribute.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/fiachehr/go-eav/internal/i18n"
	"github.com/fiachehr/go-eav/internal/models"
	"github.com/fiachehr/go-eav/internal/services"
	"github.com/fiachehr/go-eav/internal/utils"
)

type AttributeHandler struct {
	attributeService *services.AttributeService
}

func NewAttributeHandler(attributeService *services.AttributeService) *AttributeHandler {
	return &AttributeHandler{attributeService: attributeService}
}

// GET /attributes
func (h *AttributeHandler) GetAttributes(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.AttributeSearchParams{
		PaginationParams: params,
	}

	if typeStr := c.Query("type"); typeStr != "" {
		if typeTag, err := strconv.Atoi(typeStr); err == nil {
			searchParams.Type = &typeTag
		}
	}

	if activeStr := c.Query("is_active"); activeStr != "" {
		if active, err := strconv.ParseBool(activeStr); err == nil {
			searchParams.IsActive = &active
		}
	}

	if language := c.Query("language"); language != "" {
		searchParams.Language = language
	}

	attrs, total, err := h.attributeService.ListAttributes(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(attrs, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /attributes/types
func (h *AttributeHandler) GetAttributeTypes(c *gin.Context) {
	utils.SuccessResponse(c, gin.H{
		"types": h.attributeService.ListTypes(),
	})
}

// GET /attributes/:id
func (h *AttributeHandler) GetAttribute(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	attr, err := h.attributeService.GetAttribute(id)
	if err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			utils.NotFoundResponse(c, "attribute")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"attribute": attr})
}

// GET /attributes/slug/:slug
func (h *AttributeHandler) GetAttributeBySlug(c *gin.Context) {
	attr, err := h.attributeService.GetAttributeBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			utils.NotFoundResponse(c, "attribute")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"attribute": attr})
}

// POST /attributes
func (h *AttributeHandler) CreateAttribute(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	attr, err := h.attributeService.CreateAttribute(&req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrDuplicateSlug):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAttributeDuplicateSlug))
		case errors.Is(err, models.ErrDuplicateLogicalID):
			utils.ConflictResponse(c, err.Error())
		case errors.Is(err, models.ErrUnknownAttributeType):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyAttributeCreated),
		"attribute": attr,
	})
}

// PUT /attributes/:id
func (h *AttributeHandler) UpdateAttribute(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateAttributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	attr, err := h.attributeService.UpdateAttribute(id, &req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrAttributeNotFound):
			utils.NotFoundResponse(c, "attribute")
		case errors.Is(err, models.ErrTypeImmutable):
			utils.ConflictResponse(c, i18n.T(lang, i18n.KeyAttributeTypeLocked))
		case errors.Is(err, models.ErrUnknownAttributeType):
			utils.BadRequestResponse(c, err.Error(), nil)
		default:
			utils.BadRequestResponse(c, err.Error(), nil)
		}
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":   i18n.T(lang, i18n.KeyAttributeUpdated),
		"attribute": attr,
	})
}

// DELETE /attributes/:id
func (h *AttributeHandler) DeleteAttribute(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.attributeService.DeleteAttribute(id); err != nil {
		if errors.Is(err, models.ErrAttributeNotFound) {
			utils.NotFoundResponse(c, "attribute")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAttributeDeleted),
	})
}

func parseID(c *gin.Context, param string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		utils.BadRequestResponse(c, "Invalid id", nil)
		return 0, false
	}
	return uint(id), true
}
