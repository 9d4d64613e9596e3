// internal/handlers/group.go
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

type GroupHandler struct {
	groupService *services.GroupService
}

func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{groupService: groupService}
}

// GET /attribute-groups
func (h *GroupHandler) GetGroups(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	searchParams := services.GroupSearchParams{
		PaginationParams: params,
	}

	if moduleIDStr := c.Query("module_id"); moduleIDStr != "" {
		if moduleID, err := strconv.ParseUint(moduleIDStr, 10, 64); err == nil {
			id := uint(moduleID)
			searchParams.ModuleID = &id
		}
	}

	if activeStr := c.Query("is_active"); activeStr != "" {
		if active, err := strconv.ParseBool(activeStr); err == nil {
			searchParams.IsActive = &active
		}
	}

	groups, total, err := h.groupService.ListGroups(searchParams)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(groups, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /attribute-groups/:id
func (h *GroupHandler) GetGroup(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	group, err := h.groupService.GetGroup(id)
	if err != nil {
		if errors.Is(err, models.ErrGroupNotFound) {
			utils.NotFoundResponse(c, "attribute_group")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"attribute_group": group})
}

// POST /attribute-groups
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	group, err := h.groupService.CreateGroup(&req)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateSlug) {
			utils.ConflictResponse(c, err.Error())
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":         i18n.T(lang, i18n.KeyGroupCreated),
		"attribute_group": group,
	})
}

// PUT /attribute-groups/:id
func (h *GroupHandler) UpdateGroup(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return
	}

	group, err := h.groupService.UpdateGroup(id, &req)
	if err != nil {
		if errors.Is(err, models.ErrGroupNotFound) {
			utils.NotFoundResponse(c, "attribute_group")
			return
		}
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":         i18n.T(lang, i18n.KeyGroupUpdated),
		"attribute_group": group,
	})
}

// DELETE /attribute-groups/:id
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := h.groupService.DeleteGroup(id); err != nil {
		if errors.Is(err, models.ErrGroupNotFound) {
			utils.NotFoundResponse(c, "attribute_group")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyGroupDeleted),
	})
}

type syncAttributesRequest struct {
	AttributeIDs []uint `json:"attribute_ids"`
}

// PUT /attribute-groups/:id/attributes
func (h *GroupHandler) SyncAttributes(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req syncAttributesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	if err := h.groupService.SyncAttributes(id, req.AttributeIDs); err != nil {
		switch {
		case errors.Is(err, models.ErrGroupNotFound):
			utils.NotFoundResponse(c, "attribute_group")
		case errors.Is(err, models.ErrAttributeNotFound):
			utils.NotFoundResponse(c, "attribute")
		default:
			utils.InternalErrorResponse(c, err.Error())
		}
		return
	}

	group, err := h.groupService.GetGroup(id)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"attribute_group": group})
}

type entityGroupRequest struct {
	EntityType string `json:"entity_type" validate:"required"`
	EntityID   uint   `json:"entity_id" validate:"required"`
}

// POST /attribute-groups/:id/attach
func (h *GroupHandler) AttachToEntity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req entityGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	entity := models.EntityRef{Type: req.EntityType, ID: req.EntityID}
	if err := h.groupService.AttachToEntity(entity, id); err != nil {
		if errors.Is(err, models.ErrGroupNotFound) {
			utils.NotFoundResponse(c, "attribute_group")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"attached": true})
}

// POST /attribute-groups/:id/detach
func (h *GroupHandler) DetachFromEntity(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req entityGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	entity := models.EntityRef{Type: req.EntityType, ID: req.EntityID}
	if err := h.groupService.DetachFromEntity(entity, id); err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"detached": true})
}
