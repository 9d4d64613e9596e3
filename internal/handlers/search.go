// internal/handlers/search.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/fiachehr/go-eav/internal/query"
	"github.com/fiachehr/go-eav/internal/services"
	"github.com/fiachehr/go-eav/internal/utils"
)

type SearchHandler struct {
	db       *gorm.DB
	resolver *services.AttributeResolver
}

func NewSearchHandler(db *gorm.DB, resolver *services.AttributeResolver) *SearchHandler {
	return &SearchHandler{db: db, resolver: resolver}
}

type searchRequest struct {
	EntityType string            `json:"entity_type" validate:"required"`
	Locale     string            `json:"locale,omitempty"`
	All        []query.Condition `json:"all,omitempty"`
	Any        []query.Condition `json:"any,omitempty"`
	Search     string            `json:"search,omitempty"`
	OrderBy    string            `json:"order_by,omitempty"`
	Direction  string            `json:"direction,omitempty" validate:"omitempty,oneof=asc desc"`
	Limit      int               `json:"limit,omitempty" validate:"omitempty,min=1,max=500"`
	Offset     int               `json:"offset,omitempty" validate:"omitempty,min=0"`
}

func (h *SearchHandler) builderFor(req *searchRequest) *query.Builder {
	builder := query.New(h.db, req.EntityType, h.resolver)
	if req.Locale != "" {
		builder = builder.WithLocale(req.Locale)
	}
	if len(req.All) > 0 {
		builder = builder.WhereMultiple(req.All)
	}
	if len(req.Any) > 0 {
		builder = builder.WhereAny(req.Any)
	}
	if req.Search != "" {
		builder = builder.SearchText(req.Search)
	}
	if req.OrderBy != "" {
		builder = builder.OrderBy(req.OrderBy, req.Direction)
	}
	if req.Limit > 0 {
		builder = builder.Limit(req.Limit)
	}
	if req.Offset > 0 {
		builder = builder.Offset(req.Offset)
	}
	return builder
}

// POST /search/entities
func (h *SearchHandler) SearchEntities(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	ids, err := h.builderFor(&req).AttributableIDs()
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"entity_type": req.EntityType,
		"ids":         ids,
		"count":       len(ids),
	})
}

type aggregateRequest struct {
	searchRequest
	Function  string `json:"function" validate:"required,oneof=sum avg min max"`
	Attribute string `json:"attribute" validate:"required"`
}

// POST /search/aggregate
func (h *SearchHandler) Aggregate(c *gin.Context) {
	var req aggregateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}
	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(&req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return
	}

	builder := h.builderFor(&req.searchRequest)

	var result float64
	var err error
	switch req.Function {
	case "sum":
		result, err = builder.Sum(req.Attribute)
	case "avg":
		result, err = builder.Avg(req.Attribute)
	case "min":
		result, err = builder.Min(req.Attribute)
	case "max":
		result, err = builder.Max(req.Attribute)
	}
	if err != nil {
		utils.BadRequestResponse(c, err.Error(), nil)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"function":  req.Function,
		"attribute": req.Attribute,
		"result":    result,
	})
}
