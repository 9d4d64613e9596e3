// internal/services/attribute_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/fiachehr/go-eav/internal/models"
	"github.com/fiachehr/go-eav/internal/utils"
)

type AttributeService struct {
	db       *gorm.DB
	resolver *AttributeResolver
}

type CreateAttributeRequest struct {
	Title       string                  `json:"title" validate:"required,min=2,max=255"`
	Slug        string                  `json:"slug,omitempty" validate:"omitempty,max=255"`
	LogicalID   string                  `json:"logical_id,omitempty" validate:"omitempty,uuid4"`
	Type        int                     `json:"type" validate:"min=0"`
	Description string                  `json:"description,omitempty"`
	Values      []interface{}           `json:"values,omitempty"`
	Validations []models.ValidationRule `json:"validations,omitempty"`
	IsActive    *bool                   `json:"is_active,omitempty"`
	Language    string                  `json:"language,omitempty" validate:"omitempty,len=2"`
}

type UpdateAttributeRequest struct {
	Title       string                  `json:"title,omitempty" validate:"omitempty,min=2,max=255"`
	Type        *int                    `json:"type,omitempty"`
	Description *string                 `json:"description,omitempty"`
	Values      []interface{}           `json:"values,omitempty"`
	Validations []models.ValidationRule `json:"validations,omitempty"`
	IsActive    *bool                   `json:"is_active,omitempty"`
	Language    string                  `json:"language,omitempty" validate:"omitempty,len=2"`
}

type AttributeSearchParams struct {
	utils.PaginationParams
	Type     *int   `json:"type,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	Language string `json:"language,omitempty"`
}

func NewAttributeService(db *gorm.DB, resolver *AttributeResolver) *AttributeService {
	return &AttributeService{db: db, resolver: resolver}
}

func (s *AttributeService) CreateAttribute(req *CreateAttributeRequest) (*models.Attribute, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	attrType, err := models.ParseAttributeType(req.Type)
	if err != nil {
		return nil, err
	}

	if attrType.RequiresValues() && len(req.Values) == 0 {
		return nil, fmt.Errorf("attribute type %s requires an enumerated values list", attrType.Label())
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}

	logicalID := req.LogicalID
	if logicalID == "" {
		logicalID = uuid.NewString()
	}

	if err := s.ensureSlugFree(slug, 0); err != nil {
		return nil, err
	}

	var logicalCount int64
	if err := s.db.Model(&models.Attribute{}).Where("logical_id = ?", logicalID).Count(&logicalCount).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if logicalCount > 0 {
		return nil, models.ErrDuplicateLogicalID
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	language := req.Language
	if language == "" {
		language = "en"
	}

	attr := &models.Attribute{
		LogicalID:   logicalID,
		Title:       req.Title,
		Slug:        slug,
		Type:        attrType,
		Description: req.Description,
		Values:      models.JSONList(req.Values),
		Validations: models.ValidationRules(req.Validations),
		IsActive:    isActive,
		Language:    language,
	}

	if err := s.db.Create(attr).Error; err != nil {
		return nil, fmt.Errorf("failed to create attribute: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"attribute_id": attr.ID,
		"slug":         attr.Slug,
		"type":         attr.Type.Label(),
	}).Info("Attribute created")

	return attr, nil
}

func (s *AttributeService) GetAttribute(id uint) (*models.Attribute, error) {
	var attr models.Attribute
	if err := s.db.Preload("Groups").First(&attr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAttributeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &attr, nil
}

func (s *AttributeService) GetAttributeBySlug(slug string) (*models.Attribute, error) {
	return s.resolver.BySlug(slug)
}

// GetAttributeByLogicalID resolves an attribute by its stable UUID handle,
// the reference that survives re-imports and id renumbering.
func (s *AttributeService) GetAttributeByLogicalID(logicalID string) (*models.Attribute, error) {
	return s.resolver.ByLogicalID(logicalID)
}

// FindBySlugs loads attribute definitions for a slug batch. Unknown slugs are
// simply absent from the result.
func (s *AttributeService) FindBySlugs(slugs []string) ([]models.Attribute, error) {
	if len(slugs) == 0 {
		return nil, nil
	}

	var attrs []models.Attribute
	if err := s.db.Where("slug IN ?", slugs).Find(&attrs).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return attrs, nil
}

func (s *AttributeService) UpdateAttribute(id uint, req *UpdateAttributeRequest) (*models.Attribute, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var attr models.Attribute
	if err := s.db.First(&attr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrAttributeNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Type != nil {
		newType, err := models.ParseAttributeType(*req.Type)
		if err != nil {
			return nil, err
		}
		if newType != attr.Type {
			stored, err := s.storedValueCount(attr.ID)
			if err != nil {
				return nil, err
			}
			if stored > 0 {
				return nil, models.ErrTypeImmutable
			}
			updates["type"] = newType
		}
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Values != nil {
		updates["values"] = models.JSONList(req.Values)
	}
	if req.Validations != nil {
		updates["validations"] = models.ValidationRules(req.Validations)
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Language != "" {
		updates["language"] = req.Language
	}

	if len(updates) > 0 {
		if err := s.db.Model(&attr).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update attribute: %w", err)
		}
	}

	s.resolver.Invalidate(&attr)

	if err := s.db.First(&attr, id).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &attr, nil
}

func (s *AttributeService) DeleteAttribute(id uint) error {
	var attr models.Attribute
	if err := s.db.First(&attr, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrAttributeNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		// Stored values and group links go with the definition.
		if err := tx.Where("attribute_id = ?", id).Delete(&models.AttributeValue{}).Error; err != nil {
			return fmt.Errorf("failed to delete attribute values: %w", err)
		}
		if err := tx.Exec("DELETE FROM attribute_group_attributes WHERE attribute_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to detach attribute from groups: %w", err)
		}
		if err := tx.Where("translatable_type = ? AND translatable_id = ?", models.TranslatableAttribute, id).
			Delete(&models.Translation{}).Error; err != nil {
			return fmt.Errorf("failed to delete attribute translations: %w", err)
		}
		if err := tx.Delete(&attr).Error; err != nil {
			return fmt.Errorf("failed to delete attribute: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.resolver.Invalidate(&attr)

	logrus.WithFields(logrus.Fields{
		"attribute_id": id,
		"slug":         attr.Slug,
	}).Info("Attribute deleted")

	return nil
}

func (s *AttributeService) ListAttributes(params AttributeSearchParams) ([]models.Attribute, int64, error) {
	query := s.db.Model(&models.Attribute{})

	if params.Type != nil {
		query = query.Where("type = ?", *params.Type)
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	if params.Language != "" {
		query = query.Where("language = ?", params.Language)
	}
	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(slug) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count attributes: %w", err)
	}

	allowedSortFields := []string{"id", "title", "slug", "type"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var attrs []models.Attribute
	if err := query.Find(&attrs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch attributes: %w", err)
	}

	return attrs, total, nil
}

// ListTypes returns the attribute type catalog for admin form builders.
func (s *AttributeService) ListTypes() []models.AttributeTypeInfo {
	return models.AttributeTypes()
}

func (s *AttributeService) ensureSlugFree(slug string, exceptID uint) error {
	query := s.db.Model(&models.Attribute{}).Where("slug = ?", slug)
	if exceptID > 0 {
		query = query.Where("id <> ?", exceptID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return models.ErrDuplicateSlug
	}
	return nil
}

func (s *AttributeService) storedValueCount(attributeID uint) (int64, error) {
	var count int64
	if err := s.db.Model(&models.AttributeValue{}).Where("attribute_id = ?", attributeID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("database error: %w", err)
	}
	return count, nil
}
