// internal/services/group_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/fiachehr/go-eav/internal/models"
	"github.com/fiachehr/go-eav/internal/utils"
)

type GroupService struct {
	db *gorm.DB
}

type CreateGroupRequest struct {
	Title    string `json:"title" validate:"required,min=2,max=255"`
	Slug     string `json:"slug,omitempty" validate:"omitempty,max=255"`
	ModuleID *uint  `json:"module_id,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	Language string `json:"language,omitempty" validate:"omitempty,len=2"`
}

type UpdateGroupRequest struct {
	Title    string `json:"title,omitempty" validate:"omitempty,min=2,max=255"`
	ModuleID *uint  `json:"module_id,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	Language string `json:"language,omitempty" validate:"omitempty,len=2"`
}

type GroupSearchParams struct {
	utils.PaginationParams
	ModuleID *uint `json:"module_id,omitempty"`
	IsActive *bool `json:"is_active,omitempty"`
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{db: db}
}

func (s *GroupService) CreateGroup(req *CreateGroupRequest) (*models.AttributeGroup, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Title)
	}

	var count int64
	if err := s.db.Model(&models.AttributeGroup{}).Where("slug = ?", slug).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	if count > 0 {
		return nil, models.ErrDuplicateSlug
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	language := req.Language
	if language == "" {
		language = "en"
	}

	group := &models.AttributeGroup{
		Title:    req.Title,
		Slug:     slug,
		ModuleID: req.ModuleID,
		IsActive: isActive,
		Language: language,
	}

	if err := s.db.Create(group).Error; err != nil {
		return nil, fmt.Errorf("failed to create attribute group: %w", err)
	}

	return group, nil
}

func (s *GroupService) GetGroup(id uint) (*models.AttributeGroup, error) {
	var group models.AttributeGroup
	if err := s.db.Preload("Attributes").First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrGroupNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &group, nil
}

func (s *GroupService) GetGroupBySlug(slug string) (*models.AttributeGroup, error) {
	var group models.AttributeGroup
	if err := s.db.Preload("Attributes").Where("slug = ?", slug).First(&group).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrGroupNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &group, nil
}

func (s *GroupService) UpdateGroup(id uint, req *UpdateGroupRequest) (*models.AttributeGroup, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var group models.AttributeGroup
	if err := s.db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.ErrGroupNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.ModuleID != nil {
		updates["module_id"] = *req.ModuleID
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}
	if req.Language != "" {
		updates["language"] = req.Language
	}

	if len(updates) > 0 {
		if err := s.db.Model(&group).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update attribute group: %w", err)
		}
	}

	return s.GetGroup(id)
}

func (s *GroupService) DeleteGroup(id uint) error {
	var group models.AttributeGroup
	if err := s.db.First(&group, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrGroupNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM attribute_group_attributes WHERE attribute_group_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to clear group membership: %w", err)
		}
		if err := tx.Where("attribute_group_id = ?", id).Delete(&models.AttributableAttributeGroup{}).Error; err != nil {
			return fmt.Errorf("failed to clear group assignments: %w", err)
		}
		if err := tx.Where("translatable_type = ? AND translatable_id = ?", models.TranslatableAttributeGroup, id).
			Delete(&models.Translation{}).Error; err != nil {
			return fmt.Errorf("failed to delete group translations: %w", err)
		}
		if err := tx.Delete(&group).Error; err != nil {
			return fmt.Errorf("failed to delete attribute group: %w", err)
		}
		return nil
	})
}

func (s *GroupService) ListGroups(params GroupSearchParams) ([]models.AttributeGroup, int64, error) {
	query := s.db.Model(&models.AttributeGroup{})

	if params.ModuleID != nil {
		query = query.Where("module_id = ?", *params.ModuleID)
	}
	if params.IsActive != nil {
		query = query.Where("is_active = ?", *params.IsActive)
	}
	if params.Search != "" {
		term := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(slug) LIKE ?", term, term)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count attribute groups: %w", err)
	}

	allowedSortFields := []string{"id", "title", "slug"}
	query = utils.ApplySort(query, params.PaginationParams, allowedSortFields)
	query = utils.ApplyPagination(query, params.PaginationParams)

	var groups []models.AttributeGroup
	if err := query.Preload("Attributes").Find(&groups).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch attribute groups: %w", err)
	}

	return groups, total, nil
}

// SyncAttributes replaces the group's attribute membership with the given
// attribute ids, in order.
func (s *GroupService) SyncAttributes(groupID uint, attributeIDs []uint) error {
	var group models.AttributeGroup
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrGroupNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	var attrs []models.Attribute
	if len(attributeIDs) > 0 {
		if err := s.db.Find(&attrs, attributeIDs).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if len(attrs) != len(attributeIDs) {
			return models.ErrAttributeNotFound
		}
	}

	if err := s.db.Model(&group).Association("Attributes").Replace(attrs); err != nil {
		return fmt.Errorf("failed to sync group attributes: %w", err)
	}
	return nil
}

// AttachToEntity assigns an attribute group to an entity, ignoring repeats.
func (s *GroupService) AttachToEntity(entity models.Attributable, groupID uint) error {
	var group models.AttributeGroup
	if err := s.db.First(&group, groupID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.ErrGroupNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	var existing models.AttributableAttributeGroup
	err := s.db.Where(
		"attributable_type = ? AND attributable_id = ? AND attribute_group_id = ?",
		entity.AttributableType(), entity.AttributableID(), groupID,
	).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("database error: %w", err)
	}

	link := models.AttributableAttributeGroup{
		AttributableType: entity.AttributableType(),
		AttributableID:   entity.AttributableID(),
		AttributeGroupID: groupID,
	}
	if err := s.db.Create(&link).Error; err != nil {
		return fmt.Errorf("failed to attach group: %w", err)
	}
	return nil
}

// SyncGroups makes the given ids the entity's complete set of assigned
// groups: unlisted assignments are removed, listed ones are created.
func (s *GroupService) SyncGroups(entity models.Attributable, groupIDs []uint) error {
	if len(groupIDs) > 0 {
		var count int64
		if err := s.db.Model(&models.AttributeGroup{}).Where("id IN ?", groupIDs).Count(&count).Error; err != nil {
			return fmt.Errorf("database error: %w", err)
		}
		if count != int64(len(groupIDs)) {
			return models.ErrGroupNotFound
		}
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		prune := tx.Where(
			"attributable_type = ? AND attributable_id = ?",
			entity.AttributableType(), entity.AttributableID(),
		)
		if len(groupIDs) > 0 {
			prune = prune.Where("attribute_group_id NOT IN ?", groupIDs)
		}
		if err := prune.Delete(&models.AttributableAttributeGroup{}).Error; err != nil {
			return fmt.Errorf("failed to prune group assignments: %w", err)
		}

		scoped := &GroupService{db: tx}
		for _, id := range groupIDs {
			if err := scoped.AttachToEntity(entity, id); err != nil {
				return err
			}
		}
		return nil
	})
}

// DetachFromEntity removes an attribute group assignment from an entity.
func (s *GroupService) DetachFromEntity(entity models.Attributable, groupID uint) error {
	if err := s.db.Where(
		"attributable_type = ? AND attributable_id = ? AND attribute_group_id = ?",
		entity.AttributableType(), entity.AttributableID(), groupID,
	).Delete(&models.AttributableAttributeGroup{}).Error; err != nil {
		return fmt.Errorf("failed to detach group: %w", err)
	}
	return nil
}

// GroupsForEntity returns the attribute groups assigned to an entity, with
// member attributes preloaded.
func (s *GroupService) GroupsForEntity(entity models.Attributable) ([]models.AttributeGroup, error) {
	var links []models.AttributableAttributeGroup
	if err := s.db.Where(
		"attributable_type = ? AND attributable_id = ?",
		entity.AttributableType(), entity.AttributableID(),
	).Find(&links).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if len(links) == 0 {
		return nil, nil
	}

	ids := make([]uint, 0, len(links))
	for _, link := range links {
		ids = append(ids, link.AttributeGroupID)
	}

	var groups []models.AttributeGroup
	if err := s.db.Preload("Attributes").Find(&groups, ids).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return groups, nil
}

// FindByGroupIDs returns the distinct attributes belonging to any of the
// given groups.
func (s *GroupService) FindByGroupIDs(groupIDs []uint) ([]models.Attribute, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}

	var groups []models.AttributeGroup
	if err := s.db.Preload("Attributes").Find(&groups, groupIDs).Error; err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	seen := make(map[uint]bool)
	var attrs []models.Attribute
	for _, group := range groups {
		for _, attr := range group.Attributes {
			if seen[attr.ID] {
				continue
			}
			seen[attr.ID] = true
			attrs = append(attrs, attr)
		}
	}
	return attrs, nil
}

// AttributesForEntity returns the distinct attributes available to an entity
// through its assigned groups.
func (s *GroupService) AttributesForEntity(entity models.Attributable) ([]models.Attribute, error) {
	groups, err := s.GroupsForEntity(entity)
	if err != nil {
		return nil, err
	}

	seen := make(map[uint]bool)
	var attrs []models.Attribute
	for _, group := range groups {
		for _, attr := range group.Attributes {
			if seen[attr.ID] {
				continue
			}
			seen[attr.ID] = true
			attrs = append(attrs, attr)
		}
	}
	return attrs, nil
}
