package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/barangay-konek/portal-api/data"
	"github.com/barangay-konek/portal-api/internal/models"
	"github.com/barangay-konek/portal-api/internal/types"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostInput is the admin payload for creating or updating a post.
type PostInput struct {
	Title         string `json:"title"`
	Body          string `json:"body"`
	CoverImageKey string `json:"coverImageKey"`
	Published     bool   `json:"published"`
}

// HighlightInput is the admin payload for a homepage carousel entry.
type HighlightInput struct {
	Title    string `json:"title"`
	ImageKey string `json:"imageKey"`
	Link     string `json:"link"`
	Position int    `json:"position"`
}

// ResourceInput is the admin payload for a downloadable resource.
type ResourceInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	FileKey     string `json:"fileKey"`
}

// HighlightPosition assigns one carousel entry its display slot.
type HighlightPosition struct {
	HighlightID uint64 `json:"highlightId"`
	Position    int    `json:"position"`
}

// SectionPosition assigns one layout section its slot in the homepage grid.
type SectionPosition struct {
	SectionID uint64 `json:"sectionId"`
	Position  int    `json:"position"`
	Enabled   *bool  `json:"enabled"`
}

// ListPublishedPosts returns publicly visible posts, newest first.
func ListPublishedPosts(db *gorm.DB) ([]models.Post, error) {
	var posts []models.Post
	err := db.Where("published = ?", true).
		Order("created_at DESC").
		Find(&posts).Error
	return posts, err
}

// GetPublishedPost returns one published post; drafts are NotFound to the
// public.
func GetPublishedPost(db *gorm.DB, postID uint64) (*models.Post, error) {
	var post models.Post
	err := db.Where("post_id = ? AND published = ?", postID, true).First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("portal.content.post", "post %d not found", postID)
		}
		return nil, err
	}
	return &post, nil
}

// CreatePost creates an announcement from the admin console.
func CreatePost(db *gorm.DB, in PostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return nil, types.Validation("portal.content.post", "title and body are required")
	}
	post := &models.Post{
		Title:         in.Title,
		Body:          in.Body,
		CoverImageKey: in.CoverImageKey,
		Published:     in.Published,
	}
	if err := db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// UpdatePost replaces a post's editable fields.
func UpdatePost(db *gorm.DB, postID uint64, in PostInput) (*models.Post, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Body) == "" {
		return nil, types.Validation("portal.content.post", "title and body are required")
	}

	var post models.Post
	if err := db.First(&post, postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("portal.content.post", "post %d not found", postID)
		}
		return nil, err
	}

	post.Title = in.Title
	post.Body = in.Body
	post.CoverImageKey = in.CoverImageKey
	post.Published = in.Published
	if err := db.Save(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post entirely.
func DeletePost(db *gorm.DB, postID uint64) error {
	res := db.Delete(&models.Post{}, postID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NotFound("portal.content.post", "post %d not found", postID)
	}
	return nil
}

// ListHighlights returns carousel entries in display order.
func ListHighlights(db *gorm.DB) ([]models.Highlight, error) {
	var highlights []models.Highlight
	err := db.Order("position ASC, highlight_id ASC").Find(&highlights).Error
	return highlights, err
}

// CreateHighlight appends a carousel entry.
func CreateHighlight(db *gorm.DB, in HighlightInput) (*models.Highlight, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.ImageKey) == "" {
		return nil, types.Validation("portal.content.highlight", "title and imageKey are required")
	}
	highlight := &models.Highlight{
		Title:    in.Title,
		ImageKey: in.ImageKey,
		Link:     in.Link,
		Position: in.Position,
	}
	if err := db.Create(highlight).Error; err != nil {
		return nil, err
	}
	return highlight, nil
}

// UpdateHighlight replaces a carousel entry's editable fields.
func UpdateHighlight(db *gorm.DB, highlightID uint64, in HighlightInput) (*models.Highlight, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.ImageKey) == "" {
		return nil, types.Validation("portal.content.highlight", "title and imageKey are required")
	}

	var highlight models.Highlight
	if err := db.First(&highlight, highlightID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("portal.content.highlight", "highlight %d not found", highlightID)
		}
		return nil, err
	}

	highlight.Title = in.Title
	highlight.ImageKey = in.ImageKey
	highlight.Link = in.Link
	highlight.Position = in.Position
	if err := db.Save(&highlight).Error; err != nil {
		return nil, err
	}
	return &highlight, nil
}

// ReorderHighlights persists a full carousel ordering in one transaction, so
// a drag/drop either lands completely or not at all.
func ReorderHighlights(db *gorm.DB, positions []HighlightPosition) ([]models.Highlight, error) {
	if len(positions) == 0 {
		return nil, types.Validation("portal.content.highlight", "no highlight positions given")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, p := range positions {
			res := tx.Model(&models.Highlight{}).
				Where("highlight_id = ?", p.HighlightID).
				Update("position", p.Position)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return types.NotFound("portal.content.highlight", "highlight %d not found", p.HighlightID)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ListHighlights(db)
}

// DeleteHighlight removes a carousel entry.
func DeleteHighlight(db *gorm.DB, highlightID uint64) error {
	res := db.Delete(&models.Highlight{}, highlightID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NotFound("portal.content.highlight", "highlight %d not found", highlightID)
	}
	return nil
}

// ListResources returns downloadable resources, newest first.
func ListResources(db *gorm.DB) ([]models.Resource, error) {
	var resources []models.Resource
	err := db.Order("created_at DESC").Find(&resources).Error
	return resources, err
}

// CreateResource registers a downloadable file.
func CreateResource(db *gorm.DB, in ResourceInput) (*models.Resource, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.FileKey) == "" {
		return nil, types.Validation("portal.content.resource", "title and fileKey are required")
	}
	resource := &models.Resource{
		Title:       in.Title,
		Description: in.Description,
		FileKey:     in.FileKey,
	}
	if err := db.Create(resource).Error; err != nil {
		return nil, err
	}
	return resource, nil
}

// UpdateResource replaces a resource's editable fields. The download counter
// is left alone.
func UpdateResource(db *gorm.DB, resourceID uint64, in ResourceInput) (*models.Resource, error) {
	if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.FileKey) == "" {
		return nil, types.Validation("portal.content.resource", "title and fileKey are required")
	}

	var resource models.Resource
	if err := db.First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("portal.content.resource", "resource %d not found", resourceID)
		}
		return nil, err
	}

	resource.Title = in.Title
	resource.Description = in.Description
	resource.FileKey = in.FileKey
	if err := db.Save(&resource).Error; err != nil {
		return nil, err
	}
	return &resource, nil
}

// DeleteResource removes a downloadable file entry.
func DeleteResource(db *gorm.DB, resourceID uint64) error {
	res := db.Delete(&models.Resource{}, resourceID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.NotFound("portal.content.resource", "resource %d not found", resourceID)
	}
	return nil
}

// RegisterDownload bumps a resource's download counter atomically and
// returns the resource so the handler can resolve its file key.
func RegisterDownload(db *gorm.DB, resourceID uint64) (*models.Resource, error) {
	var resource models.Resource
	if err := db.First(&resource, resourceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("portal.content.resource", "resource %d not found", resourceID)
		}
		return nil, err
	}

	if err := db.Model(&resource).
		Update("downloads", gorm.Expr("downloads + ?", 1)).Error; err != nil {
		return nil, err
	}
	resource.Downloads++

	return &resource, nil
}

// GetLayout returns the homepage sections in grid order.
func GetLayout(db *gorm.DB) ([]models.LayoutSection, error) {
	var sections []models.LayoutSection
	err := db.Order("position ASC, section_id ASC").Find(&sections).Error
	return sections, err
}

// ReorderLayout persists a full position assignment for the homepage grid in
// one transaction, so a drag/drop either lands completely or not at all.
func ReorderLayout(db *gorm.DB, positions []SectionPosition) ([]models.LayoutSection, error) {
	if len(positions) == 0 {
		return nil, types.Validation("portal.content.layout", "no section positions given")
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, p := range positions {
			var section models.LayoutSection
			if err := tx.First(&section, p.SectionID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return types.NotFound("portal.content.layout", "section %d not found", p.SectionID)
				}
				return err
			}
			section.Position = p.Position
			if p.Enabled != nil {
				section.Enabled = *p.Enabled
			}
			if err := tx.Save(&section).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return GetLayout(db)
}

// SeedLayout installs the default homepage sections when none exist yet.
// Existing sections are never touched.
func SeedLayout(db *gorm.DB, sections []models.LayoutSection) error {
	var count int64
	if err := db.Model(&models.LayoutSection{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&sections).Error
}

// DefaultLayoutSections parses the embedded homepage layout seed.
func DefaultLayoutSections() ([]models.LayoutSection, error) {
	var seed []struct {
		Name     string          `json:"name"`
		Position int             `json:"position"`
		Enabled  bool            `json:"enabled"`
		Config   json.RawMessage `json:"config"`
	}
	if err := json.Unmarshal(data.SeedLayoutJSON, &seed); err != nil {
		return nil, err
	}

	sections := make([]models.LayoutSection, 0, len(seed))
	for _, s := range seed {
		section := models.LayoutSection{
			Name:     s.Name,
			Position: s.Position,
			Enabled:  s.Enabled,
		}
		if len(s.Config) > 0 {
			section.Config = &models.JSON{JSON: datatypes.JSON(s.Config)}
		}
		sections = append(sections, section)
	}

	return sections, nil
}
