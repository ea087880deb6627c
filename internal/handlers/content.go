package handlers

import (
	"encoding/json"
	"time"

	"github.com/barangay-konek/portal-api/internal/cache"
	"github.com/barangay-konek/portal-api/internal/config"
	"github.com/barangay-konek/portal-api/internal/models"
	"github.com/barangay-konek/portal-api/internal/services"
	"github.com/barangay-konek/portal-api/internal/storage"
	"github.com/barangay-konek/portal-api/internal/types"
	"github.com/barangay-konek/portal-api/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Cache keys for the public content reads. Invalidated together on any
// console mutation so readers never see a half-updated homepage.
const (
	cacheKeyPosts      = "content:posts"
	cacheKeyHighlights = "content:highlights"
	cacheKeyResources  = "content:resources"
	cacheKeyLayout     = "content:layout"
)

// ContentHandler handles the public content reads and the admin console.
type ContentHandler struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Store cache.Cache
	Files storage.Resolver
}

// PostView is the API shape of an announcement.
type PostView struct {
	ID            uint64    `json:"id"`
	Title         string    `json:"title"`
	Body          string    `json:"body"`
	CoverImageURL string    `json:"coverImageUrl,omitempty"`
	Published     bool      `json:"published"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// HighlightView is the API shape of a carousel entry.
type HighlightView struct {
	ID       uint64 `json:"id"`
	Title    string `json:"title"`
	ImageURL string `json:"imageUrl"`
	Link     string `json:"link,omitempty"`
	Position int    `json:"position"`
}

// ResourceView is the API shape of a downloadable resource.
type ResourceView struct {
	ID          uint64 `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	FileURL     string `json:"fileUrl"`
	Downloads   uint64 `json:"downloads"`
}

// SectionView is the API shape of one homepage layout slot.
type SectionView struct {
	ID       uint64          `json:"id"`
	Name     string          `json:"name"`
	Position int             `json:"position"`
	Enabled  bool            `json:"enabled"`
	Config   json.RawMessage `json:"config,omitempty"`
}

func (h *ContentHandler) postView(p *models.Post) PostView {
	return PostView{
		ID:            p.PostID,
		Title:         p.Title,
		Body:          p.Body,
		CoverImageURL: h.Files.URL(p.CoverImageKey),
		Published:     p.Published,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func (h *ContentHandler) highlightView(hl *models.Highlight) HighlightView {
	return HighlightView{
		ID:       hl.HighlightID,
		Title:    hl.Title,
		ImageURL: h.Files.URL(hl.ImageKey),
		Link:     hl.Link,
		Position: hl.Position,
	}
}

func (h *ContentHandler) resourceView(r *models.Resource) ResourceView {
	return ResourceView{
		ID:          r.ResourceID,
		Title:       r.Title,
		Description: r.Description,
		FileURL:     h.Files.URL(r.FileKey),
		Downloads:   r.Downloads,
	}
}

func sectionView(s *models.LayoutSection) SectionView {
	view := SectionView{
		ID:       s.SectionID,
		Name:     s.Name,
		Position: s.Position,
		Enabled:  s.Enabled,
	}
	if s.Config != nil {
		view.Config = json.RawMessage(s.Config.JSON)
	}
	return view
}

// cached serves a public read from the cache when warm, otherwise loads,
// stores, and serves. Cache failures fall through to the loader.
func (h *ContentHandler) cached(c *fiber.Ctx, key string, ttl time.Duration, load func() (interface{}, error)) error {
	if body, ok := h.Store.Get(c.Context(), key); ok {
		c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		return c.Status(fiber.StatusOK).Send(body)
	}

	data, err := load()
	if err != nil {
		return serviceError(c, err, "content")
	}

	body, err := json.Marshal(data)
	if err != nil {
		return serviceError(c, err, "content")
	}

	h.Store.Set(c.Context(), key, body, ttl)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(body)
}

func (h *ContentHandler) invalidate(c *fiber.Ctx) {
	h.Store.Delete(c.Context(), cacheKeyPosts, cacheKeyHighlights, cacheKeyResources, cacheKeyLayout)
}

// ListPosts handles GET /api/content/posts
// @Summary List published announcements
// @Tags Content
// @Produce json
// @Success 200 {array} handlers.PostView
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /content/posts [get]
func (h *ContentHandler) ListPosts(c *fiber.Ctx) error {
	return h.cached(c, cacheKeyPosts, h.Cfg.ContentCacheTTL, func() (interface{}, error) {
		posts, err := services.ListPublishedPosts(h.DB)
		if err != nil {
			return nil, err
		}
		views := make([]PostView, 0, len(posts))
		for i := range posts {
			views = append(views, h.postView(&posts[i]))
		}
		return views, nil
	})
}

// GetPost handles GET /api/content/posts/:id
// @Summary Get one published announcement
// @Tags Content
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} handlers.PostView
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /content/posts/{id} [get]
func (h *ContentHandler) GetPost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "getPost")
	}

	post, err := services.GetPublishedPost(h.DB, postID)
	if err != nil {
		return serviceError(c, err, "getPost")
	}

	return c.Status(fiber.StatusOK).JSON(h.postView(post))
}

// ListHighlights handles GET /api/content/highlights
// @Summary List homepage highlights
// @Tags Content
// @Produce json
// @Success 200 {array} handlers.HighlightView
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /content/highlights [get]
func (h *ContentHandler) ListHighlights(c *fiber.Ctx) error {
	return h.cached(c, cacheKeyHighlights, h.Cfg.ContentCacheTTL, func() (interface{}, error) {
		highlights, err := services.ListHighlights(h.DB)
		if err != nil {
			return nil, err
		}
		views := make([]HighlightView, 0, len(highlights))
		for i := range highlights {
			views = append(views, h.highlightView(&highlights[i]))
		}
		return views, nil
	})
}

// ListResources handles GET /api/content/resources
// @Summary List downloadable resources
// @Tags Content
// @Produce json
// @Success 200 {array} handlers.ResourceView
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /content/resources [get]
func (h *ContentHandler) ListResources(c *fiber.Ctx) error {
	return h.cached(c, cacheKeyResources, h.Cfg.ContentCacheTTL, func() (interface{}, error) {
		resources, err := services.ListResources(h.DB)
		if err != nil {
			return nil, err
		}
		views := make([]ResourceView, 0, len(resources))
		for i := range resources {
			views = append(views, h.resourceView(&resources[i]))
		}
		return views, nil
	})
}

// DownloadResource handles GET /api/content/resources/:id/download
// @Summary Record a resource download and return its URL
// @Tags Content
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /content/resources/{id}/download [get]
func (h *ContentHandler) DownloadResource(c *fiber.Ctx) error {
	resourceID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "downloadResource")
	}

	resource, err := services.RegisterDownload(h.DB, resourceID)
	if err != nil {
		return serviceError(c, err, "downloadResource")
	}

	h.Store.Delete(c.Context(), cacheKeyResources)
	return utils.MutationSuccessResponse(c, h.resourceView(resource))
}

// GetLayout handles GET /api/content/layout
// @Summary Get the homepage layout
// @Tags Content
// @Produce json
// @Success 200 {array} handlers.SectionView
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /content/layout [get]
func (h *ContentHandler) GetLayout(c *fiber.Ctx) error {
	return h.cached(c, cacheKeyLayout, h.Cfg.LayoutCacheTTL, func() (interface{}, error) {
		sections, err := services.GetLayout(h.DB)
		if err != nil {
			return nil, err
		}
		views := make([]SectionView, 0, len(sections))
		for i := range sections {
			views = append(views, sectionView(&sections[i]))
		}
		return views, nil
	})
}

// CreatePost handles POST /api/admin/content/posts
// @Summary Create an announcement
// @Tags Console
// @Accept json
// @Produce json
// @Param body body services.PostInput true "Post to create"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/content/posts [post]
func (h *ContentHandler) CreatePost(c *fiber.Ctx) error {
	var body services.PostInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}

	post, err := services.CreatePost(h.DB, body)
	if err != nil {
		return serviceError(c, err, "createPost")
	}

	h.invalidate(c)
	return utils.CreatedResponse(c, h.postView(post))
}

// UpdatePost handles PUT /api/admin/content/posts/:id
// @Summary Update an announcement
// @Tags Console
// @Accept json
// @Produce json
// @Param id path int true "Post ID"
// @Param body body services.PostInput true "New post content"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/content/posts/{id} [put]
func (h *ContentHandler) UpdatePost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "updatePost")
	}

	var body services.PostInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}

	post, err := services.UpdatePost(h.DB, postID, body)
	if err != nil {
		return serviceError(c, err, "updatePost")
	}

	h.invalidate(c)
	return utils.MutationSuccessResponse(c, h.postView(post))
}

// DeletePost handles DELETE /api/admin/content/posts/:id
// @Summary Delete an announcement
// @Tags Console
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/content/posts/{id} [delete]
func (h *ContentHandler) DeletePost(c *fiber.Ctx) error {
	postID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "deletePost")
	}

	if err := services.DeletePost(h.DB, postID); err != nil {
		return serviceError(c, err, "deletePost")
	}

	h.invalidate(c)
	return utils.MutationSuccessResponse(c, fiber.Map{"deleted": true})
}

// CreateHighlight handles POST /api/admin/content/highlights
// @Summary Create a homepage highlight
// @Tags Console
// @Accept json
// @Produce json
// @Param body body services.HighlightInput true "Highlight to create"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/content/highlights [post]
func (h *ContentHandler) CreateHighlight(c *fiber.Ctx) error {
	var body services.HighlightInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}

	highlight, err := services.CreateHighlight(h.DB, body)
	if err != nil {
		return serviceError(c, err, "createHighlight")
	}

	h.invalidate(c)
	return utils.CreatedResponse(c, h.highlightView(highlight))
}

// UpdateHighlight handles PUT /api/admin/content/highlights/:id
// @Summary Update a homepage highlight
// @Tags Console
// @Accept json
// @Produce json
// @Param id path int true "Highlight ID"
// @Param body body services.HighlightInput true "New highlight content"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/content/highlights/{id} [put]
func (h *ContentHandler) UpdateHighlight(c *fiber.Ctx) error {
	highlightID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "updateHighlight")
	}

	var body services.HighlightInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}

	highlight, err := services.UpdateHighlight(h.DB, highlightID, body)
	if err != nil {
		return serviceError(c, err, "updateHighlight")
	}

	h.invalidate(c)
	return utils.MutationSuccessResponse(c, h.highlightView(highlight))
}

// ReorderHighlights handles PUT /api/admin/content/highlights
// @Summary Reorder the homepage highlights
// @Tags Console
// @Accept json
// @Produce json
// @Param body body []services.HighlightPosition true "Highlight positions"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/content/highlights [put]
func (h *ContentHandler) ReorderHighlights(c *fiber.Ctx) error {
	// Same shape as the layout reorder: the full carousel or one entry.
	var positions types.FlexList[services.HighlightPosition]
	if err := json.Unmarshal(c.Body(), &positions); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}

	highlights, err := services.ReorderHighlights(h.DB, positions.Slice())
	if err != nil {
		return serviceError(c, err, "reorderHighlights")
	}

	h.invalidate(c)
	views := make([]HighlightView, 0, len(highlights))
	for i := range highlights {
		views = append(views, h.highlightView(&highlights[i]))
	}
	return utils.MutationSuccessResponse(c, views)
}

// DeleteHighlight handles DELETE /api/admin/content/highlights/:id
// @Summary Delete a homepage highlight
// @Tags Console
// @Produce json
// @Param id path int true "Highlight ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/content/highlights/{id} [delete]
func (h *ContentHandler) DeleteHighlight(c *fiber.Ctx) error {
	highlightID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "deleteHighlight")
	}

	if err := services.DeleteHighlight(h.DB, highlightID); err != nil {
		return serviceError(c, err, "deleteHighlight")
	}

	h.invalidate(c)
	return utils.MutationSuccessResponse(c, fiber.Map{"deleted": true})
}

// CreateResource handles POST /api/admin/content/resources
// @Summary Create a downloadable resource
// @Tags Console
// @Accept json
// @Produce json
// @Param body body services.ResourceInput true "Resource to create"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/content/resources [post]
func (h *ContentHandler) CreateResource(c *fiber.Ctx) error {
	var body services.ResourceInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}

	resource, err := services.CreateResource(h.DB, body)
	if err != nil {
		return serviceError(c, err, "createResource")
	}

	h.invalidate(c)
	return utils.CreatedResponse(c, h.resourceView(resource))
}

// UpdateResource handles PUT /api/admin/content/resources/:id
// @Summary Update a downloadable resource
// @Tags Console
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param body body services.ResourceInput true "New resource content"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/content/resources/{id} [put]
func (h *ContentHandler) UpdateResource(c *fiber.Ctx) error {
	resourceID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "updateResource")
	}

	var body services.ResourceInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}

	resource, err := services.UpdateResource(h.DB, resourceID, body)
	if err != nil {
		return serviceError(c, err, "updateResource")
	}

	h.invalidate(c)
	return utils.MutationSuccessResponse(c, h.resourceView(resource))
}

// DeleteResource handles DELETE /api/admin/content/resources/:id
// @Summary Delete a downloadable resource
// @Tags Console
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/content/resources/{id} [delete]
func (h *ContentHandler) DeleteResource(c *fiber.Ctx) error {
	resourceID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "deleteResource")
	}

	if err := services.DeleteResource(h.DB, resourceID); err != nil {
		return serviceError(c, err, "deleteResource")
	}

	h.invalidate(c)
	return utils.MutationSuccessResponse(c, fiber.Map{"deleted": true})
}

// ReorderLayout handles PUT /api/admin/content/layout
// @Summary Reorder the homepage layout
// @Tags Console
// @Accept json
// @Produce json
// @Param body body []services.SectionPosition true "Section positions"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /admin/content/layout [put]
func (h *ContentHandler) ReorderLayout(c *fiber.Ctx) error {
	// Drag/drop clients send the full grid; single-section toggles send one
	// object. Both decode to the same list.
	var positions types.FlexList[services.SectionPosition]
	if err := json.Unmarshal(c.Body(), &positions); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}

	sections, err := services.ReorderLayout(h.DB, positions.Slice())
	if err != nil {
		return serviceError(c, err, "reorderLayout")
	}

	h.invalidate(c)
	views := make([]SectionView, 0, len(sections))
	for i := range sections {
		views = append(views, sectionView(&sections[i]))
	}
	return utils.MutationSuccessResponse(c, views)
}
