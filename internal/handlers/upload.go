package handlers

import (
	"github.com/barangay-konek/portal-api/internal/storage"
	"github.com/barangay-konek/portal-api/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// UploadHandler issues storage keys for client-side file uploads.
type UploadHandler struct {
	Files storage.Resolver
}

type uploadBody struct {
	Filename string `json:"filename"`
}

// CreateUpload handles POST /api/uploads
// @Summary Reserve a storage key for a file upload
// @Description Returns a fresh storage key and the public URL it will resolve to
// @Tags Uploads
// @Accept json
// @Produce json
// @Param body body handlers.uploadBody true "Original filename"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /uploads [post]
func (h *UploadHandler) CreateUpload(c *fiber.Ctx) error {
	var body uploadBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}
	if body.Filename == "" {
		return utils.ErrorResponse(c, "filename is required", fiber.StatusBadRequest, "portal.validation.upload")
	}

	key := storage.NewKey(body.Filename)
	return utils.CreatedResponse(c, fiber.Map{
		"key": key,
		"url": h.Files.URL(key),
	})
}
