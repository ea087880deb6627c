package handlers

import (
	"encoding/json"

	"github.com/barangay-konek/portal-api/internal/docgen"
	"github.com/barangay-konek/portal-api/internal/services"
	"github.com/barangay-konek/portal-api/internal/types"
	"github.com/barangay-konek/portal-api/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// UpdateHandler handles routes scoped to a single request update
type UpdateHandler struct {
	DB   *gorm.DB
	Docs *docgen.Generator
}

type chatMessageBody struct {
	Body string `json:"body"`
}

// CloseUpdate handles POST /api/updates/:id/close
// @Summary Close an update's chat channel
// @Tags Updates
// @Produce json
// @Param id path int true "Update ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /updates/{id}/close [post]
func (h *UpdateHandler) CloseUpdate(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return serviceError(c, err, "closeUpdate")
	}

	updateID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "closeUpdate")
	}

	if err := services.CloseChannel(h.DB, caller, updateID); err != nil {
		return serviceError(c, err, "closeUpdate")
	}

	return utils.MutationSuccessResponse(c, fiber.Map{"closed": true})
}

// ListMessages handles GET /api/updates/:id/messages
// @Summary List chat messages on an update
// @Tags Updates
// @Produce json
// @Param id path int true "Update ID"
// @Success 200 {array} handlers.ChatMessageView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /updates/{id}/messages [get]
func (h *UpdateHandler) ListMessages(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return serviceError(c, err, "listMessages")
	}

	updateID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "listMessages")
	}

	messages, err := services.ListChatMessages(h.DB, caller, updateID)
	if err != nil {
		return serviceError(c, err, "listMessages")
	}

	views := make([]ChatMessageView, 0, len(messages))
	for i := range messages {
		views = append(views, chatMessageView(&messages[i]))
	}

	return c.Status(fiber.StatusOK).JSON(views)
}

// PostMessage handles POST /api/updates/:id/messages
// @Summary Post a chat message on an update
// @Tags Updates
// @Accept json
// @Produce json
// @Param id path int true "Update ID"
// @Param body body handlers.chatMessageBody true "Message body"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /updates/{id}/messages [post]
func (h *UpdateHandler) PostMessage(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return serviceError(c, err, "postMessage")
	}

	updateID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "postMessage")
	}

	var body chatMessageBody
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}

	msg, err := services.PostChatMessage(h.DB, caller, updateID, body.Body)
	if err != nil {
		return serviceError(c, err, "postMessage")
	}

	return utils.CreatedResponse(c, chatMessageView(msg))
}

// GetForm handles GET /api/updates/:id/form
// @Summary Get the form slot attached to an update
// @Tags Updates
// @Produce json
// @Param id path int true "Update ID"
// @Success 200 {object} handlers.FormView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /updates/{id}/form [get]
func (h *UpdateHandler) GetForm(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return serviceError(c, err, "getForm")
	}

	updateID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "getForm")
	}

	form, err := services.GetForm(h.DB, caller, updateID)
	if err != nil {
		return serviceError(c, err, "getForm")
	}

	return c.Status(fiber.StatusOK).JSON(formView(form))
}

// SubmitForm handles POST /api/updates/:id/form
// @Summary Submit the form attached to an update
// @Description One-shot submission, rejected once filled
// @Tags Updates
// @Accept json
// @Produce json
// @Param id path int true "Update ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /updates/{id}/form [post]
func (h *UpdateHandler) SubmitForm(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return serviceError(c, err, "submitForm")
	}

	updateID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "submitForm")
	}

	raw := json.RawMessage(c.Body())
	form, err := services.SubmitForm(h.DB, caller, updateID, raw)
	if err != nil {
		return serviceError(c, err, "submitForm")
	}

	return utils.MutationSuccessResponse(c, formView(form))
}

// GetDocument handles GET /api/updates/:id/document
// @Summary Download the certificate generated from a submitted form
// @Tags Updates
// @Produce plain
// @Param id path int true "Update ID"
// @Success 200 {string} string "Certificate text"
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /updates/{id}/document [get]
func (h *UpdateHandler) GetDocument(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return serviceError(c, err, "getDocument")
	}

	updateID, err := parseIDParam(c, "id")
	if err != nil {
		return serviceError(c, err, "getDocument")
	}

	form, err := services.GetForm(h.DB, caller, updateID)
	if err != nil {
		return serviceError(c, err, "getDocument")
	}
	if !form.Submitted() || form.Fields == nil {
		return serviceError(c, types.Conflict("getDocument", "form has not been submitted"), "getDocument")
	}

	doc, err := h.Docs.Generate(form.FormType, []byte(form.Fields.JSON))
	if err != nil {
		return serviceError(c, err, "getDocument")
	}

	c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+docgen.Filename(form.FormType)+`"`)
	return c.Status(fiber.StatusOK).Send(doc)
}
