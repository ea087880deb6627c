package handlers

import (
	"github.com/barangay-konek/portal-api/internal/config"
	"github.com/barangay-konek/portal-api/internal/services"
	"github.com/barangay-konek/portal-api/internal/storage"
	"github.com/barangay-konek/portal-api/internal/utils"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequestHandler handles citizen request routes
type RequestHandler struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Files storage.Resolver
}

// CreateRequest handles POST /api/requests
// @Summary File a new request
// @Description File a document, blotter, or business permit request as the signed-in resident
// @Tags Requests
// @Accept json
// @Produce json
// @Param body body services.CreateRequestInput true "Request to file"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /requests [post]
func (h *RequestHandler) CreateRequest(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return serviceError(c, err, "createRequest")
	}

	var body services.CreateRequestInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}

	req, err := services.CreateRequest(h.DB, caller, h.Cfg.PriorityOpenLimit, body)
	if err != nil {
		return serviceError(c, err, "createRequest")
	}

	view := requestView(req, h.Files)
	return utils.CreatedResponse(c, view)
}

// ListRequests handles GET /api/requests
// @Summary List requests
// @Description Residents see their own requests; admins see all, priority first
// @Tags Requests
// @Produce json
// @Success 200 {array} handlers.RequestView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /requests [get]
func (h *RequestHandler) ListRequests(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return serviceError(c, err, "listRequests")
	}

	requests, err := services.ListRequestsForCaller(h.DB, caller)
	if err != nil {
		return serviceError(c, err, "listRequests")
	}

	views := make([]RequestView, 0, len(requests))
	for i := range requests {
		views = append(views, requestView(&requests[i], h.Files))
	}

	return c.Status(fiber.StatusOK).JSON(views)
}

// GetRequest handles GET /api/requests/:id
// @Summary Get request detail
// @Description Get one request with its full update thread
// @Tags Requests
// @Produce json
// @Param id path string true "Request public ID"
// @Success 200 {object} handlers.RequestView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /requests/{id} [get]
func (h *RequestHandler) GetRequest(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return serviceError(c, err, "getRequest")
	}

	req, err := services.GetRequestDetail(h.DB, caller, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "getRequest")
	}

	return c.Status(fiber.StatusOK).JSON(requestView(req, h.Files))
}

// ListUpdates handles GET /api/requests/:id/updates
// @Summary List request updates
// @Tags Requests
// @Produce json
// @Param id path string true "Request public ID"
// @Success 200 {array} handlers.UpdateView
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /requests/{id}/updates [get]
func (h *RequestHandler) ListUpdates(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return serviceError(c, err, "listUpdates")
	}

	updates, err := services.ListUpdates(h.DB, caller, c.Params("id"))
	if err != nil {
		return serviceError(c, err, "listUpdates")
	}

	views := make([]UpdateView, 0, len(updates))
	for i := range updates {
		views = append(views, updateView(&updates[i]))
	}

	return c.Status(fiber.StatusOK).JSON(views)
}

// AddUpdate handles POST /api/requests/:id/updates
// @Summary Add an admin update
// @Description Append an update, optionally transitioning status or opening a form slot
// @Tags Requests
// @Accept json
// @Produce json
// @Param id path string true "Request public ID"
// @Param body body services.AddUpdateInput true "Update to append"
// @Success 201 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /requests/{id}/updates [post]
func (h *RequestHandler) AddUpdate(c *fiber.Ctx) error {
	caller, err := callerFromCtx(c)
	if err != nil {
		return serviceError(c, err, "addUpdate")
	}

	var body services.AddUpdateInput
	if err := c.BodyParser(&body); err != nil {
		return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "portal.validation.input")
	}

	update, err := services.AddUpdate(h.DB, caller, c.Params("id"), body)
	if err != nil {
		return serviceError(c, err, "addUpdate")
	}

	return utils.CreatedResponse(c, updateView(update))
}
