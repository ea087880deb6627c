package handlers

import (
	"strconv"

	"github.com/barangay-konek/portal-api/internal/middleware"
	"github.com/barangay-konek/portal-api/internal/types"
	"github.com/barangay-konek/portal-api/internal/utils"
	"github.com/gofiber/fiber/v2"
)

// callerFromCtx extracts the caller set by the auth middleware.
func callerFromCtx(c *fiber.Ctx) (types.Caller, error) {
	caller, ok := c.Locals(middleware.CallerKey).(types.Caller)
	if !ok || caller.IsAnonymous() {
		return types.Caller{}, types.Unauthorized("portal.authorization", "caller not found in context")
	}
	return caller, nil
}

// parseIDParam parses a numeric path parameter.
func parseIDParam(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil {
		return 0, types.Validation("portal.validation.input", "invalid %s parameter", name)
	}
	return id, nil
}

// serviceError maps a service failure onto the API error envelope.
func serviceError(c *fiber.Ctx, err error, fallbackType string) error {
	if pe, ok := types.AsPortalError(err); ok {
		if pe.Kind == types.KindNotFound {
			return utils.NotFoundResponse(c, pe.Message)
		}
		return utils.ErrorResponse(c, pe.Message, pe.StatusCode(), pe.Type)
	}
	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, fallbackType)
}
