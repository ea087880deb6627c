package services

import (
	"errors"

	"github.com/barangay-konek/portal-api/internal/models"
	"github.com/barangay-konek/portal-api/internal/types"
	"gorm.io/gorm"
)

// CanAccessRequest is the pure gate check: admins see everything, citizens
// only what they authored, anonymous callers nothing.
func CanAccessRequest(caller types.Caller, req *models.Request) bool {
	if caller.IsAnonymous() {
		return false
	}
	return caller.IsAdmin() || req.RequesterID == caller.ID
}

// FindRequestForCaller loads a request by its public id and applies the
// access gate. A request the caller may not see reports NotFound, never
// Unauthorized, so existence does not leak to non-owners.
func FindRequestForCaller(db *gorm.DB, caller types.Caller, publicID string) (*models.Request, error) {
	if caller.IsAnonymous() {
		return nil, types.Unauthorized("portal.authorization.user", "sign in required")
	}

	var req models.Request
	if err := db.Where("public_id = ?", publicID).First(&req).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("portal.request", "request %q not found", publicID)
		}
		return nil, err
	}

	if !CanAccessRequest(caller, &req) {
		return nil, types.NotFound("portal.request", "request %q not found", publicID)
	}

	return &req, nil
}

// FindUpdateForCaller loads an update together with its owning request and
// applies the access gate through the parent. Same NotFound collapse as
// FindRequestForCaller.
func FindUpdateForCaller(db *gorm.DB, caller types.Caller, updateID uint64) (*models.Update, *models.Request, error) {
	if caller.IsAnonymous() {
		return nil, nil, types.Unauthorized("portal.authorization.user", "sign in required")
	}

	var update models.Update
	if err := db.First(&update, updateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, types.NotFound("portal.update", "update %d not found", updateID)
		}
		return nil, nil, err
	}

	var req models.Request
	if err := db.First(&req, update.RequestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, types.NotFound("portal.update", "update %d not found", updateID)
		}
		return nil, nil, err
	}

	if !CanAccessRequest(caller, &req) {
		return nil, nil, types.NotFound("portal.update", "update %d not found", updateID)
	}

	return &update, &req, nil
}

// RequireAdmin gates admin-only mutations.
func RequireAdmin(caller types.Caller, errorType string) error {
	if !caller.IsAdmin() {
		return types.Unauthorized(errorType, "admin role required")
	}
	return nil
}
