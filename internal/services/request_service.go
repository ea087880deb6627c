package services

import (
	"strings"

	"github.com/barangay-konek/portal-api/internal/models"
	"github.com/barangay-konek/portal-api/internal/types"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/hints"
)

// BusinessPermitType is the request type that carries the structured
// business sub-fields instead of free-text details.
const BusinessPermitType = "business-permit"

// CreateRequestInput is the citizen-facing creation payload.
type CreateRequestInput struct {
	Type            string `json:"type"`
	Details         string `json:"details"`
	BusinessName    string `json:"businessName"`
	BusinessAddress string `json:"businessAddress"`
	PictureKey      string `json:"pictureKey"`
	Priority        bool   `json:"priority"`
}

// CreateRequest files a new request as the caller. Only approved residents
// may file; priority requests are capped at priorityLimit non-terminal ones
// per citizen.
func CreateRequest(db *gorm.DB, caller types.Caller, priorityLimit int, in CreateRequestInput) (*models.Request, error) {
	if caller.IsAnonymous() {
		return nil, types.Unauthorized("portal.request.create", "sign in required")
	}
	if !caller.Approved {
		return nil, types.Unauthorized("portal.request.create", "account is pending approval")
	}

	in.Type = strings.TrimSpace(in.Type)
	if in.Type == "" {
		return nil, types.Validation("portal.request.create", "missing required field: type")
	}

	if in.Type == BusinessPermitType {
		if strings.TrimSpace(in.BusinessName) == "" || strings.TrimSpace(in.BusinessAddress) == "" {
			return nil, types.Validation("portal.request.create",
				"business permit requests require businessName and businessAddress")
		}
	} else {
		if in.BusinessName != "" || in.BusinessAddress != "" {
			return nil, types.Validation("portal.request.create",
				"business fields are only valid for %s requests", BusinessPermitType)
		}
		if strings.TrimSpace(in.Details) == "" {
			return nil, types.Validation("portal.request.create", "missing required field: details")
		}
	}

	req := &models.Request{
		PublicID:        uuid.NewString(),
		RequesterID:     caller.ID,
		Type:            in.Type,
		Details:         in.Details,
		BusinessName:    in.BusinessName,
		BusinessAddress: in.BusinessAddress,
		PictureKey:      in.PictureKey,
		Priority:        in.Priority,
		Status:          models.StatusSubmitted,
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if in.Priority {
			var open int64
			if err := tx.Model(&models.Request{}).
				Where("requester_id = ? AND priority = ? AND status NOT IN ?",
					caller.ID, true, terminalStatuses).
				Count(&open).Error; err != nil {
				return err
			}
			if open >= int64(priorityLimit) {
				return types.Conflict("portal.request.priority",
					"priority request limit reached (%d open)", priorityLimit)
			}
		}

		return tx.Create(req).Error
	})
	if err != nil {
		return nil, err
	}

	return req, nil
}

// ListRequestsForCaller lists every request an admin may see, or the
// caller's own. Priority requests sort first, newest first within each band.
func ListRequestsForCaller(db *gorm.DB, caller types.Caller) ([]models.Request, error) {
	if caller.IsAnonymous() {
		return nil, types.Unauthorized("portal.request.list", "sign in required")
	}

	// Priority band first, newest first within each band. The CASE keeps the
	// bool comparison parameter-bound so every dialect renders it natively.
	query := db.Clauses(
		hints.CommentBefore("select", "portal:request-list"),
		clause.OrderBy{Expression: clause.Expr{
			SQL:  "CASE WHEN priority = ? THEN 0 ELSE 1 END, created_at DESC",
			Vars: []interface{}{true},
		}},
	)

	if !caller.IsAdmin() {
		query = query.Where("requester_id = ?", caller.ID)
	}

	var requests []models.Request
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}

	return requests, nil
}

// GetRequestDetail loads a request with its full update thread, gated.
func GetRequestDetail(db *gorm.DB, caller types.Caller, publicID string) (*models.Request, error) {
	req, err := FindRequestForCaller(db, caller, publicID)
	if err != nil {
		return nil, err
	}

	if err := db.Preload("Updates", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("created_at ASC, update_id ASC")
	}).Preload("Updates.Form").
		First(req, req.RequestID).Error; err != nil {
		return nil, err
	}

	return req, nil
}
