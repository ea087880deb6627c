package services

import (
	"github.com/barangay-konek/portal-api/internal/models"
	"github.com/barangay-konek/portal-api/internal/types"
	"gorm.io/gorm"
)

var terminalStatuses = []models.RequestStatus{models.StatusApproved, models.StatusRejected}

// ProgressPercent maps a status onto the citizen-facing progress tracker.
// Rejected is the out-of-band terminal branch and carries no percentage; the
// second return is false for it.
func ProgressPercent(s models.RequestStatus) (int, bool) {
	switch s {
	case models.StatusSubmitted:
		return 0, true
	case models.StatusReviewed:
		return 50, true
	case models.StatusApproved:
		return 100, true
	}
	return 0, false
}

// TransitionStatus applies newStatus to the request with an atomic
// precondition on the current status not being terminal, so two admins
// cannot race past the terminal check. Entering a terminal status closes
// every open update channel under the request.
func TransitionStatus(tx *gorm.DB, req *models.Request, newStatus models.RequestStatus) error {
	if !newStatus.Valid() {
		return types.Validation("portal.request.status", "unknown status %q", newStatus)
	}

	res := tx.Model(&models.Request{}).
		Where("request_id = ? AND status NOT IN ?", req.RequestID, terminalStatuses).
		Update("status", newStatus)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return types.Conflict("portal.request.status", "request %q is already %s", req.PublicID, req.Status)
	}

	req.Status = newStatus

	if newStatus.Terminal() {
		if err := closeOpenChannels(tx, req.RequestID); err != nil {
			return err
		}
	}

	return nil
}

// closeOpenChannels closes every still-open update channel under a request.
func closeOpenChannels(tx *gorm.DB, requestID uint64) error {
	return tx.Model(&models.Update{}).
		Where("request_id = ? AND channel_closed = ?", requestID, false).
		Update("channel_closed", true).Error
}
