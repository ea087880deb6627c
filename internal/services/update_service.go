package services

import (
	"errors"
	"strings"

	"github.com/barangay-konek/portal-api/internal/models"
	"github.com/barangay-konek/portal-api/internal/types"
	"gorm.io/gorm"
)

// AddUpdateInput is the admin payload for a new update on a request.
// Status is optional; when set, the update also transitions the request.
// A "form" kind opens a form slot of the given FormType. ChannelOpen
// defaults to true; closed means no chat may ever be posted to it.
type AddUpdateInput struct {
	Message     string               `json:"message"`
	Kind        models.UpdateKind    `json:"kind"`
	Status      models.RequestStatus `json:"status"`
	FormType    models.FormType      `json:"formType"`
	ChannelOpen *bool                `json:"channelOpen"`
}

// AddUpdate appends an admin update to a request, optionally transitioning
// its status and opening a form slot. Terminal requests reject any further
// update with Conflict.
func AddUpdate(db *gorm.DB, caller types.Caller, publicID string, in AddUpdateInput) (*models.Update, error) {
	if err := RequireAdmin(caller, "portal.update.add"); err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.Message) == "" {
		return nil, types.Validation("portal.update.add", "missing required field: message")
	}

	kind := in.Kind
	if kind == "" {
		kind = models.UpdateNormal
	}
	switch kind {
	case models.UpdateNormal, models.UpdateUrgent, models.UpdateForm:
	default:
		return nil, types.Validation("portal.update.add", "unknown update kind %q", kind)
	}

	if kind == models.UpdateForm {
		if !in.FormType.Valid() {
			return nil, types.Validation("portal.update.add", "form updates require a valid formType")
		}
	} else if in.FormType != "" {
		return nil, types.Validation("portal.update.add", "formType is only valid for form updates")
	}

	if in.Status != "" && !in.Status.Valid() {
		return nil, types.Validation("portal.update.add", "unknown status %q", in.Status)
	}

	req, err := FindRequestForCaller(db, caller, publicID)
	if err != nil {
		return nil, err
	}
	if req.Status.Terminal() {
		return nil, types.Conflict("portal.update.add", "request %q is already %s", req.PublicID, req.Status)
	}

	channelClosed := false
	if in.ChannelOpen != nil {
		channelClosed = !*in.ChannelOpen
	}
	// A terminal decision closes every channel, including the one carrying
	// the decision itself.
	if in.Status.Terminal() {
		channelClosed = true
	}

	update := &models.Update{
		RequestID:     req.RequestID,
		Message:       in.Message,
		Kind:          kind,
		FormType:      in.FormType,
		ChannelClosed: channelClosed,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if in.Status != "" {
			if err := TransitionStatus(tx, req, in.Status); err != nil {
				return err
			}
		}

		if err := tx.Create(update).Error; err != nil {
			return err
		}

		if kind == models.UpdateForm {
			slot := &models.FormAttachment{
				UpdateID: update.UpdateID,
				FormType: in.FormType,
			}
			if err := tx.Create(slot).Error; err != nil {
				return err
			}
			update.Form = slot
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return update, nil
}

// CloseChannel marks an update's chat channel closed. Closing an already
// closed channel is a deliberate no-op reported as success.
func CloseChannel(db *gorm.DB, caller types.Caller, updateID uint64) error {
	if err := RequireAdmin(caller, "portal.update.close"); err != nil {
		return err
	}

	var update models.Update
	if err := db.First(&update, updateID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return types.NotFound("portal.update", "update %d not found", updateID)
		}
		return err
	}

	if update.ChannelClosed {
		return nil
	}

	return db.Model(&update).Update("channel_closed", true).Error
}

// ListUpdates returns the update thread of a request, oldest first, each
// with its form slot when present.
func ListUpdates(db *gorm.DB, caller types.Caller, publicID string) ([]models.Update, error) {
	req, err := FindRequestForCaller(db, caller, publicID)
	if err != nil {
		return nil, err
	}

	var updates []models.Update
	if err := db.Preload("Form").
		Where("request_id = ?", req.RequestID).
		Order("created_at ASC, update_id ASC").
		Find(&updates).Error; err != nil {
		return nil, err
	}

	return updates, nil
}

// PostChatMessage appends a message to an update's chat channel. Closed
// channels reject the post with Conflict.
func PostChatMessage(db *gorm.DB, caller types.Caller, updateID uint64, body string) (*models.ChatMessage, error) {
	if strings.TrimSpace(body) == "" {
		return nil, types.Validation("portal.chat.post", "missing required field: body")
	}

	update, _, err := FindUpdateForCaller(db, caller, updateID)
	if err != nil {
		return nil, err
	}
	if update.ChannelClosed {
		return nil, types.Conflict("portal.chat.post", "channel for update %d is closed", updateID)
	}

	msg := &models.ChatMessage{
		UpdateID: updateID,
		AuthorID: caller.ID,
		Body:     body,
	}
	if err := db.Create(msg).Error; err != nil {
		return nil, err
	}

	return msg, nil
}

// ListChatMessages returns a channel's messages in creation order, ties
// broken by the store-assigned sequence.
func ListChatMessages(db *gorm.DB, caller types.Caller, updateID uint64) ([]models.ChatMessage, error) {
	if _, _, err := FindUpdateForCaller(db, caller, updateID); err != nil {
		return nil, err
	}

	var messages []models.ChatMessage
	if err := db.Where("update_id = ?", updateID).
		Order("created_at ASC, message_id ASC").
		Find(&messages).Error; err != nil {
		return nil, err
	}

	return messages, nil
}
