package handlers

import (
	"encoding/json"
	"time"

	"github.com/barangay-konek/portal-api/internal/models"
	"github.com/barangay-konek/portal-api/internal/services"
	"github.com/barangay-konek/portal-api/internal/storage"
)

// RequestView is the API shape of a request: public id only, picture key
// resolved to a URL, progress percentage where the status carries one.
type RequestView struct {
	ID              string       `json:"id"`
	Type            string       `json:"type"`
	Details         string       `json:"details,omitempty"`
	BusinessName    string       `json:"businessName,omitempty"`
	BusinessAddress string       `json:"businessAddress,omitempty"`
	PictureURL      string       `json:"pictureUrl,omitempty"`
	Priority        bool         `json:"priority"`
	Status          string       `json:"status"`
	Progress        *int         `json:"progress"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
	Updates         []UpdateView `json:"updates,omitempty"`
}

// UpdateView is the API shape of one update thread entry.
type UpdateView struct {
	ID            uint64    `json:"id"`
	Message       string    `json:"message"`
	Kind          string    `json:"kind"`
	FormType      string    `json:"formType,omitempty"`
	ChannelClosed bool      `json:"channelClosed"`
	FormSubmitted *bool     `json:"formSubmitted,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FormView is the API shape of a form slot, fields echoed verbatim once filled.
type FormView struct {
	ID          uint64          `json:"id"`
	UpdateID    uint64          `json:"updateId"`
	FormType    string          `json:"formType"`
	Submitted   bool            `json:"submitted"`
	SubmittedAt *time.Time      `json:"submittedAt,omitempty"`
	Fields      json.RawMessage `json:"fields,omitempty"`
}

// ChatMessageView is the API shape of one chat entry.
type ChatMessageView struct {
	ID        uint64    `json:"id"`
	AuthorID  string    `json:"authorId"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
}

func requestView(req *models.Request, files storage.Resolver) RequestView {
	view := RequestView{
		ID:              req.PublicID,
		Type:            req.Type,
		Details:         req.Details,
		BusinessName:    req.BusinessName,
		BusinessAddress: req.BusinessAddress,
		PictureURL:      files.URL(req.PictureKey),
		Priority:        req.Priority,
		Status:          string(req.Status),
		CreatedAt:       req.CreatedAt,
		UpdatedAt:       req.UpdatedAt,
	}
	if pct, ok := services.ProgressPercent(req.Status); ok {
		view.Progress = &pct
	}
	for i := range req.Updates {
		view.Updates = append(view.Updates, updateView(&req.Updates[i]))
	}
	return view
}

func updateView(u *models.Update) UpdateView {
	view := UpdateView{
		ID:            u.UpdateID,
		Message:       u.Message,
		Kind:          string(u.Kind),
		FormType:      string(u.FormType),
		ChannelClosed: u.ChannelClosed,
		CreatedAt:     u.CreatedAt,
	}
	if u.Form != nil {
		submitted := u.Form.Submitted()
		view.FormSubmitted = &submitted
	}
	return view
}

func formView(f *models.FormAttachment) FormView {
	view := FormView{
		ID:          f.FormID,
		UpdateID:    f.UpdateID,
		FormType:    string(f.FormType),
		Submitted:   f.Submitted(),
		SubmittedAt: f.SubmittedAt,
	}
	if f.Fields != nil {
		view.Fields = json.RawMessage(f.Fields.JSON)
	}
	return view
}

func chatMessageView(m *models.ChatMessage) ChatMessageView {
	return ChatMessageView{
		ID:        m.MessageID,
		AuthorID:  m.AuthorID,
		Body:      m.Body,
		CreatedAt: m.CreatedAt,
	}
}
