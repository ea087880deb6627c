package models

import (
	"time"
)

// RequestStatus is the lifecycle state of a citizen request.
type RequestStatus string

const (
	StatusSubmitted RequestStatus = "submitted"
	StatusReviewed  RequestStatus = "reviewed"
	StatusApproved  RequestStatus = "approved"
	StatusRejected  RequestStatus = "rejected"
)

// Terminal reports whether the status permits no further mutation.
func (s RequestStatus) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Valid reports whether s is one of the four known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case StatusSubmitted, StatusReviewed, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// UpdateKind classifies an admin update on a request.
type UpdateKind string

const (
	UpdateNormal UpdateKind = "normal"
	UpdateUrgent UpdateKind = "urgent"
	UpdateForm   UpdateKind = "form"
)

// FormType selects the certificate a form slot feeds.
type FormType string

const (
	FormResidence FormType = "residence"
	FormIndigency FormType = "indigency"
	FormClearance FormType = "clearance"
)

// Valid reports whether t is a known form type.
func (t FormType) Valid() bool {
	switch t {
	case FormResidence, FormIndigency, FormClearance:
		return true
	}
	return false
}

// Request is a citizen-submitted service ticket (document, blotter, business
// permit, or free-form). Business permit requests carry the structured
// business sub-fields; Details holds free text for everything else.
type Request struct {
	RequestID       uint64        `gorm:"primaryKey;autoIncrement"`
	PublicID        string        `gorm:"type:char(36);uniqueIndex;not null"`
	RequesterID     string        `gorm:"type:char(36);not null;index"`
	Type            string        `gorm:"size:255;not null"`
	Details         string        `gorm:"type:text"`
	BusinessName    string        `gorm:"size:255"`
	BusinessAddress string        `gorm:"size:255"`
	PictureKey      string        `gorm:"size:255"`
	Priority        bool          `gorm:"not null;default:false"`
	Status          RequestStatus `gorm:"size:16;not null;default:'submitted';index"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	Updates         []Update `gorm:"foreignKey:RequestID;constraint:OnDelete:CASCADE"`
}

// Update is an admin-authored log entry on a request. A "form" update opens
// exactly one form slot; every update scopes a chat channel that stays open
// until closed explicitly or the request goes terminal.
type Update struct {
	UpdateID      uint64     `gorm:"primaryKey;autoIncrement"`
	RequestID     uint64     `gorm:"not null;index"`
	Message       string     `gorm:"type:text;not null"`
	Kind          UpdateKind `gorm:"size:16;not null;default:'normal'"`
	FormType      FormType   `gorm:"size:16"`
	ChannelClosed bool       `gorm:"not null;default:false"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Messages      []ChatMessage   `gorm:"foreignKey:UpdateID;constraint:OnDelete:CASCADE"`
	Form          *FormAttachment `gorm:"foreignKey:UpdateID;constraint:OnDelete:CASCADE"`
}

// ChatMessage is one append-only entry in an update's chat channel.
type ChatMessage struct {
	MessageID uint64 `gorm:"primaryKey;autoIncrement"`
	UpdateID  uint64 `gorm:"not null;index"`
	AuthorID  string `gorm:"type:char(36);not null"`
	Body      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}

// FormAttachment is a form slot keyed to one update. Fields stays null until
// the citizen submits; SubmittedAt marks the slot write-once complete.
type FormAttachment struct {
	FormID      uint64   `gorm:"primaryKey;autoIncrement"`
	UpdateID    uint64   `gorm:"uniqueIndex;not null"`
	FormType    FormType `gorm:"size:16;not null"`
	Fields      *JSON
	SubmittedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Submitted reports whether the slot holds a submission.
func (f *FormAttachment) Submitted() bool {
	return f.SubmittedAt != nil
}

func (Request) TableName() string {
	return "requests"
}

func (Update) TableName() string {
	return "request_updates"
}

func (ChatMessage) TableName() string {
	return "request_chat_messages"
}

func (FormAttachment) TableName() string {
	return "request_form_attachments"
}
