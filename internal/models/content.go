package models

import (
	"time"
)

// Post is an announcement managed from the admin console.
type Post struct {
	PostID        uint64 `gorm:"primaryKey;autoIncrement"`
	Title         string `gorm:"size:255;not null"`
	Body          string `gorm:"type:text;not null"`
	CoverImageKey string `gorm:"size:255"`
	Published     bool   `gorm:"not null;default:false;index"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Highlight is one homepage carousel entry.
type Highlight struct {
	HighlightID uint64 `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"size:255;not null"`
	ImageKey    string `gorm:"size:255;not null"`
	Link        string `gorm:"size:512"`
	Position    int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Resource is a downloadable file offered on the portal.
type Resource struct {
	ResourceID  uint64 `gorm:"primaryKey;autoIncrement"`
	Title       string `gorm:"size:255;not null"`
	Description string `gorm:"type:text"`
	FileKey     string `gorm:"size:255;not null"`
	Downloads   uint64 `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LayoutSection is one named block of the homepage grid. Position carries the
// drag/drop ordering; Config holds section-specific presentation settings.
type LayoutSection struct {
	SectionID uint64 `gorm:"primaryKey;autoIncrement"`
	Name      string `gorm:"size:255;uniqueIndex;not null"`
	Position  int    `gorm:"not null;default:0"`
	Enabled   bool   `gorm:"not null;default:true"`
	Config    *JSON
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Post) TableName() string {
	return "content_posts"
}

func (Highlight) TableName() string {
	return "content_highlights"
}

func (Resource) TableName() string {
	return "content_resources"
}

func (LayoutSection) TableName() string {
	return "content_layout_sections"
}
