package models

import "time"

const (
	CitationStyleAPA     = "apa"
	CitationStyleMLA     = "mla"
	CitationStyleChicago = "chicago"
	CitationStyleIEEE    = "ieee"
)

const (
	SourceTypeBook    = "book"
	SourceTypeArticle = "article"
	SourceTypeWebsite = "website"
	SourceTypeThesis  = "thesis"
)

// Citation is a formatted bibliography entry attached to a project.
type Citation struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProjectID  uint      `gorm:"index" json:"project_id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	SourceType string    `gorm:"type:varchar(20);not null;default:'article'" json:"source_type"`
	Title      string    `gorm:"type:varchar(500);not null" json:"title"`
	Authors    string    `gorm:"type:varchar(500)" json:"authors"`
	Year       int       `gorm:"default:0" json:"year"`
	Publisher  string    `gorm:"type:varchar(300)" json:"publisher"`
	URL        string    `gorm:"type:varchar(1000)" json:"url"`
	Style      string    `gorm:"type:varchar(20);not null;default:'apa'" json:"style"`
	Formatted  string    `gorm:"type:text" json:"formatted"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
