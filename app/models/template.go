package models

import "time"

// Template is a seeded outline skeleton (essay, thesis chapter, research
// proposal, ...) users can instantiate into a new project.
type Template struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(200);not null" json:"name"`
	NameVi      string    `gorm:"type:varchar(200);not null" json:"name_vi"`
	Description string    `gorm:"type:text" json:"description"`
	Category    string    `gorm:"type:varchar(50);not null;index" json:"category"`
	OutlineJSON string    `gorm:"type:longtext;not null" json:"outline_json"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
