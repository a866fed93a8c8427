package models

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

const (
	AcademicLevelHighSchool = "high_school"
	AcademicLevelBachelor   = "bachelor"
	AcademicLevelMaster     = "master"
	AcademicLevelPhD        = "phd"
)

// Project is a writing project: a topic, its generated outline, and the
// section drafts the assistant produces over time.
type Project struct {
	ID              uint             `gorm:"primaryKey" json:"id"`
	UUID            string           `gorm:"type:varchar(36);uniqueIndex;not null" json:"uuid"`
	UserID          uint             `gorm:"not null;index" json:"user_id"`
	Title           string           `gorm:"type:varchar(300);not null" json:"title" validate:"required,max=300"`
	Topic           string           `gorm:"type:text" json:"topic"`
	AcademicLevel   string           `gorm:"type:varchar(20);default:'bachelor'" json:"academic_level" validate:"oneof=high_school bachelor master phd"`
	TargetWordCount int              `gorm:"default:0" json:"target_word_count" validate:"min=0,max=200000"`
	Language        string           `gorm:"type:varchar(10);default:'vi'" json:"language"`
	OutlineJSON     string           `gorm:"type:longtext" json:"outline_json"`
	Sections        []ProjectSection `gorm:"foreignKey:ProjectID" json:"sections,omitempty"`
	CreatedAt       time.Time        `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time        `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt       gorm.DeletedAt   `gorm:"index" json:"-"`
}

func (p *Project) Validate() error {
	v := validator.New()

	return v.Struct(p)
}

// ProjectSection is one drafted section of a project, ordered by Position.
type ProjectSection struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index" json:"project_id"`
	Position  int       `gorm:"not null;default:0" json:"position"`
	Title     string    `gorm:"type:varchar(300)" json:"title"`
	Content   string    `gorm:"type:longtext" json:"content"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

const (
	CollaboratorRoleEditor = "editor"
	CollaboratorRoleViewer = "viewer"
)

// ProjectCollaborator links an invited user to a project. Gated by the
// collaboration capability, not metered.
type ProjectCollaborator struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ProjectID uint      `gorm:"not null;index:ux_project_collaborators_pair,unique,priority:1" json:"project_id"`
	UserID    uint      `gorm:"not null;index:ux_project_collaborators_pair,unique,priority:2" json:"user_id"`
	Role      string    `gorm:"type:varchar(20);not null;default:'viewer'" json:"role"`
	InvitedBy uint      `gorm:"not null" json:"invited_by"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// GenerateShareToken returns a random hex token for collaborator invites.
func GenerateShareToken() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
