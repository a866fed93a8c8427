package repository

import (
	"github.com/vietscribe/vietscribe/app/models"
	"gorm.io/gorm"
)

// citationRepository implements the CitationRepository interface
type citationRepository struct {
	db *gorm.DB
}

// NewCitationRepository creates a new citation repository instance
func NewCitationRepository(db *gorm.DB) CitationRepository {
	return &citationRepository{db: db}
}

// Create stores a formatted citation
func (r *citationRepository) Create(citation *models.Citation) error {
	return r.db.Create(citation).Error
}

// GetByProjectID returns all citations attached to a project
func (r *citationRepository) GetByProjectID(projectID uint) ([]models.Citation, error) {
	var citations []models.Citation
	err := r.db.Where("project_id = ?", projectID).Order("created_at ASC").Find(&citations).Error
	return citations, err
}

// GetByUserID returns a user's citations with pagination
func (r *citationRepository) GetByUserID(userID uint, offset, limit int) ([]models.Citation, error) {
	var citations []models.Citation
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&citations).Error
	return citations, err
}

// Delete removes a citation
func (r *citationRepository) Delete(id uint) error {
	return r.db.Delete(&models.Citation{}, id).Error
}
