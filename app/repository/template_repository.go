package repository

import (
	"github.com/vietscribe/vietscribe/app/models"
	"gorm.io/gorm"
)

// templateRepository implements the TemplateRepository interface
type templateRepository struct {
	db *gorm.DB
}

// NewTemplateRepository creates a new template repository instance
func NewTemplateRepository(db *gorm.DB) TemplateRepository {
	return &templateRepository{db: db}
}

// ListActive returns all active templates
func (r *templateRepository) ListActive() ([]models.Template, error) {
	var templates []models.Template
	err := r.db.Where("is_active = ?", true).Order("category ASC, name ASC").Find(&templates).Error
	return templates, err
}

// GetByID retrieves a template by ID
func (r *templateRepository) GetByID(id uint) (*models.Template, error) {
	var template models.Template
	err := r.db.First(&template, id).Error
	if err != nil {
		return nil, err
	}
	return &template, nil
}
