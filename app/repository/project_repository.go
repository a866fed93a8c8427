package repository

import (
	"errors"

	"github.com/vietscribe/vietscribe/app/models"
	"gorm.io/gorm"
)

// projectRepository implements the ProjectRepository interface
type projectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new project repository instance
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

// Create creates a new project
func (r *projectRepository) Create(project *models.Project) error {
	return r.db.Create(project).Error
}

// GetByUUID retrieves a project by its public UUID
func (r *projectRepository) GetByUUID(uuid string) (*models.Project, error) {
	var project models.Project
	err := r.db.Where("uuid = ?", uuid).First(&project).Error
	if err != nil {
		return nil, err
	}
	return &project, nil
}

// GetByUserID retrieves a user's projects with pagination
func (r *projectRepository) GetByUserID(userID uint, offset, limit int) ([]models.Project, error) {
	var projects []models.Project
	err := r.db.
		Where("user_id = ?", userID).
		Order("updated_at DESC").
		Offset(offset).Limit(limit).
		Find(&projects).Error
	return projects, err
}

// Update persists project mutations
func (r *projectRepository) Update(project *models.Project) error {
	return r.db.Save(project).Error
}

// Delete soft-deletes a project
func (r *projectRepository) Delete(id uint) error {
	return r.db.Delete(&models.Project{}, id).Error
}

// CountByUserID returns the number of projects owned by a user
func (r *projectRepository) CountByUserID(userID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Project{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// AddSection appends a drafted section to a project
func (r *projectRepository) AddSection(section *models.ProjectSection) error {
	return r.db.Create(section).Error
}

// GetSections returns a project's sections in order
func (r *projectRepository) GetSections(projectID uint) ([]models.ProjectSection, error) {
	var sections []models.ProjectSection
	err := r.db.
		Where("project_id = ?", projectID).
		Order("position ASC").
		Find(&sections).Error
	return sections, err
}

// AddCollaborator links an invited user to a project
func (r *projectRepository) AddCollaborator(collab *models.ProjectCollaborator) error {
	return r.db.Create(collab).Error
}

// GetCollaborators returns the collaborators of a project
func (r *projectRepository) GetCollaborators(projectID uint) ([]models.ProjectCollaborator, error) {
	var collabs []models.ProjectCollaborator
	err := r.db.Where("project_id = ?", projectID).Find(&collabs).Error
	return collabs, err
}

// IsCollaborator reports whether a user is linked to a project
func (r *projectRepository) IsCollaborator(projectID, userID uint) (bool, error) {
	var collab models.ProjectCollaborator
	err := r.db.Where("project_id = ? AND user_id = ?", projectID, userID).First(&collab).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
