package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/vietscribe/vietscribe/app/models"
	"gorm.io/gorm"
)

// userRepository implements the UserRepository interface
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository instance
func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create creates a new user in the database
func (r *userRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by their ID
func (r *userRepository) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := r.db.First(&user, id).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetBySubject retrieves a user by their identity provider subject
func (r *userRepository) GetBySubject(subject string) (*models.User, error) {
	var user models.User
	err := r.db.Where("subject = ?", subject).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email address
func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetOrCreateBySubject resolves a verified token subject to a local user,
// provisioning the row on first sight.
func (r *userRepository) GetOrCreateBySubject(subject, email, name string) (*models.User, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return nil, gorm.ErrRecordNotFound
	}

	user, err := r.GetBySubject(subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user = &models.User{
		Subject: subject,
		Email:   email,
		Name:    name,
		Role:    models.ROLE_USER,
		Status:  models.STATUS_ACTIVE,
	}
	if err := r.db.Create(user).Error; err != nil {
		// Concurrent first request may have created the row already.
		if existing, lookupErr := r.GetBySubject(subject); lookupErr == nil {
			return existing, nil
		}
		return nil, err
	}
	return user, nil
}

// Update updates an existing user
func (r *userRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// TouchLastLogin updates the last-login timestamp best-effort
func (r *userRepository) TouchLastLogin(id uint) error {
	now := time.Now()
	return r.db.Model(&models.User{}).Where("id = ?", id).Update("last_login_at", now).Error
}

// List retrieves users with pagination
func (r *userRepository) List(offset, limit int) ([]models.User, error) {
	var users []models.User
	err := r.db.Offset(offset).Limit(limit).Order("created_at DESC").Find(&users).Error
	return users, err
}

// Count returns the total number of users
func (r *userRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.User{}).Count(&count).Error
	return count, err
}
