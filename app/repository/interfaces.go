package repository

import (
	"time"

	"github.com/vietscribe/vietscribe/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetBySubject(subject string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetOrCreateBySubject(subject, email, name string) (*models.User, error)
	Update(user *models.User) error
	TouchLastLogin(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
}

// SubscriptionRepository defines the interface for subscription persistence
type SubscriptionRepository interface {
	GetByUserID(userID uint) (*models.Subscription, error)
	Create(sub *models.Subscription) error
	Save(sub *models.Subscription) error
}

// UsageRepository defines the interface for usage record persistence. The
// increment is a single-statement counter update; callers never read, add and
// write back.
type UsageRepository interface {
	GetOpenRecord(userID uint, feature string, now time.Time) (*models.UsageRecord, error)
	CreateOpen(rec *models.UsageRecord, now time.Time) (*models.UsageRecord, error)
	IncrementCount(id uint) (int, error)
	ListOpenByUser(userID uint, now time.Time) ([]models.UsageRecord, error)
}

// ProjectRepository defines the interface for writing-project persistence
type ProjectRepository interface {
	Create(project *models.Project) error
	GetByUUID(uuid string) (*models.Project, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Project, error)
	Update(project *models.Project) error
	Delete(id uint) error
	CountByUserID(userID uint) (int64, error)
	AddSection(section *models.ProjectSection) error
	GetSections(projectID uint) ([]models.ProjectSection, error)
	AddCollaborator(collab *models.ProjectCollaborator) error
	GetCollaborators(projectID uint) ([]models.ProjectCollaborator, error)
	IsCollaborator(projectID, userID uint) (bool, error)
}

// CitationRepository defines the interface for citation persistence
type CitationRepository interface {
	Create(citation *models.Citation) error
	GetByProjectID(projectID uint) ([]models.Citation, error)
	GetByUserID(userID uint, offset, limit int) ([]models.Citation, error)
	Delete(id uint) error
}

// TemplateRepository defines the interface for template lookup
type TemplateRepository interface {
	ListActive() ([]models.Template, error)
	GetByID(id uint) (*models.Template, error)
}

// PaymentRepository defines the interface for payment orders and webhook
// event deduplication
type PaymentRepository interface {
	CreateOrder(order *models.PaymentOrder) error
	GetOrderByCode(code string) (*models.PaymentOrder, error)
	SaveOrder(order *models.PaymentOrder) error
	ListOrdersByStatus(status string, offset, limit int) ([]models.PaymentOrder, error)
	CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error)
	MarkWebhookProcessed(id uint, processingError string) error
}

// Repositories holds all repository instances
type Repositories struct {
	User         UserRepository
	Subscription SubscriptionRepository
	Usage        UsageRepository
	Project      ProjectRepository
	Citation     CitationRepository
	Template     TemplateRepository
	Payment      PaymentRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:         NewUserRepository(db),
		Subscription: NewSubscriptionRepository(db),
		Usage:        NewUsageRepository(db),
		Project:      NewProjectRepository(db),
		Citation:     NewCitationRepository(db),
		Template:     NewTemplateRepository(db),
		Payment:      NewPaymentRepository(db),
	}
}
