package repository

import (
	"time"

	"github.com/vietscribe/vietscribe/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// CreateOrder stores a new payment order
func (r *paymentRepository) CreateOrder(order *models.PaymentOrder) error {
	return r.db.Create(order).Error
}

// GetOrderByCode retrieves an order by its public code
func (r *paymentRepository) GetOrderByCode(code string) (*models.PaymentOrder, error) {
	var order models.PaymentOrder
	err := r.db.Where("order_code = ?", code).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// SaveOrder persists order mutations
func (r *paymentRepository) SaveOrder(order *models.PaymentOrder) error {
	return r.db.Save(order).Error
}

// ListOrdersByStatus returns orders in a given status with pagination
func (r *paymentRepository) ListOrdersByStatus(status string, offset, limit int) ([]models.PaymentOrder, error) {
	var orders []models.PaymentOrder
	err := r.db.
		Where("status = ?", status).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error
	return orders, err
}

// CreateWebhookEventIfNotExists inserts the event unless the provider already
// delivered it; the bool reports whether this call created the row.
func (r *paymentRepository) CreateWebhookEventIfNotExists(event *models.PaymentWebhookEvent) (bool, *models.PaymentWebhookEvent, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.PaymentWebhookEvent
	if err := r.db.Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

// MarkWebhookProcessed marks an event as processed and stores an optional error
func (r *paymentRepository) MarkWebhookProcessed(id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.Model(&models.PaymentWebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
