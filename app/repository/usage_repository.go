package repository

import (
	"time"

	"github.com/vietscribe/vietscribe/app/models"
	"gorm.io/gorm"
)

// usageRepository implements the UsageRepository interface
type usageRepository struct {
	db *gorm.DB
}

// NewUsageRepository creates a new usage repository instance
func NewUsageRepository(db *gorm.DB) UsageRepository {
	return &usageRepository{db: db}
}

// GetOpenRecord returns the record whose period covers now, if any
func (r *usageRepository) GetOpenRecord(userID uint, feature string, now time.Time) (*models.UsageRecord, error) {
	var rec models.UsageRecord
	err := r.db.
		Where("user_id = ? AND feature_kind = ? AND period_end > ?", userID, feature, now).
		Order("period_start DESC").
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// CreateOpen inserts rec unless an open record already exists for the
// user/feature pair, and returns whichever record is open afterwards. The
// insert condition and the insert are one statement, so two concurrent
// first uses cannot both open a period: InnoDB's locking read in the
// INSERT ... SELECT serializes them and the loser's NOT EXISTS sees the
// winner's row.
func (r *usageRepository) CreateOpen(rec *models.UsageRecord, now time.Time) (*models.UsageRecord, error) {
	err := r.db.Exec(
		`INSERT INTO usage_records (user_id, feature_kind, period_start, period_end, usage_count, created_at, updated_at)
		 SELECT ?, ?, ?, ?, 0, ?, ? FROM DUAL
		 WHERE NOT EXISTS (
		   SELECT 1 FROM usage_records
		   WHERE user_id = ? AND feature_kind = ? AND period_end > ?
		 )`,
		rec.UserID, rec.FeatureKind, rec.PeriodStart, rec.PeriodEnd, now, now,
		rec.UserID, rec.FeatureKind, now,
	).Error
	if err != nil {
		return nil, err
	}
	return r.GetOpenRecord(rec.UserID, rec.FeatureKind, now)
}

// IncrementCount bumps the counter in a single UPDATE statement so concurrent
// increments for the same record cannot lose updates, then reloads the value.
func (r *usageRepository) IncrementCount(id uint) (int, error) {
	tx := r.db.Model(&models.UsageRecord{}).
		Where("id = ?", id).
		UpdateColumn("usage_count", gorm.Expr("usage_count + ?", 1))
	if tx.Error != nil {
		return 0, tx.Error
	}
	if tx.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var rec models.UsageRecord
	if err := r.db.Select("usage_count").First(&rec, id).Error; err != nil {
		return 0, err
	}
	return rec.UsageCount, nil
}

// ListOpenByUser returns every open usage record for a user
func (r *usageRepository) ListOpenByUser(userID uint, now time.Time) ([]models.UsageRecord, error) {
	var recs []models.UsageRecord
	err := r.db.
		Where("user_id = ? AND period_end > ?", userID, now).
		Find(&recs).Error
	return recs, err
}
