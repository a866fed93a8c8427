package models

import "time"

// UsageRecord holds the per-user, per-feature counter for one billing-aligned
// period. Exactly one open record (period_end in the future) exists per
// user/feature pair; rows are created lazily on first use and superseded when
// the period rolls over. The counter is mutated only through the usage
// repository's atomic increment.
type UsageRecord struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      uint      `gorm:"not null;index:ux_usage_records_user_feature_period,unique,priority:1" json:"user_id"`
	FeatureKind string    `gorm:"type:varchar(50);not null;index:ux_usage_records_user_feature_period,unique,priority:2" json:"feature_kind"`
	PeriodStart time.Time `gorm:"type:timestamp;not null;index:ux_usage_records_user_feature_period,unique,priority:3" json:"period_start"`
	PeriodEnd   time.Time `gorm:"type:timestamp;not null;index" json:"period_end"`
	UsageCount  int       `gorm:"not null;default:0" json:"usage_count"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// IsOpen reports whether the record's period covers now. The start is
// inclusive and the end exclusive, matching the open-record query: at the
// exact rollover moment the record is already closed.
func (r *UsageRecord) IsOpen(now time.Time) bool {
	return r.PeriodEnd.After(now) && !r.PeriodStart.After(now)
}
