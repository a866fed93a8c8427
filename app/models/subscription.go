package models

import (
	"time"
)

const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"
	SubscriptionStatusExpired  = "expired"
)

const (
	BillingCycleMonthly = "monthly"
	BillingCycleYearly  = "yearly"
)

// NormalizeBillingCycle maps arbitrary input to a known cycle, defaulting to monthly.
func NormalizeBillingCycle(cycle string) string {
	if cycle == BillingCycleYearly {
		return BillingCycleYearly
	}
	return BillingCycleMonthly
}

// Subscription is the single source of truth for a user's tier. One row per
// user; payment confirmations mutate it, expiry is evaluated lazily at read
// time via HasLapsed.
type Subscription struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"uniqueIndex;not null" json:"user_id"`
	Tier         string     `gorm:"type:varchar(50);not null;default:'free';index" json:"tier"`
	BillingCycle string     `gorm:"type:varchar(16);not null;default:'monthly'" json:"billing_cycle"`
	StartDate    *time.Time `gorm:"type:timestamp;default:null" json:"start_date,omitempty"`
	EndDate      *time.Time `gorm:"type:timestamp;default:null" json:"end_date,omitempty"`
	AutoRenew    bool       `gorm:"default:false" json:"auto_renew"`
	Status       string     `gorm:"type:varchar(32);not null;default:'active';index" json:"status"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// HasLapsed reports whether an active subscription's paid period has ended.
// Free subscriptions carry no end date and never lapse.
func (s *Subscription) HasLapsed(now time.Time) bool {
	return s.Status == SubscriptionStatusActive && s.EndDate != nil && s.EndDate.Before(now)
}

// NextPeriodEnd returns the end of a billing period starting at from.
func (s *Subscription) NextPeriodEnd(from time.Time) time.Time {
	if s.BillingCycle == BillingCycleYearly {
		return from.AddDate(1, 0, 0)
	}
	return from.AddDate(0, 1, 0)
}
