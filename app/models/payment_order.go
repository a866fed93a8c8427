package models

import "time"

// Payment provider constants. MoMo, ZaloPay and bank transfers are confirmed
// manually by an admin; Stripe confirms through its webhook.
const (
	PaymentMethodMoMo         = "momo"
	PaymentMethodZaloPay      = "zalopay"
	PaymentMethodBankTransfer = "bank_transfer"
	PaymentMethodStripe       = "stripe"
)

const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusCanceled = "canceled"
)

// PaymentOrder records a user's intent to purchase a tier. Confirming an
// order (webhook or admin action) drives the subscription lifecycle; the
// order itself never grants entitlements.
type PaymentOrder struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	OrderCode    string     `gorm:"type:varchar(64);not null;uniqueIndex" json:"order_code"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	Tier         string     `gorm:"type:varchar(50);not null" json:"tier"`
	BillingCycle string     `gorm:"type:varchar(16);not null;default:'monthly'" json:"billing_cycle"`
	AmountVND    int64      `gorm:"not null" json:"amount_vnd"`
	Method       string     `gorm:"type:varchar(20);not null;index" json:"method"`
	Status       string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ProviderRef  string     `gorm:"type:varchar(191);default:''" json:"provider_ref"`
	PaidAt       *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	AppliedAt    *time.Time `gorm:"type:timestamp;default:null" json:"applied_at,omitempty"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
