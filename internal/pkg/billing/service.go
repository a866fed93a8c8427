package billing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/app/repository"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

var (
	// ErrOrderNotFound is returned when an order code resolves to nothing.
	ErrOrderNotFound = errors.New("payment order not found")
	// ErrOrderNotPending is returned when confirming or canceling an order
	// that already reached a terminal state.
	ErrOrderNotPending = errors.New("payment order is not pending")
)

// Service owns the subscription lifecycle and payment orders. It is the only
// writer of subscription rows; entitlement checks read through Current.
type Service struct {
	subs     repository.SubscriptionRepository
	payments repository.PaymentRepository
	now      func() time.Time
}

// NewService creates a billing service from injected repositories.
func NewService(subs repository.SubscriptionRepository, payments repository.PaymentRepository) *Service {
	return &Service{subs: subs, payments: payments, now: time.Now}
}

// Current returns the user's subscription, creating an implicit free active
// one on first touch. Expiry is evaluated here, lazily: a paid subscription
// whose end date has passed is flipped to expired before being returned, so
// readers never see a stale active tier. There is no background sweep.
func (s *Service) Current(ctx context.Context, userID uint) (*models.Subscription, error) {
	_ = ctx
	sub, err := s.subs.GetByUserID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		sub = &models.Subscription{
			UserID: userID,
			Tier:   string(plans.TierFree),
			Status: models.SubscriptionStatusActive,
		}
		if createErr := s.subs.Create(sub); createErr != nil {
			// A concurrent first touch may have created the row; adopt it.
			if existing, getErr := s.subs.GetByUserID(userID); getErr == nil {
				return s.lapseIfNeeded(existing)
			}
			return nil, createErr
		}
		return sub, nil
	}
	if err != nil {
		return nil, err
	}
	return s.lapseIfNeeded(sub)
}

func (s *Service) lapseIfNeeded(sub *models.Subscription) (*models.Subscription, error) {
	if !sub.HasLapsed(s.now()) {
		return sub, nil
	}
	sub.Status = models.SubscriptionStatusExpired
	if err := s.subs.Save(sub); err != nil {
		return nil, err
	}
	log.Printf("[Billing] subscription expired user=%d tier=%s ended=%v", sub.UserID, sub.Tier, sub.EndDate)
	return sub, nil
}

// ConfirmPayment applies a successful payment to the user's subscription.
// First payment activates, renewal extends from the current end date, and a
// payment after expiry reactivates with a fresh period starting now. Open
// usage records are never touched; a new tier applies prospectively.
func (s *Service) ConfirmPayment(ctx context.Context, userID uint, tier plans.Tier, cycle string) (*models.Subscription, error) {
	sub, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	cycle = models.NormalizeBillingCycle(cycle)

	start := now
	base := now
	if sub.Status == models.SubscriptionStatusActive &&
		sub.Tier == string(tier) && sub.BillingCycle == cycle &&
		sub.StartDate != nil && sub.EndDate != nil && sub.EndDate.After(now) {
		// Renewal of the same plan extends the running period.
		start = *sub.StartDate
		base = *sub.EndDate
	}

	sub.Tier = string(tier)
	sub.BillingCycle = cycle
	sub.Status = models.SubscriptionStatusActive
	sub.StartDate = &start
	end := sub.NextPeriodEnd(base)
	sub.EndDate = &end
	sub.AutoRenew = true

	if err := s.subs.Save(sub); err != nil {
		return nil, err
	}
	log.Printf("[Billing] payment confirmed user=%d tier=%s cycle=%s until=%s", userID, tier, cycle, end.Format(time.RFC3339))
	return sub, nil
}

// ChangeTier switches the subscription's tier in place without changing its
// billing period or status. Quotas for the new tier take effect on the next
// entitlement check only.
func (s *Service) ChangeTier(ctx context.Context, userID uint, tier plans.Tier) (*models.Subscription, error) {
	sub, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sub.Tier == string(tier) {
		return sub, nil
	}
	sub.Tier = string(tier)
	if err := s.subs.Save(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// CancelAutoRenew lets the paid period run out. The subscription stays active
// until its end date, then lapses to expired on the next read.
func (s *Service) CancelAutoRenew(ctx context.Context, userID uint) (*models.Subscription, error) {
	sub, err := s.Current(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sub.AutoRenew {
		return sub, nil
	}
	sub.AutoRenew = false
	if err := s.subs.Save(sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// CreateOrder opens a pending payment order for a paid tier. The order code
// is what the user puts in their transfer note and what webhooks reference.
func (s *Service) CreateOrder(ctx context.Context, userID uint, tier plans.Tier, cycle, method string) (*models.PaymentOrder, error) {
	_ = ctx
	amount, err := PriceVND(tier, cycle)
	if err != nil {
		return nil, err
	}
	order := &models.PaymentOrder{
		OrderCode:    newOrderCode(),
		UserID:       userID,
		Tier:         string(tier),
		BillingCycle: models.NormalizeBillingCycle(cycle),
		AmountVND:    amount,
		Method:       method,
		Status:       models.PaymentStatusPending,
	}
	if err := s.payments.CreateOrder(order); err != nil {
		return nil, err
	}
	log.Printf("[Billing] order created code=%s user=%d tier=%s amount=%d", order.OrderCode, userID, tier, amount)
	return order, nil
}

// ConfirmOrder marks a pending order paid and applies it to the subscription.
// Marking paid and applying the payment are tracked separately: a paid order
// whose activation failed mid-way is retried on the next confirmation, while a
// paid-and-applied order is a no-op, so webhook redeliveries and a webhook
// racing an admin click both converge on exactly one activation.
func (s *Service) ConfirmOrder(ctx context.Context, orderCode, providerRef string) (*models.PaymentOrder, error) {
	order, err := s.payments.GetOrderByCode(orderCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	switch order.Status {
	case models.PaymentStatusPending:
		now := s.now()
		order.Status = models.PaymentStatusPaid
		order.PaidAt = &now
		if providerRef != "" {
			order.ProviderRef = providerRef
		}
		if err := s.payments.SaveOrder(order); err != nil {
			return nil, err
		}
	case models.PaymentStatusPaid:
		if order.AppliedAt != nil {
			return order, nil
		}
		log.Printf("[Billing] retrying activation for paid order code=%s user=%d", order.OrderCode, order.UserID)
	default:
		return nil, fmt.Errorf("%w: %s is %s", ErrOrderNotPending, orderCode, order.Status)
	}

	if _, err := s.ConfirmPayment(ctx, order.UserID, plans.NormalizeTier(order.Tier), order.BillingCycle); err != nil {
		return nil, err
	}
	applied := s.now()
	order.AppliedAt = &applied
	if err := s.payments.SaveOrder(order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelOrder abandons a pending order.
func (s *Service) CancelOrder(ctx context.Context, orderCode string) (*models.PaymentOrder, error) {
	_ = ctx
	order, err := s.payments.GetOrderByCode(orderCode)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	if order.Status != models.PaymentStatusPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrOrderNotPending, orderCode, order.Status)
	}
	order.Status = models.PaymentStatusCanceled
	return order, s.payments.SaveOrder(order)
}

// ListPendingOrders returns pending orders for the admin confirmation queue.
func (s *Service) ListPendingOrders(ctx context.Context, offset, limit int) ([]models.PaymentOrder, error) {
	_ = ctx
	return s.payments.ListOrdersByStatus(models.PaymentStatusPending, offset, limit)
}

// RecordWebhookEvent persists a provider webhook payload idempotently. The
// returned bool is false when the event was already stored, in which case the
// caller must not process it again. Events without a provider event ID are
// deduplicated by payload hash.
func (s *Service) RecordWebhookEvent(ctx context.Context, provider, providerEventID, eventType, payloadJSON string, signatureValid bool) (bool, *models.PaymentWebhookEvent, error) {
	_ = ctx
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return false, nil, errors.New("provider is required")
	}
	eventID := strings.TrimSpace(providerEventID)
	if eventID == "" {
		sum := sha256.Sum256([]byte(payloadJSON))
		eventID = "hash:" + hex.EncodeToString(sum[:])
	}
	event := &models.PaymentWebhookEvent{
		Provider:        provider,
		ProviderEventID: eventID,
		EventType:       strings.TrimSpace(eventType),
		PayloadJSON:     payloadJSON,
		SignatureValid:  signatureValid,
	}
	return s.payments.CreateWebhookEventIfNotExists(event)
}

// MarkWebhookProcessed records the processing outcome for a stored event.
func (s *Service) MarkWebhookProcessed(ctx context.Context, eventID uint, processingErr error) error {
	_ = ctx
	if eventID == 0 {
		return errors.New("webhook event id is required")
	}
	errMsg := ""
	if processingErr != nil {
		errMsg = processingErr.Error()
	}
	return s.payments.MarkWebhookProcessed(eventID, errMsg)
}

func newOrderCode() string {
	return "VS-" + strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:12])
}
