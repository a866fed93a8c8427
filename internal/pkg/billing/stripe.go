package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/client"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/internal/pkg/env"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

// StripeService creates checkout sessions for card payments and applies
// verified webhook events to payment orders. When STRIPE_SECRET_KEY is not
// set the constructor returns nil and card payments are simply unavailable;
// callers must tolerate a nil service.
type StripeService struct {
	billing       *Service
	webhookSecret string
	successURL    string
	cancelURL     string
	sc            *client.API
}

// NewStripeFromEnv returns a configured service or nil when the secret key
// is missing.
func NewStripeFromEnv(billing *Service) *StripeService {
	key := env.GetEnv("STRIPE_SECRET_KEY", "")
	if key == "" {
		return nil
	}
	sc := &client.API{}
	sc.Init(key, nil)
	return &StripeService{
		billing:       billing,
		webhookSecret: env.GetEnv("STRIPE_WEBHOOK_SECRET", ""),
		successURL:    env.GetEnv("STRIPE_SUCCESS_URL", "https://vietscribe.vn/payment/success"),
		cancelURL:     env.GetEnv("STRIPE_CANCEL_URL", "https://vietscribe.vn/payment/cancel"),
		sc:            sc,
	}
}

// CreateCheckoutSession opens a pending order and a one-off Stripe Checkout
// session for it. The order code rides in the session metadata so the
// webhook can find its way back without any Stripe-side state of ours.
func (s *StripeService) CreateCheckoutSession(ctx context.Context, userID uint, tier plans.Tier, cycle string) (*models.PaymentOrder, string, error) {
	if s == nil {
		return nil, "", errors.New("stripe is not configured")
	}
	order, err := s.billing.CreateOrder(ctx, userID, tier, cycle, models.PaymentMethodStripe)
	if err != nil {
		return nil, "", err
	}

	params := &stripe.CheckoutSessionParams{
		SuccessURL: stripe.String(s.successURL),
		CancelURL:  stripe.String(s.cancelURL),
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String("vnd"),
				UnitAmount: stripe.Int64(order.AmountVND),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(fmt.Sprintf("VietScribe %s (%s)", tier, order.BillingCycle)),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		Metadata: map[string]string{
			"order_code": order.OrderCode,
		},
	}
	sess, err := s.sc.CheckoutSessions.New(params)
	if err != nil {
		log.Printf("[Stripe] checkout session failed order=%s: %v", order.OrderCode, err)
		return nil, "", err
	}

	order.ProviderRef = sess.ID
	if err := s.billing.payments.SaveOrder(order); err != nil {
		return nil, "", err
	}
	return order, sess.URL, nil
}

// HandleWebhook verifies a raw webhook delivery, stores it idempotently and,
// for completed checkouts, confirms the referenced order. Redeliveries and
// unrelated event types return nil so Stripe stops retrying.
func (s *StripeService) HandleWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	if s == nil {
		return errors.New("stripe is not configured")
	}
	event, err := webhook.ConstructEvent(payload, signatureHeader, s.webhookSecret)
	if err != nil {
		return fmt.Errorf("invalid webhook signature: %w", err)
	}

	created, stored, err := s.billing.RecordWebhookEvent(ctx, models.PaymentMethodStripe, event.ID, string(event.Type), string(payload), true)
	if err != nil {
		return err
	}
	if !created {
		// Redeliveries of events we processed cleanly stop here. An event
		// whose earlier processing failed is run again so the order's
		// activation is not lost to a transient error.
		if stored.ProcessedAt != nil && stored.ProcessingError == "" {
			log.Printf("[Stripe] duplicate webhook event=%s ignored", event.ID)
			return nil
		}
		log.Printf("[Stripe] reprocessing webhook event=%s after failure", event.ID)
	}
	if event.Type != "checkout.session.completed" {
		return s.billing.MarkWebhookProcessed(ctx, stored.ID, nil)
	}

	var session struct {
		ID       string            `json:"id"`
		Metadata map[string]string `json:"metadata"`
	}
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		_ = s.billing.MarkWebhookProcessed(ctx, stored.ID, err)
		return err
	}
	orderCode := session.Metadata["order_code"]
	if orderCode == "" {
		err := errors.New("checkout session has no order_code metadata")
		_ = s.billing.MarkWebhookProcessed(ctx, stored.ID, err)
		return err
	}

	if _, err := s.billing.ConfirmOrder(ctx, orderCode, session.ID); err != nil {
		_ = s.billing.MarkWebhookProcessed(ctx, stored.ID, err)
		return err
	}
	return s.billing.MarkWebhookProcessed(ctx, stored.ID, nil)
}
