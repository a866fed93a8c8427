package billing

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/webhook"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

const testWebhookSecret = "whsec_test_secret"

func signedHeader(payload []byte) string {
	now := time.Now()
	sig := webhook.ComputeSignature(now, payload, testWebhookSecret)
	return fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig))
}

func checkoutCompletedPayload(eventID, sessionID, orderCode string) []byte {
	return []byte(fmt.Sprintf(
		`{"id":%q,"api_version":%q,"type":"checkout.session.completed","data":{"object":{"id":%q,"metadata":{"order_code":%q}}}}`,
		eventID, stripe.APIVersion, sessionID, orderCode,
	))
}

func newTestStripe(now time.Time) (*StripeService, *fakeSubRepo, *fakePaymentRepo) {
	svc, subs, payments := newTestService(now)
	return &StripeService{billing: svc, webhookSecret: testWebhookSecret}, subs, payments
}

func TestHandleWebhookConfirmsOrder(t *testing.T) {
	stripeSvc, _, _ := newTestStripe(testNow)
	ctx := context.Background()

	order, err := stripeSvc.billing.CreateOrder(ctx, 7, plans.TierStudent, models.BillingCycleMonthly, models.PaymentMethodStripe)
	require.NoError(t, err)

	payload := checkoutCompletedPayload("evt_1", "cs_1", order.OrderCode)
	require.NoError(t, stripeSvc.HandleWebhook(ctx, payload, signedHeader(payload)))

	sub, err := stripeSvc.billing.Current(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "student", sub.Tier)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
}

func TestHandleWebhookRejectsBadSignature(t *testing.T) {
	stripeSvc, _, _ := newTestStripe(testNow)

	payload := checkoutCompletedPayload("evt_1", "cs_1", "VS-WHATEVER")
	err := stripeSvc.HandleWebhook(context.Background(), payload, "t=1,v1=deadbeef")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid webhook signature")
}

func TestHandleWebhookIgnoresCleanRedelivery(t *testing.T) {
	stripeSvc, _, _ := newTestStripe(testNow)
	ctx := context.Background()

	order, err := stripeSvc.billing.CreateOrder(ctx, 7, plans.TierStudent, models.BillingCycleMonthly, models.PaymentMethodStripe)
	require.NoError(t, err)

	payload := checkoutCompletedPayload("evt_1", "cs_1", order.OrderCode)
	require.NoError(t, stripeSvc.HandleWebhook(ctx, payload, signedHeader(payload)))
	require.NoError(t, stripeSvc.HandleWebhook(ctx, payload, signedHeader(payload)))

	sub, err := stripeSvc.billing.Current(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, testNow.AddDate(0, 1, 0), *sub.EndDate, "redelivery does not extend the period")
}

func TestHandleWebhookReprocessesAfterFailure(t *testing.T) {
	stripeSvc, subs, payments := newTestStripe(testNow)
	ctx := context.Background()

	order, err := stripeSvc.billing.CreateOrder(ctx, 7, plans.TierPremium, models.BillingCycleMonthly, models.PaymentMethodStripe)
	require.NoError(t, err)
	payload := checkoutCompletedPayload("evt_1", "cs_1", order.OrderCode)

	// First delivery fails while applying the payment; the event is stored
	// with its error and the order stays unapplied.
	subs.failNextSave(fmt.Errorf("connection refused"))
	err = stripeSvc.HandleWebhook(ctx, payload, signedHeader(payload))
	require.Error(t, err)

	stored, err := payments.GetOrderByCode(order.OrderCode)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, stored.Status)
	assert.Nil(t, stored.AppliedAt)

	// Stripe redelivers the same event; the stored failure makes it run
	// again instead of being dropped as a duplicate.
	require.NoError(t, stripeSvc.HandleWebhook(ctx, payload, signedHeader(payload)))

	sub, err := stripeSvc.billing.Current(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, "premium", sub.Tier)
	assert.Equal(t, models.SubscriptionStatusActive, sub.Status)
	assert.Equal(t, testNow.AddDate(0, 1, 0), *sub.EndDate)
}
