package metering

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

func newTestMeter(subs SubscriptionSource) (*Meter, *fakeUsageRepo) {
	repo := newFakeUsageRepo()
	return New(plans.Default(), subs, repo), repo
}

func TestZeroQuotaAlwaysDeniesNotEntitled(t *testing.T) {
	meter, _ := newTestMeter(activeSub("free"))
	ctx := context.Background()

	// free tier offers no plagiarism checks and no templates
	for _, feature := range []plans.FeatureKind{plans.FeaturePlagiarismCheck, plans.FeatureTemplate} {
		dec, err := meter.Evaluator.CheckAndReserve(ctx, 1, feature)
		require.NoError(t, err)
		assert.False(t, dec.Allowed)
		assert.Equal(t, DenyNotEntitled, dec.Reason)
		assert.False(t, dec.ResetAt.IsZero())
	}
}

func TestUnlimitedQuotaAllowsRegardlessOfUsage(t *testing.T) {
	meter, _ := newTestMeter(activeSub("institutional"))
	ctx := context.Background()

	for i := 0; i < 50; i++ {
		_, err := meter.Ledger.Increment(ctx, 1, plans.FeaturePlagiarismCheck)
		require.NoError(t, err)
	}

	dec, err := meter.Evaluator.CheckAndReserve(ctx, 1, plans.FeaturePlagiarismCheck)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.True(t, dec.Unlimited)
}

func TestFiniteQuotaExhaustion(t *testing.T) {
	meter, _ := newTestMeter(activeSub("free"))
	ctx := context.Background()

	// free/outline quota is 3
	for want := 2; want >= 0; want-- {
		dec, err := meter.Evaluator.CheckAndReserve(ctx, 1, plans.FeatureOutline)
		require.NoError(t, err)
		assert.True(t, dec.Allowed)
		assert.Equal(t, want+1, dec.Remaining)
		_, err = meter.Ledger.Increment(ctx, 1, plans.FeatureOutline)
		require.NoError(t, err)
	}

	dec, err := meter.Evaluator.CheckAndReserve(ctx, 1, plans.FeatureOutline)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, DenyQuotaExhausted, dec.Reason)
	assert.False(t, dec.ResetAt.IsZero())
}

func TestPremiumPlagiarismIsFiniteNotUnlimited(t *testing.T) {
	meter, _ := newTestMeter(activeSub("premium"))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		dec, err := meter.Evaluator.CheckAndReserve(ctx, 1, plans.FeaturePlagiarismCheck)
		require.NoError(t, err)
		require.True(t, dec.Allowed)
		_, err = meter.Ledger.Increment(ctx, 1, plans.FeaturePlagiarismCheck)
		require.NoError(t, err)
	}

	dec, err := meter.Evaluator.CheckAndReserve(ctx, 1, plans.FeaturePlagiarismCheck)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, DenyQuotaExhausted, dec.Reason)
}

func TestEvaluatorFailsClosedOnStorageError(t *testing.T) {
	meter, repo := newTestMeter(activeSub("free"))
	repo.setFailure(errDBDown)

	_, err := meter.Evaluator.CheckAndReserve(context.Background(), 1, plans.FeatureOutline)
	assert.True(t, errors.Is(err, ErrStorageUnavailable))
}

func TestTierChangeAppliesProspectively(t *testing.T) {
	subs := activeSub("free")
	meter, _ := newTestMeter(subs)
	ctx := context.Background()

	// Exhaust the free outline quota.
	for i := 0; i < 3; i++ {
		_, err := meter.Ledger.Increment(ctx, 1, plans.FeatureOutline)
		require.NoError(t, err)
	}
	dec, err := meter.Evaluator.CheckAndReserve(ctx, 1, plans.FeatureOutline)
	require.NoError(t, err)
	require.False(t, dec.Allowed)

	// Upgrade mid-period: recorded usage is untouched, but the student quota
	// (15) applies to the next check.
	subs.sub.Tier = "student"
	count, err := meter.Ledger.CurrentUsage(ctx, 1, plans.FeatureOutline)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	dec, err = meter.Evaluator.CheckAndReserve(ctx, 1, plans.FeatureOutline)
	require.NoError(t, err)
	assert.True(t, dec.Allowed)
	assert.Equal(t, 12, dec.Remaining)
}

func TestAllowsCapability(t *testing.T) {
	tests := []struct {
		tier       string
		capability plans.Capability
		want       bool
	}{
		{"free", plans.CapabilityCollaboration, false},
		{"student", plans.CapabilityCollaboration, true},
		{"student", plans.CapabilityPrioritySupport, false},
		{"premium", plans.CapabilityPrioritySupport, true},
		{"institutional", plans.CapabilityCollaboration, true},
	}

	for _, tt := range tests {
		meter, _ := newTestMeter(activeSub(tt.tier))
		got, err := meter.Evaluator.AllowsCapability(context.Background(), 1, tt.capability)
		require.NoError(t, err)
		if got != tt.want {
			t.Fatalf("AllowsCapability(%s, %s) = %v, want %v", tt.tier, tt.capability, got, tt.want)
		}
	}
}

func TestExpiredSubscriptionFallsBackToFreeQuotas(t *testing.T) {
	end := time.Now().AddDate(0, -1, 0)
	subs := &fakeSubs{sub: &models.Subscription{
		UserID:       1,
		Tier:         "premium",
		BillingCycle: models.BillingCycleMonthly,
		EndDate:      &end,
		Status:       models.SubscriptionStatusExpired,
	}}
	meter, _ := newTestMeter(subs)
	ctx := context.Background()

	// Premium would be unlimited, but the lapsed subscription grants only
	// the free quota of 3.
	for i := 0; i < 3; i++ {
		dec, err := meter.Evaluator.CheckAndReserve(ctx, 1, plans.FeatureOutline)
		require.NoError(t, err)
		assert.True(t, dec.Allowed)
		_, err = meter.Ledger.Increment(ctx, 1, plans.FeatureOutline)
		require.NoError(t, err)
	}
	dec, err := meter.Evaluator.CheckAndReserve(ctx, 1, plans.FeatureOutline)
	require.NoError(t, err)
	assert.False(t, dec.Allowed)
	assert.Equal(t, DenyQuotaExhausted, dec.Reason)

	allowed, err := meter.Evaluator.AllowsCapability(ctx, 1, plans.CapabilityCollaboration)
	require.NoError(t, err)
	assert.False(t, allowed)
}
