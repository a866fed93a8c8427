package metering

import (
	"context"
	"time"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

// Decision is the outcome of an entitlement check. When Allowed, Remaining is
// informational only (nothing has been decremented); when denied, Reason and
// ResetAt explain what the user can do about it.
type Decision struct {
	Allowed   bool
	Unlimited bool
	Remaining int
	Reason    DenyReason
	ResetAt   time.Time
}

// Evaluator decides whether a feature invocation is permitted, and by how
// much headroom. It consults the injected catalog for quotas and the ledger
// for consumption; it never mutates either.
type Evaluator struct {
	catalog *plans.Catalog
	subs    SubscriptionSource
	ledger  *Ledger
}

// NewEvaluator creates an entitlement evaluator.
func NewEvaluator(catalog *plans.Catalog, subs SubscriptionSource, ledger *Ledger) *Evaluator {
	return &Evaluator{catalog: catalog, subs: subs, ledger: ledger}
}

// CheckAndReserve evaluates whether userID may invoke feature right now.
// Despite the name this is advisory, not a reservation: no lock is held
// between this check and the caller's subsequent increment, so a concurrent
// burst may overshoot a finite quota by a bounded one or two counts. The
// ledger itself never loses counts.
func (e *Evaluator) CheckAndReserve(ctx context.Context, userID uint, feature plans.FeatureKind) (Decision, error) {
	sub, err := e.subs.Current(ctx, userID)
	if err != nil {
		return Decision{}, storageErr(err)
	}

	quota := e.catalog.QuotaFor(effectiveTier(sub), feature)
	if quota.IsUnlimited() {
		return Decision{Allowed: true, Unlimited: true}, nil
	}
	if quota == 0 {
		_, end, err := e.ledger.CurrentPeriod(ctx, userID, feature)
		if err != nil {
			return Decision{}, err
		}
		return Decision{Reason: DenyNotEntitled, ResetAt: end}, nil
	}

	rec, err := e.ledger.openRecord(ctx, userID, feature)
	if err != nil {
		return Decision{}, err
	}
	if rec.UsageCount >= int(quota) {
		return Decision{Reason: DenyQuotaExhausted, ResetAt: rec.PeriodEnd}, nil
	}
	return Decision{Allowed: true, Remaining: int(quota) - rec.UsageCount}, nil
}

// AllowsCapability reports whether the user's tier grants a boolean
// capability such as collaboration.
func (e *Evaluator) AllowsCapability(ctx context.Context, userID uint, capability plans.Capability) (bool, error) {
	sub, err := e.subs.Current(ctx, userID)
	if err != nil {
		return false, storageErr(err)
	}
	return e.catalog.Allows(effectiveTier(sub), capability), nil
}

// effectiveTier maps a subscription to the tier whose quotas apply. Anything
// but an active subscription falls back to the free tier; the Tier field is
// kept for display and reactivation but grants nothing while lapsed.
func effectiveTier(sub *models.Subscription) plans.Tier {
	if sub.Status != models.SubscriptionStatusActive {
		return plans.TierFree
	}
	return plans.NormalizeTier(sub.Tier)
}
