package metering

import (
	"context"
	"errors"
	"time"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/app/repository"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
	"gorm.io/gorm"
)

// SubscriptionSource yields a user's effective subscription. Implementations
// must apply lazy expiry before returning, so the ledger and evaluator never
// see a stale active status.
type SubscriptionSource interface {
	Current(ctx context.Context, userID uint) (*models.Subscription, error)
}

// Ledger owns the per-user, per-feature, per-period usage counters. All
// mutation goes through Increment; the counter update is a single atomic
// statement at the storage layer.
type Ledger struct {
	usage repository.UsageRepository
	subs  SubscriptionSource
	now   func() time.Time
}

// NewLedger creates a usage ledger.
func NewLedger(usage repository.UsageRepository, subs SubscriptionSource) *Ledger {
	return &Ledger{usage: usage, subs: subs, now: time.Now}
}

// CurrentUsage returns the count for the presently-open period, creating a
// zero-valued record if none is open.
func (l *Ledger) CurrentUsage(ctx context.Context, userID uint, feature plans.FeatureKind) (int, error) {
	rec, err := l.openRecord(ctx, userID, feature)
	if err != nil {
		return 0, err
	}
	return rec.UsageCount, nil
}

// Increment atomically increases the current period's count by one and
// returns the new value. Safe under concurrent invocation for the same
// user/feature: two simultaneous calls are never lost.
func (l *Ledger) Increment(ctx context.Context, userID uint, feature plans.FeatureKind) (int, error) {
	rec, err := l.openRecord(ctx, userID, feature)
	if err != nil {
		return 0, err
	}

	count, err := l.usage.IncrementCount(rec.ID)
	if err != nil {
		return 0, storageErr(err)
	}
	return count, nil
}

// CurrentPeriod returns the bounds of the open period for a user/feature
// without creating a record.
func (l *Ledger) CurrentPeriod(ctx context.Context, userID uint, feature plans.FeatureKind) (time.Time, time.Time, error) {
	now := l.now()
	rec, err := l.usage.GetOpenRecord(userID, string(feature), now)
	if err == nil {
		return rec.PeriodStart, rec.PeriodEnd, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, time.Time{}, storageErr(err)
	}
	return l.periodBounds(ctx, userID, now)
}

// openRecord finds the record covering now, opening a fresh zero-valued one
// when none exists or the previous period has ended. Periods are anchored to
// the rollover moment and sized by the subscription's billing cycle.
func (l *Ledger) openRecord(ctx context.Context, userID uint, feature plans.FeatureKind) (*models.UsageRecord, error) {
	now := l.now()

	rec, err := l.usage.GetOpenRecord(userID, string(feature), now)
	if err == nil {
		return rec, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageErr(err)
	}

	start, end, err := l.periodBounds(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	// CreateOpen is conditional on no open record existing at now, so when a
	// concurrent request opens the period first we adopt its record instead
	// of inserting a second one.
	opened, err := l.usage.CreateOpen(&models.UsageRecord{
		UserID:      userID,
		FeatureKind: string(feature),
		PeriodStart: start,
		PeriodEnd:   end,
		UsageCount:  0,
	}, now)
	if err != nil {
		return nil, storageErr(err)
	}
	return opened, nil
}

func (l *Ledger) periodBounds(ctx context.Context, userID uint, now time.Time) (time.Time, time.Time, error) {
	sub, err := l.subs.Current(ctx, userID)
	if err != nil {
		return time.Time{}, time.Time{}, storageErr(err)
	}
	return now, sub.NextPeriodEnd(now), nil
}
