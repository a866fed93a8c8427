package metering

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vietscribe/vietscribe/app/models"
	"gorm.io/gorm"
)

// fakeUsageRepo is an in-memory UsageRepository honoring the same contracts
// as the GORM implementation: unique open period per user/feature and an
// atomic counter increment.
type fakeUsageRepo struct {
	mu      sync.Mutex
	nextID  uint
	records map[uint]*models.UsageRecord
	fail    error
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{records: make(map[uint]*models.UsageRecord)}
}

func (f *fakeUsageRepo) GetOpenRecord(userID uint, feature string, now time.Time) (*models.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	for _, rec := range f.records {
		if rec.UserID == userID && rec.FeatureKind == feature && rec.PeriodEnd.After(now) {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUsageRepo) CreateOpen(rec *models.UsageRecord, now time.Time) (*models.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	// Check-and-insert under one lock, mirroring the single-statement
	// conditional insert of the GORM implementation.
	for _, existing := range f.records {
		if existing.UserID == rec.UserID && existing.FeatureKind == rec.FeatureKind && existing.PeriodEnd.After(now) {
			cp := *existing
			return &cp, nil
		}
	}
	f.nextID++
	rec.ID = f.nextID
	cp := *rec
	f.records[rec.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeUsageRepo) IncrementCount(id uint) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return 0, f.fail
	}
	rec, ok := f.records[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	rec.UsageCount++
	return rec.UsageCount, nil
}

func (f *fakeUsageRepo) ListOpenByUser(userID uint, now time.Time) ([]models.UsageRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	var out []models.UsageRecord
	for _, rec := range f.records {
		if rec.UserID == userID && rec.PeriodEnd.After(now) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (f *fakeUsageRepo) setFailure(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = err
}

// fakeSubs is a SubscriptionSource returning a fixed subscription.
type fakeSubs struct {
	sub *models.Subscription
	err error
}

func (f *fakeSubs) Current(ctx context.Context, userID uint) (*models.Subscription, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.sub, nil
}

func activeSub(tier string) *fakeSubs {
	return &fakeSubs{sub: &models.Subscription{
		UserID:       1,
		Tier:         tier,
		BillingCycle: models.BillingCycleMonthly,
		Status:       models.SubscriptionStatusActive,
	}}
}

var errDBDown = errors.New("connection refused")
