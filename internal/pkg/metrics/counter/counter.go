package counter

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/vietscribe/vietscribe/internal/pkg/cache"
	"github.com/vietscribe/vietscribe/internal/pkg/metering"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

const (
	dailyKeyFormat = "metering:counters:%s:%s" // outcome, date YYYY-MM-DD
	keyTTL         = 40 * 24 * time.Hour
)

func dailyKey(outcome metering.Outcome, day time.Time) string {
	return fmt.Sprintf(dailyKeyFormat, outcome, day.UTC().Format("2006-01-02"))
}

// Record increments today's counter for a feature and outcome in Redis.
// Counter writes are best effort; a cache outage never blocks a request.
func Record(feature plans.FeatureKind, outcome metering.Outcome) error {
	ctx := context.Background()
	rdb := cache.GetClient()
	key := dailyKey(outcome, time.Now())

	pipe := rdb.Pipeline()
	pipe.HIncrBy(ctx, key, string(feature), 1)
	pipe.Expire(ctx, key, keyTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// Observer adapts Record to the invoker's observer hook, logging nothing and
// swallowing cache errors.
func Observer() func(feature plans.FeatureKind, outcome metering.Outcome) {
	return func(feature plans.FeatureKind, outcome metering.Outcome) {
		_ = Record(feature, outcome)
	}
}

// ReadDay returns the per-feature counters for one outcome on one day.
func ReadDay(outcome metering.Outcome, day time.Time) (map[string]int64, error) {
	ctx := context.Background()
	raw, err := cache.GetClient().HGetAll(ctx, dailyKey(outcome, day)).Result()
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(raw))
	for feature, v := range raw {
		n, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			continue
		}
		out[feature] = n
	}
	return out, nil
}

// ReadRange sums per-feature counters for one outcome over the last n days,
// including today.
func ReadRange(outcome metering.Outcome, days int) (map[string]int64, error) {
	totals := make(map[string]int64)
	now := time.Now()
	for i := 0; i < days; i++ {
		day, err := ReadDay(outcome, now.AddDate(0, 0, -i))
		if err != nil {
			return nil, err
		}
		for feature, n := range day {
			totals[feature] += n
		}
	}
	return totals, nil
}
