package billing

import (
	"errors"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

// ErrNoPrice is returned for tier/cycle combinations that cannot be bought,
// including the free tier.
var ErrNoPrice = errors.New("no price for tier and billing cycle")

// priceTableVND holds list prices in Vietnamese dong. Yearly is ten times
// monthly (two months free).
var priceTableVND = map[plans.Tier]map[string]int64{
	plans.TierStudent: {
		models.BillingCycleMonthly: 99_000,
		models.BillingCycleYearly:  990_000,
	},
	plans.TierPremium: {
		models.BillingCycleMonthly: 199_000,
		models.BillingCycleYearly:  1_990_000,
	},
	plans.TierInstitutional: {
		models.BillingCycleMonthly: 999_000,
		models.BillingCycleYearly:  9_990_000,
	},
}

// PriceVND returns the list price for a paid tier and billing cycle.
func PriceVND(tier plans.Tier, cycle string) (int64, error) {
	cycles, ok := priceTableVND[tier]
	if !ok {
		return 0, ErrNoPrice
	}
	amount, ok := cycles[models.NormalizeBillingCycle(cycle)]
	if !ok {
		return 0, ErrNoPrice
	}
	return amount, nil
}
