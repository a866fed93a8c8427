package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/internal/pkg/billing"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
	"github.com/vietscribe/vietscribe/internal/pkg/usercontext"
)

// HandleGetSubscription returns the user's current subscription. Expiry is
// evaluated on this read.
func HandleGetSubscription(c *fiber.Ctx) error {
	sub, err := services.Billing.Current(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"tier":          sub.Tier,
		"billing_cycle": sub.BillingCycle,
		"status":        sub.Status,
		"start_date":    formatTimePtr(sub.StartDate),
		"end_date":      formatTimePtr(sub.EndDate),
		"auto_renew":    sub.AutoRenew,
	})
}

// HandleCancelAutoRenew lets the current paid period run out.
func HandleCancelAutoRenew(c *fiber.Ctx) error {
	sub, err := services.Billing.CancelAutoRenew(c.UserContext(), usercontext.GetUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"status":     sub.Status,
		"auto_renew": sub.AutoRenew,
		"end_date":   formatTimePtr(sub.EndDate),
	})
}

// HandleGetUsage returns the usage dashboard: every feature with its quota,
// consumption and remaining headroom for the current period.
func HandleGetUsage(c *fiber.Ctx) error {
	userID := usercontext.GetUserID(c)
	sub, err := services.Billing.Current(c.UserContext(), userID)
	if err != nil {
		return respondError(c, err)
	}
	tier := plans.NormalizeTier(sub.Tier)
	if sub.Status != models.SubscriptionStatusActive {
		tier = plans.TierFree
	}

	features := make([]fiber.Map, 0, len(plans.Features))
	for _, feature := range plans.Features {
		quota := services.Catalog.QuotaFor(tier, feature)

		used, err := services.Meter.Ledger.CurrentUsage(c.UserContext(), userID, feature)
		if err != nil {
			return respondError(c, err)
		}

		entry := fiber.Map{
			"feature":   string(feature),
			"used":      used,
			"unlimited": quota.IsUnlimited(),
		}
		if !quota.IsUnlimited() {
			remaining := int(quota) - used
			if remaining < 0 {
				remaining = 0
			}
			entry["quota"] = int(quota)
			entry["remaining"] = remaining
		}
		features = append(features, entry)
	}

	return c.JSON(fiber.Map{
		"tier":     string(tier),
		"features": features,
	})
}

// HandleListPlans returns the public plan catalog with quotas and prices.
func HandleListPlans(c *fiber.Ctx) error {
	out := make([]fiber.Map, 0, len(plans.Tiers))
	for _, tier := range plans.Tiers {
		quotas := make(fiber.Map, len(plans.Features))
		for _, feature := range plans.Features {
			q := services.Catalog.QuotaFor(tier, feature)
			if q.IsUnlimited() {
				quotas[string(feature)] = "unlimited"
			} else {
				quotas[string(feature)] = int(q)
			}
		}

		entry := fiber.Map{
			"tier":          string(tier),
			"quotas":        quotas,
			"collaboration": services.Catalog.Allows(tier, plans.CapabilityCollaboration),
		}
		if monthly, err := billing.PriceVND(tier, models.BillingCycleMonthly); err == nil {
			yearly, _ := billing.PriceVND(tier, models.BillingCycleYearly)
			entry["price_vnd"] = fiber.Map{"monthly": monthly, "yearly": yearly}
		}
		out = append(out, entry)
	}
	return c.JSON(fiber.Map{"plans": out})
}
