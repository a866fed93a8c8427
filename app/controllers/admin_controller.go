package controllers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/vietscribe/vietscribe/app/repository"
	"github.com/vietscribe/vietscribe/internal/pkg/metering"
	"github.com/vietscribe/vietscribe/internal/pkg/metrics/counter"
	"github.com/vietscribe/vietscribe/internal/pkg/statistics"
)

// HandleAdminListUsers returns a paginated user listing.
func HandleAdminListUsers(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)
	repo := repository.GetGlobalFactory().GetUserRepository()

	users, err := repo.List(offset, limit)
	if err != nil {
		return respondError(c, err)
	}
	total, err := repo.Count()
	if err != nil {
		return respondError(c, err)
	}

	items := make([]fiber.Map, 0, len(users))
	for i := range users {
		u := &users[i]
		items = append(items, fiber.Map{
			"id":         u.ID,
			"email":      u.Email,
			"name":       u.Name,
			"status":     u.Status,
			"role":       u.Role,
			"created_at": u.CreatedAt,
			"last_login": u.LastLoginAt,
		})
	}
	return c.JSON(fiber.Map{
		"users":  items,
		"total":  total,
		"offset": offset,
		"limit":  limit,
	})
}

// HandleAdminListOrders lists pending payment orders awaiting manual
// confirmation (bank transfers mostly).
func HandleAdminListOrders(c *fiber.Ctx) error {
	offset, limit := parsePagination(c)

	orders, err := services.Billing.ListPendingOrders(c.UserContext(), offset, limit)
	if err != nil {
		return respondError(c, err)
	}

	items := make([]fiber.Map, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		items = append(items, fiber.Map{
			"order_code":    o.OrderCode,
			"user_id":       o.UserID,
			"tier":          o.Tier,
			"billing_cycle": o.BillingCycle,
			"amount_vnd":    o.AmountVND,
			"method":        o.Method,
			"created_at":    o.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{
		"orders": items,
		"offset": offset,
		"limit":  limit,
	})
}

// HandleAdminConfirmOrder marks a pending order as paid and activates the
// purchased plan. Safe to call twice; a second confirm is a no-op.
func HandleAdminConfirmOrder(c *fiber.Ctx) error {
	code := c.Params("code")
	if code == "" {
		return badRequest(c, "order code is required")
	}

	var req struct {
		ProviderRef string `json:"provider_ref"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid request body")
		}
	}

	order, err := services.Billing.ConfirmOrder(c.UserContext(), code, req.ProviderRef)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"order_code": order.OrderCode,
		"status":     order.Status,
		"paid_at":    order.PaidAt,
	})
}

// HandleAdminStats returns platform totals plus metering counters aggregated
// over the requested window (default 7 days, capped at the counter TTL).
func HandleAdminStats(c *fiber.Ctx) error {
	days, err := strconv.Atoi(c.Query("days", "7"))
	if err != nil || days < 1 {
		days = 7
	}
	if days > 30 {
		days = 30
	}

	statistics.UpdateCacheIfNeeded()
	data := statistics.Get()

	usage := fiber.Map{}
	for _, outcome := range []metering.Outcome{metering.OutcomeAllowed, metering.OutcomeDenied, metering.OutcomeFailed} {
		counts, err := counter.ReadRange(outcome, days)
		if err != nil {
			log.Printf("[Admin] reading %s counters failed: %v", outcome, err)
			continue
		}
		usage[string(outcome)] = counts
	}

	return c.JSON(fiber.Map{
		"totals": data,
		"usage": fiber.Map{
			"days":     days,
			"outcomes": usage,
		},
	})
}
