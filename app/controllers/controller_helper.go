package controllers

import (
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/vietscribe/vietscribe/internal/pkg/billing"
	"github.com/vietscribe/vietscribe/internal/pkg/metering"
)

const upgradeURL = "/plans"

// respondError maps service errors to consistent JSON responses. Quota
// denials are 402 so clients can route the user to the upgrade page;
// storage trouble is 503 so clients retry.
func respondError(c *fiber.Ctx, err error) error {
	if qe, ok := metering.AsQuotaExceeded(err); ok {
		return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
			"error":       "quota_exceeded",
			"feature":     string(qe.Feature),
			"reason":      string(qe.Reason),
			"reset_at":    qe.ResetAt.UTC().Format(time.RFC3339),
			"upgrade_url": upgradeURL,
		})
	}
	if errors.Is(err, metering.ErrStorageUnavailable) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "service_unavailable",
			"message": "Please retry shortly",
		})
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": "Resource not found",
		})
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "validation_failed",
			"message": verrs.Error(),
		})
	}
	if errors.Is(err, billing.ErrOrderNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "not_found",
			"message": "Order not found",
		})
	}
	if errors.Is(err, billing.ErrOrderNotPending) || errors.Is(err, billing.ErrNoPrice) {
		return badRequest(c, err.Error())
	}

	log.Printf("handler error: %v", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   "internal_server_error",
		"message": "Something went wrong",
	})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":   "bad_request",
		"message": message,
	})
}

func forbidden(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
		"error":   "forbidden",
		"message": message,
	})
}

// parsePagination reads offset/limit query params with sane bounds.
func parsePagination(c *fiber.Ctx) (offset, limit int) {
	offset, _ = strconv.Atoi(c.Query("offset", "0"))
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if offset < 0 {
		offset = 0
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return offset, limit
}

func formatTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
