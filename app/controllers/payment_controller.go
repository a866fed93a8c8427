package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/vietscribe/vietscribe/app/models"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
	"github.com/vietscribe/vietscribe/internal/pkg/usercontext"
)

type createOrderRequest struct {
	Tier         string `json:"tier"`
	BillingCycle string `json:"billing_cycle"`
	Method       string `json:"method"`
}

func validPaymentMethod(method string) bool {
	switch method {
	case models.PaymentMethodMoMo, models.PaymentMethodZaloPay, models.PaymentMethodBankTransfer:
		return true
	default:
		return false
	}
}

// HandleCreateOrder opens a pending order for a Vietnamese payment method.
// The user completes the transfer out of band; an admin (or provider IPN)
// confirms it. Card payments go through HandleCreateCheckout instead.
func HandleCreateOrder(c *fiber.Ctx) error {
	var req createOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if !validPaymentMethod(req.Method) {
		return badRequest(c, "method must be momo, zalopay or bank_transfer")
	}
	tier := plans.NormalizeTier(req.Tier)
	if tier == plans.TierFree {
		return badRequest(c, "tier must be a paid plan")
	}

	order, err := services.Billing.CreateOrder(c.UserContext(), usercontext.GetUserID(c), tier, req.BillingCycle, req.Method)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_code":    order.OrderCode,
		"tier":          order.Tier,
		"billing_cycle": order.BillingCycle,
		"amount_vnd":    order.AmountVND,
		"method":        order.Method,
		"status":        order.Status,
		"note":          "Ghi mã đơn hàng vào nội dung chuyển khoản: " + order.OrderCode,
	})
}

type checkoutRequest struct {
	Tier         string `json:"tier"`
	BillingCycle string `json:"billing_cycle"`
}

// HandleCreateCheckout opens a Stripe checkout session for card payments.
func HandleCreateCheckout(c *fiber.Ctx) error {
	if services.Stripe == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error":   "service_unavailable",
			"message": "Card payments are not configured",
		})
	}
	var req checkoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	tier := plans.NormalizeTier(req.Tier)
	if tier == plans.TierFree {
		return badRequest(c, "tier must be a paid plan")
	}

	order, checkoutURL, err := services.Stripe.CreateCheckoutSession(c.UserContext(), usercontext.GetUserID(c), tier, req.BillingCycle)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"order_code":   order.OrderCode,
		"amount_vnd":   order.AmountVND,
		"checkout_url": checkoutURL,
	})
}

// HandleStripeWebhook receives Stripe event deliveries. Unauthenticated; the
// signature header is the authentication.
func HandleStripeWebhook(c *fiber.Ctx) error {
	if services.Stripe == nil {
		return c.SendStatus(fiber.StatusServiceUnavailable)
	}

	err := services.Stripe.HandleWebhook(c.UserContext(), c.Body(), c.Get("Stripe-Signature"))
	if err != nil {
		if strings.Contains(err.Error(), "invalid webhook signature") {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid_signature"})
		}
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"received": true})
}
