package controllers

import (
	"github.com/vietscribe/vietscribe/internal/pkg/aitools"
	"github.com/vietscribe/vietscribe/internal/pkg/billing"
	"github.com/vietscribe/vietscribe/internal/pkg/export"
	"github.com/vietscribe/vietscribe/internal/pkg/metering"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

// Services bundles everything the handlers need. Wired once at startup.
type Services struct {
	Catalog *plans.Catalog
	Meter   *metering.Meter
	Billing *billing.Service
	Stripe  *billing.StripeService // nil when card payments are not configured
	AI      *aitools.Service
	Export  *export.Service // nil when exports storage is not configured
}

var services Services

// Setup installs the service dependencies for all handlers.
func Setup(s Services) {
	services = s
}
