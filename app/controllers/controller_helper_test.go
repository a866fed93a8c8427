package controllers

import (
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/vietscribe/vietscribe/internal/pkg/billing"
	"github.com/vietscribe/vietscribe/internal/pkg/metering"
	"github.com/vietscribe/vietscribe/internal/pkg/plans"
)

func errorApp(err error) *fiber.App {
	app := fiber.New()
	app.Get("/boom", func(c *fiber.Ctx) error {
		return respondError(c, err)
	})
	return app
}

func TestRespondErrorQuotaExceeded(t *testing.T) {
	resetAt := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	app := errorApp(&metering.QuotaExceededError{
		Feature: plans.FeatureOutline,
		Reason:  metering.DenyQuotaExhausted,
		ResetAt: resetAt,
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusPaymentRequired, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "quota_exceeded")
	assert.Contains(t, string(body), "outline")
	assert.Contains(t, string(body), "2025-07-01T00:00:00Z")
	assert.Contains(t, string(body), "/plans")
}

func TestRespondErrorStorageUnavailable(t *testing.T) {
	wrapped := fmt.Errorf("increment: %w", metering.ErrStorageUnavailable)
	app := errorApp(wrapped)

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestRespondErrorNotFound(t *testing.T) {
	for name, cause := range map[string]error{
		"record": gorm.ErrRecordNotFound,
		"order":  billing.ErrOrderNotFound,
	} {
		t.Run(name, func(t *testing.T) {
			app := errorApp(cause)
			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
		})
	}
}

func TestRespondErrorBadRequest(t *testing.T) {
	for name, cause := range map[string]error{
		"not pending": billing.ErrOrderNotPending,
		"no price":    billing.ErrNoPrice,
	} {
		t.Run(name, func(t *testing.T) {
			app := errorApp(cause)
			resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestRespondErrorFallsBackToInternal(t *testing.T) {
	app := errorApp(fmt.Errorf("something unexpected"))

	resp, err := app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
}

func TestParsePagination(t *testing.T) {
	app := fiber.New()
	app.Get("/list", func(c *fiber.Ctx) error {
		offset, limit := parsePagination(c)
		return c.JSON(fiber.Map{"offset": offset, "limit": limit})
	})

	cases := []struct {
		query string
		want  string
	}{
		{"", `{"limit":20,"offset":0}`},
		{"?offset=40&limit=10", `{"limit":10,"offset":40}`},
		{"?offset=-5&limit=500", `{"limit":20,"offset":0}`},
		{"?offset=abc&limit=xyz", `{"limit":20,"offset":0}`},
	}
	for _, tc := range cases {
		resp, err := app.Test(httptest.NewRequest("GET", "/list"+tc.query, nil))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.JSONEq(t, tc.want, string(body), "query %q", tc.query)
	}
}
