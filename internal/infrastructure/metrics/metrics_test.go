package metrics_test

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Logistica-api/internal/infrastructure/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExponeColectores(t *testing.T) {
	r := metrics.NewRecorder()
	r.ObserveSubmission("update", "invalid")
	r.ObserveUpstream("get_shipment", "ok", 120*time.Millisecond)

	app := fiber.New()
	app.Use(metrics.Middleware())
	app.Get("/ping", func(c *fiber.Ctx) error { return c.SendString("pong") })
	app.Get("/metrics", metrics.Handler())

	resp, err := app.Test(httptest.NewRequest("GET", "/ping", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/metrics", nil))
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	assert.True(t, strings.Contains(out, `shipment_submissions_total{kind="update",result="invalid"}`))
	assert.True(t, strings.Contains(out, `upstream_request_duration_seconds_count{operation="get_shipment",outcome="ok"}`))
	assert.True(t, strings.Contains(out, `http_requests_total{method="GET",path="/ping",status="200"}`))
}
