package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())
	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(GetRequestID(c))
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
		require.NoError(t, err)

		rid := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, rid)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, rid, string(body))
	})

	t.Run("keeps the caller's id", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "test-id-123")

		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, "test-id-123", resp.Header.Get(RequestIDHeader))
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, "test-id-123", string(body))
	})
}

func TestLogger(t *testing.T) {
	tests := []struct {
		name      string
		handler   fiber.Handler
		wantCode  int
		wantLevel string
	}{
		{"success", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusAccepted) }, fiber.StatusAccepted, "info"},
		{"client error", func(c *fiber.Ctx) error { return fiber.ErrUnauthorized }, fiber.StatusUnauthorized, "warn"},
		{"server error", func(c *fiber.Ctx) error { return errors.New("boom") }, fiber.StatusInternalServerError, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			app := fiber.New()
			app.Use(RequestID())
			app.Use(Logger(zerolog.New(&buf)))
			app.Get("/test", tt.handler)

			resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCode, resp.StatusCode)

			var line map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
			assert.Equal(t, tt.wantLevel, line["level"])
			assert.Equal(t, resp.Header.Get(RequestIDHeader), line["request_id"])
			assert.Equal(t, "GET", line["method"])
			assert.Equal(t, "/test", line["path"])
			assert.Equal(t, float64(tt.wantCode), line["status"])
			assert.Contains(t, line, "latency_ms")
			assert.Equal(t, "http_request", line["message"])
		})
	}
}

func TestLogger_TraceID(t *testing.T) {
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})

	var buf bytes.Buffer
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(trace.ContextWithSpanContext(c.UserContext(), sc))
		return c.Next()
	})
	app.Use(Logger(zerolog.New(&buf)))
	app.Get("/test", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	_, err = app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, traceID.String(), line["trace_id"])
}

type stubVerifier map[string]string

func (s stubVerifier) VerifyAccess(token string) (string, error) {
	if id, ok := s[token]; ok {
		return id, nil
	}
	return "", errors.New("bad token")
}

func TestBearerAuth(t *testing.T) {
	app := fiber.New()
	app.Use(BearerAuth(stubVerifier{"good": "user-1"}))
	app.Get("/me", func(c *fiber.Ctx) error {
		return c.SendString(GetUserID(c))
	})

	tests := []struct {
		name     string
		header   string
		wantCode int
		wantBody string
	}{
		{"valid token", "Bearer good", fiber.StatusOK, "user-1"},
		{"scheme is case insensitive", "bearer good", fiber.StatusOK, "user-1"},
		{"missing header", "", fiber.StatusUnauthorized, "Not authenticated"},
		{"wrong scheme", "Basic good", fiber.StatusUnauthorized, "Not authenticated"},
		{"empty token", "Bearer ", fiber.StatusUnauthorized, "Not authenticated"},
		{"invalid token", "Bearer forged", fiber.StatusUnauthorized, "Could not validate credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantCode, resp.StatusCode)
			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.wantBody, string(body))
			if tt.wantCode == fiber.StatusUnauthorized {
				assert.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
			}
		})
	}
}
