package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error   { return nil }
func down(context.Context) error { return errors.New("connection refused") }

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) Report {
	t.Helper()
	var r Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
	return r
}

func TestLive(t *testing.T) {
	h := NewHandler(time.Second)
	h.RegisterCritical("postgres", down)

	rec := httptest.NewRecorder()
	h.Live(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusUp, decodeReport(t, rec).Status)
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(h *Handler)
		wantCode   int
		wantStatus Status
	}{
		{
			name:       "no probes",
			setup:      func(*Handler) {},
			wantCode:   http.StatusOK,
			wantStatus: StatusUp,
		},
		{
			name: "all up",
			setup: func(h *Handler) {
				h.RegisterCritical("postgres", up)
				h.RegisterCritical("redis", up)
				h.RegisterOptional("kafka", up)
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusUp,
		},
		{
			name: "optional down degrades",
			setup: func(h *Handler) {
				h.RegisterCritical("postgres", up)
				h.RegisterOptional("search", down)
			},
			wantCode:   http.StatusOK,
			wantStatus: StatusDegraded,
		},
		{
			name: "critical down",
			setup: func(h *Handler) {
				h.RegisterCritical("postgres", down)
				h.RegisterOptional("search", down)
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: StatusDown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHandler(time.Second)
			tt.setup(h)

			rec := httptest.NewRecorder()
			h.Ready(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantStatus, decodeReport(t, rec).Status)
		})
	}
}

func TestCheck_ReportsErrorsAndCriticality(t *testing.T) {
	h := NewHandler(time.Second)
	h.RegisterCritical("postgres", up)
	h.RegisterOptional("kafka", down)

	report := h.Check(context.Background())

	require.Len(t, report.Checks, 2)
	assert.True(t, report.Checks["postgres"].Critical)
	assert.Equal(t, StatusUp, report.Checks["postgres"].Status)
	assert.False(t, report.Checks["kafka"].Critical)
	assert.Equal(t, "connection refused", report.Checks["kafka"].Error)
}

func TestCheck_TimeoutCancelsSlowProbe(t *testing.T) {
	h := NewHandler(20 * time.Millisecond)
	h.RegisterCritical("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	report := h.Check(context.Background())
	assert.Equal(t, StatusDown, report.Status)
	assert.Contains(t, report.Checks["slow"].Error, "deadline exceeded")
}

func TestRegister_ReplacesAndLists(t *testing.T) {
	h := NewHandler(0)
	h.RegisterOptional("redis", down)
	h.RegisterCritical("redis", up)
	h.RegisterCritical("postgres", up)

	assert.Equal(t, []string{"postgres", "redis"}, h.Names())
	assert.Equal(t, StatusUp, h.Check(context.Background()).Status)
}
