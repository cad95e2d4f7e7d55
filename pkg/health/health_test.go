package health_test

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

	"github.com/sunday4k/sunday4k/pkg/health"
)

func ok(context.Context) error { return nil }

func failing(context.Context) error { return errors.New("connection refused") }

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("no checks", func(t *testing.T) {
		t.Parallel()
		resp, err := health.Run(context.Background(), nil)
		require.NoError(t, err)
		assert.Equal(t, health.StatusHealthy, resp.Status)
	})

	t.Run("all healthy", func(t *testing.T) {
		t.Parallel()
		resp, err := health.Run(context.Background(), health.Checks{"postgres": ok, "redis": ok})
		require.NoError(t, err)
		assert.Equal(t, health.StatusHealthy, resp.Status)
		assert.Len(t, resp.Checks, 2)
	})

	t.Run("required failure", func(t *testing.T) {
		t.Parallel()
		resp, err := health.Run(context.Background(), health.Checks{"postgres": failing, "redis": ok})
		require.ErrorIs(t, err, health.ErrCheckFailed)
		assert.Contains(t, err.Error(), "postgres")
		assert.Equal(t, health.StatusUnhealthy, resp.Status)
		assert.Equal(t, "connection refused", resp.Checks["postgres"].Error)
	})

	t.Run("optional failure degrades", func(t *testing.T) {
		t.Parallel()
		resp, err := health.Run(context.Background(),
			health.Checks{"postgres": ok, "redis": failing},
			health.WithOptional("redis"),
		)
		require.NoError(t, err)
		assert.Equal(t, health.StatusDegraded, resp.Status)
		assert.True(t, resp.Checks["redis"].Optional)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		slow := func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}
		resp, err := health.Run(context.Background(), health.Checks{"slow": slow}, health.WithTimeout(10*time.Millisecond))
		require.ErrorIs(t, err, health.ErrCheckFailed)
		assert.Equal(t, health.StatusUnhealthy, resp.Status)
		assert.Contains(t, resp.Checks["slow"].Error, health.ErrCheckTimeout.Error())
	})
}

func TestLivenessHandler(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	health.LivenessHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestReadinessHandler(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		checks     health.Checks
		opts       []health.Option
		wantCode   int
		wantStatus string
	}{
		{name: "healthy", checks: health.Checks{"postgres": ok}, wantCode: http.StatusOK, wantStatus: health.StatusHealthy},
		{name: "unhealthy", checks: health.Checks{"postgres": failing}, wantCode: http.StatusServiceUnavailable, wantStatus: health.StatusUnhealthy},
		{
			name:       "degraded",
			checks:     health.Checks{"postgres": ok, "redis": failing},
			opts:       []health.Option{health.WithOptional("redis")},
			wantCode:   http.StatusOK,
			wantStatus: health.StatusDegraded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/readyz?format=json", nil)
			health.ReadinessHandler(tt.checks, tt.opts...)(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var resp health.Response
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
		})
	}

	t.Run("plain text", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		health.ReadinessHandler(health.Checks{"postgres": failing})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "Service Unavailable", rec.Body.String())
	})
}
