package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/snow-ghost/validator/core"
	"github.com/snow-ghost/validator/pkg/limiter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackReason(t *testing.T) {
	assert.Equal(t, "timeout", FallbackReason(fmt.Errorf("analyzer: %w", context.DeadlineExceeded)))
	assert.Equal(t, "canceled", FallbackReason(context.Canceled))
	assert.Equal(t, "panic", FallbackReason(errors.New("index out of range")))
}

func TestManager_ValidationAndAnalyzer(t *testing.T) {
	m := NewNop()
	ctx := context.Background()

	actx, span := m.StartAnalyzer(ctx, core.CriterionUtility)
	m.FinishAnalyzer(actx, span, core.CriterionUtility, time.Millisecond, context.DeadlineExceeded)

	vctx, vspan := m.StartValidation(ctx, "p1")
	score := 7.0
	m.FinishValidation(vctx, vspan, core.ValidationReport{PracticeID: "p1", Decision: core.DecisionApprove, FinalScore: &score}, time.Millisecond, nil)

	mt := m.GetMetrics()
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.AnalyzerFallbacksTotal.WithLabelValues("U", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(mt.ValidationsTotal.WithLabelValues("approve")))

	rec := httptest.NewRecorder()
	m.MetricsHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "validator_validations_total")
	assert.NoError(t, m.Shutdown(ctx))
}

func TestManager_InstrumentCountsRetries(t *testing.T) {
	m := NewNop()
	policy := limiter.StoragePolicy()
	policy.Retry.BaseDelay = time.Millisecond
	pm := limiter.NewProtectionManager()
	m.Instrument(pm, policy)

	calls := 0
	_, err := pm.ExecuteWithProtection(context.Background(), "storage", func(context.Context) (interface{}, error) {
		calls++
		if calls < 3 {
			return nil, limiter.NewHTTPError(http.StatusBadGateway, "bad gateway", "")
		}
		return "ok", nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2.0, testutil.ToFloat64(m.GetMetrics().RetriesTotal.WithLabelValues("storage")))
}
