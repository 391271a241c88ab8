package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/snow-ghost/validator/core"
	"github.com/snow-ghost/validator/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestRenderSummary(t *testing.T) {
	summary := validator.Summary{
		Total: 3, Processed: 3, Success: 2, Failed: 1,
		Failures: []validator.Failure{{PracticeID: "p3", Error: "not found"}},
	}

	var buf bytes.Buffer
	require.NoError(t, renderSummary(&buf, summary, formatConsole))
	assert.Contains(t, buf.String(), "Revalidation summary")
	assert.Contains(t, buf.String(), "p3")
	assert.Contains(t, buf.String(), "not found")

	buf.Reset()
	require.NoError(t, renderSummary(&buf, summary, formatJSON))
	var got validator.Summary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, summary, got)
}

func TestRenderReport(t *testing.T) {
	report := core.ValidationReport{
		PracticeID: "p1",
		ValidScores: map[core.CriterionID]core.CriterionEvaluation{
			core.CriterionQuality: {Score: 7.25, IsValid: true},
		},
		InvalidScores: map[core.CriterionID]core.CriterionEvaluation{
			core.CriterionReliability: {Score: 2},
		},
		Recommendations: []string{"Criterion Rel needs improvement: thin evidence"},
		Decision:        core.DecisionNeedsImprovement,
	}

	var buf bytes.Buffer
	require.NoError(t, renderReport(&buf, report, formatConsole))
	out := buf.String()
	assert.Contains(t, out, "p1")
	assert.Contains(t, out, "needs_improvement")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "Quality")
	assert.Contains(t, out, "7.25")
	assert.Contains(t, out, "Reliability")
	assert.Contains(t, out, "thin evidence")
	assert.NotContains(t, out, "Utility")
}

func TestReadPractice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"p1","implementation_steps":["a"]}`), 0o644))

	p, err := readPractice(path)
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.Equal(t, "a", p.ImplementationSteps[0].Description)

	_, err = readPractice(filepath.Join(t.TempDir(), "none.json"))
	assert.Error(t, err)
}

func TestSaveSummary(t *testing.T) {
	summary := validator.Summary{
		Total: 2, Processed: 2, Success: 1, Failed: 1,
		Failures: []validator.Failure{{PracticeID: "p2", Error: "not found"}},
		Validations: []validator.PracticeReport{{
			ID:         "p1",
			Validation: core.ValidationReport{PracticeID: "p1", Decision: core.DecisionReview},
		}},
	}
	dir := filepath.Join(t.TempDir(), "results")
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

	path, err := saveSummary(dir, summary, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "revalidation_results_20260314_092653.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got validator.Summary
	require.NoError(t, json.Unmarshal(data, &got))
	require.Len(t, got.Validations, 1)
	assert.Equal(t, "p1", got.Validations[0].ID)
	assert.Equal(t, core.DecisionReview, got.Validations[0].Validation.Decision)
	assert.Equal(t, summary.Failures, got.Failures)
}

func TestNewObservability(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	quiet, err := newObservability(false)
	require.NoError(t, err)
	assert.False(t, quiet.GetLogger().Zap().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, quiet.GetLogger().Zap().Core().Enabled(zapcore.ErrorLevel))
	assert.False(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))

	verbose, err := newObservability(true)
	require.NoError(t, err)
	assert.True(t, verbose.GetLogger().Zap().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelInfo))
	assert.NotNil(t, verbose.GetMetrics())
}
