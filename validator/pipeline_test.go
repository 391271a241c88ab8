package validator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/snow-ghost/validator/core"
	"github.com/snow-ghost/validator/pkg/events"
	"github.com/snow-ghost/validator/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	practices map[string]core.Practice
	reports   map[string]core.ValidationReport
	upsertErr error
}

func newMemStore(ids ...string) *memStore {
	s := &memStore{practices: make(map[string]core.Practice), reports: make(map[string]core.ValidationReport)}
	for _, id := range ids {
		s.practices[id] = core.Practice{Title: "practice " + id}
	}
	return s
}

func (s *memStore) GetPractice(_ context.Context, id string) (core.Practice, error) {
	p, ok := s.practices[id]
	if !ok {
		return core.Practice{}, fmt.Errorf("get practice %s: %w", id, storage.ErrNotFound)
	}
	return p, nil
}

func (s *memStore) ListPracticeIDs(context.Context) ([]string, error) {
	return []string{"a", "missing", "b"}, nil
}

func (s *memStore) UpsertValidation(_ context.Context, id string, report core.ValidationReport) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.reports[id] = report
	return nil
}

type memLedger struct {
	recorded []core.ValidationReport
	err      error
}

func (l *memLedger) Record(_ context.Context, report core.ValidationReport) error {
	if l.err != nil {
		return l.err
	}
	l.recorded = append(l.recorded, report)
	return nil
}

func approving() *Validator {
	return New(allFixed(map[string]float64{"m1": 8.0}), uniform("m1"))
}

func TestPipeline_Handle(t *testing.T) {
	store := newMemStore("a")
	ledger := &memLedger{}
	p := NewPipeline(store, approving(), store, ledger)

	report, err := p.Handle(context.Background(), "a")
	require.NoError(t, err)

	assert.Equal(t, "a", report.PracticeID)
	assert.Equal(t, core.DecisionApprove, report.Decision)
	assert.Equal(t, report, store.reports["a"])
	require.Len(t, ledger.recorded, 1)
	assert.Equal(t, "a", ledger.recorded[0].PracticeID)
}

func TestPipeline_HandleErrors(t *testing.T) {
	t.Run("missing practice", func(t *testing.T) {
		store := newMemStore()
		_, err := NewPipeline(store, approving(), store, nil).Handle(context.Background(), "x")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("store failure skips ledger", func(t *testing.T) {
		store := newMemStore("a")
		store.upsertErr = errors.New("storage down")
		ledger := &memLedger{}
		_, err := NewPipeline(store, approving(), store, ledger).Handle(context.Background(), "a")
		assert.ErrorContains(t, err, "store report")
		assert.Empty(t, ledger.recorded)
	})

	t.Run("ledger failure", func(t *testing.T) {
		store := newMemStore("a")
		_, err := NewPipeline(store, approving(), store, &memLedger{err: errors.New("locked")}).
			Handle(context.Background(), "a")
		assert.ErrorContains(t, err, "record decision")
		assert.Contains(t, store.reports, "a")
	})
}

func TestPipeline_RevalidateAll(t *testing.T) {
	store := newMemStore("a", "b")
	p := NewPipeline(store, approving(), store, nil)

	summary, err := p.RevalidateAll(context.Background(), store)
	require.NoError(t, err)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 2, summary.Success)
	assert.Equal(t, 1, summary.Failed)
	require.Len(t, summary.Failures, 1)
	assert.Equal(t, "missing", summary.Failures[0].PracticeID)
	assert.Len(t, store.reports, 2)

	require.Len(t, summary.Validations, 2)
	assert.Equal(t, "a", summary.Validations[0].ID)
	assert.Equal(t, "b", summary.Validations[1].ID)
	assert.Equal(t, store.reports["a"], summary.Validations[0].Validation)
	assert.Equal(t, core.DecisionApprove, summary.Validations[1].Validation.Decision)
}

func TestPipeline_RevalidateAllCancelled(t *testing.T) {
	store := newMemStore("a", "b")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := NewPipeline(store, approving(), store, nil).RevalidateAll(ctx, store)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Processed)
}

func TestEventHandler(t *testing.T) {
	t.Run("deleted practice is permanent", func(t *testing.T) {
		store := newMemStore()
		err := EventHandler(NewPipeline(store, approving(), store, nil))(context.Background(), "gone")
		assert.ErrorIs(t, err, events.ErrPermanent)
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("no criteria is permanent", func(t *testing.T) {
		store := newMemStore("a")
		v := New(nil, core.DefaultThresholds())
		err := EventHandler(NewPipeline(store, v, store, nil))(context.Background(), "a")
		assert.ErrorIs(t, err, events.ErrPermanent)
		assert.ErrorIs(t, err, core.ErrNoCriteria)
	})

	t.Run("storage outage is transient", func(t *testing.T) {
		store := newMemStore("a")
		store.upsertErr = errors.New("storage down")
		err := EventHandler(NewPipeline(store, approving(), store, nil))(context.Background(), "a")
		require.Error(t, err)
		assert.NotErrorIs(t, err, events.ErrPermanent)
	})

	t.Run("success", func(t *testing.T) {
		store := newMemStore("a")
		assert.NoError(t, EventHandler(NewPipeline(store, approving(), store, nil))(context.Background(), "a"))
	})
}
