package core

import (
	"sort"
	"sync"
)

const (
	DefaultMinValue = 6.0
	DefaultWeight   = 1.0
)

// Threshold configures one (criterion, sub-metric) pair.
type Threshold struct {
	MinValue float64 `json:"min_value" yaml:"min_value"`
	Weight   float64 `json:"weight" yaml:"weight"`
	Required bool    `json:"required" yaml:"required"`
}

// DefaultThreshold returns min_value 6.0, weight 1.0, required.
func DefaultThreshold() Threshold {
	return Threshold{MinValue: DefaultMinValue, Weight: DefaultWeight, Required: true}
}

// ThresholdOption mutates a single field of a Threshold.
type ThresholdOption func(*Threshold)

// WithMinValue sets the minimum acceptable sub-metric score.
func WithMinValue(v float64) ThresholdOption {
	return func(t *Threshold) { t.MinValue = v }
}

// WithWeight sets the contribution multiplier.
func WithWeight(w float64) ThresholdOption {
	return func(t *Threshold) { t.Weight = w }
}

// WithRequired sets whether a failing sub-metric invalidates the criterion.
func WithRequired(r bool) ThresholdOption {
	return func(t *Threshold) { t.Required = r }
}

// ThresholdRegistry holds thresholds keyed by criterion and sub-metric.
// It is meant to be populated at startup and read during evaluation.
type ThresholdRegistry struct {
	mu         sync.RWMutex
	thresholds map[CriterionID]map[string]Threshold
}

// NewThresholdRegistry returns an empty registry.
func NewThresholdRegistry() *ThresholdRegistry {
	return &ThresholdRegistry{thresholds: make(map[CriterionID]map[string]Threshold)}
}

// Get returns the threshold for (criterion, metric) if configured.
func (r *ThresholdRegistry) Get(criterion CriterionID, metric string) (Threshold, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metrics, ok := r.thresholds[criterion]
	if !ok {
		return Threshold{}, false
	}
	t, ok := metrics[metric]
	return t, ok
}

// Set applies opts to the threshold for (criterion, metric). Fields not
// named by an option keep their current value; a pair that was not
// configured yet starts from DefaultThreshold.
func (r *ThresholdRegistry) Set(criterion CriterionID, metric string, opts ...ThresholdOption) {
	r.mu.Lock()
	defer r.mu.Unlock()

	metrics, ok := r.thresholds[criterion]
	if !ok {
		metrics = make(map[string]Threshold)
		r.thresholds[criterion] = metrics
	}
	t, ok := metrics[metric]
	if !ok {
		t = DefaultThreshold()
	}
	for _, opt := range opts {
		opt(&t)
	}
	metrics[metric] = t
}

// Metrics returns the configured sub-metric names of a criterion, sorted.
func (r *ThresholdRegistry) Metrics(criterion CriterionID) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.thresholds[criterion]))
	for name := range r.thresholds[criterion] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Criteria returns the criteria that have at least one configured metric.
func (r *ThresholdRegistry) Criteria() []CriterionID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var ids []CriterionID
	for _, id := range Criteria {
		if len(r.thresholds[id]) > 0 {
			ids = append(ids, id)
		}
	}
	return ids
}

// Snapshot returns a deep copy of the table.
func (r *ThresholdRegistry) Snapshot() map[CriterionID]map[string]Threshold {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[CriterionID]map[string]Threshold, len(r.thresholds))
	for id, metrics := range r.thresholds {
		cp := make(map[string]Threshold, len(metrics))
		for name, t := range metrics {
			cp[name] = t
		}
		out[id] = cp
	}
	return out
}

// DefaultThresholds returns the production threshold table.
func DefaultThresholds() *ThresholdRegistry {
	r := NewThresholdRegistry()
	table := []struct {
		criterion CriterionID
		metric    string
		weight    float64
		required  bool
	}{
		{CriterionQuality, "fullness", 0.4, true},
		{CriterionQuality, "structure", 0.3, true},
		{CriterionQuality, "examples", 0.15, false},
		{CriterionQuality, "limitations", 0.15, false},

		{CriterionReproducibility, "steps_clarity", 0.4, true},
		{CriterionReproducibility, "requirements", 0.3, true},
		{CriterionReproducibility, "resources", 0.3, true},

		{CriterionUtility, "problem_clarity", 0.35, true},
		{CriterionUtility, "benefits", 0.35, true},
		{CriterionUtility, "efficiency", 0.30, false},

		{CriterionApplicability, "universality", 0.35, true},
		{CriterionApplicability, "scalability", 0.35, true},
		{CriterionApplicability, "constraints", 0.30, false},

		{CriterionInnovation, "novelty", 0.4, false},
		{CriterionInnovation, "tech_complexity", 0.3, false},
		{CriterionInnovation, "potential", 0.3, true},

		{CriterionReliability, "empirical_validation", 0.35, true},
		{CriterionReliability, "methodology", 0.25, true},
		{CriterionReliability, "adaptability", 0.20, false},
		{CriterionReliability, "external_validation", 0.20, false},
	}
	for _, row := range table {
		r.Set(row.criterion, row.metric,
			WithMinValue(DefaultMinValue), WithWeight(row.weight), WithRequired(row.required))
	}
	return r
}
