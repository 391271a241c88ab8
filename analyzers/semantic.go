package analyzers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/snow-ghost/validator/core"
	"github.com/snow-ghost/validator/pkg/tokens"
)

// Completer produces a text completion for a prompt.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNoScores is returned when a model response carries no usable JSON scores.
var ErrNoScores = errors.New("no scores in model response")

const semanticPrompt = `You are an expert in analyzing software development practices.

Evaluate the %s of the described practice on these criteria (0-10):
%s
Practice description:
%s

Provide scores in JSON format:
%s

Explain your reasoning after the JSON, then end with </response>.`

var metricHints = map[string]string{
	"problem_clarity": "how clearly the problem and its goals are stated",
	"benefits":        "how concrete and measurable the benefits are",
	"efficiency":      "value delivered relative to cost and time",
	"universality":    "how universal the approach is across domains",
	"scalability":     "how well it scales from a person to an organization",
	"constraints":     "how precisely its limits and conditions are described",
}

// Semantic asks a language model to score the sub-metrics of one criterion.
// The heuristic analyzer it wraps supplies any metric the model omits, and
// its result is returned unchanged when the model cannot be used.
type Semantic struct {
	criterion core.CriterionID
	base      core.Analyzer
	llm       Completer
	encoder   tokens.Encoder
	budget    int
	weights   map[string]float64
}

// SemanticOption configures a Semantic analyzer.
type SemanticOption func(*Semantic)

// WithEncoder sets the encoder and token budget used to truncate the
// practice description.
func WithEncoder(enc tokens.Encoder, maxTokens int) SemanticOption {
	return func(s *Semantic) {
		s.encoder = enc
		s.budget = maxTokens
	}
}

// NewSemantic wraps base for criterion with a language model scorer.
func NewSemantic(criterion core.CriterionID, base core.Analyzer, llm Completer, opts ...SemanticOption) *Semantic {
	s := &Semantic{
		criterion: criterion,
		base:      base,
		llm:       llm,
		encoder:   tokens.NewEstimateEncoder(),
		budget:    tokens.DefaultBudget().Available(),
		weights:   Weights(criterion),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithSemantic replaces the Utility and Applicability analyzers of set with
// semantic ones backed by llm.
func WithSemantic(set map[core.CriterionID]core.Analyzer, llm Completer, opts ...SemanticOption) map[core.CriterionID]core.Analyzer {
	out := make(map[core.CriterionID]core.Analyzer, len(set))
	for id, a := range set {
		out[id] = a
	}
	for _, id := range []core.CriterionID{core.CriterionUtility, core.CriterionApplicability} {
		if base, ok := out[id]; ok {
			out[id] = NewSemantic(id, base, llm, opts...)
		}
	}
	return out
}

func (s *Semantic) Analyze(ctx context.Context, p core.Practice) core.CriterionResult {
	result := s.base.Analyze(ctx, p)

	resp, err := s.llm.Complete(ctx, s.prompt(p))
	if err == nil {
		var scores map[string]float64
		scores, err = ExtractScores(resp)
		if err == nil {
			return s.merge(result, scores)
		}
	}
	slog.WarnContext(ctx, "semantic scoring failed, keeping heuristic result",
		"criterion", s.criterion, "practice_id", p.ID, "error", err)
	result.Explanation += fmt.Sprintf(". Semantic scoring unavailable: %v", err)
	return result
}

func (s *Semantic) metrics() []string {
	names := make([]string, 0, len(s.weights))
	for name := range s.weights {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (s *Semantic) prompt(p core.Practice) string {
	var criteria, schema strings.Builder
	schema.WriteString("{")
	for i, name := range s.metrics() {
		hint := metricHints[name]
		if hint == "" {
			hint = strings.ReplaceAll(name, "_", " ")
		}
		fmt.Fprintf(&criteria, "%d. %s - %s\n", i+1, name, hint)
		if i > 0 {
			schema.WriteString(", ")
		}
		fmt.Fprintf(&schema, "%q: float", name)
	}
	schema.WriteString("}")

	description := s.encoder.Truncate(describe(p), s.budget)
	return fmt.Sprintf(semanticPrompt,
		strings.ToLower(s.criterion.Name()), criteria.String(), description, schema.String())
}

// merge overrides the requested metrics with model scores clamped to
// [0, 10] and recomputes the rollup.
func (s *Semantic) merge(base core.CriterionResult, scores map[string]float64) core.CriterionResult {
	details := make(map[string]float64, len(base.Details))
	for k, v := range base.Details {
		details[k] = v
	}
	used := 0
	for _, name := range s.metrics() {
		if v, ok := scores[name]; ok {
			details[name] = min(max(v, 0), 10)
			used++
		}
	}
	return core.CriterionResult{
		Score:       rollup(details, s.weights),
		Details:     details,
		Explanation: fmt.Sprintf("%s. %d of %d metrics scored by language model", base.Explanation, used, len(s.weights)),
	}
}

// ExtractScores parses the first JSON object in a model response. Numeric
// strings are accepted; other non-numeric values are dropped.
func ExtractScores(resp string) (map[string]float64, error) {
	start := strings.Index(resp, "{")
	if start < 0 {
		return nil, ErrNoScores
	}
	end := strings.Index(resp[start:], "}")
	if end < 0 {
		return nil, ErrNoScores
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(resp[start:start+end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoScores, err)
	}

	scores := make(map[string]float64, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case float64:
			scores[k] = val
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
				scores[k] = f
			}
		}
	}
	if len(scores) == 0 {
		return nil, ErrNoScores
	}
	return scores, nil
}

func describe(p core.Practice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\nSummary: %s\nProblem: %s\nSolution: %s\n", p.Title, p.Summary, p.Problem, p.Solution)
	if len(p.ImplementationSteps) > 0 {
		b.WriteString("Steps:\n")
		for i, s := range p.ImplementationSteps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, s.Description)
		}
	}
	if len(p.Benefits) > 0 {
		fmt.Fprintf(&b, "Benefits: %s\n", strings.Join(p.Benefits, "; "))
	}
	if len(p.Limitations) > 0 {
		fmt.Fprintf(&b, "Limitations: %s\n", strings.Join(p.Limitations, "; "))
	}
	return b.String()
}
