package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/snow-ghost/validator/core"
	"github.com/snow-ghost/validator/validator"
)

const (
	formatConsole = "console"
	formatJSON    = "json"
)

type styles struct {
	header lipgloss.Style
	good   lipgloss.Style
	warn   lipgloss.Style
	bad    lipgloss.Style
	dim    lipgloss.Style
}

func newStyles() styles {
	return styles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		good:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		bad:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (s styles) decision(d core.Decision) lipgloss.Style {
	switch d {
	case core.DecisionApprove:
		return s.good
	case core.DecisionReview:
		return s.warn
	default:
		return s.bad
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// saveSummary writes summary as JSON to a timestamped file under dir.
func saveSummary(dir string, summary validator.Summary, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	path := filepath.Join(dir, "revalidation_results_"+now.Format("20060102_150405")+".json")
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create results file: %w", err)
	}
	if err := writeJSON(f, summary); err != nil {
		f.Close()
		return "", fmt.Errorf("write results: %w", err)
	}
	return path, f.Close()
}

func renderSummary(w io.Writer, summary validator.Summary, format string) error {
	if format == formatJSON {
		return writeJSON(w, summary)
	}
	s := newStyles()
	var b strings.Builder
	b.WriteString(s.header.Render("Revalidation summary") + "\n")
	fmt.Fprintf(&b, "  total:     %d\n", summary.Total)
	fmt.Fprintf(&b, "  processed: %d\n", summary.Processed)
	fmt.Fprintf(&b, "  success:   %s\n", s.good.Render(fmt.Sprint(summary.Success)))
	fmt.Fprintf(&b, "  failed:    %s\n", s.bad.Render(fmt.Sprint(summary.Failed)))
	for _, f := range summary.Failures {
		fmt.Fprintf(&b, "  %s %s\n", s.bad.Render(f.PracticeID), s.dim.Render(f.Error))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func renderReport(w io.Writer, report core.ValidationReport, format string) error {
	if format == formatJSON {
		return writeJSON(w, report)
	}
	s := newStyles()
	var b strings.Builder

	title := "Validation report"
	if report.PracticeID != "" {
		title += " for " + report.PracticeID
	}
	b.WriteString(s.header.Render(title) + "\n")
	fmt.Fprintf(&b, "  decision:    %s\n", s.decision(report.Decision).Render(string(report.Decision)))
	fmt.Fprintf(&b, "  final score: %s\n", formatScore(report.FinalScore))
	if report.PracticeType != "" {
		fmt.Fprintf(&b, "  type:        %s\n", report.PracticeType)
	}

	b.WriteString(s.header.Render("Criteria") + "\n")
	for _, id := range core.Criteria {
		ce, valid := report.ValidScores[id]
		if !valid {
			var ok bool
			if ce, ok = report.InvalidScores[id]; !ok {
				continue
			}
		}
		status := s.good.Render("valid")
		if !valid {
			status = s.bad.Render("invalid")
		}
		fmt.Fprintf(&b, "  %-16s %5.2f  %s\n", id.Name(), ce.Score, status)
	}

	if len(report.Recommendations) > 0 {
		b.WriteString(s.header.Render("Recommendations") + "\n")
		for _, r := range report.Recommendations {
			fmt.Fprintf(&b, "  - %s\n", r)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatScore(score *float64) string {
	if score == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", *score)
}
