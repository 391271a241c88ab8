// Package registry loads the threshold table from YAML.
package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/snow-ghost/validator/core"
	"gopkg.in/yaml.v3"
)

// MetricConfig is one sub-metric entry. Omitted fields keep the default
// threshold values.
type MetricConfig struct {
	MinValue *float64 `yaml:"min_value,omitempty"`
	Weight   *float64 `yaml:"weight,omitempty"`
	Required *bool    `yaml:"required,omitempty"`
}

// File is the on-disk layout:
//
//	criteria:
//	  Q:
//	    fullness: {min_value: 6, weight: 0.4, required: true}
type File struct {
	Criteria map[core.CriterionID]map[string]MetricConfig `yaml:"criteria"`
}

// Loader reads threshold files.
type Loader struct {
	configPath string
}

// NewLoader creates a loader for configPath.
func NewLoader(configPath string) *Loader {
	return &Loader{configPath: configPath}
}

// Load returns the built-in table when no file is configured or the file
// does not exist. Otherwise the file is applied on top of the built-in table.
func (l *Loader) Load() (*core.ThresholdRegistry, error) {
	thresholds := core.DefaultThresholds()
	if l.configPath == "" {
		return thresholds, nil
	}

	data, err := os.ReadFile(l.configPath)
	if os.IsNotExist(err) {
		return thresholds, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read thresholds file %s: %w", l.configPath, err)
	}

	if err := Apply(thresholds, data); err != nil {
		return nil, fmt.Errorf("%s: %w", l.configPath, err)
	}
	return thresholds, nil
}

// Apply parses data and sets every entry on r.
func Apply(r *core.ThresholdRegistry, data []byte) error {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	for id, metrics := range file.Criteria {
		if !id.IsKnown() {
			return fmt.Errorf("unknown criterion %q", id)
		}
		for name, m := range metrics {
			var opts []core.ThresholdOption
			if m.MinValue != nil {
				opts = append(opts, core.WithMinValue(*m.MinValue))
			}
			if m.Weight != nil {
				if *m.Weight < 0 {
					return fmt.Errorf("criterion %s metric %s: negative weight", id, name)
				}
				opts = append(opts, core.WithWeight(*m.Weight))
			}
			if m.Required != nil {
				opts = append(opts, core.WithRequired(*m.Required))
			}
			r.Set(id, name, opts...)
		}
	}
	return nil
}

// Save writes r to the loader's path.
func (l *Loader) Save(r *core.ThresholdRegistry) error {
	data, err := Marshal(r)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(l.configPath), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(l.configPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write thresholds file: %w", err)
	}
	return nil
}

// Marshal renders r in the file layout.
func Marshal(r *core.ThresholdRegistry) ([]byte, error) {
	file := File{Criteria: make(map[core.CriterionID]map[string]MetricConfig)}
	for id, metrics := range r.Snapshot() {
		out := make(map[string]MetricConfig, len(metrics))
		names := make([]string, 0, len(metrics))
		for name := range metrics {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			t := metrics[name]
			out[name] = MetricConfig{MinValue: &t.MinValue, Weight: &t.Weight, Required: &t.Required}
		}
		file.Criteria[id] = out
	}
	data, err := yaml.Marshal(file)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return data, nil
}
