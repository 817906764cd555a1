package tuning

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/talgya/deeptime/internal/faults"
)

// Params collects every tunable the evolution engine reads. The zero value is
// not usable; start from Defaults and optionally overlay a YAML file.
type Params struct {
	// Cascade propagation.
	MaxCascadeDepth int     `yaml:"max_cascade_depth"`
	CascadeDecay    float64 `yaml:"cascade_decay"`

	// Bounded interaction history kept on the evolution state.
	HistoryCap int `yaml:"history_cap"`

	// Local numeric recoveries tolerated inside one transition before the
	// step escalates to fatal.
	InstabilityFatalThreshold int `yaml:"instability_fatal_threshold"`

	// Soft compute budget for one canonical era transition. Zero disables the
	// budget (projections always run unbudgeted for determinism).
	// YAML overrides are nanoseconds.
	TransitionBudget time.Duration `yaml:"transition_budget"`

	// Per-scenario compute budget for projections. Zero disables.
	ScenarioBudget time.Duration `yaml:"scenario_budget"`

	// Scenario classification thresholds.
	CollapsePopulation  float64 `yaml:"collapse_population"`   // survival floor, absolute persons
	CollapseForestCover float64 `yaml:"collapse_forest_cover"` // irrecoverable landscape point
	BreakthroughHealth  float64 `yaml:"breakthrough_health"`   // multi-metric health threshold
	BreakthroughSustain int     `yaml:"breakthrough_sustain"`  // consecutive steps required

	// Climate feedback cap. The feedback modifier is clamped to this so the
	// self-reinforcement term remains a contraction under compounding.
	FeedbackCap float64 `yaml:"feedback_cap"`
}

// Defaults returns the shipped parameter set.
func Defaults() Params {
	return Params{
		MaxCascadeDepth:           3,
		CascadeDecay:              Decay,
		HistoryCap:                64,
		InstabilityFatalThreshold: 8,
		TransitionBudget:          200 * time.Millisecond,
		ScenarioBudget:            5 * time.Second,
		CollapsePopulation:        500,
		CollapseForestCover:       0.1,
		BreakthroughHealth:        0.85,
		BreakthroughSustain:       5,
		FeedbackCap:               1.5,
	}
}

// Load returns Defaults overlaid with the YAML file at path.
func Load(path string) (Params, error) {
	p := Defaults()
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read params: %w", err)
	}
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("parse params %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// Validate rejects parameter sets that would break the engine's convergence
// or recovery guarantees.
func (p Params) Validate() error {
	switch {
	case p.MaxCascadeDepth < 0 || p.MaxCascadeDepth > 10:
		return &faults.ConfigurationError{Field: "max_cascade_depth", Reason: fmt.Sprintf("must be 0–10, got %d", p.MaxCascadeDepth)}
	case p.CascadeDecay <= 0 || p.CascadeDecay >= 1:
		return &faults.ConfigurationError{Field: "cascade_decay", Reason: fmt.Sprintf("must be in (0,1) for convergence, got %g", p.CascadeDecay)}
	case p.HistoryCap < 1:
		return &faults.ConfigurationError{Field: "history_cap", Reason: "must be at least 1"}
	case p.InstabilityFatalThreshold < 1:
		return &faults.ConfigurationError{Field: "instability_fatal_threshold", Reason: "must be at least 1"}
	case p.CollapseForestCover < 0 || p.CollapseForestCover >= 1:
		return &faults.ConfigurationError{Field: "collapse_forest_cover", Reason: "must be in [0,1)"}
	case p.BreakthroughHealth <= 0 || p.BreakthroughHealth > 1:
		return &faults.ConfigurationError{Field: "breakthrough_health", Reason: "must be in (0,1]"}
	case p.BreakthroughSustain < 1:
		return &faults.ConfigurationError{Field: "breakthrough_sustain", Reason: "must be at least 1"}
	case p.FeedbackCap < 1:
		return &faults.ConfigurationError{Field: "feedback_cap", Reason: "must be at least 1"}
	}
	return nil
}
