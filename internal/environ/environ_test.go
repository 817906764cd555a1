package environ

import (
	"math"
	"testing"

	"github.com/talgya/deeptime/internal/era"
)

func cfgFor(t *testing.T, e era.Era) era.Config {
	t.Helper()
	cfg, err := era.Lookup(e)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

// With no human impact and no natural variation, a climate variable never
// leaves its initial variation range.
func TestQuiescentClimateStaysInVariationRange(t *testing.T) {
	s := NewBaseline(1)
	for i := range s.Climate {
		s.Climate[i].Cycles = nil
		s.Climate[i].JitterAmplitude = 0
	}
	cfg := cfgFor(t, era.Ancient)

	year := 0.0
	for step := 0; step < 1000; step++ {
		s.Evolve(cfg, Impact{}, year, cfg.YearsPerTurn, 1.5)
		year += cfg.YearsPerTurn
		for _, c := range s.Climate {
			if math.Abs(c.Current-c.Baseline) > c.VariationRange {
				t.Fatalf("step %d: %s drifted to %g (baseline %g, range %g)",
					step, c.Name, c.Current, c.Baseline, c.VariationRange)
			}
		}
	}
}

func TestNaturalCyclesAloneStayBounded(t *testing.T) {
	s := NewBaseline(42)
	cfg := cfgFor(t, era.Prehistoric)

	year := 0.0
	for step := 0; step < 1000; step++ {
		s.Evolve(cfg, Impact{}, year, cfg.YearsPerTurn, 1.5)
		year += cfg.YearsPerTurn
		for _, c := range s.Climate {
			if c.Current < c.Min || c.Current > c.Max {
				t.Fatalf("step %d: %s = %g outside [%g,%g]", step, c.Name, c.Current, c.Min, c.Max)
			}
			if math.IsNaN(c.Current) || math.IsInf(c.Current, 0) {
				t.Fatalf("%s went non-finite", c.Name)
			}
		}
	}
}

func TestFeedbackModifierCapped(t *testing.T) {
	c := ClimateVariable{Name: "t", Current: 9, Baseline: 0, VariationRange: 0.5, FeedbackGain: 2}
	if fb := c.FeedbackModifier(1.5); fb != 1.5 {
		t.Fatalf("modifier not capped: %g", fb)
	}
	c.Current = 0.2
	if fb := c.FeedbackModifier(1.5); fb != 1 {
		t.Fatalf("modifier inside band must be 1, got %g", fb)
	}
}

func TestLandscapeDegradesAgainstResilience(t *testing.T) {
	s := NewBaseline(1)
	cfg := cfgFor(t, era.Industrial)
	impact := Impact{DevelopmentPressure: 1, ConservationFactor: 0}

	forest := s.Metric(MetricForestCover)
	before := forest.Current
	s.Evolve(cfg, impact, 0, cfg.YearsPerTurn, 1.5)
	if forest.Current >= before {
		t.Fatalf("forest cover did not degrade: %g -> %g", before, forest.Current)
	}
	if forest.Current < 0 {
		t.Fatalf("forest cover below zero: %g", forest.Current)
	}
}

func TestConservationFundsRecovery(t *testing.T) {
	s := NewBaseline(1)
	cfg := cfgFor(t, era.Ancient)
	forest := s.Metric(MetricForestCover)
	forest.Current = 0.3

	before := forest.Current
	s.Evolve(cfg, Impact{ConservationFactor: 1}, 0, cfg.YearsPerTurn, 1.5)
	if forest.Current <= before {
		t.Fatalf("full conservation should recover: %g -> %g", before, forest.Current)
	}
}

func TestResilienceTracksHealth(t *testing.T) {
	m := LandscapeMetric{Name: "x", Current: 0.9}
	m.RecomputeResilience()
	high := m.Resilience
	m.Current = 0.1
	m.RecomputeResilience()
	if m.Resilience >= high {
		t.Fatal("degraded landscape must be less resilient")
	}
}

func TestUnstableInputRecoveredAndFlagged(t *testing.T) {
	s := NewBaseline(1)
	cfg := cfgFor(t, era.Industrial)
	// Absurd sensitivity forces a delta far beyond the representable range.
	s.Climate[0].HumanSensitivity = 1e9

	rep := s.Evolve(cfg, Impact{PollutionPressure: 1}, 0, cfg.YearsPerTurn, 1.5)
	if len(rep.Instabilities) == 0 {
		t.Fatal("expected an instability flag")
	}
	c := s.Climate[0]
	if c.Current < c.Min || c.Current > c.Max {
		t.Fatalf("value not recovered by clamping: %g", c.Current)
	}
}

func TestJitterDeterministicInSeed(t *testing.T) {
	a := NewBaseline(9)
	b := NewBaseline(9)
	cfg := cfgFor(t, era.Classical)
	for step := 0; step < 50; step++ {
		a.Evolve(cfg, Impact{PollutionPressure: 0.3}, float64(step)*cfg.YearsPerTurn, cfg.YearsPerTurn, 1.5)
		b.Evolve(cfg, Impact{PollutionPressure: 0.3}, float64(step)*cfg.YearsPerTurn, cfg.YearsPerTurn, 1.5)
	}
	for i := range a.Climate {
		if a.Climate[i].Current != b.Climate[i].Current {
			t.Fatalf("climate %s diverged under identical seeds", a.Climate[i].Name)
		}
	}
}
