package era

import (
	"errors"
	"math"
	"testing"

	"github.com/talgya/deeptime/internal/faults"
)

func TestLookupCoversEveryEra(t *testing.T) {
	for i := 0; i < Count; i++ {
		e := Era(i)
		cfg, err := Lookup(e)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", e.Name(), err)
		}
		if cfg.Era != e {
			t.Fatalf("config for %s carries era %s", e.Name(), cfg.Era.Name())
		}
		if cfg.YearsPerTurn <= 0 {
			t.Fatalf("%s: years per turn must be positive", e.Name())
		}
		if cfg.MaxDomesticationStage < 0 || cfg.MaxDomesticationStage > 5 {
			t.Fatalf("%s: stage ceiling %d out of range", e.Name(), cfg.MaxDomesticationStage)
		}
	}
}

func TestLookupRejectsUnknownEra(t *testing.T) {
	_, err := Lookup(Era(200))
	var cfgErr *faults.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}
}

func TestEraLadderMonotonicTech(t *testing.T) {
	prev := -1.0
	for i := 0; i < Count; i++ {
		cfg, _ := Lookup(Era(i))
		if cfg.TechBaseline <= prev {
			t.Fatalf("tech baseline not increasing at %s", Era(i).Name())
		}
		prev = cfg.TechBaseline
	}
}

func TestFactorsClampedFlagsOutOfDomain(t *testing.T) {
	f := Factors{
		TechnologyLevel: 1.7,
		ConsumptionRate: -0.2,
		PopulationSize:  math.NaN(),
		Policies:        Policies{DevelopmentDrive: 2.0},
	}
	clamped, warns := f.Clamped()
	if clamped.TechnologyLevel != 1 || clamped.ConsumptionRate != 0 {
		t.Fatalf("expected clamping to nearest bound, got %+v", clamped)
	}
	if clamped.PopulationSize != 0 {
		t.Fatalf("NaN population not reset: %g", clamped.PopulationSize)
	}
	if clamped.Policies.DevelopmentDrive != 1 {
		t.Fatalf("policy not clamped: %g", clamped.Policies.DevelopmentDrive)
	}
	if len(warns) != 4 {
		t.Fatalf("expected 4 warnings, got %d: %v", len(warns), warns)
	}
}

func TestFactorsClampedNoWarningsWhenValid(t *testing.T) {
	f := Factors{TechnologyLevel: 0.5, ConsumptionRate: 0.5, PopulationSize: 1000}
	_, warns := f.Clamped()
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
}

func TestPolicyConflict(t *testing.T) {
	p := Policies{ConservationEffort: 0.9, DevelopmentDrive: 0.9}
	err := p.ConflictCheck()
	var conflict *faults.PolicyConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected PolicyConflictError, got %v", err)
	}
	if err := (Policies{ConservationEffort: 0.9, DevelopmentDrive: 0.3}).ConflictCheck(); err != nil {
		t.Fatalf("unexpected conflict: %v", err)
	}
}

func TestPopulationPressureBounds(t *testing.T) {
	cases := []struct {
		pop, consumption float64
	}{
		{0, 0}, {100, 0.5}, {1e6, 1}, {1e10, 1}, {1e15, 1},
	}
	for _, tc := range cases {
		f := Factors{PopulationSize: tc.pop, ConsumptionRate: tc.consumption}
		p := f.PopulationPressure()
		if p < 0 || p > 1 {
			t.Fatalf("pressure %g out of [0,1] for pop=%g", p, tc.pop)
		}
	}
	small := Factors{PopulationSize: 1e3, ConsumptionRate: 0.5}
	large := Factors{PopulationSize: 1e9, ConsumptionRate: 0.5}
	if small.PopulationPressure() >= large.PopulationPressure() {
		t.Fatal("pressure should grow with population")
	}
}
