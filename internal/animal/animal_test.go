package animal

import (
	"testing"

	"github.com/talgya/deeptime/internal/entropy"
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

func goodHabitat() Habitat {
	return Habitat{ResourceAvailability: 0.8, HabitatQuality: 0.8, ClimateStress: 0.1}
}

// Zero human interaction pressure: no species leaves the wild, ever,
// regardless of technology level.
func TestNoAdvancementWithoutHumanPressure(t *testing.T) {
	s := NewBaseline()
	cfg := cfgFor(t, era.Stellar) // highest tech and stage ceiling
	f := era.Factors{TechnologyLevel: 1, PopulationSize: 0, Policies: era.Policies{AnimalHusbandry: 0}}
	rng := entropy.New(99)

	for step := 0; step < 500; step++ {
		s.Evolve(cfg, f, 0.8, goodHabitat(), rng.Derive("step", step))
	}
	for _, sp := range s.Species {
		if sp.Stage != Wild {
			t.Fatalf("%s advanced to %s with zero human pressure", sp.Name, sp.Stage.Name())
		}
	}
}

func TestAtMostOneStagePerStep(t *testing.T) {
	s := NewBaseline()
	cfg := cfgFor(t, era.Stellar)
	f := era.Factors{TechnologyLevel: 1, PopulationSize: 1e9, ConsumptionRate: 1,
		Policies: era.Policies{AnimalHusbandry: 1}}
	rng := entropy.New(7)

	prev := make(map[string]Stage, len(s.Species))
	for _, sp := range s.Species {
		prev[sp.Name] = sp.Stage
	}
	for step := 0; step < 200; step++ {
		s.Evolve(cfg, f, 0.8, goodHabitat(), rng.Derive("step", step))
		for _, sp := range s.Species {
			if sp.Stage < prev[sp.Name] {
				t.Fatalf("step %d: %s regressed without an event", step, sp.Name)
			}
			if int(sp.Stage)-int(prev[sp.Name]) > 1 {
				t.Fatalf("step %d: %s skipped a stage (%s -> %s)", step, sp.Name, prev[sp.Name].Name(), sp.Stage.Name())
			}
			prev[sp.Name] = sp.Stage
		}
	}
}

func TestEraCeilingGatesAdvancement(t *testing.T) {
	s := NewBaseline()
	cfg := cfgFor(t, era.Prehistoric) // ceiling: Attracted
	f := era.Factors{TechnologyLevel: 1, PopulationSize: 1e9, ConsumptionRate: 1,
		Policies: era.Policies{AnimalHusbandry: 1}}
	rng := entropy.New(3)

	for step := 0; step < 300; step++ {
		s.Evolve(cfg, f, 0.8, goodHabitat(), rng.Derive("step", step))
	}
	for _, sp := range s.Species {
		if int(sp.Stage) > cfg.MaxDomesticationStage {
			t.Fatalf("%s passed the era ceiling: %s", sp.Name, sp.Stage.Name())
		}
	}
}

func TestRegressionIsExplicitOnly(t *testing.T) {
	s := NewBaseline()
	sp := s.Find("wolf")
	sp.Stage = Domesticated

	ch, ok := s.ApplyRegression("wolf", "plague")
	if !ok || ch.To != SemiDomesticated || ch.Reason != "plague" {
		t.Fatalf("regression not applied: %+v ok=%v", ch, ok)
	}
	// Wild species cannot regress further.
	sp.Stage = Wild
	if _, ok := s.ApplyRegression("wolf", "plague"); ok {
		t.Fatal("wild species must not regress")
	}
}

func TestPopulationStaysNonNegativeAndBounded(t *testing.T) {
	s := NewBaseline()
	cfg := cfgFor(t, era.Industrial)
	f := era.Factors{TechnologyLevel: 0.5, PopulationSize: 1e9, ConsumptionRate: 1}
	harsh := Habitat{ResourceAvailability: 0.05, HabitatQuality: 0.1, ClimateStress: 0.9}
	rng := entropy.New(5)

	for step := 0; step < 500; step++ {
		s.Evolve(cfg, f, 0.2, harsh, rng.Derive("step", step))
		for _, sp := range s.Species {
			if sp.Population < 0 {
				t.Fatalf("%s population negative: %g", sp.Name, sp.Population)
			}
		}
	}
}

func TestServiceLevelsUnitInterval(t *testing.T) {
	s := NewBaseline()
	cfg := cfgFor(t, era.Ancient)
	f := era.Factors{TechnologyLevel: 0.2, PopulationSize: 1e6, ConsumptionRate: 0.5,
		Policies: era.Policies{AnimalHusbandry: 0.5}}
	rep := s.Evolve(cfg, f, 0.5, goodHabitat(), entropy.New(1))

	if len(rep.ServiceLevels) != len(Services) {
		t.Fatalf("expected %d service categories, got %d", len(Services), len(rep.ServiceLevels))
	}
	for svc, level := range rep.ServiceLevels {
		if level < 0 || level > 1 {
			t.Fatalf("service %s level %g outside [0,1]", svc, level)
		}
	}
}

func TestDomesticationDeterministicInSeed(t *testing.T) {
	run := func() []Stage {
		s := NewBaseline()
		cfg := cfgFor(t, era.Medieval)
		f := era.Factors{TechnologyLevel: 0.6, PopulationSize: 1e8, ConsumptionRate: 0.6,
			Policies: era.Policies{AnimalHusbandry: 0.8}}
		rng := entropy.New(1234)
		for step := 0; step < 100; step++ {
			s.Evolve(cfg, f, 0.6, goodHabitat(), rng.Derive("step", step))
		}
		stages := make([]Stage, len(s.Species))
		for i, sp := range s.Species {
			stages[i] = sp.Stage
		}
		return stages
	}

	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("species %d stage diverged: %s vs %s", i, a[i].Name(), b[i].Name())
		}
	}
}
