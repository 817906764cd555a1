package interaction

import (
	"math"
	"reflect"
	"testing"

	"github.com/talgya/deeptime/internal/animal"
	"github.com/talgya/deeptime/internal/environ"
	"github.com/talgya/deeptime/internal/era"
	"github.com/talgya/deeptime/internal/people"
	"github.com/talgya/deeptime/internal/tuning"
)

func testSnapshot() Snapshot {
	return Snapshot{
		People:      people.NewBaseline(),
		Animals:     animal.NewBaseline(),
		Environment: environ.NewBaseline(1),
		Factors: era.Factors{
			TechnologyLevel:   0.5,
			EnvironmentalTech: 0.3,
			PopulationSize:    5e6,
			ConsumptionRate:   0.6,
			Policies:          era.Policies{ConservationEffort: 0.4, DevelopmentDrive: 0.5, AnimalHusbandry: 0.5},
		},
	}
}

func TestSixDirectEffectsInFixedOrder(t *testing.T) {
	res := Resolve(testSnapshot(), tuning.Defaults())
	if len(res.Direct) != 6 {
		t.Fatalf("expected 6 direct effects, got %d", len(res.Direct))
	}
	want := []Pair{
		{LayerPeople, LayerEnvironment},
		{LayerPeople, LayerAnimal},
		{LayerAnimal, LayerEnvironment},
		{LayerEnvironment, LayerPeople},
		{LayerEnvironment, LayerAnimal},
		{LayerAnimal, LayerPeople},
	}
	for i, eff := range res.Direct {
		if (Pair{eff.Source, eff.Target}) != want[i] {
			t.Fatalf("effect %d: got %s->%s, want %s->%s",
				i, eff.Source.Name(), eff.Target.Name(), want[i].Source.Name(), want[i].Target.Name())
		}
		if eff.Depth != 0 {
			t.Fatalf("direct effect %d carries depth %d", i, eff.Depth)
		}
	}
}

func TestCascadeTerminatesWithinDepth(t *testing.T) {
	p := tuning.Defaults()
	res := Resolve(testSnapshot(), p)
	for _, eff := range res.Cascades {
		if eff.Depth < 1 || eff.Depth > p.MaxCascadeDepth {
			t.Fatalf("cascade depth %d outside 1..%d", eff.Depth, p.MaxCascadeDepth)
		}
	}
	if len(res.Cascades) > 6*p.MaxCascadeDepth {
		t.Fatalf("too many cascade effects: %d", len(res.Cascades))
	}
}

func TestCascadeContributionsDecay(t *testing.T) {
	p := tuning.Defaults()
	res := Resolve(testSnapshot(), p)
	// No cascade effect may exceed the decay bound for its depth.
	for _, eff := range res.Cascades {
		bound := math.Pow(p.CascadeDecay, float64(eff.Depth))
		if math.Abs(eff.Magnitude) > bound+1e-12 {
			t.Fatalf("depth %d magnitude %g exceeds contraction bound %g", eff.Depth, eff.Magnitude, bound)
		}
	}
}

func TestResolveDoesNotMutateInputs(t *testing.T) {
	snap := testSnapshot()
	heightBefore := snap.People.Trait(people.TraitHeight).Current
	popBefore := snap.Animals.TotalPopulation()
	forestBefore := snap.Environment.Metric(environ.MetricForestCover).Current

	Resolve(snap, tuning.Defaults())

	if snap.People.Trait(people.TraitHeight).Current != heightBefore {
		t.Fatal("Resolve mutated people state")
	}
	if snap.Animals.TotalPopulation() != popBefore {
		t.Fatal("Resolve mutated animal state")
	}
	if snap.Environment.Metric(environ.MetricForestCover).Current != forestBefore {
		t.Fatal("Resolve mutated environment state")
	}
}

func TestResolveDeterministic(t *testing.T) {
	a := Resolve(testSnapshot(), tuning.Defaults())
	b := Resolve(testSnapshot(), tuning.Defaults())
	if !reflect.DeepEqual(a, b) {
		t.Fatal("identical snapshots resolved differently")
	}
}

func TestApplyNeverLeavesNonFinite(t *testing.T) {
	snap := testSnapshot()
	// Poison a source metric; the audit must clamp whatever comes out.
	snap.Environment.Metric(environ.MetricFreshwater).Current = math.NaN()

	res := Resolve(snap, tuning.Defaults())
	Apply(snap, res.Net)

	check := func(name string, v float64) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Fatalf("%s is non-finite after apply", name)
		}
	}
	for _, tr := range snap.People.Traits {
		check(tr.Name, tr.Current)
	}
	for _, sp := range snap.Animals.Species {
		check(sp.Name, sp.Population)
	}
	for _, c := range snap.Environment.Climate {
		check(c.Name, c.Current)
	}
	for _, m := range snap.Environment.Landscape {
		check(m.Name, m.Current)
	}
}

func TestHugePressuresStayBounded(t *testing.T) {
	snap := testSnapshot()
	snap.Factors.PopulationSize = 1e300
	snap.Factors.ConsumptionRate = 1

	res := Resolve(snap, tuning.Defaults())
	for _, eff := range append(res.Direct, res.Cascades...) {
		if math.Abs(eff.Magnitude) > 1 {
			t.Fatalf("effect magnitude %g outside [-1,1]", eff.Magnitude)
		}
	}
	if bad := Apply(snap, res.Net); len(bad) != 0 {
		t.Fatalf("finite inputs produced %d instabilities", len(bad))
	}
}
