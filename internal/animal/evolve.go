// Animal layer evolution: domestication ladder, logistic populations, and
// ecosystem service output.
package animal

import (
	"math"

	"github.com/talgya/deeptime/internal/entropy"
	"github.com/talgya/deeptime/internal/era"
)

// Habitat carries the environment layer's prior-step output into the animal
// step, so the fixed People → Animal → Environment order never reads a value
// computed later in the same transition.
type Habitat struct {
	ResourceAvailability float64 // 0–1, food and water supply
	HabitatQuality       float64 // 0–1, land intactness
	ClimateStress        float64 // 0–1, deviation from tolerable climate
}

// StageChange records one species' movement on the domestication ladder.
type StageChange struct {
	Species string `json:"species"`
	From    Stage  `json:"from"`
	To      Stage  `json:"to"`
	Reason  string `json:"reason"` // "advancement" or the regression event name
}

// Report summarizes one animal evolution step.
type Report struct {
	StageChanges      []StageChange       `json:"stage_changes,omitempty"`
	PopulationChanges map[string]float64  `json:"population_changes"`
	ServiceLevels     map[Service]float64 `json:"service_levels"`
	Warnings          []string            `json:"warnings,omitempty"`
}

// Evolve advances the animal layer one era step. peopleHealth is the people
// layer's aggregated wellbeing (computed earlier in the same transition);
// habitat is the environment layer's prior-step output. rng must be a stream
// derived for this transition so advancement draws replay deterministically.
func (s *State) Evolve(cfg era.Config, f era.Factors, peopleHealth float64, habitat Habitat, rng *entropy.Stream) Report {
	rep := Report{
		PopulationChanges: make(map[string]float64, len(s.Species)),
		ServiceLevels:     make(map[Service]float64, len(Services)),
	}

	humanPressure := interactionPressure(f)

	for i := range s.Species {
		sp := &s.Species[i]

		// Domestication: one rung at most, gated by the era's ceiling, then
		// by a seeded probabilistic check.
		if ch, ok := s.tryAdvance(sp, cfg, humanPressure, f.TechnologyLevel, rng.Derive("domestication", i)); ok {
			rep.StageChanges = append(rep.StageChanges, ch)
		}

		before := sp.Population
		s.stepPopulation(sp, f, habitat, peopleHealth)
		rep.PopulationChanges[sp.Name] = sp.Population - before
	}

	s.recomputeServices(habitat)
	for _, svc := range Services {
		rep.ServiceLevels[svc] = s.ServiceLevels[svc]
	}
	return rep
}

// interactionPressure is how hard humans are working on animal management.
func interactionPressure(f era.Factors) float64 {
	return clamp(0.6*f.Policies.AnimalHusbandry+0.4*f.PopulationPressure(), 0, 1)
}

// tryAdvance attempts a single-stage advancement for sp. No stage is ever
// skipped and the era ceiling is absolute.
func (s *State) tryAdvance(sp *SpeciesPopulation, cfg era.Config, humanPressure, techLevel float64, rng *entropy.Stream) (StageChange, bool) {
	next := int(sp.Stage) + 1
	if next > MaxStage || next > cfg.MaxDomesticationStage {
		return StageChange{}, false
	}
	if sp.Population <= 0 {
		return StageChange{}, false
	}

	techEnablement := clamp(0.3+0.7*math.Max(techLevel, cfg.TechBaseline), 0, 1)
	p := humanPressure * techEnablement
	// Later rungs are harder: each stage already climbed halves the odds.
	p /= math.Pow(2, float64(sp.Stage))

	if !rng.Roll(p) {
		return StageChange{}, false
	}
	from := sp.Stage
	sp.Stage = Stage(next)
	return StageChange{Species: sp.Name, From: from, To: sp.Stage, Reason: "advancement"}, true
}

// ApplyRegression is the one sanctioned way a stage moves backwards: an
// explicit event such as disease or extinction pressure.
func (s *State) ApplyRegression(species, event string) (StageChange, bool) {
	sp := s.Find(species)
	if sp == nil || sp.Stage == Wild {
		return StageChange{}, false
	}
	from := sp.Stage
	sp.Stage--
	return StageChange{Species: species, From: from, To: sp.Stage, Reason: event}, true
}

// stepPopulation applies a pressure-modified logistic update. Carrying
// capacity shrinks with habitat loss; domesticated species ride human
// stewardship instead.
func (s *State) stepPopulation(sp *SpeciesPopulation, f era.Factors, habitat Habitat, peopleHealth float64) {
	k := sp.BaseCapacity * clamp(habitat.ResourceAvailability, 0, 1)
	if sp.Stage >= Domesticated {
		// Managed herds scale with the people keeping them.
		k = sp.BaseCapacity * clamp(0.3+0.7*peopleHealth, 0, 1) * (1 + f.TechnologyLevel)
	}
	if k < 1 {
		sp.Population = math.Max(0, sp.Population-sp.Population*0.5)
		return
	}

	// Harvest and habitat stress reduce effective growth; husbandry offsets.
	pressureMod := 1 - 0.6*f.PopulationPressure()*(1-f.Policies.AnimalHusbandry) - 0.3*habitat.ClimateStress
	growth := sp.GrowthRate * sp.Population * (1 - sp.Population/k) * pressureMod
	sp.Population = math.Max(0, sp.Population+growth)
}

// recomputeServices rebuilds every ecosystem service level:
// animal contribution × environmental modifier, independently per category.
func (s *State) recomputeServices(habitat Habitat) {
	for _, svc := range Services {
		contrib := s.animalContribution(svc)
		s.ServiceLevels[svc] = clamp(contrib*environmentalModifier(svc, habitat), 0, 1)
	}
}

// animalContribution aggregates each species' weight for a service, scaled by
// how full its population is relative to base capacity.
func (s *State) animalContribution(svc Service) float64 {
	var total, weight float64
	for i := range s.Species {
		sp := &s.Species[i]
		w := serviceWeight(svc, sp)
		if w == 0 {
			continue
		}
		fullness := 0.0
		if sp.BaseCapacity > 0 {
			fullness = clamp(sp.Population/sp.BaseCapacity, 0, 1)
		}
		total += w * fullness
		weight += w
	}
	if weight == 0 {
		return 0
	}
	return total / weight
}

// serviceWeight scores one species' relevance to a service. Wild populations
// carry their full ecological weight; heavily managed ones keep only part.
func serviceWeight(svc Service, sp *SpeciesPopulation) float64 {
	wildness := 1 - float64(sp.Stage)/float64(MaxStage)*0.5
	switch svc {
	case ServicePollination:
		if sp.HasUtility(UtilityPestControl) || sp.Name == "honeybee" {
			return sp.WildContrib * wildness
		}
		return 0
	case ServiceSoilHealth:
		if sp.HasUtility(UtilityLabor) || sp.HasUtility(UtilityFood) {
			return 0.6 * sp.WildContrib * wildness
		}
		return 0.2 * sp.WildContrib
	case ServiceWater:
		return 0.3 * sp.WildContrib * wildness
	case ServiceCarbon:
		return 0.4 * sp.WildContrib * wildness
	case ServiceBiodiversity:
		return sp.WildContrib * wildness
	default:
		return 0
	}
}

// environmentalModifier scales a service by habitat condition.
func environmentalModifier(svc Service, h Habitat) float64 {
	switch svc {
	case ServicePollination:
		return clamp(h.HabitatQuality*(1-0.5*h.ClimateStress), 0, 1)
	case ServiceSoilHealth:
		return clamp(0.5*h.HabitatQuality+0.5*h.ResourceAvailability, 0, 1)
	case ServiceWater:
		return clamp(h.ResourceAvailability*(1-0.3*h.ClimateStress), 0, 1)
	case ServiceCarbon:
		return clamp(h.HabitatQuality, 0, 1)
	case ServiceBiodiversity:
		return clamp(h.HabitatQuality*(1-h.ClimateStress*0.4), 0, 1)
	default:
		return 0
	}
}
