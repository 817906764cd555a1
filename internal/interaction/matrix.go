// Package interaction computes the six directed cross-layer influences and
// resolves their higher-order cascades. The engine is a pure function over
// the three freshly evolved layer states; it keeps no state of its own.
package interaction

import (
	"github.com/talgya/deeptime/internal/animal"
	"github.com/talgya/deeptime/internal/environ"
	"github.com/talgya/deeptime/internal/era"
	"github.com/talgya/deeptime/internal/people"
)

// Layer identifies one of the three evolution layers.
type Layer uint8

const (
	LayerPeople Layer = iota
	LayerAnimal
	LayerEnvironment
)

// Name returns a human-readable layer name.
func (l Layer) Name() string {
	switch l {
	case LayerPeople:
		return "people"
	case LayerAnimal:
		return "animal"
	case LayerEnvironment:
		return "environment"
	default:
		return "unknown"
	}
}

// Pair is a directed layer relationship.
type Pair struct {
	Source Layer `json:"source"`
	Target Layer `json:"target"`
}

// Effect is one directed delta produced by the matrix. Ephemeral: it is
// logged into the interaction history but never becomes mutable state.
type Effect struct {
	Source    Layer              `json:"source_layer"`
	Target    Layer              `json:"target_layer"`
	Magnitude float64            `json:"magnitude"`
	Factors   map[string]float64 `json:"contributing_factors"`
	Depth     int                `json:"cascade_depth"` // 0 = direct
}

// Snapshot bundles the three layer states plus the transition's factors.
// Resolve never mutates the states a snapshot points to.
type Snapshot struct {
	People      *people.State
	Animals     *animal.State
	Environment *environ.State
	Factors     era.Factors
}

func (s Snapshot) clone() Snapshot {
	return Snapshot{
		People:      s.People.Clone(),
		Animals:     s.Animals.Clone(),
		Environment: s.Environment.Clone(),
		Factors:     s.Factors,
	}
}

// effectFn computes one directed effect's magnitude and its contributing
// factors from a snapshot. Magnitudes are normalized to roughly [-1, 1].
type effectFn func(Snapshot) (float64, map[string]float64)

// matrix lists the six directed pairs in fixed order. The order is part of
// the determinism contract; new interactions are added here, not in branch
// chains.
var matrix = []struct {
	pair Pair
	fn   effectFn
}{
	{Pair{LayerPeople, LayerEnvironment}, peopleOnEnvironment},
	{Pair{LayerPeople, LayerAnimal}, peopleOnAnimal},
	{Pair{LayerAnimal, LayerEnvironment}, animalOnEnvironment},
	{Pair{LayerEnvironment, LayerPeople}, environmentOnPeople},
	{Pair{LayerEnvironment, LayerAnimal}, environmentOnAnimal},
	{Pair{LayerAnimal, LayerPeople}, animalOnPeople},
}

// peopleOnEnvironment: pollution and land development generated by the
// population, net of mitigation technology.
func peopleOnEnvironment(s Snapshot) (float64, map[string]float64) {
	pop := s.Factors.PopulationPressure()
	mitigation := s.Factors.EnvironmentalTech
	development := s.Factors.Policies.DevelopmentDrive
	mag := -(pop*(1-mitigation) + 0.5*development*(1-s.Factors.Policies.ConservationEffort))
	return clampMag(mag), map[string]float64{
		"population_pressure":   pop,
		"technology_mitigation": mitigation,
		"development_drive":     development,
	}
}

// peopleOnAnimal: hunting and habitat intrusion versus deliberate husbandry.
func peopleOnAnimal(s Snapshot) (float64, map[string]float64) {
	pop := s.Factors.PopulationPressure()
	husbandry := s.Factors.Policies.AnimalHusbandry
	mag := 0.6*husbandry - 0.5*pop
	return clampMag(mag), map[string]float64{
		"population_pressure": pop,
		"animal_husbandry":    husbandry,
	}
}

// animalOnEnvironment: ecosystem services regenerate landscape.
func animalOnEnvironment(s Snapshot) (float64, map[string]float64) {
	var sum float64
	for _, svc := range animal.Services {
		sum += s.Animals.ServiceLevels[svc]
	}
	level := 0.0
	if len(animal.Services) > 0 {
		level = sum / float64(len(animal.Services))
	}
	return clampMag(0.8 * level), map[string]float64{"ecosystem_services": level}
}

// environmentOnPeople: climate stress and resource scarcity degrade health.
func environmentOnPeople(s Snapshot) (float64, map[string]float64) {
	stress := s.Environment.ClimateStress()
	scarcity := 1 - s.Environment.ResourceAvailability()
	mag := -(0.6*stress + 0.4*scarcity)
	return clampMag(mag), map[string]float64{
		"climate_stress":    stress,
		"resource_scarcity": scarcity,
	}
}

// environmentOnAnimal: habitat loss and climate stress squeeze populations.
func environmentOnAnimal(s Snapshot) (float64, map[string]float64) {
	quality := s.Environment.HabitatQuality()
	stress := s.Environment.ClimateStress()
	mag := -(0.7*(1-quality) + 0.3*stress)
	return clampMag(mag), map[string]float64{
		"habitat_quality": quality,
		"climate_stress":  stress,
	}
}

// animalOnPeople: domesticated food supply and pollination-backed agriculture.
func animalOnPeople(s Snapshot) (float64, map[string]float64) {
	domesticated := s.Animals.DomesticatedShare()
	pollination := s.Animals.ServiceLevels[animal.ServicePollination]
	mag := 0.6*domesticated + 0.4*pollination
	return clampMag(mag), map[string]float64{
		"domesticated_share": domesticated,
		"pollination":        pollination,
	}
}

func clampMag(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
