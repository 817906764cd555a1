// Package animal models species populations, the domestication ladder, and
// the ecosystem services animal life provides.
package animal

import "math"

// Stage is a position on the fixed domestication ladder. Order matters:
// advancement moves one rung at a time and never skips.
type Stage uint8

const (
	Wild Stage = iota
	Attracted
	SemiDomesticated
	Domesticated
	SelectivelyBred
	Bioengineered

	stageCount
)

// MaxStage is the highest defined stage index.
const MaxStage = int(stageCount) - 1

// Name returns a human-readable stage name.
func (s Stage) Name() string {
	switch s {
	case Wild:
		return "wild"
	case Attracted:
		return "attracted"
	case SemiDomesticated:
		return "semi_domesticated"
	case Domesticated:
		return "domesticated"
	case SelectivelyBred:
		return "selectively_bred"
	case Bioengineered:
		return "bioengineered"
	default:
		return "unknown"
	}
}

// Utility is a role a species serves for the civilization.
type Utility string

const (
	UtilityFood        Utility = "food"
	UtilityLabor       Utility = "labor"
	UtilityTransport   Utility = "transport"
	UtilityMaterials   Utility = "materials"
	UtilityCompanion   Utility = "companionship"
	UtilityPestControl Utility = "pest_control"
)

// Service is one quantifiable ecosystem benefit.
type Service string

const (
	ServicePollination  Service = "pollination"
	ServiceSoilHealth   Service = "soil_health"
	ServiceWater        Service = "water_regulation"
	ServiceCarbon       Service = "carbon_sequestration"
	ServiceBiodiversity Service = "biodiversity"
)

// Services lists every category in fixed order.
var Services = []Service{ServicePollination, ServiceSoilHealth, ServiceWater, ServiceCarbon, ServiceBiodiversity}

// SpeciesPopulation tracks one species' relationship to the civilization.
type SpeciesPopulation struct {
	Name           string    `json:"name"`
	Stage          Stage     `json:"domestication_stage"`
	Population     float64   `json:"population_size"` // non-negative
	BaseCapacity   float64   `json:"base_capacity"`   // carrying capacity under ideal habitat
	GrowthRate     float64   `json:"growth_rate"`     // intrinsic logistic r
	Utilities      []Utility `json:"utility_functions"`
	WildContrib    float64   `json:"wild_contribution"` // ecosystem weight while wild, 0–1
}

// HasUtility reports whether the species serves the given role.
func (sp *SpeciesPopulation) HasUtility(u Utility) bool {
	for _, have := range sp.Utilities {
		if have == u {
			return true
		}
	}
	return false
}

// State is the animal-layer snapshot. Species are kept in a fixed order so
// every seeded draw lands on the same species during replay.
type State struct {
	Species []SpeciesPopulation `json:"species"`

	// ServiceLevels is the most recently computed ecosystem service output,
	// 0–1 per category.
	ServiceLevels map[Service]float64 `json:"service_levels"`
}

// NewBaseline returns the initial wild fauna for a new civilization.
func NewBaseline() *State {
	return &State{
		Species: []SpeciesPopulation{
			{Name: "aurochs", Stage: Wild, Population: 120000, BaseCapacity: 400000, GrowthRate: 0.25, WildContrib: 0.7,
				Utilities: []Utility{UtilityFood, UtilityLabor, UtilityMaterials}},
			{Name: "wolf", Stage: Wild, Population: 40000, BaseCapacity: 90000, GrowthRate: 0.30, WildContrib: 0.5,
				Utilities: []Utility{UtilityCompanion, UtilityPestControl}},
			{Name: "junglefowl", Stage: Wild, Population: 500000, BaseCapacity: 2000000, GrowthRate: 0.60, WildContrib: 0.4,
				Utilities: []Utility{UtilityFood}},
			{Name: "wild_horse", Stage: Wild, Population: 80000, BaseCapacity: 250000, GrowthRate: 0.22, WildContrib: 0.6,
				Utilities: []Utility{UtilityTransport, UtilityLabor}},
			{Name: "honeybee", Stage: Wild, Population: 8000000, BaseCapacity: 20000000, GrowthRate: 0.80, WildContrib: 0.9,
				Utilities: []Utility{UtilityFood, UtilityPestControl}},
		},
		ServiceLevels: map[Service]float64{},
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	out := &State{
		Species:       make([]SpeciesPopulation, len(s.Species)),
		ServiceLevels: make(map[Service]float64, len(s.ServiceLevels)),
	}
	copy(out.Species, s.Species)
	for i := range out.Species {
		out.Species[i].Utilities = append([]Utility(nil), s.Species[i].Utilities...)
	}
	for k, v := range s.ServiceLevels {
		out.ServiceLevels[k] = v
	}
	return out
}

// Find returns the named species, or nil.
func (s *State) Find(name string) *SpeciesPopulation {
	for i := range s.Species {
		if s.Species[i].Name == name {
			return &s.Species[i]
		}
	}
	return nil
}

// TotalPopulation sums every species' population.
func (s *State) TotalPopulation() float64 {
	var sum float64
	for i := range s.Species {
		sum += s.Species[i].Population
	}
	return sum
}

// DomesticatedShare returns the fraction of species at Domesticated or above.
func (s *State) DomesticatedShare() float64 {
	if len(s.Species) == 0 {
		return 0
	}
	var n int
	for i := range s.Species {
		if s.Species[i].Stage >= Domesticated {
			n++
		}
	}
	return float64(n) / float64(len(s.Species))
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}
