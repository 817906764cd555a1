// Package people models the physical, cultural, and cognitive evolution of a
// civilization's population.
package people

import (
	"math"

	"github.com/talgya/deeptime/internal/tuning"
)

// TraitVariable is a bounded physical trait with inertia-damped updates.
type TraitVariable struct {
	Name     string  `json:"name"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Inertia  float64 `json:"inertia"` // 0–1, higher resists change
}

// Apply moves the trait by pressure damped by inertia, clamped to bounds.
// Returns the realized change.
func (t *TraitVariable) Apply(pressure float64) float64 {
	t.Previous = t.Current
	next := t.Current + pressure*(1-t.Inertia)
	t.Current = clamp(next, t.Min, t.Max)
	return t.Current - t.Previous
}

// CulturalDimension is a bounded axis of cultural state. Inertia here is
// resistance to generational drift rather than biological change.
type CulturalDimension struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"`
	Previous float64 `json:"previous"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Inertia  float64 `json:"inertia"`
}

// Shift applies a net drift pressure damped by inertia, clamped to bounds.
// Cultural inertia floors at tuning.Drift: values never transmit faster than
// a generation turns over.
func (d *CulturalDimension) Shift(netPressure float64) float64 {
	d.Previous = d.Value
	in := math.Max(tuning.Drift, d.Inertia)
	d.Value = clamp(d.Value+netPressure*(1-in), d.Min, d.Max)
	return d.Value - d.Previous
}

// CognitiveSkill follows the cultural-dimension pattern with a lower inertia
// floor — skills transmit faster than values.
type CognitiveSkill struct {
	Name     string  `json:"name"`
	Value    float64 `json:"value"` // 0–1
	Previous float64 `json:"previous"`
	Inertia  float64 `json:"inertia"`
}

// Advance applies a learning pressure damped by inertia, clamped to [0,1].
// The cognitive floor (tuning.Friction) sits below the cultural one: skills
// transmit faster than values.
func (c *CognitiveSkill) Advance(pressure float64) float64 {
	c.Previous = c.Value
	in := math.Max(tuning.Friction, c.Inertia)
	c.Value = clamp(c.Value+pressure*(1-in), 0, 1)
	return c.Value - c.Previous
}

// State holds the full population-layer snapshot. Ordered slices, not maps,
// so iteration (and therefore replay) is deterministic.
type State struct {
	Traits     []TraitVariable     `json:"traits"`
	Dimensions []CulturalDimension `json:"dimensions"`
	Skills     []CognitiveSkill    `json:"skills"`
}

// Trait names.
const (
	TraitHeight            = "height_cm"
	TraitLifespan          = "lifespan_years"
	TraitDiseaseResistance = "disease_resistance"
	TraitMetabolism        = "metabolic_efficiency"
)

// Cultural dimension names.
const (
	DimSettlement = "settlement_pattern" // 0 nomadic — 1 fully settled
	DimHierarchy  = "social_hierarchy"   // 0 egalitarian — 1 stratified
	DimKnowledge  = "knowledge_tradition" // 0 oral — 1 formalized
)

// Cognitive skill names.
const (
	SkillAbstraction = "abstract_reasoning"
	SkillToolcraft   = "toolcraft"
	SkillCooperation = "large_scale_cooperation"
)

// NewBaseline returns the initial population state for a freshly founded
// civilization.
func NewBaseline() *State {
	return &State{
		Traits: []TraitVariable{
			{Name: TraitHeight, Current: 160, Previous: 160, Min: 140, Max: 200, Inertia: 0.92},
			{Name: TraitLifespan, Current: 32, Previous: 32, Min: 20, Max: 120, Inertia: 0.85},
			{Name: TraitDiseaseResistance, Current: 0.35, Previous: 0.35, Min: 0.05, Max: 0.95, Inertia: 0.80},
			{Name: TraitMetabolism, Current: 0.50, Previous: 0.50, Min: 0.10, Max: 0.95, Inertia: 0.90},
		},
		Dimensions: []CulturalDimension{
			{Name: DimSettlement, Value: 0.05, Previous: 0.05, Min: 0, Max: 1, Inertia: 0.70},
			{Name: DimHierarchy, Value: 0.10, Previous: 0.10, Min: 0, Max: 1, Inertia: 0.75},
			{Name: DimKnowledge, Value: 0.02, Previous: 0.02, Min: 0, Max: 1, Inertia: 0.65},
		},
		Skills: []CognitiveSkill{
			{Name: SkillAbstraction, Value: 0.05, Previous: 0.05, Inertia: 0.40},
			{Name: SkillToolcraft, Value: 0.08, Previous: 0.08, Inertia: 0.35},
			{Name: SkillCooperation, Value: 0.05, Previous: 0.05, Inertia: 0.45},
		},
	}
}

// Clone returns a deep copy.
func (s *State) Clone() *State {
	out := &State{
		Traits:     make([]TraitVariable, len(s.Traits)),
		Dimensions: make([]CulturalDimension, len(s.Dimensions)),
		Skills:     make([]CognitiveSkill, len(s.Skills)),
	}
	copy(out.Traits, s.Traits)
	copy(out.Dimensions, s.Dimensions)
	copy(out.Skills, s.Skills)
	return out
}

// Trait returns the named trait, or nil.
func (s *State) Trait(name string) *TraitVariable {
	for i := range s.Traits {
		if s.Traits[i].Name == name {
			return &s.Traits[i]
		}
	}
	return nil
}

// Dimension returns the named cultural dimension, or nil.
func (s *State) Dimension(name string) *CulturalDimension {
	for i := range s.Dimensions {
		if s.Dimensions[i].Name == name {
			return &s.Dimensions[i]
		}
	}
	return nil
}

// Skill returns the named cognitive skill, or nil.
func (s *State) Skill(name string) *CognitiveSkill {
	for i := range s.Skills {
		if s.Skills[i].Name == name {
			return &s.Skills[i]
		}
	}
	return nil
}

// Health aggregates disease resistance and lifespan into a 0–1 wellbeing
// figure used by cross-layer effects and breakthrough checks.
func (s *State) Health() float64 {
	res := s.Trait(TraitDiseaseResistance)
	life := s.Trait(TraitLifespan)
	if res == nil || life == nil {
		return 0
	}
	lifeNorm := (life.Current - life.Min) / (life.Max - life.Min)
	return clamp(0.5*res.Current+0.5*lifeNorm, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(hi, math.Max(lo, v))
}
