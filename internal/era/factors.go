// Civilization factors — the externally supplied knobs that parameterize a
// layer's evolution step.
package era

import (
	"fmt"
	"math"

	"github.com/talgya/deeptime/internal/faults"
)

// Policies are the player/scheduler-controlled policy knobs, each 0–1.
type Policies struct {
	ConservationEffort  float64 `json:"conservation_effort" yaml:"conservation_effort"`
	DevelopmentDrive    float64 `json:"development_drive" yaml:"development_drive"`
	AnimalHusbandry     float64 `json:"animal_husbandry" yaml:"animal_husbandry"`
	EducationInvestment float64 `json:"education_investment" yaml:"education_investment"`
	CulturalOpenness    float64 `json:"cultural_openness" yaml:"cultural_openness"`
}

// Factors are the per-transition civilization inputs.
type Factors struct {
	TechnologyLevel    float64  `json:"technology_level"`
	EnvironmentalTech  float64  `json:"environmental_technology_level"`
	PopulationSize     float64  `json:"population_size"`
	ConsumptionRate    float64  `json:"consumption_rate"`
	Policies           Policies `json:"policies"`
}

// Clamped returns a copy of f with every out-of-domain value moved to the
// nearest valid one, plus a warning marker per adjustment. Out-of-domain
// factors never abort a transition.
func (f Factors) Clamped() (Factors, []string) {
	var warns []string
	clamp01 := func(name string, v *float64) {
		if math.IsNaN(*v) {
			*v = 0
			warns = append(warns, fmt.Sprintf("factor %s was NaN, reset to 0", name))
			return
		}
		if *v < 0 || *v > 1 {
			old := *v
			*v = math.Min(1, math.Max(0, *v))
			warns = append(warns, fmt.Sprintf("factor %s clamped from %g to %g", name, old, *v))
		}
	}

	clamp01("technology_level", &f.TechnologyLevel)
	clamp01("environmental_technology_level", &f.EnvironmentalTech)
	clamp01("consumption_rate", &f.ConsumptionRate)
	clamp01("conservation_effort", &f.Policies.ConservationEffort)
	clamp01("development_drive", &f.Policies.DevelopmentDrive)
	clamp01("animal_husbandry", &f.Policies.AnimalHusbandry)
	clamp01("education_investment", &f.Policies.EducationInvestment)
	clamp01("cultural_openness", &f.Policies.CulturalOpenness)

	if math.IsNaN(f.PopulationSize) || f.PopulationSize < 0 {
		warns = append(warns, fmt.Sprintf("factor population_size invalid (%g), reset to 0", f.PopulationSize))
		f.PopulationSize = 0
	}
	return f, warns
}

// ConflictCheck detects contradictory policy inputs. A conflict does not halt
// the simulation; the caller substitutes its last known valid policy set and
// carries the error on the report.
func (p Policies) ConflictCheck() error {
	if p.ConservationEffort > 0.85 && p.DevelopmentDrive > 0.85 {
		return &faults.PolicyConflictError{
			Policies: []string{"conservation_effort", "development_drive"},
			Reason:   "full conservation and full development cannot both be funded",
		}
	}
	return nil
}

// PopulationPressure converts absolute population and consumption into a 0–1
// pressure figure used by environmental and animal effects. Log-scaled so the
// jump from thousands to billions stays inside the unit interval.
func (f Factors) PopulationPressure() float64 {
	if f.PopulationSize <= 0 {
		return 0
	}
	// log10 population, 10^10 persons saturates the scale.
	p := math.Log10(f.PopulationSize+1) / 10
	p *= 0.5 + f.ConsumptionRate
	return math.Min(1, p)
}
