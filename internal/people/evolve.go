// Population evolution step: physical traits, cultural drift, cognition.
package people

import (
	"github.com/talgya/deeptime/internal/era"
)

// Change records one variable's movement during a step.
type Change struct {
	Name  string  `json:"name"`
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Delta float64 `json:"delta"`
}

// Report summarizes one population evolution step.
type Report struct {
	TraitChanges   []Change `json:"trait_changes"`
	CulturalShifts []Change `json:"cultural_shifts"`
	SkillGains     []Change `json:"skill_gains"`
	Warnings       []string `json:"warnings,omitempty"`
}

// eraTraitPressure is the epoch's intrinsic pull on each physical trait,
// before civilization factors. Indexed by era so a missing row is a compile
// break, not a silent default.
var eraTraitPressure = [era.Count]map[string]float64{
	era.Prehistoric: {TraitHeight: -0.5, TraitLifespan: 0.2, TraitDiseaseResistance: 0.010, TraitMetabolism: 0.008},
	era.Ancient:     {TraitHeight: 0.3, TraitLifespan: 0.8, TraitDiseaseResistance: -0.005, TraitMetabolism: 0.004},
	era.Classical:   {TraitHeight: 0.4, TraitLifespan: 1.2, TraitDiseaseResistance: 0.004, TraitMetabolism: 0.002},
	era.Medieval:    {TraitHeight: -0.2, TraitLifespan: 0.5, TraitDiseaseResistance: 0.012, TraitMetabolism: 0.002},
	era.Industrial:  {TraitHeight: 1.5, TraitLifespan: 4.0, TraitDiseaseResistance: 0.020, TraitMetabolism: -0.006},
	era.Information: {TraitHeight: 0.8, TraitLifespan: 3.0, TraitDiseaseResistance: 0.015, TraitMetabolism: -0.010},
	era.Stellar:     {TraitHeight: 0.3, TraitLifespan: 5.0, TraitDiseaseResistance: 0.025, TraitMetabolism: 0.010},
}

// eraDriftPressure pulls cultural dimensions toward the epoch's typical form.
var eraDriftPressure = [era.Count]map[string]float64{
	era.Prehistoric: {DimSettlement: 0.01, DimHierarchy: 0.00, DimKnowledge: 0.005},
	era.Ancient:     {DimSettlement: 0.08, DimHierarchy: 0.06, DimKnowledge: 0.04},
	era.Classical:   {DimSettlement: 0.06, DimHierarchy: 0.05, DimKnowledge: 0.06},
	era.Medieval:    {DimSettlement: 0.04, DimHierarchy: 0.06, DimKnowledge: 0.03},
	era.Industrial:  {DimSettlement: 0.10, DimHierarchy: 0.02, DimKnowledge: 0.08},
	era.Information: {DimSettlement: 0.04, DimHierarchy: -0.03, DimKnowledge: 0.10},
	era.Stellar:     {DimSettlement: 0.02, DimHierarchy: -0.02, DimKnowledge: 0.08},
}

// civTraitPressure is the civilization's own contribution to a trait, from
// its current factors.
func civTraitPressure(trait string, f era.Factors) float64 {
	switch trait {
	case TraitHeight:
		// Nutrition surplus: technology minus consumption strain.
		return 2.0 * (f.TechnologyLevel - 0.4*f.ConsumptionRate)
	case TraitLifespan:
		return 6.0*f.TechnologyLevel + 2.0*f.Policies.EducationInvestment
	case TraitDiseaseResistance:
		// Dense populations trade resistance for exposure until medicine
		// catches up.
		return 0.04*f.TechnologyLevel - 0.02*f.PopulationPressure()
	case TraitMetabolism:
		return 0.01 * (1 - f.ConsumptionRate)
	default:
		return 0
	}
}

// civDriftPressure is technology plus policy pull on a cultural dimension.
func civDriftPressure(dim string, f era.Factors) float64 {
	switch dim {
	case DimSettlement:
		return 0.05*f.TechnologyLevel + 0.03*f.Policies.DevelopmentDrive
	case DimHierarchy:
		return 0.04*f.PopulationPressure() - 0.05*f.Policies.CulturalOpenness
	case DimKnowledge:
		return 0.08*f.Policies.EducationInvestment + 0.04*f.TechnologyLevel
	default:
		return 0
	}
}

func skillPressure(skill string, f era.Factors) float64 {
	switch skill {
	case SkillAbstraction:
		return 0.06*f.Policies.EducationInvestment + 0.03*f.TechnologyLevel
	case SkillToolcraft:
		return 0.08 * f.TechnologyLevel
	case SkillCooperation:
		return 0.04*f.Policies.CulturalOpenness + 0.03*f.PopulationPressure()
	default:
		return 0
	}
}

// Evolve advances the population layer one era step. Factors must already be
// clamped to their valid domains; the engine attaches any clamp warnings to
// the report it assembles.
func (s *State) Evolve(cfg era.Config, f era.Factors) Report {
	var rep Report

	for i := range s.Traits {
		t := &s.Traits[i]
		pressure := (eraTraitPressure[cfg.Era][t.Name] + civTraitPressure(t.Name, f)) * cfg.TraitScale
		from := t.Current
		delta := t.Apply(pressure)
		rep.TraitChanges = append(rep.TraitChanges, Change{Name: t.Name, From: from, To: t.Current, Delta: delta})
	}

	for i := range s.Dimensions {
		d := &s.Dimensions[i]
		net := (eraDriftPressure[cfg.Era][d.Name] + civDriftPressure(d.Name, f)) * cfg.DriftScale
		from := d.Value
		delta := d.Shift(net)
		rep.CulturalShifts = append(rep.CulturalShifts, Change{Name: d.Name, From: from, To: d.Value, Delta: delta})
	}

	for i := range s.Skills {
		c := &s.Skills[i]
		from := c.Value
		delta := c.Advance(skillPressure(c.Name, f) * cfg.DriftScale)
		rep.SkillGains = append(rep.SkillGains, Change{Name: c.Name, From: from, To: c.Value, Delta: delta})
	}

	return rep
}
