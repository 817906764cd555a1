// Package era provides the closed era enumeration and the validated per-era
// configuration every layer's evolution table is keyed on.
package era

import (
	"fmt"

	"github.com/talgya/deeptime/internal/faults"
)

// Era is a coarse developmental epoch. The set is closed: every evolution
// table in every layer must cover all of them.
type Era uint8

const (
	Prehistoric Era = iota
	Ancient
	Classical
	Medieval
	Industrial
	Information
	Stellar

	eraCount
)

// Count is the number of defined eras.
const Count = int(eraCount)

// Valid reports whether e is a defined era.
func (e Era) Valid() bool { return e < eraCount }

// Name returns a human-readable era name.
func (e Era) Name() string {
	switch e {
	case Prehistoric:
		return "Prehistoric"
	case Ancient:
		return "Ancient"
	case Classical:
		return "Classical"
	case Medieval:
		return "Medieval"
	case Industrial:
		return "Industrial"
	case Information:
		return "Information"
	case Stellar:
		return "Stellar"
	default:
		return fmt.Sprintf("Era(%d)", uint8(e))
	}
}

// Config is the validated per-era parameter set shared by all layers.
type Config struct {
	Era Era

	// TechBaseline is the technology level implied by the era alone, before
	// the civilization's own factors are applied. 0–1.
	TechBaseline float64

	// MaxDomesticationStage caps how far species management can advance
	// within the era (index into the ordered stage sequence).
	MaxDomesticationStage int

	// YearsPerTurn is the simulated-time compression for one transition.
	// Early eras cover millennia per turn, late eras decades.
	YearsPerTurn float64

	// TraitScale and DriftScale size physical trait pressure and cultural
	// drift for the era. ImpactScale sizes human environmental impact.
	TraitScale  float64
	DriftScale  float64
	ImpactScale float64
}

// configs covers every era; Lookup rejects anything outside the enumeration.
var configs = [eraCount]Config{
	Prehistoric: {Era: Prehistoric, TechBaseline: 0.02, MaxDomesticationStage: 1, YearsPerTurn: 2000, TraitScale: 1.0, DriftScale: 0.4, ImpactScale: 0.05},
	Ancient:     {Era: Ancient, TechBaseline: 0.10, MaxDomesticationStage: 3, YearsPerTurn: 800, TraitScale: 0.8, DriftScale: 0.6, ImpactScale: 0.15},
	Classical:   {Era: Classical, TechBaseline: 0.20, MaxDomesticationStage: 3, YearsPerTurn: 400, TraitScale: 0.6, DriftScale: 0.8, ImpactScale: 0.25},
	Medieval:    {Era: Medieval, TechBaseline: 0.30, MaxDomesticationStage: 4, YearsPerTurn: 250, TraitScale: 0.5, DriftScale: 0.8, ImpactScale: 0.35},
	Industrial:  {Era: Industrial, TechBaseline: 0.55, MaxDomesticationStage: 4, YearsPerTurn: 80, TraitScale: 0.4, DriftScale: 1.0, ImpactScale: 0.85},
	Information: {Era: Information, TechBaseline: 0.75, MaxDomesticationStage: 4, YearsPerTurn: 30, TraitScale: 0.3, DriftScale: 1.2, ImpactScale: 1.0},
	Stellar:     {Era: Stellar, TechBaseline: 0.95, MaxDomesticationStage: 5, YearsPerTurn: 15, TraitScale: 0.3, DriftScale: 1.2, ImpactScale: 0.7},
}

// Lookup returns the configuration for e, or a ConfigurationError when e lies
// outside the closed enumeration.
func Lookup(e Era) (Config, error) {
	if !e.Valid() {
		return Config{}, &faults.ConfigurationError{Field: "era", Reason: fmt.Sprintf("unknown era %d", uint8(e))}
	}
	return configs[e], nil
}
