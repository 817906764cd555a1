// Environment evolution step: climate cycles with feedback, landscape change
// against resilience, and local numeric recovery.
package environ

import (
	"math"

	"github.com/talgya/deeptime/internal/era"
	"github.com/talgya/deeptime/internal/faults"
)

// Impact carries the human-side inputs to an environment step, already
// aggregated by the engine from civilization factors and people state.
type Impact struct {
	// PollutionPressure drives climate variables, 0–1.
	PollutionPressure float64
	// DevelopmentPressure degrades landscape metrics, 0–1.
	DevelopmentPressure float64
	// ConservationFactor offsets development and funds regeneration, 0–1.
	ConservationFactor float64
	// MitigationTech reduces the pollution that reaches the climate, 0–1.
	MitigationTech float64
}

// Change records one variable's movement during a step.
type Change struct {
	Name  string  `json:"name"`
	From  float64 `json:"from"`
	To    float64 `json:"to"`
	Delta float64 `json:"delta"`
}

// Report summarizes one environment evolution step.
type Report struct {
	ClimateChanges   []Change                          `json:"climate_changes"`
	LandscapeChanges []Change                          `json:"landscape_changes"`
	Instabilities    []*faults.NumericInstabilityError `json:"-"`
	Warnings         []string                          `json:"warnings,omitempty"`
}

// Evolve advances the environment one era step covering elapsedYears of
// simulated time starting at startYear. fbCap bounds the climate feedback
// modifier so compounding stays contractive. Non-finite deltas are clamped
// and recorded, never propagated.
func (s *State) Evolve(cfg era.Config, impact Impact, startYear, elapsedYears, fbCap float64) Report {
	var rep Report
	endYear := startYear + elapsedYears

	effectivePollution := impact.PollutionPressure * (1 - impact.MitigationTech) * cfg.ImpactScale

	for i := range s.Climate {
		c := &s.Climate[i]
		fb := c.FeedbackModifier(fbCap)

		naturalDelta := (c.naturalCycle(endYear) - c.naturalCycle(startYear)) * fb
		jitterTerm := c.JitterAmplitude * s.jitter(i, endYear)
		humanDelta := effectivePollution * c.HumanSensitivity * fb * math.Min(1, elapsedYears/100)

		from := c.Current
		delta := naturalDelta + jitterTerm + humanDelta
		if bad := unstable(delta, c.Min, c.Max); bad {
			rep.Instabilities = append(rep.Instabilities, &faults.NumericInstabilityError{
				Variable: c.Name, Value: delta, Step: "climate_feedback",
			})
			delta = clampDelta(delta, c.Min, c.Max)
		}
		c.Previous = c.Current
		c.Current = clamp(c.Current+delta, c.Min, c.Max)
		rep.ClimateChanges = append(rep.ClimateChanges, Change{Name: c.Name, From: from, To: c.Current, Delta: c.Current - from})
	}

	for i := range s.Landscape {
		m := &s.Landscape[i]
		m.RecomputeResilience()

		degrade := impact.DevelopmentPressure * (1 - impact.ConservationFactor) * (1 - m.Resilience) * cfg.ImpactScale
		recover := m.RegenRate * impact.ConservationFactor * (1 - m.Current)

		from := m.Current
		delta := recover - degrade
		if bad := unstable(delta, 0, 1); bad {
			rep.Instabilities = append(rep.Instabilities, &faults.NumericInstabilityError{
				Variable: m.Name, Value: delta, Step: "landscape_update",
			})
			delta = clampDelta(delta, 0, 1)
		}
		m.Previous = m.Current
		m.Current = clamp(m.Current+delta, 0, 1)
		rep.LandscapeChanges = append(rep.LandscapeChanges, Change{Name: m.Name, From: from, To: m.Current, Delta: m.Current - from})
	}

	return rep
}

// unstable reports whether a delta is non-finite or grossly outside what the
// variable's range could ever absorb.
func unstable(delta, lo, hi float64) bool {
	if math.IsNaN(delta) || math.IsInf(delta, 0) {
		return true
	}
	return math.Abs(delta) > 10*(hi-lo)
}

// clampDelta reduces an unstable delta to at most one full range in its
// direction of travel.
func clampDelta(delta, lo, hi float64) float64 {
	span := hi - lo
	if math.IsNaN(delta) {
		return 0
	}
	if delta > span {
		return span
	}
	if delta < -span {
		return -span
	}
	return delta
}
