// Cascade resolution: direct effects, damped higher-order propagation, and
// the final application of accumulated deltas onto layer states.
package interaction

import (
	"math"

	"github.com/talgya/deeptime/internal/environ"
	"github.com/talgya/deeptime/internal/faults"
	"github.com/talgya/deeptime/internal/people"
	"github.com/talgya/deeptime/internal/tuning"
)

// Deltas is the net per-layer pressure accumulated from direct effects and
// damped cascades. Positive helps the layer, negative harms it.
type Deltas struct {
	People      float64 `json:"people"`
	Animal      float64 `json:"animal"`
	Environment float64 `json:"environment"`
}

func (d *Deltas) add(target Layer, mag float64) {
	switch target {
	case LayerPeople:
		d.People += mag
	case LayerAnimal:
		d.Animal += mag
	case LayerEnvironment:
		d.Environment += mag
	}
}

// magnitude of the largest component, used to cut cascades that have decayed
// to noise.
func (d Deltas) maxAbs() float64 {
	return math.Max(math.Abs(d.People), math.Max(math.Abs(d.Animal), math.Abs(d.Environment)))
}

// Result is the outcome of one interaction resolution.
type Result struct {
	Direct   []Effect `json:"direct_effects"`
	Cascades []Effect `json:"cascade_effects"`
	Net      Deltas   `json:"net_deltas"`
}

// evaluate runs the matrix once over a snapshot at the given cascade depth.
func evaluate(snap Snapshot, depth int) ([]Effect, Deltas) {
	effects := make([]Effect, 0, len(matrix))
	var deltas Deltas
	for _, entry := range matrix {
		mag, contrib := entry.fn(snap)
		if math.IsNaN(mag) || math.IsInf(mag, 0) {
			mag = 0
		}
		effects = append(effects, Effect{
			Source:    entry.pair.Source,
			Target:    entry.pair.Target,
			Magnitude: mag,
			Factors:   contrib,
			Depth:     depth,
		})
		deltas.add(entry.pair.Target, mag)
	}
	return effects, deltas
}

// Resolve computes direct effects plus damped cascades. Each iteration's
// contribution is scaled by decay^depth with decay < 1, so accumulation is a
// contraction and always terminates within MaxCascadeDepth iterations.
// The states behind snap are never mutated; perturbation runs on clones.
func Resolve(snap Snapshot, p tuning.Params) Result {
	direct, net := evaluate(snap, 0)
	res := Result{Direct: direct, Net: net}

	carried := net
	work := snap.clone()
	for depth := 1; depth <= p.MaxCascadeDepth; depth++ {
		if carried.maxAbs() < 1e-6 {
			break
		}
		// Perturb the working copy with the previous iteration's deltas and
		// re-read the matrix against it.
		applyDeltas(work, carried)

		effects, iterDeltas := evaluate(work, depth)
		scale := math.Pow(p.CascadeDecay, float64(depth))
		carried = Deltas{}
		for i := range effects {
			effects[i].Magnitude *= scale
			res.Cascades = append(res.Cascades, effects[i])
			res.Net.add(effects[i].Target, effects[i].Magnitude)
		}
		carried.People = iterDeltas.People * scale
		carried.Animal = iterDeltas.Animal * scale
		carried.Environment = iterDeltas.Environment * scale
	}

	return res
}

// Apply writes the accumulated deltas into the layer states and audits every
// touched field. Non-finite results are clamped to the nearest bound and
// reported, never propagated.
func Apply(snap Snapshot, net Deltas) []*faults.NumericInstabilityError {
	applyDeltas(snap, net)
	return auditFinite(snap)
}

// applyDeltas maps per-layer net pressure onto concrete state fields, going
// through each variable's own damped, clamped update path.
func applyDeltas(snap Snapshot, d Deltas) {
	// People: wellbeing pressure lands on resistance and lifespan.
	if t := snap.People.Trait(people.TraitDiseaseResistance); t != nil {
		t.Apply(0.05 * d.People)
	}
	if t := snap.People.Trait(people.TraitLifespan); t != nil {
		t.Apply(2.0 * d.People)
	}

	// Animal: population-wide habitat pressure.
	for i := range snap.Animals.Species {
		sp := &snap.Animals.Species[i]
		sp.Population = math.Max(0, sp.Population*(1+0.08*d.Animal))
	}

	// Environment: harm raises temperature and erodes landscape; benefit
	// funds recovery.
	harm := math.Max(0, -d.Environment)
	benefit := math.Max(0, d.Environment)
	if c := snap.Environment.ClimateVar(environ.VarTemperature); c != nil {
		c.Previous = c.Current
		c.Current = math.Min(c.Max, math.Max(c.Min, c.Current+0.15*harm))
	}
	for i := range snap.Environment.Landscape {
		m := &snap.Environment.Landscape[i]
		m.RecomputeResilience()
		next := m.Current - 0.05*harm*(1-m.Resilience) + m.RegenRate*benefit*(1-m.Current)
		m.Previous = m.Current
		m.Current = math.Min(1, math.Max(0, next))
	}
}

// auditFinite sweeps every numeric field after application. Anything
// non-finite is clamped to the nearest bound and flagged.
func auditFinite(snap Snapshot) []*faults.NumericInstabilityError {
	var bad []*faults.NumericInstabilityError
	flag := func(name string, v *float64, lo, hi float64) {
		if math.IsNaN(*v) || math.IsInf(*v, 0) {
			bad = append(bad, &faults.NumericInstabilityError{Variable: name, Value: *v, Step: "cascade"})
			if math.IsInf(*v, 1) {
				*v = hi
			} else {
				*v = lo
			}
		}
	}

	for i := range snap.People.Traits {
		t := &snap.People.Traits[i]
		flag(t.Name, &t.Current, t.Min, t.Max)
	}
	for i := range snap.People.Dimensions {
		dte := &snap.People.Dimensions[i]
		flag(dte.Name, &dte.Value, dte.Min, dte.Max)
	}
	for i := range snap.People.Skills {
		sk := &snap.People.Skills[i]
		flag(sk.Name, &sk.Value, 0, 1)
	}
	for i := range snap.Animals.Species {
		sp := &snap.Animals.Species[i]
		flag(sp.Name+".population", &sp.Population, 0, sp.BaseCapacity)
	}
	for i := range snap.Environment.Climate {
		c := &snap.Environment.Climate[i]
		flag(c.Name, &c.Current, c.Min, c.Max)
	}
	for i := range snap.Environment.Landscape {
		m := &snap.Environment.Landscape[i]
		flag(m.Name, &m.Current, 0, 1)
	}
	return bad
}
