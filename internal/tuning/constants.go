// Package tuning holds the simulation parameter tables. Core ratios derive
// from the golden ratio so the damping constants stay in fixed proportion to
// one another; everything else is a plain researched value that can be
// overridden from a YAML file.
package tuning

import "math"

// Phi is the golden ratio.
const Phi = 1.6180339887498948

// Ratios derived from powers of Phi. The cascade decay in particular must stay
// strictly below 1 so cascade propagation is a contraction mapping.
var (
	// Decay (Φ⁻¹ ≈ 0.618): per-iteration cascade damping.
	Decay = math.Pow(Phi, -1)

	// Drift (Φ⁻² ≈ 0.382): baseline generational drift fraction.
	Drift = math.Pow(Phi, -2)

	// Friction (Φ⁻³ ≈ 0.236): inertia floor for cognitive skills — skills
	// transmit faster than values, so their floor sits below the cultural one.
	Friction = math.Pow(Phi, -3)
)
