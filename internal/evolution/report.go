// The consolidated per-transition report published to the event bus.
package evolution

import (
	"github.com/talgya/deeptime/internal/animal"
	"github.com/talgya/deeptime/internal/environ"
	"github.com/talgya/deeptime/internal/interaction"
	"github.com/talgya/deeptime/internal/people"
)

// Status is the transition's user-visible outcome.
type Status string

const (
	// StatusOK: the transition completed with no local recoveries.
	StatusOK Status = "OK"
	// StatusDegraded: one or more local recoveries occurred (clamps,
	// policy substitution, reduced-fidelity fallback).
	StatusDegraded Status = "DEGRADED"
	// StatusPartial: a projection was truncated by timeout or cancellation.
	StatusPartial Status = "PARTIAL"
	// StatusFatal: unrecoverable; the scheduler must halt progression for
	// this civilization and surface the failure.
	StatusFatal Status = "FATAL"
)

// EventName is the event bus topic reports are published under.
const EventName = "evolution.report"

// Report is the consolidated outcome of one era transition.
type Report struct {
	CivID string  `json:"civ_id"`
	Turn  uint64  `json:"turn"`
	Era   string  `json:"era"`
	Year  float64 `json:"year"`

	PeopleChanges      people.Report  `json:"people_changes"`
	AnimalChanges      animal.Report  `json:"animal_changes"`
	EnvironmentChanges environ.Report `json:"environment_changes"`

	CascadeEffects  []interaction.Effect `json:"cascade_effects"`
	NetLayerChanges interaction.Deltas   `json:"net_layer_changes"`

	Status   Status   `json:"status"`
	Warnings []string `json:"warnings,omitempty"`

	// PolicyConflict names the conflict when the last valid policy set was
	// substituted for a contradictory input.
	PolicyConflict string `json:"policy_conflict,omitempty"`

	// FallbackApplied marks the reduced-fidelity path taken when the
	// transition exceeded its soft compute budget. Never silent.
	FallbackApplied bool `json:"fallback_applied,omitempty"`

	// Instabilities counts local numeric recoveries during the transition.
	Instabilities int `json:"instabilities,omitempty"`
}
