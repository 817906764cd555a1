// Package faults defines the error taxonomy shared by every evolution layer.
// Numeric faults are recovered locally (clamp and flag); configuration faults
// surface to the caller unmodified.
package faults

import "fmt"

// ConfigurationError reports invalid era or policy parameters. Not recoverable
// locally; the transition that produced it must not proceed.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Reason)
}

// NumericInstabilityError records a non-finite or repeatedly out-of-bound value
// produced by a feedback or cascade computation. The offending value is clamped
// before this error is attached to a report.
type NumericInstabilityError struct {
	Variable string
	Value    float64
	Step     string // which computation produced it ("climate_feedback", "cascade", ...)
}

func (e *NumericInstabilityError) Error() string {
	return fmt.Sprintf("numeric instability in %s: %s = %g", e.Step, e.Variable, e.Value)
}

// PolicyConflictError marks contradictory policy inputs. The simulation
// proceeds using the last known valid policy set; the conflict is reported,
// never silently patched.
type PolicyConflictError struct {
	Policies []string
	Reason   string
}

func (e *PolicyConflictError) Error() string {
	return fmt.Sprintf("policy conflict %v: %s", e.Policies, e.Reason)
}

// ProjectionTimeoutError indicates a scenario exceeded its compute budget.
// The partial path up to the last completed step is still returned.
type ProjectionTimeoutError struct {
	ScenarioID string
	StepsDone  int
}

func (e *ProjectionTimeoutError) Error() string {
	return fmt.Sprintf("projection %s timed out after %d steps", e.ScenarioID, e.StepsDone)
}
