// Engine: one era transition over a civilization's evolutionary state.
package evolution

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/talgya/deeptime/internal/animal"
	"github.com/talgya/deeptime/internal/entropy"
	"github.com/talgya/deeptime/internal/environ"
	"github.com/talgya/deeptime/internal/era"
	"github.com/talgya/deeptime/internal/faults"
	"github.com/talgya/deeptime/internal/interaction"
	"github.com/talgya/deeptime/internal/tuning"
)

// TransitionRequest carries the external scheduler's inputs for one era
// transition.
type TransitionRequest struct {
	Era     era.Era     `json:"era"`
	Factors era.Factors `json:"civilization_factors"`
	Seed    int64       `json:"random_seed"`
}

// Engine runs era transitions. It is stateless between calls and assumes
// exclusive-owner access to the State it is handed for the duration of a call.
type Engine struct {
	Params tuning.Params

	// now is swappable for budget tests.
	now func() time.Time
}

// NewEngine creates an engine with the given parameters.
func NewEngine(p tuning.Params) *Engine {
	return &Engine{Params: p, now: time.Now}
}

// ProcessEraEvolution advances st by one era transition under the soft
// compute budget. If the budget expires before cascade resolution, the engine
// falls back to first-order effects only and marks the report DEGRADED.
//
// A returned error with a FATAL report means the scheduler must halt
// progression for this civilization; the state still reflects the last
// consistent clamped values.
func (e *Engine) ProcessEraEvolution(st *State, req TransitionRequest) (*Report, error) {
	return e.process(st, req, e.Params.TransitionBudget)
}

// Step is the identical per-step evolution function with the budget disabled.
// Projections use it so their paths stay bit-deterministic in the seed.
func (e *Engine) Step(st *State, req TransitionRequest) (*Report, error) {
	return e.process(st, req, 0)
}

func (e *Engine) process(st *State, req TransitionRequest, budget time.Duration) (*Report, error) {
	cfg, err := era.Lookup(req.Era)
	if err != nil {
		return nil, err
	}

	start := e.now()

	factors, warns := req.Factors.Clamped()

	rep := &Report{
		CivID:    st.CivID.String(),
		Era:      cfg.Era.Name(),
		Warnings: warns,
	}

	// Contradictory policies: proceed on the last known valid set, report
	// the conflict.
	if conflictErr := factors.Policies.ConflictCheck(); conflictErr != nil {
		rep.PolicyConflict = conflictErr.Error()
		factors.Policies = st.LastValidPolicies
		slog.Warn("policy conflict, using last valid set", "civ", st.CivID, "turn", st.Turn, "conflict", conflictErr)
	} else {
		st.LastValidPolicies = factors.Policies
	}

	// Habitat comes from the environment's prior-step output: the fixed
	// People → Animal → Environment order never reads ahead.
	habitat := animal.Habitat{
		ResourceAvailability: st.Environment.ResourceAvailability(),
		HabitatQuality:       st.Environment.HabitatQuality(),
		ClimateStress:        st.Environment.ClimateStress(),
	}

	rng := entropy.New(req.Seed).Derive("transition", int(st.Turn))

	rep.PeopleChanges = st.People.Evolve(cfg, factors)
	rep.AnimalChanges = st.Animals.Evolve(cfg, factors, st.People.Health(), habitat, rng)

	impact := environ.Impact{
		PollutionPressure:   factors.PopulationPressure(),
		DevelopmentPressure: factors.Policies.DevelopmentDrive,
		ConservationFactor:  factors.Policies.ConservationEffort,
		MitigationTech:      factors.EnvironmentalTech,
	}
	rep.EnvironmentChanges = st.Environment.Evolve(cfg, impact, st.Year, cfg.YearsPerTurn, e.Params.FeedbackCap)

	instabilities := len(rep.EnvironmentChanges.Instabilities)

	// Cascade resolution, with the reduced-fidelity fallback when the soft
	// budget has already been spent.
	params := e.Params
	if budget > 0 && e.now().Sub(start) > budget {
		params.MaxCascadeDepth = 0
		rep.FallbackApplied = true
		rep.Warnings = append(rep.Warnings, "compute budget exceeded: cascades skipped, first-order effects only")
		slog.Warn("transition over budget, reduced fidelity", "civ", st.CivID, "turn", st.Turn, "budget", budget)
	}

	snap := interaction.Snapshot{
		People:      st.People,
		Animals:     st.Animals,
		Environment: st.Environment,
		Factors:     factors,
	}
	res := interaction.Resolve(snap, params)
	applied := interaction.Apply(snap, res.Net)
	instabilities += len(applied)
	for _, bad := range applied {
		rep.Warnings = append(rep.Warnings, bad.Error())
	}
	for _, bad := range rep.EnvironmentChanges.Instabilities {
		rep.Warnings = append(rep.Warnings, bad.Error())
	}

	rep.CascadeEffects = res.Cascades
	rep.NetLayerChanges = res.Net
	rep.Instabilities = instabilities

	st.Turn++
	st.Year += cfg.YearsPerTurn
	st.Era = cfg.Era
	rep.Turn = st.Turn
	rep.Year = st.Year

	record := InteractionRecord{Turn: st.Turn, Era: cfg.Era, Effects: append(res.Direct, res.Cascades...), Net: res.Net}
	if err := st.AppendHistory(record, e.Params.HistoryCap); err != nil {
		return nil, fmt.Errorf("append interaction history: %w", err)
	}

	switch {
	case instabilities >= e.Params.InstabilityFatalThreshold:
		rep.Status = StatusFatal
		slog.Error("transition fatal: repeated numeric recoveries", "civ", st.CivID, "turn", st.Turn, "count", instabilities)
		return rep, fmt.Errorf("era transition turn %d: %w", st.Turn,
			&faults.NumericInstabilityError{Variable: "transition", Value: float64(instabilities), Step: "escalation"})
	case instabilities > 0 || rep.FallbackApplied || rep.PolicyConflict != "" || len(warns) > 0:
		rep.Status = StatusDegraded
	default:
		rep.Status = StatusOK
	}

	slog.Info("era transition complete",
		"civ", st.CivID, "turn", st.Turn, "era", cfg.Era.Name(),
		"year", st.Year, "status", rep.Status, "cascades", len(res.Cascades))
	return rep, nil
}

// IsFatal reports whether err is the escalated instability failure.
func IsFatal(err error) bool {
	var nie *faults.NumericInstabilityError
	return errors.As(err, &nie) && nie.Step == "escalation"
}
