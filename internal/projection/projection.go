// Package projection runs accelerated, non-committal what-if simulations over
// candidate policy sets. Scenarios operate on private copies of the base
// state and never touch canonical data.
package projection

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/deeptime/internal/entropy"
	"github.com/talgya/deeptime/internal/environ"
	"github.com/talgya/deeptime/internal/era"
	"github.com/talgya/deeptime/internal/evolution"
	"github.com/talgya/deeptime/internal/faults"
)

// Classification is a scenario's terminal state.
type Classification string

const (
	Running      Classification = "RUNNING"
	Collapsed    Classification = "COLLAPSED"
	Breakthrough Classification = "BREAKTHROUGH"
	Completed    Classification = "COMPLETED"
	Partial      Classification = "PARTIAL" // truncated by timeout or cancellation
)

// Scenario is one run of one policy set over the horizon. Immutable once
// returned.
type Scenario struct {
	ID          uuid.UUID          `json:"id"`
	PolicyIndex int                `json:"policy_index"`
	RunIndex    int                `json:"run_index"`
	Policy      era.Policies       `json:"policy_set"`
	Seed        int64              `json:"seed"`
	Horizon     int                `json:"time_horizon"`
	Path        []*evolution.State `json:"path"`
	Population  []float64          `json:"population_path"`
	Result      Classification     `json:"result"`
	Note        string             `json:"note,omitempty"` // timeout/cancellation detail
}

// Summary aggregates the runs of one policy set for confidence reporting.
type Summary struct {
	PolicyIndex  int          `json:"policy_index"`
	Policy       era.Policies `json:"policy_set"`
	Runs         int          `json:"runs"`
	Collapsed    int          `json:"collapsed"`
	Breakthrough int          `json:"breakthrough"`
	Completed    int          `json:"completed"`
	Partial      int          `json:"partial"`

	// Trend is the mean landscape-health direction across runs:
	// "improving", "declining", or "stable".
	Trend string `json:"trend"`

	FinalPopulationMean     float64 `json:"final_population_mean"`
	FinalPopulationVariance float64 `json:"final_population_variance"`
}

// Request parameterizes one projection batch.
type Request struct {
	PolicyOptions []era.Policies
	Horizon       int
	RunCount      int
	BaseSeed      int64

	// Factors are held constant apart from the policy set under test and the
	// population size, which the sandbox evolves itself.
	Factors era.Factors
}

// Engine generates projection scenarios off a canonical state.
type Engine struct {
	Evolve  *evolution.Engine
	Workers int // 0 = GOMAXPROCS

	now func() time.Time
}

// NewEngine wraps an evolution engine for projection use.
func NewEngine(ev *evolution.Engine) *Engine {
	return &Engine{Evolve: ev, now: time.Now}
}

// GenerateScenarios runs RunCount seeded repetitions of every policy option
// against private copies of base. Scenarios are embarrassingly parallel and
// fan out over a worker pool; output order is fixed regardless of worker
// interleaving. Cancellation is checked between steps only, so a cancelled
// scenario always holds a fully computed final step.
func (p *Engine) GenerateScenarios(ctx context.Context, base *evolution.State, req Request) ([]*Scenario, []Summary, error) {
	if req.Horizon < 1 {
		return nil, nil, &faults.ConfigurationError{Field: "horizon", Reason: "must be at least 1"}
	}
	if req.RunCount < 1 {
		req.RunCount = 1
	}
	if len(req.PolicyOptions) == 0 {
		return nil, nil, &faults.ConfigurationError{Field: "policy_options", Reason: "at least one policy set required"}
	}

	jobs := len(req.PolicyOptions) * req.RunCount
	scenarios := make([]*Scenario, jobs)

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > jobs {
		workers = jobs
	}

	idxCh := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range idxCh {
				policyIdx := idx / req.RunCount
				runIdx := idx % req.RunCount
				scenarios[idx] = p.runScenario(ctx, base, req, policyIdx, runIdx)
			}
		}()
	}
	for i := 0; i < jobs; i++ {
		idxCh <- i
	}
	close(idxCh)
	wg.Wait()

	summaries := summarize(req, scenarios)
	slog.Info("projection batch complete", "policies", len(req.PolicyOptions), "runs", req.RunCount, "horizon", req.Horizon)
	return scenarios, summaries, nil
}

// runScenario simulates one (policy, run) pair on its own clone of base.
func (p *Engine) runScenario(ctx context.Context, base *evolution.State, req Request, policyIdx, runIdx int) *Scenario {
	// One deterministic seed per (base seed, policy, run); each step derives
	// its own child from it.
	seed := entropy.DeriveSeed(req.BaseSeed, "scenario", policyIdx*req.RunCount+runIdx)

	sc := &Scenario{
		ID:          uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "deeptime/%d/%d/%d", req.BaseSeed, policyIdx, runIdx)),
		PolicyIndex: policyIdx,
		RunIndex:    runIdx,
		Policy:      req.PolicyOptions[policyIdx],
		Seed:        seed,
		Horizon:     req.Horizon,
		Result:      Running,
	}

	st := base.Clone()
	factors := req.Factors
	factors.Policies = sc.Policy
	pop := factors.PopulationSize

	start := p.now()
	budget := p.Evolve.Params.ScenarioBudget
	healthyStreak := 0

	for step := 0; step < req.Horizon; step++ {
		// Cooperative cancellation: between steps only.
		select {
		case <-ctx.Done():
			sc.Result = Partial
			sc.Note = fmt.Sprintf("cancelled after %d steps", step)
			return sc
		default:
		}
		if budget > 0 && p.now().Sub(start) > budget {
			sc.Result = Partial
			sc.Note = (&faults.ProjectionTimeoutError{ScenarioID: sc.ID.String(), StepsDone: step}).Error()
			return sc
		}

		factors.PopulationSize = pop
		_, err := p.Evolve.Step(st, evolution.TransitionRequest{
			Era:     st.Era,
			Factors: factors,
			Seed:    entropy.DeriveSeed(seed, "step", step),
		})
		if err != nil {
			sc.Result = Partial
			sc.Note = fmt.Sprintf("step %d: %v", step, err)
			return sc
		}

		pop = nextPopulation(pop, st)
		sc.Path = append(sc.Path, st.Clone())
		sc.Population = append(sc.Population, pop)

		switch {
		case p.collapsed(pop, st):
			sc.Result = Collapsed
			return sc
		case p.healthy(st):
			healthyStreak++
			if healthyStreak >= p.Evolve.Params.BreakthroughSustain {
				sc.Result = Breakthrough
				return sc
			}
		default:
			healthyStreak = 0
		}
	}

	sc.Result = Completed
	return sc
}

// nextPopulation evolves the sandbox's own population figure from wellbeing
// and environmental strain.
func nextPopulation(pop float64, st *evolution.State) float64 {
	health := st.People.Health()
	stress := st.Environment.ClimateStress()
	scarcity := 1 - st.Environment.ResourceAvailability()
	growth := 0.10*(health-0.35) - 0.20*stress - 0.20*scarcity
	next := pop * (1 + growth)
	if next < 0 || math.IsNaN(next) {
		return 0
	}
	return next
}

// collapsed checks the survival floor and the irrecoverable landscape point.
func (p *Engine) collapsed(pop float64, st *evolution.State) bool {
	if pop < p.Evolve.Params.CollapsePopulation {
		return true
	}
	if forest := st.Environment.Metric(environ.MetricForestCover); forest != nil && forest.Current < p.Evolve.Params.CollapseForestCover {
		return true
	}
	return false
}

// healthy is one step of the sustained multi-metric breakthrough condition.
func (p *Engine) healthy(st *evolution.State) bool {
	threshold := p.Evolve.Params.BreakthroughHealth
	return st.People.Health() >= threshold && st.Environment.LandscapeHealth() >= threshold
}

// summarize folds each policy's runs into trend and variance statistics.
func summarize(req Request, scenarios []*Scenario) []Summary {
	out := make([]Summary, len(req.PolicyOptions))
	for pi := range req.PolicyOptions {
		sum := Summary{PolicyIndex: pi, Policy: req.PolicyOptions[pi]}
		var finals []float64
		var trendAcc float64

		for ri := 0; ri < req.RunCount; ri++ {
			sc := scenarios[pi*req.RunCount+ri]
			if sc == nil {
				continue
			}
			sum.Runs++
			switch sc.Result {
			case Collapsed:
				sum.Collapsed++
			case Breakthrough:
				sum.Breakthrough++
			case Completed:
				sum.Completed++
			case Partial:
				sum.Partial++
			}
			if n := len(sc.Population); n > 0 {
				finals = append(finals, sc.Population[n-1])
			}
			if n := len(sc.Path); n > 1 {
				trendAcc += sc.Path[n-1].Environment.LandscapeHealth() - sc.Path[0].Environment.LandscapeHealth()
			}
		}

		if len(finals) > 0 {
			var mean float64
			for _, v := range finals {
				mean += v
			}
			mean /= float64(len(finals))
			var variance float64
			for _, v := range finals {
				variance += (v - mean) * (v - mean)
			}
			variance /= float64(len(finals))
			sum.FinalPopulationMean = mean
			sum.FinalPopulationVariance = variance
		}

		switch {
		case trendAcc > 0.02*float64(sum.Runs):
			sum.Trend = "improving"
		case trendAcc < -0.02*float64(sum.Runs):
			sum.Trend = "declining"
		default:
			sum.Trend = "stable"
		}
		out[pi] = sum
	}
	return out
}
