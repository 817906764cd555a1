// Command forecast runs what-if projection scenarios over candidate policy
// sets and prints per-policy confidence summaries.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/deeptime/internal/era"
	"github.com/talgya/deeptime/internal/evolution"
	"github.com/talgya/deeptime/internal/projection"
	"github.com/talgya/deeptime/internal/tuning"
)

func main() {
	var (
		seed    = flag.Int64("seed", 42, "base random seed")
		horizon = flag.Int("horizon", 50, "steps per scenario")
		runs    = flag.Int("runs", 8, "Monte-Carlo runs per policy set")
		workers = flag.Int("workers", 0, "worker pool size (0 = GOMAXPROCS)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Ctrl-C cancels between steps; finished work is kept as PARTIAL.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	base := evolution.NewState(uuid.NewSHA1(uuid.NameSpaceOID, []byte("deeptime/forecast")), *seed)
	base.Era = era.Industrial

	engine := projection.NewEngine(evolution.NewEngine(tuning.Defaults()))
	engine.Workers = *workers

	policies := []era.Policies{
		{ConservationEffort: 0.8, DevelopmentDrive: 0.2, AnimalHusbandry: 0.5, EducationInvestment: 0.6, CulturalOpenness: 0.6},
		{ConservationEffort: 0.2, DevelopmentDrive: 0.8, AnimalHusbandry: 0.5, EducationInvestment: 0.4, CulturalOpenness: 0.4},
		{ConservationEffort: 0.5, DevelopmentDrive: 0.5, AnimalHusbandry: 0.6, EducationInvestment: 0.5, CulturalOpenness: 0.5},
	}
	labels := []string{"green", "growth", "balanced"}

	scenarios, summaries, err := engine.GenerateScenarios(ctx, base, projection.Request{
		PolicyOptions: policies,
		Horizon:       *horizon,
		RunCount:      *runs,
		BaseSeed:      *seed,
		Factors: era.Factors{
			TechnologyLevel:   0.6,
			EnvironmentalTech: 0.4,
			PopulationSize:    2_000_000,
			ConsumptionRate:   0.6,
		},
	})
	if err != nil {
		slog.Error("projection failed", "error", err)
		os.Exit(1)
	}

	for _, sum := range summaries {
		fmt.Printf("\npolicy %-9s runs=%d  trend=%s\n", labels[sum.PolicyIndex], sum.Runs, sum.Trend)
		fmt.Printf("  collapsed=%d breakthrough=%d completed=%d partial=%d\n",
			sum.Collapsed, sum.Breakthrough, sum.Completed, sum.Partial)
		fmt.Printf("  final population mean %s (variance %s)\n",
			humanize.Comma(int64(sum.FinalPopulationMean)),
			humanize.Comma(int64(sum.FinalPopulationVariance)))
	}

	// Per-run detail for callers who want the full paths.
	fmt.Println()
	for _, sc := range scenarios {
		if sc.Result == projection.Partial {
			fmt.Printf("scenario %s policy=%s run=%d: %s (%s)\n",
				sc.ID, labels[sc.PolicyIndex], sc.RunIndex, sc.Result, sc.Note)
		}
	}

	slog.Info("forecast complete", "scenarios", len(scenarios))
}
