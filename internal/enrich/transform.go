// Package enrich implements the incident enrichment pipeline: the fixed
// set of pure, row-local transformation stages and the orchestrator that
// composes them. Every stage returns a new table; the caller's input is
// never mutated.
package enrich

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/errgroup"

	"github.com/incidentops/snowmetrics/internal/config"
	"github.com/incidentops/snowmetrics/internal/frame"
	"github.com/incidentops/snowmetrics/internal/incident"
)

// Stage names a pipeline stage selector.
type Stage string

const (
	StageNormalize  Stage = "normalize"
	StageDates      Stage = "dates"
	StageStatus     Stage = "status"
	StageCategorize Stage = "categorization"
	StageDurations  Stage = "durations"
	StageSLA        Stage = "sla"
	StageImpact     Stage = "impact"
	StageTemporal   Stage = "temporal"
)

// DefaultStages is the fixed default order. Calendar features are opt-in,
// so StageTemporal is excluded unless explicitly requested.
func DefaultStages() []Stage {
	return []Stage{
		StageNormalize, StageDates, StageStatus, StageCategorize,
		StageDurations, StageSLA, StageImpact,
	}
}

// ErrNilTable is the structural error for a missing input table.
var ErrNilTable = errors.New("nil input table")

// Options configures a Transform call. The zero value runs the default
// stages against the default configuration with the wall clock as
// snapshot time.
type Options struct {
	// Stages to run, in order. Nil means DefaultStages.
	Stages []Stage

	// Config supplies the SLA and categorization rule tables and the
	// lifecycle state sets. Nil means config.Default().
	Config *config.Config

	// Now is the snapshot clock for age calculations. Nil means time.Now.
	// Injectable so tests and replayed batches are deterministic.
	Now func() time.Time

	// Parallelism > 1 splits the batch into that many row partitions and
	// enriches them concurrently. Stages are row-local, so the result is
	// identical to the sequential path.
	Parallelism int `validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Transform runs the selected stages over the table and returns the
// enriched copy plus the number of columns added. An empty table is
// returned unchanged; a nil table or unknown stage name is a structural
// error.
func Transform(t *frame.Table, opts Options) (*frame.Table, int, error) {
	if t == nil {
		return nil, 0, ErrNilTable
	}
	if err := validate.Struct(opts); err != nil {
		return nil, 0, fmt.Errorf("validating options: %w", err)
	}

	stages := opts.Stages
	if stages == nil {
		stages = DefaultStages()
	}
	for _, stage := range stages {
		if !knownStage(stage) {
			return nil, 0, fmt.Errorf("unknown stage %q", stage)
		}
	}

	if t.Len() == 0 {
		slog.Warn("empty table provided for transformation")
		return t.Clone(), 0, nil
	}
	if len(stages) == 0 {
		return t.Clone(), 0, nil
	}

	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	snapshot := now()

	slog.Info("starting transformation", "stages", stageNames(stages), "rows", t.Len())

	var out *frame.Table
	if opts.Parallelism > 1 && t.Len() >= opts.Parallelism {
		out = transformParallel(t, stages, cfg, snapshot, opts.Parallelism)
	} else {
		out = applyStages(t, stages, cfg, snapshot)
	}

	added := len(out.Columns()) - len(t.Columns())
	slog.Info("transformation complete", "columns_added", added)
	return out, added, nil
}

func transformParallel(t *frame.Table, stages []Stage, cfg *config.Config, snapshot time.Time, parallelism int) *frame.Table {
	chunkSize := (t.Len() + parallelism - 1) / parallelism
	var parts []*frame.Table
	for from := 0; from < t.Len(); from += chunkSize {
		to := min(from+chunkSize, t.Len())
		parts = append(parts, t.Slice(from, to))
	}

	results := make([]*frame.Table, len(parts))
	var g errgroup.Group
	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			results[i] = applyStages(part, stages, cfg, snapshot)
			return nil
		})
	}
	// Stage application cannot fail; stage names were validated up front.
	_ = g.Wait()
	return frame.Concat(results...)
}

func applyStages(t *frame.Table, stages []Stage, cfg *config.Config, snapshot time.Time) *frame.Table {
	out := t
	for _, stage := range stages {
		switch stage {
		case StageNormalize:
			out = NormalizeColumns(out)
		case StageDates:
			out = ParseDates(out)
		case StageStatus:
			active := cfg.StringsValue("states.active", incident.DefaultActiveStates())
			resolved := cfg.StringsValue("states.resolved", incident.DefaultResolvedStates())
			out = AddStatusFields(out, active, resolved)
		case StageCategorize:
			out = Categorize(out, cfg.CategoryRules())
		case StageDurations:
			out = CalculateDurations(out, snapshot)
		case StageSLA:
			out = EvaluateSLA(out, cfg.SLARules())
		case StageImpact:
			out = EstimateUserImpact(out)
		case StageTemporal:
			out = AddTemporalFields(out)
		}
	}
	return out
}

func knownStage(s Stage) bool {
	switch s {
	case StageNormalize, StageDates, StageStatus, StageCategorize,
		StageDurations, StageSLA, StageImpact, StageTemporal:
		return true
	}
	return false
}

func stageNames(stages []Stage) []string {
	names := make([]string, len(stages))
	for i, stage := range stages {
		names[i] = string(stage)
	}
	return names
}
