// Package analysis contains the metrics aggregators that consume an
// enriched incident table: SLA compliance, resolution-time statistics,
// backlog age, reassignment behavior, quality checks and recurring-issue
// detection. Each aggregator is a pure function of the table; when a
// required derived column is missing it logs a warning and returns a
// zeroed result instead of failing.
package analysis

import (
	"log/slog"
	"math"

	"github.com/incidentops/snowmetrics/internal/frame"
	"github.com/incidentops/snowmetrics/internal/incident"
)

// PrioritySLA is the per-priority SLA breakdown.
type PrioritySLA struct {
	Total         int     `json:"total"`
	Breached      int     `json:"breached"`
	Met           int     `json:"met"`
	BreachRatePct float64 `json:"breach_rate_pct"`
}

// SLAMetrics summarizes SLA compliance over resolved incidents.
type SLAMetrics struct {
	TotalResolved int                    `json:"total_resolved"`
	SLABreached   int                    `json:"sla_breached"`
	SLAMet        int                    `json:"sla_met"`
	BreachRatePct float64                `json:"breach_rate_pct"`
	ByPriority    map[string]PrioritySLA `json:"by_priority"`
}

// CalculateSLAMetrics restricts the table to rows with a defined
// resolution time and computes breach counts and rates, overall and per
// priority. Keys of ByPriority are the raw priority strings.
func CalculateSLAMetrics(t *frame.Table) SLAMetrics {
	metrics := SLAMetrics{ByPriority: map[string]PrioritySLA{}}

	if !t.Has(incident.ColResolutionTimeHrs) {
		slog.Warn("resolutionTimeHours column not found, run the enrichment pipeline first")
		return metrics
	}

	resolved := t.Filter(func(row frame.Row) bool {
		_, ok := frame.Float(row, incident.ColResolutionTimeHrs)
		return ok
	})
	if resolved.Len() == 0 {
		slog.Warn("no resolved incidents found")
		return metrics
	}

	metrics.TotalResolved = resolved.Len()
	for _, row := range resolved.Rows() {
		if frame.Bool(row, incident.ColSLABreach) {
			metrics.SLABreached++
		}
	}
	metrics.SLAMet = metrics.TotalResolved - metrics.SLABreached
	metrics.BreachRatePct = round2(float64(metrics.SLABreached) / float64(metrics.TotalResolved) * 100)

	if resolved.Has(incident.ColPriority) {
		for _, row := range resolved.Rows() {
			priority := frame.String(row, incident.ColPriority)
			if priority == "" {
				continue
			}
			group := metrics.ByPriority[priority]
			group.Total++
			if frame.Bool(row, incident.ColSLABreach) {
				group.Breached++
			}
			metrics.ByPriority[priority] = group
		}
		for priority, group := range metrics.ByPriority {
			group.Met = group.Total - group.Breached
			group.BreachRatePct = round2(float64(group.Breached) / float64(group.Total) * 100)
			metrics.ByPriority[priority] = group
		}
	}

	slog.Info("calculated SLA metrics",
		"breach_rate_pct", metrics.BreachRatePct,
		"breached", metrics.SLABreached,
		"resolved", metrics.TotalResolved)
	return metrics
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
