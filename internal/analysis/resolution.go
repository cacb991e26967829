package analysis

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/incidentops/snowmetrics/internal/frame"
	"github.com/incidentops/snowmetrics/internal/incident"
)

// ResolutionStats is the overall resolution-time distribution, in hours.
type ResolutionStats struct {
	Count           int     `json:"count"`
	MeanHrs         float64 `json:"mean_hrs"`
	MedianHrs       float64 `json:"median_hrs"`
	MinHrs          float64 `json:"min_hrs"`
	MaxHrs          float64 `json:"max_hrs"`
	StdDevHrs       float64 `json:"std_dev_hrs"`
	Percentile90Hrs float64 `json:"percentile_90_hrs"`
	Percentile95Hrs float64 `json:"percentile_95_hrs"`
}

// GroupStats is the condensed per-group breakdown.
type GroupStats struct {
	Count     int     `json:"count"`
	MeanHrs   float64 `json:"mean_hrs"`
	MedianHrs float64 `json:"median_hrs"`
}

// ResolutionAnalysis holds resolution-time statistics overall and grouped
// by priority and pattern category.
type ResolutionAnalysis struct {
	Overall    ResolutionStats       `json:"overall"`
	ByPriority map[string]GroupStats `json:"by_priority"`
	ByCategory map[string]GroupStats `json:"by_category"`
}

// AnalyzeResolutionTimes computes resolution-time statistics over rows
// with a defined resolution time. The priority and category breakdowns
// are optional because callers summarizing large batches often only need
// the overall figures.
func AnalyzeResolutionTimes(t *frame.Table, byPriority, byCategory bool) ResolutionAnalysis {
	analysis := ResolutionAnalysis{
		ByPriority: map[string]GroupStats{},
		ByCategory: map[string]GroupStats{},
	}

	if !t.Has(incident.ColResolutionTimeHrs) {
		slog.Warn("resolutionTimeHours column not found")
		return analysis
	}

	overall := collectHours(t, func(frame.Row) bool { return true })
	if len(overall) == 0 {
		slog.Warn("no resolved incidents found")
		return analysis
	}

	analysis.Overall = ResolutionStats{
		Count:           len(overall),
		MeanHrs:         round2(stat.Mean(overall, nil)),
		MedianHrs:       round2(percentile(overall, 0.5)),
		MinHrs:          round2(overall[0]),
		MaxHrs:          round2(overall[len(overall)-1]),
		StdDevHrs:       round2(sampleStdDev(overall)),
		Percentile90Hrs: round2(percentile(overall, 0.9)),
		Percentile95Hrs: round2(percentile(overall, 0.95)),
	}

	if byPriority && t.Has(incident.ColPriority) {
		analysis.ByPriority = groupStats(t, incident.ColPriority)
	}
	if byCategory && t.Has(incident.ColPatternCategory) {
		analysis.ByCategory = groupStats(t, incident.ColPatternCategory)
	}

	slog.Info("analyzed resolution times", "mean_hrs", analysis.Overall.MeanHrs, "count", analysis.Overall.Count)
	return analysis
}

func groupStats(t *frame.Table, column string) map[string]GroupStats {
	byKey := map[string][]float64{}
	for _, row := range t.Rows() {
		hours, ok := frame.Float(row, incident.ColResolutionTimeHrs)
		if !ok {
			continue
		}
		key := frame.String(row, column)
		if key == "" {
			continue
		}
		byKey[key] = append(byKey[key], hours)
	}

	out := make(map[string]GroupStats, len(byKey))
	for key, hours := range byKey {
		sort.Float64s(hours)
		out[key] = GroupStats{
			Count:     len(hours),
			MeanHrs:   round2(stat.Mean(hours, nil)),
			MedianHrs: round2(percentile(hours, 0.5)),
		}
	}
	return out
}

func collectHours(t *frame.Table, keep func(frame.Row) bool) []float64 {
	var hours []float64
	for _, row := range t.Rows() {
		if !keep(row) {
			continue
		}
		if h, ok := frame.Float(row, incident.ColResolutionTimeHrs); ok {
			hours = append(hours, h)
		}
	}
	sort.Float64s(hours)
	return hours
}

// sampleStdDev is the n-1 denominator standard deviation, matching the
// reporting convention downstream dashboards already use. A single sample
// has no spread, not NaN.
func sampleStdDev(sorted []float64) float64 {
	if len(sorted) < 2 {
		return 0
	}
	return math.Sqrt(stat.Variance(sorted, nil))
}

// percentile uses linear interpolation between order statistics, the
// convention the existing reports were produced with. Input must be
// sorted.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := p * float64(len(sorted)-1)
	lower := int(math.Floor(h))
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lower)
	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}
