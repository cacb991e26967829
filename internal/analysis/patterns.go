package analysis

import (
	"log/slog"
	"sort"

	"github.com/incidentops/snowmetrics/internal/frame"
	"github.com/incidentops/snowmetrics/internal/incident"
)

// DefaultMinOccurrences is the recurrence threshold for general pattern
// analysis; focused call sites (RCA drill-downs) pass their own.
const DefaultMinOccurrences = 3

// RecurringIssue is one (category, configuration item) pair seen at least
// the minimum number of times.
type RecurringIssue struct {
	Category    string `json:"category"`
	CI          string `json:"ci"`
	Occurrences int    `json:"occurrences"`
}

// TemporalPatterns holds incident counts keyed by calendar features. Only
// populated when the temporal stage ran.
type TemporalPatterns struct {
	ByDayOfWeek map[int]int `json:"by_day_of_week"`
	ByHour      map[int]int `json:"by_hour"`
}

// PatternAnalysis is the combined pattern report.
type PatternAnalysis struct {
	CategoryDistribution map[string]int   `json:"category_distribution"`
	PriorityDistribution map[string]int   `json:"priority_distribution"`
	TemporalPatterns     TemporalPatterns `json:"temporal_patterns"`
	RecurringIssues      []RecurringIssue `json:"recurring_issues"`
}

// AnalyzePatterns computes category and priority frequency distributions,
// temporal patterns where available, and recurring issues at the default
// threshold.
func AnalyzePatterns(t *frame.Table) PatternAnalysis {
	analysis := PatternAnalysis{
		CategoryDistribution: map[string]int{},
		PriorityDistribution: map[string]int{},
		TemporalPatterns: TemporalPatterns{
			ByDayOfWeek: map[int]int{},
			ByHour:      map[int]int{},
		},
	}

	for _, row := range t.Rows() {
		if category := frame.String(row, incident.ColPatternCategory); category != "" {
			analysis.CategoryDistribution[category]++
		}
		if priority := frame.String(row, incident.ColPriority); priority != "" {
			analysis.PriorityDistribution[priority]++
		}
		if day, ok := frame.Int(row, incident.ColDayOfWeek); ok {
			analysis.TemporalPatterns.ByDayOfWeek[day]++
		}
		if hour, ok := frame.Int(row, incident.ColHourOfDay); ok {
			analysis.TemporalPatterns.ByHour[hour]++
		}
	}

	analysis.RecurringIssues = FindRecurringIssues(t, DefaultMinOccurrences)
	return analysis
}

// FindRecurringIssues groups incidents by (pattern category,
// configuration item), keeps pairs occurring at least minOccurrences
// times and returns them sorted by count descending. Ties sort by
// category then CI so the output is deterministic.
func FindRecurringIssues(t *frame.Table, minOccurrences int) []RecurringIssue {
	if !t.Has(incident.ColPatternCategory) || !t.Has(incident.ColCI) {
		slog.Warn("patternCategory or cmdb_ci column not found, skipping recurring-issue detection")
		return nil
	}

	type pair struct{ category, ci string }
	counts := map[pair]int{}
	for _, row := range t.Rows() {
		key := pair{
			category: frame.String(row, incident.ColPatternCategory),
			ci:       frame.String(row, incident.ColCI),
		}
		if key.category == "" || key.ci == "" {
			continue
		}
		counts[key]++
	}

	var recurring []RecurringIssue
	for key, count := range counts {
		if count >= minOccurrences {
			recurring = append(recurring, RecurringIssue{Category: key.category, CI: key.ci, Occurrences: count})
		}
	}
	sort.Slice(recurring, func(i, j int) bool {
		if recurring[i].Occurrences != recurring[j].Occurrences {
			return recurring[i].Occurrences > recurring[j].Occurrences
		}
		if recurring[i].Category != recurring[j].Category {
			return recurring[i].Category < recurring[j].Category
		}
		return recurring[i].CI < recurring[j].CI
	})

	slog.Info("found recurring issue patterns", "count", len(recurring))
	return recurring
}
