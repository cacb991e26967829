package loader

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/incidentops/snowmetrics/internal/frame"
	"github.com/incidentops/snowmetrics/internal/incident"
)

// RequiredColumns is the minimal raw column set incident processing
// expects. Validation warns on gaps; the pipeline still degrades
// gracefully without them.
func RequiredColumns() []string {
	return []string{incident.ColNumber, incident.ColShortDescription, incident.ColPriority, incident.ColState}
}

// ValidateSchema checks a loaded batch against the expected incident
// shape and returns the issues found: missing required columns, all-null
// columns, duplicate incident numbers and date columns still carrying
// text. An empty slice means the batch is clean. Issues are advisory
// (logged as warnings), never fatal.
func ValidateSchema(t *frame.Table, required []string) []string {
	if required == nil {
		required = RequiredColumns()
	}

	var issues []string
	if t.Len() == 0 {
		issues = append(issues, "table is empty")
		return issues
	}

	var missing []string
	for _, column := range required {
		if !t.Has(column) {
			missing = append(missing, column)
		}
	}
	if len(missing) > 0 {
		issues = append(issues, fmt.Sprintf("missing required columns: %v", missing))
	}

	var allNull []string
	for _, column := range t.Columns() {
		nulls := 0
		for _, row := range t.Rows() {
			if v, ok := row[column]; !ok || v == nil {
				nulls++
			}
		}
		if nulls == t.Len() {
			allNull = append(allNull, column)
		}
	}
	if len(allNull) > 0 {
		issues = append(issues, fmt.Sprintf("columns with all null values: %v", allNull))
	}

	if t.Has(incident.ColNumber) {
		seen := map[string]struct{}{}
		duplicates := 0
		for _, row := range t.Rows() {
			number := frame.String(row, incident.ColNumber)
			if _, ok := seen[number]; ok {
				duplicates++
			}
			seen[number] = struct{}{}
		}
		if duplicates > 0 {
			issues = append(issues, fmt.Sprintf("found %d duplicate incident numbers", duplicates))
		}
	}

	for _, column := range append(incident.DateColumns(), "opened_at", "resolved_at") {
		if !t.Has(column) {
			continue
		}
		for _, row := range t.Rows() {
			if v, ok := row[column]; ok && v != nil {
				if _, isTime := v.(time.Time); !isTime {
					issues = append(issues, fmt.Sprintf("column %s is not parsed to timestamps yet", column))
				}
				break
			}
		}
	}

	for _, issue := range issues {
		slog.Warn("schema validation issue", "issue", issue)
	}
	return issues
}

// QualityReport summarizes data quality for a loaded batch. The score
// starts at 100 and loses 10 points per issue, 3 per warning, and half a
// point per null percentage point in a critical column.
type QualityReport struct {
	TotalRecords    int                `json:"total_records"`
	Issues          []string           `json:"issues"`
	Warnings        []string           `json:"warnings"`
	NullPercentages map[string]float64 `json:"null_percentages"`
	Score           float64            `json:"data_quality_score"`
}

// criticalColumns are the raw columns whose absence degrades most
// derived metrics.
var criticalColumns = []string{
	incident.ColNumber, incident.ColShortDescription, incident.ColPriority, "opened_at", incident.ColState,
}

// ValidateDataQuality computes per-column null rates and flags batches
// with missing critical data, very short descriptions or invalid
// priority values.
func ValidateDataQuality(t *frame.Table) QualityReport {
	report := QualityReport{
		TotalRecords:    t.Len(),
		NullPercentages: map[string]float64{},
	}
	if t.Len() == 0 {
		report.Issues = append(report.Issues, "table is empty")
		return report
	}

	for _, column := range t.Columns() {
		nulls := 0
		for _, row := range t.Rows() {
			if v, ok := row[column]; !ok || v == nil {
				nulls++
			}
		}
		pct := float64(nulls) / float64(t.Len()) * 100
		report.NullPercentages[column] = round2(pct)
		if pct > 50 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("column %q has %.1f%% null values", column, pct))
		}
	}

	for _, column := range criticalColumns {
		if !t.Has(column) {
			continue
		}
		nulls := 0
		for _, row := range t.Rows() {
			if v, ok := row[column]; !ok || v == nil {
				nulls++
			}
		}
		if nulls > 0 {
			report.Issues = append(report.Issues, fmt.Sprintf("critical column %q has %d null values", column, nulls))
		}
	}

	if t.Has(incident.ColShortDescription) {
		veryShort := 0
		for _, row := range t.Rows() {
			if desc := frame.String(row, incident.ColShortDescription); desc != "" && len(desc) < 10 {
				veryShort++
			}
		}
		if veryShort > 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%d incidents have very short descriptions (< 10 chars)", veryShort))
		}
	}

	if t.Has(incident.ColPriority) {
		invalid := 0
		for _, row := range t.Rows() {
			if raw := frame.String(row, incident.ColPriority); raw != "" && incident.ParsePriority(raw) == incident.PriorityUnknown {
				invalid++
			}
		}
		if invalid > 0 {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%d incidents have invalid priority values", invalid))
		}
	}

	score := 100.0
	score -= float64(len(report.Issues)) * 10
	score -= float64(len(report.Warnings)) * 3
	for _, column := range criticalColumns {
		if pct, ok := report.NullPercentages[column]; ok {
			score -= pct * 0.5
		}
	}
	report.Score = math.Max(0, round2(score))

	sort.Strings(report.Warnings)
	slog.Info("data quality validated", "score", report.Score, "records", report.TotalRecords)
	return report
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
