package analysis

import (
	"log/slog"

	"github.com/incidentops/snowmetrics/internal/frame"
	"github.com/incidentops/snowmetrics/internal/incident"
)

// Quality flag columns added by the checks.
const (
	ColQualityPriorityMismatch = "quality_priority_mismatch"
	ColQualityOnHoldAbuse      = "quality_on_hold_abuse"
	ColQualityPoorDescription  = "quality_poor_description"
	ColQualityExcessiveReassts = "quality_excessive_reassignments"
	ColQualityIssuesCount      = "quality_issues_count"
)

// QualityConfig tunes the individual checks.
type QualityConfig struct {
	OnHoldThresholdHours  float64 `validate:"gte=0"`
	MinDescriptionLength  int     `validate:"gte=0"`
	ReassignmentThreshold int     `validate:"gte=0"`
}

// DefaultQualityConfig returns the documented check thresholds.
func DefaultQualityConfig() QualityConfig {
	return QualityConfig{
		OnHoldThresholdHours:  72,
		MinDescriptionLength:  20,
		ReassignmentThreshold: 3,
	}
}

// CheckIncidentQuality runs all four quality checks and adds a combined
// quality_issues_count column. Each check is also callable on its own.
func CheckIncidentQuality(t *frame.Table, cfg QualityConfig) *frame.Table {
	out := DetectPriorityMismatch(t)
	out = DetectOnHoldAbuse(out, cfg.OnHoldThresholdHours)
	out = CheckDescriptionQuality(out, cfg.MinDescriptionLength)
	out = FlagExcessiveReassignments(out, cfg.ReassignmentThreshold)

	out.AddColumns(ColQualityIssuesCount)
	flagged := 0
	flags := []string{ColQualityPriorityMismatch, ColQualityOnHoldAbuse, ColQualityPoorDescription, ColQualityExcessiveReassts}
	for _, row := range out.Rows() {
		issues := 0
		for _, flag := range flags {
			if frame.Bool(row, flag) {
				issues++
			}
		}
		row[ColQualityIssuesCount] = issues
		if issues > 0 {
			flagged++
		}
	}

	slog.Info("quality checks complete", "incidents_with_issues", flagged, "total", out.Len())
	return out
}

// DetectPriorityMismatch flags critical-priority incidents whose
// resolution time exceeded 24 hours: either the priority was inflated or
// the response was too slow, and both are worth review.
func DetectPriorityMismatch(t *frame.Table) *frame.Table {
	out := t.Clone()
	out.AddColumns(ColQualityPriorityMismatch)
	checkable := out.Has(incident.ColPriority) && out.Has(incident.ColResolutionTimeHrs)
	for _, row := range out.Rows() {
		flag := false
		if checkable {
			hours, resolved := frame.Float(row, incident.ColResolutionTimeHrs)
			flag = resolved && hours > 24 &&
				incident.ParsePriority(frame.String(row, incident.ColPriority)) == incident.PriorityCritical
		}
		row[ColQualityPriorityMismatch] = flag
	}
	return out
}

// DetectOnHoldAbuse flags incidents parked On Hold beyond the threshold.
func DetectOnHoldAbuse(t *frame.Table, thresholdHours float64) *frame.Table {
	out := t.Clone()
	out.AddColumns(ColQualityOnHoldAbuse)
	checkable := out.Has(incident.ColState) && out.Has(incident.ColAgeHrs)
	for _, row := range out.Rows() {
		flag := false
		if checkable {
			age, active := frame.Float(row, incident.ColAgeHrs)
			flag = active && age > thresholdHours && frame.String(row, incident.ColState) == "On Hold"
		}
		row[ColQualityOnHoldAbuse] = flag
	}
	return out
}

// CheckDescriptionQuality flags incidents with a short description below
// the minimum length.
func CheckDescriptionQuality(t *frame.Table, minLength int) *frame.Table {
	out := t.Clone()
	out.AddColumns(ColQualityPoorDescription)
	checkable := out.Has(incident.ColShortDescription)
	for _, row := range out.Rows() {
		flag := false
		if checkable {
			flag = len(frame.String(row, incident.ColShortDescription)) < minLength
		}
		row[ColQualityPoorDescription] = flag
	}
	return out
}

// FlagExcessiveReassignments flags incidents bounced between teams more
// than the threshold allows.
func FlagExcessiveReassignments(t *frame.Table, threshold int) *frame.Table {
	out := t.Clone()
	out.AddColumns(ColQualityExcessiveReassts)
	checkable := out.Has(incident.ColReassignmentCount)
	for _, row := range out.Rows() {
		flag := false
		if checkable {
			count, ok := frame.Int(row, incident.ColReassignmentCount)
			flag = ok && count > threshold
		}
		row[ColQualityExcessiveReassts] = flag
	}
	return out
}
