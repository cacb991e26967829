package analysis

import (
	"log/slog"

	"github.com/incidentops/snowmetrics/internal/frame"
	"github.com/incidentops/snowmetrics/internal/incident"
)

// DefaultReassignmentThreshold is the reassignment count above which an
// incident is flagged.
const DefaultReassignmentThreshold = 2

// Reassignment severity labels.
const (
	SeverityCritical = "Critical"
	SeverityHigh     = "High"
	SeverityModerate = "Moderate"
)

// ReassignedIncident is one flagged incident with its severity label.
type ReassignedIncident struct {
	Number            string `json:"number"`
	ShortDescription  string `json:"short_description"`
	Priority          string `json:"priority"`
	AssignmentGroup   string `json:"assignment_group"`
	ReassignmentCount int    `json:"reassignment_count"`
	Severity          string `json:"reassignment_severity"`
}

// AnalyzeReassignments returns incidents whose reassignment count exceeds
// the threshold, labeled by severity, in the table's insertion order. A
// missing reassignment_count column yields nil with a warning.
func AnalyzeReassignments(t *frame.Table, threshold int) []ReassignedIncident {
	if !t.Has(incident.ColReassignmentCount) {
		slog.Warn("reassignment_count column not found")
		return nil
	}

	var flagged []ReassignedIncident
	for _, row := range t.Rows() {
		count, ok := frame.Int(row, incident.ColReassignmentCount)
		if !ok || count <= threshold {
			continue
		}
		flagged = append(flagged, ReassignedIncident{
			Number:            frame.String(row, incident.ColNumber),
			ShortDescription:  frame.String(row, incident.ColShortDescription),
			Priority:          frame.String(row, incident.ColPriority),
			AssignmentGroup:   frame.String(row, incident.ColAssignmentGroup),
			ReassignmentCount: count,
			Severity:          reassignmentSeverity(count),
		})
	}

	if len(flagged) == 0 {
		slog.Info("no incidents above reassignment threshold", "threshold", threshold)
		return nil
	}
	slog.Info("flagged excessive reassignments", "count", len(flagged), "threshold", threshold)
	return flagged
}

func reassignmentSeverity(count int) string {
	switch {
	case count > 5:
		return SeverityCritical
	case count > 3:
		return SeverityHigh
	default:
		return SeverityModerate
	}
}
