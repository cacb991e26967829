package analysis

import (
	"log/slog"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/incidentops/snowmetrics/internal/frame"
	"github.com/incidentops/snowmetrics/internal/incident"
)

// AgeBuckets is the fixed five-bucket backlog age histogram. Boundaries
// sit at 1, 3, 7 and 30 days; each boundary value belongs to the higher
// bucket (an incident aged exactly 3.0 days counts in ThreeDaysToOneWeek).
type AgeBuckets struct {
	LessThan24h      int `json:"less_than_24h"`
	OneToThreeDays   int `json:"24h_to_3days"`
	ThreeDaysToWeek  int `json:"3days_to_1week"`
	WeekToMonth      int `json:"1week_to_1month"`
	MoreThanOneMonth int `json:"more_than_1month"`
}

// BacklogMetrics summarizes the set of active incidents at a snapshot.
type BacklogMetrics struct {
	SnapshotDate string         `json:"snapshot_date"`
	TotalBacklog int            `json:"total_backlog"`
	ByPriority   map[string]int `json:"by_priority"`
	ByAge        AgeBuckets     `json:"by_age"`
	AvgAgeDays   float64        `json:"avg_age_days"`
}

// CalculateBacklogMetrics computes backlog size, mean age and the age
// histogram over active incidents, relative to the snapshot time. A zero
// snapshot means now; inject a fixed one for deterministic output.
func CalculateBacklogMetrics(t *frame.Table, snapshot time.Time) BacklogMetrics {
	if snapshot.IsZero() {
		snapshot = time.Now()
	}
	metrics := BacklogMetrics{
		SnapshotDate: snapshot.Format(time.RFC3339),
		ByPriority:   map[string]int{},
	}

	if !t.Has(incident.ColIsActive) {
		slog.Warn("isActive column not found, run the enrichment pipeline first")
		return metrics
	}

	active := t.Filter(func(row frame.Row) bool {
		return frame.Bool(row, incident.ColIsActive)
	})
	if active.Len() == 0 {
		slog.Info("no active incidents in backlog")
		return metrics
	}
	metrics.TotalBacklog = active.Len()

	if active.Has(incident.ColOpenedDate) {
		var ages []float64
		for _, row := range active.Rows() {
			opened, ok := frame.Time(row, incident.ColOpenedDate)
			if !ok {
				continue
			}
			ageDays := snapshot.Sub(opened).Hours() / 24
			ages = append(ages, ageDays)

			switch {
			case ageDays < 1:
				metrics.ByAge.LessThan24h++
			case ageDays < 3:
				metrics.ByAge.OneToThreeDays++
			case ageDays < 7:
				metrics.ByAge.ThreeDaysToWeek++
			case ageDays < 30:
				metrics.ByAge.WeekToMonth++
			default:
				metrics.ByAge.MoreThanOneMonth++
			}
		}
		if len(ages) > 0 {
			metrics.AvgAgeDays = round2(stat.Mean(ages, nil))
		}
	}

	if active.Has(incident.ColPriority) {
		for _, row := range active.Rows() {
			if priority := frame.String(row, incident.ColPriority); priority != "" {
				metrics.ByPriority[priority]++
			}
		}
	}

	slog.Info("calculated backlog metrics", "total", metrics.TotalBacklog, "avg_age_days", metrics.AvgAgeDays)
	return metrics
}
