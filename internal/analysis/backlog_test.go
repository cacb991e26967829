package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/incidentops/snowmetrics/internal/frame"
	"github.com/incidentops/snowmetrics/internal/incident"
)

func TestCalculateBacklogMetrics(t *testing.T) {
	snapshot := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	openedDaysAgo := func(days float64) time.Time {
		return snapshot.Add(-time.Duration(days * 24 * float64(time.Hour)))
	}

	tbl := frame.New(incident.ColIsActive, incident.ColOpenedDate, incident.ColPriority)
	tbl.Append(frame.Row{incident.ColIsActive: true, incident.ColOpenedDate: openedDaysAgo(0.5), incident.ColPriority: "1 - Critical"})
	tbl.Append(frame.Row{incident.ColIsActive: true, incident.ColOpenedDate: openedDaysAgo(2), incident.ColPriority: "2 - High"})
	tbl.Append(frame.Row{incident.ColIsActive: true, incident.ColOpenedDate: openedDaysAgo(5), incident.ColPriority: "2 - High"})
	tbl.Append(frame.Row{incident.ColIsActive: true, incident.ColOpenedDate: openedDaysAgo(10), incident.ColPriority: "3 - Moderate"})
	tbl.Append(frame.Row{incident.ColIsActive: true, incident.ColOpenedDate: openedDaysAgo(45), incident.ColPriority: "3 - Moderate"})
	tbl.Append(frame.Row{incident.ColIsActive: false, incident.ColOpenedDate: openedDaysAgo(100), incident.ColPriority: "4 - Low"})

	metrics := CalculateBacklogMetrics(tbl, snapshot)

	assert.Equal(t, snapshot.Format(time.RFC3339), metrics.SnapshotDate)
	assert.Equal(t, 5, metrics.TotalBacklog, "resolved rows are not backlog")
	assert.Equal(t, AgeBuckets{
		LessThan24h:      1,
		OneToThreeDays:   1,
		ThreeDaysToWeek:  1,
		WeekToMonth:      1,
		MoreThanOneMonth: 1,
	}, metrics.ByAge)
	assert.Equal(t, 12.5, metrics.AvgAgeDays)
	assert.Equal(t, map[string]int{"1 - Critical": 1, "2 - High": 2, "3 - Moderate": 2}, metrics.ByPriority)
}

func TestCalculateBacklogMetricsBucketBoundaries(t *testing.T) {
	snapshot := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		days float64
		want func(AgeBuckets) int
	}{
		{"exactly 1 day goes up", 1, func(b AgeBuckets) int { return b.OneToThreeDays }},
		{"exactly 3 days goes up", 3, func(b AgeBuckets) int { return b.ThreeDaysToWeek }},
		{"exactly 7 days goes up", 7, func(b AgeBuckets) int { return b.WeekToMonth }},
		{"exactly 30 days goes up", 30, func(b AgeBuckets) int { return b.MoreThanOneMonth }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tbl := frame.New(incident.ColIsActive, incident.ColOpenedDate)
			tbl.Append(frame.Row{
				incident.ColIsActive:   true,
				incident.ColOpenedDate: snapshot.Add(-time.Duration(tc.days * 24 * float64(time.Hour))),
			})

			metrics := CalculateBacklogMetrics(tbl, snapshot)
			assert.Equal(t, 1, tc.want(metrics.ByAge))
		})
	}
}

func TestCalculateBacklogMetricsMissingIsActive(t *testing.T) {
	tbl := frame.New(incident.ColPriority)
	tbl.Append(frame.Row{incident.ColPriority: "1 - Critical"})

	metrics := CalculateBacklogMetrics(tbl, time.Time{})
	assert.Zero(t, metrics.TotalBacklog)
	assert.NotEmpty(t, metrics.SnapshotDate)
}

func TestCalculateBacklogMetricsEmptyBacklog(t *testing.T) {
	tbl := frame.New(incident.ColIsActive)
	tbl.Append(frame.Row{incident.ColIsActive: false})

	metrics := CalculateBacklogMetrics(tbl, time.Time{})
	assert.Zero(t, metrics.TotalBacklog)
	assert.Zero(t, metrics.AvgAgeDays)
}
