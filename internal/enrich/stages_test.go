package enrich

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/incidentops/snowmetrics/internal/frame"
	"github.com/incidentops/snowmetrics/internal/incident"
)

func TestNormalizeColumns(t *testing.T) {
	tbl := frame.New("incident_state", "opened_at", "u_resolved", "u_ci_type", "custom_field")
	tbl.Append(frame.Row{
		"incident_state": "New",
		"opened_at":      "2025-01-01 00:00:00",
		"u_resolved":     "2025-01-02 00:00:00",
		"u_ci_type":      "Router",
		"custom_field":   "passthrough",
	})

	out := NormalizeColumns(tbl)

	assert.True(t, out.Has(incident.ColState))
	assert.True(t, out.Has(incident.ColOpenedDate))
	assert.True(t, out.Has(incident.ColResolvedDate))
	assert.True(t, out.Has(incident.ColCIType))
	assert.True(t, out.Has("custom_field"), "unknown columns pass through")
	assert.Equal(t, "passthrough", out.Row(0)["custom_field"])

	// Input untouched.
	assert.True(t, tbl.Has("incident_state"))
	assert.False(t, tbl.Has(incident.ColOpenedDate))
}

func TestParseDates(t *testing.T) {
	tbl := frame.New(incident.ColOpenedDate, incident.ColResolvedDate)
	tbl.Append(frame.Row{incident.ColOpenedDate: "2025-01-01 10:00:00", incident.ColResolvedDate: "garbage"})
	tbl.Append(frame.Row{incident.ColOpenedDate: ""})
	tbl.Append(frame.Row{incident.ColOpenedDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)})

	out := ParseDates(tbl)

	ts, ok := frame.Time(out.Row(0), incident.ColOpenedDate)
	require.True(t, ok)
	assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), ts)

	_, ok = frame.Time(out.Row(0), incident.ColResolvedDate)
	assert.False(t, ok, "unparseable text becomes absent")

	_, ok = frame.Time(out.Row(1), incident.ColOpenedDate)
	assert.False(t, ok, "empty text becomes absent")

	ts, ok = frame.Time(out.Row(2), incident.ColOpenedDate)
	require.True(t, ok, "already-parsed cells survive")
	assert.Equal(t, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), ts)
}

func TestAddStatusFields(t *testing.T) {
	tbl := frame.New(incident.ColState, incident.ColPriority)
	tbl.Append(frame.Row{incident.ColState: "In Progress", incident.ColPriority: "1 - Critical"})
	tbl.Append(frame.Row{incident.ColState: "Resolved", incident.ColPriority: "2 - High"})
	tbl.Append(frame.Row{incident.ColState: "Awaiting Vendor", incident.ColPriority: "3 - Moderate"})

	out := AddStatusFields(tbl, incident.DefaultActiveStates(), incident.DefaultResolvedStates())

	assert.True(t, frame.Bool(out.Row(0), incident.ColIsActive))
	assert.False(t, frame.Bool(out.Row(0), incident.ColIsResolved))
	assert.True(t, frame.Bool(out.Row(0), incident.ColIsHighImpact))
	assert.True(t, frame.Bool(out.Row(0), incident.ColIsCritical))

	assert.False(t, frame.Bool(out.Row(1), incident.ColIsActive))
	assert.True(t, frame.Bool(out.Row(1), incident.ColIsResolved))
	assert.True(t, frame.Bool(out.Row(1), incident.ColIsHighImpact))
	assert.False(t, frame.Bool(out.Row(1), incident.ColIsCritical))

	// A state in neither set is inactive and unresolved.
	assert.False(t, frame.Bool(out.Row(2), incident.ColIsActive))
	assert.False(t, frame.Bool(out.Row(2), incident.ColIsResolved))
	assert.False(t, frame.Bool(out.Row(2), incident.ColIsHighImpact))

	// Never simultaneously active and resolved with the default sets.
	for i := 0; i < out.Len(); i++ {
		row := out.Row(i)
		assert.False(t, frame.Bool(row, incident.ColIsActive) && frame.Bool(row, incident.ColIsResolved))
	}
}

func TestAddStatusFieldsMissingColumns(t *testing.T) {
	tbl := frame.New("number")
	tbl.Append(frame.Row{"number": "INC1"})

	out := AddStatusFields(tbl, incident.DefaultActiveStates(), incident.DefaultResolvedStates())

	row := out.Row(0)
	assert.False(t, frame.Bool(row, incident.ColIsActive))
	assert.False(t, frame.Bool(row, incident.ColIsResolved))
	assert.False(t, frame.Bool(row, incident.ColIsHighImpact))
	assert.False(t, frame.Bool(row, incident.ColIsCritical))
}

func TestCategorizeFirstMatchWins(t *testing.T) {
	tbl := frame.New(incident.ColShortDescription, incident.ColDescription)
	tbl.Append(frame.Row{incident.ColShortDescription: "WiFi access point down in building A"})
	tbl.Append(frame.Row{incident.ColShortDescription: "Cannot ping server over network"})
	tbl.Append(frame.Row{incident.ColShortDescription: "Coffee machine broken"})

	out := Categorize(tbl, incident.DefaultCategoryRules())

	// "network" also matches the later Connectivity rule; WiFi comes first.
	assert.Equal(t, "WiFi/Wireless", out.Row(0)[incident.ColPatternCategory])
	// Server/Performance precedes Connectivity in the default order.
	assert.Equal(t, "Server/Performance", out.Row(1)[incident.ColPatternCategory])
	assert.Equal(t, incident.CategoryOther, out.Row(2)[incident.ColPatternCategory])
}

func TestCategorizeOrderSensitivity(t *testing.T) {
	rules := []incident.CategoryRule{
		{Category: "A", Keywords: []string{"shared"}},
		{Category: "B", Keywords: []string{"shared"}},
	}
	tbl := frame.New(incident.ColShortDescription)
	tbl.Append(frame.Row{incident.ColShortDescription: "shared keyword text"})

	out := Categorize(tbl, rules)
	assert.Equal(t, "A", out.Row(0)[incident.ColPatternCategory])

	out = Categorize(tbl, []incident.CategoryRule{rules[1], rules[0]})
	assert.Equal(t, "B", out.Row(0)[incident.ColPatternCategory])
}

func TestCalculateDurations(t *testing.T) {
	opened := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	snapshot := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

	tbl := frame.New(incident.ColOpenedDate, incident.ColResolvedDate, incident.ColIsActive)
	tbl.Append(frame.Row{
		incident.ColOpenedDate:   opened,
		incident.ColResolvedDate: opened.Add(10 * time.Hour),
		incident.ColIsActive:     false,
	})
	tbl.Append(frame.Row{incident.ColOpenedDate: opened, incident.ColIsActive: true})
	tbl.Append(frame.Row{incident.ColIsActive: true})

	out := CalculateDurations(tbl, snapshot)

	hrs, ok := frame.Float(out.Row(0), incident.ColResolutionTimeHrs)
	require.True(t, ok)
	assert.Equal(t, 10.0, hrs)
	days, ok := frame.Float(out.Row(0), incident.ColResolutionTimeDays)
	require.True(t, ok)
	assert.InDelta(t, 10.0/24, days, 1e-9)
	_, ok = frame.Float(out.Row(0), incident.ColAgeHrs)
	assert.False(t, ok, "resolved rows get no age")

	_, ok = frame.Float(out.Row(1), incident.ColResolutionTimeHrs)
	assert.False(t, ok, "no resolved timestamp means absent, not zero")
	age, ok := frame.Float(out.Row(1), incident.ColAgeHrs)
	require.True(t, ok)
	assert.Equal(t, 48.0, age)
	ageDays, ok := frame.Float(out.Row(1), incident.ColAgeDays)
	require.True(t, ok)
	assert.Equal(t, 2.0, ageDays)

	_, ok = frame.Float(out.Row(2), incident.ColAgeHrs)
	assert.False(t, ok, "active row without opened timestamp has no age")
}

func TestEvaluateSLA(t *testing.T) {
	tbl := frame.New(incident.ColPriority, incident.ColResolutionTimeHrs)
	tbl.Append(frame.Row{incident.ColPriority: "1 - Critical", incident.ColResolutionTimeHrs: 10.0})
	tbl.Append(frame.Row{incident.ColPriority: "3 - Moderate", incident.ColResolutionTimeHrs: 10.0})
	tbl.Append(frame.Row{incident.ColPriority: "1 - Critical"})
	tbl.Append(frame.Row{incident.ColPriority: "weird", incident.ColResolutionTimeHrs: 80.0})
	tbl.Append(frame.Row{incident.ColPriority: "2 - High", incident.ColResolutionTimeHrs: 24.0})

	out := EvaluateSLA(tbl, incident.DefaultSLARules())

	assert.True(t, frame.Bool(out.Row(0), incident.ColSLABreach))
	margin, ok := frame.Float(out.Row(0), incident.ColSLAMarginHrs)
	require.True(t, ok)
	assert.Equal(t, -6.0, margin, "negative margin is the breach magnitude")

	assert.False(t, frame.Bool(out.Row(1), incident.ColSLABreach))
	margin, ok = frame.Float(out.Row(1), incident.ColSLAMarginHrs)
	require.True(t, ok)
	assert.Equal(t, 62.0, margin)

	// No resolution time: not breached, margin absent.
	assert.False(t, frame.Bool(out.Row(2), incident.ColSLABreach))
	_, ok = frame.Float(out.Row(2), incident.ColSLAMarginHrs)
	assert.False(t, ok)

	// Unrecognized priority uses the 72h default threshold.
	assert.True(t, frame.Bool(out.Row(3), incident.ColSLABreach))

	// Exactly at threshold is within SLA.
	assert.False(t, frame.Bool(out.Row(4), incident.ColSLABreach))
}

func TestEstimateUserImpact(t *testing.T) {
	tests := []struct {
		ciType   string
		priority string
		want     int
	}{
		{"Database Server", "1 - Critical", 200},
		{"Firewall", "3 - Moderate", 100},
		{"Access Point", "2 - High", 75},
		{"Wireless Controller", "3 - Moderate", 50},
		{"Core Router", "4 - Low", 37},
		{"Switch", "3 - Moderate", 75},
		{"Printer", "4 - Low", 7},
		{"Laptop", "3 - Moderate", 25},
		{"", "", 25},
	}
	for _, tc := range tests {
		t.Run(tc.ciType+"/"+tc.priority, func(t *testing.T) {
			tbl := frame.New(incident.ColCIType, incident.ColPriority)
			tbl.Append(frame.Row{incident.ColCIType: tc.ciType, incident.ColPriority: tc.priority})

			out := EstimateUserImpact(tbl)
			got, ok := frame.Int(out.Row(0), incident.ColUserImpactEstimate)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)

			// Deterministic: same input, same estimate.
			again := EstimateUserImpact(tbl)
			assert.Equal(t, out.Row(0)[incident.ColUserImpactEstimate], again.Row(0)[incident.ColUserImpactEstimate])
		})
	}
}

func TestAddTemporalFields(t *testing.T) {
	// 2025-01-06 is a Monday.
	monday := time.Date(2025, 1, 6, 10, 30, 0, 0, time.UTC)
	saturday := time.Date(2025, 4, 5, 10, 0, 0, 0, time.UTC)
	evening := time.Date(2025, 1, 6, 17, 0, 0, 0, time.UTC)

	tbl := frame.New(incident.ColOpenedDate)
	tbl.Append(frame.Row{incident.ColOpenedDate: monday})
	tbl.Append(frame.Row{incident.ColOpenedDate: saturday})
	tbl.Append(frame.Row{incident.ColOpenedDate: evening})
	tbl.Append(frame.Row{})

	out := AddTemporalFields(tbl)

	row := out.Row(0)
	assert.Equal(t, 2, row[incident.ColWeek])
	assert.Equal(t, 1, row[incident.ColMonth])
	assert.Equal(t, "January", row[incident.ColMonthName])
	assert.Equal(t, 1, row[incident.ColQuarter])
	assert.Equal(t, 2025, row[incident.ColYear])
	assert.Equal(t, 0, row[incident.ColDayOfWeek], "Monday is 0")
	assert.Equal(t, "Monday", row[incident.ColDayOfWeekName])
	assert.Equal(t, 10, row[incident.ColHourOfDay])
	assert.Equal(t, true, row[incident.ColIsBusinessHours])

	assert.Equal(t, 5, out.Row(1)[incident.ColDayOfWeek])
	assert.Equal(t, 2, out.Row(1)[incident.ColQuarter])
	assert.Equal(t, false, out.Row(1)[incident.ColIsBusinessHours], "weekend is not business hours")

	assert.Equal(t, false, out.Row(2)[incident.ColIsBusinessHours], "17:00 is past business hours")

	_, ok := frame.Int(out.Row(3), incident.ColWeek)
	assert.False(t, ok, "absent openedDate yields absent calendar fields")
}

func TestAddTemporalFieldsMissingColumn(t *testing.T) {
	tbl := frame.New("number")
	tbl.Append(frame.Row{"number": "INC1"})

	out := AddTemporalFields(tbl)
	assert.False(t, out.Has(incident.ColWeek))
}
