package enrich

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/incidentops/snowmetrics/internal/frame"
	"github.com/incidentops/snowmetrics/internal/incident"
)

// NormalizeColumns folds raw export column names onto the canonical
// schema. Only columns present in the table are renamed; unknown columns
// pass through untouched.
func NormalizeColumns(t *frame.Table) *frame.Table {
	out := t.Clone()
	var renamed []string
	for _, rename := range incident.ColumnRenames() {
		if out.Has(rename.From) {
			out.Rename(rename.From, rename.To)
			renamed = append(renamed, rename.From)
		}
	}
	if len(renamed) > 0 {
		slog.Debug("normalized raw columns", "renamed", renamed)
	}
	return out
}

// ParseDates converts textual timestamps in the canonical date columns
// into time.Time cells. Empty or unparseable text becomes an absent cell,
// never an error. Cells already parsed are kept as-is, which makes the
// stage idempotent.
func ParseDates(t *frame.Table) *frame.Table {
	out := t.Clone()
	for _, column := range incident.DateColumns() {
		if !out.Has(column) {
			continue
		}
		invalid := 0
		for _, row := range out.Rows() {
			value, ok := row[column]
			if !ok || value == nil {
				continue
			}
			switch cell := value.(type) {
			case time.Time:
				// Already parsed.
			case string:
				parsed, ok := incident.ParseTimestamp(cell)
				if !ok {
					if strings.TrimSpace(cell) != "" {
						invalid++
					}
					delete(row, column)
					continue
				}
				row[column] = parsed
			default:
				invalid++
				delete(row, column)
			}
		}
		if invalid > 0 {
			slog.Debug("coerced unparseable timestamps to absent", "column", column, "count", invalid)
		}
	}
	return out
}

// AddStatusFields derives the lifecycle booleans. A state in neither set
// yields isActive=false and isResolved=false; with the default sets no
// state is in both, so the two flags are never simultaneously true. A
// missing state or priority column defaults the corresponding flags to
// false with a warning.
func AddStatusFields(t *frame.Table, activeStates, resolvedStates []string) *frame.Table {
	out := t.Clone()
	out.AddColumns(incident.ColIsActive, incident.ColIsResolved, incident.ColIsHighImpact, incident.ColIsCritical)

	active := toSet(activeStates)
	resolved := toSet(resolvedStates)
	hasState := out.Has(incident.ColState)
	hasPriority := out.Has(incident.ColPriority)
	if !hasState && out.Len() > 0 {
		slog.Warn("state column missing, lifecycle flags default to false")
	}
	if !hasPriority && out.Len() > 0 {
		slog.Warn("priority column missing, impact flags default to false")
	}

	unknown := make(map[string]struct{})
	for _, row := range out.Rows() {
		isActive, isResolved := false, false
		if hasState {
			state := frame.String(row, incident.ColState)
			_, isActive = active[state]
			_, isResolved = resolved[state]
			if state != "" && !isActive && !isResolved {
				unknown[state] = struct{}{}
			}
		}
		row[incident.ColIsActive] = isActive
		row[incident.ColIsResolved] = isResolved

		priority := incident.PriorityUnknown
		if hasPriority {
			priority = incident.ParsePriority(frame.String(row, incident.ColPriority))
		}
		row[incident.ColIsHighImpact] = priority == incident.PriorityCritical || priority == incident.PriorityHigh
		row[incident.ColIsCritical] = priority == incident.PriorityCritical
	}
	if len(unknown) > 0 {
		states := make([]string, 0, len(unknown))
		for state := range unknown {
			states = append(states, state)
		}
		sort.Strings(states)
		slog.Debug("states outside active and resolved sets treated as inactive", "states", states)
	}
	return out
}

// Categorize assigns each row a pattern category by first-match keyword
// containment over the concatenated descriptive text. Rule order is the
// tie-break: when several rules match, the earliest configured rule wins.
func Categorize(t *frame.Table, rules []incident.CategoryRule) *frame.Table {
	out := t.Clone()
	out.AddColumns(incident.ColPatternCategory)
	if len(rules) == 0 {
		rules = incident.DefaultCategoryRules()
	}
	for _, row := range out.Rows() {
		text := strings.ToLower(frame.String(row, incident.ColShortDescription) + " " + frame.String(row, incident.ColDescription))
		row[incident.ColPatternCategory] = matchCategory(text, rules)
	}
	return out
}

func matchCategory(text string, rules []incident.CategoryRule) string {
	for _, rule := range rules {
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, keyword) {
				return rule.Category
			}
		}
	}
	return incident.CategoryOther
}

// CalculateDurations derives resolution time (rows with both timestamps)
// and current age (active rows) in hours and days. Rows missing inputs
// get absent cells, not zeros; stale derived cells from earlier runs are
// cleared so re-running cannot drift.
func CalculateDurations(t *frame.Table, snapshot time.Time) *frame.Table {
	out := t.Clone()
	out.AddColumns(incident.ColResolutionTimeHrs, incident.ColResolutionTimeDays, incident.ColAgeHrs, incident.ColAgeDays)
	if snapshot.IsZero() {
		snapshot = time.Now()
	}
	for _, row := range out.Rows() {
		opened, hasOpened := frame.Time(row, incident.ColOpenedDate)
		resolvedAt, hasResolved := frame.Time(row, incident.ColResolvedDate)

		if hasOpened && hasResolved {
			hours := resolvedAt.Sub(opened).Hours()
			row[incident.ColResolutionTimeHrs] = hours
			row[incident.ColResolutionTimeDays] = hours / 24
		} else {
			delete(row, incident.ColResolutionTimeHrs)
			delete(row, incident.ColResolutionTimeDays)
		}

		if hasOpened && frame.Bool(row, incident.ColIsActive) {
			hours := snapshot.Sub(opened).Hours()
			row[incident.ColAgeHrs] = hours
			row[incident.ColAgeDays] = hours / 24
		} else {
			delete(row, incident.ColAgeHrs)
			delete(row, incident.ColAgeDays)
		}
	}
	return out
}

// EvaluateSLA computes breach status and margin against the priority
// threshold table. Unrecognized priorities fall back to the default
// threshold. Rows without a resolution time are never breached: breach is
// only assessable on concluded work, so they get slaBreach=false and an
// absent margin.
func EvaluateSLA(t *frame.Table, rules map[incident.Priority]float64) *frame.Table {
	out := t.Clone()
	out.AddColumns(incident.ColSLABreach, incident.ColSLAMarginHrs)
	if len(rules) == 0 {
		rules = incident.DefaultSLARules()
	}

	resolved, breached := 0, 0
	for _, row := range out.Rows() {
		resolutionHrs, ok := frame.Float(row, incident.ColResolutionTimeHrs)
		if !ok {
			row[incident.ColSLABreach] = false
			delete(row, incident.ColSLAMarginHrs)
			continue
		}
		resolved++

		threshold, ok := rules[incident.ParsePriority(frame.String(row, incident.ColPriority))]
		if !ok {
			threshold = incident.DefaultSLAHours
		}
		breach := resolutionHrs > threshold
		if breach {
			breached++
		}
		row[incident.ColSLABreach] = breach
		row[incident.ColSLAMarginHrs] = threshold - resolutionHrs
	}
	if resolved > 0 {
		slog.Debug("evaluated SLA", "resolved", resolved, "breached", breached)
	}
	return out
}

// EstimateUserImpact assigns a deterministic affected-user estimate from
// the CI type's device class scaled by priority, truncated to an integer.
func EstimateUserImpact(t *frame.Table) *frame.Table {
	out := t.Clone()
	out.AddColumns(incident.ColUserImpactEstimate)
	for _, row := range out.Rows() {
		ciType := strings.ToLower(frame.String(row, incident.ColCIType))
		base := baseImpact(ciType)
		multiplier := incident.ParsePriority(frame.String(row, incident.ColPriority)).ImpactMultiplier()
		row[incident.ColUserImpactEstimate] = int(float64(base) * multiplier)
	}
	return out
}

func baseImpact(ciType string) int {
	switch {
	case strings.Contains(ciType, "server") || strings.Contains(ciType, "firewall"):
		return 100
	case strings.Contains(ciType, "access point") || strings.Contains(ciType, "wifi") || strings.Contains(ciType, "wireless"):
		return 50
	case strings.Contains(ciType, "router") || strings.Contains(ciType, "switch"):
		return 75
	case strings.Contains(ciType, "printer"):
		return 15
	default:
		return 25
	}
}

// AddTemporalFields derives calendar features from the opened timestamp.
// Day-of-week is Monday=0. Business hours are weekday 9:00-16:59.
func AddTemporalFields(t *frame.Table) *frame.Table {
	out := t.Clone()
	if !out.Has(incident.ColOpenedDate) {
		slog.Warn("openedDate column missing, skipping temporal fields")
		return out
	}
	out.AddColumns(
		incident.ColWeek, incident.ColMonth, incident.ColMonthName,
		incident.ColQuarter, incident.ColYear,
		incident.ColDayOfWeek, incident.ColDayOfWeekName,
		incident.ColHourOfDay, incident.ColIsBusinessHours,
	)
	temporalColumns := []string{
		incident.ColWeek, incident.ColMonth, incident.ColMonthName,
		incident.ColQuarter, incident.ColYear,
		incident.ColDayOfWeek, incident.ColDayOfWeekName,
		incident.ColHourOfDay, incident.ColIsBusinessHours,
	}
	for _, row := range out.Rows() {
		opened, ok := frame.Time(row, incident.ColOpenedDate)
		if !ok {
			for _, column := range temporalColumns {
				delete(row, column)
			}
			continue
		}
		_, week := opened.ISOWeek()
		weekday := (int(opened.Weekday()) + 6) % 7
		hour := opened.Hour()

		row[incident.ColWeek] = week
		row[incident.ColMonth] = int(opened.Month())
		row[incident.ColMonthName] = opened.Month().String()
		row[incident.ColQuarter] = (int(opened.Month())-1)/3 + 1
		row[incident.ColYear] = opened.Year()
		row[incident.ColDayOfWeek] = weekday
		row[incident.ColDayOfWeekName] = opened.Weekday().String()
		row[incident.ColHourOfDay] = hour
		row[incident.ColIsBusinessHours] = weekday < 5 && hour >= 9 && hour < 17
	}
	return out
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}
