// Package incident defines the canonical incident schema: column names,
// the rename table that folds raw export variants onto them, the priority
// and state vocabulary, and the default rule sets the pipeline falls back
// to when configuration is silent.
package incident

// Canonical column names. Raw columns are folded onto these by the
// normalizer; derived columns are added by the enrichment stages.
const (
	ColNumber            = "number"
	ColShortDescription  = "short_description"
	ColDescription       = "description"
	ColPriority          = "priority"
	ColState             = "state"
	ColOpenedDate        = "openedDate"
	ColResolvedDate      = "resolvedDate"
	ColClosedDate        = "closedDate"
	ColAssignmentGroup   = "assignment_group"
	ColCIType            = "ci_type"
	ColCI                = "cmdb_ci"
	ColLocation          = "location"
	ColCategory          = "category"
	ColContactType       = "contact_type"
	ColReassignmentCount = "reassignment_count"

	ColIsActive           = "isActive"
	ColIsResolved         = "isResolved"
	ColIsHighImpact       = "isHighImpact"
	ColIsCritical         = "isCritical"
	ColPatternCategory    = "patternCategory"
	ColResolutionTimeHrs  = "resolutionTimeHours"
	ColResolutionTimeDays = "resolutionTimeDays"
	ColAgeHrs             = "ageHrs"
	ColAgeDays            = "ageDays"
	ColSLABreach          = "slaBreach"
	ColSLAMarginHrs       = "slaMarginHrs"
	ColUserImpactEstimate = "userImpactEstimate"

	ColWeek            = "week"
	ColMonth           = "month"
	ColMonthName       = "monthName"
	ColQuarter         = "quarter"
	ColYear            = "year"
	ColDayOfWeek       = "dayOfWeek"
	ColDayOfWeekName   = "dayOfWeekName"
	ColHourOfDay       = "hourOfDay"
	ColIsBusinessHours = "isBusinessHours"
)

// Rename maps one raw export column name onto its canonical name.
type Rename struct {
	From string
	To   string
}

// ColumnRenames lists the raw export column names (API, file-export and
// legacy variants) and the canonical columns they fold onto. Only present
// columns are renamed; everything else passes through. Order matters when
// several raw variants target the same canonical column: later entries
// win per row.
func ColumnRenames() []Rename {
	return []Rename{
		{From: "incident_state", To: ColState},
		{From: "opened", To: ColOpenedDate},
		{From: "opened_at", To: ColOpenedDate},
		{From: "resolved", To: ColResolvedDate},
		{From: "resolved_at", To: ColResolvedDate},
		{From: "u_resolved", To: ColResolvedDate},
		{From: "u_ci_type", To: ColCIType},
	}
}

// DateColumns lists the canonical columns the temporal parser inspects.
func DateColumns() []string {
	return []string{ColOpenedDate, ColResolvedDate, ColClosedDate, "sys_created_on", "sys_updated_on"}
}

// DefaultActiveStates are lifecycle states counted as open work.
func DefaultActiveStates() []string {
	return []string{"New", "In Progress", "Awaiting User Info", "On Hold", "Pending"}
}

// DefaultResolvedStates are lifecycle states counted as concluded work.
func DefaultResolvedStates() []string {
	return []string{"Resolved", "Closed"}
}
