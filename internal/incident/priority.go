package incident

import "strings"

// Priority is the enumerated ticket priority. The raw exports carry it as
// free text ("1 - Critical", "1", "critical"); ParsePriority maps known
// variants onto the enum and anything else onto PriorityUnknown, which
// downstream consumers treat via their documented fallbacks rather than
// erroring.
type Priority string

const (
	PriorityCritical Priority = "1 - Critical"
	PriorityHigh     Priority = "2 - High"
	PriorityModerate Priority = "3 - Moderate"
	PriorityLow      Priority = "4 - Low"
	PriorityUnknown  Priority = ""
)

// ParsePriority maps a raw priority string onto the enum,
// case-insensitively. Unknown variants yield PriorityUnknown.
func ParsePriority(s string) Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1 - critical", "1", "critical":
		return PriorityCritical
	case "2 - high", "2", "high":
		return PriorityHigh
	case "3 - moderate", "3", "moderate":
		return PriorityModerate
	case "4 - low", "4", "low":
		return PriorityLow
	default:
		return PriorityUnknown
	}
}

// DefaultSLAHours is the threshold applied when a row's priority is not
// present in the SLA rule table.
const DefaultSLAHours = 72

// DefaultSLARules returns the priority-indexed SLA thresholds in hours.
func DefaultSLARules() map[Priority]float64 {
	return map[Priority]float64{
		PriorityCritical: 4,
		PriorityHigh:     24,
		PriorityModerate: 72,
		PriorityLow:      120,
	}
}

// ImpactMultiplier scales the CI-type base impact estimate by priority.
func (p Priority) ImpactMultiplier() float64 {
	switch p {
	case PriorityCritical:
		return 2.0
	case PriorityHigh:
		return 1.5
	case PriorityLow:
		return 0.5
	default:
		return 1.0
	}
}
