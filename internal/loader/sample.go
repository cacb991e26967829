package loader

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/incidentops/snowmetrics/internal/frame"
)

// SampleSource generates synthetic network incidents. Output is a pure
// function of the field values, so fixed Seed and Now yield identical
// batches run after run.
type SampleSource struct {
	Records         int
	Seed            int64
	IncludeResolved bool

	// Now anchors the generated timestamps. Zero means time.Now.
	Now time.Time
}

// Load generates the batch.
func (s SampleSource) Load(ctx context.Context) (*frame.Table, error) {
	t := GenerateSample(s.Records, s.Seed, s.IncludeResolved, s.Now)
	slog.Info("generated sample incidents", "rows", t.Len(), "seed", s.Seed)
	return t, nil
}

var (
	sampleCategories = []string{"WiFi/Wireless", "VPN/Remote Access", "Network Printing", "DNS/Resolution", "Server/Performance"}
	samplePriorities = []string{"1 - Critical", "2 - High", "3 - Moderate", "4 - Low"}
	sampleCITypes    = []string{"Access Point", "VPN Gateway", "Router", "Switch", "Firewall", "DNS Server"}
	sampleLocations  = []string{"London Office", "New York Office", "Berlin Office", "Tokyo Office", "Sydney Office"}
	sampleGroups     = []string{"Global Network Services", "EMEA Network Team", "APAC Network Team", "Local IT Support"}
	sampleContacts   = []string{"Email", "Phone", "Self-service", "Chat"}
	sampleSubcats    = []string{"Connectivity", "Performance", "Configuration", "Availability"}

	priorityWeights = []float64{0.1, 0.3, 0.4, 0.2}
	openStates      = []string{"New", "In Progress", "On Hold"}
	openWeights     = []float64{0.2, 0.6, 0.2}

	reassignCounts  = []int{0, 1, 2, 3}
	reassignWeights = []float64{0.7, 0.25, 0.04, 0.01}
)

// sampleColumns deliberately includes the raw duplicate column variants
// (opened/opened_at, resolved/resolved_at/u_resolved, incident_state,
// u_ci_type) so generated batches exercise the schema normalizer the way
// real exports do.
var sampleColumns = []string{
	"number", "short_description", "description", "priority",
	"state", "incident_state", "assignment_group",
	"opened_at", "opened", "resolved_at", "resolved", "u_resolved",
	"location", "ci_type", "u_ci_type", "cmdb_ci",
	"category", "subcategory", "contact_type",
	"reassignment_count", "assigned_to",
}

// GenerateSample produces records network-template incidents opened over
// the week before the anchor time. Roughly 70% are resolved when
// includeResolved is set.
func GenerateSample(records int, seed int64, includeResolved bool, now time.Time) *frame.Table {
	if now.IsZero() {
		now = time.Now()
	}
	rng := rand.New(rand.NewSource(seed))
	base := now.AddDate(0, 0, -7).Truncate(time.Second)

	t := frame.New(sampleColumns...)
	for i := 0; i < records; i++ {
		opened := base.Add(-time.Duration(1+rng.Intn(167)) * time.Hour)
		isResolved := includeResolved && rng.Float64() > 0.3

		resolved := ""
		state := ""
		if isResolved {
			resolutionHours := 1 + rng.Intn(71)
			resolved = opened.Add(time.Duration(resolutionHours) * time.Hour).Format("2006-01-02 15:04:05")
			state = "Resolved"
		} else {
			state = weightedString(rng, openStates, openWeights)
		}

		category := sampleCategories[rng.Intn(len(sampleCategories))]
		ciType := sampleCITypes[rng.Intn(len(sampleCITypes))]
		location := sampleLocations[rng.Intn(len(sampleLocations))]
		openedText := opened.Format("2006-01-02 15:04:05")

		row := frame.Row{
			"number":             fmt.Sprintf("INC%07d", 7560000+i),
			"short_description":  fmt.Sprintf("%s issue affecting users", category),
			"description":        fmt.Sprintf("Detailed description of %s incident affecting multiple users in %s.", strings.ToLower(category), location),
			"priority":           weightedString(rng, samplePriorities, priorityWeights),
			"state":              state,
			"incident_state":     state,
			"assignment_group":   sampleGroups[rng.Intn(len(sampleGroups))],
			"opened_at":          openedText,
			"opened":             openedText,
			"location":           location,
			"ci_type":            ciType,
			"u_ci_type":          ciType,
			"cmdb_ci":            fmt.Sprintf("%s_%03d", strings.ToUpper(strings.ReplaceAll(ciType, " ", "_")), 1+rng.Intn(19)),
			"category":           "Network",
			"subcategory":        sampleSubcats[rng.Intn(len(sampleSubcats))],
			"contact_type":       sampleContacts[rng.Intn(len(sampleContacts))],
			"reassignment_count": weightedInt(rng, reassignCounts, reassignWeights),
			"assigned_to":        fmt.Sprintf("Admin %d", i%5),
		}
		if resolved != "" {
			row["resolved_at"] = resolved
			row["resolved"] = resolved
			row["u_resolved"] = resolved
		}
		t.Append(row)
	}
	return t
}

func weightedString(rng *rand.Rand, values []string, weights []float64) string {
	return values[weightedIndex(rng, weights)]
}

func weightedInt(rng *rand.Rand, values []int, weights []float64) int {
	return values[weightedIndex(rng, weights)]
}

func weightedIndex(rng *rand.Rand, weights []float64) int {
	r := rng.Float64()
	cumulative := 0.0
	for i, w := range weights {
		cumulative += w
		if r < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
