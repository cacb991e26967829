// Package config is the configuration provider for the enrichment engine.
// It exposes dotted-path lookup over a nested document with documented
// defaults, an environment-variable fallback for absent keys, and typed
// accessors for the rule tables the pipeline consumes. The engine itself
// never reaches for ambient state: callers construct a Config and pass it
// in explicitly.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/incidentops/snowmetrics/internal/incident"
)

// Config holds a nested configuration document. The zero value is not
// usable; construct via Default or FromYAML.
type Config struct {
	doc map[string]any
}

// Default returns a Config populated with the documented defaults.
func Default() *Config {
	rules := make(map[string]any)
	for priority, hours := range incident.DefaultSLARules() {
		rules[string(priority)] = hours
	}
	return &Config{doc: map[string]any{
		"sla": map[string]any{
			"rules": rules,
		},
		"categorization": map[string]any{
			"rules": incident.DefaultCategoryRules(),
		},
		"quality": map[string]any{
			"min_description_length":     20,
			"max_reassignment_threshold": 3,
			"on_hold_threshold_hours":    72,
		},
		"patterns": map[string]any{
			"min_occurrences": 3,
		},
		"logging": map[string]any{
			"level": "info",
		},
	}}
}

// FromYAML parses a configuration document. The document replaces the
// defaults wholesale; absent keys still resolve through Get's fallback
// chain (environment, then caller default).
func FromYAML(b []byte) (*Config, error) {
	doc := map[string]any{}
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("parsing config document: %w", err)
	}
	return &Config{doc: doc}, nil
}

// Get resolves a dotted key path ("sla.rules"). When the path is absent
// from the document it falls back to the environment variable named by
// upper-snaking the path ("SLA_RULES"), then to the supplied default.
func (c *Config) Get(path string, fallback any) any {
	keys := strings.Split(path, ".")
	var current any = c.doc
	for _, key := range keys {
		section, ok := current.(map[string]any)
		if !ok {
			return c.envOrDefault(keys, fallback)
		}
		current, ok = section[key]
		if !ok {
			return c.envOrDefault(keys, fallback)
		}
	}
	return current
}

func (c *Config) envOrDefault(keys []string, fallback any) any {
	env := strings.ToUpper(strings.Join(keys, "_"))
	if v, ok := os.LookupEnv(env); ok {
		return v
	}
	return fallback
}

// Set writes a value at a dotted key path, creating intermediate sections
// as needed.
func (c *Config) Set(path string, value any) {
	keys := strings.Split(path, ".")
	section := c.doc
	for _, key := range keys[:len(keys)-1] {
		next, ok := section[key].(map[string]any)
		if !ok {
			next = map[string]any{}
			section[key] = next
		}
		section = next
	}
	section[keys[len(keys)-1]] = value
}

// SLARules returns the priority-indexed SLA thresholds in hours. Rule
// keys that do not parse as a known priority are skipped with a warning;
// a missing or malformed section yields the defaults.
func (c *Config) SLARules() map[incident.Priority]float64 {
	raw := c.Get("sla.rules", nil)
	if raw == nil {
		return incident.DefaultSLARules()
	}
	section, ok := raw.(map[string]any)
	if !ok {
		slog.Warn("sla.rules is not a mapping, using defaults")
		return incident.DefaultSLARules()
	}
	rules := make(map[incident.Priority]float64, len(section))
	for key, value := range section {
		priority := incident.ParsePriority(key)
		if priority == incident.PriorityUnknown {
			slog.Warn("skipping SLA rule with unrecognized priority", "priority", key)
			continue
		}
		hours, ok := asFloat(value)
		if !ok {
			slog.Warn("skipping SLA rule with non-numeric threshold", "priority", key, "value", value)
			continue
		}
		rules[priority] = hours
	}
	if len(rules) == 0 {
		return incident.DefaultSLARules()
	}
	return rules
}

// CategoryRules returns the ordered categorization rules. The document
// form is a list so that rule order survives YAML round-trips; a missing
// or malformed section yields the defaults.
func (c *Config) CategoryRules() []incident.CategoryRule {
	raw := c.Get("categorization.rules", nil)
	if raw == nil {
		return incident.DefaultCategoryRules()
	}
	if rules, ok := raw.([]incident.CategoryRule); ok {
		return rules
	}
	// Loaded documents carry the rules as generic YAML nodes; round-trip
	// them into the typed form.
	b, err := yaml.Marshal(raw)
	if err != nil {
		slog.Warn("categorization.rules is malformed, using defaults", "error", err)
		return incident.DefaultCategoryRules()
	}
	var rules []incident.CategoryRule
	if err := yaml.Unmarshal(b, &rules); err != nil {
		slog.Warn("categorization.rules is malformed, using defaults", "error", err)
		return incident.DefaultCategoryRules()
	}
	if len(rules) == 0 {
		return incident.DefaultCategoryRules()
	}
	return rules
}

// StringsValue resolves a dotted path to a string list. Environment
// fallbacks arrive as a single comma-separated string.
func (c *Config) StringsValue(path string, fallback []string) []string {
	switch v := c.Get(path, nil).(type) {
	case nil:
		return fallback
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return fallback
		}
		return out
	case string:
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	default:
		return fallback
	}
}

// IntValue resolves a dotted path to an int, tolerating the numeric and
// string forms YAML and the environment produce.
func (c *Config) IntValue(path string, fallback int) int {
	f, ok := asFloat(c.Get(path, fallback))
	if !ok {
		return fallback
	}
	return int(f)
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(strings.TrimSpace(n), "%g", &f); err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}
