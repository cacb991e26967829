package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/earthboundkid/versioninfo/v2"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/lmittmann/tint"

	"github.com/incidentops/snowmetrics/internal/analysis"
	"github.com/incidentops/snowmetrics/internal/config"
	"github.com/incidentops/snowmetrics/internal/enrich"
	"github.com/incidentops/snowmetrics/internal/loader"
)

type Config struct {
	LogLevel   string `split_words:"true" default:"info"`
	ConfigFile string `split_words:"true"`
}

func main() {
	help := flag.Bool("help", false, "Show help")
	source := flag.String("source", "sample", "Incident source: csv or sample")
	file := flag.String("file", "", "CSV export to load when -source=csv")
	records := flag.Int("records", 50, "Sample records to generate when -source=sample")
	seed := flag.Int64("seed", 1, "Sample generator seed")
	temporal := flag.Bool("temporal", false, "Derive calendar features as well")
	metrics := flag.String("metrics", "sla,resolution,backlog,patterns", "Comma-separated aggregates: sla, resolution, backlog, reassignments, quality, patterns")
	flag.Parse()

	if *help {
		envconfig.Usage("snowmetrics", &Config{})
		return
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			log.Fatal("Error loading .env file")
		}
	}

	var c Config
	if err := envconfig.Process("snowmetrics", &c); err != nil {
		log.Fatalf("error loading configuration: %v", err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: level})))
	slog.Info("snowmetrics", "version", versioninfo.Short())

	ctx := context.Background()

	cfg := config.Default()
	if c.ConfigFile != "" {
		b, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			log.Fatalf("error reading config file: %v", err)
		}
		cfg, err = config.FromYAML(b)
		if err != nil {
			log.Fatalf("error parsing config file: %v", err)
		}
		if err := cfg.Validate(ctx); err != nil {
			log.Fatalf("error validating config file: %v", err)
		}
	}

	var src loader.Source
	switch *source {
	case "csv":
		if *file == "" {
			log.Fatal("-source=csv requires -file")
		}
		src = loader.CSVSource{Path: *file}
	case "sample":
		src = loader.SampleSource{Records: *records, Seed: *seed, IncludeResolved: true}
	default:
		log.Fatalf("unknown source %q", *source)
	}

	raw, err := src.Load(ctx)
	if err != nil {
		log.Fatalf("error loading incidents: %v", err)
	}
	loader.ValidateSchema(raw, nil)

	stages := enrich.DefaultStages()
	if *temporal {
		stages = append(stages, enrich.StageTemporal)
	}
	enriched, added, err := enrich.Transform(raw, enrich.Options{Stages: stages, Config: cfg})
	if err != nil {
		log.Fatalf("error transforming incidents: %v", err)
	}
	slog.Info("enriched batch", "rows", enriched.Len(), "columns_added", added)

	out := map[string]any{}
	for _, name := range strings.Split(*metrics, ",") {
		switch strings.TrimSpace(name) {
		case "":
		case "sla":
			out["sla"] = analysis.CalculateSLAMetrics(enriched)
		case "resolution":
			out["resolution_times"] = analysis.AnalyzeResolutionTimes(enriched, true, true)
		case "backlog":
			out["backlog"] = analysis.CalculateBacklogMetrics(enriched, time.Time{})
		case "reassignments":
			out["reassignments"] = analysis.AnalyzeReassignments(enriched, analysis.DefaultReassignmentThreshold)
		case "quality":
			checked := analysis.CheckIncidentQuality(enriched, analysis.DefaultQualityConfig())
			out["quality"] = loader.ValidateDataQuality(raw)
			withIssues := 0
			for _, row := range checked.Rows() {
				if n, ok := row[analysis.ColQualityIssuesCount].(int); ok && n > 0 {
					withIssues++
				}
			}
			out["quality_flagged_incidents"] = withIssues
		case "patterns":
			out["patterns"] = analysis.AnalyzePatterns(enriched)
		default:
			log.Fatalf("unknown metrics aggregate %q", name)
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("error encoding metrics: %v", err)
	}
}
