package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const envPrefix = "VERYLCHECK_"

// ApplyEnvOverrides applies environment variable overrides to the metadata.
// Pattern: VERYLCHECK_[SECTION]_[KEY] (e.g., VERYLCHECK_WATCH_DEBOUNCE).
func ApplyEnvOverrides(m *Metadata) {
	// Build
	setEnvString((*string)(&m.Build.ClockType), "BUILD_CLOCK_TYPE")
	setEnvString((*string)(&m.Build.ResetType), "BUILD_RESET_TYPE")
	setEnvString((*string)(&m.Build.FilelistType), "BUILD_FILELIST_TYPE")

	// Format
	setEnvInt(&m.Format.IndentWidth, "FORMAT_INDENT_WIDTH")

	// Lint
	setEnvList(&m.Lint.Allow, "LINT_ALLOW")

	// Analysis
	setEnvList(&m.Analysis.Sources, "ANALYSIS_SOURCES")
	setEnvList(&m.Analysis.ExcludeDirs, "ANALYSIS_EXCLUDE_DIRS")
	setEnvList(&m.Analysis.ExcludeFiles, "ANALYSIS_EXCLUDE_FILES")
	setEnvString(&m.Analysis.FactsDB, "ANALYSIS_FACTS_DB")
	setEnvBool(&m.Analysis.PersistFacts, "ANALYSIS_PERSIST_FACTS")

	// Watch
	setEnvDuration(&m.Watch.Debounce, "WATCH_DEBOUNCE")
	setEnvFloat64(&m.Watch.MaxRechecksPerSecond, "WATCH_MAX_RECHECKS_PER_SECOND")
	setEnvInt(&m.Watch.Burst, "WATCH_BURST")

	// Observability
	setEnvString(&m.Observability.MetricsAddress, "OBSERVABILITY_METRICS_ADDRESS")
	setEnvString(&m.Observability.OTLPEndpoint, "OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&m.Observability.OTLPInsecure, "OBSERVABILITY_OTLP_INSECURE")
	setEnvString(&m.Observability.ServiceName, "OBSERVABILITY_SERVICE_NAME")
}

func lookup(key string) (string, bool) {
	val, ok := os.LookupEnv(envPrefix + key)
	if ok {
		slog.Debug("applying env override", "key", envPrefix+key, "value", val)
	}
	return val, ok
}

func setEnvString(target *string, key string) {
	if val, ok := lookup(key); ok {
		*target = val
	}
}

// setEnvList splits a comma-separated value; empty elements are dropped.
func setEnvList(target *[]string, key string) {
	val, ok := lookup(key)
	if !ok {
		return
	}
	items := make([]string, 0)
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	*target = items
}

func setEnvInt(target *int, key string) {
	if val, ok := lookup(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := lookup(key); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := lookup(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := lookup(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			*target = d
		}
	}
}
