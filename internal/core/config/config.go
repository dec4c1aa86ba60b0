package config

import (
	"strings"
	"time"
)

// FileName is the project metadata file searched for by SearchFrom.
const FileName = "Veryl.toml"

// Metadata is the decoded content of a Veryl.toml project file.
type Metadata struct {
	Project       Project               `toml:"project" json:"project"`
	Build         Build                 `toml:"build" json:"build"`
	Format        Format                `toml:"format" json:"format"`
	Dependencies  map[string]Dependency `toml:"dependencies" json:"dependencies"`
	Lint          Lint                  `toml:"lint" json:"lint"`
	Analysis      Analysis              `toml:"analysis" json:"analysis"`
	Watch         Watch                 `toml:"watch" json:"watch"`
	Observability Observability         `toml:"observability" json:"observability"`

	// MetadataPath is the absolute path the file was loaded from.
	MetadataPath string `toml:"-" json:"metadata_path"`
}

type Project struct {
	Name        string   `toml:"name" json:"name"`
	Version     string   `toml:"version" json:"version"`
	Authors     []string `toml:"authors" json:"authors"`
	Description string   `toml:"description" json:"description,omitempty"`
	License     string   `toml:"license" json:"license,omitempty"`
	Repository  string   `toml:"repository" json:"repository,omitempty"`
}

type ClockType string

const (
	ClockPosEdge ClockType = "posedge"
	ClockNegEdge ClockType = "negedge"
)

type ResetType string

const (
	ResetAsyncLow  ResetType = "async_low"
	ResetAsyncHigh ResetType = "async_high"
	ResetSyncLow   ResetType = "sync_low"
	ResetSyncHigh  ResetType = "sync_high"
)

type FilelistType string

const (
	FilelistAbsolute FilelistType = "absolute"
	FilelistRelative FilelistType = "relative"
	FilelistFlgen    FilelistType = "flgen"
)

const (
	TargetSource    = "source"
	TargetDirectory = "directory"
)

type Build struct {
	ClockType    ClockType    `toml:"clock_type" json:"clock_type"`
	ResetType    ResetType    `toml:"reset_type" json:"reset_type"`
	FilelistType FilelistType `toml:"filelist_type" json:"filelist_type"`
	Target       Target       `toml:"target" json:"target"`
}

// Target is `{type = "source"}` or `{type = "directory", path = "..."}`.
type Target struct {
	Type string `toml:"type" json:"type"`
	Path string `toml:"path" json:"path,omitempty"`
}

type Format struct {
	IndentWidth int `toml:"indent_width" json:"indent_width"`
}

type Dependency struct {
	Git    string `toml:"git" json:"git"`
	Rev    string `toml:"rev" json:"rev,omitempty"`
	Tag    string `toml:"tag" json:"tag,omitempty"`
	Branch string `toml:"branch" json:"branch,omitempty"`
}

// Lint.Allow suppresses the named diagnostics project-wide.
type Lint struct {
	Allow []string `toml:"allow" json:"allow"`
}

type Analysis struct {
	Sources      []string `toml:"sources" json:"sources"`
	ExcludeDirs  []string `toml:"exclude_dirs" json:"exclude_dirs"`
	ExcludeFiles []string `toml:"exclude_files" json:"exclude_files"`
	FactsDB      string   `toml:"facts_db" json:"facts_db"`
	PersistFacts bool     `toml:"persist_facts" json:"persist_facts"`
}

type Watch struct {
	Debounce             time.Duration `toml:"debounce" json:"debounce"`
	MaxRechecksPerSecond float64       `toml:"max_rechecks_per_second" json:"max_rechecks_per_second"`
	Burst                int           `toml:"burst" json:"burst"`
}

type Observability struct {
	MetricsAddress string `toml:"metrics_address" json:"metrics_address,omitempty"`
	OTLPEndpoint   string `toml:"otlp_endpoint" json:"otlp_endpoint,omitempty"`
	OTLPInsecure   bool   `toml:"otlp_insecure" json:"otlp_insecure"`
	ServiceName    string `toml:"service_name" json:"service_name"`
}

// DefaultMetadata returns the values used for every key a project file
// leaves out. Project name and version have no default.
func DefaultMetadata() *Metadata {
	m := &Metadata{}
	applyDefaults(m)
	return m
}

func applyDefaults(m *Metadata) {
	if m.Build.ClockType == "" {
		m.Build.ClockType = ClockPosEdge
	}
	if m.Build.ResetType == "" {
		m.Build.ResetType = ResetAsyncLow
	}
	if m.Build.FilelistType == "" {
		m.Build.FilelistType = FilelistAbsolute
	}
	if strings.TrimSpace(m.Build.Target.Type) == "" {
		m.Build.Target.Type = TargetSource
	}

	if m.Format.IndentWidth == 0 {
		m.Format.IndentWidth = 4
	}
	if m.Dependencies == nil {
		m.Dependencies = make(map[string]Dependency)
	}

	if len(m.Analysis.Sources) == 0 {
		m.Analysis.Sources = []string{"**/*.veryl"}
	}
	if m.Analysis.ExcludeDirs == nil {
		m.Analysis.ExcludeDirs = []string{".git", "target", "dependencies"}
	}
	if strings.TrimSpace(m.Analysis.FactsDB) == "" {
		m.Analysis.FactsDB = ".verylcheck/facts.db"
	}

	if m.Watch.Debounce == 0 {
		m.Watch.Debounce = 300 * time.Millisecond
	}
	if m.Watch.MaxRechecksPerSecond == 0 {
		m.Watch.MaxRechecksPerSecond = 4
	}
	if m.Watch.Burst == 0 {
		m.Watch.Burst = 1
	}

	if strings.TrimSpace(m.Observability.ServiceName) == "" {
		m.Observability.ServiceName = "verylcheck"
	}
}
