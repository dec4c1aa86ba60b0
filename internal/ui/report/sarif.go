package report

import (
	"encoding/json"
	"path/filepath"
	"sort"
	"verylcheck/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

type sarifRegion struct {
	StartLine   int `json:"startLine,omitempty"`
	StartColumn int `json:"startColumn,omitempty"`
}

var ruleDescriptions = map[string]struct{ name, text string }{
	"invalid_assignment":    {"InvalidAssignment", "A target that may not be written is assigned."},
	"duplicated_identifier": {"DuplicatedIdentifier", "An identifier is declared twice in one scope."},
	"syntax_error":          {"SyntaxError", "The source file could not be parsed."},
}

// GenerateSARIF builds a SARIF v2.1.0 document from a report. File URIs are
// made relative to r.Root so that reports are safe to share.
func GenerateSARIF(r Report) ([]byte, error) {
	results := make([]sarifResult, 0, len(r.Diagnostics))
	for _, d := range r.Diagnostics {
		result := sarifResult{
			RuleID:  d.Code,
			Level:   severityToLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
		}
		if d.File != "" {
			loc := sarifLocation{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{
						URI:       relativeURI(r.Root, d.File),
						URIBaseID: "%SRCROOT%",
					},
				},
			}
			if d.Line > 0 {
				loc.PhysicalLocation.Region = &sarifRegion{
					StartLine:   d.Line,
					StartColumn: d.Column,
				}
			}
			result.Locations = []sarifLocation{loc}
		}
		results = append(results, result)
	}

	doc := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "verylcheck",
						Version: version.Version,
						Rules:   buildSARIFRules(r.Diagnostics),
					},
				},
				Results: results,
			},
		},
	}
	return json.MarshalIndent(doc, "", "  ")
}

// buildSARIFRules returns one rule per diagnostic code present, sorted by id.
func buildSARIFRules(diags []Diagnostic) []sarifRule {
	seen := make(map[string]string)
	for _, d := range diags {
		if _, ok := seen[d.Code]; !ok {
			seen[d.Code] = d.Severity
		}
	}

	rules := make([]sarifRule, 0, len(seen))
	for code, severity := range seen {
		rule := sarifRule{
			ID:            code,
			Name:          code,
			DefaultConfig: sarifRuleDefaultConfig{Level: severityToLevel(severity)},
		}
		if desc, ok := ruleDescriptions[code]; ok {
			rule.Name = desc.name
			rule.ShortDescription = sarifMessage{Text: desc.text}
		}
		rules = append(rules, rule)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	return rules
}

func severityToLevel(severity string) string {
	switch severity {
	case "error":
		return "error"
	case "warning":
		return "warning"
	default:
		return "note"
	}
}

// relativeURI converts an absolute file path to a forward-slash relative URI
// anchored at projectRoot.
func relativeURI(projectRoot, filePath string) string {
	if projectRoot != "" && filepath.IsAbs(filePath) {
		rel, err := filepath.Rel(projectRoot, filePath)
		if err == nil {
			filePath = rel
		}
	}
	return filepath.ToSlash(filePath)
}
