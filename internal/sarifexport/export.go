package sarifexport

import (
	"fmt"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	"github.com/rl-gate/rl-gate/internal/findings"
	"github.com/rl-gate/rl-gate/internal/metadata"
)

// Build converts surviving blocking policies into a SARIF report suitable for
// code-scanning upload: one run, one rule per policy, one result per
// (policy, component) pair.
func Build(artifactName string, policies []findings.BlockingPolicy, meta map[string]metadata.PolicyMetadata) (*sarif.Report, error) {
	report, err := sarif.New(sarif.Version210)
	if err != nil {
		return nil, fmt.Errorf("create sarif report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("rl-gate", "https://github.com/rl-gate/rl-gate")

	for _, p := range policies {
		rule := run.AddRule(p.PolicyID)
		if m, ok := meta[p.PolicyID]; ok && m.Label != "" {
			rule.WithDescription(m.Label)
		}

		level := severityToLevel(p.Severity)
		message := fmt.Sprintf("%s violation in %s", p.PolicyID, artifactName)
		if m, ok := meta[p.PolicyID]; ok && m.Label != "" {
			message = m.Label
		}

		for _, comp := range p.Components {
			run.CreateResultForRule(p.PolicyID).
				WithLevel(level).
				WithMessage(sarif.NewTextMessage(message)).
				AddLocation(
					sarif.NewLocationWithPhysicalLocation(
						sarif.NewPhysicalLocation().
							WithArtifactLocation(
								sarif.NewSimpleArtifactLocation(strings.TrimPrefix(comp.Path, "/")),
							),
					),
				)
		}
	}

	report.AddRun(run)
	return report, nil
}

// Write serializes the report to path.
func Write(report *sarif.Report, path string) error {
	if err := report.WriteFile(path); err != nil {
		return fmt.Errorf("write sarif report %q: %w", path, err)
	}
	return nil
}

// severityToLevel maps rl-secure severities onto SARIF levels.
func severityToLevel(severity string) string {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical", "high":
		return "error"
	case "medium":
		return "warning"
	case "low":
		return "note"
	default:
		return "note"
	}
}
