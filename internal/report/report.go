package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"

	"github.com/rl-gate/rl-gate/internal/findings"
	"github.com/rl-gate/rl-gate/pkg/shared/files"
)

// MaxComponentsPerIssue caps affected components per policy to keep issue
// bodies readable.
const MaxComponentsPerIssue = 50

// ScanResult is the parsed rl.json report: only violations with status=fail
// are extracted, aggregated into one BlockingPolicy per policy id.
type ScanResult struct {
	ArtifactName     string
	ScanLevel        int
	ScanStatus       string // "pass" or "fail"
	BlockingPolicies []findings.BlockingPolicy
	CVEDetails       map[string]findings.CVEDetail
}

// Failed reports whether the scan finished with blocking violations.
func (r *ScanResult) Failed() bool {
	return r.ScanStatus == "fail"
}

// rl.json wire schema, reduced to the fields this tool reads.
type rlReport struct {
	Report struct {
		Info struct {
			File struct {
				Name string `json:"name"`
			} `json:"file"`
			Inhibitors struct {
				ScanLevel int `json:"scan_level"`
			} `json:"inhibitors"`
			Statistics struct {
				Quality struct {
					Status string `json:"status"`
				} `json:"quality"`
			} `json:"statistics"`
		} `json:"info"`
		Metadata rlMetadata `json:"metadata"`
	} `json:"report"`
}

type rlMetadata struct {
	Violations      map[string]rlViolation     `json:"violations"`
	Components      map[string]rlComponent     `json:"components"`
	Vulnerabilities map[string]rlVulnerability `json:"vulnerabilities"`
}

type rlViolation struct {
	RuleID     string `json:"rule_id"`
	Status     string `json:"status"`
	Category   string `json:"category"`
	Severity   string `json:"severity"`
	Priority   *int   `json:"priority"`
	Effort     string `json:"effort"`
	References struct {
		Component []string `json:"component"`
	} `json:"references"`
}

type rlComponent struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type rlVulnerability struct {
	CVSS struct {
		BaseScore float64 `json:"baseScore"`
	} `json:"cvss"`
	Exploit    []string `json:"exploit"`
	Violations []string `json:"violations"`
}

// ParseFile reads and parses a report.rl.json file.
func ParseFile(path string, logger hclog.Logger) (*ScanResult, error) {
	if err := files.ValidatePath(path); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report %q: %w", path, err)
	}
	return Parse(data, logger)
}

// Parse decodes rl.json report data and extracts blocking policies. A report
// whose quality status is not "fail" yields a result with no policies.
func Parse(data []byte, logger hclog.Logger) (*ScanResult, error) {
	var raw rlReport
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode rl.json report: %w", err)
	}

	info := raw.Report.Info
	result := &ScanResult{
		ArtifactName: valueOr(info.File.Name, "unknown"),
		ScanLevel:    info.Inhibitors.ScanLevel,
		ScanStatus:   valueOr(info.Statistics.Quality.Status, "unknown"),
		CVEDetails:   map[string]findings.CVEDetail{},
	}

	if !result.Failed() {
		return result, nil
	}

	meta := raw.Report.Metadata
	result.BlockingPolicies = extractBlockingPolicies(&meta, logger)
	result.CVEDetails = extractCVEDetails(meta.Vulnerabilities, result.BlockingPolicies)

	return result, nil
}

// extractBlockingPolicies aggregates status=fail violations by policy id.
// Violations are visited in key order so aggregation is deterministic.
func extractBlockingPolicies(meta *rlMetadata, logger hclog.Logger) []findings.BlockingPolicy {
	violationKeys := make([]string, 0, len(meta.Violations))
	for key := range meta.Violations {
		violationKeys = append(violationKeys, key)
	}
	sort.Strings(violationKeys)

	byPolicy := map[string][]rlViolation{}
	var policyOrder []string
	for _, key := range violationKeys {
		v := meta.Violations[key]
		if v.Status != "fail" {
			continue
		}
		if v.RuleID == "" {
			logger.Warn("violation missing rule_id, skipping", "violation", key)
			continue
		}
		if _, seen := byPolicy[v.RuleID]; !seen {
			policyOrder = append(policyOrder, v.RuleID)
		}
		byPolicy[v.RuleID] = append(byPolicy[v.RuleID], v)
	}

	result := make([]findings.BlockingPolicy, 0, len(byPolicy))
	for _, policyID := range policyOrder {
		violations := byPolicy[policyID]
		first := violations[0]

		var affected []findings.Component
		seenPaths := map[string]struct{}{}
		for _, v := range violations {
			for _, compID := range v.References.Component {
				comp, ok := meta.Components[compID]
				if !ok || comp.Path == "" {
					continue
				}
				if _, dup := seenPaths[comp.Path]; dup {
					continue
				}
				seenPaths[comp.Path] = struct{}{}
				affected = append(affected, findings.Component{
					Name: valueOr(comp.Name, "unknown"),
					Path: comp.Path,
				})
			}
		}
		if len(affected) > MaxComponentsPerIssue {
			affected = affected[:MaxComponentsPerIssue]
		}

		var cveIDs []string
		for cveID, cve := range meta.Vulnerabilities {
			if containsString(cve.Violations, policyID) {
				cveIDs = append(cveIDs, cveID)
			}
		}
		sort.Strings(cveIDs)

		result = append(result, findings.BlockingPolicy{
			PolicyID:   policyID,
			Category:   valueOr(first.Category, "unknown"),
			Severity:   valueOr(first.Severity, "unknown"),
			Priority:   priorityOrLowest(first.Priority),
			Effort:     valueOr(first.Effort, "unknown"),
			Components: affected,
			CVEIDs:     cveIDs,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Priority != result[j].Priority {
			return result[i].Priority < result[j].Priority
		}
		return result[i].PolicyID < result[j].PolicyID
	})
	return result
}

// extractCVEDetails keeps details only for CVEs referenced by blocking policies.
func extractCVEDetails(vulnerabilities map[string]rlVulnerability, blocking []findings.BlockingPolicy) map[string]findings.CVEDetail {
	needed := map[string]struct{}{}
	for _, policy := range blocking {
		for _, cve := range policy.CVEIDs {
			needed[cve] = struct{}{}
		}
	}

	details := make(map[string]findings.CVEDetail, len(needed))
	for cveID := range needed {
		cve := vulnerabilities[cveID]
		details[cveID] = findings.CVEDetail{
			BaseScore: cve.CVSS.BaseScore,
			Exploited: containsString(cve.Exploit, "EXISTS"),
			Fixable:   containsString(cve.Exploit, "FIXABLE"),
		}
	}
	return details
}

// priorityOrLowest defaults a missing priority to P4 so that violations
// without one never outrank real P0 findings.
func priorityOrLowest(p *int) int {
	if p == nil {
		return 4
	}
	return *p
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
