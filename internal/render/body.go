package render

import (
	"fmt"
	"strings"

	"github.com/rl-gate/rl-gate/internal/findings"
	"github.com/rl-gate/rl-gate/internal/metadata"
	"github.com/rl-gate/rl-gate/internal/policy"
)

// IssueTitle builds the issue title, preferring the metadata label over the
// bare policy id. The `[<policy-id>]` prefix is the dedup marker the tracker
// searches for.
func IssueTitle(p findings.BlockingPolicy, meta *metadata.PolicyMetadata) string {
	label := p.PolicyID
	if meta != nil && meta.Label != "" {
		label = meta.Label
	}
	return fmt.Sprintf("[%s] %s", p.PolicyID, label)
}

// IssueBody renders the issue body markdown: severity header, policy
// description, affected components, CVE table, and remediation steps.
func IssueBody(p findings.BlockingPolicy, meta *metadata.PolicyMetadata, cveDetails map[string]findings.CVEDetail) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**Severity:** %s\n", p.Severity)
	fmt.Fprintf(&b, "**Priority:** P%d\n", p.Priority)
	fmt.Fprintf(&b, "**Effort:** %s\n\n", p.Effort)

	if meta != nil && meta.Description != "" {
		b.WriteString(meta.Description)
		b.WriteString("\n\n")
	}

	if len(p.Components) > 0 {
		b.WriteString("## Affected Components\n")
		for _, comp := range p.Components {
			fmt.Fprintf(&b, "- `%s`\n", comp.Path)
		}
		b.WriteString("\n")
	}

	if len(p.CVEIDs) > 0 {
		b.WriteString("## CVEs\n")
		b.WriteString("| CVE | CVSS | Exploited | Fixable |\n")
		b.WriteString("|-----|------|-----------|---------|\n")
		for _, cveID := range p.CVEIDs {
			detail := cveDetails[cveID]
			cvss := "-"
			if detail.BaseScore > 0 {
				cvss = fmt.Sprintf("%.1f", detail.BaseScore)
			}
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n", cveID, cvss, yesNo(detail.Exploited), yesNo(detail.Fixable))
		}
		b.WriteString("\n")
	}

	if meta != nil && len(meta.Steps) > 0 {
		b.WriteString("## Remediation Steps\n")
		for i, step := range meta.Steps {
			fmt.Fprintf(&b, "%d. %s\n", i+1, step)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// FilteredSummary renders the audit trail of suppressed findings, one line
// per removed (policy, component) pair, in suppression order.
func FilteredSummary(items []policy.FilteredItem) string {
	if len(items) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Suppressed by policy config:\n")
	for _, item := range items {
		fmt.Fprintf(&b, "  %s %s: %s\n", item.PolicyID, item.ComponentPath, item.Reason)
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
