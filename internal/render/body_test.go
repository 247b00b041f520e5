package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/rl-gate/rl-gate/internal/findings"
	"github.com/rl-gate/rl-gate/internal/metadata"
	"github.com/rl-gate/rl-gate/internal/policy"
)

func samplePolicy() findings.BlockingPolicy {
	return findings.BlockingPolicy{
		PolicyID: "SQ34108",
		Category: "secrets",
		Severity: "high",
		Priority: 1,
		Effort:   "low",
		Components: []findings.Component{
			{Name: "config.py", Path: "/app/config.py"},
		},
	}
}

func TestIssueTitle(t *testing.T) {
	p := samplePolicy()

	assert.Equal(t, "[SQ34108] SQ34108", IssueTitle(p, nil))

	meta := &metadata.PolicyMetadata{Label: "Detected PEM private key"}
	assert.Equal(t, "[SQ34108] Detected PEM private key", IssueTitle(p, meta))

	empty := &metadata.PolicyMetadata{}
	assert.Equal(t, "[SQ34108] SQ34108", IssueTitle(p, empty))
}

func TestIssueBodyHeader(t *testing.T) {
	body := IssueBody(samplePolicy(), nil, nil)

	assert.Contains(t, body, "**Severity:** high")
	assert.Contains(t, body, "**Priority:** P1")
	assert.Contains(t, body, "**Effort:** low")
	assert.Contains(t, body, "## Affected Components")
	assert.Contains(t, body, "- `/app/config.py`")
	assert.NotContains(t, body, "## CVEs")
	assert.NotContains(t, body, "## Remediation Steps")
}

func TestIssueBodyWithMetadata(t *testing.T) {
	meta := &metadata.PolicyMetadata{
		Label:       "Detected PEM private key",
		Description: "A PEM encoded private key was found.",
		Steps:       []string{"Remove the key.", "Rotate the credential."},
	}

	body := IssueBody(samplePolicy(), meta, nil)

	assert.Contains(t, body, "A PEM encoded private key was found.")
	assert.Contains(t, body, "## Remediation Steps")
	assert.Contains(t, body, "1. Remove the key.")
	assert.Contains(t, body, "2. Rotate the credential.")
}

func TestIssueBodyCVETable(t *testing.T) {
	p := samplePolicy()
	p.CVEIDs = []string{"CVE-2021-44228", "CVE-2021-45046"}
	details := map[string]findings.CVEDetail{
		"CVE-2021-44228": {BaseScore: 10.0, Exploited: true, Fixable: true},
	}

	body := IssueBody(p, nil, details)

	assert.Contains(t, body, "## CVEs")
	assert.Contains(t, body, "| CVE-2021-44228 | 10.0 | Yes | Yes |")
	// A CVE without details renders with placeholders rather than zeros.
	assert.Contains(t, body, "| CVE-2021-45046 | - | No | No |")
}

func TestFilteredSummary(t *testing.T) {
	assert.Equal(t, "", FilteredSummary(nil))

	items := []policy.FilteredItem{
		{PolicyID: "SQ34108", ComponentPath: "/app/config.py", Reason: "test credentials"},
		{PolicyID: "SQ12345", ComponentPath: "/app/main.py", Reason: policy.DisabledReason},
	}
	summary := FilteredSummary(items)

	lines := strings.Split(strings.TrimRight(summary, "\n"), "\n")
	assert.Len(t, lines, 3)
	assert.Equal(t, "Suppressed by policy config:", lines[0])
	assert.Contains(t, lines[1], "SQ34108 /app/config.py: test credentials")
	assert.Contains(t, lines[2], "SQ12345 /app/main.py: Policy disabled in overrides")
}
