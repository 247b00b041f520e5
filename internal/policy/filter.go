package policy

import (
	"strings"

	"github.com/gobwas/glob"

	"github.com/rl-gate/rl-gate/internal/findings"
)

// DisabledReason is the audit reason recorded for findings removed by an
// overrides disable rather than by a suppression filter.
const DisabledReason = "Policy disabled in overrides"

// FilteredItem records one suppressed (policy, component) pair for reporting.
type FilteredItem struct {
	PolicyID      string
	ComponentPath string
	Reason        string
}

// FilterPolicies applies the policy config to the blocking policies in input
// order and returns the survivors, pruned of suppressed components, together
// with the audit trail of everything removed. The input slice and its entries
// are never mutated; survivors are fresh aggregates, so re-running with the
// same inputs yields identical output.
func FilterPolicies(policies []findings.BlockingPolicy, cfg *PolicyConfig) ([]findings.BlockingPolicy, []FilteredItem) {
	var result []findings.BlockingPolicy
	var filtered []FilteredItem

	for _, p := range policies {
		if cfg.isDisabled(p.PolicyID) {
			for _, comp := range p.Components {
				filtered = append(filtered, FilteredItem{
					PolicyID:      p.PolicyID,
					ComponentPath: comp.Path,
					Reason:        DisabledReason,
				})
			}
			continue
		}

		var remaining []findings.Component
		for _, comp := range p.Components {
			if reason, suppressed := cfg.suppressionReason(p, comp); suppressed {
				filtered = append(filtered, FilteredItem{
					PolicyID:      p.PolicyID,
					ComponentPath: comp.Path,
					Reason:        reason,
				})
				continue
			}
			remaining = append(remaining, comp)
		}

		// A policy survives only with at least one remaining component; the
		// per-component audit entries already explain an empty one.
		if len(remaining) == 0 {
			continue
		}

		kept := p
		kept.Components = remaining
		result = append(result, kept)
	}

	return result, filtered
}

// isDisabled reports whether the policy id is disabled, either literally or
// via a wildcard entry in the disabled set.
func (c *PolicyConfig) isDisabled(policyID string) bool {
	if _, ok := c.DisabledPolicies[policyID]; ok {
		return true
	}
	for pattern := range c.DisabledPolicies {
		if matchGlob(pattern, policyID) {
			return true
		}
	}
	return false
}

// suppressionReason evaluates the filters in config order against one
// component. The first enabled filter whose path pattern and kind predicate
// both match wins; a component no filter matches survives.
func (c *PolicyConfig) suppressionReason(p findings.BlockingPolicy, comp findings.Component) (string, bool) {
	for _, f := range c.Filters {
		if !f.Enabled {
			continue
		}
		if !matchesPath(f.Pattern, comp.Path, f.Matches) {
			continue
		}

		switch f.Kind {
		case KindSecrets:
			if p.Category != "secrets" {
				continue
			}
			// An empty secrets list means the filter applies to every secret
			// policy on matching paths.
			if len(f.Secrets) == 0 || matchesAny(f.Secrets, p.PolicyID) {
				return reasonOr(f.Reason, "Suppressed by secrets filter"), true
			}
		case KindPolicies:
			if matchesAny(f.Policies, p.PolicyID) {
				return reasonOr(f.Reason, "Suppressed by policies filter"), true
			}
		case KindTriaged:
			if allCVEsTriaged(p.CVEIDs, f.CVEs) {
				return f.triagedReason(p.CVEIDs), true
			}
		}
	}
	return "", false
}

// triagedReason synthesizes the audit reason for a triaged suppression when
// the filter declares no explicit reason, joining the VEX justifications of
// the finding's CVEs that have one.
func (f *Filter) triagedReason(cveIDs []string) string {
	if f.Reason != "" {
		return f.Reason
	}
	var vex []string
	for _, cve := range cveIDs {
		if reason, ok := f.VEXReasons[cve]; ok {
			vex = append(vex, cve+": "+reason)
		}
	}
	if len(vex) == 0 {
		return "All CVEs triaged"
	}
	return "All CVEs triaged (" + strings.Join(vex, ", ") + ")"
}

// matchesPath checks the component path against a filter pattern. "file"
// matches the final path segment, "path" the full path, "root" the path with
// a single leading slash stripped. Pattern "*" always matches. Backslash
// separators are normalized before matching.
func matchesPath(pattern, componentPath, matchType string) bool {
	if pattern == "*" {
		return true
	}

	path := strings.ReplaceAll(componentPath, "\\", "/")

	switch matchType {
	case "file":
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			path = path[idx+1:]
		}
		return matchGlob(pattern, path)
	case "path":
		return matchGlob(pattern, path)
	case "root":
		return matchGlob(pattern, strings.TrimPrefix(path, "/"))
	}
	return false
}

// matchesAny reports whether any glob pattern matches the policy id.
func matchesAny(patterns []string, policyID string) bool {
	for _, p := range patterns {
		if matchGlob(p, policyID) {
			return true
		}
	}
	return false
}

// allCVEsTriaged reports whether every CVE of a finding is covered by some
// triaged pattern. A finding with no CVEs is never triaged: the filter has
// nothing to vouch for.
func allCVEsTriaged(cveIDs, triagedCVEs []string) bool {
	if len(cveIDs) == 0 {
		return false
	}
	for _, cve := range cveIDs {
		if !matchesAny(triagedCVEs, cve) {
			return false
		}
	}
	return true
}

// matchGlob matches s against a shell-style wildcard pattern. A pattern that
// fails to compile matches nothing, keeping malformed config entries from
// suppressing findings.
func matchGlob(pattern, s string) bool {
	g, err := glob.Compile(pattern)
	if err != nil {
		return false
	}
	return g.Match(s)
}

func reasonOr(reason, fallback string) string {
	if reason != "" {
		return reason
	}
	return fallback
}
