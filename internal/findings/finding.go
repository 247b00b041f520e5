package findings

// Component is one artifact inside the scanned package affected by a policy
// violation.
type Component struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

// BlockingPolicy is a policy violation that blocks the scan (status=fail),
// aggregated across all occurrences of the same policy id.
type BlockingPolicy struct {
	PolicyID string `json:"policy_id"`
	Category string `json:"category"`
	Severity string `json:"severity"`
	Priority int    `json:"priority"` // 0=P0 (highest) to 4=P4 (lowest)
	Effort   string `json:"effort"`   // "high", "medium", "low"

	Components []Component `json:"components,omitempty"`
	CVEIDs     []string    `json:"cve_ids,omitempty"`
}

// CVEDetail carries per-vulnerability facts referenced from issue bodies.
type CVEDetail struct {
	BaseScore float64 `json:"base_score,omitempty"`
	Exploited bool    `json:"exploited"`
	Fixable   bool    `json:"fixable"`
}
