package reportissues

import (
	"fmt"
	"strings"
)

// validate validates the RunOptions for the report-issues command.
func validate(o *RunOptions) error {
	if strings.TrimSpace(o.ReportPath) == "" {
		return fmt.Errorf("--report is required")
	}
	if o.PolicyConfigPath != "" && o.PolicyDir != "" {
		return fmt.Errorf("--policy-config and --policy-dir are mutually exclusive")
	}
	if o.MetadataDir != "" && o.MetadataURL != "" {
		return fmt.Errorf("--metadata-dir and --metadata-url are mutually exclusive")
	}
	if o.MaxIssues < 0 {
		return fmt.Errorf("--max-issues must not be negative")
	}
	if !o.DryRun {
		if o.Namespace == "" {
			return fmt.Errorf("--namespace is required")
		}
		if o.Repository == "" {
			return fmt.Errorf("--repository is required")
		}
	}
	return nil
}
