package reportissues

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/rl-gate/rl-gate/internal/findings"
	"github.com/rl-gate/rl-gate/internal/metadata"
	"github.com/rl-gate/rl-gate/internal/policy"
	"github.com/rl-gate/rl-gate/internal/render"
	"github.com/rl-gate/rl-gate/internal/report"
	"github.com/rl-gate/rl-gate/internal/sarifexport"
	"github.com/rl-gate/rl-gate/internal/tracker"
	"github.com/rl-gate/rl-gate/pkg/shared/config"
	"github.com/rl-gate/rl-gate/pkg/shared/errors"
	"github.com/rl-gate/rl-gate/pkg/shared/logger"
)

// RunOptions holds flags for the report-issues command.
type RunOptions struct {
	ReportPath       string   `json:"report_path,omitempty"`
	PolicyDir        string   `json:"policy_dir,omitempty"`
	PolicyConfigPath string   `json:"policy_config_path,omitempty"`
	MetadataDir      string   `json:"metadata_dir,omitempty"`
	MetadataURL      string   `json:"metadata_url,omitempty"`
	Namespace        string   `json:"namespace,omitempty"`
	Repository       string   `json:"repository,omitempty"`
	Labels           []string `json:"labels,omitempty"`
	DryRun           bool     `json:"dry_run,omitempty"`
	MaxIssues        int      `json:"max_issues,omitempty"`
	SarifOutput      string   `json:"sarif_output,omitempty"`
}

var (
	AppConfig *config.Config
	opts      RunOptions

	// Example usage for the report-issues command
	exampleReportIssuesUsage = `  # File issues for blocking findings in a scan report
  rlgate report-issues --report report.rl.json --namespace rl-gate --repository rl-gate

  # Auto-detect the policy config next to the scanned sources
  rlgate report-issues --report report.rl.json --policy-dir /path/to/repo

  # Preview without touching the tracker
  rlgate report-issues --report report.rl.json --dry-run

  # Enrich issue bodies from a local metadata bundle and keep a SARIF copy
  rlgate report-issues --report report.rl.json --metadata-dir /opt/rl/metadata --sarif-output findings.sarif

  # Using environment variables (GitHub Actions)
  GITHUB_REPOSITORY_OWNER=rl-gate GITHUB_REPOSITORY=rl-gate/rl-gate GITHUB_TOKEN=*** rlgate report-issues --report report.rl.json`

	// ReportIssuesCmd represents the command to create tracker issues from a scan report.
	ReportIssuesCmd = &cobra.Command{
		Use:                   "report-issues --report PATH [--policy-config PATH | --policy-dir DIR] [--namespace NAMESPACE] [--repository REPO] [--labels label[,label...]] [--dry-run]",
		Short:                 "Create GitHub issues for blocking scan-policy violations",
		Example:               exampleReportIssuesUsage,
		SilenceUsage:          false,
		DisableFlagsInUseLine: true,
		RunE:                  runReportIssues,
	}
)

func init() {
	ReportIssuesCmd.Flags().StringVar(&opts.ReportPath, "report", "", "path to the rl-secure scan report (report.rl.json)")
	ReportIssuesCmd.Flags().StringVar(&opts.PolicyDir, "policy-dir", "", "directory to search for a policy config file (default \".\")")
	ReportIssuesCmd.Flags().StringVar(&opts.PolicyConfigPath, "policy-config", "", "explicit path to a policy config file, overrides auto-detection")
	ReportIssuesCmd.Flags().StringVar(&opts.MetadataDir, "metadata-dir", "", "local directory with policy metadata JSON files")
	ReportIssuesCmd.Flags().StringVar(&opts.MetadataURL, "metadata-url", "", "base URL serving policy metadata JSON files")
	ReportIssuesCmd.Flags().StringVar(&opts.Namespace, "namespace", "", "tracker namespace (org or user); falls back to $GITHUB_REPOSITORY_OWNER")
	ReportIssuesCmd.Flags().StringVar(&opts.Repository, "repository", "", "tracker repository name; falls back to ${GITHUB_REPOSITORY#*/}")
	ReportIssuesCmd.Flags().StringSliceVar(&opts.Labels, "labels", nil, "labels to apply to created issues")
	ReportIssuesCmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "print issues instead of filing them")
	ReportIssuesCmd.Flags().IntVar(&opts.MaxIssues, "max-issues", 10, "maximum number of issues to file per run, 0 for no limit")
	ReportIssuesCmd.Flags().StringVar(&opts.SarifOutput, "sarif-output", "", "also write surviving findings as a SARIF report to this path")
}

// Init wires config into this command.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runReportIssues is the main execution function for the report-issues command.
func runReportIssues(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && cmd.Flags().NFlag() == 0 {
		return cmd.Help()
	}

	lg := logger.NewLogger(AppConfig, "report-issues").With("run_id", uuid.NewString())

	applyConfigDefaults(&opts, AppConfig)
	ApplyEnvironmentFallbacks(&opts)

	if err := validate(&opts); err != nil {
		lg.Error("invalid arguments", "error", err)
		return errors.NewCommandError(opts, fmt.Errorf("invalid arguments: %w", err), 1)
	}

	scan, err := report.ParseFile(opts.ReportPath, lg)
	if err != nil {
		lg.Error("failed to read scan report", "error", err)
		return errors.NewCommandError(opts, fmt.Errorf("failed to read scan report: %w", err), 2)
	}
	if !scan.Failed() {
		lg.Info("scan passed, nothing to report", "artifact", scan.ArtifactName, "status", scan.ScanStatus)
		return nil
	}
	lg.Info("scan failed", "artifact", scan.ArtifactName, "blocking_policies", len(scan.BlockingPolicies))

	cfg, err := resolvePolicyConfig(&opts, lg)
	if err != nil {
		lg.Error("failed to load policy config", "error", err)
		return errors.NewCommandError(opts, fmt.Errorf("failed to load policy config: %w", err), 2)
	}

	survivors, filtered := policy.FilterPolicies(scan.BlockingPolicies, cfg)
	for _, item := range filtered {
		lg.Info("suppressed finding", "policy", item.PolicyID, "component", item.ComponentPath, "reason", item.Reason)
	}
	lg.Info("policy config applied", "remaining", len(survivors), "suppressed", len(filtered))

	meta := loadMetadata(survivors, &opts, lg)

	if opts.SarifOutput != "" {
		sarifReport, err := sarifexport.Build(scan.ArtifactName, survivors, meta)
		if err != nil {
			lg.Error("failed to build SARIF report", "error", err)
			return errors.NewCommandError(opts, fmt.Errorf("failed to build SARIF report: %w", err), 2)
		}
		if err := sarifexport.Write(sarifReport, opts.SarifOutput); err != nil {
			lg.Error("failed to write SARIF report", "error", err)
			return errors.NewCommandError(opts, fmt.Errorf("failed to write SARIF report: %w", err), 2)
		}
		lg.Info("SARIF report written", "path", opts.SarifOutput)
	}

	if len(survivors) == 0 {
		lg.Info("all blocking findings suppressed by policy config")
		if summary := render.FilteredSummary(filtered); summary != "" {
			fmt.Print(summary)
		}
		return nil
	}

	toFile := survivors
	if opts.MaxIssues > 0 && len(toFile) > opts.MaxIssues {
		lg.Warn("too many blocking policies, truncating", "total", len(toFile), "max", opts.MaxIssues)
		toFile = toFile[:opts.MaxIssues]
	}

	if opts.DryRun {
		printDryRun(toFile, meta, scan.CVEDetails)
		if summary := render.FilteredSummary(filtered); summary != "" {
			fmt.Print(summary)
		}
		return nil
	}

	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		lg.Error("GITHUB_TOKEN is not set")
		return errors.NewCommandError(opts, fmt.Errorf("GITHUB_TOKEN environment variable is required"), 1)
	}

	ctx := context.Background()
	client := tracker.New(ctx, token, opts.Namespace, opts.Repository, lg)

	created := 0
	for _, p := range toFile {
		m := metaFor(meta, p.PolicyID)
		title := render.IssueTitle(p, m)
		body := render.IssueBody(p, m, scan.CVEDetails)

		issue, isNew, err := client.CreateIfNew(ctx, p.PolicyID, title, body, opts.Labels)
		if err != nil {
			lg.Error("failed to file issue", "policy", p.PolicyID, "error", err)
			return errors.NewCommandError(opts, fmt.Errorf("failed to file issue for %s: %w", p.PolicyID, err), 2)
		}
		if isNew {
			created++
			lg.Info("issue created", "policy", p.PolicyID, "number", issue.GetNumber(), "url", issue.GetHTMLURL())
		} else {
			lg.Info("issue already open, skipped", "policy", p.PolicyID, "number", issue.GetNumber())
		}
	}

	lg.Info("done", "created", created, "skipped", len(toFile)-created, "suppressed", len(filtered))
	return nil
}

// resolvePolicyConfig loads the policy config from the explicit path when one
// is given, otherwise auto-detects it under the policy dir. No config file
// means an empty config: nothing disabled, nothing filtered.
func resolvePolicyConfig(o *RunOptions, lg hclog.Logger) (*policy.PolicyConfig, error) {
	if o.PolicyConfigPath != "" {
		lg.Info("using policy config", "path", o.PolicyConfigPath)
		return policy.LoadConfig(o.PolicyConfigPath)
	}

	searchDir := o.PolicyDir
	if searchDir == "" {
		searchDir = "."
	}
	if found := policy.FindConfigFile(searchDir); found != "" {
		lg.Info("detected policy config", "path", found)
		return policy.LoadConfig(found)
	}

	lg.Info("no policy config found, reporting all blocking findings", "dir", searchDir)
	return policy.NewPolicyConfig(), nil
}

func printDryRun(policies []findings.BlockingPolicy, meta map[string]metadata.PolicyMetadata, cveDetails map[string]findings.CVEDetail) {
	fmt.Printf("Dry run: would file %d issue(s)\n\n", len(policies))
	for _, p := range policies {
		m := metaFor(meta, p.PolicyID)
		fmt.Printf("--- %s ---\n", render.IssueTitle(p, m))
		fmt.Println(render.IssueBody(p, m, cveDetails))
	}
}

func metaFor(meta map[string]metadata.PolicyMetadata, policyID string) *metadata.PolicyMetadata {
	if m, ok := meta[policyID]; ok {
		return &m
	}
	return nil
}
