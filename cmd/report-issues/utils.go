package reportissues

import (
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/rl-gate/rl-gate/internal/findings"
	"github.com/rl-gate/rl-gate/internal/metadata"
	"github.com/rl-gate/rl-gate/pkg/shared/config"
	"github.com/rl-gate/rl-gate/pkg/shared/httpclient"
)

// applyConfigDefaults fills tracker options from the YAML config when the
// corresponding flags were not given.
func applyConfigDefaults(opts *RunOptions, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if opts.Namespace == "" {
		opts.Namespace = cfg.Tracker.Namespace
	}
	if opts.Repository == "" {
		opts.Repository = cfg.Tracker.Repository
	}
	if len(opts.Labels) == 0 {
		opts.Labels = cfg.Tracker.Labels
	}
}

// ApplyEnvironmentFallbacks applies environment variable fallbacks to the run options.
// It sets namespace and repository from GitHub environment variables if not already provided.
func ApplyEnvironmentFallbacks(opts *RunOptions) {
	// Fallback: if --namespace not provided, try $GITHUB_REPOSITORY_OWNER
	if strings.TrimSpace(opts.Namespace) == "" {
		if ns := strings.TrimSpace(os.Getenv("GITHUB_REPOSITORY_OWNER")); ns != "" {
			opts.Namespace = ns
		}
	}

	// Fallback: if --repository not provided, try ${GITHUB_REPOSITORY#*/}
	if strings.TrimSpace(opts.Repository) == "" {
		if gr := strings.TrimSpace(os.Getenv("GITHUB_REPOSITORY")); gr != "" {
			if idx := strings.Index(gr, "/"); idx >= 0 && idx < len(gr)-1 {
				opts.Repository = gr[idx+1:]
			} else {
				// No slash present; fall back to the whole value
				opts.Repository = gr
			}
		}
	}
}

// loadMetadata enriches the surviving policies with documentation, from a
// local directory or over HTTP. Best-effort: any failure yields partial or
// empty metadata, never an error.
func loadMetadata(policies []findings.BlockingPolicy, opts *RunOptions, lg hclog.Logger) map[string]metadata.PolicyMetadata {
	if len(policies) == 0 {
		return map[string]metadata.PolicyMetadata{}
	}

	policyIDs := make([]string, 0, len(policies))
	for _, p := range policies {
		policyIDs = append(policyIDs, p.PolicyID)
	}

	switch {
	case opts.MetadataDir != "":
		return metadata.LoadFromDir(policyIDs, opts.MetadataDir, lg)
	case opts.MetadataURL != "":
		client := httpclient.InitializeRestyClient(lg, AppConfig)
		meta, err := metadata.Fetch(policyIDs, opts.MetadataURL, client, lg)
		if err != nil {
			lg.Warn("metadata fetch failed, issues will be filed without enrichment", "error", err)
		}
		return meta
	default:
		return map[string]metadata.PolicyMetadata{}
	}
}
