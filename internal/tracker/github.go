package tracker

import (
	"context"
	"fmt"

	"github.com/google/go-github/v47/github"
	"github.com/hashicorp/go-hclog"
	"golang.org/x/oauth2"
)

// Client wraps the GitHub Issues API for one repository, deduplicating issues
// by the `[<policy-id>]` marker this tool puts in every title.
type Client struct {
	gh     *github.Client
	owner  string
	repo   string
	logger hclog.Logger
}

// New builds an authenticated client for owner/repo.
func New(ctx context.Context, token, owner, repo string, logger hclog.Logger) *Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	return &Client{
		gh:     github.NewClient(oauth2.NewClient(ctx, ts)),
		owner:  owner,
		repo:   repo,
		logger: logger,
	}
}

// NewWithClient builds a Client around an existing go-github client. Used by
// tests to point the client at a stub server.
func NewWithClient(gh *github.Client, owner, repo string, logger hclog.Logger) *Client {
	return &Client{gh: gh, owner: owner, repo: repo, logger: logger}
}

// FindOpenIssue returns the first open issue whose title carries the policy
// id marker, or nil when none exists.
func (c *Client) FindOpenIssue(ctx context.Context, policyID string) (*github.Issue, error) {
	query := fmt.Sprintf(`repo:%s/%s is:issue is:open "[%s]" in:title`, c.owner, c.repo, policyID)
	result, _, err := c.gh.Search.Issues(ctx, query, &github.SearchOptions{})
	if err != nil {
		return nil, fmt.Errorf("search issues for %q: %w", policyID, err)
	}
	if len(result.Issues) == 0 {
		return nil, nil
	}
	return result.Issues[0], nil
}

// CreateIssue creates a new issue and returns it.
func (c *Client) CreateIssue(ctx context.Context, title, body string, labels []string) (*github.Issue, error) {
	req := &github.IssueRequest{
		Title: github.String(title),
		Body:  github.String(body),
	}
	if len(labels) > 0 {
		req.Labels = &labels
	}

	issue, _, err := c.gh.Issues.Create(ctx, c.owner, c.repo, req)
	if err != nil {
		return nil, fmt.Errorf("create issue %q: %w", title, err)
	}
	return issue, nil
}

// CreateIfNew creates an issue for the policy only when no open issue for it
// exists. Returns the issue and whether it was created by this call.
func (c *Client) CreateIfNew(ctx context.Context, policyID, title, body string, labels []string) (*github.Issue, bool, error) {
	existing, err := c.FindOpenIssue(ctx, policyID)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		c.logger.Debug("open issue already exists for policy", "policy", policyID, "number", existing.GetNumber())
		return existing, false, nil
	}

	issue, err := c.CreateIssue(ctx, title, body, labels)
	if err != nil {
		return nil, false, err
	}
	return issue, true, nil
}
