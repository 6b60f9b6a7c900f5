package hosting

import (
	"context"
	"fmt"

	"github.com/google/go-github/v61/github"
)

// GitHub implements Client against the GitHub REST API. An empty token
// gives reduced-rate anonymous access to public repositories.
type GitHub struct {
	c *github.Client
}

// NewGitHub creates a GitHub client, authenticated when token is non-empty.
func NewGitHub(token string) *GitHub {
	c := github.NewClient(nil)
	if token != "" {
		c = c.WithAuthToken(token)
	}
	return &GitHub{c: c}
}

// DefaultBranch implements Client.
func (g *GitHub) DefaultBranch(ctx context.Context, owner, project string) (string, error) {
	repo, _, err := g.c.Repositories.Get(ctx, owner, project)
	if err != nil {
		return "", fmt.Errorf("get repository %s/%s: %w", owner, project, err)
	}
	branch := repo.GetDefaultBranch()
	if branch == "" {
		return "", fmt.Errorf("repository %s/%s has no default branch", owner, project)
	}
	return branch, nil
}

// ListTree implements Client.
func (g *GitHub) ListTree(ctx context.Context, owner, project, branch, dir string) ([]Entry, error) {
	opts := &github.RepositoryContentGetOptions{Ref: branch}
	_, listing, _, err := g.c.Repositories.GetContents(ctx, owner, project, dir, opts)
	if err != nil {
		return nil, fmt.Errorf("list %s/%s:%s %q: %w", owner, project, branch, dir, err)
	}
	if listing == nil {
		return nil, fmt.Errorf("list %s/%s:%s %q: not a directory", owner, project, branch, dir)
	}

	entries := make([]Entry, 0, len(listing))
	for _, item := range listing {
		entries = append(entries, Entry{
			Name: item.GetName(),
			Path: item.GetPath(),
			Type: item.GetType(),
		})
	}
	return entries, nil
}

// Blob implements Client.
func (g *GitHub) Blob(ctx context.Context, owner, project, branch, path string) ([]byte, error) {
	opts := &github.RepositoryContentGetOptions{Ref: branch}
	file, _, _, err := g.c.Repositories.GetContents(ctx, owner, project, path, opts)
	if err != nil {
		return nil, fmt.Errorf("get %s/%s:%s %q: %w", owner, project, branch, path, err)
	}
	if file == nil {
		return nil, fmt.Errorf("get %s/%s:%s %q: not a file", owner, project, branch, path)
	}
	content, err := file.GetContent()
	if err != nil {
		return nil, fmt.Errorf("decode %s/%s:%s %q: %w", owner, project, branch, path, err)
	}
	return []byte(content), nil
}
