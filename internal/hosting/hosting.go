// Package hosting abstracts the repository-hosting provider behind the
// three read-only operations the pipeline needs: default-branch lookup,
// tree listing, and blob fetch.
package hosting

import "context"

// Entry is one item of a directory listing.
type Entry struct {
	Name string
	Path string
	Type string // "file" or "dir"
}

// Client is the narrow collaborator interface consumed by the discover
// and retrieve stages.
type Client interface {
	// DefaultBranch resolves the repository's default branch. It also
	// serves as the existence check for the repository itself.
	DefaultBranch(ctx context.Context, owner, project string) (string, error)

	// ListTree lists the entries of one directory (repository root for "").
	ListTree(ctx context.Context, owner, project, branch, dir string) ([]Entry, error)

	// Blob fetches the raw bytes of a single file.
	Blob(ctx context.Context, owner, project, branch, path string) ([]byte, error)
}
