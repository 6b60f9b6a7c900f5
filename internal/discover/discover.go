// Package discover resolves a repository reference and enumerates
// candidate file paths under an extension allow-list.
package discover

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"repodoctor/internal/hosting"
	"repodoctor/internal/pipeline"
)

// ErrMalformedReference marks a repository reference that does not
// resolve to at least owner and project segments.
var ErrMalformedReference = errors.New("could not parse repository owner/project from reference")

// ParseReference extracts (owner, project) from a repository reference.
// Accepted shapes:
//
//	owner/project
//	https://github.com/owner/project
//	https://github.com/owner/project.git
func ParseReference(ref string) (owner, project string, err error) {
	ref = strings.TrimSpace(ref)

	if strings.Contains(ref, "/") && !strings.HasPrefix(ref, "http") {
		parts := strings.Split(ref, "/")
		if len(parts) >= 2 && parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], nil
		}
		return "", "", fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}

	u, uerr := url.Parse(ref)
	if uerr != nil {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}
	path := strings.TrimPrefix(u.Path, "/")
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %q", ErrMalformedReference, ref)
	}
	return parts[0], parts[1], nil
}

// Stage resolves the reference, picks a branch, and walks the repository
// tree breadth-first collecting allow-listed paths up to MaxFiles.
type Stage struct {
	Host       hosting.Client
	Extensions []string
	MaxFiles   int
}

// New creates the discover stage.
func New(host hosting.Client, extensions []string, maxFiles int) *Stage {
	return &Stage{Host: host, Extensions: extensions, MaxFiles: maxFiles}
}

// Name implements pipeline.Stage.
func (st *Stage) Name() string { return "discover" }

// Run implements pipeline.Stage. A malformed reference or any traversal
// error is stage-fatal; truncation at MaxFiles is silent.
func (st *Stage) Run(ctx context.Context, s pipeline.State) pipeline.StageResult {
	owner, project, err := ParseReference(s.Reference)
	if err != nil {
		return pipeline.Abort(err.Error())
	}

	branch := s.Branch
	if branch == "" {
		branch, err = st.Host.DefaultBranch(ctx, owner, project)
		if err != nil {
			return pipeline.Abort(fmt.Sprintf("resolve default branch: %v", err))
		}
	}

	paths, err := st.walk(ctx, owner, project, branch)
	if err != nil {
		return pipeline.Abort(fmt.Sprintf("list repository tree: %v", err))
	}

	s.Owner = owner
	s.Project = project
	s.Branch = branch
	s.FilePaths = paths
	return pipeline.Continue(s)
}

// walk traverses the tree level by level. Collection stops as soon as
// MaxFiles paths are gathered; remaining directories are not visited.
func (st *Stage) walk(ctx context.Context, owner, project, branch string) ([]string, error) {
	var paths []string
	queue := []string{""}

	for len(queue) > 0 && len(paths) < st.MaxFiles {
		dir := queue[0]
		queue = queue[1:]

		entries, err := st.Host.ListTree(ctx, owner, project, branch, dir)
		if err != nil {
			return nil, err
		}

		for _, e := range entries {
			if e.Type == "dir" {
				queue = append(queue, e.Path)
				continue
			}
			if st.allowed(e.Name) {
				paths = append(paths, e.Path)
				if len(paths) >= st.MaxFiles {
					break
				}
			}
		}
	}
	return paths, nil
}

func (st *Stage) allowed(name string) bool {
	low := strings.ToLower(name)
	for _, ext := range st.Extensions {
		if strings.HasSuffix(low, ext) {
			return true
		}
	}
	return false
}
