// Package retrieve fetches textual content for discovered paths, skipping
// binaries and oversized blobs, and records a disposition for every path.
package retrieve

import (
	"context"
	"fmt"
	"strings"

	"repodoctor/internal/hosting"
	"repodoctor/internal/pipeline"
)

// Stage fetches file contents in discovery order until MaxFiles
// successful fetches have accumulated.
type Stage struct {
	Host       hosting.Client
	BinaryExts []string
	MaxFiles   int
	MaxBytes   int
}

// New creates the retrieve stage.
func New(host hosting.Client, binaryExts []string, maxFiles, maxBytes int) *Stage {
	return &Stage{Host: host, BinaryExts: binaryExts, MaxFiles: maxFiles, MaxBytes: maxBytes}
}

// Name implements pipeline.Stage.
func (st *Stage) Name() string { return "retrieve" }

// Run implements pipeline.Stage. Per-file fetch errors are soft and land
// in the disposition map; only failure to resolve the repository itself
// aborts the stage.
func (st *Stage) Run(ctx context.Context, s pipeline.State) pipeline.StageResult {
	// Repository-level preflight: the per-path errors below must mean
	// "this path", not "the repository is gone".
	if _, err := st.Host.DefaultBranch(ctx, s.Owner, s.Project); err != nil {
		return pipeline.Abort(fmt.Sprintf("resolve repository: %v", err))
	}

	contents := make(map[string]string)
	dispositions := make(map[string]pipeline.Disposition)
	count := 0

	for _, path := range s.FilePaths {
		if count >= st.MaxFiles {
			// Remaining paths are cut off collectively, not one by one.
			s.FetchTruncated = true
			break
		}

		if st.binary(path) {
			dispositions[path] = pipeline.Disposition{Skipped: "binary"}
			continue
		}

		raw, err := st.Host.Blob(ctx, s.Owner, s.Project, s.Branch, path)
		if err != nil {
			dispositions[path] = pipeline.Disposition{Error: err.Error()}
			continue
		}
		if len(raw) > st.MaxBytes {
			dispositions[path] = pipeline.Disposition{Skipped: "too_large", SizeBytes: len(raw)}
			continue
		}

		contents[path] = decode(raw)
		dispositions[path] = pipeline.Disposition{Fetched: true, SizeBytes: len(raw)}
		count++
	}

	s.Contents = contents
	s.Dispositions = dispositions
	return pipeline.Continue(s)
}

func (st *Stage) binary(path string) bool {
	low := strings.ToLower(path)
	for _, ext := range st.BinaryExts {
		if strings.HasSuffix(low, ext) {
			return true
		}
	}
	return false
}

// decode interprets raw bytes as UTF-8, replacing invalid sequences.
// This cannot fail, which makes a secondary fallback encoding
// unreachable; the original tool's latin-1 branch is dropped for that
// reason.
func decode(raw []byte) string {
	return strings.ToValidUTF8(string(raw), "�")
}
