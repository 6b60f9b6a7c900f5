// Package llm is the text-generation collaborator boundary. The pipeline
// depends only on Generator; concrete clients are constructed once by
// the CLI and injected into the stages that need them.
package llm

import "context"

// Generator is a blocking single-shot text-generation call. It must
// return a catchable error, never crash, when the backend is absent.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
