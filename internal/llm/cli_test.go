package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCLIGenerate_TrimsOutput(t *testing.T) {
	c := NewCLI("test-model", time.Minute)
	c.run = func(ctx context.Context, prompt string) (string, error) {
		return "  answer  \n", nil
	}

	out, err := c.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "answer" {
		t.Errorf("out = %q", out)
	}
}

func TestCLIGenerate_EmptyPrompt(t *testing.T) {
	c := NewCLI("test-model", time.Minute)
	c.run = func(ctx context.Context, prompt string) (string, error) {
		t.Error("the backend must not be invoked for an empty prompt")
		return "", nil
	}

	out, err := c.Generate(context.Background(), "")
	if err != nil || out != "" {
		t.Errorf("got %q, %v", out, err)
	}
}

func TestCLIGenerate_Timeout(t *testing.T) {
	c := NewCLI("test-model", 5*time.Millisecond)
	c.run = func(ctx context.Context, prompt string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	}

	_, err := c.Generate(context.Background(), "prompt")
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("err = %v, want timeout", err)
	}
}

func TestCLIGenerate_PropagatesBackendError(t *testing.T) {
	c := NewCLI("test-model", time.Minute)
	backendErr := errors.New("ollama run: model not found")
	c.run = func(ctx context.Context, prompt string) (string, error) {
		return "", backendErr
	}

	_, err := c.Generate(context.Background(), "prompt")
	if !errors.Is(err, backendErr) {
		t.Errorf("err = %v, want backend error", err)
	}
}
