package vision

import (
	"context"
	"fmt"
	"strings"
)

// Request is one multimodal completion: a system instruction, a user
// instruction and a single inline image.
type Request struct {
	System      string
	User        string
	Image       []byte
	MIME        string
	Temperature float32
	MaxTokens   int
	// JSON asks the backend to constrain its output to a JSON object.
	JSON bool
}

// Engine is a remote inference backend. Complete returns the raw text of the
// first answer. A throttled call must surface as *APIError with
// StatusCode 429 so callers can tell it apart with IsRateLimited.
type Engine interface {
	Name() string
	GetModel() string
	Complete(ctx context.Context, req Request) (string, error)
}

type Engines struct {
	OpenAI Engine
	Gemini Engine
}

func (e *Engines) GetEngine(llmName string) (Engine, error) {
	switch strings.ToLower(strings.TrimSpace(llmName)) {
	case "gpt", "openai":
		if e.OpenAI != nil {
			return e.OpenAI, nil
		}
	case "gemini":
		if e.Gemini != nil {
			return e.Gemini, nil
		}
	default:
		return nil, fmt.Errorf("unknown llm_name %q; use 'openai' or 'gemini'", llmName)
	}
	return nil, fmt.Errorf("llm %q is not configured", llmName)
}
