package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"carinfo/api/internal/vision"
)

type Engine struct {
	APIKey string
	Model  string
}

func New(apiKey, model string) *Engine {
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		Model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string     { return "gemini" }
func (e *Engine) GetModel() string { return e.Model }

func (e *Engine) Complete(ctx context.Context, in vision.Request) (string, error) {
	if e.APIKey == "" {
		return "", errors.New("GEMINI_API_KEY is empty")
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return "", err
	}
	defer cl.Close()

	m := cl.GenerativeModel(e.Model)
	if m == nil {
		return "", fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = generationConfig(in)
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(in.System)},
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text(in.User),
		&genai.Blob{MIMEType: in.MIME, Data: in.Image},
	)
	if err != nil {
		return "", e.classify(err)
	}
	txt := firstText(resp)
	if txt == "" {
		return "", fmt.Errorf("gemini: empty response")
	}
	return txt, nil
}

func generationConfig(in vision.Request) genai.GenerationConfig {
	cfg := genai.GenerationConfig{
		Temperature: ptrFloat32(in.Temperature),
	}
	if in.MaxTokens > 0 {
		cfg.MaxOutputTokens = ptrInt32(int32(in.MaxTokens))
	}
	if in.JSON {
		cfg.ResponseMIMEType = "application/json"
	}
	return cfg
}

// classify turns quota errors from either transport into a 429 APIError so the
// caller's throttle handling does not depend on the backend.
func (e *Engine) classify(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		msg := strings.TrimSpace(gerr.Message)
		if msg == "" {
			msg = strings.TrimSpace(gerr.Body)
		}
		return &vision.APIError{Engine: e.Name(), StatusCode: gerr.Code, Message: msg}
	}
	if st, ok := status.FromError(err); ok && st.Code() == codes.ResourceExhausted {
		return &vision.APIError{Engine: e.Name(), StatusCode: http.StatusTooManyRequests, Message: st.Message()}
	}
	return err
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
func ptrInt32(v int32) *int32       { return &v }
