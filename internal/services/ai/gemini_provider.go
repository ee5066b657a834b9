// File: internal/services/ai/gemini_provider.go
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/iyunix/go-assistant/internal/domain"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider calls the Google AI Studio generateContent endpoint.
type GeminiProvider struct {
	config     *Config
	baseURL    string
	httpClient *http.Client
}

func NewGeminiProvider(config *Config) (*GeminiProvider, error) {
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, NewConfigError("gemini api key required")
	}
	baseURL := defaultGeminiBaseURL
	if config.BaseURL != "" {
		baseURL = strings.TrimRight(config.BaseURL, "/")
	}
	return &GeminiProvider{
		config:     config,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

func (p *GeminiProvider) Name() string { return "gemini" }

// Complete sends every prior message as history and the last one as the live turn.
func (p *GeminiProvider) Complete(ctx context.Context, history []domain.Message) (string, error) {
	if len(history) == 0 {
		return "", NewValidationError("completion", "history is empty")
	}

	reqBody := generateRequest{
		Contents: make([]content, 0, len(history)),
		GenerationConfig: &generationConfig{
			Temperature: p.config.Temperature,
			TopP:        p.config.TopP,
		},
	}
	for _, msg := range history {
		reqBody.Contents = append(reqBody.Contents, content{
			Role:  geminiRole(msg.Role),
			Parts: []part{{Text: msg.Content}},
		})
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, normalizeModel(p.config.Model), p.config.APIKey)
	var resp generateResponse
	if err := p.doJSON(ctx, url, reqBody, &resp); err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", &AIError{Type: ErrTypeProvider, Provider: p.Name(), Operation: "completion", Message: "empty response from gemini"}
	}

	var b strings.Builder
	for _, pt := range resp.Candidates[0].Content.Parts {
		b.WriteString(pt.Text)
	}
	return b.String(), nil
}

// geminiRole maps our roles onto Gemini's: anything not from the user is the model.
func geminiRole(role domain.Role) string {
	if role == domain.RoleUser {
		return "user"
	}
	return "model"
}

func normalizeModel(model string) string {
	model = strings.TrimSpace(model)
	return strings.TrimPrefix(model, "models/")
}

func (p *GeminiProvider) doJSON(ctx context.Context, url string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return &AIError{Type: ErrTypeNetwork, Provider: p.Name(), Operation: "completion", Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&errResp)
		msg := errResp.Error.Message
		if msg == "" {
			msg = resp.Status
		}
		errType := ErrTypeProvider
		if resp.StatusCode == http.StatusTooManyRequests {
			errType = ErrTypeRateLimit
		}
		return &AIError{Type: errType, Code: resp.StatusCode, Provider: p.Name(), Operation: "completion", Message: "gemini api error: " + msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	Temperature float32 `json:"temperature,omitempty"`
	TopP        float32 `json:"topP,omitempty"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}
