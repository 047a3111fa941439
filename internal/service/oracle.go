package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"github.com/set-night/sharemitra/internal/config"
	"github.com/set-night/sharemitra/internal/domain"
)

const oracleServiceName = "oracle"

// OracleService talks to an OpenAI-compatible chat completions endpoint
// with vision input.
type OracleService struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

func NewOracleService(apiKey, baseURL, model string) *OracleService {
	return &OracleService{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{Timeout: config.OracleTimeout},
	}
}

type ChatMessage struct {
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

type ChatRequest struct {
	Model     string        `json:"model"`
	Messages  []ChatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Ask sends one user turn with a prompt and an inline image and returns the
// assistant text. Failures are *domain.ExternalError with code
// oracle_unreachable, oracle_rejected or malformed_oracle_response.
func (s *OracleService) Ask(ctx context.Context, prompt string, image []byte, maxTokens int) (string, error) {
	chatReq := ChatRequest{
		Model: s.model,
		Messages: []ChatMessage{{
			Role: "user",
			Content: []ContentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &ImageURL{URL: dataURI(image)}},
			},
		}},
		MaxTokens: maxTokens,
	}

	payload, err := json.Marshal(chatReq)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", &domain.ExternalError{Service: oracleServiceName, Code: domain.CodeOracleUnreachable, Payload: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &domain.ExternalError{Service: oracleServiceName, Code: domain.CodeOracleUnreachable, Payload: err.Error(), Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &domain.ExternalError{
			Service: oracleServiceName,
			Code:    domain.CodeOracleRejected,
			Payload: string(body),
			Err:     fmt.Errorf("status %d", resp.StatusCode),
		}
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", &domain.ExternalError{Service: oracleServiceName, Code: domain.CodeMalformedOracleResponse, Payload: string(body), Err: err}
	}
	if len(chatResp.Choices) == 0 {
		return "", &domain.ExternalError{
			Service: oracleServiceName,
			Code:    domain.CodeMalformedOracleResponse,
			Payload: string(body),
			Err:     fmt.Errorf("no choices in response"),
		}
	}

	return chatResp.Choices[0].Message.Content, nil
}

func dataURI(image []byte) string {
	mime := http.DetectContentType(image)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
}
