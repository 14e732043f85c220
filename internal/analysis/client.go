package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"iamaudit/internal/domain"
	"iamaudit/internal/logging"
)

const (
	defaultBaseURL = "https://api.openai.com/v1/chat/completions"

	systemPrompt = "You are a AWS IAM expert."

	overviewPrompt = "Using the following data please give a description of what the ARN, " +
		"its capabilities, if it meets IAM best practice and if it's a security concern. " +
		"Please lay this out in the following JSON format: {ARN_capabilities: description, " +
		"Best_Practice: bool, BestPractice_description: description, Security_Concerns: bool, " +
		"SecurityDescription: description, Recommendations: description}"

	policyPrompt = "Please analyze the following IAM policy, giving insights on best practice, " +
		"security, services, and resources it allows access to. Please summarize in 4 sentences " +
		"and align to frameworks NIST 800-53 and ISO 27001."
)

// ClientConfig configures the analysis-service client
type ClientConfig struct {
	APIKey        string
	BaseURL       string
	OverviewModel string
	PolicyModel   string
	Timeout       time.Duration
}

// Client calls the external analysis service. Transport and service-side
// failures never escape: callers always receive a well-formed result.
type Client struct {
	apiKey        string
	baseURL       string
	overviewModel string
	policyModel   string
	httpClient    *http.Client
}

// NewClient returns a Client for the analysis service
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       cfg.BaseURL,
		overviewModel: cfg.OverviewModel,
		policyModel:   cfg.PolicyModel,
		httpClient:    &http.Client{Timeout: cfg.Timeout},
	}
}

// Chat completions request/response types
type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// AnalyzeEntity sends one principal overview payload and returns the parsed
// structured verdict. Transport and status failures yield the all-sentinel
// result with a nil error; a post-repair parse failure is returned as an
// error for this single call, alongside the sentinel result.
func (c *Client) AnalyzeEntity(ctx context.Context, payload string) (domain.AnalysisResult, error) {
	raw, err := c.complete(ctx, c.overviewModel, overviewPrompt+"  "+payload, 2000, true)
	if err != nil {
		logging.LogWarn("Entity analysis call failed", map[string]interface{}{"error": err.Error()})
		return domain.UnavailableAnalysis(), nil
	}
	return ParseOverview(raw)
}

// AnalyzePolicy sends one policy document for a free-text summary. Any
// failure yields the AnalysisFailed sentinel; no error escapes.
func (c *Client) AnalyzePolicy(ctx context.Context, document string) string {
	raw, err := c.complete(ctx, c.policyModel, policyPrompt+"\n\n"+document, 150, false)
	if err != nil {
		logging.LogWarn("Policy analysis call failed", map[string]interface{}{"error": err.Error()})
		return domain.AnalysisFailed
	}
	return raw
}

func (c *Client) complete(ctx context.Context, model, userPrompt string, maxTokens int, jsonReply bool) (string, error) {
	request := chatRequest{
		Model: model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens: maxTokens,
	}
	if jsonReply {
		request.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("failed to encode analysis request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build analysis request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	logging.LogAPICall("analysis:"+model, err == nil, time.Since(start), err)
	if err != nil {
		return "", fmt.Errorf("analysis request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read analysis response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("analysis service returned status %d: %s", resp.StatusCode, truncate(string(data), 200))
	}

	var reply chatResponse
	if err := json.Unmarshal(data, &reply); err != nil {
		return "", fmt.Errorf("failed to decode analysis envelope: %w", err)
	}
	if reply.Error != nil {
		return "", fmt.Errorf("analysis service error: %s", reply.Error.Message)
	}
	if len(reply.Choices) == 0 {
		return "", fmt.Errorf("analysis service returned no choices")
	}

	return strings.TrimSpace(reply.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
