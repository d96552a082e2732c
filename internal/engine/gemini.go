package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultGeminiBaseURL is the public generativelanguage endpoint
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

const defaultGeminiModel = "gemini-1.5-flash"

// Gemini implements Engine against the Gemini REST API using structured
// JSON output (responseMimeType + responseSchema).
type Gemini struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewGemini creates a Gemini engine. Model and baseURL fall back to defaults
// when empty; timeout bounds each generation call.
func NewGemini(apiKey, baseURL, model string, timeout time.Duration) *Gemini {
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	if model == "" {
		model = defaultGeminiModel
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gemini{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: timeout},
	}
}

type geminiRequest struct {
	Contents          []geminiContent  `json:"contents"`
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
	ResponseSchema   any     `json:"responseSchema,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// GenerateStructured performs a single generation call. No transport retry:
// one paid attempt is the product contract, and the caller decides whether a
// failure is retryable.
func (g *Gemini) GenerateStructured(ctx context.Context, req Request) (*Response, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}

	gReq := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: req.Prompt}},
		}},
		GenerationConfig: &geminiGenConfig{
			Temperature:      req.Temperature,
			ResponseMimeType: "application/json",
		},
	}
	if req.System != "" {
		gReq.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	if len(req.Schema) > 0 {
		var schema any
		if err := json.Unmarshal(req.Schema, &schema); err == nil {
			gReq.GenerationConfig.ResponseSchema = schema
		}
	}

	body, err := json.Marshal(gReq)
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.baseURL, model, g.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			return nil, NewError(CodeTimeout, "generation timed out", err)
		}
		return nil, NewError(CodeUnknown, err.Error(), err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, g.handleErrorResponse(resp)
	}

	var gResp geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&gResp); err != nil {
		return nil, NewError(CodeUnknown, "malformed engine response", err)
	}

	return parseGeminiResponse(&gResp)
}

func (g *Gemini) handleErrorResponse(resp *http.Response) error {
	raw, _ := io.ReadAll(resp.Body)

	code := CodeUnknown
	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		code = CodeAuthentication
	case http.StatusTooManyRequests:
		code = CodeRateLimit
	case http.StatusBadRequest:
		code = CodeInvalidRequest
	default:
		if resp.StatusCode >= 500 {
			code = CodeServerError
		}
	}

	var gResp geminiResponse
	if err := json.Unmarshal(raw, &gResp); err == nil && gResp.Error != nil {
		return &Error{Code: code, Message: gResp.Error.Message, StatusCode: resp.StatusCode}
	}
	return &Error{Code: code, Message: string(raw), StatusCode: resp.StatusCode}
}

func parseGeminiResponse(resp *geminiResponse) (*Response, error) {
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return nil, NewError(CodeRefusal, "engine refused the prompt: "+resp.PromptFeedback.BlockReason, nil)
	}
	if len(resp.Candidates) == 0 {
		return nil, NewError(CodeRefusal, "no candidates in engine response", nil)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == "SAFETY" {
		return nil, NewError(CodeRefusal, "engine refused to complete the response", nil)
	}

	var content string
	for _, part := range candidate.Content.Parts {
		content += part.Text
	}
	if content == "" {
		return nil, NewError(CodeRefusal, "empty engine response", nil)
	}

	return &Response{Data: json.RawMessage(content)}, nil
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
