package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"codexa/internal/common"

	"go.uber.org/zap"
)

// AIService is a thin pass-through to the generative-AI chat API, scoped to
// tutoring on the current problem.
type AIService struct {
	baseURL string
	apiKey  string
	model   string
	http    *http.Client
	logger  *zap.Logger
}

func NewAIService(baseURL, apiKey, model string, logger *zap.Logger) *AIService {
	return &AIService{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  logger,
	}
}

type ChatPart struct {
	Text string `json:"text"`
}

type ChatMessage struct {
	Role  string     `json:"role"`
	Parts []ChatPart `json:"parts"`
}

type ChatRequest struct {
	Messages    []ChatMessage   `json:"messages"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	TestCases   json.RawMessage `json:"testCases,omitempty"`
	StartCode   json.RawMessage `json:"startCode,omitempty"`
}

type ChatResponse struct {
	Message string `json:"message"`
}

type generateContentRequest struct {
	SystemInstruction *content         `json:"system_instruction,omitempty"`
	Contents          []content        `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string     `json:"role,omitempty"`
	Parts []ChatPart `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

const tutorPromptFormat = `You are an expert Data Structures and Algorithms (DSA) tutor helping a user solve the coding problem below. Your role is strictly limited to DSA assistance for this problem.

[PROBLEM_TITLE]: %s
[PROBLEM_DESCRIPTION]: %s
[EXAMPLES]: %s
[START_CODE]: %s

Capabilities: give step-by-step hints without revealing the full solution unless asked; review and debug submitted code with explanations; explain optimal solutions with complexity analysis; suggest alternative approaches and their trade-offs; help construct edge-case test inputs.

Limitations: only discuss the current problem. If asked about unrelated topics, politely redirect to the problem. Encourage understanding over memorization and explain the reasoning behind algorithmic choices. Respond in the language the user is comfortable with.`

// Chat forwards the conversation, with the tutoring system prompt and problem
// context, to the generative-AI API and returns the model's reply.
func (s *AIService) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if s.apiKey == "" {
		return nil, common.Errorf("AI service is not configured: %w", common.ErrInternalServer)
	}
	if len(req.Messages) == 0 || req.Title == "" || req.Description == "" {
		return nil, common.Errorf("missing required fields: messages, title, or description: %w", common.ErrValidation)
	}

	prompt := fmt.Sprintf(tutorPromptFormat, req.Title, req.Description, string(req.TestCases), string(req.StartCode))

	contents := make([]content, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := "model"
		if m.Role == "user" {
			role = "user"
		}
		contents = append(contents, content{Role: role, Parts: m.Parts})
	}

	body, err := json.Marshal(generateContentRequest{
		SystemInstruction: &content{Parts: []ChatPart{{Text: prompt}}},
		Contents:          contents,
		GenerationConfig:  generationConfig{MaxOutputTokens: 2048, Temperature: 0.7},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.http.Do(httpReq)
	if err != nil {
		return nil, common.Errorf("AI service unreachable: %v: %w", err, common.ErrInternalServer)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, common.Errorf("AI service is temporarily unavailable due to high usage: %w", common.ErrInternalServer)
	}
	if resp.StatusCode != http.StatusOK {
		s.logger.Warn("AI service returned non-OK status", zap.Int("status", resp.StatusCode))
		return nil, common.Errorf("AI service error (status %d): %w", resp.StatusCode, common.ErrInternalServer)
	}

	var out generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return nil, common.Errorf("AI service returned no content: %w", common.ErrInternalServer)
	}

	return &ChatResponse{Message: out.Candidates[0].Content.Parts[0].Text}, nil
}
