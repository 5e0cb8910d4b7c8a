package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"codexa/internal/common"

	"go.uber.org/zap"
)

func newAITestEnv(t *testing.T, handler http.Handler) *AIService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAIService(srv.URL, "test-key", "test-model", zap.NewNop())
}

func chatRequest() ChatRequest {
	return ChatRequest{
		Messages: []ChatMessage{
			{Role: "user", Parts: []ChatPart{{Text: "How do I start?"}}},
			{Role: "assistant", Parts: []ChatPart{{Text: "Think about a hash map."}}},
		},
		Title:       "Two Sum",
		Description: "Find two numbers adding to target.",
	}
}

func TestChat(t *testing.T) {
	var gotPath string
	var gotBody generateContentRequest
	svc := newAITestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		if r.URL.Query().Get("key") != "test-key" {
			t.Error("api key not passed")
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]string{{"text": "Use two pointers."}}}},
			},
		})
	}))

	resp, err := svc.Chat(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("Chat error: %v", err)
	}
	if resp.Message != "Use two pointers." {
		t.Errorf("message = %q", resp.Message)
	}
	if gotPath != "/v1beta/models/test-model:generateContent" {
		t.Errorf("path = %q", gotPath)
	}
	if gotBody.SystemInstruction == nil || !strings.Contains(gotBody.SystemInstruction.Parts[0].Text, "Two Sum") {
		t.Error("system instruction missing the problem context")
	}
	// non-user roles are mapped to the API's model role
	if gotBody.Contents[0].Role != "user" || gotBody.Contents[1].Role != "model" {
		t.Errorf("roles = %q/%q", gotBody.Contents[0].Role, gotBody.Contents[1].Role)
	}
	if gotBody.GenerationConfig.MaxOutputTokens != 2048 {
		t.Errorf("maxOutputTokens = %d", gotBody.GenerationConfig.MaxOutputTokens)
	}
}

func TestChatValidation(t *testing.T) {
	svc := NewAIService("http://unused", "test-key", "m", zap.NewNop())

	req := chatRequest()
	req.Messages = nil
	if _, err := svc.Chat(context.Background(), req); !errors.Is(err, common.ErrValidation) {
		t.Errorf("no messages: got %v", err)
	}

	req = chatRequest()
	req.Title = ""
	if _, err := svc.Chat(context.Background(), req); !errors.Is(err, common.ErrValidation) {
		t.Errorf("no title: got %v", err)
	}
}

func TestChatUnconfigured(t *testing.T) {
	svc := NewAIService("http://unused", "", "m", zap.NewNop())
	if _, err := svc.Chat(context.Background(), chatRequest()); !errors.Is(err, common.ErrInternalServer) {
		t.Fatalf("expected ErrInternalServer, got %v", err)
	}
}

func TestChatUpstreamErrors(t *testing.T) {
	rateLimited := newAITestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	_, err := rateLimited.Chat(context.Background(), chatRequest())
	if err == nil || !strings.Contains(err.Error(), "high usage") {
		t.Errorf("rate limit: got %v", err)
	}

	empty := newAITestEnv(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	}))
	if _, err := empty.Chat(context.Background(), chatRequest()); !errors.Is(err, common.ErrInternalServer) {
		t.Errorf("empty candidates: got %v", err)
	}
}
