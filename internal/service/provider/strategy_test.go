package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/zhiqutech/tiku/internal/model"
	"github.com/zhiqutech/tiku/internal/service/content"
)

// fakePromptSource 测试用提示词来源
type fakePromptSource struct {
	values map[string]string
}

func (f *fakePromptSource) GetPromptValue(key string) (string, error) {
	return f.values[key], nil
}

// ========== 工厂测试 ==========

func TestNewStrategyFamilies(t *testing.T) {
	tests := []struct {
		family   string
		wantName string
		wantErr  bool
	}{
		{family: model.FamilyOpenAI, wantName: "openai"},
		{family: model.FamilyGemini, wantName: "gemini"},
		{family: model.FamilyQwen, wantName: "qwen"},
		{family: model.FamilyCustom, wantErr: true},
		{family: "nonsense", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.family, func(t *testing.T) {
			cfg := &model.ProviderConfig{Family: tt.family, APIKey: "key", Endpoint: "http://localhost"}
			strategy, err := NewStrategy(cfg, Options{ModelName: "m", Kind: model.DocumentKindQuestionBank})
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for family %q, got nil", tt.family)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if strategy.Name() != tt.wantName {
				t.Errorf("expected strategy %q, got %q", tt.wantName, strategy.Name())
			}
		})
	}
}

func TestResolvePrompt(t *testing.T) {
	// 自定义提示词优先
	prompts := &fakePromptSource{values: map[string]string{
		model.SettingKeyQuestionPrompt: "自定义题库提示词",
	}}
	if got := resolvePrompt(prompts, model.DocumentKindQuestionBank); got != "自定义题库提示词" {
		t.Errorf("expected custom prompt, got %q", got)
	}

	// 未配置时回退默认
	if got := resolvePrompt(prompts, model.DocumentKindKnowledgeBase); got != defaultKnowledgePrompt {
		t.Errorf("expected default knowledge prompt")
	}
	if got := resolvePrompt(nil, model.DocumentKindQuestionBank); got != defaultQuestionPrompt {
		t.Errorf("expected default question prompt when source is nil")
	}
}

// ========== gemini 策略测试 ==========

func newTestGemini(t *testing.T, serverURL string) Strategy {
	t.Helper()
	cfg := &model.ProviderConfig{Family: model.FamilyGemini, APIKey: "k", Endpoint: serverURL}
	strategy, err := NewStrategy(cfg, Options{
		ModelName:  "gemini-test",
		Kind:       model.DocumentKindQuestionBank,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	})
	if err != nil {
		t.Fatalf("failed to create strategy: %v", err)
	}
	return strategy
}

func TestGeminiParseSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "k" {
			t.Errorf("missing api key header")
		}

		inner := `{"questions":[{"type":"single","content":"q1","answer":"a","tags":["第1章"]}]}`
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": inner}},
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	result := newTestGemini(t, server.URL).Parse(context.Background(),
		&content.Result{Type: content.TypeText, Text: "题目内容"}, "test.txt")

	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if result.TotalQuestions != 1 {
		t.Fatalf("expected 1 question, got %d", result.TotalQuestions)
	}
	if len(result.RequestPayload) == 0 || len(result.ResponsePayload) == 0 {
		t.Errorf("audit payloads should be populated")
	}
}

func TestGeminiParseAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":{"code":403,"message":"permission denied"}}`))
	}))
	defer server.Close()

	result := newTestGemini(t, server.URL).Parse(context.Background(),
		&content.Result{Type: content.TypeText, Text: "x"}, "test.txt")

	if result.Success {
		t.Fatal("expected failure on non-2xx response")
	}
	if result.Error == "" {
		t.Error("error message should be set")
	}
	if len(result.RequestPayload) == 0 {
		t.Error("request payload should be kept for auditing even on failure")
	}
}

func TestGeminiParseMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not json"))
	}))
	defer server.Close()

	result := newTestGemini(t, server.URL).Parse(context.Background(),
		&content.Result{Type: content.TypeText, Text: "x"}, "test.txt")

	if result.Success {
		t.Fatal("expected failure on malformed response")
	}
}

func TestGeminiParseMissingQuestionsKey(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]interface{}{{"text": `{"items":[]}`}},
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	result := newTestGemini(t, server.URL).Parse(context.Background(),
		&content.Result{Type: content.TypeText, Text: "x"}, "test.txt")

	if result.Success {
		t.Fatal("expected failure when questions array is missing")
	}
	if !strings.Contains(result.Error, "questions") {
		t.Errorf("error should mention the missing questions array, got %q", result.Error)
	}
}

// ========== qwen 策略测试 ==========

func newTestQwen(t *testing.T, serverURL string) Strategy {
	t.Helper()
	cfg := &model.ProviderConfig{Family: model.FamilyQwen, APIKey: "k", Endpoint: serverURL}
	strategy, err := NewStrategy(cfg, Options{
		ModelName:  "qwen-test",
		Kind:       model.DocumentKindQuestionBank,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	})
	if err != nil {
		t.Fatalf("failed to create strategy: %v", err)
	}
	return strategy
}

func TestQwenParseSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer k" {
			t.Errorf("missing bearer auth")
		}

		var req qwenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("request body is not valid: %v", err)
		}
		if req.Parameters.ResultFormat != "message" {
			t.Errorf("expected result_format message, got %q", req.Parameters.ResultFormat)
		}

		inner := `{"questions":[{"type":"multiple","content":"q","answer":"AB"},{"type":"judge","content":"q2","answer":"错"}]}`
		resp := map[string]interface{}{
			"output": map[string]interface{}{
				"choices": []map[string]interface{}{
					{"message": map[string]interface{}{
						"content": []map[string]interface{}{{"text": inner}},
					}},
				},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	result := newTestQwen(t, server.URL).Parse(context.Background(),
		&content.Result{Type: content.TypeBase64, Data: "aW1n", MimeType: "image/png"}, "test.png")

	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if result.TotalQuestions != 2 {
		t.Fatalf("expected 2 questions, got %d", result.TotalQuestions)
	}
}

func TestQwenParseErrorCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":"InvalidApiKey","message":"Invalid API-key provided."}`))
	}))
	defer server.Close()

	result := newTestQwen(t, server.URL).Parse(context.Background(),
		&content.Result{Type: content.TypeText, Text: "x"}, "test.txt")

	if result.Success {
		t.Fatal("expected failure on error code response")
	}
	if !strings.Contains(result.Error, "InvalidApiKey") {
		t.Errorf("error should carry the provider code, got %q", result.Error)
	}
}

// ========== openai 策略测试 ==========

func TestOpenAIParseSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inner := `{"questions":[{"type":"single","content":"q","answer":"A"}]}`
		resp := map[string]interface{}{
			"id":     "chatcmpl-test",
			"object": "chat.completion",
			"model":  "gpt-test",
			"choices": []map[string]interface{}{
				{
					"index":         0,
					"message":       map[string]interface{}{"role": "assistant", "content": inner},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	cfg := &model.ProviderConfig{Family: model.FamilyOpenAI, APIKey: "k", Endpoint: server.URL + "/v1"}
	strategy, err := NewStrategy(cfg, Options{
		ModelName:  "gpt-test",
		Kind:       model.DocumentKindQuestionBank,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	})
	if err != nil {
		t.Fatalf("failed to create strategy: %v", err)
	}

	result := strategy.Parse(context.Background(),
		&content.Result{Type: content.TypeText, Text: "题目"}, "test.txt")

	if !result.Success {
		t.Fatalf("expected success, got error: %s", result.Error)
	}
	if result.TotalQuestions != 1 {
		t.Fatalf("expected 1 question, got %d", result.TotalQuestions)
	}
}

func TestOpenAIParseServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"boom"}}`))
	}))
	defer server.Close()

	cfg := &model.ProviderConfig{Family: model.FamilyOpenAI, APIKey: "k", Endpoint: server.URL + "/v1"}
	strategy, err := NewStrategy(cfg, Options{
		ModelName:  "gpt-test",
		Kind:       model.DocumentKindQuestionBank,
		HTTPClient: &http.Client{Timeout: 5 * time.Second},
	})
	if err != nil {
		t.Fatalf("failed to create strategy: %v", err)
	}

	result := strategy.Parse(context.Background(),
		&content.Result{Type: content.TypeText, Text: "x"}, "test.txt")

	if result.Success {
		t.Fatal("expected failure on server error")
	}
	if len(result.RequestPayload) == 0 {
		t.Error("request payload should be kept for auditing")
	}
}
