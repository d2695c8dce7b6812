package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaProvider_ChatCompletion_Success(t *testing.T) {
	t.Parallel()

	var got ollamaChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" || r.Method != http.MethodPost {
			http.Error(w, "unexpected path", http.StatusNotFound)
			return
		}
		json.NewDecoder(r.Body).Decode(&got) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(ollamaChatResponse{ //nolint:errcheck
			Message:    ollamaChatMessage{Role: "assistant", Content: "سلام"},
			DoneReason: "stop",
			Done:       true,
		})
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL+"/", "llama3.2:3b", 0)
	resp, err := p.ChatCompletion(context.Background(), ChatRequest{
		Messages:    []Message{{Role: "user", Content: "Hello"}},
		Temperature: 0.2,
	})
	if err != nil {
		t.Fatalf("ChatCompletion failed: %v", err)
	}
	if resp.Content != "سلام" || resp.StopReason != "stop" {
		t.Errorf("resp = %+v", resp)
	}
	if got.Model != "llama3.2:3b" || got.Stream {
		t.Errorf("request model=%q stream=%v; want default model, non-streaming", got.Model, got.Stream)
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "Hello" {
		t.Errorf("request messages = %+v", got.Messages)
	}
}

func TestOllamaProvider_ChatCompletion_ServerError_ReturnsError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llama3.2:3b", 0)
	if _, err := p.ChatCompletion(context.Background(), ChatRequest{}); err == nil {
		t.Error("expected error for 503 response, got nil")
	}
}

func TestOllamaProvider_HealthCheck(t *testing.T) {
	t.Parallel()

	healthy := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tags" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(`{"models":[]}`)) //nolint:errcheck
	}))
	defer healthy.Close()

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer down.Close()

	if err := NewOllamaProvider(healthy.URL, "m", 0).HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck(healthy) = %v; want nil", err)
	}
	if err := NewOllamaProvider(down.URL, "m", 0).HealthCheck(context.Background()); err == nil {
		t.Error("HealthCheck(down) = nil; want error")
	}
}

func TestOllamaProvider_ModelInfo(t *testing.T) {
	t.Parallel()

	info := NewOllamaProvider("http://localhost:11434", "llama3.2:3b", 0).ModelInfo()
	if info.ID != "llama3.2:3b" || info.Provider != "ollama" {
		t.Errorf("ModelInfo() = %+v", info)
	}
}

func TestBuildChatOptions(t *testing.T) {
	t.Parallel()

	if opts := buildChatOptions(ChatRequest{}); opts != nil {
		t.Errorf("buildChatOptions(zero) = %v; want nil", opts)
	}
	opts := buildChatOptions(ChatRequest{Temperature: 0.5, MaxTokens: 256})
	if opts["temperature"] != float32(0.5) || opts["num_predict"] != 256 {
		t.Errorf("buildChatOptions() = %v", opts)
	}
}
