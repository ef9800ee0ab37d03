package assistant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestClient_Chat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat" {
			t.Errorf("expected /chat, got %s", r.URL.Path)
		}
		var req map[string]string
		json.NewDecoder(r.Body).Decode(&req)
		if req["question"] != "what does HT7 treat" {
			t.Errorf("unexpected question: %q", req["question"])
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"answer":  "HT7 calms the spirit.",
			"sources": []string{"acupoints.pdf"},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	answer, err := client.Chat(context.Background(), "what does HT7 treat")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer.Question != "what does HT7 treat" {
		t.Errorf("expected question echoed, got %q", answer.Question)
	}
	if answer.Answer != "HT7 calms the spirit." {
		t.Errorf("unexpected answer: %q", answer.Answer)
	}
	if len(answer.Sources) != 1 || answer.Sources[0] != "acupoints.pdf" {
		t.Errorf("unexpected sources: %v", answer.Sources)
	}
}

func TestClient_Chat_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.Chat(context.Background(), "q"); err == nil {
		t.Error("expected error for upstream failure")
	}
}

func TestClient_Chat_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	client := NewClient(srv.URL, 5*time.Second)
	if _, err := client.Chat(ctx, "q"); err == nil {
		t.Error("expected error for cancelled context")
	}
}
