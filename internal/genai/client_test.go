package genai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// fakeUpstream returns an OpenAI-style completion whose content is the
// given model text.
func fakeUpstream(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing auth header, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
}

func newTestClient(t *testing.T, baseURL string) Generator {
	t.Helper()
	g, err := NewClient(Config{
		BaseURL:         baseURL,
		APIKey:          "test-key",
		UpstreamTimeout: 5 * time.Second,
		MaxRetries:      1,
		BaseBackoff:     time.Millisecond,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return g
}

func TestGenerateQuestions_FencedResponse(t *testing.T) {
	content := "```json\n[{\"question\":\"What is a goroutine?\",\"answer\":\"A lightweight thread.\",\"difficulty\":\"easy\"}]\n```"
	srv := fakeUpstream(t, http.StatusOK, content)
	defer srv.Close()

	g := newTestClient(t, srv.URL)

	got, err := g.GenerateQuestions(context.Background(), "Technical Round", "easy", "Go", 1)
	if err != nil {
		t.Fatalf("GenerateQuestions failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
	if got[0].Question != "What is a goroutine?" || got[0].Difficulty != "easy" {
		t.Fatalf("unexpected question: %#v", got[0])
	}
}

func TestExplain_ParsesStructuredObject(t *testing.T) {
	content := `{"explanation":"E","examples":["e1"],"key_points":["k1"],"actionable_insights":["i1"]}`
	srv := fakeUpstream(t, http.StatusOK, content)
	defer srv.Close()

	g := newTestClient(t, srv.URL)

	got, err := g.Explain(context.Background(), "What is a closure?")
	if err != nil {
		t.Fatalf("Explain failed: %v", err)
	}
	if got.Explanation != "E" || len(got.Examples) != 1 {
		t.Fatalf("unexpected explanation: %#v", got)
	}
}

func TestGenerateQuestions_RetriesOn500(t *testing.T) {
	attempts := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"role":    "assistant",
					"content": `[{"question":"Q","answer":"A","difficulty":"medium"}]`,
				}},
			},
		})
	}))
	defer srv.Close()

	g := newTestClient(t, srv.URL)

	got, err := g.GenerateQuestions(context.Background(), "Technical Round", "medium", "Go", 1)
	if err != nil {
		t.Fatalf("expected retry to succeed: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("expected 2 attempts, got %d", attempts)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 question, got %d", len(got))
	}
}

func TestGenerateQuestions_UpstreamErrorMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"auth_error"}}`))
	}))
	defer srv.Close()

	g := newTestClient(t, srv.URL)

	_, err := g.GenerateQuestions(context.Background(), "Technical Round", "easy", "Go", 1)
	if err == nil {
		t.Fatalf("expected error from 401 upstream")
	}
	if !strings.Contains(err.Error(), "invalid api key") {
		t.Fatalf("expected upstream message preserved, got: %v", err)
	}
}
