package openai

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yungbote/healthwhisperer-backend/internal/platform/logger"
)

func assistantReply(text string) map[string]any {
	return map[string]any{
		"output": []any{map[string]any{
			"type": "message",
			"role": "assistant",
			"content": []any{map[string]any{
				"type": "output_text",
				"text": text,
			}},
		}},
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	temp := 0.4
	c, err := NewClient(logger.Nop(), Config{
		APIKey:      "sk-test",
		BaseURL:     srv.URL,
		Model:       "test-model",
		Timeout:     5 * time.Second,
		MaxRetries:  2,
		Temperature: &temp,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(logger.Nop(), Config{}); err != ErrNotConfigured {
		t.Fatalf("err=%v", err)
	}
}

func TestGenerateTextRetriesOnServerError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing auth header")
		}
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(assistantReply("Stay hydrated"))
	})
	got, err := c.GenerateText(t.Context(), "sys", "user")
	if err != nil {
		t.Fatalf("GenerateText: %v", err)
	}
	if got != "Stay hydrated" || atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("got=%q calls=%d", got, calls)
	}
}

func TestGenerateTextNoRetryOnBadRequest(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, `{"error":"bad input"}`, http.StatusBadRequest)
	})
	if _, err := c.GenerateText(t.Context(), "sys", "user"); err == nil {
		t.Fatalf("expected error")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("calls=%d", calls)
	}
}

func TestTemperatureFallback(t *testing.T) {
	var withTemp, withoutTemp int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if _, ok := body["temperature"]; ok {
			atomic.AddInt32(&withTemp, 1)
			http.Error(w, `{"error":{"message":"Unsupported parameter: 'temperature'"}}`, http.StatusBadRequest)
			return
		}
		atomic.AddInt32(&withoutTemp, 1)
		_ = json.NewEncoder(w).Encode(assistantReply("ok"))
	})
	for i := 0; i < 2; i++ {
		if _, err := c.GenerateText(t.Context(), "sys", "user"); err != nil {
			t.Fatalf("GenerateText: %v", err)
		}
	}
	if withTemp != 1 || withoutTemp != 2 {
		t.Fatalf("withTemp=%d withoutTemp=%d", withTemp, withoutTemp)
	}
}

func TestGenerateJSON(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		format, _ := body["text"].(map[string]any)["format"].(map[string]any)
		if format["type"] != "json_schema" || format["name"] != "nudge" {
			t.Errorf("format=%v", format)
		}
		_ = json.NewEncoder(w).Encode(assistantReply(`{"title":"Walk","body":"Take 5"}`))
	})
	obj, err := c.GenerateJSON(t.Context(), "sys", "user", "nudge", map[string]any{"type": "object"})
	if err != nil {
		t.Fatalf("GenerateJSON: %v", err)
	}
	if obj["title"] != "Walk" {
		t.Fatalf("obj=%v", obj)
	}
}
