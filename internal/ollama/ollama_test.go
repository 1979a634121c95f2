package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/zepiy/stockmeta/internal/providers"
)

func TestGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("Failed to decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"response":"{\"title\":\"Cat\"}"}`))
	}))
	defer srv.Close()

	text, err := New(srv.URL+"/").Generate(context.Background(), providers.Config{
		Model:  "llava",
		Prompt: "describe",
		Inline: &providers.InlineData{MIMEType: "image/jpeg", Data: []byte("jpg")},
		Schema: &providers.Schema{Type: providers.TypeObject, Required: []string{"title"}},
	})
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if text != `{"title":"Cat"}` {
		t.Errorf("Unexpected response: %q", text)
	}

	images, ok := got["images"].([]any)
	if !ok || len(images) != 1 || images[0] != "anBn" {
		t.Errorf("Expected one base64 image, got %v", got["images"])
	}
	format, ok := got["format"].(map[string]any)
	if !ok || format["type"] != "object" {
		t.Errorf("Expected schema format, got %v", got["format"])
	}
	if got["stream"] != false {
		t.Errorf("Expected stream=false, got %v", got["stream"])
	}
}

func TestGenerateTextOnly(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"response":"ok"}`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Generate(context.Background(), providers.Config{Prompt: "p"}); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if _, exists := got["images"]; exists {
		t.Error("Expected no images for text-only request")
	}
}

func TestGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := New(srv.URL).Generate(context.Background(), providers.Config{Prompt: "p"}); err == nil {
		t.Error("Expected error for 404")
	}
}
