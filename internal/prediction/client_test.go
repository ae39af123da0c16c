package prediction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"paintsnap/internal/config"
)

func testClient(baseURL string) *Client {
	return NewClient(config.ProviderConfig{
		BaseURL:      baseURL,
		Token:        "test-token",
		ModelVersion: "v1",
		PollInterval: 5 * time.Millisecond,
		WaitTimeout:  2 * time.Second,
	}, zerolog.Nop())
}

func writePrediction(t *testing.T, w http.ResponseWriter, pred map[string]any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(pred); err != nil {
		t.Fatalf("encode response: %v", err)
	}
}

func TestTransformSucceeds(t *testing.T) {
	var polls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Token test-token" {
			t.Errorf("authorization = %q", got)
		}
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/predictions":
			var req struct {
				Version string         `json:"version"`
				Input   map[string]any `json:"input"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				t.Errorf("decode create: %v", err)
			}
			if req.Input["image"] != "https://photos.example.com/in.jpg" {
				t.Errorf("image input = %v", req.Input["image"])
			}
			if prompt, _ := req.Input["prompt"].(string); !strings.Contains(prompt, "Vincent van Gogh") {
				t.Errorf("prompt = %q", prompt)
			}
			writePrediction(t, w, map[string]any{"id": "pred-1", "status": "starting"})
		case r.Method == http.MethodGet && r.URL.Path == "/predictions/pred-1":
			if polls.Add(1) < 2 {
				writePrediction(t, w, map[string]any{"id": "pred-1", "status": "processing"})
				return
			}
			writePrediction(t, w, map[string]any{
				"id":     "pred-1",
				"status": "succeeded",
				"output": "https://cdn.example.com/out.png",
			})
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer srv.Close()

	result := testClient(srv.URL).Transform(context.Background(),
		"A painting in the style of Vincent van Gogh",
		"https://photos.example.com/in.jpg")

	if result.Synthetic {
		t.Fatalf("successful prediction flagged synthetic")
	}
	if result.PredictionID != "pred-1" {
		t.Fatalf("prediction id = %q", result.PredictionID)
	}
	if result.OutputURL != "https://cdn.example.com/out.png" {
		t.Fatalf("output url = %q", result.OutputURL)
	}
}

func TestTransformOutputList(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writePrediction(t, w, map[string]any{
			"id":     "pred-2",
			"status": "succeeded",
			"output": []string{"https://cdn.example.com/a.png", "https://cdn.example.com/b.png"},
		})
	}))
	defer srv.Close()

	result := testClient(srv.URL).Transform(context.Background(), "prompt", "https://x/in.jpg")
	if result.Synthetic {
		t.Fatalf("fell back on a list output")
	}
	if result.OutputURL != "https://cdn.example.com/a.png" {
		t.Fatalf("output url = %q, want the first entry", result.OutputURL)
	}
}

func TestTransformFallsBack(t *testing.T) {
	const sourceURL = "https://photos.example.com/original.jpg"

	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "provider reports failed",
			handler: func(w http.ResponseWriter, r *http.Request) {
				msg := "NSFW content detected"
				writePrediction(t, w, map[string]any{"id": "p", "status": "failed", "error": msg})
			},
		},
		{
			name: "provider returns server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "output is not an absolute url",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writePrediction(t, w, map[string]any{"id": "p", "status": "succeeded", "output": "file:///tmp/out.png"})
			},
		},
		{
			name: "output shape is unexpected",
			handler: func(w http.ResponseWriter, r *http.Request) {
				writePrediction(t, w, map[string]any{"id": "p", "status": "succeeded", "output": map[string]any{"weird": true}})
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(tc.handler)
			defer srv.Close()

			result := testClient(srv.URL).Transform(context.Background(), "prompt", sourceURL)
			if !result.Synthetic {
				t.Fatalf("expected synthetic fallback")
			}
			if result.OutputURL != sourceURL {
				t.Fatalf("output url = %q, want the source photo", result.OutputURL)
			}
			if !strings.HasPrefix(result.PredictionID, SyntheticPrefix) {
				t.Fatalf("prediction id = %q, want %s prefix", result.PredictionID, SyntheticPrefix)
			}
		})
	}
}

func TestTransformWaitBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Never reaches a terminal state.
		writePrediction(t, w, map[string]any{"id": "p", "status": "processing"})
	}))
	defer srv.Close()

	client := NewClient(config.ProviderConfig{
		BaseURL:      srv.URL,
		Token:        "t",
		PollInterval: time.Millisecond,
		WaitTimeout:  20 * time.Millisecond,
	}, zerolog.Nop())

	result := client.Transform(context.Background(), "prompt", "https://x/in.jpg")
	if !result.Synthetic {
		t.Fatalf("expected fallback once the wait budget ran out")
	}
}

func TestTransformUnreachableProvider(t *testing.T) {
	client := testClient("http://127.0.0.1:1")
	result := client.Transform(context.Background(), "prompt", "https://x/in.jpg")
	if !result.Synthetic || result.OutputURL != "https://x/in.jpg" {
		t.Fatalf("result = %+v, want fallback", result)
	}
}
