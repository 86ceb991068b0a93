package analysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/clustermap/pkg/cache"
	"github.com/matzehuels/clustermap/pkg/conversation"
	"github.com/matzehuels/clustermap/pkg/errors"
)

const payload = `{
  "cumulative_words": [{"x": "2024-01-01", "y": 10}],
  "messages_per_chat": [],
  "messages_per_week": [],
  "new_chats_per_week": [],
  "clusters": [
    {"id": "a", "name": "Root", "description": "", "chat_ids": ["c1"], "parent_id": null, "count": 3, "x_coord": 0, "y_coord": 0, "level": 0},
    {"id": "b", "name": "Leaf", "description": "", "chat_ids": ["c1"], "parent_id": "a", "count": 3, "x_coord": 1, "y_coord": 1, "level": 1}
  ]
}`

func request() conversation.AnalyseRequest {
	n := 5
	return conversation.AnalyseRequest{
		Data: []conversation.Conversation{{
			ChatID: "c1", CreatedAt: "2024-01-01T00:00:00Z",
			Messages: []conversation.Message{{CreatedAt: "2024-01-01T00:00:00Z", Role: conversation.RoleUser, Content: "hi"}},
		}},
		MaxClusters: &n,
	}
}

func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		h(w, r)
	}))
	t.Cleanup(srv.Close)

	opts = append([]Option{WithRetry(3, time.Millisecond)}, opts...)
	c, err := New(srv.URL, opts...)
	if err != nil {
		t.Fatal(err)
	}
	return c, &calls
}

func TestAnalyse(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != AnalysePath {
			t.Errorf("got %s %s", r.Method, r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); !strings.HasPrefix(ua, "clustermap/") {
			t.Errorf("User-Agent = %q", ua)
		}
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body["max_clusters"] != float64(5) || body["disable_checkpoints"] != false {
			t.Errorf("body = %v", body)
		}
		if _, ok := body["data"].([]any); !ok {
			t.Errorf("data should be an array: %v", body["data"])
		}
		w.Write([]byte(payload))
	})

	resp, err := c.Analyse(context.Background(), request(), false)
	if err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	if len(resp.Payload.Clusters) != 2 || resp.Cached {
		t.Errorf("resp = %+v", resp)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d", calls.Load())
	}
}

func TestAnalyseRetriesServerErrors(t *testing.T) {
	var n atomic.Int32
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if n.Add(1) < 3 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(payload))
	})

	if _, err := c.Analyse(context.Background(), request(), false); err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestAnalyseErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      string
		code      errors.Code
		wantCalls int32
	}{
		{"BadRequest", http.StatusUnprocessableEntity, `{"detail":"bad"}`, errors.ErrCodeInvalidInput, 1},
		{"ServerDown", http.StatusInternalServerError, "boom", errors.ErrCodeNetwork, 3},
		{"RateLimited", http.StatusTooManyRequests, "", errors.ErrCodeRateLimited, 3},
		{"MalformedPayload", http.StatusOK, `{"clusters": [{"id": ""}]}`, errors.ErrCodeInvalidPayload, 1},
		{"NotJSON", http.StatusOK, `<html>`, errors.ErrCodeInvalidPayload, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			})
			_, err := c.Analyse(context.Background(), request(), false)
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want code %s", err, tt.code)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls.Load(), tt.wantCalls)
			}
		})
	}
}

func TestAnalyseCache(t *testing.T) {
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}, WithCache(fc, time.Hour))

	ctx := context.Background()
	if _, err := c.Analyse(ctx, request(), false); err != nil {
		t.Fatal(err)
	}
	resp, err := c.Analyse(ctx, request(), false)
	if err != nil {
		t.Fatal(err)
	}
	if !resp.Cached || calls.Load() != 1 {
		t.Errorf("second call: cached=%v calls=%d", resp.Cached, calls.Load())
	}

	if resp, _ := c.Analyse(ctx, request(), true); resp.Cached || calls.Load() != 2 {
		t.Errorf("refresh should bypass the cache: calls=%d", calls.Load())
	}

	other := request()
	other.DisableCheckpoints = true
	if resp, _ := c.Analyse(ctx, other, false); resp.Cached {
		t.Error("a different request must not hit the cache")
	}
}

func TestAnalyseCancelled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Analyse(ctx, request(), false); !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("err = %v, want TIMEOUT", err)
	}
}

func TestNewRejectsBadURL(t *testing.T) {
	if _, err := New("ftp://example.com"); err == nil {
		t.Error("expected an error for a non-http url")
	}
	c, err := New("")
	if err != nil || c.BaseURL() != DefaultBaseURL {
		t.Errorf("default url = %v, %v", c, err)
	}
}

func TestAnalyseRejectsNonPositiveMaxClusters(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	req := request()
	zero := 0
	req.MaxClusters = &zero
	if _, err := c.Analyse(context.Background(), req, false); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("err = %v", err)
	}
	if calls.Load() != 0 {
		t.Error("request should not be sent")
	}
}
