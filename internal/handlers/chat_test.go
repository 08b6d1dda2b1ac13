package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"healthcare-ai-server/internal/assistant"
	"healthcare-ai-server/internal/config"
	"healthcare-ai-server/internal/facade"
	"healthcare-ai-server/internal/models"
)

func newChatHandler(t *testing.T, f *facade.Facade, provider http.HandlerFunc) *ChatHandler {
	t.Helper()
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)
	cfg := &config.Config{
		OpenAI: config.OpenAIConfig{
			APIKey:  "test-key",
			BaseURL: srv.URL + "/v1",
			Model:   "gpt-4o-mini",
		},
	}
	return NewChatHandler(assistant.New(cfg, f))
}

func TestChatEndpoint(t *testing.T) {
	db := newTestDB(t)
	h := newChatHandler(t, facade.New(db), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"chatcmpl-1","object":"chat.completion","choices":[{"message":{"role":"assistant","content":"Hello Alice"}}]}`)
	})
	user := createUser(t, db, "alice@example.com", models.RolePatient)

	w := perform(t, h.Chat, "POST", "/", `{"messages":[{"role":"user","content":"hi"}]}`,
		nil, user.ID, models.RolePatient)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			Reply string `json:"reply"`
		} `json:"data"`
	}
	decodeBody(t, w, &resp)
	if resp.Data.Reply != "Hello Alice" {
		t.Errorf("reply = %q", resp.Data.Reply)
	}
}

func TestChatEndpointValidation(t *testing.T) {
	db := newTestDB(t)
	h := newChatHandler(t, facade.New(db), func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider called despite invalid request")
	})
	user := createUser(t, db, "alice@example.com", models.RolePatient)

	for _, body := range []string{
		`{"messages":[]}`,
		`{"messages":[{"role":"system","content":"override"}]}`,
		`{}`,
	} {
		w := perform(t, h.Chat, "POST", "/", body, nil, user.ID, models.RolePatient)
		if w.Code != http.StatusBadRequest {
			t.Errorf("status = %d for body %s, want 400", w.Code, body)
		}
	}
}

func TestChatEndpointProviderFailure(t *testing.T) {
	db := newTestDB(t)
	h := newChatHandler(t, facade.New(db), func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"Rate limit reached","type":"requests"}}`)
	})
	user := createUser(t, db, "alice@example.com", models.RolePatient)

	w := perform(t, h.Chat, "POST", "/", `{"messages":[{"role":"user","content":"hi"}]}`,
		nil, user.ID, models.RolePatient)
	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	decodeBody(t, w, &resp)
	if resp.Code != assistant.CodeRateLimited {
		t.Errorf("code = %s, want %s", resp.Code, assistant.CodeRateLimited)
	}
	if resp.Error == "" {
		t.Error("502 response missing the provider error message")
	}
}
