package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/belivan/MaxantAgency-sub013/internal/config"
)

// mockProvider is a test double for Provider.
type mockProvider struct {
	mu        sync.Mutex
	response  string
	err       error
	callCount int
	lastReq   Request
}

func (m *mockProvider) Complete(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &Response{Content: m.response}, nil
}

// installMock replaces NewProvider with a factory returning mp, records the
// requested provider names, and restores the original after the test.
func installMock(t *testing.T, mp *mockProvider) *[]string {
	t.Helper()
	var names []string
	orig := NewProvider
	NewProvider = func(name string) (Provider, error) {
		names = append(names, name)
		return mp, nil
	}
	t.Cleanup(func() { NewProvider = orig })
	return &names
}

func TestParseJSONResponse(t *testing.T) {
	type payload struct {
		Grade string `json:"grade"`
	}
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"plain", `{"grade":"B"}`, "B"},
		{"fenced", "```json\n{\"grade\":\"A\"}\n```", "A"},
		{"tilde fence", "~~~\n{\"grade\":\"C\"}\n~~~", "C"},
		{"truncated fence", "```json\n{\"grade\":\"D\"}", "D"},
		{"prose around", "Here is the result:\n{\"grade\":\"F\"}\nLet me know!", "F"},
		{"fence in prose", "Sure.\n```json\n{\"grade\":\"B\"}\n```\nDone.", "B"},
		{"invalid escape", `{"grade":"A \d"}`, `A \d`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var p payload
			if err := ParseJSONResponse(c.raw, &p); err != nil {
				t.Fatalf("ParseJSONResponse: %v", err)
			}
			if p.Grade != c.want {
				t.Errorf("grade = %q, want %q", p.Grade, c.want)
			}
		})
	}
}

func TestParseJSONResponse_NoJSON(t *testing.T) {
	for _, raw := range []string{"", "   ", "not json at all", "{broken"} {
		var v map[string]any
		err := ParseJSONResponse(raw, &v)
		if !errors.Is(err, ErrNoJSON) {
			t.Errorf("ParseJSONResponse(%q) error = %v, want ErrNoJSON", raw, err)
		}
	}
}

func TestParseJSONResponse_TypeMismatch(t *testing.T) {
	var v struct {
		Count int `json:"count"`
	}
	err := ParseJSONResponse(`{"count":"many"}`, &v)
	if err == nil {
		t.Fatal("expected decode error for mismatched type")
	}
	if errors.Is(err, ErrNoJSON) {
		t.Errorf("type mismatch should not report ErrNoJSON: %v", err)
	}
}

func TestProviderForModel(t *testing.T) {
	cases := map[string]string{
		"claude-sonnet-4-6": "anthropic",
		"gpt-4o-mini":       "openai",
		"o3-mini":           "openai",
		"gemini-1.5-pro":    "google",
		"":                  "anthropic",
	}
	for model, want := range cases {
		if got := ProviderForModel(model); got != want {
			t.Errorf("ProviderForModel(%q) = %q, want %q", model, got, want)
		}
	}
}

func TestClient_CallAI(t *testing.T) {
	mp := &mockProvider{response: `{"ok":true}`}
	names := installMock(t, mp)

	c := NewClient(config.LLMConfig{MaxTokens: 1234}, nil)
	resp, err := c.CallAI(context.Background(), Request{Model: "gpt-4o", UserPrompt: "hi", JSONMode: true})
	if err != nil {
		t.Fatalf("CallAI: %v", err)
	}
	if resp.Content != `{"ok":true}` {
		t.Errorf("content = %q", resp.Content)
	}
	if resp.Model != "gpt-4o" {
		t.Errorf("model = %q, want request model when provider omits it", resp.Model)
	}
	if mp.lastReq.MaxTokens != 1234 {
		t.Errorf("MaxTokens = %d, want client default 1234", mp.lastReq.MaxTokens)
	}
	if !mp.lastReq.JSONMode {
		t.Error("JSONMode not forwarded")
	}

	// Second call reuses the cached provider.
	if _, err := c.CallAI(context.Background(), Request{Model: "gpt-4o"}); err != nil {
		t.Fatalf("CallAI: %v", err)
	}
	if len(*names) != 1 || (*names)[0] != "openai" {
		t.Errorf("providers created = %v, want [openai]", *names)
	}
}

func TestClient_ProviderOverride(t *testing.T) {
	mp := &mockProvider{response: "{}"}
	names := installMock(t, mp)

	c := NewClient(config.LLMConfig{Provider: "google"}, nil)
	if _, err := c.CallAI(context.Background(), Request{Model: "claude-sonnet-4-6"}); err != nil {
		t.Fatalf("CallAI: %v", err)
	}
	if (*names)[0] != "google" {
		t.Errorf("provider = %q, want override google", (*names)[0])
	}
}

func TestClient_ProviderError(t *testing.T) {
	mp := &mockProvider{err: fmt.Errorf("simulated API error")}
	installMock(t, mp)

	c := NewClient(config.LLMConfig{}, nil)
	_, err := c.CallAI(context.Background(), Request{Model: "claude-sonnet-4-6"})
	if err == nil {
		t.Fatal("expected error from failing provider")
	}
	if mp.callCount != 1 {
		t.Errorf("callCount = %d, want exactly 1 (no retry)", mp.callCount)
	}
}

func TestDefaultNewProvider_Unknown(t *testing.T) {
	if _, err := defaultNewProvider("mystery"); err == nil {
		t.Error("expected error for unknown provider")
	}
}
