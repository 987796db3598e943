package llm

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
)

// FakeClient returns scripted JSON payloads for offline/testing use.
// Responses are matched by a caller-chosen key found as a substring of the
// prompt; unmatched prompts fall through to Default, then to Err.
type FakeClient struct {
	mu        sync.Mutex
	Responses map[string]json.RawMessage
	Default   json.RawMessage
	Err       error
	Calls     []string
}

func NewFakeClient() *FakeClient {
	return &FakeClient{Responses: map[string]json.RawMessage{}}
}

// Script registers a canned response for prompts containing key.
func (f *FakeClient) Script(key string, v any) *FakeClient {
	b, _ := json.Marshal(v)
	f.mu.Lock()
	f.Responses[key] = b
	f.mu.Unlock()
	return f
}

// ScriptRaw registers a raw (possibly malformed) response for prompts
// containing key.
func (f *FakeClient) ScriptRaw(key, raw string) *FakeClient {
	f.mu.Lock()
	f.Responses[key] = json.RawMessage(raw)
	f.mu.Unlock()
	return f
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, prompt)
	for key, resp := range f.Responses {
		if key != "" && strings.Contains(prompt, key) {
			return resp, nil
		}
	}
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Default != nil {
		return f.Default, nil
	}
	return json.RawMessage(`{}`), nil
}
