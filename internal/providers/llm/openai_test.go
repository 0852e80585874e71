package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(r *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestNormalizeOpenAIModel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name   string
		input  string
		model  string
		reason string
	}{
		{name: "exact_default", input: "gpt-4o-mini", model: "gpt-4o-mini", reason: ""},
		{name: "exact_large", input: "gpt-4o", model: "gpt-4o", reason: ""},
		{name: "alias_compact", input: "gpt4omini", model: "gpt-4o-mini", reason: "alias"},
		{name: "alias_dated", input: "gpt-4o-2024-08-06", model: "gpt-4o", reason: "alias"},
		{name: "unsupported", input: "gpt-9000", model: "gpt-4o-mini", reason: "defaulted"},
		{name: "empty", input: "", model: "gpt-4o-mini", reason: ""},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			gotModel, gotReason := normalizeOpenAIModel(tc.input)
			if gotModel != tc.model {
				t.Fatalf("model = %q, want %q", gotModel, tc.model)
			}
			if gotReason != tc.reason {
				t.Fatalf("reason = %q, want %q", gotReason, tc.reason)
			}
		})
	}
}

func TestCompleteSendsVisionParts(t *testing.T) {
	t.Parallel()
	var captured openAIChatRequest
	client, err := NewOpenAIClient(OpenAIOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			body, _ := io.ReadAll(r.Body)
			if err := json.Unmarshal(body, &captured); err != nil {
				t.Fatalf("unmarshal request: %v", err)
			}
			resp := `{"choices":[{"message":{"content":"{\"ok\":true}"}}]}`
			return &http.Response{
				StatusCode: http.StatusOK,
				Header:     http.Header{"Content-Type": []string{"application/json"}},
				Body:       io.NopCloser(strings.NewReader(resp)),
			}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewOpenAIClient returned error: %v", err)
	}
	got, err := client.Complete(context.Background(), CompletionRequest{
		System:    "you analyze garments",
		User:      "describe this garment",
		Images:    []ImageAttachment{{MIME: "image/png", Data: []byte{1, 2, 3}}},
		ForceJSON: true,
	})
	if err != nil {
		t.Fatalf("Complete returned error: %v", err)
	}
	if got != `{"ok":true}` {
		t.Fatalf("Complete = %q", got)
	}
	if captured.ResponseFormat == nil || captured.ResponseFormat.Type != "json_object" {
		t.Fatalf("response_format = %#v", captured.ResponseFormat)
	}
	if len(captured.Messages) != 2 {
		t.Fatalf("messages = %d, want 2", len(captured.Messages))
	}
	parts, ok := captured.Messages[1].Content.([]any)
	if !ok || len(parts) != 2 {
		t.Fatalf("user content = %#v, want 2 parts", captured.Messages[1].Content)
	}
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	t.Parallel()
	client, err := NewOpenAIClient(OpenAIOptions{
		APIKey: "dummy",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			resp := `{"error":{"message":"model overloaded","type":"server_error"}}`
			return &http.Response{
				StatusCode: http.StatusServiceUnavailable,
				Body:       io.NopCloser(strings.NewReader(resp)),
			}, nil
		})},
	})
	if err != nil {
		t.Fatalf("NewOpenAIClient returned error: %v", err)
	}
	_, err = client.Complete(context.Background(), CompletionRequest{User: "hi"})
	if err == nil || !strings.Contains(err.Error(), "model overloaded") {
		t.Fatalf("err = %v, want api message surfaced", err)
	}
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	t.Parallel()
	if _, err := NewOpenAIClient(OpenAIOptions{}); err == nil {
		t.Fatal("expected error for missing api key")
	}
}
