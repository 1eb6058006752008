package upstream

import (
	"context"
	"net/http"
)

// Inference relays chat-completion payloads to an OpenAI-compatible API.
type Inference struct {
	URL    string
	Client *http.Client
}

// NewInference creates an inference client for url.
func NewInference(url string, client *http.Client) *Inference {
	return &Inference{URL: url, Client: client}
}

// Complete posts a normalized chat payload. When stream is set the caller
// receives the raw event-stream body. The caller must close resp.Body.
func (i *Inference) Complete(ctx context.Context, apiKey string, payload map[string]any, stream bool) (*http.Response, error) {
	accept := "application/json"
	if stream {
		accept = "text/event-stream"
	}
	return postJSON(ctx, i.Client, i.URL, apiKey, payload, accept)
}
