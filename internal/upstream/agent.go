package upstream

import (
	"context"
	"net/http"
	"net/url"
)

// Agent runs hosted agent deployments (web search, research).
type Agent struct {
	BaseURL string
	Client  *http.Client
}

// NewAgent creates an agent client rooted at baseURL.
func NewAgent(baseURL string, client *http.Client) *Agent {
	return &Agent{BaseURL: baseURL, Client: client}
}

// RunRequest is the body accepted by the agent execution endpoint.
type RunRequest struct {
	Kwargs map[string]any `json:"kwargs"`
}

// Run executes deploymentID with kwargs. The caller must close resp.Body.
func (a *Agent) Run(ctx context.Context, deploymentID, token string, kwargs map[string]any) (*http.Response, error) {
	return postJSON(ctx, a.Client, a.runURL(deploymentID), token, RunRequest{Kwargs: kwargs}, "application/json")
}

func (a *Agent) runURL(deploymentID string) string {
	return a.BaseURL + "/deployments/" + url.PathEscape(deploymentID) + "/run"
}
