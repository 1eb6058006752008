package proxy

import (
	"context"
	"net/http"
	"time"

	"github.com/mandalnilabja/goatrelay/internal/relay"
	"github.com/mandalnilabja/goatrelay/internal/secrets"
)

type agentEndpoint struct {
	path          string
	tokenKey      string
	deploymentKey string
	withEmail     bool
	timeout       time.Duration
}

// AgentSearch runs the web search agent for a query.
func (h *Handlers) AgentSearch(w http.ResponseWriter, r *http.Request) {
	h.agent(w, r, agentEndpoint{
		path:          PathAgentSearch,
		tokenKey:      secrets.AgentSearchToken,
		deploymentKey: secrets.AgentSearchDeploymentID,
		timeout:       h.Timeouts.AgentSearch,
	})
}

// AgentResearch runs the research agent for a query and optional email.
func (h *Handlers) AgentResearch(w http.ResponseWriter, r *http.Request) {
	h.agent(w, r, agentEndpoint{
		path:          PathAgentResearch,
		tokenKey:      secrets.AgentResearchToken,
		deploymentKey: secrets.AgentResearchDeploymentID,
		withEmail:     true,
		timeout:       h.Timeouts.AgentResearch,
	})
}

func (h *Handlers) agent(w http.ResponseWriter, r *http.Request, ep agentEndpoint) {
	c := h.begin(r, ep.path, ep.timeout)

	keys, err := h.resolve(c, ep.tokenKey, ep.deploymentKey)
	if err != nil {
		h.fail(w, c, err)
		return
	}

	payload, err := decode(w, r)
	if err != nil {
		h.fail(w, c, err)
		return
	}
	kwargs, err := relay.AgentKwargs(payload, ep.withEmail)
	if err != nil {
		h.fail(w, c, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), ep.timeout)
	defer cancel()

	resp, err := h.Agent.Run(ctx, keys.Get(ep.deploymentKey), keys.Get(ep.tokenKey), kwargs)
	if err != nil {
		h.fail(w, c, err)
		return
	}
	defer resp.Body.Close()

	data, err := relay.ReadJSON(resp.Body)
	if err != nil {
		h.fail(w, c, err)
		return
	}
	relay.WriteJSONBody(w, data)
	h.succeed(c, "upstream_status", resp.StatusCode)
}
