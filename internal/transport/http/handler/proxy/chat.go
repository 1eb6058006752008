package proxy

import (
	"context"
	"net/http"
	"time"

	"github.com/mandalnilabja/goatrelay/internal/relay"
	"github.com/mandalnilabja/goatrelay/internal/secrets"
)

type chatEndpoint struct {
	path     string
	mode     relay.StreamMode
	metadata bool
	timeout  time.Duration
}

// Chat relays a chat completion and returns the upstream body verbatim.
func (h *Handlers) Chat(w http.ResponseWriter, r *http.Request) {
	h.chat(w, r, chatEndpoint{path: PathChat, mode: relay.StreamPassthrough, timeout: h.Timeouts.Chat})
}

// ChatTimed relays a chat completion and adds proxy_metadata to the body.
func (h *Handlers) ChatTimed(w http.ResponseWriter, r *http.Request) {
	h.chat(w, r, chatEndpoint{path: PathChatTimed, mode: relay.StreamPassthrough, metadata: true, timeout: h.Timeouts.Chat})
}

// ChatStream relays a chat completion as an event stream.
func (h *Handlers) ChatStream(w http.ResponseWriter, r *http.Request) {
	h.chat(w, r, chatEndpoint{path: PathChatStream, mode: relay.StreamForce, timeout: h.Timeouts.ChatStream})
}

func (h *Handlers) chat(w http.ResponseWriter, r *http.Request, ep chatEndpoint) {
	c := h.begin(r, ep.path, ep.timeout)

	keys, err := h.resolve(c, secrets.InferenceAPIKey)
	if err != nil {
		h.fail(w, c, err)
		return
	}

	payload, err := decode(w, r)
	if err != nil {
		h.fail(w, c, err)
		return
	}
	if err := relay.NormalizeChat(payload, ep.mode); err != nil {
		h.fail(w, c, err)
		return
	}
	c.model = relay.Model(payload)
	stream := relay.IsStreaming(payload)
	promptTokens := h.estimatePrompt(payload)

	ctx, cancel := context.WithTimeout(r.Context(), ep.timeout)
	defer cancel()

	resp, err := h.Inference.Complete(ctx, keys.Get(secrets.InferenceAPIKey), payload, stream)
	if err != nil {
		c.promptTokens = promptTokens()
		h.fail(w, c, err)
		return
	}
	defer resp.Body.Close()

	if stream {
		res := relay.Stream(ctx, w, resp.Body, ep.timeout)
		c.promptTokens = promptTokens()
		h.Metrics.RecordStreamChunks(c.endpoint, res.Chunks)
		if res.Err != nil {
			h.Metrics.RecordError(c.endpoint, "stream_error")
		}
		h.succeed(c,
			"stream", true,
			"chunks", res.Chunks,
			"bytes", res.Bytes,
			"client_gone", res.ClientGone,
			"stream_error", res.Err != nil,
		)
		return
	}

	data, err := relay.ReadJSON(resp.Body)
	c.promptTokens = promptTokens()
	if err != nil {
		h.fail(w, c, err)
		return
	}
	if ep.metadata {
		data = relay.AttachMetadata(data, relay.NewMetadata(c.start, data, c.promptTokens, c.requestID))
	}
	relay.WriteJSONBody(w, data)
	h.succeed(c, "upstream_status", resp.StatusCode)
}
