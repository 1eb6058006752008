// Package relay shapes inbound playground payloads and relays upstream
// responses back to the client, either buffered or as an event stream.
package relay

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
)

// Chat parameter bounds.
const (
	DefaultMaxTokens = 1024
	MinMaxTokens     = 1
	MaxMaxTokens     = 8192
)

// MaxBodyBytes bounds inbound request bodies.
const MaxBodyBytes = 10 * 1024 * 1024

// StreamMode says how normalization treats the "stream" flag.
type StreamMode int

const (
	// StreamPassthrough keeps whatever the client sent.
	StreamPassthrough StreamMode = iota
	// StreamForce always sets stream to true.
	StreamForce
)

// RequestError is a client-side failure detected before any upstream work.
type RequestError struct {
	Status  int
	Message string
	Param   string
}

func (e *RequestError) Error() string {
	return e.Message
}

func badRequest(param, format string, args ...any) *RequestError {
	return &RequestError{Status: http.StatusBadRequest, Message: fmt.Sprintf(format, args...), Param: param}
}

// DecodeObject parses body as a single JSON object. Numbers are kept as
// json.Number so unknown numeric parameters reach the upstream unchanged.
func DecodeObject(body io.Reader) (map[string]any, error) {
	dec := json.NewDecoder(body)
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &RequestError{
				Status:  http.StatusRequestEntityTooLarge,
				Message: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
			}
		}
		if errors.Is(err, io.EOF) {
			return nil, badRequest("", "invalid JSON body: request body is empty")
		}
		return nil, badRequest("", "invalid JSON body: %v", err)
	}
	if dec.More() {
		return nil, badRequest("", "invalid JSON body: unexpected data after top-level object")
	}

	obj, ok := v.(map[string]any)
	if !ok {
		return nil, badRequest("", "invalid JSON body: expected an object")
	}
	return obj, nil
}

// NormalizeChat turns an inbound chat payload into the outbound one, in place:
// null fields are dropped, parameter types are checked, max_tokens is
// defaulted and clamped, and the stream flag is applied per mode.
func NormalizeChat(p map[string]any, mode StreamMode) error {
	for k, v := range p {
		if v == nil {
			delete(p, k)
		}
	}

	if v, ok := p["model"]; ok {
		if _, isStr := v.(string); !isStr {
			return badRequest("model", "model must be a string")
		}
	}
	if v, ok := p["messages"]; ok {
		if _, isArr := v.([]any); !isArr {
			return badRequest("messages", "messages must be an array")
		}
	}
	for _, field := range []string{"temperature", "top_p"} {
		if v, ok := p[field]; ok {
			if _, err := toFloat(v); err != nil {
				return badRequest(field, "%s must be a number", field)
			}
		}
	}
	if v, ok := p["stream"]; ok {
		if _, isBool := v.(bool); !isBool {
			return badRequest("stream", "stream must be a boolean")
		}
	}

	maxTokens := float64(DefaultMaxTokens)
	if v, ok := p["max_tokens"]; ok {
		f, err := toFloat(v)
		if err != nil {
			return badRequest("max_tokens", "max_tokens must be a number")
		}
		maxTokens = f
	}
	p["max_tokens"] = ClampMaxTokens(maxTokens)

	if mode == StreamForce {
		p["stream"] = true
	}
	return nil
}

// ClampMaxTokens truncates v toward zero and clamps it into
// [MinMaxTokens, MaxMaxTokens].
func ClampMaxTokens(v float64) int {
	if math.IsNaN(v) {
		return DefaultMaxTokens
	}
	v = math.Trunc(v)
	if v < MinMaxTokens {
		return MinMaxTokens
	}
	if v > MaxMaxTokens {
		return MaxMaxTokens
	}
	return int(v)
}

// IsStreaming reports whether the normalized payload asks for a stream.
func IsStreaming(p map[string]any) bool {
	b, _ := p["stream"].(bool)
	return b
}

// Model returns the payload's model name, or "" when absent.
func Model(p map[string]any) string {
	m, _ := p["model"].(string)
	return m
}

// AgentKwargs extracts the keyword arguments for an agent run. A non-empty
// query is required; when withEmail is set an optional string email is
// forwarded as well.
func AgentKwargs(p map[string]any, withEmail bool) (map[string]any, error) {
	raw, ok := p["query"]
	if !ok || raw == nil {
		return nil, badRequest("query", "missing required field: query")
	}
	query, isStr := raw.(string)
	if !isStr {
		return nil, badRequest("query", "query must be a string")
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, badRequest("query", "missing required field: query")
	}

	kwargs := map[string]any{"query": query}
	if withEmail {
		if raw, ok := p["email"]; ok && raw != nil {
			email, isStr := raw.(string)
			if !isStr {
				return nil, badRequest("email", "email must be a string")
			}
			if email = strings.TrimSpace(email); email != "" {
				kwargs["email"] = email
			}
		}
	}
	return kwargs, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		if errors.Is(err, strconv.ErrRange) {
			// Float64 saturates to ±Inf or rounds to zero; both still clamp.
			return f, nil
		}
		return f, err
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
