package relay

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/mandalnilabja/goatrelay/internal/types"
	"github.com/mandalnilabja/goatrelay/internal/upstream"
)

// ErrInvalidUpstreamJSON is returned when a buffered upstream body is not JSON.
var ErrInvalidUpstreamJSON = errors.New("invalid upstream response: body is not JSON")

// MetadataKey is the field added to buffered chat responses.
const MetadataKey = "proxy_metadata"

// Metadata is non-authoritative diagnostic data about a relayed call.
type Metadata struct {
	ElapsedMS            int64  `json:"elapsed_ms"`
	Reasoning            bool   `json:"reasoning"`
	PromptTokensEstimate int    `json:"prompt_tokens_estimate,omitempty"`
	RequestID            string `json:"request_id,omitempty"`
}

// ReadJSON reads the whole upstream body and checks it is valid JSON.
// Read failures (including deadline expiry) are classified as upstream errors.
func ReadJSON(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, upstream.Classify(err)
	}
	if !json.Valid(data) {
		return nil, ErrInvalidUpstreamJSON
	}
	return data, nil
}

// DetectReasoning reports whether a chat completion body carries reasoning
// output. Bodies that don't decode as a completion report false.
func DetectReasoning(data []byte) bool {
	var completion types.ChatCompletionResponse
	if err := json.Unmarshal(data, &completion); err != nil {
		return false
	}
	return completion.HasReasoning()
}

// AttachMetadata adds meta under MetadataKey when data is a JSON object.
// Anything else is returned unchanged.
func AttachMetadata(data []byte, meta Metadata) []byte {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil || obj == nil {
		return data
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return data
	}
	obj[MetadataKey] = raw
	out, err := json.Marshal(obj)
	if err != nil {
		return data
	}
	return out
}

// NewMetadata builds metadata for a call that started at start.
func NewMetadata(start time.Time, data []byte, promptTokens int, requestID string) Metadata {
	return Metadata{
		ElapsedMS:            time.Since(start).Milliseconds(),
		Reasoning:            DetectReasoning(data),
		PromptTokensEstimate: promptTokens,
		RequestID:            requestID,
	}
}

// WriteJSONBody writes an already-encoded JSON body with status 200.
func WriteJSONBody(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
