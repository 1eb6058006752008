// Package tokenizer estimates prompt sizes for relayed chat payloads.
package tokenizer

import (
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
)

// Estimator estimates prompt tokens for a normalized chat payload.
// Estimates are diagnostic only and never affect what is relayed.
type Estimator interface {
	EstimatePrompt(payload map[string]any) (int, error)
}

// Encoding names used by tiktoken.
const (
	EncodingCL100kBase = "cl100k_base" // GPT-4, GPT-3.5-turbo
	EncodingO200kBase  = "o200k_base"  // GPT-4o, o1 models
)

type modelEncoding struct {
	prefix   string
	encoding string
}

// modelEncodings is matched in order, so longer prefixes come first.
// Provider-qualified names ("openai/gpt-4o") are matched on the part after
// the slash.
var modelEncodings = []modelEncoding{
	{"gpt-4o", EncodingO200kBase},
	{"gpt-4.1", EncodingO200kBase},
	{"gpt-5", EncodingO200kBase},
	{"gpt-3.5", EncodingCL100kBase},
	{"gpt-4", EncodingCL100kBase},
	{"chatgpt", EncodingO200kBase},
	{"o1", EncodingO200kBase},
	{"o3", EncodingO200kBase},
	{"o4", EncodingO200kBase},
}

// TiktokenTokenizer implements Estimator using tiktoken-go. Encodings are
// loaded lazily and shared across requests.
type TiktokenTokenizer struct {
	mu        sync.RWMutex
	encodings map[string]*tiktoken.Tiktoken
}

// New creates a new TiktokenTokenizer.
func New() *TiktokenTokenizer {
	return &TiktokenTokenizer{
		encodings: make(map[string]*tiktoken.Tiktoken),
	}
}

func (t *TiktokenTokenizer) getEncoding(model string) (*tiktoken.Tiktoken, error) {
	name := resolveEncoding(model)

	t.mu.RLock()
	enc, ok := t.encodings[name]
	t.mu.RUnlock()
	if ok {
		return enc, nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if enc, ok = t.encodings[name]; ok {
		return enc, nil
	}

	enc, err := tiktoken.GetEncoding(name)
	if err != nil {
		return nil, err
	}
	t.encodings[name] = enc
	return enc, nil
}

// resolveEncoding picks the encoding for a model name. Unknown models,
// including non-OpenAI ones, fall back to cl100k_base.
func resolveEncoding(model string) string {
	m := strings.ToLower(model)
	if i := strings.LastIndex(m, "/"); i >= 0 {
		m = m[i+1:]
	}
	for _, me := range modelEncodings {
		if strings.HasPrefix(m, me.prefix) {
			return me.encoding
		}
	}
	return EncodingCL100kBase
}

// CountTokens counts tokens in text for model.
func (t *TiktokenTokenizer) CountTokens(text, model string) (int, error) {
	if text == "" {
		return 0, nil
	}
	enc, err := t.getEncoding(model)
	if err != nil {
		return 0, err
	}
	return len(enc.Encode(text, nil, nil)), nil
}
