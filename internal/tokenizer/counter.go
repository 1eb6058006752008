package tokenizer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mandalnilabja/goatrelay/internal/types"
)

// Token overheads from OpenAI's chat format documentation.
const (
	messageOverheadGPT4  = 3
	messageOverheadGPT35 = 4
	replyPrimingTokens   = 3
	nameOverhead         = 1

	imageBaseTokens     = 85
	imageTileTokens     = 170
	imageLowDetailTiles = 1
	imageHighDetailMax  = 4
)

// EstimatePrompt estimates the prompt tokens of a chat payload. Payloads
// without messages estimate to zero.
func (t *TiktokenTokenizer) EstimatePrompt(payload map[string]any) (int, error) {
	messages, err := messagesFromPayload(payload)
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}
	model, _ := payload["model"].(string)

	total, err := t.CountMessages(messages, model)
	if err != nil {
		return 0, err
	}

	if tools, ok := payload["tools"]; ok {
		raw, err := json.Marshal(tools)
		if err != nil {
			return 0, fmt.Errorf("encode tools: %w", err)
		}
		n, err := t.CountTokens(string(raw), model)
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}

// messagesFromPayload re-decodes the loosely typed messages array.
func messagesFromPayload(payload map[string]any) ([]types.Message, error) {
	raw, ok := payload["messages"]
	if !ok {
		return nil, nil
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("encode messages: %w", err)
	}
	var messages []types.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return messages, nil
}

// CountMessages counts tokens for messages, including per-message overhead
// and reply priming.
func (t *TiktokenTokenizer) CountMessages(messages []types.Message, model string) (int, error) {
	overhead := messageOverhead(model)
	total := replyPrimingTokens

	for _, msg := range messages {
		n, err := t.countMessage(msg, model)
		if err != nil {
			return 0, err
		}
		total += n + overhead
	}
	return total, nil
}

func (t *TiktokenTokenizer) countMessage(msg types.Message, model string) (int, error) {
	total, err := t.CountTokens(msg.Role, model)
	if err != nil {
		return 0, err
	}

	n, err := t.countContent(msg.Content, model)
	if err != nil {
		return 0, err
	}
	total += n

	if msg.Name != "" {
		n, err := t.CountTokens(msg.Name, model)
		if err != nil {
			return 0, err
		}
		total += n + nameOverhead
	}
	return total, nil
}

func (t *TiktokenTokenizer) countContent(content types.Content, model string) (int, error) {
	if content.Text != "" {
		return t.CountTokens(content.Text, model)
	}

	total := 0
	for _, part := range content.Parts {
		switch part.Type {
		case types.ContentTypeText:
			n, err := t.CountTokens(part.Text, model)
			if err != nil {
				return 0, err
			}
			total += n
		case types.ContentTypeImageURL:
			total += countImageTokens(part.ImageURL)
		}
	}
	return total, nil
}

// countImageTokens applies OpenAI's tile pricing without image dimensions:
// low detail is one tile, anything else is assumed to be four.
func countImageTokens(img *types.ImageURL) int {
	if img == nil {
		return 0
	}
	if strings.EqualFold(img.Detail, "low") {
		return imageBaseTokens + imageLowDetailTiles*imageTileTokens
	}
	return imageBaseTokens + imageHighDetailMax*imageTileTokens
}

func messageOverhead(model string) int {
	if strings.Contains(strings.ToLower(model), "gpt-3.5") {
		return messageOverheadGPT35
	}
	return messageOverheadGPT4
}
