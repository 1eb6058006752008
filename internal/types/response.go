package types

// ChatCompletionResponse represents a non-streaming chat completion response.
// Only the fields the relay inspects are decoded; the body itself is relayed
// untouched.
type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// Choice represents a single completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason,omitempty"`
}

// Usage represents token usage statistics.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// HasReasoning reports whether any choice carries reasoning output, either in
// a dedicated field or as an inline <think> block.
func (r *ChatCompletionResponse) HasReasoning() bool {
	for _, c := range r.Choices {
		if c.Message.Reasoning != "" || c.Message.ReasoningContent != "" {
			return true
		}
		if containsThinkTag(c.Message.Content.String()) {
			return true
		}
	}
	return false
}
