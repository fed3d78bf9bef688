package conversation

import "context"

const (
	ChatRoleSystem = "system"
	ChatRoleUser   = "user"
	ChatRoleModel  = "model"
)

// ChatMessage is one turn of a conversation.
type ChatMessage struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient is the external conversational model. The last entry of
// req.Messages is the new user utterance; everything before it is history.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}
