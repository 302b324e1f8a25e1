package generation

import "context"

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is a role tagged chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat asks the provider for a machine parseable reply.
type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatRequest is a chat completion call.
type ChatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatResponse is the subset of a chat completion reply we read.
type ChatResponse struct {
	Choices []Choice `json:"choices"`
}

// Choice is one completion candidate. Content is nil when the provider
// returned no text.
type Choice struct {
	Message struct {
		Content *string `json:"content"`
	} `json:"message"`
}

// Text returns the first choice's content, or "" when there is none.
func (r *ChatResponse) Text() string {
	if r == nil || len(r.Choices) == 0 || r.Choices[0].Message.Content == nil {
		return ""
	}
	return *r.Choices[0].Message.Content
}

// Completer performs a single chat completion. Non-2xx replies are
// returned as *ProviderError.
type Completer interface {
	Complete(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}
