package models

// ConversationMessage is one entry of the conversation sent to the AI resolver
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AIChatRequest is the resolver input: the visible conversation (oldest first,
// ending with the newest user turn) plus a snapshot of the project's files.
type AIChatRequest struct {
	Messages       []ConversationMessage `json:"messages"`
	ProjectContext map[string]string     `json:"project_context,omitempty"`
}

// LastUserMessage returns the content of the newest user turn, or "" if none
func (r *AIChatRequest) LastUserMessage() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == string(RoleUser) {
			return r.Messages[i].Content
		}
	}
	return ""
}

// AIChatResponse is the resolver output. Files is a file patch: additions or
// overwrites suggested by the reply. Its shape does not depend on which
// strategy served the request.
type AIChatResponse struct {
	Message string            `json:"message"`
	Files   map[string]string `json:"files"`
}

// ConversationFromMessages converts stored messages into resolver input order
func ConversationFromMessages(messages []ChatMessage) []ConversationMessage {
	out := make([]ConversationMessage, 0, len(messages))
	for _, m := range messages {
		out = append(out, ConversationMessage{Role: string(m.Role), Content: m.Content})
	}
	return out
}
