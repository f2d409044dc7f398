package provider

// Message is a single turn of a structured conversation.
type Message struct {
	Role    string `json:"role"` // "system" or "user"
	Content string `json:"content"`
}

// Conversation is the ordered message sequence sent to a backend.
type Conversation []Message

// NewConversation builds a conversation from an optional system instruction
// and a user prompt. An empty system instruction is omitted.
func NewConversation(system, prompt string) Conversation {
	conv := Conversation{}
	if system != "" {
		conv = append(conv, Message{Role: "system", Content: system})
	}
	return append(conv, Message{Role: "user", Content: prompt})
}

// Options tune a single generation request.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// DefaultOptions matches the upstream service defaults for free-form text.
func DefaultOptions() Options {
	return Options{Temperature: 0.7, MaxTokens: 4096}
}

// JSONOptions matches the upstream service defaults for structured output:
// low temperature, larger budget.
func JSONOptions() Options {
	return Options{Temperature: 0.2, MaxTokens: 8192}
}
