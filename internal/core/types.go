package core

const (
	EvaName      = "Eva"
	EvaUserAgent = "Eva-Backend/0.1"
	EvaVersion   = "0.1.0"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
	// RoleModel is the assistant role as the Gemini API names it.
	RoleModel = "model"
)

// ChatMessage is the wire-level unit handed to a completion provider:
// role plus content, nothing else.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
