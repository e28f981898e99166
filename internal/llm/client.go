package llm

import "context"

// Client is the generation backend used by every component. Implementations
// must be safe for concurrent use.
type Client interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
	GenerateWithImage(ctx context.Context, prompt string, img Image) (string, error)
	// GenerateJSON asks for a JSON-only reply. img may be nil.
	GenerateJSON(ctx context.Context, prompt string, img *Image) (string, error)
	GenerateWithTools(ctx context.Context, req ToolRequest) (*ToolResponse, error)
}

// Image is an inline image payload.
type Image struct {
	MIMEType string
	Data     []byte
}

// ToolDeclaration describes a callable tool. Every parameter is a required
// string.
type ToolDeclaration struct {
	Name        string
	Description string
	Params      []ToolParam
}

type ToolParam struct {
	Name        string
	Description string
}

type ToolRequest struct {
	System string
	Prompt string
	Tools  []ToolDeclaration
}

// FunctionCall is one tool invocation requested by the model.
type FunctionCall struct {
	Name string
	Args map[string]string
}

// ToolResponse holds the model's tool calls and any free text it produced
// alongside them.
type ToolResponse struct {
	Calls []FunctionCall
	Text  string
}
