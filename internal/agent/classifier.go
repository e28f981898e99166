package agent

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sahayak-backend/internal/llm"
	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/prompts"
	"sahayak-backend/internal/services"
)

// Classification is the classifier's reading of a request: zero or more tool
// calls, plus any free text the model wrote.
type Classification struct {
	Calls    []ToolCall
	FreeText string
}

type Classifier struct {
	llm    llm.Client
	system string
	tools  []llm.ToolDeclaration
	logger *zap.Logger
}

func NewClassifier(client llm.Client, catalog *prompts.Catalog, l *zap.Logger) (*Classifier, error) {
	decls, err := Declarations(catalog)
	if err != nil {
		return nil, err
	}
	return &Classifier{
		llm:    client,
		system: strings.TrimSpace(catalog.System),
		tools:  decls,
		logger: logger.OrNop(l).Named("classifier"),
	}, nil
}

// Classify asks the model which tools the request needs. Calls naming an
// unknown tool are dropped.
func (c *Classifier) Classify(ctx context.Context, userPrompt string) (*Classification, error) {
	userPrompt = strings.TrimSpace(userPrompt)
	if userPrompt == "" {
		return nil, services.Invalid("userPrompt", "is required")
	}

	resp, err := c.llm.GenerateWithTools(ctx, llm.ToolRequest{
		System: c.system,
		Prompt: userPrompt,
		Tools:  c.tools,
	})
	if err != nil {
		return nil, fmt.Errorf("classify request: %w", err)
	}

	out := &Classification{FreeText: strings.TrimSpace(resp.Text)}
	for _, fc := range resp.Calls {
		name, ok := ParseToolName(fc.Name)
		if !ok {
			c.logger.Warn("dropping unknown tool call", zap.String("tool", fc.Name))
			continue
		}
		out.Calls = append(out.Calls, ToolCall{Name: name, Args: fc.Args})
	}
	return out, nil
}
