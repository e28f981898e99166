package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"sahayak-backend/internal/logger"
	"sahayak-backend/internal/metrics"
)

type GeminiOptions struct {
	APIKey         string
	Model          string
	ConcurrentReqs int
	Timeout        time.Duration
	Metrics        *metrics.Metrics
	Logger         *zap.Logger
}

// GeminiClient implements Client on top of the Gemini API.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	textModel *genai.GenerativeModel
	jsonModel *genai.GenerativeModel
	timeout   time.Duration
	rateChan  chan struct{} // Token bucket
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if opts.ConcurrentReqs <= 0 {
		opts.ConcurrentReqs = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Minute
	}

	textModel := client.GenerativeModel(opts.Model)
	textModel.SetTemperature(0.7)
	textModel.SetTopP(0.95)

	jsonModel := client.GenerativeModel(opts.Model)
	jsonModel.SetTemperature(0.4)
	jsonModel.SetTopP(0.95)
	jsonModel.ResponseMIMEType = "application/json"

	rateChan := make(chan struct{}, opts.ConcurrentReqs)
	for i := 0; i < opts.ConcurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiClient{
		client:    client,
		modelName: opts.Model,
		textModel: textModel,
		jsonModel: jsonModel,
		timeout:   opts.Timeout,
		rateChan:  rateChan,
		metrics:   opts.Metrics,
		logger:    logger.OrNop(opts.Logger).Named("gemini"),
	}, nil
}

func (c *GeminiClient) Close() {
	c.client.Close()
}

// acquireRate blocks until a rate slot is available
func (c *GeminiClient) acquireRate(ctx context.Context) error {
	select {
	case <-c.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(5 * time.Minute):
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (c *GeminiClient) releaseRate() {
	c.rateChan <- struct{}{}
}

func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := c.generate(ctx, "text", c.textModel, genai.Text(prompt))
	if err != nil {
		return "", err
	}
	return requireText(extractText(resp))
}

func (c *GeminiClient) GenerateWithImage(ctx context.Context, prompt string, img Image) (string, error) {
	resp, err := c.generate(ctx, "image", c.textModel, genai.Text(prompt), toBlob(img))
	if err != nil {
		return "", err
	}
	return requireText(extractText(resp))
}

func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, img *Image) (string, error) {
	parts := []genai.Part{genai.Text(prompt)}
	if img != nil {
		parts = append(parts, toBlob(*img))
	}
	resp, err := c.generate(ctx, "json", c.jsonModel, parts...)
	if err != nil {
		return "", err
	}
	return requireText(extractText(resp))
}

func (c *GeminiClient) GenerateWithTools(ctx context.Context, req ToolRequest) (*ToolResponse, error) {
	// Tool declarations differ per call, so this model is not shared.
	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(0.2)
	model.Tools = []*genai.Tool{{FunctionDeclarations: buildFunctionDeclarations(req.Tools)}}
	model.ToolConfig = &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{Mode: genai.FunctionCallingAuto},
	}
	if req.System != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(req.System))
	}

	resp, err := c.generate(ctx, "tools", model, genai.Text(req.Prompt))
	if err != nil {
		return nil, err
	}

	return &ToolResponse{
		Calls: extractFunctionCalls(resp),
		Text:  strings.TrimSpace(extractText(resp)),
	}, nil
}

func (c *GeminiClient) generate(ctx context.Context, op string, model *genai.GenerativeModel, parts ...genai.Part) (*genai.GenerateContentResponse, error) {
	if err := c.acquireRate(ctx); err != nil {
		return nil, &ErrProviderUnavailable{Op: op, Err: err}
	}
	defer c.releaseRate()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := model.GenerateContent(ctx, parts...)
	elapsed := time.Since(start)
	if err != nil {
		c.metrics.ObserveGeneration(op, "error", elapsed)
		c.logger.Warn("generation failed", zap.String("op", op), zap.Duration("elapsed", elapsed), zap.Error(err))
		return nil, &ErrProviderUnavailable{Op: op, Err: err}
	}
	c.metrics.ObserveGeneration(op, "ok", elapsed)

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop && cand.FinishReason != genai.FinishReasonUnspecified {
			c.logger.Warn("generation stopped early",
				zap.String("op", op),
				zap.Int("candidate", i),
				zap.String("finish_reason", cand.FinishReason.String()),
			)
		}
	}

	return resp, nil
}

func toBlob(img Image) genai.Blob {
	return genai.Blob{MIMEType: img.MIMEType, Data: img.Data}
}

func buildFunctionDeclarations(tools []ToolDeclaration) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		props := make(map[string]*genai.Schema, len(t.Params))
		required := make([]string, 0, len(t.Params))
		for _, p := range t.Params {
			props[p.Name] = &genai.Schema{Type: genai.TypeString, Description: p.Description}
			required = append(required, p.Name)
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   required,
			},
		})
	}
	return decls
}

// extractText gets the text content from a Gemini response
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
		// Only the first candidate with content is used.
		if b.Len() > 0 {
			break
		}
	}
	return b.String()
}

func extractFunctionCalls(resp *genai.GenerateContentResponse) []FunctionCall {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, part := range resp.Candidates[0].Content.Parts {
		fc, ok := part.(genai.FunctionCall)
		if !ok {
			continue
		}
		args := make(map[string]string, len(fc.Args))
		for k, v := range fc.Args {
			switch val := v.(type) {
			case string:
				args[k] = val
			case nil:
			default:
				args[k] = fmt.Sprint(val)
			}
		}
		calls = append(calls, FunctionCall{Name: fc.Name, Args: args})
	}
	return calls
}

func requireText(text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}
