package agent

import (
	"fmt"
	"strings"

	"sahayak-backend/internal/llm"
	"sahayak-backend/internal/prompts"
)

// ToolName is the closed set of tools the classifier may select.
type ToolName string

const (
	ToolGenerateStory         ToolName = "generateStory"
	ToolExplainConcept        ToolName = "explainConcept"
	ToolRequestWorksheetImage ToolName = "requestWorksheetImage"
	ToolAnalyzeAttendance     ToolName = "analyzeAttendance"
)

// AllTools lists every tool in declaration order.
var AllTools = []ToolName{
	ToolGenerateStory,
	ToolExplainConcept,
	ToolRequestWorksheetImage,
	ToolAnalyzeAttendance,
}

// ParseToolName maps a model-supplied name onto a known tool.
func ParseToolName(s string) (ToolName, bool) {
	for _, t := range AllTools {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ArgName is the single string argument each tool takes.
func (t ToolName) ArgName() string {
	switch t {
	case ToolExplainConcept:
		return "concept"
	case ToolAnalyzeAttendance:
		return "query"
	default:
		return "topic"
	}
}

// ToolCall is one classified tool invocation.
type ToolCall struct {
	Name ToolName
	Args map[string]string
}

// Arg returns the tool's argument, trimmed.
func (c ToolCall) Arg() string {
	return strings.TrimSpace(c.Args[c.Name.ArgName()])
}

// Declarations builds the tool schema sent to the model from the catalog. Every
// known tool must be described there.
func Declarations(catalog *prompts.Catalog) ([]llm.ToolDeclaration, error) {
	decls := make([]llm.ToolDeclaration, 0, len(AllTools))
	for _, name := range AllTools {
		spec, ok := catalog.Tool(string(name))
		if !ok {
			return nil, fmt.Errorf("catalog is missing tool %s", name)
		}
		params := make([]llm.ToolParam, 0, len(spec.Params))
		for _, p := range spec.Params {
			params = append(params, llm.ToolParam{Name: p.Name, Description: strings.TrimSpace(p.Description)})
		}
		decls = append(decls, llm.ToolDeclaration{
			Name:        spec.Name,
			Description: strings.TrimSpace(spec.Description),
			Params:      params,
		})
	}
	return decls, nil
}
