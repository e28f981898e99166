package llm

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildFunctionDeclarations(t *testing.T) {
	decls := buildFunctionDeclarations([]ToolDeclaration{{
		Name:        "generateStory",
		Description: "Tell a story",
		Params:      []ToolParam{{Name: "topic", Description: "What the story is about"}},
	}})

	require.Len(t, decls, 1)
	assert.Equal(t, "generateStory", decls[0].Name)
	require.NotNil(t, decls[0].Parameters)
	assert.Equal(t, genai.TypeObject, decls[0].Parameters.Type)
	assert.Equal(t, []string{"topic"}, decls[0].Parameters.Required)
	assert.Equal(t, genai.TypeString, decls[0].Parameters.Properties["topic"].Type)
}

func TestExtractFunctionCallsAndText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text("Sure. "),
				genai.FunctionCall{Name: "generateStory", Args: map[string]any{"topic": "monsoons"}},
				genai.FunctionCall{Name: "explainConcept", Args: map[string]any{"concept": "why it rains", "grade": float64(3)}},
			}},
		}},
	}

	calls := extractFunctionCalls(resp)
	require.Len(t, calls, 2)
	assert.Equal(t, FunctionCall{Name: "generateStory", Args: map[string]string{"topic": "monsoons"}}, calls[0])
	assert.Equal(t, "why it rains", calls[1].Args["concept"])
	assert.Equal(t, "3", calls[1].Args["grade"])

	assert.Equal(t, "Sure. ", extractText(resp))
}

func TestExtractText_NoCandidates(t *testing.T) {
	assert.Equal(t, "", extractText(&genai.GenerateContentResponse{}))
	assert.Nil(t, extractFunctionCalls(nil))
}

func TestRequireText(t *testing.T) {
	_, err := requireText("  \n")
	assert.ErrorIs(t, err, ErrEmptyResponse)

	text, err := requireText("hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}
