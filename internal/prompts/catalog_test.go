package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	names := make([]string, 0, len(c.Tools))
	for _, tool := range c.Tools {
		names = append(names, tool.Name)
		require.Len(t, tool.Params, 1, tool.Name)
		assert.NotEmpty(t, tool.Description, tool.Name)
	}
	assert.ElementsMatch(t, []string{"generateStory", "explainConcept", "requestWorksheetImage", "analyzeAttendance"}, names)

	spec, ok := c.Tool("explainConcept")
	require.True(t, ok)
	assert.Equal(t, "concept", spec.Params[0].Name)

	assert.Contains(t, c.System, "Multiple tools may be invoked in parallel")
}

func TestNoAttendanceMessageUsesWindow(t *testing.T) {
	c := Default()

	msg, err := c.Message(MessageNoAttendanceData, map[string]any{"WindowDays": 7})
	require.NoError(t, err)
	assert.Equal(t, "I couldn't find any attendance records from the last 7 days, so there is nothing to analyze yet.", msg)

	_, err = c.Message(MessageNoAttendanceData, map[string]any{})
	assert.Error(t, err)
	_, err = c.Message("unknown", nil)
	assert.Error(t, err)
}

func TestRenderWrapperPrompts(t *testing.T) {
	c := Default()

	story, err := c.Render(TemplateStory, map[string]string{"Topic": "monsoons"})
	require.NoError(t, err)
	assert.Equal(t, "Create a story about: monsoons", story)

	concept, err := c.Render(TemplateConcept, map[string]string{"Topic": "why it rains"})
	require.NoError(t, err)
	assert.Equal(t, "Explain simply: why it rains", concept)
}

func TestRenderMissingKey(t *testing.T) {
	c := Default()
	_, err := c.Render(TemplateWorksheet, map[string]string{})
	assert.Error(t, err)

	_, err = c.Render("nope", nil)
	assert.Error(t, err)
}

func TestParseRejectsEmptyCatalog(t *testing.T) {
	_, err := Parse([]byte("system: hi\n"))
	assert.Error(t, err)
}
