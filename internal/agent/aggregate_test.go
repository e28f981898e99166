package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sahayak-backend/internal/models"
)

func TestAggregateJoinsSummaries(t *testing.T) {
	resp := Aggregate([]Result{
		Summary(`Story about "monsoons"`),
		Summary(`Explanation for "why it rains"`),
	})

	assert.Equal(t, models.ResponseTypeFinal, resp.Type)
	assert.Equal(t, `I've finished your request! I created: Story about "monsoons" and Explanation for "why it rains". You can find them in their dedicated history pages.`, resp.Content)
	assert.Nil(t, resp.UIPrompt)
}

func TestAggregateUIPromptAlone(t *testing.T) {
	resp := Aggregate([]Result{UIPrompt(ToolRequestWorksheetImage, "fractions")})

	assert.Equal(t, `Great! I can create a worksheet on "fractions". Please upload an image of the textbook page you'd like me to use.`, resp.Content)
	require.NotNil(t, resp.UIPrompt)
	assert.Equal(t, "requestWorksheetImage", resp.UIPrompt.Tool)
	assert.Equal(t, "fractions", resp.UIPrompt.Topic)
}

func TestAggregateUIPromptAsAddendum(t *testing.T) {
	resp := Aggregate([]Result{
		UIPrompt(ToolRequestWorksheetImage, "plants"),
		Summary(`Story about "plants"`),
	})

	assert.Equal(t, `I've finished your request! I created: Story about "plants". You can find them in their dedicated history pages. Additionally, I can create a worksheet on "plants". Please upload an image of the textbook page you'd like me to use.`, resp.Content)
	require.NotNil(t, resp.UIPrompt)
	assert.Equal(t, "plants", resp.UIPrompt.Topic)
}

func TestAggregateFirstUIPromptWins(t *testing.T) {
	resp := Aggregate([]Result{
		UIPrompt(ToolRequestWorksheetImage, "fractions"),
		UIPrompt(ToolRequestWorksheetImage, "decimals"),
	})

	require.NotNil(t, resp.UIPrompt)
	assert.Equal(t, "fractions", resp.UIPrompt.Topic)
	assert.NotContains(t, resp.Content, "decimals")
}

func TestAggregateAnswerShortCircuits(t *testing.T) {
	resp := Aggregate([]Result{
		Summary(`Story about "monsoons"`),
		UIPrompt(ToolRequestWorksheetImage, "fractions"),
		Answer("Ravi was absent 3 times."),
		Failure("boom"),
	})

	assert.Equal(t, models.ResponseTypeFinal, resp.Type)
	assert.Equal(t, "Ravi was absent 3 times.", resp.Content)
	assert.Nil(t, resp.UIPrompt)
}

func TestAggregateSkipsFailures(t *testing.T) {
	resp := Aggregate([]Result{Failure("model down"), Summary(`Story about "tigers"`)})
	assert.Equal(t, `I've finished your request! I created: Story about "tigers". You can find them in their dedicated history pages.`, resp.Content)

	resp = Aggregate([]Result{Failure("model down"), Failure("db down")})
	assert.Equal(t, "I'm sorry, I ran into a problem. Please try again.", resp.Content)
	assert.Nil(t, resp.UIPrompt)
}
