package agent

import (
	"fmt"
	"strings"

	"sahayak-backend/internal/models"
)

const (
	summaryFormat   = "I've finished your request! I created: %s. You can find them in their dedicated history pages."
	uploadFormat    = "Great! I can create a worksheet on \"%s\". Please upload an image of the textbook page you'd like me to use."
	addendumFormat  = "Additionally, I can create a worksheet on \"%s\". Please upload an image of the textbook page you'd like me to use."
	allFailedReply  = "I'm sorry, I ran into a problem. Please try again."
	summaryJoinWord = " and "
)

// Aggregate folds tool results into one reply. An answer wins outright;
// otherwise summaries are confirmed together and the first UI prompt, in call
// order, is appended.
func Aggregate(results []Result) models.AgentResponse {
	var (
		summaries []string
		prompt    *Result
	)
	for i := range results {
		r := results[i]
		switch r.Kind {
		case ResultAnswer:
			return models.AgentResponse{Type: models.ResponseTypeFinal, Content: r.Text}
		case ResultSummary:
			summaries = append(summaries, r.Text)
		case ResultUIPrompt:
			if prompt == nil {
				prompt = &results[i]
			}
		}
	}

	var content string
	if len(summaries) > 0 {
		content = fmt.Sprintf(summaryFormat, strings.Join(summaries, summaryJoinWord))
	}

	resp := models.AgentResponse{Type: models.ResponseTypeFinal}
	if prompt != nil {
		if content == "" {
			content = fmt.Sprintf(uploadFormat, prompt.Topic)
		} else {
			content += " " + fmt.Sprintf(addendumFormat, prompt.Topic)
		}
		resp.UIPrompt = &models.UIPrompt{Tool: string(prompt.Tool), Topic: prompt.Topic}
	}

	if content == "" {
		content = allFailedReply
	}
	resp.Content = content
	return resp
}
