package models

import (
	"time"

	"github.com/google/uuid"
)

type Suggestion struct {
	ID             uuid.UUID     `json:"id"`
	TeacherID      string        `json:"-"`
	SuggestionText string        `json:"suggestionText"`
	ActionType     string        `json:"actionType"` // "generateStory" | "explainConcept"
	ActionPayload  ActionPayload `json:"actionPayload"`
	IsNew          bool          `json:"isNew"`
	CreatedAt      time.Time     `json:"createdAt"`
}

type ActionPayload struct {
	Topic string `json:"topic"`
}

// FollowUpPrompt is the orchestrator prompt the UI sends when a teacher acts
// on the suggestion.
func (s *Suggestion) FollowUpPrompt() string {
	if s.ActionType == ActivityExplainConcept {
		return "Explain the concept of " + s.ActionPayload.Topic
	}
	return "Tell a story about " + s.ActionPayload.Topic
}

// SuggestionView is the read model returned to the dashboard.
type SuggestionView struct {
	*Suggestion
	FollowUpPrompt string `json:"followUpPrompt"`
}

type Briefing struct {
	ID          uuid.UUID     `json:"id,omitempty"`
	TeacherID   string        `json:"-"`
	Title       string        `json:"title"`
	Message     string        `json:"message"`
	Suggestions BriefingIdeas `json:"suggestions"`
	WeekNumber  int           `json:"weekNumber"`
	IsNew       bool          `json:"isNew"`
	IsDefault   bool          `json:"isDefault,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type BriefingIdeas struct {
	StoryIdea      string `json:"storyIdea"`
	BlackboardIdea string `json:"blackboardIdea"`
}

// DefaultBriefing is shown until the first scheduled briefing lands.
func DefaultBriefing() *Briefing {
	return &Briefing{
		Title:   "Welcome to your Dashboard!",
		Message: "Sahayak is ready to help. As you add a syllabus, proactive tips and lesson ideas will appear here each day.",
		Suggestions: BriefingIdeas{
			StoryIdea:      "Try the Story Generator to create a tale about a local hero.",
			BlackboardIdea: "Use the Chalkboard Aid to visualize the water cycle.",
		},
		IsDefault: true,
	}
}
