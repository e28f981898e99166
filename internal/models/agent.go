package models

// Response types returned by the orchestrator.
const (
	ResponseTypeText  = "text"
	ResponseTypeFinal = "final_response"
)

type OrchestrateRequest struct {
	TeacherID  string `json:"teacherId"`
	UserPrompt string `json:"userPrompt"`
}

// UIPrompt asks the client to collect more input, currently an image upload.
type UIPrompt struct {
	Tool  string `json:"tool"`
	Topic string `json:"topic"`
}

type AgentResponse struct {
	Type     string    `json:"type"`
	Content  string    `json:"content"`
	UIPrompt *UIPrompt `json:"uiPrompt"`
}

type SaveOptions struct {
	Collection string `json:"collection" validate:"omitempty,oneof=stories concepts"`
}

// GenerateTextRequest mirrors the generator pages: Prompt is the full
// instruction sent to the model, UserPrompt the teacher's own words.
type GenerateTextRequest struct {
	Prompt      string       `json:"prompt" validate:"required"`
	UserPrompt  string       `json:"userPrompt"`
	SaveOptions *SaveOptions `json:"saveOptions"`
}

type GenerateTextResponse struct {
	Content    string  `json:"content"`
	ArtifactID *string `json:"artifactId,omitempty"`
}

type ChalkboardRequest struct {
	Prompt string `json:"prompt" validate:"required,max=500"`
}
