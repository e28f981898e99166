package agent

// ResultKind tags the outcome of one tool call.
type ResultKind int

const (
	ResultSummary ResultKind = iota + 1
	ResultUIPrompt
	ResultAnswer
	ResultFailure
)

func (k ResultKind) String() string {
	switch k {
	case ResultSummary:
		return "summary"
	case ResultUIPrompt:
		return "ui_prompt"
	case ResultAnswer:
		return "answer"
	case ResultFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Result is the outcome of a tool call. Only the fields for Kind are set:
// Text for summaries and answers, Tool and Topic for UI prompts, Reason for
// failures.
type Result struct {
	Kind   ResultKind
	Text   string
	Tool   ToolName
	Topic  string
	Reason string
}

func Summary(text string) Result {
	return Result{Kind: ResultSummary, Text: text}
}

func UIPrompt(tool ToolName, topic string) Result {
	return Result{Kind: ResultUIPrompt, Tool: tool, Topic: topic}
}

func Answer(text string) Result {
	return Result{Kind: ResultAnswer, Text: text}
}

func Failure(reason string) Result {
	return Result{Kind: ResultFailure, Reason: reason}
}
