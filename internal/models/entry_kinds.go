package models

// Memory entry type constants. The type field is free-form category text;
// these are the kinds the engine itself emits. Collaborators may append
// custom kinds.
const (
	EntryTypeTaskStart    = "task_start"
	EntryTypeTaskResult   = "task_result"
	EntryTypeFeedback     = "feedback"
	EntryTypeError        = "error"
	EntryTypeToolUse      = "tool_use"
	EntryTypeSessionStart = "session_start"
)
