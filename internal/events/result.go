package events

// Result is the structured outcome returned to the trigger transport for one
// change event. Skipped is a valid terminal state, not an error: non-insert
// operations, unknown tables, self-actions and deleted-row races all end there.
type Result struct {
	Success        bool   `json:"success"`
	Skipped        bool   `json:"skipped,omitempty"`
	Message        string `json:"message,omitempty"`
	Type           string `json:"type,omitempty"`
	EntriesCreated int    `json:"entriesCreated,omitempty"`
	EntryCreated   bool   `json:"entryCreated,omitempty"`
	PushSent       int    `json:"pushSent,omitempty"`
	Error          string `json:"error,omitempty"`
}

func skipped(message string) Result {
	return Result{Success: true, Skipped: true, Message: message}
}
