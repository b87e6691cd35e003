package models

// EditRequest is the inbound payload sent by the editor front-end.
// Nil fields were absent (or null) in the JSON body.
type EditRequest struct {
	Instruction *string `json:"instruction"`
	Content     *string `json:"content"`
}

// InstructionOr returns the instruction, or fallback when it was not supplied.
func (r EditRequest) InstructionOr(fallback string) string {
	if r.Instruction == nil {
		return fallback
	}
	return *r.Instruction
}

// ContentOr returns the content, or fallback when it was not supplied.
func (r EditRequest) ContentOr(fallback string) string {
	if r.Content == nil {
		return fallback
	}
	return *r.Content
}

// EditResponse carries the model's replacement markup.
type EditResponse struct {
	ModifiedContent string `json:"modifiedContent"`
}

// ErrorResponse is the body of every non-2xx reply. Details is set only for
// provider errors, where it carries the raw provider body, possibly empty.
type ErrorResponse struct {
	Error      string  `json:"error"`
	Details    *string `json:"details,omitempty"`
	Suggestion string  `json:"suggestion,omitempty"`
}

// Usage records token accounting reported by the provider.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
}
