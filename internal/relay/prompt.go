package relay

import (
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const (
	maxTokens   = 512
	temperature = 0.3
)

const systemPrompt = "You are an expert web developer. Edit and improve HTML/CSS for Bootstrap v4.5.3 and jQuery v3.5.1 integrations. " +
	"If the user asks about icons, they mean Font Awesome icons (Free 6.6.0). " +
	"Return only the modified HTML/CSS code without any explanations, comments, or additional text, and do not include <html> and <head> tags or anything similar - only the inside of the <body>. " +
	"If some additional styles or scripts are necessary, do not place them at the top of the code, and never include or import any additional libraries. " +
	"Always return the entire response inside a single code block marked exactly as ```html ```"

// SystemPrompt returns the fixed instruction sent ahead of every edit.
func SystemPrompt() string {
	return systemPrompt
}

// UserPrompt interpolates the caller's instruction and markup.
func UserPrompt(instruction, content string) string {
	return fmt.Sprintf("Instruction: %s\n\nCurrent HTML/CSS content:\n%s", instruction, content)
}

// BuildMessages returns the system + user pair for one edit.
func BuildMessages(instruction, content string) []openai.ChatCompletionMessage {
	return []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: UserPrompt(instruction, content)},
	}
}

type chatPayload struct {
	Model       string                         `json:"model"`
	Messages    []openai.ChatCompletionMessage `json:"messages"`
	MaxTokens   int                            `json:"max_tokens"`
	Temperature float64                        `json:"temperature"`
	Stream      bool                           `json:"stream"`
}

func buildPayload(model, instruction, content string) chatPayload {
	return chatPayload{
		Model:       model,
		Messages:    BuildMessages(instruction, content),
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Stream:      false,
	}
}
