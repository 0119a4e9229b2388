package services

import (
	"datachat-ai/config"
	"datachat-ai/internal/constants"
	"datachat-ai/pkg/llm"
	"fmt"
	"strings"
)

// StyleConstraints shape the summarizer's register. The forbidden words
// keep the answer about the data, never about the conversation itself.
type StyleConstraints struct {
	MaxSentences   int
	ForbiddenWords []string
	Tone           string
}

func DefaultStyleConstraints() StyleConstraints {
	maxSentences := config.Env.MaxSentences
	if maxSentences <= 0 {
		maxSentences = constants.DefaultMaxSentences
	}
	return StyleConstraints{
		MaxSentences:   maxSentences,
		ForbiddenWords: constants.DefaultForbiddenWords,
		Tone:           "professional",
	}
}

func (s StyleConstraints) systemPrompt() string {
	quoted := make([]string, 0, len(s.ForbiddenWords))
	for _, w := range s.ForbiddenWords {
		quoted = append(quoted, fmt.Sprintf("%q", w))
	}
	return fmt.Sprintf(constants.SummarizerSystemPrompt, s.MaxSentences, strings.Join(quoted, ", "), s.Tone)
}

// summarizerRequest asks for a natural-language reading of a computed
// result preview
func summarizerRequest(style StyleConstraints, question, preview string) llm.CompletionRequest {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nComputed result:\n")
	sb.WriteString(preview)
	return llm.CompletionRequest{
		SystemPrompt: style.systemPrompt(),
		Prompt:       sb.String(),
	}
}

// retrievalRequest asks for an answer grounded in the retrieved rows
func retrievalRequest(style StyleConstraints, question string, documents []string) llm.CompletionRequest {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n\nMost relevant rows from the dataset:\n")
	for _, doc := range documents {
		sb.WriteString("- ")
		sb.WriteString(doc)
		sb.WriteString("\n")
	}
	return llm.CompletionRequest{
		SystemPrompt: style.systemPrompt(),
		Prompt:       sb.String(),
	}
}

// conversationalRequest is the direct-answer path. When execution
// degraded, the reason is passed along so the model can tell the user
// what was missing.
func conversationalRequest(history []llm.Message, question, failureNote string) llm.CompletionRequest {
	prompt := question
	if failureNote != "" {
		prompt = fmt.Sprintf("%s\n\n(Note for the assistant: the question could not be answered from the dataset. Reason: %s)", question, failureNote)
	}
	return llm.CompletionRequest{
		SystemPrompt: constants.ConversationalSystemPrompt,
		History:      history,
		Prompt:       prompt,
	}
}
