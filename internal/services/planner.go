package services

import (
	"datachat-ai/internal/constants"
	"datachat-ai/internal/models"
	"datachat-ai/pkg/llm"
	"datachat-ai/pkg/tabular"
	"fmt"
	"strings"
)

// buildPlannerPrompt renders the per-dataset part of the planner request:
// the schema the model may reference and the question to translate
func buildPlannerPrompt(schema tabular.Schema, question string) string {
	var sb strings.Builder
	sb.WriteString("Dataset columns:\n")
	for _, col := range schema.Columns {
		fmt.Fprintf(&sb, "- %s (%s)\n", col.Name, col.Kind)
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}

// toHistory converts stored messages into the planner's conversation
// context. The result previews are omitted, only the spoken turns matter
// for reference resolution.
func toHistory(messages []*models.Message) []llm.Message {
	history := make([]llm.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Content == "" {
			continue
		}
		history = append(history, llm.Message{Role: msg.Role, Content: msg.Content})
	}
	return history
}

// plannerRequest assembles the full completion request for one question
func plannerRequest(schema tabular.Schema, history []llm.Message, question string) llm.CompletionRequest {
	return llm.CompletionRequest{
		SystemPrompt: constants.PlannerSystemPrompt,
		History:      history,
		Prompt:       buildPlannerPrompt(schema, question),
		ForceJSON:    true,
	}
}
