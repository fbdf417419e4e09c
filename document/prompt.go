package document

import (
	"strings"

	"safevoice-backend/models"
)

// ExtractionPrompt builds the instruction sent to the generation service to
// turn a conversation into labeled FIR sections.
func ExtractionPrompt(labels []string, transcript []models.ChatTurn) string {
	var builder strings.Builder

	builder.WriteString("You are helping a survivor of domestic violence prepare a First Information Report (FIR) for the police in India.\n")
	builder.WriteString("Read the conversation below and extract the facts the person has shared.\n")
	builder.WriteString("Respond with exactly the following sections, each starting on its own line with the section name followed by a colon:\n")
	for _, label := range labels {
		builder.WriteString("- " + label + ":\n")
	}
	builder.WriteString("\nRules:\n")
	builder.WriteString("- Use only facts stated in the conversation. Do not invent names, dates or places.\n")
	builder.WriteString("- If a section has no information, write \"" + NotProvided + "\".\n")
	builder.WriteString("- For " + LabelIPC + ", list the sections of the Indian Penal Code that may apply with a short reason for each.\n")
	builder.WriteString("- Do not use markdown formatting.\n\n")

	builder.WriteString("Conversation:\n")
	for _, turn := range transcript {
		switch turn.Role {
		case models.RoleUser:
			builder.WriteString("User: ")
		default:
			builder.WriteString("Assistant: ")
		}
		builder.WriteString(strings.TrimSpace(turn.Text))
		builder.WriteString("\n")
	}

	return builder.String()
}
