// Package prompt assembles the text sent to the language model: the
// assistant's standing instructions, the associated documents' extracted
// text, a bounded window of recent conversation, and the new user message.
package prompt

import (
	"fmt"
	"strings"

	"heysera/internal/model"
)

// HistoryWindow bounds how many recent messages are replayed into each
// prompt (five user/assistant turn-pairs).
const HistoryWindow = 10

const (
	userLabel      = "User"
	assistantLabel = "Sera"
)

const systemPrompt = `You are Sera, an AI assistant specialized in policy document analysis. Your role is to:

1. Analyze policy documents with precision and clarity
2. Answer questions about policy content, implications, and recommendations
3. Provide summaries, key points, and actionable insights
4. Help users understand complex policy language in simple terms
5. Identify potential issues, gaps, or contradictions in policies
6. Suggest improvements or alternatives when appropriate

Always maintain a professional yet friendly tone. Be concise but thorough in your responses.
When analyzing documents, focus on:
- Key objectives and goals
- Implementation requirements
- Potential challenges or risks
- Stakeholder impacts
- Compliance requirements
- Financial implications

If you don't have enough context or information, ask clarifying questions.`

// Build renders the full prompt. Document text is included verbatim, joined
// by blank lines; the section is omitted entirely when no documents are
// associated. No token budget is enforced here.
func Build(docTexts []string, history []model.Message, userMessage string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n\n")

	docs := make([]string, 0, len(docTexts))
	for _, t := range docTexts {
		if strings.TrimSpace(t) != "" {
			docs = append(docs, t)
		}
	}
	if len(docs) > 0 {
		b.WriteString("Document Context:\n")
		b.WriteString(strings.Join(docs, "\n\n"))
		b.WriteString("\n\n")
	}

	recent := history
	if len(recent) > HistoryWindow {
		recent = recent[len(recent)-HistoryWindow:]
	}
	if len(recent) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, msg := range recent {
			label := userLabel
			if msg.Role == model.RoleAssistant {
				label = assistantLabel
			}
			fmt.Fprintf(&b, "%s: %s\n", label, msg.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "%s: %s\n%s:", userLabel, userMessage, assistantLabel)
	return b.String()
}
