package prompt

import (
	"fmt"
	"strings"
	"testing"

	"heysera/internal/model"
)

func TestBuild_NoDocumentsOmitsSection(t *testing.T) {
	p := Build(nil, nil, "What is the budget?")
	if strings.Contains(p, "Document Context:") {
		t.Error("document section should be omitted when no documents are associated")
	}
	if !strings.HasSuffix(p, "User: What is the budget?\nSera:") {
		t.Errorf("prompt should end with the user message and assistant marker, got %q", p[len(p)-60:])
	}
}

func TestBuild_WithDocuments(t *testing.T) {
	p := Build([]string{"Doc one text.", "Doc two text."}, nil, "Summarize.")
	if !strings.Contains(p, "Document Context:\nDoc one text.\n\nDoc two text.") {
		t.Errorf("document texts should be joined by a blank line, got %q", p)
	}
}

func TestBuild_HistoryWindow(t *testing.T) {
	var history []model.Message
	for i := 1; i <= 25; i++ {
		role := model.RoleUser
		if i%2 == 0 {
			role = model.RoleAssistant
		}
		history = append(history, model.Message{Role: role, Content: fmt.Sprintf("msg-%d", i)})
	}

	p := Build(nil, history, "next question")
	if strings.Contains(p, "msg-15\n") {
		t.Error("messages older than the window should be excluded")
	}
	for i := 16; i <= 25; i++ {
		if !strings.Contains(p, fmt.Sprintf("msg-%d", i)) {
			t.Errorf("msg-%d should be inside the window", i)
		}
	}
}

func TestBuild_RoleLabels(t *testing.T) {
	history := []model.Message{
		{Role: model.RoleUser, Content: "hello"},
		{Role: model.RoleAssistant, Content: "hi"},
	}
	p := Build(nil, history, "bye")
	if !strings.Contains(p, "User: hello\nSera: hi\n") {
		t.Errorf("history should render with User/Sera labels in order, got %q", p)
	}
}

func TestBuild_EmptyHistoryOmitsConversation(t *testing.T) {
	p := Build(nil, nil, "q")
	if strings.Contains(p, "Recent conversation:") {
		t.Error("conversation section should be omitted for empty history")
	}
}
