package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"heysera/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(filepath.Join(dir, "data"), filepath.Join(dir, "backups"))
	if err != nil {
		t.Fatalf("open store failed: %v", err)
	}
	return s
}

func TestGetOrCreateSession_FreshIDs(t *testing.T) {
	s := newTestStore(t)

	first, created, err := s.GetOrCreateSession("")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if !created {
		t.Error("expected created=true for empty id")
	}
	second, _, err := s.GetOrCreateSession("")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first == second {
		t.Errorf("fresh ids should be distinct, both %q", first)
	}

	session, err := s.Session(first)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if len(session.Messages) != 0 || len(session.Documents) != 0 {
		t.Errorf("new session should be empty, got %d messages, %d documents",
			len(session.Messages), len(session.Documents))
	}
}

func TestGetOrCreateSession_ExistingID(t *testing.T) {
	s := newTestStore(t)
	id, _, _ := s.GetOrCreateSession("")

	got, created, err := s.GetOrCreateSession(id)
	if err != nil {
		t.Fatalf("lookup failed: %v", err)
	}
	if created || got != id {
		t.Errorf("expected existing id %q back, got %q created=%v", id, got, created)
	}
}

func TestGetOrCreateSession_UnknownID(t *testing.T) {
	s := newTestStore(t)

	_, _, err := s.GetOrCreateSession("no-such-session")
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAppendTurn(t *testing.T) {
	s := newTestStore(t)
	id, _, _ := s.GetOrCreateSession("")
	before, _ := s.Session(id)

	user := model.Message{Role: model.RoleUser, Content: "hello", CreatedAt: time.Now()}
	assistant := model.Message{Role: model.RoleAssistant, Content: "hi there", CreatedAt: time.Now()}
	if err := s.AppendTurn(id, user, assistant); err != nil {
		t.Fatalf("append turn failed: %v", err)
	}

	session, err := s.Session(id)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if len(session.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(session.Messages))
	}
	if session.Messages[0].Role != model.RoleUser || session.Messages[1].Role != model.RoleAssistant {
		t.Errorf("unexpected roles: %s, %s", session.Messages[0].Role, session.Messages[1].Role)
	}
	if session.UpdatedAt.Before(before.UpdatedAt) {
		t.Error("updated_at should not move backwards")
	}
}

func TestAppendMessage_UnknownSession(t *testing.T) {
	s := newTestStore(t)
	err := s.AppendMessage("missing", model.Message{Role: model.RoleUser, Content: "x"})
	if !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestAttachDocumentAndCascadeDelete(t *testing.T) {
	s := newTestStore(t)
	id, _, _ := s.GetOrCreateSession("")

	doc := model.Document{
		ID:         "doc-1",
		Filename:   "policy.txt",
		Content:    "Budget increases 5%.",
		FileType:   "txt",
		Size:       20,
		TextLength: 20,
		UploadedAt: time.Now(),
	}
	if err := s.AttachDocument(id, doc); err != nil {
		t.Fatalf("attach failed: %v", err)
	}

	docs, err := s.SessionDocuments(id)
	if err != nil {
		t.Fatalf("session documents failed: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "doc-1" {
		t.Fatalf("expected one attached document, got %+v", docs)
	}

	if err := s.DeleteSession(id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := s.Session(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("session should be gone, got %v", err)
	}
	documents, _ := s.LoadDocuments()
	if _, ok := documents["doc-1"]; ok {
		t.Error("document should be deleted with its session")
	}
}

func TestDeleteSession_Unknown(t *testing.T) {
	s := newTestStore(t)
	if err := s.DeleteSession("missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	sessions := map[string]model.Session{
		"a": {
			ID:        "a",
			Messages:  []model.Message{{Role: model.RoleUser, Content: "q"}},
			Documents: []string{"d"},
		},
	}
	if err := s.SaveSessions(sessions); err != nil {
		t.Fatalf("save sessions failed: %v", err)
	}
	loaded, err := s.LoadSessions()
	if err != nil {
		t.Fatalf("load sessions failed: %v", err)
	}
	got, ok := loaded["a"]
	if !ok {
		t.Fatal("session a missing after round trip")
	}
	if len(got.Messages) != 1 || got.Messages[0].Content != "q" {
		t.Errorf("messages lost in round trip: %+v", got.Messages)
	}
	if len(got.Documents) != 1 || got.Documents[0] != "d" {
		t.Errorf("document refs lost in round trip: %+v", got.Documents)
	}
}

func TestListSessions_OrderAndPreview(t *testing.T) {
	s := newTestStore(t)

	older, _, _ := s.GetOrCreateSession("")
	newer, _, _ := s.GetOrCreateSession("")

	long := make([]rune, 150)
	for i := range long {
		long[i] = 'x'
	}
	if err := s.AppendTurn(newer,
		model.Message{Role: model.RoleUser, Content: "short"},
		model.Message{Role: model.RoleAssistant, Content: string(long)},
	); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	summaries, err := s.ListSessions()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("expected 2 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != newer {
		t.Errorf("most recently updated session should be first, got %s", summaries[0].ID)
	}
	if len([]rune(summaries[0].Preview)) != 100 {
		t.Errorf("preview should be truncated to 100 runes, got %d", len([]rune(summaries[0].Preview)))
	}
	_ = older
}

func TestBackupCreatesSnapshots(t *testing.T) {
	dir := t.TempDir()
	backupDir := filepath.Join(dir, "backups")
	s, err := Open(filepath.Join(dir, "data"), backupDir)
	if err != nil {
		t.Fatalf("open store failed: %v", err)
	}
	if _, _, err := s.GetOrCreateSession(""); err != nil {
		t.Fatalf("create session failed: %v", err)
	}

	stamp, err := s.Backup()
	if err != nil {
		t.Fatalf("backup failed: %v", err)
	}
	for _, name := range []string{"sessions.json", "documents.json"} {
		path := filepath.Join(backupDir, stamp+"_"+name)
		if _, statErr := os.Stat(path); statErr != nil {
			t.Errorf("expected backup file %s: %v", path, statErr)
		}
	}
}
