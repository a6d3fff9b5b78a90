// Package store persists sessions and documents as whole-file JSON
// snapshots on local disk. Each collection is guarded by its own writer
// mutex; all mutation goes through the locked operations below, so two
// concurrent requests on the same collection cannot interleave their
// load-mutate-save sequences.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"heysera/internal/model"
)

var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrDocumentNotFound = errors.New("document not found")
)

const (
	sessionsFile  = "sessions.json"
	documentsFile = "documents.json"
)

type Store struct {
	dataDir   string
	backupDir string

	sessionsMu  sync.Mutex
	documentsMu sync.Mutex
}

// Open prepares a store rooted at dataDir, creating the data and backup
// directories if needed.
func Open(dataDir, backupDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir failed: %w", err)
	}
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return nil, fmt.Errorf("create backup dir failed: %w", err)
	}
	return &Store{dataDir: dataDir, backupDir: backupDir}, nil
}

// LoadSessions reads the whole session collection. A missing file is an
// empty collection, not an error.
func (s *Store) LoadSessions() (map[string]model.Session, error) {
	out := make(map[string]model.Session)
	if err := s.loadJSON(sessionsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SaveSessions overwrites the whole session collection atomically.
func (s *Store) SaveSessions(sessions map[string]model.Session) error {
	return s.saveJSON(sessionsFile, sessions)
}

func (s *Store) LoadDocuments() (map[string]model.Document, error) {
	out := make(map[string]model.Document)
	if err := s.loadJSON(documentsFile, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) SaveDocuments(documents map[string]model.Document) error {
	return s.saveJSON(documentsFile, documents)
}

// GetOrCreateSession returns the session id to use for a request. An empty
// id creates and persists a fresh empty session. A non-empty id is verified
// against storage; an unknown id is an explicit error rather than a silent
// dead reference.
func (s *Store) GetOrCreateSession(id string) (string, bool, error) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	sessions, err := s.LoadSessions()
	if err != nil {
		return "", false, err
	}

	if id != "" {
		if _, ok := sessions[id]; !ok {
			return "", false, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
		}
		return id, false, nil
	}

	now := time.Now()
	session := model.Session{
		ID:        uuid.NewString(),
		Messages:  []model.Message{},
		Documents: []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	sessions[session.ID] = session
	if err := s.SaveSessions(sessions); err != nil {
		return "", false, err
	}
	return session.ID, true, nil
}

// AppendTurn appends one user message and one assistant message, in that
// order, and bumps the session's updated_at.
func (s *Store) AppendTurn(sessionID string, user, assistant model.Message) error {
	return s.appendMessages(sessionID, user, assistant)
}

// AppendMessage appends a single message; used by the async persist worker
// which receives the user and assistant halves of a turn as separate jobs.
func (s *Store) AppendMessage(sessionID string, msg model.Message) error {
	return s.appendMessages(sessionID, msg)
}

func (s *Store) appendMessages(sessionID string, msgs ...model.Message) error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	sessions, err := s.LoadSessions()
	if err != nil {
		return err
	}
	session, ok := sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	session.Messages = append(session.Messages, msgs...)
	session.UpdatedAt = time.Now()
	sessions[sessionID] = session
	return s.SaveSessions(sessions)
}

// AttachDocument stores the document record and appends its id to the
// session's association list.
func (s *Store) AttachDocument(sessionID string, doc model.Document) error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	sessions, err := s.LoadSessions()
	if err != nil {
		return err
	}
	session, ok := sessions[sessionID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}

	s.documentsMu.Lock()
	documents, err := s.LoadDocuments()
	if err != nil {
		s.documentsMu.Unlock()
		return err
	}
	documents[doc.ID] = doc
	err = s.SaveDocuments(documents)
	s.documentsMu.Unlock()
	if err != nil {
		return err
	}

	session.Documents = append(session.Documents, doc.ID)
	session.UpdatedAt = time.Now()
	sessions[sessionID] = session
	return s.SaveSessions(sessions)
}

// Session returns the full session record.
func (s *Store) Session(id string) (model.Session, error) {
	sessions, err := s.LoadSessions()
	if err != nil {
		return model.Session{}, err
	}
	session, ok := sessions[id]
	if !ok {
		return model.Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return session, nil
}

// SessionDocuments returns the session's documents in association order.
// Dangling ids are skipped; sessions hold weak references.
func (s *Store) SessionDocuments(sessionID string) ([]model.Document, error) {
	session, err := s.Session(sessionID)
	if err != nil {
		return nil, err
	}
	documents, err := s.LoadDocuments()
	if err != nil {
		return nil, err
	}
	out := make([]model.Document, 0, len(session.Documents))
	for _, id := range session.Documents {
		if doc, ok := documents[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

// ListSessions returns summaries of all sessions, most recently updated
// first. The preview is the last message, truncated to previewLimit runes.
func (s *Store) ListSessions() ([]model.SessionSummary, error) {
	sessions, err := s.LoadSessions()
	if err != nil {
		return nil, err
	}
	summaries := make([]model.SessionSummary, 0, len(sessions))
	for _, session := range sessions {
		summaries = append(summaries, model.SessionSummary{
			ID:            session.ID,
			MessageCount:  len(session.Messages),
			DocumentCount: len(session.Documents),
			Preview:       previewOf(session),
			CreatedAt:     session.CreatedAt,
			UpdatedAt:     session.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// DeleteSession removes the session and every document it references.
func (s *Store) DeleteSession(id string) error {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()

	sessions, err := s.LoadSessions()
	if err != nil {
		return err
	}
	session, ok := sessions[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	if len(session.Documents) > 0 {
		s.documentsMu.Lock()
		documents, err := s.LoadDocuments()
		if err != nil {
			s.documentsMu.Unlock()
			return err
		}
		for _, docID := range session.Documents {
			delete(documents, docID)
		}
		err = s.SaveDocuments(documents)
		s.documentsMu.Unlock()
		if err != nil {
			return err
		}
	}

	delete(sessions, id)
	return s.SaveSessions(sessions)
}

// Counts reports the number of stored sessions and documents.
func (s *Store) Counts() (sessions, documents int, err error) {
	sess, err := s.LoadSessions()
	if err != nil {
		return 0, 0, err
	}
	docs, err := s.LoadDocuments()
	if err != nil {
		return 0, 0, err
	}
	return len(sess), len(docs), nil
}

const previewLimit = 100

func previewOf(session model.Session) string {
	if len(session.Messages) == 0 {
		return ""
	}
	last := session.Messages[len(session.Messages)-1].Content
	runes := []rune(last)
	if len(runes) <= previewLimit {
		return last
	}
	return string(runes[:previewLimit])
}

func (s *Store) loadJSON(name string, out interface{}) error {
	raw, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s failed: %w", name, err)
	}
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s failed: %w", name, err)
	}
	return nil
}

// saveJSON writes to a temp file in the same directory and renames it over
// the target, so readers never observe a partially written collection.
func (s *Store) saveJSON(name string, v interface{}) error {
	payload, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s failed: %w", name, err)
	}
	target := filepath.Join(s.dataDir, name)
	tmp, err := os.CreateTemp(s.dataDir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s failed: %w", name, err)
	}
	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s failed: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close %s failed: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s failed: %w", name, err)
	}
	return nil
}
