package app

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"heysera/internal/ai"
	"heysera/internal/model"
	"heysera/internal/prompt"
	"heysera/internal/store"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrMessageEmpty = errors.New("message content is empty")
)

// MessageAppender persists the two messages of a chat turn. The direct
// implementation writes through the store; the RabbitMQ publisher defers
// the write to the persist worker.
type MessageAppender interface {
	AppendTurn(ctx context.Context, sessionID string, user, assistant model.Message) error
}

// HistoryCache is the optional Redis-backed cache in front of history
// reads; a nil cache disables it.
type HistoryCache interface {
	GetHistory(ctx context.Context, sessionID string) ([]model.Message, bool, error)
	SetHistory(ctx context.Context, sessionID string, messages []model.Message) error
	DeleteHistory(ctx context.Context, sessionID string) error
	MarkDirty(ctx context.Context, sessionID string) error
	IsDirty(ctx context.Context, sessionID string) (bool, error)
}

// UsageCounters accumulates the totals served by the stats endpoint.
type UsageCounters interface {
	Add(ctx context.Context, name string, delta int64) error
	Totals(ctx context.Context) (map[string]int64, error)
}

const (
	CounterSessionsCreated   = "sessions_created"
	CounterMessagesAppended  = "messages_appended"
	CounterDocumentsUploaded = "documents_uploaded"
	CounterUploadBytes       = "upload_bytes"
	CounterGenerationsOK     = "generations_ok"
	CounterGenerationsFailed = "generations_failed"
	CounterBackupsTaken      = "backups_taken"
)

// CounterNames lists every counter the stats endpoint reports.
var CounterNames = []string{
	CounterSessionsCreated,
	CounterMessagesAppended,
	CounterDocumentsUploaded,
	CounterUploadBytes,
	CounterGenerationsOK,
	CounterGenerationsFailed,
	CounterBackupsTaken,
}

type ChatService struct {
	store    *store.Store
	gateway  *ai.Gateway
	appender MessageAppender
	cache    HistoryCache
	counters UsageCounters
}

func NewChatService(
	st *store.Store,
	gateway *ai.Gateway,
	appender MessageAppender,
	cache HistoryCache,
	counters UsageCounters,
) *ChatService {
	return &ChatService{
		store:    st,
		gateway:  gateway,
		appender: appender,
		cache:    cache,
		counters: counters,
	}
}

type SendMessageInput struct {
	SessionID string
	Content   string
}

type SendMessageResult struct {
	Reply     string
	SessionID string
	Timestamp time.Time
	Outcome   ai.Outcome
}

// SendMessage runs one chat turn: resolve the session, assemble the prompt
// from associated documents and recent history, call the model, and append
// the user/assistant pair. Generation failures become the fallback reply;
// persistence failures are logged and do not fail the turn.
func (s *ChatService) SendMessage(ctx context.Context, input SendMessageInput) (*SendMessageResult, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}

	sessionID, created, err := s.store.GetOrCreateSession(strings.TrimSpace(input.SessionID))
	if err != nil {
		return nil, err
	}
	if created {
		s.count(ctx, CounterSessionsCreated, 1)
	}

	session, err := s.store.Session(sessionID)
	if err != nil {
		return nil, err
	}
	documents, err := s.store.SessionDocuments(sessionID)
	if err != nil {
		return nil, err
	}
	docTexts := make([]string, 0, len(documents))
	for _, doc := range documents {
		docTexts = append(docTexts, doc.Content)
	}

	fullPrompt := prompt.Build(docTexts, session.Messages, content)
	result := s.gateway.Generate(ctx, fullPrompt)
	if result.Outcome != ai.OutcomeOK {
		log.Printf("generation failed (%s): %v", result.Outcome, result.Err)
		s.count(ctx, CounterGenerationsFailed, 1)
	} else {
		s.count(ctx, CounterGenerationsOK, 1)
	}

	now := time.Now()
	userMessage := model.Message{Role: model.RoleUser, Content: content, CreatedAt: now}
	assistantMessage := model.Message{Role: model.RoleAssistant, Content: result.Reply(), CreatedAt: now}

	if s.cache != nil {
		_ = s.cache.MarkDirty(ctx, sessionID)
		_ = s.cache.DeleteHistory(ctx, sessionID)
	}
	if err := s.appender.AppendTurn(ctx, sessionID, userMessage, assistantMessage); err != nil {
		log.Printf("append chat turn failed for session %s: %v", sessionID, err)
	} else {
		s.count(ctx, CounterMessagesAppended, 2)
	}

	return &SendMessageResult{
		Reply:     result.Reply(),
		SessionID: sessionID,
		Timestamp: now,
		Outcome:   result.Outcome,
	}, nil
}

// History returns the full session record, with the message list served
// from the cache when it is present and not marked dirty.
func (s *ChatService) History(ctx context.Context, sessionID string) (model.Session, error) {
	session, err := s.store.Session(sessionID)
	if err != nil {
		return model.Session{}, err
	}

	if s.cache != nil {
		if dirty, dirtyErr := s.cache.IsDirty(ctx, sessionID); dirtyErr == nil && !dirty {
			if cached, hit, cacheErr := s.cache.GetHistory(ctx, sessionID); cacheErr == nil && hit {
				session.Messages = cached
				return session, nil
			}
			_ = s.cache.SetHistory(ctx, sessionID, session.Messages)
		}
	}
	return session, nil
}

// SessionDocuments returns metadata for the session's documents, without
// the extracted text.
func (s *ChatService) SessionDocuments(_ context.Context, sessionID string) ([]model.DocumentMeta, error) {
	documents, err := s.store.SessionDocuments(sessionID)
	if err != nil {
		return nil, err
	}
	metas := make([]model.DocumentMeta, 0, len(documents))
	for _, doc := range documents {
		metas = append(metas, doc.Meta())
	}
	return metas, nil
}

func (s *ChatService) ListSessions(_ context.Context) ([]model.SessionSummary, error) {
	return s.store.ListSessions()
}

func (s *ChatService) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.store.DeleteSession(sessionID); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.DeleteHistory(ctx, sessionID)
	}
	return nil
}

func (s *ChatService) count(ctx context.Context, name string, delta int64) {
	if s.counters == nil {
		return
	}
	if err := s.counters.Add(ctx, name, delta); err != nil {
		log.Printf("bump counter %s failed: %v", name, err)
	}
}
