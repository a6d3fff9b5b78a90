package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"heysera/internal/ai"
	"heysera/internal/extract"
	"heysera/internal/model"
	"heysera/internal/prompt"
	"heysera/internal/store"
)

// MaxUploadSize caps accepted uploads at 10 MiB.
const MaxUploadSize = 10 << 20

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large (max 10MB)")
	ErrExtractionFailed    = errors.New("could not extract text from document")
)

const analysisPromptFormat = "I've uploaded a document titled '%s'. Please provide a brief summary and key insights from this policy document."

type DocumentService struct {
	store    *store.Store
	gateway  *ai.Gateway
	counters UsageCounters
}

func NewDocumentService(st *store.Store, gateway *ai.Gateway, counters UsageCounters) *DocumentService {
	return &DocumentService{
		store:    st,
		gateway:  gateway,
		counters: counters,
	}
}

type UploadInput struct {
	SessionID string
	Filename  string
	Size      int64
	Data      []byte
}

type UploadResult struct {
	DocumentID string
	SessionID  string
	Filename   string
	Size       int64
	TextLength int
	Analysis   string
	UploadedAt time.Time
}

// Upload validates and extracts the file, stores the document under the
// session, and generates an initial analysis of its content. The analysis
// is returned to the caller but not appended to the session history.
func (s *DocumentService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	filename := strings.TrimSpace(input.Filename)
	if filename == "" {
		return nil, ErrInvalidInput
	}
	kind, ok := extract.KindForFilename(filename)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFileType, filename)
	}
	if input.Size > MaxUploadSize || int64(len(input.Data)) > MaxUploadSize {
		return nil, ErrFileTooLarge
	}

	text, err := extract.Extract(input.Data, kind)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	sessionID, created, err := s.store.GetOrCreateSession(strings.TrimSpace(input.SessionID))
	if err != nil {
		return nil, err
	}
	if created {
		s.count(ctx, CounterSessionsCreated, 1)
	}

	now := time.Now()
	doc := model.Document{
		ID:         uuid.NewString(),
		Filename:   filename,
		Content:    text,
		FileType:   string(kind),
		Size:       input.Size,
		TextLength: utf8.RuneCountInString(text),
		UploadedAt: now,
	}
	if err := s.store.AttachDocument(sessionID, doc); err != nil {
		log.Printf("attach document %s failed for session %s: %v", doc.ID, sessionID, err)
	} else {
		s.count(ctx, CounterDocumentsUploaded, 1)
		s.count(ctx, CounterUploadBytes, input.Size)
	}

	session, err := s.store.Session(sessionID)
	if err != nil {
		return nil, err
	}
	analysisPrompt := prompt.Build(
		[]string{text},
		session.Messages,
		fmt.Sprintf(analysisPromptFormat, filename),
	)
	result := s.gateway.Generate(ctx, analysisPrompt)
	if result.Outcome != ai.OutcomeOK {
		log.Printf("document analysis failed (%s): %v", result.Outcome, result.Err)
		s.count(ctx, CounterGenerationsFailed, 1)
	} else {
		s.count(ctx, CounterGenerationsOK, 1)
	}

	return &UploadResult{
		DocumentID: doc.ID,
		SessionID:  sessionID,
		Filename:   filename,
		Size:       input.Size,
		TextLength: doc.TextLength,
		Analysis:   result.Reply(),
		UploadedAt: now,
	}, nil
}

func (s *DocumentService) count(ctx context.Context, name string, delta int64) {
	if s.counters == nil {
		return
	}
	if err := s.counters.Add(ctx, name, delta); err != nil {
		log.Printf("bump counter %s failed: %v", name, err)
	}
}
