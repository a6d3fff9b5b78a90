package app

import (
	"context"
	"errors"
	"testing"

	"heysera/internal/cache"
	"heysera/internal/store"
)

func newDocumentServiceFor(t *testing.T, st *store.Store, serverURL string) *DocumentService {
	t.Helper()
	return NewDocumentService(st, newTestGateway(serverURL), cache.NewMemoryCounters())
}

func TestUpload_PolicyTxtScenario(t *testing.T) {
	st := newTestStore(t)
	var lastPrompt string
	server := fakeLLMServer(t, "This policy raises the budget by 5%.", &lastPrompt)
	defer server.Close()
	svc := newDocumentServiceFor(t, st, server.URL)

	content := []byte("Budget increases 5%.")
	result, err := svc.Upload(context.Background(), UploadInput{
		Filename: "policy.txt",
		Size:     int64(len(content)),
		Data:     content,
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	if result.SessionID == "" || result.DocumentID == "" {
		t.Fatal("expected fresh session and document ids")
	}
	if result.Filename != "policy.txt" {
		t.Errorf("unexpected filename: %q", result.Filename)
	}
	if result.TextLength != 20 {
		t.Errorf("expected textLength 20, got %d", result.TextLength)
	}
	if result.Analysis == "" {
		t.Error("expected a non-empty analysis")
	}

	docs, err := st.SessionDocuments(result.SessionID)
	if err != nil {
		t.Fatalf("session documents failed: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("expected one stored document, got %d", len(docs))
	}
	if docs[0].TextLength != result.TextLength {
		t.Errorf("stored text length %d should match response %d", docs[0].TextLength, result.TextLength)
	}
	if docs[0].Content != "Budget increases 5%." {
		t.Errorf("stored content mismatch: %q", docs[0].Content)
	}
}

func TestUpload_UnsupportedExtension(t *testing.T) {
	st := newTestStore(t)
	server := fakeLLMServer(t, "unused", nil)
	defer server.Close()
	svc := newDocumentServiceFor(t, st, server.URL)

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "report.exe",
		Size:     4,
		Data:     []byte("data"),
	})
	if !errors.Is(err, ErrUnsupportedFileType) {
		t.Fatalf("expected ErrUnsupportedFileType, got %v", err)
	}
	if _, documents, _ := st.Counts(); documents != 0 {
		t.Error("rejected upload must not create a document")
	}
}

func TestUpload_Oversize(t *testing.T) {
	st := newTestStore(t)
	svc := newDocumentServiceFor(t, st, "http://127.0.0.1:0")

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "big.txt",
		Size:     MaxUploadSize + 1,
		Data:     []byte("stub"),
	})
	if !errors.Is(err, ErrFileTooLarge) {
		t.Fatalf("expected ErrFileTooLarge, got %v", err)
	}
	if _, documents, _ := st.Counts(); documents != 0 {
		t.Error("rejected upload must not create a document")
	}
}

func TestUpload_EmptyExtraction(t *testing.T) {
	st := newTestStore(t)
	svc := newDocumentServiceFor(t, st, "http://127.0.0.1:0")

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "blank.txt",
		Size:     3,
		Data:     []byte("   "),
	})
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
	if _, documents, _ := st.Counts(); documents != 0 {
		t.Error("empty extraction must not create a document")
	}
}

func TestUpload_ExistingSession(t *testing.T) {
	st := newTestStore(t)
	server := fakeLLMServer(t, "noted", nil)
	defer server.Close()
	svc := newDocumentServiceFor(t, st, server.URL)

	id, _, _ := st.GetOrCreateSession("")
	result, err := svc.Upload(context.Background(), UploadInput{
		SessionID: id,
		Filename:  "policy.txt",
		Size:      20,
		Data:      []byte("Budget increases 5%."),
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if result.SessionID != id {
		t.Errorf("upload should reuse the given session, got %q", result.SessionID)
	}
}

func TestUpload_UnknownSession(t *testing.T) {
	st := newTestStore(t)
	server := fakeLLMServer(t, "unused", nil)
	defer server.Close()
	svc := newDocumentServiceFor(t, st, server.URL)

	_, err := svc.Upload(context.Background(), UploadInput{
		SessionID: "ghost",
		Filename:  "policy.txt",
		Size:      20,
		Data:      []byte("Budget increases 5%."),
	})
	if !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
