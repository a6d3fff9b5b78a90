package model

import "time"

// Document is the persisted record of one uploaded file. Content is the
// extracted plain text; sessions reference documents by id only.
type Document struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Content    string    `json:"content"`
	FileType   string    `json:"file_type"`
	Size       int64     `json:"size"`
	TextLength int       `json:"text_length"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Meta returns the document without its extracted text, for listing
// endpoints that expose metadata only.
func (d Document) Meta() DocumentMeta {
	return DocumentMeta{
		ID:         d.ID,
		Filename:   d.Filename,
		FileType:   d.FileType,
		Size:       d.Size,
		TextLength: d.TextLength,
		UploadedAt: d.UploadedAt,
	}
}

type DocumentMeta struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	FileType   string    `json:"file_type"`
	Size       int64     `json:"size"`
	TextLength int       `json:"text_length"`
	UploadedAt time.Time `json:"uploaded_at"`
}
