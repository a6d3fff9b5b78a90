package app

import (
	"context"

	"heysera/internal/model"
	"heysera/internal/store"
)

// StoreAppender writes chat turns straight through the store. Used when the
// RabbitMQ persist pipeline is disabled.
type StoreAppender struct {
	store *store.Store
}

func NewStoreAppender(st *store.Store) *StoreAppender {
	return &StoreAppender{store: st}
}

func (a *StoreAppender) AppendTurn(_ context.Context, sessionID string, user, assistant model.Message) error {
	return a.store.AppendTurn(sessionID, user, assistant)
}
