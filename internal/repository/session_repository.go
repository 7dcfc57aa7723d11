package repository

import (
	"context"
	"slices"
	"sync"
)

// ChatSession binds a Telegram chat to a logged-in user.
type ChatSession struct {
	ChatID int64
	UserID string
}

// SessionRepository tracks which user each chat is logged in as.
type SessionRepository struct {
	mu    sync.RWMutex
	chats map[int64]string
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository() *SessionRepository {
	return &SessionRepository{chats: make(map[int64]string)}
}

// Save binds chatID to userID, replacing any previous binding.
func (r *SessionRepository) Save(_ context.Context, chatID int64, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chats[chatID] = userID
}

// Remove unbinds a chat and returns the user it was bound to.
func (r *SessionRepository) Remove(_ context.Context, chatID int64) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	userID, ok := r.chats[chatID]
	delete(r.chats, chatID)
	return userID, ok
}

// UserFor returns the user bound to chatID.
func (r *SessionRepository) UserFor(_ context.Context, chatID int64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	userID, ok := r.chats[chatID]
	return userID, ok
}

// LoadAll returns all bindings ordered by chat id.
func (r *SessionRepository) LoadAll(_ context.Context) []ChatSession {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]ChatSession, 0, len(r.chats))
	for chatID, userID := range r.chats {
		sessions = append(sessions, ChatSession{ChatID: chatID, UserID: userID})
	}
	slices.SortFunc(sessions, func(a, b ChatSession) int {
		switch {
		case a.ChatID < b.ChatID:
			return -1
		case a.ChatID > b.ChatID:
			return 1
		}
		return 0
	})
	return sessions
}
