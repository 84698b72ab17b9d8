package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/quicknotes/quicknotes-go/internal/model"
	"github.com/quicknotes/quicknotes-go/internal/repository"
)

// In-memory store fakes used across the service tests.

type memUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[int64]model.User)}
}

func (s *memUserStore) Create(_ context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	s.users[user.ID] = *user
	return nil
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return &u, nil
}

type memTokenStore struct {
	mu     sync.Mutex
	nextID int64
	tokens map[string]model.RefreshToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: make(map[string]model.RefreshToken)}
}

func (s *memTokenStore) Create(_ context.Context, token *model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	token.ID = s.nextID
	token.CreatedAt = time.Now()
	s.tokens[token.Token] = *token
	return nil
}

func (s *memTokenStore) Find(_ context.Context, token string) (*model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[token]
	if !ok {
		return nil, repository.ErrTokenNotFound
	}
	return &t, nil
}

func (s *memTokenStore) Rotate(_ context.Context, oldToken string, next *model.RefreshToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[oldToken]; !ok {
		return repository.ErrTokenNotFound
	}
	delete(s.tokens, oldToken)
	s.nextID++
	next.ID = s.nextID
	next.CreatedAt = time.Now()
	s.tokens[next.Token] = *next
	return nil
}

func (s *memTokenStore) DeleteExpired(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, t := range s.tokens {
		if t.UserID == userID && t.ExpiresAt.Before(time.Now()) {
			delete(s.tokens, k)
		}
	}
	return nil
}

func (s *memTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

type memNoteStore struct {
	mu     sync.Mutex
	nextID int64
	notes  map[int64]model.Note
}

func newMemNoteStore() *memNoteStore {
	return &memNoteStore{notes: make(map[int64]model.Note)}
}

func (s *memNoteStore) Create(_ context.Context, note *model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.notes {
		if n.UserID == note.UserID && n.Title == note.Title {
			return repository.ErrDuplicateTitle
		}
	}
	s.nextID++
	note.ID = s.nextID
	now := time.Now()
	note.CreatedAt = now
	note.UpdatedAt = now
	s.notes[note.ID] = *note
	return nil
}

func (s *memNoteStore) GetByID(_ context.Context, userID, id int64) (*model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return nil, repository.ErrNoteNotFound
	}
	return &n, nil
}

func (s *memNoteStore) ListByUser(_ context.Context, userID int64, limit int) ([]model.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := s.sortedByUser(userID)
	if len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, nil
}

func (s *memNoteStore) ListPage(_ context.Context, userID int64, limit, offset int) ([]model.Note, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	notes := s.sortedByUser(userID)
	total := len(notes)
	if offset >= total {
		return nil, total, nil
	}
	notes = notes[offset:]
	if len(notes) > limit {
		notes = notes[:limit]
	}
	return notes, total, nil
}

func (s *memNoteStore) Update(_ context.Context, note *model.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.notes[note.ID]
	if !ok || existing.UserID != note.UserID {
		return repository.ErrNoteNotFound
	}
	for _, n := range s.notes {
		if n.UserID == note.UserID && n.ID != note.ID && n.Title == note.Title {
			return repository.ErrDuplicateTitle
		}
	}
	note.CreatedAt = existing.CreatedAt
	note.UpdatedAt = time.Now()
	s.notes[note.ID] = *note
	return nil
}

func (s *memNoteStore) Delete(_ context.Context, userID, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.notes[id]
	if !ok || n.UserID != userID {
		return false, nil
	}
	delete(s.notes, id)
	return true, nil
}

func (s *memNoteStore) sortedByUser(userID int64) []model.Note {
	var notes []model.Note
	for _, n := range s.notes {
		if n.UserID == userID {
			notes = append(notes, n)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		if notes[i].UpdatedAt.Equal(notes[j].UpdatedAt) {
			return notes[i].ID > notes[j].ID
		}
		return notes[i].UpdatedAt.After(notes[j].UpdatedAt)
	})
	return notes
}
