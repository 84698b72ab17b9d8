package service

import (
	"context"
	"errors"
	"strings"

	"github.com/quicknotes/quicknotes-go/internal/model"
	"github.com/quicknotes/quicknotes-go/internal/repository"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrTitleTaken    = errors.New("you already have a note with this title")
	ErrNoteNotFound  = errors.New("note not found")
)

const (
	defaultPageSize = 10
	maxPageSize     = 100

	// Cap for the unpaginated listing kept for backward compatibility.
	unpaginatedLimit = 1000
)

// NoteStore is the persistence contract NoteService needs.
type NoteStore interface {
	Create(ctx context.Context, note *model.Note) error
	GetByID(ctx context.Context, userID, id int64) (*model.Note, error)
	ListByUser(ctx context.Context, userID int64, limit int) ([]model.Note, error)
	ListPage(ctx context.Context, userID int64, limit, offset int) ([]model.Note, int, error)
	Update(ctx context.Context, note *model.Note) error
	Delete(ctx context.Context, userID, id int64) (bool, error)
}

// NoteService handles note business logic. Every operation takes a user ID
// that has already been verified by the authorization middleware.
type NoteService struct {
	repo NoteStore
}

// NewNoteService creates a new NoteService.
func NewNoteService(repo NoteStore) *NoteService {
	return &NoteService{repo: repo}
}

// Create adds a note for the user. Titles are unique per user.
func (s *NoteService) Create(ctx context.Context, userID int64, req model.NoteRequest) (model.Note, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Note{}, ErrTitleRequired
	}

	note := model.Note{
		UserID:  userID,
		Title:   title,
		Content: req.Content,
	}
	if err := s.repo.Create(ctx, &note); err != nil {
		if errors.Is(err, repository.ErrDuplicateTitle) {
			return model.Note{}, ErrTitleTaken
		}
		return model.Note{}, err
	}

	return note, nil
}

// Get returns a note owned by the user.
func (s *NoteService) Get(ctx context.Context, userID, id int64) (model.Note, error) {
	note, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return model.Note{}, ErrNoteNotFound
		}
		return model.Note{}, err
	}
	return *note, nil
}

// ListAll returns the user's notes ordered by most recently updated.
func (s *NoteService) ListAll(ctx context.Context, userID int64) ([]model.Note, error) {
	notes, err := s.repo.ListByUser(ctx, userID, unpaginatedLimit)
	if err != nil {
		return nil, err
	}
	if notes == nil {
		notes = []model.Note{}
	}
	return notes, nil
}

// ListPage returns one page of the user's notes with pagination metadata.
func (s *NoteService) ListPage(ctx context.Context, userID int64, page, pageSize int) (model.NotePage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	notes, total, err := s.repo.ListPage(ctx, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return model.NotePage{}, err
	}
	if notes == nil {
		notes = []model.Note{}
	}

	totalPages := (total + pageSize - 1) / pageSize
	return model.NotePage{
		Items:           notes,
		TotalCount:      total,
		Page:            page,
		PageSize:        pageSize,
		TotalPages:      totalPages,
		HasPreviousPage: page > 1,
		HasNextPage:     page < totalPages,
	}, nil
}

// Update rewrites a note's title and content, bumping updatedAt and keeping
// createdAt.
func (s *NoteService) Update(ctx context.Context, userID, id int64, req model.NoteRequest) (model.Note, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return model.Note{}, ErrTitleRequired
	}

	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNoteNotFound) {
			return model.Note{}, ErrNoteNotFound
		}
		return model.Note{}, err
	}

	note := *existing
	note.Title = title
	note.Content = req.Content
	if err := s.repo.Update(ctx, &note); err != nil {
		if errors.Is(err, repository.ErrDuplicateTitle) {
			return model.Note{}, ErrTitleTaken
		}
		return model.Note{}, err
	}

	return note, nil
}

// Delete removes a note. Returns false when the note does not exist or is
// not owned by the user.
func (s *NoteService) Delete(ctx context.Context, userID, id int64) (bool, error) {
	return s.repo.Delete(ctx, userID, id)
}
