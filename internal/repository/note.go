package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/quicknotes/quicknotes-go/internal/model"
)

var (
	ErrNoteNotFound   = errors.New("note not found")
	ErrDuplicateTitle = errors.New("title already exists for this user")
)

// NoteRepository handles note persistence operations.
type NoteRepository struct {
	db DBTX
}

// NewNoteRepository creates a new NoteRepository.
func NewNoteRepository(db DBTX) *NoteRepository {
	return &NoteRepository{db: db}
}

const noteColumns = `id, user_id, title, content, created_at, updated_at`

// Create inserts a new note and fills in its generated ID and timestamps.
func (r *NoteRepository) Create(ctx context.Context, note *model.Note) error {
	query := `INSERT INTO notes (user_id, title, content) VALUES (?, ?, ?)`

	result, err := r.db.ExecContext(ctx, query, note.UserID, note.Title, note.Content)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateTitle
		}
		return err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}

	created, err := r.GetByID(ctx, note.UserID, id)
	if err != nil {
		return err
	}
	*note = *created
	return nil
}

// GetByID retrieves a note owned by userID, or ErrNoteNotFound.
func (r *NoteRepository) GetByID(ctx context.Context, userID, id int64) (*model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE id = ? AND user_id = ?`

	note := &model.Note{}
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&note.ID, &note.UserID, &note.Title, &note.Content, &note.CreatedAt, &note.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	return note, nil
}

// ListByUser retrieves up to limit notes for a user, most recently updated
// first.
func (r *NoteRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]model.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ? ORDER BY updated_at DESC LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanNotes(rows)
}

// ListPage retrieves one page of a user's notes plus the total count,
// ordered by updated_at descending.
func (r *NoteRepository) ListPage(ctx context.Context, userID int64, limit, offset int) ([]model.Note, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM notes WHERE user_id = ?`
	if err := r.db.QueryRowContext(ctx, countQuery, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ? ORDER BY updated_at DESC LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	notes, err := scanNotes(rows)
	if err != nil {
		return nil, 0, err
	}
	return notes, total, nil
}

// Update rewrites a note's title and content. The (user_id, title) unique
// index rejects renames into another note's title.
func (r *NoteRepository) Update(ctx context.Context, note *model.Note) error {
	query := `UPDATE notes SET title = ?, content = ?, updated_at = NOW() WHERE id = ? AND user_id = ?`

	if _, err := r.db.ExecContext(ctx, query, note.Title, note.Content, note.ID, note.UserID); err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateTitle
		}
		return err
	}

	updated, err := r.GetByID(ctx, note.UserID, note.ID)
	if err != nil {
		return err
	}
	*note = *updated
	return nil
}

// Delete removes a note owned by userID. Returns false when no such note
// exists.
func (r *NoteRepository) Delete(ctx context.Context, userID, id int64) (bool, error) {
	query := `DELETE FROM notes WHERE id = ? AND user_id = ?`

	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func scanNotes(rows *sql.Rows) ([]model.Note, error) {
	var notes []model.Note
	for rows.Next() {
		var n model.Note
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
