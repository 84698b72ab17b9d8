package model

import "time"

// Note represents a note row in the database. Titles are unique per owning
// user, not globally.
type Note struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteRequest is the body of note create and update requests.
type NoteRequest struct {
	Title   string `json:"title" validate:"required,max=255"`
	Content string `json:"content" validate:"max=65535"`
}

// NotePage is the paginated list envelope.
type NotePage struct {
	Items           []Note `json:"items"`
	TotalCount      int    `json:"totalCount"`
	Page            int    `json:"page"`
	PageSize        int    `json:"pageSize"`
	TotalPages      int    `json:"totalPages"`
	HasPreviousPage bool   `json:"hasPreviousPage"`
	HasNextPage     bool   `json:"hasNextPage"`
}
