package model

import "time"

// Subject represents an academic course. It owns questions and tests and
// cannot be deleted while any of either remain.
type Subject struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Code        string     `json:"code"`
	Description string     `json:"description"`
	CreatorID   int        `json:"creator_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// CreateSubjectRequest is the payload for creating a subject.
type CreateSubjectRequest struct {
	Name        string `json:"name" binding:"required,min=2,max=100"`
	Code        string `json:"code" binding:"required,min=2,max=20"`
	Description string `json:"description" binding:"omitempty,max=2000"`
}

// UpdateSubjectRequest is a partial update. Nil fields are unchanged.
type UpdateSubjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=2,max=100"`
	Code        *string `json:"code" binding:"omitempty,min=2,max=20"`
	Description *string `json:"description" binding:"omitempty,max=2000"`
}
