package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/openjournal/editorial-service/internal/domain"
)

// PaperRepository handles manuscript persistence and reviewer assignment state.
type PaperRepository interface {
	// Create inserts a new paper.
	// Returns the created paper with database-assigned timestamps.
	// Returns domain.ErrInvalidInput if required fields are missing.
	Create(ctx context.Context, paper *domain.Paper) (*domain.Paper, error)

	// GetByID retrieves a paper by its UUID, including its assigned reviewer set.
	// Returns domain.ErrNotFound if no matching paper exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Paper, error)

	// Update performs a locked read-modify-write on a paper using SELECT FOR UPDATE.
	// The callback receives the current row and mutates it in place; the updated
	// state is persisted when the callback returns nil. Errors from the callback
	// abort the update and are returned unchanged.
	// Returns domain.ErrNotFound if no matching paper exists.
	Update(ctx context.Context, id uuid.UUID, fn func(*domain.Paper) error) error

	// Delete removes a paper. Reviews, revisions, and reviewer assignments are
	// removed by cascade; user records are never touched.
	// Returns domain.ErrNotFound if no matching paper exists.
	Delete(ctx context.Context, id uuid.UUID) error

	// Exists reports whether a paper with the given ID exists.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)

	// List retrieves papers matching the filter criteria.
	// Returns the matching papers and total count for pagination.
	// The total count reflects all matching records regardless of limit/offset.
	List(ctx context.Context, filter PaperFilter) ([]*domain.Paper, int64, error)

	// CountByStatus returns the number of papers in each editorial status.
	// Statuses with no papers are absent from the map.
	CountByStatus(ctx context.Context) (map[domain.PaperStatus]int64, error)

	// AddReviewer adds a reviewer to the paper's assigned set.
	// Adding an already-assigned reviewer is a no-op.
	// Returns domain.ErrNotFound if the paper does not exist.
	AddReviewer(ctx context.Context, paperID, reviewerID uuid.UUID) error

	// RemoveReviewer removes a reviewer from the paper's assigned set.
	// Removing a reviewer who is not assigned is a no-op.
	RemoveReviewer(ctx context.Context, paperID, reviewerID uuid.UUID) error

	// ListReviewers returns the IDs of all reviewers currently assigned to the paper,
	// ordered by assignment time.
	ListReviewers(ctx context.Context, paperID uuid.UUID) ([]uuid.UUID, error)
}

// PaperFilter specifies criteria for listing papers.
type PaperFilter struct {
	// AuthorID filters to papers owned by a specific author (optional).
	AuthorID *uuid.UUID

	// Status filters to papers in a specific editorial status (optional).
	Status *domain.PaperStatus

	// EditorID filters to papers handled by a specific editor (optional).
	EditorID *uuid.UUID

	// ReviewerID filters to papers with a specific assigned reviewer (optional).
	ReviewerID *uuid.UUID

	// Search filters to papers whose title, abstract, or keywords contain the
	// given text, case-insensitively (optional).
	Search string

	// PublishedOnly restricts results to published papers, ordered by
	// publication date descending instead of submission date.
	PublishedOnly bool

	// Limit specifies maximum number of results (default: 100, max: 1000).
	Limit int

	// Offset specifies the starting position for pagination.
	Offset int
}

// Validate checks if the filter has valid values and sets defaults.
func (f *PaperFilter) Validate() error {
	if f.Status != nil && !domain.IsValidPaperStatus(*f.Status) {
		return domain.NewValidationError("status", "unknown paper status")
	}
	applyPaginationDefaults(&f.Limit, &f.Offset)
	return nil
}
