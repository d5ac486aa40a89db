package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/openjournal/editorial-service/internal/domain"
)

// ReviewRepository handles peer review persistence.
//
// Review rows are intentionally never deduplicated: re-assigning a reviewer to
// the same paper creates a fresh review record, preserving the full assignment
// history across revision rounds.
type ReviewRepository interface {
	// Create inserts a new review.
	// Returns the created review with database-assigned timestamps.
	Create(ctx context.Context, review *domain.Review) (*domain.Review, error)

	// GetByID retrieves a review by its UUID.
	// Returns domain.ErrNotFound if no matching review exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error)

	// Update performs a locked read-modify-write on a review using SELECT FOR UPDATE.
	// The callback receives the current row and mutates it in place; the updated
	// state is persisted when the callback returns nil.
	// Returns domain.ErrNotFound if no matching review exists.
	Update(ctx context.Context, id uuid.UUID, fn func(*domain.Review) error) error

	// Delete removes a review record.
	// Returns domain.ErrNotFound if no matching review exists.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListByPaper returns all reviews for a paper across every version,
	// newest first.
	ListByPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Review, error)

	// ListByPaperAndVersion returns reviews pinned to a specific manuscript version.
	ListByPaperAndVersion(ctx context.Context, paperID uuid.UUID, version int) ([]*domain.Review, error)

	// ListByReviewer returns all reviews assigned to a reviewer, newest first.
	ListByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]*domain.Review, error)

	// ListByReviewerAndStatus returns a reviewer's reviews in a given lifecycle state.
	ListByReviewerAndStatus(ctx context.Context, reviewerID uuid.UUID, status domain.ReviewStatus) ([]*domain.Review, error)

	// CountByStatus returns the number of reviews in each lifecycle state.
	// Statuses with no reviews are absent from the map.
	CountByStatus(ctx context.Context) (map[domain.ReviewStatus]int64, error)
}
