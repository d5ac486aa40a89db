package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/openjournal/editorial-service/internal/domain"
)

// RevisionRepository handles immutable manuscript version snapshots.
// Revisions are append-only: there are no update or delete operations.
type RevisionRepository interface {
	// Create inserts a new revision snapshot.
	// Returns domain.ErrAlreadyExists if a snapshot for the same paper and
	// version number already exists.
	Create(ctx context.Context, revision *domain.Revision) (*domain.Revision, error)

	// ListByPaper returns all revision snapshots for a paper, newest version first.
	ListByPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Revision, error)

	// GetByPaperAndVersion retrieves the snapshot of a specific manuscript version.
	// Returns domain.ErrNotFound if no matching snapshot exists.
	GetByPaperAndVersion(ctx context.Context, paperID uuid.UUID, version int) (*domain.Revision, error)
}
