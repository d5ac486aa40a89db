package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/openjournal/editorial-service/internal/domain"
)

// UserRepository handles editorial actor persistence.
// Authentication lives outside this service; this repository only stores
// profile and role data needed for assignment eligibility checks.
type UserRepository interface {
	// Create inserts a new user.
	// Returns domain.ErrAlreadyExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)

	// GetByID retrieves a user by their UUID.
	// Returns domain.ErrNotFound if no matching user exists.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their unique email address.
	// Returns domain.ErrNotFound if no matching user exists.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ListByRole returns all users with the given role, ordered by last name.
	ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error)

	// CountByRole returns the number of users holding each role.
	// Roles with no users are absent from the map.
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}
