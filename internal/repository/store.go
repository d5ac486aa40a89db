package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/openjournal/editorial-service/internal/database"
)

// Store bundles all repositories behind a single interface and provides
// transactional composition. Workflow operations that touch multiple tables
// run inside WithinTx so that each editorial operation commits or rolls back
// as a unit.
type Store interface {
	Papers() PaperRepository
	Reviews() ReviewRepository
	Revisions() RevisionRepository
	Users() UserRepository

	// WithinTx executes fn with a Store whose repositories all share one
	// database transaction. The transaction commits when fn returns nil and
	// rolls back otherwise. Nested calls reuse the enclosing transaction.
	WithinTx(ctx context.Context, fn func(Store) error) error
}

// Compile-time interface verification.
var (
	_ Store = (*PgStore)(nil)
	_ Store = (*txStore)(nil)
)

// PgStore is the PostgreSQL implementation of Store backed by a connection pool.
type PgStore struct {
	db        *database.DB
	papers    *PgPaperRepository
	reviews   *PgReviewRepository
	revisions *PgRevisionRepository
	users     *PgUserRepository
}

// NewPgStore creates a Store backed by the given database.
func NewPgStore(db *database.DB) *PgStore {
	return &PgStore{
		db:        db,
		papers:    NewPgPaperRepository(db),
		reviews:   NewPgReviewRepository(db),
		revisions: NewPgRevisionRepository(db),
		users:     NewPgUserRepository(db),
	}
}

// Papers returns the paper repository.
func (s *PgStore) Papers() PaperRepository { return s.papers }

// Reviews returns the review repository.
func (s *PgStore) Reviews() ReviewRepository { return s.reviews }

// Revisions returns the revision repository.
func (s *PgStore) Revisions() RevisionRepository { return s.revisions }

// Users returns the user repository.
func (s *PgStore) Users() UserRepository { return s.users }

// WithinTx runs fn against repositories bound to a single transaction.
func (s *PgStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	return s.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		return fn(newTxStore(tx))
	})
}

// txStore is a Store whose repositories share an open transaction.
type txStore struct {
	papers    *PgPaperRepository
	reviews   *PgReviewRepository
	revisions *PgRevisionRepository
	users     *PgUserRepository
}

func newTxStore(tx pgx.Tx) *txStore {
	return &txStore{
		papers:    NewPgPaperRepository(tx),
		reviews:   NewPgReviewRepository(tx),
		revisions: NewPgRevisionRepository(tx),
		users:     NewPgUserRepository(tx),
	}
}

func (s *txStore) Papers() PaperRepository       { return s.papers }
func (s *txStore) Reviews() ReviewRepository     { return s.reviews }
func (s *txStore) Revisions() RevisionRepository { return s.revisions }
func (s *txStore) Users() UserRepository         { return s.users }

// WithinTx reuses the already-open transaction.
func (s *txStore) WithinTx(ctx context.Context, fn func(Store) error) error {
	return fn(s)
}
