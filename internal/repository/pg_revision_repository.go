package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openjournal/editorial-service/internal/domain"
)

// Compile-time interface verification.
var _ RevisionRepository = (*PgRevisionRepository)(nil)

// revisionColumns lists the columns selected for every revision read.
const revisionColumns = `id, paper_id, version_number, file_path, file_name,
		changes_summary, author_response, created_at`

// PgRevisionRepository is a PostgreSQL implementation of RevisionRepository.
type PgRevisionRepository struct {
	db DBTX
}

// NewPgRevisionRepository creates a new PostgreSQL revision repository.
func NewPgRevisionRepository(db DBTX) *PgRevisionRepository {
	return &PgRevisionRepository{db: db}
}

// Create inserts a new revision snapshot.
func (r *PgRevisionRepository) Create(ctx context.Context, revision *domain.Revision) (*domain.Revision, error) {
	if revision == nil {
		return nil, domain.NewValidationError("revision", "revision cannot be nil")
	}
	if revision.PaperID == uuid.Nil {
		return nil, domain.NewValidationError("paper_id", "paper ID is required")
	}
	if revision.VersionNumber < 1 {
		return nil, domain.NewValidationError("version_number", "version number must be positive")
	}

	if revision.ID == uuid.Nil {
		revision.ID = uuid.New()
	}

	query := `
		INSERT INTO revisions (
			id, paper_id, version_number, file_path, file_name,
			changes_summary, author_response, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		RETURNING id, created_at`

	err := r.db.QueryRow(ctx, query,
		revision.ID,
		revision.PaperID,
		revision.VersionNumber,
		revision.FilePath,
		revision.FileName,
		revision.ChangesSummary,
		revision.AuthorResponse,
		time.Now().UTC(),
	).Scan(&revision.ID, &revision.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgUniqueViolation {
				return nil, domain.NewAlreadyExistsError("revision",
					fmt.Sprintf("%s:v%d", revision.PaperID, revision.VersionNumber))
			}
			if pgErr.Code == pgForeignKeyViolation {
				return nil, domain.NewNotFoundError("paper", revision.PaperID.String())
			}
		}
		return nil, fmt.Errorf("failed to insert revision: %w", err)
	}

	return revision, nil
}

// ListByPaper returns all revision snapshots for a paper, newest version first.
func (r *PgRevisionRepository) ListByPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Revision, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM revisions
		WHERE paper_id = $1
		ORDER BY version_number DESC`, revisionColumns)

	rows, err := r.db.Query(ctx, query, paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to list revisions: %w", err)
	}
	defer rows.Close()

	var revisions []*domain.Revision
	for rows.Next() {
		revision, err := scanRevisionFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan revision: %w", err)
		}
		revisions = append(revisions, revision)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating revisions: %w", err)
	}

	return revisions, nil
}

// GetByPaperAndVersion retrieves the snapshot of a specific manuscript version.
func (r *PgRevisionRepository) GetByPaperAndVersion(ctx context.Context, paperID uuid.UUID, version int) (*domain.Revision, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM revisions
		WHERE paper_id = $1 AND version_number = $2`, revisionColumns)

	row := r.db.QueryRow(ctx, query, paperID, version)
	revision, err := scanRevision(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("revision", fmt.Sprintf("%s:v%d", paperID, version))
		}
		return nil, fmt.Errorf("failed to get revision: %w", err)
	}

	return revision, nil
}

// revisionScanDest holds the destination pointers for scanning a Revision row.
type revisionScanDest struct {
	revision domain.Revision
}

// destinations returns the slice of pointers for Scan operations.
func (d *revisionScanDest) destinations() []interface{} {
	return []interface{}{
		&d.revision.ID, &d.revision.PaperID, &d.revision.VersionNumber,
		&d.revision.FilePath, &d.revision.FileName,
		&d.revision.ChangesSummary, &d.revision.AuthorResponse, &d.revision.CreatedAt,
	}
}

// scanRevision scans a single row into a Revision.
func scanRevision(row pgx.Row) (*domain.Revision, error) {
	var dest revisionScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return &dest.revision, nil
}

// scanRevisionFromRows scans the current row from pgx.Rows into a Revision.
func scanRevisionFromRows(rows pgx.Rows) (*domain.Revision, error) {
	var dest revisionScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return &dest.revision, nil
}
