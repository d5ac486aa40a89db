package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/openjournal/editorial-service/internal/domain"
)

// Compile-time interface verification.
var _ PaperRepository = (*PgPaperRepository)(nil)

// txBeginner is an interface for types that can begin a transaction (e.g., *pgxpool.Pool, *database.DB).
// Used by Update to automatically wrap SELECT FOR UPDATE + UPDATE in a transaction
// when the underlying DBTX is a pool rather than an existing transaction.
type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// paperColumns lists the columns selected for every paper read, including the
// aggregated reviewer set from paper_reviewers.
const paperColumns = `p.id, p.title, p.abstract, p.keywords, p.author_id, p.status,
		p.file_path, p.file_name, p.version, p.editor_comments,
		p.plagiarism_score, p.plagiarism_report, p.assigned_editor_id,
		p.submitted_at, p.published_at, p.created_at, p.updated_at,
		(SELECT COALESCE(array_agg(pr.reviewer_id::text ORDER BY pr.assigned_at), '{}')
		 FROM paper_reviewers pr WHERE pr.paper_id = p.id)`

// PgPaperRepository is a PostgreSQL implementation of PaperRepository.
type PgPaperRepository struct {
	db DBTX
}

// NewPgPaperRepository creates a new PostgreSQL paper repository.
func NewPgPaperRepository(db DBTX) *PgPaperRepository {
	return &PgPaperRepository{db: db}
}

// Create inserts a new paper.
func (r *PgPaperRepository) Create(ctx context.Context, paper *domain.Paper) (*domain.Paper, error) {
	if paper == nil {
		return nil, domain.NewValidationError("paper", "paper cannot be nil")
	}
	if paper.Title == "" {
		return nil, domain.NewValidationError("title", "title is required")
	}
	if paper.Abstract == "" {
		return nil, domain.NewValidationError("abstract", "abstract is required")
	}
	if paper.AuthorID == uuid.Nil {
		return nil, domain.NewValidationError("author_id", "author ID is required")
	}

	now := time.Now().UTC()
	if paper.ID == uuid.Nil {
		paper.ID = uuid.New()
	}

	query := `
		INSERT INTO papers (
			id, title, abstract, keywords, author_id, status,
			file_path, file_name, version, editor_comments,
			plagiarism_score, plagiarism_report, assigned_editor_id,
			submitted_at, published_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		paper.ID,
		paper.Title,
		paper.Abstract,
		paper.Keywords,
		paper.AuthorID,
		paper.Status,
		paper.FilePath,
		paper.FileName,
		paper.Version,
		paper.EditorComments,
		paper.PlagiarismScore,
		paper.PlagiarismReport,
		paper.AssignedEditorID,
		paper.SubmittedAt,
		paper.PublishedAt,
		now,
		now,
	).Scan(&paper.ID, &paper.CreatedAt, &paper.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == pgForeignKeyViolation {
				return nil, domain.NewNotFoundError("user", paper.AuthorID.String())
			}
			if pgErr.Code == pgUniqueViolation {
				return nil, domain.NewAlreadyExistsError("paper", paper.ID.String())
			}
		}
		return nil, fmt.Errorf("failed to insert paper: %w", err)
	}

	return paper, nil
}

// GetByID retrieves a paper by its UUID.
func (r *PgPaperRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Paper, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM papers p
		WHERE p.id = $1`, paperColumns)

	row := r.db.QueryRow(ctx, query, id)
	paper, err := scanPaper(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("paper", id.String())
		}
		return nil, fmt.Errorf("failed to get paper by ID: %w", err)
	}

	return paper, nil
}

// Update performs a locked read-modify-write on a paper using SELECT FOR UPDATE.
//
// SELECT FOR UPDATE requires a transaction for correct row-level locking.
// If the underlying DBTX is a connection pool (supports Begin), the method
// automatically wraps the read and write in an explicit transaction. If the
// underlying DBTX is already a transaction, it executes within that
// transaction, so callers composing multi-table operations via Store.WithinTx
// get a single atomic unit.
func (r *PgPaperRepository) Update(ctx context.Context, id uuid.UUID, fn func(*domain.Paper) error) error {
	if beginner, ok := r.db.(txBeginner); ok {
		tx, err := beginner.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for update: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		txRepo := &PgPaperRepository{db: tx}
		if err := txRepo.updateInTx(ctx, id, fn); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	return r.updateInTx(ctx, id, fn)
}

// updateInTx performs the actual SELECT FOR UPDATE + UPDATE within the current DBTX.
// This must be called within a transaction for correct row-level locking.
func (r *PgPaperRepository) updateInTx(ctx context.Context, id uuid.UUID, fn func(*domain.Paper) error) error {
	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM papers p
		WHERE p.id = $1
		FOR UPDATE`, paperColumns)

	row := r.db.QueryRow(ctx, selectQuery, id)
	paper, err := scanPaper(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFoundError("paper", id.String())
		}
		return fmt.Errorf("failed to query paper for update: %w", err)
	}

	if err := fn(paper); err != nil {
		return err
	}

	paper.UpdatedAt = time.Now().UTC()

	updateQuery := `
		UPDATE papers SET
			title = $1,
			abstract = $2,
			keywords = $3,
			status = $4,
			file_path = $5,
			file_name = $6,
			version = $7,
			editor_comments = $8,
			plagiarism_score = $9,
			plagiarism_report = $10,
			assigned_editor_id = $11,
			submitted_at = $12,
			published_at = $13,
			updated_at = $14
		WHERE id = $15`

	_, err = r.db.Exec(ctx, updateQuery,
		paper.Title,
		paper.Abstract,
		paper.Keywords,
		paper.Status,
		paper.FilePath,
		paper.FileName,
		paper.Version,
		paper.EditorComments,
		paper.PlagiarismScore,
		paper.PlagiarismReport,
		paper.AssignedEditorID,
		paper.SubmittedAt,
		paper.PublishedAt,
		paper.UpdatedAt,
		id,
	)

	if err != nil {
		return fmt.Errorf("failed to update paper: %w", err)
	}

	return nil
}

// Delete removes a paper. Dependent rows go with it via ON DELETE CASCADE.
func (r *PgPaperRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM papers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete paper: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("paper", id.String())
	}

	return nil
}

// Exists reports whether a paper with the given ID exists.
func (r *PgPaperRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM papers WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check paper existence: %w", err)
	}
	return exists, nil
}

// List retrieves papers matching the filter criteria.
func (r *PgPaperRepository) List(ctx context.Context, filter PaperFilter) ([]*domain.Paper, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}

	// Build dynamic WHERE clause
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.AuthorID != nil {
		conditions = append(conditions, fmt.Sprintf("p.author_id = $%d", argIndex))
		args = append(args, *filter.AuthorID)
		argIndex++
	}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIndex))
		args = append(args, *filter.Status)
		argIndex++
	}

	if filter.EditorID != nil {
		conditions = append(conditions, fmt.Sprintf("p.assigned_editor_id = $%d", argIndex))
		args = append(args, *filter.EditorID)
		argIndex++
	}

	if filter.ReviewerID != nil {
		conditions = append(conditions, fmt.Sprintf(
			"EXISTS (SELECT 1 FROM paper_reviewers pr WHERE pr.paper_id = p.id AND pr.reviewer_id = $%d)", argIndex))
		args = append(args, *filter.ReviewerID)
		argIndex++
	}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf(
			"(p.title ILIKE $%d OR p.abstract ILIKE $%d OR p.keywords ILIKE $%d)", argIndex, argIndex, argIndex))
		args = append(args, "%"+filter.Search+"%")
		argIndex++
	}

	orderBy := "p.submitted_at DESC"
	if filter.PublishedOnly {
		conditions = append(conditions, fmt.Sprintf("p.status = $%d", argIndex))
		args = append(args, domain.PaperStatusPublished)
		argIndex++
		orderBy = "p.published_at DESC"
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Count total matching records
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM papers p %s", whereClause)
	var totalCount int64
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("failed to count papers: %w", err)
	}

	// Query with pagination
	selectQuery := fmt.Sprintf(`
		SELECT %s
		FROM papers p
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		paperColumns, whereClause, orderBy, argIndex, argIndex+1)

	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list papers: %w", err)
	}
	defer rows.Close()

	papers := make([]*domain.Paper, 0, filter.Limit)
	for rows.Next() {
		paper, err := scanPaperFromRows(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan paper: %w", err)
		}
		papers = append(papers, paper)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating papers: %w", err)
	}

	return papers, totalCount, nil
}

// CountByStatus returns the number of papers in each editorial status.
func (r *PgPaperRepository) CountByStatus(ctx context.Context) (map[domain.PaperStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM papers GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count papers by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.PaperStatus]int64)
	for rows.Next() {
		var status domain.PaperStatus
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		counts[status] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status counts: %w", err)
	}

	return counts, nil
}

// AddReviewer adds a reviewer to the paper's assigned set.
// Re-adding an assigned reviewer is a no-op via ON CONFLICT DO NOTHING.
func (r *PgPaperRepository) AddReviewer(ctx context.Context, paperID, reviewerID uuid.UUID) error {
	query := `
		INSERT INTO paper_reviewers (paper_id, reviewer_id, assigned_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (paper_id, reviewer_id) DO NOTHING`

	_, err := r.db.Exec(ctx, query, paperID, reviewerID, time.Now().UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return domain.NewNotFoundError("paper", paperID.String())
		}
		return fmt.Errorf("failed to add reviewer: %w", err)
	}

	return nil
}

// RemoveReviewer removes a reviewer from the paper's assigned set.
func (r *PgPaperRepository) RemoveReviewer(ctx context.Context, paperID, reviewerID uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM paper_reviewers WHERE paper_id = $1 AND reviewer_id = $2`,
		paperID, reviewerID)
	if err != nil {
		return fmt.Errorf("failed to remove reviewer: %w", err)
	}
	return nil
}

// ListReviewers returns the IDs of reviewers assigned to the paper.
func (r *PgPaperRepository) ListReviewers(ctx context.Context, paperID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx,
		`SELECT reviewer_id FROM paper_reviewers WHERE paper_id = $1 ORDER BY assigned_at`,
		paperID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviewers: %w", err)
	}
	defer rows.Close()

	var reviewers []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan reviewer ID: %w", err)
		}
		reviewers = append(reviewers, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviewers: %w", err)
	}

	return reviewers, nil
}

// paperScanDest holds the destination pointers for scanning a Paper row.
type paperScanDest struct {
	paper       domain.Paper
	reviewerIDs []string
}

// destinations returns the slice of pointers for Scan operations.
func (d *paperScanDest) destinations() []interface{} {
	return []interface{}{
		&d.paper.ID, &d.paper.Title, &d.paper.Abstract, &d.paper.Keywords, &d.paper.AuthorID, &d.paper.Status,
		&d.paper.FilePath, &d.paper.FileName, &d.paper.Version, &d.paper.EditorComments,
		&d.paper.PlagiarismScore, &d.paper.PlagiarismReport, &d.paper.AssignedEditorID,
		&d.paper.SubmittedAt, &d.paper.PublishedAt, &d.paper.CreatedAt, &d.paper.UpdatedAt,
		&d.reviewerIDs,
	}
}

// finalize performs post-scan processing: parses the aggregated reviewer IDs.
func (d *paperScanDest) finalize() (*domain.Paper, error) {
	if len(d.reviewerIDs) > 0 {
		d.paper.AssignedReviewerIDs = make([]uuid.UUID, 0, len(d.reviewerIDs))
		for _, raw := range d.reviewerIDs {
			id, err := uuid.Parse(raw)
			if err != nil {
				return nil, fmt.Errorf("failed to parse reviewer ID %q: %w", raw, err)
			}
			d.paper.AssignedReviewerIDs = append(d.paper.AssignedReviewerIDs, id)
		}
	}
	return &d.paper, nil
}

// scanPaper scans a single row into a Paper.
func scanPaper(row pgx.Row) (*domain.Paper, error) {
	var dest paperScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}

// scanPaperFromRows scans the current row from pgx.Rows into a Paper.
func scanPaperFromRows(rows pgx.Rows) (*domain.Paper, error) {
	var dest paperScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return dest.finalize()
}
