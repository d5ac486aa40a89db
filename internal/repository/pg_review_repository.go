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
var _ ReviewRepository = (*PgReviewRepository)(nil)

// reviewColumns lists the columns selected for every review read.
const reviewColumns = `id, paper_id, reviewer_id, status,
		comments, confidential_comments,
		quality_score, originality_score, clarity_score, significance_score,
		recommendation, paper_version, due_date, completed_at,
		created_at, updated_at`

// PgReviewRepository is a PostgreSQL implementation of ReviewRepository.
type PgReviewRepository struct {
	db DBTX
}

// NewPgReviewRepository creates a new PostgreSQL review repository.
func NewPgReviewRepository(db DBTX) *PgReviewRepository {
	return &PgReviewRepository{db: db}
}

// Create inserts a new review.
func (r *PgReviewRepository) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	if review == nil {
		return nil, domain.NewValidationError("review", "review cannot be nil")
	}
	if review.PaperID == uuid.Nil {
		return nil, domain.NewValidationError("paper_id", "paper ID is required")
	}
	if review.ReviewerID == uuid.Nil {
		return nil, domain.NewValidationError("reviewer_id", "reviewer ID is required")
	}

	now := time.Now().UTC()
	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}

	query := `
		INSERT INTO reviews (
			id, paper_id, reviewer_id, status,
			comments, confidential_comments,
			quality_score, originality_score, clarity_score, significance_score,
			recommendation, paper_version, due_date, completed_at,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16
		)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		review.ID,
		review.PaperID,
		review.ReviewerID,
		review.Status,
		review.Comments,
		review.ConfidentialComments,
		review.QualityScore,
		review.OriginalityScore,
		review.ClarityScore,
		review.SignificanceScore,
		review.Recommendation,
		review.PaperVersion,
		review.DueDate,
		review.CompletedAt,
		now,
		now,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return nil, domain.NewNotFoundError("paper", review.PaperID.String())
		}
		return nil, fmt.Errorf("failed to insert review: %w", err)
	}

	return review, nil
}

// GetByID retrieves a review by its UUID.
func (r *PgReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1`, reviewColumns)

	row := r.db.QueryRow(ctx, query, id)
	review, err := scanReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.NewNotFoundError("review", id.String())
		}
		return nil, fmt.Errorf("failed to get review by ID: %w", err)
	}

	return review, nil
}

// Update performs a locked read-modify-write on a review using SELECT FOR UPDATE.
// See PgPaperRepository.Update for transaction semantics.
func (r *PgReviewRepository) Update(ctx context.Context, id uuid.UUID, fn func(*domain.Review) error) error {
	if beginner, ok := r.db.(txBeginner); ok {
		tx, err := beginner.Begin(ctx)
		if err != nil {
			return fmt.Errorf("failed to begin transaction for update: %w", err)
		}
		defer func() { _ = tx.Rollback(ctx) }()

		txRepo := &PgReviewRepository{db: tx}
		if err := txRepo.updateInTx(ctx, id, fn); err != nil {
			return err
		}
		return tx.Commit(ctx)
	}

	return r.updateInTx(ctx, id, fn)
}

// updateInTx performs the actual SELECT FOR UPDATE + UPDATE within the current DBTX.
func (r *PgReviewRepository) updateInTx(ctx context.Context, id uuid.UUID, fn func(*domain.Review) error) error {
	selectQuery := fmt.Sprintf(`SELECT %s FROM reviews WHERE id = $1 FOR UPDATE`, reviewColumns)

	row := r.db.QueryRow(ctx, selectQuery, id)
	review, err := scanReview(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.NewNotFoundError("review", id.String())
		}
		return fmt.Errorf("failed to query review for update: %w", err)
	}

	if err := fn(review); err != nil {
		return err
	}

	review.UpdatedAt = time.Now().UTC()

	updateQuery := `
		UPDATE reviews SET
			status = $1,
			comments = $2,
			confidential_comments = $3,
			quality_score = $4,
			originality_score = $5,
			clarity_score = $6,
			significance_score = $7,
			recommendation = $8,
			due_date = $9,
			completed_at = $10,
			updated_at = $11
		WHERE id = $12`

	_, err = r.db.Exec(ctx, updateQuery,
		review.Status,
		review.Comments,
		review.ConfidentialComments,
		review.QualityScore,
		review.OriginalityScore,
		review.ClarityScore,
		review.SignificanceScore,
		review.Recommendation,
		review.DueDate,
		review.CompletedAt,
		review.UpdatedAt,
		id,
	)

	if err != nil {
		return fmt.Errorf("failed to update review: %w", err)
	}

	return nil
}

// Delete removes a review record.
func (r *PgReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	if result.RowsAffected() == 0 {
		return domain.NewNotFoundError("review", id.String())
	}

	return nil
}

// ListByPaper returns all reviews for a paper across every version.
func (r *PgReviewRepository) ListByPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Review, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reviews
		WHERE paper_id = $1
		ORDER BY created_at DESC`, reviewColumns)

	return r.queryReviews(ctx, query, paperID)
}

// ListByPaperAndVersion returns reviews pinned to a specific manuscript version.
func (r *PgReviewRepository) ListByPaperAndVersion(ctx context.Context, paperID uuid.UUID, version int) ([]*domain.Review, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reviews
		WHERE paper_id = $1 AND paper_version = $2
		ORDER BY created_at DESC`, reviewColumns)

	return r.queryReviews(ctx, query, paperID, version)
}

// ListByReviewer returns all reviews assigned to a reviewer.
func (r *PgReviewRepository) ListByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]*domain.Review, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM reviews
		WHERE reviewer_id = $1
		ORDER BY created_at DESC`, reviewColumns)

	return r.queryReviews(ctx, query, reviewerID)
}

// ListByReviewerAndStatus returns a reviewer's reviews in a given lifecycle state.
func (r *PgReviewRepository) ListByReviewerAndStatus(ctx context.Context, reviewerID uuid.UUID, status domain.ReviewStatus) ([]*domain.Review, error) {
	if !domain.IsValidReviewStatus(status) {
		return nil, domain.NewValidationError("status", "unknown review status")
	}

	query := fmt.Sprintf(`
		SELECT %s FROM reviews
		WHERE reviewer_id = $1 AND status = $2
		ORDER BY created_at DESC`, reviewColumns)

	return r.queryReviews(ctx, query, reviewerID, status)
}

// CountByStatus returns the number of reviews in each lifecycle state.
func (r *PgReviewRepository) CountByStatus(ctx context.Context) (map[domain.ReviewStatus]int64, error) {
	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM reviews GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count reviews by status: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.ReviewStatus]int64)
	for rows.Next() {
		var status domain.ReviewStatus
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

// queryReviews runs a multi-row review query and scans the results.
func (r *PgReviewRepository) queryReviews(ctx context.Context, query string, args ...interface{}) ([]*domain.Review, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	var reviews []*domain.Review
	for rows.Next() {
		review, err := scanReviewFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, review)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reviews: %w", err)
	}

	return reviews, nil
}

// reviewScanDest holds the destination pointers for scanning a Review row.
type reviewScanDest struct {
	review domain.Review
}

// destinations returns the slice of pointers for Scan operations.
func (d *reviewScanDest) destinations() []interface{} {
	return []interface{}{
		&d.review.ID, &d.review.PaperID, &d.review.ReviewerID, &d.review.Status,
		&d.review.Comments, &d.review.ConfidentialComments,
		&d.review.QualityScore, &d.review.OriginalityScore, &d.review.ClarityScore, &d.review.SignificanceScore,
		&d.review.Recommendation, &d.review.PaperVersion, &d.review.DueDate, &d.review.CompletedAt,
		&d.review.CreatedAt, &d.review.UpdatedAt,
	}
}

// scanReview scans a single row into a Review.
func scanReview(row pgx.Row) (*domain.Review, error) {
	var dest reviewScanDest
	if err := row.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return &dest.review, nil
}

// scanReviewFromRows scans the current row from pgx.Rows into a Review.
func scanReviewFromRows(rows pgx.Rows) (*domain.Review, error) {
	var dest reviewScanDest
	if err := rows.Scan(dest.destinations()...); err != nil {
		return nil, err
	}
	return &dest.review, nil
}
