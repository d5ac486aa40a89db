package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openjournal/editorial-service/internal/domain"
)

// reviewRowColumns matches the column order of reviewColumns.
var reviewRowColumns = []string{
	"id", "paper_id", "reviewer_id", "status",
	"comments", "confidential_comments",
	"quality_score", "originality_score", "clarity_score", "significance_score",
	"recommendation", "paper_version", "due_date", "completed_at",
	"created_at", "updated_at",
}

// Helper to create a pending review for testing.
func newTestReview() *domain.Review {
	now := time.Now().UTC()
	return &domain.Review{
		ID:           uuid.New(),
		PaperID:      uuid.New(),
		ReviewerID:   uuid.New(),
		Status:       domain.ReviewStatusPending,
		PaperVersion: 1,
		DueDate:      now.Add(14 * 24 * time.Hour),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// reviewRowValues returns AddRow values for a review in reviewRowColumns order.
func reviewRowValues(rv *domain.Review) []interface{} {
	return []interface{}{
		rv.ID, rv.PaperID, rv.ReviewerID, rv.Status,
		rv.Comments, rv.ConfidentialComments,
		rv.QualityScore, rv.OriginalityScore, rv.ClarityScore, rv.SignificanceScore,
		rv.Recommendation, rv.PaperVersion, rv.DueDate, rv.CompletedAt,
		rv.CreatedAt, rv.UpdatedAt,
	}
}

func TestPgReviewRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates review successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		review := newTestReview()

		mock.ExpectQuery("INSERT INTO reviews").
			WithArgs(
				review.ID, review.PaperID, review.ReviewerID, review.Status,
				review.Comments, review.ConfidentialComments,
				review.QualityScore, review.OriginalityScore, review.ClarityScore, review.SignificanceScore,
				review.Recommendation, review.PaperVersion, review.DueDate, review.CompletedAt,
				pgxmock.AnyArg(), pgxmock.AnyArg(),
			).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
				AddRow(review.ID, review.CreatedAt, review.UpdatedAt))

		result, err := repo.Create(ctx, review)
		require.NoError(t, err)
		assert.Equal(t, review.ID, result.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate assignments create separate rows", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		paperID := uuid.New()
		reviewerID := uuid.New()

		for range 2 {
			review := newTestReview()
			review.PaperID = paperID
			review.ReviewerID = reviewerID

			mock.ExpectQuery("INSERT INTO reviews").
				WithArgs(
					review.ID, paperID, reviewerID, review.Status,
					review.Comments, review.ConfidentialComments,
					review.QualityScore, review.OriginalityScore, review.ClarityScore, review.SignificanceScore,
					review.Recommendation, review.PaperVersion, review.DueDate, review.CompletedAt,
					pgxmock.AnyArg(), pgxmock.AnyArg(),
				).
				WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
					AddRow(review.ID, review.CreatedAt, review.UpdatedAt))

			_, err := repo.Create(ctx, review)
			require.NoError(t, err)
		}

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns validation error for missing paper ID", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		review := newTestReview()
		review.PaperID = uuid.Nil

		result, err := repo.Create(ctx, review)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestPgReviewRepository_GetByID(t *testing.T) {
	ctx := context.Background()

	t.Run("returns review when found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		review := newTestReview()

		mock.ExpectQuery("SELECT (.+) FROM reviews WHERE id").
			WithArgs(review.ID).
			WillReturnRows(pgxmock.NewRows(reviewRowColumns).AddRow(reviewRowValues(review)...))

		result, err := repo.GetByID(ctx, review.ID)
		require.NoError(t, err)
		assert.Equal(t, review.ID, result.ID)
		assert.Equal(t, domain.ReviewStatusPending, result.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when no rows", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		id := uuid.New()

		mock.ExpectQuery("SELECT (.+) FROM reviews WHERE id").
			WithArgs(id).
			WillReturnError(pgx.ErrNoRows)

		result, err := repo.GetByID(ctx, id)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}

func TestPgReviewRepository_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("persists mutated scores", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		review := newTestReview()
		quality := 8

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM reviews WHERE id (.+) FOR UPDATE").
			WithArgs(review.ID).
			WillReturnRows(pgxmock.NewRows(reviewRowColumns).AddRow(reviewRowValues(review)...))
		mock.ExpectExec("UPDATE reviews SET").
			WithArgs(
				domain.ReviewStatusInProgress, review.Comments, review.ConfidentialComments,
				&quality, review.OriginalityScore, review.ClarityScore, review.SignificanceScore,
				review.Recommendation, review.DueDate, review.CompletedAt,
				pgxmock.AnyArg(), review.ID,
			).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))
		mock.ExpectCommit()

		err = repo.Update(ctx, review.ID, func(rv *domain.Review) error {
			rv.Status = domain.ReviewStatusInProgress
			rv.QualityScore = &quality
			return nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("callback error rolls back", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		review := newTestReview()
		boom := errors.New("not allowed")

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT (.+) FROM reviews WHERE id (.+) FOR UPDATE").
			WithArgs(review.ID).
			WillReturnRows(pgxmock.NewRows(reviewRowColumns).AddRow(reviewRowValues(review)...))
		mock.ExpectRollback()

		err = repo.Update(ctx, review.ID, func(rv *domain.Review) error { return boom })
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPgReviewRepository_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deletes existing review", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		id := uuid.New()

		mock.ExpectExec("DELETE FROM reviews").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		assert.NoError(t, repo.Delete(ctx, id))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing review", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		id := uuid.New()

		mock.ExpectExec("DELETE FROM reviews").
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		assert.True(t, errors.Is(repo.Delete(ctx, id), domain.ErrNotFound))
	})
}

func TestPgReviewRepository_Lists(t *testing.T) {
	ctx := context.Background()

	t.Run("lists reviews by paper", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		review := newTestReview()

		mock.ExpectQuery("SELECT (.+) FROM reviews(.+)WHERE paper_id").
			WithArgs(review.PaperID).
			WillReturnRows(pgxmock.NewRows(reviewRowColumns).AddRow(reviewRowValues(review)...))

		reviews, err := repo.ListByPaper(ctx, review.PaperID)
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, review.ID, reviews[0].ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lists reviews by paper and version", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		review := newTestReview()
		review.PaperVersion = 2

		mock.ExpectQuery("SELECT (.+) FROM reviews(.+)WHERE paper_id (.+) AND paper_version").
			WithArgs(review.PaperID, 2).
			WillReturnRows(pgxmock.NewRows(reviewRowColumns).AddRow(reviewRowValues(review)...))

		reviews, err := repo.ListByPaperAndVersion(ctx, review.PaperID, 2)
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, 2, reviews[0].PaperVersion)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lists reviews by reviewer and status", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)
		review := newTestReview()

		mock.ExpectQuery("SELECT (.+) FROM reviews(.+)WHERE reviewer_id (.+) AND status").
			WithArgs(review.ReviewerID, domain.ReviewStatusPending).
			WillReturnRows(pgxmock.NewRows(reviewRowColumns).AddRow(reviewRowValues(review)...))

		reviews, err := repo.ListByReviewerAndStatus(ctx, review.ReviewerID, domain.ReviewStatusPending)
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgReviewRepository(mock)

		_, err = repo.ListByReviewerAndStatus(ctx, uuid.New(), domain.ReviewStatus("LOST"))
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestPgReviewRepository_CountByStatus(t *testing.T) {
	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgReviewRepository(mock)

	mock.ExpectQuery("SELECT status, COUNT(.+) FROM reviews GROUP BY status").
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow(domain.ReviewStatusPending, int64(4)).
			AddRow(domain.ReviewStatusCompleted, int64(9)))

	counts, err := repo.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4), counts[domain.ReviewStatusPending])
	assert.Equal(t, int64(9), counts[domain.ReviewStatusCompleted])
	assert.NoError(t, mock.ExpectationsWereMet())
}
