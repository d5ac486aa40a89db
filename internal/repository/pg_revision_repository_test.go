package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openjournal/editorial-service/internal/domain"
)

var revisionRowColumns = []string{
	"id", "paper_id", "version_number", "file_path", "file_name",
	"changes_summary", "author_response", "created_at",
}

func newTestRevision() *domain.Revision {
	return &domain.Revision{
		ID:             uuid.New(),
		PaperID:        uuid.New(),
		VersionNumber:  1,
		FilePath:       "uploads/papers/manuscript-v1.pdf",
		FileName:       "manuscript.pdf",
		ChangesSummary: "Clarified the proof of the main theorem.",
		AuthorResponse: "Addressed reviewer concerns about section 3.",
		CreatedAt:      time.Now().UTC(),
	}
}

func revisionRowValues(rev *domain.Revision) []interface{} {
	return []interface{}{
		rev.ID, rev.PaperID, rev.VersionNumber, rev.FilePath, rev.FileName,
		rev.ChangesSummary, rev.AuthorResponse, rev.CreatedAt,
	}
}

func TestPgRevisionRepository_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates revision successfully", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgRevisionRepository(mock)
		rev := newTestRevision()

		mock.ExpectQuery("INSERT INTO revisions").
			WithArgs(
				rev.ID, rev.PaperID, rev.VersionNumber, rev.FilePath, rev.FileName,
				rev.ChangesSummary, rev.AuthorResponse, pgxmock.AnyArg(),
			).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).
				AddRow(rev.ID, rev.CreatedAt))

		result, err := repo.Create(ctx, rev)
		require.NoError(t, err)
		assert.Equal(t, rev.ID, result.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate version returns already exists", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgRevisionRepository(mock)
		rev := newTestRevision()

		mock.ExpectQuery("INSERT INTO revisions").
			WithArgs(
				rev.ID, rev.PaperID, rev.VersionNumber, rev.FilePath, rev.FileName,
				rev.ChangesSummary, rev.AuthorResponse, pgxmock.AnyArg(),
			).
			WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

		result, err := repo.Create(ctx, rev)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, domain.ErrAlreadyExists))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects non-positive version number", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgRevisionRepository(mock)
		rev := newTestRevision()
		rev.VersionNumber = 0

		result, err := repo.Create(ctx, rev)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	})
}

func TestPgRevisionRepository_ListByPaper(t *testing.T) {
	ctx := context.Background()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPgRevisionRepository(mock)
	paperID := uuid.New()

	rev2 := newTestRevision()
	rev2.PaperID = paperID
	rev2.VersionNumber = 2
	rev1 := newTestRevision()
	rev1.PaperID = paperID
	rev1.VersionNumber = 1

	mock.ExpectQuery("SELECT (.+) FROM revisions(.+)ORDER BY version_number DESC").
		WithArgs(paperID).
		WillReturnRows(pgxmock.NewRows(revisionRowColumns).
			AddRow(revisionRowValues(rev2)...).
			AddRow(revisionRowValues(rev1)...))

	revisions, err := repo.ListByPaper(ctx, paperID)
	require.NoError(t, err)
	require.Len(t, revisions, 2)
	assert.Equal(t, 2, revisions[0].VersionNumber)
	assert.Equal(t, 1, revisions[1].VersionNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPgRevisionRepository_GetByPaperAndVersion(t *testing.T) {
	ctx := context.Background()

	t.Run("returns snapshot when found", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgRevisionRepository(mock)
		rev := newTestRevision()

		mock.ExpectQuery("SELECT (.+) FROM revisions(.+)WHERE paper_id (.+) AND version_number").
			WithArgs(rev.PaperID, rev.VersionNumber).
			WillReturnRows(pgxmock.NewRows(revisionRowColumns).AddRow(revisionRowValues(rev)...))

		result, err := repo.GetByPaperAndVersion(ctx, rev.PaperID, rev.VersionNumber)
		require.NoError(t, err)
		assert.Equal(t, rev.ID, result.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when missing", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		repo := NewPgRevisionRepository(mock)
		paperID := uuid.New()

		mock.ExpectQuery("SELECT (.+) FROM revisions(.+)WHERE paper_id (.+) AND version_number").
			WithArgs(paperID, 9).
			WillReturnError(pgx.ErrNoRows)

		result, err := repo.GetByPaperAndVersion(ctx, paperID, 9)
		assert.Nil(t, result)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
	})
}
