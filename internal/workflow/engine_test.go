package workflow

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openjournal/editorial-service/internal/domain"
	"github.com/openjournal/editorial-service/internal/plagiarism"
	"github.com/openjournal/editorial-service/internal/repository"
	"github.com/openjournal/editorial-service/internal/repository/memory"
)

const testReviewPeriod = 14 * 24 * time.Hour

func newTestEngine(t *testing.T) (*Engine, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	checker := plagiarism.NewStubChecker(rand.New(rand.NewSource(7)))
	engine := NewEngine(store, checker, nil, zerolog.Nop(), testReviewPeriod)
	return engine, store
}

func submitTestPaper(t *testing.T, engine *Engine, store *memory.Store) (*domain.Paper, *domain.User) {
	t.Helper()
	author := store.SeedUser(domain.RoleAuthor)
	paper, err := engine.SubmitPaper(context.Background(), SubmitPaperInput{
		Title:    "Consensus Without Clocks",
		Abstract: "We study agreement under weak timing assumptions.",
		Keywords: "consensus, distributed systems",
		AuthorID: author.ID,
		FilePath: "uploads/papers/consensus-v1.pdf",
		FileName: "consensus.pdf",
	})
	require.NoError(t, err)
	return paper, author
}

func TestEngine_SubmitPaper(t *testing.T) {
	ctx := context.Background()

	t.Run("submits with plagiarism check", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		assert.Equal(t, domain.PaperStatusSubmitted, paper.Status)
		assert.Equal(t, 1, paper.Version)
		require.NotNil(t, paper.PlagiarismScore)
		assert.GreaterOrEqual(t, *paper.PlagiarismScore, 0.0)
		assert.Less(t, *paper.PlagiarismScore, 30.0)
		assert.Contains(t, paper.PlagiarismReport, "Document: Consensus Without Clocks")
	})

	t.Run("rejects missing title", func(t *testing.T) {
		engine, store := newTestEngine(t)
		author := store.SeedUser(domain.RoleAuthor)

		_, err := engine.SubmitPaper(ctx, SubmitPaperInput{
			Abstract: "abstract",
			AuthorID: author.ID,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("rejects unknown author", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.SubmitPaper(ctx, SubmitPaperInput{
			Title:    "t",
			Abstract: "a",
			AuthorID: uuid.New(),
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("rejects disabled author", func(t *testing.T) {
		engine, store := newTestEngine(t)
		author := store.SeedUser(domain.RoleAuthor)
		store.SetUserEnabled(author.ID, false)

		_, err := engine.SubmitPaper(ctx, SubmitPaperInput{
			Title:    "t",
			Abstract: "a",
			AuthorID: author.ID,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEngine_UpdatePaper(t *testing.T) {
	ctx := context.Background()

	t.Run("replaces metadata without touching version or status", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		updated, err := engine.UpdatePaper(ctx, UpdatePaperInput{
			PaperID:  paper.ID,
			Title:    "Consensus Without Clocks, Revisited",
			Abstract: "Extended analysis under partial synchrony.",
			Keywords: "consensus, partial synchrony",
		})
		require.NoError(t, err)
		assert.Equal(t, "Consensus Without Clocks, Revisited", updated.Title)
		assert.Equal(t, "consensus, partial synchrony", updated.Keywords)
		assert.Equal(t, 1, updated.Version)
		assert.Equal(t, domain.PaperStatusSubmitted, updated.Status)
		assert.Equal(t, "uploads/papers/consensus-v1.pdf", updated.FilePath)
	})

	t.Run("replaces the file only when a new path is given", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		updated, err := engine.UpdatePaper(ctx, UpdatePaperInput{
			PaperID:  paper.ID,
			Title:    paper.Title,
			Abstract: paper.Abstract,
			FilePath: "uploads/papers/consensus-v1b.pdf",
			FileName: "consensus-fixed.pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, "uploads/papers/consensus-v1b.pdf", updated.FilePath)
		assert.Equal(t, "consensus-fixed.pdf", updated.FileName)
	})

	t.Run("rejects empty title", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		_, err := engine.UpdatePaper(ctx, UpdatePaperInput{
			PaperID:  paper.ID,
			Abstract: paper.Abstract,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown paper returns not found", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		_, err := engine.UpdatePaper(ctx, UpdatePaperInput{
			PaperID:  uuid.New(),
			Title:    "t",
			Abstract: "a",
		})
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEngine_AssignEditor(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns editor", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)
		editor := store.SeedUser(domain.RoleEditor)

		updated, err := engine.AssignEditor(ctx, paper.ID, editor.ID)
		require.NoError(t, err)
		require.NotNil(t, updated.AssignedEditorID)
		assert.Equal(t, editor.ID, *updated.AssignedEditorID)
		assert.Equal(t, domain.PaperStatusSubmitted, updated.Status)
	})

	t.Run("rejects non-editor role", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, author := submitTestPaper(t, engine, store)

		_, err := engine.AssignEditor(ctx, paper.ID, author.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})

	t.Run("rejects disabled editor", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)
		editor := store.SeedUser(domain.RoleEditor)
		store.SetUserEnabled(editor.ID, false)

		_, err := engine.AssignEditor(ctx, paper.ID, editor.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEngine_AssignReviewer(t *testing.T) {
	ctx := context.Background()

	t.Run("opens review pinned to current version", func(t *testing.T) {
		engine, store := newTestEngine(t)
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		engine.now = func() time.Time { return base }
		paper, _ := submitTestPaper(t, engine, store)
		reviewer := store.SeedUser(domain.RoleReviewer)

		updated, review, err := engine.AssignReviewer(ctx, paper.ID, reviewer.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.ReviewStatusPending, review.Status)
		assert.Equal(t, 1, review.PaperVersion)
		assert.Equal(t, base.Add(testReviewPeriod), review.DueDate)

		assert.Equal(t, domain.PaperStatusUnderReview, updated.Status)
		assert.True(t, updated.HasReviewer(reviewer.ID))
	})

	t.Run("reassignment keeps one set entry but opens a second review", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)
		reviewer := store.SeedUser(domain.RoleReviewer)

		_, _, err := engine.AssignReviewer(ctx, paper.ID, reviewer.ID)
		require.NoError(t, err)
		got, _, err := engine.AssignReviewer(ctx, paper.ID, reviewer.ID)
		require.NoError(t, err)

		assert.Len(t, got.AssignedReviewerIDs, 1)

		reviews, err := store.Reviews().ListByPaper(ctx, paper.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 2)
	})

	t.Run("rejects author reviewing own paper", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, author := submitTestPaper(t, engine, store)
		store.SetUserRole(author.ID, domain.RoleReviewer)

		_, _, err := engine.AssignReviewer(ctx, paper.ID, author.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)

		got, err := engine.GetPaper(ctx, paper.ID)
		require.NoError(t, err)
		assert.False(t, got.HasReviewer(author.ID))
	})

	t.Run("rejects author role", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)
		other := store.SeedUser(domain.RoleAuthor)

		_, _, err := engine.AssignReviewer(ctx, paper.ID, other.ID)
		assert.ErrorIs(t, err, domain.ErrInvalidRole)
	})

	t.Run("editors may review", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)
		editor := store.SeedUser(domain.RoleEditor)

		_, review, err := engine.AssignReviewer(ctx, paper.ID, editor.ID)
		require.NoError(t, err)
		assert.Equal(t, editor.ID, review.ReviewerID)
	})
}

func TestEngine_ReviewRoundTrip(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t)

	paper, _ := submitTestPaper(t, engine, store)
	reviewer := store.SeedUser(domain.RoleReviewer)

	assigned, first, err := engine.AssignReviewer(ctx, paper.ID, reviewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, first.PaperVersion)
	assert.Equal(t, domain.PaperStatusUnderReview, assigned.Status)

	// The author revises while the paper is still under review.
	revision, err := engine.SubmitRevision(ctx, SubmitRevisionInput{
		PaperID:        paper.ID,
		FilePath:       "uploads/papers/consensus-v2.pdf",
		FileName:       "consensus-v2.pdf",
		ChangesSummary: "fixed typo",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, revision.VersionNumber)

	revised, err := engine.GetPaper(ctx, paper.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, revised.Version)
	assert.Equal(t, domain.PaperStatusRevised, revised.Status)

	got, second, err := engine.AssignReviewer(ctx, paper.ID, reviewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.PaperVersion)
	assert.Equal(t, domain.PaperStatusUnderReview, got.Status)
	assert.Len(t, got.AssignedReviewerIDs, 1)

	reviews, err := store.Reviews().ListByPaper(ctx, paper.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)

	// Removing the reviewer empties the set but both review rows survive.
	require.NoError(t, engine.RemoveReviewer(ctx, paper.ID, reviewer.ID))
	got, err = engine.GetPaper(ctx, paper.ID)
	require.NoError(t, err)
	assert.Empty(t, got.AssignedReviewerIDs)
	reviews, err = store.Reviews().ListByPaper(ctx, paper.ID)
	require.NoError(t, err)
	assert.Len(t, reviews, 2)
}

func TestEngine_AssignReviewerForcesUnderReview(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t)

	paper, _ := submitTestPaper(t, engine, store)
	reviewer := store.SeedUser(domain.RoleReviewer)

	_, err := engine.UpdateStatus(ctx, paper.ID, domain.PaperStatusUnderReview, "")
	require.NoError(t, err)
	_, err = engine.UpdateStatus(ctx, paper.ID, domain.PaperStatusAccepted, "")
	require.NoError(t, err)

	// Assignment pushes even an accepted paper back under review.
	got, _, err := engine.AssignReviewer(ctx, paper.ID, reviewer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaperStatusUnderReview, got.Status)
}

func TestEngine_RemoveReviewer(t *testing.T) {
	ctx := context.Background()

	t.Run("removes from set but keeps reviews", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)
		reviewer := store.SeedUser(domain.RoleReviewer)

		_, _, err := engine.AssignReviewer(ctx, paper.ID, reviewer.ID)
		require.NoError(t, err)

		require.NoError(t, engine.RemoveReviewer(ctx, paper.ID, reviewer.ID))

		got, err := engine.GetPaper(ctx, paper.ID)
		require.NoError(t, err)
		assert.Empty(t, got.AssignedReviewerIDs)

		reviews, err := store.Reviews().ListByPaper(ctx, paper.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 1)
	})

	t.Run("unknown paper returns not found", func(t *testing.T) {
		engine, store := newTestEngine(t)
		reviewer := store.SeedUser(domain.RoleReviewer)

		err := engine.RemoveReviewer(ctx, uuid.New(), reviewer.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("unknown reviewer returns not found", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		err := engine.RemoveReviewer(ctx, paper.ID, uuid.New())
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestEngine_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("allows graph transitions", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		updated, err := engine.UpdateStatus(ctx, paper.ID, domain.PaperStatusUnderReview, "sent to review")
		require.NoError(t, err)
		assert.Equal(t, domain.PaperStatusUnderReview, updated.Status)
		assert.Equal(t, "sent to review", updated.EditorComments)
	})

	t.Run("rejects moves outside the graph", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		_, err := engine.UpdateStatus(ctx, paper.ID, domain.PaperStatusPublished, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("terminal states admit no moves", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		_, err := engine.UpdateStatus(ctx, paper.ID, domain.PaperStatusUnderReview, "")
		require.NoError(t, err)
		_, err = engine.UpdateStatus(ctx, paper.ID, domain.PaperStatusRejected, "not suitable")
		require.NoError(t, err)

		_, err = engine.UpdateStatus(ctx, paper.ID, domain.PaperStatusUnderReview, "")
		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("published_at is set once", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		for _, status := range []domain.PaperStatus{
			domain.PaperStatusUnderReview,
			domain.PaperStatusAccepted,
			domain.PaperStatusPublished,
		} {
			_, err := engine.UpdateStatus(ctx, paper.ID, status, "")
			require.NoError(t, err)
		}

		first, err := engine.GetPaper(ctx, paper.ID)
		require.NoError(t, err)
		require.NotNil(t, first.PublishedAt)

		// Re-asserting PUBLISHED must not move the publication timestamp.
		_, err = engine.UpdateStatus(ctx, paper.ID, domain.PaperStatusPublished, "")
		require.NoError(t, err)

		again, err := engine.GetPaper(ctx, paper.ID)
		require.NoError(t, err)
		assert.Equal(t, *first.PublishedAt, *again.PublishedAt)
	})

	t.Run("empty comments leave previous comments in place", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		_, err := engine.UpdateStatus(ctx, paper.ID, domain.PaperStatusUnderReview, "first pass")
		require.NoError(t, err)
		updated, err := engine.UpdateStatus(ctx, paper.ID, domain.PaperStatusAccepted, "")
		require.NoError(t, err)
		assert.Equal(t, "first pass", updated.EditorComments)
	})

	t.Run("rejects unknown status", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		_, err := engine.UpdateStatus(ctx, paper.ID, domain.PaperStatus("IN_LIMBO"), "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEngine_SubmitRevision(t *testing.T) {
	ctx := context.Background()

	requireRevisionRequired := func(t *testing.T, engine *Engine, paperID uuid.UUID) {
		t.Helper()
		_, err := engine.UpdateStatus(ctx, paperID, domain.PaperStatusUnderReview, "")
		require.NoError(t, err)
		_, err = engine.UpdateStatus(ctx, paperID, domain.PaperStatusRevisionRequired, "please revise")
		require.NoError(t, err)
	}

	t.Run("archives outgoing version and bumps the counter", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)
		requireRevisionRequired(t, engine, paper.ID)

		revision, err := engine.SubmitRevision(ctx, SubmitRevisionInput{
			PaperID:        paper.ID,
			FilePath:       "uploads/papers/consensus-v2.pdf",
			FileName:       "consensus-v2.pdf",
			ChangesSummary: "Tightened the liveness argument.",
			AuthorResponse: "Addressed reviewer 2's counterexample.",
		})
		require.NoError(t, err)

		assert.Equal(t, 1, revision.VersionNumber)
		assert.Equal(t, "uploads/papers/consensus-v1.pdf", revision.FilePath)
		assert.Equal(t, "consensus.pdf", revision.FileName)

		got, err := engine.GetPaper(ctx, paper.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, domain.PaperStatusRevised, got.Status)
		assert.Equal(t, "uploads/papers/consensus-v2.pdf", got.FilePath)
		require.NotNil(t, got.PlagiarismScore)
		assert.NotEqual(t, *paper.PlagiarismScore, *got.PlagiarismScore, "revision should re-run the plagiarism check")
	})

	t.Run("each round archives exactly one version", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		for round := 1; round <= 3; round++ {
			requireRevisionRequired(t, engine, paper.ID)
			revision, err := engine.SubmitRevision(ctx, SubmitRevisionInput{
				PaperID:        paper.ID,
				ChangesSummary: "round of changes",
			})
			require.NoError(t, err)
			assert.Equal(t, round, revision.VersionNumber)
		}

		got, err := engine.GetPaper(ctx, paper.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, got.Version)

		revisions, err := engine.ListRevisions(ctx, paper.ID)
		require.NoError(t, err)
		require.Len(t, revisions, 3)
		assert.Equal(t, 3, revisions[0].VersionNumber)
		assert.Equal(t, 1, revisions[2].VersionNumber)
	})

	t.Run("accepted from any status", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		// No editorial decision yet; the author can still revise.
		revision, err := engine.SubmitRevision(ctx, SubmitRevisionInput{
			PaperID:        paper.ID,
			ChangesSummary: "changes",
		})
		require.NoError(t, err)
		assert.Equal(t, 1, revision.VersionNumber)

		got, err := engine.GetPaper(ctx, paper.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, got.Version)
		assert.Equal(t, domain.PaperStatusRevised, got.Status)
	})

	t.Run("requires a changes summary", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, _ := submitTestPaper(t, engine, store)

		_, err := engine.SubmitRevision(ctx, SubmitRevisionInput{PaperID: paper.ID})
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestEngine_DeletePaper(t *testing.T) {
	ctx := context.Background()

	t.Run("cascades to reviews and revisions but not users", func(t *testing.T) {
		engine, store := newTestEngine(t)
		paper, author := submitTestPaper(t, engine, store)
		reviewer := store.SeedUser(domain.RoleReviewer)

		_, _, err := engine.AssignReviewer(ctx, paper.ID, reviewer.ID)
		require.NoError(t, err)
		_, err = engine.UpdateStatus(ctx, paper.ID, domain.PaperStatusRevisionRequired, "")
		require.NoError(t, err)
		_, err = engine.SubmitRevision(ctx, SubmitRevisionInput{
			PaperID:        paper.ID,
			ChangesSummary: "changes",
		})
		require.NoError(t, err)

		require.NoError(t, engine.DeletePaper(ctx, paper.ID))

		_, err = engine.GetPaper(ctx, paper.ID)
		assert.ErrorIs(t, err, domain.ErrNotFound)

		reviews, err := store.Reviews().ListByPaper(ctx, paper.ID)
		require.NoError(t, err)
		assert.Empty(t, reviews)

		revisions, err := engine.ListRevisions(ctx, paper.ID)
		require.NoError(t, err)
		assert.Empty(t, revisions)

		_, err = engine.GetUser(ctx, author.ID)
		assert.NoError(t, err)
		_, err = engine.GetUser(ctx, reviewer.ID)
		assert.NoError(t, err)
	})

	t.Run("unknown paper returns not found", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		assert.ErrorIs(t, engine.DeletePaper(ctx, uuid.New()), domain.ErrNotFound)
	})
}

func TestEngine_ListPapers(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t)
	paper, author := submitTestPaper(t, engine, store)

	papers, total, err := engine.ListPapers(ctx, repository.PaperFilter{AuthorID: &author.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, papers, 1)
	assert.Equal(t, paper.ID, papers[0].ID)

	other := uuid.New()
	_, total, err = engine.ListPapers(ctx, repository.PaperFilter{AuthorID: &other})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestEngine_Stats(t *testing.T) {
	ctx := context.Background()
	engine, store := newTestEngine(t)
	paper, _ := submitTestPaper(t, engine, store)
	reviewer := store.SeedUser(domain.RoleReviewer)

	_, _, err := engine.AssignReviewer(ctx, paper.ID, reviewer.ID)
	require.NoError(t, err)

	stats, err := engine.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.PapersByStatus[domain.PaperStatusUnderReview])
	assert.Equal(t, int64(1), stats.ReviewsByStatus[domain.ReviewStatusPending])
	assert.Equal(t, int64(1), stats.UsersByRole[domain.RoleReviewer])
	assert.Equal(t, int64(1), stats.UsersByRole[domain.RoleAuthor])
}
