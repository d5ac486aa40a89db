// Package workflow implements the editorial process: submission, editor and
// reviewer assignment, status transitions, revision rounds, and final
// disposition. All multi-table operations run inside a store transaction.
package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openjournal/editorial-service/internal/domain"
	"github.com/openjournal/editorial-service/internal/observability"
	"github.com/openjournal/editorial-service/internal/plagiarism"
	"github.com/openjournal/editorial-service/internal/repository"
)

// Engine coordinates the editorial workflow over the persistence layer.
type Engine struct {
	store        repository.Store
	checker      plagiarism.Checker
	metrics      *observability.Metrics
	logger       zerolog.Logger
	reviewPeriod time.Duration

	now func() time.Time
}

// NewEngine creates a workflow engine. reviewPeriod is the time a reviewer has
// from assignment until the review is due. metrics may be nil.
func NewEngine(
	store repository.Store,
	checker plagiarism.Checker,
	metrics *observability.Metrics,
	logger zerolog.Logger,
	reviewPeriod time.Duration,
) *Engine {
	return &Engine{
		store:        store,
		checker:      checker,
		metrics:      metrics,
		logger:       logger.With().Str("component", "workflow").Logger(),
		reviewPeriod: reviewPeriod,
		now:          time.Now,
	}
}

// SubmitPaperInput carries the fields of a new manuscript submission.
type SubmitPaperInput struct {
	Title    string
	Abstract string
	Keywords string
	AuthorID uuid.UUID
	FilePath string
	FileName string
}

// SubmitPaper registers a new manuscript. The paper starts at version 1 in
// status SUBMITTED, and the plagiarism check runs synchronously as part of
// submission.
func (e *Engine) SubmitPaper(ctx context.Context, input SubmitPaperInput) (*domain.Paper, error) {
	if input.Title == "" {
		return nil, domain.NewValidationError("title", "title is required")
	}
	if input.Abstract == "" {
		return nil, domain.NewValidationError("abstract", "abstract is required")
	}
	if input.AuthorID == uuid.Nil {
		return nil, domain.NewValidationError("author_id", "author_id is required")
	}

	now := e.now().UTC()
	paper := &domain.Paper{
		ID:          uuid.New(),
		Title:       input.Title,
		Abstract:    input.Abstract,
		Keywords:    input.Keywords,
		AuthorID:    input.AuthorID,
		Status:      domain.PaperStatusSubmitted,
		FilePath:    input.FilePath,
		FileName:    input.FileName,
		Version:     1,
		SubmittedAt: now,
	}

	result, err := e.checker.Check(ctx, paper)
	if err != nil {
		return nil, err
	}
	paper.PlagiarismScore = &result.Score
	paper.PlagiarismReport = result.Report

	var created *domain.Paper
	err = e.store.WithinTx(ctx, func(s repository.Store) error {
		author, err := s.Users().GetByID(ctx, input.AuthorID)
		if err != nil {
			return err
		}
		if !author.Enabled {
			return domain.NewValidationError("author_id", "author account is disabled")
		}
		created, err = s.Papers().Create(ctx, paper)
		return err
	})
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.RecordPaperSubmitted(result.Score)
	}
	log := observability.WithPaperContext(e.logger, created.ID.String(), string(created.Status))
	log.Info().
		Float64("plagiarism_score", result.Score).
		Msg("paper submitted")

	return created, nil
}

// UpdatePaperInput carries a metadata update for an existing manuscript.
type UpdatePaperInput struct {
	PaperID  uuid.UUID
	Title    string
	Abstract string
	Keywords string

	// FilePath and FileName replace the manuscript file only when FilePath is
	// non-empty; otherwise the current file reference is kept.
	FilePath string
	FileName string
}

// UpdatePaper replaces a paper's title, abstract, and keywords, and optionally
// its file reference. The version counter and status are unchanged; version
// bumps happen only through SubmitRevision.
func (e *Engine) UpdatePaper(ctx context.Context, input UpdatePaperInput) (*domain.Paper, error) {
	if input.Title == "" {
		return nil, domain.NewValidationError("title", "title is required")
	}
	if input.Abstract == "" {
		return nil, domain.NewValidationError("abstract", "abstract is required")
	}

	var updated *domain.Paper
	err := e.store.Papers().Update(ctx, input.PaperID, func(p *domain.Paper) error {
		p.Title = input.Title
		p.Abstract = input.Abstract
		p.Keywords = input.Keywords
		if input.FilePath != "" {
			p.FilePath = input.FilePath
			p.FileName = input.FileName
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := observability.WithPaperContext(e.logger, input.PaperID.String(), string(updated.Status))
	log.Info().Msg("paper metadata updated")

	return updated, nil
}

// GetPaper retrieves a manuscript with its assigned reviewer set.
func (e *Engine) GetPaper(ctx context.Context, id uuid.UUID) (*domain.Paper, error) {
	return e.store.Papers().GetByID(ctx, id)
}

// ListPapers retrieves manuscripts matching the filter.
func (e *Engine) ListPapers(ctx context.Context, filter repository.PaperFilter) ([]*domain.Paper, int64, error) {
	return e.store.Papers().List(ctx, filter)
}

// AssignEditor sets the paper's handling editor. The target user must hold an
// editor-capable role and be enabled. Re-assignment replaces the previous
// editor.
func (e *Engine) AssignEditor(ctx context.Context, paperID, editorID uuid.UUID) (*domain.Paper, error) {
	err := e.store.WithinTx(ctx, func(s repository.Store) error {
		editor, err := s.Users().GetByID(ctx, editorID)
		if err != nil {
			return err
		}
		if !editor.Role.CanEdit() {
			return domain.NewInvalidRoleError(editorID.String(), editor.Role, "EDITOR")
		}
		if !editor.Enabled {
			return domain.NewValidationError("editor_id", "editor account is disabled")
		}
		return s.Papers().Update(ctx, paperID, func(p *domain.Paper) error {
			p.AssignedEditorID = &editorID
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info().
		Str("paper_id", paperID.String()).
		Str("editor_id", editorID.String()).
		Msg("editor assigned")

	return e.store.Papers().GetByID(ctx, paperID)
}

// AssignReviewer adds a reviewer to the paper and opens a new review pinned to
// the paper's current version. Assigning an already-assigned reviewer leaves
// the reviewer set unchanged but still opens a fresh review record, so each
// round of assignment keeps its own history. The paper moves to UNDER_REVIEW
// as a side effect regardless of its current state. Both the updated paper and
// the newly opened review are returned.
func (e *Engine) AssignReviewer(ctx context.Context, paperID, reviewerID uuid.UUID) (*domain.Paper, *domain.Review, error) {
	now := e.now().UTC()
	var (
		review     *domain.Review
		prevStatus domain.PaperStatus
	)

	err := e.store.WithinTx(ctx, func(s repository.Store) error {
		reviewer, err := s.Users().GetByID(ctx, reviewerID)
		if err != nil {
			return err
		}
		if !reviewer.Role.CanReview() {
			return domain.NewInvalidRoleError(reviewerID.String(), reviewer.Role, "REVIEWER")
		}
		if !reviewer.Enabled {
			return domain.NewValidationError("reviewer_id", "reviewer account is disabled")
		}

		var paperVersion int
		err = s.Papers().Update(ctx, paperID, func(p *domain.Paper) error {
			if p.AuthorID == reviewerID {
				return domain.NewValidationError("reviewer_id", "authors cannot review their own paper")
			}
			prevStatus = p.Status
			paperVersion = p.Version
			p.Status = domain.PaperStatusUnderReview
			return nil
		})
		if err != nil {
			return err
		}

		if err := s.Papers().AddReviewer(ctx, paperID, reviewerID); err != nil {
			return err
		}

		review, err = s.Reviews().Create(ctx, &domain.Review{
			ID:           uuid.New(),
			PaperID:      paperID,
			ReviewerID:   reviewerID,
			Status:       domain.ReviewStatusPending,
			PaperVersion: paperVersion,
			DueDate:      now.Add(e.reviewPeriod),
		})
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	if e.metrics != nil {
		e.metrics.RecordReviewAssigned()
		if prevStatus != domain.PaperStatusUnderReview {
			e.metrics.RecordStatusTransition(string(prevStatus), string(domain.PaperStatusUnderReview))
		}
	}
	log := observability.WithReviewContext(e.logger, review.ID.String(), reviewerID.String())
	log.Info().
		Str("paper_id", paperID.String()).
		Int("paper_version", review.PaperVersion).
		Time("due_date", review.DueDate).
		Msg("reviewer assigned")

	paper, err := e.store.Papers().GetByID(ctx, paperID)
	if err != nil {
		return nil, nil, err
	}
	return paper, review, nil
}

// RemoveReviewer takes a reviewer off the paper's assigned set. Both the paper
// and the reviewer must exist. Existing review records are retained; removing
// an unassigned reviewer is a no-op.
func (e *Engine) RemoveReviewer(ctx context.Context, paperID, reviewerID uuid.UUID) error {
	return e.store.WithinTx(ctx, func(s repository.Store) error {
		exists, err := s.Papers().Exists(ctx, paperID)
		if err != nil {
			return err
		}
		if !exists {
			return domain.NewNotFoundError("paper", paperID.String())
		}
		if _, err := s.Users().GetByID(ctx, reviewerID); err != nil {
			return err
		}
		return s.Papers().RemoveReviewer(ctx, paperID, reviewerID)
	})
}

// UpdateStatus moves a paper through the editorial transition graph. Moves
// outside the graph are rejected, including any move out of a terminal state.
// Non-empty editorComments overwrite the previous comments. PublishedAt is set
// on the first transition to PUBLISHED and never changes afterwards.
func (e *Engine) UpdateStatus(ctx context.Context, paperID uuid.UUID, newStatus domain.PaperStatus, editorComments string) (*domain.Paper, error) {
	if !domain.IsValidPaperStatus(newStatus) {
		return nil, domain.NewValidationError("status", "unknown paper status")
	}

	var (
		updated    *domain.Paper
		prevStatus domain.PaperStatus
	)
	err := e.store.Papers().Update(ctx, paperID, func(p *domain.Paper) error {
		if !domain.CanTransition(p.Status, newStatus) {
			return domain.NewInvalidTransitionError(p.Status, newStatus)
		}
		prevStatus = p.Status
		p.Status = newStatus
		if editorComments != "" {
			p.EditorComments = editorComments
		}
		if newStatus == domain.PaperStatusPublished && p.PublishedAt == nil {
			publishedAt := e.now().UTC()
			p.PublishedAt = &publishedAt
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	if prevStatus != newStatus {
		if e.metrics != nil {
			e.metrics.RecordStatusTransition(string(prevStatus), string(newStatus))
		}
		log := observability.WithPaperContext(e.logger, paperID.String(), string(newStatus))
		log.Info().
			Str("previous_status", string(prevStatus)).
			Msg("paper status changed")
	}

	return updated, nil
}

// SubmitRevisionInput carries the fields of a revision submission.
type SubmitRevisionInput struct {
	PaperID        uuid.UUID
	FilePath       string
	FileName       string
	ChangesSummary string
	AuthorResponse string
}

// SubmitRevision records a new manuscript version. Authors may revise from any
// editorial state. A snapshot of the outgoing version is archived before the
// version counter increments, then the paper moves to REVISED with the new
// file reference and a fresh plagiarism check of the new version.
func (e *Engine) SubmitRevision(ctx context.Context, input SubmitRevisionInput) (*domain.Revision, error) {
	if input.ChangesSummary == "" {
		return nil, domain.NewValidationError("changes_summary", "changes_summary is required")
	}

	var (
		revision   *domain.Revision
		prevStatus domain.PaperStatus
	)
	err := e.store.WithinTx(ctx, func(s repository.Store) error {
		return s.Papers().Update(ctx, input.PaperID, func(p *domain.Paper) error {
			prevStatus = p.Status

			var err error
			revision, err = s.Revisions().Create(ctx, &domain.Revision{
				ID:             uuid.New(),
				PaperID:        p.ID,
				VersionNumber:  p.Version,
				FilePath:       p.FilePath,
				FileName:       p.FileName,
				ChangesSummary: input.ChangesSummary,
				AuthorResponse: input.AuthorResponse,
			})
			if err != nil {
				return err
			}

			p.Version++
			p.FilePath = input.FilePath
			p.FileName = input.FileName
			p.Status = domain.PaperStatusRevised

			result, err := e.checker.Check(ctx, p)
			if err != nil {
				return err
			}
			p.PlagiarismScore = &result.Score
			p.PlagiarismReport = result.Report
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	if e.metrics != nil {
		e.metrics.RecordRevisionSubmitted()
		if prevStatus != domain.PaperStatusRevised {
			e.metrics.RecordStatusTransition(string(prevStatus), string(domain.PaperStatusRevised))
		}
	}
	log := observability.WithPaperContext(e.logger, input.PaperID.String(), string(domain.PaperStatusRevised))
	log.Info().
		Int("archived_version", revision.VersionNumber).
		Msg("revision submitted")

	return revision, nil
}

// DeletePaper withdraws a manuscript. Its reviews, revisions, and reviewer
// assignments are removed by cascade; user records are never touched.
func (e *Engine) DeletePaper(ctx context.Context, id uuid.UUID) error {
	if err := e.store.Papers().Delete(ctx, id); err != nil {
		return err
	}
	if e.metrics != nil {
		e.metrics.RecordPaperDeleted()
	}
	e.logger.Info().Str("paper_id", id.String()).Msg("paper deleted")
	return nil
}

// ListRevisions returns a paper's archived version snapshots, newest first.
func (e *Engine) ListRevisions(ctx context.Context, paperID uuid.UUID) ([]*domain.Revision, error) {
	return e.store.Revisions().ListByPaper(ctx, paperID)
}

// GetRevision retrieves the snapshot of a specific manuscript version.
func (e *Engine) GetRevision(ctx context.Context, paperID uuid.UUID, version int) (*domain.Revision, error) {
	return e.store.Revisions().GetByPaperAndVersion(ctx, paperID, version)
}

// RegisterUser creates an editorial actor.
func (e *Engine) RegisterUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	return e.store.Users().Create(ctx, user)
}

// GetUser retrieves a user by ID.
func (e *Engine) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return e.store.Users().GetByID(ctx, id)
}

// ListUsersByRole returns all users holding the given role.
func (e *Engine) ListUsersByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	return e.store.Users().ListByRole(ctx, role)
}

// DashboardStats aggregates workload counts for the editorial dashboard.
type DashboardStats struct {
	PapersByStatus  map[domain.PaperStatus]int64  `json:"papers_by_status"`
	ReviewsByStatus map[domain.ReviewStatus]int64 `json:"reviews_by_status"`
	UsersByRole     map[domain.Role]int64         `json:"users_by_role"`
}

// Stats returns current dashboard counts.
func (e *Engine) Stats(ctx context.Context) (*DashboardStats, error) {
	papers, err := e.store.Papers().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	reviews, err := e.store.Reviews().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	users, err := e.store.Users().CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	return &DashboardStats{
		PapersByStatus:  papers,
		ReviewsByStatus: reviews,
		UsersByRole:     users,
	}, nil
}
