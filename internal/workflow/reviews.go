package workflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/openjournal/editorial-service/internal/domain"
	"github.com/openjournal/editorial-service/internal/observability"
	"github.com/openjournal/editorial-service/internal/repository"
)

// ReviewManager drives the lifecycle of individual peer reviews.
type ReviewManager struct {
	store   repository.Store
	metrics *observability.Metrics
	logger  zerolog.Logger

	now func() time.Time
}

// NewReviewManager creates a review manager. metrics may be nil.
func NewReviewManager(store repository.Store, metrics *observability.Metrics, logger zerolog.Logger) *ReviewManager {
	return &ReviewManager{
		store:   store,
		metrics: metrics,
		logger:  logger.With().Str("component", "reviews").Logger(),
		now:     time.Now,
	}
}

// Get retrieves a review by ID.
func (m *ReviewManager) Get(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	return m.store.Reviews().GetByID(ctx, id)
}

// ListByPaper returns all reviews for a paper across every version.
func (m *ReviewManager) ListByPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Review, error) {
	return m.store.Reviews().ListByPaper(ctx, paperID)
}

// ListByPaperAndVersion returns reviews pinned to a specific manuscript version.
func (m *ReviewManager) ListByPaperAndVersion(ctx context.Context, paperID uuid.UUID, version int) ([]*domain.Review, error) {
	return m.store.Reviews().ListByPaperAndVersion(ctx, paperID, version)
}

// ListByReviewer returns a reviewer's assignments, optionally filtered by state.
func (m *ReviewManager) ListByReviewer(ctx context.Context, reviewerID uuid.UUID, status *domain.ReviewStatus) ([]*domain.Review, error) {
	if status != nil {
		return m.store.Reviews().ListByReviewerAndStatus(ctx, reviewerID, *status)
	}
	return m.store.Reviews().ListByReviewer(ctx, reviewerID)
}

// Start moves a pending review to IN_PROGRESS. Starting a review that is
// already in progress is a no-op; a completed review cannot be restarted.
func (m *ReviewManager) Start(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	var started *domain.Review
	err := m.store.Reviews().Update(ctx, id, func(r *domain.Review) error {
		if r.Status == domain.ReviewStatusCompleted {
			return domain.NewValidationError("status", "completed review cannot be restarted")
		}
		r.Status = domain.ReviewStatusInProgress
		started = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

// Save applies a sparse patch to a review's content. It never changes the
// review's status: patching a completed review edits the record in place and
// leaves it COMPLETED with its original completion time.
func (m *ReviewManager) Save(ctx context.Context, id uuid.UUID, patch domain.ReviewPatch) (*domain.Review, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var saved *domain.Review
	err := m.store.Reviews().Update(ctx, id, func(r *domain.Review) error {
		patch.Apply(r)
		saved = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved, nil
}

// Submit applies the final patch and completes the review. A review can only
// be completed once. Completing without any criterion scores is allowed but
// logged, since the editor's decision will have no numeric signal from it.
func (m *ReviewManager) Submit(ctx context.Context, id uuid.UUID, patch domain.ReviewPatch) (*domain.Review, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	now := m.now().UTC()
	var submitted *domain.Review
	err := m.store.Reviews().Update(ctx, id, func(r *domain.Review) error {
		if r.Status == domain.ReviewStatusCompleted {
			return domain.NewValidationError("status", "review already completed")
		}
		patch.Apply(r)
		r.Status = domain.ReviewStatusCompleted
		r.CompletedAt = &now
		submitted = r
		return nil
	})
	if err != nil {
		return nil, err
	}

	recommendation := "NONE"
	if submitted.Recommendation != nil {
		recommendation = string(*submitted.Recommendation)
	}
	turnaround := now.Sub(submitted.CreatedAt).Hours()

	if m.metrics != nil {
		m.metrics.RecordReviewCompleted(recommendation, turnaround)
	}

	log := observability.WithReviewContext(m.logger, submitted.ID.String(), submitted.ReviewerID.String())
	if !submitted.HasScores() {
		log.Warn().Msg("review completed without criterion scores")
	}
	log.Info().
		Str("recommendation", recommendation).
		Float64("turnaround_hours", turnaround).
		Msg("review completed")

	return submitted, nil
}

// Delete removes a review record. The reviewer's assignment on the paper is
// not affected.
func (m *ReviewManager) Delete(ctx context.Context, id uuid.UUID) error {
	return m.store.Reviews().Delete(ctx, id)
}
