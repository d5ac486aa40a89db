// Package memory provides an in-memory repository.Store. It backs handler and
// workflow tests and the local demo mode, and mirrors the behavior documented
// on the repository interfaces: copies in and out, no reviewer duplicates, no
// review deduplication, cascading paper deletes.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/openjournal/editorial-service/internal/domain"
	"github.com/openjournal/editorial-service/internal/repository"
)

// Store is an in-memory implementation of repository.Store.
type Store struct {
	mu sync.Mutex

	papers    map[uuid.UUID]*domain.Paper
	reviewers map[uuid.UUID][]uuid.UUID
	reviews   map[uuid.UUID]*domain.Review
	revisions map[uuid.UUID]*domain.Revision
	users     map[uuid.UUID]*domain.User
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		papers:    make(map[uuid.UUID]*domain.Paper),
		reviewers: make(map[uuid.UUID][]uuid.UUID),
		reviews:   make(map[uuid.UUID]*domain.Review),
		revisions: make(map[uuid.UUID]*domain.Revision),
		users:     make(map[uuid.UUID]*domain.User),
	}
}

var _ repository.Store = (*Store)(nil)

func (s *Store) Papers() repository.PaperRepository       { return &paperRepo{s} }
func (s *Store) Reviews() repository.ReviewRepository     { return &reviewRepo{s} }
func (s *Store) Revisions() repository.RevisionRepository { return &revisionRepo{s} }
func (s *Store) Users() repository.UserRepository         { return &userRepo{s} }

// WithinTx runs fn against the same store. The in-memory store offers no
// rollback; callers relying on transactional atomicity need the Postgres store.
func (s *Store) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	return fn(s)
}

// SeedUser inserts a generated, enabled user with the given role.
func (s *Store) SeedUser(role domain.Role) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	u := &domain.User{
		ID:        uuid.New(),
		Email:     uuid.NewString() + "@example.edu",
		FirstName: "Test",
		LastName:  string(role),
		Role:      role,
		Enabled:   true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.users[u.ID] = u
	return u
}

// SetUserEnabled flips a seeded user's enabled flag.
func (s *Store) SetUserEnabled(id uuid.UUID, enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Enabled = enabled
	}
}

// SetUserRole changes a seeded user's role.
func (s *Store) SetUserRole(id uuid.UUID, role domain.Role) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Role = role
	}
}

func copyPaper(p *domain.Paper) *domain.Paper {
	cp := *p
	cp.AssignedReviewerIDs = append([]uuid.UUID(nil), p.AssignedReviewerIDs...)
	return &cp
}

type paperRepo struct{ s *Store }

func (r *paperRepo) Create(ctx context.Context, paper *domain.Paper) (*domain.Paper, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if paper.Title == "" || paper.Abstract == "" || paper.AuthorID == uuid.Nil {
		return nil, domain.NewValidationError("paper", "missing required fields")
	}
	if _, ok := r.s.users[paper.AuthorID]; !ok {
		return nil, domain.NewNotFoundError("user", paper.AuthorID.String())
	}
	now := time.Now().UTC()
	cp := copyPaper(paper)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.s.papers[cp.ID] = cp
	return copyPaper(cp), nil
}

func (r *paperRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Paper, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.getLocked(id)
}

func (r *paperRepo) getLocked(id uuid.UUID) (*domain.Paper, error) {
	p, ok := r.s.papers[id]
	if !ok {
		return nil, domain.NewNotFoundError("paper", id.String())
	}
	cp := copyPaper(p)
	cp.AssignedReviewerIDs = append([]uuid.UUID(nil), r.s.reviewers[id]...)
	return cp, nil
}

func (r *paperRepo) Update(ctx context.Context, id uuid.UUID, fn func(*domain.Paper) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp, err := r.getLocked(id)
	if err != nil {
		return err
	}
	if err := fn(cp); err != nil {
		return err
	}
	cp.UpdatedAt = time.Now().UTC()
	r.s.papers[id] = copyPaper(cp)
	return nil
}

func (r *paperRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.papers[id]; !ok {
		return domain.NewNotFoundError("paper", id.String())
	}
	delete(r.s.papers, id)
	delete(r.s.reviewers, id)
	for rid, rev := range r.s.reviews {
		if rev.PaperID == id {
			delete(r.s.reviews, rid)
		}
	}
	for vid, rev := range r.s.revisions {
		if rev.PaperID == id {
			delete(r.s.revisions, vid)
		}
	}
	return nil
}

func (r *paperRepo) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	_, ok := r.s.papers[id]
	return ok, nil
}

func (r *paperRepo) List(ctx context.Context, filter repository.PaperFilter) ([]*domain.Paper, int64, error) {
	if err := filter.Validate(); err != nil {
		return nil, 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Paper
	for id, p := range r.s.papers {
		if filter.AuthorID != nil && p.AuthorID != *filter.AuthorID {
			continue
		}
		if filter.Status != nil && p.Status != *filter.Status {
			continue
		}
		if filter.EditorID != nil && (p.AssignedEditorID == nil || *p.AssignedEditorID != *filter.EditorID) {
			continue
		}
		if filter.ReviewerID != nil && !containsID(r.s.reviewers[id], *filter.ReviewerID) {
			continue
		}
		if filter.PublishedOnly && p.Status != domain.PaperStatusPublished {
			continue
		}
		if filter.Search != "" && !matchesSearch(p, filter.Search) {
			continue
		}
		cp, _ := r.getLocked(id)
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	total := int64(len(out))
	if filter.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[filter.Offset:]
	if filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, total, nil
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func matchesSearch(p *domain.Paper, search string) bool {
	needle := strings.ToLower(search)
	return strings.Contains(strings.ToLower(p.Title), needle) ||
		strings.Contains(strings.ToLower(p.Abstract), needle) ||
		strings.Contains(strings.ToLower(p.Keywords), needle)
}

func (r *paperRepo) CountByStatus(ctx context.Context) (map[domain.PaperStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[domain.PaperStatus]int64)
	for _, p := range r.s.papers {
		counts[p.Status]++
	}
	return counts, nil
}

func (r *paperRepo) AddReviewer(ctx context.Context, paperID, reviewerID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.papers[paperID]; !ok {
		return domain.NewNotFoundError("paper", paperID.String())
	}
	if containsID(r.s.reviewers[paperID], reviewerID) {
		return nil
	}
	r.s.reviewers[paperID] = append(r.s.reviewers[paperID], reviewerID)
	return nil
}

func (r *paperRepo) RemoveReviewer(ctx context.Context, paperID, reviewerID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := r.s.reviewers[paperID]
	for i, id := range ids {
		if id == reviewerID {
			r.s.reviewers[paperID] = append(ids[:i:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (r *paperRepo) ListReviewers(ctx context.Context, paperID uuid.UUID) ([]uuid.UUID, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]uuid.UUID(nil), r.s.reviewers[paperID]...), nil
}

func copyReview(rv *domain.Review) *domain.Review {
	cp := *rv
	return &cp
}

type reviewRepo struct{ s *Store }

func (r *reviewRepo) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.papers[review.PaperID]; !ok {
		return nil, domain.NewNotFoundError("paper", review.PaperID.String())
	}
	now := time.Now().UTC()
	cp := copyReview(review)
	cp.CreatedAt = now
	cp.UpdatedAt = now
	r.s.reviews[cp.ID] = cp
	return copyReview(cp), nil
}

func (r *reviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return nil, domain.NewNotFoundError("review", id.String())
	}
	return copyReview(rv), nil
}

func (r *reviewRepo) Update(ctx context.Context, id uuid.UUID, fn func(*domain.Review) error) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	rv, ok := r.s.reviews[id]
	if !ok {
		return domain.NewNotFoundError("review", id.String())
	}
	cp := copyReview(rv)
	if err := fn(cp); err != nil {
		return err
	}
	cp.UpdatedAt = time.Now().UTC()
	r.s.reviews[id] = copyReview(cp)
	return nil
}

func (r *reviewRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.reviews[id]; !ok {
		return domain.NewNotFoundError("review", id.String())
	}
	delete(r.s.reviews, id)
	return nil
}

func (r *reviewRepo) list(match func(*domain.Review) bool) []*domain.Review {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Review
	for _, rv := range r.s.reviews {
		if match(rv) {
			out = append(out, copyReview(rv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *reviewRepo) ListByPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Review, error) {
	return r.list(func(rv *domain.Review) bool { return rv.PaperID == paperID }), nil
}

func (r *reviewRepo) ListByPaperAndVersion(ctx context.Context, paperID uuid.UUID, version int) ([]*domain.Review, error) {
	return r.list(func(rv *domain.Review) bool {
		return rv.PaperID == paperID && rv.PaperVersion == version
	}), nil
}

func (r *reviewRepo) ListByReviewer(ctx context.Context, reviewerID uuid.UUID) ([]*domain.Review, error) {
	return r.list(func(rv *domain.Review) bool { return rv.ReviewerID == reviewerID }), nil
}

func (r *reviewRepo) ListByReviewerAndStatus(ctx context.Context, reviewerID uuid.UUID, status domain.ReviewStatus) ([]*domain.Review, error) {
	if !domain.IsValidReviewStatus(status) {
		return nil, domain.NewValidationError("status", "unknown review status")
	}
	return r.list(func(rv *domain.Review) bool {
		return rv.ReviewerID == reviewerID && rv.Status == status
	}), nil
}

func (r *reviewRepo) CountByStatus(ctx context.Context) (map[domain.ReviewStatus]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[domain.ReviewStatus]int64)
	for _, rv := range r.s.reviews {
		counts[rv.Status]++
	}
	return counts, nil
}

type revisionRepo struct{ s *Store }

func (r *revisionRepo) Create(ctx context.Context, revision *domain.Revision) (*domain.Revision, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.revisions {
		if existing.PaperID == revision.PaperID && existing.VersionNumber == revision.VersionNumber {
			return nil, domain.NewAlreadyExistsError("revision", revision.PaperID.String())
		}
	}
	cp := *revision
	cp.CreatedAt = time.Now().UTC()
	r.s.revisions[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *revisionRepo) ListByPaper(ctx context.Context, paperID uuid.UUID) ([]*domain.Revision, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Revision
	for _, rev := range r.s.revisions {
		if rev.PaperID == paperID {
			cp := *rev
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VersionNumber > out[j].VersionNumber })
	return out, nil
}

func (r *revisionRepo) GetByPaperAndVersion(ctx context.Context, paperID uuid.UUID, version int) (*domain.Revision, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rev := range r.s.revisions {
		if rev.PaperID == paperID && rev.VersionNumber == version {
			cp := *rev
			return &cp, nil
		}
	}
	return nil, domain.NewNotFoundError("revision", paperID.String())
}

type userRepo struct{ s *Store }

func (r *userRepo) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == user.Email {
			return nil, domain.NewAlreadyExistsError("user", user.Email)
		}
	}
	if !domain.IsValidRole(user.Role) {
		return nil, domain.NewValidationError("role", "unknown role")
	}
	cp := *user
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	r.s.users[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (r *userRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, domain.NewNotFoundError("user", id.String())
	}
	cp := *u
	return &cp, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.NewNotFoundError("user", email)
}

func (r *userRepo) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	if !domain.IsValidRole(role) {
		return nil, domain.NewValidationError("role", "unknown role")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.User
	for _, u := range r.s.users {
		if u.Role == role {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastName < out[j].LastName })
	return out, nil
}

func (r *userRepo) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	counts := make(map[domain.Role]int64)
	for _, u := range r.s.users {
		counts[u.Role]++
	}
	return counts, nil
}
