package domain

import (
	"time"

	"github.com/google/uuid"
)

// Criterion score bounds.
const (
	MinCriterionScore = 1
	MaxCriterionScore = 10
)

// Review represents one reviewer's evaluation of one manuscript version.
type Review struct {
	ID uuid.UUID `json:"id"`

	// PaperID references the reviewed manuscript.
	PaperID uuid.UUID `json:"paper_id"`

	// ReviewerID references the assigned reviewer.
	ReviewerID uuid.UUID `json:"reviewer_id"`

	// Status is the review lifecycle state.
	Status ReviewStatus `json:"status"`

	// Comments are shared with the author.
	Comments string `json:"comments,omitempty"`

	// ConfidentialComments are visible to editors and admins only; that
	// visibility is enforced at the transport boundary, not here.
	ConfidentialComments string `json:"confidential_comments,omitempty"`

	// Criterion scores, each in [1,10], individually optional.
	QualityScore      *int `json:"quality_score,omitempty"`
	OriginalityScore  *int `json:"originality_score,omitempty"`
	ClarityScore      *int `json:"clarity_score,omitempty"`
	SignificanceScore *int `json:"significance_score,omitempty"`

	// Recommendation is the reviewer's categorical verdict.
	Recommendation *Recommendation `json:"recommendation,omitempty"`

	// PaperVersion pins the review to the Paper.Version at assignment time.
	// Never changes after creation.
	PaperVersion int `json:"paper_version"`

	// DueDate is the assignment time plus the configured review period.
	DueDate time.Time `json:"due_date"`

	// CompletedAt is set when the review is submitted.
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AverageScore returns the mean of the non-nil criterion scores, or nil if
// none are set. Computed on read, never persisted.
func (r *Review) AverageScore() *float64 {
	total := 0
	count := 0
	for _, s := range []*int{r.QualityScore, r.OriginalityScore, r.ClarityScore, r.SignificanceScore} {
		if s != nil {
			total += *s
			count++
		}
	}
	if count == 0 {
		return nil
	}
	avg := float64(total) / float64(count)
	return &avg
}

// HasScores reports whether any criterion score is set.
func (r *Review) HasScores() bool {
	return r.QualityScore != nil || r.OriginalityScore != nil ||
		r.ClarityScore != nil || r.SignificanceScore != nil
}

// ReviewPatch is a sparse update of review content. Every field is
// independently optional: nil means "leave unchanged", never "clear".
type ReviewPatch struct {
	Comments             *string         `json:"comments,omitempty"`
	ConfidentialComments *string         `json:"confidential_comments,omitempty"`
	QualityScore         *int            `json:"quality_score,omitempty"`
	OriginalityScore     *int            `json:"originality_score,omitempty"`
	ClarityScore         *int            `json:"clarity_score,omitempty"`
	SignificanceScore    *int            `json:"significance_score,omitempty"`
	Recommendation       *Recommendation `json:"recommendation,omitempty"`
}

// Validate checks that every present field carries an acceptable value.
func (p *ReviewPatch) Validate() error {
	scores := map[string]*int{
		"quality_score":      p.QualityScore,
		"originality_score":  p.OriginalityScore,
		"clarity_score":      p.ClarityScore,
		"significance_score": p.SignificanceScore,
	}
	for field, s := range scores {
		if s != nil && (*s < MinCriterionScore || *s > MaxCriterionScore) {
			return NewValidationError(field, "score must be between 1 and 10")
		}
	}
	if p.Recommendation != nil && !IsValidRecommendation(*p.Recommendation) {
		return NewValidationError("recommendation", "unknown recommendation value")
	}
	return nil
}

// Apply copies every present field of the patch onto the review. Absent
// fields are left untouched.
func (p *ReviewPatch) Apply(r *Review) {
	if p.Comments != nil {
		r.Comments = *p.Comments
	}
	if p.ConfidentialComments != nil {
		r.ConfidentialComments = *p.ConfidentialComments
	}
	if p.QualityScore != nil {
		r.QualityScore = p.QualityScore
	}
	if p.OriginalityScore != nil {
		r.OriginalityScore = p.OriginalityScore
	}
	if p.ClarityScore != nil {
		r.ClarityScore = p.ClarityScore
	}
	if p.SignificanceScore != nil {
		r.SignificanceScore = p.SignificanceScore
	}
	if p.Recommendation != nil {
		r.Recommendation = p.Recommendation
	}
}
