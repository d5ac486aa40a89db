package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openjournal/editorial-service/internal/domain"
)

// reviewPatchRequest is the JSON request body for review drafts and submissions.
// Absent fields leave the stored value unchanged.
type reviewPatchRequest struct {
	Comments             *string `json:"comments,omitempty"`
	ConfidentialComments *string `json:"confidential_comments,omitempty"`
	QualityScore         *int    `json:"quality_score,omitempty" validate:"omitempty,min=1,max=10"`
	OriginalityScore     *int    `json:"originality_score,omitempty" validate:"omitempty,min=1,max=10"`
	ClarityScore         *int    `json:"clarity_score,omitempty" validate:"omitempty,min=1,max=10"`
	SignificanceScore    *int    `json:"significance_score,omitempty" validate:"omitempty,min=1,max=10"`
	Recommendation       *string `json:"recommendation,omitempty"`
}

func (req *reviewPatchRequest) toPatch() domain.ReviewPatch {
	patch := domain.ReviewPatch{
		Comments:             req.Comments,
		ConfidentialComments: req.ConfidentialComments,
		QualityScore:         req.QualityScore,
		OriginalityScore:     req.OriginalityScore,
		ClarityScore:         req.ClarityScore,
		SignificanceScore:    req.SignificanceScore,
	}
	if req.Recommendation != nil {
		rec := domain.Recommendation(*req.Recommendation)
		patch.Recommendation = &rec
	}
	return patch
}

// getReview handles GET /reviews/{reviewID}.
func (s *Server) getReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := parseUUID(w, chi.URLParam(r, "reviewID"), "review_id")
	if !ok {
		return
	}

	review, err := s.reviews.Get(r.Context(), reviewID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainReviewToResponse(review))
}

// startReview handles POST /reviews/{reviewID}/start.
func (s *Server) startReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := parseUUID(w, chi.URLParam(r, "reviewID"), "review_id")
	if !ok {
		return
	}

	review, err := s.reviews.Start(r.Context(), reviewID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainReviewToResponse(review))
}

// saveReview handles PUT /reviews/{reviewID}, saving a draft without completing.
func (s *Server) saveReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := parseUUID(w, chi.URLParam(r, "reviewID"), "review_id")
	if !ok {
		return
	}

	var req reviewPatchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	review, err := s.reviews.Save(r.Context(), reviewID, req.toPatch())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainReviewToResponse(review))
}

// submitReview handles POST /reviews/{reviewID}/submit, completing the review.
func (s *Server) submitReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := parseUUID(w, chi.URLParam(r, "reviewID"), "review_id")
	if !ok {
		return
	}

	var req reviewPatchRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	review, err := s.reviews.Submit(r.Context(), reviewID, req.toPatch())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainReviewToResponse(review))
}

// deleteReview handles DELETE /reviews/{reviewID}.
func (s *Server) deleteReview(w http.ResponseWriter, r *http.Request) {
	reviewID, ok := parseUUID(w, chi.URLParam(r, "reviewID"), "review_id")
	if !ok {
		return
	}

	if err := s.reviews.Delete(r.Context(), reviewID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "review deleted"})
}

// listReviewerReviews handles GET /reviewers/{reviewerID}/reviews, optionally
// filtered by review status.
func (s *Server) listReviewerReviews(w http.ResponseWriter, r *http.Request) {
	reviewerID, ok := parseUUID(w, chi.URLParam(r, "reviewerID"), "reviewer_id")
	if !ok {
		return
	}

	var status *domain.ReviewStatus
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		st := domain.ReviewStatus(statusParam)
		status = &st
	}

	reviews, err := s.reviews.ListByReviewer(r.Context(), reviewerID, status)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainReviewsToListResponse(reviews))
}
