package httpserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/openjournal/editorial-service/internal/domain"
	"github.com/openjournal/editorial-service/internal/repository"
	"github.com/openjournal/editorial-service/internal/workflow"
)

// submitPaperRequest is the JSON request body for submitting a manuscript.
type submitPaperRequest struct {
	Title    string `json:"title" validate:"required,max=500"`
	Abstract string `json:"abstract" validate:"required,max=10000"`
	Keywords string `json:"keywords,omitempty" validate:"max=1000"`
	AuthorID string `json:"author_id" validate:"required,uuid"`
	FilePath string `json:"file_path,omitempty" validate:"max=1000"`
	FileName string `json:"file_name,omitempty" validate:"max=255"`
}

// updatePaperRequest is the JSON request body for replacing a paper's metadata.
type updatePaperRequest struct {
	Title    string `json:"title" validate:"required,max=500"`
	Abstract string `json:"abstract" validate:"required,max=10000"`
	Keywords string `json:"keywords,omitempty" validate:"max=1000"`
	FilePath string `json:"file_path,omitempty" validate:"max=1000"`
	FileName string `json:"file_name,omitempty" validate:"max=255"`
}

// updateStatusRequest is the JSON request body for an editorial decision.
type updateStatusRequest struct {
	Status         string `json:"status" validate:"required"`
	EditorComments string `json:"editor_comments,omitempty" validate:"max=10000"`
}

// assignEditorRequest is the JSON request body for assigning a handling editor.
type assignEditorRequest struct {
	EditorID string `json:"editor_id" validate:"required"`
}

// assignReviewerRequest is the JSON request body for assigning a reviewer.
type assignReviewerRequest struct {
	ReviewerID string `json:"reviewer_id" validate:"required"`
}

// submitRevisionRequest is the JSON request body for submitting a revision.
type submitRevisionRequest struct {
	FilePath       string `json:"file_path,omitempty" validate:"max=1000"`
	FileName       string `json:"file_name,omitempty" validate:"max=255"`
	ChangesSummary string `json:"changes_summary" validate:"required,max=10000"`
	AuthorResponse string `json:"author_response,omitempty" validate:"max=10000"`
}

// decodeAndValidate reads a bounded JSON body into dst and runs struct validation.
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON request body")
		return false
	}
	if err := s.validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return false
	}
	return true
}

// submitPaper handles POST /papers.
func (s *Server) submitPaper(w http.ResponseWriter, r *http.Request) {
	var req submitPaperRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	authorID, ok := parseUUID(w, req.AuthorID, "author_id")
	if !ok {
		return
	}

	paper, err := s.engine.SubmitPaper(r.Context(), workflow.SubmitPaperInput{
		Title:    strings.TrimSpace(req.Title),
		Abstract: strings.TrimSpace(req.Abstract),
		Keywords: req.Keywords,
		AuthorID: authorID,
		FilePath: req.FilePath,
		FileName: req.FileName,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, domainPaperToResponse(paper))
}

// listPapers handles GET /papers with optional filters.
func (s *Server) listPapers(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePaginationParams(r)

	filter := repository.PaperFilter{
		Search: r.URL.Query().Get("search"),
		Limit:  limit,
		Offset: offset,
	}

	if authorParam := r.URL.Query().Get("author_id"); authorParam != "" {
		authorID, ok := parseUUID(w, authorParam, "author_id")
		if !ok {
			return
		}
		filter.AuthorID = &authorID
	}
	if editorParam := r.URL.Query().Get("editor_id"); editorParam != "" {
		editorID, ok := parseUUID(w, editorParam, "editor_id")
		if !ok {
			return
		}
		filter.EditorID = &editorID
	}
	if reviewerParam := r.URL.Query().Get("reviewer_id"); reviewerParam != "" {
		reviewerID, ok := parseUUID(w, reviewerParam, "reviewer_id")
		if !ok {
			return
		}
		filter.ReviewerID = &reviewerID
	}
	if statusParam := r.URL.Query().Get("status"); statusParam != "" {
		status := domain.PaperStatus(statusParam)
		if !domain.IsValidPaperStatus(status) {
			writeError(w, http.StatusBadRequest, "unknown paper status")
			return
		}
		filter.Status = &status
	}
	if publishedParam := r.URL.Query().Get("published"); publishedParam != "" {
		published, err := strconv.ParseBool(publishedParam)
		if err != nil {
			writeError(w, http.StatusBadRequest, "published must be a boolean")
			return
		}
		filter.PublishedOnly = published
	}

	papers, totalCount, err := s.engine.ListPapers(r.Context(), filter)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	responses := make([]paperResponse, len(papers))
	for i, p := range papers {
		responses[i] = domainPaperToResponse(p)
	}

	writeJSON(w, http.StatusOK, listPapersResponse{
		Papers:        responses,
		NextPageToken: encodePageToken(offset, limit, int(totalCount)),
		TotalCount:    int(totalCount),
	})
}

// getPaper handles GET /papers/{paperID}.
func (s *Server) getPaper(w http.ResponseWriter, r *http.Request) {
	paperID, ok := parseUUID(w, chi.URLParam(r, "paperID"), "paper_id")
	if !ok {
		return
	}

	paper, err := s.engine.GetPaper(r.Context(), paperID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainPaperToResponse(paper))
}

// updatePaper handles PUT /papers/{paperID}.
func (s *Server) updatePaper(w http.ResponseWriter, r *http.Request) {
	paperID, ok := parseUUID(w, chi.URLParam(r, "paperID"), "paper_id")
	if !ok {
		return
	}

	var req updatePaperRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	paper, err := s.engine.UpdatePaper(r.Context(), workflow.UpdatePaperInput{
		PaperID:  paperID,
		Title:    strings.TrimSpace(req.Title),
		Abstract: strings.TrimSpace(req.Abstract),
		Keywords: req.Keywords,
		FilePath: req.FilePath,
		FileName: req.FileName,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainPaperToResponse(paper))
}

// deletePaper handles DELETE /papers/{paperID}.
func (s *Server) deletePaper(w http.ResponseWriter, r *http.Request) {
	paperID, ok := parseUUID(w, chi.URLParam(r, "paperID"), "paper_id")
	if !ok {
		return
	}

	if err := s.engine.DeletePaper(r.Context(), paperID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "paper deleted"})
}

// updatePaperStatus handles PUT /papers/{paperID}/status.
func (s *Server) updatePaperStatus(w http.ResponseWriter, r *http.Request) {
	paperID, ok := parseUUID(w, chi.URLParam(r, "paperID"), "paper_id")
	if !ok {
		return
	}

	var req updateStatusRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	paper, err := s.engine.UpdateStatus(r.Context(), paperID, domain.PaperStatus(req.Status), req.EditorComments)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainPaperToResponse(paper))
}

// assignEditor handles PUT /papers/{paperID}/editor.
func (s *Server) assignEditor(w http.ResponseWriter, r *http.Request) {
	paperID, ok := parseUUID(w, chi.URLParam(r, "paperID"), "paper_id")
	if !ok {
		return
	}

	var req assignEditorRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	editorID, ok := parseUUID(w, req.EditorID, "editor_id")
	if !ok {
		return
	}

	paper, err := s.engine.AssignEditor(r.Context(), paperID, editorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainPaperToResponse(paper))
}

// assignReviewer handles POST /papers/{paperID}/reviewers.
func (s *Server) assignReviewer(w http.ResponseWriter, r *http.Request) {
	paperID, ok := parseUUID(w, chi.URLParam(r, "paperID"), "paper_id")
	if !ok {
		return
	}

	var req assignReviewerRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}
	reviewerID, ok := parseUUID(w, req.ReviewerID, "reviewer_id")
	if !ok {
		return
	}

	paper, review, err := s.engine.AssignReviewer(r.Context(), paperID, reviewerID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, assignReviewerResponse{
		Paper:  domainPaperToResponse(paper),
		Review: domainReviewToResponse(review),
	})
}

// removeReviewer handles DELETE /papers/{paperID}/reviewers/{reviewerID}.
func (s *Server) removeReviewer(w http.ResponseWriter, r *http.Request) {
	paperID, ok := parseUUID(w, chi.URLParam(r, "paperID"), "paper_id")
	if !ok {
		return
	}
	reviewerID, ok := parseUUID(w, chi.URLParam(r, "reviewerID"), "reviewer_id")
	if !ok {
		return
	}

	if err := s.engine.RemoveReviewer(r.Context(), paperID, reviewerID); err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "reviewer removed"})
}

// listPaperReviews handles GET /papers/{paperID}/reviews, optionally filtered
// to a specific manuscript version.
func (s *Server) listPaperReviews(w http.ResponseWriter, r *http.Request) {
	paperID, ok := parseUUID(w, chi.URLParam(r, "paperID"), "paper_id")
	if !ok {
		return
	}

	var (
		reviews []*domain.Review
		err     error
	)
	if versionParam := r.URL.Query().Get("version"); versionParam != "" {
		version, convErr := strconv.Atoi(versionParam)
		if convErr != nil || version < 1 {
			writeError(w, http.StatusBadRequest, "version must be a positive integer")
			return
		}
		reviews, err = s.reviews.ListByPaperAndVersion(r.Context(), paperID, version)
	} else {
		reviews, err = s.reviews.ListByPaper(r.Context(), paperID)
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainReviewsToListResponse(reviews))
}

// submitRevision handles POST /papers/{paperID}/revisions.
func (s *Server) submitRevision(w http.ResponseWriter, r *http.Request) {
	paperID, ok := parseUUID(w, chi.URLParam(r, "paperID"), "paper_id")
	if !ok {
		return
	}

	var req submitRevisionRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	revision, err := s.engine.SubmitRevision(r.Context(), workflow.SubmitRevisionInput{
		PaperID:        paperID,
		FilePath:       req.FilePath,
		FileName:       req.FileName,
		ChangesSummary: req.ChangesSummary,
		AuthorResponse: req.AuthorResponse,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, domainRevisionToResponse(revision))
}

// listRevisions handles GET /papers/{paperID}/revisions.
func (s *Server) listRevisions(w http.ResponseWriter, r *http.Request) {
	paperID, ok := parseUUID(w, chi.URLParam(r, "paperID"), "paper_id")
	if !ok {
		return
	}

	revisions, err := s.engine.ListRevisions(r.Context(), paperID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	responses := make([]revisionResponse, len(revisions))
	for i, rev := range revisions {
		responses[i] = domainRevisionToResponse(rev)
	}

	writeJSON(w, http.StatusOK, listRevisionsResponse{
		Revisions:  responses,
		TotalCount: len(responses),
	})
}

// getRevision handles GET /papers/{paperID}/revisions/{version}.
func (s *Server) getRevision(w http.ResponseWriter, r *http.Request) {
	paperID, ok := parseUUID(w, chi.URLParam(r, "paperID"), "paper_id")
	if !ok {
		return
	}

	version, err := strconv.Atoi(chi.URLParam(r, "version"))
	if err != nil || version < 1 {
		writeError(w, http.StatusBadRequest, "version must be a positive integer")
		return
	}

	revision, err := s.engine.GetRevision(r.Context(), paperID, version)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainRevisionToResponse(revision))
}
