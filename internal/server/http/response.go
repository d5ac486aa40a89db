package httpserver

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/openjournal/editorial-service/internal/domain"
	"github.com/openjournal/editorial-service/internal/workflow"
)

// Pagination constants.
const (
	defaultPageSize    = 50
	maxPageSize        = 100
	maxRequestBodySize = 1 << 20 // 1 MB limit for request bodies
)

type paperResponse struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Abstract            string     `json:"abstract"`
	Keywords            string     `json:"keywords,omitempty"`
	AuthorID            string     `json:"author_id"`
	Status              string     `json:"status"`
	FilePath            string     `json:"file_path,omitempty"`
	FileName            string     `json:"file_name,omitempty"`
	Version             int        `json:"version"`
	EditorComments      string     `json:"editor_comments,omitempty"`
	PlagiarismScore     *float64   `json:"plagiarism_score,omitempty"`
	PlagiarismReport    string     `json:"plagiarism_report,omitempty"`
	AssignedEditorID    string     `json:"assigned_editor_id,omitempty"`
	AssignedReviewerIDs []string   `json:"assigned_reviewer_ids"`
	SubmittedAt         time.Time  `json:"submitted_at"`
	PublishedAt         *time.Time `json:"published_at,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

type listPapersResponse struct {
	Papers        []paperResponse `json:"papers"`
	NextPageToken string          `json:"next_page_token,omitempty"`
	TotalCount    int             `json:"total_count"`
}

type reviewResponse struct {
	ID                   string     `json:"id"`
	PaperID              string     `json:"paper_id"`
	ReviewerID           string     `json:"reviewer_id"`
	Status               string     `json:"status"`
	Comments             string     `json:"comments,omitempty"`
	ConfidentialComments string     `json:"confidential_comments,omitempty"`
	QualityScore         *int       `json:"quality_score,omitempty"`
	OriginalityScore     *int       `json:"originality_score,omitempty"`
	ClarityScore         *int       `json:"clarity_score,omitempty"`
	SignificanceScore    *int       `json:"significance_score,omitempty"`
	AverageScore         *float64   `json:"average_score,omitempty"`
	Recommendation       string     `json:"recommendation,omitempty"`
	PaperVersion         int        `json:"paper_version"`
	DueDate              time.Time  `json:"due_date"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}

// assignReviewerResponse carries the paper after the forced move to
// UNDER_REVIEW together with the review opened by the assignment.
type assignReviewerResponse struct {
	Paper  paperResponse  `json:"paper"`
	Review reviewResponse `json:"review"`
}

type listReviewsResponse struct {
	Reviews    []reviewResponse `json:"reviews"`
	TotalCount int              `json:"total_count"`
}

type revisionResponse struct {
	ID             string    `json:"id"`
	PaperID        string    `json:"paper_id"`
	VersionNumber  int       `json:"version_number"`
	FilePath       string    `json:"file_path,omitempty"`
	FileName       string    `json:"file_name,omitempty"`
	ChangesSummary string    `json:"changes_summary"`
	AuthorResponse string    `json:"author_response,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type listRevisionsResponse struct {
	Revisions  []revisionResponse `json:"revisions"`
	TotalCount int                `json:"total_count"`
}

type userResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	FullName    string    `json:"full_name"`
	Institution string    `json:"institution,omitempty"`
	Department  string    `json:"department,omitempty"`
	Bio         string    `json:"bio,omitempty"`
	Role        string    `json:"role"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

type listUsersResponse struct {
	Users      []userResponse `json:"users"`
	TotalCount int            `json:"total_count"`
}

// Converter functions

func domainPaperToResponse(p *domain.Paper) paperResponse {
	reviewers := make([]string, len(p.AssignedReviewerIDs))
	for i, id := range p.AssignedReviewerIDs {
		reviewers[i] = id.String()
	}
	resp := paperResponse{
		ID:                  p.ID.String(),
		Title:               p.Title,
		Abstract:            p.Abstract,
		Keywords:            p.Keywords,
		AuthorID:            p.AuthorID.String(),
		Status:              string(p.Status),
		FilePath:            p.FilePath,
		FileName:            p.FileName,
		Version:             p.Version,
		EditorComments:      p.EditorComments,
		PlagiarismScore:     p.PlagiarismScore,
		PlagiarismReport:    p.PlagiarismReport,
		AssignedReviewerIDs: reviewers,
		SubmittedAt:         p.SubmittedAt,
		PublishedAt:         p.PublishedAt,
		CreatedAt:           p.CreatedAt,
		UpdatedAt:           p.UpdatedAt,
	}
	if p.AssignedEditorID != nil {
		resp.AssignedEditorID = p.AssignedEditorID.String()
	}
	return resp
}

func domainReviewToResponse(r *domain.Review) reviewResponse {
	resp := reviewResponse{
		ID:                   r.ID.String(),
		PaperID:              r.PaperID.String(),
		ReviewerID:           r.ReviewerID.String(),
		Status:               string(r.Status),
		Comments:             r.Comments,
		ConfidentialComments: r.ConfidentialComments,
		QualityScore:         r.QualityScore,
		OriginalityScore:     r.OriginalityScore,
		ClarityScore:         r.ClarityScore,
		SignificanceScore:    r.SignificanceScore,
		AverageScore:         r.AverageScore(),
		PaperVersion:         r.PaperVersion,
		DueDate:              r.DueDate,
		CompletedAt:          r.CompletedAt,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
	if r.Recommendation != nil {
		resp.Recommendation = string(*r.Recommendation)
	}
	return resp
}

func domainReviewsToListResponse(reviews []*domain.Review) listReviewsResponse {
	out := make([]reviewResponse, len(reviews))
	for i, r := range reviews {
		out[i] = domainReviewToResponse(r)
	}
	return listReviewsResponse{Reviews: out, TotalCount: len(out)}
}

func domainRevisionToResponse(r *domain.Revision) revisionResponse {
	return revisionResponse{
		ID:             r.ID.String(),
		PaperID:        r.PaperID.String(),
		VersionNumber:  r.VersionNumber,
		FilePath:       r.FilePath,
		FileName:       r.FileName,
		ChangesSummary: r.ChangesSummary,
		AuthorResponse: r.AuthorResponse,
		CreatedAt:      r.CreatedAt,
	}
}

func domainUserToResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID.String(),
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		FullName:    u.FullName(),
		Institution: u.Institution,
		Department:  u.Department,
		Bio:         u.Bio,
		Role:        string(u.Role),
		Enabled:     u.Enabled,
		CreatedAt:   u.CreatedAt,
	}
}

func statsToResponse(s *workflow.DashboardStats) map[string]interface{} {
	return map[string]interface{}{
		"papers_by_status":  s.PapersByStatus,
		"reviews_by_status": s.ReviewsByStatus,
		"users_by_role":     s.UsersByRole,
	}
}

// writeDomainError maps domain errors to appropriate HTTP status codes and
// writes a JSON error response. Internal error details are not leaked to clients.
func writeDomainError(w http.ResponseWriter, err error) {
	if err == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		var ve *domain.ValidationError
		if errors.As(err, &ve) {
			writeError(w, http.StatusBadRequest, ve.Error())
		} else {
			writeError(w, http.StatusBadRequest, "invalid input")
		}
	case errors.Is(err, domain.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		writeError(w, http.StatusConflict, "resource already exists")
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// parseUUID parses a UUID from a string, writing a 400 error response if invalid.
// The parse error details are not included to avoid echoing potentially malicious input.
func parseUUID(w http.ResponseWriter, s, fieldName string) (uuid.UUID, bool) {
	id, err := uuid.Parse(s)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("%s must be a valid UUID", fieldName))
		return uuid.Nil, false
	}
	return id, true
}

// parsePaginationParams extracts page_size and page_token from query parameters.
// It applies default and maximum bounds to the page size.
func parsePaginationParams(r *http.Request) (limit, offset int) {
	limit = defaultPageSize
	if pageSizeStr := r.URL.Query().Get("page_size"); pageSizeStr != "" {
		if parsed, err := strconv.Atoi(pageSizeStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if pageToken := r.URL.Query().Get("page_token"); pageToken != "" {
		decoded, err := base64.StdEncoding.DecodeString(pageToken)
		if err == nil {
			if parsed, parseErr := strconv.Atoi(string(decoded)); parseErr == nil && parsed > 0 {
				offset = parsed
			}
		}
	}

	return limit, offset
}

// encodePageToken encodes the next offset as a base64 page token.
// Returns an empty string if there are no more results.
func encodePageToken(offset, limit, totalCount int) string {
	nextOffset := offset + limit
	if nextOffset < totalCount {
		return base64.StdEncoding.EncodeToString([]byte(strconv.Itoa(nextOffset)))
	}
	return ""
}
