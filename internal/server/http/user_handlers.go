package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openjournal/editorial-service/internal/domain"
)

// registerUserRequest is the JSON request body for creating a user.
type registerUserRequest struct {
	Email       string `json:"email" validate:"required,email"`
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Institution string `json:"institution,omitempty" validate:"max=255"`
	Department  string `json:"department,omitempty" validate:"max=255"`
	Bio         string `json:"bio,omitempty" validate:"max=5000"`
	Role        string `json:"role" validate:"required"`
}

// registerUser handles POST /users.
func (s *Server) registerUser(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	role := domain.Role(req.Role)
	if !domain.IsValidRole(role) {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	user, err := s.engine.RegisterUser(r.Context(), &domain.User{
		ID:          uuid.New(),
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Institution: req.Institution,
		Department:  req.Department,
		Bio:         req.Bio,
		Role:        role,
		Enabled:     true,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, domainUserToResponse(user))
}

// getUser handles GET /users/{userID}.
func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseUUID(w, chi.URLParam(r, "userID"), "user_id")
	if !ok {
		return
	}

	user, err := s.engine.GetUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domainUserToResponse(user))
}

// listUsers handles GET /users?role=REVIEWER.
func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	roleParam := r.URL.Query().Get("role")
	if roleParam == "" {
		writeError(w, http.StatusBadRequest, "role query parameter is required")
		return
	}

	users, err := s.engine.ListUsersByRole(r.Context(), domain.Role(roleParam))
	if err != nil {
		writeDomainError(w, err)
		return
	}

	responses := make([]userResponse, len(users))
	for i, u := range users {
		responses[i] = domainUserToResponse(u)
	}

	writeJSON(w, http.StatusOK, listUsersResponse{
		Users:      responses,
		TotalCount: len(responses),
	})
}

// dashboardStats handles GET /dashboard/stats.
func (s *Server) dashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, statsToResponse(stats))
}
