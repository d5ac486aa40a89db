package domain

import (
	"time"

	"github.com/google/uuid"
)

// Paper represents a manuscript under the editorial process.
type Paper struct {
	ID uuid.UUID `json:"id"`

	// Title is the manuscript title (required).
	Title string `json:"title"`

	// Abstract is the manuscript abstract (required).
	Abstract string `json:"abstract"`

	// Keywords is free-text, comma-separated author keywords.
	Keywords string `json:"keywords,omitempty"`

	// AuthorID references the owning author. Immutable after creation.
	AuthorID uuid.UUID `json:"author_id"`

	// Status is the current editorial state.
	Status PaperStatus `json:"status"`

	// FilePath is an opaque reference to the manuscript file; the service
	// never touches the binary itself.
	FilePath string `json:"file_path,omitempty"`

	// FileName is the original name of the uploaded file.
	FileName string `json:"file_name,omitempty"`

	// Version starts at 1 and increases by exactly one per submitted revision.
	Version int `json:"version"`

	// EditorComments holds the handling editor's latest decision comments.
	// Overwritten on each status update that supplies comments; no history.
	EditorComments string `json:"editor_comments,omitempty"`

	// PlagiarismScore is the similarity score in [0,100]; nil until the
	// check has run.
	PlagiarismScore *float64 `json:"plagiarism_score,omitempty"`

	// PlagiarismReport is the free-text report produced by the check.
	PlagiarismReport string `json:"plagiarism_report,omitempty"`

	// AssignedEditorID is the single handling editor, if assigned.
	AssignedEditorID *uuid.UUID `json:"assigned_editor_id,omitempty"`

	// AssignedReviewerIDs is the set of currently assigned reviewers.
	// No ordering, no duplicates, never contains the author.
	AssignedReviewerIDs []uuid.UUID `json:"assigned_reviewer_ids,omitempty"`

	// Timestamps
	SubmittedAt time.Time  `json:"submitted_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// HasReviewer reports whether the given user is in the assigned reviewer set.
func (p *Paper) HasReviewer(reviewerID uuid.UUID) bool {
	for _, id := range p.AssignedReviewerIDs {
		if id == reviewerID {
			return true
		}
	}
	return false
}

// IsActive returns true if the paper is still moving through the editorial
// process.
func (p *Paper) IsActive() bool {
	return !p.Status.IsTerminal()
}
