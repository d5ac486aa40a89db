package domain

import (
	"time"

	"github.com/google/uuid"
)

// Revision is an immutable historical snapshot of a manuscript version.
// It is created exactly once per revision submission, immediately before the
// paper's version counter is incremented, so VersionNumber always names a
// version that genuinely existed.
type Revision struct {
	ID uuid.UUID `json:"id"`

	// PaperID references the manuscript this snapshot belongs to.
	PaperID uuid.UUID `json:"paper_id"`

	// VersionNumber is the version being archived, i.e. the paper's version
	// before the bump. Unique per paper.
	VersionNumber int `json:"version_number"`

	// FilePath and FileName reference the manuscript file at that version.
	FilePath string `json:"file_path,omitempty"`
	FileName string `json:"file_name,omitempty"`

	// ChangesSummary describes what changed in the new version.
	ChangesSummary string `json:"changes_summary"`

	// AuthorResponse is the author's reply to the prior round of reviews.
	AuthorResponse string `json:"author_response,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}
