// Package domain provides domain models and business logic for the editorial workflow service.
package domain

// PaperStatus represents the lifecycle states of a manuscript.
// These values must match the database enum paper_status.
type PaperStatus string

const (
	PaperStatusSubmitted        PaperStatus = "SUBMITTED"
	PaperStatusUnderReview      PaperStatus = "UNDER_REVIEW"
	PaperStatusRevisionRequired PaperStatus = "REVISION_REQUIRED"
	PaperStatusRevised          PaperStatus = "REVISED"
	PaperStatusAccepted         PaperStatus = "ACCEPTED"
	PaperStatusRejected         PaperStatus = "REJECTED"
	PaperStatusPublished        PaperStatus = "PUBLISHED"
	PaperStatusArchived         PaperStatus = "ARCHIVED"
)

// IsTerminal returns true if the status represents a final state that will not change.
func (s PaperStatus) IsTerminal() bool {
	switch s {
	case PaperStatusRejected, PaperStatusArchived:
		return true
	default:
		return false
	}
}

// IsValidPaperStatus reports whether s is a known paper status value.
func IsValidPaperStatus(s PaperStatus) bool {
	switch s {
	case PaperStatusSubmitted, PaperStatusUnderReview, PaperStatusRevisionRequired,
		PaperStatusRevised, PaperStatusAccepted, PaperStatusRejected,
		PaperStatusPublished, PaperStatusArchived:
		return true
	default:
		return false
	}
}

// paperStatusTransitions defines the allowed editorial status transitions.
// This is a package-level variable to avoid re-allocating on every call.
var paperStatusTransitions = map[PaperStatus][]PaperStatus{
	PaperStatusSubmitted: {
		PaperStatusUnderReview,
	},
	PaperStatusUnderReview: {
		PaperStatusRevisionRequired,
		PaperStatusAccepted,
		PaperStatusRejected,
	},
	PaperStatusRevisionRequired: {
		PaperStatusRevised,
	},
	PaperStatusRevised: {
		PaperStatusUnderReview,
	},
	PaperStatusAccepted: {
		PaperStatusPublished,
	},
	PaperStatusPublished: {
		PaperStatusArchived,
	},
}

// CanTransition reports whether an editorial status change from one state to
// another is allowed. Re-asserting the current status is permitted and is not
// considered a move in the graph. Terminal states allow no further moves.
func CanTransition(from, to PaperStatus) bool {
	if from == to {
		return true
	}
	if from.IsTerminal() {
		return false
	}
	for _, s := range paperStatusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the set of statuses reachable from the given state.
func AllowedTransitions(from PaperStatus) []PaperStatus {
	return paperStatusTransitions[from]
}

// ReviewStatus represents the lifecycle states of a single review.
// These values must match the database enum review_status.
type ReviewStatus string

const (
	ReviewStatusPending    ReviewStatus = "PENDING"
	ReviewStatusInProgress ReviewStatus = "IN_PROGRESS"
	ReviewStatusCompleted  ReviewStatus = "COMPLETED"
)

// IsValidReviewStatus reports whether s is a known review status value.
func IsValidReviewStatus(s ReviewStatus) bool {
	switch s {
	case ReviewStatusPending, ReviewStatusInProgress, ReviewStatusCompleted:
		return true
	default:
		return false
	}
}

// Recommendation is a reviewer's categorical verdict, distinct from the
// numeric criterion scores. These values must match the database enum
// review_recommendation.
type Recommendation string

const (
	RecommendationAccept        Recommendation = "ACCEPT"
	RecommendationMinorRevision Recommendation = "MINOR_REVISION"
	RecommendationMajorRevision Recommendation = "MAJOR_REVISION"
	RecommendationReject        Recommendation = "REJECT"
)

// IsValidRecommendation reports whether r is a known recommendation value.
func IsValidRecommendation(r Recommendation) bool {
	switch r {
	case RecommendationAccept, RecommendationMinorRevision,
		RecommendationMajorRevision, RecommendationReject:
		return true
	default:
		return false
	}
}

// Role represents a user's role in the editorial process.
// These values must match the database enum user_role.
type Role string

const (
	RoleAuthor   Role = "AUTHOR"
	RoleReviewer Role = "REVIEWER"
	RoleEditor   Role = "EDITOR"
	RoleAdmin    Role = "ADMIN"
)

// IsValidRole reports whether r is a known role value.
func IsValidRole(r Role) bool {
	switch r {
	case RoleAuthor, RoleReviewer, RoleEditor, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanEdit reports whether the role may be assigned as a paper's handling editor.
func (r Role) CanEdit() bool {
	return r == RoleEditor || r == RoleAdmin
}

// CanReview reports whether the role may be assigned as a reviewer.
func (r Role) CanReview() bool {
	return r == RoleReviewer || r == RoleEditor || r == RoleAdmin
}
