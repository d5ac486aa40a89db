// Package observability provides logging and metrics support for the
// editorial workflow service.
//
// # Overview
//
// The observability package provides:
//
//   - Structured logging with zerolog
//   - Prometheus metrics for submissions, reviews, and status transitions
//   - Context helpers for propagating request data
//
// # Logging
//
// Create a logger from configuration:
//
//	cfg := observability.LoggingConfig{
//	    Level:     "info",
//	    Format:    "json",
//	    Output:    "stdout",
//	    AddSource: true,
//	}
//
//	logger := observability.NewLogger(cfg)
//	logger.Info().Str("paper_id", paperID).Msg("paper submitted")
//
// Add paper context to a logger:
//
//	logger = observability.WithPaperContext(logger, paperID, status)
//
// # Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics("editorial")
//
// Record metrics:
//
//	metrics.RecordPaperSubmitted(score)
//	metrics.RecordStatusTransition("UNDER_REVIEW", "ACCEPTED")
//
// # Context Helpers
//
// Store and retrieve request context:
//
//	ctx = observability.WithRequestID(ctx, requestID)
//	reqID := observability.RequestIDFromContext(ctx)
//
// # Standard Fields
//
// Common fields used across the service:
//
//   - request_id: HTTP request identifier
//   - paper_id: Manuscript identifier
//   - review_id: Review identifier
//   - reviewer_id: Reviewer user identifier
//   - status: Paper or review status
//   - version: Manuscript version number
//
// # Thread Safety
//
// All components are safe for concurrent use from multiple goroutines.
package observability
