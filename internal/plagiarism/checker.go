// Package plagiarism provides similarity checking for submitted manuscripts.
//
// The production interface is Checker; the bundled implementation is a stub
// that simulates an external similarity service. Swapping in a real provider
// (Turnitin, iThenticate) only requires implementing Checker.
package plagiarism

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/openjournal/editorial-service/internal/domain"
)

// Similarity bands for report classification, in percent.
const (
	lowSimilarityThreshold      = 10.0
	moderateSimilarityThreshold = 20.0

	// maxStubScore bounds the simulated similarity score.
	maxStubScore = 30.0
)

// Result is the outcome of a similarity check.
type Result struct {
	// Score is the similarity percentage in [0, 100].
	Score float64

	// Report is a human-readable summary of the check.
	Report string
}

// Checker runs a similarity check against a submitted manuscript.
type Checker interface {
	Check(ctx context.Context, paper *domain.Paper) (Result, error)
}

// Compile-time interface verification.
var _ Checker = (*StubChecker)(nil)

// StubChecker simulates an external plagiarism service by drawing a uniform
// similarity score in [0, 30) and rendering a fixed-format report.
type StubChecker struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewStubChecker creates a stub checker using the given random source.
// Tests pass a seeded source for deterministic scores.
func NewStubChecker(rng *rand.Rand) *StubChecker {
	return &StubChecker{rng: rng}
}

// Check produces a simulated similarity result for the paper.
func (c *StubChecker) Check(ctx context.Context, paper *domain.Paper) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if paper == nil {
		return Result{}, domain.NewValidationError("paper", "paper cannot be nil")
	}

	c.mu.Lock()
	score := c.rng.Float64() * maxStubScore
	c.mu.Unlock()

	return Result{
		Score:  score,
		Report: RenderReport(paper.Title, score),
	}, nil
}

// RenderReport formats the similarity report for a document.
func RenderReport(title string, score float64) string {
	var b strings.Builder
	b.WriteString("Plagiarism Check Report\n")
	b.WriteString("=======================\n")
	fmt.Fprintf(&b, "Document: %s\n", title)
	fmt.Fprintf(&b, "Similarity Score: %.2f%%\n\n", score)

	switch {
	case score < lowSimilarityThreshold:
		b.WriteString("Status: LOW SIMILARITY - Document appears to be original.\n")
	case score < moderateSimilarityThreshold:
		b.WriteString("Status: MODERATE SIMILARITY - Some matching content found. Review recommended.\n")
	default:
		b.WriteString("Status: HIGH SIMILARITY - Significant matching content. Manual review required.\n")
	}

	return b.String()
}
