package plagiarism

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openjournal/editorial-service/internal/domain"
)

func TestStubChecker_Check(t *testing.T) {
	ctx := context.Background()

	t.Run("score stays within bounds", func(t *testing.T) {
		checker := NewStubChecker(rand.New(rand.NewSource(1)))
		paper := &domain.Paper{Title: "Distributed Consensus in Practice"}

		for i := 0; i < 200; i++ {
			result, err := checker.Check(ctx, paper)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, result.Score, 0.0)
			assert.Less(t, result.Score, 30.0)
		}
	})

	t.Run("deterministic with seeded source", func(t *testing.T) {
		a := NewStubChecker(rand.New(rand.NewSource(42)))
		b := NewStubChecker(rand.New(rand.NewSource(42)))
		paper := &domain.Paper{Title: "Reproducibility"}

		ra, err := a.Check(ctx, paper)
		require.NoError(t, err)
		rb, err := b.Check(ctx, paper)
		require.NoError(t, err)
		assert.Equal(t, ra.Score, rb.Score)
		assert.Equal(t, ra.Report, rb.Report)
	})

	t.Run("rejects nil paper", func(t *testing.T) {
		checker := NewStubChecker(rand.New(rand.NewSource(1)))

		_, err := checker.Check(ctx, nil)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("honors context cancellation", func(t *testing.T) {
		checker := NewStubChecker(rand.New(rand.NewSource(1)))
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := checker.Check(cancelled, &domain.Paper{Title: "x"})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestRenderReport(t *testing.T) {
	tests := []struct {
		name       string
		score      float64
		wantStatus string
	}{
		{"low band", 9.99, "Status: LOW SIMILARITY - Document appears to be original."},
		{"moderate band lower edge", 10.0, "Status: MODERATE SIMILARITY - Some matching content found. Review recommended."},
		{"moderate band", 19.99, "Status: MODERATE SIMILARITY - Some matching content found. Review recommended."},
		{"high band lower edge", 20.0, "Status: HIGH SIMILARITY - Significant matching content. Manual review required."},
		{"high band", 29.5, "Status: HIGH SIMILARITY - Significant matching content. Manual review required."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := RenderReport("Quantum Widgets", tt.score)
			assert.True(t, strings.HasPrefix(report, "Plagiarism Check Report\n=======================\n"))
			assert.Contains(t, report, "Document: Quantum Widgets\n")
			assert.Contains(t, report, fmt.Sprintf("Similarity Score: %.2f%%\n", tt.score))
			assert.Contains(t, report, tt.wantStatus)
		})
	}
}
