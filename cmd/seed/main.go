// Package main seeds a development database with one user per role and a
// couple of sample papers moving through the workflow.
package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/openjournal/editorial-service/internal/config"
	"github.com/openjournal/editorial-service/internal/database"
	"github.com/openjournal/editorial-service/internal/domain"
	"github.com/openjournal/editorial-service/internal/observability"
	"github.com/openjournal/editorial-service/internal/plagiarism"
	"github.com/openjournal/editorial-service/internal/repository"
	"github.com/openjournal/editorial-service/internal/workflow"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var seedUsers = []domain.User{
	{
		Email:     "admin@journal.com",
		FirstName: "Admin",
		LastName:  "User",
		Role:      domain.RoleAdmin,
	},
	{
		Email:     "editor@journal.com",
		FirstName: "Editor",
		LastName:  "User",
		Role:      domain.RoleEditor,
	},
	{
		Email:     "reviewer@journal.com",
		FirstName: "Reviewer",
		LastName:  "User",
		Role:      domain.RoleReviewer,
	},
	{
		Email:     "reviewer2@journal.com",
		FirstName: "Second",
		LastName:  "Reviewer",
		Role:      domain.RoleReviewer,
	},
	{
		Email:     "author@journal.com",
		FirstName: "Author",
		LastName:  "User",
		Role:      domain.RoleAuthor,
	},
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LoggingConfig{
		Level:      "info",
		Format:     "console",
		Output:     "stdout",
		AddSource:  false,
		TimeFormat: time.RFC3339,
	})
	logger = logger.With().Str("component", "seed").Logger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := database.New(ctx, &cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	store := repository.NewPgStore(db)
	checker := plagiarism.NewStubChecker(rand.New(rand.NewSource(time.Now().UnixNano())))
	engine := workflow.NewEngine(store, checker, nil, logger, cfg.Editorial.ReviewDuePeriod())

	users, err := ensureUsers(ctx, store, logger)
	if err != nil {
		return err
	}

	if err := ensureSamplePaper(ctx, engine, users, logger); err != nil {
		return err
	}

	logger.Info().Msg("seed complete")
	return nil
}

// ensureUsers creates each seed user unless one already exists with the same
// email, and returns the resulting users keyed by email.
func ensureUsers(ctx context.Context, store repository.Store, logger zerolog.Logger) (map[string]*domain.User, error) {
	out := make(map[string]*domain.User, len(seedUsers))
	for i := range seedUsers {
		u := seedUsers[i]
		existing, err := store.Users().GetByEmail(ctx, u.Email)
		if err == nil {
			out[u.Email] = existing
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("look up user %s: %w", u.Email, err)
		}

		u.Enabled = true
		created, err := store.Users().Create(ctx, &u)
		if err != nil {
			return nil, fmt.Errorf("create user %s: %w", u.Email, err)
		}
		logger.Info().
			Str("email", created.Email).
			Str("role", string(created.Role)).
			Msg("created seed user")
		out[u.Email] = created
	}
	return out, nil
}

// ensureSamplePaper submits one paper for the seed author and assigns the
// seed editor and reviewers, skipping if the author already has papers.
func ensureSamplePaper(ctx context.Context, engine *workflow.Engine, users map[string]*domain.User, logger zerolog.Logger) error {
	author := users["author@journal.com"]
	existing, _, err := engine.ListPapers(ctx, repository.PaperFilter{AuthorID: &author.ID, Limit: 1})
	if err != nil {
		return fmt.Errorf("list author papers: %w", err)
	}
	if len(existing) > 0 {
		logger.Info().Msg("sample paper already present, skipping")
		return nil
	}

	paper, err := engine.SubmitPaper(ctx, workflow.SubmitPaperInput{
		Title:    "Energy-Aware Scheduling for Edge Inference Workloads",
		Abstract: "We present a scheduling policy that trades accuracy for energy on heterogeneous edge clusters, evaluated on three production traces.",
		Keywords: "edge computing, scheduling, energy efficiency",
		AuthorID: author.ID,
		FilePath: "uploads/papers/energy-aware-scheduling-v1.pdf",
		FileName: "energy-aware-scheduling.pdf",
	})
	if err != nil {
		return fmt.Errorf("submit sample paper: %w", err)
	}
	event := logger.Info().Str("paper_id", paper.ID.String())
	if paper.PlagiarismScore != nil {
		event = event.Float64("plagiarism_score", *paper.PlagiarismScore)
	}
	event.Msg("submitted sample paper")

	editor := users["editor@journal.com"]
	if _, err := engine.AssignEditor(ctx, paper.ID, editor.ID); err != nil {
		return fmt.Errorf("assign editor: %w", err)
	}

	for _, email := range []string{"reviewer@journal.com", "reviewer2@journal.com"} {
		reviewer := users[email]
		if _, _, err := engine.AssignReviewer(ctx, paper.ID, reviewer.ID); err != nil {
			return fmt.Errorf("assign reviewer %s: %w", email, err)
		}
	}

	logger.Info().Str("paper_id", paper.ID.String()).Msg("sample paper is under review")
	return nil
}
