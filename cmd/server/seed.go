package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnshRaj112/journal-backend/internal/database"
	"github.com/AnshRaj112/journal-backend/internal/logger"
	"github.com/AnshRaj112/journal-backend/internal/models"
	"github.com/AnshRaj112/journal-backend/internal/store"
	"github.com/AnshRaj112/journal-backend/pkg/utils"
)

var sampleEntries = []models.Journal{
	{Title: "Morning Reflections", Content: "Had a great morning walk today!", Category: "Personal"},
	{Title: "Work Progress", Content: "Completed the project milestone on time.", Category: "Work"},
	{Title: "Travel Plans", Content: "Planning a trip to Japan next summer!", Category: "Travel"},
	{Title: "Health & Fitness", Content: "Started a new workout routine.", Category: "Health"},
	{Title: "Random Thoughts", Content: "Thinking about learning a new language.", Category: "Other"},
}

// seedJournals gives the user with email a copy of every sample entry.
func seedJournals(ctx context.Context, users store.UserStore, journals store.JournalStore, email string) (int, error) {
	user, err := users.GetByEmail(ctx, utils.NormalizeEmail(email))
	if errors.Is(err, store.ErrNotFound) {
		return 0, fmt.Errorf("no user with email %q; sign up first", email)
	}
	if err != nil {
		return 0, err
	}

	for i, sample := range sampleEntries {
		j := sample
		j.UserID = user.ID
		if err := journals.Create(ctx, &j); err != nil {
			return i, fmt.Errorf("seed %q: %w", j.Title, err)
		}
	}
	return len(sampleEntries), nil
}

func runSeed(ctx context.Context, email string) error {
	if err := database.ConnectPostgres(cfg.PostgresURI); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	defer database.DisconnectPostgres()

	n, err := seedJournals(ctx, store.NewPostgresUsers(database.PostgresDB), store.NewPostgresJournals(database.PostgresDB), email)
	if err != nil {
		return err
	}
	logger.Log.Infof("✅ Seeded %d journal entries for %s", n, email)
	return nil
}
