package registry

import (
	"time"

	"github.com/fentz26/qatrack/internal/models"
	"github.com/google/uuid"
)

// seedModules returns the sample collection used when the store is empty or
// unreadable. All seeded modules start in the default environment.
func seedModules() []models.Module {
	now := time.Now().UTC()

	samples := []struct {
		name     string
		status   models.Status
		reason   string
		failures int
		age      time.Duration
	}{
		{"Authentication Service", models.StatusPassed, "", 0, 0},
		{"Payment Gateway", models.StatusFailed, "Timeout on API response", 5, 24 * time.Hour},
		{"User Profile", models.StatusInProgress, "Pending UI tests", 0, time.Hour},
		{"Search Engine", models.StatusPassed, "", 1, 0},
		{"Notifications", models.StatusBlocked, "Waiting for backend fix", 0, 48 * time.Hour},
		{"Reporting Module", models.StatusFailed, "Calculation error in totals", 3, 0},
	}

	mods := make([]models.Module, 0, len(samples))
	for _, s := range samples {
		mods = append(mods, models.Module{
			ID:          uuid.New().String(),
			Name:        s.name,
			Environment: models.DefaultEnvironment,
			Status:      s.status,
			Reason:      s.reason,
			Failures:    s.failures,
			Channels:    models.DefaultChannels(),
			LastUpdated: now.Add(-s.age),
		})
	}
	return mods
}
