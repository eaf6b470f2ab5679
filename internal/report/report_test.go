package report

import (
	"testing"

	"github.com/fentz26/qatrack/internal/models"
)

func TestSummarizeEmptySet(t *testing.T) {
	s := Summarize(nil)
	if s.Total != 0 || s.Passed != 0 || s.Failed != 0 || s.InProgressOrBlocked != 0 {
		t.Errorf("Empty set counts: %+v", s)
	}
	if s.PassRate != 0 {
		t.Errorf("PassRate for empty set must be 0, got %d", s.PassRate)
	}
}

func TestSummarizeCounts(t *testing.T) {
	mods := []models.Module{
		{Status: models.StatusPassed},
		{Status: models.StatusPassed},
		{Status: models.StatusFailed},
		{Status: models.StatusInProgress},
		{Status: models.StatusBlocked},
		{Status: "Quarantined"}, // imported, unknown label
	}

	s := Summarize(mods)
	if s.Total != 6 {
		t.Errorf("Total = %d, want 6", s.Total)
	}
	if s.Passed != 2 || s.Failed != 1 || s.InProgressOrBlocked != 2 {
		t.Errorf("Counts: %+v", s)
	}
	// 2/6 = 33.33 rounds to 33
	if s.PassRate != 33 {
		t.Errorf("PassRate = %d, want 33", s.PassRate)
	}
}

func TestPassRateRoundsHalfUp(t *testing.T) {
	mods := []models.Module{
		{Status: models.StatusPassed},
		{Status: models.StatusFailed},
		{Status: models.StatusFailed},
		{Status: models.StatusFailed},
		{Status: models.StatusFailed},
		{Status: models.StatusFailed},
		{Status: models.StatusFailed},
		{Status: models.StatusFailed},
	}

	// 1/8 = 12.5 rounds to 13
	if s := Summarize(mods); s.PassRate != 13 {
		t.Errorf("PassRate = %d, want 13", s.PassRate)
	}
}
