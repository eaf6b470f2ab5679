// Package report computes aggregate QA metrics for a module set.
package report

import (
	"math"

	"github.com/fentz26/qatrack/internal/models"
)

// Summary holds the aggregate counts for one environment's modules.
type Summary struct {
	Total               int `json:"total"`
	Passed              int `json:"passed"`
	Failed              int `json:"failed"`
	InProgressOrBlocked int `json:"inProgressOrBlocked"`
	// PassRate is passed/total as a rounded percentage; 0 for an empty set.
	PassRate int `json:"passRate"`
}

// Summarize computes the summary for the given modules. The caller scopes
// the set to one environment; Summarize counts whatever it is given.
func Summarize(mods []models.Module) Summary {
	var s Summary
	s.Total = len(mods)
	for _, m := range mods {
		switch m.Status {
		case models.StatusPassed:
			s.Passed++
		case models.StatusFailed:
			s.Failed++
		case models.StatusInProgress, models.StatusBlocked:
			s.InProgressOrBlocked++
		}
	}
	if s.Total > 0 {
		s.PassRate = int(math.Round(float64(s.Passed) / float64(s.Total) * 100))
	}
	return s
}
