// Package models defines the core domain types for qatrack.
package models

import "time"

// Status represents the QA state of a module.
//
// Statuses constructed inside the tool always come from this closed set.
// Bulk import is the one boundary that may store other strings; imported
// records are kept verbatim.
type Status string

const (
	StatusPassed     Status = "Passed"
	StatusFailed     Status = "Failed"
	StatusInProgress Status = "In Progress"
	StatusBlocked    Status = "Blocked"
)

// Statuses lists the valid statuses in display order.
var Statuses = []Status{StatusPassed, StatusFailed, StatusInProgress, StatusBlocked}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Environment is a named deployment stage. Every module belongs to exactly
// one environment; all list views and promotions are scoped by it.
type Environment string

const (
	EnvQA   Environment = "QA"
	EnvSAT  Environment = "SAT"
	EnvProd Environment = "Prod"
)

// DefaultEnvironment is assigned to seeded modules and to legacy records
// that predate environment scoping.
const DefaultEnvironment = EnvQA

// Environments lists the deployment stages in promotion order.
var Environments = []Environment{EnvQA, EnvSAT, EnvProd}

// Valid reports whether e is one of the known environments.
func (e Environment) Valid() bool {
	for _, known := range Environments {
		if e == known {
			return true
		}
	}
	return false
}

// ChannelNames lists the per-module availability channels.
var ChannelNames = []string{"voice", "sms", "chat", "email"}

// DefaultChannels returns the all-available channel map given to new and
// migrated modules.
func DefaultChannels() map[string]bool {
	ch := make(map[string]bool, len(ChannelNames))
	for _, name := range ChannelNames {
		ch[name] = true
	}
	return ch
}

// DefaultRelease is the release label reported when none has been saved.
const DefaultRelease = "Unversioned"

// Module is the tracked unit of functionality. The JSON field names match
// the persisted collection format, so exported data round-trips.
type Module struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Environment Environment     `json:"environment,omitempty"`
	Status      Status          `json:"status"`
	Reason      string          `json:"reason"`
	Failures    int             `json:"failures"`
	Channels    map[string]bool `json:"channels,omitempty"`
	LastUpdated time.Time       `json:"lastUpdated"`
}

// Clone returns a deep copy of the module.
func (m Module) Clone() Module {
	out := m
	if m.Channels != nil {
		out.Channels = make(map[string]bool, len(m.Channels))
		for k, v := range m.Channels {
			out.Channels[k] = v
		}
	}
	return out
}
