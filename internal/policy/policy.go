// Package policy models the side effects of quick status changes.
//
// A quick update may solicit a replacement failure reason and a new failure
// count. The prompts go through an injected Prompter so the policy itself
// is deterministic given scripted answers.
package policy

import (
	"fmt"
	"strconv"

	"github.com/fentz26/qatrack/internal/models"
	"github.com/fentz26/qatrack/internal/registry"
)

// Prompter asks the user a question with a pre-filled default. ok is false
// when the user cancelled; a cancelled prompt leaves the related field
// unchanged. An empty answer with ok true is a real answer.
type Prompter interface {
	Ask(prompt, def string) (answer string, ok bool)
}

// PromptFunc adapts a function to the Prompter interface.
type PromptFunc func(prompt, def string) (string, bool)

// Ask implements Prompter.
func (f PromptFunc) Ask(prompt, def string) (string, bool) {
	return f(prompt, def)
}

// AutoAccept is a Prompter that answers every question with its default.
var AutoAccept = PromptFunc(func(_, def string) (string, bool) {
	return def, true
})

// Plan computes the patch for moving m to target, consulting p for the
// interactive parts. It returns false when the transition is a no-op
// (target equals the current status).
func Plan(m models.Module, target models.Status, p Prompter) (registry.Patch, bool) {
	if m.Status == target {
		return registry.Patch{}, false
	}

	status := target
	patch := registry.Patch{Status: &status}

	if target == models.StatusFailed || target == models.StatusBlocked {
		if answer, ok := p.Ask(fmt.Sprintf("Enter reason for %s (optional)", target), m.Reason); ok {
			reason := answer
			patch.Reason = &reason
		}

		if target == models.StatusFailed {
			def := strconv.Itoa(m.Failures + 1)
			if answer, ok := p.Ask("Update failure count?", def); ok {
				if n, err := strconv.Atoi(answer); err == nil {
					patch.Failures = &n
				}
			}
		}
	}

	// Passed and In Progress carry no side effects; a stale reason is left
	// in place.
	return patch, true
}

// Apply runs Plan for the module with the given id and routes the patch
// through the registry as a single update. An unknown id is a silent no-op,
// matching the registry's referential-miss behavior.
func Apply(reg *registry.Registry, id string, target models.Status, p Prompter) error {
	m, ok := reg.Get(id)
	if !ok {
		return nil
	}
	patch, changed := Plan(m, target, p)
	if !changed {
		return nil
	}
	return reg.Update(id, patch)
}
