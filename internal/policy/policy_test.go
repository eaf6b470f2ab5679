package policy

import (
	"path/filepath"
	"testing"

	"github.com/fentz26/qatrack/internal/models"
	"github.com/fentz26/qatrack/internal/registry"
	"github.com/fentz26/qatrack/internal/store"
)

func module(status models.Status, reason string, failures int) models.Module {
	return models.Module{ID: "m1", Name: "Checkout", Status: status, Reason: reason, Failures: failures}
}

func TestPlanSameStatusIsNoop(t *testing.T) {
	asked := false
	p := PromptFunc(func(_, _ string) (string, bool) {
		asked = true
		return "", true
	})

	_, changed := Plan(module(models.StatusPassed, "", 0), models.StatusPassed, p)
	if changed {
		t.Error("Transition to the current status must be a no-op")
	}
	if asked {
		t.Error("No-op transition must not prompt")
	}
}

func TestPlanFailedWithAnswers(t *testing.T) {
	script := &Script{Responses: []Response{Accept("disk full"), Accept("12")}}

	patch, changed := Plan(module(models.StatusPassed, "old reason", 5), models.StatusFailed, script)
	if !changed {
		t.Fatal("Expected a transition")
	}
	if patch.Status == nil || *patch.Status != models.StatusFailed {
		t.Errorf("Status patch: %v", patch.Status)
	}
	if patch.Reason == nil || *patch.Reason != "disk full" {
		t.Errorf("Reason patch: %v", patch.Reason)
	}
	if patch.Failures == nil || *patch.Failures != 12 {
		t.Errorf("Failures patch: %v", patch.Failures)
	}
}

func TestPlanFailureCountDefaultsToIncrement(t *testing.T) {
	var gotDefault string
	p := PromptFunc(func(prompt, def string) (string, bool) {
		if prompt == "Update failure count?" {
			gotDefault = def
		}
		return def, true
	})

	patch, _ := Plan(module(models.StatusPassed, "", 5), models.StatusFailed, p)
	if gotDefault != "6" {
		t.Errorf("Failure count default = %q, want current+1", gotDefault)
	}
	if patch.Failures == nil || *patch.Failures != 6 {
		t.Errorf("Failures patch: %v", patch.Failures)
	}
}

func TestPlanNonNumericCountLeavesFailures(t *testing.T) {
	script := &Script{Responses: []Response{Accept("net split"), Accept("abc")}}

	patch, _ := Plan(module(models.StatusPassed, "", 5), models.StatusFailed, script)
	if patch.Failures != nil {
		t.Errorf("Non-numeric answer must leave failures untouched, got %d", *patch.Failures)
	}
	if patch.Reason == nil || *patch.Reason != "net split" {
		t.Errorf("Reason patch: %v", patch.Reason)
	}
}

func TestPlanZeroCountIsAccepted(t *testing.T) {
	script := &Script{Responses: []Response{Accept(""), Accept("0")}}

	patch, _ := Plan(module(models.StatusPassed, "x", 5), models.StatusFailed, script)
	if patch.Failures == nil || *patch.Failures != 0 {
		t.Errorf("Answer \"0\" must set failures to 0, got %v", patch.Failures)
	}
	// An empty accepted answer is a real (empty) reason
	if patch.Reason == nil || *patch.Reason != "" {
		t.Errorf("Empty accepted reason must clear the field, got %v", patch.Reason)
	}
}

func TestPlanCancelledPromptsLeaveFields(t *testing.T) {
	script := &Script{Responses: []Response{Cancelled(), Cancelled()}}

	patch, changed := Plan(module(models.StatusPassed, "keep me", 3), models.StatusFailed, script)
	if !changed {
		t.Fatal("Cancelling prompts must still change the status")
	}
	if patch.Reason != nil {
		t.Errorf("Cancelled reason prompt must leave the reason, got %v", patch.Reason)
	}
	if patch.Failures != nil {
		t.Errorf("Cancelled count prompt must leave failures, got %v", patch.Failures)
	}
}

func TestPlanBlockedAsksReasonOnly(t *testing.T) {
	prompts := 0
	p := PromptFunc(func(_, def string) (string, bool) {
		prompts++
		return def, true
	})

	patch, _ := Plan(module(models.StatusPassed, "waiting on infra", 2), models.StatusBlocked, p)
	if prompts != 1 {
		t.Errorf("Blocked transition asked %d prompts, want 1", prompts)
	}
	if patch.Reason == nil || *patch.Reason != "waiting on infra" {
		t.Errorf("Reason patch: %v", patch.Reason)
	}
	if patch.Failures != nil {
		t.Error("Blocked transition must not touch failures")
	}
}

func TestPlanPassedLeavesReasonStale(t *testing.T) {
	patch, changed := Plan(module(models.StatusFailed, "timeout", 3), models.StatusPassed, AutoAccept)
	if !changed {
		t.Fatal("Expected a transition")
	}
	// Reason is deliberately left in place on Pass.
	if patch.Reason != nil || patch.Failures != nil {
		t.Errorf("Pass must only change status: %+v", patch)
	}
}

func TestApplyRoutesSinglePatch(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer st.Close()
	reg := registry.New(st)
	if err := reg.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	m, _ := reg.Add(models.EnvQA, registry.Draft{Name: "Exports", Status: models.StatusPassed, Failures: 5})

	script := &Script{Responses: []Response{Accept("disk full"), Accept("12")}}
	if err := Apply(reg, m.ID, models.StatusFailed, script); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	got, _ := reg.Get(m.ID)
	if got.Status != models.StatusFailed || got.Reason != "disk full" || got.Failures != 12 {
		t.Errorf("Applied module: %+v", got)
	}

	// Unknown id is silent
	if err := Apply(reg, "missing", models.StatusFailed, &Script{}); err != nil {
		t.Errorf("Apply on unknown id must be silent, got %v", err)
	}
}
