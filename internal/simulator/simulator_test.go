package simulator

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fentz26/qatrack/internal/models"
	"github.com/fentz26/qatrack/internal/registry"
	"github.com/fentz26/qatrack/internal/store"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	reg := registry.New(st)
	if err := reg.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := reg.ReplaceAll(nil); err != nil {
		t.Fatalf("ReplaceAll failed: %v", err)
	}
	return reg
}

func TestTickChangesOneModuleStatus(t *testing.T) {
	reg := newTestRegistry(t)
	m, _ := reg.Add(models.EnvQA, registry.Draft{Name: "Checkout", Status: models.StatusPassed})

	sim := New(reg, models.EnvQA, time.Hour)
	sim.tick()

	got, _ := reg.Get(m.ID)
	if got.Status == models.StatusPassed {
		t.Errorf("Tick must move the module to a different status, still %s", got.Status)
	}
	if !got.Status.Valid() {
		t.Errorf("Tick produced unknown status %q", got.Status)
	}
}

func TestTickIgnoresOtherEnvironments(t *testing.T) {
	reg := newTestRegistry(t)
	m, _ := reg.Add(models.EnvProd, registry.Draft{Name: "Checkout", Status: models.StatusPassed})

	sim := New(reg, models.EnvQA, time.Hour)
	sim.tick()

	got, _ := reg.Get(m.ID)
	if got.Status != models.StatusPassed {
		t.Errorf("Tick touched a module outside its environment: %s", got.Status)
	}
}

func TestTickOnEmptyEnvironmentIsNoop(t *testing.T) {
	reg := newTestRegistry(t)
	sim := New(reg, models.EnvSAT, time.Hour)

	// Must not panic or create anything
	sim.tick()
	if len(reg.All()) != 0 {
		t.Errorf("Tick on empty environment created modules: %d", len(reg.All()))
	}
}

func TestTickFailedIncrementsCount(t *testing.T) {
	reg := newTestRegistry(t)
	m, _ := reg.Add(models.EnvQA, registry.Draft{Name: "Checkout", Status: models.StatusPassed, Failures: 2})

	sim := New(reg, models.EnvQA, time.Hour)

	// Tick until a Failed transition happens; the auto-accept prompter
	// takes the suggested current+1 count.
	for i := 0; i < 100; i++ {
		sim.tick()
		got, _ := reg.Get(m.ID)
		if got.Status == models.StatusFailed {
			if got.Failures < 3 {
				t.Errorf("Failed transition kept count at %d, want increment", got.Failures)
			}
			return
		}
	}
	t.Skip("no Failed transition in 100 ticks")
}

func TestStartStop(t *testing.T) {
	reg := newTestRegistry(t)
	reg.Add(models.EnvQA, registry.Draft{Name: "Checkout", Status: models.StatusPassed})

	sim := New(reg, models.EnvQA, 10*time.Millisecond)
	sim.Start()
	time.Sleep(50 * time.Millisecond)
	sim.Stop()

	// Stop must be idempotent-safe to wait on; no assertion beyond not hanging.
}
