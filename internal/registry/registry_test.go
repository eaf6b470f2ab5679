package registry

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/fentz26/qatrack/internal/models"
	"github.com/fentz26/qatrack/internal/store"
)

func newTestRegistry(t *testing.T) (*Registry, *store.Store) {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	reg := New(st)
	if err := reg.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return reg, st
}

func TestLoadSeedsEmptyStore(t *testing.T) {
	reg, st := newTestRegistry(t)

	mods := reg.All()
	if len(mods) != 6 {
		t.Fatalf("Expected 6 seeded modules, got %d", len(mods))
	}
	for _, m := range mods {
		if m.Environment != models.DefaultEnvironment {
			t.Errorf("Seeded module %s in %q, want %q", m.Name, m.Environment, models.DefaultEnvironment)
		}
		for _, name := range models.ChannelNames {
			if !m.Channels[name] {
				t.Errorf("Seeded module %s missing channel %s", m.Name, name)
			}
		}
	}

	// Seed was persisted
	if _, ok, _ := st.Get(store.KeyModules); !ok {
		t.Error("Seed collection was not persisted")
	}
}

func TestLoadMigratesLegacyRecords(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer st.Close()

	// Legacy blob: no environment, no channels
	legacy := `[{"id":"a1","name":"Checkout","status":"Failed","reason":"x","failures":2,"lastUpdated":"2024-01-02T03:04:05Z"}]`
	if err := st.Put(store.KeyModules, legacy); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	reg := New(st)
	if err := reg.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	mods := reg.All()
	if len(mods) != 1 {
		t.Fatalf("Expected 1 module, got %d", len(mods))
	}
	m := mods[0]
	if m.Environment != models.DefaultEnvironment {
		t.Errorf("Expected migrated environment %s, got %q", models.DefaultEnvironment, m.Environment)
	}
	if len(m.Channels) != len(models.ChannelNames) {
		t.Errorf("Expected %d channels, got %d", len(models.ChannelNames), len(m.Channels))
	}
	for _, name := range models.ChannelNames {
		if !m.Channels[name] {
			t.Errorf("Migrated channel %s should default to true", name)
		}
	}
	if m.Status != models.StatusFailed || m.Failures != 2 {
		t.Errorf("Migration must not touch other fields: %+v", m)
	}

	// Migration persisted immediately
	raw, _, _ := st.Get(store.KeyModules)
	var persisted []models.Module
	if err := json.Unmarshal([]byte(raw), &persisted); err != nil {
		t.Fatalf("Persisted blob unparsable: %v", err)
	}
	if persisted[0].Environment != models.DefaultEnvironment || persisted[0].Channels == nil {
		t.Error("Migrated fields were not persisted")
	}
}

func TestLoadQuarantinesCorruptBlob(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer st.Close()

	if err := st.Put(store.KeyModules, "{not json"); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	reg := New(st)
	if err := reg.Load(); err != nil {
		t.Fatalf("Load should recover from corrupt data, got: %v", err)
	}

	if len(reg.All()) != 6 {
		t.Errorf("Expected seed fallback, got %d modules", len(reg.All()))
	}

	quarantined, ok, _ := st.Get(store.KeyModulesCorrupt)
	if !ok || quarantined != "{not json" {
		t.Errorf("Corrupt blob not quarantined: %q ok=%v", quarantined, ok)
	}
}

func TestAddAssignsDefaults(t *testing.T) {
	reg, _ := newTestRegistry(t)

	before := time.Now().UTC()
	m, err := reg.Add(models.EnvSAT, Draft{Name: "Billing", Status: models.StatusInProgress})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if m.ID == "" {
		t.Error("Add must assign an id")
	}
	if m.Environment != models.EnvSAT {
		t.Errorf("Expected environment SAT, got %q", m.Environment)
	}
	for _, name := range models.ChannelNames {
		if !m.Channels[name] {
			t.Errorf("Channel %s should default to true", name)
		}
	}
	if m.LastUpdated.Before(before) {
		t.Errorf("LastUpdated %v earlier than call time %v", m.LastUpdated, before)
	}

	got, ok := reg.Get(m.ID)
	if !ok || got.Name != "Billing" {
		t.Errorf("Lookup by returned id failed: %+v ok=%v", got, ok)
	}
}

func TestAddRejectsEmptyName(t *testing.T) {
	reg, _ := newTestRegistry(t)

	count := len(reg.All())
	if _, err := reg.Add(models.EnvQA, Draft{}); err != ErrNameRequired {
		t.Errorf("Expected ErrNameRequired, got %v", err)
	}
	if len(reg.All()) != count {
		t.Error("Failed add must not change the collection")
	}
}

func TestUpdateMergesPatch(t *testing.T) {
	reg, _ := newTestRegistry(t)

	m, _ := reg.Add(models.EnvQA, Draft{Name: "Ledger", Status: models.StatusPassed})

	status := models.StatusFailed
	reason := "flaky assertions"
	failures := 4
	if err := reg.Update(m.ID, Patch{Status: &status, Reason: &reason, Failures: &failures}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := reg.Get(m.ID)
	if got.Status != models.StatusFailed || got.Reason != "flaky assertions" || got.Failures != 4 {
		t.Errorf("Patch not merged: %+v", got)
	}
	if got.Name != "Ledger" {
		t.Errorf("Unpatched field changed: %q", got.Name)
	}
	if !got.LastUpdated.After(m.LastUpdated) && !got.LastUpdated.Equal(m.LastUpdated) {
		t.Errorf("LastUpdated went backwards: %v -> %v", m.LastUpdated, got.LastUpdated)
	}
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	reg, _ := newTestRegistry(t)

	before, err := reg.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}

	status := models.StatusFailed
	if err := reg.Update("no-such-id", Patch{Status: &status}); err != nil {
		t.Fatalf("Update on unknown id must be silent, got: %v", err)
	}

	after, _ := reg.ExportJSON()
	if !bytes.Equal(before, after) {
		t.Error("Collection changed by an update to an unknown id")
	}
}

func TestRemove(t *testing.T) {
	reg, _ := newTestRegistry(t)

	m, _ := reg.Add(models.EnvQA, Draft{Name: "Doomed", Status: models.StatusBlocked})
	count := len(reg.All())

	if err := reg.Remove(m.ID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if _, ok := reg.Get(m.ID); ok {
		t.Error("Module still present after Remove")
	}
	if len(reg.All()) != count-1 {
		t.Errorf("Expected %d modules, got %d", count-1, len(reg.All()))
	}

	// Removing again is a silent no-op
	if err := reg.Remove(m.ID); err != nil {
		t.Errorf("Remove of unknown id must be silent, got: %v", err)
	}
}

func TestImportRejectsNonArray(t *testing.T) {
	reg, _ := newTestRegistry(t)

	before, _ := reg.ExportJSON()

	if err := reg.ImportJSON([]byte(`{"id":"x"}`)); err != ErrNotArray {
		t.Errorf("Expected ErrNotArray for object payload, got %v", err)
	}
	if err := reg.ImportJSON([]byte(`{{{`)); err == nil {
		t.Error("Expected error for unparsable payload")
	}

	after, _ := reg.ExportJSON()
	if !bytes.Equal(before, after) {
		t.Error("Rejected import must not change the collection")
	}
}

func TestImportKeepsUnknownStatus(t *testing.T) {
	reg, _ := newTestRegistry(t)

	payload := `[{"id":"z9","name":"Legacy","environment":"QA","status":"Quarantined","reason":"","failures":0,"lastUpdated":"2024-01-02T03:04:05Z"}]`
	if err := reg.ImportJSON([]byte(payload)); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}

	mods := reg.All()
	if len(mods) != 1 {
		t.Fatalf("Expected 1 module, got %d", len(mods))
	}
	if mods[0].Status != "Quarantined" {
		t.Errorf("Import must store statuses verbatim, got %q", mods[0].Status)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	reg, _ := newTestRegistry(t)

	reg.Add(models.EnvSAT, Draft{Name: "Webhooks", Status: models.StatusFailed, Reason: "5xx", Failures: 7})
	original := reg.All()

	data, err := reg.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON failed: %v", err)
	}
	if err := reg.ImportJSON(data); err != nil {
		t.Fatalf("ImportJSON failed: %v", err)
	}

	restored := reg.All()
	if len(restored) != len(original) {
		t.Fatalf("Expected %d modules after round trip, got %d", len(original), len(restored))
	}
	for i := range original {
		a, b := original[i], restored[i]
		if a.ID != b.ID || a.Name != b.Name || a.Environment != b.Environment ||
			a.Status != b.Status || a.Reason != b.Reason || a.Failures != b.Failures {
			t.Errorf("Module %d changed in round trip:\n  before: %+v\n  after:  %+v", i, a, b)
		}
		if !a.LastUpdated.Equal(b.LastUpdated) {
			t.Errorf("Module %d timestamp changed: %v -> %v", i, a.LastUpdated, b.LastUpdated)
		}
		for _, name := range models.ChannelNames {
			if a.Channels[name] != b.Channels[name] {
				t.Errorf("Module %d channel %s changed", i, name)
			}
		}
	}
}

func TestListenersFireAfterMutation(t *testing.T) {
	reg, _ := newTestRegistry(t)

	fired := 0
	reg.OnChange(func() { fired++ })

	m, _ := reg.Add(models.EnvQA, Draft{Name: "Audit", Status: models.StatusInProgress})
	reason := "waiting"
	reg.Update(m.ID, Patch{Reason: &reason})
	reg.Remove(m.ID)

	if fired != 3 {
		t.Errorf("Expected 3 change notifications, got %d", fired)
	}
}
