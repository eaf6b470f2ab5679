// Package registry owns the in-memory module collection and its
// persistence through the blob store.
package registry

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fentz26/qatrack/internal/logging"
	"github.com/fentz26/qatrack/internal/models"
	"github.com/fentz26/qatrack/internal/store"
	"github.com/google/uuid"
)

// ErrNameRequired indicates an add or edit with an empty module name.
var ErrNameRequired = fmt.Errorf("module name is required")

// ErrNotArray indicates an import payload whose top level is not an array.
var ErrNotArray = fmt.Errorf("import payload is not an array")

// Draft is the caller-supplied part of a new module. Everything else
// (id, environment, channels, timestamp) is assigned by the registry.
type Draft struct {
	Name     string
	Status   models.Status
	Reason   string
	Failures int
}

// Patch is a partial update applied over an existing module. Nil fields are
// left unchanged; a non-nil Channels map replaces the whole channel map.
type Patch struct {
	Name     *string
	Status   *models.Status
	Reason   *string
	Failures *int
	Channels map[string]bool
}

// Registry is the single writer for the module collection. Every mutator
// persists before returning and then notifies change listeners.
type Registry struct {
	store *store.Store

	mu        sync.Mutex
	modules   []models.Module
	listeners []func()
}

// New creates a registry backed by st. Call Load before first use.
func New(st *store.Store) *Registry {
	return &Registry{store: st}
}

// OnChange registers a listener invoked after every persisted mutation.
// Listeners are called synchronously and must not call back into the
// registry.
func (r *Registry) OnChange(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Load reads the collection from the store. An absent blob seeds the sample
// set; an unparsable blob is quarantined under a separate key and replaced
// by the sample set. Legacy records missing an environment or channel map
// are migrated in place and the migrated collection is persisted before
// first use.
func (r *Registry) Load() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, ok, err := r.store.Get(store.KeyModules)
	if err != nil {
		return fmt.Errorf("load modules: %w", err)
	}
	if !ok {
		r.modules = seedModules()
		return r.persistLocked()
	}

	var mods []models.Module
	if err := json.Unmarshal([]byte(raw), &mods); err != nil {
		logging.Error("stored module data is unreadable, falling back to sample data", "err", err)
		if qerr := r.store.Put(store.KeyModulesCorrupt, raw); qerr != nil {
			logging.Error("failed to quarantine corrupt module data", "err", qerr)
		}
		r.modules = seedModules()
		return r.persistLocked()
	}

	migrated := 0
	for i := range mods {
		if mods[i].Environment == "" {
			mods[i].Environment = models.DefaultEnvironment
			migrated++
		}
		if fillChannels(&mods[i]) {
			migrated++
		}
	}
	r.modules = mods

	if migrated > 0 {
		logging.Info("migrated legacy module records", "count", migrated)
		return r.persistLocked()
	}
	return nil
}

// Add creates a new module in env from the draft and persists it.
func (r *Registry) Add(env models.Environment, draft Draft) (models.Module, error) {
	if draft.Name == "" {
		return models.Module{}, ErrNameRequired
	}

	m := models.Module{
		ID:          uuid.New().String(),
		Name:        draft.Name,
		Environment: env,
		Status:      draft.Status,
		Reason:      draft.Reason,
		Failures:    draft.Failures,
		Channels:    models.DefaultChannels(),
		LastUpdated: time.Now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.modules = append(r.modules, m)
	if err := r.persistLocked(); err != nil {
		return models.Module{}, err
	}
	return m.Clone(), nil
}

// Update merges patch over the module with the given id and persists.
// An unknown id is a silent no-op.
func (r *Registry) Update(id string, patch Patch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return nil
	}

	m := &r.modules[idx]
	if patch.Name != nil {
		if *patch.Name == "" {
			return ErrNameRequired
		}
		m.Name = *patch.Name
	}
	if patch.Status != nil {
		m.Status = *patch.Status
	}
	if patch.Reason != nil {
		m.Reason = *patch.Reason
	}
	if patch.Failures != nil {
		m.Failures = *patch.Failures
	}
	if patch.Channels != nil {
		m.Channels = make(map[string]bool, len(patch.Channels))
		for k, v := range patch.Channels {
			m.Channels[k] = v
		}
	}
	m.LastUpdated = time.Now().UTC()

	return r.persistLocked()
}

// Remove deletes the module with the given id and persists. An unknown id
// is a silent no-op (the collection is still rewritten).
func (r *Registry) Remove(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.modules[:0]
	for _, m := range r.modules {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	r.modules = kept
	return r.persistLocked()
}

// Get returns a copy of the module with the given id.
func (r *Registry) Get(id string) (models.Module, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.indexLocked(id)
	if idx < 0 {
		return models.Module{}, false
	}
	return r.modules[idx].Clone(), true
}

// All returns a copy of the full collection, across all environments.
func (r *Registry) All() []models.Module {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]models.Module, len(r.modules))
	for i, m := range r.modules {
		out[i] = m.Clone()
	}
	return out
}

// ReplaceAll swaps in a new collection verbatim and persists. No per-record
// validation is applied; this is the bulk-import path.
func (r *Registry) ReplaceAll(mods []models.Module) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.modules = mods
	return r.persistLocked()
}

// ExportJSON returns the whole collection as pretty-printed JSON.
func (r *Registry) ExportJSON() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.MarshalIndent(r.modules, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal modules: %w", err)
	}
	return data, nil
}

// ImportJSON replaces the collection with the given JSON document. The
// document must parse and its top level must be an array; otherwise the
// collection is left untouched.
func (r *Registry) ImportJSON(data []byte) error {
	var top interface{}
	if err := json.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("parse import: %w", err)
	}
	if _, ok := top.([]interface{}); !ok {
		return ErrNotArray
	}

	var mods []models.Module
	if err := json.Unmarshal(data, &mods); err != nil {
		return fmt.Errorf("parse import: %w", err)
	}
	return r.ReplaceAll(mods)
}

// indexLocked returns the position of id in the collection, or -1.
func (r *Registry) indexLocked(id string) int {
	for i := range r.modules {
		if r.modules[i].ID == id {
			return i
		}
	}
	return -1
}

// persistLocked writes the collection to the store and notifies listeners.
// Callers must hold r.mu.
func (r *Registry) persistLocked() error {
	data, err := json.Marshal(r.modules)
	if err != nil {
		return fmt.Errorf("marshal modules: %w", err)
	}
	if err := r.store.Put(store.KeyModules, string(data)); err != nil {
		return err
	}
	for _, fn := range r.listeners {
		fn()
	}
	return nil
}

// fillChannels completes a missing or partial channel map with the all-true
// default. It reports whether anything changed.
func fillChannels(m *models.Module) bool {
	changed := false
	if m.Channels == nil {
		m.Channels = make(map[string]bool, len(models.ChannelNames))
		changed = true
	}
	for _, name := range models.ChannelNames {
		if _, ok := m.Channels[name]; !ok {
			m.Channels[name] = true
			changed = true
		}
	}
	return changed
}
