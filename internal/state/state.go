// Package state owns the single AppData aggregate. Every other package
// reads it through snapshots and writes it through whole-aggregate
// replacement; nothing holds a divergent copy.
package state

import (
	"context"
	"sync"

	"github.com/smartlaw/crm-backend/pkg/models"
	"github.com/smartlaw/crm-backend/pkg/store"
)

type Manager struct {
	mu   sync.RWMutex
	data models.AppData

	store *store.Store
	key   string
}

// Load reads the persisted aggregate (or falls back to def) and wraps it in
// a Manager. Called once at startup.
func Load(ctx context.Context, st *store.Store, key string, def models.AppData) *Manager {
	return &Manager{
		data:  st.Load(ctx, key, def),
		store: st,
		key:   key,
	}
}

// Snapshot returns a deep copy of the aggregate. Callers may read or build
// new state from it freely without affecting the live value.
func (m *Manager) Snapshot() models.AppData {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return clone(m.data)
}

// Update applies fn to a copy of the current aggregate and installs the
// result as the new authoritative state, mirroring it to the blob store.
// A failed store write is logged inside the store and does not roll the
// in-memory state back.
func (m *Manager) Update(ctx context.Context, fn func(models.AppData) models.AppData) models.AppData {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := fn(clone(m.data))
	next.Normalize()
	m.data = next

	// Mirror every write; a failed save is logged by the store and the
	// in-memory aggregate stays authoritative.
	m.store.Save(ctx, m.key, next)
	return clone(next)
}

// Replace installs data wholesale; this is the import and reset path. External
// state is never merged field by field.
func (m *Manager) Replace(ctx context.Context, data models.AppData) models.AppData {
	return m.Update(ctx, func(models.AppData) models.AppData {
		return data
	})
}

func clone(d models.AppData) models.AppData {
	out := d
	out.Sponsors = append([]models.Sponsor(nil), d.Sponsors...)
	out.Lawyers = append([]models.Lawyer(nil), d.Lawyers...)
	out.Cases = append([]models.Case(nil), d.Cases...)
	for i := range out.Cases {
		out.Cases[i].SponsorID = clonePtr(out.Cases[i].SponsorID)
		out.Cases[i].LawyerID = clonePtr(out.Cases[i].LawyerID)
	}
	out.Reorders = append([]models.Reorder(nil), d.Reorders...)
	out.Tasks = append([]models.Task(nil), d.Tasks...)
	out.Normalize()
	return out
}

// clonePtr keeps case references from being shared between the live
// aggregate and its snapshots.
func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
