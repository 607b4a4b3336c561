// Package feature synthesizes and refcounts derived outputs from a Map
// output: get_ref, contains, and is_empty (C5 in SPEC_FULL.md, spec
// §4.2.3).
package feature

import (
	"tsengine/internal/engtime"
	"tsengine/internal/overlay"
	"tsengine/internal/schema"
	"tsengine/internal/tsvalue"
)

type reqKey struct {
	key       any
	requester any
}

type refFeature struct {
	output   *tsvalue.TSOutput
	refCount int
}

type boolFeature struct {
	output   *tsvalue.TSOutput
	refCount int
	last     bool
	everSet  bool
}

// Manager synthesizes feature outputs derived from one Map output,
// refcounted by requester identity (§4.2.3: "the first request allocates
// the derived output... release(key, requester) decrements; when the
// count hits zero, the derived output is freed").
type Manager struct {
	mapOut *tsvalue.TSOutput
	arena  *overlay.Arena

	refs     map[reqKey]*refFeature
	contains map[reqKey]*boolFeature
	empty    *boolFeature

	// entryOutputs caches one *TSOutput wrapper per live map key so a
	// get_ref's RefValue.Target stays pointer-stable across ticks —
	// RefValue.Equal compares bound targets by pointer identity.
	entryOutputs map[any]*tsvalue.TSOutput
}

// NewManager returns a feature manager over mapOut, whose derived outputs
// are allocated in arena.
func NewManager(mapOut *tsvalue.TSOutput, arena *overlay.Arena) *Manager {
	return &Manager{
		mapOut:       mapOut,
		arena:        arena,
		refs:         make(map[reqKey]*refFeature),
		contains:     make(map[reqKey]*boolFeature),
		entryOutputs: make(map[any]*tsvalue.TSOutput),
	}
}

// GetRef returns the get_ref output for key/requester, allocating it and
// registering the map as its source on first request.
func (m *Manager) GetRef(key, requester any) *tsvalue.TSOutput {
	rk := reqKey{key, requester}
	f, ok := m.refs[rk]
	if !ok {
		target := schema.NewRef(m.mapOut.Schema.ValueSchema)
		f = &refFeature{output: tsvalue.NewOutput(m.mapOut.Owner, m.mapOut.ID, target, m.arena)}
		m.refs[rk] = f
		m.recomputeRef(key, f, engtime.MinTime)
	}
	f.refCount++
	return f.output
}

// ReleaseRef decrements a get_ref's refcount, freeing it at zero.
func (m *Manager) ReleaseRef(key, requester any) {
	rk := reqKey{key, requester}
	if f, ok := m.refs[rk]; ok {
		f.refCount--
		if f.refCount <= 0 {
			delete(m.refs, rk)
		}
	}
}

// Contains returns the contains(key) output for requester.
func (m *Manager) Contains(key, requester any) *tsvalue.TSOutput {
	rk := reqKey{key, requester}
	f, ok := m.contains[rk]
	if !ok {
		f = &boolFeature{output: tsvalue.NewOutput(m.mapOut.Owner, m.mapOut.ID, schema.NewScalar(schema.Bool), m.arena)}
		m.contains[rk] = f
		m.recomputeContains(key, f, engtime.MinTime)
	}
	f.refCount++
	return f.output
}

// ReleaseContains decrements a contains' refcount, freeing it at zero.
func (m *Manager) ReleaseContains(key, requester any) {
	rk := reqKey{key, requester}
	if f, ok := m.contains[rk]; ok {
		f.refCount--
		if f.refCount <= 0 {
			delete(m.contains, rk)
		}
	}
}

// IsEmpty returns the single shared is_empty() output, allocating it on
// first request.
func (m *Manager) IsEmpty() *tsvalue.TSOutput {
	if m.empty == nil {
		m.empty = &boolFeature{output: tsvalue.NewOutput(m.mapOut.Owner, m.mapOut.ID, schema.NewScalar(schema.Bool), m.arena)}
		m.recomputeEmpty(m.empty, engtime.MinTime)
	}
	m.empty.refCount++
	return m.empty.output
}

// ReleaseIsEmpty decrements is_empty's refcount, freeing it at zero.
func (m *Manager) ReleaseIsEmpty() {
	if m.empty == nil {
		return
	}
	m.empty.refCount--
	if m.empty.refCount <= 0 {
		m.empty = nil
	}
}

// Update recomputes every live feature output against the map's current
// contents, writing and notifying only where the observed value actually
// changed (§4.2.3). The owning node calls this once per tick, after any
// writes to the underlying map.
func (m *Manager) Update(t engtime.Time) {
	for rk, f := range m.refs {
		m.recomputeRef(rk.key, f, t)
	}
	for rk, f := range m.contains {
		m.recomputeContains(rk.key, f, t)
	}
	if m.empty != nil {
		m.recomputeEmpty(m.empty, t)
	}
}

func (m *Manager) recomputeRef(key any, f *refFeature, t engtime.Time) {
	st, present := m.mapOut.St.MapGet(key)
	var next tsvalue.RefValue
	if present {
		next = tsvalue.Bound(m.entryOutput(key, st))
	} else {
		next = tsvalue.Empty
		delete(m.entryOutputs, key)
	}
	if f.output.St.Ref().Equal(next) {
		return
	}
	f.output.St.SetRef(next)
	f.output.Ovl.MarkModified(t)
	f.output.Ovl.NotifyRebind(t)
}

func (m *Manager) recomputeContains(key any, f *boolFeature, t engtime.Time) {
	_, present := m.mapOut.St.MapGet(key)
	if f.everSet && present == f.last {
		return
	}
	f.last, f.everSet = present, true
	f.output.SetScalar(t, present)
}

func (m *Manager) recomputeEmpty(f *boolFeature, t engtime.Time) {
	empty := m.mapOut.St.MapSize() == 0
	if f.everSet && empty == f.last {
		return
	}
	f.last, f.everSet = empty, true
	f.output.SetScalar(t, empty)
}

func (m *Manager) entryOutput(key any, st *tsvalue.Storage) *tsvalue.TSOutput {
	if out, ok := m.entryOutputs[key]; ok {
		return out
	}
	ovl, _ := m.mapOut.Ovl.Entry(key)
	out := &tsvalue.TSOutput{
		View:  tsvalue.View{Schema: m.mapOut.Schema.ValueSchema, St: st, Ovl: ovl},
		Owner: m.mapOut.Owner,
		ID:    m.mapOut.ID,
	}
	m.entryOutputs[key] = out
	return out
}
