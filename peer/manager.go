// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package peer

import "sync"

// Manager is the connected-peer registry: a pool of live peers plus an
// id-indexed lookup, each guarded by its own mutex.
type Manager struct {
	poolMu sync.Mutex
	pool   map[ID]*Peer

	byIDMu sync.Mutex
	byID   map[ID]*Peer
}

// NewManager returns an empty peer registry.
func NewManager() *Manager {
	return &Manager{
		pool: make(map[ID]*Peer),
		byID: make(map[ID]*Peer),
	}
}

// Add registers p in both the pool and the id index.
func (m *Manager) Add(p *Peer) {
	m.poolMu.Lock()
	m.pool[p.id] = p
	m.poolMu.Unlock()

	m.byIDMu.Lock()
	m.byID[p.id] = p
	m.byIDMu.Unlock()
}

// ByID looks a peer up by id. The second return value is false if no
// such peer is currently registered.
func (m *Manager) ByID(id ID) (*Peer, bool) {
	m.byIDMu.Lock()
	defer m.byIDMu.Unlock()
	p, ok := m.byID[id]
	return p, ok
}

// remove drops id from both the pool and the id index, so ByID can never
// hand back a peer that has already closed.
func (m *Manager) remove(id ID) {
	m.poolMu.Lock()
	delete(m.pool, id)
	m.poolMu.Unlock()

	m.byIDMu.Lock()
	delete(m.byID, id)
	m.byIDMu.Unlock()
}

// Count returns the number of peers currently registered.
func (m *Manager) Count() int {
	m.poolMu.Lock()
	defer m.poolMu.Unlock()
	return len(m.pool)
}

// ForEach invokes fn once for every currently registered peer. fn is
// called with the registry's pool lock held, so it must not call back
// into the Manager.
func (m *Manager) ForEach(fn func(*Peer)) {
	m.poolMu.Lock()
	defer m.poolMu.Unlock()
	for _, p := range m.pool {
		fn(p)
	}
}

// CloseAll closes every registered peer, e.g. during node shutdown.
func (m *Manager) CloseAll(reason string) {
	var peers []*Peer
	m.poolMu.Lock()
	for _, p := range m.pool {
		peers = append(peers, p)
	}
	m.poolMu.Unlock()

	for _, p := range peers {
		p.Close(reason)
	}
}
