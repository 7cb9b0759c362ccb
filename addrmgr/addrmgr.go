// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addrmgr tracks peer addresses this node has heard about, split
// across three disjoint sets — known, banned, and failed — keyed by
// (ip, port), plus a capacity-bounded, most-recent-first vector that
// accelerates Get(n). Its persistence protocol mirrors the blockchain
// store's: a coalescing timer, a rename-over write to a temporary file.
package addrmgr

import (
	"sync"
	"time"

	"github.com/tkeycoin/tkeyd/wire"
)

const (
	// defaultStorageTime is how long an entry is kept before truncate()
	// drops it, absent an explicit Config.StorageTime.
	defaultStorageTime = 30 * 24 * time.Hour

	// defaultAddressCapacity bounds the sorted known-address vector.
	defaultAddressCapacity = 50000

	// defaultBannedCapacity bounds the banned set the same way.
	defaultBannedCapacity = 1000
)

// AddrManager is the known/banned/failed peer address store for one node.
type AddrManager struct {
	storageTime     time.Duration
	addressCapacity int
	bannedCapacity  int

	mtx    sync.Mutex
	known  map[string]*wire.NetAddress
	banned map[string]*wire.NetAddress
	failed map[string]*wire.NetAddress
	sorted []*wire.NetAddress

	persist *persister
}

// Config bundles AddrManager's construction-time dependencies.
type Config struct {
	// Path is the file the store's known/banned sets are persisted to. An
	// empty Path disables persistence entirely (useful for tests).
	Path string

	StorageTime     time.Duration
	AddressCapacity int
	BannedCapacity  int
}

// New creates an AddrManager, loading any previously persisted state from
// cfg.Path. Absence of that file is not an error.
func New(cfg *Config) (*AddrManager, error) {
	storageTime := cfg.StorageTime
	if storageTime == 0 {
		storageTime = defaultStorageTime
	}
	addressCapacity := cfg.AddressCapacity
	if addressCapacity == 0 {
		addressCapacity = defaultAddressCapacity
	}
	bannedCapacity := cfg.BannedCapacity
	if bannedCapacity == 0 {
		bannedCapacity = defaultBannedCapacity
	}

	am := &AddrManager{
		storageTime:     storageTime,
		addressCapacity: addressCapacity,
		bannedCapacity:  bannedCapacity,
		known:           make(map[string]*wire.NetAddress),
		banned:          make(map[string]*wire.NetAddress),
		failed:          make(map[string]*wire.NetAddress),
	}
	am.persist = newPersister(cfg.Path, am)

	if err := am.persist.load(); err != nil {
		return nil, err
	}
	if am.truncate() {
		am.persist.scheduleSave()
	}
	return am, nil
}

// Close flushes any pending save and stops the coalescing timer.
func (am *AddrManager) Close() error {
	return am.persist.close()
}

// Reg registers addr as seen. A banned address is ignored outright. An
// address in failed stays there when its recorded failure is newer than
// addr; otherwise it leaves failed and is registered in known. An address
// already in known only has its timestamp bumped when addr is newer.
func (am *AddrManager) Reg(addr *wire.NetAddress) {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	k := key(addr)
	if _, ok := am.banned[k]; ok {
		return
	}

	if existing, ok := am.failed[k]; ok {
		if existing.Timestamp.After(addr.Timestamp) {
			// The last recorded failure is newer than this sighting;
			// nothing about the address's standing changes.
			return
		}
		// This sighting postdates the last failure: the address
		// graduates out of failed and is considered again below.
		delete(am.failed, k)
	}

	needSave := false
	if existing, ok := am.known[k]; ok {
		if existing.Timestamp.Before(addr.Timestamp) {
			existing.Timestamp = addr.Timestamp
			needSave = true
		}
	} else {
		am.known[k] = cloneAddr(addr)
		needSave = true
	}

	if needSave {
		am.resortLocked()
		am.persist.scheduleSave()
	}
}

// Fail moves addr from known to failed, ignoring banned addresses, and
// bumps timestamps on older entries the same way Reg does.
func (am *AddrManager) Fail(addr *wire.NetAddress) {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	k := key(addr)
	if _, ok := am.banned[k]; ok {
		return
	}

	needSave := false

	if existing, ok := am.known[k]; ok {
		if existing.Timestamp.After(addr.Timestamp) {
			addr = existing
		}
		delete(am.known, k)
		needSave = true
	}

	if existing, ok := am.failed[k]; ok {
		if existing.Timestamp.Before(addr.Timestamp) {
			existing.Timestamp = addr.Timestamp
			needSave = true
		}
	} else {
		am.failed[k] = cloneAddr(addr)
		needSave = true
	}

	if needSave {
		am.resortLocked()
		am.persist.scheduleSave()
	}
}

// Ban removes addr from known and failed and upserts it into banned with
// the current time.
func (am *AddrManager) Ban(addr *wire.NetAddress) {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	k := key(addr)
	delete(am.known, k)
	delete(am.failed, k)

	banned := cloneAddr(addr)
	banned.Timestamp = time.Now()
	am.banned[k] = banned
	am.evictOldestBannedLocked()

	am.resortLocked()
	am.persist.scheduleSave()
}

// evictOldestBannedLocked drops the oldest banned entries once the set
// exceeds bannedCapacity. Caller must hold mtx.
func (am *AddrManager) evictOldestBannedLocked() {
	if len(am.banned) <= am.bannedCapacity {
		return
	}

	list := make([]*wire.NetAddress, 0, len(am.banned))
	for _, addr := range am.banned {
		list = append(list, addr)
	}
	sortByTimeDesc(list)

	for _, addr := range list[am.bannedCapacity:] {
		delete(am.banned, key(addr))
	}
}

// IsBanned reports whether addr is currently in the banned set.
func (am *AddrManager) IsBanned(addr *wire.NetAddress) bool {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	_, ok := am.banned[key(addr)]
	return ok
}

// Get returns up to n addresses from the sorted vector, most recent first.
func (am *AddrManager) Get(n int) []*wire.NetAddress {
	am.mtx.Lock()
	defer am.mtx.Unlock()

	if n > len(am.sorted) {
		n = len(am.sorted)
	}
	out := make([]*wire.NetAddress, n)
	for i := 0; i < n; i++ {
		out[i] = cloneAddr(am.sorted[i])
	}
	return out
}

// RegisteredCount returns the number of known addresses.
func (am *AddrManager) RegisteredCount() int {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	return len(am.known)
}

// BannedCount returns the number of banned addresses.
func (am *AddrManager) BannedCount() int {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	return len(am.banned)
}

// truncate drops entries older than storageTime from all three sets and
// reports whether anything changed. Caller must NOT hold mtx.
func (am *AddrManager) truncate() bool {
	am.mtx.Lock()
	defer am.mtx.Unlock()
	return am.truncateLocked()
}

func (am *AddrManager) truncateLocked() bool {
	threshold := time.Now().Add(-am.storageTime)
	changed := false

	for _, set := range []map[string]*wire.NetAddress{am.known, am.banned, am.failed} {
		for k, addr := range set {
			if addr.Timestamp.Before(threshold) {
				delete(set, k)
				changed = true
			}
		}
	}

	if changed {
		am.resortLocked()
	}
	return changed
}

// resortLocked rebuilds the sorted vector from the known set, most recent
// first, capped to addressCapacity. Caller must hold mtx.
func (am *AddrManager) resortLocked() {
	sorted := make([]*wire.NetAddress, 0, len(am.known))
	for _, addr := range am.known {
		sorted = append(sorted, addr)
	}
	sortByTimeDesc(sorted)
	if len(sorted) > am.addressCapacity {
		sorted = sorted[:am.addressCapacity]
	}
	am.sorted = sorted
}
