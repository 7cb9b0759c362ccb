// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"bufio"
	"io"
	"os"
	"sync"
	"time"

	"github.com/tkeycoin/tkeyd/wire"
	"golang.org/x/sys/unix"
)

// saveCoalesceWindow matches the blockchain store's coalescing delay, so a
// burst of reg/fail/ban calls shares one rename-over write.
const saveCoalesceWindow = 5 * time.Second

// persister implements the same save protocol as blockchain/chainio.go:
// writes to "<path>~", fsyncs, then atomically renames over "<path>".
type persister struct {
	path string
	am   *AddrManager

	mtx     sync.Mutex
	pending bool
	timer   *time.Timer
	closed  bool
}

func newPersister(path string, am *AddrManager) *persister {
	return &persister{path: path, am: am}
}

func (p *persister) scheduleSave() {
	if p.path == "" {
		return
	}

	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.closed {
		return
	}
	p.pending = true
	if p.timer != nil {
		return
	}
	p.timer = time.AfterFunc(saveCoalesceWindow, p.flush)
}

func (p *persister) flush() {
	p.mtx.Lock()
	if !p.pending || p.closed {
		p.timer = nil
		p.mtx.Unlock()
		return
	}
	p.pending = false
	p.timer = nil
	p.mtx.Unlock()

	if err := p.save(); err != nil {
		log.Errorf("failed to persist address manager store: %v", err)
	}
}

func (p *persister) close() error {
	p.mtx.Lock()
	wasPending := p.pending
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.closed = true
	p.mtx.Unlock()

	if wasPending {
		return p.save()
	}
	return nil
}

// save writes the known and banned sets to a temporary file, fsyncs it,
// and renames it over the real path. The failed set is not persisted: a
// restart is treated the same as a fresh chance for a previously-failing
// peer.
func (p *persister) save() error {
	if p.path == "" {
		return nil
	}

	p.am.truncate()

	p.am.mtx.Lock()
	known := make([]*wire.NetAddress, 0, len(p.am.known))
	for _, addr := range p.am.known {
		known = append(known, addr)
	}
	banned := make([]*wire.NetAddress, 0, len(p.am.banned))
	for _, addr := range p.am.banned {
		banned = append(banned, addr)
	}
	p.am.mtx.Unlock()

	sortByTimeDesc(known)
	if len(known) > p.am.addressCapacity {
		known = known[:p.am.addressCapacity]
	}

	tmpPath := p.path + "~"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	if err := writeSizedAddresses(bw, known); err != nil {
		f.Close()
		return err
	}
	if err := writeSizedAddresses(bw, banned); err != nil {
		f.Close()
		return err
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := unix.Fdatasync(int(f.Fd())); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmpPath, p.path)
}

// load restores the known and banned sets from the persisted file. A
// missing file is not an error.
func (p *persister) load() error {
	if p.path == "" {
		return nil
	}

	f, err := os.Open(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	known, err := readSizedAddresses(br)
	if err != nil {
		return err
	}
	banned, err := readSizedAddresses(br)
	if err != nil {
		return err
	}

	p.am.mtx.Lock()
	for _, addr := range known {
		p.am.known[key(addr)] = addr
	}
	for _, addr := range banned {
		p.am.banned[key(addr)] = addr
	}
	p.am.resortLocked()
	p.am.mtx.Unlock()
	return nil
}

// writeSizedAddresses writes a VarInt count followed by each address's wire
// encoding, matching the "size_and_(known_addresses)"/"size_and_(banned_addresses)"
// persisted file format.
func writeSizedAddresses(w io.Writer, addrs []*wire.NetAddress) error {
	if err := wire.WriteVarInt(w, uint64(len(addrs))); err != nil {
		return err
	}
	for _, addr := range addrs {
		if err := addr.BtcEncode(w); err != nil {
			return err
		}
	}
	return nil
}

func readSizedAddresses(r io.Reader) ([]*wire.NetAddress, error) {
	count, err := wire.ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	addrs := make([]*wire.NetAddress, count)
	for i := range addrs {
		addr := &wire.NetAddress{}
		if err := addr.BtcDecode(r); err != nil {
			return nil, err
		}
		addrs[i] = addr
	}
	return addrs, nil
}
