// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tkeycoin/tkeyd/wire"
	"golang.org/x/sys/unix"
)

// persister: a timer coalesces saves within a 5-second window, and each
// flush writes to "<path>~", fsyncs, and atomically renames over
// "<path>". Absence of the file is not an error on load.
type persister struct {
	path  string
	chain *BlockChain

	mtx     sync.Mutex
	pending bool
	timer   *time.Timer
	closed  bool
}

func newPersister(path string, chain *BlockChain) *persister {
	return &persister{path: path, chain: chain}
}

// scheduleSave arms the coalescing timer if it is not already running.
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
		log.Errorf("failed to persist blockchain store: %v", err)
	}
}

// close flushes any pending save and prevents further ones from being
// scheduled.
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

// save writes the full header and transaction set to a temporary file,
// fsyncs it, and renames it over the real path.
func (p *persister) save() error {
	if p.path == "" {
		return nil
	}

	p.chain.chainLock.Lock()
	headers, txs := p.chain.index.snapshot()
	p.chain.chainLock.Unlock()

	tmpPath := p.path + "~"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(f)
	if err := writeSizedHeaders(bw, headers); err != nil {
		f.Close()
		return err
	}
	if err := writeSizedTxs(bw, txs); err != nil {
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

// load restores headers and transactions from the persisted file. A
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
	headers, err := readSizedHeaders(br)
	if err != nil {
		return err
	}
	txs, err := readSizedTxs(br)
	if err != nil {
		return err
	}

	p.chain.chainLock.Lock()
	p.chain.index.restore(headers, txs)
	p.chain.chainLock.Unlock()
	return nil
}

// writeSizedHeaders writes a VarInt count followed by each header's wire
// encoding and its Height as 8 little-endian bytes, the
// "size_and_(headers)" half of the persisted file format.
func writeSizedHeaders(w io.Writer, headers []wire.BlockHeader) error {
	if err := wire.WriteVarInt(w, uint64(len(headers))); err != nil {
		return err
	}
	for i := range headers {
		if err := headers[i].BtcEncode(w, 0); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, headers[i].Height); err != nil {
			return err
		}
	}
	return nil
}

func readSizedHeaders(r io.Reader) ([]wire.BlockHeader, error) {
	count, err := wire.ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	headers := make([]wire.BlockHeader, count)
	for i := range headers {
		if err := headers[i].BtcDecode(r, 0); err != nil {
			return nil, err
		}
		if err := binary.Read(r, binary.LittleEndian, &headers[i].Height); err != nil {
			return nil, err
		}
	}
	return headers, nil
}

// writeSizedTxs writes a VarInt count followed by each transaction's wire
// encoding, the "size_and_(transactions)" half of the persisted file format.
func writeSizedTxs(w io.Writer, txs []wire.MsgTx) error {
	if err := wire.WriteVarInt(w, uint64(len(txs))); err != nil {
		return err
	}
	for i := range txs {
		if err := txs[i].BtcEncode(w, 0); err != nil {
			return err
		}
	}
	return nil
}

func readSizedTxs(r io.Reader) ([]wire.MsgTx, error) {
	count, err := wire.ReadVarInt(r)
	if err != nil {
		return nil, err
	}

	txs := make([]wire.MsgTx, count)
	for i := range txs {
		if err := txs[i].BtcDecode(r, 0); err != nil {
			return nil, err
		}
	}
	return txs, nil
}

// dataFilePath joins a directory and the conventional store filename.
func dataFilePath(dir string) string {
	return filepath.Join(dir, "blockchain.dat")
}
