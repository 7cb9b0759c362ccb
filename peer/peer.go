// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package peer implements the per-connection state machine a handshaken
// node speaks over: ping/pong liveness, header and inventory relay, and
// the idle-unload timer that eventually drops a quiet connection.
package peer

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tkeycoin/tkeyd/addrmgr"
	"github.com/tkeycoin/tkeyd/blockchain"
	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/wire"
)

// pingInterval is how long a peer may sit idle before it is pinged to
// confirm it is still alive.
const pingInterval = 300 * time.Second

// shortUnloadDelay and longUnloadDelay are the two unload timeouts a
// connection can be touched with: a short one while a handshake or a
// single request is outstanding, a long one once the peer is idle and
// established.
const (
	shortUnloadDelay = 15 * time.Second
	longUnloadDelay  = 900 * time.Second
)

// inventoryAnnounceDelay is how long SendInventory batches announcements
// before flushing them in one or more inv messages.
const inventoryAnnounceDelay = 5 * time.Second

// maxInventoryPerMsg mirrors wire's own per-message inv cap (invvect.go's
// unexported maxInvPerMsg); SendInventory chunks its batch to the same
// limit so it never hands WriteMessage an oversized message.
const maxInventoryPerMsg = 50000

// headersFollowUpDelay is how long after a non-empty ReceiveHeaders this
// peer waits before asking for the next batch of headers.
const headersFollowUpDelay = 5 * time.Second

var nextPeerID uint64

// ID identifies one connected peer for the lifetime of the process.
type ID = uint64

// Config bundles the dependencies every Peer needs to answer requests
// against this node's local state.
type Config struct {
	Chain     *blockchain.BlockChain
	Addrs     *addrmgr.AddrManager
	Net       wire.CurrencyNet
	UserAgent string
	Services  wire.ServiceFlag
}

// Peer drives one handshaken connection: reading and dispatching wire
// messages is the caller's job (typically a node-level read loop); Peer
// supplies the behaviors that react to what comes in and the ones that
// fire on a timer.
type Peer struct {
	id      ID
	conn    net.Conn
	cfg     *Config
	manager *Manager

	writeMu sync.Mutex

	mu             sync.Mutex
	closed         bool
	version        int32
	sendHeaders    bool
	compactAnnounce bool
	compactVersion uint64
	pingNonce      uint64
	feeRate        int64
	pingTimer      *time.Timer
	unloadTimer    *time.Timer

	invMu      sync.Mutex
	invTimer   *time.Timer
	invPending map[wire.InvVect]struct{}
}

// NewPeer wraps conn in a Peer identified by a fresh id. The caller is
// expected to register it with a Manager and drive the handshake before
// calling InitialSetup.
func NewPeer(conn net.Conn, cfg *Config, manager *Manager) *Peer {
	return &Peer{
		id:         atomic.AddUint64(&nextPeerID, 1),
		conn:       conn,
		cfg:        cfg,
		manager:    manager,
		invPending: make(map[wire.InvVect]struct{}),
	}
}

// ID returns the peer's process-lifetime identifier.
func (p *Peer) ID() ID { return p.id }

// Conn returns the underlying connection.
func (p *Peer) Conn() net.Conn { return p.conn }

// Version returns the protocol version the peer announced, or 0 before
// the handshake completes.
func (p *Peer) Version() int32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.version
}

// SetVersion records the protocol version carried by the peer's version
// message.
func (p *Peer) SetVersion(v int32) {
	p.mu.Lock()
	p.version = v
	p.mu.Unlock()
}

// SetSendHeaders marks that this peer asked to receive new tips as
// headers messages rather than plain inv announcements.
func (p *Peer) SetSendHeaders() {
	p.mu.Lock()
	p.sendHeaders = true
	p.mu.Unlock()
}

// SendsHeaders reports whether SetSendHeaders has been called.
func (p *Peer) SendsHeaders() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sendHeaders
}

// SetCompact records the peer's compact-block announcement preference.
func (p *Peer) SetCompact(announce bool, version uint64) {
	p.mu.Lock()
	p.compactAnnounce = announce
	p.compactVersion = version
	p.mu.Unlock()
}

// SetFeeFilter records the minimum relay fee the peer asked to be
// filtered to.
func (p *Peer) SetFeeFilter(feeRate int64) {
	p.mu.Lock()
	p.feeRate = feeRate
	p.mu.Unlock()
}

// FeeFilter returns the fee rate floor SetFeeFilter last recorded.
func (p *Peer) FeeFilter() int64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.feeRate
}

// Touch (re)arms the idle-unload timer. temporary selects the short
// 15-second grace period used while a handshake or single exchange is in
// flight; otherwise the long 900-second idle timeout applies.
func (p *Peer) Touch(temporary bool) {
	delay := longUnloadDelay
	if temporary {
		delay = shortUnloadDelay
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.unloadTimer == nil {
		p.unloadTimer = time.AfterFunc(delay, func() { p.Close("idle timeout") })
		return
	}
	p.unloadTimer.Reset(delay)
}

// alive resets the ping timer, declaring the peer responsive. Called
// after InitialSetup and again every time a Pong matches its nonce.
func (p *Peer) alive() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if p.pingTimer == nil {
		p.pingTimer = time.AfterFunc(pingInterval, p.firePing)
		return
	}
	p.pingTimer.Reset(pingInterval)
}

// firePing runs when the ping timer expires: a still-outstanding nonce
// means the last ping went unanswered, so the connection is dropped;
// otherwise a fresh ping is sent and the timer rearmed.
func (p *Peer) firePing() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	if p.pingNonce != 0 {
		p.mu.Unlock()
		p.Close("pong timeout")
		return
	}
	nonce := uint64(time.Now().UnixNano())
	p.pingNonce = nonce
	p.pingTimer.Reset(pingInterval)
	p.mu.Unlock()

	if err := p.send(wire.NewMsgPing(nonce)); err != nil {
		p.Close(fmt.Sprintf("ping write failed: %v", err))
	}
}

// HandlePing answers an incoming ping with a pong carrying the same
// nonce.
func (p *Peer) HandlePing(nonce uint64) error {
	return p.send(wire.NewMsgPong(nonce))
}

// HandlePong validates nonce against the outstanding ping and, on a
// match, marks the peer alive again. A mismatch closes the connection.
func (p *Peer) HandlePong(nonce uint64) {
	p.mu.Lock()
	expected := p.pingNonce
	if expected != nonce {
		p.mu.Unlock()
		p.Close("wrong ping/pong nonce")
		return
	}
	p.pingNonce = 0
	p.mu.Unlock()
	p.alive()
}

// InitialSetup sends the scripted post-handshake preamble: announce
// headers-first relay and compact blocks, ping once, ask for headers (or
// the genesis block if this store is empty), set a fee filter floor, and
// ask for peer addresses.
func (p *Peer) InitialSetup() error {
	if err := p.send(wire.NewMsgSendHeaders()); err != nil {
		return err
	}
	if err := p.send(wire.NewMsgSendCmpct(false, 1)); err != nil {
		return err
	}

	nonce := uint64(time.Now().UnixNano())
	p.mu.Lock()
	p.pingNonce = nonce
	p.mu.Unlock()
	if err := p.send(wire.NewMsgPing(nonce)); err != nil {
		return err
	}

	if p.cfg.Chain.TipHeight() >= 0 {
		locator := p.cfg.Chain.GetBlockLocator()
		if err := p.AskHeaders(locator, chainhash.Hash{}); err != nil {
			return err
		}
	} else {
		getData := wire.NewMsgGetData()
		genesis := p.cfg.Chain.GenesisHash()
		if err := getData.AddInvVect(wire.NewInvVect(wire.InvTypeBlock, &genesis)); err != nil {
			return err
		}
		if err := p.send(getData); err != nil {
			return err
		}
	}

	if err := p.send(wire.NewMsgFeeFilter(1000)); err != nil {
		return err
	}
	if err := p.send(wire.NewMsgGetAddr()); err != nil {
		return err
	}

	p.Touch(false)
	p.alive()
	return nil
}

// AskHeaders sends a getheaders request built from locator and stopHash.
func (p *Peer) AskHeaders(locator []*chainhash.Hash, stopHash chainhash.Hash) error {
	msg := wire.NewMsgGetHeaders()
	msg.BlockLocatorHashes = locator
	msg.HashStop = stopHash
	return p.send(msg)
}

// ReceiveHeaders stores each header the peer sent, announces the newly
// added ones as block inventory, and — if anything was added — schedules
// a follow-up AskHeaders five seconds out to keep the sync moving.
func (p *Peer) ReceiveHeaders(headers []*wire.BlockHeader) error {
	var added []*wire.InvVect
	for _, h := range headers {
		if p.cfg.Chain.AddBlockHeader(*h) {
			hash := h.BlockHash()
			added = append(added, wire.NewInvVect(wire.InvTypeBlock, &hash))
		}
	}
	if len(added) == 0 {
		return nil
	}
	if err := p.AskInventory(added); err != nil {
		return err
	}

	time.AfterFunc(headersFollowUpDelay, func() {
		locator := p.cfg.Chain.GetBlockLocator()
		if locator == nil {
			return
		}
		if err := p.AskHeaders(locator, chainhash.Hash{}); err != nil {
			log.Debugf("peer %d: follow-up getheaders failed: %v", p.id, err)
		}
	})
	return nil
}

// SendHeaders replies to a getheaders request with up to the wire
// format's per-message cap of headers following locator, stopping at
// stopHash.
func (p *Peer) SendHeaders(locator []*chainhash.Hash, stopHash chainhash.Hash) error {
	headers := p.cfg.Chain.HeadersFrom(locator, stopHash)
	if len(headers) == 0 {
		return nil
	}
	msg := wire.NewMsgHeaders()
	for i := range headers {
		if err := msg.AddBlockHeader(&headers[i]); err != nil {
			return err
		}
	}
	return p.send(msg)
}

// AskBlocks sends a getblocks request built from locator and stopHash.
func (p *Peer) AskBlocks(locator []*chainhash.Hash, stopHash chainhash.Hash) error {
	msg := wire.NewMsgGetBlocks(&stopHash)
	msg.BlockLocatorHashes = locator
	return p.send(msg)
}

// ReceiveBlock hands a fully decoded block to the chain store.
func (p *Peer) ReceiveBlock(block *wire.MsgBlock) error {
	return p.cfg.Chain.AddBlock(block)
}

// SendBlocks replies to a getblocks request by transmitting every full
// block this store has along the header run from locator to stopHash.
func (p *Peer) SendBlocks(locator []*chainhash.Hash, stopHash chainhash.Hash) error {
	headers := p.cfg.Chain.HeadersFrom(locator, stopHash)
	for i := range headers {
		hash := headers[i].BlockHash()
		block, ok := p.cfg.Chain.Block(&hash)
		if !ok {
			continue
		}
		if err := p.send(block); err != nil {
			return err
		}
	}
	return nil
}

// AskAddress sends a getaddr request.
func (p *Peer) AskAddress() error {
	return p.send(wire.NewMsgGetAddr())
}

// ReceiveAddress registers every address the peer announced.
func (p *Peer) ReceiveAddress(addrs []*wire.NetAddress) {
	for _, addr := range addrs {
		p.cfg.Addrs.Reg(addr)
	}
}

// SendAddress replies to a getaddr request with up to 1000 known
// addresses.
func (p *Peer) SendAddress() error {
	msg := wire.NewMsgAddr()
	msg.AddrList = p.cfg.Addrs.Get(1000)
	return p.send(msg)
}

// AskInventory filters inventory this store already has out of list and,
// if anything remains, requests it with a getdata.
func (p *Peer) AskInventory(inventory []*wire.InvVect) error {
	if len(inventory) == 0 {
		return nil
	}
	want := p.cfg.Chain.FilterKnownInventory(inventory)
	if len(want) == 0 {
		return nil
	}
	msg := wire.NewMsgGetData()
	for _, iv := range want {
		if err := msg.AddInvVect(iv); err != nil {
			return err
		}
	}
	return p.send(msg)
}

// ReceiveInventory answers a getdata: transactions and blocks this store
// has are sent back individually, everything else is collected into a
// single notfound reply.
func (p *Peer) ReceiveInventory(inventory []*wire.InvVect) error {
	var notFound []*wire.InvVect
	for _, iv := range inventory {
		switch iv.Type {
		case wire.InvTypeTx:
			tx, ok := p.cfg.Chain.Tx(&iv.Hash)
			if !ok {
				notFound = append(notFound, iv)
				continue
			}
			if err := p.send(tx); err != nil {
				return err
			}
		case wire.InvTypeBlock:
			block, ok := p.cfg.Chain.Block(&iv.Hash)
			if !ok {
				notFound = append(notFound, iv)
				continue
			}
			if err := p.send(block); err != nil {
				return err
			}
		default:
			notFound = append(notFound, iv)
		}
	}
	if len(notFound) == 0 {
		return nil
	}
	msg := wire.NewMsgNotFound()
	for _, iv := range notFound {
		if err := msg.AddInvVect(iv); err != nil {
			return err
		}
	}
	return p.send(msg)
}

// SendInventory queues item for announcement. A batch of queued items is
// flushed as one or more inv messages inventoryAnnounceDelay after the
// first item in the batch arrives.
func (p *Peer) SendInventory(item *wire.InvVect) {
	p.invMu.Lock()
	defer p.invMu.Unlock()

	p.invPending[*item] = struct{}{}
	if p.invTimer == nil {
		p.invTimer = time.AfterFunc(inventoryAnnounceDelay, p.flushInventory)
	}
}

// flushInventory drains the pending announcement set into one or more inv
// messages capped at maxInventoryPerMsg entries each.
func (p *Peer) flushInventory() {
	p.invMu.Lock()
	pending := p.invPending
	p.invPending = make(map[wire.InvVect]struct{})
	p.invTimer = nil
	p.invMu.Unlock()

	if len(pending) == 0 {
		return
	}

	batch := wire.NewMsgInv()
	for iv := range pending {
		iv := iv
		if len(batch.InvList) >= maxInventoryPerMsg {
			if err := p.send(batch); err != nil {
				log.Debugf("peer %d: inv flush failed: %v", p.id, err)
				return
			}
			batch = wire.NewMsgInv()
		}
		_ = batch.AddInvVect(&iv)
	}
	if len(batch.InvList) > 0 {
		if err := p.send(batch); err != nil {
			log.Debugf("peer %d: inv flush failed: %v", p.id, err)
		}
	}
}

// send writes msg to the connection, serialized against concurrent
// writers (the ping timer, inventory flusher, and the read-loop's own
// reply all write from different goroutines).
func (p *Peer) send(msg wire.Message) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()
	return wire.WriteMessage(p.conn, msg, wire.ProtocolVersion, p.cfg.Net)
}

// Read blocks until the next full message arrives on the connection, or
// returns the error ReadMessage produced (including io.EOF on a clean
// close by the remote side).
func (p *Peer) Read() (wire.Message, error) {
	_, msg, err := wire.ReadMessage(p.conn, wire.ProtocolVersion, p.cfg.Net)
	return msg, err
}

// Close tears the connection down and deregisters the peer. It is safe
// to call more than once; only the first call has any effect.
func (p *Peer) Close(reason string) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	if p.pingTimer != nil {
		p.pingTimer.Stop()
	}
	if p.unloadTimer != nil {
		p.unloadTimer.Stop()
	}
	p.mu.Unlock()

	p.invMu.Lock()
	if p.invTimer != nil {
		p.invTimer.Stop()
	}
	p.invMu.Unlock()

	log.Debugf("peer %d: closing: %s", p.id, reason)
	err := p.conn.Close()
	if p.manager != nil {
		p.manager.remove(p.id)
	}
	return err
}
