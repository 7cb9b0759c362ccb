// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package node wires the peer transport, the chain store, and the address
// manager into a running daemon: it accepts inbound connections, dials the
// configured seeds, drives each connection's command loop, and announces
// locally originated transactions and blocks to every connected peer.
package node

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/tkeycoin/tkeyd/addrmgr"
	"github.com/tkeycoin/tkeyd/blockchain"
	"github.com/tkeycoin/tkeyd/chainhash"
	"github.com/tkeycoin/tkeyd/peer"
	"github.com/tkeycoin/tkeyd/wire"
)

// inboundHandshakeTimeout bounds how long an accepted connection has to
// complete its version/verack exchange before it is dropped.
const inboundHandshakeTimeout = 30 * time.Second

// Config bundles the dependencies and addresses a Server needs.
type Config struct {
	Chain     *blockchain.BlockChain
	Addrs     *addrmgr.AddrManager
	Net       wire.CurrencyNet
	UserAgent string
	Services  wire.ServiceFlag

	// ListenAddr is the TCP address the peer-to-peer listener binds, e.g.
	// ":9666". Empty disables inbound connections.
	ListenAddr string

	// SeedAddrs are dialed once at startup, the way connectToPeers's
	// hard-coded address list does; in this port it is operator-supplied
	// rather than compiled in.
	SeedAddrs []string
}

// Server is the running node: the listener, the peer registry, and the
// live set of connections reading and dispatching commands.
type Server struct {
	cfg     Config
	peerCfg *peer.Config
	manager *peer.Manager

	listener net.Listener
	wg       sync.WaitGroup
	quit     chan struct{}
}

// New returns a Server ready to Up.
func New(cfg Config) *Server {
	return &Server{
		cfg: cfg,
		peerCfg: &peer.Config{
			Chain:     cfg.Chain,
			Addrs:     cfg.Addrs,
			Net:       cfg.Net,
			UserAgent: cfg.UserAgent,
			Services:  cfg.Services,
		},
		manager: peer.NewManager(),
		quit:    make(chan struct{}),
	}
}

// Up starts the inbound listener (if configured) and dials every seed
// address once. It returns once both are underway; connection handling
// continues on background goroutines until Down is called.
func (s *Server) Up() error {
	if s.cfg.ListenAddr != "" {
		ln, err := net.Listen("tcp", s.cfg.ListenAddr)
		if err != nil {
			return fmt.Errorf("listen on %s: %w", s.cfg.ListenAddr, err)
		}
		s.listener = ln

		s.wg.Add(1)
		go s.acceptLoop()
	}

	s.connectToPeers()
	return nil
}

// Down closes the listener and every connected peer, then waits for the
// accept loop and every connection goroutine to return.
func (s *Server) Down() {
	close(s.quit)
	if s.listener != nil {
		s.listener.Close()
	}
	s.manager.CloseAll("node shutting down")
	s.wg.Wait()
}

// Manager returns the peer registry, for RPC actions and announcements
// that need to reach every connected peer.
func (s *Server) Manager() *peer.Manager { return s.manager }

// connectToPeers dials every configured seed once, the same one-shot
// fan-out connectToPeers performs at startup.
func (s *Server) connectToPeers() {
	for _, addr := range s.cfg.SeedAddrs {
		addr := addr
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			connector := peer.NewConnector(s.peerCfg, s.manager)
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			p, err := connector.Dial(ctx, addr)
			if err != nil {
				log.Warnf("dial %s failed: %v", addr, err)
				return
			}
			s.runCommandLoop(p)
		}()
	}
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.quit:
				return
			default:
				log.Errorf("accept failed: %v", err)
				return
			}
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleInbound(conn)
		}()
	}
}

// handleInbound completes the listener side of the version/verack
// handshake, registers the resulting peer, and hands it to the command
// loop. The initiator already sent its version by the time Accept returns
// this connection, so the listener reads that first, then answers with
// its own version and a verack, mirroring the symmetric exchange
// connector.go drives from the dialing side.
func (s *Server) handleInbound(conn net.Conn) {
	p := peer.NewPeer(conn, s.peerCfg, s.manager)

	if err := conn.SetReadDeadline(time.Now().Add(inboundHandshakeTimeout)); err != nil {
		conn.Close()
		return
	}

	var gotVersion, gotVerAck bool
	ourVersionSent := false
	for !gotVersion || !gotVerAck {
		msg, err := p.Read()
		if err != nil {
			log.Debugf("inbound handshake failed from %s: %v", conn.RemoteAddr(), err)
			conn.Close()
			return
		}
		switch m := msg.(type) {
		case *wire.MsgVersion:
			p.SetVersion(m.ProtocolVersion)
			gotVersion = true
			if !ourVersionSent {
				nonce := uint64(time.Now().UnixNano())
				version := buildVersionMessage(s.peerCfg, conn, nonce)
				if err := wire.WriteMessage(conn, version, wire.ProtocolVersion, s.cfg.Net); err != nil {
					conn.Close()
					return
				}
				if err := wire.WriteMessage(conn, wire.NewMsgVerAck(), wire.ProtocolVersion, s.cfg.Net); err != nil {
					conn.Close()
					return
				}
				ourVersionSent = true
			}
		case *wire.MsgVerAck:
			gotVerAck = true
		default:
		}
	}
	conn.SetReadDeadline(time.Time{})

	s.manager.Add(p)
	if err := p.InitialSetup(); err != nil {
		p.Close(fmt.Sprintf("initial setup failed: %v", err))
		return
	}
	s.runCommandLoop(p)
}

// buildVersionMessage mirrors connector.go's helper of the same name; node
// needs its own copy because the listener side of a handshake answers a
// version it just received rather than originating one before dialing.
func buildVersionMessage(cfg *peer.Config, conn net.Conn, nonce uint64) *wire.MsgVersion {
	now := time.Now()
	you := &wire.NetAddress{Timestamp: now, Services: wire.SFNodeNetwork}
	me := &wire.NetAddress{Timestamp: now, Services: cfg.Services}

	if tcpAddr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		you.IP = tcpAddr.IP
		you.Port = uint16(tcpAddr.Port)
	}
	if tcpAddr, ok := conn.LocalAddr().(*net.TCPAddr); ok {
		me.IP = tcpAddr.IP
		me.Port = uint16(tcpAddr.Port)
	}

	lastBlock := int32(-1)
	if cfg.Chain != nil {
		lastBlock = int32(cfg.Chain.TipHeight())
	}

	msg := wire.NewMsgVersion(me, you, nonce, lastBlock)
	if cfg.UserAgent != "" {
		msg.UserAgent = cfg.UserAgent
	}
	return msg
}

// AnnounceTx tells every connected peer about a locally originated or
// newly validated transaction.
func (s *Server) AnnounceTx(hash *chainhash.Hash) {
	item := wire.NewInvVect(wire.InvTypeTx, hash)
	s.manager.ForEach(func(p *peer.Peer) { p.SendInventory(item) })
}

// AnnounceBlock tells every connected peer about a newly connected block.
func (s *Server) AnnounceBlock(hash *chainhash.Hash) {
	item := wire.NewInvVect(wire.InvTypeBlock, hash)
	s.manager.ForEach(func(p *peer.Peer) { p.SendInventory(item) })
}
