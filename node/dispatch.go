// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package node

import (
	"io"

	"github.com/tkeycoin/tkeyd/peer"
	"github.com/tkeycoin/tkeyd/wire"
)

// runCommandLoop reads messages off p until the connection closes,
// dispatching each to the Peer method that answers it. This is the
// command-string switch Protocol.cpp drove from a single handler
// function; here it is one read loop per peer instead of a shared
// dispatch table, since each Peer already carries the local state
// (chain, addresses) the handlers need.
func (s *Server) runCommandLoop(p *peer.Peer) {
	defer p.Close("command loop exited")

	for {
		msg, err := p.Read()
		if err != nil {
			if err != io.EOF {
				log.Debugf("peer %d: read failed: %v", p.ID(), err)
			}
			return
		}
		p.Touch(false)

		if err := s.dispatch(p, msg); err != nil {
			log.Debugf("peer %d: handling %s failed: %v", p.ID(), msg.Command(), err)
			return
		}
	}
}

// dispatch routes one decoded message to the Peer method that answers
// it.
func (s *Server) dispatch(p *peer.Peer, msg wire.Message) error {
	switch m := msg.(type) {
	case *wire.MsgPing:
		return p.HandlePing(m.Nonce)
	case *wire.MsgPong:
		p.HandlePong(m.Nonce)
		return nil

	case *wire.MsgGetHeaders:
		return p.SendHeaders(m.BlockLocatorHashes, m.HashStop)
	case *wire.MsgHeaders:
		return p.ReceiveHeaders(m.Headers)

	case *wire.MsgGetBlocks:
		return p.SendBlocks(m.BlockLocatorHashes, m.HashStop)
	case *wire.MsgBlock:
		return p.ReceiveBlock(m)

	case *wire.MsgGetAddr:
		return p.SendAddress()
	case *wire.MsgAddr:
		p.ReceiveAddress(m.AddrList)
		return nil

	case *wire.MsgInv:
		return p.AskInventory(m.InvList)
	case *wire.MsgGetData:
		return p.ReceiveInventory(m.InvList)
	case *wire.MsgTx:
		added, err := s.cfg.Chain.AddTx(m)
		if err != nil {
			log.Debugf("peer %d: rejecting tx %s: %v", p.ID(), m.TxHash(), err)
			return nil
		}
		if added {
			hash := m.TxHash()
			s.AnnounceTx(&hash)
		}
		return nil

	case *wire.MsgSendHeaders:
		p.SetSendHeaders()
		return nil
	case *wire.MsgSendCmpct:
		p.SetCompact(m.Announce, m.Version)
		return nil
	case *wire.MsgFeeFilter:
		p.SetFeeFilter(m.MinFee)
		return nil

	case *wire.MsgVersion, *wire.MsgVerAck:
		// Already consumed during the handshake; a peer that resends one
		// after the fact is simply ignored.
		return nil

	default:
		return nil
	}
}
