// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/tkeycoin/tkeyd/blockchain"
	"github.com/tkeycoin/tkeyd/blockchain/indexers"
	"github.com/tkeycoin/tkeyd/chaincfg"
	"github.com/tkeycoin/tkeyd/node"
	"github.com/tkeycoin/tkeyd/peer"
	"github.com/tkeycoin/tkeyd/rpc"
)

// rpcActions builds the small fixed action set this daemon registers on
// its rpc.Server, the concrete population rpc.Server.Config.Actions was
// left empty for (see DESIGN.md's rpc package entry). addrIndex is nil
// when the daemon was started without a data directory to keep one in.
func rpcActions(srv *node.Server, chain *blockchain.BlockChain, params *chaincfg.Params, addrIndex *indexers.AddrIndex) map[string]rpc.ActionFunc {
	return map[string]rpc.ActionFunc{
		"getinfo": func(json.RawMessage) (interface{}, error) {
			return map[string]interface{}{
				"version":   defaultUserAgent,
				"height":    chain.TipHeight(),
				"peers":     srv.Manager().Count(),
				"userAgent": defaultUserAgent,
			}, nil
		},
		"getpeerinfo": func(json.RawMessage) (interface{}, error) {
			var out []map[string]interface{}
			srv.Manager().ForEach(func(p *peer.Peer) {
				out = append(out, map[string]interface{}{
					"id":      p.ID(),
					"addr":    p.Conn().RemoteAddr().String(),
					"version": p.Version(),
				})
			})
			return out, nil
		},
		"getblockchaininfo": func(json.RawMessage) (interface{}, error) {
			now := time.Now()
			deployments := map[string]string{}
			for version, ds := range params.Deployments {
				for i := range ds {
					d := ds[i]
					state := chain.DeploymentState(params, &d, now)
					deployments[fmt.Sprintf("v%d-bit%d", version, d.BitNumber)] = state.String()
				}
			}
			return map[string]interface{}{
				"height":      chain.TipHeight(),
				"genesis":     chain.GenesisHash().String(),
				"deployments": deployments,
			}, nil
		},
		"getaddresstxs": func(params json.RawMessage) (interface{}, error) {
			if addrIndex == nil {
				return nil, fmt.Errorf("address index not enabled")
			}
			var req struct {
				PkScript string `json:"pkScript"`
			}
			if err := json.Unmarshal(params, &req); err != nil {
				return nil, fmt.Errorf("decoding params: %w", err)
			}
			pkScript, err := hex.DecodeString(req.PkScript)
			if err != nil {
				return nil, fmt.Errorf("pkScript: %w", err)
			}
			hashes, err := addrIndex.TxsForScript(pkScript)
			if err != nil {
				return nil, err
			}
			out := make([]string, len(hashes))
			for i, h := range hashes {
				out[i] = h.String()
			}
			return out, nil
		},
	}
}
