// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package addrmgr

import (
	"net"
	"sort"
	"strconv"

	"github.com/tkeycoin/tkeyd/wire"
)

// key returns the (ip, port) string an address is keyed by across the
// known, banned, and failed sets.
func key(addr *wire.NetAddress) string {
	return net.JoinHostPort(addr.IP.String(), strconv.Itoa(int(addr.Port)))
}

// sortByTimeDesc sorts a slice of addresses most-recently-seen first, the
// ordering the sorted vector behind Get(n) is maintained in.
func sortByTimeDesc(addrs []*wire.NetAddress) {
	sort.Slice(addrs, func(i, j int) bool {
		return addrs[i].Timestamp.After(addrs[j].Timestamp)
	})
}

// cloneAddr returns a shallow copy of addr so callers handed entries out of
// the manager's sets can't mutate this package's bookkeeping.
func cloneAddr(addr *wire.NetAddress) *wire.NetAddress {
	cp := *addr
	ip := make(net.IP, len(addr.IP))
	copy(ip, addr.IP)
	cp.IP = ip
	return &cp
}
