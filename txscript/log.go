// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import "github.com/decred/slog"

// log is the package-level logger used to write messages. It defaults to
// the disabled backend so importers that never call UseLogger get no
// output rather than a panic.
var log = slog.Disabled

// UseLogger uses a specified Logger to output package logging info.
func UseLogger(logger slog.Logger) {
	log = logger
}
