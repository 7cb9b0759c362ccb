// Copyright (c) 2026 The TKEY developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainhash

import (
	"crypto/sha256"
	"hash"
)

// HashWriter is an incremental double-SHA-256 accumulator. Callers stream
// bytes into it with Write and retrieve the digest with Hash; the digest is
// computed lazily and cached until the next Write invalidates it. This
// mirrors the HashStreamBuffer collaborator from the reference
// implementation: bytes are fed into a running single-SHA-256 state, and
// Hash finalizes that state, then hashes the 32-byte result a second time.
type HashWriter struct {
	h      hash.Hash
	valid  bool
	cached Hash
}

// NewHashWriter returns an empty HashWriter ready to accept Write calls.
func NewHashWriter() *HashWriter {
	return &HashWriter{h: sha256.New()}
}

// Write implements io.Writer. Every call invalidates any cached digest.
func (w *HashWriter) Write(p []byte) (int, error) {
	w.valid = false
	return w.h.Write(p)
}

// Hash returns the double-SHA-256 digest of everything written so far. The
// result is cached; a subsequent Write call invalidates the cache.
func (w *HashWriter) Hash() Hash {
	if w.valid {
		return w.cached
	}
	first := w.h.Sum(nil)
	w.cached = sha256.Sum256(first)
	w.valid = true
	return w.cached
}

// Reset clears the writer back to its initial empty state.
func (w *HashWriter) Reset() {
	w.h.Reset()
	w.valid = false
}
