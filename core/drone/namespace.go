package drone

import (
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/sha3"
)

// deriveNamespace computes a short per-drone tag mixed into every envelope
// a Drone writes: a fixed-size fingerprint of "which drone wrote this",
// useful for replication diagnostics. HKDF-SHA3 over a domain-specific
// info string keeps the derivation deterministic per drone id. This is not
// a security boundary, just a debug-friendly tag, so a 4-byte output is
// plenty.
func deriveNamespace(droneID string) ([4]byte, error) {
	var ns [4]byte
	info := []byte("chronicle/envelope/namespace/v1")
	kdf := hkdf.New(sha3.New256, []byte(droneID), nil, info)
	if _, err := io.ReadFull(kdf, ns[:]); err != nil {
		return ns, fmt.Errorf("deriving drone namespace: %w", err)
	}
	return ns, nil
}

// Namespace returns d's envelope namespace tag as lowercase hex, for
// diagnostics.
func (d *Drone) Namespace() string {
	return hex.EncodeToString(d.namespace[:])
}

// EnvelopeNamespace extracts the namespace tag from a raw stored envelope
// without needing to know which Drone wrote it, so provenance can be
// reported on arbitrary stored bytes.
func EnvelopeNamespace(raw []byte) (string, bool) {
	if len(raw) < len(magic)+4 {
		return "", false
	}
	return hex.EncodeToString(raw[len(magic) : len(magic)+4]), true
}
