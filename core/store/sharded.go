package store

import (
	"encoding/binary"

	"github.com/aledsdavies/chronicle/core/invariant"
	"golang.org/x/crypto/blake2b"
)

// Sharded partitions a fixed list of backends by key hash. It is a view,
// not a global search: get/contains on the correct shard's neighbor never
// fall through to check other shards, even if a key happens to sit in the
// wrong one.
type Sharded struct {
	backends []Datastore
}

// NewSharded wraps N backends for hash-partitioned routing. N must be
// nonzero.
func NewSharded(backends ...Datastore) *Sharded {
	invariant.Precondition(len(backends) > 0, "Sharded requires at least one backend")
	return &Sharded{backends: backends}
}

// shardIndex routes key via blake2b-256, truncated to its first 8 bytes
// interpreted as a big-endian uint64, mod the backend count. (Version
// digests use SHA-1 instead; blake2b is used only here.)
func (s *Sharded) shardIndex(key string) int {
	sum := blake2b.Sum256([]byte(key))
	h := binary.BigEndian.Uint64(sum[:8])
	return int(h % uint64(len(s.backends)))
}

func (s *Sharded) Get(key string) ([]byte, bool, error) {
	return s.backends[s.shardIndex(key)].Get(key)
}

func (s *Sharded) Put(key string, value []byte) error {
	return s.backends[s.shardIndex(key)].Put(key, value)
}

func (s *Sharded) Delete(key string) error {
	return s.backends[s.shardIndex(key)].Delete(key)
}

func (s *Sharded) Contains(key string) (bool, error) {
	return s.backends[s.shardIndex(key)].Contains(key)
}

// Len sums every shard's length.
func (s *Sharded) Len() (int, error) {
	total := 0
	for _, b := range s.backends {
		n, err := b.Len()
		if err != nil {
			return 0, err
		}
		total += n
	}
	return total, nil
}
