// Copyright 2021 The Erigon Authors
// (original work)
// Copyright 2026 The Shardchain Authors
// (modifications)
// This file is part of Shardchain.
//
// Shardchain is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Shardchain is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Shardchain. If not, see <http://www.gnu.org/licenses/>.

// Package shardhash provides the 32-byte content identifier (H256) shared by
// every chain, block, and transaction in the system, plus the two hash
// combinators (multi_hash, pow_hash) the rest of the node is built on.
package shardhash

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	crand "github.com/maticnetwork/crand"
)

// Size is the length in bytes of an H256.
const Size = 32

// H256 is a 32-byte content identifier with lexicographic (big-endian byte)
// ordering. PoW difficulty comparisons rely on this ordering; fork-choice
// ties are broken by arrival order, not by hash.
type H256 [Size]byte

// Hashable is implemented by anything with a canonical H256 identity.
type Hashable interface {
	Hash() H256
}

// Zero is the all-zero hash, used as the default/sentinel parent for genesis
// headers and for the Configuration zero-value.
var Zero H256

// FromBytes copies b into an H256, left-padding with zeros if b is shorter
// than Size and truncating if it is longer.
func FromBytes(b []byte) H256 {
	var h H256
	if len(b) >= Size {
		copy(h[:], b[len(b)-Size:])
	} else {
		copy(h[Size-len(b):], b)
	}
	return h
}

// Bytes returns the hash as a byte slice.
func (h H256) Bytes() []byte {
	out := make([]byte, Size)
	copy(out, h[:])
	return out
}

// String renders the hash as lowercase hex, for logging.
func (h H256) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether h is the all-zero hash.
func (h H256) IsZero() bool {
	return h == Zero
}

// Cmp orders two hashes lexicographically: -1 if h < other, 0 if equal, 1 if
// h > other.
func (h H256) Cmp(other H256) int {
	return bytes.Compare(h[:], other[:])
}

// Less reports h < other under lexicographic order.
func (h H256) Less(other H256) bool {
	return h.Cmp(other) < 0
}

// MeetsTarget reports whether h satisfies a PoW difficulty target, i.e.
// h <= target under unsigned big-endian order.
func (h H256) MeetsTarget(target H256) bool {
	return h.Cmp(target) <= 0
}

// Hash computes the SHA-256 digest of arbitrary bytes. SHA-256 is treated as
// a library primitive (crypto/sha256) rather than part of the domain stack.
func Hash(data []byte) H256 {
	return sha256.Sum256(data)
}

// MultiHash concatenates a list of hashes, in order, and hashes the result.
// It is order-sensitive: multi_hash([a, b]) != multi_hash([b, a]) in general.
func MultiHash(hs []H256) H256 {
	buf := make([]byte, 0, len(hs)*Size)
	for _, h := range hs {
		buf = append(buf, h[:]...)
	}
	return Hash(buf)
}

// Chash combines exactly two hashes the same way MultiHash would; it exists
// as its own function because the Merkle tree's recursive construction calls
// it at every internal node and naming the 2-ary case separately matches the
// original ShardingBitcoin source this is ported from.
func Chash(a, b H256) H256 {
	return MultiHash([]H256{a, b})
}

// PowHash is the proof-of-work hash: the header hash concatenated with the
// big-endian bytes of a 32-bit nonce, then hashed. A block's claimed hash
// must equal PowHash(header.Hash(), nonce) — this is re-verified on every
// block received from the network.
func PowHash(headerHash H256, nonce uint32) H256 {
	var nonceBytes [4]byte
	binary.BigEndian.PutUint32(nonceBytes[:], nonce)
	buf := make([]byte, 0, Size+4)
	buf = append(buf, headerHash[:]...)
	buf = append(buf, nonceBytes[:]...)
	return Hash(buf)
}

// RandomNonce draws a uniformly random 32-bit nonce. crand is a drop-in,
// mutex-guarded replacement for math/rand's package-level functions, used
// here instead of a per-goroutine math/rand.Rand so that any goroutine can
// call it without holding a generator of its own.
func RandomNonce() uint32 {
	return crand.Uint32()
}

// Random returns a uniformly random H256, used for test fixtures.
func Random() H256 {
	var h H256
	_, _ = crand.Read(h[:])
	return h
}
