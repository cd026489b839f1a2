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

// Package chainblock defines the block types shared by every chain in the
// system: the common header, the two block kinds (shard, ordering), and the
// VersaBlock/VersaHash tagged unions that let the rest of the node treat
// either kind uniformly where it needs to.
package chainblock

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/erigontech/shardchain/shardhash"
)

// Header is the portion of a block shared by both shard and ordering
// blocks: which shard it belongs to, the tips of both chains it built on,
// the Merkle root of its content, and its creation time.
type Header struct {
	ShardID     uint32
	OrderParent shardhash.H256
	ShardParent shardhash.H256
	MerkleRoot  shardhash.H256
	Timestamp   time.Time
}

// infoHash returns the two hashes (timestamp, shard id) that Hash combines
// into the header's info hash. It is unexported and used only by Hash.
func (h Header) infoHash() []shardhash.H256 {
	timeHash := shardhash.Hash([]byte(h.Timestamp.String()))
	var shardIDBytes [4]byte
	binary.BigEndian.PutUint32(shardIDBytes[:], h.ShardID)
	shardIDHash := shardhash.Hash(shardIDBytes[:])
	return []shardhash.H256{timeHash, shardIDHash}
}

// Hash is the canonical header hash: multi_hash(info_hash, order_parent,
// shard_parent, merkle_root), where info_hash itself is
// multi_hash(hash(timestamp_text), hash(shard_id_be_bytes)).
func (h Header) Hash() shardhash.H256 {
	info := shardhash.MultiHash(h.infoHash())
	return shardhash.MultiHash([]shardhash.H256{info, h.OrderParent, h.ShardParent, h.MerkleRoot})
}

func (h Header) String() string {
	return fmt.Sprintf("Header(shard_id: %d, hash: %s)", h.ShardID, h.Hash())
}
