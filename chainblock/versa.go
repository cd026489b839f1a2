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

package chainblock

import (
	"fmt"
	"time"

	"github.com/erigontech/shardchain/shardhash"
)

// Kind tags which chain a VersaBlock or VersaHash belongs to.
type Kind uint8

const (
	ShardKind Kind = iota
	OrderKind
)

// VersaBlock is a block from either the shard chains or the ordering chain.
// Exactly one of Shard/Order is meaningful, selected by Kind; this mirrors
// the original's ShardBlock(..) | OrderBlock(..) enum without requiring an
// interface{} payload.
type VersaBlock struct {
	Kind  Kind
	Shard ShardBlock
	Order OrderBlock
}

// NewVersaShardBlock wraps a ShardBlock as a VersaBlock.
func NewVersaShardBlock(b ShardBlock) VersaBlock {
	return VersaBlock{Kind: ShardKind, Shard: b}
}

// NewVersaOrderBlock wraps an OrderBlock as a VersaBlock.
func NewVersaOrderBlock(b OrderBlock) VersaBlock {
	return VersaBlock{Kind: OrderKind, Order: b}
}

// Hash returns the wrapped block's proof-of-work hash.
func (v VersaBlock) Hash() shardhash.H256 {
	if v.Kind == OrderKind {
		return v.Order.Hash
	}
	return v.Shard.Hash
}

// VerifyHash reports whether the wrapped block's hash is internally
// consistent with its header and nonce.
func (v VersaBlock) VerifyHash() bool {
	if v.Kind == OrderKind {
		return v.Order.VerifyHash()
	}
	return v.Shard.VerifyHash()
}

// GetShardID returns the wrapped block's header shard id. For an ordering
// block this is whatever ShardID its header carries (the miner sets its own
// shard id); no chain routing uses it for ordering blocks.
func (v VersaBlock) GetShardID() uint32 {
	if v.Kind == OrderKind {
		return v.Order.GetShardID()
	}
	return v.Shard.GetShardID()
}

// GetParent returns the hash this block claims as its parent on its own
// chain: ShardParent for a shard block, OrderParent for an ordering block.
func (v VersaBlock) GetParent() shardhash.H256 {
	if v.Kind == OrderKind {
		return v.Order.GetOrderParent()
	}
	return v.Shard.GetShardParent()
}

// GetMerkleRoot returns the wrapped block's transaction Merkle root, or
// false for an ordering block (which has none).
func (v VersaBlock) GetMerkleRoot() (shardhash.H256, bool) {
	if v.Kind == OrderKind {
		return shardhash.H256{}, false
	}
	return v.Shard.GetMerkleRoot(), true
}

// GetTimestamp returns the wrapped block's header timestamp.
func (v VersaBlock) GetTimestamp() time.Time {
	if v.Kind == OrderKind {
		return v.Order.GetTimestamp()
	}
	return v.Shard.GetTimestamp()
}

func (v VersaBlock) String() string {
	if v.Kind == OrderKind {
		return fmt.Sprintf("OrderBlock(%s)", v.Order.Header)
	}
	return fmt.Sprintf("ShardBlock(%s)", v.Shard.Header)
}

// VersaHash identifies a block by hash and the chain it belongs to. A bare
// H256 alone does not carry which chain it names, so every reference that
// crosses chain boundaries (parent pointers in network messages, orphan
// buffering) uses VersaHash instead.
type VersaHash struct {
	Kind Kind
	Hash shardhash.H256
}

// ShardHash builds a VersaHash naming a shard-chain block.
func ShardHash(h shardhash.H256) VersaHash {
	return VersaHash{Kind: ShardKind, Hash: h}
}

// OrderHash builds a VersaHash naming the ordering-chain block.
func OrderHash(h shardhash.H256) VersaHash {
	return VersaHash{Kind: OrderKind, Hash: h}
}

func (vh VersaHash) String() string {
	if vh.Kind == OrderKind {
		return fmt.Sprintf("OrderHash(%s)", vh.Hash)
	}
	return fmt.Sprintf("ShardHash(%s)", vh.Hash)
}
