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
	"time"

	"github.com/erigontech/shardchain/merkletree"
	"github.com/erigontech/shardchain/shardhash"
	"github.com/erigontech/shardchain/txn"
)

// Info is the read-only view over a header's fields shared by both block
// kinds. ShardBlock and OrderBlock both satisfy it by delegating to their
// embedded Header.
type Info interface {
	GetShardID() uint32
	GetOrderParent() shardhash.H256
	GetShardParent() shardhash.H256
	GetMerkleRoot() shardhash.H256
	GetTimestamp() time.Time
}

// ShardBlock is a block on one of the S shard chains: a header plus a set
// of transactions, committed to by MerkleRoot.
type ShardBlock struct {
	Header Header
	Txs    merkletree.Tree[txn.Transaction]
	Hash   shardhash.H256
	Nonce  uint32
}

// NewShardBlock assembles a ShardBlock, computing both the transaction
// Merkle tree and the proof-of-work hash from header and nonce. Callers are
// expected to have already set header.MerkleRoot to txs's tree root.
func NewShardBlock(header Header, txs []txn.Transaction, nonce uint32) ShardBlock {
	tree := merkletree.New(txs)
	return ShardBlock{
		Header: header,
		Txs:    tree,
		Hash:   shardhash.PowHash(header.Hash(), nonce),
		Nonce:  nonce,
	}
}

func (b ShardBlock) GetShardID() uint32            { return b.Header.ShardID }
func (b ShardBlock) GetOrderParent() shardhash.H256 { return b.Header.OrderParent }
func (b ShardBlock) GetShardParent() shardhash.H256 { return b.Header.ShardParent }
func (b ShardBlock) GetMerkleRoot() shardhash.H256  { return b.Header.MerkleRoot }
func (b ShardBlock) GetTimestamp() time.Time        { return b.Header.Timestamp }

// VerifyHash reports whether b.Hash is consistent with its header and nonce.
func (b ShardBlock) VerifyHash() bool {
	return shardhash.PowHash(b.Header.Hash(), b.Nonce) == b.Hash
}

// OrderBlock is a block on the single global ordering chain: a header plus
// the set of shard-block hashes it commits to the canonical order.
type OrderBlock struct {
	Header               Header
	ConfirmedShardBlocks []shardhash.H256
	Hash                 shardhash.H256
	Nonce                uint32
}

// NewOrderBlock assembles an OrderBlock, computing its proof-of-work hash
// from header and nonce.
func NewOrderBlock(header Header, confirmed []shardhash.H256, nonce uint32) OrderBlock {
	cp := make([]shardhash.H256, len(confirmed))
	copy(cp, confirmed)
	return OrderBlock{
		Header:               header,
		ConfirmedShardBlocks: cp,
		Hash:                 shardhash.PowHash(header.Hash(), nonce),
		Nonce:                nonce,
	}
}

func (b OrderBlock) GetShardID() uint32            { return b.Header.ShardID }
func (b OrderBlock) GetOrderParent() shardhash.H256 { return b.Header.OrderParent }
func (b OrderBlock) GetShardParent() shardhash.H256 { return b.Header.ShardParent }
func (b OrderBlock) GetMerkleRoot() shardhash.H256  { return b.Header.MerkleRoot }
func (b OrderBlock) GetTimestamp() time.Time        { return b.Header.Timestamp }

// VerifyHash reports whether b.Hash is consistent with its header and nonce.
func (b OrderBlock) VerifyHash() bool {
	return shardhash.PowHash(b.Header.Hash(), b.Nonce) == b.Hash
}
