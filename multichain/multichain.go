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

// Package multichain aggregates the single ordering chain and the S shard
// chains into one structure, dispatching inserts to the right chain by
// VersaHash variant and tracking which shard blocks are confirmed but not
// yet committed by an ordering block.
package multichain

import (
	"sort"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/pkg/errors"

	"github.com/erigontech/shardchain/blockchain"
	"github.com/erigontech/shardchain/chainblock"
	"github.com/erigontech/shardchain/shardhash"
)

// Multichain is the node's full view of every chain it tracks. Per
// SPEC_FULL §5, the multichain is guarded by a single exclusive lock: every
// exported method takes it, so callers never need their own synchronization
// around a Multichain.
type Multichain struct {
	mu sync.Mutex

	k           int
	orderChain  *blockchain.Blockchain
	shardChains []*blockchain.Blockchain

	confirmedShardBlocks [][]shardhash.H256
	longestOrderChain    []shardhash.H256
}

// New assembles a Multichain from an already-constructed order chain and a
// slice of shard chains indexed by shard id.
func New(orderChain *blockchain.Blockchain, shardChains []*blockchain.Blockchain, k int) *Multichain {
	return &Multichain{
		k:                    k,
		orderChain:           orderChain,
		shardChains:          shardChains,
		confirmedShardBlocks: make([][]shardhash.H256, len(shardChains)),
	}
}

// InsertBlockWithParent dispatches the insert to the order chain or the
// shard chain named by parent's variant. It is a fatal invariant violation
// (panics, as the original does) for a ShardBlock to be inserted under an
// OrderHash parent or vice versa: the two can never be confused by any
// correct caller, since the block's own Kind always matches the chain it
// belongs on.
func (m *Multichain) InsertBlockWithParent(block chainblock.VersaBlock, parent chainblock.VersaHash) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if block.Kind != parent.Kind {
		panic("multichain: block variant does not match parent hash variant")
	}

	switch parent.Kind {
	case chainblock.OrderKind:
		ok, err := m.orderChain.InsertBlockWithParent(block, parent.Hash)
		if err != nil {
			return false, err
		}
		m.longestOrderChain = m.orderChain.AllBlocksInLongestChain()
		return ok, nil

	default:
		shardID := int(block.GetShardID())
		if shardID < 0 || shardID >= len(m.shardChains) {
			return false, errors.Errorf("shard id %d out of range", shardID)
		}
		chain := m.shardChains[shardID]
		ok, err := chain.InsertBlockWithParent(block, parent.Hash)
		if err != nil {
			return false, err
		}
		// ConfirmedBlocksExcludingLastK's prefix includes genesis (as
		// original_source's Rust does), so a straight line of k+1 blocks
		// under genesis yields a confirmed set of length 2, not 1 — a
		// deliberate fidelity-to-original choice, not a bug to "fix" back
		// to the shorter reading of spec.md's property 8.
		m.confirmedShardBlocks[shardID] = chain.ConfirmedBlocksExcludingLastK(m.k)
		return ok, nil
	}
}

// AllBlocksInLongestOrderChain returns the ordering chain's longest path,
// genesis to tip.
func (m *Multichain) AllBlocksInLongestOrderChain() []shardhash.H256 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.orderChain.AllBlocksInLongestChain()
}

// AllBlocksInLongestShardChainByShard returns shard chain shardID's longest
// path, genesis to tip.
func (m *Multichain) AllBlocksInLongestShardChainByShard(shardID int) []shardhash.H256 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.shardChains[shardID].AllBlocksInLongestChain()
}

// AllOrderBlocksEndWithBlock returns the path from the ordering chain's
// genesis to hash, or false if hash is not an ordering-chain block.
func (m *Multichain) AllOrderBlocksEndWithBlock(hash shardhash.H256) ([]shardhash.H256, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.orderChain.AllBlocksEndWithBlock(hash)
}

// GetHighestOrderBlock returns the ordering chain's current tip.
func (m *Multichain) GetHighestOrderBlock() shardhash.H256 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.orderChain.Tip()
}

// GetHighestShardBlock returns shard chain shardID's current tip.
func (m *Multichain) GetHighestShardBlock(shardID int) shardhash.H256 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.shardChains[shardID].Tip()
}

// ShardTip pairs a shard chain's tip with its shard id.
type ShardTip struct {
	Hash    shardhash.H256
	ShardID int
}

// GetAllHighestShardBlocks returns every shard chain's current tip, indexed
// by shard id.
func (m *Multichain) GetAllHighestShardBlocks() []ShardTip {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]ShardTip, len(m.shardChains))
	for i, chain := range m.shardChains {
		out[i] = ShardTip{Hash: chain.Tip(), ShardID: i}
	}
	return out
}

// GetNewConfirmedShardBlocks returns the shard blocks that have reached k
// confirmations on their own shard chain but have not yet been committed by
// an ordering block. Results are sorted by (shard_id ascending, height
// ascending) for reproducibility, since the original leaves this ordering
// unspecified.
func (m *Multichain) GetNewConfirmedShardBlocks() []shardhash.H256 {
	m.mu.Lock()
	defer m.mu.Unlock()

	inOrderChain := mapset.NewThreadUnsafeSet(m.longestOrderChain...)

	type withHeight struct {
		hash    shardhash.H256
		shardID int
		height  int
	}
	var candidates []withHeight
	for shardID, confirmed := range m.confirmedShardBlocks {
		for _, h := range confirmed {
			if inOrderChain.Contains(h) {
				continue
			}
			height, _ := m.shardChains[shardID].GetBlockHeight(h)
			candidates = append(candidates, withHeight{hash: h, shardID: shardID, height: height})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].shardID != candidates[j].shardID {
			return candidates[i].shardID < candidates[j].shardID
		}
		return candidates[i].height < candidates[j].height
	})

	out := make([]shardhash.H256, len(candidates))
	for i, c := range candidates {
		out[i] = c.hash
	}
	return out
}

// GetOrderBlock returns the ordering block stored at hash. It panics if
// hash resolves to a ShardBlock: the ordering chain only ever holds
// ordering blocks, so that would indicate a prior insert-time invariant
// violation.
func (m *Multichain) GetOrderBlock(hash shardhash.H256) (chainblock.OrderBlock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blk, ok := m.orderChain.GetBlock(hash)
	if !ok {
		return chainblock.OrderBlock{}, false
	}
	if blk.Kind != chainblock.OrderKind {
		panic("multichain: non-order block exists in order chain")
	}
	return blk.Order, true
}

// GetShardBlockByShard returns the shard block stored at hash on shard
// chain shardID. It panics if hash resolves to an OrderBlock.
func (m *Multichain) GetShardBlockByShard(hash shardhash.H256, shardID int) (chainblock.ShardBlock, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	blk, ok := m.shardChains[shardID].GetBlock(hash)
	if !ok {
		return chainblock.ShardBlock{}, false
	}
	if blk.Kind != chainblock.ShardKind {
		panic("multichain: non-shard block exists in shard chain")
	}
	return blk.Shard, true
}

// GetOrderSize returns the number of blocks tracked by the ordering chain.
func (m *Multichain) GetOrderSize() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.orderChain.Size()
}

// GetShardSize returns the number of blocks tracked by shard chain shardID.
func (m *Multichain) GetShardSize(shardID int) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.shardChains[shardID].Size()
}

// GetOrderForkingRate returns the ordering chain's forking rate.
func (m *Multichain) GetOrderForkingRate() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.orderChain.GetForkingRate()
}

// GetShardForkingRateByShard returns shard chain shardID's forking rate.
func (m *Multichain) GetShardForkingRateByShard(shardID int) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.shardChains[shardID].GetForkingRate()
}
