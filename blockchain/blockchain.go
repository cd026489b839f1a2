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

// Package blockchain implements the per-chain fork tree: one instance tracks
// one chain (a single shard chain, or the ordering chain) as a tree of
// blocks rooted at genesis, with a notion of the current longest chain.
//
// The tree is stored as an arena: a slice of nodes addressed by index, with
// each node carrying its parent's index, rather than the owning
// parent->Box<child> tree the reference implementation uses. This trades a
// small amount of memory (every node keeps a back-pointer) for O(1) parent
// lookup and O(depth) ancestor walks instead of an O(tree size) descent by
// value equality on every insert.
package blockchain

import (
	"github.com/pkg/errors"

	"github.com/erigontech/shardchain/chainblock"
	"github.com/erigontech/shardchain/kvstore"
	"github.com/erigontech/shardchain/shardhash"
)

// node is one arena entry. parentIdx is -1 only for the root.
type node struct {
	hash          shardhash.H256
	parentIdx     int
	children      []int
	height        int
	longestHeight int
}

// Blockchain is a fork tree over VersaBlocks for a single chain.
type Blockchain struct {
	store *kvstore.Database[chainblock.VersaBlock]

	nodes    []node
	hash2idx map[shardhash.H256]int
	rootIdx  int
	tipIdx   int
	k        int
}

// New creates a blockchain rooted at genesis. store is expected to already
// be open (namespaced per node by the caller, per SPEC_FULL §4.6); genesis is
// persisted into it here.
func New(genesis chainblock.VersaBlock, store *kvstore.Database[chainblock.VersaBlock], k int) (*Blockchain, error) {
	genesisHash := genesis.Hash()
	if err := store.Insert(genesisHash, genesis); err != nil {
		return nil, errors.Wrap(err, "persisting genesis block")
	}

	bc := &Blockchain{
		store:    store,
		nodes:    make([]node, 0, 64),
		hash2idx: make(map[shardhash.H256]int),
		k:        k,
	}
	bc.nodes = append(bc.nodes, node{hash: genesisHash, parentIdx: -1, height: 0, longestHeight: 0})
	bc.hash2idx[genesisHash] = 0
	bc.rootIdx = 0
	bc.tipIdx = 0
	return bc, nil
}

// Size reports the number of blocks tracked by this chain.
func (bc *Blockchain) Size() int {
	return len(bc.nodes)
}

// GenesisBlock returns the chain's genesis block.
func (bc *Blockchain) GenesisBlock() chainblock.VersaBlock {
	blk, _ := bc.store.Get(bc.nodes[bc.rootIdx].hash)
	return blk
}

// InsertBlockWithParent inserts block as a child of parent. It fails when
// the block is already present ("Block already exists"), when the parent is
// unknown ("Parent doesn't exist"), or when persisting the block to the
// store fails.
func (bc *Blockchain) InsertBlockWithParent(block chainblock.VersaBlock, parent shardhash.H256) (bool, error) {
	blkHash := block.Hash()
	if bc.store.ContainsKey(blkHash) {
		return false, errors.New("Block already exists")
	}

	parentIdx, ok := bc.hash2idx[parent]
	if !ok {
		return false, errors.New("Parent doesn't exist")
	}

	for _, childIdx := range bc.nodes[parentIdx].children {
		if bc.nodes[childIdx].hash == blkHash {
			return true, nil
		}
	}

	newIdx := len(bc.nodes)
	newHeight := bc.nodes[parentIdx].height + 1
	bc.nodes = append(bc.nodes, node{
		hash:          blkHash,
		parentIdx:     parentIdx,
		height:        newHeight,
		longestHeight: newHeight,
	})
	bc.nodes[parentIdx].children = append(bc.nodes[parentIdx].children, newIdx)
	bc.hash2idx[blkHash] = newIdx

	bc.propagateLongestHeight(parentIdx, newHeight)

	if err := bc.store.Insert(blkHash, block); err != nil {
		return false, errors.Wrap(err, "persisting block")
	}

	if newHeight > bc.nodes[bc.tipIdx].height {
		bc.tipIdx = newIdx
	}

	return true, nil
}

// propagateLongestHeight walks from idx up to the root, raising each
// ancestor's longestHeight to candidateHeight wherever that's an increase.
// It stops as soon as an ancestor's longestHeight is already >=
// candidateHeight, since every ancestor above it is guaranteed unaffected.
func (bc *Blockchain) propagateLongestHeight(idx, candidateHeight int) {
	for idx != -1 {
		if bc.nodes[idx].longestHeight >= candidateHeight {
			return
		}
		bc.nodes[idx].longestHeight = candidateHeight
		idx = bc.nodes[idx].parentIdx
	}
}

// Tip returns the hash of the current longest-chain tip.
func (bc *Blockchain) Tip() shardhash.H256 {
	return bc.nodes[bc.tipIdx].hash
}

// Height returns the height of the current longest-chain tip.
func (bc *Blockchain) Height() int {
	return bc.nodes[bc.tipIdx].height
}

// AllBlocksInLongestChain returns every hash from genesis to the current
// tip, in that order.
func (bc *Blockchain) AllBlocksInLongestChain() []shardhash.H256 {
	path, _ := bc.AllBlocksEndWithBlock(bc.nodes[bc.tipIdx].hash)
	return path
}

// AllBlocksEndWithBlock returns the path from genesis to hash, or false if
// hash is not tracked by this chain.
func (bc *Blockchain) AllBlocksEndWithBlock(hash shardhash.H256) ([]shardhash.H256, bool) {
	idx, ok := bc.hash2idx[hash]
	if !ok {
		return nil, false
	}
	depth := bc.nodes[idx].height
	path := make([]shardhash.H256, depth+1)
	for i, cur := depth, idx; cur != -1; i, cur = i-1, bc.nodes[cur].parentIdx {
		path[i] = bc.nodes[cur].hash
	}
	return path, true
}

// GetBlock returns the block with the given hash, if tracked.
func (bc *Blockchain) GetBlock(hash shardhash.H256) (chainblock.VersaBlock, bool) {
	return bc.store.Get(hash)
}

// GetBlockHeight returns the height of the block with the given hash, if
// tracked.
func (bc *Blockchain) GetBlockHeight(hash shardhash.H256) (int, bool) {
	idx, ok := bc.hash2idx[hash]
	if !ok {
		return 0, false
	}
	return bc.nodes[idx].height, true
}

// IsBlockConfirmed reports whether the block at hash has at least k
// confirmations: longestHeight - height >= k.
func (bc *Blockchain) IsBlockConfirmed(hash shardhash.H256, k int) bool {
	idx, ok := bc.hash2idx[hash]
	if !ok {
		return false
	}
	return bc.nodes[idx].longestHeight-bc.nodes[idx].height >= k
}

// GetForkingRate returns the ratio of the longest-chain length to the total
// number of blocks tracked by this chain.
func (bc *Blockchain) GetForkingRate() float64 {
	mainChainLen := float64(len(bc.AllBlocksInLongestChain()))
	total := float64(len(bc.nodes))
	return mainChainLen / total
}

// ConfirmedBlocksExcludingLastK returns the hashes on the current longest
// chain, from genesis up to (but not including) the last k blocks, the tip
// counted among those k. This is the per-shard half of
// Multichain.get_new_confirmed_shard_blocks: confirmed_shard_blocks[s] is
// exactly this prefix.
func (bc *Blockchain) ConfirmedBlocksExcludingLastK(k int) []shardhash.H256 {
	chain := bc.AllBlocksInLongestChain()
	if len(chain) <= k {
		return nil
	}
	out := make([]shardhash.H256, len(chain)-k)
	copy(out, chain[:len(chain)-k])
	return out
}
