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

// Package merkletree implements the recursive, range-splitting Merkle tree
// used for shard-block transaction sets. The construction recursively splits
// the leaf range in half rather than pairing up adjacent leaves bottom-up, so
// proofs are shaped differently from a standard library tree; Proof/Verify
// must stay in lockstep with the construction in Root.
package merkletree

import (
	"github.com/ugorji/go/codec"

	"github.com/erigontech/shardchain/shardhash"
)

// Tree is a Merkle tree over a fixed, ordered list of items of type T.
type Tree[T shardhash.Hashable] struct {
	root shardhash.H256
	data []T
}

// New builds a tree over data. An empty slice produces the zero-hash root,
// matching the behavior of an empty shard block's transaction set.
func New[T shardhash.Hashable](data []T) Tree[T] {
	items := make([]T, len(data))
	copy(items, data)

	if len(items) == 0 {
		return Tree[T]{root: shardhash.Zero, data: items}
	}

	leaves := make([]shardhash.H256, len(items))
	for i, it := range items {
		leaves[i] = it.Hash()
	}
	return Tree[T]{root: recursiveHash(leaves, 0, len(leaves)), data: items}
}

// Root returns the tree's Merkle root.
func (t Tree[T]) Root() shardhash.H256 {
	return t.root
}

// Data returns the tree's leaf items, in the order they were inserted.
func (t Tree[T]) Data() []T {
	out := make([]T, len(t.data))
	copy(out, t.data)
	return out
}

// Len reports the number of leaves.
func (t Tree[T]) Len() int {
	return len(t.data)
}

// Proof returns the Merkle proof for the leaf at index.
func (t Tree[T]) Proof(index int) []shardhash.H256 {
	if index < 0 || index >= len(t.data) {
		panic("merkletree: index out of range")
	}
	leaves := make([]shardhash.H256, len(t.data))
	for i, it := range t.data {
		leaves[i] = it.Hash()
	}
	return recursiveProof(leaves, index, 0, len(leaves))
}

// Verify checks that datum, combined with proof, reconstructs root, given
// the leaf's index and the total number of leaves (leafSize) the tree was
// built over.
func Verify(root, datum shardhash.H256, proof []shardhash.H256, index, leafSize int) bool {
	if index < 0 || index >= leafSize {
		panic("merkletree: index out of range")
	}
	generated := recursiveVerify(proof, index, 0, leafSize, 0, len(proof))
	proofIdx := proofIndexFor(index, 0, leafSize)
	return generated == root && proof[proofIdx] == datum
}

// MerkleProve is Verify specialized to this tree's own root and leaf count,
// for callers that already hold the Tree value.
func (t Tree[T]) MerkleProve(datum shardhash.H256, proof []shardhash.H256, index int) bool {
	return Verify(t.root, datum, proof, index, len(t.data))
}

// CodecEncodeSelf and CodecDecodeSelf implement codec.Selfer so shardcodec
// (backed by ugorji/go/codec) serializes a Tree as just its leaves: the root
// is a pure function of the leaves, so storing it too would only invite it
// to drift out of sync with them across a decode.
func (t Tree[T]) CodecEncodeSelf(e *codec.Encoder) {
	e.MustEncode(t.data)
}

func (t *Tree[T]) CodecDecodeSelf(d *codec.Decoder) {
	var data []T
	d.MustDecode(&data)
	*t = New(data)
}

func recursiveHash(leaves []shardhash.H256, start, end int) shardhash.H256 {
	size := end - start
	switch {
	case size <= 0:
		panic("merkletree: empty range")
	case size == 1:
		return leaves[start]
	case size == 2:
		return shardhash.Chash(leaves[start], leaves[end-1])
	default:
		mid := start + size/2
		left := recursiveHash(leaves, start, mid)
		right := recursiveHash(leaves, mid, end)
		return shardhash.Chash(left, right)
	}
}

func recursiveProof(leaves []shardhash.H256, index, start, end int) []shardhash.H256 {
	size := end - start
	if size <= 0 {
		panic("merkletree: empty range")
	}
	if index < start || index >= end {
		return []shardhash.H256{recursiveHash(leaves, start, end)}
	}
	if size == 1 {
		return []shardhash.H256{leaves[start]}
	}
	if size == 2 {
		return []shardhash.H256{leaves[start], leaves[start+1]}
	}
	mid := start + size/2
	res := recursiveProof(leaves, index, start, mid)
	res = append(res, recursiveProof(leaves, index, mid, end)...)
	return res
}

func recursiveVerify(proof []shardhash.H256, index, dataStart, dataEnd, proofStart, proofEnd int) shardhash.H256 {
	size := dataEnd - dataStart
	if size <= 0 {
		panic("merkletree: empty range")
	}
	switch {
	case size == 1:
		return proof[proofStart]
	case size == 2:
		return shardhash.Chash(proof[proofStart], proof[proofEnd-1])
	default:
		mid := dataStart + size/2
		if index < mid {
			left := recursiveVerify(proof, index, dataStart, mid, proofStart, proofEnd-1)
			right := proof[proofEnd-1]
			return shardhash.Chash(left, right)
		}
		left := proof[proofStart]
		right := recursiveVerify(proof, index, mid, dataEnd, proofStart+1, proofEnd)
		return shardhash.Chash(left, right)
	}
}

func proofIndexFor(index, start, end int) int {
	size := end - start
	if size <= 0 {
		panic("merkletree: empty range")
	}
	if size == 1 {
		return 0
	}
	mid := start + size/2
	if index < mid {
		return proofIndexFor(index, start, mid)
	}
	return proofIndexFor(index, mid, end) + 1
}
