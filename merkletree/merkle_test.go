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

package merkletree

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/shardchain/shardcodec"
	"github.com/erigontech/shardchain/shardhash"
	"github.com/erigontech/shardchain/txn"
)

func sampleTxs(n int) []txn.Transaction {
	out := make([]txn.Transaction, n)
	for i := range out {
		out[i] = txn.Transaction{Flag: txn.Flag(i % 6)}
	}
	return out
}

func TestNewEmptyTreeHasZeroRoot(t *testing.T) {
	tree := New[txn.Transaction](nil)
	require.Equal(t, shardhash.Zero, tree.Root())
	require.Equal(t, 0, tree.Len())
}

func TestRootDeterministicForSameData(t *testing.T) {
	txs := sampleTxs(5)
	t1 := New(txs)
	t2 := New(txs)
	require.Equal(t, t1.Root(), t2.Root())
}

func TestRootChangesWithLeafOrder(t *testing.T) {
	txs := sampleTxs(4)
	reordered := []txn.Transaction{txs[1], txs[0], txs[2], txs[3]}
	require.NotEqual(t, New(txs).Root(), New(reordered).Root())
}

func TestProofVerifiesEveryLeaf(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 8, 13} {
		txs := sampleTxs(n)
		tree := New(txs)
		for i, tx := range txs {
			proof := tree.Proof(i)
			require.True(t, tree.MerkleProve(tx.Hash(), proof, i), "leaf %d of %d", i, n)
		}
	}
}

func TestVerifyRejectsWrongDatum(t *testing.T) {
	txs := sampleTxs(5)
	tree := New(txs)
	proof := tree.Proof(2)
	require.False(t, tree.MerkleProve(txs[3].Hash(), proof, 2))
}

func TestVerifyRejectsTamperedProof(t *testing.T) {
	txs := sampleTxs(6)
	tree := New(txs)
	proof := tree.Proof(4)
	proof[0] = shardhash.Hash([]byte("tampered"))
	require.False(t, tree.MerkleProve(txs[4].Hash(), proof, 4))
}

func TestProofPanicsOnOutOfRangeIndex(t *testing.T) {
	tree := New(sampleTxs(3))
	require.Panics(t, func() { tree.Proof(3) })
	require.Panics(t, func() { tree.Proof(-1) })
}

func TestCodecRoundTripRebuildsRoot(t *testing.T) {
	txs := sampleTxs(4)
	tree := New(txs)

	buf, err := shardcodec.Marshal(tree)
	require.NoError(t, err)

	var decoded Tree[txn.Transaction]
	require.NoError(t, shardcodec.Unmarshal(buf, &decoded))

	require.Equal(t, tree.Root(), decoded.Root())
	require.Equal(t, tree.Data(), decoded.Data())
}
