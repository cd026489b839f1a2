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

// Package mempool implements the FIFO pool of pending transactions the
// miner drains and the network worker feeds.
package mempool

import (
	"sync"

	"github.com/erigontech/shardchain/kvstore"
	"github.com/erigontech/shardchain/shardhash"
	"github.com/erigontech/shardchain/txn"
)

// Mempool pairs a hash-addressed transaction store with a FIFO queue of
// hashes recording insertion order. Per SPEC_FULL §5 it is guarded by a
// single exclusive lock shared by every exported method; the miner and the
// network worker may both call into it concurrently.
type Mempool struct {
	mu sync.Mutex

	txMap   *kvstore.Database[txn.Transaction]
	txQueue []shardhash.H256
}

// New builds a Mempool backed by store, which the caller is expected to
// have already opened namespaced to this node.
func New(store *kvstore.Database[txn.Transaction]) *Mempool {
	return &Mempool{txMap: store}
}

// Size returns the number of transactions currently stored.
func (mp *Mempool) Size() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return mp.txMap.Len()
}

// QueueSize returns the number of hashes currently queued.
func (mp *Mempool) QueueSize() int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return len(mp.txQueue)
}

// InsertTx adds tx to the pool, returning false if its hash is already
// present (a duplicate insert is a no-op, not an error).
func (mp *Mempool) InsertTx(tx txn.Transaction) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	hash := tx.Hash()
	if mp.txMap.ContainsKey(hash) {
		return false
	}
	if err := mp.txMap.Insert(hash, tx); err != nil {
		return false
	}
	mp.txQueue = append(mp.txQueue, hash)
	return true
}

// Check reports whether hash is present in the pool.
func (mp *Mempool) Check(hash shardhash.H256) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return mp.txMap.ContainsKey(hash)
}

// GetTx returns the transaction stored under hash, if present.
func (mp *Mempool) GetTx(hash shardhash.H256) (txn.Transaction, bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	return mp.txMap.Get(hash)
}

// GetAllTxs returns every transaction currently stored, in no particular
// order.
func (mp *Mempool) GetAllTxs() ([]txn.Transaction, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	entries, err := mp.txMap.Iter()
	if err != nil {
		return nil, err
	}
	out := make([]txn.Transaction, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out, nil
}

// GetAllTxHash returns the hash of every transaction currently stored, in
// no particular order.
func (mp *Mempool) GetAllTxHash() ([]shardhash.H256, error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	entries, err := mp.txMap.Iter()
	if err != nil {
		return nil, err
	}
	out := make([]shardhash.H256, len(entries))
	for i, e := range entries {
		out[i] = e.Key
	}
	return out, nil
}

// GetTxs drains up to num transactions from the front of the queue,
// removing them from the map as they're drained. The request is satisfied
// iff the pool held at least num transactions (len(txQueue) >= num); a
// request for more than the pool holds returns everything it had along with
// false, reporting that the request was not fully satisfied. This is the
// Err case of Scenario D: GetTxs(10) on a pool holding 1 transaction drains
// that 1 and returns false, not true.
func (mp *Mempool) GetTxs(num int) ([]txn.Transaction, bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	enough := len(mp.txQueue) >= num
	if !enough {
		num = len(mp.txQueue)
	}

	txs := make([]txn.Transaction, 0, num)
	for i := 0; i < num && len(mp.txQueue) > 0; i++ {
		hash := mp.txQueue[0]
		mp.txQueue = mp.txQueue[1:]
		tx, ok := mp.txMap.Get(hash)
		if !ok {
			continue
		}
		_ = mp.txMap.Remove(hash)
		txs = append(txs, tx)
	}
	return txs, enough
}

// DeleteTxs removes every hash in hashes from both the map and the queue,
// e.g. after their transactions have been committed in a mined block.
func (mp *Mempool) DeleteTxs(hashes []shardhash.H256) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	toDelete := make(map[shardhash.H256]struct{}, len(hashes))
	for _, h := range hashes {
		toDelete[h] = struct{}{}
		_ = mp.txMap.Remove(h)
	}

	kept := mp.txQueue[:0]
	for _, h := range mp.txQueue {
		if _, del := toDelete[h]; !del {
			kept = append(kept, h)
		}
	}
	mp.txQueue = kept
}

// PopOneTx removes and returns the oldest queued transaction, if any.
func (mp *Mempool) PopOneTx() (txn.Transaction, bool) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if len(mp.txQueue) == 0 {
		return txn.Transaction{}, false
	}
	hash := mp.txQueue[0]
	mp.txQueue = mp.txQueue[1:]
	tx, ok := mp.txMap.Get(hash)
	if !ok {
		return txn.Transaction{}, false
	}
	_ = mp.txMap.Remove(hash)
	return tx, true
}
