package mempool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/shardchain/kvstore"
	"github.com/erigontech/shardchain/shardhash"
	"github.com/erigontech/shardchain/txn"
)

func newTestMempool(t *testing.T) *Mempool {
	t.Helper()
	store, err := kvstore.Open[txn.Transaction](kvstore.Namespace(t.TempDir(), 0, 0, time.Now()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return New(store)
}

func tx(flag txn.Flag) txn.Transaction {
	return txn.Transaction{Flag: flag}
}

func TestInsertDuplicateTxYieldsOneStored(t *testing.T) {
	mp := newTestMempool(t)
	same := tx(txn.Initial)

	for i := 0; i < 5; i++ {
		mp.InsertTx(same)
	}

	require.Equal(t, 1, mp.Size())
	require.Equal(t, 1, mp.QueueSize())

	txs, enough := mp.GetTxs(10)
	require.False(t, enough)
	require.Len(t, txs, 1)
}

func TestGetTxsFIFOOrder(t *testing.T) {
	mp := newTestMempool(t)
	a := txn.Transaction{Flag: txn.Initial, Outputs: []txn.UtxoOutput{{Value: 1}}}
	b := txn.Transaction{Flag: txn.Initial, Outputs: []txn.UtxoOutput{{Value: 2}}}
	c := txn.Transaction{Flag: txn.Initial, Outputs: []txn.UtxoOutput{{Value: 3}}}

	require.True(t, mp.InsertTx(a))
	require.True(t, mp.InsertTx(b))
	require.True(t, mp.InsertTx(c))

	txs, enough := mp.GetTxs(2)
	require.True(t, enough)
	require.Len(t, txs, 2)
	require.Equal(t, a.Hash(), txs[0].Hash())
	require.Equal(t, b.Hash(), txs[1].Hash())

	require.Equal(t, 1, mp.QueueSize())
}

func TestDeleteTxs(t *testing.T) {
	mp := newTestMempool(t)
	a := txn.Transaction{Flag: txn.Initial, Outputs: []txn.UtxoOutput{{Value: 1}}}
	b := txn.Transaction{Flag: txn.Initial, Outputs: []txn.UtxoOutput{{Value: 2}}}
	mp.InsertTx(a)
	mp.InsertTx(b)

	mp.DeleteTxs([]shardhash.H256{a.Hash()})
	require.Equal(t, 1, mp.Size())
	require.False(t, mp.Check(a.Hash()))
	require.True(t, mp.Check(b.Hash()))
}

func TestPopOneTx(t *testing.T) {
	mp := newTestMempool(t)
	_, ok := mp.PopOneTx()
	require.False(t, ok)

	mp.InsertTx(tx(txn.Initial))
	popped, ok := mp.PopOneTx()
	require.True(t, ok)
	require.Equal(t, txn.Initial, popped.Flag)
	require.Equal(t, 0, mp.Size())
}

func TestGetAllTxHash(t *testing.T) {
	mp := newTestMempool(t)
	a := txn.Transaction{Flag: txn.Initial, Outputs: []txn.UtxoOutput{{Value: 1}}}
	mp.InsertTx(a)

	hashes, err := mp.GetAllTxHash()
	require.NoError(t, err)
	require.Equal(t, a.Hash(), hashes[0])
}
