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

package p2p

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/erigontech/shardchain/blockchain"
	"github.com/erigontech/shardchain/chainblock"
	"github.com/erigontech/shardchain/config"
	"github.com/erigontech/shardchain/kvstore"
	"github.com/erigontech/shardchain/multichain"
	"github.com/erigontech/shardchain/shardhash"
)

func newChain(t *testing.T, genesis chainblock.VersaBlock, k int) *blockchain.Blockchain {
	t.Helper()
	store, err := kvstore.Open[chainblock.VersaBlock](kvstore.Namespace(t.TempDir(), 0, 0, time.Now()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	bc, err := blockchain.New(genesis, store, k)
	require.NoError(t, err)
	return bc
}

func shardGenesis(shardID uint32) chainblock.ShardBlock {
	return chainblock.NewShardBlock(chainblock.Header{ShardID: shardID, Timestamp: time.Unix(0, 0)}, nil, 0)
}

func orderGenesis() chainblock.OrderBlock {
	return chainblock.NewOrderBlock(chainblock.Header{Timestamp: time.Unix(0, 0)}, nil, 0)
}

func shardBlock(shardID uint32, shardParent shardhash.H256, nonce uint32) chainblock.ShardBlock {
	h := chainblock.Header{ShardID: shardID, ShardParent: shardParent, Timestamp: time.Unix(int64(nonce), 0)}
	return chainblock.NewShardBlock(h, nil, nonce)
}

func newTestMultichain(t *testing.T, shardNum, k int) (*multichain.Multichain, []chainblock.ShardBlock) {
	t.Helper()
	order := orderGenesis()
	orderChain := newChain(t, chainblock.NewVersaOrderBlock(order), k)

	genesises := make([]chainblock.ShardBlock, shardNum)
	shardChains := make([]*blockchain.Blockchain, shardNum)
	for i := 0; i < shardNum; i++ {
		g := shardGenesis(uint32(i))
		genesises[i] = g
		shardChains[i] = newChain(t, chainblock.NewVersaShardBlock(g), k)
	}
	return multichain.New(orderChain, shardChains, k), genesises
}

type fakePeer struct {
	name string

	mu   sync.Mutex
	sent []Message
}

func (f *fakePeer) WriteMessage(msg Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakePeer) String() string { return f.name }

func (f *fakePeer) messages() []Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Message, len(f.sent))
	copy(out, f.sent)
	return out
}

type recordingBroadcaster struct {
	mu  sync.Mutex
	out []Message
}

func (r *recordingBroadcaster) Broadcast(msg Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.out = append(r.out, msg)
}

func (r *recordingBroadcaster) messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.out))
	copy(out, r.out)
	return out
}

func newTestLoop(mc *multichain.Multichain, shardNum int, bc Broadcaster) *workerLoop {
	w := &Worker{
		numWorkers:  1,
		multichain:  mc,
		broadcaster: bc,
		cfg:         config.Configuration{ShardNum: shardNum},
		log:         zap.NewNop().Sugar(),
	}
	return &workerLoop{w: w, blkBuff: make(map[chainblock.VersaHash][]chainblock.VersaBlock)}
}

func TestHandlePingRepliesWithPong(t *testing.T) {
	mc, _ := newTestMultichain(t, 1, 6)
	loop := newTestLoop(mc, 1, &recordingBroadcaster{})
	peer := &fakePeer{name: "peer"}

	loop.handle(Inbound{Msg: Ping("abc"), From: peer})

	require.Equal(t, []Message{Pong("abc")}, peer.messages())
}

func TestHandleNewBlockHashRequestsUnknownBlocks(t *testing.T) {
	mc, genesises := newTestMultichain(t, 1, 6)
	loop := newTestLoop(mc, 1, &recordingBroadcaster{})
	peer := &fakePeer{name: "peer"}

	unknown := shardhash.Random()
	loop.handle(Inbound{
		Msg: NewBlockHash([]chainblock.VersaHash{
			chainblock.ShardHash(genesises[0].Hash), // known
			chainblock.ShardHash(unknown),           // unknown
		}),
		From: peer,
	})

	sent := peer.messages()
	require.Len(t, sent, 1)
	require.Equal(t, KindGetBlocks, sent[0].Kind)
	require.Equal(t, []chainblock.VersaHash{chainblock.ShardHash(unknown)}, sent[0].Hashes)
}

func TestHandleNewBlockHashNoReplyWhenEverythingKnown(t *testing.T) {
	mc, genesises := newTestMultichain(t, 1, 6)
	loop := newTestLoop(mc, 1, &recordingBroadcaster{})
	peer := &fakePeer{name: "peer"}

	loop.handle(Inbound{
		Msg:  NewBlockHash([]chainblock.VersaHash{chainblock.ShardHash(genesises[0].Hash)}),
		From: peer,
	})

	require.Empty(t, peer.messages())
}

func TestHandleGetBlocksRepliesWithKnownBlocks(t *testing.T) {
	mc, genesises := newTestMultichain(t, 1, 6)
	loop := newTestLoop(mc, 1, &recordingBroadcaster{})
	peer := &fakePeer{name: "peer"}

	loop.handle(Inbound{
		Msg:  GetBlocks([]chainblock.VersaHash{chainblock.ShardHash(genesises[0].Hash)}),
		From: peer,
	})

	sent := peer.messages()
	require.Len(t, sent, 1)
	require.Equal(t, KindBlocks, sent[0].Kind)
	require.Len(t, sent[0].Blocks, 1)
	require.Equal(t, genesises[0].Hash, sent[0].Blocks[0].Hash())
}

// TestOrphanResolutionFlushesBufferedDescendants is Scenario 6 / 8.6: blocks
// a (genesis's child), b (a's child), c (b's child) arrive in reverse order.
// All three must end up in the chain with c as tip, and blk_buff must be
// empty once the BFS has flushed every descendant.
func TestOrphanResolutionFlushesBufferedDescendants(t *testing.T) {
	mc, genesises := newTestMultichain(t, 1, 0)
	loop := newTestLoop(mc, 1, &recordingBroadcaster{})

	a := shardBlock(0, genesises[0].Hash, 1)
	b := shardBlock(0, a.Hash, 2)
	c := shardBlock(0, b.Hash, 3)

	peer := &fakePeer{name: "peer"}
	loop.handle(Inbound{Msg: Blocks([]chainblock.VersaBlock{chainblock.NewVersaShardBlock(c)}), From: peer})
	loop.handle(Inbound{Msg: Blocks([]chainblock.VersaBlock{chainblock.NewVersaShardBlock(b)}), From: peer})
	loop.handle(Inbound{Msg: Blocks([]chainblock.VersaBlock{chainblock.NewVersaShardBlock(a)}), From: peer})

	require.Equal(t, c.Hash, mc.GetHighestShardBlock(0))
	require.Empty(t, loop.blkBuff, "every buffered orphan must be flushed once its ancestor arrives")
}

// TestBlocksBroadcastExactlyOnce is Scenario C: an OrderHash announcement for
// an unknown hash triggers a GetBlocks reply; delivering a new ordering block
// (a child of the order genesis) afterwards causes exactly one NewBlockHash
// broadcast.
func TestBlocksBroadcastExactlyOnce(t *testing.T) {
	mc, _ := newTestMultichain(t, 1, 6)
	order := orderGenesis()
	broadcaster := &recordingBroadcaster{}
	loop := newTestLoop(mc, 1, broadcaster)
	peer := &fakePeer{name: "peer"}

	unknownHash := shardhash.Random()
	loop.handle(Inbound{Msg: NewBlockHash([]chainblock.VersaHash{chainblock.OrderHash(unknownHash)}), From: peer})
	sent := peer.messages()
	require.Len(t, sent, 1)
	require.Equal(t, KindGetBlocks, sent[0].Kind)

	child := chainblock.NewOrderBlock(chainblock.Header{OrderParent: order.Hash, Timestamp: time.Unix(1, 0)}, nil, 1)
	loop.handle(Inbound{Msg: Blocks([]chainblock.VersaBlock{chainblock.NewVersaOrderBlock(child)}), From: peer})

	broadcasts := broadcaster.messages()
	require.Len(t, broadcasts, 1)
	require.Equal(t, KindNewBlockHash, broadcasts[0].Kind)
	require.Equal(t, []chainblock.VersaHash{chainblock.OrderHash(child.Hash)}, broadcasts[0].Hashes)
}

func TestHandleBlocksRejectsHashMismatch(t *testing.T) {
	mc, genesises := newTestMultichain(t, 1, 6)
	broadcaster := &recordingBroadcaster{}
	loop := newTestLoop(mc, 1, broadcaster)
	peer := &fakePeer{name: "peer"}

	tampered := shardBlock(0, genesises[0].Hash, 1)
	tampered.Nonce++ // now Hash no longer equals PowHash(header.Hash(), nonce)

	loop.handle(Inbound{Msg: Blocks([]chainblock.VersaBlock{chainblock.NewVersaShardBlock(tampered)}), From: peer})

	require.Empty(t, broadcaster.messages())
	require.Empty(t, peer.messages())
	require.Equal(t, genesises[0].Hash, mc.GetHighestShardBlock(0), "the tampered block must not be inserted")
}
