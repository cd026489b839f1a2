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

package miner

import (
	"go.uber.org/zap"

	"github.com/erigontech/shardchain/chainblock"
	"github.com/erigontech/shardchain/multichain"
)

// Broadcaster sends a freshly mined block out to peers. It is defined here,
// rather than imported from p2p, so this package never needs to import the
// network layer; cmd/shardnode's blockBroadcaster adapts a p2p.Broadcaster
// to it.
type Broadcaster interface {
	BroadcastBlocks(blocks []chainblock.VersaBlock)
}

// Worker receives every block the miner produces, inserts it into the
// shared Multichain under the block's own claimed parent, and broadcasts it
// on success. It is the sole writer path for locally-mined blocks, kept
// separate from the miner loop itself so a slow insert or broadcast never
// stalls nonce search.
type Worker struct {
	finishedBlockChan <-chan MinerMessage
	multichain        *multichain.Multichain
	broadcaster       Broadcaster
	log               *zap.SugaredLogger
}

// NewWorker builds a handoff Worker reading off finishedBlockChan, the
// channel returned by New.
func NewWorker(finishedBlockChan <-chan MinerMessage, mc *multichain.Multichain, broadcaster Broadcaster, log *zap.Logger) *Worker {
	return &Worker{
		finishedBlockChan: finishedBlockChan,
		multichain:        mc,
		broadcaster:       broadcaster,
		log:               log.Named("miner-handoff").Sugar(),
	}
}

// Run drains finishedBlockChan until it is closed. It is meant to be
// launched in its own goroutine.
func (w *Worker) Run() {
	for msg := range w.finishedBlockChan {
		w.handle(msg.Block)
	}
}

func (w *Worker) handle(block chainblock.VersaBlock) {
	var parent chainblock.VersaHash
	if block.Kind == chainblock.OrderKind {
		parent = chainblock.OrderHash(block.GetParent())
	} else {
		parent = chainblock.ShardHash(block.GetParent())
	}

	inserted, err := w.multichain.InsertBlockWithParent(block, parent)
	if err != nil {
		w.log.Errorw("failed to insert locally mined block", "hash", block.Hash(), "error", err)
		return
	}
	if !inserted {
		w.log.Debugw("locally mined block was already known", "hash", block.Hash())
		return
	}

	w.log.Infow("mined new block", "hash", block.Hash(), "kind", block.Kind)
	w.broadcaster.BroadcastBlocks([]chainblock.VersaBlock{block})
}
