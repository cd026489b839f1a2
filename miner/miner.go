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

// Package miner implements the two-threshold proof-of-work mining loop: one
// candidate header is hashed against two difficulty targets, emitting an
// ordering block, a shard block, or nothing, depending on which (if any)
// target the resulting hash meets.
package miner

import (
	"time"

	"go.uber.org/zap"

	"github.com/erigontech/shardchain/chainblock"
	"github.com/erigontech/shardchain/config"
	"github.com/erigontech/shardchain/mempool"
	"github.com/erigontech/shardchain/merkletree"
	"github.com/erigontech/shardchain/multichain"
	"github.com/erigontech/shardchain/shardhash"
	"github.com/erigontech/shardchain/txn"
)

// controlSignal is sent to the miner loop over its control channel.
type controlSignal int

const (
	signalExit controlSignal = iota
	signalStart
	signalUpdate
)

type controlMessage struct {
	signal controlSignal
	lambda uint64
}

// operatingState mirrors the original's Paused/Run(lambda)/ShutDown states.
type operatingState int

const (
	statePaused operatingState = iota
	stateRunning
	stateShutDown
)

// Handle lets other goroutines drive the miner: starting/restarting it at a
// given interval, nudging it to rebuild its candidate, or asking it to
// exit.
type Handle struct {
	controlChan chan controlMessage
}

// Exit asks the miner to shut down after its current nonce attempt.
func (h Handle) Exit() {
	h.controlChan <- controlMessage{signal: signalExit}
}

// Start (re)starts continuous mining with the given inter-attempt sleep, in
// microseconds. Zero disables the delay.
func (h Handle) Start(lambdaMicros uint64) {
	h.controlChan <- controlMessage{signal: signalStart, lambda: lambdaMicros}
}

// Update nudges the miner to rebuild its candidate header on the next
// iteration, even if the chain tips haven't changed.
func (h Handle) Update() {
	h.controlChan <- controlMessage{signal: signalUpdate}
}

// MinerMessage is a block the miner has just produced and handed off.
type MinerMessage struct {
	Block chainblock.VersaBlock
}

// Context is the miner's private state; Start runs its loop in a new
// goroutine and is the only way to drive it once built.
type Context struct {
	controlChan       chan controlMessage
	operatingState    operatingState
	lambdaMicros      uint64
	finishedBlockChan chan<- MinerMessage

	multichain *multichain.Multichain
	mempool    *mempool.Mempool
	cfg        config.Configuration
	log        *zap.SugaredLogger

	// candidate assembly, rebuilt only when the parent tuple changes.
	header          chainblock.Header
	pendingTxs      []txn.Transaction
	haveCandidate   bool
	prevOrderParent shardhash.H256
	prevShardParent shardhash.H256
}

// New builds a miner Context plus the Handle used to control it and the
// channel it hands finished blocks off on.
func New(mc *multichain.Multichain, mp *mempool.Mempool, cfg config.Configuration, log *zap.Logger) (*Context, Handle, <-chan MinerMessage) {
	controlChan := make(chan controlMessage)
	finishedChan := make(chan MinerMessage)

	ctx := &Context{
		controlChan:       controlChan,
		operatingState:    statePaused,
		finishedBlockChan: finishedChan,
		multichain:        mc,
		mempool:           mp,
		cfg:               cfg,
		log:               log.Named("miner").Sugar(),
	}
	return ctx, Handle{controlChan: controlChan}, finishedChan
}

// Start launches the miner loop in its own named goroutine.
func (c *Context) Start() {
	go c.minerLoop()
	c.log.Info("miner initialized into paused mode")
}

func (c *Context) minerLoop() {
	for {
		if c.operatingState == statePaused {
			msg := <-c.controlChan
			c.handleControl(msg)
			continue
		}

		select {
		case msg := <-c.controlChan:
			c.handleControl(msg)
		default:
		}

		switch c.operatingState {
		case stateShutDown:
			return
		case statePaused:
			continue
		}

		if c.lambdaMicros != 0 {
			time.Sleep(time.Duration(c.lambdaMicros) * time.Microsecond)
		}

		c.refreshCandidate()
		c.tryNonce()
	}
}

// refreshCandidate rebuilds the pending header and transaction set whenever
// either parent tip has moved since the last attempt. Parent-change
// detection compares the (order_parent, shard_parent) tuple directly rather
// than a cached header hash, since the header hash also depends on the
// merkle root and timestamp, which are only worth recomputing when a parent
// actually changed.
func (c *Context) refreshCandidate() {
	orderParent := c.multichain.GetHighestOrderBlock()
	shardParent := c.multichain.GetHighestShardBlock(c.cfg.ShardID)

	if c.haveCandidate && orderParent == c.prevOrderParent && shardParent == c.prevShardParent {
		return
	}

	drained, _ := c.mempool.GetTxs(c.cfg.BlockSize)
	tree := merkletree.New(drained)

	c.header = chainblock.Header{
		ShardID:     uint32(c.cfg.ShardID),
		OrderParent: orderParent,
		ShardParent: shardParent,
		MerkleRoot:  tree.Root(),
		Timestamp:   time.Now(),
	}
	c.pendingTxs = drained
	c.haveCandidate = true
	c.prevOrderParent = orderParent
	c.prevShardParent = shardParent
}

// tryNonce samples one random nonce and, if it meets either difficulty
// threshold, emits the corresponding block. order_target is always checked
// first since it is required to be strictly tighter than shard_target: any
// hash meeting it would also meet shard_target, and an ordering block takes
// priority.
func (c *Context) tryNonce() {
	nonce := shardhash.RandomNonce()
	candidateHash := shardhash.PowHash(c.header.Hash(), nonce)

	switch {
	case candidateHash.MeetsTarget(c.cfg.OrderTarget):
		confirmed := c.multichain.GetNewConfirmedShardBlocks()
		block := chainblock.NewOrderBlock(c.header, confirmed, nonce)
		c.finishedBlockChan <- MinerMessage{Block: chainblock.NewVersaOrderBlock(block)}
		c.forceRefreshNext()
	case candidateHash.MeetsTarget(c.cfg.ShardTarget):
		block := chainblock.NewShardBlock(c.header, c.pendingTxs, nonce)
		c.finishedBlockChan <- MinerMessage{Block: chainblock.NewVersaShardBlock(block)}
		c.forceRefreshNext()
	}
}

// forceRefreshNext invalidates the cached parent tuple so the next
// iteration always rebuilds the candidate, even if somehow no chain tip has
// moved yet (the just-mined block hasn't been handed off to the multichain
// by the handoff worker).
func (c *Context) forceRefreshNext() {
	c.haveCandidate = false
}

func (c *Context) handleControl(msg controlMessage) {
	switch msg.signal {
	case signalExit:
		c.log.Info("miner shutting down")
		c.operatingState = stateShutDown
	case signalStart:
		c.log.Infow("miner starting in continuous mode", "lambda_micros", msg.lambda)
		c.operatingState = stateRunning
		c.lambdaMicros = msg.lambda
	case signalUpdate:
		c.forceRefreshNext()
	}
}
