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

// Command shardnode runs a single node: it wires config, the multichain, the
// mempool, the miner, and the network worker together and blocks until
// interrupted. The wire-level peer transport is out of spec scope (spec.md
// §1), so this binary stands the node up against the in-memory peertest
// transport, with zero remote peers connected — enough to mine and serve
// local RPC-free operation, not enough to actually gossip with another
// process. A real deployment would replace peertest.Network with a TCP
// server satisfying p2p.Broadcaster/p2p.Peer.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/erigontech/shardchain/blockchain"
	"github.com/erigontech/shardchain/chainblock"
	"github.com/erigontech/shardchain/config"
	"github.com/erigontech/shardchain/kvstore"
	"github.com/erigontech/shardchain/mempool"
	"github.com/erigontech/shardchain/miner"
	"github.com/erigontech/shardchain/multichain"
	"github.com/erigontech/shardchain/p2p"
	"github.com/erigontech/shardchain/peertest"
	"github.com/erigontech/shardchain/txn"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := config.Default()
	var configPath string

	cmd := &cobra.Command{
		Use:   "shardnode",
		Short: "Runs a single sharded proof-of-work chain node",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if configPath != "" {
				loaded, err := config.Load(configPath)
				if err != nil {
					return errors.Wrap(err, "loading configuration")
				}
				mergeConfig(cmd.Flags(), &cfg, loaded)
			}
			return runNode(cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a TOML configuration file; flags explicitly passed still win")
	config.RegisterFlags(cmd.Flags(), &cfg)
	return cmd
}

// mergeConfig copies every field loaded from a TOML file into cfg, except
// for flag-backed fields the user explicitly overrode on the command line
// (config.RegisterFlags' contract: a flag passed on the command line wins
// over the config file).
func mergeConfig(fs *pflag.FlagSet, cfg *config.Configuration, loaded config.Configuration) {
	cfg.ShardTargetHex = loaded.ShardTargetHex
	cfg.OrderTargetHex = loaded.OrderTargetHex
	cfg.ShardTarget = loaded.ShardTarget
	cfg.OrderTarget = loaded.OrderTarget
	cfg.DataDirQuota = loaded.DataDirQuota
	if !fs.Changed("shard-size") {
		cfg.ShardSize = loaded.ShardSize
	}
	if !fs.Changed("shard-id") {
		cfg.ShardID = loaded.ShardID
	}
	if !fs.Changed("node-id") {
		cfg.NodeID = loaded.NodeID
	}
	if !fs.Changed("shard-num") {
		cfg.ShardNum = loaded.ShardNum
	}
	if !fs.Changed("block-size") {
		cfg.BlockSize = loaded.BlockSize
	}
	if !fs.Changed("k") {
		cfg.K = loaded.K
	}
	if !fs.Changed("lambda-micros") {
		cfg.LambdaMicros = loaded.LambdaMicros
	}
	if !fs.Changed("data-dir") {
		cfg.DataDir = loaded.DataDir
	}
	if !fs.Changed("num-workers") {
		cfg.NumWorkers = loaded.NumWorkers
	}
}

func runNode(cfg config.Configuration) error {
	log, err := zap.NewProduction()
	if err != nil {
		return errors.Wrap(err, "building logger")
	}
	defer func() { _ = log.Sync() }()

	mc, err := buildMultichain(cfg)
	if err != nil {
		return errors.Wrap(err, "building multichain")
	}

	txStore, err := kvstore.Open[txn.Transaction](kvstore.Namespace(cfg.DataDir, cfg.ShardID, cfg.NodeID, time.Now()))
	if err != nil {
		return errors.Wrap(err, "opening mempool store")
	}
	defer func() { _ = txStore.Close() }()
	mp := mempool.New(txStore)

	net := peertest.NewNetwork()
	inbound, broadcaster := net.Register(nodeName(cfg))

	minerCtx, minerHandle, finishedBlocks := miner.New(mc, mp, cfg, log)
	minerWorker := miner.NewWorker(finishedBlocks, mc, blockBroadcaster{broadcaster}, log)
	go minerWorker.Run()
	minerCtx.Start()
	minerHandle.Start(cfg.LambdaMicros)

	networkWorker := p2p.NewWorker(cfg, inbound, mc, broadcaster, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Sugar().Infow("node started", "shard_id", cfg.ShardID, "node_id", cfg.NodeID, "shard_num", cfg.ShardNum)

	err = networkWorker.Run(ctx)
	minerHandle.Exit()
	if err != nil && !errors.Is(err, context.Canceled) {
		return errors.Wrap(err, "network worker")
	}
	return nil
}

// blockBroadcaster adapts a p2p.Broadcaster into miner.Broadcaster: the
// miner only knows how to hand off finished blocks, not how to frame them
// onto the wire, per the original miner::worker::Worker broadcasting
// Message::Blocks(vec![versa_block]) on every locally-mined block.
type blockBroadcaster struct {
	inner p2p.Broadcaster
}

func (b blockBroadcaster) BroadcastBlocks(blocks []chainblock.VersaBlock) {
	b.inner.Broadcast(p2p.Blocks(blocks))
}

func buildMultichain(cfg config.Configuration) (*multichain.Multichain, error) {
	orderGenesis := chainblock.NewVersaOrderBlock(chainblock.NewOrderBlock(chainblock.Header{Timestamp: time.Unix(0, 0)}, nil, 0))
	orderStore, err := kvstore.Open[chainblock.VersaBlock](kvstore.Namespace(cfg.DataDir, cfg.ShardID, cfg.NodeID, time.Now()))
	if err != nil {
		return nil, errors.Wrap(err, "opening order chain store")
	}
	orderChain, err := blockchain.New(orderGenesis, orderStore, cfg.K)
	if err != nil {
		return nil, errors.Wrap(err, "initializing order chain")
	}

	shardChains := make([]*blockchain.Blockchain, cfg.ShardNum)
	for i := 0; i < cfg.ShardNum; i++ {
		genesis := chainblock.NewVersaShardBlock(chainblock.NewShardBlock(chainblock.Header{ShardID: uint32(i), Timestamp: time.Unix(0, 0)}, nil, 0))
		store, err := kvstore.Open[chainblock.VersaBlock](kvstore.Namespace(cfg.DataDir, i, cfg.NodeID, time.Now()))
		if err != nil {
			return nil, errors.Wrapf(err, "opening shard %d store", i)
		}
		chain, err := blockchain.New(genesis, store, cfg.K)
		if err != nil {
			return nil, errors.Wrapf(err, "initializing shard %d chain", i)
		}
		shardChains[i] = chain
	}

	return multichain.New(orderChain, shardChains, cfg.K), nil
}

func nodeName(cfg config.Configuration) string {
	return fmt.Sprintf("node(shard-%d,index-%d)", cfg.ShardID, cfg.NodeID)
}
