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

// Package config loads a node's operating parameters from a TOML file,
// with CLI flags (wired in by cmd/shardnode) layered on top as overrides.
package config

import (
	"encoding/hex"
	"os"

	"github.com/c2h5oh/datasize"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"

	"github.com/erigontech/shardchain/shardhash"
)

// Configuration holds every operating parameter of a single node, shared by
// the miner, mempool, multichain, and network worker.
type Configuration struct {
	ShardNum       int                `toml:"shard_num"`
	ShardSize      int                `toml:"shard_size"`
	ShardID        int                `toml:"shard_id"`
	NodeID         int                `toml:"node_id"`
	BlockSize      int                `toml:"block_size"`
	K              int                `toml:"k"`
	ShardTargetHex string             `toml:"shard_target"`
	OrderTargetHex string             `toml:"order_target"`
	LambdaMicros   uint64             `toml:"lambda_micros"`
	DataDir        string             `toml:"data_dir"`
	DataDirQuota   datasize.ByteSize `toml:"data_dir_quota"`
	NumWorkers     int                `toml:"num_workers"`

	ShardTarget shardhash.H256 `toml:"-"`
	OrderTarget shardhash.H256 `toml:"-"`
}

// Default returns the configuration with the same non-zero defaults the
// original constructor sets: a confirmation depth of 6, everything else at
// its zero value.
func Default() Configuration {
	return Configuration{K: 6}
}

// Load reads and parses a TOML configuration file at path, then resolves
// and validates the hex-encoded difficulty targets.
func Load(path string) (Configuration, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Configuration{}, errors.Wrapf(err, "reading config file %s", path)
	}

	cfg := Default()
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Configuration{}, errors.Wrapf(err, "parsing config file %s", path)
	}
	if err := cfg.resolveTargets(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

// resolveTargets decodes the hex-encoded difficulty targets read from TOML
// into H256 values and enforces the order_target < shard_target invariant
// the two-threshold miner depends on.
func (c *Configuration) resolveTargets() error {
	shardTarget, err := decodeHexHash(c.ShardTargetHex)
	if err != nil {
		return errors.Wrap(err, "parsing shard_target")
	}
	orderTarget, err := decodeHexHash(c.OrderTargetHex)
	if err != nil {
		return errors.Wrap(err, "parsing order_target")
	}
	if !orderTarget.Less(shardTarget) {
		return errors.New("order_target must be strictly less than shard_target")
	}
	c.ShardTarget = shardTarget
	c.OrderTarget = orderTarget
	return nil
}

// RegisterFlags binds CLI overrides for a node's most commonly-changed
// knobs onto fs, defaulting each flag to cfg's current value. Flags are
// parsed into cfg before any TOML file is loaded; the caller then copies the
// loaded values over cfg, skipping every flag explicitly passed on the
// command line, so such a flag wins over the TOML file.
func RegisterFlags(fs *pflag.FlagSet, cfg *Configuration) {
	fs.IntVar(&cfg.ShardID, "shard-id", cfg.ShardID, "this node's shard id")
	fs.IntVar(&cfg.NodeID, "node-id", cfg.NodeID, "this node's id, for data dir namespacing")
	fs.IntVar(&cfg.ShardNum, "shard-num", cfg.ShardNum, "number of shard chains")
	fs.IntVar(&cfg.ShardSize, "shard-size", cfg.ShardSize, "informational: expected number of nodes per shard")
	fs.IntVar(&cfg.BlockSize, "block-size", cfg.BlockSize, "max transactions per shard block")
	fs.IntVar(&cfg.K, "k", cfg.K, "confirmation depth")
	fs.Uint64Var(&cfg.LambdaMicros, "lambda-micros", cfg.LambdaMicros, "miner sleep interval, in microseconds")
	fs.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "node data directory")
	fs.IntVar(&cfg.NumWorkers, "num-workers", cfg.NumWorkers, "number of network gossip workers")
}

func decodeHexHash(s string) (shardhash.H256, error) {
	if s == "" {
		return shardhash.H256{}, nil
	}
	decoded, err := hex.DecodeString(s)
	if err != nil {
		return shardhash.H256{}, err
	}
	if len(decoded) != shardhash.Size {
		return shardhash.H256{}, errors.Errorf("expected %d bytes, got %d", shardhash.Size, len(decoded))
	}
	return shardhash.FromBytes(decoded), nil
}
