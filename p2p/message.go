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

// Package p2p implements the gossip protocol between nodes: the message
// set, the Peer/Broadcaster interfaces a transport provides, and the Worker
// pool that dispatches incoming messages and resolves orphaned blocks via a
// buffered BFS insert. It does no encoding or framing of its own.
package p2p

import (
	"github.com/erigontech/shardchain/chainblock"
)

// Kind tags which variant a Message is; the Worker dispatches on it.
type Kind uint8

const (
	KindPing Kind = iota
	KindPong
	KindNewBlockHash
	KindGetBlocks
	KindBlocks
)

// Message is the full set of messages exchanged between peers. Exactly one
// of the payload fields is meaningful, selected by Kind, mirroring the
// original's Message enum the same way VersaBlock mirrors its two-variant
// enum.
type Message struct {
	Kind Kind

	Nonce string // Ping/Pong

	Hashes []chainblock.VersaHash  // NewBlockHash/GetBlocks
	Blocks []chainblock.VersaBlock // Blocks
}

// Ping builds a ping message carrying an arbitrary nonce string, echoed
// back unchanged in the matching Pong.
func Ping(nonce string) Message { return Message{Kind: KindPing, Nonce: nonce} }

// Pong builds a pong reply.
func Pong(nonce string) Message { return Message{Kind: KindPong, Nonce: nonce} }

// NewBlockHash announces newly-accepted blocks by hash only, letting the
// receiver decide whether it already has them.
func NewBlockHash(hashes []chainblock.VersaHash) Message {
	return Message{Kind: KindNewBlockHash, Hashes: hashes}
}

// GetBlocks requests full blocks by hash.
func GetBlocks(hashes []chainblock.VersaHash) Message {
	return Message{Kind: KindGetBlocks, Hashes: hashes}
}

// Blocks carries full blocks, either in response to GetBlocks or as an
// unsolicited push of a newly mined block.
func Blocks(blocks []chainblock.VersaBlock) Message {
	return Message{Kind: KindBlocks, Blocks: blocks}
}
