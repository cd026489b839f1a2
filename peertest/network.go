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

// Package peertest is an in-memory stand-in for the raw TCP peer transport
// spec.md §1 scopes out of the core: named nodes wired together by Connect,
// each exposing a p2p.Peer/p2p.Broadcaster pair backed by Go channels
// instead of sockets. It is the concrete analog of the commented-out
// peer::TestReceiver referenced in the original network/worker.rs, promoted
// to a first-class package so the full gossip protocol is exercisable end
// to end without a real transport layer.
package peertest

import (
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/erigontech/shardchain/p2p"
)

// inboundBufferSize matches SPEC_FULL §9: the network's inbound channel is
// bounded at 10,000 messages.
const inboundBufferSize = 10_000

// writeRetryBudget bounds how long WriteMessage retries a peer whose
// inbound channel is momentarily full before giving up.
const writeRetryBudget = 2 * time.Second

// Network is a registry of named nodes and the connections between them.
type Network struct {
	mu    sync.Mutex
	nodes map[string]*node
}

type node struct {
	inbound     chan p2p.Inbound
	broadcaster *NodeBroadcaster
}

// NewNetwork builds an empty registry.
func NewNetwork() *Network {
	return &Network{nodes: make(map[string]*node)}
}

// Register creates node name's inbound channel and broadcaster. The
// returned channel is what a p2p.Worker should be built against; the
// returned broadcaster is what that same Worker should broadcast through.
func (n *Network) Register(name string) (<-chan p2p.Inbound, *NodeBroadcaster) {
	n.mu.Lock()
	defer n.mu.Unlock()

	nd := &node{
		inbound:     make(chan p2p.Inbound, inboundBufferSize),
		broadcaster: &NodeBroadcaster{},
	}
	n.nodes[name] = nd
	return nd.inbound, nd.broadcaster
}

// Connect wires a and b together: messages either writes reach the other's
// inbound channel, tagged with a Peer the receiver can reply through, and
// each node's broadcaster gains the other as a recipient.
func (n *Network) Connect(a, b string) {
	n.mu.Lock()
	na, okA := n.nodes[a]
	nb, okB := n.nodes[b]
	n.mu.Unlock()
	if !okA || !okB {
		panic(fmt.Sprintf("peertest: both %q and %q must be Registered before Connect", a, b))
	}

	peerB := &Peer{name: b, remoteInbound: nb.inbound}
	peerA := &Peer{name: a, remoteInbound: na.inbound}
	peerB.localAsPeer = peerA
	peerA.localAsPeer = peerB

	na.broadcaster.addPeer(peerB)
	nb.broadcaster.addPeer(peerA)
}

// Peer implements p2p.Peer over a Go channel: writing a message delivers it
// to the remote node's inbound channel, wrapped with the Peer the remote
// would use to reply back.
type Peer struct {
	name          string
	remoteInbound chan<- p2p.Inbound
	localAsPeer   *Peer
}

// WriteMessage delivers msg to the peer this Peer represents. A full
// inbound channel (the receiver's worker pool is behind) is retried with
// exponential backoff rather than blocking indefinitely or dropping the
// message outright, standing in for the redelivery a real GetBlocks retry
// would need over an actual socket.
func (p *Peer) WriteMessage(msg p2p.Message) error {
	in := p2p.Inbound{Msg: msg, From: p.localAsPeer}

	select {
	case p.remoteInbound <- in:
		return nil
	default:
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 250 * time.Microsecond
	bo.MaxElapsedTime = writeRetryBudget

	return backoff.Retry(func() error {
		select {
		case p.remoteInbound <- in:
			return nil
		default:
			return fmt.Errorf("peertest: %s inbound channel full", p.name)
		}
	}, bo)
}

func (p *Peer) String() string { return p.name }

// NodeBroadcaster implements p2p.Broadcaster for one node: Broadcast writes
// msg to every peer that node has been Connected to.
type NodeBroadcaster struct {
	mu    sync.Mutex
	peers []*Peer
}

func (b *NodeBroadcaster) addPeer(p *Peer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.peers = append(b.peers, p)
}

// Broadcast writes msg to every connected peer, in the order they were
// connected.
func (b *NodeBroadcaster) Broadcast(msg p2p.Message) {
	b.mu.Lock()
	peers := make([]*Peer, len(b.peers))
	copy(peers, b.peers)
	b.mu.Unlock()

	for _, p := range peers {
		_ = p.WriteMessage(msg)
	}
}
