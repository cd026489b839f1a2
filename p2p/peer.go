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

// Peer is the Worker's view of a single connection: enough to write a
// reply back to whichever peer a message came from, and a name for
// logging. The raw transport (TCP framing, handshake, dialing) is out of
// scope per spec.md §1; peertest.Peer and any future real transport both
// implement this.
type Peer interface {
	WriteMessage(msg Message) error
	String() string
}

// Inbound pairs a decoded Message with the Peer it arrived from, the unit
// of work a Worker goroutine consumes.
type Inbound struct {
	Msg  Message
	From Peer
}

// Broadcaster sends a message to every connected peer. A Server
// implementation (out of scope for this core, per spec.md §1) and
// peertest.Network both satisfy it.
type Broadcaster interface {
	Broadcast(msg Message)
}
