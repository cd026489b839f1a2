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

// Package shardcodec is the single deterministic binary encoding used
// everywhere a byte-exact representation matters: transaction signing bytes
// and key-value store values (blocks, mempool transactions). One
// codec.CborHandle, configured for canonical output, backs both so a struct
// always serializes the same way regardless of which subsystem is doing the
// encoding. p2p messages are not encoded with it.
package shardcodec

import "github.com/ugorji/go/codec"

// handle is shared (not per-call) because codec.Handle instances are safe
// for concurrent use once configured and are meant to be reused.
var handle = newHandle()

func newHandle() *codec.CborHandle {
	h := &codec.CborHandle{}
	h.Canonical = true
	h.StructToArray = true
	return h
}

// Marshal encodes v into its canonical byte representation.
func Marshal(v interface{}) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, handle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

// Unmarshal decodes data, previously produced by Marshal, into v.
func Unmarshal(data []byte, v interface{}) error {
	dec := codec.NewDecoderBytes(data, handle)
	return dec.Decode(v)
}
