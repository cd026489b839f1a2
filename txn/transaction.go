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

// Package txn implements the signed UTXO transfer record: Transaction,
// its inputs/outputs, and Ed25519 signing/verification.
package txn

import (
	"crypto/ed25519"
	"fmt"

	"github.com/erigontech/shardchain/shardcodec"
	"github.com/erigontech/shardchain/shardhash"
)

// Flag distinguishes otherwise-identical input/output pairs; it participates
// in the transaction hash, so the same UTXO move under a different flag is a
// distinct transaction.
type Flag uint8

const (
	Initial Flag = iota
	Domestic
	Input
	Output
	Accept
	Reject
)

func (f Flag) String() string {
	switch f {
	case Initial:
		return "initial"
	case Domestic:
		return "domestic"
	case Input:
		return "input"
	case Output:
		return "output"
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(f))
	}
}

// UtxoInput spends one output of a previous transaction.
type UtxoInput struct {
	SenderAddr  shardhash.H256
	PrevTxHash  shardhash.H256
	Value       uint32
	OutputIndex uint32
	Signature   []byte
}

// Hash matches the original ShardingBitcoin UtxoInput::hash: a tmp hash over
// (value, output_index, signature bytes) is combined with the sender address
// and the previous transaction hash via MultiHash.
func (in UtxoInput) Hash() shardhash.H256 {
	tmp := shardhash.Hash(fmt.Appendf(nil, "%d%d%x", in.Value, in.OutputIndex, in.Signature))
	return shardhash.MultiHash([]shardhash.H256{in.SenderAddr, tmp, in.PrevTxHash})
}

// UtxoOutput creates a new spendable value assigned to a receiver's address.
type UtxoOutput struct {
	ReceiverAddr shardhash.H256
	Value        uint32
	PublicKey    []byte
}

// Hash matches the original ShardingBitcoin UtxoOutput::hash.
func (out UtxoOutput) Hash() shardhash.H256 {
	tmp := shardhash.Hash(fmt.Appendf(nil, "%d%x", out.Value, out.PublicKey))
	return shardhash.MultiHash([]shardhash.H256{out.ReceiverAddr, tmp})
}

// Transaction is the signed UTXO transfer record. It carries no references
// back to any account/UTXO-set state machine: validating a transaction
// against prior outputs, if needed, is the caller's responsibility (this
// core does not apply transactions to any state).
type Transaction struct {
	Inputs  []UtxoInput
	Outputs []UtxoOutput
	Flag    Flag
}

// Hash is the canonical transaction identifier: MultiHash over every input
// hash, then every output hash, then a hash of the flag's string form.
func (t Transaction) Hash() shardhash.H256 {
	hashes := make([]shardhash.H256, 0, len(t.Inputs)+len(t.Outputs)+1)
	for _, in := range t.Inputs {
		hashes = append(hashes, in.Hash())
	}
	for _, out := range t.Outputs {
		hashes = append(hashes, out.Hash())
	}
	hashes = append(hashes, shardhash.Hash([]byte(t.Flag.String())))
	return shardhash.MultiHash(hashes)
}

// GetRelatedHash returns the hash the transaction would have under a
// different flag, without mutating t. Used to correlate, e.g., a Domestic
// transaction with its eventual Accept/Reject counterpart.
func (t Transaction) GetRelatedHash(flag Flag) shardhash.H256 {
	t2 := t
	t2.Flag = flag
	return t2.Hash()
}

// signingBytes is the deterministic byte serialization signed and verified.
func signingBytes(t Transaction) ([]byte, error) {
	return shardcodec.Marshal(t)
}

// Sign produces an Ed25519 signature of t's deterministic serialization.
func Sign(t Transaction, priv ed25519.PrivateKey) ([]byte, error) {
	b, err := signingBytes(t)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(priv, b), nil
}

// Verify reports whether sig is a valid Ed25519 signature of t's
// deterministic serialization under pub.
func Verify(t Transaction, pub ed25519.PublicKey, sig []byte) bool {
	b, err := signingBytes(t)
	if err != nil {
		return false
	}
	return ed25519.Verify(pub, b, sig)
}

// VerifyOwner checks that every input of tx is signed by the holder of the
// corresponding output's public key in inputTxs (one referenced transaction
// per input, in input order).
func VerifyOwner(tx Transaction, inputTxs []Transaction) bool {
	if len(tx.Inputs) != len(inputTxs) {
		return false
	}
	for i, in := range tx.Inputs {
		src := inputTxs[i]
		if int(in.OutputIndex) >= len(src.Outputs) {
			return false
		}
		pub := ed25519.PublicKey(src.Outputs[in.OutputIndex].PublicKey)
		if !Verify(src, pub, in.Signature) {
			return false
		}
	}
	return true
}
