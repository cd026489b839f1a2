package txn

import (
	"crypto/ed25519"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/erigontech/shardchain/shardhash"
)

func TestTransactionHashDeterministic(t *testing.T) {
	tx := Transaction{
		Inputs: []UtxoInput{{
			SenderAddr:  shardhash.Hash([]byte("alice")),
			PrevTxHash:  shardhash.Hash([]byte("prev")),
			Value:       10,
			OutputIndex: 0,
			Signature:   []byte("sig"),
		}},
		Outputs: []UtxoOutput{{
			ReceiverAddr: shardhash.Hash([]byte("bob")),
			Value:        10,
			PublicKey:    []byte("pub"),
		}},
		Flag: Domestic,
	}
	h1 := tx.Hash()
	h2 := tx.Hash()
	require.Equal(t, h1, h2)

	other := tx
	other.Flag = Accept
	require.NotEqual(t, h1, other.Hash(), "hash must depend on flag")
}

func TestGetRelatedHashDoesNotMutate(t *testing.T) {
	tx := Transaction{Flag: Initial}
	before := tx.Hash()
	related := tx.GetRelatedHash(Accept)
	require.Equal(t, before, tx.Hash(), "GetRelatedHash must not mutate the receiver")
	require.NotEqual(t, before, related)
}

func TestSignAndVerify(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	tx := Transaction{
		Outputs: []UtxoOutput{{
			ReceiverAddr: shardhash.Hash([]byte("bob")),
			Value:        5,
			PublicKey:    pub,
		}},
		Flag: Initial,
	}

	sig, err := Sign(tx, priv)
	require.NoError(t, err)
	require.True(t, Verify(tx, pub, sig))

	tampered := tx
	tampered.Flag = Domestic
	require.False(t, Verify(tampered, pub, sig))
}

func TestVerifyOwner(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	source := Transaction{
		Outputs: []UtxoOutput{{ReceiverAddr: shardhash.Hash([]byte("bob")), Value: 5, PublicKey: pub}},
		Flag:    Initial,
	}

	spend := Transaction{
		Inputs: []UtxoInput{{
			SenderAddr:  shardhash.Hash([]byte("bob")),
			PrevTxHash:  source.Hash(),
			Value:       5,
			OutputIndex: 0,
		}},
		Flag: Domestic,
	}
	sig, err := Sign(source, priv)
	require.NoError(t, err)
	spend.Inputs[0].Signature = sig

	require.True(t, VerifyOwner(spend, []Transaction{source}))

	spend.Inputs[0].Signature = []byte("garbage")
	require.False(t, VerifyOwner(spend, []Transaction{source}))
}

func TestFlagString(t *testing.T) {
	require.Equal(t, "initial", Initial.String())
	require.Equal(t, "reject", Reject.String())
}
