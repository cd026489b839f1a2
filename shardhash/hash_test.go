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

package shardhash

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashDeterministic(t *testing.T) {
	require.Equal(t, Hash([]byte("abc")), Hash([]byte("abc")))
	require.NotEqual(t, Hash([]byte("abc")), Hash([]byte("abd")))
}

func TestMultiHashIsOrderSensitive(t *testing.T) {
	a, b := Hash([]byte("a")), Hash([]byte("b"))
	require.NotEqual(t, MultiHash([]H256{a, b}), MultiHash([]H256{b, a}))
}

func TestChashMatchesMultiHashOfPair(t *testing.T) {
	a, b := Hash([]byte("left")), Hash([]byte("right"))
	require.Equal(t, MultiHash([]H256{a, b}), Chash(a, b))
}

func TestPowHashVariesWithNonce(t *testing.T) {
	headerHash := Hash([]byte("header"))
	require.NotEqual(t, PowHash(headerHash, 1), PowHash(headerHash, 2))
}

func TestCmpAndLessAgree(t *testing.T) {
	low := FromBytes([]byte{0x00, 0x01})
	high := FromBytes([]byte{0x00, 0x02})

	require.True(t, low.Less(high))
	require.False(t, high.Less(low))
	require.Equal(t, -1, low.Cmp(high))
	require.Equal(t, 1, high.Cmp(low))
	require.Equal(t, 0, low.Cmp(low))
}

func TestMeetsTargetIsInclusive(t *testing.T) {
	target := FromBytes([]byte{0x00, 0x10})
	require.True(t, target.MeetsTarget(target), "a hash equal to the target must meet it")

	lower := FromBytes([]byte{0x00, 0x0f})
	require.True(t, lower.MeetsTarget(target))

	higher := FromBytes([]byte{0x00, 0x11})
	require.False(t, higher.MeetsTarget(target))
}

func TestFromBytesPadsAndTruncates(t *testing.T) {
	short := FromBytes([]byte{0xab})
	require.Equal(t, byte(0xab), short[Size-1])
	require.True(t, short[0] == 0)

	long := make([]byte, Size+4)
	for i := range long {
		long[i] = byte(i)
	}
	got := FromBytes(long)
	require.Equal(t, long[len(long)-Size:], got.Bytes())
}

func TestIsZero(t *testing.T) {
	require.True(t, Zero.IsZero())
	require.False(t, Hash([]byte("x")).IsZero())
}

func TestRandomAndRandomNonceVary(t *testing.T) {
	require.NotEqual(t, Random(), Random())
	require.NotEqual(t, RandomNonce(), RandomNonce())
}
