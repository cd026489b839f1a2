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

package shardcodec

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	A uint32
	B string
	C []byte
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	in := sample{A: 7, B: "shard-0", C: []byte{1, 2, 3}}

	data, err := Marshal(in)
	require.NoError(t, err)

	var out sample
	require.NoError(t, Unmarshal(data, &out))
	require.Equal(t, in, out)
}

func TestMarshalIsDeterministic(t *testing.T) {
	in := sample{A: 42, B: "x", C: []byte("payload")}

	a, err := Marshal(in)
	require.NoError(t, err)
	b, err := Marshal(in)
	require.NoError(t, err)

	require.Equal(t, a, b)
}

func TestMarshalDiffersOnDifferentValues(t *testing.T) {
	a, err := Marshal(sample{A: 1})
	require.NoError(t, err)
	b, err := Marshal(sample{A: 2})
	require.NoError(t, err)

	require.NotEqual(t, a, b)
}

func TestUnmarshalRejectsTruncatedData(t *testing.T) {
	data, err := Marshal(sample{A: 1, B: "hello", C: []byte{9, 9, 9}})
	require.NoError(t, err)

	var out sample
	require.Error(t, Unmarshal(data[:len(data)-1], &out))
}
