// Copyright 2026 The Tailstream Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package aggs

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tailstream-io/tailstream/types"
)

func TestSerializeDeserializeAccumulator(t *testing.T) {
	f := &FirstValueAggFunc[string]{}
	acc := f.CreateAccumulator()
	f.AccumulateWithOrder(acc, "wombat", false, -3, false)

	buff := SerializeAccumulator(acc, nil)
	acc2, offset := DeserializeAccumulator[string](buff, 0)
	require.Equal(t, len(buff), offset)
	val, null := acc2.GetValue()
	require.False(t, null)
	require.Equal(t, "wombat", val)
	orderKey, hasOrder := acc2.OrderKey()
	require.True(t, hasOrder)
	require.Equal(t, int64(-3), orderKey)
}

func TestSerializeDeserializeEmptyAccumulator(t *testing.T) {
	f := &LastValueAggFunc[types.Decimal]{}
	acc := f.CreateAccumulator()

	buff := SerializeAccumulator(acc, nil)
	acc2, offset := DeserializeAccumulator[types.Decimal](buff, 0)
	require.Equal(t, len(buff), offset)
	_, null := acc2.GetValue()
	require.True(t, null)
	_, hasOrder := acc2.OrderKey()
	require.False(t, hasOrder)
}

func TestSerializeDeserializeDecimalAccumulator(t *testing.T) {
	l := &LastValueAggFunc[types.Decimal]{}
	acc := l.CreateAccumulator()
	d, err := types.NewDecimalFromString("-1234.5678", 20, 4)
	require.NoError(t, err)
	l.AccumulateWithOrder(acc, d, false, 42, false)

	// serialization keeps the value's own precision and scale
	buff := SerializeAccumulator(acc, nil)
	acc2, _ := DeserializeAccumulator[types.Decimal](buff, 0)
	val, null := acc2.GetValue()
	require.False(t, null)
	require.Equal(t, 20, val.Precision)
	require.Equal(t, 4, val.Scale)
	require.True(t, d.Equals(&val))
}

func TestSerializeDeserializeRetractAccumulator(t *testing.T) {
	f := &FirstValueWithRetractAggFunc[string]{}
	acc := f.CreateAccumulator()
	f.AccumulateWithOrder(acc, "early", false, 5, false)
	f.AccumulateWithOrder(acc, "late", false, 5, false)
	f.AccumulateWithOrder(acc, "unkeyed", false, 0, true)

	buff := SerializeRetractAccumulator(acc, nil)
	acc2, offset := DeserializeRetractAccumulator[string](buff, 0, true)
	require.Equal(t, len(buff), offset)
	require.Equal(t, 3, acc2.Size())
	val, null := acc2.GetValue()
	require.False(t, null)
	require.Equal(t, "early", val)

	// the arrival tie-break survives the round trip
	err := f.RetractWithOrder(acc2, "early", false, 5, false)
	require.NoError(t, err)
	val, _ = f.GetValue(acc2)
	require.Equal(t, "late", val)

	// new contributions continue the sequence rather than colliding with it
	f.AccumulateWithOrder(acc2, "newest", false, 5, false)
	require.Equal(t, 3, acc2.Size())
	err = f.RetractWithOrder(acc2, "late", false, 5, false)
	require.NoError(t, err)
	val, _ = f.GetValue(acc2)
	require.Equal(t, "newest", val)
}

func TestSerializeRetractAccumulatorAppendsToBuffer(t *testing.T) {
	l := &LastValueWithRetractAggFunc[int64]{}
	acc := l.CreateAccumulator()
	l.AccumulateWithOrder(acc, 7, false, 1, false)

	prefix := []byte{0xca, 0xfe}
	buff := SerializeRetractAccumulator(acc, prefix)
	require.Equal(t, prefix, buff[:2])
	acc2, offset := DeserializeRetractAccumulator[int64](buff, 2, false)
	require.Equal(t, len(buff), offset)
	val, null := acc2.GetValue()
	require.False(t, null)
	require.Equal(t, int64(7), val)
}
