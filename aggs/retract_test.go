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
	"github.com/tailstream-io/tailstream/errors"
	"github.com/tailstream-io/tailstream/types"
)

func TestFirstValueWithRetractDecimal(t *testing.T) {
	f := &FirstValueWithRetractAggFunc[types.Decimal]{}
	acc := f.CreateAccumulator()
	for _, e := range decimalFixture(t) {
		f.AccumulateWithOrder(acc, e.val, e.valNull, e.orderKey, e.orderNull)
	}
	val, null := f.GetValue(acc)
	require.False(t, null)
	expected := dec(t, "-1")
	require.True(t, expected.Equals(&val))

	// retracting the winner exposes the other entry at the same order key
	err := f.RetractWithOrder(acc, dec(t, "-1"), false, 1, false)
	require.NoError(t, err)
	val, null = f.GetValue(acc)
	require.False(t, null)
	expected = dec(t, "-999.999")
	require.True(t, expected.Equals(&val))

	// with order key 1 exhausted, key 2 takes over, earliest arrival first
	err = f.RetractWithOrder(acc, dec(t, "-999.999"), false, 1, false)
	require.NoError(t, err)
	val, null = f.GetValue(acc)
	require.False(t, null)
	expected = dec(t, "1000.000001")
	require.True(t, expected.Equals(&val))
}

func TestLastValueWithRetract(t *testing.T) {
	l := &LastValueWithRetractAggFunc[int64]{}
	acc := l.CreateAccumulator()
	l.AccumulateWithOrder(acc, 10, false, 1, false)
	l.AccumulateWithOrder(acc, 20, false, 9, false)
	l.AccumulateWithOrder(acc, 30, false, 4, false)
	val, null := l.GetValue(acc)
	require.False(t, null)
	require.Equal(t, int64(20), val)

	err := l.RetractWithOrder(acc, 20, false, 9, false)
	require.NoError(t, err)
	val, null = l.GetValue(acc)
	require.False(t, null)
	require.Equal(t, int64(30), val)

	err = l.RetractWithOrder(acc, 30, false, 4, false)
	require.NoError(t, err)
	val, null = l.GetValue(acc)
	require.False(t, null)
	require.Equal(t, int64(10), val)

	err = l.RetractWithOrder(acc, 10, false, 1, false)
	require.NoError(t, err)
	_, null = l.GetValue(acc)
	require.True(t, null)
}

func TestRetractRestoresPreviousState(t *testing.T) {
	f := &FirstValueWithRetractAggFunc[string]{}
	acc := f.CreateAccumulator()
	f.AccumulateWithOrder(acc, "base", false, 5, false)
	before, beforeNull := f.GetValue(acc)

	f.AccumulateWithOrder(acc, "intruder", false, 2, false)
	val, _ := f.GetValue(acc)
	require.Equal(t, "intruder", val)

	err := f.RetractWithOrder(acc, "intruder", false, 2, false)
	require.NoError(t, err)
	after, afterNull := f.GetValue(acc)
	require.Equal(t, beforeNull, afterNull)
	require.Equal(t, before, after)
	orderKey, hasOrder := acc.OrderKey()
	require.True(t, hasOrder)
	require.Equal(t, int64(5), orderKey)
}

func TestRetractUnknownContribution(t *testing.T) {
	f := &FirstValueWithRetractAggFunc[int64]{}
	acc := f.CreateAccumulator()
	f.AccumulateWithOrder(acc, 10, false, 5, false)

	// same order key, different value
	err := f.RetractWithOrder(acc, 11, false, 5, false)
	require.Error(t, err)
	var terr errors.TailstreamError
	require.True(t, errors.As(err, &terr))
	require.Equal(t, errors.ErrorCode(errors.PreconditionFailed), terr.Code)

	// same value, different order key
	err = f.RetractWithOrder(acc, 10, false, 6, false)
	require.Error(t, err)

	// keyed retraction of an unkeyed contribution
	err = f.RetractWithOrder(acc, 10, false, 0, true)
	require.Error(t, err)

	// the failed attempts must not have disturbed the state
	val, null := f.GetValue(acc)
	require.False(t, null)
	require.Equal(t, int64(10), val)
}

func TestRetractNoOrder(t *testing.T) {
	f := &FirstValueWithRetractAggFunc[int64]{}
	acc := f.CreateAccumulator()
	f.Accumulate(acc, 1, false)
	f.Accumulate(acc, 2, false)
	f.Accumulate(acc, 3, false)
	val, _ := f.GetValue(acc)
	require.Equal(t, int64(1), val)

	err := f.Retract(acc, 1, false)
	require.NoError(t, err)
	val, _ = f.GetValue(acc)
	require.Equal(t, int64(2), val)

	l := &LastValueWithRetractAggFunc[int64]{}
	lacc := l.CreateAccumulator()
	l.Accumulate(lacc, 1, false)
	l.Accumulate(lacc, 2, false)
	l.Accumulate(lacc, 3, false)
	val, _ = l.GetValue(lacc)
	require.Equal(t, int64(3), val)

	err = l.Retract(lacc, 3, false)
	require.NoError(t, err)
	val, _ = l.GetValue(lacc)
	require.Equal(t, int64(2), val)
}

func TestRetractNullValueIsNoop(t *testing.T) {
	f := &FirstValueWithRetractAggFunc[int64]{}
	acc := f.CreateAccumulator()
	f.AccumulateWithOrder(acc, 10, false, 5, false)

	// null values never accumulate, so their retraction has nothing to undo
	err := f.RetractWithOrder(acc, 0, true, 5, false)
	require.NoError(t, err)
	require.Equal(t, 1, acc.Size())
}

func TestRetractDuplicateContributions(t *testing.T) {
	l := &LastValueWithRetractAggFunc[string]{}
	acc := l.CreateAccumulator()
	l.AccumulateWithOrder(acc, "x", false, 5, false)
	l.AccumulateWithOrder(acc, "x", false, 5, false)
	require.Equal(t, 2, acc.Size())

	err := l.RetractWithOrder(acc, "x", false, 5, false)
	require.NoError(t, err)
	val, null := l.GetValue(acc)
	require.False(t, null)
	require.Equal(t, "x", val)
	require.Equal(t, 1, acc.Size())

	err = l.RetractWithOrder(acc, "x", false, 5, false)
	require.NoError(t, err)
	_, null = l.GetValue(acc)
	require.True(t, null)
	require.Equal(t, 0, acc.Size())
}

func TestRetractTieBreakSurvivesRetraction(t *testing.T) {
	f := &FirstValueWithRetractAggFunc[string]{}
	acc := f.CreateAccumulator()
	f.AccumulateWithOrder(acc, "early", false, 5, false)
	f.AccumulateWithOrder(acc, "late", false, 5, false)
	val, _ := f.GetValue(acc)
	require.Equal(t, "early", val)

	// the scan matches on value, not just key, so the non-winner can go first
	err := f.RetractWithOrder(acc, "late", false, 5, false)
	require.NoError(t, err)
	val, _ = f.GetValue(acc)
	require.Equal(t, "early", val)

	f.AccumulateWithOrder(acc, "later", false, 5, false)
	err = f.RetractWithOrder(acc, "early", false, 5, false)
	require.NoError(t, err)
	val, _ = f.GetValue(acc)
	require.Equal(t, "later", val)
}

func TestRetractNullOrderKeyPolicy(t *testing.T) {
	f := &FirstValueWithRetractAggFunc[int64]{}
	acc := f.CreateAccumulator()

	// only unkeyed contributions live - earliest arrival is the candidate
	f.AccumulateWithOrder(acc, 1, false, 0, true)
	f.AccumulateWithOrder(acc, 2, false, 0, true)
	val, _ := f.GetValue(acc)
	require.Equal(t, int64(1), val)

	// any keyed contribution beats every unkeyed one
	f.AccumulateWithOrder(acc, 3, false, 1000, false)
	val, _ = f.GetValue(acc)
	require.Equal(t, int64(3), val)

	// retracting it falls back to the unkeyed pool
	err := f.RetractWithOrder(acc, 3, false, 1000, false)
	require.NoError(t, err)
	val, _ = f.GetValue(acc)
	require.Equal(t, int64(1), val)
}

func TestRetractMergeEqualsReplay(t *testing.T) {
	l := &LastValueWithRetractAggFunc[int64]{}
	acc := l.CreateAccumulator()
	other := l.CreateAccumulator()

	l.AccumulateWithOrder(acc, 10, false, 1, false)
	l.AccumulateWithOrder(acc, 20, false, 7, false)
	l.AccumulateWithOrder(other, 30, false, 7, false)
	l.AccumulateWithOrder(other, 40, false, 3, false)

	l.Merge(acc, other)
	require.Equal(t, 4, acc.Size())

	// other's entry at key 7 arrived after acc's, so it wins the tie
	val, null := l.GetValue(acc)
	require.False(t, null)
	require.Equal(t, int64(30), val)

	// all merged contributions remain individually retractable
	err := l.RetractWithOrder(acc, 30, false, 7, false)
	require.NoError(t, err)
	val, _ = l.GetValue(acc)
	require.Equal(t, int64(20), val)
	err = l.RetractWithOrder(acc, 40, false, 3, false)
	require.NoError(t, err)
	err = l.RetractWithOrder(acc, 20, false, 7, false)
	require.NoError(t, err)
	val, _ = l.GetValue(acc)
	require.Equal(t, int64(10), val)
}

func TestRetractReset(t *testing.T) {
	f := &FirstValueWithRetractAggFunc[int64]{}
	acc := f.CreateAccumulator()
	f.AccumulateWithOrder(acc, 10, false, 5, false)
	f.AccumulateWithOrder(acc, 20, false, 3, false)
	f.ResetAccumulator(acc)
	_, null := f.GetValue(acc)
	require.True(t, null)
	require.Equal(t, 0, acc.Size())

	f.AccumulateWithOrder(acc, 30, false, 9, false)
	val, null := f.GetValue(acc)
	require.False(t, null)
	require.Equal(t, int64(30), val)
}
