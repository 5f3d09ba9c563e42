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
	"sort"

	"github.com/emirpasic/gods/trees/redblacktree"
	"github.com/tailstream-io/tailstream/errors"
)

// contribKey orders live contributions inside the retract accumulator's tree.
// The comparator puts the current winner at one end of the tree: for
// FIRST_VALUE the minimum, for LAST_VALUE the maximum. seq is a per
// accumulator insertion counter - it breaks ties between equal order keys so
// that FIRST_VALUE keeps the earliest arrival and LAST_VALUE the latest, at
// every recomputation, not just on initial accumulation.
type contribKey struct {
	orderKey int64
	hasOrder bool
	seq      uint64
}

func firstContribComparator(a, b interface{}) int {
	k1 := a.(contribKey)
	k2 := b.(contribKey)
	// entries without an order key can never beat keyed entries for "first"
	r1 := contribRank(k1.hasOrder, true)
	r2 := contribRank(k2.hasOrder, true)
	return compareContribs(k1, k2, r1, r2)
}

func lastContribComparator(a, b interface{}) int {
	k1 := a.(contribKey)
	k2 := b.(contribKey)
	// entries without an order key can never beat keyed entries for "last"
	r1 := contribRank(k1.hasOrder, false)
	r2 := contribRank(k2.hasOrder, false)
	return compareContribs(k1, k2, r1, r2)
}

func contribRank(hasOrder bool, first bool) int {
	if hasOrder == first {
		return 0
	}
	return 1
}

func compareContribs(k1 contribKey, k2 contribKey, r1 int, r2 int) int {
	if r1 != r2 {
		return r1 - r2
	}
	if k1.hasOrder {
		if k1.orderKey < k2.orderKey {
			return -1
		}
		if k1.orderKey > k2.orderKey {
			return 1
		}
	}
	if k1.seq < k2.seq {
		return -1
	}
	if k1.seq > k2.seq {
		return 1
	}
	return 0
}

// RetractAccumulator tracks every live contribution so the candidate can be
// recomputed when a previously accumulated entry is retracted.
type RetractAccumulator[T AggValue] struct {
	Accumulator[T]
	first bool
	seq   uint64
	tree  *redblacktree.Tree
}

func newRetractAccumulator[T AggValue](first bool) *RetractAccumulator[T] {
	var comparator func(a, b interface{}) int
	if first {
		comparator = firstContribComparator
	} else {
		comparator = lastContribComparator
	}
	return &RetractAccumulator[T]{
		Accumulator: Accumulator[T]{null: true},
		first:       first,
		tree:        redblacktree.NewWith(comparator),
	}
}

func (r *RetractAccumulator[T]) Size() int {
	return r.tree.Size()
}

func (r *RetractAccumulator[T]) accumulate(val T, orderKey int64, hasOrder bool) {
	r.seq++
	r.tree.Put(contribKey{
		orderKey: orderKey,
		hasOrder: hasOrder,
		seq:      r.seq,
	}, val)
	r.updateCandidate()
}

func (r *RetractAccumulator[T]) retract(val T, orderKey int64, hasOrder bool) error {
	searchKey := contribKey{
		orderKey: orderKey,
		hasOrder: hasOrder,
	}
	node, found := r.tree.Ceiling(searchKey)
	if found {
		it := r.tree.IteratorAt(node)
		for {
			key := it.Key().(contribKey)
			if key.hasOrder != hasOrder || (hasOrder && key.orderKey != orderKey) {
				break
			}
			if valuesEqual(it.Value().(T), val) {
				r.tree.Remove(key)
				r.updateCandidate()
				return nil
			}
			if !it.Next() {
				break
			}
		}
	}
	return errors.NewPreconditionFailedError("retract of a contribution that was never accumulated")
}

func (r *RetractAccumulator[T]) updateCandidate() {
	if r.tree.Empty() {
		r.Accumulator.reset()
		return
	}
	var node *redblacktree.Node
	if r.first {
		node = r.tree.Left()
	} else {
		node = r.tree.Right()
	}
	key := node.Key.(contribKey)
	r.Accumulator.set(node.Value.(T), key.orderKey, key.hasOrder)
}

type liveContribution[T AggValue] struct {
	key contribKey
	val T
}

// liveContributions returns the live contributions in insertion order.
func (r *RetractAccumulator[T]) liveContributions() []liveContribution[T] {
	contribs := make([]liveContribution[T], 0, r.tree.Size())
	it := r.tree.Iterator()
	for it.Next() {
		contribs = append(contribs, liveContribution[T]{
			key: it.Key().(contribKey),
			val: it.Value().(T),
		})
	}
	sort.Slice(contribs, func(i, j int) bool {
		return contribs[i].key.seq < contribs[j].key.seq
	})
	return contribs
}

func (r *RetractAccumulator[T]) reset() {
	r.Accumulator.reset()
	r.seq = 0
	r.tree.Clear()
}

// FirstValueWithRetractAggFunc is the retractable flavour of FirstValueAggFunc.
// Accumulated entries are tracked as a multiset so a retraction of the current
// winner recomputes the candidate from the remaining contributions under the
// same tie-break as the non-retract variant.
type FirstValueWithRetractAggFunc[T AggValue] struct {
}

func (f *FirstValueWithRetractAggFunc[T]) CreateAccumulator() *RetractAccumulator[T] {
	return newRetractAccumulator[T](true)
}

func (f *FirstValueWithRetractAggFunc[T]) ResetAccumulator(acc *RetractAccumulator[T]) {
	acc.reset()
}

func (f *FirstValueWithRetractAggFunc[T]) Accumulate(acc *RetractAccumulator[T], val T, valNull bool) {
	f.AccumulateWithOrder(acc, val, valNull, 0, true)
}

func (f *FirstValueWithRetractAggFunc[T]) AccumulateWithOrder(acc *RetractAccumulator[T], val T, valNull bool, orderKey int64, orderNull bool) {
	if valNull {
		return
	}
	acc.accumulate(val, orderKey, !orderNull)
}

func (f *FirstValueWithRetractAggFunc[T]) Retract(acc *RetractAccumulator[T], val T, valNull bool) error {
	return f.RetractWithOrder(acc, val, valNull, 0, true)
}

func (f *FirstValueWithRetractAggFunc[T]) RetractWithOrder(acc *RetractAccumulator[T], val T, valNull bool, orderKey int64, orderNull bool) error {
	if valNull {
		// null values are never accumulated so there is nothing to undo
		return nil
	}
	return acc.retract(val, orderKey, !orderNull)
}

func (f *FirstValueWithRetractAggFunc[T]) GetValue(acc *RetractAccumulator[T]) (T, bool) {
	return acc.GetValue()
}

// Merge appends other's live contributions after acc's, preserving each
// side's internal insertion order, then recomputes the candidate.
func (f *FirstValueWithRetractAggFunc[T]) Merge(acc *RetractAccumulator[T], other *RetractAccumulator[T]) {
	mergeRetractAccumulators(acc, other)
}

// LastValueWithRetractAggFunc is the retractable flavour of LastValueAggFunc.
type LastValueWithRetractAggFunc[T AggValue] struct {
}

func (l *LastValueWithRetractAggFunc[T]) CreateAccumulator() *RetractAccumulator[T] {
	return newRetractAccumulator[T](false)
}

func (l *LastValueWithRetractAggFunc[T]) ResetAccumulator(acc *RetractAccumulator[T]) {
	acc.reset()
}

func (l *LastValueWithRetractAggFunc[T]) Accumulate(acc *RetractAccumulator[T], val T, valNull bool) {
	l.AccumulateWithOrder(acc, val, valNull, 0, true)
}

func (l *LastValueWithRetractAggFunc[T]) AccumulateWithOrder(acc *RetractAccumulator[T], val T, valNull bool, orderKey int64, orderNull bool) {
	if valNull {
		return
	}
	acc.accumulate(val, orderKey, !orderNull)
}

func (l *LastValueWithRetractAggFunc[T]) Retract(acc *RetractAccumulator[T], val T, valNull bool) error {
	return l.RetractWithOrder(acc, val, valNull, 0, true)
}

func (l *LastValueWithRetractAggFunc[T]) RetractWithOrder(acc *RetractAccumulator[T], val T, valNull bool, orderKey int64, orderNull bool) error {
	if valNull {
		return nil
	}
	return acc.retract(val, orderKey, !orderNull)
}

func (l *LastValueWithRetractAggFunc[T]) GetValue(acc *RetractAccumulator[T]) (T, bool) {
	return acc.GetValue()
}

func (l *LastValueWithRetractAggFunc[T]) Merge(acc *RetractAccumulator[T], other *RetractAccumulator[T]) {
	mergeRetractAccumulators(acc, other)
}

func mergeRetractAccumulators[T AggValue](acc *RetractAccumulator[T], other *RetractAccumulator[T]) {
	for _, contrib := range other.liveContributions() {
		acc.accumulate(contrib.val, contrib.key.orderKey, contrib.key.hasOrder)
	}
}
