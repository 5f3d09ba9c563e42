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

// FirstValueAggFunc keeps the first non-null value seen. Without an order
// argument "first" means first in call order. With an order argument the entry
// with the smallest order key wins, ties broken in favour of the earlier
// arrival. An entry with a null order key can only become the candidate while
// no candidate is held - it never dethrones one.
type FirstValueAggFunc[T AggValue] struct {
}

func (f *FirstValueAggFunc[T]) CreateAccumulator() *Accumulator[T] {
	return &Accumulator[T]{null: true}
}

func (f *FirstValueAggFunc[T]) ResetAccumulator(acc *Accumulator[T]) {
	acc.reset()
}

func (f *FirstValueAggFunc[T]) Accumulate(acc *Accumulator[T], val T, valNull bool) {
	if valNull {
		return
	}
	if acc.null {
		acc.set(val, 0, false)
	}
}

func (f *FirstValueAggFunc[T]) AccumulateWithOrder(acc *Accumulator[T], val T, valNull bool, orderKey int64, orderNull bool) {
	if valNull {
		return
	}
	if acc.null {
		acc.set(val, orderKey, !orderNull)
		return
	}
	if orderNull {
		// an entry with no order key never dethrones an existing candidate
		return
	}
	if !acc.hasOrder || orderKey < acc.orderKey {
		acc.set(val, orderKey, true)
	}
}

func (f *FirstValueAggFunc[T]) GetValue(acc *Accumulator[T]) (T, bool) {
	return acc.GetValue()
}

// Merge folds other into acc. acc is treated as the earlier partition, so for
// equal order keys - and for the order-less case, where arrival order cannot
// be established across partitions - acc's candidate is retained.
func (f *FirstValueAggFunc[T]) Merge(acc *Accumulator[T], other *Accumulator[T]) {
	if other.null {
		return
	}
	if acc.null {
		acc.set(other.val, other.orderKey, other.hasOrder)
		return
	}
	if !other.hasOrder {
		return
	}
	if !acc.hasOrder || other.orderKey < acc.orderKey {
		acc.set(other.val, other.orderKey, true)
	}
}

// LastValueAggFunc keeps the last non-null value seen. Without an order
// argument "last" means most recent in call order. With an order argument the
// entry with the largest order key wins, ties broken in favour of the later
// arrival.
type LastValueAggFunc[T AggValue] struct {
}

func (l *LastValueAggFunc[T]) CreateAccumulator() *Accumulator[T] {
	return &Accumulator[T]{null: true}
}

func (l *LastValueAggFunc[T]) ResetAccumulator(acc *Accumulator[T]) {
	acc.reset()
}

func (l *LastValueAggFunc[T]) Accumulate(acc *Accumulator[T], val T, valNull bool) {
	if valNull {
		return
	}
	acc.set(val, 0, false)
}

func (l *LastValueAggFunc[T]) AccumulateWithOrder(acc *Accumulator[T], val T, valNull bool, orderKey int64, orderNull bool) {
	if valNull {
		return
	}
	if acc.null {
		acc.set(val, orderKey, !orderNull)
		return
	}
	if orderNull {
		if !acc.hasOrder {
			// both unordered - the later arrival wins
			acc.set(val, 0, false)
		}
		return
	}
	if !acc.hasOrder || orderKey >= acc.orderKey {
		acc.set(val, orderKey, true)
	}
}

func (l *LastValueAggFunc[T]) GetValue(acc *Accumulator[T]) (T, bool) {
	return acc.GetValue()
}

// Merge folds other into acc. other is treated as the later partition, so for
// equal order keys - and for the order-less case - other's candidate wins.
func (l *LastValueAggFunc[T]) Merge(acc *Accumulator[T], other *Accumulator[T]) {
	if other.null {
		return
	}
	if acc.null {
		acc.set(other.val, other.orderKey, other.hasOrder)
		return
	}
	if !other.hasOrder {
		if !acc.hasOrder {
			acc.set(other.val, 0, false)
		}
		return
	}
	if !acc.hasOrder || other.orderKey >= acc.orderKey {
		acc.set(other.val, other.orderKey, true)
	}
}
