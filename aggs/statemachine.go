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
	"github.com/tailstream-io/tailstream/errors"
	"github.com/tailstream-io/tailstream/types"
)

// aggFunc is the typed contract shared by the non-retract first/last flavours.
type aggFunc[T AggValue] interface {
	CreateAccumulator() *Accumulator[T]
	ResetAccumulator(acc *Accumulator[T])
	Accumulate(acc *Accumulator[T], val T, valNull bool)
	AccumulateWithOrder(acc *Accumulator[T], val T, valNull bool, orderKey int64, orderNull bool)
	GetValue(acc *Accumulator[T]) (T, bool)
	Merge(acc *Accumulator[T], other *Accumulator[T])
}

// retractAggFunc is the typed contract for the retractable flavours. Support
// for retraction is expressed by implementing this interface, there is no
// runtime probing of individual methods.
type retractAggFunc[T AggValue] interface {
	CreateAccumulator() *RetractAccumulator[T]
	ResetAccumulator(acc *RetractAccumulator[T])
	Accumulate(acc *RetractAccumulator[T], val T, valNull bool)
	AccumulateWithOrder(acc *RetractAccumulator[T], val T, valNull bool, orderKey int64, orderNull bool)
	Retract(acc *RetractAccumulator[T], val T, valNull bool) error
	RetractWithOrder(acc *RetractAccumulator[T], val T, valNull bool, orderKey int64, orderNull bool) error
	GetValue(acc *RetractAccumulator[T]) (T, bool)
	Merge(acc *RetractAccumulator[T], other *RetractAccumulator[T])
}

// AggStateMachine is the untyped view of one aggregate function instance plus
// its accumulator, as driven by the stream operators. Values cross this
// boundary as interface{} with nil meaning null, matching how the event batch
// column accessors surface them.
type AggStateMachine interface {
	Accumulate(val interface{}) error
	AccumulateWithOrder(val interface{}, orderKey int64, orderNull bool) error
	Retract(val interface{}) error
	RetractWithOrder(val interface{}, orderKey int64, orderNull bool) error
	Merge(other AggStateMachine) error
	GetValue() interface{}
	Reset()
	Serialize(buff []byte) []byte
	Deserialize(buff []byte, offset int) int
	Retractable() bool
}

func toTypedValue[T AggValue](val interface{}) (T, bool, error) {
	var zero T
	if val == nil {
		return zero, true, nil
	}
	typed, ok := val.(T)
	if !ok {
		return zero, false, errors.NewTypeMismatchError("aggregate argument has type %T, expected %T", val, zero)
	}
	return typed, false, nil
}

type plainStateMachine[T AggValue] struct {
	f   aggFunc[T]
	acc *Accumulator[T]
}

func (p *plainStateMachine[T]) Accumulate(val interface{}) error {
	typed, null, err := toTypedValue[T](val)
	if err != nil {
		return err
	}
	p.f.Accumulate(p.acc, typed, null)
	return nil
}

func (p *plainStateMachine[T]) AccumulateWithOrder(val interface{}, orderKey int64, orderNull bool) error {
	typed, null, err := toTypedValue[T](val)
	if err != nil {
		return err
	}
	p.f.AccumulateWithOrder(p.acc, typed, null, orderKey, orderNull)
	return nil
}

func (p *plainStateMachine[T]) Retract(interface{}) error {
	return errors.NewTailstreamError(errors.RetractNotSupported, "aggregate function does not support retraction")
}

func (p *plainStateMachine[T]) RetractWithOrder(interface{}, int64, bool) error {
	return errors.NewTailstreamError(errors.RetractNotSupported, "aggregate function does not support retraction")
}

func (p *plainStateMachine[T]) Merge(other AggStateMachine) error {
	o, ok := other.(*plainStateMachine[T])
	if !ok {
		return errors.NewTypeMismatchError("cannot merge accumulators of different shapes")
	}
	p.f.Merge(p.acc, o.acc)
	return nil
}

func (p *plainStateMachine[T]) GetValue() interface{} {
	val, null := p.f.GetValue(p.acc)
	if null {
		return nil
	}
	return val
}

func (p *plainStateMachine[T]) Reset() {
	p.f.ResetAccumulator(p.acc)
}

func (p *plainStateMachine[T]) Serialize(buff []byte) []byte {
	return SerializeAccumulator(p.acc, buff)
}

func (p *plainStateMachine[T]) Deserialize(buff []byte, offset int) int {
	p.acc, offset = DeserializeAccumulator[T](buff, offset)
	return offset
}

func (p *plainStateMachine[T]) Retractable() bool {
	return false
}

type retractStateMachine[T AggValue] struct {
	f     retractAggFunc[T]
	acc   *RetractAccumulator[T]
	first bool
}

func (r *retractStateMachine[T]) Accumulate(val interface{}) error {
	typed, null, err := toTypedValue[T](val)
	if err != nil {
		return err
	}
	r.f.Accumulate(r.acc, typed, null)
	return nil
}

func (r *retractStateMachine[T]) AccumulateWithOrder(val interface{}, orderKey int64, orderNull bool) error {
	typed, null, err := toTypedValue[T](val)
	if err != nil {
		return err
	}
	r.f.AccumulateWithOrder(r.acc, typed, null, orderKey, orderNull)
	return nil
}

func (r *retractStateMachine[T]) Retract(val interface{}) error {
	typed, null, err := toTypedValue[T](val)
	if err != nil {
		return err
	}
	return r.f.Retract(r.acc, typed, null)
}

func (r *retractStateMachine[T]) RetractWithOrder(val interface{}, orderKey int64, orderNull bool) error {
	typed, null, err := toTypedValue[T](val)
	if err != nil {
		return err
	}
	return r.f.RetractWithOrder(r.acc, typed, null, orderKey, orderNull)
}

func (r *retractStateMachine[T]) Merge(other AggStateMachine) error {
	o, ok := other.(*retractStateMachine[T])
	if !ok {
		return errors.NewTypeMismatchError("cannot merge accumulators of different shapes")
	}
	r.f.Merge(r.acc, o.acc)
	return nil
}

func (r *retractStateMachine[T]) GetValue() interface{} {
	val, null := r.f.GetValue(r.acc)
	if null {
		return nil
	}
	return val
}

func (r *retractStateMachine[T]) Reset() {
	r.f.ResetAccumulator(r.acc)
}

func (r *retractStateMachine[T]) Serialize(buff []byte) []byte {
	return SerializeRetractAccumulator(r.acc, buff)
}

func (r *retractStateMachine[T]) Deserialize(buff []byte, offset int) int {
	r.acc, offset = DeserializeRetractAccumulator[T](buff, offset, r.first)
	return offset
}

func (r *retractStateMachine[T]) Retractable() bool {
	return true
}

func newStateMachine[T AggValue](first bool, withRetract bool) AggStateMachine {
	if withRetract {
		var f retractAggFunc[T]
		if first {
			f = &FirstValueWithRetractAggFunc[T]{}
		} else {
			f = &LastValueWithRetractAggFunc[T]{}
		}
		return &retractStateMachine[T]{f: f, acc: f.CreateAccumulator(), first: first}
	}
	var f aggFunc[T]
	if first {
		f = &FirstValueAggFunc[T]{}
	} else {
		f = &LastValueAggFunc[T]{}
	}
	return &plainStateMachine[T]{f: f, acc: f.CreateAccumulator()}
}

// CreateAggStateMachine instantiates the state machine for a value column
// type. The timestamp type aggregates on its physical int64 representation
// wrapped in types.Timestamp, decimals keep their precision and scale on the
// value itself.
func CreateAggStateMachine(ft types.ColumnType, first bool, withRetract bool) (AggStateMachine, error) {
	switch ft.ID() {
	case types.ColumnTypeIDInt:
		return newStateMachine[int64](first, withRetract), nil
	case types.ColumnTypeIDFloat:
		return newStateMachine[float64](first, withRetract), nil
	case types.ColumnTypeIDBool:
		return newStateMachine[bool](first, withRetract), nil
	case types.ColumnTypeIDDecimal:
		return newStateMachine[types.Decimal](first, withRetract), nil
	case types.ColumnTypeIDString:
		return newStateMachine[string](first, withRetract), nil
	case types.ColumnTypeIDBytes:
		return newStateMachine[[]byte](first, withRetract), nil
	case types.ColumnTypeIDTimestamp:
		return newStateMachine[types.Timestamp](first, withRetract), nil
	default:
		return nil, errors.NewTypeMismatchError("unsupported aggregate value type %s", ft.String())
	}
}
