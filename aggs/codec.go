package aggs

import (
	"github.com/tailstream-io/tailstream/asl/encoding"
	"github.com/tailstream-io/tailstream/common"
	"github.com/tailstream-io/tailstream/types"
)

// Accumulator state round-trips through a little-endian binary form so the
// owning engine can checkpoint or shuffle it. Retract accumulators write
// their live contributions in insertion order - the order is part of the
// state, equal order keys are tie-broken on it.

func SerializeAccumulator[T AggValue](acc *Accumulator[T], buff []byte) []byte {
	buff = encoding.AppendBoolToBuffer(buff, !acc.null)
	if !acc.null {
		buff = appendAggValue(buff, acc.val)
	}
	buff = encoding.AppendBoolToBuffer(buff, acc.hasOrder)
	if acc.hasOrder {
		buff = encoding.AppendUint64ToBufferLE(buff, uint64(acc.orderKey))
	}
	return buff
}

func DeserializeAccumulator[T AggValue](buff []byte, offset int) (*Accumulator[T], int) {
	acc := &Accumulator[T]{null: true}
	var hasValue bool
	hasValue, offset = encoding.ReadBoolFromBuffer(buff, offset)
	if hasValue {
		acc.null = false
		acc.val, offset = readAggValue[T](buff, offset)
	}
	acc.hasOrder, offset = encoding.ReadBoolFromBuffer(buff, offset)
	if acc.hasOrder {
		var u uint64
		u, offset = encoding.ReadUint64FromBufferLE(buff, offset)
		acc.orderKey = int64(u)
	}
	return acc, offset
}

func SerializeRetractAccumulator[T AggValue](acc *RetractAccumulator[T], buff []byte) []byte {
	buff = encoding.AppendUint64ToBufferLE(buff, acc.seq)
	contribs := acc.liveContributions()
	buff = encoding.AppendUint32ToBufferLE(buff, uint32(len(contribs)))
	for _, contrib := range contribs {
		buff = encoding.AppendUint64ToBufferLE(buff, contrib.key.seq)
		buff = encoding.AppendBoolToBuffer(buff, contrib.key.hasOrder)
		if contrib.key.hasOrder {
			buff = encoding.AppendUint64ToBufferLE(buff, uint64(contrib.key.orderKey))
		}
		buff = appendAggValue(buff, contrib.val)
	}
	return buff
}

func DeserializeRetractAccumulator[T AggValue](buff []byte, offset int, first bool) (*RetractAccumulator[T], int) {
	acc := newRetractAccumulator[T](first)
	acc.seq, offset = encoding.ReadUint64FromBufferLE(buff, offset)
	var numContribs uint32
	numContribs, offset = encoding.ReadUint32FromBufferLE(buff, offset)
	for i := 0; i < int(numContribs); i++ {
		var key contribKey
		key.seq, offset = encoding.ReadUint64FromBufferLE(buff, offset)
		key.hasOrder, offset = encoding.ReadBoolFromBuffer(buff, offset)
		if key.hasOrder {
			var u uint64
			u, offset = encoding.ReadUint64FromBufferLE(buff, offset)
			key.orderKey = int64(u)
		}
		var val T
		val, offset = readAggValue[T](buff, offset)
		acc.tree.Put(key, val)
	}
	acc.updateCandidate()
	return acc, offset
}

func appendAggValue[T AggValue](buff []byte, val T) []byte {
	switch v := any(val).(type) {
	case int64:
		return encoding.AppendUint64ToBufferLE(buff, uint64(v))
	case float64:
		return encoding.AppendFloat64ToBufferLE(buff, v)
	case bool:
		return encoding.AppendBoolToBuffer(buff, v)
	case types.Decimal:
		return encoding.AppendDecimalToBuffer(buff, v)
	case string:
		return encoding.AppendStringToBufferLE(buff, v)
	case []byte:
		return encoding.AppendBytesToBufferLE(buff, v)
	case types.Timestamp:
		return encoding.AppendUint64ToBufferLE(buff, uint64(v.Val))
	default:
		panic("unexpected agg value type")
	}
}

func readAggValue[T AggValue](buff []byte, offset int) (T, int) {
	var val T
	switch any(val).(type) {
	case int64:
		var u uint64
		u, offset = encoding.ReadUint64FromBufferLE(buff, offset)
		val = any(int64(u)).(T)
	case float64:
		var f float64
		f, offset = encoding.ReadFloat64FromBufferLE(buff, offset)
		val = any(f).(T)
	case bool:
		var b bool
		b, offset = encoding.ReadBoolFromBuffer(buff, offset)
		val = any(b).(T)
	case types.Decimal:
		var d types.Decimal
		d, offset = encoding.ReadDecimalFromBuffer(buff, offset)
		val = any(d).(T)
	case string:
		var s string
		s, offset = encoding.ReadStringFromBufferLE(buff, offset)
		val = any(s).(T)
	case []byte:
		var b []byte
		b, offset = encoding.ReadBytesFromBufferLE(buff, offset)
		val = any(common.ByteSliceCopy(b)).(T)
	case types.Timestamp:
		var u uint64
		u, offset = encoding.ReadUint64FromBufferLE(buff, offset)
		val = any(types.NewTimestamp(int64(u))).(T)
	default:
		panic("unexpected agg value type")
	}
	return val, offset
}
