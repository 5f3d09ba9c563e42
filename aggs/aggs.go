package aggs

import (
	"bytes"

	"github.com/tailstream-io/tailstream/types"
)

// AggValue is the set of physical value types the first/last value aggregate
// functions can be instantiated with. The engine's logical SQL types all map
// onto one of these.
type AggValue interface {
	int64 | float64 | bool | types.Decimal | string | []byte | types.Timestamp
}

// Accumulator holds the current first/last candidate for one aggregation
// group. null is true iff no non-null value is currently accumulated.
// hasOrder is false when the candidate carries no order key - either because
// the function is used without an order argument or because the winning entry
// arrived with a null order key.
type Accumulator[T AggValue] struct {
	val      T
	null     bool
	orderKey int64
	hasOrder bool
}

func (a *Accumulator[T]) GetValue() (T, bool) {
	return a.val, a.null
}

func (a *Accumulator[T]) OrderKey() (int64, bool) {
	return a.orderKey, a.hasOrder
}

func (a *Accumulator[T]) reset() {
	var zero T
	a.val = zero
	a.null = true
	a.orderKey = 0
	a.hasOrder = false
}

func (a *Accumulator[T]) set(val T, orderKey int64, hasOrder bool) {
	a.val = val
	a.null = false
	a.orderKey = orderKey
	a.hasOrder = hasOrder
}

func valuesEqual[T AggValue](v1 T, v2 T) bool {
	switch val1 := any(v1).(type) {
	case int64:
		return val1 == any(v2).(int64)
	case float64:
		return val1 == any(v2).(float64)
	case bool:
		return val1 == any(v2).(bool)
	case types.Decimal:
		val2 := any(v2).(types.Decimal)
		return val1.Equals(&val2)
	case string:
		return val1 == any(v2).(string)
	case []byte:
		return bytes.Equal(val1, any(v2).([]byte))
	case types.Timestamp:
		return val1.Val == any(v2).(types.Timestamp).Val
	default:
		panic("unexpected agg value type")
	}
}
