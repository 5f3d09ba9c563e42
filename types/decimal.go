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

package types

import (
	"math/big"

	"github.com/apache/arrow/go/v11/arrow/decimal128"
)

const (
	DefaultDecimalPrecision = 38
	DefaultDecimalScale     = 6
)

type Decimal struct {
	Num       decimal128.Num
	Precision int
	Scale     int
}

func NewDecimalFromInt64(val int64, precision int, scale int) Decimal {
	decNum := decimal128.FromI64(val)
	if scale > 0 {
		decNum = decNum.IncreaseScaleBy(int32(scale))
	} else if scale < 0 {
		decNum = decNum.ReduceScaleBy(-int32(scale), true)
	}
	return Decimal{
		Num:       decNum,
		Precision: precision,
		Scale:     scale,
	}
}

func NewDecimalFromFloat64(val float64, precision int, scale int) (Decimal, error) {
	decNum, err := decimal128.FromFloat64(val, int32(precision), int32(scale))
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{
		Num:       decNum,
		Precision: precision,
		Scale:     scale,
	}, nil
}

func NewDecimalFromString(val string, precision int, scale int) (Decimal, error) {
	decNum, err := decimal128.FromString(val, int32(precision), int32(scale))
	if err != nil {
		return Decimal{}, err
	}
	return Decimal{
		Num:       decNum,
		Precision: precision,
		Scale:     scale,
	}, nil
}

func (d *Decimal) ConvertPrecisionAndScale(prec int, scale int) Decimal {
	scaleDiff := scale - d.Scale
	if scaleDiff > 0 {
		num := d.Num.IncreaseScaleBy(int32(scaleDiff))
		return Decimal{
			Num:       num,
			Precision: prec,
			Scale:     scale,
		}
	} else if scaleDiff < 0 {
		num := d.Num.ReduceScaleBy(-int32(scaleDiff), true)
		return Decimal{
			Num:       num,
			Precision: prec,
			Scale:     scale,
		}
	} else {
		return Decimal{
			Num:       d.Num,
			Precision: prec,
			Scale:     scale,
		}
	}
}

func (d *Decimal) GreaterThan(d2 *Decimal) bool {
	if d.Precision == d2.Precision && d.Scale == d2.Scale {
		return d.Num.Greater(d2.Num)
	}
	if d.Scale > d2.Scale {
		adjustedNum := d2.Num.IncreaseScaleBy(int32(d.Scale - d2.Scale))
		return d.Num.Greater(adjustedNum)
	} else {
		adjustedNum := d.Num.IncreaseScaleBy(int32(d2.Scale - d.Scale))
		return adjustedNum.Greater(d2.Num)
	}
}

func (d *Decimal) LessThan(d2 *Decimal) bool {
	if d.Precision == d2.Precision && d.Scale == d2.Scale {
		return d.Num.Less(d2.Num)
	}
	if d.Scale > d2.Scale {
		adjustedNum := d2.Num.IncreaseScaleBy(int32(d.Scale - d2.Scale))
		return d.Num.Less(adjustedNum)
	} else {
		adjustedNum := d.Num.IncreaseScaleBy(int32(d2.Scale - d.Scale))
		return adjustedNum.Less(d2.Num)
	}
}

func (d *Decimal) GreaterOrEquals(d2 *Decimal) bool {
	return !d.LessThan(d2)
}

func (d *Decimal) LessOrEquals(d2 *Decimal) bool {
	return !d.GreaterThan(d2)
}

func (d *Decimal) Equals(d2 *Decimal) bool {
	if d.Precision == d2.Precision && d.Scale == d2.Scale {
		return d.Num == d2.Num
	}
	if d.Scale > d2.Scale {
		adjustedNum := d2.Num.IncreaseScaleBy(int32(d.Scale - d2.Scale))
		return d.Num == adjustedNum
	} else {
		adjustedNum := d.Num.IncreaseScaleBy(int32(d2.Scale - d.Scale))
		return d2.Num == adjustedNum
	}
}

func (d *Decimal) ToFloat64() float64 {
	return d.Num.ToFloat64(int32(d.Scale))
}

func (d *Decimal) ToInt64() int64 {
	if d.Scale > 0 {
		res := &big.Int{}
		mult := decimal128.GetScaleMultiplier(d.Scale)
		bi := res.Div(d.Num.BigInt(), mult.BigInt())
		return bi.Int64()
	} else if d.Scale < 0 {
		res := &big.Int{}
		mult := decimal128.GetScaleMultiplier(-d.Scale)
		bi := res.Mul(d.Num.BigInt(), mult.BigInt())
		return bi.Int64()
	} else {
		return d.Num.BigInt().Int64()
	}
}

func (d *Decimal) String() string {
	return d.Num.ToString(int32(d.Scale))
}
