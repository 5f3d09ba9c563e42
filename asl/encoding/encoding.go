package encoding

import (
	"encoding/binary"
	"math"

	"github.com/apache/arrow/go/v11/arrow/decimal128"
	"github.com/tailstream-io/tailstream/common"
	"github.com/tailstream-io/tailstream/types"
)

var littleEndian = binary.LittleEndian
var bigEndian = binary.BigEndian

func AppendUint64ToBufferLE(buffer []byte, v uint64) []byte {
	return littleEndian.AppendUint64(buffer, v)
}

func AppendUint64ToBufferBE(buffer []byte, v uint64) []byte {
	return bigEndian.AppendUint64(buffer, v)
}

func ReadUint64FromBufferBE(buffer []byte, offset int) (uint64, int) {
	return bigEndian.Uint64(buffer[offset:]), offset + 8
}

func AppendUint32ToBufferLE(buffer []byte, v uint32) []byte {
	return littleEndian.AppendUint32(buffer, v)
}

func AppendFloat64ToBufferLE(buffer []byte, value float64) []byte {
	u := math.Float64bits(value)
	return AppendUint64ToBufferLE(buffer, u)
}

func AppendStringToBufferLE(buffer []byte, value string) []byte {
	buffPtr := AppendUint32ToBufferLE(buffer, uint32(len(value)))
	buffPtr = append(buffPtr, value...)
	return buffPtr
}

func AppendBytesToBufferLE(buffer []byte, value []byte) []byte {
	buffPtr := AppendUint32ToBufferLE(buffer, uint32(len(value)))
	buffPtr = append(buffPtr, value...)
	return buffPtr
}

func AppendBoolToBuffer(buffer []byte, val bool) []byte {
	var b byte
	if val {
		b = 1
	}
	return append(buffer, b)
}

func AppendDecimalToBuffer(buffer []byte, val types.Decimal) []byte {
	buffer = AppendUint64ToBufferLE(buffer, uint64(val.Num.HighBits()))
	buffer = AppendUint64ToBufferLE(buffer, val.Num.LowBits())
	buffer = AppendUint32ToBufferLE(buffer, uint32(val.Precision))
	return AppendUint32ToBufferLE(buffer, uint32(val.Scale))
}

func ReadUint64FromBufferLE(buffer []byte, offset int) (uint64, int) {
	return littleEndian.Uint64(buffer[offset:]), offset + 8
}

func ReadUint32FromBufferLE(buffer []byte, offset int) (uint32, int) {
	return littleEndian.Uint32(buffer[offset:]), offset + 4
}

func ReadFloat64FromBufferLE(buffer []byte, offset int) (val float64, off int) {
	var u uint64
	u, offset = ReadUint64FromBufferLE(buffer, offset)
	val = math.Float64frombits(u)
	return val, offset
}

func ReadStringFromBufferLE(buffer []byte, offset int) (val string, off int) {
	lv, offset := ReadUint32FromBufferLE(buffer, offset)
	lev := int(lv)
	val = common.ByteSliceToStringZeroCopy(buffer[offset : offset+lev])
	offset += lev
	return val, offset
}

func ReadBytesFromBufferLE(buffer []byte, offset int) (val []byte, off int) {
	lv, offset := ReadUint32FromBufferLE(buffer, offset)
	lev := int(lv)
	val = buffer[offset : offset+lev]
	offset += lev
	return val, offset
}

func ReadBoolFromBuffer(buffer []byte, offset int) (bool, int) {
	b := buffer[offset]
	return b == 1, offset + 1
}

func ReadDecimalFromBuffer(buffer []byte, offset int) (types.Decimal, int) {
	var hi, lo uint64
	hi, offset = ReadUint64FromBufferLE(buffer, offset)
	lo, offset = ReadUint64FromBufferLE(buffer, offset)
	var prec, scale uint32
	prec, offset = ReadUint32FromBufferLE(buffer, offset)
	scale, offset = ReadUint32FromBufferLE(buffer, offset)
	return types.Decimal{
		Num:       decimal128.New(int64(hi), lo),
		Precision: int(prec),
		Scale:     int(scale),
	}, offset
}
