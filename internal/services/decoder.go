package services

import (
	"encoding/binary"
	"math"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/domain/errs"
)

// MaxArrayElements ограничивает запрошенный размер массива
const MaxArrayElements = 1 << 16

// Decode интерпретирует сырой буфер тега по объявленному типу.
// Буфер не изменяется и не сохраняется после возврата.
//
// Размер буфера приходит от устройства, поэтому все смещения проверяются:
// длина STRING ограничивается остатком буфера, а элементы ARRAY за пределами
// буфера читаются как 0.
func Decode(buf []byte, tagType string, arraySize int) (entities.Value, error) {
	const op = "decode"

	t, ok := entities.ParseTagType(tagType)
	if !ok {
		return entities.Value{}, errs.New(errs.CodeUnsupportedTagType, op, "Tag type '%s' not supported", tagType)
	}

	switch t {
	case entities.TagBool:
		if len(buf) < 1 {
			return entities.Value{}, errs.New(errs.CodeDecodeError, op, "BOOL needs 1 byte, buffer has %d", len(buf))
		}
		return entities.BoolValue(buf[0] != 0), nil

	case entities.TagDint:
		i, ok := int32At(buf, 0)
		if !ok {
			return entities.Value{}, errs.New(errs.CodeDecodeError, op, "DINT needs 4 bytes, buffer has %d", len(buf))
		}
		return entities.Int32Value(i), nil

	case entities.TagReal:
		if len(buf) < 4 {
			return entities.Value{}, errs.New(errs.CodeDecodeError, op, "REAL needs 4 bytes, buffer has %d", len(buf))
		}
		return entities.Float32Value(math.Float32frombits(binary.LittleEndian.Uint32(buf))), nil

	case entities.TagString:
		declared, ok := int32At(buf, 0)
		if !ok {
			return entities.Value{}, errs.New(errs.CodeDecodeError, op, "STRING needs a 4 byte length, buffer has %d", len(buf))
		}
		n := min(int(declared), len(buf)-4)
		if n < 0 {
			return entities.Value{}, errs.New(errs.CodeDecodeError, op, "STRING has negative length %d", declared)
		}
		return entities.StringValue(asciiString(buf[4 : 4+n])), nil

	case entities.TagArray:
		if arraySize < 0 || arraySize > MaxArrayElements {
			return entities.Value{}, errs.New(errs.CodeDecodeError, op, "ARRAY size %d is out of range 0..%d", arraySize, MaxArrayElements)
		}
		count := arraySize
		if count == 0 {
			count = len(buf) / 4
		}
		values := make([]int32, count)
		for i := range values {
			// короткое чтение даёт 0, массив не отбрасывается целиком
			values[i], _ = int32At(buf, i*4)
		}
		return entities.ArrayValue(values), nil
	}

	return entities.Value{}, errs.New(errs.CodeUnsupportedTagType, op, "Tag type '%s' not supported", tagType)
}

func int32At(buf []byte, offset int) (int32, bool) {
	if offset < 0 || offset+4 > len(buf) {
		return 0, false
	}
	return int32(binary.LittleEndian.Uint32(buf[offset:])), true
}

// asciiString заменяет байты вне ASCII на '?'
func asciiString(b []byte) string {
	out := make([]byte, len(b))
	for i, c := range b {
		if c > 0x7f {
			c = '?'
		}
		out[i] = c
	}
	return string(out)
}
