package plctag

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
)

// Encode раскладывает нативное значение Go в буфер контроллера,
// определяя логический тип по типу значения.
func Encode(v any) ([]byte, error) {
	switch v.(type) {
	case bool:
		return EncodeAs(entities.TagBool, v)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return EncodeAs(entities.TagDint, v)
	case float32, float64:
		return EncodeAs(entities.TagReal, v)
	case string:
		return EncodeAs(entities.TagString, v)
	case []int32, []int16, []int64, []int, []uint16, []uint32, []any:
		return EncodeAs(entities.TagArray, v)
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}

// EncodeAs раскладывает значение в буфер в формате объявленного типа:
// BOOL - 1 байт, DINT/REAL - 4 байта little-endian,
// STRING - длина int32 и ASCII-байты, ARRAY - подряд идущие int32.
func EncodeAs(t entities.TagType, v any) ([]byte, error) {
	switch t {
	case entities.TagBool:
		b, err := toBool(v)
		if err != nil {
			return nil, err
		}
		if b {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case entities.TagDint:
		i, err := toInt32(v)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(i))
		return buf, nil
	case entities.TagReal:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(f)))
		return buf, nil
	case entities.TagString:
		s := fmt.Sprint(v)
		buf := make([]byte, 4+len(s))
		binary.LittleEndian.PutUint32(buf, uint32(len(s)))
		copy(buf[4:], s)
		return buf, nil
	case entities.TagArray:
		items, err := toSlice(v)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, 4*len(items))
		for i, item := range items {
			n, err := toInt32(item)
			if err != nil {
				return nil, fmt.Errorf("array element %d: %w", i, err)
			}
			binary.LittleEndian.PutUint32(buf[i*4:], uint32(n))
		}
		return buf, nil
	default:
		return nil, fmt.Errorf("unsupported tag type %q", t)
	}
}

func toBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		return strconv.ParseBool(strings.TrimSpace(val))
	default:
		f, err := toFloat(v)
		if err != nil {
			return false, err
		}
		return f != 0, nil
	}
}

// toInt32 приводит целые типы напрямую, сохраняя младшие 32 бита как у int32(x);
// через float идут только дробные значения и строки с дробной частью
func toInt32(v any) (int32, error) {
	switch val := v.(type) {
	case int:
		return int32(val), nil
	case int8:
		return int32(val), nil
	case int16:
		return int32(val), nil
	case int32:
		return val, nil
	case int64:
		return int32(val), nil
	case uint:
		return int32(val), nil
	case uint8:
		return int32(val), nil
	case uint16:
		return int32(val), nil
	case uint32:
		return int32(val), nil
	case uint64:
		return int32(val), nil
	case string:
		if n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return int32(n), nil
		}
	}
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	return int32(f), nil
}

func toFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int8:
		return float64(val), nil
	case int16:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint8:
		return float64(val), nil
	case uint16:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(val), 64)
	default:
		return 0, fmt.Errorf("value %v (%T) is not numeric", v, v)
	}
}

func toSlice(v any) ([]any, error) {
	switch val := v.(type) {
	case []any:
		return val, nil
	case []int32:
		return sliceOf(val), nil
	case []int16:
		return sliceOf(val), nil
	case []int64:
		return sliceOf(val), nil
	case []int:
		return sliceOf(val), nil
	case []uint16:
		return sliceOf(val), nil
	case []uint32:
		return sliceOf(val), nil
	default:
		return nil, fmt.Errorf("value %v (%T) is not an array", v, v)
	}
}

func sliceOf[T any](in []T) []any {
	out := make([]any, len(in))
	for i, item := range in {
		out[i] = item
	}
	return out
}
