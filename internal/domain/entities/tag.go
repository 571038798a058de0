package entities

import (
	"encoding/json"
	"slices"
	"strconv"
	"strings"
	"time"
)

// TagType - объявленный логический тип тега
type TagType string

const (
	TagBool   TagType = "BOOL"
	TagDint   TagType = "DINT"
	TagReal   TagType = "REAL"
	TagString TagType = "STRING"
	TagArray  TagType = "ARRAY"
)

// ParseTagType нормализует имя типа без учёта регистра.
// Второй результат false означает неподдерживаемый тип.
func ParseTagType(s string) (TagType, bool) {
	t := TagType(strings.ToUpper(strings.TrimSpace(s)))
	switch t {
	case TagBool, TagDint, TagReal, TagString, TagArray:
		return t, true
	default:
		return t, false
	}
}

// Value - закрытое объединение значений тега:
// bool | int32 | float32 | string | []int32. Нулевое Value означает "значения нет".
type Value struct {
	kind TagType
	b    bool
	i    int32
	f    float32
	s    string
	arr  []int32
}

func BoolValue(b bool) Value       { return Value{kind: TagBool, b: b} }
func Int32Value(i int32) Value     { return Value{kind: TagDint, i: i} }
func Float32Value(f float32) Value { return Value{kind: TagReal, f: f} }
func StringValue(s string) Value   { return Value{kind: TagString, s: s} }

// ArrayValue копирует срез, чтобы значение не разделяло память с вызывающим
func ArrayValue(arr []int32) Value {
	return Value{kind: TagArray, arr: slices.Clone(arr)}
}

// Kind возвращает тип значения; пустая строка для отсутствующего значения
func (v Value) Kind() TagType { return v.kind }

// IsZero сообщает, что значение не задано
func (v Value) IsZero() bool { return v.kind == "" }

func (v Value) Bool() bool       { return v.b }
func (v Value) Int32() int32     { return v.i }
func (v Value) Float32() float32 { return v.f }
func (v Value) Str() string      { return v.s }

// Array возвращает копию элементов массива
func (v Value) Array() []int32 { return slices.Clone(v.arr) }

// Interface возвращает значение как нативный тип Go
func (v Value) Interface() any {
	switch v.kind {
	case TagBool:
		return v.b
	case TagDint:
		return v.i
	case TagReal:
		return v.f
	case TagString:
		return v.s
	case TagArray:
		if v.arr == nil {
			return []int32{}
		}
		return v.arr
	default:
		return nil
	}
}

// Float64 приводит значение к числу для вычисления условий.
// Массивы и нечисловые строки не приводятся.
func (v Value) Float64() (float64, bool) {
	switch v.kind {
	case TagBool:
		if v.b {
			return 1, true
		}
		return 0, true
	case TagDint:
		return float64(v.i), true
	case TagReal:
		return float64(v.f), true
	case TagString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// Equal сравнивает два значения с учётом типа
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case TagBool:
		return v.b == o.b
	case TagDint:
		return v.i == o.i
	case TagReal:
		return v.f == o.f
	case TagString:
		return v.s == o.s
	case TagArray:
		return slices.Equal(v.arr, o.arr)
	default:
		return true
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// TagStatus - итог чтения тега
type TagStatus string

const (
	TagStatusOK    TagStatus = "OK"
	TagStatusError TagStatus = "ERROR"
)

// TagValue - запись результата чтения. При Status=OK ErrorMessage пуст
// (кроме аннотаций мониторинга), при Status=ERROR CurrentValue не задано.
type TagValue struct {
	PLCName       string     `json:"plcName,omitempty"`
	TagName       string     `json:"tagName"`
	TagType       string     `json:"tagType"`
	CurrentValue  Value      `json:"currentValue"`
	PreviousValue *Value     `json:"previousValue,omitempty"`
	LastChanged   *time.Time `json:"lastChanged,omitempty"`
	Status        TagStatus  `json:"status"`
	ErrorMessage  string     `json:"errorMessage,omitempty"`
}

// OK сообщает об успешном чтении
func (t TagValue) OK() bool { return t.Status == TagStatusOK }

// ReadTagRequest - запрос на чтение одного тега
type ReadTagRequest struct {
	PLCName   string `json:"plcName"`
	TagName   string `json:"tagName"`
	TagType   string `json:"tagType"`
	ArraySize int    `json:"arraySize"`
}

// ReadTagsRequest - запрос на пакетное чтение тегов
type ReadTagsRequest struct {
	PLCName    string   `json:"plcName"`
	TagNames   []string `json:"tagNames"`
	TagTypes   []string `json:"tagTypes"`
	ArraySizes []int    `json:"arraySizes"`
}
