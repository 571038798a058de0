package entities

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// ConditionKind - вид порогового условия
type ConditionKind string

const (
	ConditionGreaterThan ConditionKind = "GreaterThan"
	ConditionLessThan    ConditionKind = "LessThan"
	ConditionEqual       ConditionKind = "Equal"
	ConditionBetween     ConditionKind = "Between"
)

// Number - числовой порог. Принимает JSON-число, числовую строку или null.
// Нечисловая строка превращается в NaN, и любое сравнение с ней ложно.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			*n = Number(math.NaN())
			return nil
		}
		*n = Number(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Number(f)
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(f)
}

// TagCondition - условие мониторинга для одного тега.
// TagType необязателен, по умолчанию тег читается как DINT.
type TagCondition struct {
	TagName        string        `json:"tagName"`
	ConditionType  ConditionKind `json:"conditionType"`
	ThresholdValue Number        `json:"thresholdValue"`
	MinValue       Number        `json:"minValue"`
	MaxValue       Number        `json:"maxValue"`
	TagType        string        `json:"tagType,omitempty"`
}

// MonitorRequest - запрос на проверку условий
type MonitorRequest struct {
	PLCName    string         `json:"plcName"`
	Conditions []TagCondition `json:"conditions"`
}

// MonitorReport - результат проверки условий
type MonitorReport struct {
	PLCName     string     `json:"plcName"`
	TotalTags   int        `json:"totalTags"`
	AlertedTags int        `json:"alertedTags"`
	Tags        []TagValue `json:"tags"`
}
