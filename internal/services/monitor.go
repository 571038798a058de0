package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/domain/errs"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"
)

// EqualEpsilon - допуск для условия Equal
const EqualEpsilon = 1e-4

// Маркеры аннотаций в поле errorMessage успешно прочитанных тегов
const (
	ConditionMetMark    = "✓"
	ConditionNotMetMark = "✗"
)

// MonitorService проверяет пороговые условия по прочитанным тегам
type MonitorService struct {
	reader  interfaces.TagReader
	logger  *slog.Logger
	metrics interfaces.Metrics
}

func NewMonitorService(reader interfaces.TagReader, logger *slog.Logger, metrics interfaces.Metrics) interfaces.TagMonitor {
	return &MonitorService{
		reader:  reader,
		logger:  logger,
		metrics: metrics,
	}
}

// Evaluate приводит значение к числу и проверяет условие.
// Если приведение невозможно или вид условия неизвестен, результат false.
func (m *MonitorService) Evaluate(value entities.Value, cond entities.TagCondition) bool {
	num, ok := value.Float64()
	if !ok {
		return false
	}

	threshold := float64(cond.ThresholdValue)
	switch strings.ToLower(string(cond.ConditionType)) {
	case "greaterthan":
		return num > threshold
	case "lessthan":
		return num < threshold
	case "equal":
		return math.Abs(num-threshold) < EqualEpsilon
	case "between":
		return num >= float64(cond.MinValue) && num <= float64(cond.MaxValue)
	default:
		return false
	}
}

// MonitorWithConditions читает тег каждого условия и аннотирует результат маркером.
// Результаты идут в порядке условий, по одному на условие.
func (m *MonitorService) MonitorWithConditions(ctx context.Context, endpoint string, conditions []entities.TagCondition) (entities.MonitorReport, error) {
	if len(conditions) == 0 {
		return entities.MonitorReport{}, errs.New(errs.CodeEmptyConditionSet, "monitor", "Conditions cannot be empty")
	}

	ctx = context.WithoutCancel(ctx)
	report := entities.MonitorReport{
		PLCName: endpoint,
		Tags:    make([]entities.TagValue, 0, len(conditions)),
	}

	for _, cond := range conditions {
		tagType := cond.TagType
		if strings.TrimSpace(tagType) == "" {
			tagType = string(entities.TagDint)
		}

		tv, err := m.reader.ReadOne(ctx, endpoint, cond.TagName, tagType, 0)
		if err != nil {
			tv = failedTagValue(endpoint, cond.TagName, tagType, err)
		}

		if tv.OK() {
			if m.Evaluate(tv.CurrentValue, cond) {
				report.AlertedTags++
				tv.ErrorMessage = fmt.Sprintf("%s Condition %s met", ConditionMetMark, cond.ConditionType)
			} else {
				tv.ErrorMessage = fmt.Sprintf("%s Condition %s not met", ConditionNotMetMark, cond.ConditionType)
			}
		}

		report.Tags = append(report.Tags, tv)
	}

	report.TotalTags = len(report.Tags)
	m.metrics.ConditionsMet(report.AlertedTags)
	m.logger.Debug("мониторинг выполнен", "plc", endpoint, "total", report.TotalTags, "alerted", report.AlertedTags)
	return report, nil
}

var _ interfaces.TagMonitor = (*MonitorService)(nil)
