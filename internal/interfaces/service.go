package interfaces

import (
	"context"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
)

// TagReader определяет контракт чтения тегов.
// Ошибки доступа к тегу возвращаются внутри TagValue, а не через error.
type TagReader interface {
	ReadOne(ctx context.Context, endpoint, tagName, tagType string, arraySize int) (entities.TagValue, error)
	ReadMany(ctx context.Context, endpoint string, names, types []string, sizes []int) ([]entities.TagValue, error)
}

// TagMonitor определяет контракт проверки пороговых условий
type TagMonitor interface {
	Evaluate(value entities.Value, cond entities.TagCondition) bool
	MonitorWithConditions(ctx context.Context, endpoint string, conditions []entities.TagCondition) (entities.MonitorReport, error)
}

// PollingService определяет контракт сервиса фонового опроса контроллеров
type PollingService interface {
	StartPolling(req entities.PollingRequest) (entities.PollInfo, error)
	StopPolling(endpoint string) error
	ActivePolls() []entities.PollInfo
	StopAllPolling()
}
