package interfaces

import (
	"context"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
)

// Usecases - это агрегирующий интерфейс для всех use cases
type Usecases interface {
	EndpointUsecase
	TagUsecase
	PollingUsecase
}

// EndpointUsecase определяет контракт для логики управления подключениями
type EndpointUsecase interface {
	AddEndpoint(req entities.AddEndpointRequest) (entities.EndpointSummary, error)
	UpdateEndpoint(name string, req entities.UpdateEndpointRequest) (entities.EndpointStatus, error)
	RemoveEndpoint(name string) error
	TestEndpoint(ctx context.Context, name string) (bool, error)
	EndpointStatus(name string) (entities.EndpointStatus, error)
	AllEndpointStatuses() []entities.EndpointStatus
	IsDefaultActive() bool
}

// TagUsecase определяет контракт для чтения и мониторинга тегов
type TagUsecase interface {
	ReadTag(ctx context.Context, req entities.ReadTagRequest) (entities.TagValue, error)
	ReadTags(ctx context.Context, req entities.ReadTagsRequest) ([]entities.TagValue, error)
	Monitor(ctx context.Context, req entities.MonitorRequest) (entities.MonitorReport, error)
	LastValue(endpoint, tagName string) (entities.TagValue, error)
}

// PollingUsecase определяет контракт управления фоновым опросом
type PollingUsecase interface {
	StartPolling(req entities.PollingRequest) (entities.PollInfo, error)
	StopPolling(endpoint string) error
	ActivePolls() []entities.PollInfo
}
