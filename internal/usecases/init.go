package usecases

import (
	"log/slog"

	"github.com/chuhuyvt/FS-Project/internal/interfaces"
)

// UseCases - агрегатор всех use case интерфейсов
type UseCases struct {
	interfaces.EndpointUsecase
	interfaces.TagUsecase
	interfaces.PollingUsecase
}

// NewUsecases - конструктор для UseCases
func NewUsecases(
	repo interfaces.Repository,
	registry interfaces.ConnectionRegistry,
	reader interfaces.TagReader,
	monitor interfaces.TagMonitor,
	pollSvc interfaces.PollingService,
	producer interfaces.DataProducer,
	logger *slog.Logger,
) interfaces.Usecases {
	return &UseCases{
		EndpointUsecase: NewConnectionUsecase(registry, pollSvc, repo, logger),
		TagUsecase:      NewTagUsecase(reader, monitor, repo, producer, logger),
		PollingUsecase:  NewPollingUsecase(pollSvc),
	}
}
