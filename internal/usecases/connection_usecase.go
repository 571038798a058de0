package usecases

import (
	"context"
	"log/slog"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"
)

// Значения по умолчанию для полей запроса на добавление контроллера
const (
	DefaultPath           = "1,0"
	DefaultTimeoutSeconds = 5
)

type ConnectionUsecase struct {
	registry interfaces.ConnectionRegistry
	pollSvc  interfaces.PollingService
	repo     interfaces.DataStoreRepository
	logger   *slog.Logger
}

func NewConnectionUsecase(
	registry interfaces.ConnectionRegistry,
	pollSvc interfaces.PollingService,
	repo interfaces.Repository,
	logger *slog.Logger,
) interfaces.EndpointUsecase {
	return &ConnectionUsecase{
		registry: registry,
		pollSvc:  pollSvc,
		repo:     repo,
		logger:   logger,
	}
}

func (u *ConnectionUsecase) AddEndpoint(req entities.AddEndpointRequest) (entities.EndpointSummary, error) {
	path := req.Path
	if path == "" {
		path = DefaultPath
	}
	timeout := DefaultTimeoutSeconds
	if req.TimeoutSeconds != nil {
		timeout = *req.TimeoutSeconds
	}

	status, err := u.registry.Add(entities.EndpointConfig{
		Name:           req.PLCName,
		Address:        req.Gateway,
		Path:           path,
		Protocol:       req.Protocol,
		PlcType:        req.PlcType,
		TimeoutSeconds: timeout,
	})
	if err != nil {
		return entities.EndpointSummary{}, err
	}
	return entities.EndpointSummary{ID: status.ID, PLCName: status.PLCName, Gateway: status.Gateway}, nil
}

func (u *ConnectionUsecase) UpdateEndpoint(name string, req entities.UpdateEndpointRequest) (entities.EndpointStatus, error) {
	return u.registry.Update(name, entities.EndpointUpdate{
		Address:        req.Gateway,
		Path:           req.Path,
		TimeoutSeconds: req.TimeoutSeconds,
	})
}

// RemoveEndpoint удаляет контроллер, останавливает его опрос и очищает последние значения
func (u *ConnectionUsecase) RemoveEndpoint(name string) error {
	if err := u.registry.Remove(name); err != nil {
		return err
	}
	if err := u.pollSvc.StopPolling(name); err != nil {
		u.logger.Warn("не удалось остановить опрос удалённого контроллера", "plc", name, "error", err)
	}
	u.repo.DeleteEndpoint(name)
	return nil
}

func (u *ConnectionUsecase) TestEndpoint(ctx context.Context, name string) (bool, error) {
	return u.registry.TestConnection(ctx, name)
}

func (u *ConnectionUsecase) EndpointStatus(name string) (entities.EndpointStatus, error) {
	return u.registry.Status(name)
}

func (u *ConnectionUsecase) AllEndpointStatuses() []entities.EndpointStatus {
	return u.registry.AllStatuses()
}

func (u *ConnectionUsecase) IsDefaultActive() bool {
	return u.registry.IsActive(entities.DefaultEndpointName)
}
