package interfaces

import (
	"context"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/plctag"
)

// ConnectionRegistry определяет контракт реестра подключений к контроллерам.
// Реестр - единственное разделяемое изменяемое состояние сервиса.
type ConnectionRegistry interface {
	Add(cfg entities.EndpointConfig) (entities.EndpointStatus, error)
	Update(name string, upd entities.EndpointUpdate) (entities.EndpointStatus, error)
	Remove(name string) error
	TestConnection(ctx context.Context, name string) (bool, error)
	Status(name string) (entities.EndpointStatus, error)
	AllStatuses() []entities.EndpointStatus
	BuildHandleSpec(name, tagName string) (plctag.Spec, error)
	// IfCurrent вызывает fn атомарно относительно Update/Remove, если поколение
	// контроллера совпадает с полученным из BuildHandleSpec
	IfCurrent(name string, generation uint64, fn func()) bool
	IsActive(name string) bool
}
