// Package plctag описывает внешний слой доступа к тегам контроллера
// и содержит его реализации: симулятор и шлюз OPC UA.
//
// Жизненный цикл дескриптора: NewTag -> Initialize -> Read -> Bytes/Size -> Close.
// Close идемпотентен и вызывается на каждом пути выхода.
package plctag

import (
	"context"
	"errors"
	"time"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
)

var (
	ErrTimeout     = errors.New("PLCTAG_ERR_TIMEOUT: operation timed out")
	ErrNotFound    = errors.New("PLCTAG_ERR_NOT_FOUND: tag not found")
	ErrNotReady    = errors.New("PLCTAG_ERR_NOT_READY: tag is not initialized")
	ErrClosed      = errors.New("PLCTAG_ERR_CLOSED: tag handle is closed")
	ErrUnreachable = errors.New("PLCTAG_ERR_BAD_GATEWAY: gateway unreachable")
)

// Spec - параметры для создания дескриптора тега
type Spec struct {
	Name     string
	Gateway  string
	Path     string
	Protocol entities.Protocol
	PlcType  entities.PlcType
	Timeout  time.Duration

	// Generation - поколение конфигурации контроллера, из которой построен дескриптор
	Generation uint64
}

// Tag - короткоживущий дескриптор одного тега на одном контроллере
type Tag interface {
	Initialize(ctx context.Context) error
	Read(ctx context.Context) error
	// Size возвращает длину буфера после последнего чтения
	Size() int
	// Bytes возвращает копию буфера
	Bytes() []byte
	Close() error
}

// Driver создаёт дескрипторы тегов
type Driver interface {
	NewTag(spec Spec) (Tag, error)
}
