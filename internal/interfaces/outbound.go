package interfaces

import (
	"context"
	"time"
)

// DataProducer публикует результаты опроса и мониторинга во внешнюю систему.
// Ключ сообщения - имя контроллера, значение - JSON.
type DataProducer interface {
	Produce(ctx context.Context, key, value []byte) error
	Close() error
}

// Metrics определяет контракт сбора метрик сервиса
type Metrics interface {
	ObserveRead(status string, d time.Duration)
	ConnectionTested(ok bool)
	ConditionsMet(n int)
	SetEndpoints(n int)
}
