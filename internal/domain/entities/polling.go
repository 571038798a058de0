package entities

import "time"

// PollTag - тег, который опрашивается в фоне
type PollTag struct {
	Name      string `json:"name" binding:"required"`
	Type      string `json:"type" binding:"required"`
	ArraySize int    `json:"arraySize"`
}

// PollingRequest - запрос на запуск фонового опроса контроллера
type PollingRequest struct {
	PLCName    string    `json:"plcName" binding:"required"`
	Tags       []PollTag `json:"tags" binding:"required,min=1,dive"`
	IntervalMs int       `json:"intervalMs"`
}

// PollInfo - состояние активного опроса
type PollInfo struct {
	PLCName   string        `json:"plcName"`
	Tags      []PollTag     `json:"tags"`
	Interval  time.Duration `json:"-"`
	IntervalS float64       `json:"intervalSeconds"`
	StartedAt time.Time     `json:"startedAt"`
	Cycles    uint64        `json:"cycles"`
	LastPoll  *time.Time    `json:"lastPoll,omitempty"`
}

// PollBatch - результат одного цикла опроса, публикуется во внешние системы
type PollBatch struct {
	PLCName   string     `json:"plcName"`
	Timestamp time.Time  `json:"timestamp"`
	Tags      []TagValue `json:"tags"`
}
