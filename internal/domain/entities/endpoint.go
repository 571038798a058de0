package entities

import "time"

// DefaultEndpointName - зарезервированное имя контроллера, который существует всегда
const DefaultEndpointName = "PLC-Default"

// Health - состояние связи с контроллером
type Health string

const (
	HealthIdle         Health = "IDLE"
	HealthDisconnected Health = "DISCONNECTED"
	HealthTesting      Health = "TESTING"
	HealthConnected    Health = "CONNECTED"
	HealthError        Health = "ERROR"
)

// Protocol - вариант протокола доступа к тегам
type Protocol string

const (
	ProtocolEIP       Protocol = "ab_eip"
	ProtocolModbusTCP Protocol = "modbus_tcp"
	ProtocolOPCUA     Protocol = "opcua"
)

// PlcType - семейство контроллера
type PlcType string

const (
	PlcControlLogix PlcType = "controllogix"
	PlcMicro800     PlcType = "micro800"
	PlcMicroLogix   PlcType = "micrologix"
	PlcPLC5         PlcType = "plc5"
	PlcSLC500       PlcType = "slc500"
	PlcOmronNJNX    PlcType = "omron-njnx"
)

// EndpointConfig - конфигурация контроллера и его изменяемое состояние связи.
// Экземплярами владеет только реестр подключений.
type EndpointConfig struct {
	ID               string
	Name             string
	Address          string
	Path             string
	Protocol         Protocol
	PlcType          PlcType
	TimeoutSeconds   int
	Health           Health
	LastErrorMessage string
	LastErrorTime    *time.Time
}

// Timeout возвращает таймаут операций с тегами
func (c EndpointConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// EndpointUpdate - частичное изменение конфигурации; nil-поля не меняются
type EndpointUpdate struct {
	Address        *string
	Path           *string
	TimeoutSeconds *int
}

// EndpointStatus - представление состояния контроллера только для чтения
type EndpointStatus struct {
	ID                       string     `json:"id"`
	PLCName                  string     `json:"plcName"`
	Gateway                  string     `json:"gateway"`
	Path                     string     `json:"path"`
	Protocol                 Protocol   `json:"protocol"`
	PlcType                  PlcType    `json:"plcType"`
	TimeoutSeconds           int        `json:"timeoutSeconds"`
	Status                   Health     `json:"status"`
	LastSuccessfulConnection *time.Time `json:"lastSuccessfulConnection"`
	LastErrorMessage         *string    `json:"lastErrorMessage"`
	LastErrorTime            *time.Time `json:"lastErrorTime"`
}

// AddEndpointRequest - тело запроса на добавление контроллера.
// Обязательность полей проверяет валидатор реестра, а не привязка gin.
type AddEndpointRequest struct {
	PLCName        string   `json:"plcName"`
	Gateway        string   `json:"gateway"`
	Path           string   `json:"path"`
	TimeoutSeconds *int     `json:"timeoutSeconds"`
	Protocol       Protocol `json:"protocol"`
	PlcType        PlcType  `json:"plcType"`
}

// UpdateEndpointRequest - тело запроса на изменение контроллера, все поля необязательны
type UpdateEndpointRequest struct {
	Gateway        *string `json:"gateway"`
	Path           *string `json:"path"`
	TimeoutSeconds *int    `json:"timeoutSeconds"`
}

// EndpointSummary - краткий ответ на создание контроллера
type EndpointSummary struct {
	ID      string `json:"id"`
	PLCName string `json:"plcName"`
	Gateway string `json:"gateway"`
}
