package config

import (
	"fmt"
	"os"
	"time"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/plctag"

	"gopkg.in/yaml.v3"
)

// EnvConfigPath - переменная окружения с путём к файлу конфигурации
const EnvConfigPath = "PLCGW_CONFIG"

const defaultConfigPath = "config.yaml"

// Драйверы доступа к тегам
const (
	DriverSim   = "sim"
	DriverOPCUA = "opcua"
)

// AppConfig содержит конфигурацию приложения
type AppConfig struct {
	Server          ServerConfig           `yaml:"server"`
	Log             LogConfig              `yaml:"log"`
	DefaultEndpoint EndpointConfig         `yaml:"default_endpoint"`
	TagAccess       TagAccessConfig        `yaml:"tag_access"`
	Simulator       plctag.SimulatorConfig `yaml:"simulator"`
	Kafka           KafkaConfig            `yaml:"kafka"`
	Tracking        TrackingConfig         `yaml:"tracking"`
	Polling         PollingConfig          `yaml:"polling"`
}

type ServerConfig struct {
	Port         string        `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// EndpointConfig - параметры контроллера по умолчанию
type EndpointConfig struct {
	Gateway        string `yaml:"gateway"`
	Path           string `yaml:"path"`
	Protocol       string `yaml:"protocol"`
	PlcType        string `yaml:"plc_type"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type TagAccessConfig struct {
	Driver   string             `yaml:"driver"`
	ProbeTag string             `yaml:"probe_tag"`
	OPCUA    plctag.OPCUAConfig `yaml:"opcua"`
}

// KafkaConfig - публикация результатов опроса и мониторинга; без брокеров публикация отключена
type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type TrackingConfig struct {
	Enabled bool `yaml:"enabled"`
}

type PollingConfig struct {
	DefaultInterval time.Duration `yaml:"default_interval"`
}

// LoadConfiguration загружает конфигурацию из файла, указанного в PLCGW_CONFIG,
// или из config.yaml. Отсутствующий файл по умолчанию не является ошибкой.
func LoadConfiguration() (*AppConfig, error) {
	if path := os.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); os.IsNotExist(err) {
		return FromBytes(nil)
	}
	return Load(defaultConfigPath)
}

// Load читает YAML-файл, применяет значения по умолчанию и проверяет результат
func Load(path string) (*AppConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromBytes(raw)
}

func FromBytes(raw []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *AppConfig) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}

	if c.DefaultEndpoint.Gateway == "" {
		c.DefaultEndpoint.Gateway = "10.44.189.226"
	}
	if c.DefaultEndpoint.Path == "" {
		c.DefaultEndpoint.Path = "1,0"
	}
	if c.DefaultEndpoint.Protocol == "" {
		c.DefaultEndpoint.Protocol = string(entities.ProtocolEIP)
	}
	if c.DefaultEndpoint.PlcType == "" {
		c.DefaultEndpoint.PlcType = string(entities.PlcControlLogix)
	}
	if c.DefaultEndpoint.TimeoutSeconds == 0 {
		c.DefaultEndpoint.TimeoutSeconds = 5
	}

	if c.TagAccess.Driver == "" {
		c.TagAccess.Driver = DriverSim
	}
	if c.TagAccess.ProbeTag == "" {
		c.TagAccess.ProbeTag = "x"
	}
	c.TagAccess.OPCUA.ApplyDefaults()

	if c.TagAccess.Driver == DriverSim && len(c.Simulator.Tags) == 0 {
		c.Simulator.Tags = []plctag.SimTag{{Name: c.TagAccess.ProbeTag, Type: string(entities.TagDint), Value: 0}}
	}

	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "plc-tags"
	}
	if c.Polling.DefaultInterval == 0 {
		c.Polling.DefaultInterval = time.Second
	}
}

func (c *AppConfig) validate() error {
	switch c.TagAccess.Driver {
	case DriverSim, DriverOPCUA:
	default:
		return fmt.Errorf("tag_access.driver must be %q or %q, got %q", DriverSim, DriverOPCUA, c.TagAccess.Driver)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	if c.Polling.DefaultInterval < 0 {
		return fmt.Errorf("polling.default_interval must be positive")
	}
	if c.TagAccess.OPCUA.Port <= 0 || c.TagAccess.OPCUA.Port > 65535 {
		return fmt.Errorf("tag_access.opcua.port out of range: %d", c.TagAccess.OPCUA.Port)
	}
	return nil
}

// DefaultEndpointConfig переводит секцию default_endpoint в конфигурацию реестра.
// Корректность адреса и пути проверяет реестр при создании.
func (c *AppConfig) DefaultEndpointConfig() entities.EndpointConfig {
	return entities.EndpointConfig{
		Name:           entities.DefaultEndpointName,
		Address:        c.DefaultEndpoint.Gateway,
		Path:           c.DefaultEndpoint.Path,
		Protocol:       entities.Protocol(c.DefaultEndpoint.Protocol),
		PlcType:        entities.PlcType(c.DefaultEndpoint.PlcType),
		TimeoutSeconds: c.DefaultEndpoint.TimeoutSeconds,
	}
}
