package services

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/domain/errs"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"
	"github.com/chuhuyvt/FS-Project/internal/plctag"

	"github.com/google/uuid"
)

// DefaultProbeTag - тег, который читается при проверке связи
const DefaultProbeTag = "x"

// RegistryConfig - начальные параметры реестра
type RegistryConfig struct {
	Default  entities.EndpointConfig
	ProbeTag string
}

type endpointEntry struct {
	cfg entities.EndpointConfig
	// generation меняется при каждом Add и Update, чтобы результат устаревшей проверки
	// связи не перезаписал состояние новой конфигурации
	generation uint64
}

// ConnectionService - реестр контроллеров под одной общей блокировкой.
// Блокировка держится только на время операций с картой, но не во время сетевого обмена.
type ConnectionService struct {
	mu          sync.Mutex
	pool        map[string]*endpointEntry
	order       []string
	lastSuccess map[string]time.Time
	generations uint64

	validator *EndpointValidator
	driver    plctag.Driver
	probeTag  string
	logger    *slog.Logger
	metrics   interfaces.Metrics
	now       func() time.Time
}

// NewConnectionService создаёт реестр и регистрирует контроллер по умолчанию
func NewConnectionService(
	cfg RegistryConfig,
	validator *EndpointValidator,
	driver plctag.Driver,
	logger *slog.Logger,
	metrics interfaces.Metrics,
) (interfaces.ConnectionRegistry, error) {
	s := &ConnectionService{
		pool:        make(map[string]*endpointEntry),
		lastSuccess: make(map[string]time.Time),
		validator:   validator,
		driver:      driver,
		probeTag:    cfg.ProbeTag,
		logger:      logger,
		metrics:     metrics,
		now:         time.Now,
	}
	if s.probeTag == "" {
		s.probeTag = DefaultProbeTag
	}

	def := withEndpointDefaults(cfg.Default)
	def.Name = entities.DefaultEndpointName
	if err := validator.ValidateConfig(def); err != nil {
		return nil, err
	}
	def.ID = uuid.New().String()
	def.Health = entities.HealthIdle
	def.LastErrorMessage = ""
	def.LastErrorTime = nil
	s.pool[def.Name] = &endpointEntry{cfg: def}
	s.order = append(s.order, def.Name)
	s.metrics.SetEndpoints(len(s.pool))

	return s, nil
}

// withEndpointDefaults подставляет протокол и семейство по умолчанию и убирает пробелы
// вокруг адреса и пути, чтобы драйвер получил ровно то, что прошло проверку
func withEndpointDefaults(cfg entities.EndpointConfig) entities.EndpointConfig {
	cfg.Address = strings.TrimSpace(cfg.Address)
	cfg.Path = strings.TrimSpace(cfg.Path)
	if cfg.Protocol == "" {
		cfg.Protocol = entities.ProtocolEIP
	}
	if cfg.PlcType == "" {
		cfg.PlcType = entities.PlcControlLogix
	}
	return cfg
}

// Add регистрирует новый контроллер в состоянии DISCONNECTED
func (s *ConnectionService) Add(cfg entities.EndpointConfig) (entities.EndpointStatus, error) {
	const op = "registry.add"
	cfg = withEndpointDefaults(cfg)
	if err := s.validator.ValidateConfig(cfg); err != nil {
		return entities.EndpointStatus{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pool[cfg.Name]; exists {
		return entities.EndpointStatus{}, errs.New(errs.CodeDuplicateEndpoint, op, "PLC '%s' already exists", cfg.Name)
	}

	cfg.ID = uuid.New().String()
	cfg.Health = entities.HealthDisconnected
	cfg.LastErrorMessage = ""
	cfg.LastErrorTime = nil
	s.generations++
	s.pool[cfg.Name] = &endpointEntry{cfg: cfg, generation: s.generations}
	s.order = append(s.order, cfg.Name)
	s.metrics.SetEndpoints(len(s.pool))

	s.logger.Info("контроллер добавлен", "plc", cfg.Name, "gateway", cfg.Address, "path", cfg.Path)
	return s.statusLocked(cfg.Name), nil
}

// Update меняет адрес, путь и таймаут; состояние сбрасывается в DISCONNECTED
func (s *ConnectionService) Update(name string, upd entities.EndpointUpdate) (entities.EndpointStatus, error) {
	const op = "registry.update"

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.pool[name]
	if !exists {
		return entities.EndpointStatus{}, errs.New(errs.CodeEndpointNotFound, op, "PLC '%s' not found", name)
	}

	next := entry.cfg
	if upd.Address != nil {
		next.Address = strings.TrimSpace(*upd.Address)
	}
	if upd.Path != nil {
		next.Path = strings.TrimSpace(*upd.Path)
	}
	if upd.TimeoutSeconds != nil {
		next.TimeoutSeconds = *upd.TimeoutSeconds
	}
	if err := s.validator.Validate(next.Name, next.Address, next.Path, next.TimeoutSeconds); err != nil {
		return entities.EndpointStatus{}, err
	}

	next.Health = entities.HealthDisconnected
	next.LastErrorMessage = ""
	next.LastErrorTime = nil
	entry.cfg = next
	s.generations++
	entry.generation = s.generations

	s.logger.Info("контроллер обновлён", "plc", name, "gateway", next.Address, "path", next.Path, "timeout_s", next.TimeoutSeconds)
	return s.statusLocked(name), nil
}

// Remove удаляет контроллер; контроллер по умолчанию удалить нельзя
func (s *ConnectionService) Remove(name string) error {
	const op = "registry.remove"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pool[name]; !exists {
		return errs.New(errs.CodeEndpointNotFound, op, "PLC '%s' not found", name)
	}
	if name == entities.DefaultEndpointName {
		return errs.New(errs.CodeProtectedEndpoint, op, "Cannot remove default PLC")
	}

	delete(s.pool, name)
	delete(s.lastSuccess, name)
	s.order = slices.DeleteFunc(s.order, func(n string) bool { return n == name })
	s.metrics.SetEndpoints(len(s.pool))

	s.logger.Info("контроллер удалён", "plc", name)
	return nil
}

// TestConnection читает пробный тег. Ошибка возвращается только для неизвестного имени,
// итог проверки фиксируется в состоянии контроллера.
func (s *ConnectionService) TestConnection(ctx context.Context, name string) (bool, error) {
	const op = "registry.test"

	s.mu.Lock()
	entry, exists := s.pool[name]
	if !exists {
		s.mu.Unlock()
		return false, errs.New(errs.CodeEndpointNotFound, op, "PLC '%s' not found", name)
	}
	entry.cfg.Health = entities.HealthTesting
	generation := entry.generation
	spec := specFor(entry.cfg, s.probeTag)
	s.mu.Unlock()

	ioErr := s.probe(ctx, spec)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.metrics.ConnectionTested(ioErr == nil)

	entry, exists = s.pool[name]
	if !exists || entry.generation != generation {
		// контроллер удалён или перенастроен во время проверки
		s.logger.Warn("результат проверки связи отброшен", "plc", name)
		return ioErr == nil, nil
	}

	now := s.now()
	if ioErr != nil {
		entry.cfg.Health = entities.HealthDisconnected
		entry.cfg.LastErrorMessage = ioErr.Error()
		entry.cfg.LastErrorTime = &now
		s.logger.Warn("проверка связи не удалась", "plc", name, "gateway", spec.Gateway, "error", ioErr)
		return false, nil
	}

	entry.cfg.Health = entities.HealthConnected
	s.lastSuccess[name] = now
	s.logger.Info("связь с контроллером установлена", "plc", name, "gateway", spec.Gateway)
	return true, nil
}

func (s *ConnectionService) probe(ctx context.Context, spec plctag.Spec) (err error) {
	defer func() {
		// сбой внешней библиотеки не должен выйти за пределы проверки связи
		if r := recover(); r != nil {
			err = errs.New(errs.CodeIOFailure, "registry.probe", "tag access panic: %v", r)
		}
	}()

	tag, err := s.driver.NewTag(spec)
	if err != nil {
		return err
	}
	defer tag.Close()

	if err := tag.Initialize(ctx); err != nil {
		return err
	}
	return tag.Read(ctx)
}

// Status возвращает снимок состояния контроллера
func (s *ConnectionService) Status(name string) (entities.EndpointStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pool[name]; !exists {
		return entities.EndpointStatus{}, errs.New(errs.CodeEndpointNotFound, "registry.status", "PLC '%s' not found", name)
	}
	return s.statusLocked(name), nil
}

// AllStatuses возвращает состояния всех контроллеров в порядке регистрации
func (s *ConnectionService) AllStatuses() []entities.EndpointStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]entities.EndpointStatus, 0, len(s.order))
	for _, name := range s.order {
		statuses = append(statuses, s.statusLocked(name))
	}
	return statuses
}

// BuildHandleSpec - единственная точка, где конфигурация реестра попадает в путь чтения
func (s *ConnectionService) BuildHandleSpec(name, tagName string) (plctag.Spec, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.pool[name]
	if !exists {
		return plctag.Spec{}, errs.New(errs.CodeEndpointNotFound, "registry.spec", "PLC '%s' not found", name)
	}
	spec := specFor(entry.cfg, tagName)
	spec.Generation = entry.generation
	return spec, nil
}

// IfCurrent выполняет fn под блокировкой реестра, только если контроллер всё ещё
// существует в том же поколении конфигурации. Возвращает, был ли вызван fn.
func (s *ConnectionService) IfCurrent(name string, generation uint64, fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.pool[name]
	if !exists || entry.generation != generation {
		return false
	}
	fn()
	return true
}

// IsActive сообщает, что контроллер известен и находится в состоянии CONNECTED
func (s *ConnectionService) IsActive(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.pool[name]
	return exists && entry.cfg.Health == entities.HealthConnected
}

func specFor(cfg entities.EndpointConfig, tagName string) plctag.Spec {
	return plctag.Spec{
		Name:     tagName,
		Gateway:  cfg.Address,
		Path:     cfg.Path,
		Protocol: cfg.Protocol,
		PlcType:  cfg.PlcType,
		Timeout:  cfg.Timeout(),
	}
}

// statusLocked вызывается под s.mu
func (s *ConnectionService) statusLocked(name string) entities.EndpointStatus {
	cfg := s.pool[name].cfg
	status := entities.EndpointStatus{
		ID:             cfg.ID,
		PLCName:        cfg.Name,
		Gateway:        cfg.Address,
		Path:           cfg.Path,
		Protocol:       cfg.Protocol,
		PlcType:        cfg.PlcType,
		TimeoutSeconds: cfg.TimeoutSeconds,
		Status:         cfg.Health,
	}
	if ts, ok := s.lastSuccess[name]; ok {
		status.LastSuccessfulConnection = &ts
	}
	if cfg.LastErrorMessage != "" {
		msg := cfg.LastErrorMessage
		status.LastErrorMessage = &msg
	}
	if cfg.LastErrorTime != nil {
		ts := *cfg.LastErrorTime
		status.LastErrorTime = &ts
	}
	return status
}

var _ interfaces.ConnectionRegistry = (*ConnectionService)(nil)
