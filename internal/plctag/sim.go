package plctag

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
)

// SimTag - тег симулятора, задаётся в конфигурации
type SimTag struct {
	Name  string `yaml:"name"`
	Type  string `yaml:"type"`
	Value any    `yaml:"value"`
}

// SimulatorConfig - настройки симулированных контроллеров
type SimulatorConfig struct {
	Latency     time.Duration `yaml:"latency"`
	Unreachable []string      `yaml:"unreachable"`
	Tags        []SimTag      `yaml:"tags"`
}

// Simulator - драйвер, обслуживающий теги из памяти процесса.
// Все контроллеры разделяют один набор тегов; недоступность задаётся по адресу шлюза.
type Simulator struct {
	mu          sync.RWMutex
	latency     time.Duration
	buffers     map[string][]byte
	unreachable map[string]bool
	failRead    map[string]error
	open        atomic.Int64
}

// NewSimulator создаёт симулятор и загружает теги из конфигурации
func NewSimulator(cfg SimulatorConfig) (*Simulator, error) {
	s := &Simulator{
		latency:     cfg.Latency,
		buffers:     make(map[string][]byte),
		unreachable: make(map[string]bool),
		failRead:    make(map[string]error),
	}
	for _, addr := range cfg.Unreachable {
		s.unreachable[addr] = true
	}
	for _, tag := range cfg.Tags {
		t, ok := entities.ParseTagType(tag.Type)
		if !ok {
			return nil, fmt.Errorf("simulator tag %q: unsupported type %q", tag.Name, tag.Type)
		}
		if err := s.SetTag(tag.Name, t, tag.Value); err != nil {
			return nil, fmt.Errorf("simulator tag %q: %w", tag.Name, err)
		}
	}
	return s, nil
}

// SetTag задаёт значение тега в формате объявленного типа
func (s *Simulator) SetTag(name string, t entities.TagType, v any) error {
	buf, err := EncodeAs(t, v)
	if err != nil {
		return err
	}
	s.SetRaw(name, buf)
	return nil
}

// SetRaw задаёт сырой буфер тега как есть
func (s *Simulator) SetRaw(name string, buf []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers[name] = slices.Clone(buf)
}

// SetUnreachable делает шлюз недоступным (Initialize будет падать) или возвращает его
func (s *Simulator) SetUnreachable(gateway string, down bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if down {
		s.unreachable[gateway] = true
		return
	}
	delete(s.unreachable, gateway)
}

// FailRead заставляет Read тега возвращать ошибку; nil снимает сбой
func (s *Simulator) FailRead(name string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failRead, name)
		return
	}
	s.failRead[name] = err
}

// OpenHandles - число созданных, но ещё не закрытых дескрипторов
func (s *Simulator) OpenHandles() int64 {
	return s.open.Load()
}

func (s *Simulator) NewTag(spec Spec) (Tag, error) {
	if spec.Name == "" {
		return nil, fmt.Errorf("tag name is required")
	}
	s.open.Add(1)
	return &simTag{sim: s, spec: spec}, nil
}

type simTag struct {
	sim         *Simulator
	spec        Spec
	mu          sync.Mutex
	initialized bool
	closed      bool
	buf         []byte
}

func (t *simTag) Initialize(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if err := t.sim.wait(ctx, t.spec.Timeout); err != nil {
		return err
	}
	t.sim.mu.RLock()
	down := t.sim.unreachable[t.spec.Gateway]
	t.sim.mu.RUnlock()
	if down {
		return fmt.Errorf("%w: %s (path %s)", ErrUnreachable, t.spec.Gateway, t.spec.Path)
	}
	t.initialized = true
	return nil
}

func (t *simTag) Read(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if !t.initialized {
		return ErrNotReady
	}
	if err := t.sim.wait(ctx, t.spec.Timeout); err != nil {
		return err
	}
	t.sim.mu.RLock()
	defer t.sim.mu.RUnlock()
	if err, ok := t.sim.failRead[t.spec.Name]; ok {
		return err
	}
	buf, ok := t.sim.buffers[t.spec.Name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, t.spec.Name)
	}
	t.buf = slices.Clone(buf)
	return nil
}

func (t *simTag) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buf)
}

func (t *simTag) Bytes() []byte {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.buf)
}

func (t *simTag) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.closed = true
	t.buf = nil
	t.sim.open.Add(-1)
	return nil
}

// wait имитирует сетевую задержку с учётом таймаута контроллера
func (s *Simulator) wait(ctx context.Context, timeout time.Duration) error {
	if s.latency <= 0 {
		return ctx.Err()
	}
	if timeout > 0 && s.latency > timeout {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(timeout):
			return ErrTimeout
		}
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.latency):
		return nil
	}
}

var _ Driver = (*Simulator)(nil)
