package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/domain/errs"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"
)

// MinPollInterval - минимально допустимый интервал опроса
const MinPollInterval = 100 * time.Millisecond

type activePoll struct {
	ticker  *time.Ticker
	done    chan struct{}
	stopped chan struct{}
	info    entities.PollInfo
}

// PollingService периодически читает набор тегов контроллера и публикует результат
type PollingService struct {
	reader   interfaces.TagReader
	registry interfaces.ConnectionRegistry
	producer interfaces.DataProducer
	logger   *slog.Logger

	activePolls     map[string]*activePoll
	pollsMutex      sync.Mutex
	defaultInterval time.Duration
	wg              sync.WaitGroup
	now             func() time.Time
}

func NewPollingService(
	defaultInterval time.Duration,
	reader interfaces.TagReader,
	registry interfaces.ConnectionRegistry,
	producer interfaces.DataProducer,
	logger *slog.Logger,
) interfaces.PollingService {
	if defaultInterval < MinPollInterval {
		defaultInterval = time.Second
	}
	return &PollingService{
		reader:          reader,
		registry:        registry,
		producer:        producer,
		logger:          logger,
		activePolls:     make(map[string]*activePoll),
		defaultInterval: defaultInterval,
		now:             time.Now,
	}
}

// StartPolling запускает опрос контроллера; для одного контроллера допускается один опрос
func (s *PollingService) StartPolling(req entities.PollingRequest) (entities.PollInfo, error) {
	const op = "poller.start"
	if len(req.Tags) == 0 {
		return entities.PollInfo{}, errs.New(errs.CodeInvalidArgument, op, "at least one tag is required")
	}
	for _, tag := range req.Tags {
		if strings.TrimSpace(tag.Name) == "" {
			return entities.PollInfo{}, errs.New(errs.CodeInvalidArgument, op, "TagName cannot be empty")
		}
		if _, ok := entities.ParseTagType(tag.Type); !ok {
			return entities.PollInfo{}, errs.New(errs.CodeUnsupportedTagType, op, "Tag type '%s' not supported", tag.Type)
		}
	}

	interval := s.defaultInterval
	if req.IntervalMs != 0 {
		interval = time.Duration(req.IntervalMs) * time.Millisecond
	}
	if interval < MinPollInterval {
		return entities.PollInfo{}, errs.New(errs.CodeInvalidArgument, op, "interval must be at least %s", MinPollInterval)
	}

	if _, err := s.registry.Status(req.PLCName); err != nil {
		return entities.PollInfo{}, err
	}

	s.pollsMutex.Lock()
	defer s.pollsMutex.Unlock()

	if _, exists := s.activePolls[req.PLCName]; exists {
		return entities.PollInfo{}, errs.New(errs.CodePollActive, op, "polling for PLC '%s' is already active", req.PLCName)
	}

	poll := &activePoll{
		ticker:  time.NewTicker(interval),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		info: entities.PollInfo{
			PLCName:   req.PLCName,
			Tags:      slices.Clone(req.Tags),
			Interval:  interval,
			IntervalS: interval.Seconds(),
			StartedAt: s.now(),
		},
	}
	s.activePolls[req.PLCName] = poll

	s.wg.Add(1)
	go s.run(poll)

	s.logger.Info("опрос запущен", "plc", req.PLCName, "tags", len(req.Tags), "interval", interval)
	return poll.info, nil
}

func (s *PollingService) run(poll *activePoll) {
	defer s.wg.Done()
	defer close(poll.stopped)
	defer poll.ticker.Stop()

	name := poll.info.PLCName
	names := make([]string, len(poll.info.Tags))
	types := make([]string, len(poll.info.Tags))
	sizes := make([]int, len(poll.info.Tags))
	for i, tag := range poll.info.Tags {
		names[i], types[i], sizes[i] = tag.Name, tag.Type, tag.ArraySize
	}

	for {
		select {
		case <-poll.done:
			s.logger.Info("опрос остановлен", "plc", name)
			return
		case <-poll.ticker.C:
			s.pollOnce(name, names, types, sizes)

			s.pollsMutex.Lock()
			now := s.now()
			poll.info.Cycles++
			poll.info.LastPoll = &now
			s.pollsMutex.Unlock()
		}
	}
}

func (s *PollingService) pollOnce(name string, names, types []string, sizes []int) {
	ctx := context.Background()
	results, err := s.reader.ReadMany(ctx, name, names, types, sizes)
	if err != nil {
		s.logger.Error("ошибка цикла опроса", "plc", name, "error", err)
		return
	}

	batch := entities.PollBatch{
		PLCName:   name,
		Timestamp: s.now(),
		Tags:      results,
	}
	data, err := json.Marshal(batch)
	if err != nil {
		s.logger.Error("не удалось сериализовать результат опроса", "plc", name, "error", err)
		return
	}
	if err := s.producer.Produce(ctx, []byte(name), data); err != nil {
		s.logger.Error("не удалось отправить результат опроса", "plc", name, "error", err)
	}
}

// StopPolling останавливает опрос контроллера и ждёт завершения текущего цикла;
// отсутствие опроса не является ошибкой
func (s *PollingService) StopPolling(endpoint string) error {
	s.pollsMutex.Lock()
	poll, exists := s.activePolls[endpoint]
	if !exists {
		s.pollsMutex.Unlock()
		return nil
	}
	close(poll.done)
	delete(s.activePolls, endpoint)
	s.pollsMutex.Unlock()

	// горутина берёт pollsMutex после цикла, поэтому ждём без блокировки
	<-poll.stopped
	return nil
}

// ActivePolls возвращает снимок активных опросов, отсортированный по имени контроллера
func (s *PollingService) ActivePolls() []entities.PollInfo {
	s.pollsMutex.Lock()
	defer s.pollsMutex.Unlock()

	infos := make([]entities.PollInfo, 0, len(s.activePolls))
	for _, poll := range s.activePolls {
		info := poll.info
		info.Tags = slices.Clone(info.Tags)
		infos = append(infos, info)
	}
	slices.SortFunc(infos, func(a, b entities.PollInfo) int {
		return strings.Compare(a.PLCName, b.PLCName)
	})
	return infos
}

// StopAllPolling останавливает все опросы и ждёт завершения горутин
func (s *PollingService) StopAllPolling() {
	s.pollsMutex.Lock()
	s.logger.Info("остановка всех процессов опроса", "active", len(s.activePolls))
	for name, poll := range s.activePolls {
		close(poll.done)
		delete(s.activePolls, name)
	}
	s.pollsMutex.Unlock()

	s.wg.Wait()
}

var _ interfaces.PollingService = (*PollingService)(nil)
