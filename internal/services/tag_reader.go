package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/domain/errs"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"
	"github.com/chuhuyvt/FS-Project/internal/plctag"
)

// ReaderConfig - настройки чтения тегов
type ReaderConfig struct {
	// TrackChanges включает таблицу последних значений по ключу (контроллер, тег)
	TrackChanges bool
}

// TagReaderService читает теги через реестр и внешний драйвер.
// Ошибки создания дескриптора, инициализации, чтения и декодирования
// возвращаются внутри TagValue со статусом ERROR.
type TagReaderService struct {
	registry interfaces.ConnectionRegistry
	driver   plctag.Driver
	store    interfaces.DataStoreRepository
	track    bool
	logger   *slog.Logger
	metrics  interfaces.Metrics
	now      func() time.Time
}

func NewTagReaderService(
	cfg ReaderConfig,
	registry interfaces.ConnectionRegistry,
	driver plctag.Driver,
	store interfaces.DataStoreRepository,
	logger *slog.Logger,
	metrics interfaces.Metrics,
) interfaces.TagReader {
	return &TagReaderService{
		registry: registry,
		driver:   driver,
		store:    store,
		track:    cfg.TrackChanges && store != nil,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// ReadOne читает один тег. error возвращается только для пустых имён,
// все остальные сбои попадают в результат.
func (r *TagReaderService) ReadOne(ctx context.Context, endpoint, tagName, tagType string, arraySize int) (entities.TagValue, error) {
	const op = "reader.read"
	if strings.TrimSpace(endpoint) == "" {
		return entities.TagValue{}, errs.New(errs.CodeInvalidArgument, op, "PLCName cannot be empty")
	}
	if strings.TrimSpace(tagName) == "" {
		return entities.TagValue{}, errs.New(errs.CodeInvalidArgument, op, "TagName cannot be empty")
	}

	start := time.Now()
	value, generation, err := r.read(ctx, endpoint, tagName, tagType, arraySize)
	elapsed := time.Since(start)

	if err != nil {
		r.metrics.ObserveRead(string(entities.TagStatusError), elapsed)
		r.logger.Debug("чтение тега не удалось", "plc", endpoint, "tag", tagName, "type", tagType, "error", err)
		return failedTagValue(endpoint, tagName, tagType, err), nil
	}
	r.metrics.ObserveRead(string(entities.TagStatusOK), elapsed)

	now := r.now()
	result := entities.TagValue{
		PLCName:      endpoint,
		TagName:      tagName,
		TagType:      normalizedType(tagType),
		CurrentValue: value,
		LastChanged:  &now,
		Status:       entities.TagStatusOK,
	}
	if r.track {
		// контроллер могли удалить или перенастроить во время чтения
		tracked := r.registry.IfCurrent(endpoint, generation, func() { r.trackChange(&result) })
		if !tracked {
			r.logger.Debug("значение не сохранено, конфигурация контроллера изменилась", "plc", endpoint, "tag", tagName)
		}
	}
	return result, nil
}

// ReadMany читает теги последовательно. Сбой одного тега не прерывает пакет,
// отмена контекста вызывающего не останавливает уже начатый пакет.
func (r *TagReaderService) ReadMany(ctx context.Context, endpoint string, names, types []string, sizes []int) ([]entities.TagValue, error) {
	if len(names) != len(types) {
		return nil, errs.New(errs.CodeArityMismatch, "reader.read_many",
			"tagNames and tagTypes arrays must have same length (%d vs %d)", len(names), len(types))
	}

	ctx = context.WithoutCancel(ctx)
	results := make([]entities.TagValue, 0, len(names))
	for i := range names {
		size := 0
		if i < len(sizes) {
			size = sizes[i]
		}
		tv, err := r.ReadOne(ctx, endpoint, names[i], types[i], size)
		if err != nil {
			tv = failedTagValue(endpoint, names[i], types[i], err)
		}
		results = append(results, tv)
	}
	return results, nil
}

func (r *TagReaderService) read(ctx context.Context, endpoint, tagName, tagType string, arraySize int) (value entities.Value, generation uint64, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			value, generation = entities.Value{}, 0
			err = errs.New(errs.CodeIOFailure, "tag.read", "tag access panic: %v", rec)
		}
	}()

	if _, ok := entities.ParseTagType(tagType); !ok {
		return entities.Value{}, 0, errs.New(errs.CodeUnsupportedTagType, "reader.read", "Tag type '%s' not supported", tagType)
	}

	spec, err := r.registry.BuildHandleSpec(endpoint, tagName)
	if err != nil {
		return entities.Value{}, 0, err
	}

	tag, err := r.driver.NewTag(spec)
	if err != nil {
		return entities.Value{}, 0, errs.Wrap(errs.CodeIOFailure, "tag.create", err)
	}
	defer tag.Close()

	if err := tag.Initialize(ctx); err != nil {
		return entities.Value{}, 0, errs.Wrap(errs.CodeIOFailure, "tag.initialize", err)
	}
	if err := tag.Read(ctx); err != nil {
		return entities.Value{}, 0, errs.Wrap(errs.CodeIOFailure, "tag.read", err)
	}

	value, err = Decode(tag.Bytes(), tagType, arraySize)
	return value, spec.Generation, err
}

// trackChange подставляет предыдущее значение и сохраняет момент последнего изменения
func (r *TagReaderService) trackChange(result *entities.TagValue) {
	prev, ok := r.store.Get(result.PLCName, result.TagName)
	if ok && prev.OK() {
		pv := prev.CurrentValue
		result.PreviousValue = &pv
		if prev.CurrentValue.Equal(result.CurrentValue) && prev.LastChanged != nil {
			result.LastChanged = prev.LastChanged
		}
	}
	r.store.Set(result.PLCName, result.TagName, *result)
}

func failedTagValue(endpoint, tagName, tagType string, err error) entities.TagValue {
	return entities.TagValue{
		PLCName:      endpoint,
		TagName:      tagName,
		TagType:      normalizedType(tagType),
		Status:       entities.TagStatusError,
		ErrorMessage: err.Error(),
	}
}

func normalizedType(tagType string) string {
	return strings.ToUpper(strings.TrimSpace(tagType))
}

var _ interfaces.TagReader = (*TagReaderService)(nil)
