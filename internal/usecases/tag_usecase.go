package usecases

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/domain/errs"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"
)

type TagUsecase struct {
	reader   interfaces.TagReader
	monitor  interfaces.TagMonitor
	repo     interfaces.DataStoreRepository
	producer interfaces.DataProducer
	logger   *slog.Logger
}

func NewTagUsecase(
	reader interfaces.TagReader,
	monitor interfaces.TagMonitor,
	repo interfaces.Repository,
	producer interfaces.DataProducer,
	logger *slog.Logger,
) interfaces.TagUsecase {
	return &TagUsecase{
		reader:   reader,
		monitor:  monitor,
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

func (u *TagUsecase) ReadTag(ctx context.Context, req entities.ReadTagRequest) (entities.TagValue, error) {
	return u.reader.ReadOne(ctx, req.PLCName, req.TagName, req.TagType, req.ArraySize)
}

func (u *TagUsecase) ReadTags(ctx context.Context, req entities.ReadTagsRequest) ([]entities.TagValue, error) {
	return u.reader.ReadMany(ctx, req.PLCName, req.TagNames, req.TagTypes, req.ArraySizes)
}

// Monitor проверяет условия и публикует отчёт; сбой публикации не влияет на ответ
func (u *TagUsecase) Monitor(ctx context.Context, req entities.MonitorRequest) (entities.MonitorReport, error) {
	report, err := u.monitor.MonitorWithConditions(ctx, req.PLCName, req.Conditions)
	if err != nil {
		return entities.MonitorReport{}, err
	}

	data, err := json.Marshal(report)
	if err != nil {
		u.logger.Error("не удалось сериализовать отчёт мониторинга", "plc", req.PLCName, "error", err)
		return report, nil
	}
	if err := u.producer.Produce(context.WithoutCancel(ctx), []byte(req.PLCName), data); err != nil {
		u.logger.Error("не удалось отправить отчёт мониторинга", "plc", req.PLCName, "error", err)
	}
	return report, nil
}

// LastValue возвращает последнее сохранённое значение тега
func (u *TagUsecase) LastValue(endpoint, tagName string) (entities.TagValue, error) {
	value, found := u.repo.Get(endpoint, tagName)
	if !found {
		return entities.TagValue{}, errs.New(errs.CodeValueNotFound, "tags.last",
			"no stored value for tag '%s' of PLC '%s'", tagName, endpoint)
	}
	return value, nil
}
