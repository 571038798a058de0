package usecases

import (
	"context"
	"io"
	"log/slog"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/plctag"
	"github.com/stretchr/testify/mock"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockRegistry struct{ mock.Mock }

func (m *mockRegistry) Add(cfg entities.EndpointConfig) (entities.EndpointStatus, error) {
	args := m.Called(cfg)
	return args.Get(0).(entities.EndpointStatus), args.Error(1)
}

func (m *mockRegistry) Update(name string, upd entities.EndpointUpdate) (entities.EndpointStatus, error) {
	args := m.Called(name, upd)
	return args.Get(0).(entities.EndpointStatus), args.Error(1)
}

func (m *mockRegistry) Remove(name string) error {
	return m.Called(name).Error(0)
}

func (m *mockRegistry) TestConnection(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockRegistry) Status(name string) (entities.EndpointStatus, error) {
	args := m.Called(name)
	return args.Get(0).(entities.EndpointStatus), args.Error(1)
}

func (m *mockRegistry) AllStatuses() []entities.EndpointStatus {
	return m.Called().Get(0).([]entities.EndpointStatus)
}

func (m *mockRegistry) BuildHandleSpec(name, tagName string) (plctag.Spec, error) {
	args := m.Called(name, tagName)
	return args.Get(0).(plctag.Spec), args.Error(1)
}

func (m *mockRegistry) IfCurrent(name string, generation uint64, fn func()) bool {
	args := m.Called(name, generation)
	if args.Bool(0) {
		fn()
	}
	return args.Bool(0)
}

func (m *mockRegistry) IsActive(name string) bool {
	return m.Called(name).Bool(0)
}

type mockPoller struct{ mock.Mock }

func (m *mockPoller) StartPolling(req entities.PollingRequest) (entities.PollInfo, error) {
	args := m.Called(req)
	return args.Get(0).(entities.PollInfo), args.Error(1)
}

func (m *mockPoller) StopPolling(endpoint string) error {
	return m.Called(endpoint).Error(0)
}

func (m *mockPoller) ActivePolls() []entities.PollInfo {
	return m.Called().Get(0).([]entities.PollInfo)
}

func (m *mockPoller) StopAllPolling() { m.Called() }

type mockMonitor struct{ mock.Mock }

func (m *mockMonitor) Evaluate(value entities.Value, cond entities.TagCondition) bool {
	return m.Called(value, cond).Bool(0)
}

func (m *mockMonitor) MonitorWithConditions(ctx context.Context, endpoint string, conditions []entities.TagCondition) (entities.MonitorReport, error) {
	args := m.Called(ctx, endpoint, conditions)
	return args.Get(0).(entities.MonitorReport), args.Error(1)
}

type mockReader struct{ mock.Mock }

func (m *mockReader) ReadOne(ctx context.Context, endpoint, tagName, tagType string, arraySize int) (entities.TagValue, error) {
	args := m.Called(ctx, endpoint, tagName, tagType, arraySize)
	return args.Get(0).(entities.TagValue), args.Error(1)
}

func (m *mockReader) ReadMany(ctx context.Context, endpoint string, names, types []string, sizes []int) ([]entities.TagValue, error) {
	args := m.Called(ctx, endpoint, names, types, sizes)
	return args.Get(0).([]entities.TagValue), args.Error(1)
}

type mockProducer struct{ mock.Mock }

func (m *mockProducer) Produce(ctx context.Context, key, value []byte) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockProducer) Close() error { return m.Called().Error(0) }
