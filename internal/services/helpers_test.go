package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/chuhuyvt/FS-Project/internal/adapters/metrics"
	"github.com/chuhuyvt/FS-Project/internal/adapters/repositories/datastore"
	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"
	"github.com/chuhuyvt/FS-Project/internal/plctag"
	"github.com/stretchr/testify/require"
)

const defaultGateway = "10.44.189.226"

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func defaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		Default: entities.EndpointConfig{
			Address:        defaultGateway,
			Path:           "1,0",
			TimeoutSeconds: 5,
		},
	}
}

// newSimulator создаёт симулятор с пробным тегом x
func newSimulator(t *testing.T, cfg plctag.SimulatorConfig) *plctag.Simulator {
	t.Helper()
	sim, err := plctag.NewSimulator(cfg)
	require.NoError(t, err)
	require.NoError(t, sim.SetTag("x", entities.TagDint, 1))
	return sim
}

func newTestRegistry(t *testing.T, driver plctag.Driver) *ConnectionService {
	t.Helper()
	reg, err := NewConnectionService(defaultRegistryConfig(), NewEndpointValidator(), driver, testLogger(), metrics.Nop{})
	require.NoError(t, err)
	return reg.(*ConnectionService)
}

func newTestReader(t *testing.T, registry interfaces.ConnectionRegistry, driver plctag.Driver, track bool) (*TagReaderService, interfaces.DataStoreRepository) {
	t.Helper()
	store := datastore.NewDataStore()
	r := NewTagReaderService(ReaderConfig{TrackChanges: track}, registry, driver, store, testLogger(), metrics.Nop{})
	return r.(*TagReaderService), store
}

func addEndpoint(t *testing.T, reg interfaces.ConnectionRegistry, name, gateway, path string) {
	t.Helper()
	_, err := reg.Add(entities.EndpointConfig{Name: name, Address: gateway, Path: path, TimeoutSeconds: 3})
	require.NoError(t, err)
}

type producedMessage struct {
	key   string
	value []byte
}

// recordingProducer запоминает отправленные сообщения
type recordingProducer struct {
	mu   sync.Mutex
	msgs []producedMessage
}

func (p *recordingProducer) Produce(_ context.Context, key, value []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, producedMessage{key: string(key), value: append([]byte(nil), value...)})
	return nil
}

func (p *recordingProducer) Close() error { return nil }

func (p *recordingProducer) messages() []producedMessage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]producedMessage(nil), p.msgs...)
}
