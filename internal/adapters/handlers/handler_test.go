package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chuhuyvt/FS-Project/internal/adapters/metrics"
	"github.com/chuhuyvt/FS-Project/internal/adapters/producers"
	"github.com/chuhuyvt/FS-Project/internal/adapters/repositories/datastore"
	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/plctag"
	"github.com/chuhuyvt/FS-Project/internal/services"
	"github.com/chuhuyvt/FS-Project/internal/usecases"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type apiEnvelope struct {
	Success   bool            `json:"success"`
	Message   string          `json:"message"`
	Data      json.RawMessage `json:"data"`
	ErrorCode string          `json:"error_code"`
}

// newTestServer собирает сервис целиком поверх симулятора
func newTestServer(t *testing.T) (http.Handler, *plctag.Simulator) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sim, err := plctag.NewSimulator(plctag.SimulatorConfig{})
	require.NoError(t, err)
	require.NoError(t, sim.SetTag("x", entities.TagDint, 1))
	require.NoError(t, sim.SetTag("temp", entities.TagReal, 25.5))

	reg := metrics.NewRegistry()
	m := metrics.NewPromMetrics(reg)
	store := datastore.NewDataStore()

	registry, err := services.NewConnectionService(services.RegistryConfig{
		Default: entities.EndpointConfig{Address: "10.44.189.226", Path: "1,0", TimeoutSeconds: 5},
	}, services.NewEndpointValidator(), sim, logger, m)
	require.NoError(t, err)

	reader := services.NewTagReaderService(services.ReaderConfig{TrackChanges: true}, registry, sim, store, logger, m)
	monitor := services.NewMonitorService(reader, logger, m)
	producer := producers.NoopProducer{}
	poller := services.NewPollingService(time.Second, reader, registry, producer, logger)
	t.Cleanup(poller.StopAllPolling)

	uc := usecases.NewUsecases(store, registry, reader, monitor, poller, producer, logger)
	return ProvideRouter(NewHandler(uc, logger), reg), sim
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, apiEnvelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env apiEnvelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestConnections_Lifecycle(t *testing.T) {
	h, _ := newTestServer(t)

	w, env := do(t, h, http.MethodPost, "/api/connections", `{"plcName":"Line2","gateway":"192.168.1.20"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, "PLC 'Line2' added successfully", env.Message)

	w, env = do(t, h, http.MethodPost, "/api/connections", `{"plcName":"Line2","gateway":"192.168.1.21"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "DUPLICATE_ENDPOINT", env.ErrorCode)
	assert.Equal(t, "PLC 'Line2' already exists", env.Message)

	w, env = do(t, h, http.MethodGet, "/api/connections/Line2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var kept entities.EndpointStatus
	require.NoError(t, json.Unmarshal(env.Data, &kept))
	assert.Equal(t, "192.168.1.20", kept.Gateway, "failed duplicate add leaves the entry unmodified")

	w, env = do(t, h, http.MethodGet, "/api/connections/Line2", "")
	require.Equal(t, http.StatusOK, w.Code)
	var status entities.EndpointStatus
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "1,0", status.Path)
	assert.Equal(t, 5, status.TimeoutSeconds)
	assert.Equal(t, entities.HealthDisconnected, status.Status)

	w, env = do(t, h, http.MethodPut, "/api/connections/Line2", `{"path":"1,3"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &status))
	assert.Equal(t, "1,3", status.Path)

	w, env = do(t, h, http.MethodGet, "/api/connections", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all []entities.EndpointStatus
	require.NoError(t, json.Unmarshal(env.Data, &all))
	require.Len(t, all, 2)
	assert.Equal(t, entities.DefaultEndpointName, all[0].PLCName)

	w, _ = do(t, h, http.MethodDelete, "/api/connections/Line2", "")
	assert.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, h, http.MethodGet, "/api/connections/Line2", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ENDPOINT_NOT_FOUND", env.ErrorCode)
}

func TestConnections_Errors(t *testing.T) {
	h, _ := newTestServer(t)

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		wantCode int
		wantErr  string
	}{
		{"empty body", http.MethodPost, "/api/connections", "", http.StatusBadRequest, "INVALID_ARGUMENT"},
		{"bad gateway", http.MethodPost, "/api/connections", `{"plcName":"L","gateway":"plc.local"}`, http.StatusBadRequest, "INVALID_CONFIGURATION"},
		{"bad path", http.MethodPost, "/api/connections", `{"plcName":"L","gateway":"10.0.0.1","path":"1"}`, http.StatusBadRequest, "INVALID_CONFIGURATION"},
		{"missing name", http.MethodPost, "/api/connections", `{"gateway":"10.0.0.1"}`, http.StatusBadRequest, "INVALID_CONFIGURATION"},
		{"remove default", http.MethodDelete, "/api/connections/" + entities.DefaultEndpointName, "", http.StatusForbidden, "PROTECTED_ENDPOINT"},
		{"remove unknown", http.MethodDelete, "/api/connections/Line9", "", http.StatusNotFound, "ENDPOINT_NOT_FOUND"},
		{"update unknown", http.MethodPut, "/api/connections/Line9", `{"path":"1,0"}`, http.StatusNotFound, "ENDPOINT_NOT_FOUND"},
		{"test unknown", http.MethodPost, "/api/connections/Line9/test", "", http.StatusNotFound, "ENDPOINT_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.False(t, env.Success)
			assert.Equal(t, tt.wantErr, env.ErrorCode)
		})
	}
}

func TestConnections_TestConnection(t *testing.T) {
	h, sim := newTestServer(t)

	w, env := do(t, h, http.MethodGet, "/api/plc/test-connection", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Success, "default endpoint is idle until tested")

	w, _ = do(t, h, http.MethodGet, "/health", "")
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)

	w, env = do(t, h, http.MethodPost, "/api/connections/"+entities.DefaultEndpointName+"/test", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"plcName":"PLC-Default","connected":true}`, string(env.Data))

	_, env = do(t, h, http.MethodGet, "/api/plc/test-connection", "")
	assert.True(t, env.Success)

	sim.SetUnreachable("10.44.189.226", true)
	w, env = do(t, h, http.MethodPost, "/api/connections/"+entities.DefaultEndpointName+"/test", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"plcName":"PLC-Default","connected":false}`, string(env.Data))

	w, _ = do(t, h, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "degraded", health["status"])
}

func TestTags_Read(t *testing.T) {
	h, _ := newTestServer(t)

	w, env := do(t, h, http.MethodPost, "/api/tags/read", `{"plcName":"PLC-Default","tagName":"temp","tagType":"real"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	var tv struct {
		TagType      string  `json:"tagType"`
		CurrentValue float64 `json:"currentValue"`
		Status       string  `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &tv))
	assert.Equal(t, "REAL", tv.TagType)
	assert.InDelta(t, 25.5, tv.CurrentValue, 1e-6)

	// сбой чтения тега отдаётся в теле ответа, а не HTTP-статусом
	w, env = do(t, h, http.MethodPost, "/api/tags/read", `{"plcName":"PLC-Default","tagName":"missing","tagType":"DINT"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)

	w, env = do(t, h, http.MethodPost, "/api/tags/read", `{"plcName":"PLC-Default","tagName":" ","tagType":"DINT"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ARGUMENT", env.ErrorCode)

	w, env = do(t, h, http.MethodGet, "/api/tags/PLC-Default/temp/last", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	w, env = do(t, h, http.MethodGet, "/api/tags/PLC-Default/never/last", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "VALUE_NOT_FOUND", env.ErrorCode)
}

func TestTags_ReadMultiple(t *testing.T) {
	h, _ := newTestServer(t)

	w, env := do(t, h, http.MethodPost, "/api/tags/read-multiple",
		`{"plcName":"PLC-Default","tagNames":["x","temp","missing"],"tagTypes":["DINT","REAL","DINT"]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Read 3 tags, 1 failed", env.Message)
	var values []map[string]any
	require.NoError(t, json.Unmarshal(env.Data, &values))
	require.Len(t, values, 3)
	assert.Equal(t, "x", values[0]["tagName"])
	assert.Equal(t, "ERROR", values[2]["status"])

	w, env = do(t, h, http.MethodPost, "/api/tags/read-multiple",
		`{"plcName":"PLC-Default","tagNames":["x","temp"],"tagTypes":["DINT"]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "ARITY_MISMATCH", env.ErrorCode)
}

func TestTags_Monitor(t *testing.T) {
	h, _ := newTestServer(t)

	body := `{"plcName":"PLC-Default","conditions":[
		{"tagName":"temp","tagType":"REAL","conditionType":"GreaterThan","thresholdValue":20},
		{"tagName":"x","conditionType":"Between","minValue":"2","maxValue":5}
	]}`
	w, env := do(t, h, http.MethodPost, "/api/tags/monitor", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var report struct {
		TotalTags   int `json:"totalTags"`
		AlertedTags int `json:"alertedTags"`
		Tags        []struct {
			Status entities.TagStatus `json:"status"`
		} `json:"tags"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, 2, report.TotalTags)
	assert.Equal(t, 1, report.AlertedTags)

	w, env = do(t, h, http.MethodPost, "/api/tags/monitor", `{"plcName":"PLC-Default","conditions":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "EMPTY_CONDITION_SET", env.ErrorCode)

	// неизвестный контроллер даёт ошибку в строке результата, а не HTTP-статус
	w, env = do(t, h, http.MethodPost, "/api/tags/monitor", `{"plcName":"Line9","conditions":[{"tagName":"x","conditionType":"Equal","thresholdValue":1}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	report.Tags = nil
	require.NoError(t, json.Unmarshal(env.Data, &report))
	assert.Equal(t, 0, report.AlertedTags)
	require.Len(t, report.Tags, 1)
	assert.Equal(t, entities.TagStatusError, report.Tags[0].Status)
}

func TestLegacyRoutes(t *testing.T) {
	h, sim := newTestServer(t)
	sim.SetRaw("flags", []byte{0x01})
	require.NoError(t, sim.SetTag("counts", entities.TagArray, []int32{4, 5, 6}))

	w, env := do(t, h, http.MethodGet, "/api/plc/read-dint/x", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"currentValue":1`)

	_, env = do(t, h, http.MethodGet, "/api/plc/read-bool/flags", "")
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"currentValue":true`)

	_, env = do(t, h, http.MethodGet, "/api/plc/read-array/counts?arraySize=2", "")
	assert.True(t, env.Success)
	assert.Contains(t, string(env.Data), `"currentValue":[4,5]`)

	w, env = do(t, h, http.MethodGet, "/api/plc/read-array/counts?arraySize=two", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ARGUMENT", env.ErrorCode)
}

func TestPollingRoutes(t *testing.T) {
	h, _ := newTestServer(t)

	body := `{"plcName":"PLC-Default","tags":[{"name":"x","type":"DINT"}],"intervalMs":200}`
	w, env := do(t, h, http.MethodPost, "/api/polling/start", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, env.Success)

	w, env = do(t, h, http.MethodPost, "/api/polling/start", body)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "POLL_ACTIVE", env.ErrorCode)

	w, env = do(t, h, http.MethodPost, "/api/polling/start", `{"plcName":"PLC-Default","tags":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_ARGUMENT", env.ErrorCode)

	_, env = do(t, h, http.MethodGet, "/api/polling", "")
	var polls []entities.PollInfo
	require.NoError(t, json.Unmarshal(env.Data, &polls))
	require.Len(t, polls, 1)
	assert.Equal(t, 0.2, polls[0].IntervalS)

	w, _ = do(t, h, http.MethodGet, "/health", "")
	assert.Contains(t, w.Body.String(), `"activePolls":1`)

	w, _ = do(t, h, http.MethodPost, "/api/polling/stop/PLC-Default", "")
	assert.Equal(t, http.StatusOK, w.Code)
	_, env = do(t, h, http.MethodGet, "/api/polling", "")
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestMetricsEndpoint(t *testing.T) {
	h, _ := newTestServer(t)
	do(t, h, http.MethodPost, "/api/tags/read", `{"plcName":"PLC-Default","tagName":"x","tagType":"DINT"}`)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `plcgw_tag_reads_total{status="OK"} 1`)
	assert.Contains(t, body, "plcgw_endpoints 1")
	assert.True(t, bytes.Contains(w.Body.Bytes(), []byte("go_goroutines")))
}
