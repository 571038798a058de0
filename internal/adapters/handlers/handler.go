package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"
	"github.com/chuhuyvt/FS-Project/internal/domain/errs"
	"github.com/chuhuyvt/FS-Project/internal/interfaces"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	usecase interfaces.Usecases
	logger  *slog.Logger
}

func NewHandler(usecase interfaces.Usecases, logger *slog.Logger) *Handler {
	return &Handler{usecase: usecase, logger: logger}
}

// --- Подключения ---

// AddConnection регистрирует новый контроллер
func (h *Handler) AddConnection(c *gin.Context) {
	var req entities.AddEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Request body is required")
		return
	}
	summary, err := h.usecase.AddEndpoint(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, fmt.Sprintf("PLC '%s' added successfully", summary.PLCName), summary)
}

// UpdateConnection меняет адрес, путь или таймаут контроллера
func (h *Handler) UpdateConnection(c *gin.Context) {
	name := c.Param("name")
	var req entities.UpdateEndpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Request body is required")
		return
	}
	status, err := h.usecase.UpdateEndpoint(name, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, fmt.Sprintf("PLC '%s' updated successfully", name), status)
}

// RemoveConnection удаляет контроллер
func (h *Handler) RemoveConnection(c *gin.Context) {
	name := c.Param("name")
	if err := h.usecase.RemoveEndpoint(name); err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, fmt.Sprintf("PLC '%s' removed successfully", name), nil)
}

// TestConnection проверяет связь с контроллером чтением пробного тега
func (h *Handler) TestConnection(c *gin.Context) {
	name := c.Param("name")
	ok, err := h.usecase.TestEndpoint(c.Request.Context(), name)
	if err != nil {
		h.fail(c, err)
		return
	}
	msg := fmt.Sprintf("Connection to '%s' successful", name)
	if !ok {
		msg = fmt.Sprintf("Connection to '%s' failed", name)
	}
	respondOK(c, msg, gin.H{"plcName": name, "connected": ok})
}

// GetConnectionStatus возвращает состояние одного контроллера
func (h *Handler) GetConnectionStatus(c *gin.Context) {
	status, err := h.usecase.EndpointStatus(c.Param("name"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "Connection status retrieved", status)
}

// GetAllConnectionStatus возвращает состояния всех контроллеров
func (h *Handler) GetAllConnectionStatus(c *gin.Context) {
	respondOK(c, "All connection statuses retrieved", h.usecase.AllEndpointStatuses())
}

// --- Теги ---

// ReadTag читает один тег; сбой чтения тега возвращается с кодом 200 и success=false
func (h *Handler) ReadTag(c *gin.Context) {
	var req entities.ReadTagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Request body is required")
		return
	}
	tv, err := h.usecase.ReadTag(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondTagValue(c, tv)
}

// ReadTags читает несколько тегов одного контроллера
func (h *Handler) ReadTags(c *gin.Context) {
	var req entities.ReadTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Request body is required")
		return
	}
	values, err := h.usecase.ReadTags(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	failed := 0
	for _, tv := range values {
		if !tv.OK() {
			failed++
		}
	}
	respondOK(c, fmt.Sprintf("Read %d tags, %d failed", len(values), failed), values)
}

// MonitorTags проверяет пороговые условия
func (h *Handler) MonitorTags(c *gin.Context) {
	var req entities.MonitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Request body is required")
		return
	}
	report, err := h.usecase.Monitor(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, fmt.Sprintf("%d of %d conditions met", report.AlertedTags, report.TotalTags), report)
}

// GetLastValue возвращает последнее сохранённое значение тега
func (h *Handler) GetLastValue(c *gin.Context) {
	tv, err := h.usecase.LastValue(c.Param("endpoint"), c.Param("tag"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, "Last value retrieved", tv)
}

// --- Старые маршруты контроллера по умолчанию ---

// ReadDefault читает тег контроллера по умолчанию с фиксированным типом
func (h *Handler) ReadDefault(tagType entities.TagType) gin.HandlerFunc {
	return func(c *gin.Context) {
		arraySize := 0
		if tagType == entities.TagArray {
			raw := c.DefaultQuery("arraySize", "0")
			n, err := strconv.Atoi(raw)
			if err != nil {
				respondBadRequest(c, "arraySize must be an integer")
				return
			}
			arraySize = n
		}
		tv, err := h.usecase.ReadTag(c.Request.Context(), entities.ReadTagRequest{
			PLCName:   entities.DefaultEndpointName,
			TagName:   c.Param("tag"),
			TagType:   string(tagType),
			ArraySize: arraySize,
		})
		if err != nil {
			h.fail(c, err)
			return
		}
		respondTagValue(c, tv)
	}
}

// DefaultConnectionActive сообщает, подключён ли контроллер по умолчанию
func (h *Handler) DefaultConnectionActive(c *gin.Context) {
	active := h.usecase.IsDefaultActive()
	msg := "PLC connection successful"
	if !active {
		msg = "PLC connection failed"
	}
	c.JSON(http.StatusOK, ApiResponse{Success: active, Message: msg, Data: gin.H{"plcName": entities.DefaultEndpointName, "connected": active}})
}

// --- Фоновый опрос ---

// StartPolling запускает фоновый опрос контроллера
func (h *Handler) StartPolling(c *gin.Context) {
	var req entities.PollingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid polling request: "+err.Error())
		return
	}
	info, err := h.usecase.StartPolling(req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, fmt.Sprintf("Polling for PLC '%s' started", req.PLCName), info)
}

// StopPolling останавливает фоновый опрос контроллера
func (h *Handler) StopPolling(c *gin.Context) {
	name := c.Param("name")
	if err := h.usecase.StopPolling(name); err != nil {
		h.fail(c, err)
		return
	}
	respondOK(c, fmt.Sprintf("Polling for PLC '%s' stopped", name), nil)
}

// ListPolling возвращает активные опросы
func (h *Handler) ListPolling(c *gin.Context) {
	respondOK(c, "Active polls retrieved", h.usecase.ActivePolls())
}

// --- Служебные ---

// Health сводит состояния контроллеров; сервис деградирован, если контроллер
// по умолчанию потерял связь
func (h *Handler) Health(c *gin.Context) {
	statuses := h.usecase.AllEndpointStatuses()
	counts := make(map[entities.Health]int)
	healthy := true
	for _, st := range statuses {
		counts[st.Status]++
		if st.PLCName == entities.DefaultEndpointName {
			healthy = st.Status != entities.HealthDisconnected && st.Status != entities.HealthError
		}
	}
	status := "healthy"
	if !healthy {
		status = "degraded"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      status,
		"endpoints":   len(statuses),
		"byHealth":    counts,
		"activePolls": len(h.usecase.ActivePolls()),
	})
}

func respondTagValue(c *gin.Context, tv entities.TagValue) {
	msg := "Tag read successfully"
	if !tv.OK() {
		msg = tv.ErrorMessage
	}
	c.JSON(http.StatusOK, ApiResponse{Success: tv.OK(), Message: msg, Data: tv})
}

// fail пишет ответ с ошибкой; неклассифицированные ошибки попадают в лог
func (h *Handler) fail(c *gin.Context, err error) {
	if statusFor(errs.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.Error("ошибка обработки запроса", "method", c.Request.Method, "path", c.FullPath(), "error", err)
	}
	respondError(c, err)
}
