package handlers

import (
	"net/http"

	"github.com/chuhuyvt/FS-Project/internal/domain/entities"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ProvideRouter настраивает и возвращает HTTP-роутер
func ProvideRouter(h *Handler, reg *prometheus.Registry) http.Handler {
	router := gin.Default()

	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))

	api := router.Group("/api")
	{
		conns := api.Group("/connections")
		conns.POST("", h.AddConnection)
		conns.GET("", h.GetAllConnectionStatus)
		conns.GET("/:name", h.GetConnectionStatus)
		conns.PUT("/:name", h.UpdateConnection)
		conns.DELETE("/:name", h.RemoveConnection)
		conns.POST("/:name/test", h.TestConnection)

		tags := api.Group("/tags")
		tags.POST("/read", h.ReadTag)
		tags.POST("/read-multiple", h.ReadTags)
		tags.POST("/monitor", h.MonitorTags)
		tags.GET("/:endpoint/:tag/last", h.GetLastValue)

		polling := api.Group("/polling")
		polling.GET("", h.ListPolling)
		polling.POST("/start", h.StartPolling)
		polling.POST("/stop/:name", h.StopPolling)

		plc := api.Group("/plc")
		plc.GET("/read-bool/:tag", h.ReadDefault(entities.TagBool))
		plc.GET("/read-dint/:tag", h.ReadDefault(entities.TagDint))
		plc.GET("/read-real/:tag", h.ReadDefault(entities.TagReal))
		plc.GET("/read-string/:tag", h.ReadDefault(entities.TagString))
		plc.GET("/read-array/:tag", h.ReadDefault(entities.TagArray))
		plc.GET("/test-connection", h.DefaultConnectionActive)
	}
	return router
}
