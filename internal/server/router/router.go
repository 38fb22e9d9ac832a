package router

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/weighbridge/internal/server/handlers"
	"github.com/mamadbah2/weighbridge/internal/server/views"
)

// New wires the Gin engine with required routes and middlewares.
func New(handler *handlers.WeighbridgeHandler, logger *zap.Logger) (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)

	tmpl, err := views.Parse()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", handler.Page)
	r.POST("/draft", handler.UpdateDraft)
	r.POST("/records", handler.Submit)
	r.POST("/records/clear", handler.Clear)
	r.POST("/records/:id/edit", handler.Edit)
	r.POST("/records/:id/delete", handler.Delete)
	r.POST("/edit/cancel", handler.CancelEdit)
	r.POST("/preferences/theme", handler.ToggleTheme)
	r.POST("/preferences/alarm", handler.ToggleAlarm)

	r.GET("/api/records", handler.Records)
	r.GET("/print", handler.Print)
	r.GET("/export.xlsx", handler.ExportXLSX)
	r.GET("/export.csv", handler.ExportCSV)
	r.GET("/alarm.wav", handler.AlarmSound)
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r, nil
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
