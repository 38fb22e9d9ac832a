package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/weighbridge/internal/domain/models"
	"github.com/mamadbah2/weighbridge/internal/service/reporting"
	"github.com/mamadbah2/weighbridge/internal/service/weighbridge"
)

// RecordController is the slice of the weighbridge controller the HTTP layer drives.
type RecordController interface {
	UpdateDraft(ctx context.Context, in weighbridge.DraftInput) models.Derivation
	Submit(ctx context.Context, in weighbridge.DraftInput) (models.Record, bool)
	Edit(ctx context.Context, id string) bool
	CancelEdit(ctx context.Context)
	Delete(ctx context.Context, id string) bool
	ClearAll(ctx context.Context) int
	ToggleTheme(ctx context.Context) models.Theme
	ToggleAlarm(ctx context.Context) bool
	Records() []models.Record
	View(query string) weighbridge.View
}

// AlarmSource exposes the alert tone and how often it has fired.
type AlarmSource interface {
	Sequence() uint64
	WAV() []byte
}

// WeighbridgeHandler serves the weighbridge page, its form actions and exports.
type WeighbridgeHandler struct {
	ctrl     RecordController
	reporter *reporting.Service
	alarm    AlarmSource
	logger   *zap.Logger
}

// NewWeighbridgeHandler constructs the HTTP handler adapter.
func NewWeighbridgeHandler(ctrl RecordController, reporter *reporting.Service, alarm AlarmSource, logger *zap.Logger) *WeighbridgeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeighbridgeHandler{ctrl: ctrl, reporter: reporter, alarm: alarm, logger: logger}
}

type pageData struct {
	View     weighbridge.View
	AlarmSeq uint64
}

type printData struct {
	View    weighbridge.View
	Summary reporting.Summary
}

type draftResponse struct {
	models.Derivation
	NetDisplay   string `json:"netDisplay"`
	PriceDisplay string `json:"priceDisplay"`
	AlarmSeq     uint64 `json:"alarmSeq"`
}

// Page renders the form and the highlighted record table.
func (h *WeighbridgeHandler) Page(c *gin.Context) {
	c.HTML(http.StatusOK, "page.html", pageData{
		View:     h.ctrl.View(c.Query("q")),
		AlarmSeq: h.alarm.Sequence(),
	})
}

// UpdateDraft recomputes net weight and price for the in-flight form.
func (h *WeighbridgeHandler) UpdateDraft(c *gin.Context) {
	var in weighbridge.DraftInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid draft payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	d := h.ctrl.UpdateDraft(c.Request.Context(), in)
	c.JSON(http.StatusOK, draftResponse{
		Derivation:   d,
		NetDisplay:   models.FormatNumber(d.NetKg),
		PriceDisplay: models.FormatNumber(float64(d.Price)),
		AlarmSeq:     h.alarm.Sequence(),
	})
}

// Submit creates a record, or saves the one being edited.
func (h *WeighbridgeHandler) Submit(c *gin.Context) {
	var in weighbridge.DraftInput
	if err := c.ShouldBind(&in); err != nil {
		h.logger.Warn("invalid record form", zap.Error(err))
		c.String(http.StatusBadRequest, "invalid form")
		return
	}
	h.ctrl.Submit(c.Request.Context(), in)
	h.redirectHome(c)
}

// Edit loads a record into the form.
func (h *WeighbridgeHandler) Edit(c *gin.Context) {
	if !h.ctrl.Edit(c.Request.Context(), c.Param("id")) {
		h.logger.Debug("edit target not found", zap.String("id", c.Param("id")))
	}
	h.redirectHome(c)
}

// CancelEdit resets the form.
func (h *WeighbridgeHandler) CancelEdit(c *gin.Context) {
	h.ctrl.CancelEdit(c.Request.Context())
	h.redirectHome(c)
}

// Delete removes one record.
func (h *WeighbridgeHandler) Delete(c *gin.Context) {
	h.ctrl.Delete(c.Request.Context(), c.Param("id"))
	h.redirectHome(c)
}

// Clear removes every record.
func (h *WeighbridgeHandler) Clear(c *gin.Context) {
	h.ctrl.ClearAll(c.Request.Context())
	h.redirectHome(c)
}

// ToggleTheme switches between light and dark.
func (h *WeighbridgeHandler) ToggleTheme(c *gin.Context) {
	h.ctrl.ToggleTheme(c.Request.Context())
	h.redirectHome(c)
}

// ToggleAlarm switches the audible alert on or off.
func (h *WeighbridgeHandler) ToggleAlarm(c *gin.Context) {
	h.ctrl.ToggleAlarm(c.Request.Context())
	h.redirectHome(c)
}

// Records returns the table rows and totals as JSON.
func (h *WeighbridgeHandler) Records(c *gin.Context) {
	view := h.ctrl.View(c.Query("q"))
	c.JSON(http.StatusOK, gin.H{
		"query":       view.Query,
		"matched":     view.MatchCount(),
		"rows":        view.Rows,
		"preferences": view.Preferences,
		"summary":     reporting.Summarize(h.ctrl.Records()),
	})
}

// Print renders the current view, highlights and dimming included, as a bare
// table that opens the browser's print dialog.
func (h *WeighbridgeHandler) Print(c *gin.Context) {
	view := h.ctrl.View(c.Query("q"))
	recs := make([]models.Record, 0, len(view.Rows))
	for _, row := range view.Rows {
		recs = append(recs, row.Record)
	}
	c.HTML(http.StatusOK, "print.html", printData{View: view, Summary: reporting.Summarize(recs)})
}

// ExportXLSX streams the records as an Excel workbook.
func (h *WeighbridgeHandler) ExportXLSX(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reporter.WriteXLSX(&buf, h.ctrl.Records()); err != nil {
		h.logger.Error("failed building workbook", zap.Error(err))
		c.String(http.StatusInternalServerError, "export failed")
		return
	}
	h.attachment(c, "xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportCSV streams the records as CSV.
func (h *WeighbridgeHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.reporter.WriteCSV(&buf, h.ctrl.Records()); err != nil {
		h.logger.Error("failed building csv", zap.Error(err))
		c.String(http.StatusInternalServerError, "export failed")
		return
	}
	h.attachment(c, "csv", "text/csv; charset=utf-8", buf.Bytes())
}

// AlarmSound serves the alert tone. A tone that failed to render yields 204.
func (h *WeighbridgeHandler) AlarmSound(c *gin.Context) {
	wav := h.alarm.WAV()
	if len(wav) == 0 {
		c.Status(http.StatusNoContent)
		return
	}
	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "audio/wav", wav)
}

func (h *WeighbridgeHandler) attachment(c *gin.Context, ext, contentType string, body []byte) {
	c.Header("Content-Disposition", "attachment; filename="+h.reporter.Filename(ext))
	c.Data(http.StatusOK, contentType, body)
}

func (h *WeighbridgeHandler) redirectHome(c *gin.Context) {
	location := "/"
	if q := c.PostForm("q"); q != "" {
		location += "?q=" + url.QueryEscape(q)
	}
	c.Redirect(http.StatusSeeOther, location)
}
