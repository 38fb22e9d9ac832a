package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mamadbah2/weighbridge/internal/domain/models"
	"github.com/mamadbah2/weighbridge/internal/repository/kv"
	"github.com/mamadbah2/weighbridge/internal/repository/records"
	"github.com/mamadbah2/weighbridge/internal/server/handlers"
	"github.com/mamadbah2/weighbridge/internal/server/router"
	"github.com/mamadbah2/weighbridge/internal/service/reporting"
	"github.com/mamadbah2/weighbridge/internal/service/weighbridge"
	"github.com/mamadbah2/weighbridge/pkg/audio"
)

type harness struct {
	handler http.Handler
	ctrl    *weighbridge.Controller
	repo    *records.Repository
	beeper  *audio.Beeper
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	repo := records.NewRepository(kv.NewMemoryStore(), nil)
	beeper := audio.NewBeeper(audio.AlertTone(), nil)
	ctrl := weighbridge.NewController(nil, models.DefaultPreferences(), beeper, nil, weighbridge.PersistOnChange(repo, nil))
	h := handlers.NewWeighbridgeHandler(ctrl, reporting.NewService(nil), beeper, nil)

	engine, err := router.New(h, nil)
	require.NoError(t, err)
	return &harness{handler: engine, ctrl: ctrl, repo: repo, beeper: beeper}
}

func (h *harness) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.handler.ServeHTTP(w, req)
	return w
}

func (h *harness) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.do(t, req)
}

func recordForm(plate, loaded, empty, rate string) url.Values {
	return url.Values{
		"plateNumber": {plate},
		"loaded":      {loaded},
		"empty":       {empty},
		"date":        {"2026-10-16"},
		"rate":        {rate},
	}
}

func TestHealthz(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestSubmitRedirectsAndPersists(t *testing.T) {
	h := newHarness(t)

	form := recordForm("01A777AA", "12,000", "8000", "40000")
	form.Set("q", "777")
	w := h.postForm(t, "/records", form)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/?q=777", w.Header().Get("Location"))

	recs, _ := h.repo.Restore(context.Background())
	require.Len(t, recs, 1)
	assert.Equal(t, 4000.0, recs[0].NetKg)
	assert.Equal(t, int64(40000), recs[0].Price)
}

func TestPageRendersHighlightedRows(t *testing.T) {
	h := newHarness(t)
	h.postForm(t, "/records", recordForm("01A777AA", "12000", "8000", "30000"))
	h.postForm(t, "/records", recordForm("01B555BB", "9000", "1000", "30000"))

	w := h.do(t, httptest.NewRequest(http.MethodGet, "/?q=777", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `01A<span class="red">777</span>AA`)
	assert.Contains(t, body, `class="dim"`)
	assert.Contains(t, body, "01B555BB")
	assert.Contains(t, body, "12,000")
	assert.Contains(t, body, `data-theme="light"`)
}

func TestEditDeleteAndClear(t *testing.T) {
	h := newHarness(t)
	h.postForm(t, "/records", recordForm("A", "100", "10", "30000"))
	h.postForm(t, "/records", recordForm("B", "200", "20", "30000"))
	recs := h.ctrl.Records()
	require.Len(t, recs, 2)

	w := h.postForm(t, "/records/"+recs[1].ID+"/edit", nil)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	page := h.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	assert.Contains(t, page, "Cancel Edit")

	h.postForm(t, "/records", recordForm("A-edited", "100", "10", "30000"))
	after := h.ctrl.Records()
	require.Len(t, after, 2)
	assert.Equal(t, recs[1].ID, after[1].ID)
	assert.Equal(t, "A-edited", after[1].PlateNumber)

	h.postForm(t, "/records/does-not-exist/delete", nil)
	assert.Len(t, h.ctrl.Records(), 2)

	h.postForm(t, "/records/"+recs[0].ID+"/delete", nil)
	assert.Len(t, h.ctrl.Records(), 1)

	h.postForm(t, "/records/clear", nil)
	assert.Empty(t, h.ctrl.Records())
	persisted, _ := h.repo.Restore(context.Background())
	assert.Empty(t, persisted)
}

func TestDraftEndpointDerivesAndAlarms(t *testing.T) {
	h := newHarness(t)
	body, _ := json.Marshal(weighbridge.DraftInput{Loaded: "5000", Empty: "9000", Rate: "40000"})
	req := httptest.NewRequest(http.MethodPost, "/draft", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := h.do(t, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		NetKg        float64 `json:"netKg"`
		Price        int64   `json:"price"`
		Alarm        bool    `json:"alarm"`
		NetNegative  bool    `json:"netNegative"`
		PriceDisplay string  `json:"priceDisplay"`
		AlarmSeq     uint64  `json:"alarmSeq"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0.0, resp.NetKg)
	assert.Equal(t, int64(40000), resp.Price)
	assert.True(t, resp.Alarm)
	assert.True(t, resp.NetNegative)
	assert.Equal(t, "40,000", resp.PriceDisplay)
	assert.Equal(t, uint64(1), resp.AlarmSeq)

	bad := httptest.NewRequest(http.MethodPost, "/draft", strings.NewReader("{"))
	bad.Header.Set("Content-Type", "application/json")
	assert.Equal(t, http.StatusBadRequest, h.do(t, bad).Code)
}

func TestPreferenceToggles(t *testing.T) {
	h := newHarness(t)
	h.postForm(t, "/preferences/theme", nil)
	h.postForm(t, "/preferences/alarm", nil)

	_, prefs := h.repo.Restore(context.Background())
	assert.Equal(t, models.Preferences{Theme: models.ThemeDark, AlarmEnabled: false}, prefs)

	page := h.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	assert.Contains(t, page, `data-theme="dark"`)
	assert.Contains(t, page, "Alarm OFF")
}

func TestRecordsAPI(t *testing.T) {
	h := newHarness(t)
	h.postForm(t, "/records", recordForm("01A777AA", "12000", "8000", "30000"))

	w := h.do(t, httptest.NewRequest(http.MethodGet, "/api/records?q=zzz", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Matched int `json:"matched"`
		Rows    []struct {
			Matched bool `json:"matched"`
		} `json:"rows"`
		Summary reporting.Summary `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Matched)
	require.Len(t, resp.Rows, 1)
	assert.False(t, resp.Rows[0].Matched)
	assert.Equal(t, 4000.0, resp.Summary.NetKg)
}

func TestExports(t *testing.T) {
	h := newHarness(t)
	h.postForm(t, "/records", recordForm("01A777AA", "12000", "8000", "30000"))

	w := h.do(t, httptest.NewRequest(http.MethodGet, "/export.xlsx", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")
	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	rows, err := f.GetRows("Records")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
	_ = f.Close()

	w = h.do(t, httptest.NewRequest(http.MethodGet, "/export.csv", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, w.Body.String(), "01A777AA")

	w = h.do(t, httptest.NewRequest(http.MethodGet, "/print", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "window.print()")
	assert.Contains(t, w.Body.String(), "Total (1)")
}

func TestAlarmSound(t *testing.T) {
	h := newHarness(t)
	w := h.do(t, httptest.NewRequest(http.MethodGet, "/alarm.wav", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/wav", w.Header().Get("Content-Type"))
	assert.Equal(t, "RIFF", w.Body.String()[:4])
}

func TestPrintFollowsSearchQuery(t *testing.T) {
	h := newHarness(t)
	h.postForm(t, "/records", recordForm("01A777AA", "12000", "8000", "30000"))
	h.postForm(t, "/records", recordForm("01B555BB", "9000", "1000", "30000"))

	page := h.do(t, httptest.NewRequest(http.MethodGet, "/?q=777", nil)).Body.String()
	assert.Contains(t, page, `href="/print?q=777"`)

	w := h.do(t, httptest.NewRequest(http.MethodGet, "/print?q=777", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `01A<span class="red">777</span>AA`)
	assert.Contains(t, body, `class="dim"`)
	assert.Contains(t, body, "01B555BB")
	assert.Contains(t, body, "Total (2)")
}

func TestFreshTabSeedsAlarmSequence(t *testing.T) {
	h := newHarness(t)
	h.beeper.Trigger()
	h.beeper.Trigger()

	page := h.do(t, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	assert.Contains(t, page, `data-alarm-seq="2"`)
	assert.Contains(t, page, `if (sessionStorage.getItem("alarmSeq") === null)`)
}
