// Package weighbridge holds the record store and form controller.
package weighbridge

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mamadbah2/weighbridge/internal/domain/models"
)

// Alarm is notified when the loaded weight falls below the empty weight.
type Alarm interface {
	Trigger()
}

// ChangeKind tells listeners which part of the state moved.
type ChangeKind int

const (
	RecordsChanged ChangeKind = iota + 1
	PreferencesChanged
)

// Change is delivered to listeners after every mutation.
type Change struct {
	Kind        ChangeKind
	Records     []models.Record
	Preferences models.Preferences
}

// Listener observes state transitions. Listeners run synchronously, in
// registration order, before the mutating call returns. The context they
// receive carries the caller's values but is never cancelled.
type Listener func(ctx context.Context, change Change)

// DraftInput carries raw form values.
type DraftInput struct {
	PlateNumber string `json:"plateNumber" form:"plateNumber"`
	Loaded      string `json:"loaded" form:"loaded"`
	Empty       string `json:"empty" form:"empty"`
	Date        string `json:"date" form:"date"`
	Rate        string `json:"rate" form:"rate"`
	CheckNumber string `json:"checkNumber" form:"checkNumber"`
}

// Controller owns the records, the form draft and the preferences.
type Controller struct {
	mu        sync.RWMutex
	records   []models.Record
	prefs     models.Preferences
	draft     models.Draft
	editingID string

	alarm     Alarm
	listeners []Listener
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string
}

// NewController builds a controller seeded with previously persisted state.
func NewController(records []models.Record, prefs models.Preferences, alarm Alarm, logger *zap.Logger, listeners ...Listener) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Controller{
		records:   slices.Clone(records),
		prefs:     prefs,
		alarm:     alarm,
		listeners: listeners,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
	if c.records == nil {
		c.records = []models.Record{}
	}
	c.draft = models.NewDraft(c.now())
	return c
}

// Subscribe registers an additional listener.
func (c *Controller) Subscribe(l Listener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// UpdateDraft applies form input to the draft and returns the fresh
// derivation. Invalid weights are treated as blank.
func (c *Controller) UpdateDraft(ctx context.Context, in DraftInput) models.Derivation {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.applyInput(in)
}

// Submit applies input and commits the draft: it replaces the record under
// edit, or prepends a new one when nothing is being edited. The draft is
// reset afterwards.
func (c *Controller) Submit(ctx context.Context, in DraftInput) (models.Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.applyInput(in)

	created := true
	var rec models.Record
	if c.editingID != "" {
		idx := c.indexOf(c.editingID)
		rec = c.draft.ToRecord(c.editingID)
		if idx >= 0 {
			c.records[idx] = rec
			created = false
		} else {
			c.records = append([]models.Record{rec}, c.records...)
		}
	} else {
		rec = c.draft.ToRecord(c.newID())
		c.records = append([]models.Record{rec}, c.records...)
	}

	c.logger.Info("record saved",
		zap.String("id", rec.ID),
		zap.String("plate", rec.PlateNumber),
		zap.Float64("net_kg", rec.NetKg),
		zap.Bool("created", created))

	c.resetDraft()
	c.notify(ctx, RecordsChanged)
	return rec, created
}

// Edit loads the record with id into the draft. Unknown ids are ignored.
func (c *Controller) Edit(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	prev := c.draft
	c.editingID = id
	c.draft = models.DraftFromRecord(c.records[idx])
	c.rederive(inputsChanged(prev, c.draft))
	return true
}

// CancelEdit drops the edit target and resets the draft.
func (c *Controller) CancelEdit(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetDraft()
}

// Delete removes the record with id. Unknown ids are a no-op.
func (c *Controller) Delete(ctx context.Context, id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.records = slices.Delete(c.records, idx, idx+1)
	if c.editingID == id {
		c.editingID = ""
	}
	c.logger.Info("record deleted", zap.String("id", id))
	c.notify(ctx, RecordsChanged)
	return true
}

// ClearAll empties the collection and returns how many records were removed.
func (c *Controller) ClearAll(ctx context.Context) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.records)
	c.records = []models.Record{}
	c.editingID = ""
	c.logger.Warn("all records cleared", zap.Int("count", n))
	c.notify(ctx, RecordsChanged)
	return n
}

// ToggleTheme flips between light and dark.
func (c *Controller) ToggleTheme(ctx context.Context) models.Theme {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prefs.Theme = c.prefs.Theme.Toggle()
	c.notify(ctx, PreferencesChanged)
	return c.prefs.Theme
}

// ToggleAlarm flips the alarm preference. Turning it on while the draft
// already has loaded < empty fires the alarm straight away.
func (c *Controller) ToggleAlarm(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.prefs.AlarmEnabled = !c.prefs.AlarmEnabled
	c.rederive(true)
	c.notify(ctx, PreferencesChanged)
	return c.prefs.AlarmEnabled
}

// Preferences returns the current preferences.
func (c *Controller) Preferences() models.Preferences {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.prefs
}

// Records returns a copy of the collection, newest first.
func (c *Controller) Records() []models.Record {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return slices.Clone(c.records)
}

// Draft returns the current draft and the id being edited, if any.
func (c *Controller) Draft() (models.Draft, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.draft, c.editingID
}

func (c *Controller) applyInput(in DraftInput) models.Derivation {
	prev := c.draft
	next := c.draft
	next.PlateNumber = in.PlateNumber
	next.CheckNumber = in.CheckNumber
	next.Loaded = c.parseWeight("loaded", in.Loaded)
	next.Empty = c.parseWeight("empty", in.Empty)
	next.Rate = models.ParseRate(in.Rate)
	if in.Date != "" {
		if _, err := time.Parse(models.DateLayout, in.Date); err == nil {
			next.Date = in.Date
		} else {
			c.logger.Debug("ignoring invalid date", zap.String("value", in.Date))
		}
	}
	c.draft = next
	return c.rederive(inputsChanged(prev, next))
}

func (c *Controller) parseWeight(field, raw string) *float64 {
	v, err := models.ParseWeight(raw)
	if err != nil {
		c.logger.Debug("treating weight as blank", zap.String("field", field), zap.String("value", raw), zap.Error(err))
		return nil
	}
	return v
}

// rederive recomputes the draft's derived fields. The alarm only sounds when
// the inputs feeding the derivation actually moved.
func (c *Controller) rederive(changed bool) models.Derivation {
	d := models.Derive(c.draft.Loaded, c.draft.Empty, c.draft.Rate, c.prefs.AlarmEnabled)
	c.draft.NetKg = d.NetKg
	c.draft.Price = d.Price
	c.draft.NetNegative = d.NetNegative
	if d.Alarm && changed && c.alarm != nil {
		c.alarm.Trigger()
	}
	return d
}

func (c *Controller) resetDraft() {
	c.editingID = ""
	c.draft = models.NewDraft(c.now())
}

func (c *Controller) indexOf(id string) int {
	return slices.IndexFunc(c.records, func(r models.Record) bool { return r.ID == id })
}

// notify runs listeners on a context detached from the caller's cancellation.
func (c *Controller) notify(ctx context.Context, kind ChangeKind) {
	ctx = context.WithoutCancel(ctx)
	change := Change{Kind: kind, Records: slices.Clone(c.records), Preferences: c.prefs}
	for _, l := range c.listeners {
		l(ctx, change)
	}
}

func inputsChanged(a, b models.Draft) bool {
	return !sameWeight(a.Loaded, b.Loaded) || !sameWeight(a.Empty, b.Empty) || a.Rate != b.Rate
}

func sameWeight(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
