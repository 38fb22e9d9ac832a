package models

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for Record.Date.
const DateLayout = "2006-01-02"

// Rate enumerates the fixed tariffs a record can be charged at.
type Rate int64

const (
	Rate30000 Rate = 30000
	Rate40000 Rate = 40000
)

// DefaultRate is the tariff preselected on a fresh form.
const DefaultRate = Rate30000

// Rates lists the selectable tariffs in display order.
func Rates() []Rate {
	return []Rate{Rate30000, Rate40000}
}

// ParseRate accepts "30000", "40000" and their grouped display forms.
// Anything else yields DefaultRate.
func ParseRate(raw string) Rate {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	v, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		return DefaultRate
	}
	switch Rate(v) {
	case Rate30000, Rate40000:
		return Rate(v)
	default:
		return DefaultRate
	}
}

// Record is a single saved weighing.
type Record struct {
	ID          string  `json:"id"`
	PlateNumber string  `json:"plateNumber"`
	LoadedKg    float64 `json:"loadedKg"`
	EmptyKg     float64 `json:"emptyKg"`
	NetKg       float64 `json:"netKg"`
	Date        string  `json:"date"`
	Rate        Rate    `json:"rate"`
	Price       int64   `json:"price"`
	CheckNumber string  `json:"checkNumber,omitempty"`
}

// Theme is the page colour scheme.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Toggle returns the other theme.
func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

// UnmarshalJSON maps unknown values onto the light theme.
func (t *Theme) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if Theme(s) == ThemeDark {
		*t = ThemeDark
	} else {
		*t = ThemeLight
	}
	return nil
}

// Preferences are process-wide settings persisted apart from the records.
type Preferences struct {
	Theme        Theme `json:"theme"`
	AlarmEnabled bool  `json:"alarmEnabled"`
}

// DefaultPreferences returns the settings used before anything is persisted.
func DefaultPreferences() Preferences {
	return Preferences{Theme: ThemeLight, AlarmEnabled: true}
}

// Draft is the in-flight form. Loaded and Empty are nil while the field is blank.
type Draft struct {
	PlateNumber string
	Loaded      *float64
	Empty       *float64
	Date        string
	Rate        Rate
	CheckNumber string

	NetKg       float64
	Price       int64
	NetNegative bool
}

// NewDraft returns a blank form dated on the given day.
func NewDraft(today time.Time) Draft {
	return Draft{
		Date:  today.Format(DateLayout),
		Rate:  DefaultRate,
		Price: int64(DefaultRate),
	}
}

// DraftFromRecord loads a saved record back into the form.
func DraftFromRecord(r Record) Draft {
	loaded, empty := r.LoadedKg, r.EmptyKg
	return Draft{
		PlateNumber: r.PlateNumber,
		Loaded:      &loaded,
		Empty:       &empty,
		Date:        r.Date,
		Rate:        r.Rate,
		CheckNumber: r.CheckNumber,
		NetKg:       r.NetKg,
		Price:       r.Price,
	}
}

// ToRecord builds a record from the draft. Net weight and price are always
// recomputed here rather than taken from the draft.
func (d Draft) ToRecord(id string) Record {
	loaded, empty := valueOrZero(d.Loaded), valueOrZero(d.Empty)
	return Record{
		ID:          id,
		PlateNumber: strings.TrimSpace(d.PlateNumber),
		LoadedKg:    loaded,
		EmptyKg:     empty,
		NetKg:       NetWeight(loaded, empty),
		Date:        d.Date,
		Rate:        d.Rate,
		Price:       int64(d.Rate),
		CheckNumber: strings.TrimSpace(d.CheckNumber),
	}
}

func valueOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
