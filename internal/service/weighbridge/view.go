package weighbridge

import (
	"strings"

	"github.com/mamadbah2/weighbridge/internal/domain/models"
)

// Row is one table line with every display cell pre-split into highlight spans.
type Row struct {
	Record  models.Record `json:"record"`
	Matched bool          `json:"matched"`
	Plate   []models.Span `json:"plate"`
	Loaded  []models.Span `json:"loaded"`
	Date    []models.Span `json:"date"`
	Empty   []models.Span `json:"empty"`
	Net     []models.Span `json:"net"`
	Price   []models.Span `json:"price"`
}

// Dimmed reports whether the row should be de-emphasised.
func (r Row) Dimmed() bool { return !r.Matched }

// View is a consistent snapshot for rendering the page.
type View struct {
	Query       string             `json:"query"`
	Rows        []Row              `json:"rows"`
	Draft       models.Draft       `json:"-"`
	EditingID   string             `json:"editingId,omitempty"`
	Preferences models.Preferences `json:"preferences"`
	Rates       []models.Rate      `json:"-"`
}

// MatchCount returns how many rows match the query.
func (v View) MatchCount() int {
	n := 0
	for _, r := range v.Rows {
		if r.Matched {
			n++
		}
	}
	return n
}

// View renders every record against query. Rows that do not match stay in
// the result and are flagged for dimming.
func (c *Controller) View(query string) View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	rows := make([]Row, 0, len(c.records))
	for _, rec := range c.records {
		rows = append(rows, BuildRow(rec, query))
	}
	return View{
		Query:       query,
		Rows:        rows,
		Draft:       c.draft,
		EditingID:   c.editingID,
		Preferences: c.prefs,
		Rates:       models.Rates(),
	}
}

// BuildRow formats rec for display and highlights query in each cell.
func BuildRow(rec models.Record, query string) Row {
	q := strings.TrimSpace(query)
	return Row{
		Record:  rec,
		Matched: models.Matches(rec, q),
		Plate:   models.Highlight(rec.PlateNumber, q),
		Loaded:  models.Highlight(models.FormatNumber(rec.LoadedKg), q),
		Date:    models.Highlight(models.FormatDate(rec.Date), q),
		Empty:   models.Highlight(models.FormatNumber(rec.EmptyKg), q),
		Net:     models.Highlight(models.FormatNumber(rec.NetKg), q),
		Price:   models.Highlight(models.FormatNumber(float64(rec.Price)), q),
	}
}
