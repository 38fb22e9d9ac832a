package models_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mamadbah2/weighbridge/internal/domain/models"
)

func joinSpans(spans []models.Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}

func TestHighlight(t *testing.T) {
	spans := models.Highlight("AB12ab34", "ab")
	assert.Equal(t, []models.Span{
		{Text: "AB", Matched: true},
		{Text: "12"},
		{Text: "ab", Matched: true},
		{Text: "34"},
	}, spans)

	assert.Equal(t, []models.Span{{Text: "plain"}}, models.Highlight("plain", "  "))
	assert.Equal(t, []models.Span{{Text: "plain"}}, models.Highlight("plain", "zz"))
	assert.Equal(t, []models.Span{{Text: "aa", Matched: true}, {Text: "a"}}, models.Highlight("aaa", "aa"))
}

func TestHighlightPreservesText(t *testing.T) {
	for _, tc := range []struct{ text, query string }{
		{"12,000", "2"},
		{"Ünïcode ünï", "ÜNÏ"},
		{"1/2/2026", "/"},
		{"", "x"},
	} {
		assert.Equal(t, tc.text, joinSpans(models.Highlight(tc.text, tc.query)))
	}
}

func TestMatches(t *testing.T) {
	rec := models.Record{PlateNumber: "01A777BC", LoadedKg: 12000, EmptyKg: 8000, NetKg: 4000,
		Date: "2026-03-04", Rate: models.Rate30000, Price: 30000}

	assert.True(t, models.Matches(rec, ""))
	assert.True(t, models.Matches(rec, "   "))
	assert.True(t, models.Matches(rec, "a777"))
	assert.True(t, models.Matches(rec, "12000"))
	assert.True(t, models.Matches(rec, "12,000"))
	assert.True(t, models.Matches(rec, "3/4/2026"))
	assert.True(t, models.Matches(rec, " 4000 "))
	assert.False(t, models.Matches(rec, "zzz"))
}

func TestMatchesAgreesWithHighlight(t *testing.T) {
	for _, tc := range []struct {
		plate, query string
		want         bool
	}{
		{"ΟΔΟΣ-1", "οδος", true},
		{"ΟΔΟΣ-1", "ΟΔΟΣ", true},
		{"\u212AA-77", "ka", true},
		{"KA-77", "\u212Aa", true},
		{"01A777BC", "a777b", true},
		{"01A777BC", "a778", false},
	} {
		rec := models.Record{PlateNumber: tc.plate, Date: "2026-03-04"}
		assert.Equal(t, tc.want, models.Matches(rec, tc.query), "%q in %q", tc.query, tc.plate)

		highlighted := false
		for _, sp := range models.Highlight(tc.plate, tc.query) {
			highlighted = highlighted || sp.Matched
		}
		assert.Equal(t, tc.want, highlighted, "%q in %q", tc.query, tc.plate)
	}
}

func TestFormatting(t *testing.T) {
	assert.Equal(t, "12,000", models.FormatNumber(12000))
	assert.Equal(t, "0", models.FormatNumber(0))
	assert.Equal(t, "3/4/2026", models.FormatDate("2026-03-04"))
	assert.Equal(t, "garbage", models.FormatDate("garbage"))
}
