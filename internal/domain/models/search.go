package models

import (
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

const displayDateLayout = "1/2/2006"

// Span is one segment of a highlighted string.
type Span struct {
	Text    string `json:"text"`
	Matched bool   `json:"matched"`
}

// FormatNumber renders a value with en-US thousands grouping.
func FormatNumber(v float64) string {
	return humanize.Commaf(v)
}

// FormatDate renders a stored YYYY-MM-DD date as M/D/YYYY. Unparseable
// values are returned unchanged.
func FormatDate(date string) string {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format(displayDateLayout)
}

// DisplayFields returns the values a search query is tested against. Numbers
// appear both raw and grouped so "12000" and "12,000" both hit.
func DisplayFields(r Record) []string {
	return []string{
		r.PlateNumber,
		rawNumber(r.LoadedKg), FormatNumber(r.LoadedKg),
		rawNumber(r.EmptyKg), FormatNumber(r.EmptyKg),
		rawNumber(r.NetKg), FormatNumber(r.NetKg),
		strconv.FormatInt(r.Price, 10), FormatNumber(float64(r.Price)),
		FormatDate(r.Date),
	}
}

// Matches reports whether any display field of r contains query,
// case-insensitively. A blank query matches everything.
func Matches(r Record, query string) bool {
	needle := []rune(strings.TrimSpace(query))
	if len(needle) == 0 {
		return true
	}
	for _, field := range DisplayFields(r) {
		if indexFold([]rune(field), needle, 0) >= 0 {
			return true
		}
	}
	return false
}

// Highlight splits text into plain and matched spans, marking every
// non-overlapping case-insensitive occurrence of query from left to right.
// Joining the span texts gives back text unchanged. Case folding is the same
// as in Matches.
func Highlight(text, query string) []Span {
	needle := []rune(strings.TrimSpace(query))
	if len(needle) == 0 || text == "" {
		return []Span{{Text: text}}
	}

	src := []rune(text)
	var spans []Span
	plainStart := 0
	for {
		i := indexFold(src, needle, plainStart)
		if i < 0 {
			break
		}
		if i > plainStart {
			spans = append(spans, Span{Text: string(src[plainStart:i])})
		}
		spans = append(spans, Span{Text: string(src[i : i+len(needle)]), Matched: true})
		plainStart = i + len(needle)
	}
	if plainStart < len(src) {
		spans = append(spans, Span{Text: string(src[plainStart:])})
	}
	return spans
}

// indexFold returns the first rune offset at or after from where needle
// occurs in src under Unicode simple case folding, or -1.
func indexFold(src, needle []rune, from int) int {
	for i := from; i+len(needle) <= len(src); i++ {
		if strings.EqualFold(string(src[i:i+len(needle)]), string(needle)) {
			return i
		}
	}
	return -1
}

func rawNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
