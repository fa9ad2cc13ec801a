// Package term normalizes free-form academic term labels ("Fall 2023",
// "fall 2023 semester") into a season, a year and a sortable order key.
package term

import (
	"regexp"
	"strconv"
	"strings"
)

// Season is one of the four academic seasons.
type Season string

const (
	Spring Season = "Spring"
	Summer Season = "Summer"
	Fall   Season = "Fall"
	Winter Season = "Winter"
)

// Rank orders seasons within a calendar year. Unknown seasons rank 0.
func (s Season) Rank() int {
	switch s {
	case Spring:
		return 1
	case Summer:
		return 2
	case Fall:
		return 3
	case Winter:
		return 4
	default:
		return 0
	}
}

// Term is a normalized academic term.
type Term struct {
	Season Season
	Year   string
	Order  int
}

func (t Term) String() string {
	return string(t.Season) + " " + t.Year
}

var termPattern = regexp.MustCompile(`(?i)\b(spring|summer|fall|winter)\s+(\d{4})\b`)

// Parse extracts the first season/year pair found in text. The boolean is
// false when no pair is present.
func Parse(text string) (Term, bool) {
	m := termPattern.FindStringSubmatch(text)
	if m == nil {
		return Term{}, false
	}
	season := Season(titleCase(m[1]))
	order, ok := OrderOf(season, m[2])
	if !ok {
		return Term{}, false
	}
	return Term{Season: season, Year: m[2], Order: order}, true
}

// OrderOf computes year*10 + season rank.
func OrderOf(season Season, year string) (int, bool) {
	rank := season.Rank()
	if rank == 0 {
		return 0, false
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return 0, false
	}
	return y*10 + rank, true
}

func titleCase(s string) string {
	s = strings.ToLower(s)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
