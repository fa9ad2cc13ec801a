// Package parser turns transcript content into course rows, either by
// matching course lines in plain text or by asking a vision model to read
// the rendered pages.
package parser

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/course-planner/internal/domain/transcript/repository"
	"github.com/FACorreiaa/course-planner/pkg/term"
)

var (
	codePattern  = regexp.MustCompile(`\b([A-Z]{2,4})\s+(\d{1,3}[A-Z]?)\b`)
	tokenPattern = regexp.MustCompile(`\S+`)

	// letter grades, pass/no-pass, withdrawals, incompletes, in progress
	gradePattern = regexp.MustCompile(`^(?:[A-DF][+-]?|P|NP|CR|NC|W|WD|WU|WF|WP|I|IN|INC|IC|IP)$`)

	unitsLabeled = regexp.MustCompile(`(?i)\b(\d{1,2}(?:\.\d{1,2})?)\s*(?:units?|credits?|cr|hrs?)\b`)
	unitsDecimal = regexp.MustCompile(`\b(\d{1,2}\.\d{1,2})\b`)
)

// ParseCoursesFromText scans transcript text line by line and returns one
// course per distinct code, in first-seen order. Lines where no grade can be
// found next to a code are treated as noise. It never fails; unusable input
// yields an empty slice.
func ParseCoursesFromText(text string) []repository.ParsedCourse {
	courses := make([]repository.ParsedCourse, 0)
	seen := make(map[string]struct{})
	semester := ""

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()

		if t, ok := term.Parse(line); ok {
			semester = t.String()
		}

		for _, c := range parseLine(line, semester) {
			if _, dup := seen[c.Code]; dup {
				continue
			}
			seen[c.Code] = struct{}{}
			courses = append(courses, c)
		}
	}

	return courses
}

func parseLine(line, semester string) []repository.ParsedCourse {
	matches := codeMatches(line)
	if len(matches) == 0 {
		return nil
	}

	var out []repository.ParsedCourse
	for i, m := range matches {
		end := len(line)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		rest := line[m[1]:end]

		grade, gradeAt := findGrade(rest)
		if grade == "" {
			continue
		}

		c := repository.ParsedCourse{
			Code:         line[m[2]:m[3]] + " " + line[m[4]:m[5]],
			Grade:        grade,
			SemesterText: semester,
			Units:        findUnits(rest),
		}
		if title := strings.TrimSpace(rest[:gradeAt]); title != "" {
			c.Title = &title
		}
		out = append(out, c)
	}
	return out
}

// codeMatches finds course codes on a line. A match after the first whose
// letters form a grade ("IP 4.0", "NP 3") is the grade and units columns of
// the preceding course, so it is neither a code nor a segment boundary.
func codeMatches(line string) [][]int {
	var out [][]int
	for _, m := range codePattern.FindAllStringSubmatchIndex(line, -1) {
		if len(out) > 0 && gradePattern.MatchString(line[m[2]:m[3]]) {
			continue
		}
		out = append(out, m)
	}
	return out
}

// findGrade returns the last grade-like token in s and its byte offset.
// Titles such as "Calculus I" sit before the grade column, so the last
// qualifying token is the grade.
func findGrade(s string) (string, int) {
	grade, at := "", -1
	for _, loc := range tokenPattern.FindAllStringIndex(s, -1) {
		tok := strings.Trim(s[loc[0]:loc[1]], ",;:()")
		if gradePattern.MatchString(tok) {
			grade, at = tok, loc[0]
		}
	}
	return grade, at
}

func findUnits(s string) decimal.NullDecimal {
	m := unitsLabeled.FindStringSubmatch(s)
	if m == nil {
		m = unitsDecimal.FindStringSubmatch(s)
	}
	if m == nil {
		return decimal.NullDecimal{}
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(d)
}
