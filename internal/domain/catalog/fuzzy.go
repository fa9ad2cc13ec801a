package catalog

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/FACorreiaa/course-planner/internal/domain/catalog/repository"
)

// minSuggestScore drops suggestions that share little more than the subject
const minSuggestScore = 50

// CodeMatcher ranks catalog codes by similarity to a transcript code, for
// typos like "CS 46" vs "CS 46A" or OCR slips like "CS 1O1".
type CodeMatcher struct {
	codes []string
}

// NewCodeMatcher builds a matcher over catalog courses
func NewCodeMatcher(courses []repository.Course) *CodeMatcher {
	codes := make([]string, 0, len(courses))
	seen := make(map[string]struct{}, len(courses))
	for _, c := range courses {
		code := strings.ToUpper(c.Code())
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		codes = append(codes, code)
	}
	return &CodeMatcher{codes: codes}
}

type rankedCode struct {
	code  string
	score int
}

// Rank returns up to limit codes scoring at least minSuggestScore, highest
// first. limit <= 0 returns every qualifying code.
func (m *CodeMatcher) Rank(code string, limit int) []string {
	target := strings.ToUpper(code)

	ranked := make([]rankedCode, 0, len(m.codes))
	for _, c := range m.codes {
		if s := codeScore(target, c); s >= minSuggestScore {
			ranked = append(ranked, rankedCode{code: c, score: s})
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if limit > 0 && limit < len(ranked) {
		ranked = ranked[:limit]
	}

	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.code)
	}
	return out
}

// codeScore is a 0-100 similarity. Prefix containment scores high since
// catalogs often add a suffix letter that transcripts omit.
func codeScore(a, b string) int {
	if a == b {
		return 100
	}
	if strings.HasPrefix(b, a) || strings.HasPrefix(a, b) {
		shorter, longer := len(a), len(b)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return 75 + 25*shorter/longer
	}

	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 0
	}

	score := 100 * (maxLen - fuzzy.LevenshteinDistance(a, b)) / maxLen
	if score < 0 {
		return 0
	}
	return score
}
