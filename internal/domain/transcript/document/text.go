package document

import (
	"bytes"
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"

	"github.com/ledongthuc/pdf"
)

var errNoPages = errors.New("document has no pages")

// TextExtractor pulls plain text out of PDF pages
type TextExtractor struct {
	logger *slog.Logger
}

// NewTextExtractor creates a text extractor
func NewTextExtractor(logger *slog.Logger) *TextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &TextExtractor{logger: logger}
}

// ExtractPages returns one string per page, in page order. Pages whose text
// cannot be read come back empty so indices stay aligned with page numbers.
func (e *TextExtractor) ExtractPages(data []byte) (pages []string, err error) {
	if len(data) == 0 {
		return nil, decodeErr("open pdf", errors.New("empty content"))
	}

	// the reader panics on some malformed xref tables
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = decodeErr("read pdf", fmt.Errorf("%v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, decodeErr("open pdf", err)
	}

	n := r.NumPage()
	if n == 0 {
		return nil, decodeErr("open pdf", errNoPages)
	}

	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := pageText(page)
		if err != nil {
			e.logger.Warn("skipping unreadable page", "page", i, "error", err)
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// Extract returns the text of every page joined with newlines
func (e *TextExtractor) Extract(data []byte) (string, error) {
	pages, err := e.ExtractPages(data)
	if err != nil {
		return "", err
	}
	return JoinPages(pages), nil
}

// JoinPages concatenates page texts with a newline between pages
func JoinPages(pages []string) string {
	return strings.Join(pages, "\n")
}

// pageText rebuilds lines from positioned glyphs. GetPlainText drops the
// line structure the course parser depends on, and GetTextByRow merges rows
// on pages laid out with relative Td moves.
func pageText(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("read page content: %v", r)
		}
	}()

	glyphs := page.Content().Text
	if len(glyphs) == 0 {
		plain, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(plain), nil
	}
	return joinRows(glyphs), nil
}

// joinRows groups glyphs by baseline, top of the page first.
func joinRows(glyphs []pdf.Text) string {
	rows := make(map[int][]pdf.Text)
	for _, g := range glyphs {
		y := int(math.Round(g.Y))
		rows[y] = append(rows[y], g)
	}

	baselines := make([]int, 0, len(rows))
	for y := range rows {
		baselines = append(baselines, y)
	}
	slices.Sort(baselines)
	slices.Reverse(baselines)

	lines := make([]string, 0, len(baselines))
	for _, y := range baselines {
		if line := rowText(rows[y]); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

// rowText orders a row left to right and inserts a space wherever the gap
// between two glyphs is wider than a fraction of the font size. The sort is
// stable because fonts without width tables report every glyph of a run at
// the run's origin.
func rowText(row []pdf.Text) string {
	slices.SortStableFunc(row, func(a, b pdf.Text) int {
		return cmp.Compare(a.X, b.X)
	})

	var b strings.Builder
	for i, g := range row {
		if i > 0 {
			prev := row[i-1]
			gap := g.X - (prev.X + prev.W)
			if gap > wordGap(prev.FontSize) && !strings.HasSuffix(prev.S, " ") && !strings.HasPrefix(g.S, " ") {
				b.WriteByte(' ')
			}
		}
		b.WriteString(g.S)
	}
	return strings.TrimSpace(b.String())
}

func wordGap(fontSize float64) float64 {
	if fontSize <= 0 {
		fontSize = 1
	}
	return fontSize * 0.2
}
