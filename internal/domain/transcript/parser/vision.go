package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/course-planner/internal/domain/transcript/document"
	"github.com/FACorreiaa/course-planner/internal/domain/transcript/repository"
)

// ErrVisionExtraction is the sentinel for every vision parser failure.
var ErrVisionExtraction = errors.New("vision extraction failed")

// VisionError describes why the vision path gave up
type VisionError struct {
	Reason string
	Err    error
}

func (e *VisionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", ErrVisionExtraction, e.Reason)
	}
	return fmt.Sprintf("%s: %s: %v", ErrVisionExtraction, e.Reason, e.Err)
}

func (e *VisionError) Unwrap() error { return e.Err }

func (e *VisionError) Is(target error) bool { return target == ErrVisionExtraction }

// Prompt is the fixed instruction sent with the page images.
const Prompt = `You are reading an academic transcript. The images are its pages, in order.
Return ONLY a JSON array. Each element describes one course the student took:
{"code": "CS 46A", "title": "Intro to Programming", "grade": "A", "units": 4.0, "semester": "Fall", "year": 2023}
Rules:
- "code" is the subject abbreviation and course number separated by one space.
- "grade" is the grade exactly as printed (A, B+, P, NP, W, IP, ...). Use null when none is printed.
- "units" is the number of units or credits, or null.
- "semester" is Spring, Summer, Fall or Winter; "year" is the four digit year of that term.
- Include courses from every page. Do not add commentary before or after the array.`

// PageRenderer rasterizes document pages
type PageRenderer interface {
	RenderPages(data []byte) ([]document.PageImage, error)
}

// Inferencer sends page images with a prompt to a vision model and returns
// the raw reply text.
type Inferencer interface {
	Infer(ctx context.Context, images []document.PageImage, prompt string) (string, error)
}

// VisionParser extracts courses by asking a vision model to read the pages
type VisionParser struct {
	renderer   PageRenderer
	inferencer Inferencer
	schema     *jsonschema.Schema
	logger     *slog.Logger
}

// NewVisionParser creates a vision parser. inferencer may be nil, in which
// case every Parse call fails immediately without rendering.
func NewVisionParser(renderer PageRenderer, inferencer Inferencer, logger *slog.Logger) (*VisionParser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	schema, err := compileSchema("course_item.json", courseItemSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to compile course schema: %w", err)
	}
	return &VisionParser{
		renderer:   renderer,
		inferencer: inferencer,
		schema:     schema,
		logger:     logger,
	}, nil
}

// Parse renders every page, sends all of them in one inference request and
// decodes the first JSON array in the reply.
func (p *VisionParser) Parse(ctx context.Context, data []byte) ([]repository.ParsedCourse, error) {
	if p.inferencer == nil {
		return nil, &VisionError{Reason: "no API credential configured"}
	}
	if p.renderer == nil {
		return nil, &VisionError{Reason: "no page renderer configured"}
	}

	images, err := p.renderer.RenderPages(data)
	if err != nil {
		return nil, &VisionError{Reason: "render pages", Err: err}
	}

	reply, err := p.inferencer.Infer(ctx, images, Prompt)
	if err != nil {
		return nil, &VisionError{Reason: "inference request", Err: err}
	}
	if strings.TrimSpace(reply) == "" {
		return nil, &VisionError{Reason: "empty response body"}
	}

	items, ok := FirstJSONArray(reply)
	if !ok {
		return nil, &VisionError{Reason: "no JSON array in response"}
	}

	courses := make([]repository.ParsedCourse, 0, len(items))
	for i, raw := range items {
		item, err := validateItem(p.schema, raw)
		if err != nil {
			p.logger.Warn("vision.item.invalid", "index", i, "error", err)
			continue
		}
		c, ok := toParsedCourse(item)
		if !ok {
			p.logger.Warn("vision.item.bad_code", "index", i, "code", item["code"])
			continue
		}
		courses = append(courses, c)
	}

	p.logger.Info("vision.parse.done",
		"pages", len(images),
		"items", len(items),
		"courses", len(courses),
	)
	return courses, nil
}

var yearPattern = regexp.MustCompile(`\b\d{4}\b`)

func toParsedCourse(item map[string]any) (repository.ParsedCourse, bool) {
	code := repository.CanonicalCode(stringField(item, "code"))
	if !repository.ValidCode(code) {
		return repository.ParsedCourse{}, false
	}

	c := repository.ParsedCourse{
		Code:         code,
		Grade:        strings.ToUpper(stringField(item, "grade")),
		SemesterText: semesterText(stringField(item, "semester"), stringField(item, "year")),
	}
	if title := stringField(item, "title"); title != "" {
		c.Title = &title
	}
	if u := stringField(item, "units"); u != "" {
		if d, err := decimal.NewFromString(u); err == nil {
			c.Units = decimal.NewNullDecimal(d)
		}
	}
	return c, true
}

// semesterText joins season and year unless the season already names a year.
func semesterText(semester, year string) string {
	if yearPattern.MatchString(semester) {
		return semester
	}
	return strings.TrimSpace(semester + " " + year)
}

func stringField(item map[string]any, key string) string {
	switch v := item[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
