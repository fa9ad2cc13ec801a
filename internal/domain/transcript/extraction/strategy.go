// Package extraction chains course extraction strategies, returning the
// output of the first one that succeeds.
package extraction

import (
	"context"

	"github.com/FACorreiaa/course-planner/internal/domain/transcript/document"
	"github.com/FACorreiaa/course-planner/internal/domain/transcript/parser"
	"github.com/FACorreiaa/course-planner/internal/domain/transcript/repository"
)

// Strategy is one way of turning a document into courses
type Strategy interface {
	Name() repository.Strategy
	Extract(ctx context.Context, data []byte) ([]repository.ParsedCourse, error)
}

// VisionParser is satisfied by *parser.VisionParser
type VisionParser interface {
	Parse(ctx context.Context, data []byte) ([]repository.ParsedCourse, error)
}

// PageTextExtractor is satisfied by *document.TextExtractor
type PageTextExtractor interface {
	ExtractPages(data []byte) ([]string, error)
}

type visionStrategy struct {
	parser VisionParser
}

// NewVisionStrategy wraps a vision parser
func NewVisionStrategy(p VisionParser) Strategy {
	return &visionStrategy{parser: p}
}

func (s *visionStrategy) Name() repository.Strategy { return repository.StrategyVision }

func (s *visionStrategy) Extract(ctx context.Context, data []byte) ([]repository.ParsedCourse, error) {
	return s.parser.Parse(ctx, data)
}

type textStrategy struct {
	extractor PageTextExtractor
}

// NewTextStrategy extracts page text and runs the pattern parser over it
func NewTextStrategy(e PageTextExtractor) Strategy {
	return &textStrategy{extractor: e}
}

func (s *textStrategy) Name() repository.Strategy { return repository.StrategyText }

func (s *textStrategy) Extract(ctx context.Context, data []byte) ([]repository.ParsedCourse, error) {
	pages, err := s.extractor.ExtractPages(data)
	if err != nil {
		return nil, err
	}
	return parser.ParseCoursesFromText(document.JoinPages(pages)), nil
}
