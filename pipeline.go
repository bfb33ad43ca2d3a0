// Package musictext parses plain-text music notation into an analyzed
// document: staves of notes with octaves, slurs, lyrics and exact beat
// durations ready for a renderer.
package musictext

import (
	"log/slog"
	"time"

	"github.com/pkg/errors"

	"github.com/cbegin/musictext-go/internal/logging"
	"github.com/cbegin/musictext-go/internal/notation"
	"github.com/cbegin/musictext-go/internal/parse"
	"github.com/cbegin/musictext-go/internal/rhythm"
	"github.com/cbegin/musictext-go/internal/spatial"
)

type Option func(*pipelineConfig)

type pipelineConfig struct {
	parser  parse.ParserConfig
	spatial spatial.Options
	rhythm  rhythm.Options
	logger  *slog.Logger
}

func defaultPipelineConfig() pipelineConfig {
	return pipelineConfig{
		parser:  parse.DefaultParserConfig(),
		spatial: spatial.DefaultOptions(),
		rhythm:  rhythm.DefaultOptions(),
		logger:  logging.Discard(),
	}
}

// WithCompactExpansion toggles spacing out single-line runs such as "SRG".
func WithCompactExpansion(enabled bool) Option {
	return func(cfg *pipelineConfig) {
		cfg.parser.ExpandCompact = enabled
	}
}

// WithDefaultSystem sets the system used when a stave has no glyph that
// identifies one.
func WithDefaultSystem(sys System) Option {
	return func(cfg *pipelineConfig) {
		cfg.parser.DefaultSystem = sys
	}
}

func WithUnicodeNormalization(enabled bool) Option {
	return func(cfg *pipelineConfig) {
		cfg.parser.NormalizeUnicode = enabled
	}
}

// WithBeatSpan sets the length of one beat as a fraction of a whole note.
func WithBeatSpan(span Fraction) Option {
	return func(cfg *pipelineConfig) {
		cfg.rhythm.BeatSpan = span
	}
}

func WithMaxOctave(n int) Option {
	return func(cfg *pipelineConfig) {
		cfg.spatial.MaxOctave = n
	}
}

func WithTonicItems(enabled bool) Option {
	return func(cfg *pipelineConfig) {
		cfg.rhythm.TonicItems = enabled
	}
}

// WithLogger routes stage logs to l. A nil logger discards them.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *pipelineConfig) {
		if l == nil {
			l = logging.Discard()
		}
		cfg.logger = l
	}
}

// Pipeline runs the parse, spatial and rhythm stages. It holds no mutable
// state and may be shared between goroutines.
type Pipeline struct {
	parser  *parse.Parser
	spatial *spatial.Analyzer
	rhythm  *rhythm.Analyzer
	logger  *slog.Logger
}

func New(opts ...Option) *Pipeline {
	cfg := defaultPipelineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Pipeline{
		parser:  parse.NewParser(cfg.parser),
		spatial: spatial.New(cfg.spatial),
		rhythm:  rhythm.New(cfg.rhythm),
		logger:  cfg.logger,
	}
}

// Parse runs the structural parser only.
func (p *Pipeline) Parse(input string) (*Document, error) {
	start := time.Now()
	doc, err := p.parser.Parse(input)
	if err != nil {
		return nil, errors.Wrap(err, notation.StageParse)
	}
	p.logStage(notation.StageParse, doc, start)
	return doc, nil
}

// AssignSpatial folds upper and lower line marks into the notes of a copy
// of doc.
func (p *Pipeline) AssignSpatial(doc *Document) (*Document, error) {
	start := time.Now()
	out, err := p.spatial.Analyze(doc)
	if err != nil {
		return nil, errors.Wrap(err, notation.StageSpatial)
	}
	p.logStage(notation.StageSpatial, out, start)
	return out, nil
}

// AnalyzeRhythm segments the content lines of a copy of doc into beats.
func (p *Pipeline) AnalyzeRhythm(doc *Document) (*Document, error) {
	start := time.Now()
	out, err := p.rhythm.Analyze(doc)
	if err != nil {
		return nil, errors.Wrap(err, notation.StageRhythm)
	}
	p.logStage(notation.StageRhythm, out, start)
	return out, nil
}

// Process runs all three stages. On error no document is returned.
func (p *Pipeline) Process(input string) (*Document, error) {
	doc, err := p.Parse(input)
	if err != nil {
		return nil, err
	}
	if doc, err = p.AssignSpatial(doc); err != nil {
		return nil, err
	}
	return p.AnalyzeRhythm(doc)
}

func (p *Pipeline) logStage(stage string, doc *Document, start time.Time) {
	logging.Stage(p.logger, stage, len(doc.Staves), len(doc.Warnings), time.Since(start), "document", doc.ID)
}

var defaultPipeline = New()

// Process runs the full pipeline with default options.
func Process(input string) (*Document, error) { return defaultPipeline.Process(input) }

// Parse runs the structural parser with default options.
func Parse(input string) (*Document, error) { return defaultPipeline.Parse(input) }

// AssignSpatial runs the spatial stage with default options.
func AssignSpatial(doc *Document) (*Document, error) { return defaultPipeline.AssignSpatial(doc) }

// AnalyzeRhythm runs the rhythm stage with default options.
func AnalyzeRhythm(doc *Document) (*Document, error) { return defaultPipeline.AnalyzeRhythm(doc) }
