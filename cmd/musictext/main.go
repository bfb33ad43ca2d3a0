// Command musictext parses plain-text music notation and prints the
// analyzed document.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	musictext "github.com/cbegin/musictext-go"
	"github.com/cbegin/musictext-go/internal/config"
	"github.com/cbegin/musictext-go/internal/duration"
)

const version = "0.1.0"

// Globals holds the flags shared by every command.
type Globals struct {
	Config    string `short:"c" help:"YAML settings file" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level: debug, info, warn, error"`
	LogFormat string `name:"log-format" help:"Log format: text or json"`
	BeatSpan  string `name:"beat-span" help:"Length of one beat as n/d of a whole note"`
	System    string `help:"Notation system used when a stave does not identify one"`
	NoCompact bool   `name:"no-compact" help:"Do not space out compact input such as SRG"`

	Stdin  io.Reader `kong:"-"`
	Stdout io.Writer `kong:"-"`
	Stderr io.Writer `kong:"-"`
}

type CLI struct {
	Globals

	Parse    ParseCmd    `cmd:"" help:"Print the analyzed document as JSON"`
	Check    CheckCmd    `cmd:"" help:"Report warnings and fail on malformed input"`
	Duration DurationCmd `cmd:"" help:"Spell a fraction of a whole note as standard durations"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// settings resolves the file and flag configuration, flags winning.
func (g *Globals) settings() (config.Config, error) {
	cfg := config.Defaults()
	if g.Config != "" {
		file, err := config.Load(g.Config, nil)
		if err != nil {
			return cfg, err
		}
		cfg = config.Merge(cfg, file)
	}
	flags := config.Config{
		Parser:  config.Parser{DefaultSystem: g.System},
		Rhythm:  config.Rhythm{BeatSpan: g.BeatSpan},
		Logging: config.Logging{Level: g.LogLevel, Format: g.LogFormat},
	}
	if g.NoCompact {
		off := false
		flags.Parser.ExpandCompact = &off
	}
	return config.Merge(cfg, flags), nil
}

func (g *Globals) pipeline() (*musictext.Pipeline, *slog.Logger, error) {
	cfg, err := g.settings()
	if err != nil {
		return nil, nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, nil, err
	}
	logger, err := cfg.Logger(g.Stderr)
	if err != nil {
		return nil, nil, err
	}
	return musictext.New(append(opts, musictext.WithLogger(logger))...), logger, nil
}

// Input selects the notation source: inline text, a file, or stdin.
type Input struct {
	File string `arg:"" optional:"" help:"Input file, - or empty for stdin"`
	Text string `short:"t" help:"Inline notation instead of a file"`
}

func (in Input) read(g *Globals) (string, error) {
	if in.Text != "" {
		return in.Text, nil
	}
	if in.File != "" && in.File != "-" {
		data, err := os.ReadFile(in.File)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := io.ReadAll(g.Stdin)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type ParseCmd struct {
	Input
	Stage   string `default:"rhythm" enum:"parse,spatial,rhythm" help:"Last stage to run: parse, spatial or rhythm"`
	Compact bool   `help:"Print JSON on one line"`
}

func (c *ParseCmd) Run(g *Globals) error {
	src, err := c.read(g)
	if err != nil {
		return err
	}
	p, logger, err := g.pipeline()
	if err != nil {
		return err
	}
	doc, err := p.Parse(src)
	if err == nil && c.Stage != "parse" {
		doc, err = p.AssignSpatial(doc)
	}
	if err == nil && c.Stage == "rhythm" {
		doc, err = p.AnalyzeRhythm(doc)
	}
	if err != nil {
		return err
	}
	for _, w := range doc.Warnings {
		logger.Warn("document_warning", "stage", w.Stage, "line", w.Line, "column", w.Column, "message", w.Message)
	}
	return musictext.EncodeJSON(g.Stdout, doc, !c.Compact)
}

type CheckCmd struct {
	Input
	Strict bool `help:"Treat warnings as failures"`
}

func (c *CheckCmd) Run(g *Globals) error {
	src, err := c.read(g)
	if err != nil {
		return err
	}
	p, _, err := g.pipeline()
	if err != nil {
		return err
	}
	doc, err := p.Process(src)
	if err != nil {
		return err
	}
	beats := 0
	for _, st := range doc.Staves {
		for _, it := range st.Rhythm {
			if it.Beat != nil {
				beats++
			}
		}
	}
	for _, w := range doc.Warnings {
		fmt.Fprintf(g.Stdout, "warning: %s\n", w.String())
	}
	fmt.Fprintf(g.Stdout, "ok: %d staves, %d beats, %d warnings\n", len(doc.Staves), beats, len(doc.Warnings))
	if c.Strict && len(doc.Warnings) > 0 {
		return fmt.Errorf("%d warnings", len(doc.Warnings))
	}
	return nil
}

type DurationCmd struct {
	Fraction string `arg:"" help:"Duration as n/d of a whole note"`
}

func (c *DurationCmd) Run(g *Globals) error {
	f, err := musictext.ParseFraction(c.Fraction)
	if err != nil {
		return err
	}
	if f.Sign() <= 0 {
		return fmt.Errorf("duration %v must be positive", f)
	}
	res := duration.Decompose(f)
	fmt.Fprintf(g.Stdout, "vexflow:  %s\n", strings.Join(duration.VexFlow(res.Durations), " "))
	fmt.Fprintf(g.Stdout, "lilypond: %s\n", strings.Join(duration.Lilypond(res.Durations), "~"))
	if !res.Exact() {
		fmt.Fprintf(g.Stdout, "inexact:  %v left over\n", res.Residue)
	}
	return nil
}

type VersionCmd struct{}

func (c *VersionCmd) Run(g *Globals) error {
	fmt.Fprintf(g.Stdout, "musictext version %s\n", version)
	return nil
}

// run parses args and executes the selected command, returning the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cli := CLI{Globals: Globals{Stdin: stdin, Stdout: stdout, Stderr: stderr}}
	parser, err := kong.New(&cli,
		kong.Name("musictext"),
		kong.Description("Plain-text music notation parser"),
		kong.Writers(stdout, stderr),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
	)
	if err != nil {
		fmt.Fprintf(stderr, "musictext: %v\n", err)
		return 2
	}
	ctx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "musictext: %v\n", err)
		return 2
	}
	if err := ctx.Run(&cli.Globals); err != nil {
		fmt.Fprintf(stderr, "musictext: %v\n", err)
		return 1
	}
	return 0
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
