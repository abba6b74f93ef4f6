package main

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/veeh-harfe/zupfnoter/internal/abcsym"
	"github.com/veeh-harfe/zupfnoter/internal/config"
	"github.com/veeh-harfe/zupfnoter/internal/drawing"
	"github.com/veeh-harfe/zupfnoter/internal/harperr"
	"github.com/veeh-harfe/zupfnoter/internal/layout"
	"github.com/veeh-harfe/zupfnoter/internal/music"
)

// readABC loads the tune text from path, or from stdin when path is "-".
func readABC(path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(os.Stdin)
		return string(b), err
	}
	b, err := os.ReadFile(path)
	return string(b), err
}

// render runs the full config->abcsym->music->layout pipeline over abcText
// and returns the resulting sheet alongside every accumulated warning/error
// from every stage, all tagged with the render's correlation id (minted by
// the transform stage) so a log grep ties every stage of one render
// together.
func render(abcText string, extract layout.Extract, opts layout.Options) (*drawing.Sheet, *music.Song, []error) {
	adapter := abcsym.NewAdapter(nil)
	symVoices, parseErrs := adapter.Parse("cli", abcText)

	song, transformErrs := music.NewTransformer(music.DefaultOptions()).Transform(symVoices)

	sheet, layoutErrs := layout.Build(song, extract, opts)

	var errs []error
	errs = append(errs, harperr.Tag(song.CorrelationID, parseErrs)...)
	errs = append(errs, transformErrs...)
	errs = append(errs, harperr.Tag(song.CorrelationID, layoutErrs)...)

	return sheet, song, errs
}

// optionsFromStack resolves the layout knobs a caller may have overridden on
// the config stack (dotted paths under "layout."), falling back to
// layout.DefaultOptions for anything unset.
func optionsFromStack(stack *config.Stack) layout.Options {
	opts := layout.DefaultOptions()

	if v, err := stack.Resolve("layout.x_spacing"); err == nil {
		if f, ok := toFloat(v); ok {
			opts.XSpacing = f
		}
	}
	if v, err := stack.Resolve("layout.pitch_offset"); err == nil {
		if f, ok := toFloat(v); ok {
			opts.PitchOffset = f
		}
	}
	if v, err := stack.Resolve("layout.drawing_height"); err == nil {
		if f, ok := toFloat(v); ok {
			opts.DrawingHeight = f
		}
	}
	if v, err := stack.Resolve("layout.bottom_up"); err == nil {
		if b, ok := v.(bool); ok {
			opts.BottomUp = b
		}
	}
	return opts
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	default:
		return 0, false
	}
}

// parseCommaList splits a comma-separated flag value into trimmed pieces.
func parseCommaList(s string) []string {
	var out []string
	for _, tok := range strings.Split(s, ",") {
		out = append(out, strings.TrimSpace(tok))
	}
	return out
}

// parseIntList splits a comma-separated flag value into ints, skipping any
// piece that does not parse.
func parseIntList(s string) []int {
	var out []int
	for _, tok := range strings.Split(s, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		if n, err := strconv.Atoi(tok); err == nil {
			out = append(out, n)
		}
	}
	return out
}
