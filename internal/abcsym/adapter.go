package abcsym

import (
	"fmt"

	"github.com/veeh-harfe/zupfnoter/internal/harperr"
)

// Adapter is the thin facade over Parser that the music transformer
// actually talks to. It normalizes error reporting into harperr's
// taxonomy, links each voice's symbols into a Next chain, captures that
// chain exactly once per parse (a real ABC parser may reuse or mutate
// its internal buffers on a second call), and can wrap a symbol's
// source span in the same positioned-annotation convention ABC uses for
// chord text, so the drawing layer can emit a hit-testable group per
// entity without knowing anything about ABC syntax itself.
type Adapter struct {
	parser Parser

	captured bool
	voices   map[int][]*Symbol
	errors   []error
}

// NewAdapter wraps parser. A nil parser defaults to NewParser().
func NewAdapter(parser Parser) *Adapter {
	if parser == nil {
		parser = NewParser()
	}
	return &Adapter{parser: parser}
}

// Parse runs the underlying parser against abcText and returns the
// per-voice symbol chains, keyed by the ABC voice number. Errors
// accumulated during parsing (via
// ErrMsg) are returned alongside any hard error from the parser itself.
func (a *Adapter) Parse(name, abcText string) (map[int][]*Symbol, []error) {
	tune, err := a.parser.Parse(name, abcText)
	if err != nil {
		a.ErrMsg(err.Error(), 0, 0)
		return nil, a.errors
	}
	for _, pe := range tune.Errors {
		a.ErrMsg(pe.Message, pe.Line, pe.Col)
	}
	a.captured = false
	voices := a.GetABCModel(tune)
	return voices, a.errors
}

// GetABCModel captures each voice's symbol slice into a Next-linked
// chain exactly once: the first call after a Parse wins, and every
// subsequent call returns the same chains without touching the parser
// again. This matches a real ABC parser whose internal per-voice buffer
// may be cleared or reused once control returns to the caller -- the
// adapter must take its own durable copy on the first pass.
func (a *Adapter) GetABCModel(tune *Tune) map[int][]*Symbol {
	if a.captured {
		return a.voices
	}
	a.voices = make(map[int][]*Symbol, len(tune.VoiceTB))
	for idx, syms := range tune.VoiceTB {
		chain := make([]*Symbol, len(syms))
		copy(chain, syms)
		for i := 0; i+1 < len(chain); i++ {
			chain[i].Next = chain[i+1]
		}
		a.voices[idx] = chain
	}
	a.captured = true
	return a.voices
}

// ErrMsg records one parser diagnostic as a harperr.ParseError. It never
// aborts parsing; the caller decides what to do with a non-empty Errors
// list.
func (a *Adapter) ErrMsg(message string, line, col int) {
	a.errors = append(a.errors, &harperr.ParseError{Message: message, Line: line, Column: col})
}

// Errors returns every diagnostic recorded so far.
func (a *Adapter) Errors() []error { return a.errors }

// AnnoStart opens a positioned annotation group around sym's source
// span, in the same "<g class=..." convention ABC engraving tools use to
// let a renderer map a drawn shape back to source text: a class name
// encoding the symbol type and character range, plus a transparent rect
// a UI can hit-test against.
func (a *Adapter) AnnoStart(sym *Symbol) string {
	return fmt.Sprintf(`<g class="_%s_%d_%d_">`, sym.Type, sym.StartChar, sym.EndChar)
}

// AnnoStop closes the group opened by AnnoStart.
func (a *Adapter) AnnoStop() string { return "</g>" }

// AbcRef returns the transparent hit-test rectangle for sym's source
// span, sized to the drawing coordinates the caller has already computed
// for it.
func (a *Adapter) AbcRef(sym *Symbol, x, y, w, h float64) string {
	return fmt.Sprintf(`<rect class="abcref" data-start="%d" data-end="%d" x="%g" y="%g" width="%g" height="%g" fill="transparent"/>`,
		sym.StartChar, sym.EndChar, x, y, w, h)
}

// ImgOut passes an embedded raster reference (e.g. a fingering diagram
// or cover image referenced from the ABC header) straight through; the
// adapter does not interpret image bytes itself.
func (a *Adapter) ImgOut(path string, x, y, w, h float64) string {
	return fmt.Sprintf(`<image href="%s" x="%g" y="%g" width="%g" height="%g"/>`, path, x, y, w, h)
}
