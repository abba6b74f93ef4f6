package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veeh-harfe/zupfnoter/internal/config"
	"github.com/veeh-harfe/zupfnoter/internal/layout"
	pdfrender "github.com/veeh-harfe/zupfnoter/render/pdf"
)

var (
	RenderCmd = &cobra.Command{
		Use:   "render [abc-file]",
		Short: "render an ABC tune to a harpnote PDF",
		Args:  cobra.ExactArgs(1),
		RunE:  renderCmd,
	}

	renderOutFlag        string
	renderVoicesFlag     string
	renderSynchLineFlag  string
	renderBarNumberFlag  string
	renderStringNameFlag string
	renderBottomUpFlag   bool
)

func init() {
	RenderCmd.Flags().StringVarP(&renderOutFlag, "out", "o", "out.pdf",
		"output PDF path")
	RenderCmd.Flags().StringVar(&renderVoicesFlag, "voices", "",
		"comma-separated voice indices to render; empty renders every voice")
	RenderCmd.Flags().StringVar(&renderSynchLineFlag, "synchlines", "",
		"comma-separated voice-index pairs to draw synchlines between, e.g. \"1:2,2:3\"")
	RenderCmd.Flags().StringVar(&renderBarNumberFlag, "barnumbers", "",
		"comma-separated voice indices to annotate with bar numbers")
	RenderCmd.Flags().StringVar(&renderStringNameFlag, "stringnames", "",
		"comma-separated string names, one per semitone column starting at pitch 0")
	RenderCmd.Flags().BoolVar(&renderBottomUpFlag, "bottom-up", false,
		"render beats increasing upward instead of downward")
	RootCmd.AddCommand(RenderCmd)
}

func renderCmd(cmd *cobra.Command, args []string) error {
	abcText, err := readABC(args[0])
	if err != nil {
		return err
	}

	extract := layout.Extract{
		Voices:      parseIntList(renderVoicesFlag),
		SynchLines:  parseSynchLinePairs(renderSynchLineFlag),
		BarNumbers:  boolSetFromList(parseIntList(renderBarNumberFlag)),
		StringNames: splitNonEmpty(renderStringNameFlag),
	}

	stack := config.NewStack()
	opts := optionsFromStack(stack)
	opts.BottomUp = opts.BottomUp || renderBottomUpFlag

	sheet, _, errs := render(abcText, extract, opts)
	for _, e := range errs {
		fmt.Fprintln(cmd.ErrOrStderr(), e)
	}

	canvas := pdfrender.NewCanvas()
	pdfrender.RenderSheet(canvas, sheet, pdfrender.DefaultPalette())
	return canvas.OutputFileAndClose(renderOutFlag)
}

// parseSynchLinePairs parses "1:2,2:3" into [][2]int{{1,2},{2,3}}.
func parseSynchLinePairs(s string) [][2]int {
	var out [][2]int
	for _, tok := range splitNonEmpty(s) {
		var a, b int
		if _, err := fmt.Sscanf(tok, "%d:%d", &a, &b); err == nil {
			out = append(out, [2]int{a, b})
		}
	}
	return out
}

func boolSetFromList(indices []int) map[int]bool {
	out := make(map[int]bool, len(indices))
	for _, i := range indices {
		out[i] = true
	}
	return out
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, tok := range parseCommaList(s) {
		if tok != "" {
			out = append(out, tok)
		}
	}
	return out
}
