package main

import (
	"github.com/spf13/cobra"

	"github.com/veeh-harfe/zupfnoter/internal/config"
	"github.com/veeh-harfe/zupfnoter/internal/layout"
	"github.com/veeh-harfe/zupfnoter/internal/music"
	"github.com/veeh-harfe/zupfnoter/internal/tui"
)

var (
	InspectCmd = &cobra.Command{
		Use:   "inspect [abc-file]",
		Short: "browse the config stack and, if given a tune, its beat compression map",
		Args:  cobra.MaximumNArgs(1),
		RunE:  inspectCmd,
	}
)

func init() {
	RootCmd.AddCommand(InspectCmd)
}

func inspectCmd(cmd *cobra.Command, args []string) error {
	stack := config.NewStack()
	opts := optionsFromStack(stack)

	var song *music.Song
	if len(args) == 1 {
		abcText, err := readABC(args[0])
		if err != nil {
			return err
		}
		_, parsedSong, errs := render(abcText, layout.Extract{}, opts)
		for _, e := range errs {
			cmd.PrintErrln(e)
		}
		song = parsedSong
	}

	return tui.Run(stack, song, opts)
}
