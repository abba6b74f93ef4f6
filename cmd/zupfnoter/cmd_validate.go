package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veeh-harfe/zupfnoter/internal/config"
	"github.com/veeh-harfe/zupfnoter/internal/layout"
)

var (
	ValidateCmd = &cobra.Command{
		Use:   "validate [abc-file]",
		Short: "parse and lay out a tune, reporting warnings and errors without writing a PDF",
		Args:  cobra.ExactArgs(1),
		RunE:  validateCmd,
	}
)

func init() {
	RootCmd.AddCommand(ValidateCmd)
}

func validateCmd(cmd *cobra.Command, args []string) error {
	abcText, err := readABC(args[0])
	if err != nil {
		return err
	}

	stack := config.NewStack()
	opts := optionsFromStack(stack)

	_, song, errs := render(abcText, layout.Extract{}, opts)

	for _, e := range errs {
		fmt.Fprintln(cmd.OutOrStdout(), e)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d voice(s), %d warning(s)/error(s)\n",
		len(song.VoiceIndices()), len(errs))
	return nil
}
