package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zhubert/reword/internal/rewrite"
	"github.com/zhubert/reword/internal/runner"
	"github.com/zhubert/reword/internal/ui"
)

var examplesFull bool

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List the built-in example texts",
	Args:  cobra.NoArgs,
	RunE:  runExamples,
}

func init() {
	examplesCmd.Flags().BoolVar(&examplesFull, "full", false, "print each example in full")
	rootCmd.AddCommand(examplesCmd)
}

func runExamples(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	styled := ui.IsTerminal(os.Stdout)
	width := ui.Width(os.Stdout)

	if !examplesFull {
		fmt.Fprint(out, ui.RenderMarkdown(runner.ExamplesMarkdown(), width, styled))
		return nil
	}

	for i, ex := range rewrite.Examples() {
		fmt.Fprintln(out, ui.HeaderStyle.Render(fmt.Sprintf("%d. %s", i+1, ex.Label)))
		fmt.Fprintln(out, ex.Text)
		fmt.Fprintln(out)
	}
	return nil
}
