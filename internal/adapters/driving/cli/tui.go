package cli

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-lens/internal/adapters/driving/tui"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Browse the library and analyse passages interactively",
	Long: `Opens the terminal UI. Paste a passage on the Analyze screen to list what
the rest of the library says about it, open a snippet to read its section,
and manage documents from the Library screen.

Press ? inside the UI for every key binding.`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

// runTUI turns a panic inside bubbletea into an error so the terminal is
// restored before the trace is printed.
func runTUI(cmd *cobra.Command, _ []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("tui panic: %v\n%s", r, debug.Stack())
			err = fmt.Errorf("TUI panic: %v", r)
		}
	}()

	app, err := tui.NewApp(tui.NewPorts(analysisService, libraryService))
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	if err := app.WithContext(commandContext(cmd)).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
