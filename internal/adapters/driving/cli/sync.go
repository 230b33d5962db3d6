package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Reconcile the library directory with document records",
	Long: `Compares the files in the library directory with the indexed documents.

Files without a record are added, records without a file are removed and
documents whose content changed are indexed again.`,
	Args: cobra.NoArgs,
	RunE: runSync,
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove all reading documents",
	Long:  `Removes every document in the reading category. Knowledge base documents are kept.`,
	Args:  cobra.NoArgs,
	RunE:  runPrune,
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Index library changes as they happen",
	Long: `Watches the library directory and indexes files as they are added,
changed or removed. Press Ctrl+C to stop.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(pruneCmd)
	rootCmd.AddCommand(watchCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	cmd.Println("Synchronising library...")
	report, err := libraryService.Sync(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	cmd.Printf("  Added:     %d\n", report.Added)
	cmd.Printf("  Removed:   %d\n", report.Removed)
	cmd.Printf("  Reindexed: %d\n", report.Reindexed)
	if report.Failed > 0 {
		cmd.Printf("  Failed:    %d\n", report.Failed)
	}
	cmd.Println("Library synchronised.")
	return nil
}

func runPrune(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	n, err := libraryService.ClearReading(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("prune failed: %w", err)
	}
	cmd.Printf("Removed %d reading documents\n", n)
	return nil
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errLibraryNotConfigured
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Println("Watching library. Press Ctrl+C to stop.")
	if err := libraryService.Watch(ctx); err != nil {
		return fmt.Errorf("watch failed: %w", err)
	}
	cmd.Println("Stopped watching.")
	return nil
}
