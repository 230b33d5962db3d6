// Package cli provides the lens command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-lens/internal/logger"
)

// Services are the core services the commands drive.
type Services struct {
	Library  driving.LibraryService
	Analysis driving.AnalysisService
	Settings driving.SettingsService
}

// Options carries the global flags to the Initializer.
type Options struct {
	ConfigDir string
	Verbose   bool
}

// Initializer builds the services once flags are parsed. The returned
// function releases them when the command finishes.
type Initializer func(ctx context.Context, opts Options) (*Services, func() error, error)

// skipInit marks commands that run without services.
const skipInit = "lens.skip-init"

var (
	version = "dev"

	libraryService  driving.LibraryService
	analysisService driving.AnalysisService
	settingsService driving.SettingsService

	initializer Initializer
	release     func() error

	configDir string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "lens",
	Short: "Find what the rest of your library says about a passage",
	Long: `Lens keeps a library of your documents and, for any passage you select,
shows related sections from other documents labelled as supporting,
contradictory or related.

Add documents with 'lens add', then ask about a passage with 'lens analyze'.`,
	SilenceUsage:      true,
	PersistentPreRunE: initServices,
	PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
		return releaseServices()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.sercha-lens)")
}

// SetInitializer sets how services are built for each command.
func SetInitializer(fn Initializer) {
	initializer = fn
}

// SetServices installs services directly, bypassing the Initializer.
func SetServices(s *Services) {
	if s == nil {
		libraryService, analysisService, settingsService = nil, nil, nil
		return
	}
	libraryService = s.Library
	analysisService = s.Analysis
	settingsService = s.Settings
}

// SetVersion sets the version reported by 'lens version'.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func initServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[skipInit] != "" || initializer == nil {
		return nil
	}
	if libraryService != nil && analysisService != nil && settingsService != nil {
		return nil
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	services, done, err := initializer(ctx, Options{ConfigDir: configDir, Verbose: verbose})
	if err != nil {
		return fmt.Errorf("initialise: %w", err)
	}
	SetServices(services)
	release = done
	return nil
}

func releaseServices() error {
	if release == nil {
		return nil
	}
	done := release
	release = nil
	return done()
}

// commandContext returns the command's context, or Background when run
// without one (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

var (
	errLibraryNotConfigured  = errors.New("library service not configured")
	errAnalysisNotConfigured = errors.New("analysis service not configured")
	errSettingsNotConfigured = errors.New("settings service not configured")
)
