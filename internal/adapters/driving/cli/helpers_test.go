package cli

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/custodia-labs/sercha-lens/internal/core/ports/driving/drivingtest"
)

type testServices struct {
	library  *drivingtest.LibraryService
	analysis *drivingtest.AnalysisService
	settings *drivingtest.SettingsService
}

// setupTestServices installs fakes for every service and restores the
// package state when the test ends.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	s := &testServices{
		library:  &drivingtest.LibraryService{},
		analysis: &drivingtest.AnalysisService{},
		settings: &drivingtest.SettingsService{},
	}
	SetServices(&Services{Library: s.library, Analysis: s.analysis, Settings: s.settings})
	t.Cleanup(func() {
		SetServices(nil)
		resetFlags()
	})
	return s
}

// resetFlags clears flag variables, which outlive a single Execute.
func resetFlags() {
	addCategory, listCategory = "", ""
	analyzeSource, analyzeMax, analyzeJSON, analyzeAnySource = "", 0, false, false
	navigateSection, navigateText = "", ""
	providerModel, providerAPIKey = "", ""
	mcpPort, mcpHost, mcpShutdown = 0, "localhost", 5*time.Second
	verbose, configDir = false, ""
}

// execute runs the root command with args and returns everything printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
