package cli

import (
	"encoding/json"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

var versionJSON bool

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print the version number",
	Annotations: map[string]string{skipInit: "true"},
	RunE: func(cmd *cobra.Command, _ []string) error {
		info := currentBuild()
		if versionJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(info)
		}
		cmd.Printf("lens version %s\n", info.Version)
		if verbose {
			cmd.Printf("  commit:   %s\n  go:       %s\n  platform: %s\n", info.Commit, info.Go, info.Platform)
		}
		return nil
	},
}

// buildInfo describes the running binary.
type buildInfo struct {
	Version  string `json:"version"`
	Commit   string `json:"commit"`
	Go       string `json:"go"`
	Platform string `json:"platform"`
}

func currentBuild() buildInfo {
	info := buildInfo{
		Version:  version,
		Commit:   "unknown",
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	for _, s := range bi.Settings {
		if s.Key == "vcs.revision" && s.Value != "" {
			info.Commit = s.Value
			if len(info.Commit) > 12 {
				info.Commit = info.Commit[:12]
			}
		}
	}
	return info
}

func init() {
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "print build details as JSON")
	rootCmd.AddCommand(versionCmd)
}
