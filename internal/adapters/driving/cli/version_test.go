package cli

import (
	"bytes"
	"encoding/json"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-lens/internal/logger"
)

func runVersion(t *testing.T, v string, args ...string) string {
	t.Helper()
	saved := version
	version = v
	t.Cleanup(func() {
		version = saved
		versionJSON = false
		verbose = false
		logger.SetVerbose(false)
		rootCmd.SetArgs(nil)
	})

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs(append([]string{"version"}, args...))
	require.NoError(t, rootCmd.Execute())
	return buf.String()
}

func TestVersionCmd(t *testing.T) {
	tests := []struct {
		version string
		want    string
	}{
		{"1.2.0", "lens version 1.2.0"},
		{"dev", "lens version dev"},
	}
	for _, tt := range tests {
		out := runVersion(t, tt.version)
		assert.Contains(t, out, tt.want)
		assert.NotContains(t, out, "platform:")
	}
}

func TestVersionCmd_Verbose(t *testing.T) {
	out := runVersion(t, "1.2.0", "-v")

	assert.Contains(t, out, "commit:")
	assert.Contains(t, out, runtime.Version())
	assert.Contains(t, out, runtime.GOOS+"/"+runtime.GOARCH)
}

func TestVersionCmd_JSON(t *testing.T) {
	out := runVersion(t, "1.2.0", "--json")

	var info buildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "1.2.0", info.Version)
	assert.Equal(t, runtime.Version(), info.Go)
	assert.NotEmpty(t, info.Commit)
}

func TestVersionCmd_SkipsInit(t *testing.T) {
	assert.Equal(t, "true", versionCmd.Annotations[skipInit])
}
