package commands

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/trialrecon/internal/cli/config"
)

func TestVersionCommand(t *testing.T) {
	info := BuildInfo{Version: "1.2.3", GitCommit: "abc1234", BuildDate: "2016-06-01", GoVersion: "go1.24.0"}

	tests := []struct {
		name   string
		info   BuildInfo
		wantIn []string
	}{
		{name: "release", info: info, wantIn: []string{"trialrecon 1.2.3", "commit abc1234", "built 2016-06-01", "go1.24.0"}},
		{name: "dev build", info: BuildInfo{Version: "dev", GitCommit: "unknown", BuildDate: "unknown"}, wantIn: []string{"trialrecon dev", "commit unknown", "go1."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config.ResetConfig()
			out, err := execute(t, NewVersionCommand(tt.info))
			require.NoError(t, err)
			for _, want := range tt.wantIn {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	_, cfg := setupProject(t)
	cfg.OutputFormat = "json"

	out, err := execute(t, NewVersionCommand(BuildInfo{Version: "1.2.3", GitCommit: "abc1234", BuildDate: "2016-06-01"}))
	require.NoError(t, err)

	var got BuildInfo
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "1.2.3", got.Version)
	assert.Equal(t, "abc1234", got.GitCommit)
	assert.NotEmpty(t, got.GoVersion, "filled from the runtime")
}

func TestVersionCommand_RejectsArgs(t *testing.T) {
	_, err := execute(t, NewVersionCommand(BuildInfo{Version: "1.2.3"}), "extra")
	assert.Error(t, err)
}
