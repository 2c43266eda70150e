package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/scriptusage/internal/models"
)

func init() {
	color.NoColor = true
}

func TestQuietFormatter(t *testing.T) {
	tests := []struct {
		name     string
		run      *models.Run
		expected string
	}{
		{
			name:     "all used",
			run:      &models.Run{Usages: []models.Usage{{Verdict: models.VerdictUsed}, {Verdict: models.VerdictUsed}}},
			expected: "✅ 2 scripts, all used\n",
		},
		{
			name:     "some unused",
			run:      sampleRun(),
			expected: "⚠️  4 scripts, 1 unused\n",
		},
		{
			name:     "no scripts",
			run:      &models.Run{},
			expected: "✅ 0 scripts, all used\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, (&QuietFormatter{}).Format(tt.run, &buf))
			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestStandardFormatter(t *testing.T) {
	run := sampleRun()
	run.Usages[3].Collision = true
	run.Warnings = []string{"skipped Assets/Broken.cs: permission denied"}
	run.ReportPath = "Assets/ScriptUsageReport.csv"

	var buf bytes.Buffer
	require.NoError(t, (&StandardFormatter{}).Format(run, &buf))
	out := buf.String()

	assert.Contains(t, out, "Scripts: 4 (3 used, 1 unused)")
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Pool A;Pool B")
	assert.Contains(t, out, "DeadCode*")
	assert.Contains(t, out, "Name shared by several scripts: DeadCode")
	assert.Contains(t, out, "Warnings (1)")
	assert.Contains(t, out, "Report written: Assets/ScriptUsageReport.csv")
}

func TestJSONFormatter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, (&JSONFormatter{}).Format(sampleRun(), &buf))

	var decoded struct {
		ID     string `json:"id"`
		Usages []struct {
			Entity struct {
				Name string `json:"name"`
				Kind string `json:"kind"`
			} `json:"entity"`
			Status string `json:"status"`
		} `json:"usages"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "run-1", decoded.ID)
	require.Len(t, decoded.Usages, 4)
	assert.Equal(t, "Player", decoded.Usages[0].Entity.Name)
	assert.Equal(t, "Behavior", decoded.Usages[0].Entity.Kind)
	assert.Equal(t, "Unused", decoded.Usages[3].Status)
}

func TestParseVerbosity(t *testing.T) {
	tests := map[string]VerbosityLevel{
		"":         VerbosityStandard,
		"standard": VerbosityStandard,
		"quiet":    VerbosityQuiet,
		"json":     VerbosityJSON,
	}
	for in, want := range tests {
		got, err := ParseVerbosity(in)
		require.NoError(t, err)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseVerbosity("xml")
	assert.Error(t, err)
}

func TestNewFormatter(t *testing.T) {
	assert.IsType(t, &QuietFormatter{}, NewFormatter(VerbosityQuiet))
	assert.IsType(t, &StandardFormatter{}, NewFormatter(VerbosityStandard))
	assert.IsType(t, &JSONFormatter{}, NewFormatter(VerbosityJSON))
}
