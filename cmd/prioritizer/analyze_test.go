package main

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadTasks(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		want         int
		wantStrategy string
		wantErr      bool
	}{
		{"bare array", `[{"id":"a","title":"A"},{"id":"b","title":"B"}]`, 2, "", false},
		{"wrapped", `{"tasks":[{"id":"a","title":"A","importance":7}]}`, 1, "", false},
		{"wrapped with strategy", `{"strategy":"fastest_wins","tasks":[{"id":"a"}]}`, 1, "fastest_wins", false},
		{"numeric ids", `[{"id":1},{"id":2,"dependencies":[1]}]`, 2, "", false},
		{"empty array", `[]`, 0, "", false},
		{"empty input", "  ", 0, "", true},
		{"missing tasks key", `{"strategy":"fastest_wins"}`, 0, "", true},
		{"missing id", `[{"title":"no id"}]`, 0, "", true},
		{"fractional importance", `[{"id":"a","importance":2.5}]`, 0, "", true},
		{"malformed", `[{"id":`, 0, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tasks, strategy, err := readTasks(strings.NewReader(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, tasks, tt.want)
			assert.Equal(t, tt.wantStrategy, strategy)
		})
	}
}

func TestReadTasksNumericIDs(t *testing.T) {
	tasks, _, err := readTasks(strings.NewReader(`[{"id":1},{"id":2,"dependencies":[1]}]`))
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "1", tasks[0].ID)
	assert.Equal(t, []string{"1"}, tasks[1].Dependencies)
}

type analyzeOutput struct {
	Strategy string     `json:"strategy"`
	Cycles   [][]string `json:"cycles"`
	Tasks    []struct {
		ID    string   `json:"id"`
		Score *float64 `json:"score"`
	} `json:"tasks"`
}

// runAnalyzeCmd executes the analyze subcommand against a throwaway SQLite
// ledger and decodes its JSON output.
func runAnalyzeCmd(t *testing.T, input string, args ...string) analyzeOutput {
	t.Helper()
	t.Setenv("PRIORITIZER_STORE_DRIVER", "sqlite")
	t.Setenv("PRIORITIZER_STORE_PATH", filepath.Join(t.TempDir(), "ledger.db"))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetIn(strings.NewReader(input))
	rootCmd.SetArgs(append([]string{"analyze"}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		analyzeCmd.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	})

	require.NoError(t, rootCmd.Execute())

	var got analyzeOutput
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	return got
}

func TestAnalyzeCommand(t *testing.T) {
	got := runAnalyzeCmd(t, `{"tasks":[
		{"id":"a","title":"Quick","estimated_hours":1,"importance":3},
		{"id":"b","title":"Loop","dependencies":["c"]},
		{"id":"c","title":"Loop back","dependencies":["b"]}
	]}`, "--strategy", "fastest_wins")

	assert.Equal(t, "fastest_wins", got.Strategy)
	require.Len(t, got.Tasks, 3)
	assert.Equal(t, "a", got.Tasks[0].ID)
	assert.NotNil(t, got.Tasks[0].Score)
	assert.Nil(t, got.Tasks[1].Score)
	assert.Nil(t, got.Tasks[2].Score)
	assert.Len(t, got.Cycles, 1)
}

func TestAnalyzeCommandUsesBatchStrategy(t *testing.T) {
	got := runAnalyzeCmd(t, `{"strategy":"fastest_wins","tasks":[{"id":"a"}]}`)
	assert.Equal(t, "fastest_wins", got.Strategy)
}

func TestAnalyzeCommandFlagOverridesBatchStrategy(t *testing.T) {
	got := runAnalyzeCmd(t, `{"strategy":"fastest_wins","tasks":[{"id":"a"}]}`, "--strategy", "high_impact")
	assert.Equal(t, "high_impact", got.Strategy)
}

func TestAnalyzeCommandNumericIDs(t *testing.T) {
	got := runAnalyzeCmd(t, `[{"id":1},{"id":2,"dependencies":[1]}]`)
	require.Len(t, got.Tasks, 2)
	assert.Equal(t, "1", got.Tasks[0].ID)
	assert.Equal(t, "smart_balance", got.Strategy)
}
