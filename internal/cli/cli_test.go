package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ogulcanaydogan/subguard/pkg/economics"
	"github.com/ogulcanaydogan/subguard/pkg/model"
	"github.com/ogulcanaydogan/subguard/pkg/tracker"
)

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := "storage:\n  path: " + filepath.Join(dir, "subguard.db") + "\nlogging:\n  level: error\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))
	return path
}

func execute(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := execute(t, writeConfig(t), "version")
	require.NoError(t, err)
	assert.Equal(t, "subguard version dev\n", out)
}

func TestSubscriptionLifecycle(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := execute(t, cfgPath, "--json", "add", "--name", "Figma", "--cost", "15", "--category", "design tools", "--next", "2099-01-15")
	require.NoError(t, err)
	var added model.Subscription
	require.NoError(t, json.Unmarshal([]byte(out), &added))
	assert.Equal(t, "Design Tools", added.Category)
	assert.Equal(t, model.CycleMonthly, added.BillingCycle)

	out, err = execute(t, cfgPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Figma")
	assert.Contains(t, out, "$15.00")

	out, err = execute(t, cfgPath, "show", shortID(added.ID))
	require.NoError(t, err)
	assert.Contains(t, out, added.ID)
	assert.Contains(t, out, "Last used:    never")

	out, err = execute(t, cfgPath, "--json", "update", added.ID, "--cost", "45", "--cycle", "quarterly")
	require.NoError(t, err)
	var updated model.Subscription
	require.NoError(t, json.Unmarshal([]byte(out), &updated))
	assert.Equal(t, 45.0, updated.Cost)
	assert.Equal(t, model.CycleQuarterly, updated.BillingCycle)
	assert.Equal(t, "Figma", updated.Name)
	assert.Equal(t, "2099-01-15", model.FormatDate(updated.NextBillingDate))

	out, err = execute(t, cfgPath, "used", added.ID)
	require.NoError(t, err)
	assert.Contains(t, out, "Marked Figma as used")

	out, err = execute(t, cfgPath, "--json", "deadweight")
	require.NoError(t, err)
	var dead economics.DeadWeightReport
	require.NoError(t, json.Unmarshal([]byte(out), &dead))
	assert.Empty(t, dead.Records)

	_, err = execute(t, cfgPath, "delete", added.ID)
	require.NoError(t, err)

	_, err = execute(t, cfgPath, "show", added.ID)
	assert.Error(t, err)
}

func TestAdd_InvalidInput(t *testing.T) {
	cfgPath := writeConfig(t)

	_, err := execute(t, cfgPath, "add", "--name", "X", "--cost", "-5")
	assert.ErrorIs(t, err, economics.ErrInvalidInput)

	_, err = execute(t, cfgPath, "add", "--name", "X", "--cost", "5", "--next", "tomorrow")
	assert.ErrorIs(t, err, economics.ErrInvalidInput)

	_, err = execute(t, cfgPath, "add", "--name", "X")
	assert.Error(t, err)
}

func TestImportAndAnalytics(t *testing.T) {
	cfgPath := writeConfig(t)
	csvPath := filepath.Join(t.TempDir(), "subs.csv")
	csv := "name,cost,billing_cycle,category\nNotion,120,yearly,Productivity\nCanva,13,monthly,Design Tools\n,5,monthly,\n"
	require.NoError(t, os.WriteFile(csvPath, []byte(csv), 0o644))

	out, err := execute(t, cfgPath, "import", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 subscription(s)")
	assert.Contains(t, out, "Skipped 1 row(s)")

	out, err = execute(t, cfgPath, "--json", "overview")
	require.NoError(t, err)
	var snap tracker.Snapshot
	require.NoError(t, json.Unmarshal([]byte(out), &snap))
	assert.InDelta(t, 23.0, snap.Overview.TotalMonthly, 1e-9)
	assert.Len(t, snap.DeadWeight.Records, 2)

	out, err = execute(t, cfgPath, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Design Tools")
	assert.Contains(t, out, "56.5%")

	out, err = execute(t, cfgPath, "--json", "recommend")
	require.NoError(t, err)
	var recs economics.RecommendationSet
	require.NoError(t, json.Unmarshal([]byte(out), &recs))
	require.Len(t, recs.Recommendations, 2)
	assert.Equal(t, "Consider canceling Canva", recs.Recommendations[0].Title)

	out, err = execute(t, cfgPath, "--json", "trends", "--months", "3")
	require.NoError(t, err)
	var points []economics.MonthTotal
	require.NoError(t, json.Unmarshal([]byte(out), &points))
	require.Len(t, points, 3)
	assert.Equal(t, 2, points[2].Count)

	exportPath := filepath.Join(t.TempDir(), "out.json")
	_, err = execute(t, cfgPath, "export", exportPath, "--category", "productivity")
	require.NoError(t, err)
	data, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Notion")
	assert.NotContains(t, string(data), "Canva")
}

func TestSettings(t *testing.T) {
	cfgPath := writeConfig(t)

	out, err := execute(t, cfgPath, "settings", "get")
	require.NoError(t, err)
	assert.Contains(t, out, "Unused threshold days: 90")
	assert.Contains(t, out, "never (defaults)")

	out, err = execute(t, cfgPath, "--json", "settings", "set", "--unused-days", "30", "--notifications=false")
	require.NoError(t, err)
	var s model.Settings
	require.NoError(t, json.Unmarshal([]byte(out), &s))
	assert.Equal(t, 30, s.UnusedThresholdDays)
	assert.False(t, s.EmailNotifications)
	assert.Equal(t, 7, s.RenewalReminderDays)

	_, err = execute(t, cfgPath, "settings", "set", "--window-days", "0")
	assert.ErrorIs(t, err, economics.ErrInvalidInput)
}

func TestRemind_RequiresTargets(t *testing.T) {
	_, err := execute(t, writeConfig(t), "remind")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no alert targets configured")
}

func TestMoney_Format(t *testing.T) {
	tests := []struct {
		code   string
		amount float64
		want   string
	}{
		{"USD", 1234.5, "$1,234.50"},
		{"usd", 15, "$15.00"},
		{"", 0, "$0.00"},
		{"EUR", 1234.5, "1.234,50 €"},
		{"SEK", 99, "99,00 kr"},
		{"XYZ", 10, "10.00 XYZ"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, newMoney(tt.code).Format(tt.amount))
		})
	}
}
