package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/rohankatakam/scriptusage/internal/config"
	"github.com/rohankatakam/scriptusage/internal/models"
	"github.com/rohankatakam/scriptusage/internal/scene"
	"github.com/rohankatakam/scriptusage/internal/storage"
)

func writeProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		"Assets/Scripts/Player.cs": `using UnityEngine;

public class Player : MonoBehaviour
{
    public static Player Instance;

    void Update()
    {
    }
}
`,
		"Assets/Scripts/Enemy.cs": `using UnityEngine;

public class Enemy : MonoBehaviour
{
    void Chase()
    {
        var target = Player.Instance.transform;
    }
}
`,
		"Assets/Scripts/Config.cs": `using UnityEngine;

public class Config : ScriptableObject
{
}
`,
		"Assets/Scripts/DeadCode.cs": `public class DeadCode
{
}
`,
		"Assets/Plugins/Loader.cs": `public class Loader
{
    void Load()
    {
        var cfg = new Config();
    }
}
`,
		"Assets/Scripts/Extensions.cs": `public static class Helpers { }
`,
		"Assets/scene.yaml": `instances:
  - type: Enemy
    container: Goblin
  - type: Enemy
    container: Orc
`,
	}
	for rel, content := range files {
		writeFile(t, filepath.Join(root, rel), content)
	}
	return root
}

func testConfig(root string) *config.Config {
	cfg := config.Default()
	cfg.ProjectRoot = root
	cfg.Scene.Snapshot = "Assets/scene.yaml"
	cfg.Scan.Workers = 2
	return cfg
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 17, 9, 30, 15, 0, time.UTC)
}

func TestOrchestrator_Run(t *testing.T) {
	root := writeProject(t)
	cfg := testConfig(root)
	cfg.Report.Export = true

	logger, _ := test.NewNullLogger()
	orch := NewOrchestrator(cfg, nil, logger)
	orch.Now = fixedClock

	result, err := orch.Run(context.Background())
	require.NoError(t, err)

	run := result.Run
	byName := make(map[string]models.Usage)
	for _, u := range run.Usages {
		byName[u.Entity.Name] = u
	}

	require.Len(t, run.Usages, 4, "Extensions.cs has no matching type and is skipped")
	assert.Equal(t, 6, result.CorpusCount)

	player := byName["Player"]
	assert.Equal(t, models.KindBehavior, player.Entity.Kind)
	assert.True(t, player.Entity.HasLifecycleHook)
	assert.Equal(t, models.VerdictUsed, player.Verdict)
	assert.Equal(t, "Enemy.cs:7「var target = Player.Instance.transform;」", player.ReferencesField())

	enemy := byName["Enemy"]
	assert.Equal(t, "Goblin;Orc", enemy.AttachedToField())
	assert.Equal(t, models.VerdictUsed, enemy.Verdict)

	cfgUsage := byName["Config"]
	assert.Equal(t, models.KindDataAsset, cfgUsage.Entity.Kind)
	assert.Equal(t, models.VerdictUsed, cfgUsage.Verdict)
	assert.Equal(t, "Loader.cs:5「var cfg = new Config();」", cfgUsage.ReferencesField())

	dead := byName["DeadCode"]
	assert.Equal(t, models.KindPlainType, dead.Entity.Kind)
	assert.Equal(t, models.VerdictUnused, dead.Verdict)
	assert.Equal(t, "", dead.ReferencesField())

	expectedPath := filepath.Join(root, "Assets", "ScriptUsageReport_20240517_093015.csv")
	assert.Equal(t, expectedPath, run.ReportPath)

	data, err := os.ReadFile(expectedPath)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	assert.Equal(t, "Name,Kind,AttachedTo,Status,References", lines[0])
	assert.Contains(t, lines, `DeadCode,PlainType,none,Unused,""`)
	assert.Contains(t, lines, `Enemy,Behavior,Goblin;Orc,Used,""`)
}

func TestOrchestrator_RelativeRootWithAbsoluteTarget(t *testing.T) {
	root := writeProject(t)
	t.Chdir(filepath.Dir(root))

	cfg := testConfig(filepath.Base(root))
	cfg.TargetDir = filepath.Join(root, "Assets", "Scripts")

	logger, _ := test.NewNullLogger()
	result, err := NewOrchestrator(cfg, nil, logger).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, result.CorpusCount)

	byName := make(map[string]models.Usage)
	for _, u := range result.Run.Usages {
		byName[u.Entity.Name] = u
	}
	require.Len(t, byName, 4)

	player, enemy := byName["Player"], byName["Enemy"]
	assert.Equal(t, "Enemy.cs:7「var target = Player.Instance.transform;」", player.ReferencesField())
	assert.Empty(t, byName["Enemy"].References)
	assert.Equal(t, "Goblin;Orc", enemy.AttachedToField())
	assert.Empty(t, byName["DeadCode"].References)
	assert.Equal(t, models.VerdictUnused, byName["DeadCode"].Verdict)
}

func TestOrchestrator_RunIsRepeatable(t *testing.T) {
	root := writeProject(t)
	cfg := testConfig(root)
	cfg.Report.Export = true
	cfg.Report.Timestamped = false

	logger, _ := test.NewNullLogger()

	read := func() string {
		orch := NewOrchestrator(cfg, nil, logger)
		result, err := orch.Run(context.Background())
		require.NoError(t, err)
		data, err := os.ReadFile(result.Run.ReportPath)
		require.NoError(t, err)
		return string(data)
	}

	assert.Equal(t, read(), read())
}

func TestOrchestrator_SceneOverrideAndStore(t *testing.T) {
	root := writeProject(t)
	cfg := testConfig(root)

	ctrl := gomock.NewController(t)
	provider := scene.NewMockProvider(ctrl)
	provider.EXPECT().Snapshot(gomock.Any()).Return([]models.Instance{
		{TypeName: "DeadCode", Container: "Graveyard"},
	}, nil)

	logger, _ := test.NewNullLogger()
	store, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "runs.db"), logger)
	require.NoError(t, err)
	defer store.Close()

	orch := NewOrchestrator(cfg, store, logger)
	orch.Scene = provider

	result, err := orch.Run(context.Background())
	require.NoError(t, err)

	saved, err := store.GetRun(context.Background(), result.Run.ID)
	require.NoError(t, err)
	require.Len(t, saved.Usages, len(result.Run.Usages))

	for _, u := range saved.Usages {
		if u.Entity.Name == "DeadCode" {
			assert.Equal(t, models.VerdictUsed, u.Verdict)
			assert.Equal(t, []string{"Graveyard"}, u.AttachedTo)
		}
		if u.Entity.Name == "Enemy" {
			assert.Equal(t, "none", u.AttachedToField(), "config snapshot is not read")
		}
	}
}

type failingStore struct {
	storage.Store
}

func (failingStore) SaveRun(ctx context.Context, run *models.Run) error {
	return fmt.Errorf("database is locked")
}

func TestOrchestrator_StoreFailureIsWarning(t *testing.T) {
	root := writeProject(t)
	cfg := testConfig(root)
	cfg.Report.Export = true

	logger, hook := test.NewNullLogger()
	result, err := NewOrchestrator(cfg, failingStore{}, logger).Run(context.Background())
	require.NoError(t, err)

	assert.Len(t, result.Run.Usages, 4)
	assert.FileExists(t, result.Run.ReportPath)
	assert.Contains(t, result.Run.Warnings, "failed to save run: database is locked")

	var stored bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Run not stored in report database" {
			stored = true
			assert.Equal(t, logrus.WarnLevel, entry.Level)
		}
	}
	assert.True(t, stored)
}

func TestOrchestrator_MissingCorpusDirIsWarning(t *testing.T) {
	root := writeProject(t)
	cfg := testConfig(root)
	cfg.CorpusDirs = []string{"Assets", "Packages"}

	logger, _ := test.NewNullLogger()
	result, err := NewOrchestrator(cfg, nil, logger).Run(context.Background())
	require.NoError(t, err)

	assert.Contains(t, result.Run.Warnings, "corpus directory not found: "+filepath.Join(root, "Packages"))
}

func TestOrchestrator_BadSnapshot(t *testing.T) {
	root := writeProject(t)
	cfg := testConfig(root)
	cfg.Scene.Snapshot = "Assets/missing.yaml"

	logger, _ := test.NewNullLogger()
	_, err := NewOrchestrator(cfg, nil, logger).Run(context.Background())
	assert.Error(t, err)
}
