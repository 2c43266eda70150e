package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rohankatakam/scriptusage/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	logger, _ := test.NewNullLogger()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "db", "runs.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testRun(id string, started time.Time) *models.Run {
	return &models.Run{
		ID:         id,
		StartedAt:  started,
		TargetRoot: "/work/game/Assets/Scripts",
		ReportPath: "/work/game/Assets/ScriptUsageReport.csv",
		Warnings:   []string{"name collision: Utils"},
		Usages: []models.Usage{
			{
				Entity:     models.ScriptEntity{Name: "Player", Namespace: "Game", Kind: models.KindBehavior, Path: "Assets/Scripts/Player.cs"},
				AttachedTo: []string{"Hero", "Clone"},
				References: []models.ReferenceHit{{File: "Enemy.cs", Line: 12, Text: "Player.Instance"}},
				Verdict:    models.VerdictUsed,
			},
			{
				Entity:    models.ScriptEntity{Name: "Utils", Kind: models.KindPlainType, Path: "Assets/Scripts/Utils.cs"},
				Verdict:   models.VerdictUnused,
				Collision: true,
			},
		},
	}
}

func TestSQLiteStore_SaveAndGetRun(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC)

	require.NoError(t, store.SaveRun(ctx, testRun("run-1", started)))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)

	assert.Equal(t, "run-1", got.ID)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, "/work/game/Assets/Scripts", got.TargetRoot)
	assert.Equal(t, []string{"name collision: Utils"}, got.Warnings)
	require.Len(t, got.Usages, 2)

	player := got.Usages[0]
	assert.Equal(t, "Player", player.Entity.Name)
	assert.Equal(t, "Game", player.Entity.Namespace)
	assert.Equal(t, models.KindBehavior, player.Entity.Kind)
	assert.Equal(t, []string{"Hero", "Clone"}, player.AttachedTo)
	assert.Equal(t, models.VerdictUsed, player.Verdict)
	assert.Equal(t, []models.ReferenceHit{{File: "Enemy.cs", Line: 12, Text: "Player.Instance"}}, player.References)

	utils := got.Usages[1]
	assert.Nil(t, utils.AttachedTo)
	assert.Empty(t, utils.References)
	assert.Equal(t, models.VerdictUnused, utils.Verdict)
	assert.True(t, utils.Collision)
}

func TestSQLiteStore_SaveRunReplaces(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	run := testRun("run-1", time.Now().UTC())
	require.NoError(t, store.SaveRun(ctx, run))

	run.Usages = run.Usages[:1]
	run.Warnings = nil
	require.NoError(t, store.SaveRun(ctx, run))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Len(t, got.Usages, 1)
	assert.Empty(t, got.Warnings)
}

func TestSQLiteStore_GetRunNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRun(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteStore_ListRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.SaveRun(ctx, testRun(id, base.Add(time.Duration(i)*time.Hour))))
	}

	runs, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "c", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
	assert.Empty(t, runs[0].Usages)
}

func TestSQLiteStore_PragmasOnEveryConnection(t *testing.T) {
	store := newTestStore(t)
	store.db.SetMaxOpenConns(3)
	ctx := context.Background()

	conns := make([]*sqlx.Conn, 3)
	for i := range conns {
		conn, err := store.db.Connx(ctx)
		require.NoError(t, err)
		defer conn.Close()
		conns[i] = conn
	}

	for _, conn := range conns {
		var fk int
		require.NoError(t, conn.GetContext(ctx, &fk, "PRAGMA foreign_keys"))
		assert.Equal(t, 1, fk)

		var mode string
		require.NoError(t, conn.GetContext(ctx, &mode, "PRAGMA journal_mode"))
		assert.Equal(t, "wal", mode)
	}
}

func TestSQLiteStore_DeleteRunCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveRun(ctx, testRun("run-1", time.Now().UTC())))

	_, err := store.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, "run-1")
	require.NoError(t, err)

	for _, table := range []string{"script_usages", "reference_hits", "run_warnings"} {
		var n int
		require.NoError(t, store.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table))
		assert.Zero(t, n, table)
	}
}
