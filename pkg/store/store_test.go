package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRun(startedAt time.Time) RunRecord {
	run := NewRunRecord()
	acc := 96.5
	run.StartedAt = startedAt
	run.FinishedAt = startedAt.Add(3 * time.Second)
	run.Pool = "arithmetic"
	run.Strategy = "generational"
	run.Population = 1000
	run.MaxGenerations = 300
	run.Seed = 42
	run.State = "converged"
	run.Generations = 12
	run.BestFoundAtGen = 11
	run.VarNames = []string{"a", "b", "c", "d", "e", "f", "g", "h", "i"}
	run.BestExpression = "((a - 5.5) * b)"
	run.BestError = 0.015
	run.TrainAccuracy = 98.5
	run.TestAccuracy = &acc
	run.History = []float64{0.3, 0.1, 0.015}
	return run
}

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlite, err := NewStore("sqlite", filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	memory, err := NewStore("memory", "")
	require.NoError(t, err)
	return map[string]Store{"memory": memory, "sqlite": sqlite}
}

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Init(ctx))
			t.Cleanup(func() { _ = CloseIfSupported(s) })

			base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
			older := sampleRun(base)
			newer := sampleRun(base.Add(time.Hour))
			newer.State = "exhausted_budget"
			newer.TestAccuracy = nil
			require.NoError(t, s.SaveRun(ctx, older))
			require.NoError(t, s.SaveRun(ctx, newer))

			got, ok, err := s.GetRun(ctx, older.ID)
			require.NoError(t, err)
			require.True(t, ok)
			assert.Equal(t, older.BestExpression, got.BestExpression)
			assert.Equal(t, older.History, got.History)
			assert.Equal(t, older.VarNames, got.VarNames)
			require.NotNil(t, got.TestAccuracy)
			assert.Equal(t, 96.5, *got.TestAccuracy)
			assert.True(t, older.StartedAt.Equal(got.StartedAt))

			_, ok, err = s.GetRun(ctx, "missing")
			require.NoError(t, err)
			assert.False(t, ok)

			runs, err := s.ListRuns(ctx)
			require.NoError(t, err)
			require.Len(t, runs, 2)
			assert.Equal(t, newer.ID, runs[0].ID)
			assert.Equal(t, older.ID, runs[1].ID)
			assert.Nil(t, runs[0].TestAccuracy)
		})
	}
}

func TestStoreOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Init(ctx))
			t.Cleanup(func() { _ = CloseIfSupported(s) })

			run := sampleRun(time.Now().UTC())
			require.NoError(t, s.SaveRun(ctx, run))
			run.State = "stopped"
			require.NoError(t, s.SaveRun(ctx, run))

			runs, err := s.ListRuns(ctx)
			require.NoError(t, err)
			require.Len(t, runs, 1)
			assert.Equal(t, "stopped", runs[0].State)
		})
	}
}

func TestStoreRejectsVersionMismatch(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Init(ctx))
			t.Cleanup(func() { _ = CloseIfSupported(s) })

			run := sampleRun(time.Now().UTC())
			run.SchemaVersion = CurrentSchemaVersion + 1
			assert.ErrorIs(t, s.SaveRun(ctx, run), ErrVersionMismatch)
		})
	}
}

func TestStoreRequiresInit(t *testing.T) {
	ctx := context.Background()
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			assert.Error(t, s.SaveRun(ctx, sampleRun(time.Now())))
			_, err := s.ListRuns(ctx)
			assert.Error(t, err)
		})
	}
}

func TestSQLiteStoreRequiresPath(t *testing.T) {
	assert.Error(t, NewSQLiteStore("").Init(context.Background()))
}

func TestNewStoreUnknownKind(t *testing.T) {
	_, err := NewStore("postgres", "")
	assert.Error(t, err)
}

func TestDecodeRun(t *testing.T) {
	run := sampleRun(time.Now().UTC())
	data, err := EncodeRun(run)
	require.NoError(t, err)
	got, err := DecodeRun(data)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)

	_, err = DecodeRun([]byte(`{"schema_version":9,"codec_version":1}`))
	assert.ErrorIs(t, err, ErrVersionMismatch)

	_, err = DecodeRun([]byte(`{`))
	assert.Error(t, err)
}

func TestNewRunIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewRunID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
