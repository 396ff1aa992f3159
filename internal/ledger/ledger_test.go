package ledger

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/factorydata/internal/testutil"
	"github.com/roach88/factorydata/internal/tlv"
)

func openTestLedger(t *testing.T) *Ledger {
	t.Helper()
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"),
		WithClock(testutil.NewDeterministicClock()),
		WithIDs(&testutil.SequentialIDs{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })
	return l
}

func TestOpenIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 3; i++ {
		l, err := Open(path)
		require.NoError(t, err, "iteration %d", i)

		v, err := l.schemaVersion()
		require.NoError(t, err)
		assert.Equal(t, currentSchemaVersion, v)
		require.NoError(t, l.Close())
	}
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "dir", "ledger.db"))
	assert.Error(t, err)
}

func TestOpenExistingMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typo.db")

	_, err := OpenExisting(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NoFileExists(t, path)
}

func TestOpenExistingRejectsDirectory(t *testing.T) {
	_, err := OpenExisting(t.TempDir())
	assert.Error(t, err)
}

func TestOpenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	l, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, l.Close())

	l, err = OpenExisting(path)
	require.NoError(t, err)
	defer l.Close()

	runs, err := l.Runs(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestRecordAndRead(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	snap := testutil.SampleStore(t).Snapshot()

	run, err := l.Record(ctx, Run{BinaryPath: "out/factory.bin", Entries: snap})
	require.NoError(t, err)
	assert.Equal(t, "run-0001", run.ID)
	assert.Equal(t, time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC), run.CreatedAt)
	assert.Equal(t, Digest(snap), run.Digest)
	assert.Equal(t, len(snap), run.EntryCount)

	got, err := l.Get(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.CreatedAt, got.CreatedAt)
	assert.Equal(t, "out/factory.bin", got.BinaryPath)
	assert.Equal(t, snap, got.Entries)
}

func TestRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)
	snap := testutil.SampleStore(t).Snapshot()

	for i := 0; i < 3; i++ {
		_, err := l.Record(ctx, Run{BinaryPath: "factory.bin", Entries: snap})
		require.NoError(t, err)
	}

	runs, err := l.Runs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-0003", runs[0].ID)
	assert.Equal(t, "run-0001", runs[2].ID)
	assert.Nil(t, runs[0].Entries)

	limited, err := l.Runs(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestGetUnknownRun(t *testing.T) {
	l := openTestLedger(t)
	_, err := l.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestEntriesEmptyRun(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	run, err := l.Record(ctx, Run{BinaryPath: "empty.bin"})
	require.NoError(t, err)
	assert.Equal(t, Digest(nil), run.Digest)

	entries, err := l.Entries(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestFindSerial(t *testing.T) {
	ctx := context.Background()
	l := openTestLedger(t)

	for _, serial := range []string{"SN-1", "SN-2", "SN-1"} {
		s := tlv.NewStore(nil)
		_, err := s.Set("SERIAL_NUMBER", serial, "test")
		require.NoError(t, err)
		_, err = l.Record(ctx, Run{BinaryPath: serial + ".bin", Entries: s.Snapshot()})
		require.NoError(t, err)
	}

	runs, err := l.FindSerial(ctx, "SN-1")
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-0003", runs[0].ID)
	assert.Equal(t, "run-0001", runs[1].ID)

	runs, err = l.FindSerial(ctx, "SN-9")
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestDefaultIDsAreUUIDv7(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	defer l.Close()

	run, err := l.Record(context.Background(), Run{BinaryPath: "factory.bin"})
	require.NoError(t, err)

	parsed, err := uuid.Parse(run.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestDigest(t *testing.T) {
	assert.Equal(t, "1a8903823422a6f335b679cc26be136725410079ccc52c1ecc867e3c358fec6d", Digest(nil))

	a := testutil.SampleStore(t).Snapshot()
	b := testutil.SampleStore(t).Snapshot()
	assert.Equal(t, Digest(a), Digest(b))

	b[0].Value = append(b[0].Value, 0x00)
	assert.NotEqual(t, Digest(a), Digest(b))
}
