package backup

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/SlpAus/guo-backend/internal/platform/database"
	"github.com/SlpAus/guo-backend/internal/platform/logger"
	"github.com/SlpAus/guo-backend/internal/platform/metadata"
	"github.com/SlpAus/guo-backend/internal/pot"
	"github.com/SlpAus/guo-backend/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "backup.sqlite"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NoError(t, Migrate(db))
	return db
}

func seedService(t *testing.T) *pot.Service {
	t.Helper()
	ctx := context.Background()
	repo := pot.NewRepository(filepath.Join(t.TempDir(), "guoql.db"), nil)
	svc := pot.NewService(repo, nil, logger.NewNop())

	note := "带伞"
	_, err := svc.CreatePot(ctx, pot.CreatePotParams{Position: "教学楼", Time: "12:00", Taste: "辣", Owner: "A", Mian: 1, Note: &note})
	require.NoError(t, err)
	_, err = svc.CreatePot(ctx, pot.CreatePotParams{Position: "食堂", Time: "18:00", Taste: "不辣", Owner: "B", Fan: 1})
	require.NoError(t, err)
	_, err = svc.CreatePot(ctx, pot.CreatePotParams{Position: "操场", Time: "20:00", Taste: "甜", Owner: "C", Mian: 2})
	require.NoError(t, err)
	_, err = svc.Join(ctx, pot.ByID(2), "A", 0, 2)
	require.NoError(t, err)
	_, err = svc.Finish(ctx, pot.ByID(1))
	require.NoError(t, err)
	return svc
}

func TestCreateSnapshotAndRestore(t *testing.T) {
	db := openTestDB(t)
	svc := seedService(t)
	b := NewBackuper(db, svc.Repository(), logger.NewNop())

	written, err := b.CreateSnapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, written)

	restored, err := Restore(db)
	require.NoError(t, err)
	want, _ := svc.Repository().Snapshot()
	assert.Equal(t, want, restored)

	revision, err := metadata.GetUint64(db, metadata.LastBackupRevisionKey)
	require.NoError(t, err)
	assert.Equal(t, svc.Repository().Revision(), revision)
	counter, err := metadata.GetUint64(db, metadata.LastBackupCounterKey)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), counter)
}

func TestCreateSnapshot_SkipsUnchangedRevision(t *testing.T) {
	db := openTestDB(t)
	svc := seedService(t)
	b := NewBackuper(db, svc.Repository(), logger.NewNop())

	written, err := b.CreateSnapshot(context.Background())
	require.NoError(t, err)
	require.True(t, written)

	written, err = b.CreateSnapshot(context.Background())
	require.NoError(t, err)
	assert.False(t, written)

	_, err = svc.Clear(context.Background())
	require.NoError(t, err)
	written, err = b.CreateSnapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, written)

	// 旧的锅和吃锅人被整体替换
	var pots, eaters int64
	require.NoError(t, db.Model(&PotRecord{}).Count(&pots).Error)
	require.NoError(t, db.Model(&EaterRecord{}).Count(&eaters).Error)
	assert.Zero(t, pots)
	assert.Zero(t, eaters)

	restored, err := Restore(db)
	require.NoError(t, err)
	assert.Empty(t, restored.Pots)
	assert.Equal(t, 3, restored.Counter)
	assert.Len(t, restored.Stats, 3)
}

func TestCreateSnapshot_CanceledContext(t *testing.T) {
	db := openTestDB(t)
	svc := seedService(t)
	b := NewBackuper(db, svc.Repository(), logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.CreateSnapshot(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRestore_EmptyDatabase(t *testing.T) {
	db := openTestDB(t)
	restored, err := Restore(db)
	require.NoError(t, err)
	assert.Equal(t, pot.NewLedger(), restored)
}

func TestRestore_CounterNeverBelowMaxID(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.Create(&PotRecord{PotID: 9, Seq: 0, Position: "p", Time: "t", Taste: "s"}).Error)
	require.NoError(t, metadata.SetUint64(db, metadata.LastBackupCounterKey, 4))

	restored, err := Restore(db)
	require.NoError(t, err)
	assert.Equal(t, 9, restored.Counter)
	require.Len(t, restored.Pots, 1)
	assert.Empty(t, restored.Pots[0].Eaters)
}

func startTestScheduler(t *testing.T, b *Backuper, interval time.Duration) (graceful, forceful *lifecycle.Manager) {
	t.Helper()
	graceful = lifecycle.NewManager("graceful", logger.NewNop())
	forceful = lifecycle.NewManager("forceful", logger.NewNop())
	gh, err := graceful.NewServiceHandle("backup")
	require.NoError(t, err)
	fh, err := forceful.NewServiceHandle("backup")
	require.NoError(t, err)
	go b.StartScheduler(gh, fh, interval)
	return graceful, forceful
}

func TestStartScheduler_StopsOnShutdown(t *testing.T) {
	db := openTestDB(t)
	svc := seedService(t)
	b := NewBackuper(db, svc.Repository(), logger.NewNop())

	graceful, forceful := startTestScheduler(t, b, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		v, err := metadata.GetValue(db, metadata.LastBackupAtKey)
		return err == nil && v != ""
	}, 2*time.Second, 10*time.Millisecond)

	graceful.Shutdown()
	assert.Empty(t, graceful.WaitWithTimeout(2*time.Second))
	assert.Empty(t, forceful.WaitWithTimeout(time.Second))
}

func TestStartScheduler_GracefulShutdownFinishesInflightBackup(t *testing.T) {
	db := openTestDB(t)
	svc := seedService(t)
	b := NewBackuper(db, svc.Repository(), logger.NewNop())

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	b.beforeWrite = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	graceful, forceful := startTestScheduler(t, b, time.Millisecond)

	<-entered
	graceful.Shutdown()
	close(release)

	assert.Empty(t, graceful.WaitWithTimeout(2*time.Second))
	assert.Empty(t, forceful.WaitWithTimeout(time.Second))

	revision, err := metadata.GetUint64(db, metadata.LastBackupRevisionKey)
	require.NoError(t, err)
	assert.Equal(t, svc.Repository().Revision(), revision)
	v, err := metadata.GetValue(db, metadata.LastBackupAtKey)
	require.NoError(t, err)
	assert.NotEmpty(t, v)
}

func TestStartScheduler_ForcefulShutdownCancelsBackup(t *testing.T) {
	db := openTestDB(t)
	svc := seedService(t)
	b := NewBackuper(db, svc.Repository(), logger.NewNop())

	entered := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	b.beforeWrite = func() {
		once.Do(func() {
			close(entered)
			<-release
		})
	}

	graceful, forceful := startTestScheduler(t, b, time.Millisecond)

	<-entered
	graceful.Shutdown()
	forceful.Shutdown()
	close(release)

	assert.Empty(t, graceful.WaitWithTimeout(2*time.Second))
	assert.Empty(t, forceful.WaitWithTimeout(time.Second))

	v, err := metadata.GetValue(db, metadata.LastBackupAtKey)
	require.NoError(t, err)
	assert.Empty(t, v)
}
