package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/SlpAus/guo-backend/internal/platform/database"
	"github.com/SlpAus/guo-backend/internal/platform/logger"
	"github.com/SlpAus/guo-backend/internal/platform/metadata"
	"github.com/SlpAus/guo-backend/internal/pot"
	"github.com/SlpAus/guo-backend/pkg/lifecycle"
	"gorm.io/gorm"
)

const (
	maxRetry   = 3
	retryDelay = 50 * time.Millisecond
	batchSize  = 200
)

// Migrate 创建备份库需要的全部表。
func Migrate(db *gorm.DB) error {
	if err := metadata.Migrate(db); err != nil {
		return err
	}
	if err := db.AutoMigrate(&PotRecord{}, &EaterRecord{}, &StatsRecord{}); err != nil {
		return fmt.Errorf("无法迁移备份表: %w", err)
	}
	return nil
}

// Backuper 把账本的快照镜像到 SQLite。
type Backuper struct {
	db   *gorm.DB
	repo *pot.Repository
	log  *logger.Logger

	mu           sync.Mutex // 避免定时备份与停机备份并发
	lastRevision uint64
	hasBackup    bool

	beforeWrite func() // 测试用
}

// NewBackuper 创建备份器，db 需要已经迁移过。
func NewBackuper(db *gorm.DB, repo *pot.Repository, log *logger.Logger) *Backuper {
	return &Backuper{db: db, repo: repo, log: log}
}

// StartScheduler 定期执行备份。
// 优雅停机信号只打断休眠，正在进行的备份会继续完成；强制停机信号才会取消备份事务。
func (b *Backuper) StartScheduler(gracefulHandle, forcefulHandle *lifecycle.Handle, interval time.Duration) {
	defer gracefulHandle.Close()
	defer forcefulHandle.Close()
	b.log.Info("备份调度器已启动", "interval", interval)

	for {
		if err := gracefulHandle.Sleep(interval); err != nil {
			b.log.Info("备份调度器: 休眠被中断，正在关闭")
			return
		}

		written, err := b.CreateSnapshot(forcefulHandle.Ctx())
		switch {
		case err != nil:
			if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
				b.log.Error("备份调度器: 执行快照备份失败", "error", err)
			}
		case written:
			b.log.Info("备份调度器: 快照备份成功", "revision", b.repo.Revision())
		default:
			b.log.Debug("备份调度器: 账本未变化，跳过本次备份")
		}
	}
}

// CreateSnapshot 取一份账本快照并在一个事务中完整替换备份库。
// 本进程内版本号未变化时跳过，返回值表示是否真正写入。
func (b *Backuper) CreateSnapshot(ctx context.Context) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ledger, revision := b.repo.Snapshot()
	if b.hasBackup && revision == b.lastRevision {
		return false, nil
	}
	if b.beforeWrite != nil {
		b.beforeWrite()
	}

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	default:
	}

	potRecords, eaterRecords, statsRecords := toRecords(ledger)

	var err error
	for i := 0; i < maxRetry; i++ {
		err = b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := replaceAll(tx, &PotRecord{}, potRecords); err != nil {
				return fmt.Errorf("写入锅数据失败: %w", err)
			}
			if err := replaceAll(tx, &EaterRecord{}, eaterRecords); err != nil {
				return fmt.Errorf("写入吃锅人数据失败: %w", err)
			}
			if err := replaceAll(tx, &StatsRecord{}, statsRecords); err != nil {
				return fmt.Errorf("写入统计数据失败: %w", err)
			}

			if err := metadata.SetUint64(tx, metadata.LastBackupRevisionKey, revision); err != nil {
				return fmt.Errorf("更新元数据 LastBackupRevision 失败: %w", err)
			}
			if err := metadata.SetUint64(tx, metadata.LastBackupCounterKey, uint64(ledger.Counter)); err != nil {
				return fmt.Errorf("更新元数据 LastBackupCounter 失败: %w", err)
			}
			return metadata.SetValue(tx, metadata.LastBackupAtKey, time.Now().UTC().Format(time.RFC3339))
		})

		if err == nil || !database.IsRetryableError(err) {
			break
		}
		time.Sleep(retryDelay)
	}
	if err != nil {
		return false, err
	}

	b.lastRevision = revision
	b.hasBackup = true
	return true, nil
}

// replaceAll 清空 model 对应的表并写入 rows。
func replaceAll[T any](tx *gorm.DB, model *T, rows []T) error {
	if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return tx.CreateInBatches(&rows, batchSize).Error
}

func toRecords(l *pot.Ledger) ([]PotRecord, []EaterRecord, []StatsRecord) {
	pots := make([]PotRecord, 0, len(l.Pots))
	var eaters []EaterRecord
	for i, p := range l.Pots {
		pots = append(pots, PotRecord{
			PotID:    p.ID,
			Seq:      i,
			Position: p.Position,
			Time:     p.Time,
			Taste:    p.Taste,
			Note:     p.Note,
		})
		for j, e := range p.Eaters {
			eaters = append(eaters, EaterRecord{PotID: p.ID, Seq: j, Name: e.Name, Mian: e.Mian, Fan: e.Fan})
		}
	}

	stats := make([]StatsRecord, 0, len(l.Stats))
	for i, s := range l.Stats {
		stats = append(stats, StatsRecord{
			Seq:      i,
			Name:     s.Name,
			Mian:     s.Mian,
			Fan:      s.Fan,
			EatCount: s.EatCount,
			PotCount: s.PotCount,
		})
	}
	return pots, eaters, stats
}
