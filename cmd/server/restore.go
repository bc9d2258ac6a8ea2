package main

import (
	"fmt"
	"os"

	"github.com/SlpAus/guo-backend/internal/platform/backup"
	"github.com/SlpAus/guo-backend/internal/platform/database"
	"github.com/SlpAus/guo-backend/internal/platform/logger"
	"github.com/SlpAus/guo-backend/internal/platform/metadata"
	"github.com/SlpAus/guo-backend/internal/pot"
	"github.com/spf13/cobra"
)

type restoreOptions struct {
	From  string
	Force bool
}

// NewRestoreCommand 创建 restore 子命令：从SQLite镜像重建账本文件。
func NewRestoreCommand(root *RootOptions) *cobra.Command {
	opts := &restoreOptions{}

	cmd := &cobra.Command{
		Use:   "restore [db-path]",
		Short: "从SQLite备份重建账本文件",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, root, args)
			if err != nil {
				return err
			}
			if opts.From == "" {
				opts.From = cfg.Backup.SqlitePath
			}
			log, err := logger.New(cfg.Log.Mode, cfg.Log.Debug)
			if err != nil {
				return err
			}
			defer log.Sync()

			return runRestore(opts, cfg.Storage.Path, log)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "SQLite备份文件，默认使用配置中的 backup.sqlitePath")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "覆盖已存在的账本文件")
	return cmd
}

func runRestore(opts *restoreOptions, target string, log *logger.Logger) error {
	if _, err := os.Stat(opts.From); err != nil {
		return fmt.Errorf("无法访问备份文件 %s: %w", opts.From, err)
	}
	if _, err := os.Stat(target); err == nil && !opts.Force {
		return fmt.Errorf("账本文件 %s 已存在，使用 --force 覆盖", target)
	}

	db, err := database.OpenSQLite(opts.From)
	if err != nil {
		return err
	}
	defer database.Close(db)
	if err := backup.Migrate(db); err != nil {
		return err
	}

	at, err := metadata.GetValue(db, metadata.LastBackupAtKey)
	if err != nil {
		return err
	}
	if at == "" {
		return fmt.Errorf("备份文件 %s 中没有任何成功的备份", opts.From)
	}

	ledger, err := backup.Restore(db)
	if err != nil {
		return err
	}
	if err := pot.Save(target, ledger); err != nil {
		return err
	}
	log.Info("账本已从备份重建", "from", opts.From, "to", target, "backup_at", at,
		"counter", ledger.Counter, "pots", len(ledger.Pots), "stats", len(ledger.Stats))
	return nil
}
