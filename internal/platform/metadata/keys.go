package metadata

// 以下键用于 SQLite 'metadata' 表的 key 列。
const (
	// LastBackupRevisionKey 记录最近一次成功备份时仓库的版本号。
	// 版本号只在进程内有效，重启后从0开始，因此只能用来跳过同一进程内的重复备份。
	LastBackupRevisionKey = "last_backup_revision"

	// LastBackupCounterKey 记录最近一次成功备份时账本的锅ID计数器。
	LastBackupCounterKey = "last_backup_counter"

	// LastBackupAtKey 记录最近一次成功备份的时间（RFC3339）。
	LastBackupAtKey = "last_backup_at"
)
