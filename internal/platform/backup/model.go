package backup

// PotRecord 是锅在备份库中的一行，Seq 为锅在账本中的位置。
type PotRecord struct {
	ID       uint    `gorm:"primarykey"`
	PotID    int     `gorm:"uniqueIndex;not null"`
	Seq      int     `gorm:"not null"`
	Position string  `gorm:"not null"`
	Time     string  `gorm:"not null"`
	Taste    string  `gorm:"not null"`
	Note     *string
}

// EaterRecord 是锅里的一个人，Seq 为其在锅内的顺序。
type EaterRecord struct {
	ID    uint   `gorm:"primarykey"`
	PotID int    `gorm:"index;not null"`
	Seq   int    `gorm:"not null"`
	Name  string `gorm:"not null"`
	Mian  int    `gorm:"not null"`
	Fan   int    `gorm:"not null"`
}

// StatsRecord 是一个人的累计统计。
type StatsRecord struct {
	ID       uint   `gorm:"primarykey"`
	Seq      int    `gorm:"not null"`
	Name     string `gorm:"uniqueIndex;not null"`
	Mian     int    `gorm:"not null"`
	Fan      int    `gorm:"not null"`
	EatCount int    `gorm:"not null"`
	PotCount int    `gorm:"not null"`
}
