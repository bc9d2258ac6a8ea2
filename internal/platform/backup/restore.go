package backup

import (
	"fmt"

	"github.com/SlpAus/guo-backend/internal/platform/metadata"
	"github.com/SlpAus/guo-backend/internal/pot"
	"gorm.io/gorm"
)

// Restore 从备份库重建账本。计数器取元数据与最大锅ID中的较大者，保证ID不会被重复分配。
func Restore(db *gorm.DB) (*pot.Ledger, error) {
	var potRecords []PotRecord
	if err := db.Order("seq").Find(&potRecords).Error; err != nil {
		return nil, fmt.Errorf("无法读取锅数据: %w", err)
	}
	var eaterRecords []EaterRecord
	if err := db.Order("pot_id, seq").Find(&eaterRecords).Error; err != nil {
		return nil, fmt.Errorf("无法读取吃锅人数据: %w", err)
	}
	var statsRecords []StatsRecord
	if err := db.Order("seq").Find(&statsRecords).Error; err != nil {
		return nil, fmt.Errorf("无法读取统计数据: %w", err)
	}
	counter, err := metadata.GetUint64(db, metadata.LastBackupCounterKey)
	if err != nil {
		return nil, err
	}

	eatersByPot := make(map[int][]pot.Eater, len(potRecords))
	for _, e := range eaterRecords {
		eatersByPot[e.PotID] = append(eatersByPot[e.PotID], pot.Eater{Name: e.Name, Mian: e.Mian, Fan: e.Fan})
	}

	ledger := pot.NewLedger()
	ledger.Counter = int(counter)
	for _, r := range potRecords {
		eaters := eatersByPot[r.PotID]
		if eaters == nil {
			eaters = []pot.Eater{}
		}
		ledger.Pots = append(ledger.Pots, pot.Pot{
			ID:       r.PotID,
			Position: r.Position,
			Time:     r.Time,
			Taste:    r.Taste,
			Eaters:   eaters,
			Note:     r.Note,
		})
		if r.PotID > ledger.Counter {
			ledger.Counter = r.PotID
		}
	}
	for _, s := range statsRecords {
		ledger.Stats = append(ledger.Stats, pot.EaterStats{
			Name:     s.Name,
			Mian:     s.Mian,
			Fan:      s.Fan,
			EatCount: s.EatCount,
			PotCount: s.PotCount,
		})
	}
	return ledger, nil
}
