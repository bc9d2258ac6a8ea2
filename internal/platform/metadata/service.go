package metadata

import (
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// --- 通用读写 ---

// GetValue 读取 key 对应的值，不存在时返回空字符串。
func GetValue(db *gorm.DB, key string) (string, error) {
	var meta Metadata
	err := db.Where("key = ?", key).First(&meta).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return meta.Value, nil
}

// SetValue 插入或更新 key 对应的值。可以传入事务。
func SetValue(db *gorm.DB, key, value string) error {
	meta := Metadata{
		Key:   key,
		Value: value,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&meta).Error
}

// --- 类型转换 ---

// GetUint64 读取并解析一个无符号整数，不存在时返回0。
func GetUint64(db *gorm.DB, key string) (uint64, error) {
	valueStr, err := GetValue(db, key)
	if err != nil {
		return 0, err
	}
	if valueStr == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("无法解析元数据 '%s' 的值: %w", key, err)
	}
	return v, nil
}

func SetUint64(db *gorm.DB, key string, v uint64) error {
	return SetValue(db, key, strconv.FormatUint(v, 10))
}
