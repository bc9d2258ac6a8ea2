package pot

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson"
)

// Load 从 path 读取账本。
//
// 文件不存在时返回空账本和 nil；文件无法读取或无法解析时同样返回空账本，
// 但会附带错误说明原因，由调用方决定如何告警。返回的账本永远不为 nil。
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewLedger(), nil
		}
		return NewLedger(), fmt.Errorf("无法读取账本文件 %s: %w", path, err)
	}

	var ledger Ledger
	if err := bson.Unmarshal(data, &ledger); err != nil {
		return NewLedger(), fmt.Errorf("无法解析账本文件 %s: %w", path, err)
	}
	ledger.normalize()
	return &ledger, nil
}

// Save 将账本完整序列化为 BSON 并写入 path。
// 先写同目录下的临时文件并 fsync，再原子地 rename 覆盖目标，写到一半失败不会损坏旧文件。
func Save(path string, ledger *Ledger) error {
	data, err := bson.Marshal(ledger)
	if err != nil {
		return fmt.Errorf("无法序列化账本: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("无法创建临时文件: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("无法写入临时文件: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("无法同步临时文件: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("无法关闭临时文件: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("无法替换账本文件 %s: %w", path, err)
	}
	committed = true
	return nil
}

// renameFile 在测试中可被替换。
var renameFile = os.Rename

// quarantine 把无法解析的账本文件改名保留，避免下一次保存把它覆盖掉。
func quarantine(path string, suffix string) (string, error) {
	target := path + ".corrupt-" + suffix
	if err := renameFile(path, target); err != nil {
		return "", err
	}
	return target, nil
}
