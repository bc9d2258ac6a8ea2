package pot

import (
	"bytes"
	"encoding/json"
)

// NoteAction 描述对备注的三态更新。
type NoteAction int

const (
	// NoteAbsent 表示请求中没有 note 字段，备注保持不变。
	NoteAbsent NoteAction = iota
	// NoteClear 表示 note 显式为 null，备注被清空。
	NoteClear
	// NoteSet 表示 note 为字符串，备注被替换。
	NoteSet
)

// NoteUpdate 是备注的三态更新值。零值即 NoteAbsent。
//
// 作为结构体字段使用时，JSON 中缺少该字段得到 NoteAbsent，null 得到 NoteClear，
// 字符串得到 NoteSet。
type NoteUpdate struct {
	Action NoteAction
	Value  string
}

// KeepNote 不修改备注。
func KeepNote() NoteUpdate { return NoteUpdate{Action: NoteAbsent} }

// ClearNote 清空备注。
func ClearNote() NoteUpdate { return NoteUpdate{Action: NoteClear} }

// SetNote 将备注设为 value。
func SetNote(value string) NoteUpdate { return NoteUpdate{Action: NoteSet, Value: value} }

// UnmarshalJSON 只会在字段出现时被调用，因此缺省字段保持 NoteAbsent。
func (n *NoteUpdate) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*n = ClearNote()
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	*n = SetNote(value)
	return nil
}

// apply 将更新作用到备注上。
func (n NoteUpdate) apply(note **string) {
	switch n.Action {
	case NoteClear:
		*note = nil
	case NoteSet:
		value := n.Value
		*note = &value
	}
}
