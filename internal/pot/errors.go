package pot

import (
	"errors"
	"fmt"
)

// CategoryUserError 是所有业务错误的分类标签，调用方据此区分业务错误与基础设施错误。
const CategoryUserError = "USER_ERROR"

// UserError 是可以直接展示给用户的业务错误。
type UserError struct {
	Category string
	Code     string
	Message  string
}

func (e *UserError) Error() string {
	return e.Message
}

var (
	// ErrNotFound 选择器没有解析到任何锅。
	ErrNotFound = &UserError{Category: CategoryUserError, Code: "NOT_FOUND", Message: "真有这锅吗？"}
	// ErrAlreadyJoined 这个名字已经在锅里了。
	ErrAlreadyJoined = &UserError{Category: CategoryUserError, Code: "ALREADY_JOINED", Message: "你已经在锅里了！"}
	// ErrNotInPot 修改需求时找不到这个人。
	ErrNotInPot = &UserError{Category: CategoryUserError, Code: "NOT_IN_POT", Message: "你不在锅里！"}
)

// ErrPersist 表示账本落盘失败。它不是业务错误，内存状态与磁盘状态已经可能不一致。
var ErrPersist = errors.New("账本持久化失败")

// AsUserError 判断 err 是否为业务错误。
func AsUserError(err error) (*UserError, bool) {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue, true
	}
	return nil, false
}

// persistError 包装一次落盘失败。
func persistError(err error) error {
	return fmt.Errorf("%w: %w", ErrPersist, err)
}
