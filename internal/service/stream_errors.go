package service

import (
	"errors"
	"fmt"
)

var (
	// ErrStreamNotFound 在按 ID 更新或读取的记录不存在时返回
	ErrStreamNotFound = errors.New("stream not found")
	// ErrValidation 是所有 ValidationError 的公共哨兵，便于 errors.Is 判断
	ErrValidation = errors.New("validation failed")
	// ErrStorage 包装存储读写或序列化失败
	ErrStorage = errors.New("storage failure")
)

// ValidationError 描述单个输入字段的校验失败
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Message)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Message)
}

// Is 让 errors.Is(err, ErrValidation) 对所有 ValidationError 成立
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func storageError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
