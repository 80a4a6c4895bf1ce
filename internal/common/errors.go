package common

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated 未登录时收藏
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrValidation 表单校验失败
	ErrValidation = errors.New("validation error")
	// ErrNetwork 远程读取或快照写入失败
	ErrNetwork = errors.New("network error")
	// ErrNotFoundLocal 内存集合中不存在该 id
	ErrNotFoundLocal = errors.New("not found in local collection")

	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError 带字段名的校验错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError 构造校验错误
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NetworkError 网络错误, Op 为出错的操作
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

func (e *NetworkError) Unwrap() error { return e.Err }
