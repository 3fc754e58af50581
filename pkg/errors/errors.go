// Package errors 提供统一的错误处理框架
package errors

import (
	"errors"
	"fmt"
)

// Code 错误码
type Code string

const (
	// 通用错误码
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL_ERROR"
	CodeInvalidInput Code = "INVALID_INPUT"
	CodeNotFound     Code = "NOT_FOUND"

	// 求解引擎相关
	CodeInstanceInvalid    Code = "INSTANCE_INVALID"
	CodeIDNotFound         Code = "ID_NOT_FOUND"
	CodeParseFailed        Code = "PARSE_FAILED"
	CodeNoFeasibleSolution Code = "NO_FEASIBLE_SOLUTION"

	// 数据相关
	CodeDatabaseError Code = "DATABASE_ERROR"
)

// AppError 应用错误
type AppError struct {
	Code    Code                   `json:"code"`
	Message string                 `json:"message"`
	Details string                 `json:"details,omitempty"`
	Cause   error                  `json:"-"`
	Fields  map[string]interface{} `json:"fields,omitempty"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails 添加详细信息
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// WithCause 添加原因
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithField 添加字段
func (e *AppError) WithField(key string, value interface{}) *AppError {
	if e.Fields == nil {
		e.Fields = make(map[string]interface{})
	}
	e.Fields[key] = value
	return e
}

// New 创建新错误
func New(code Code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(err error, code Code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   err,
	}
}

// Is 检查错误是否为特定类型
func Is(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode 获取错误码
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknown
}

// 预定义错误
var (
	ErrNotFound           = New(CodeNotFound, "资源不存在")
	ErrInvalidInput       = New(CodeInvalidInput, "输入参数无效")
	ErrInternal           = New(CodeInternal, "内部错误")
	ErrNoFeasibleSolution = New(CodeNoFeasibleSolution, "无可行解")
)

// InstanceInvalid 创建实例无效错误
func InstanceInvalid(reason string) *AppError {
	return New(CodeInstanceInvalid, fmt.Sprintf("问题实例无效: %s", reason))
}

// IDNotFound 创建标识符不存在错误
func IDNotFound(kind, id string) *AppError {
	return New(CodeIDNotFound, fmt.Sprintf("%s '%s' 不存在", kind, id))
}

// ParseFailed 创建实例文件解析失败错误
func ParseFailed(line int, reason string) *AppError {
	return New(CodeParseFailed, fmt.Sprintf("第 %d 行解析失败: %s", line, reason))
}

// InvalidInput 创建输入无效错误
func InvalidInput(field, reason string) *AppError {
	return New(CodeInvalidInput, fmt.Sprintf("字段 '%s' 无效: %s", field, reason))
}
