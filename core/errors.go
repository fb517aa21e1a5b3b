package core

import (
	"errors"
	"fmt"
)

// DomainError 是领域层的统一错误类型。
//
// 设计原则：
//   - 所有领域层错误都使用此类型
//   - 提供错误代码（Code）和消息（Message）
//   - 支持错误检查函数（IsXXX），可穿透 fmt.Errorf("%w") 包装
//
// 使用场景：
//   - Adapter 错误：UNSUPPORTED_SHAPE, UNSUPPORTED_TYPE, EMPTY_INPUT, INVALID_VALUE
//   - Store 错误：NOT_FOUND
//   - Service 错误：UNAVAILABLE
type DomainError struct {
	Code    string // 错误代码（如 "UNSUPPORTED_SHAPE", "EMPTY_INPUT"）
	Message string // 错误消息
	Module  string // 模块名称（如 "adapter", "store", "service"）
	Err     error  // 底层错误（可选）
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error { return e.Err }

// IsDomainError 检查错误链中是否存在 DomainError
func IsDomainError(err error) bool {
	return GetDomainError(err) != nil
}

// GetDomainError 获取错误链中的 DomainError，如果不存在则返回 nil
func GetDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// NewDomainError 创建新的领域错误
func NewDomainError(module, code, message string) *DomainError {
	return &DomainError{
		Module:  module,
		Code:    code,
		Message: message,
	}
}

// Errorf 按格式化消息创建领域错误
func Errorf(module, code, format string, args ...any) *DomainError {
	return NewDomainError(module, code, fmt.Sprintf(format, args...))
}

// 错误代码常量
const (
	// 通用错误代码
	ErrorCodeNotFound      = "NOT_FOUND"      // 资源不存在
	ErrorCodeNotSupported  = "NOT_SUPPORTED"  // 操作不支持
	ErrorCodeUnavailable   = "UNAVAILABLE"    // 服务不可用
	ErrorCodeInvalidInput  = "INVALID_INPUT"  // 输入无效
	ErrorCodeInternalError = "INTERNAL_ERROR" // 内部错误

	// 预测输出适配错误代码
	ErrorCodeUnsupportedShape = "UNSUPPORTED_SHAPE" // 输出形状不支持（列数/维度不对）
	ErrorCodeUnsupportedType  = "UNSUPPORTED_TYPE"  // 输出类型不支持
	ErrorCodeEmptyInput       = "EMPTY_INPUT"       // 预测结果为空
	ErrorCodeInvalidValue     = "INVALID_VALUE"     // 预测值无效（NaN、未通过规则）
	ErrorCodeLengthMismatch   = "LENGTH_MISMATCH"   // 预测条数与输入行数不一致
)

// 模块名称常量
const (
	ModuleAdapter = "adapter" // 输出适配模块
	ModuleFrame   = "frame"   // 表格数据模块
	ModuleStore   = "store"   // 存储模块
	ModuleService = "service" // 服务模块
	ModuleSource  = "source"  // 特征来源模块
	ModuleConfig  = "config"  // 配置构建模块
)

// ErrStoreNotFound 表示存储中不存在对应的键
var ErrStoreNotFound = NewDomainError(ModuleStore, ErrorCodeNotFound, "store: not found")

func hasCode(err error, code string) bool {
	if domainErr := GetDomainError(err); domainErr != nil {
		return domainErr.Code == code
	}
	return false
}

// IsNotFound 检查错误是否为 NOT_FOUND
func IsNotFound(err error) bool { return hasCode(err, ErrorCodeNotFound) }

// IsNotSupported 检查错误是否为 NOT_SUPPORTED
func IsNotSupported(err error) bool { return hasCode(err, ErrorCodeNotSupported) }

// IsUnavailable 检查错误是否为 UNAVAILABLE
func IsUnavailable(err error) bool { return hasCode(err, ErrorCodeUnavailable) }

// IsInvalidInput 检查错误是否为 INVALID_INPUT
func IsInvalidInput(err error) bool { return hasCode(err, ErrorCodeInvalidInput) }

// IsUnsupportedShape 检查错误是否为 UNSUPPORTED_SHAPE
func IsUnsupportedShape(err error) bool { return hasCode(err, ErrorCodeUnsupportedShape) }

// IsUnsupportedType 检查错误是否为 UNSUPPORTED_TYPE
func IsUnsupportedType(err error) bool { return hasCode(err, ErrorCodeUnsupportedType) }

// IsEmptyInput 检查错误是否为 EMPTY_INPUT
func IsEmptyInput(err error) bool { return hasCode(err, ErrorCodeEmptyInput) }

// IsInvalidValue 检查错误是否为 INVALID_VALUE
func IsInvalidValue(err error) bool { return hasCode(err, ErrorCodeInvalidValue) }

// IsLengthMismatch 检查错误是否为 LENGTH_MISMATCH
func IsLengthMismatch(err error) bool { return hasCode(err, ErrorCodeLengthMismatch) }
