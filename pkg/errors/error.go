package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/iceymoss/go-press/pkg/xerr"
)

type CodeMsg struct {
	Code   int               // 错误码
	Msg    string            // 错误消息
	Err    error             // 原始错误
	Fields map[string]string // 字段级错误，key 为表单字段名
}

// 实现 error 接口
func (e *CodeMsg) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("code=%d, msg=%s", e.Code, e.Msg)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "code=%d, msg=%s:", e.Code, e.Msg)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s: %s;", k, e.Fields[k])
	}
	return b.String()
}

func (e *CodeMsg) Unwrap() error {
	return e.Err
}

// HTTPStatus 对应的 HTTP 状态码
func (e *CodeMsg) HTTPStatus() int {
	return xerr.HTTPStatus(e.Code)
}

// Add 追加一个字段错误，同一字段只保留第一条
func (e *CodeMsg) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; ok {
		return
	}
	e.Fields[field] = msg
}

func (e *CodeMsg) HasAny() bool {
	return len(e.Fields) > 0
}

// New 构造函数
func New(code int, msg string) error {
	return &CodeMsg{Code: code, Msg: msg}
}

// Wrap 携带原始错误
func Wrap(code int, msg string, err error) error {
	return &CodeMsg{Code: code, Msg: msg, Err: err}
}

// NewValidation 空的字段校验错误，调用方通过 Add 填充
func NewValidation() *CodeMsg {
	return &CodeMsg{Code: xerr.ErrValidation, Msg: "The given data was invalid."}
}

// Field 单字段校验错误
func Field(field, msg string) error {
	e := NewValidation()
	e.Add(field, msg)
	return e
}

func Forbidden(msg string) error {
	if msg == "" {
		msg = "This action is unauthorized."
	}
	return &CodeMsg{Code: xerr.ErrForbidden, Msg: msg}
}

func Unauthenticated() error {
	return &CodeMsg{Code: xerr.ErrUnauthenticated, Msg: "Unauthenticated."}
}

func NotFound(what string) error {
	return &CodeMsg{Code: xerr.ErrResourceNotFound, Msg: what + " not found"}
}

// From 提取 CodeMsg，非 CodeMsg 统一视为 500
func From(err error) *CodeMsg {
	var cm *CodeMsg
	if errors.As(err, &cm) {
		return cm
	}
	return &CodeMsg{Code: xerr.ErrInternalServer, Msg: "Server Error", Err: err}
}

// IsCode 判断错误链上是否存在指定错误码
func IsCode(err error, code int) bool {
	var cm *CodeMsg
	return errors.As(err, &cm) && cm.Code == code
}
