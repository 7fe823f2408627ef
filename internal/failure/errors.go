// Package failure classifies the ways a rebuild run can fail. Every error that
// leaves the polipo, repo and rebuild packages is a *Error carrying the kind,
// the file involved and the underlying cause, so the CLI can print a useful
// message and callers can branch with errors.Is against the Err* sentinels.
package failure

import (
	"errors"
	"fmt"
	"strings"
)

// Kind 标识错误类别，同时作为日志字段 error_kind 的取值。
type Kind string

const (
	DirectoryAccess Kind = "directory_access"
	MissingField    Kind = "missing_field"
	TimestampParse  Kind = "timestamp_parse"
	Write           Kind = "write"
	Decode          Kind = "decode"
	InvalidField    Kind = "invalid_field"
)

// 仅携带 Kind 的哨兵错误，配合 errors.Is 使用。
var (
	ErrDirectoryAccess = &Error{Kind: DirectoryAccess}
	ErrMissingField    = &Error{Kind: MissingField}
	ErrTimestampParse  = &Error{Kind: TimestampParse}
	ErrWrite           = &Error{Kind: Write}
	ErrDecode          = &Error{Kind: Decode}
	ErrInvalidField    = &Error{Kind: InvalidField}
)

// Error 描述一次失败：涉及的文件、头部字段（可选）以及底层原因。
type Error struct {
	Kind  Kind
	Path  string
	Field string
	Err   error
}

// New 构造指定类别的错误。
func New(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Path: path, Err: err}
}

// NewField 构造与某个头部字段相关的错误。
func NewField(kind Kind, path, field string, err error) *Error {
	return &Error{Kind: kind, Path: path, Field: field, Err: err}
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(e.Path)
		b.WriteString(": ")
	}
	b.WriteString(strings.ReplaceAll(string(e.Kind), "_", " "))
	if e.Field != "" {
		fmt.Fprintf(&b, " %s", e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is 只比较 Kind，使任意 *Error 都能匹配同类哨兵。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Path == "" && t.Field == "" && t.Err == nil
}

// KindOf 返回错误链中第一个 *Error 的类别，找不到时返回空字符串。
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ""
}
