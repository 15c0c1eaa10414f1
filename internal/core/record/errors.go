package record

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound は指定された ID のレコードがコレクションに存在しない場合に返却されます。
	ErrNotFound = errors.New("record not found")
	// ErrTransport はバックエンドへの到達失敗・権限不足・不正な応答の場合に返却されます。
	ErrTransport = errors.New("record backend unavailable")
	// ErrValidation は永続化前の最小限の形状チェックに失敗した場合に返却されます。
	ErrValidation = errors.New("invalid record")
	// ErrUnknownCollection はカタログに存在しないコレクション名が指定された場合に返却されます。
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrUnsupportedOperation はコレクションの種別で許可されていない操作の場合に返却されます。
	ErrUnsupportedOperation = errors.New("operation not supported for collection")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
)

// FieldError は特定フィールドの検証エラーです。errors.Is(err, ErrValidation) が成立します。
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation.Error(), e.Field, e.Reason)
}

// Unwrap は ErrValidation を返します。
func (e *FieldError) Unwrap() error {
	return ErrValidation
}

func fieldError(field, reason string) error {
	return &FieldError{Field: field, Reason: reason}
}
