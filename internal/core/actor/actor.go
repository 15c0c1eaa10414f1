// Package actor は認証済みの利用者を表します。
package actor

import (
	"errors"
	"fmt"
	"strings"
)

// Role は会衆内での役割です。
type Role string

const (
	RolePublisher Role = "PUBLISHER"
	RoleServant   Role = "SERVANT"
)

var (
	// ErrInvalidActor はアクター ID が空の場合に返却されます。
	ErrInvalidActor = errors.New("invalid actor")
	// ErrInvalidRole は未知の役割が指定された場合に返却されます。
	ErrInvalidRole = errors.New("invalid role")
	// ErrPermissionDenied は役割が操作に必要な権限を持たない場合に返却されます。
	ErrPermissionDenied = errors.New("permission denied")
)

// Actor は操作を行う利用者です。
type Actor struct {
	ID   string
	Role Role
}

// IsServant は奉仕者の役割を持つかを返します。
func (a Actor) IsServant() bool {
	role, err := ParseRole(string(a.Role))
	return err == nil && role == RoleServant
}

// Validate は ID と役割を検証します。
func (a Actor) Validate() error {
	if strings.TrimSpace(a.ID) == "" {
		return ErrInvalidActor
	}
	if _, err := ParseRole(string(a.Role)); err != nil {
		return err
	}
	return nil
}

// RequireServant は奉仕者でない場合に ErrPermissionDenied を返します。
func (a Actor) RequireServant() error {
	if err := a.Validate(); err != nil {
		return err
	}
	if !a.IsServant() {
		return fmt.Errorf("%w: servant role required", ErrPermissionDenied)
	}
	return nil
}

// ParseRole は文字列を Role に変換します。空文字は PUBLISHER として扱います。
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case "", RolePublisher:
		return RolePublisher, nil
	case RoleServant:
		return RoleServant, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, raw)
	}
}
