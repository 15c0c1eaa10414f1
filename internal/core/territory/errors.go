package territory

import (
	"errors"

	"github.com/ogurasousui/congregation-records/internal/core/actor"
)

var (
	// ErrTerritoryNotFound は区域が存在しない場合に返却されます。
	ErrTerritoryNotFound = errors.New("territory not found")
	// ErrInvalidTransition は現在の状態から要求された遷移が許可されない場合に返却されます。
	ErrInvalidTransition = errors.New("invalid territory transition")
	// ErrPermissionDenied は奉仕者以外が承認・却下・返却を行った場合に返却されます。
	ErrPermissionDenied = actor.ErrPermissionDenied
	// ErrInvalidPublisherName は申請者名が空の場合に返却されます。
	ErrInvalidPublisherName = errors.New("invalid publisher name")
	// ErrInvalidReturnDate は返却予定日が指定されていない場合に返却されます。
	ErrInvalidReturnDate = errors.New("invalid expected return date")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
	// ErrInconsistentTerritory は保存済みの区域が状態と貸し出し情報の整合性を満たさない場合に返却されます。
	ErrInconsistentTerritory = errors.New("inconsistent territory")
)
