package busticket

import "errors"

var (
	// ErrBusTicketNotFound は乗車券が存在しない場合に返却されます。
	ErrBusTicketNotFound = errors.New("bus ticket not found")
	// ErrInvalidName は購入者名が不正な場合に返却されます。
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidTotalPeople は人数が 1 未満の場合に返却されます。
	ErrInvalidTotalPeople = errors.New("invalid total people")
	// ErrInvalidDays は参加日が空・重複・未知の値を含む場合に返却されます。
	ErrInvalidDays = errors.New("invalid days")
	// ErrInvalidAmount は金額が負の場合に返却されます。
	ErrInvalidAmount = errors.New("invalid amount")
	// ErrInvalidStatus は支払い状況が不正な場合に返却されます。
	ErrInvalidStatus = errors.New("invalid status")
	// ErrInvalidPaymentMethod は支払い方法が不正な場合に返却されます。
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	// ErrInvalidSaleDate は販売日が指定されていない場合に返却されます。
	ErrInvalidSaleDate = errors.New("invalid sale date")
	// ErrInvalidID は ID が不正な場合に返却されます。
	ErrInvalidID = errors.New("invalid id")
)
