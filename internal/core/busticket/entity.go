package busticket

import (
	"math"
	"time"
)

// Status は支払い状況を表します。
type Status string

const (
	StatusPaid     Status = "PAID"
	StatusPartial  Status = "PARTIAL"
	StatusReserved Status = "RESERVED"
)

// Valid は既知の状態かを返します。
func (s Status) Valid() bool {
	switch s {
	case StatusPaid, StatusPartial, StatusReserved:
		return true
	default:
		return false
	}
}

// Day は大会の参加日です。
type Day string

const (
	DayFriday   Day = "Sexta"
	DaySaturday Day = "Sábado"
	DaySunday   Day = "Domingo"
)

// Valid は既知の参加日かを返します。
func (d Day) Valid() bool {
	switch d {
	case DayFriday, DaySaturday, DaySunday:
		return true
	default:
		return false
	}
}

// PaymentMethod は支払い方法です。空文字は未指定を表します。
type PaymentMethod string

const (
	PaymentNone PaymentMethod = ""
	PaymentPix  PaymentMethod = "PIX"
	PaymentCash PaymentMethod = "Dinheiro"
	PaymentCard PaymentMethod = "Cartão"
)

// Valid は既知の支払い方法かを返します。
func (p PaymentMethod) Valid() bool {
	switch p {
	case PaymentNone, PaymentPix, PaymentCash, PaymentCard:
		return true
	default:
		return false
	}
}

// ExtraPerson は同行者です。
type ExtraPerson struct {
	ID       string
	Name     string
	Document string
}

// BusTicket はバス乗車券の販売記録です。
type BusTicket struct {
	ID            string
	SaleDate      time.Time
	Name          string
	Document      string
	TotalPeople   int
	Days          []Day
	UnitPrice     float64
	ExtraPeople   []ExtraPerson
	TotalAmount   float64
	AmountPaid    float64
	Change        float64
	PaymentMethod PaymentMethod
	Status        Status
	Event         *string
	Notes         *string
}

// Recalculate は合計金額とお釣りを再計算します。
func (b *BusTicket) Recalculate() {
	b.TotalAmount = roundCents(float64(b.TotalPeople*len(b.Days)) * b.UnitPrice)
	b.Change = roundCents(math.Max(b.AmountPaid-b.TotalAmount, 0))
}

// Clone はディープコピーを返します。
func (b *BusTicket) Clone() *BusTicket {
	if b == nil {
		return nil
	}
	out := *b
	out.Days = append([]Day(nil), b.Days...)
	out.ExtraPeople = append([]ExtraPerson(nil), b.ExtraPeople...)
	if b.Event != nil {
		v := *b.Event
		out.Event = &v
	}
	if b.Notes != nil {
		v := *b.Notes
		out.Notes = &v
	}
	return &out
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
