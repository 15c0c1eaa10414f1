package busticket

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ogurasousui/congregation-records/internal/core/actor"
)

// UseCase は乗車券ユースケースの公開インターフェースです。
type UseCase interface {
	ListBusTickets(ctx context.Context) ([]*BusTicket, error)
	CreateBusTicket(ctx context.Context, in CreateBusTicketInput) (*BusTicket, error)
	UpdateBusTicket(ctx context.Context, in UpdateBusTicketInput) (*BusTicket, error)
	DeleteBusTicket(ctx context.Context, in DeleteBusTicketInput) error
}

// Service は乗車券の販売記録を管理します。
type Service struct {
	repo  Repository
	newID func() string
}

// NewService は Service を生成します。
func NewService(repo Repository) *Service {
	return &Service{repo: repo, newID: uuid.NewString}
}

// CreateBusTicketInput は乗車券作成時の入力です。
type CreateBusTicketInput struct {
	Actor         actor.Actor
	SaleDate      time.Time
	Name          string
	Document      string
	TotalPeople   int
	Days          []Day
	UnitPrice     float64
	ExtraPeople   []ExtraPerson
	AmountPaid    float64
	PaymentMethod PaymentMethod
	Status        Status
	Event         *string
	Notes         *string
}

// UpdateBusTicketInput は乗車券更新時の入力です。nil のフィールドは変更しません。
type UpdateBusTicketInput struct {
	ID            string
	Actor         actor.Actor
	SaleDate      *time.Time
	Name          *string
	Document      *string
	TotalPeople   *int
	Days          []Day
	UnitPrice     *float64
	ExtraPeople   *[]ExtraPerson
	AmountPaid    *float64
	PaymentMethod *PaymentMethod
	Status        *Status
	Event         *string
	Notes         *string
}

// DeleteBusTicketInput は乗車券削除時の入力です。
type DeleteBusTicketInput struct {
	ID    string
	Actor actor.Actor
}

// ListBusTickets は販売日の新しい順で乗車券を返します。
func (s *Service) ListBusTickets(ctx context.Context) ([]*BusTicket, error) {
	return s.repo.List(ctx)
}

// CreateBusTicket は乗車券を作成します。
func (s *Service) CreateBusTicket(ctx context.Context, in CreateBusTicketInput) (*BusTicket, error) {
	if err := in.Actor.RequireServant(); err != nil {
		return nil, err
	}
	ticket := &BusTicket{
		SaleDate:      in.SaleDate.UTC(),
		Name:          strings.TrimSpace(in.Name),
		Document:      strings.TrimSpace(in.Document),
		TotalPeople:   in.TotalPeople,
		Days:          append([]Day(nil), in.Days...),
		UnitPrice:     in.UnitPrice,
		ExtraPeople:   s.normalizeExtraPeople(in.ExtraPeople),
		AmountPaid:    in.AmountPaid,
		PaymentMethod: in.PaymentMethod,
		Status:        in.Status,
		Event:         normalizeOptional(in.Event),
		Notes:         normalizeOptional(in.Notes),
	}
	if err := validate(ticket); err != nil {
		return nil, err
	}
	ticket.Recalculate()
	return s.repo.Create(ctx, ticket, in.Actor.ID)
}

// UpdateBusTicket は乗車券を部分更新し金額を再計算します。
func (s *Service) UpdateBusTicket(ctx context.Context, in UpdateBusTicketInput) (*BusTicket, error) {
	if err := in.Actor.RequireServant(); err != nil {
		return nil, err
	}
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	if in.SaleDate != nil {
		next.SaleDate = in.SaleDate.UTC()
	}
	if in.Name != nil {
		next.Name = strings.TrimSpace(*in.Name)
	}
	if in.Document != nil {
		next.Document = strings.TrimSpace(*in.Document)
	}
	if in.TotalPeople != nil {
		next.TotalPeople = *in.TotalPeople
	}
	if in.Days != nil {
		next.Days = append([]Day(nil), in.Days...)
	}
	if in.UnitPrice != nil {
		next.UnitPrice = *in.UnitPrice
	}
	if in.ExtraPeople != nil {
		next.ExtraPeople = s.normalizeExtraPeople(*in.ExtraPeople)
	}
	if in.AmountPaid != nil {
		next.AmountPaid = *in.AmountPaid
	}
	if in.PaymentMethod != nil {
		next.PaymentMethod = *in.PaymentMethod
	}
	if in.Status != nil {
		next.Status = *in.Status
	}
	if in.Event != nil {
		next.Event = normalizeOptional(in.Event)
	}
	if in.Notes != nil {
		next.Notes = normalizeOptional(in.Notes)
	}

	if err := validate(next); err != nil {
		return nil, err
	}
	next.Recalculate()
	return s.repo.Update(ctx, next, in.Actor.ID)
}

// DeleteBusTicket は乗車券を物理削除します。
func (s *Service) DeleteBusTicket(ctx context.Context, in DeleteBusTicketInput) error {
	if err := in.Actor.RequireServant(); err != nil {
		return err
	}
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) normalizeExtraPeople(people []ExtraPerson) []ExtraPerson {
	out := make([]ExtraPerson, 0, len(people))
	for _, p := range people {
		p.Name = strings.TrimSpace(p.Name)
		p.Document = strings.TrimSpace(p.Document)
		if p.Name == "" {
			continue
		}
		if strings.TrimSpace(p.ID) == "" {
			p.ID = s.newID()
		}
		out = append(out, p)
	}
	return out
}

func validate(b *BusTicket) error {
	if b.SaleDate.IsZero() {
		return ErrInvalidSaleDate
	}
	if b.Name == "" {
		return ErrInvalidName
	}
	if b.TotalPeople < 1 {
		return ErrInvalidTotalPeople
	}
	if len(b.Days) == 0 {
		return fmt.Errorf("%w: at least one day is required", ErrInvalidDays)
	}
	seen := make(map[Day]struct{}, len(b.Days))
	for _, d := range b.Days {
		if !d.Valid() {
			return fmt.Errorf("%w: unknown day %q", ErrInvalidDays, d)
		}
		if _, dup := seen[d]; dup {
			return fmt.Errorf("%w: duplicated day %q", ErrInvalidDays, d)
		}
		seen[d] = struct{}{}
	}
	if b.UnitPrice < 0 || b.AmountPaid < 0 {
		return ErrInvalidAmount
	}
	if !b.Status.Valid() {
		return ErrInvalidStatus
	}
	if !b.PaymentMethod.Valid() {
		return ErrInvalidPaymentMethod
	}
	return nil
}

func normalizeID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", ErrInvalidID
	}
	return trimmed, nil
}

func normalizeOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
