package records

import (
	"context"
	"errors"
	"fmt"

	"github.com/ogurasousui/congregation-records/internal/core/busticket"
	"github.com/ogurasousui/congregation-records/internal/core/record"
)

// BusTicketRepository は passagens コレクションを利用した乗車券リポジトリです。
type BusTicketRepository struct {
	store      record.Store
	collection record.Collection
}

var _ busticket.Repository = (*BusTicketRepository)(nil)

// NewBusTicketRepository は BusTicketRepository を生成します。
func NewBusTicketRepository(store record.Store) *BusTicketRepository {
	return &BusTicketRepository{store: store, collection: record.MustCollection(record.CollectionBusTickets)}
}

type busTicketDocument struct {
	ID            string                `json:"id,omitempty"`
	SaleDate      string                `json:"saleDate"`
	Name          string                `json:"name"`
	Document      string                `json:"document"`
	TotalPeople   int                   `json:"totalPeople"`
	Days          []string              `json:"days"`
	UnitPrice     float64               `json:"unitPrice"`
	ExtraPeople   []extraPersonDocument `json:"extraPeople"`
	TotalAmount   float64               `json:"totalAmount"`
	AmountPaid    float64               `json:"amountPaid"`
	Change        float64               `json:"change"`
	PaymentMethod string                `json:"paymentMethod"`
	Status        string                `json:"status"`
	Event         *string               `json:"event,omitempty"`
	Notes         *string               `json:"notes,omitempty"`
}

type extraPersonDocument struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Document string `json:"document"`
}

// List は販売日の新しい順で乗車券を返します。
func (r *BusTicketRepository) List(ctx context.Context) ([]*busticket.BusTicket, error) {
	docs, err := r.store.List(ctx, r.collection, record.ListOptions{})
	if err != nil {
		return nil, err
	}
	out := make([]*busticket.BusTicket, 0, len(docs))
	for _, doc := range docs {
		b, err := DecodeBusTicket(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}

// FindByID は ID で乗車券を取得します。
func (r *BusTicketRepository) FindByID(ctx context.Context, id string) (*busticket.BusTicket, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return nil, translateBusTicketError(err)
	}
	return DecodeBusTicket(doc)
}

// Create は乗車券を作成します。
func (r *BusTicketRepository) Create(ctx context.Context, b *busticket.BusTicket, actorID string) (*busticket.BusTicket, error) {
	doc, err := BusTicketDocument(b)
	if err != nil {
		return nil, err
	}
	created, err := r.store.Create(ctx, r.collection, doc, actorID)
	if err != nil {
		return nil, err
	}
	return DecodeBusTicket(created)
}

// Update は乗車券を上書きします。省略可能なフィールドが空の場合は削除します。
func (r *BusTicketRepository) Update(ctx context.Context, b *busticket.BusTicket, actorID string) (*busticket.BusTicket, error) {
	doc, err := BusTicketDocument(b)
	if err != nil {
		return nil, err
	}
	delete(doc, record.FieldID)
	for _, optional := range []string{"event", "notes"} {
		if _, ok := doc[optional]; !ok {
			doc[optional] = nil
		}
	}
	updated, err := r.store.Update(ctx, r.collection, b.ID, doc, actorID)
	if err != nil {
		return nil, translateBusTicketError(err)
	}
	return DecodeBusTicket(updated)
}

// Delete は乗車券を物理削除します。
func (r *BusTicketRepository) Delete(ctx context.Context, id string) error {
	return translateBusTicketError(r.store.HardDelete(ctx, r.collection, id))
}

// BusTicketDocument は乗車券を保存形式に変換します。
func BusTicketDocument(b *busticket.BusTicket) (record.Document, error) {
	if b == nil {
		return nil, fmt.Errorf("%w: nil bus ticket", record.ErrValidation)
	}
	bd := busTicketDocument{
		ID:            b.ID,
		SaleDate:      record.FormatInstant(b.SaleDate),
		Name:          b.Name,
		Document:      b.Document,
		TotalPeople:   b.TotalPeople,
		Days:          make([]string, 0, len(b.Days)),
		UnitPrice:     b.UnitPrice,
		ExtraPeople:   make([]extraPersonDocument, 0, len(b.ExtraPeople)),
		TotalAmount:   b.TotalAmount,
		AmountPaid:    b.AmountPaid,
		Change:        b.Change,
		PaymentMethod: string(b.PaymentMethod),
		Status:        string(b.Status),
		Event:         b.Event,
		Notes:         b.Notes,
	}
	for _, d := range b.Days {
		bd.Days = append(bd.Days, string(d))
	}
	for _, p := range b.ExtraPeople {
		bd.ExtraPeople = append(bd.ExtraPeople, extraPersonDocument{ID: p.ID, Name: p.Name, Document: p.Document})
	}
	return record.Normalize(bd)
}

// DecodeBusTicket は保存形式から乗車券を復元します。
func DecodeBusTicket(doc record.Document) (*busticket.BusTicket, error) {
	var bd busTicketDocument
	if err := record.Decode(doc, &bd); err != nil {
		return nil, err
	}
	saleDate, err := record.ParseInstant(bd.SaleDate)
	if err != nil {
		return nil, fmt.Errorf("bus ticket %s saleDate: %w", bd.ID, err)
	}
	b := &busticket.BusTicket{
		ID:            bd.ID,
		SaleDate:      saleDate,
		Name:          bd.Name,
		Document:      bd.Document,
		TotalPeople:   bd.TotalPeople,
		Days:          make([]busticket.Day, 0, len(bd.Days)),
		UnitPrice:     bd.UnitPrice,
		ExtraPeople:   make([]busticket.ExtraPerson, 0, len(bd.ExtraPeople)),
		TotalAmount:   bd.TotalAmount,
		AmountPaid:    bd.AmountPaid,
		Change:        bd.Change,
		PaymentMethod: busticket.PaymentMethod(bd.PaymentMethod),
		Status:        busticket.Status(bd.Status),
		Event:         bd.Event,
		Notes:         bd.Notes,
	}
	for _, d := range bd.Days {
		b.Days = append(b.Days, busticket.Day(d))
	}
	for _, p := range bd.ExtraPeople {
		b.ExtraPeople = append(b.ExtraPeople, busticket.ExtraPerson{ID: p.ID, Name: p.Name, Document: p.Document})
	}
	return b, nil
}

func translateBusTicketError(err error) error {
	if errors.Is(err, record.ErrNotFound) {
		return busticket.ErrBusTicketNotFound
	}
	return err
}
