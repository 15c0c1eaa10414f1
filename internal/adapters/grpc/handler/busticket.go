package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/congregation-records/internal/core/busticket"
	"github.com/ogurasousui/congregation-records/internal/core/record"
)

// BusTicketServiceName は乗車券サービスの完全修飾名です。
const BusTicketServiceName = "congregation.busticket.v1.BusTicketService"

// BusTicketServiceServer は乗車券サービスのサーバーインターフェースです。
type BusTicketServiceServer interface {
	ListBusTickets(context.Context, *ListBusTicketsRequest) (*ListBusTicketsResponse, error)
	CreateBusTicket(context.Context, *CreateBusTicketRequest) (*BusTicketResponse, error)
	UpdateBusTicket(context.Context, *UpdateBusTicketRequest) (*BusTicketResponse, error)
	DeleteBusTicket(context.Context, *DeleteBusTicketRequest) (*Empty, error)
}

// BusTicketServiceDesc は乗車券サービスの記述子です。
var BusTicketServiceDesc = grpc.ServiceDesc{
	ServiceName: BusTicketServiceName,
	HandlerType: (*BusTicketServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(BusTicketServiceName, "ListBusTickets", BusTicketServiceServer.ListBusTickets),
		unaryMethod(BusTicketServiceName, "CreateBusTicket", BusTicketServiceServer.CreateBusTicket),
		unaryMethod(BusTicketServiceName, "UpdateBusTicket", BusTicketServiceServer.UpdateBusTicket),
		unaryMethod(BusTicketServiceName, "DeleteBusTicket", BusTicketServiceServer.DeleteBusTicket),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "congregation/busticket/v1/busticket.json",
}

// BusTicket は乗車券のメッセージ表現です。
type BusTicket struct {
	ID            string        `json:"id"`
	SaleDate      string        `json:"saleDate"`
	Name          string        `json:"name"`
	Document      string        `json:"document"`
	TotalPeople   int           `json:"totalPeople"`
	Days          []string      `json:"days"`
	UnitPrice     float64       `json:"unitPrice"`
	ExtraPeople   []ExtraPerson `json:"extraPeople"`
	TotalAmount   float64       `json:"totalAmount"`
	AmountPaid    float64       `json:"amountPaid"`
	Change        float64       `json:"change"`
	PaymentMethod string        `json:"paymentMethod"`
	Status        string        `json:"status"`
	Event         *string       `json:"event,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
}

// ExtraPerson は同行者のメッセージ表現です。
type ExtraPerson struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Document string `json:"document"`
}

type ListBusTicketsRequest struct{}

type ListBusTicketsResponse struct {
	BusTickets []*BusTicket `json:"busTickets"`
}

type CreateBusTicketRequest struct {
	SaleDate      string        `json:"saleDate"`
	Name          string        `json:"name"`
	Document      string        `json:"document"`
	TotalPeople   int           `json:"totalPeople"`
	Days          []string      `json:"days"`
	UnitPrice     float64       `json:"unitPrice"`
	ExtraPeople   []ExtraPerson `json:"extraPeople,omitempty"`
	AmountPaid    float64       `json:"amountPaid"`
	PaymentMethod string        `json:"paymentMethod"`
	Status        string        `json:"status"`
	Event         *string       `json:"event,omitempty"`
	Notes         *string       `json:"notes,omitempty"`
}

// UpdateBusTicketRequest の省略したフィールドは変更されません。
type UpdateBusTicketRequest struct {
	ID            string         `json:"id"`
	SaleDate      *string        `json:"saleDate,omitempty"`
	Name          *string        `json:"name,omitempty"`
	Document      *string        `json:"document,omitempty"`
	TotalPeople   *int           `json:"totalPeople,omitempty"`
	Days          []string       `json:"days,omitempty"`
	UnitPrice     *float64       `json:"unitPrice,omitempty"`
	ExtraPeople   *[]ExtraPerson `json:"extraPeople,omitempty"`
	AmountPaid    *float64       `json:"amountPaid,omitempty"`
	PaymentMethod *string        `json:"paymentMethod,omitempty"`
	Status        *string        `json:"status,omitempty"`
	Event         *string        `json:"event,omitempty"`
	Notes         *string        `json:"notes,omitempty"`
}

type DeleteBusTicketRequest struct {
	ID string `json:"id"`
}

type BusTicketResponse struct {
	BusTicket *BusTicket `json:"busTicket"`
}

// BusTicketGrpcHandler は BusTicketService の gRPC 実装です。
type BusTicketGrpcHandler struct {
	svc busticket.UseCase
}

var _ BusTicketServiceServer = (*BusTicketGrpcHandler)(nil)

// NewBusTicketGrpcHandler は BusTicketGrpcHandler を生成します。
func NewBusTicketGrpcHandler(svc busticket.UseCase) *BusTicketGrpcHandler {
	return &BusTicketGrpcHandler{svc: svc}
}

// ListBusTickets は販売日の新しい順で乗車券を返します。
func (h *BusTicketGrpcHandler) ListBusTickets(ctx context.Context, _ *ListBusTicketsRequest) (*ListBusTicketsResponse, error) {
	tickets, err := h.svc.ListBusTickets(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	out := make([]*BusTicket, 0, len(tickets))
	for _, b := range tickets {
		out = append(out, toBusTicketMessage(b))
	}
	return &ListBusTicketsResponse{BusTickets: out}, nil
}

// CreateBusTicket は乗車券を作成します。
func (h *BusTicketGrpcHandler) CreateBusTicket(ctx context.Context, req *CreateBusTicketRequest) (*BusTicketResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	saleDate, err := parseSaleDate(req.SaleDate)
	if err != nil {
		return nil, toStatusError(err)
	}

	created, err := h.svc.CreateBusTicket(ctx, busticket.CreateBusTicketInput{
		Actor:         a,
		SaleDate:      saleDate,
		Name:          req.Name,
		Document:      req.Document,
		TotalPeople:   req.TotalPeople,
		Days:          toDomainDays(req.Days),
		UnitPrice:     req.UnitPrice,
		ExtraPeople:   toDomainExtraPeople(req.ExtraPeople),
		AmountPaid:    req.AmountPaid,
		PaymentMethod: busticket.PaymentMethod(req.PaymentMethod),
		Status:        busticket.Status(strings.ToUpper(req.Status)),
		Event:         req.Event,
		Notes:         req.Notes,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &BusTicketResponse{BusTicket: toBusTicketMessage(created)}, nil
}

// UpdateBusTicket は乗車券を部分更新します。
func (h *BusTicketGrpcHandler) UpdateBusTicket(ctx context.Context, req *UpdateBusTicketRequest) (*BusTicketResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}

	in := busticket.UpdateBusTicketInput{
		ID:          req.ID,
		Actor:       a,
		Name:        req.Name,
		Document:    req.Document,
		TotalPeople: req.TotalPeople,
		UnitPrice:   req.UnitPrice,
		AmountPaid:  req.AmountPaid,
		Event:       req.Event,
		Notes:       req.Notes,
	}
	if req.SaleDate != nil {
		saleDate, err := parseSaleDate(*req.SaleDate)
		if err != nil {
			return nil, toStatusError(err)
		}
		in.SaleDate = &saleDate
	}
	if req.Days != nil {
		in.Days = toDomainDays(req.Days)
	}
	if req.ExtraPeople != nil {
		people := toDomainExtraPeople(*req.ExtraPeople)
		in.ExtraPeople = &people
	}
	if req.PaymentMethod != nil {
		method := busticket.PaymentMethod(*req.PaymentMethod)
		in.PaymentMethod = &method
	}
	if req.Status != nil {
		st := busticket.Status(strings.ToUpper(*req.Status))
		in.Status = &st
	}

	updated, err := h.svc.UpdateBusTicket(ctx, in)
	if err != nil {
		return nil, toStatusError(err)
	}
	return &BusTicketResponse{BusTicket: toBusTicketMessage(updated)}, nil
}

// DeleteBusTicket は乗車券を削除します。
func (h *BusTicketGrpcHandler) DeleteBusTicket(ctx context.Context, req *DeleteBusTicketRequest) (*Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	if err := h.svc.DeleteBusTicket(ctx, busticket.DeleteBusTicketInput{ID: req.ID, Actor: a}); err != nil {
		return nil, toStatusError(err)
	}
	return &Empty{}, nil
}

func parseSaleDate(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, busticket.ErrInvalidSaleDate
	}
	t, err := record.ParseInstant(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %v", busticket.ErrInvalidSaleDate, err)
	}
	return t, nil
}

func toDomainDays(days []string) []busticket.Day {
	out := make([]busticket.Day, 0, len(days))
	for _, d := range days {
		out = append(out, busticket.Day(d))
	}
	return out
}

func toDomainExtraPeople(people []ExtraPerson) []busticket.ExtraPerson {
	out := make([]busticket.ExtraPerson, 0, len(people))
	for _, p := range people {
		out = append(out, busticket.ExtraPerson{ID: p.ID, Name: p.Name, Document: p.Document})
	}
	return out
}

func toBusTicketMessage(b *busticket.BusTicket) *BusTicket {
	if b == nil {
		return nil
	}
	msg := &BusTicket{
		ID:            b.ID,
		SaleDate:      record.FormatInstant(b.SaleDate),
		Name:          b.Name,
		Document:      b.Document,
		TotalPeople:   b.TotalPeople,
		Days:          make([]string, 0, len(b.Days)),
		UnitPrice:     b.UnitPrice,
		ExtraPeople:   make([]ExtraPerson, 0, len(b.ExtraPeople)),
		TotalAmount:   b.TotalAmount,
		AmountPaid:    b.AmountPaid,
		Change:        b.Change,
		PaymentMethod: string(b.PaymentMethod),
		Status:        string(b.Status),
		Event:         b.Event,
		Notes:         b.Notes,
	}
	for _, d := range b.Days {
		msg.Days = append(msg.Days, string(d))
	}
	for _, p := range b.ExtraPeople {
		msg.ExtraPeople = append(msg.ExtraPeople, ExtraPerson{ID: p.ID, Name: p.Name, Document: p.Document})
	}
	return msg
}
