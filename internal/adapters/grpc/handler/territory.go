package handler

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/congregation-records/internal/core/record"
	"github.com/ogurasousui/congregation-records/internal/core/territory"
)

// TerritoryServiceName は区域サービスの完全修飾名です。
const TerritoryServiceName = "congregation.territory.v1.TerritoryService"

// TerritoryServiceServer は区域サービスのサーバーインターフェースです。
type TerritoryServiceServer interface {
	ListTerritories(context.Context, *ListTerritoriesRequest) (*ListTerritoriesResponse, error)
	GetTerritory(context.Context, *GetTerritoryRequest) (*TerritoryResponse, error)
	RequestTerritory(context.Context, *RequestTerritoryRequest) (*TerritoryResponse, error)
	ApproveTerritory(context.Context, *TerritoryTransitionRequest) (*TerritoryResponse, error)
	RejectTerritory(context.Context, *TerritoryTransitionRequest) (*TerritoryResponse, error)
	ReturnTerritory(context.Context, *TerritoryTransitionRequest) (*TerritoryResponse, error)
}

// TerritoryServiceDesc は区域サービスの記述子です。
var TerritoryServiceDesc = grpc.ServiceDesc{
	ServiceName: TerritoryServiceName,
	HandlerType: (*TerritoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(TerritoryServiceName, "ListTerritories", TerritoryServiceServer.ListTerritories),
		unaryMethod(TerritoryServiceName, "GetTerritory", TerritoryServiceServer.GetTerritory),
		unaryMethod(TerritoryServiceName, "RequestTerritory", TerritoryServiceServer.RequestTerritory),
		unaryMethod(TerritoryServiceName, "ApproveTerritory", TerritoryServiceServer.ApproveTerritory),
		unaryMethod(TerritoryServiceName, "RejectTerritory", TerritoryServiceServer.RejectTerritory),
		unaryMethod(TerritoryServiceName, "ReturnTerritory", TerritoryServiceServer.ReturnTerritory),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "congregation/territory/v1/territory.json",
}

// Territory は区域のメッセージ表現です。
type Territory struct {
	ID         string      `json:"id"`
	Number     int         `json:"number"`
	Status     string      `json:"status"`
	Assignment *Assignment `json:"assignment,omitempty"`
	Due        string      `json:"due,omitempty"`
}

// Assignment は貸し出し情報のメッセージ表現です。日時は ISO-8601 文字列です。
type Assignment struct {
	PublisherName      string  `json:"publisherName"`
	RequestNotes       *string `json:"requestNotes,omitempty"`
	CheckoutDate       string  `json:"checkoutDate"`
	ExpectedReturnDate string  `json:"expectedReturnDate"`
}

type ListTerritoriesRequest struct{}

type ListTerritoriesResponse struct {
	Territories []*Territory `json:"territories"`
}

type GetTerritoryRequest struct {
	ID string `json:"id"`
}

type RequestTerritoryRequest struct {
	ID                 string  `json:"id"`
	PublisherName      string  `json:"publisherName"`
	ExpectedReturnDate string  `json:"expectedReturnDate"`
	Notes              *string `json:"notes,omitempty"`
}

type TerritoryTransitionRequest struct {
	ID string `json:"id"`
}

type TerritoryResponse struct {
	Territory *Territory `json:"territory"`
}

// TerritoryGrpcHandler は TerritoryService の gRPC 実装です。
type TerritoryGrpcHandler struct {
	svc territory.UseCase
}

var _ TerritoryServiceServer = (*TerritoryGrpcHandler)(nil)

// NewTerritoryGrpcHandler は TerritoryGrpcHandler を生成します。
func NewTerritoryGrpcHandler(svc territory.UseCase) *TerritoryGrpcHandler {
	return &TerritoryGrpcHandler{svc: svc}
}

// ListTerritories は区域を番号順で返します。
func (h *TerritoryGrpcHandler) ListTerritories(ctx context.Context, _ *ListTerritoriesRequest) (*ListTerritoriesResponse, error) {
	territories, err := h.svc.ListTerritories(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	out := make([]*Territory, 0, len(territories))
	for _, t := range territories {
		out = append(out, h.toMessage(t))
	}
	return &ListTerritoriesResponse{Territories: out}, nil
}

// GetTerritory は区域を取得します。
func (h *TerritoryGrpcHandler) GetTerritory(ctx context.Context, req *GetTerritoryRequest) (*TerritoryResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	found, err := h.svc.GetTerritory(ctx, territory.GetTerritoryInput{ID: req.ID})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &TerritoryResponse{Territory: h.toMessage(found)}, nil
}

// RequestTerritory は区域の貸し出しを申請します。
func (h *TerritoryGrpcHandler) RequestTerritory(ctx context.Context, req *RequestTerritoryRequest) (*TerritoryResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	due, err := record.ParseInstant(req.ExpectedReturnDate)
	if err != nil {
		return nil, toStatusError(fmt.Errorf("%w: %v", territory.ErrInvalidReturnDate, err))
	}

	updated, err := h.svc.RequestTerritory(ctx, territory.RequestTerritoryInput{
		ID:                 req.ID,
		Actor:              a,
		PublisherName:      req.PublisherName,
		ExpectedReturnDate: due,
		Notes:              req.Notes,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &TerritoryResponse{Territory: h.toMessage(updated)}, nil
}

// ApproveTerritory は申請中の区域を承認します。
func (h *TerritoryGrpcHandler) ApproveTerritory(ctx context.Context, req *TerritoryTransitionRequest) (*TerritoryResponse, error) {
	return h.transition(ctx, req, h.svc.ApproveTerritory)
}

// RejectTerritory は申請中の区域を却下します。
func (h *TerritoryGrpcHandler) RejectTerritory(ctx context.Context, req *TerritoryTransitionRequest) (*TerritoryResponse, error) {
	return h.transition(ctx, req, h.svc.RejectTerritory)
}

// ReturnTerritory は貸し出し中の区域を返却済みにします。
func (h *TerritoryGrpcHandler) ReturnTerritory(ctx context.Context, req *TerritoryTransitionRequest) (*TerritoryResponse, error) {
	return h.transition(ctx, req, h.svc.ReturnTerritory)
}

func (h *TerritoryGrpcHandler) transition(ctx context.Context, req *TerritoryTransitionRequest, fn func(context.Context, territory.TransitionInput) (*territory.Territory, error)) (*TerritoryResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	updated, err := fn(ctx, territory.TransitionInput{ID: req.ID, Actor: a})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &TerritoryResponse{Territory: h.toMessage(updated)}, nil
}

func (h *TerritoryGrpcHandler) toMessage(t *territory.Territory) *Territory {
	if t == nil {
		return nil
	}
	msg := &Territory{
		ID:     t.ID,
		Number: t.Number,
		Status: string(t.Status),
		Due:    string(h.svc.Due(t)),
	}
	if t.Assignment != nil {
		msg.Assignment = &Assignment{
			PublisherName:      t.Assignment.PublisherName,
			RequestNotes:       t.Assignment.RequestNotes,
			CheckoutDate:       record.FormatInstant(t.Assignment.CheckoutDate),
			ExpectedReturnDate: record.FormatInstant(t.Assignment.ExpectedReturnDate),
		}
	}
	return msg
}
