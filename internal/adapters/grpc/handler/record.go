package handler

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/congregation-records/internal/core/record"
)

// RecordServiceName は汎用レコードサービスの完全修飾名です。
const RecordServiceName = "congregation.record.v1.RecordService"

// RecordServiceServer は汎用レコードサービスのサーバーインターフェースです。
type RecordServiceServer interface {
	ListRecords(context.Context, *ListRecordsRequest) (*ListRecordsResponse, error)
	CreateRecord(context.Context, *CreateRecordRequest) (*RecordResponse, error)
	UpdateRecord(context.Context, *UpdateRecordRequest) (*RecordResponse, error)
	ArchiveRecord(context.Context, *RecordRefRequest) (*Empty, error)
	DeleteRecord(context.Context, *RecordRefRequest) (*Empty, error)
}

// RecordServiceDesc は汎用レコードサービスの記述子です。
var RecordServiceDesc = grpc.ServiceDesc{
	ServiceName: RecordServiceName,
	HandlerType: (*RecordServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryMethod(RecordServiceName, "ListRecords", RecordServiceServer.ListRecords),
		unaryMethod(RecordServiceName, "CreateRecord", RecordServiceServer.CreateRecord),
		unaryMethod(RecordServiceName, "UpdateRecord", RecordServiceServer.UpdateRecord),
		unaryMethod(RecordServiceName, "ArchiveRecord", RecordServiceServer.ArchiveRecord),
		unaryMethod(RecordServiceName, "DeleteRecord", RecordServiceServer.DeleteRecord),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "congregation/record/v1/record.json",
}

// Empty は本文を持たないレスポンスです。
type Empty struct{}

type ListRecordsRequest struct {
	Collection string `json:"collection"`
	SortField  string `json:"sortField,omitempty"`
	Direction  string `json:"direction,omitempty"`
}

type ListRecordsResponse struct {
	Records []record.Document `json:"records"`
}

type CreateRecordRequest struct {
	Collection string          `json:"collection"`
	Data       record.Document `json:"data"`
}

// UpdateRecordRequest の Patch で null を指定したフィールドは削除されます。
type UpdateRecordRequest struct {
	Collection string          `json:"collection"`
	ID         string          `json:"id"`
	Patch      record.Document `json:"patch"`
}

type RecordRefRequest struct {
	Collection string `json:"collection"`
	ID         string `json:"id"`
}

type RecordResponse struct {
	Record record.Document `json:"record"`
}

// RecordGrpcHandler は RecordService の gRPC 実装です。
type RecordGrpcHandler struct {
	svc record.UseCase
}

var _ RecordServiceServer = (*RecordGrpcHandler)(nil)

// NewRecordGrpcHandler は RecordGrpcHandler を生成します。
func NewRecordGrpcHandler(svc record.UseCase) *RecordGrpcHandler {
	return &RecordGrpcHandler{svc: svc}
}

// ListRecords はコレクションの有効なレコードを返します。
func (h *RecordGrpcHandler) ListRecords(ctx context.Context, req *ListRecordsRequest) (*ListRecordsResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	docs, err := h.svc.ListRecords(ctx, record.ListRecordsInput{
		Collection: req.Collection,
		SortField:  req.SortField,
		Direction:  record.Direction(req.Direction),
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	if docs == nil {
		docs = []record.Document{}
	}
	return &ListRecordsResponse{Records: docs}, nil
}

// CreateRecord はレコードを作成します。
func (h *RecordGrpcHandler) CreateRecord(ctx context.Context, req *CreateRecordRequest) (*RecordResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	created, err := h.svc.CreateRecord(ctx, record.CreateRecordInput{
		Collection: req.Collection,
		Actor:      a,
		Data:       req.Data,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &RecordResponse{Record: created}, nil
}

// UpdateRecord はレコードを部分更新します。
func (h *RecordGrpcHandler) UpdateRecord(ctx context.Context, req *UpdateRecordRequest) (*RecordResponse, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	updated, err := h.svc.UpdateRecord(ctx, record.UpdateRecordInput{
		Collection: req.Collection,
		ID:         req.ID,
		Actor:      a,
		Patch:      req.Patch,
	})
	if err != nil {
		return nil, toStatusError(err)
	}
	return &RecordResponse{Record: updated}, nil
}

// ArchiveRecord はレコードを論理削除します。
func (h *RecordGrpcHandler) ArchiveRecord(ctx context.Context, req *RecordRefRequest) (*Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	if err = h.svc.ArchiveRecord(ctx, record.ArchiveRecordInput{
		Collection: req.Collection,
		ID:         req.ID,
		Actor:      a,
	}); err != nil {
		return nil, toStatusError(err)
	}
	return &Empty{}, nil
}

// DeleteRecord はレコードを物理削除します。
func (h *RecordGrpcHandler) DeleteRecord(ctx context.Context, req *RecordRefRequest) (*Empty, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	a, err := actorFromContext(ctx)
	if err != nil {
		return nil, toStatusError(err)
	}
	if err = h.svc.DeleteRecord(ctx, record.DeleteRecordInput{
		Collection: req.Collection,
		ID:         req.ID,
		Actor:      a,
	}); err != nil {
		return nil, toStatusError(err)
	}
	return &Empty{}, nil
}
