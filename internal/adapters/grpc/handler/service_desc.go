package handler

import (
	"context"

	"google.golang.org/grpc"
)

// unaryMethod は JSON コーデックで復号したリクエストを型付きのハンドラへ渡す MethodDesc を生成します。
func unaryMethod[S any, Req any, Resp any](service, method string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + method
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Register は全サービスを gRPC サーバーに登録します。
func Register(s grpc.ServiceRegistrar, territories *TerritoryGrpcHandler, records *RecordGrpcHandler, tickets *BusTicketGrpcHandler) {
	s.RegisterService(&TerritoryServiceDesc, territories)
	s.RegisterService(&RecordServiceDesc, records)
	s.RegisterService(&BusTicketServiceDesc, tickets)
}
