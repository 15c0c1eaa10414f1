package handler

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/congregation-records/internal/core/actor"
	"github.com/ogurasousui/congregation-records/internal/core/busticket"
	"github.com/ogurasousui/congregation-records/internal/core/record"
	"github.com/ogurasousui/congregation-records/internal/core/territory"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, actor.ErrInvalidActor):
		return status.Error(codes.Unauthenticated, err.Error())
	case errors.Is(err, actor.ErrPermissionDenied):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, record.ErrNotFound),
		errors.Is(err, territory.ErrTerritoryNotFound),
		errors.Is(err, busticket.ErrBusTicketNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, territory.ErrInvalidTransition), errors.Is(err, record.ErrUnsupportedOperation):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, record.ErrTransport):
		return status.Error(codes.Unavailable, err.Error())
	case errors.Is(err, record.ErrValidation):
		return withFieldViolation(err)
	case errors.Is(err, actor.ErrInvalidRole),
		errors.Is(err, record.ErrUnknownCollection),
		errors.Is(err, record.ErrInvalidID),
		errors.Is(err, territory.ErrInvalidID),
		errors.Is(err, territory.ErrInvalidPublisherName),
		errors.Is(err, territory.ErrInvalidReturnDate),
		errors.Is(err, busticket.ErrInvalidID),
		errors.Is(err, busticket.ErrInvalidName),
		errors.Is(err, busticket.ErrInvalidTotalPeople),
		errors.Is(err, busticket.ErrInvalidDays),
		errors.Is(err, busticket.ErrInvalidAmount),
		errors.Is(err, busticket.ErrInvalidStatus),
		errors.Is(err, busticket.ErrInvalidPaymentMethod),
		errors.Is(err, busticket.ErrInvalidSaleDate):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

// withFieldViolation は FieldError を BadRequest の詳細として付与します。
func withFieldViolation(err error) error {
	st := status.New(codes.InvalidArgument, err.Error())
	var fe *record.FieldError
	if !errors.As(err, &fe) {
		return st.Err()
	}
	detailed, detailErr := st.WithDetails(&errdetails.BadRequest{
		FieldViolations: []*errdetails.BadRequest_FieldViolation{
			{Field: fe.Field, Description: fe.Reason},
		},
	})
	if detailErr != nil {
		return st.Err()
	}
	return detailed.Err()
}
