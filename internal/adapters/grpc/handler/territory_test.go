package handler

import (
	"context"
	"errors"
	"testing"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/ogurasousui/congregation-records/internal/core/actor"
	"github.com/ogurasousui/congregation-records/internal/core/territory"
)

type stubTerritoryUseCase struct {
	listOut []*territory.Territory
	listErr error

	getInput territory.GetTerritoryInput
	getOut   *territory.Territory
	getErr   error

	requestInput territory.RequestTerritoryInput
	requestOut   *territory.Territory
	requestErr   error

	transitionInput territory.TransitionInput
	transitionOut   *territory.Territory
	transitionErr   error

	due territory.DueState
}

func (s *stubTerritoryUseCase) ListTerritories(ctx context.Context) ([]*territory.Territory, error) {
	return s.listOut, s.listErr
}

func (s *stubTerritoryUseCase) GetTerritory(ctx context.Context, in territory.GetTerritoryInput) (*territory.Territory, error) {
	s.getInput = in
	return s.getOut, s.getErr
}

func (s *stubTerritoryUseCase) RequestTerritory(ctx context.Context, in territory.RequestTerritoryInput) (*territory.Territory, error) {
	s.requestInput = in
	return s.requestOut, s.requestErr
}

func (s *stubTerritoryUseCase) ApproveTerritory(ctx context.Context, in territory.TransitionInput) (*territory.Territory, error) {
	s.transitionInput = in
	return s.transitionOut, s.transitionErr
}

func (s *stubTerritoryUseCase) RejectTerritory(ctx context.Context, in territory.TransitionInput) (*territory.Territory, error) {
	s.transitionInput = in
	return s.transitionOut, s.transitionErr
}

func (s *stubTerritoryUseCase) ReturnTerritory(ctx context.Context, in territory.TransitionInput) (*territory.Territory, error) {
	s.transitionInput = in
	return s.transitionOut, s.transitionErr
}

func (s *stubTerritoryUseCase) Due(t *territory.Territory) territory.DueState {
	if t.Status != territory.StatusAssigned {
		return territory.DueNotApplicable
	}
	return s.due
}

func withActor(ctx context.Context, id, role string) context.Context {
	return metadata.NewIncomingContext(ctx, metadata.Pairs(MetadataActorID, id, MetadataActorRole, role))
}

func TestTerritoryGrpcHandler_ListTerritories(t *testing.T) {
	t.Parallel()

	now := time.Date(2024, 8, 1, 10, 0, 0, 0, time.UTC)
	stub := &stubTerritoryUseCase{listOut: territory.Fixture(now), due: territory.DueOnTime}
	handler := NewTerritoryGrpcHandler(stub)

	resp, err := handler.ListTerritories(context.Background(), &ListTerritoriesRequest{})
	if err != nil {
		t.Fatalf("ListTerritories returned error: %v", err)
	}
	if len(resp.Territories) != territory.FixtureSize {
		t.Fatalf("expected %d territories, got %d", territory.FixtureSize, len(resp.Territories))
	}

	assigned := resp.Territories[4]
	if assigned.Status != "ASSIGNED" || assigned.Due != string(territory.DueOnTime) {
		t.Fatalf("unexpected assigned territory: %+v", assigned)
	}
	if assigned.Assignment == nil || assigned.Assignment.CheckoutDate != "2024-07-12T10:00:00.000Z" {
		t.Fatalf("unexpected assignment: %+v", assigned.Assignment)
	}
	if resp.Territories[0].Assignment != nil || resp.Territories[0].Due != "" {
		t.Fatalf("available territory must not carry assignment or due state: %+v", resp.Territories[0])
	}
}

func TestTerritoryGrpcHandler_RequestTerritory(t *testing.T) {
	t.Parallel()

	notes := "perto da escola"
	stub := &stubTerritoryUseCase{requestOut: &territory.Territory{ID: "T1", Number: 1, Status: territory.StatusRequested,
		Assignment: &territory.Assignment{PublisherName: "Maria"}}}
	handler := NewTerritoryGrpcHandler(stub)

	ctx := withActor(context.Background(), "publisher-1", "publisher")
	resp, err := handler.RequestTerritory(ctx, &RequestTerritoryRequest{
		ID:                 "T1",
		PublisherName:      "Maria",
		ExpectedReturnDate: "2024-09-01",
		Notes:              &notes,
	})
	if err != nil {
		t.Fatalf("RequestTerritory returned error: %v", err)
	}
	if resp.Territory.Status != "REQUESTED" {
		t.Fatalf("unexpected status: %s", resp.Territory.Status)
	}

	in := stub.requestInput
	if in.Actor.ID != "publisher-1" || in.Actor.Role != actor.RolePublisher {
		t.Fatalf("unexpected actor: %+v", in.Actor)
	}
	if !in.ExpectedReturnDate.Equal(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)) || in.Notes != &notes {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestTerritoryGrpcHandler_RequestTerritory_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  context.Context
		req  *RequestTerritoryRequest
		want codes.Code
	}{
		{
			name: "missing actor",
			ctx:  context.Background(),
			req:  &RequestTerritoryRequest{ID: "T1", PublisherName: "Maria", ExpectedReturnDate: "2024-09-01"},
			want: codes.Unauthenticated,
		},
		{
			name: "unknown role",
			ctx:  withActor(context.Background(), "someone", "elder"),
			req:  &RequestTerritoryRequest{ID: "T1", PublisherName: "Maria", ExpectedReturnDate: "2024-09-01"},
			want: codes.InvalidArgument,
		},
		{
			name: "bad return date",
			ctx:  withActor(context.Background(), "publisher-1", ""),
			req:  &RequestTerritoryRequest{ID: "T1", PublisherName: "Maria", ExpectedReturnDate: "next month"},
			want: codes.InvalidArgument,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := NewTerritoryGrpcHandler(&stubTerritoryUseCase{})
			_, err := handler.RequestTerritory(tt.ctx, tt.req)
			if status.Code(err) != tt.want {
				t.Fatalf("expected %s, got %v", tt.want, err)
			}
		})
	}
}

func TestTerritoryGrpcHandler_Transitions_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want codes.Code
	}{
		{name: "not found", err: territory.ErrTerritoryNotFound, want: codes.NotFound},
		{name: "invalid transition", err: territory.ErrInvalidTransition, want: codes.FailedPrecondition},
		{name: "permission denied", err: territory.ErrPermissionDenied, want: codes.PermissionDenied},
		{name: "unexpected", err: errors.New("boom"), want: codes.Internal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			stub := &stubTerritoryUseCase{transitionErr: tt.err}
			handler := NewTerritoryGrpcHandler(stub)
			ctx := withActor(context.Background(), "servant-1", "SERVANT")

			_, err := handler.ApproveTerritory(ctx, &TerritoryTransitionRequest{ID: "T12"})
			if status.Code(err) != tt.want {
				t.Fatalf("expected %s, got %v", tt.want, err)
			}
			if stub.transitionInput.ID != "T12" || !stub.transitionInput.Actor.IsServant() {
				t.Fatalf("unexpected transition input: %+v", stub.transitionInput)
			}
		})
	}
}
