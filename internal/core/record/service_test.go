package record

import (
	"context"
	"errors"
	"testing"

	"github.com/ogurasousui/congregation-records/internal/core/actor"
)

var (
	servant   = actor.Actor{ID: "servant-1", Role: actor.RoleServant}
	publisher = actor.Actor{ID: "publisher-1", Role: actor.RolePublisher}
)

type stubStore struct {
	listFn    func(ctx context.Context, c Collection, opts ListOptions) ([]Document, error)
	createFn  func(ctx context.Context, c Collection, data Document, actorID string) (Document, error)
	updateFn  func(ctx context.Context, c Collection, id string, patch Document, actorID string) (Document, error)
	archiveFn func(ctx context.Context, c Collection, id, actorID string) error
	deleteFn  func(ctx context.Context, c Collection, id string) error
}

func (s *stubStore) List(ctx context.Context, c Collection, opts ListOptions) ([]Document, error) {
	if s.listFn == nil {
		return nil, nil
	}
	return s.listFn(ctx, c, opts)
}

func (s *stubStore) Get(context.Context, Collection, string) (Document, error) {
	return nil, ErrNotFound
}

func (s *stubStore) Create(ctx context.Context, c Collection, data Document, actorID string) (Document, error) {
	if s.createFn == nil {
		return data, nil
	}
	return s.createFn(ctx, c, data, actorID)
}

func (s *stubStore) Update(ctx context.Context, c Collection, id string, patch Document, actorID string) (Document, error) {
	if s.updateFn == nil {
		return patch, nil
	}
	return s.updateFn(ctx, c, id, patch, actorID)
}

func (s *stubStore) Archive(ctx context.Context, c Collection, id, actorID string) error {
	if s.archiveFn == nil {
		return nil
	}
	return s.archiveFn(ctx, c, id, actorID)
}

func (s *stubStore) HardDelete(ctx context.Context, c Collection, id string) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, c, id)
}

func TestService_ListRecords(t *testing.T) {
	t.Parallel()

	var gotCollection string
	var gotOpts ListOptions
	svc := NewService(&stubStore{listFn: func(_ context.Context, c Collection, opts ListOptions) ([]Document, error) {
		gotCollection = c.Name
		gotOpts = opts
		return []Document{{FieldID: "1"}}, nil
	}})

	docs, err := svc.ListRecords(context.Background(), ListRecordsInput{Collection: " limpeza ", SortField: "date", Direction: DirectionAsc})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(docs) != 1 || gotCollection != CollectionCleaning || gotOpts.Direction != DirectionAsc {
		t.Fatalf("unexpected call: %s %+v", gotCollection, gotOpts)
	}

	if _, err := svc.ListRecords(context.Background(), ListRecordsInput{Collection: "nope"}); !errors.Is(err, ErrUnknownCollection) {
		t.Fatalf("expected ErrUnknownCollection, got %v", err)
	}
}

func TestService_CreateRecord(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubStore{createFn: func(_ context.Context, _ Collection, data Document, actorID string) (Document, error) {
		out := data.Clone()
		out[FieldCreatedBy] = actorID
		return out, nil
	}})

	doc, err := svc.CreateRecord(context.Background(), CreateRecordInput{
		Collection: CollectionCleaning,
		Actor:      actor.Actor{ID: " servant-1 ", Role: actor.RoleServant},
		Data:       Document{"date": "2024-08-01"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc[FieldCreatedBy] != "servant-1" {
		t.Fatalf("expected trimmed actor, got %v", doc[FieldCreatedBy])
	}

	tests := []struct {
		name string
		in   CreateRecordInput
		want error
	}{
		{name: "missing actor", in: CreateRecordInput{Collection: CollectionCleaning, Data: Document{}}, want: actor.ErrInvalidActor},
		{name: "unknown role", in: CreateRecordInput{Collection: CollectionReports, Actor: actor.Actor{ID: "a", Role: "ELDER"}, Data: Document{}}, want: actor.ErrInvalidRole},
		{name: "publisher on servant collection", in: CreateRecordInput{Collection: CollectionPublishers, Actor: publisher, Data: Document{}}, want: actor.ErrPermissionDenied},
		{name: "managed collection", in: CreateRecordInput{Collection: CollectionTerritories, Actor: servant, Data: Document{}}, want: ErrUnsupportedOperation},
		{name: "missing data", in: CreateRecordInput{Collection: CollectionCleaning, Actor: servant}, want: ErrValidation},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := svc.CreateRecord(context.Background(), tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestService_PublisherSubmissions(t *testing.T) {
	t.Parallel()

	var created []string
	svc := NewService(&stubStore{createFn: func(_ context.Context, c Collection, data Document, _ string) (Document, error) {
		created = append(created, c.Name)
		return data, nil
	}})
	ctx := context.Background()

	for _, name := range []string{CollectionReports, CollectionAttendance} {
		if _, err := svc.CreateRecord(ctx, CreateRecordInput{Collection: name, Actor: publisher, Data: Document{"date": "2024-08-01"}}); err != nil {
			t.Fatalf("publisher create %s: %v", name, err)
		}
	}
	if len(created) != 2 {
		t.Fatalf("expected two submissions, got %v", created)
	}

	for _, name := range []string{CollectionLifeMinistry, CollectionAssignments, CollectionCleaning, CollectionFieldService, CollectionConductors, CollectionShepherding, CollectionPublicTalks, CollectionPublishers} {
		if _, err := svc.CreateRecord(ctx, CreateRecordInput{Collection: name, Actor: publisher, Data: Document{}}); !errors.Is(err, actor.ErrPermissionDenied) {
			t.Fatalf("publisher create %s: expected ErrPermissionDenied, got %v", name, err)
		}
	}

	if _, err := svc.UpdateRecord(ctx, UpdateRecordInput{Collection: CollectionReports, ID: "r1", Actor: publisher, Patch: Document{"hours": 3}}); !errors.Is(err, actor.ErrPermissionDenied) {
		t.Fatalf("publisher update: expected ErrPermissionDenied, got %v", err)
	}
	if err := svc.ArchiveRecord(ctx, ArchiveRecordInput{Collection: CollectionReports, ID: "r1", Actor: publisher}); !errors.Is(err, actor.ErrPermissionDenied) {
		t.Fatalf("publisher archive: expected ErrPermissionDenied, got %v", err)
	}
	if err := svc.DeleteRecord(ctx, DeleteRecordInput{Collection: CollectionBusTickets, ID: "b1", Actor: publisher}); !errors.Is(err, actor.ErrPermissionDenied) {
		t.Fatalf("publisher delete: expected ErrPermissionDenied, got %v", err)
	}
}

func TestService_UpdateRecord_RequiresID(t *testing.T) {
	t.Parallel()

	svc := NewService(&stubStore{})
	if _, err := svc.UpdateRecord(context.Background(), UpdateRecordInput{Collection: CollectionCleaning, Actor: servant, ID: " "}); !errors.Is(err, ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestService_ArchiveAndDelete(t *testing.T) {
	t.Parallel()

	var archived, deleted string
	svc := NewService(&stubStore{
		archiveFn: func(_ context.Context, _ Collection, id, _ string) error {
			archived = id
			return nil
		},
		deleteFn: func(_ context.Context, _ Collection, id string) error {
			deleted = id
			return nil
		},
	})
	ctx := context.Background()

	if err := svc.ArchiveRecord(ctx, ArchiveRecordInput{Collection: CollectionCleaning, ID: "r1", Actor: servant}); err != nil || archived != "r1" {
		t.Fatalf("archive: err=%v id=%s", err, archived)
	}
	if err := svc.ArchiveRecord(ctx, ArchiveRecordInput{Collection: CollectionBusTickets, ID: "r1", Actor: servant}); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("archive raw: expected ErrUnsupportedOperation, got %v", err)
	}
	if err := svc.DeleteRecord(ctx, DeleteRecordInput{Collection: CollectionBusTickets, ID: "b1", Actor: servant}); err != nil || deleted != "b1" {
		t.Fatalf("delete: err=%v id=%s", err, deleted)
	}
	if err := svc.DeleteRecord(ctx, DeleteRecordInput{Collection: CollectionTerritories, ID: "T1", Actor: servant}); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("delete territory: expected ErrUnsupportedOperation, got %v", err)
	}
	if err := svc.DeleteRecord(ctx, DeleteRecordInput{Collection: CollectionCleaning, ID: "r1", Actor: servant}); !errors.Is(err, ErrUnsupportedOperation) {
		t.Fatalf("delete base: expected ErrUnsupportedOperation, got %v", err)
	}
}
