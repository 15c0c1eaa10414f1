package record

import (
	"context"
	"fmt"
	"strings"

	"github.com/ogurasousui/congregation-records/internal/core/actor"
)

// UseCase は汎用レコード API のユースケースです。
type UseCase interface {
	ListRecords(ctx context.Context, in ListRecordsInput) ([]Document, error)
	CreateRecord(ctx context.Context, in CreateRecordInput) (Document, error)
	UpdateRecord(ctx context.Context, in UpdateRecordInput) (Document, error)
	ArchiveRecord(ctx context.Context, in ArchiveRecordInput) error
	DeleteRecord(ctx context.Context, in DeleteRecordInput) error
}

// Service は Store の前段で入力検証と役割の確認を行います。
// 作成は OpenSubmission のコレクションに限り出版者にも許可し、それ以外の書き込みは奉仕者のみです。
type Service struct {
	store Store
}

// NewService は Service を生成します。
func NewService(store Store) *Service {
	return &Service{store: store}
}

// ListRecordsInput は一覧取得時の入力です。
type ListRecordsInput struct {
	Collection string
	SortField  string
	Direction  Direction
}

// CreateRecordInput はレコード作成時の入力です。
type CreateRecordInput struct {
	Collection string
	Actor      actor.Actor
	Data       Document
}

// UpdateRecordInput はレコード更新時の入力です。
type UpdateRecordInput struct {
	Collection string
	ID         string
	Actor      actor.Actor
	Patch      Document
}

// ArchiveRecordInput は論理削除時の入力です。
type ArchiveRecordInput struct {
	Collection string
	ID         string
	Actor      actor.Actor
}

// DeleteRecordInput は物理削除時の入力です。
type DeleteRecordInput struct {
	Collection string
	ID         string
	Actor      actor.Actor
}

// ListRecords はコレクションの有効なレコードを返します。
func (s *Service) ListRecords(ctx context.Context, in ListRecordsInput) ([]Document, error) {
	c, err := LookupCollection(strings.TrimSpace(in.Collection))
	if err != nil {
		return nil, err
	}
	return s.store.List(ctx, c, ListOptions{SortField: in.SortField, Direction: in.Direction})
}

// CreateRecord はレコードを作成します。
func (s *Service) CreateRecord(ctx context.Context, in CreateRecordInput) (Document, error) {
	c, err := writableCollection(in.Collection)
	if err != nil {
		return nil, err
	}
	if err := in.Actor.Validate(); err != nil {
		return nil, err
	}
	if !c.CanCreate(in.Actor.Role) {
		if err := in.Actor.RequireServant(); err != nil {
			return nil, err
		}
	}
	if in.Data == nil {
		return nil, fieldError("data", "is required")
	}
	return s.store.Create(ctx, c, in.Data, strings.TrimSpace(in.Actor.ID))
}

// UpdateRecord はレコードを部分更新します。
func (s *Service) UpdateRecord(ctx context.Context, in UpdateRecordInput) (Document, error) {
	c, err := writableCollection(in.Collection)
	if err != nil {
		return nil, err
	}
	if err := in.Actor.RequireServant(); err != nil {
		return nil, err
	}
	id, err := normalizeID(in.ID)
	if err != nil {
		return nil, err
	}
	return s.store.Update(ctx, c, id, in.Patch, strings.TrimSpace(in.Actor.ID))
}

// ArchiveRecord はレコードを論理削除します。
func (s *Service) ArchiveRecord(ctx context.Context, in ArchiveRecordInput) error {
	c, err := writableCollection(in.Collection)
	if err != nil {
		return err
	}
	if err := in.Actor.RequireServant(); err != nil {
		return err
	}
	if !c.Archivable() {
		return fmt.Errorf("%w: archive %s", ErrUnsupportedOperation, c.Name)
	}
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}
	return s.store.Archive(ctx, c, id, strings.TrimSpace(in.Actor.ID))
}

// DeleteRecord はレコードを物理削除します。
func (s *Service) DeleteRecord(ctx context.Context, in DeleteRecordInput) error {
	c, err := LookupCollection(strings.TrimSpace(in.Collection))
	if err != nil {
		return err
	}
	if err := in.Actor.RequireServant(); err != nil {
		return err
	}
	if !c.Deletable() {
		return fmt.Errorf("%w: delete %s", ErrUnsupportedOperation, c.Name)
	}
	id, err := normalizeID(in.ID)
	if err != nil {
		return err
	}
	return s.store.HardDelete(ctx, c, id)
}

func writableCollection(name string) (Collection, error) {
	c, err := LookupCollection(strings.TrimSpace(name))
	if err != nil {
		return Collection{}, err
	}
	if c.Managed {
		return Collection{}, fmt.Errorf("%w: %s is managed by its own service", ErrUnsupportedOperation, c.Name)
	}
	return c, nil
}

func normalizeID(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", ErrInvalidID
	}
	return trimmed, nil
}
