// Package records は record.Store の上に各ドメインのリポジトリを実装します。
package records

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ogurasousui/congregation-records/internal/core/record"
	"github.com/ogurasousui/congregation-records/internal/core/territory"
)

// TerritoryRepository は territorios コレクションを利用した区域リポジトリです。
type TerritoryRepository struct {
	store      record.Store
	collection record.Collection
}

var _ territory.Repository = (*TerritoryRepository)(nil)

// NewTerritoryRepository は TerritoryRepository を生成します。
func NewTerritoryRepository(store record.Store) *TerritoryRepository {
	return &TerritoryRepository{store: store, collection: record.MustCollection(record.CollectionTerritories)}
}

type territoryDocument struct {
	ID         string              `json:"id"`
	Number     int                 `json:"number"`
	Status     string              `json:"status"`
	Assignment *assignmentDocument `json:"assignment,omitempty"`
}

type assignmentDocument struct {
	PublisherName      string  `json:"publisherName"`
	RequestNotes       *string `json:"requestNotes,omitempty"`
	CheckoutDate       string  `json:"checkoutDate"`
	ExpectedReturnDate string  `json:"expectedReturnDate"`
}

// List は全区域を番号順で返します。
func (r *TerritoryRepository) List(ctx context.Context) ([]*territory.Territory, error) {
	docs, err := r.store.List(ctx, r.collection, record.ListOptions{})
	if err != nil {
		return nil, err
	}
	out := make([]*territory.Territory, 0, len(docs))
	for _, doc := range docs {
		t, err := DecodeTerritory(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// FindByID は ID で区域を取得します。
func (r *TerritoryRepository) FindByID(ctx context.Context, id string) (*territory.Territory, error) {
	doc, err := r.store.Get(ctx, r.collection, id)
	if err != nil {
		return nil, translateTerritoryError(err)
	}
	return DecodeTerritory(doc)
}

// Save は区域の状態と貸し出し情報を書き込みます。貸し出し情報が無い場合はフィールドを削除します。
func (r *TerritoryRepository) Save(ctx context.Context, t *territory.Territory, actorID string) (*territory.Territory, error) {
	doc, err := TerritoryDocument(t)
	if err != nil {
		return nil, err
	}
	delete(doc, record.FieldID)
	if _, ok := doc["assignment"]; !ok {
		doc["assignment"] = nil
	}

	saved, err := r.store.Update(ctx, r.collection, t.ID, doc, actorID)
	if err != nil {
		return nil, translateTerritoryError(err)
	}
	return DecodeTerritory(saved)
}

// TerritoryDocument は区域を保存形式に変換します。
func TerritoryDocument(t *territory.Territory) (record.Document, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil territory", record.ErrValidation)
	}
	td := territoryDocument{ID: t.ID, Number: t.Number, Status: string(t.Status)}
	if t.Assignment != nil {
		td.Assignment = &assignmentDocument{
			PublisherName:      t.Assignment.PublisherName,
			RequestNotes:       t.Assignment.RequestNotes,
			CheckoutDate:       record.FormatInstant(t.Assignment.CheckoutDate),
			ExpectedReturnDate: record.FormatInstant(t.Assignment.ExpectedReturnDate),
		}
	}
	return record.Normalize(td)
}

// DecodeTerritory は保存形式から区域を復元します。
func DecodeTerritory(doc record.Document) (*territory.Territory, error) {
	var td territoryDocument
	if err := record.Decode(doc, &td); err != nil {
		return nil, err
	}
	t := &territory.Territory{
		ID:     td.ID,
		Number: td.Number,
		Status: territory.Status(strings.ToUpper(td.Status)),
	}
	if !t.Status.Valid() {
		return nil, fmt.Errorf("%w: territory %s has status %q", territory.ErrInconsistentTerritory, td.ID, td.Status)
	}
	if td.Assignment != nil {
		checkout, err := record.ParseInstant(td.Assignment.CheckoutDate)
		if err != nil {
			return nil, fmt.Errorf("territory %s checkoutDate: %w", td.ID, err)
		}
		due, err := record.ParseInstant(td.Assignment.ExpectedReturnDate)
		if err != nil {
			return nil, fmt.Errorf("territory %s expectedReturnDate: %w", td.ID, err)
		}
		t.Assignment = &territory.Assignment{
			PublisherName:      td.Assignment.PublisherName,
			RequestNotes:       td.Assignment.RequestNotes,
			CheckoutDate:       checkout,
			ExpectedReturnDate: due,
		}
	}
	return t, nil
}

func translateTerritoryError(err error) error {
	if errors.Is(err, record.ErrNotFound) {
		return territory.ErrTerritoryNotFound
	}
	return err
}
