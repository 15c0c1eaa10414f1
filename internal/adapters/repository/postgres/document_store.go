package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ogurasousui/congregation-records/internal/core/record"
	pgdb "github.com/ogurasousui/congregation-records/internal/platform/db/postgres"
)

const documentColumns = `id, data, created_at, created_by, updated_at, updated_by, is_active`

// Transactor は読み書きトランザクションを提供します。
type Transactor interface {
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type directTransactor struct{}

func (directTransactor) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}

// DocumentStore は PostgreSQL の documents テーブルを利用した record.Store の実装です。
// 任意フィールドは JSONB に、監査メタデータはネイティブの列に格納します。
type DocumentStore struct {
	pool  pgdb.Queryer
	tx    Transactor
	clock record.Clock
	newID func() string
}

var _ record.Store = (*DocumentStore)(nil)

// DocumentStoreOption は DocumentStore の設定を変更します。
type DocumentStoreOption func(*DocumentStore)

// WithDocumentClock は時刻の取得元を設定します。
func WithDocumentClock(clock record.Clock) DocumentStoreOption {
	return func(s *DocumentStore) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDocumentIDGenerator は ID 生成関数を設定します。
func WithDocumentIDGenerator(gen func() string) DocumentStoreOption {
	return func(s *DocumentStore) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewDocumentStore は DocumentStore を生成します。tx が nil の場合はトランザクションを張らずに実行します。
func NewDocumentStore(pool pgdb.Queryer, tx Transactor, opts ...DocumentStoreOption) *DocumentStore {
	if tx == nil {
		tx = directTransactor{}
	}
	s := &DocumentStore{
		pool:  pool,
		tx:    tx,
		clock: record.SystemClock{},
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// List はコレクションの一覧を取得します。
func (s *DocumentStore) List(ctx context.Context, c record.Collection, opts record.ListOptions) ([]record.Document, error) {
	spec, err := record.ResolveSort(c, opts)
	if err != nil {
		return nil, err
	}

	query := `
        SELECT ` + documentColumns + `
          FROM documents
         WHERE collection = $1` + activeCondition(c.Filter) + `
         ORDER BY id
    `

	exec := pgdb.QueryerFromContext(ctx, s.pool)
	rows, err := exec.Query(ctx, query, c.Name)
	if err != nil {
		return nil, translateDocumentPgError(err)
	}
	defer rows.Close()

	var docs []record.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, translateDocumentPgError(err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, translateDocumentPgError(err)
	}

	if docs == nil {
		docs = []record.Document{}
	}
	record.SortDocuments(docs, spec)
	return docs, nil
}

// Get は ID でレコードを取得します。
func (s *DocumentStore) Get(ctx context.Context, c record.Collection, id string) (record.Document, error) {
	exec := pgdb.QueryerFromContext(ctx, s.pool)
	row := exec.QueryRow(ctx, `
        SELECT `+documentColumns+`
          FROM documents
         WHERE collection = $1 AND id = $2
    `, c.Name, id)

	doc, err := scanDocument(row)
	if err != nil {
		return nil, translateDocumentPgError(err)
	}
	return doc, nil
}

// Create はレコードを作成します。
func (s *DocumentStore) Create(ctx context.Context, c record.Collection, data record.Document, actorID string) (record.Document, error) {
	doc, err := record.PrepareCreate(c, data, s.newID(), actorID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	payload, meta, err := splitDocument(doc)
	if err != nil {
		return nil, err
	}

	exec := pgdb.QueryerFromContext(ctx, s.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO documents (collection, id, data, created_at, created_by, updated_at, updated_by, is_active)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+documentColumns+`
    `, c.Name, doc.ID(), payload, meta.createdAt, meta.createdBy, meta.updatedAt, meta.updatedBy, meta.isActive)

	created, err := scanDocument(row)
	if err != nil {
		return nil, translateDocumentPgError(err)
	}
	return created, nil
}

// Update は行ロックを取得してからパッチを適用します。
func (s *DocumentStore) Update(ctx context.Context, c record.Collection, id string, patch record.Document, actorID string) (record.Document, error) {
	return s.rewrite(ctx, c, id, func(existing record.Document) (record.Document, error) {
		return record.ApplyPatch(c, existing, patch, actorID, s.clock.Now())
	})
}

// Archive はレコードを論理削除します。
func (s *DocumentStore) Archive(ctx context.Context, c record.Collection, id string, actorID string) error {
	if !c.Archivable() {
		return fmt.Errorf("%w: archive %s", record.ErrUnsupportedOperation, c.Name)
	}
	_, err := s.rewrite(ctx, c, id, func(existing record.Document) (record.Document, error) {
		return record.ApplyArchive(c, existing, actorID, s.clock.Now())
	})
	return err
}

func (s *DocumentStore) rewrite(ctx context.Context, c record.Collection, id string, apply func(existing record.Document) (record.Document, error)) (record.Document, error) {
	var updated record.Document
	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		exec := pgdb.QueryerFromContext(txCtx, s.pool)
		existing, err := scanDocument(exec.QueryRow(txCtx, `
            SELECT `+documentColumns+`
              FROM documents
             WHERE collection = $1 AND id = $2
               FOR UPDATE
        `, c.Name, id))
		if err != nil {
			return err
		}

		next, err := apply(existing)
		if err != nil {
			return err
		}
		payload, meta, err := splitDocument(next)
		if err != nil {
			return err
		}

		updated, err = scanDocument(exec.QueryRow(txCtx, `
            UPDATE documents
               SET data = $3,
                   updated_at = $4,
                   updated_by = $5,
                   is_active = $6
             WHERE collection = $1 AND id = $2
            RETURNING `+documentColumns+`
        `, c.Name, id, payload, meta.updatedAt, meta.updatedBy, meta.isActive))
		return err
	})
	if err != nil {
		return nil, translateDocumentPgError(err)
	}
	return updated, nil
}

// HardDelete はレコードを物理削除します。
func (s *DocumentStore) HardDelete(ctx context.Context, c record.Collection, id string) error {
	if !c.Deletable() {
		return fmt.Errorf("%w: delete %s", record.ErrUnsupportedOperation, c.Name)
	}
	exec := pgdb.QueryerFromContext(ctx, s.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM documents WHERE collection = $1 AND id = $2`, c.Name, id)
	if err != nil {
		return translateDocumentPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s/%s", record.ErrNotFound, c.Name, id)
	}
	return nil
}

// Seed はレコードが 1 件も無いコレクションにのみ初期データをそのまま書き込みます。
// ID と監査メタデータは入力の値を保持します。
func (s *DocumentStore) Seed(ctx context.Context, fixtures map[string][]record.Document) error {
	names := make([]string, 0, len(fixtures))
	for name := range fixtures {
		names = append(names, name)
	}
	sort.Strings(names)

	err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		exec := pgdb.QueryerFromContext(txCtx, s.pool)
		for _, name := range names {
			docs := fixtures[name]
			if len(docs) == 0 {
				continue
			}
			var exists bool
			if err := exec.QueryRow(txCtx, `SELECT EXISTS (SELECT 1 FROM documents WHERE collection = $1)`, name).Scan(&exists); err != nil {
				return err
			}
			if exists {
				continue
			}
			for _, doc := range docs {
				payload, meta, err := splitDocument(doc)
				if err != nil {
					return err
				}
				if _, err := exec.Exec(txCtx, `
                    INSERT INTO documents (collection, id, data, created_at, created_by, updated_at, updated_by, is_active)
                    VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                    ON CONFLICT (collection, id) DO NOTHING
                `, name, doc.ID(), payload, meta.createdAt, meta.createdBy, meta.updatedAt, meta.updatedBy, meta.isActive); err != nil {
					return err
				}
			}
		}
		return nil
	})
	return translateDocumentPgError(err)
}

func activeCondition(filter record.ActiveFilter) string {
	switch filter {
	case record.FilterStrict:
		return ` AND is_active = TRUE`
	case record.FilterLenient:
		return ` AND is_active IS DISTINCT FROM FALSE`
	default:
		return ""
	}
}

type documentMeta struct {
	createdAt any
	createdBy any
	updatedAt any
	updatedBy any
	isActive  any
}

// splitDocument は監査メタデータを列の値に、それ以外を JSONB ペイロードに分けます。
func splitDocument(doc record.Document) ([]byte, documentMeta, error) {
	var meta documentMeta
	var err error
	if meta.createdAt, err = instantColumn(doc, record.FieldCreatedAt); err != nil {
		return nil, meta, err
	}
	if meta.updatedAt, err = instantColumn(doc, record.FieldUpdatedAt); err != nil {
		return nil, meta, err
	}
	meta.createdBy = stringColumn(doc, record.FieldCreatedBy)
	meta.updatedBy = stringColumn(doc, record.FieldUpdatedBy)
	if v, ok := doc[record.FieldIsActive].(bool); ok {
		meta.isActive = v
	}

	payload := make(map[string]any, len(doc))
	for k, v := range doc {
		switch k {
		case record.FieldID, record.FieldCreatedAt, record.FieldCreatedBy, record.FieldUpdatedAt, record.FieldUpdatedBy, record.FieldIsActive:
			continue
		}
		payload[k] = v
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, meta, fmt.Errorf("%w: encode payload: %v", record.ErrValidation, err)
	}
	return b, meta, nil
}

func instantColumn(doc record.Document, field string) (any, error) {
	raw, ok := doc[field].(string)
	if !ok {
		return nil, nil
	}
	t, err := record.ParseInstant(raw)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func stringColumn(doc record.Document, field string) any {
	if v, ok := doc[field].(string); ok {
		return v
	}
	return nil
}

func scanDocument(row pgx.Row) (record.Document, error) {
	var (
		id                   string
		data                 []byte
		createdAt, updatedAt sql.NullTime
		createdBy, updatedBy sql.NullString
		isActive             sql.NullBool
	)

	if err := row.Scan(&id, &data, &createdAt, &createdBy, &updatedAt, &updatedBy, &isActive); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, record.ErrNotFound
		}
		return nil, err
	}

	doc := record.Document{}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("postgres: decode document %s: %w", id, err)
		}
	}
	doc[record.FieldID] = id
	if createdAt.Valid {
		doc[record.FieldCreatedAt] = record.FormatInstant(createdAt.Time)
	}
	if createdBy.Valid {
		doc[record.FieldCreatedBy] = createdBy.String
	}
	if updatedAt.Valid {
		doc[record.FieldUpdatedAt] = record.FormatInstant(updatedAt.Time)
	}
	if updatedBy.Valid {
		doc[record.FieldUpdatedBy] = updatedBy.String
	}
	if isActive.Valid {
		doc[record.FieldIsActive] = isActive.Bool
	}
	return doc, nil
}

func translateDocumentPgError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, record.ErrNotFound),
		errors.Is(err, record.ErrValidation),
		errors.Is(err, record.ErrUnsupportedOperation),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return err
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s (%s)", record.ErrTransport, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %w", record.ErrTransport, err)
}
