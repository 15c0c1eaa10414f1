package localkv

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/ogurasousui/congregation-records/internal/core/record"
)

// IDGenerator は新しいレコード ID を生成します。
type IDGenerator func(now time.Time) (string, error)

// NewULID は時刻順に並ぶ ULID を生成します。
func NewULID(now time.Time) (string, error) {
	id, err := ulid.New(ulid.Timestamp(now), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("localkv: generate id: %w", err)
	}
	return id.String(), nil
}

// Store は record.Store のローカル実装です。
// 1 コレクション 1 キーで、書き込みのたびに配列全体を書き換えます。
type Store struct {
	kv     KeyValue
	mu     sync.Mutex
	clock  record.Clock
	newID  IDGenerator
	logger zerolog.Logger
}

var _ record.Store = (*Store)(nil)

// Option は Store の設定を変更します。
type Option func(*Store)

// WithClock は時刻の取得元を設定します。
func WithClock(clock record.Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithIDGenerator は ID 生成関数を設定します。
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger はロガーを設定します。
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore は Store を生成します。
func NewStore(kv KeyValue, opts ...Option) *Store {
	s := &Store{
		kv:     kv,
		clock:  record.SystemClock{},
		newID:  NewULID,
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed は存在しないキーにのみ初期データを書き込みます。既存のキーは変更しません。
func (s *Store) Seed(ctx context.Context, fixtures map[string][]record.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, docs := range fixtures {
		_, ok, err := s.kv.Get(ctx, key)
		if err != nil {
			return err
		}
		if ok {
			continue
		}
		if docs == nil {
			docs = []record.Document{}
		}
		if err := s.save(ctx, key, docs); err != nil {
			return err
		}
		s.logger.Info().Str("collection", key).Int("records", len(docs)).Msg("seeded local collection")
	}
	return nil
}

// List は有効フィルタとソートを適用した一覧を返します。
func (s *Store) List(ctx context.Context, c record.Collection, opts record.ListOptions) ([]record.Document, error) {
	s.mu.Lock()
	docs, err := s.load(ctx, c.Name)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return record.FilterAndSort(c, docs, opts)
}

// Get は ID でレコードを取得します。
func (s *Store) Get(ctx context.Context, c record.Collection, id string) (record.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(ctx, c.Name)
	if err != nil {
		return nil, err
	}
	idx := indexOf(docs, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s/%s", record.ErrNotFound, c.Name, id)
	}
	return docs[idx], nil
}

// Create はレコードを追加します。
func (s *Store) Create(ctx context.Context, c record.Collection, data record.Document, actorID string) (record.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(ctx, c.Name)
	if err != nil {
		return nil, err
	}
	now := s.clock.Now()
	id, err := s.newID(now)
	if err != nil {
		return nil, err
	}
	doc, err := record.PrepareCreate(c, data, id, actorID, now)
	if err != nil {
		return nil, err
	}
	docs = append(docs, doc)
	if err := s.save(ctx, c.Name, docs); err != nil {
		return nil, err
	}
	return doc.Clone(), nil
}

// Update はレコードを部分更新します。
func (s *Store) Update(ctx context.Context, c record.Collection, id string, patch record.Document, actorID string) (record.Document, error) {
	return s.rewrite(ctx, c, id, func(existing record.Document) (record.Document, error) {
		return record.ApplyPatch(c, existing, patch, actorID, s.clock.Now())
	})
}

// Archive はレコードを論理削除します。
func (s *Store) Archive(ctx context.Context, c record.Collection, id string, actorID string) error {
	if !c.Archivable() {
		return fmt.Errorf("%w: archive %s", record.ErrUnsupportedOperation, c.Name)
	}
	_, err := s.rewrite(ctx, c, id, func(existing record.Document) (record.Document, error) {
		return record.ApplyArchive(c, existing, actorID, s.clock.Now())
	})
	return err
}

func (s *Store) rewrite(ctx context.Context, c record.Collection, id string, apply func(existing record.Document) (record.Document, error)) (record.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(ctx, c.Name)
	if err != nil {
		return nil, err
	}
	idx := indexOf(docs, id)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s/%s", record.ErrNotFound, c.Name, id)
	}
	next, err := apply(docs[idx])
	if err != nil {
		return nil, err
	}
	docs[idx] = next
	if err := s.save(ctx, c.Name, docs); err != nil {
		return nil, err
	}
	return next.Clone(), nil
}

// HardDelete はレコードを配列から取り除きます。
func (s *Store) HardDelete(ctx context.Context, c record.Collection, id string) error {
	if !c.Deletable() {
		return fmt.Errorf("%w: delete %s", record.ErrUnsupportedOperation, c.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	docs, err := s.load(ctx, c.Name)
	if err != nil {
		return err
	}
	idx := indexOf(docs, id)
	if idx < 0 {
		return fmt.Errorf("%w: %s/%s", record.ErrNotFound, c.Name, id)
	}
	docs = append(docs[:idx], docs[idx+1:]...)
	return s.save(ctx, c.Name, docs)
}

func (s *Store) load(ctx context.Context, key string) ([]record.Document, error) {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, err
	}
	if !ok || len(raw) == 0 {
		return []record.Document{}, nil
	}
	var docs []record.Document
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("localkv: decode %s: %w", key, err)
	}
	out := docs[:0]
	for _, d := range docs {
		if d != nil {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Store) save(ctx context.Context, key string, docs []record.Document) error {
	raw, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("localkv: encode %s: %w", key, err)
	}
	return s.kv.Set(ctx, key, raw)
}

func indexOf(docs []record.Document, id string) int {
	for i, d := range docs {
		if d.ID() == id {
			return i
		}
	}
	return -1
}
