package record

import (
	"context"
	"time"
)

// ListOptions は一覧取得時のソート指定です。空の場合はコレクションの既定ソートを使用します。
type ListOptions struct {
	SortField string
	Direction Direction
}

// Store はコレクション単位の永続化を抽象化します。
// 実装はリモートのドキュメント DB とローカルの永続 KV の 2 種類で、同一の意味論を持ちます。
type Store interface {
	List(ctx context.Context, c Collection, opts ListOptions) ([]Document, error)
	Get(ctx context.Context, c Collection, id string) (Document, error)
	Create(ctx context.Context, c Collection, data Document, actorID string) (Document, error)
	Update(ctx context.Context, c Collection, id string, patch Document, actorID string) (Document, error)
	Archive(ctx context.Context, c Collection, id string, actorID string) error
	HardDelete(ctx context.Context, c Collection, id string) error
}

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

// SystemClock は UTC の現在時刻を返す Clock です。
type SystemClock struct{}

// Now は現在時刻を返します。
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
