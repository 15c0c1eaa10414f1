package territory

import "context"

// Repository は区域の永続化を行うインターフェースです。
// 区域はシードでのみ作成され、削除されません。
type Repository interface {
	List(ctx context.Context) ([]*Territory, error)
	FindByID(ctx context.Context, id string) (*Territory, error)
	Save(ctx context.Context, territory *Territory, actorID string) (*Territory, error)
}
