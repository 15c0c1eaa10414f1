package busticket

import "context"

// Repository は乗車券の永続化を行うインターフェースです。
type Repository interface {
	List(ctx context.Context) ([]*BusTicket, error)
	FindByID(ctx context.Context, id string) (*BusTicket, error)
	Create(ctx context.Context, ticket *BusTicket, actorID string) (*BusTicket, error)
	Update(ctx context.Context, ticket *BusTicket, actorID string) (*BusTicket, error)
	Delete(ctx context.Context, id string) error
}
