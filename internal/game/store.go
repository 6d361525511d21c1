package game

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("game not found")
	ErrUnknownType     = errors.New("unknown game type")
	ErrInvalidMetadata = errors.New("invalid metadata")
)

// Store persists games and the type catalog. Metadata handed to the store
// is already canonical; Update replaces the whole row.
type Store interface {
	PutType(ctx context.Context, t GameType) error
	ListTypes(ctx context.Context) ([]GameType, error)

	Create(ctx context.Context, g Game) error
	Get(ctx context.Context, id string) (Game, error)
	Update(ctx context.Context, g Game) error
	Delete(ctx context.Context, id string) error
	ListBySubject(ctx context.Context, subjectID string) ([]Game, error)
}
