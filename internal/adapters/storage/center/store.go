package center

import (
	"context"

	domain "centerdir/internal/domain/center"
)

// Store reads centers from the directory backend.
type Store interface {
	List(ctx context.Context) ([]domain.Center, error)
	GetByID(ctx context.Context, id string) (domain.Center, error)
}

// Writer upserts centers; used by dataset import.
type Writer interface {
	Save(ctx context.Context, c domain.Center) error
}
