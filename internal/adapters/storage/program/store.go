package program

import (
	"context"

	domain "centerdir/internal/domain/program"
)

// Store reads and creates programs.
type Store interface {
	List(ctx context.Context, filter ListFilter) ([]domain.Program, error)
	Create(ctx context.Context, p domain.Program) (domain.Program, error)
}

// ListFilter narrows a program listing.
type ListFilter struct {
	CenterID   string // empty lists every center
	ActiveOnly bool   // status equal to "active", ignoring case
}
