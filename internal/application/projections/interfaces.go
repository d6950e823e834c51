package projections

import (
	"context"

	"centerdir/internal/adapters/storage/program"
	domainCenter "centerdir/internal/domain/center"
	domainProgram "centerdir/internal/domain/program"
)

// CenterStore interface for center queries.
type CenterStore interface {
	List(ctx context.Context) ([]domainCenter.Center, error)
	GetByID(ctx context.Context, id string) (domainCenter.Center, error)
}

// ProgramStore interface for program queries.
type ProgramStore interface {
	List(ctx context.Context, filter program.ListFilter) ([]domainProgram.Program, error)
}
