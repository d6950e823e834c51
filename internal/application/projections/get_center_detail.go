package projections

import (
	"context"
	"strings"

	"centerdir/internal/adapters/storage/program"
	domainCenter "centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
	"centerdir/internal/domain/locale"
	domainProgram "centerdir/internal/domain/program"
)

// GetCenterDetailQuery carries query parameters.
type GetCenterDetailQuery struct {
	CenterID string
	Lang     locale.Lang
}

// GetCenterDetailResult carries the center and its active programs.
type GetCenterDetailResult struct {
	Center   domainCenter.Center
	Programs []domainProgram.Program
}

// GetCenterDetailDeps holds dependencies for QueryGetCenterDetail.
type GetCenterDetailDeps struct {
	CenterStore  CenterStore
	ProgramStore ProgramStore
}

// QueryGetCenterDetail loads one center and its active programs in name order.
// PRE: query.CenterID is non-blank
// POST: Returns the detail, a ValidationError for a blank id, NotFound for an
// unknown id, or DataUnavailable
func QueryGetCenterDetail(ctx context.Context, query GetCenterDetailQuery, deps GetCenterDetailDeps) (GetCenterDetailResult, error) {
	id := strings.TrimSpace(query.CenterID)
	if id == "" {
		return GetCenterDetailResult{}, &directory.ValidationError{Field: "id", Message: "Missing center id"}
	}

	c, err := deps.CenterStore.GetByID(ctx, id)
	if err != nil {
		return GetCenterDetailResult{}, directory.Unavailable("get center", err)
	}

	programs, err := deps.ProgramStore.List(ctx, program.ListFilter{CenterID: c.ID, ActiveOnly: true})
	if err != nil {
		return GetCenterDetailResult{}, directory.Unavailable("list programs", err)
	}

	return GetCenterDetailResult{
		Center:   c,
		Programs: newNameSorter(query.Lang).programs(programs),
	}, nil
}
