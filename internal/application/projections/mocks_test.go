package projections

import (
	"context"
	"sync/atomic"

	"centerdir/internal/adapters/storage/program"
	domainCenter "centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
	domainProgram "centerdir/internal/domain/program"
)

type mockCenterStore struct {
	centers []domainCenter.Center
	err     error
}

// List returns the seeded centers.
// PRE: none
// POST: Returns seeded centers or the configured error
func (m *mockCenterStore) List(_ context.Context) ([]domainCenter.Center, error) {
	return m.centers, m.err
}

// GetByID returns a seeded center by ID.
// PRE: id is non-empty
// POST: Returns the seeded center or a NotFoundError
func (m *mockCenterStore) GetByID(_ context.Context, id string) (domainCenter.Center, error) {
	if m.err != nil {
		return domainCenter.Center{}, m.err
	}
	for _, c := range m.centers {
		if c.ID == id {
			return c, nil
		}
	}
	return domainCenter.Center{}, &directory.NotFoundError{Kind: "center", ID: id}
}

type mockProgramStore struct {
	programs []domainProgram.Program
	err      error
	calls    atomic.Int32
	last     program.ListFilter
}

// List returns seeded programs honouring the filter.
// PRE: none
// POST: Returns matching seeded programs or the configured error
func (m *mockProgramStore) List(_ context.Context, filter program.ListFilter) ([]domainProgram.Program, error) {
	m.calls.Add(1)
	m.last = filter
	if m.err != nil {
		return nil, m.err
	}
	var out []domainProgram.Program
	for _, p := range m.programs {
		if filter.CenterID != "" && p.CenterID != filter.CenterID {
			continue
		}
		if filter.ActiveOnly && !p.IsActive() {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}
