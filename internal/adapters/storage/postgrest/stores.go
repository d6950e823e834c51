package postgrest

import (
	"context"
	"net/http"
	"net/url"
	"slices"
	"strings"

	programstore "centerdir/internal/adapters/storage/program"
	"centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
	"centerdir/internal/domain/program"
)

// CenterStore reads centers from /rest/v1/centers.
type CenterStore struct {
	c *Client
}

// ProgramStore reads and inserts rows in /rest/v1/programs.
type ProgramStore struct {
	c *Client
}

// Centers returns the center store backed by this client.
func (c *Client) Centers() *CenterStore { return &CenterStore{c: c} }

// Programs returns the program store backed by this client.
func (c *Client) Programs() *ProgramStore { return &ProgramStore{c: c} }

func byDisplayName[T any](items []T, name func(T) string) {
	slices.SortStableFunc(items, func(a, b T) int {
		return strings.Compare(strings.ToLower(name(a)), strings.ToLower(name(b)))
	})
}

// List fetches every center ordered by the configured name column, then
// re-sorts by display name so rows with a blank English name fall back to Arabic.
// POST: Returns centers or a DataUnavailable error with the store's message
func (s *CenterStore) List(ctx context.Context) ([]center.Center, error) {
	var rows []centerRow
	q := url.Values{"select": {"*"}, "order": {s.c.centerOrder}}
	if err := s.c.do(ctx, http.MethodGet, "/rest/v1/centers", q, nil, &rows, nil); err != nil {
		return nil, unavailable("centers fetch", err)
	}
	out := make([]center.Center, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	byDisplayName(out, func(c center.Center) string { return c.NameEn + c.NameAr })
	return out, nil
}

// GetByID resolves one center from the full list, as the id column name
// depends on the table shape.
func (s *CenterStore) GetByID(ctx context.Context, id string) (center.Center, error) {
	all, err := s.List(ctx)
	if err != nil {
		return center.Center{}, err
	}
	for _, c := range all {
		if c.ID == id {
			return c, nil
		}
	}
	return center.Center{}, &directory.NotFoundError{Kind: "center", ID: id}
}

// List fetches programs matching the filter, sorted by display name.
func (s *ProgramStore) List(ctx context.Context, filter programstore.ListFilter) ([]program.Program, error) {
	q := url.Values{"select": {"*"}, "order": {s.c.programOrder}}
	if filter.CenterID != "" {
		q.Set("center_id", "eq."+filter.CenterID)
	}
	if filter.ActiveOnly {
		q.Set("status", "ilike.active")
	}
	var rows []programRow
	if err := s.c.do(ctx, http.MethodGet, "/rest/v1/programs", q, nil, &rows, nil); err != nil {
		return nil, unavailable("programs fetch", err)
	}
	out := make([]program.Program, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	byDisplayName(out, func(p program.Program) string { return p.NameEn + p.NameAr })
	return out, nil
}

// Create inserts one program and returns the stored representation.
// PRE: p is normalized and validated; ctx carries the user's token unless
// anonymous inserts are allowed by the store's row policies
// POST: Returns the stored program, ErrDuplicateProgram, or DataUnavailable
func (s *ProgramStore) Create(ctx context.Context, p program.Program) (program.Program, error) {
	body := []programInsert{{
		CenterID:    p.CenterID,
		Code:        p.Code,
		NameEn:      p.NameEn,
		NameAr:      p.NameAr,
		Status:      p.Status,
		Description: p.Description,
		CreatedBy:   p.CreatedBy,
	}}
	header := http.Header{"Prefer": {"return=representation"}}
	var rows []programRow
	err := s.c.do(ctx, http.MethodPost, "/rest/v1/programs", nil, body, &rows, header)
	if isDuplicate(err) {
		return program.Program{}, directory.ErrDuplicateProgram
	}
	if err != nil {
		return program.Program{}, unavailable("insert", err)
	}
	if len(rows) == 0 {
		return p, nil
	}
	stored := rows[0].toDomain()
	if stored.ID == "" {
		stored.ID = p.ID
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = p.CreatedAt
	}
	return stored, nil
}
