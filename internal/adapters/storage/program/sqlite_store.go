package program

import (
	"context"
	"fmt"
	"strings"
	"time"

	"centerdir/internal/adapters/storage"
	"centerdir/internal/domain/directory"
	domain "centerdir/internal/domain/program"
)

const timeLayout = time.RFC3339Nano

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new program store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List retrieves programs matching the filter, sorted by name.
// PRE: none
// POST: Returns matching programs or a DataUnavailable error
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Program, error) {
	var qb strings.Builder
	var args []any
	qb.WriteString("SELECT id, center_id, name_en, name_ar, code, status, description, created_by, created_at FROM programs WHERE 1=1")
	if filter.CenterID != "" {
		qb.WriteString(" AND center_id = ?")
		args = append(args, filter.CenterID)
	}
	if filter.ActiveOnly {
		qb.WriteString(" AND lower(status) = 'active'")
	}
	qb.WriteString(" ORDER BY CASE WHEN name_en <> '' THEN name_en ELSE name_ar END COLLATE NOCASE, id")

	rows, err := s.db.QueryContext(ctx, qb.String(), args...)
	if err != nil {
		return nil, directory.Unavailable("list programs", err)
	}
	defer rows.Close()

	var results []domain.Program
	for rows.Next() {
		var p domain.Program
		var createdAt string
		if err := rows.Scan(&p.ID, &p.CenterID, &p.NameEn, &p.NameAr, &p.Code, &p.Status, &p.Description, &p.CreatedBy, &createdAt); err != nil {
			return nil, directory.Unavailable("list programs", err)
		}
		if p.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, directory.Unavailable("list programs", fmt.Errorf("program %s: bad created_at %q", p.ID, createdAt))
		}
		results = append(results, p)
	}
	if err := rows.Err(); err != nil {
		return nil, directory.Unavailable("list programs", err)
	}
	return results, nil
}

// Create inserts a new program and returns it as stored.
// PRE: p has been normalized and validated; p.ID is set
// POST: Returns the stored program, ErrDuplicateProgram, or a DataUnavailable error
func (s *SQLiteStore) Create(ctx context.Context, p domain.Program) (domain.Program, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO programs (id, center_id, name_en, name_ar, code, status, description, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.CenterID, p.NameEn, p.NameAr, p.Code, p.Status, p.Description, p.CreatedBy, p.CreatedAt.Format(timeLayout),
	)
	if storage.IsUniqueViolation(err) {
		return domain.Program{}, directory.ErrDuplicateProgram
	}
	if err != nil {
		return domain.Program{}, directory.Unavailable("create program", err)
	}
	return p, nil
}
