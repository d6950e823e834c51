package program

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"centerdir/internal/adapters/storage"
	"centerdir/internal/domain/directory"
	domain "centerdir/internal/domain/program"
)

type programRow struct {
	ID          string    `db:"id"`
	CenterID    string    `db:"center_id"`
	NameEn      string    `db:"name_en"`
	NameAr      string    `db:"name_ar"`
	Code        string    `db:"code"`
	Status      string    `db:"status"`
	Description string    `db:"description"`
	CreatedBy   string    `db:"created_by"`
	CreatedAt   time.Time `db:"created_at"`
}

func fromDomain(p domain.Program) programRow {
	return programRow{
		ID: p.ID, CenterID: p.CenterID, NameEn: p.NameEn, NameAr: p.NameAr, Code: p.Code,
		Status: p.Status, Description: p.Description, CreatedBy: p.CreatedBy, CreatedAt: p.CreatedAt,
	}
}

func (r programRow) toDomain() domain.Program {
	return domain.Program{
		ID: r.ID, CenterID: r.CenterID, NameEn: r.NameEn, NameAr: r.NameAr, Code: r.Code,
		Status: r.Status, Description: r.Description, CreatedBy: r.CreatedBy, CreatedAt: r.CreatedAt,
	}
}

const insertProgram = `INSERT INTO programs (id, center_id, name_en, name_ar, code, status, description, created_by, created_at)
	VALUES (:id, :center_id, :name_en, :name_ar, :code, :status, :description, :created_by, :created_at)`

// PostgresStore implements Store against a hosted Postgres database.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a program store over sqlx.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// List retrieves programs matching the filter, sorted by name.
func (s *PostgresStore) List(ctx context.Context, filter ListFilter) ([]domain.Program, error) {
	var where []string
	args := map[string]any{}
	if filter.CenterID != "" {
		where = append(where, "center_id = :center_id")
		args["center_id"] = filter.CenterID
	}
	if filter.ActiveOnly {
		where = append(where, "lower(status) = 'active'")
	}
	query := "SELECT id, center_id, name_en, name_ar, code, status, description, created_by, created_at FROM programs"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY lower(COALESCE(NULLIF(name_en, ''), name_ar)), id"

	named, namedArgs, err := sqlx.Named(query, args)
	if err != nil {
		return nil, directory.Unavailable("list programs", err)
	}
	var rows []programRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(named), namedArgs...); err != nil {
		return nil, directory.Unavailable("list programs", err)
	}
	results := make([]domain.Program, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toDomain())
	}
	return results, nil
}

// Create inserts a new program and returns it as stored.
func (s *PostgresStore) Create(ctx context.Context, p domain.Program) (domain.Program, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, insertProgram, fromDomain(p))
	if storage.IsUniqueViolation(err) {
		return domain.Program{}, directory.ErrDuplicateProgram
	}
	if err != nil {
		return domain.Program{}, directory.Unavailable("create program", err)
	}
	return p, nil
}
