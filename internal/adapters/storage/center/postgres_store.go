package center

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	domain "centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
)

type centerRow struct {
	ID     string `db:"id"`
	Code   string `db:"code"`
	NameEn string `db:"name_en"`
	NameAr string `db:"name_ar"`
	Status string `db:"status"`
}

func (r centerRow) toDomain() domain.Center {
	c := domain.Center{ID: r.ID, Code: r.Code, NameEn: r.NameEn, NameAr: r.NameAr, Status: r.Status}
	c.Normalize()
	return c
}

// PostgresStore implements Store against a hosted Postgres database.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a center store over sqlx.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// List returns all centers ordered by display name.
func (s *PostgresStore) List(ctx context.Context) ([]domain.Center, error) {
	var rows []centerRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, code, name_en, name_ar, status FROM centers ORDER BY COALESCE(NULLIF(name_en, ''), name_ar), id`)
	if err != nil {
		return nil, directory.Unavailable("list centers", err)
	}
	results := make([]domain.Center, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toDomain())
	}
	return results, nil
}

// GetByID retrieves a center by its ID.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (domain.Center, error) {
	var r centerRow
	err := s.db.GetContext(ctx, &r, `SELECT id, code, name_en, name_ar, status FROM centers WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Center{}, &directory.NotFoundError{Kind: "center", ID: id}
	}
	if err != nil {
		return domain.Center{}, directory.Unavailable("get center", err)
	}
	return r.toDomain(), nil
}

// Save upserts a center.
func (s *PostgresStore) Save(ctx context.Context, c domain.Center) error {
	_, err := s.db.NamedExecContext(ctx,
		`INSERT INTO centers (id, code, name_en, name_ar, status) VALUES (:id, :code, :name_en, :name_ar, :status)
		 ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code, name_en = EXCLUDED.name_en, name_ar = EXCLUDED.name_ar, status = EXCLUDED.status`,
		centerRow{ID: c.ID, Code: c.Code, NameEn: c.NameEn, NameAr: c.NameAr, Status: c.Status},
	)
	return directory.Unavailable("save center", err)
}
