package center

import (
	"context"
	"database/sql"
	"errors"

	"centerdir/internal/adapters/storage"
	domain "centerdir/internal/domain/center"
	"centerdir/internal/domain/directory"
)

const selectColumns = "SELECT id, code, name_en, name_ar, status FROM centers"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new center store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns all centers ordered by display name.
// PRE: none
// POST: Returns centers sorted by name ascending, or a DataUnavailable error
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Center, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY CASE WHEN name_en <> '' THEN name_en ELSE name_ar END, id")
	if err != nil {
		return nil, directory.Unavailable("list centers", err)
	}
	defer rows.Close()

	var results []domain.Center
	for rows.Next() {
		var c domain.Center
		if err := rows.Scan(&c.ID, &c.Code, &c.NameEn, &c.NameAr, &c.Status); err != nil {
			return nil, directory.Unavailable("list centers", err)
		}
		c.Normalize()
		results = append(results, c)
	}
	if err := rows.Err(); err != nil {
		return nil, directory.Unavailable("list centers", err)
	}
	return results, nil
}

// GetByID retrieves a center by its ID.
// PRE: id is non-empty
// POST: Returns the center or a NotFound error
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Center, error) {
	var c domain.Center
	err := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).
		Scan(&c.ID, &c.Code, &c.NameEn, &c.NameAr, &c.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Center{}, &directory.NotFoundError{Kind: "center", ID: id}
	}
	if err != nil {
		return domain.Center{}, directory.Unavailable("get center", err)
	}
	c.Normalize()
	return c, nil
}

// Save upserts a center.
// PRE: c has been validated
// POST: center is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, c domain.Center) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO centers (id, code, name_en, name_ar, status) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET code=excluded.code, name_en=excluded.name_en, name_ar=excluded.name_ar, status=excluded.status`,
		c.ID, c.Code, c.NameEn, c.NameAr, c.Status,
	)
	return directory.Unavailable("save center", err)
}
