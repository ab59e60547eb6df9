package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/geodensity/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS businesses (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	lat         REAL NOT NULL,
	lon         REAL NOT NULL,
	category    TEXT NOT NULL DEFAULT '',
	attributes  TEXT,
	imported_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_businesses_category ON businesses(category);
CREATE INDEX IF NOT EXISTS idx_businesses_lat_lon ON businesses(lat, lon);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// InsertBusinesses upserts a batch of records in one transaction. Records
// without an ID get a generated one. Returns the number of rows written.
func (s *SQLiteStore) InsertBusinesses(ctx context.Context, businesses []model.Business) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: begin insert")
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO businesses (id, name, lat, lon, category, attributes, imported_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   lat = excluded.lat,
		   lon = excluded.lon,
		   category = excluded.category,
		   attributes = excluded.attributes,
		   imported_at = excluded.imported_at`,
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prepare insert")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	written := 0
	for _, b := range businesses {
		id := b.ID
		if id == "" {
			id = uuid.New().String()
		}

		var attrs sql.NullString
		if len(b.Attributes) > 0 {
			raw, err := json.Marshal(b.Attributes)
			if err != nil {
				return written, eris.Wrapf(err, "sqlite: marshal attributes for %s", id)
			}
			attrs = sql.NullString{String: string(raw), Valid: true}
		}

		if _, err := stmt.ExecContext(ctx,
			id, b.Name, b.Location.Lat, b.Location.Lon, string(b.Category), attrs, now,
		); err != nil {
			return written, eris.Wrapf(err, "sqlite: insert business %s", id)
		}
		written++
	}

	if err := tx.Commit(); err != nil {
		return 0, eris.Wrap(err, "sqlite: commit insert")
	}
	return written, nil
}

func (s *SQLiteStore) ListBusinesses(ctx context.Context, filter Filter) ([]model.Business, error) {
	query := `SELECT id, name, lat, lon, category, attributes FROM businesses WHERE 1=1`
	var args []any

	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, string(filter.Category))
	}
	query += ` ORDER BY id`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list businesses")
	}
	defer rows.Close()

	var businesses []model.Business
	for rows.Next() {
		b, err := scanBusiness(rows)
		if err != nil {
			return nil, err
		}
		businesses = append(businesses, *b)
	}
	return businesses, eris.Wrap(rows.Err(), "sqlite: list businesses iterate")
}

func (s *SQLiteStore) CountBusinesses(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM businesses`).Scan(&n)
	return n, eris.Wrap(err, "sqlite: count businesses")
}

func scanBusiness(rows *sql.Rows) (*model.Business, error) {
	var b model.Business
	var category string
	var attrs sql.NullString

	if err := rows.Scan(&b.ID, &b.Name, &b.Location.Lat, &b.Location.Lon, &category, &attrs); err != nil {
		return nil, eris.Wrap(err, "sqlite: scan business")
	}
	b.Category = model.CategoryID(category)

	if attrs.Valid && attrs.String != "" {
		if err := json.Unmarshal([]byte(attrs.String), &b.Attributes); err != nil {
			return nil, eris.Wrapf(err, "sqlite: unmarshal attributes for %s", b.ID)
		}
	}
	return &b, nil
}
