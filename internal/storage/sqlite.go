package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"github.com/bilgisen/sevennews/internal/models"
	"github.com/bilgisen/sevennews/migrations"
)

const newsColumns = `id, title_en, title_ta, description_en, description_ta, category, image_url, video_url, created_at`

// SQLite implements Store backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db, migrations.SQLite); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Insert writes a new row with a fresh id.
func (s *SQLite) Insert(ctx context.Context, item models.NewsItem) (string, error) {
	item.ID = newID()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO news (`+newsColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.TitleEN, item.TitleTA, item.DescriptionEN, item.DescriptionTA,
		item.Category, item.ImageURL, item.VideoURL, item.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("insert news: %w", err)
	}
	return item.ID, nil
}

// Get returns a single item by its ID.
func (s *SQLite) Get(ctx context.Context, id string) (*models.NewsItem, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+newsColumns+` FROM news WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get news: %w", err)
	}
	return item, nil
}

// Replace overwrites every column of an existing row.
func (s *SQLite) Replace(ctx context.Context, item models.NewsItem) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE news SET title_en = ?, title_ta = ?, description_en = ?, description_ta = ?,
		        category = ?, image_url = ?, video_url = ?, created_at = ?
		 WHERE id = ?`,
		item.TitleEN, item.TitleTA, item.DescriptionEN, item.DescriptionTA,
		item.Category, item.ImageURL, item.VideoURL, item.CreatedAt, item.ID,
	)
	if err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the row with the given ID.
func (s *SQLite) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM news WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	return nil
}

// List returns rows newest first.
func (s *SQLite) List(ctx context.Context, limit int) ([]models.NewsItem, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+newsColumns+` FROM news ORDER BY created_at DESC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer func() { _ = rows.Close() }()

	items := []models.NewsItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		items = append(items, *item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate news: %w", err)
	}
	return items, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*models.NewsItem, error) {
	var item models.NewsItem
	err := row.Scan(&item.ID, &item.TitleEN, &item.TitleTA, &item.DescriptionEN, &item.DescriptionTA,
		&item.Category, &item.ImageURL, &item.VideoURL, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
