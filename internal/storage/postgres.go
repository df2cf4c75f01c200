package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bilgisen/sevennews/internal/models"
	"github.com/bilgisen/sevennews/migrations"
)

// Postgres implements Store over a pgx connection pool.
type Postgres struct {
	Pool *pgxpool.Pool
}

// NewPostgres connects to connString and applies pending migrations.
func NewPostgres(ctx context.Context, connString string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool)
	err = migrations.Run(db, migrations.Postgres)
	_ = db.Close()
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Postgres{Pool: pool}, nil
}

// Close closes the pool.
func (p *Postgres) Close() error {
	p.Pool.Close()
	return nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.Pool.Ping(ctx)
}

func (p *Postgres) Insert(ctx context.Context, item models.NewsItem) (string, error) {
	item.ID = newID()
	_, err := p.Pool.Exec(ctx, `
        INSERT INTO news (`+newsColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
    `, item.ID, item.TitleEN, item.TitleTA, item.DescriptionEN, item.DescriptionTA,
		item.Category, item.ImageURL, item.VideoURL, item.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("insert news: %w", err)
	}
	return item.ID, nil
}

func (p *Postgres) Get(ctx context.Context, id string) (*models.NewsItem, error) {
	row := p.Pool.QueryRow(ctx, `SELECT `+newsColumns+` FROM news WHERE id = $1`, id)
	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get news: %w", err)
	}
	return item, nil
}

func (p *Postgres) Replace(ctx context.Context, item models.NewsItem) error {
	tag, err := p.Pool.Exec(ctx, `
        UPDATE news SET title_en = $1, title_ta = $2, description_en = $3, description_ta = $4,
               category = $5, image_url = $6, video_url = $7, created_at = $8
        WHERE id = $9
    `, item.TitleEN, item.TitleTA, item.DescriptionEN, item.DescriptionTA,
		item.Category, item.ImageURL, item.VideoURL, item.CreatedAt, item.ID)
	if err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, id string) error {
	if _, err := p.Pool.Exec(ctx, `DELETE FROM news WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	return nil
}

func (p *Postgres) List(ctx context.Context, limit int) ([]models.NewsItem, error) {
	query := `SELECT ` + newsColumns + ` FROM news ORDER BY created_at DESC, id ASC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := p.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

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
