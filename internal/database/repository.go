package database

import (
	"context"
	"fmt"
	"time"

	"go-intern-harvester/internal/scraper"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema creates the postings table. linkareer_id is the conflict key, so a
// batch written twice (e.g. after a fail-open history load) adds no rows.
const Schema = `
CREATE TABLE IF NOT EXISTS intern_postings (
	linkareer_id    BIGINT PRIMARY KEY,
	title           TEXT,
	organizer_name  TEXT,
	img_url         TEXT NOT NULL,
	enterprise_type TEXT,
	job_category    TEXT,
	region          TEXT,
	start_date      TEXT,
	end_date        TEXT,
	homepage_url    TEXT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`

const insertPosting = `
	INSERT INTO intern_postings
		(linkareer_id, title, organizer_name, img_url, enterprise_type, job_category, region, start_date, end_date, homepage_url)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (linkareer_id) DO NOTHING`

type Repository struct {
	db *pgxpool.Pool
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	config.MaxConns = 4
	config.MinConns = 1
	config.MaxConnLifetime = time.Hour

	// PgBouncer in transaction mode cannot hold prepared statements.
	config.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeExec

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &Repository{db: pool}, nil
}

func (r *Repository) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

// Migrate creates the postings table if needed.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// SavePostings inserts the batch in one round trip and returns how many rows
// were new.
func (r *Repository) SavePostings(ctx context.Context, postings []scraper.Posting) (int, error) {
	if len(postings) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, p := range postings {
		batch.Queue(insertPosting,
			p.ID, p.Title, p.OrganizerName, p.ImageURL, p.EnterpriseType,
			p.JobCategory, p.Region, p.StartDate, p.EndDate, p.HomepageURL)
	}

	results := r.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range postings {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("failed to save posting: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
