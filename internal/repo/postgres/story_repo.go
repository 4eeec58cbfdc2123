package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	storysvc "github.com/vjzest/PropCIDBack/internal/services/stories"
)

// StoryRepo persists story records in the stories table. Timestamps are
// stored as epoch milliseconds so active/expired partitioning is a plain
// integer comparison against the caller's clock.
type StoryRepo struct {
	pool *pgxpool.Pool
}

func NewStoryRepo(pool *pgxpool.Pool) *StoryRepo {
	return &StoryRepo{pool: pool}
}

func (r *StoryRepo) Create(ctx context.Context, in storysvc.StoryInput) (storysvc.Story, error) {
	if r.pool == nil {
		return storysvc.Story{}, storysvc.ErrStoreUnavailable
	}

	record := storysvc.Story{
		Title:       in.Title,
		ObjectKey:   in.ObjectKey,
		MediaURL:    in.MediaURL,
		IsVideo:     in.IsVideo,
		AuthorImage: in.AuthorImage,
		CreatedAtMS: in.CreatedAtMS,
		ExpiresAtMS: in.ExpiresAtMS,
	}
	err := r.pool.QueryRow(ctx, `
INSERT INTO stories (title, object_key, media_url, is_video, author_image, created_at_ms, expires_at_ms)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id
`, in.Title, in.ObjectKey, in.MediaURL, in.IsVideo, in.AuthorImage, in.CreatedAtMS, in.ExpiresAtMS).Scan(&record.ID)
	if err != nil {
		return storysvc.Story{}, storeErr("insert story", err)
	}

	return record, nil
}

func (r *StoryRepo) ListActive(ctx context.Context, nowMS int64) ([]storysvc.Story, error) {
	return r.list(ctx, `
SELECT id, title, object_key, media_url, is_video, author_image, created_at_ms, expires_at_ms
FROM stories
WHERE expires_at_ms > $1
ORDER BY id ASC
`, nowMS, "list active stories")
}

func (r *StoryRepo) ListExpired(ctx context.Context, nowMS int64) ([]storysvc.Story, error) {
	return r.list(ctx, `
SELECT id, title, object_key, media_url, is_video, author_image, created_at_ms, expires_at_ms
FROM stories
WHERE expires_at_ms <= $1
ORDER BY id ASC
`, nowMS, "list expired stories")
}

func (r *StoryRepo) GetByID(ctx context.Context, id int64) (storysvc.Story, error) {
	if r.pool == nil {
		return storysvc.Story{}, storysvc.ErrStoreUnavailable
	}

	var record storysvc.Story
	err := r.pool.QueryRow(ctx, `
SELECT id, title, object_key, media_url, is_video, author_image, created_at_ms, expires_at_ms
FROM stories
WHERE id = $1
`, id).Scan(
		&record.ID,
		&record.Title,
		&record.ObjectKey,
		&record.MediaURL,
		&record.IsVideo,
		&record.AuthorImage,
		&record.CreatedAtMS,
		&record.ExpiresAtMS,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return storysvc.Story{}, storysvc.ErrStoryNotFound
		}
		return storysvc.Story{}, storeErr("get story by id", err)
	}

	return record, nil
}

// DeleteByID is idempotent: deleting a missing id is not an error.
func (r *StoryRepo) DeleteByID(ctx context.Context, id int64) error {
	if r.pool == nil {
		return storysvc.ErrStoreUnavailable
	}

	if _, err := r.pool.Exec(ctx, `DELETE FROM stories WHERE id = $1`, id); err != nil {
		return storeErr("delete story", err)
	}
	return nil
}

func (r *StoryRepo) list(ctx context.Context, query string, nowMS int64, op string) ([]storysvc.Story, error) {
	if r.pool == nil {
		return nil, storysvc.ErrStoreUnavailable
	}

	rows, err := r.pool.Query(ctx, query, nowMS)
	if err != nil {
		return nil, storeErr(op, err)
	}
	defer rows.Close()

	records := make([]storysvc.Story, 0)
	for rows.Next() {
		var record storysvc.Story
		if err := rows.Scan(
			&record.ID,
			&record.Title,
			&record.ObjectKey,
			&record.MediaURL,
			&record.IsVideo,
			&record.AuthorImage,
			&record.CreatedAtMS,
			&record.ExpiresAtMS,
		); err != nil {
			return nil, storeErr(op, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(op, err)
	}

	return records, nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %w", op, errors.Join(storysvc.ErrStoreUnavailable, err))
}
