package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/evno/internal/model"
)

// PostgresVendorFeedRepo はPostgreSQLを使用したベンダー告知フィードリポジトリ。
type PostgresVendorFeedRepo struct {
	db *sql.DB
}

// NewPostgresVendorFeedRepo はPostgresVendorFeedRepoを生成する。
func NewPostgresVendorFeedRepo(db *sql.DB) *PostgresVendorFeedRepo {
	return &PostgresVendorFeedRepo{db: db}
}

// Upsert はベンダーの告知フィードを登録または更新する。
// 既存行がある場合はfeed_urlを更新し、フェッチ状態をリセットする。
func (r *PostgresVendorFeedRepo) Upsert(ctx context.Context, feed *model.VendorFeed) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vendor_feeds (vendor_id, feed_url, etag, last_modified, fetch_status,
		                           consecutive_errors, error_message, next_fetch_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 ON CONFLICT (vendor_id) DO UPDATE SET
		   feed_url = EXCLUDED.feed_url,
		   etag = '',
		   last_modified = '',
		   fetch_status = EXCLUDED.fetch_status,
		   consecutive_errors = 0,
		   error_message = '',
		   next_fetch_at = EXCLUDED.next_fetch_at,
		   updated_at = EXCLUDED.updated_at`,
		feed.VendorID, feed.FeedURL, feed.ETag, feed.LastModified, feed.FetchStatus,
		feed.ConsecutiveErrors, feed.ErrorMessage, feed.NextFetchAt, feed.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vendor feed: %w", err)
	}
	return nil
}

// ListDueForFetch はフェッチ対象のフィードを取得する。
// next_fetch_at <= now() かつ fetch_status = 'active' のフィードを
// FOR UPDATE SKIP LOCKEDで排他的に取得する。
func (r *PostgresVendorFeedRepo) ListDueForFetch(ctx context.Context) ([]*model.VendorFeed, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT vendor_id, feed_url, etag, last_modified, fetch_status,
		        consecutive_errors, error_message, next_fetch_at, updated_at
		 FROM vendor_feeds
		 WHERE next_fetch_at <= now() AND fetch_status = 'active'
		 FOR UPDATE SKIP LOCKED`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list due vendor feeds: %w", err)
	}
	defer rows.Close()

	var feeds []*model.VendorFeed
	for rows.Next() {
		f := &model.VendorFeed{}
		if err := rows.Scan(
			&f.VendorID, &f.FeedURL, &f.ETag, &f.LastModified, &f.FetchStatus,
			&f.ConsecutiveErrors, &f.ErrorMessage, &f.NextFetchAt, &f.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vendor feed: %w", err)
		}
		feeds = append(feeds, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vendor feeds: %w", err)
	}

	return feeds, nil
}

// UpdateFetchState はフィードのフェッチ状態を更新する。
func (r *PostgresVendorFeedRepo) UpdateFetchState(ctx context.Context, feed *model.VendorFeed) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE vendor_feeds
		 SET etag = $2, last_modified = $3, fetch_status = $4,
		     consecutive_errors = $5, error_message = $6, next_fetch_at = $7, updated_at = $8
		 WHERE vendor_id = $1`,
		feed.VendorID, feed.ETag, feed.LastModified, feed.FetchStatus,
		feed.ConsecutiveErrors, feed.ErrorMessage, feed.NextFetchAt, feed.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update vendor feed state: %w", err)
	}
	return nil
}

// compile-time interface check
var _ VendorFeedRepository = (*PostgresVendorFeedRepo)(nil)
