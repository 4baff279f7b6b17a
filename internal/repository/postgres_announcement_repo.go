package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hitoshi/evno/internal/model"
)

// PostgresAnnouncementRepo はPostgreSQLを使用したお知らせリポジトリ。
type PostgresAnnouncementRepo struct {
	db *sql.DB
}

// NewPostgresAnnouncementRepo はPostgresAnnouncementRepoを生成する。
func NewPostgresAnnouncementRepo(db *sql.DB) *PostgresAnnouncementRepo {
	return &PostgresAnnouncementRepo{db: db}
}

// FindByVendorAndLink はvendor_idとlinkでお知らせを検索する。見つからない場合はnilを返す。
func (r *PostgresAnnouncementRepo) FindByVendorAndLink(ctx context.Context, vendorID, link string) (*model.Announcement, error) {
	a := &model.Announcement{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, vendor_id, title, link, summary, published_at, created_at
		 FROM announcements WHERE vendor_id = $1 AND link = $2`,
		vendorID, link,
	).Scan(&a.ID, &a.VendorID, &a.Title, &a.Link, &a.Summary, &a.PublishedAt, &a.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find announcement: %w", err)
	}

	return a, nil
}

// Create は新規お知らせを作成する。
func (r *PostgresAnnouncementRepo) Create(ctx context.Context, announcement *model.Announcement) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO announcements (id, vendor_id, title, link, summary, published_at, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		announcement.ID, announcement.VendorID, announcement.Title, announcement.Link,
		announcement.Summary, announcement.PublishedAt, announcement.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert announcement: %w", err)
	}
	return nil
}

// Update は既存お知らせを上書き更新する。履歴は保持しない。
func (r *PostgresAnnouncementRepo) Update(ctx context.Context, announcement *model.Announcement) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE announcements
		 SET title = $2, summary = $3, published_at = $4
		 WHERE id = $1`,
		announcement.ID, announcement.Title, announcement.Summary, announcement.PublishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update announcement: %w", err)
	}
	return nil
}

// ListRecent は公開日時の降順でお知らせ一覧をベンダー情報付きで返す。
func (r *PostgresAnnouncementRepo) ListRecent(ctx context.Context, limit int) ([]AnnouncementWithVendor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT a.id, a.vendor_id, a.title, a.link, a.summary, a.published_at, a.created_at,
		        v.name, v.category
		 FROM announcements a
		 JOIN vendors v ON v.id = a.vendor_id
		 ORDER BY a.published_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var out []AnnouncementWithVendor
	for rows.Next() {
		var a AnnouncementWithVendor
		if err := rows.Scan(
			&a.ID, &a.VendorID, &a.Title, &a.Link, &a.Summary, &a.PublishedAt, &a.CreatedAt,
			&a.VendorName, &a.VendorCategory,
		); err != nil {
			return nil, fmt.Errorf("failed to scan announcement: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate announcements: %w", err)
	}

	return out, nil
}

// DeleteOlderThan は指定時刻より古いお知らせを削除し、削除件数を返す。
func (r *PostgresAnnouncementRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM announcements WHERE published_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old announcements: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return deleted, nil
}

// compile-time interface check
var _ AnnouncementRepository = (*PostgresAnnouncementRepo)(nil)
