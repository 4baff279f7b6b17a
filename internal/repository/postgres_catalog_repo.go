package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/evno/internal/model"
)

// PostgresCatalogRepo はPostgreSQLを使用したカタログ読み出しリポジトリ。
// スナップショット構築のための全件読み出しを提供する。
type PostgresCatalogRepo struct {
	db *sql.DB
}

// NewPostgresCatalogRepo はPostgresCatalogRepoを生成する。
func NewPostgresCatalogRepo(db *sql.DB) *PostgresCatalogRepo {
	return &PostgresCatalogRepo{db: db}
}

// ListCategories は全カテゴリをデータセット順（position昇順）で返す。
func (r *PostgresCatalogRepo) ListCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, color FROM categories ORDER BY position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Color); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}

// ListRegions は州名→都市リストの地域テーブル全体を返す。
// 各州の都市リストはテーブル記載順（position昇順）を保つ。
func (r *PostgresCatalogRepo) ListRegions(ctx context.Context) (map[string][]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT state, city FROM regions ORDER BY state, position`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list regions: %w", err)
	}
	defer rows.Close()

	regions := make(map[string][]string)
	for rows.Next() {
		var state, city string
		if err := rows.Scan(&state, &city); err != nil {
			return nil, fmt.Errorf("failed to scan region: %w", err)
		}
		regions[state] = append(regions[state], city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate regions: %w", err)
	}

	return regions, nil
}

// ListVendors は全ベンダーをデータセット順（登録順）で返す。
func (r *PostgresCatalogRepo) ListVendors(ctx context.Context) ([]model.Vendor, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, category, city, state, cost_per_day, rating,
		        availability, description, images, website_url, created_at, updated_at
		 FROM vendors ORDER BY seq`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list vendors: %w", err)
	}
	defer rows.Close()

	var vendors []model.Vendor
	for rows.Next() {
		var v model.Vendor
		if err := rows.Scan(
			&v.ID, &v.Name, &v.Category, &v.City, &v.State,
			&v.CostPerDay, &v.Rating, &v.Availability, &v.Description,
			pq.Array(&v.Images), &v.WebsiteURL, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan vendor: %w", err)
		}
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vendors: %w", err)
	}

	return vendors, nil
}

// compile-time interface check
var _ CatalogRepository = (*PostgresCatalogRepo)(nil)
