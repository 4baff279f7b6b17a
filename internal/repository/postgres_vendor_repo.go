package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/evno/internal/model"
)

// PostgresVendorRepo はPostgreSQLを使用したベンダーリポジトリ。
type PostgresVendorRepo struct {
	db *sql.DB
}

// NewPostgresVendorRepo はPostgresVendorRepoを生成する。
func NewPostgresVendorRepo(db *sql.DB) *PostgresVendorRepo {
	return &PostgresVendorRepo{db: db}
}

// Create はベンダーを作成する。
// データセット順はseq列（bigserial）で保持されるため、位置の指定は不要。
func (r *PostgresVendorRepo) Create(ctx context.Context, vendor *model.Vendor) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO vendors (id, name, category, city, state, cost_per_day, rating,
		                      availability, description, images, website_url, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		vendor.ID, vendor.Name, vendor.Category, vendor.City, vendor.State,
		vendor.CostPerDay, vendor.Rating, vendor.Availability, vendor.Description,
		pq.Array(vendor.Images), vendor.WebsiteURL, vendor.CreatedAt, vendor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert vendor: %w", err)
	}
	return nil
}

// FindByID は指定IDのベンダーを取得する。見つからない場合はnilを返す。
func (r *PostgresVendorRepo) FindByID(ctx context.Context, id string) (*model.Vendor, error) {
	v := &model.Vendor{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, category, city, state, cost_per_day, rating,
		        availability, description, images, website_url, created_at, updated_at
		 FROM vendors WHERE id = $1`,
		id,
	).Scan(
		&v.ID, &v.Name, &v.Category, &v.City, &v.State,
		&v.CostPerDay, &v.Rating, &v.Availability, &v.Description,
		pq.Array(&v.Images), &v.WebsiteURL, &v.CreatedAt, &v.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vendor by ID: %w", err)
	}

	return v, nil
}

// compile-time interface check
var _ VendorRepository = (*PostgresVendorRepo)(nil)
