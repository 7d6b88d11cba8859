package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recupaai/recovery/internal/entity"
)

type ProductRepository struct {
	DB *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{DB: db}
}

const productColumns = `
	id, client_id, external_product_id, name, COALESCE(platform, ''),
	COALESCE(price, 0), COALESCE(agent_persona, ''), COALESCE(objection_handling, ''),
	COALESCE(downsell_link, ''), COALESCE(delay_minutes, 15), is_active, created_at
`

func (r *ProductRepository) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.scan(r.DB.QueryRowContext(ctx, query, id))
}

func (r *ProductRepository) FindByExternalID(ctx context.Context, externalID, clientID string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE external_product_id = $1 AND client_id = $2`
	return r.scan(r.DB.QueryRowContext(ctx, query, externalID, clientID))
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (
			id, client_id, external_product_id, name, platform, price,
			agent_persona, objection_handling, downsell_link, delay_minutes,
			is_active, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.DB.ExecContext(
		ctx, query,
		p.ID, p.ClientID, p.ExternalProductID, p.Name, p.Platform, p.Price,
		p.AgentPersona, p.ObjectionHandling, p.DownsellLink, p.DelayMinutes,
		p.IsActive, p.CreatedAt,
	)
	return err
}

func (r *ProductRepository) scan(row *sql.Row) (*entity.Product, error) {
	var p entity.Product
	err := row.Scan(
		&p.ID, &p.ClientID, &p.ExternalProductID, &p.Name, &p.Platform,
		&p.Price, &p.AgentPersona, &p.ObjectionHandling, &p.DownsellLink,
		&p.DelayMinutes, &p.IsActive, &p.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}
