package database

import (
	"context"
	"database/sql"
	"errors"

	"github.com/recupaai/recovery/internal/entity"
)

type InstanceRepository struct {
	DB *sql.DB
}

func NewInstanceRepository(db *sql.DB) *InstanceRepository {
	return &InstanceRepository{DB: db}
}

// FindConnected devolve uma instância conectada do cliente, ou nil. É a
// checagem que o orquestrador faz antes de qualquer envio.
func (r *InstanceRepository) FindConnected(ctx context.Context, clientID string) (*entity.Instance, error) {
	query := `
		SELECT instance_key, client_id, status, COALESCE(qr_code_base64, '')
		FROM instances
		WHERE client_id = $1 AND status = 'connected'
		LIMIT 1
	`
	var i entity.Instance
	err := r.DB.QueryRowContext(ctx, query, clientID).Scan(
		&i.InstanceKey, &i.ClientID, &i.Status, &i.QRCodeBase64,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InstanceRepository) Upsert(ctx context.Context, instance *entity.Instance) error {
	query := `
		INSERT INTO instances (instance_key, client_id, status, qr_code_base64, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (instance_key)
		DO UPDATE SET
			status = EXCLUDED.status,
			qr_code_base64 = EXCLUDED.qr_code_base64,
			updated_at = NOW()
	`
	_, err := r.DB.ExecContext(ctx, query, instance.InstanceKey, instance.ClientID, instance.Status, nullString(instance.QRCodeBase64))
	return err
}

func (r *InstanceRepository) UpdateStatus(ctx context.Context, instanceKey, status string) error {
	query := `UPDATE instances SET status = $2, updated_at = NOW() WHERE instance_key = $1`
	_, err := r.DB.ExecContext(ctx, query, instanceKey, status)
	return err
}
