package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/recupaai/recovery/internal/entity"
	"github.com/recupaai/recovery/internal/usecase"
)

type LeadRepository struct {
	DB *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{DB: db}
}

const leadColumns = `
	id, client_id, product_id, email, COALESCE(name, ''), COALESCE(phone, ''),
	COALESCE(phone_normalized, ''), COALESCE(checkout_url, ''), COALESCE(value, 0),
	status, COALESCE(conversation_log, '[]'::jsonb), created_at, updated_at
`

func (r *LeadRepository) GetByID(ctx context.Context, id string) (*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE id = $1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, id))
}

func (r *LeadRepository) FindActiveByPhone(ctx context.Context, phoneNormalized string) (*entity.Lead, error) {
	if phoneNormalized == "" {
		return nil, nil
	}
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE phone_normalized = $1
		  AND status NOT IN ('converted_organically', 'recovered_by_ai', 'failed')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, phoneNormalized))
}

func (r *LeadRepository) FindActiveByEmailAndProduct(ctx context.Context, email, productID string) (*entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE email = $1
		  AND product_id = $2
		  AND status NOT IN ('converted_organically', 'recovered_by_ai', 'failed')
		ORDER BY created_at DESC
		LIMIT 1
	`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, email, productID))
}

func (r *LeadRepository) FindByEmailAndProduct(ctx context.Context, email, productID string) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads WHERE email = $1 AND product_id = $2`
	rows, err := r.DB.QueryContext(ctx, query, email, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

// FindStalePending lista leads parados em pending_recovery há mais tempo do
// que deviam (job perdido na fila). Usado pelo reconciliador.
func (r *LeadRepository) FindStalePending(ctx context.Context, olderThan time.Duration, limit int) ([]*entity.Lead, error) {
	query := `
		SELECT ` + leadColumns + `
		FROM leads
		WHERE status = 'pending_recovery'
		  AND updated_at < NOW() - $1::interval
		ORDER BY updated_at ASC
		LIMIT $2
	`
	interval := fmt.Sprintf("%d seconds", int(olderThan.Seconds()))
	rows, err := r.DB.QueryContext(ctx, query, interval, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *LeadRepository) FindRecent(ctx context.Context, limit int) ([]*entity.Lead, error) {
	query := `SELECT ` + leadColumns + ` FROM leads ORDER BY created_at DESC LIMIT $1`
	rows, err := r.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.scanAll(rows)
}

func (r *LeadRepository) Create(ctx context.Context, lead *entity.Lead) error {
	query := `
		INSERT INTO leads (
			id, client_id, product_id, email, name, phone, phone_normalized,
			checkout_url, value, status, conversation_log, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, '[]'::jsonb, $11, $12)
	`
	_, err := r.DB.ExecContext(
		ctx, query,
		lead.ID, lead.ClientID, lead.ProductID, lead.Email,
		nullString(lead.Name), nullString(lead.Phone), nullString(lead.PhoneNormalized),
		nullString(lead.CheckoutURL), lead.Value, string(lead.Status),
		lead.CreatedAt, lead.UpdatedAt,
	)
	return err
}

// ConditionalUpdate é o compare-and-swap do lead: o WHERE exige o status que o
// chamador leu, e o append no conversation_log acontece no mesmo UPDATE.
// Zero linhas afetadas = outro escritor venceu; nada foi alterado.
func (r *LeadRepository) ConditionalUpdate(ctx context.Context, id string, expectedStatus entity.LeadStatus, patch usecase.LeadPatch) (bool, error) {
	var newStatus *string
	if patch.Status != nil {
		s := string(*patch.Status)
		newStatus = &s
	}

	var appendJSON *string
	if len(patch.AppendMessages) > 0 {
		raw, err := json.Marshal(patch.AppendMessages)
		if err != nil {
			return false, fmt.Errorf("serializar mensagens: %w", err)
		}
		s := string(raw)
		appendJSON = &s
	}

	query := `
		UPDATE leads
		SET
			status = COALESCE($3, status),
			conversation_log = CASE
				WHEN $4::jsonb IS NULL THEN conversation_log
				ELSE COALESCE(conversation_log, '[]'::jsonb) || $4::jsonb
			END,
			updated_at = NOW()
		WHERE id = $1 AND status = $2
	`
	result, err := r.DB.ExecContext(ctx, query, id, string(expectedStatus), newStatus, appendJSON)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *LeadRepository) scanOne(row *sql.Row) (*entity.Lead, error) {
	lead, err := scanLead(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return lead, err
}

func (r *LeadRepository) scanAll(rows *sql.Rows) ([]*entity.Lead, error) {
	var leads []*entity.Lead
	for rows.Next() {
		lead, err := scanLead(rows.Scan)
		if err != nil {
			return nil, err
		}
		leads = append(leads, lead)
	}
	return leads, rows.Err()
}

func scanLead(scan func(dest ...any) error) (*entity.Lead, error) {
	var lead entity.Lead
	var status string
	var logRaw []byte

	err := scan(
		&lead.ID, &lead.ClientID, &lead.ProductID, &lead.Email, &lead.Name,
		&lead.Phone, &lead.PhoneNormalized, &lead.CheckoutURL, &lead.Value,
		&status, &logRaw, &lead.CreatedAt, &lead.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	lead.Status = entity.LeadStatus(status)
	if len(logRaw) > 0 {
		if err := json.Unmarshal(logRaw, &lead.ConversationLog); err != nil {
			return nil, fmt.Errorf("conversation_log inválido no lead %s: %w", lead.ID, err)
		}
	}
	return &lead, nil
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
