package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/salvadorquinn/studynet/internal/domain"
)

// leadColumns must match the Scan order in scanLead.
const leadColumns = `id, name, email, phone, source, status, notes, created_at, updated_at`

// LeadRepo implements domain.LeadRepository backed by PostgreSQL.
type LeadRepo struct {
	pool *pgxpool.Pool
}

func NewLeadRepo(pool *pgxpool.Pool) *LeadRepo {
	return &LeadRepo{pool: pool}
}

func scanLead(row pgx.Row) (*domain.Lead, error) {
	var l domain.Lead
	err := row.Scan(&l.ID, &l.Name, &l.Email, &l.Phone, &l.Source, &l.Status,
		&l.Notes, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LeadRepo) GetByID(ctx context.Context, leadID uuid.UUID) (*domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx,
		`SELECT `+leadColumns+` FROM leads WHERE id = $1`, leadID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepo) List(ctx context.Context) ([]domain.Lead, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+leadColumns+` FROM leads ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	var leads []domain.Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, *lead)
	}
	return leads, rows.Err()
}

func (r *LeadRepo) Create(ctx context.Context, name, email, phone, source string) (*domain.Lead, error) {
	lead, err := scanLead(r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, email, phone, source)
		VALUES ($1, $2, $3, $4)
		RETURNING `+leadColumns,
		name, email, phone, source))
	if err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return lead, nil
}

func (r *LeadRepo) UpdateStatus(ctx context.Context, leadID uuid.UUID, status domain.LeadStatus) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), leadID)
	if err != nil {
		return fmt.Errorf("failed to update lead status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

// AppendNote adds a line to the lead's notes without reading them back first.
func (r *LeadRepo) AppendNote(ctx context.Context, leadID uuid.UUID, note string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads
		SET notes = CASE WHEN notes = '' THEN $1 ELSE notes || E'\n' || $1 END,
		    updated_at = NOW()
		WHERE id = $2
	`, note, leadID)
	if err != nil {
		return fmt.Errorf("failed to append lead note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}

func (r *LeadRepo) Delete(ctx context.Context, leadID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, leadID)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrLeadNotFound
	}
	return nil
}
