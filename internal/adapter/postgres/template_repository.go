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

const templateColumns = `id, name, subject, content, html_content, created_by, created_at, updated_at`
const signatureColumns = `id, name, content, is_default, user_id, created_at, updated_at`

// TemplateRepo implements domain.TemplateRepository backed by PostgreSQL. It
// covers both email templates and per-user signatures.
type TemplateRepo struct {
	pool *pgxpool.Pool
}

func NewTemplateRepo(pool *pgxpool.Pool) *TemplateRepo {
	return &TemplateRepo{pool: pool}
}

func scanTemplate(row pgx.Row) (*domain.EmailTemplate, error) {
	var t domain.EmailTemplate
	err := row.Scan(&t.ID, &t.Name, &t.Subject, &t.Content, &t.HTMLContent,
		&t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func scanSignature(row pgx.Row) (*domain.EmailSignature, error) {
	var s domain.EmailSignature
	err := row.Scan(&s.ID, &s.Name, &s.Content, &s.IsDefault, &s.UserID,
		&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *TemplateRepo) GetTemplate(ctx context.Context, templateID uuid.UUID) (*domain.EmailTemplate, error) {
	tmpl, err := scanTemplate(r.pool.QueryRow(ctx,
		`SELECT `+templateColumns+` FROM email_templates WHERE id = $1`, templateID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get email template: %w", err)
	}
	return tmpl, nil
}

func (r *TemplateRepo) ListTemplates(ctx context.Context) ([]domain.EmailTemplate, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+templateColumns+` FROM email_templates ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list email templates: %w", err)
	}
	defer rows.Close()

	var templates []domain.EmailTemplate
	for rows.Next() {
		tmpl, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email template: %w", err)
		}
		templates = append(templates, *tmpl)
	}
	return templates, rows.Err()
}

// SaveTemplate inserts when tmpl.ID is zero and updates otherwise.
func (r *TemplateRepo) SaveTemplate(ctx context.Context, tmpl domain.EmailTemplate) (*domain.EmailTemplate, error) {
	if tmpl.ID == uuid.Nil {
		saved, err := scanTemplate(r.pool.QueryRow(ctx, `
			INSERT INTO email_templates (name, subject, content, html_content, created_by)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+templateColumns,
			tmpl.Name, tmpl.Subject, tmpl.Content, tmpl.HTMLContent, tmpl.CreatedBy))
		if err != nil {
			return nil, fmt.Errorf("failed to create email template: %w", err)
		}
		return saved, nil
	}

	saved, err := scanTemplate(r.pool.QueryRow(ctx, `
		UPDATE email_templates
		SET name = $1, subject = $2, content = $3, html_content = $4, updated_at = NOW()
		WHERE id = $5
		RETURNING `+templateColumns,
		tmpl.Name, tmpl.Subject, tmpl.Content, tmpl.HTMLContent, tmpl.ID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update email template: %w", err)
	}
	return saved, nil
}

func (r *TemplateRepo) DeleteTemplate(ctx context.Context, templateID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM email_templates WHERE id = $1`, templateID)
	if err != nil {
		return fmt.Errorf("failed to delete email template: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}

func (r *TemplateRepo) ListSignatures(ctx context.Context, userID uuid.UUID) ([]domain.EmailSignature, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+signatureColumns+` FROM email_signatures WHERE user_id = $1 ORDER BY name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list email signatures: %w", err)
	}
	defer rows.Close()

	var signatures []domain.EmailSignature
	for rows.Next() {
		sig, err := scanSignature(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan email signature: %w", err)
		}
		signatures = append(signatures, *sig)
	}
	return signatures, rows.Err()
}

// SaveSignature inserts or updates a signature. Marking one as default clears
// the flag on the user's other signatures in the same transaction.
func (r *TemplateRepo) SaveSignature(ctx context.Context, sig domain.EmailSignature) (*domain.EmailSignature, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if sig.IsDefault {
		if _, err := tx.Exec(ctx,
			`UPDATE email_signatures SET is_default = FALSE, updated_at = NOW() WHERE user_id = $1`,
			sig.UserID); err != nil {
			return nil, fmt.Errorf("failed to clear default signatures: %w", err)
		}
	}

	var saved *domain.EmailSignature
	if sig.ID == uuid.Nil {
		saved, err = scanSignature(tx.QueryRow(ctx, `
			INSERT INTO email_signatures (name, content, is_default, user_id)
			VALUES ($1, $2, $3, $4)
			RETURNING `+signatureColumns,
			sig.Name, sig.Content, sig.IsDefault, sig.UserID))
	} else {
		saved, err = scanSignature(tx.QueryRow(ctx, `
			UPDATE email_signatures
			SET name = $1, content = $2, is_default = $3, updated_at = NOW()
			WHERE id = $4
			RETURNING `+signatureColumns,
			sig.Name, sig.Content, sig.IsDefault, sig.ID))
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrTemplateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to save email signature: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return saved, nil
}

func (r *TemplateRepo) DeleteSignature(ctx context.Context, signatureID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM email_signatures WHERE id = $1`, signatureID)
	if err != nil {
		return fmt.Errorf("failed to delete email signature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTemplateNotFound
	}
	return nil
}
