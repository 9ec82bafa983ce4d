package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dungpham-npc/storefront/internal/domain"
	"github.com/dungpham-npc/storefront/pkg/database"
	apperrors "github.com/dungpham-npc/storefront/pkg/errors"
)

const recipientColumns = `id, user_id, name, phone, address_line, city, country, is_default, created_at, updated_at`

// RecipientRepository implements repository.RecipientRepository using PostgreSQL.
type RecipientRepository struct {
	db database.DBTX
}

// NewRecipientRepository creates a new PostgreSQL-backed recipient repository.
func NewRecipientRepository(db database.DBTX) *RecipientRepository {
	return &RecipientRepository{db: db}
}

// Create inserts a recipient. A default recipient replaces the user's
// previous default in the same transaction.
func (r *RecipientRepository) Create(ctx context.Context, rc *domain.Recipient) error {
	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if rc.IsDefault {
			if err := unsetDefaultRecipient(ctx, tx, rc.UserID); err != nil {
				return err
			}
		}

		_, err := tx.Exec(ctx, `
			INSERT INTO recipients (`+recipientColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			rc.ID,
			rc.UserID,
			rc.Name,
			rc.Phone,
			rc.AddressLine,
			rc.City,
			rc.Country,
			rc.IsDefault,
			rc.CreatedAt,
			rc.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert recipient: %w", err)
		}
		return nil
	})
}

// GetByID retrieves a recipient by its ID.
func (r *RecipientRepository) GetByID(ctx context.Context, id string) (*domain.Recipient, error) {
	rc, err := scanRecipient(r.db.QueryRow(ctx, `SELECT `+recipientColumns+` FROM recipients WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "Recipient", "get recipient")
	}
	return rc, nil
}

// ListByUserID returns the user's recipients, default first, then oldest first.
func (r *RecipientRepository) ListByUserID(ctx context.Context, userID string) ([]domain.Recipient, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+recipientColumns+`
		FROM recipients
		WHERE user_id = $1
		ORDER BY is_default DESC, created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()

	recipients := []domain.Recipient{}
	for rows.Next() {
		rc, err := scanRecipient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan recipient row: %w", err)
		}
		recipients = append(recipients, *rc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recipient rows: %w", err)
	}
	return recipients, nil
}

// Update modifies the address fields. The default flag is changed only
// through SetDefault.
func (r *RecipientRepository) Update(ctx context.Context, rc *domain.Recipient) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE recipients
		SET name = $1, phone = $2, address_line = $3, city = $4, country = $5, updated_at = $6
		WHERE id = $7`,
		rc.Name,
		rc.Phone,
		rc.AddressLine,
		rc.City,
		rc.Country,
		rc.UpdatedAt,
		rc.ID,
	)
	if err != nil {
		return fmt.Errorf("update recipient: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Recipient")
	}
	return nil
}

func (r *RecipientRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM recipients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete recipient: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return apperrors.NotFound("Recipient")
	}
	return nil
}

// SetDefault marks the recipient as the default for the user, unsetting any
// previous default.
func (r *RecipientRepository) SetDefault(ctx context.Context, userID, recipientID string) error {
	return database.InTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := unsetDefaultRecipient(ctx, tx, userID); err != nil {
			return err
		}

		ct, err := tx.Exec(ctx,
			`UPDATE recipients SET is_default = true WHERE id = $1 AND user_id = $2`,
			recipientID, userID,
		)
		if err != nil {
			return fmt.Errorf("set default recipient: %w", err)
		}
		if ct.RowsAffected() == 0 {
			return apperrors.NotFound("Recipient")
		}
		return nil
	})
}

func (r *RecipientRepository) CountByUserID(ctx context.Context, userID string) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM recipients WHERE user_id = $1`, userID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count recipients: %w", err)
	}
	return n, nil
}

func unsetDefaultRecipient(ctx context.Context, tx pgx.Tx, userID string) error {
	_, err := tx.Exec(ctx,
		`UPDATE recipients SET is_default = false WHERE user_id = $1 AND is_default = true`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("unset default recipient: %w", err)
	}
	return nil
}

func scanRecipient(row rowScanner) (*domain.Recipient, error) {
	var rc domain.Recipient
	if err := row.Scan(
		&rc.ID, &rc.UserID, &rc.Name, &rc.Phone, &rc.AddressLine,
		&rc.City, &rc.Country, &rc.IsDefault, &rc.CreatedAt, &rc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &rc, nil
}
