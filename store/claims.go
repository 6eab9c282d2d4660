package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	apperrors "github.com/botworks/club-server/internal/errors"
	"github.com/botworks/club-server/roles"
)

var _ roles.ClaimRepo = (*SQLiteStore)(nil)

// GetClaim returns the durable privilege claim for subject, or
// errors.ErrNotFound if the identity has never been resolved.
func (s *SQLiteStore) GetClaim(ctx context.Context, subject string) (*roles.Claim, error) {
	query := `SELECT subject, email, role, updated_at FROM role_claims WHERE subject = ?`

	var claim roles.Claim
	var updatedAt string
	err := s.db.QueryRowContext(ctx, query, subject).Scan(&claim.Subject, &claim.Email, &claim.Role, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting claim: %w", err)
	}

	claim.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing claim timestamp: %w", err)
	}
	return &claim, nil
}

// UpsertClaim writes the claim unconditionally, overwriting any prior role.
func (s *SQLiteStore) UpsertClaim(ctx context.Context, claim *roles.Claim) error {
	query := `
		INSERT INTO role_claims (subject, email, role, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(subject) DO UPDATE SET email = excluded.email, role = excluded.role, updated_at = excluded.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		claim.Subject,
		claim.Email,
		string(claim.Role),
		claim.UpdatedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting claim: %w", err)
	}

	s.logger.Debug().Str("subject", claim.Subject).Str("role", string(claim.Role)).Msg("claim written")
	return nil
}
